package export

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"golang.org/x/term"
)

// ConsoleFormatter renders an error list as a terminal table sized to the
// console.
type ConsoleFormatter struct {
	// MaxTitleWidth constrains the title column. If 0, it is derived from
	// the terminal width.
	MaxTitleWidth int

	// EnableColors toggles ANSI color on status cells.
	EnableColors bool
}

// NewConsoleFormatter creates a formatter with colors on.
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{EnableColors: true}
}

// Render writes list to w. Positions are shown in the first column since
// the CLI addresses records by position.
func (f *ConsoleFormatter) Render(w io.Writer, projectName string, list []defect.Record) error {
	return f.RenderPositions(w, projectName, list, nil)
}

// RenderPositions writes only the records at positions, keeping their
// positions in the full list. A nil positions renders every record. The
// summary line always covers the full list.
func (f *ConsoleFormatter) RenderPositions(w io.Writer, projectName string, list []defect.Record, positions []int) error {
	if positions == nil {
		positions = make([]int, len(list))
		for i := range list {
			positions[i] = i
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false
	tw.SetTitle(projectName)

	tw.AppendHeader(table.Row{"#", "ID", "Title", "Status", "Severity", "Environment", "Assigned To", "Reported"})

	if width := f.titleWidth(w); width > 0 {
		tw.SetColumnConfigs([]table.ColumnConfig{{
			Number:      3,
			WidthMax:    width,
			Transformer: truncTransformer(width),
		}})
	}

	for _, pos := range positions {
		rec := list[pos]
		tw.AppendRow(table.Row{
			pos,
			rec.ID,
			rec.Title,
			f.statusCell(rec.Status),
			string(rec.Severity),
			string(rec.Environment),
			rec.AssignedTo,
			rec.ReportedAt,
		})
	}
	tw.Render()

	summary := fmt.Sprintf("\n  Errors: %d   DRE: %.2f%%\n", len(list), defect.DefectRemovalEfficiency(list))
	if len(positions) != len(list) {
		summary = fmt.Sprintf("\n  Showing %d of %d errors   DRE: %.2f%%\n", len(positions), len(list), defect.DefectRemovalEfficiency(list))
	}
	if _, err := io.WriteString(w, summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func (f *ConsoleFormatter) statusCell(status defect.Status) string {
	if !f.EnableColors {
		return string(status)
	}
	switch defect.StatusColor(status) {
	case "failure":
		return text.Colors{text.FgRed}.Sprint(status)
	case "warning":
		return text.Colors{text.FgYellow}.Sprint(status)
	case "success":
		return text.Colors{text.FgGreen}.Sprint(status)
	}
	return string(status)
}

// titleWidth leaves the title column whatever the fixed columns do not need.
func (f *ConsoleFormatter) titleWidth(w io.Writer) int {
	if f.MaxTitleWidth > 0 {
		return f.MaxTitleWidth
	}
	termWidth := detectTerminalWidth(w)
	if termWidth <= 0 {
		return 0
	}
	width := termWidth - 100
	if width < 20 {
		width = 20
	}
	return width
}

func detectTerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			return width
		}
	}
	return -1
}

func truncTransformer(max int) text.Transformer {
	return func(val interface{}) string {
		s := fmt.Sprint(val)
		if utf8.RuneCountInString(s) <= max {
			return s
		}
		if max <= 1 {
			return "…"
		}
		runes := []rune(s)
		return string(runes[:max-1]) + "…"
	}
}
