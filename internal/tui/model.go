// Package tui is the interactive terminal front end: a project sidebar, the
// current project's error table and an add/edit form.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/export"
)

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 3 * time.Second

const sidebarWidth = 26

// ProjectService is the subset of project operations the TUI drives.
type ProjectService interface {
	Add(ctx context.Context, name string) (*project.Project, error)
	Rename(ctx context.Context, ref, newName string) (*project.Project, error)
	Delete(ctx context.Context, ref string) (*project.Project, error)
	Select(ctx context.Context, ref string) (*project.Project, error)
	Current(ctx context.Context) (*project.Project, error)
	List(ctx context.Context) ([]project.ProjectSummary, error)
}

// DefectService is the subset of error record operations the TUI drives.
type DefectService interface {
	Add(ctx context.Context, projectID string, fields defect.Fields) (*defect.Record, error)
	Edit(ctx context.Context, projectID string, index int, fields defect.Fields) (*defect.Record, error)
	Delete(ctx context.Context, projectID string, index int) (*defect.Deleted, error)
	Undo(ctx context.Context) (*defect.Deleted, error)
	Duplicate(ctx context.Context, projectID string, index int) (*defect.Record, error)
	List(ctx context.Context, projectID string) ([]defect.Record, error)
}

type focusArea int

const (
	focusSidebar focusArea = iota
	focusTable
	focusSearch
)

type modalKind int

const (
	modalNone modalKind = iota
	modalProjectAdd
	modalProjectRename
	modalProjectDelete
	modalErrorForm
)

type noticeExpiredMsg struct {
	seq int
}

// Model is the bubbletea model for the whole screen.
type Model struct {
	ctx       context.Context
	projects  ProjectService
	defects   DefectService
	exportDir string
	logger    *slog.Logger
	styles    styles

	width  int
	height int
	focus  focusArea

	summaries     []project.ProjectSummary
	sidebarCursor int
	current       *project.Project

	list      []defect.Record
	positions []int
	table     table.Model
	search    textinput.Model

	modal  modalKind
	prompt textinput.Model
	target project.ProjectSummary
	form   errorForm

	notice    string
	noticeSeq int
}

// New builds the model and loads the initial state.
func New(ctx context.Context, projects ProjectService, defects DefectService, exportDir string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search titles"

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.CharLimit = 120

	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m := Model{
		ctx:       ctx,
		projects:  projects,
		defects:   defects,
		exportDir: exportDir,
		logger:    logger,
		styles:    defaultStyles(),
		focus:     focusTable,
		table:     t,
		search:    search,
		prompt:    prompt,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if m.focus == focusSearch {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.toggleFocus()
			return m, nil
		case "/":
			m.focus = focusSearch
			m.table.Blur()
			return m, m.search.Focus()
		}
		if m.focus == focusSidebar {
			return m.updateSidebar(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusSidebar {
		m.focus = focusTable
		m.table.Focus()
		return
	}
	m.focus = focusSidebar
	m.table.Blur()
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusTable
		m.table.Focus()
		m.rebuildRows()
		return m, nil
	case "enter":
		m.search.Blur()
		m.focus = focusTable
		m.table.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.rebuildRows()
	return m, cmd
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case "down", "j":
		if m.sidebarCursor < len(m.summaries)-1 {
			m.sidebarCursor++
		}
	case "enter":
		if sum, ok := m.cursorProject(); ok {
			if _, err := m.projects.Select(m.ctx, sum.ID); err != nil {
				return m, m.fail("select project", err)
			}
			m.search.SetValue("")
			m.refresh()
			m.focus = focusTable
			m.table.Focus()
		}
	case "n":
		return m.openPrompt(modalProjectAdd, "")
	case "R":
		if sum, ok := m.cursorProject(); ok {
			m.target = sum
			return m.openPrompt(modalProjectRename, sum.Name)
		}
	case "X":
		if sum, ok := m.cursorProject(); ok {
			m.target = sum
			m.modal = modalProjectDelete
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		return m.openPrompt(modalProjectAdd, "")
	case "a":
		if m.current == nil {
			return m, m.setNotice("Create a project first")
		}
		m.form = newErrorForm(-1, nil)
		m.modal = modalErrorForm
		return m, textinput.Blink
	case "e", "enter":
		idx, ok := m.selectedIndex()
		if !ok {
			return m, nil
		}
		rec := m.list[idx]
		m.form = newErrorForm(idx, &rec)
		m.modal = modalErrorForm
		return m, textinput.Blink
	case "d":
		idx, ok := m.selectedIndex()
		if !ok {
			return m, nil
		}
		if _, err := m.defects.Delete(m.ctx, m.current.ID, idx); err != nil {
			return m, m.fail("delete error", err)
		}
		m.refresh()
		return m, m.setNotice(defect.NoticeDeleted)
	case "u":
		if _, err := m.defects.Undo(m.ctx); err != nil {
			return m, m.fail("undo delete", err)
		}
		m.refresh()
		return m, m.setNotice(defect.NoticeRestored)
	case "c":
		idx, ok := m.selectedIndex()
		if !ok {
			return m, nil
		}
		if _, err := m.defects.Duplicate(m.ctx, m.current.ID, idx); err != nil {
			return m, m.fail("duplicate error", err)
		}
		m.refresh()
		return m, m.setNotice(defect.NoticeDuplicated)
	case "x":
		if m.current == nil {
			return m, m.setNotice("Create a project first")
		}
		path, err := export.WriteFile(m.exportDir, m.current.Name, m.list)
		if err != nil {
			return m, m.fail("export errors", err)
		}
		return m, m.setNotice("Exported " + path)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) openPrompt(kind modalKind, value string) (tea.Model, tea.Cmd) {
	m.modal = kind
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	return m, m.prompt.Focus()
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalProjectDelete:
		m.modal = modalNone
		if msg.String() != "y" {
			return m, nil
		}
		if _, err := m.projects.Delete(m.ctx, m.target.ID); err != nil {
			return m, m.fail("delete project", err)
		}
		m.refresh()
		return m, m.setNotice(project.NoticeDeleted)

	case modalErrorForm:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			return m, nil
		case "ctrl+s":
			return m.submitForm()
		case "enter":
			if m.form.lastFocused() {
				return m.submitForm()
			}
			m.form = m.form.moveFocus(1)
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.prompt.Blur()
		return m, nil
	case "enter":
		return m.submitPrompt()
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	name := m.prompt.Value()
	var (
		err    error
		notice string
	)
	switch m.modal {
	case modalProjectAdd:
		_, err = m.projects.Add(m.ctx, name)
		notice = project.NoticeCreated
	case modalProjectRename:
		_, err = m.projects.Rename(m.ctx, m.target.ID, name)
		notice = project.NoticeRenamed
	}
	if err != nil {
		// Keep the prompt open so the name can be corrected.
		return m, m.fail("save project", err)
	}
	m.modal = modalNone
	m.prompt.Blur()
	m.refresh()
	return m, m.setNotice(notice)
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.modal = modalNone
		return m, m.setNotice("Create a project first")
	}
	fields := m.form.values()

	var (
		err    error
		notice string
	)
	if m.form.editing() {
		_, err = m.defects.Edit(m.ctx, m.current.ID, m.form.index, fields)
		notice = defect.NoticeEdited
	} else {
		_, err = m.defects.Add(m.ctx, m.current.ID, fields)
		notice = defect.NoticeCreated
	}
	if err != nil {
		return m, m.fail("save error", err)
	}
	m.modal = modalNone
	m.refresh()
	if !m.form.editing() {
		m.table.GotoBottom()
	}
	return m, m.setNotice(notice)
}

// fail logs err and shows it as a notice.
func (m *Model) fail(op string, err error) tea.Cmd {
	m.logger.Warn("tui action failed", "op", op, "error", err)
	msg := err.Error()
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return m.setNotice(msg)
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// refresh reloads projects and the current project's errors.
func (m *Model) refresh() {
	summaries, err := m.projects.List(m.ctx)
	if err != nil {
		m.logger.Warn("listing projects", "error", err)
	}
	m.summaries = summaries

	current, err := m.projects.Current(m.ctx)
	if err != nil {
		m.logger.Warn("loading current project", "error", err)
	}
	m.current = current

	m.list = nil
	if current != nil {
		list, err := m.defects.List(m.ctx, current.ID)
		if err != nil {
			m.logger.Warn("listing errors", "project", current.ID, "error", err)
		}
		m.list = list
		for i, sum := range summaries {
			if sum.ID == current.ID {
				m.sidebarCursor = i
			}
		}
	}
	if m.sidebarCursor >= len(m.summaries) {
		m.sidebarCursor = max(len(m.summaries)-1, 0)
	}
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	m.positions = defect.MatchPositions(m.list, m.search.Value())
	rows := make([]table.Row, 0, len(m.positions))
	for _, pos := range m.positions {
		rec := m.list[pos]
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", rec.ID),
			rec.Title,
			string(rec.Status),
			string(rec.Severity),
			string(rec.Environment),
			rec.AssignedTo,
			rec.ReportedAt,
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) resize() {
	mainWidth := m.width - sidebarWidth - 6
	if mainWidth < 40 {
		mainWidth = 40
	}
	m.table.SetColumns(tableColumns(mainWidth))
	m.table.SetWidth(mainWidth)
	// header, search, notice, detail pane and help
	if h := m.height - 12; h > 3 {
		m.table.SetHeight(h)
	}
	m.search.Width = mainWidth - 4
}

func (m Model) cursorProject() (project.ProjectSummary, bool) {
	if m.sidebarCursor < 0 || m.sidebarCursor >= len(m.summaries) {
		return project.ProjectSummary{}, false
	}
	return m.summaries[m.sidebarCursor], true
}

// selectedIndex maps the table cursor back to a position in the full list.
func (m Model) selectedIndex() (int, bool) {
	if m.current == nil || len(m.positions) == 0 {
		return 0, false
	}
	c := m.table.Cursor()
	if c < 0 || c >= len(m.positions) {
		return 0, false
	}
	return m.positions[c], true
}

func tableColumns(width int) []table.Column {
	fixed := 6 + 18 + 10 + 15 + 14 + 10
	title := width - fixed - 14
	if title < 16 {
		title = 16
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: title},
		{Title: "Status", Width: 18},
		{Title: "Severity", Width: 10},
		{Title: "Environment", Width: 15},
		{Title: "Assigned To", Width: 14},
		{Title: "Reported", Width: 10},
	}
}

func (m Model) View() string {
	sidebar := m.viewSidebar()

	var main string
	switch m.modal {
	case modalErrorForm:
		main = m.form.View(m.styles)
	case modalProjectAdd, modalProjectRename, modalProjectDelete:
		main = m.viewPrompt()
	default:
		main = m.viewMain()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.styles.main.Render(main))
	footer := m.styles.help.Render("tab focus · / search · n project · a add · e edit · d delete · u undo · c duplicate · x export · q quit")
	if m.notice != "" {
		footer = m.styles.notice.Render(m.notice) + "\n" + footer
	}
	return body + "\n" + footer
}

func (m Model) viewSidebar() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Projects"))
	b.WriteString("\n\n")
	if len(m.summaries) == 0 {
		b.WriteString(m.styles.muted.Render("none yet, press n"))
	}
	for i, sum := range m.summaries {
		line := fmt.Sprintf("%s (%d)", sum.Name, sum.ErrorCount)
		style := m.styles.item
		if sum.Current {
			style = m.styles.itemCurrent
		}
		if m.focus == focusSidebar && i == m.sidebarCursor {
			style = style.Inherit(m.styles.itemCursor)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	box := m.styles.sidebar
	if m.focus == focusSidebar {
		box = m.styles.sidebarFocus
	}
	return box.Width(sidebarWidth).Render(b.String())
}

func (m Model) viewMain() string {
	if m.current == nil {
		return m.styles.muted.Render("No project selected. Press n to create one.")
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.current.Name))
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("   %d errors   DRE %.2f%%", len(m.list), defect.DefectRemovalEfficiency(m.list))))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.viewDetail())
	return b.String()
}

func (m Model) viewDetail() string {
	idx, ok := m.selectedIndex()
	if !ok {
		if len(m.list) == 0 {
			return m.styles.muted.Render("No errors. Press a to add one.")
		}
		return m.styles.muted.Render("No errors match the search.")
	}
	rec := m.list[idx]
	return fmt.Sprintf("%s %s  reported by %s\n%s %s\n%s %s",
		statusBadge(rec.Status),
		m.styles.detailHeading.Render(rec.Title),
		rec.ReportedBy,
		m.styles.muted.Render("current: "), rec.CurrentBehavior,
		m.styles.muted.Render("expected:"), rec.ExpectedBehavior,
	)
}

func (m Model) viewPrompt() string {
	var b strings.Builder
	switch m.modal {
	case modalProjectAdd:
		b.WriteString(m.styles.title.Render("New project"))
	case modalProjectRename:
		b.WriteString(m.styles.title.Render("Rename " + m.target.Name))
	case modalProjectDelete:
		b.WriteString(m.styles.title.Render("Delete " + m.target.Name + "?"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("All %d errors in it will be removed. Press y to confirm.", m.target.ErrorCount))
		return m.styles.modal.Render(b.String())
	}
	b.WriteString("\n\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.help.Render("enter save · esc cancel"))
	return m.styles.modal.Render(b.String())
}

// Run starts the program on the terminal and blocks until it exits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
