// Package export renders error lists as CSV files and terminal tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rpggio/bugtrail/internal/domain/defect"
)

// NoticeExported is shown after a successful export.
const NoticeExported = "Errors exported"

// FileName is the default export file name for a project.
func FileName(projectName string) string {
	return projectName + "_errors.csv"
}

// WriteCSV writes list as RFC 4180 CSV. The header row is defect.FieldNames
// and each record is one row in list order.
func WriteCSV(w io.Writer, list []defect.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(defect.FieldNames); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range list {
		if err := cw.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("writing csv row %d: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteFile exports list to dir/<projectName>_errors.csv and returns the path.
func WriteFile(dir, projectName string, list []defect.Record) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, sanitize(FileName(projectName)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := WriteCSV(f, list); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func csvRow(rec defect.Record) []string {
	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.Title,
		rec.AssignedTo,
		rec.ReportedBy,
		rec.ReportedAt,
		string(rec.Status),
		string(rec.Severity),
		string(rec.Environment),
		rec.CurrentBehavior,
		rec.ExpectedBehavior,
	}
}

// sanitize keeps a project name from escaping the export directory.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}
