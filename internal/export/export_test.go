package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/export"
	"github.com/stretchr/testify/require"
)

func sampleList() []defect.Record {
	return []defect.Record{
		{
			ID: 1, Title: "Login button broken", AssignedTo: "dana", ReportedBy: "lee",
			ReportedAt: "3/7/2024", Status: defect.StatusNotStarted, Severity: defect.SeverityHigh,
			Environment: defect.EnvProduction, CurrentBehavior: "nothing happens", ExpectedBehavior: "logs in",
		},
		{
			ID: 4, Title: "Slow search", AssignedTo: "kim", ReportedBy: "lee",
			ReportedAt: "3/8/2024", Status: defect.StatusCompleted, Severity: defect.SeverityLow,
			Environment: defect.EnvPreProduction, CurrentBehavior: "takes 9s", ExpectedBehavior: "under 1s",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleList()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "id,title,assignedTo,reportedBy,reportedAt,status,severity,environment,currentBehavior,expectedBehavior", lines[0])
	require.Equal(t, "1,Login button broken,dana,lee,3/7/2024,Not Started,High,production,nothing happens,logs in", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "4,Slow search,"))
}

func TestWriteCSVRoundTripsSpecialCharacters(t *testing.T) {
	list := []defect.Record{{
		ID: 1, Title: "Login, then crash", AssignedTo: "dana", ReportedBy: "lee",
		ReportedAt: "3/7/2024", Status: defect.StatusNotStarted, Severity: defect.SeverityLow,
		Environment: defect.EnvProduction, CurrentBehavior: `shows "oops"`,
		ExpectedBehavior: "line one\nline two",
	}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, list))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, defect.FieldNames, rows[0])
	require.Equal(t, []string{
		"1", "Login, then crash", "dana", "lee", "3/7/2024",
		"Not Started", "Low", "production", `shows "oops"`, "line one\nline two",
	}, rows[1])
}

func TestWriteCSVEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))
	require.Equal(t, strings.Join(defect.FieldNames, ","), strings.TrimSpace(buf.String()))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := export.WriteFile(dir, "Web", sampleList())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "Web_errors.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Slow search")

	path, err = export.WriteFile(dir, "a/b", nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "a_b_errors.csv"), path)
}

func TestConsoleFormatterRender(t *testing.T) {
	var buf bytes.Buffer
	f := export.NewConsoleFormatter()
	f.EnableColors = false

	require.NoError(t, f.Render(&buf, "Web", sampleList()))

	out := buf.String()
	require.Contains(t, out, "Web")
	require.Contains(t, out, "Login button broken")
	require.Contains(t, out, "Not Started")
	require.Contains(t, out, "Errors: 2")
	require.Contains(t, out, "DRE: 50.00%")
}

func TestConsoleFormatterTruncatesTitle(t *testing.T) {
	var buf bytes.Buffer
	f := &export.ConsoleFormatter{MaxTitleWidth: 8}

	require.NoError(t, f.Render(&buf, "Web", sampleList()))
	require.Contains(t, buf.String(), "Login b…")
	require.NotContains(t, buf.String(), "Login button broken")
}

func TestConsoleFormatterRenderPositions(t *testing.T) {
	var buf bytes.Buffer
	f := &export.ConsoleFormatter{MaxTitleWidth: 40}

	require.NoError(t, f.RenderPositions(&buf, "Web", sampleList(), []int{1}))

	out := buf.String()
	require.Contains(t, out, "Slow search")
	require.NotContains(t, out, "Login button broken")
	require.Contains(t, out, "Showing 1 of 2 errors")
	require.Contains(t, out, "DRE: 50.00%")
}
