package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fresh database and export dir.
func setupEnv(t *testing.T) (exportDir string) {
	t.Helper()
	dir := t.TempDir()
	exportDir = filepath.Join(dir, "exports")
	t.Setenv("BUGTRAIL_CONFIG_PATH", "")
	t.Setenv("BUGTRAIL_LOG_PATH", "")
	t.Setenv("BUGTRAIL_LOG_LEVEL", "")
	t.Setenv("BUGTRAIL_DB_PATH", filepath.Join(dir, "bugtrail.db"))
	t.Setenv("BUGTRAIL_EXPORT_DIR", exportDir)
	return exportDir
}

// run executes one CLI invocation and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "bugtrail %s\n%s", strings.Join(args, " "), out)
	return out
}

func addErrorArgs(title string, extra ...string) []string {
	args := []string{
		"error", "add",
		"--title", title,
		"--assigned-to", "dana",
		"--reported-by", "lee",
		"--current", "Nothing happens",
		"--expected", "It works",
	}
	return append(args, extra...)
}

func listJSON(t *testing.T, args ...string) []indexedRecord {
	t.Helper()
	out := mustRun(t, append([]string{"error", "list", "--json"}, args...)...)
	var rows []indexedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func TestCLI_ErrorWorkflow(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "project", "add", "Web")
	assert.Contains(t, out, "Project created: Web")

	out = mustRun(t, addErrorArgs("Login button broken", "--severity", "very high", "--environment", "production")...)
	assert.Contains(t, out, "Error created: id 1")
	mustRun(t, addErrorArgs("Slow search")...)

	rows := listJSON(t)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Record.ID)
	assert.Equal(t, defect.SeverityVeryHigh, rows[0].Record.Severity)
	assert.Equal(t, defect.EnvProduction, rows[0].Record.Environment)
	assert.Equal(t, defect.StatusNotStarted, rows[1].Record.Status)
	assert.NotEmpty(t, rows[1].Record.ReportedAt)

	rows = listJSON(t, "--search", "SLOW")
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Index)

	rows = listJSON(t, "--filter", `environment == "production"`)
	require.Len(t, rows, 1)
	assert.Equal(t, "Login button broken", rows[0].Record.Title)

	out = mustRun(t, "error", "list", "--search", "slow", "--no-color")
	assert.Contains(t, out, "Slow search")
	assert.Contains(t, out, "Showing 1 of 2 errors")

	mustRun(t, "error", "edit", "0", "--status", "in progress")
	out = mustRun(t, "error", "show", "0", "--json")
	var shown indexedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, defect.StatusInProgress, shown.Record.Status)
	assert.Equal(t, "Login button broken", shown.Record.Title, "edit keeps unset fields")
	assert.Equal(t, int64(1), shown.Record.ID)

	out = mustRun(t, "error", "delete", "0")
	assert.Contains(t, out, "Error deleted")
	require.Len(t, listJSON(t), 1)

	out = mustRun(t, "error", "undo")
	assert.Contains(t, out, "Error restored")
	rows = listJSON(t)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Record.ID)

	_, err := run(t, "error", "undo")
	assert.ErrorIs(t, err, defect.ErrNothingToUndo)

	mustRun(t, "error", "duplicate", "1")
	rows = listJSON(t)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[2].Record.ID)
	assert.Equal(t, "Slow search (copy)", rows[2].Record.Title)

	out = mustRun(t, "stats", "--json")
	var stats defect.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[defect.StatusInProgress])
}

func TestCLI_Errors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "error", "list")
	assert.ErrorIs(t, err, defect.ErrNoProject)

	mustRun(t, "project", "add", "Web")
	_, err = run(t, "project", "add", "Web")
	assert.ErrorIs(t, err, project.ErrDuplicateName)

	_, err = run(t, "project", "add", "  ")
	assert.ErrorIs(t, err, project.ErrInvalidName)

	_, err = run(t, "error", "show", "0")
	assert.ErrorIs(t, err, defect.ErrIndexOutOfRange)

	_, err = run(t, "error", "show", "first")
	assert.ErrorContains(t, err, "invalid index")

	_, err = run(t, "error", "add", "--title", "Only a title")
	assert.ErrorIs(t, err, defect.ErrInvalidInput)

	_, err = run(t, addErrorArgs("Bad", "--status", "Done")...)
	assert.ErrorIs(t, err, defect.ErrInvalidInput)

	_, err = run(t, "error", "list", "--filter", "title ==")
	assert.ErrorIs(t, err, defect.ErrInvalidFilter)

	assert.Empty(t, listJSON(t))
}

func TestCLI_Projects(t *testing.T) {
	setupEnv(t)

	mustRun(t, "project", "add", "Web")
	mustRun(t, addErrorArgs("Login")...)
	mustRun(t, "project", "add", "API")

	// Errors follow the project id across a rename.
	mustRun(t, "project", "rename", "Web", "Frontend")
	rows := listJSON(t, "--project", "Frontend")
	require.Len(t, rows, 1)

	out := mustRun(t, "project", "list", "--json")
	var list []project.ProjectSummary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Frontend", list[0].Name)
	assert.Equal(t, 1, list[0].ErrorCount)
	assert.True(t, list[1].Current)

	mustRun(t, "project", "select", "Frontend")
	require.Len(t, listJSON(t), 1)

	out = mustRun(t, "project", "delete", "Frontend")
	assert.Contains(t, out, "Project deleted")
	_, err := run(t, "error", "list")
	assert.ErrorIs(t, err, defect.ErrNoProject)

	mustRun(t, "project", "select", "API")
	out = mustRun(t, "project", "select", "--clear")
	assert.Contains(t, out, "No project selected")

	_, err = run(t, "project", "select")
	assert.Error(t, err)
}

func TestCLI_Export(t *testing.T) {
	exportDir := setupEnv(t)

	mustRun(t, "project", "add", "Web")
	mustRun(t, addErrorArgs("Login")...)

	out := mustRun(t, "export")
	path := filepath.Join(exportDir, "Web_errors.csv")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(defect.FieldNames, ",")+"\n"))

	out = mustRun(t, "export", "--stdout")
	assert.Equal(t, string(data), out)

	out = mustRun(t, "activity", "--json", "--limit", "1")
	var entries []activity.ActivityEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, activity.TypeExported, entries[0].ActivityType)
	assert.Equal(t, path, entries[0].Details)
}

func TestCLI_ImportBrowserDump(t *testing.T) {
	setupEnv(t)

	record := `{"id":1,"title":"Login","assignedTo":"dana","reportedBy":"lee","reportedAt":"3/7/2024",` +
		`"status":"Completed","severity":"Low","environment":"pre-production",` +
		`"currentBehavior":"a","expectedBehavior":"b"}`
	dump := map[string]string{
		"project":        `["Web","API"]`,
		"errors":         `{"Web":[` + record + `]}`,
		"currentProject": `"Web"`,
		"projectIds":     `{"Web":2}`,
		"theme":          `"dark"`,
	}
	data, err := json.Marshal(dump)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(file, data, 0o644))

	out := mustRun(t, "import", file)
	assert.Contains(t, out, "2 projects")

	rows := listJSON(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Login", rows[0].Record.Title)

	out = mustRun(t, addErrorArgs("Next")...)
	assert.Contains(t, out, "id 2")

	_, err = run(t, "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCLI_DumpImportRoundTrip(t *testing.T) {
	setupEnv(t)

	mustRun(t, "project", "add", "Web")
	mustRun(t, addErrorArgs("Login")...)
	mustRun(t, "error", "duplicate", "0")
	source := os.Getenv("BUGTRAIL_DB_PATH")

	for _, flag := range []string{"", "--raw"} {
		t.Setenv("BUGTRAIL_DB_PATH", source)
		args := []string{"dump"}
		if flag != "" {
			args = append(args, flag)
		}
		dump := mustRun(t, args...)
		file := filepath.Join(t.TempDir(), "dump.json")
		require.NoError(t, os.WriteFile(file, []byte(dump), 0o644))

		// Import into a fresh database.
		t.Setenv("BUGTRAIL_DB_PATH", filepath.Join(t.TempDir(), "copy.db"))
		mustRun(t, "import", file)

		rows := listJSON(t)
		require.Len(t, rows, 2, "dump %q", flag)
		assert.Equal(t, "Login (copy)", rows[1].Record.Title)
		out := mustRun(t, addErrorArgs("Next")...)
		assert.Contains(t, out, "id 3")
	}
}

func TestCLI_Version(t *testing.T) {
	out := mustRun(t, "version")
	assert.Equal(t, "bugtrail version: dev\n", out)
}

func TestDecodeDump(t *testing.T) {
	values, err := decodeDump([]byte(`{"currentProject":"\"Web\"","projectIds":{"Web":3},"project":"Web"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `"Web"`, string(values["currentProject"]))
	assert.JSONEq(t, `{"Web":3}`, string(values["projectIds"]))
	// A bare string that is not itself JSON stays a JSON string.
	assert.JSONEq(t, `"Web"`, string(values["project"]))

	_, err = decodeDump([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestDecodeDumpKeepsScalarStrings(t *testing.T) {
	values, err := decodeDump([]byte(`{"currentProject":"123","lastDeleted":"true","project":" [\"Web\"] "}`))
	require.NoError(t, err)
	assert.Equal(t, `"123"`, string(values["currentProject"]))
	assert.Equal(t, `"true"`, string(values["lastDeleted"]))
	assert.JSONEq(t, `["Web"]`, string(values["project"]))
}
