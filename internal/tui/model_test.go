package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rpggio/bugtrail/internal/app"
	"github.com/rpggio/bugtrail/internal/config"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Export.Dir = t.TempDir()

	a, err := app.Open(context.Background(), cfg, nil,
		app.WithDefectOptions(defect.WithClock(func() time.Time { return fixedNow })))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	m := New(context.Background(), a.Projects, a.Defects, cfg.Export.Dir, nil)
	m = update(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	return m, a
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func keys(m Model, s string) Model {
	for _, r := range s {
		m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(m Model, typ tea.KeyType) Model {
	return update(m, tea.KeyMsg{Type: typ})
}

func addProject(t *testing.T, m Model, name string) Model {
	t.Helper()
	m = keys(m, "n")
	require.Equal(t, modalProjectAdd, m.modal)
	m = keys(m, name)
	return key(m, tea.KeyEnter)
}

func addError(t *testing.T, m Model, title string) Model {
	t.Helper()
	m = keys(m, "a")
	require.Equal(t, modalErrorForm, m.modal)
	values := map[int]string{
		fieldTitle:            title,
		fieldAssignedTo:       "ana",
		fieldReportedBy:       "ben",
		fieldCurrentBehavior:  "crashes",
		fieldExpectedBehavior: "works",
	}
	for i := range m.form.fields {
		if i > 0 {
			m = key(m, tea.KeyTab)
		}
		m = keys(m, values[i])
	}
	m = key(m, tea.KeyCtrlS)
	require.Equal(t, modalNone, m.modal, m.notice)
	return m
}

func TestModel_EmptyState(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Nil(t, m.current)
	assert.Contains(t, m.View(), "No project selected")

	m = keys(m, "a")
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, "Create a project first", m.notice)
}

func TestModel_ProjectCreateAndDuplicateName(t *testing.T) {
	m, a := newTestModel(t)

	m = addProject(t, m, "Web")
	require.NotNil(t, m.current)
	assert.Equal(t, "Web", m.current.Name)
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, "Project created", m.notice)

	m = addProject(t, m, "Web")
	assert.Equal(t, modalProjectAdd, m.modal, "prompt stays open on a rejected name")
	assert.Equal(t, "Project must have unique name", m.notice)

	m = key(m, tea.KeyEsc)
	assert.Equal(t, modalNone, m.modal)

	summaries, err := a.Projects.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestModel_ErrorWorkflow(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")

	m = addError(t, m, "Login broken")
	require.Len(t, m.list, 1)
	assert.Equal(t, int64(1), m.list[0].ID)
	assert.Equal(t, "3/7/2024", m.list[0].ReportedAt)
	assert.Equal(t, defect.StatusNotStarted, m.list[0].Status)
	assert.Equal(t, "Error created", m.notice)

	m = keys(m, "c")
	require.Len(t, m.list, 2)
	assert.Equal(t, int64(2), m.list[1].ID)
	assert.Equal(t, "Login broken (copy)", m.list[1].Title)

	m = keys(m, "d")
	require.Len(t, m.list, 1)
	assert.Equal(t, "Error deleted", m.notice)

	m = keys(m, "u")
	require.Len(t, m.list, 2)
	assert.Equal(t, int64(1), m.list[0].ID, "undo puts the record back at its position")

	m = keys(m, "u")
	assert.Equal(t, "Nothing to undo", m.notice)
}

func TestModel_EditKeepsIDAndChangesStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")
	m = addError(t, m, "Login")

	m = keys(m, "e")
	require.Equal(t, modalErrorForm, m.modal)
	require.True(t, m.form.editing())
	m = keys(m, "!")
	for range fieldStatus {
		m = key(m, tea.KeyTab)
	}
	m = key(m, tea.KeyRight)
	m = key(m, tea.KeyCtrlS)

	require.Len(t, m.list, 1)
	assert.Equal(t, int64(1), m.list[0].ID)
	assert.Equal(t, "Login!", m.list[0].Title)
	assert.Equal(t, defect.StatusInProgress, m.list[0].Status)
	assert.Equal(t, "3/7/2024", m.list[0].ReportedAt)
	assert.Equal(t, "Error edited", m.notice)
}

func TestModel_FormDiscard(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")

	m = keys(m, "a")
	m = keys(m, "Draft")
	m = key(m, tea.KeyEsc)

	assert.Equal(t, modalNone, m.modal)
	assert.Empty(t, m.list)
}

func TestModel_EmptyTitleRejected(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")

	m = keys(m, "a")
	m = key(m, tea.KeyCtrlS)

	assert.Equal(t, modalErrorForm, m.modal, "form stays open on invalid input")
	assert.Empty(t, m.list)
	assert.Contains(t, m.notice, "title is required")
}

func TestModel_SearchMapsRowsToListPositions(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")
	m = addError(t, m, "Login")
	m = addError(t, m, "Logout")
	m = addError(t, m, "Signup")

	m = keys(m, "/")
	require.Equal(t, focusSearch, m.focus)
	m = keys(m, "SIGN")
	assert.Equal(t, []int{2}, m.positions)

	m = key(m, tea.KeyEnter)
	assert.Equal(t, focusTable, m.focus)

	idx, ok := m.selectedIndex()
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	m = keys(m, "d")
	require.Len(t, m.list, 2)
	assert.Equal(t, "Login", m.list[0].Title)
	assert.Equal(t, "Logout", m.list[1].Title)

	m = keys(m, "/")
	m = key(m, tea.KeyEsc)
	assert.Equal(t, []int{0, 1}, m.positions)
}

func TestModel_SidebarSelectRenameDelete(t *testing.T) {
	m, a := newTestModel(t)
	m = addProject(t, m, "Web")
	m = addError(t, m, "Login")
	m = addProject(t, m, "API")
	assert.Equal(t, "API", m.current.Name)
	assert.Empty(t, m.list)

	m = key(m, tea.KeyTab)
	require.Equal(t, focusSidebar, m.focus)
	m = keys(m, "k")
	m = key(m, tea.KeyEnter)
	require.NotNil(t, m.current)
	assert.Equal(t, "Web", m.current.Name)
	assert.Len(t, m.list, 1)

	m = key(m, tea.KeyTab)
	m = keys(m, "R")
	require.Equal(t, modalProjectRename, m.modal)
	m = key(m, tea.KeyBackspace)
	m = keys(m, "x")
	m = key(m, tea.KeyEnter)
	assert.Equal(t, "Wex", m.current.Name)
	assert.Len(t, m.list, 1, "renaming keeps the project's errors")

	m = keys(m, "X")
	require.Equal(t, modalProjectDelete, m.modal)
	m = keys(m, "n")
	assert.Equal(t, modalNone, m.modal)
	assert.NotNil(t, m.current)

	m = keys(m, "X")
	m = keys(m, "y")
	assert.Nil(t, m.current)
	assert.Empty(t, m.list)
	assert.Equal(t, "Project deleted", m.notice)

	summaries, err := a.Projects.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "API", summaries[0].Name)
}

func TestModel_Export(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")
	m = addError(t, m, "Login")

	m = keys(m, "x")

	path := filepath.Join(m.exportDir, "Web_errors.csv")
	assert.Equal(t, "Exported "+path, m.notice)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Login")
}

func TestModel_NoticeExpires(t *testing.T) {
	m, _ := newTestModel(t)
	m = addProject(t, m, "Web")
	require.NotEmpty(t, m.notice)

	stale := m.noticeSeq - 1
	m = update(m, noticeExpiredMsg{seq: stale})
	assert.NotEmpty(t, m.notice)

	m = update(m, noticeExpiredMsg{seq: m.noticeSeq})
	assert.Empty(t, m.notice)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
