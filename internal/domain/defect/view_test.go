package defect_test

import (
	"testing"

	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func records(envs ...defect.Environment) []defect.Record {
	out := make([]defect.Record, 0, len(envs))
	for i, env := range envs {
		out = append(out, defect.Record{ID: int64(i + 1), Environment: env})
	}
	return out
}

func TestDefectRemovalEfficiency(t *testing.T) {
	require.Equal(t, 0.0, defect.DefectRemovalEfficiency(nil))
	require.Equal(t, 25.0, defect.DefectRemovalEfficiency(records(
		defect.EnvPreProduction, defect.EnvProduction, defect.EnvProduction, defect.EnvProduction,
	)))
	require.Equal(t, 66.67, defect.DefectRemovalEfficiency(records(
		defect.EnvPreProduction, defect.EnvPreProduction, defect.EnvProduction,
	)))
	require.Equal(t, 100.0, defect.DefectRemovalEfficiency(records(defect.EnvPreProduction)))
}

func TestFilterBySearch(t *testing.T) {
	list := []defect.Record{
		{ID: 1, Title: "Login button broken"},
		{ID: 2, Title: "Crash on logout"},
		{ID: 3, Title: "Slow dashboard"},
	}

	got := defect.FilterBySearch(list, "LOGIN")
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)

	require.Len(t, defect.FilterBySearch(list, "log"), 2)
	require.Equal(t, list, defect.FilterBySearch(list, ""))
	require.Empty(t, defect.FilterBySearch(list, "nothing"))

	require.Equal(t, []int{0, 1}, defect.MatchPositions(list, "LOG"))
	require.Equal(t, []int{0, 1, 2}, defect.MatchPositions(list, ""))
}

func TestStatusColor(t *testing.T) {
	require.Equal(t, "failure", defect.StatusColor(defect.StatusNotStarted))
	require.Equal(t, "warning", defect.StatusColor(defect.StatusInProgress))
	require.Equal(t, "success", defect.StatusColor(defect.StatusCompleted))
	require.Equal(t, "", defect.StatusColor(defect.StatusReadyForTesting))
}

func TestSummarize(t *testing.T) {
	list := []defect.Record{
		{Status: defect.StatusCompleted, Severity: defect.SeverityLow, Environment: defect.EnvPreProduction},
		{Status: defect.StatusInProgress, Severity: defect.SeverityHigh, Environment: defect.EnvProduction},
		{Status: defect.StatusInProgress, Severity: defect.SeverityHigh, Environment: defect.EnvPreProduction},
	}

	st := defect.Summarize(list)
	require.Equal(t, 3, st.Total)
	require.Equal(t, 2, st.Open)
	require.Equal(t, 2, st.ByStatus[defect.StatusInProgress])
	require.Equal(t, 2, st.BySeverity[defect.SeverityHigh])
	require.Equal(t, 1, st.ByEnvironment[defect.EnvProduction])
	require.Equal(t, 66.67, st.DRE)
}

func TestFilterByExpr(t *testing.T) {
	list := []defect.Record{
		{ID: 1, Title: "Login", Severity: defect.SeverityHigh, Environment: defect.EnvProduction},
		{ID: 2, Title: "Logout", Severity: defect.SeverityLow, Environment: defect.EnvProduction},
		{ID: 3, Title: "Search", Severity: defect.SeverityHigh, Environment: defect.EnvPreProduction},
	}

	got, err := defect.FilterByExpr(list, `severity == "High" && environment == "production"`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)

	got, err = defect.FilterByExpr(list, `id > 1 && title startsWith "Log"`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(2), got[0].ID)

	got, err = defect.FilterByExpr(list, " ")
	require.NoError(t, err)
	require.Equal(t, list, got)

	_, err = defect.FilterByExpr(list, `severity ==`)
	require.ErrorIs(t, err, defect.ErrInvalidFilter)

	_, err = defect.CompileFilter(`title`)
	require.ErrorIs(t, err, defect.ErrInvalidFilter)
}

func TestParseEnums(t *testing.T) {
	s, err := defect.ParseStatus("ready-for-testing")
	require.NoError(t, err)
	require.Equal(t, defect.StatusReadyForTesting, s)

	sev, err := defect.ParseSeverity("very_high")
	require.NoError(t, err)
	require.Equal(t, defect.SeverityVeryHigh, sev)

	env, err := defect.ParseEnvironment("PreProduction")
	require.NoError(t, err)
	require.Equal(t, defect.EnvPreProduction, env)

	_, err = defect.ParseStatus("done")
	require.ErrorIs(t, err, defect.ErrInvalidInput)
}
