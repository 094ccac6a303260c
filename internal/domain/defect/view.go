package defect

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterBySearch keeps records whose title contains query, ignoring case. An
// empty query returns list itself.
func FilterBySearch(list []Record, query string) []Record {
	if query == "" {
		return list
	}
	needle := strings.ToLower(query)
	out := make([]Record, 0, len(list))
	for _, rec := range list {
		if strings.Contains(strings.ToLower(rec.Title), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// MatchPositions returns the list positions of the records FilterBySearch
// would keep, so a filtered row can be mapped back to its store index.
func MatchPositions(list []Record, query string) []int {
	needle := strings.ToLower(query)
	out := make([]int, 0, len(list))
	for i, rec := range list {
		if needle == "" || strings.Contains(strings.ToLower(rec.Title), needle) {
			out = append(out, i)
		}
	}
	return out
}

// DefectRemovalEfficiency is the percentage of records caught in
// pre-production, rounded to two decimals. It is 0 for an empty list.
func DefectRemovalEfficiency(list []Record) float64 {
	if len(list) == 0 {
		return 0
	}
	caught := 0
	for _, rec := range list {
		if rec.Environment == EnvPreProduction {
			caught++
		}
	}
	pct := 100 * float64(caught) / float64(len(list))
	return math.Round(pct*100) / 100
}

// StatusColor maps a status to a badge color name.
func StatusColor(status Status) string {
	switch status {
	case StatusNotStarted:
		return "failure"
	case StatusInProgress:
		return "warning"
	case StatusCompleted:
		return "success"
	default:
		return ""
	}
}

// Stats summarizes a list of records.
type Stats struct {
	Total         int                 `json:"total"`
	Open          int                 `json:"open"`
	ByStatus      map[Status]int      `json:"by_status"`
	BySeverity    map[Severity]int    `json:"by_severity"`
	ByEnvironment map[Environment]int `json:"by_environment"`
	DRE           float64             `json:"dre"`
}

// Summarize counts records per status, severity and environment.
func Summarize(list []Record) Stats {
	st := Stats{
		Total:         len(list),
		ByStatus:      make(map[Status]int),
		BySeverity:    make(map[Severity]int),
		ByEnvironment: make(map[Environment]int),
		DRE:           DefectRemovalEfficiency(list),
	}
	for _, rec := range list {
		st.ByStatus[rec.Status]++
		st.BySeverity[rec.Severity]++
		st.ByEnvironment[rec.Environment]++
		if rec.Status != StatusCompleted {
			st.Open++
		}
	}
	return st
}

// Filter is a compiled boolean expression over record fields, for example
// `severity == "High" && environment == "production"`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles expression against the record field names.
func CompileFilter(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: expression must not be empty", ErrInvalidFilter)
	}
	program, err := expr.Compile(expression, expr.Env(recordEnv(Record{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &Filter{source: expression, program: program}, nil
}

// Match reports whether rec satisfies the filter.
func (f *Filter) Match(rec Record) (bool, error) {
	out, err := expr.Run(f.program, recordEnv(rec))
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// FilterByExpr keeps the records matching expression. An empty expression
// returns list itself.
func FilterByExpr(list []Record, expression string) ([]Record, error) {
	if strings.TrimSpace(expression) == "" {
		return list, nil
	}
	f, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(list))
	for _, rec := range list {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func recordEnv(rec Record) map[string]any {
	return map[string]any{
		"id":               rec.ID,
		"title":            rec.Title,
		"assignedTo":       rec.AssignedTo,
		"reportedBy":       rec.ReportedBy,
		"reportedAt":       rec.ReportedAt,
		"status":           string(rec.Status),
		"severity":         string(rec.Severity),
		"environment":      string(rec.Environment),
		"currentBehavior":  rec.CurrentBehavior,
		"expectedBehavior": rec.ExpectedBehavior,
	}
}
