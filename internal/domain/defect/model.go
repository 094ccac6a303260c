package defect

// Status is the workflow state of an error record.
type Status string

const (
	StatusNotStarted      Status = "Not Started"
	StatusInProgress      Status = "In Progress"
	StatusReadyForTesting Status = "Ready For Testing"
	StatusCompleted       Status = "Completed"
)

// Severity grades how bad an error is.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityVeryHigh Severity = "Very High"
)

// Environment is where an error was caught.
type Environment string

const (
	EnvPreProduction Environment = "pre-production"
	EnvProduction    Environment = "production"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusReadyForTesting, StatusCompleted}

// Severities lists every severity from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityVeryHigh}

// Environments lists every environment.
var Environments = []Environment{EnvPreProduction, EnvProduction}

// Record is one reported defect. ID is unique within its project and is
// assigned from the project's counter; list order is insertion order.
type Record struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	AssignedTo       string      `json:"assignedTo"`
	ReportedBy       string      `json:"reportedBy"`
	ReportedAt       string      `json:"reportedAt"`
	Status           Status      `json:"status"`
	Severity         Severity    `json:"severity"`
	Environment      Environment `json:"environment"`
	CurrentBehavior  string      `json:"currentBehavior"`
	ExpectedBehavior string      `json:"expectedBehavior"`
}

// Fields are the user-editable parts of a Record.
type Fields struct {
	Title            string      `json:"title"`
	AssignedTo       string      `json:"assignedTo"`
	ReportedBy       string      `json:"reportedBy"`
	ReportedAt       string      `json:"reportedAt,omitempty"`
	Status           Status      `json:"status"`
	Severity         Severity    `json:"severity"`
	Environment      Environment `json:"environment"`
	CurrentBehavior  string      `json:"currentBehavior"`
	ExpectedBehavior string      `json:"expectedBehavior"`
}

// Fields returns the editable fields of r.
func (r Record) Fields() Fields {
	return Fields{
		Title:            r.Title,
		AssignedTo:       r.AssignedTo,
		ReportedBy:       r.ReportedBy,
		ReportedAt:       r.ReportedAt,
		Status:           r.Status,
		Severity:         r.Severity,
		Environment:      r.Environment,
		CurrentBehavior:  r.CurrentBehavior,
		ExpectedBehavior: r.ExpectedBehavior,
	}
}

func (f Fields) record(id int64) Record {
	return Record{
		ID:               id,
		Title:            f.Title,
		AssignedTo:       f.AssignedTo,
		ReportedBy:       f.ReportedBy,
		ReportedAt:       f.ReportedAt,
		Status:           f.Status,
		Severity:         f.Severity,
		Environment:      f.Environment,
		CurrentBehavior:  f.CurrentBehavior,
		ExpectedBehavior: f.ExpectedBehavior,
	}
}

// Deleted describes a removed record and where it sat, so it can be put back.
type Deleted struct {
	ProjectID string `json:"projectId"`
	Index     int    `json:"index"`
	Record    Record `json:"record"`
}

// FieldNames are the export column names, in column order.
var FieldNames = []string{
	"id",
	"title",
	"assignedTo",
	"reportedBy",
	"reportedAt",
	"status",
	"severity",
	"environment",
	"currentBehavior",
	"expectedBehavior",
}
