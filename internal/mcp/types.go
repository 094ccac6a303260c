package mcp

import (
	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
)

type NoParams struct{}

type CreateProjectParams struct {
	Name string `json:"name" jsonschema:"unique project name"`
}

type RenameProjectParams struct {
	Project string `json:"project" jsonschema:"project id or current name"`
	Name    string `json:"name" jsonschema:"new unique name"`
}

type ProjectRefParams struct {
	Project string `json:"project" jsonschema:"project id or name"`
}

type SelectProjectParams struct {
	Project string `json:"project,omitempty" jsonschema:"project id or name; empty clears the selection"`
}

type ListErrorsParams struct {
	Project string `json:"project,omitempty" jsonschema:"project id or name (default: current project)"`
	Search  string `json:"search,omitempty" jsonschema:"case-insensitive substring matched against titles"`
	Filter  string `json:"filter,omitempty" jsonschema:"boolean expression over record fields, e.g. severity == \"High\""`
}

type ErrorRefParams struct {
	Project string `json:"project,omitempty" jsonschema:"project id or name (default: current project)"`
	Index   int    `json:"index" jsonschema:"position of the error in the project's unfiltered list, from 0"`
}

type CreateErrorParams struct {
	Project          string `json:"project,omitempty" jsonschema:"project id or name (default: current project)"`
	Title            string `json:"title" jsonschema:"short summary"`
	AssignedTo       string `json:"assignedTo" jsonschema:"who is fixing it"`
	ReportedBy       string `json:"reportedBy" jsonschema:"who found it"`
	ReportedAt       string `json:"reportedAt,omitempty" jsonschema:"date reported as M/D/YYYY (default: today on create, unchanged on edit)"`
	Status           string `json:"status" jsonschema:"Not Started, In Progress, Ready For Testing or Completed"`
	Severity         string `json:"severity" jsonschema:"Low, Medium, High or Very High"`
	Environment      string `json:"environment" jsonschema:"pre-production or production"`
	CurrentBehavior  string `json:"currentBehavior" jsonschema:"what happens now"`
	ExpectedBehavior string `json:"expectedBehavior" jsonschema:"what should happen"`
}

type EditErrorParams struct {
	Project          string `json:"project,omitempty" jsonschema:"project id or name (default: current project)"`
	Index            int    `json:"index" jsonschema:"position of the error in the project's unfiltered list, from 0"`
	Title            string `json:"title" jsonschema:"short summary"`
	AssignedTo       string `json:"assignedTo" jsonschema:"who is fixing it"`
	ReportedBy       string `json:"reportedBy" jsonschema:"who found it"`
	ReportedAt       string `json:"reportedAt,omitempty" jsonschema:"date reported as M/D/YYYY (default: today on create, unchanged on edit)"`
	Status           string `json:"status" jsonschema:"Not Started, In Progress, Ready For Testing or Completed"`
	Severity         string `json:"severity" jsonschema:"Low, Medium, High or Very High"`
	Environment      string `json:"environment" jsonschema:"pre-production or production"`
	CurrentBehavior  string `json:"currentBehavior" jsonschema:"what happens now"`
	ExpectedBehavior string `json:"expectedBehavior" jsonschema:"what should happen"`
}

type StatsParams struct {
	Project string `json:"project,omitempty" jsonschema:"project id or name (default: current project)"`
}

type ActivityParams struct {
	Project string `json:"project,omitempty" jsonschema:"project id or name; omit for all projects"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum entries (default 50)"`
}

type ExportParams struct {
	Project string `json:"project,omitempty" jsonschema:"project id or name (default: current project)"`
	Dir     string `json:"dir,omitempty" jsonschema:"directory to write into (default: configured export dir)"`
}

type ProjectView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProjectListResult struct {
	Projects         []project.ProjectSummary `json:"projects"`
	CurrentProjectID string                   `json:"current_project_id,omitempty"`
}

type ProjectResult struct {
	Project ProjectView `json:"project"`
	Notice  string      `json:"notice,omitempty"`
}

type SelectResult struct {
	Project *ProjectView `json:"project,omitempty"`
	Notice  string       `json:"notice,omitempty"`
}

// ErrorRow pairs a record with its position in the unfiltered list, which is
// the index every mutating tool expects.
type ErrorRow struct {
	Index  int           `json:"index"`
	Record defect.Record `json:"record"`
}

type ErrorListResult struct {
	Project ProjectView `json:"project"`
	Errors  []ErrorRow  `json:"errors"`
	Total   int         `json:"total"`
	DRE     float64     `json:"dre"`
}

type ErrorResult struct {
	Project ProjectView   `json:"project"`
	Index   int           `json:"index"`
	Record  defect.Record `json:"record"`
	Notice  string        `json:"notice,omitempty"`
}

type StatsResult struct {
	Project ProjectView  `json:"project"`
	Stats   defect.Stats `json:"stats"`
}

type ActivityResult struct {
	Entries []ActivityView `json:"entries"`
}

type ActivityView struct {
	ID        int64                 `json:"id"`
	ProjectID string                `json:"project_id"`
	RecordID  *int64                `json:"record_id,omitempty"`
	Type      activity.ActivityType `json:"type"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
	CreatedAt string                `json:"created_at"`
}

type ExportResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}
