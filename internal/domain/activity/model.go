package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated  ActivityType = "project_created"
	TypeProjectRenamed  ActivityType = "project_renamed"
	TypeProjectDeleted  ActivityType = "project_deleted"
	TypeProjectSelected ActivityType = "project_selected"
	TypeErrorCreated    ActivityType = "error_created"
	TypeErrorEdited     ActivityType = "error_edited"
	TypeErrorDeleted    ActivityType = "error_deleted"
	TypeErrorRestored   ActivityType = "error_restored"
	TypeErrorDuplicated ActivityType = "error_duplicated"
	TypeExported        ActivityType = "exported"
)

// ActivityEntry represents an event in the activity log. Summary doubles as
// the short notice shown to the user after the action.
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id"`
	RecordID     *int64       `json:"record_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
