package defect

import (
	"context"

	"github.com/rpggio/bugtrail/internal/domain/activity"
)

// Repository provides persistence for per-project error lists. Positions are
// indexes into the project's list; a project with no list behaves as an empty
// one.
type Repository interface {
	List(ctx context.Context, projectID string) ([]Record, error)
	// NextID returns the project's next id and advances its counter.
	NextID(ctx context.Context, projectID string) (int64, error)
	Append(ctx context.Context, projectID string, rec Record) error
	// Insert places rec at index, shifting later records; index may equal the
	// list length.
	Insert(ctx context.Context, projectID string, index int, rec Record) error
	Replace(ctx context.Context, projectID string, index int, rec Record) error
	Remove(ctx context.Context, projectID string, index int) (Record, error)
	// StashDeleted remembers the last deletion for undo; nil clears it.
	StashDeleted(ctx context.Context, deleted *Deleted) error
	StashedDeleted(ctx context.Context) (*Deleted, error)
}

// ActivityRepository logs error record activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
