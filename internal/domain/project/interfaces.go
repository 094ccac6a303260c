package project

import (
	"context"

	"github.com/rpggio/bugtrail/internal/domain/activity"
)

// Repository provides persistence for projects and the current selection.
type Repository interface {
	// Create appends proj and makes it current.
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	FindByName(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]ProjectSummary, error)
	Rename(ctx context.Context, id, name string) error
	// Delete removes the project together with its error list and id counter.
	Delete(ctx context.Context, id string) error
	Current(ctx context.Context) (*Project, error)
	// SetCurrent selects a project; an empty id clears the selection.
	SetCurrent(ctx context.Context, id string) error
}

// ActivityRepository logs project activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
