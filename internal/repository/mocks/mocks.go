package mocks

import (
	"context"

	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) FindByName(ctx context.Context, name string) (*project.Project, error) {
	args := m.Called(ctx, name)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.ProjectSummary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Rename(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) Current(ctx context.Context) (*project.Project, error) {
	args := m.Called(ctx)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SetCurrent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DefectRepository is a mock for defect.Repository.
type DefectRepository struct {
	mock.Mock
}

func (m *DefectRepository) List(ctx context.Context, projectID string) ([]defect.Record, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]defect.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DefectRepository) NextID(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DefectRepository) Append(ctx context.Context, projectID string, rec defect.Record) error {
	args := m.Called(ctx, projectID, rec)
	return args.Error(0)
}

func (m *DefectRepository) Insert(ctx context.Context, projectID string, index int, rec defect.Record) error {
	args := m.Called(ctx, projectID, index, rec)
	return args.Error(0)
}

func (m *DefectRepository) Replace(ctx context.Context, projectID string, index int, rec defect.Record) error {
	args := m.Called(ctx, projectID, index, rec)
	return args.Error(0)
}

func (m *DefectRepository) Remove(ctx context.Context, projectID string, index int) (defect.Record, error) {
	args := m.Called(ctx, projectID, index)
	return args.Get(0).(defect.Record), args.Error(1)
}

func (m *DefectRepository) StashDeleted(ctx context.Context, deleted *defect.Deleted) error {
	args := m.Called(ctx, deleted)
	return args.Error(0)
}

func (m *DefectRepository) StashedDeleted(ctx context.Context) (*defect.Deleted, error) {
	args := m.Called(ctx)
	if deleted, ok := args.Get(0).(*defect.Deleted); ok {
		return deleted, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
