package project_test

import (
	"context"
	"testing"

	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/repository"
	"github.com/rpggio/bugtrail/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProjectService_AddCreatesCurrentProject(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	activities := &mocks.ActivityRepository{}
	repo.On("FindByName", ctx, "Web").Return((*project.Project)(nil), repository.ErrNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(p *project.Project) bool {
		return p.Name == "Web" && p.ID != ""
	})).Return(nil)
	activities.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeProjectCreated && e.Summary == project.NoticeCreated
	})).Return(nil)

	svc := project.NewService(repo, activities, nil)
	proj, err := svc.Add(ctx, "  Web ")
	require.NoError(t, err)
	require.Equal(t, "Web", proj.Name)
	require.NotEmpty(t, proj.ID)
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestProjectService_AddValidation(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	svc := project.NewService(repo, nil, nil)

	_, err := svc.Add(ctx, "   ")
	require.ErrorIs(t, err, project.ErrInvalidName)

	repo.On("FindByName", ctx, "Web").Return(&project.Project{ID: "p1", Name: "Web"}, nil)
	_, err = svc.Add(ctx, "Web")
	require.ErrorIs(t, err, project.ErrDuplicateName)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectService_AddConflictFromRepository(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("FindByName", ctx, "Web").Return((*project.Project)(nil), repository.ErrNotFound)
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)

	_, err := project.NewService(repo, nil, nil).Add(ctx, "Web")
	require.ErrorIs(t, err, project.ErrDuplicateName)
}

func TestProjectService_GetResolvesIDThenName(t *testing.T) {
	ctx := context.Background()
	web := &project.Project{ID: "p1", Name: "Web"}

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(web, nil)
	repo.On("Get", ctx, "Web").Return((*project.Project)(nil), repository.ErrNotFound)
	repo.On("FindByName", ctx, "Web").Return(web, nil)
	repo.On("Get", ctx, "API").Return((*project.Project)(nil), repository.ErrNotFound)
	repo.On("FindByName", ctx, "API").Return((*project.Project)(nil), repository.ErrNotFound)

	svc := project.NewService(repo, nil, nil)

	got, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, web, got)

	got, err = svc.Get(ctx, "Web")
	require.NoError(t, err)
	require.Equal(t, "p1", got.ID)

	_, err = svc.Get(ctx, "API")
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = svc.Get(ctx, "")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_Rename(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", Name: "Web"}, nil)
	repo.On("Rename", ctx, "p1", "Portal").Return(nil).Once()
	repo.On("Rename", ctx, "p1", "API").Return(repository.ErrConflict)

	svc := project.NewService(repo, nil, nil)

	proj, err := svc.Rename(ctx, "p1", "Portal")
	require.NoError(t, err)
	require.Equal(t, "Portal", proj.Name)

	_, err = svc.Rename(ctx, "p1", "API")
	require.ErrorIs(t, err, project.ErrDuplicateName)

	_, err = svc.Rename(ctx, "p1", "")
	require.ErrorIs(t, err, project.ErrInvalidName)
}

func TestProjectService_RenameSameNameIsNoop(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", Name: "Web"}, nil)

	proj, err := project.NewService(repo, nil, nil).Rename(ctx, "p1", "Web")
	require.NoError(t, err)
	require.Equal(t, "Web", proj.Name)
	repo.AssertNotCalled(t, "Rename", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", Name: "Web"}, nil)
	repo.On("Delete", ctx, "p1").Return(nil)

	proj, err := project.NewService(repo, nil, nil).Delete(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Web", proj.Name)
	repo.AssertExpectations(t)
}

func TestProjectService_Select(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", Name: "Web"}, nil)
	repo.On("SetCurrent", ctx, "p1").Return(nil)
	repo.On("SetCurrent", ctx, "").Return(nil)

	svc := project.NewService(repo, nil, nil)

	proj, err := svc.Select(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", proj.ID)

	proj, err = svc.Select(ctx, "")
	require.NoError(t, err)
	require.Nil(t, proj)
	repo.AssertExpectations(t)
}

func TestProjectService_CurrentNone(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Current", ctx).Return((*project.Project)(nil), repository.ErrNotFound)

	proj, err := project.NewService(repo, nil, nil).Current(ctx)
	require.NoError(t, err)
	require.Nil(t, proj)
}
