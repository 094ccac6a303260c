package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new project service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// ValidateName trims name and rejects empty names.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// Add creates a project and makes it the current one.
func (s *Service) Add(ctx context.Context, name string) (*Project, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking project name: %w", err)
	}

	proj := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Debug("project created", "id", proj.ID, "name", proj.Name)
	s.record(ctx, proj.ID, activity.TypeProjectCreated, NoticeCreated, proj.Name)
	return proj, nil
}

// Rename changes a project's display name. Error lists and id counters are
// keyed by project ID, so nothing else moves.
func (s *Service) Rename(ctx context.Context, ref, newName string) (*Project, error) {
	newName, err := ValidateName(newName)
	if err != nil {
		return nil, err
	}

	proj, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if proj.Name == newName {
		return proj, nil
	}

	if err := s.repo.Rename(ctx, proj.ID, newName); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrDuplicateName
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("renaming project: %w", err)
	}

	oldName := proj.Name
	proj.Name = newName
	s.record(ctx, proj.ID, activity.TypeProjectRenamed, NoticeRenamed, fmt.Sprintf("%s -> %s", oldName, newName))
	return proj, nil
}

// Delete removes a project and every error record filed under it.
func (s *Service) Delete(ctx context.Context, ref string) (*Project, error) {
	proj, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, proj.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("deleting project: %w", err)
	}

	s.record(ctx, proj.ID, activity.TypeProjectDeleted, NoticeDeleted, proj.Name)
	return proj, nil
}

// Select makes the referenced project current. An empty ref clears the
// selection.
func (s *Service) Select(ctx context.Context, ref string) (*Project, error) {
	if strings.TrimSpace(ref) == "" {
		if err := s.repo.SetCurrent(ctx, ""); err != nil {
			return nil, fmt.Errorf("clearing current project: %w", err)
		}
		return nil, nil
	}

	proj, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCurrent(ctx, proj.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("selecting project: %w", err)
	}
	s.record(ctx, proj.ID, activity.TypeProjectSelected, NoticeSelected, proj.Name)
	return proj, nil
}

// Get resolves ref as a project ID first and then as a name.
func (s *Service) Get(ctx context.Context, ref string) (*Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrProjectNotFound
	}

	proj, err := s.repo.Get(ctx, ref)
	if err == nil {
		return proj, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	proj, err = s.repo.FindByName(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// Current returns the selected project, or nil when none is selected.
func (s *Service) Current(ctx context.Context) (*Project, error) {
	proj, err := s.repo.Current(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting current project: %w", err)
	}
	return proj, nil
}

// List returns project summaries in sidebar order.
func (s *Service) List(ctx context.Context) ([]ProjectSummary, error) {
	return s.repo.List(ctx)
}

func (s *Service) record(ctx context.Context, projectID string, typ activity.ActivityType, summary, details string) {
	if s.activities == nil {
		return
	}
	_ = s.activities.Log(ctx, &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: typ,
		Summary:      summary,
		Details:      details,
	})
}
