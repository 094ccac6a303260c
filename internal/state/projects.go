package state

import (
	"context"

	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/repository"
	"github.com/rpggio/bugtrail/internal/storage"
)

// Create appends proj and makes it the current project.
func (s *Store) Create(ctx context.Context, proj *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.projectByName(proj.Name) >= 0 || s.state.projectIndex(proj.ID) >= 0 {
		return repository.ErrConflict
	}

	next := s.state.clone()
	next.Projects = append(next.Projects, *proj)
	next.CurrentProject = proj.ID
	return s.commit(ctx, next, storage.KeyProjects, storage.KeyCurrentProject)
}

// Get returns the project with id.
func (s *Store) Get(_ context.Context, id string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.projectIndex(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	proj := s.state.Projects[i]
	return &proj, nil
}

// FindByName returns the project called name.
func (s *Store) FindByName(_ context.Context, name string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.projectByName(name)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	proj := s.state.Projects[i]
	return &proj, nil
}

// List returns every project in order with error counts and DRE.
func (s *Store) List(_ context.Context) ([]project.ProjectSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]project.ProjectSummary, 0, len(s.state.Projects))
	for _, p := range s.state.Projects {
		list := s.state.Errors[p.ID]
		open := 0
		for _, rec := range list {
			if rec.Status != defect.StatusCompleted {
				open++
			}
		}
		summaries = append(summaries, project.ProjectSummary{
			ID:         p.ID,
			Name:       p.Name,
			Current:    p.ID == s.state.CurrentProject,
			ErrorCount: len(list),
			OpenErrors: open,
			DRE:        defect.DefectRemovalEfficiency(list),
		})
	}
	return summaries, nil
}

// Rename changes the display name of project id in place.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.projectIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if j := s.state.projectByName(name); j >= 0 && j != i {
		return repository.ErrConflict
	}

	next := s.state.clone()
	next.Projects[i].Name = name
	return s.commit(ctx, next, storage.KeyProjects)
}

// Delete removes project id with its error list, its counter and any pending
// undo that belongs to it.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.projectIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}

	next := s.state.clone()
	next.Projects = append(next.Projects[:i], next.Projects[i+1:]...)
	delete(next.Errors, id)
	delete(next.Counters, id)
	if next.CurrentProject == id {
		next.CurrentProject = ""
	}
	if next.LastDeleted != nil && next.LastDeleted.ProjectID == id {
		next.LastDeleted = nil
	}
	return s.commit(ctx, next,
		storage.KeyErrors,
		storage.KeyProjectIDs,
		storage.KeyProjects,
		storage.KeyCurrentProject,
		storage.KeyLastDeleted,
	)
}

// Current returns the selected project.
func (s *Store) Current(_ context.Context) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.projectIndex(s.state.CurrentProject)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	proj := s.state.Projects[i]
	return &proj, nil
}

// SetCurrent selects project id; an empty id clears the selection.
func (s *Store) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.state.projectIndex(id) < 0 {
		return repository.ErrNotFound
	}
	if s.state.CurrentProject == id {
		return nil
	}

	next := s.state.clone()
	next.CurrentProject = id
	return s.commit(ctx, next, storage.KeyCurrentProject)
}
