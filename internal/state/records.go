package state

import (
	"context"

	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/repository"
	"github.com/rpggio/bugtrail/internal/storage"
)

// Records adapts the Store to defect.Repository. It is a separate type
// because both repositories define List.
type Records struct {
	s *Store
}

// Records returns the defect.Repository view of the store.
func (s *Store) Records() *Records {
	return &Records{s: s}
}

// List returns a copy of the project's error list; a project without one has
// an empty list.
func (r *Records) List(_ context.Context, projectID string) ([]defect.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.projectIndex(projectID) < 0 {
		return nil, repository.ErrNotFound
	}
	return append([]defect.Record{}, r.s.state.Errors[projectID]...), nil
}

// NextID returns the project's counter (1 when unset) and stores counter+1.
// The counter never trails the largest id in the list, so a foreign or
// damaged counter cannot hand out a used id.
func (r *Records) NextID(ctx context.Context, projectID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.projectIndex(projectID) < 0 {
		return 0, repository.ErrNotFound
	}

	id := r.s.state.Counters[projectID]
	if id < 1 {
		id = 1
	}
	for _, rec := range r.s.state.Errors[projectID] {
		if rec.ID >= id {
			id = rec.ID + 1
		}
	}

	next := r.s.state.clone()
	next.Counters[projectID] = id + 1
	if err := r.s.commit(ctx, next, storage.KeyProjectIDs); err != nil {
		return 0, err
	}
	return id, nil
}

// Append adds rec to the end of the project's list.
func (r *Records) Append(ctx context.Context, projectID string, rec defect.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.projectIndex(projectID) < 0 {
		return repository.ErrNotFound
	}
	list := r.s.state.Errors[projectID]
	return r.insertLocked(ctx, projectID, len(list), rec)
}

// Insert places rec at index.
func (r *Records) Insert(ctx context.Context, projectID string, index int, rec defect.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.projectIndex(projectID) < 0 {
		return repository.ErrNotFound
	}
	return r.insertLocked(ctx, projectID, index, rec)
}

func (r *Records) insertLocked(ctx context.Context, projectID string, index int, rec defect.Record) error {
	list := r.s.state.Errors[projectID]
	if index < 0 || index > len(list) {
		return repository.ErrOutOfRange
	}
	if indexOfID(list, rec.ID) >= 0 {
		return repository.ErrConflict
	}

	next := r.s.state.clone()
	updated := make([]defect.Record, 0, len(list)+1)
	updated = append(updated, list[:index]...)
	updated = append(updated, rec)
	updated = append(updated, list[index:]...)
	next.Errors[projectID] = updated
	return r.s.commit(ctx, next, storage.KeyErrors)
}

// Replace overwrites the record at index.
func (r *Records) Replace(ctx context.Context, projectID string, index int, rec defect.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.projectIndex(projectID) < 0 {
		return repository.ErrNotFound
	}
	list := r.s.state.Errors[projectID]
	if index < 0 || index >= len(list) {
		return repository.ErrOutOfRange
	}
	if j := indexOfID(list, rec.ID); j >= 0 && j != index {
		return repository.ErrConflict
	}

	next := r.s.state.clone()
	next.Errors[projectID][index] = rec
	return r.s.commit(ctx, next, storage.KeyErrors)
}

// Remove deletes and returns the record at index.
func (r *Records) Remove(ctx context.Context, projectID string, index int) (defect.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.projectIndex(projectID) < 0 {
		return defect.Record{}, repository.ErrNotFound
	}
	list := r.s.state.Errors[projectID]
	if index < 0 || index >= len(list) {
		return defect.Record{}, repository.ErrOutOfRange
	}

	removed := list[index]
	next := r.s.state.clone()
	next.Errors[projectID] = append(next.Errors[projectID][:index], next.Errors[projectID][index+1:]...)
	if err := r.s.commit(ctx, next, storage.KeyErrors); err != nil {
		return defect.Record{}, err
	}
	return removed, nil
}

// StashDeleted remembers deleted for a later undo; nil forgets it.
func (r *Records) StashDeleted(ctx context.Context, deleted *defect.Deleted) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := r.s.state.clone()
	if deleted != nil {
		d := *deleted
		next.LastDeleted = &d
	} else {
		next.LastDeleted = nil
	}
	return r.s.commit(ctx, next, storage.KeyLastDeleted)
}

// StashedDeleted returns the remembered deletion.
func (r *Records) StashedDeleted(_ context.Context) (*defect.Deleted, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.state.LastDeleted == nil {
		return nil, repository.ErrNotFound
	}
	d := *r.s.state.LastDeleted
	return &d, nil
}

func indexOfID(list []defect.Record, id int64) int {
	for i, rec := range list {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
