// Package state holds the tracker's in-memory AppState and mirrors it to the
// storage port. It implements the project and defect repositories: every
// mutation is applied to a copy, the affected keys are written in one backend
// Put, and only then does the copy replace the live state.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/storage"
)

// AppState is the whole persisted tracker state. Errors and Counters are
// keyed by project ID.
type AppState struct {
	Projects       []project.Project
	Errors         map[string][]defect.Record
	CurrentProject string
	Counters       map[string]int64
	LastDeleted    *defect.Deleted
}

func (a AppState) clone() AppState {
	out := AppState{
		Projects:       append([]project.Project(nil), a.Projects...),
		Errors:         make(map[string][]defect.Record, len(a.Errors)),
		CurrentProject: a.CurrentProject,
		Counters:       make(map[string]int64, len(a.Counters)),
	}
	for id, list := range a.Errors {
		out.Errors[id] = append([]defect.Record(nil), list...)
	}
	for id, n := range a.Counters {
		out.Counters[id] = n
	}
	if a.LastDeleted != nil {
		d := *a.LastDeleted
		out.LastDeleted = &d
	}
	return out
}

func (a AppState) projectIndex(id string) int {
	for i, p := range a.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (a AppState) projectByName(name string) int {
	for i, p := range a.Projects {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Store owns the live AppState.
type Store struct {
	mu     sync.Mutex
	kv     *storage.Store
	logger *slog.Logger
	state  AppState
}

// Open hydrates a Store from kv.
func Open(ctx context.Context, kv *storage.Store, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{kv: kv, logger: logger}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards the live state and hydrates it again from storage.
func (s *Store) Reload(ctx context.Context) error {
	st, migrated, err := hydrate(ctx, s.kv, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if migrated {
		s.logger.Info("migrating name-keyed state to project ids", "projects", len(st.Projects))
		if err := s.persist(ctx, st, allKeys...); err != nil {
			return fmt.Errorf("saving migrated state: %w", err)
		}
	}
	s.state = st
	return nil
}

// Snapshot returns a deep copy of the live state.
func (s *Store) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Import replaces stored state with raw JSON values, for example a browser
// localStorage dump, and rehydrates. Unknown keys and invalid JSON are
// skipped; known keys the dump does not carry are cleared.
func (s *Store) Import(ctx context.Context, values map[string]json.RawMessage) ([]string, error) {
	accepted := make(map[string]any)
	var keys []string
	for _, key := range allKeys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		if !json.Valid(raw) {
			s.logger.Warn("skipping invalid imported value", "key", key)
			continue
		}
		accepted[key] = raw
		keys = append(keys, key)
	}
	if len(accepted) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	err := s.importValues(ctx, accepted)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("importing state: %w", err)
	}
	return keys, s.Reload(ctx)
}

// importValues writes accepted and deletes the stale keys. Callers hold s.mu.
func (s *Store) importValues(ctx context.Context, accepted map[string]any) error {
	if err := s.kv.SaveMany(ctx, accepted); err != nil {
		return err
	}
	for _, key := range allKeys {
		if _, ok := accepted[key]; ok {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

var allKeys = []string{
	storage.KeyProjects,
	storage.KeyErrors,
	storage.KeyCurrentProject,
	storage.KeyProjectIDs,
	storage.KeyLastDeleted,
}

// commit persists keys from next and makes next live. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next AppState, keys ...string) error {
	if err := s.persist(ctx, next, keys...); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) persist(ctx context.Context, st AppState, keys ...string) error {
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		switch key {
		case storage.KeyProjects:
			projects := st.Projects
			if projects == nil {
				projects = []project.Project{}
			}
			values[key] = projects
		case storage.KeyErrors:
			values[key] = st.Errors
		case storage.KeyCurrentProject:
			var current *string
			if st.CurrentProject != "" {
				current = &st.CurrentProject
			}
			values[key] = current
		case storage.KeyProjectIDs:
			values[key] = st.Counters
		case storage.KeyLastDeleted:
			values[key] = st.LastDeleted
		}
	}
	return s.kv.SaveMany(ctx, values)
}
