// Package storage is the persistence port for tracker state: named values are
// JSON-encoded and written to a key-value backend. There is no schema
// versioning; callers decide how to treat stored shapes they do not expect.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Keys under which tracker state is persisted.
const (
	KeyProjects       = "project"
	KeyErrors         = "errors"
	KeyCurrentProject = "currentProject"
	KeyProjectIDs     = "projectIds"
	KeyLastDeleted    = "lastDeleted"
)

// ErrNotFound is returned by a Backend when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Entry is a single encoded key-value pair.
type Entry struct {
	Key   string
	Value []byte
}

// Backend stores raw values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes all entries. Backends that support it apply them atomically.
	Put(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, key string) error
}

// Store serializes values to JSON on top of a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a Store over backend.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{backend: backend, logger: logger}
}

// Save encodes value and stores it under key.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	return s.SaveMany(ctx, map[string]any{key: value})
}

// SaveMany encodes every value and writes them in a single backend Put.
func (s *Store) SaveMany(ctx context.Context, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		data, err := json.Marshal(values[key])
		if err != nil {
			return fmt.Errorf("encoding %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: data})
	}
	if err := s.backend.Put(ctx, entries...); err != nil {
		return fmt.Errorf("writing %v: %w", keys, err)
	}
	return nil
}

// Load decodes the value stored under key into dst. It reports false when the
// key is absent or its stored text does not decode into dst; the latter is
// logged and otherwise treated like a missing key.
func (s *Store) Load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %q: %w", key, err)
	}
	if len(data) == 0 || string(data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("ignoring unparseable stored value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// Delete removes key from the backend.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}
