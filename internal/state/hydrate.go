package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/storage"
)

// hydrate loads every key. Stored projects may be bare names (the browser
// format); those get fresh ids and every name-keyed map is re-keyed. migrated
// reports whether that happened.
func hydrate(ctx context.Context, kv *storage.Store, logger *slog.Logger) (st AppState, migrated bool, err error) {
	st = AppState{
		Errors:   make(map[string][]defect.Record),
		Counters: make(map[string]int64),
	}

	var rawProjects []json.RawMessage
	if _, err := kv.Load(ctx, storage.KeyProjects, &rawProjects); err != nil {
		return st, false, err
	}

	// resolve maps both ids and legacy names to ids
	resolve := make(map[string]string)
	for _, raw := range rawProjects {
		var proj project.Project
		if name, ok := decodeName(raw); ok {
			proj = project.Project{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
			migrated = true
		} else if err := json.Unmarshal(raw, &proj); err != nil {
			logger.Warn("skipping unparseable project", "value", string(raw))
			continue
		}
		proj.Name = strings.TrimSpace(proj.Name)
		if proj.Name == "" {
			logger.Warn("skipping project without a name")
			continue
		}
		if proj.ID == "" {
			proj.ID = uuid.NewString()
			migrated = true
		}
		if st.projectByName(proj.Name) >= 0 || st.projectIndex(proj.ID) >= 0 {
			logger.Warn("skipping duplicate project", "name", proj.Name)
			continue
		}
		st.Projects = append(st.Projects, proj)
		resolve[proj.ID] = proj.ID
		if _, taken := resolve[proj.Name]; !taken {
			resolve[proj.Name] = proj.ID
		}
	}

	lookup := func(key string) (string, bool) {
		id, ok := resolve[key]
		if ok && id != key {
			migrated = true
		}
		return id, ok
	}

	var errs map[string][]defect.Record
	if _, err := kv.Load(ctx, storage.KeyErrors, &errs); err != nil {
		return st, false, err
	}
	for key, list := range errs {
		id, ok := lookup(key)
		if !ok {
			logger.Warn("dropping errors of unknown project", "project", key, "count", len(list))
			continue
		}
		st.Errors[id] = list
	}

	var counters map[string]int64
	if _, err := kv.Load(ctx, storage.KeyProjectIDs, &counters); err != nil {
		return st, false, err
	}
	for key, n := range counters {
		if id, ok := lookup(key); ok {
			st.Counters[id] = n
		}
	}

	var current string
	if _, err := kv.Load(ctx, storage.KeyCurrentProject, &current); err != nil {
		return st, false, err
	}
	if id, ok := lookup(current); ok {
		st.CurrentProject = id
	}

	var last defect.Deleted
	ok, err := kv.Load(ctx, storage.KeyLastDeleted, &last)
	if err != nil {
		return st, false, err
	}
	if ok {
		if id, known := lookup(last.ProjectID); known {
			last.ProjectID = id
			st.LastDeleted = &last
		}
	}

	return st, migrated, nil
}

func decodeName(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, `"`) {
		return "", false
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", false
	}
	return name, true
}

// String describes the state for debug logs.
func (a AppState) String() string {
	total := 0
	for _, list := range a.Errors {
		total += len(list)
	}
	return fmt.Sprintf("%d projects, %d errors, current=%q", len(a.Projects), total, a.CurrentProject)
}
