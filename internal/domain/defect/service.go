package defect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/repository"
)

// DateLayout is the format of a defaulted ReportedAt (US month/day/year).
const DateLayout = "1/2/2006"

// CopySuffix is appended to the title of a duplicated record.
const CopySuffix = " (copy)"

// Service handles error record business logic. Every operation is scoped to
// a project ID supplied by the caller (normally the current project).
type Service struct {
	records    Repository
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the clock used to default ReportedAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new error record service. activities may be nil.
func NewService(records Repository, activities ActivityRepository, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		records:    records,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates fields, assigns the project's next id and appends the record.
func (s *Service) Add(ctx context.Context, projectID string, fields Fields) (*Record, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}
	if fields.ReportedAt == "" {
		fields.ReportedAt = s.now().Format(DateLayout)
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	id, err := s.NextID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rec := fields.record(id)
	if err := s.records.Append(ctx, projectID, rec); err != nil {
		return nil, mapRepoError("creating error", err)
	}

	s.record(ctx, projectID, rec.ID, activity.TypeErrorCreated, NoticeCreated, rec.Title)
	return &rec, nil
}

// Edit replaces the record at index with one built from fields. The record
// keeps its id; an empty ReportedAt keeps the existing date.
func (s *Service) Edit(ctx context.Context, projectID string, index int, fields Fields) (*Record, error) {
	current, err := s.Get(ctx, projectID, index)
	if err != nil {
		return nil, err
	}
	if fields.ReportedAt == "" {
		fields.ReportedAt = current.ReportedAt
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	rec := fields.record(current.ID)
	if err := s.records.Replace(ctx, projectID, index, rec); err != nil {
		return nil, mapRepoError("editing error", err)
	}

	s.record(ctx, projectID, rec.ID, activity.TypeErrorEdited, NoticeEdited, rec.Title)
	return &rec, nil
}

// Delete removes the record at index. The returned Deleted can be handed to
// Restore; it is also remembered for a later Undo.
func (s *Service) Delete(ctx context.Context, projectID string, index int) (*Deleted, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}

	rec, err := s.records.Remove(ctx, projectID, index)
	if err != nil {
		return nil, mapRepoError("deleting error", err)
	}

	deleted := &Deleted{ProjectID: projectID, Index: index, Record: rec}
	if err := s.records.StashDeleted(ctx, deleted); err != nil {
		s.logger.Warn("undo not available", "project_id", projectID, "error", err)
	}

	s.record(ctx, projectID, rec.ID, activity.TypeErrorDeleted, NoticeDeleted, rec.Title)
	return deleted, nil
}

// Restore puts a deleted record back at its old position (or the end of a
// list that has since shrunk). It refuses when a record with the same id is
// already in the list, so replaying an undo cannot insert twice.
func (s *Service) Restore(ctx context.Context, deleted Deleted) (*Record, error) {
	if deleted.ProjectID == "" {
		return nil, ErrNoProject
	}

	list, err := s.records.List(ctx, deleted.ProjectID)
	if err != nil {
		return nil, mapRepoError("loading errors", err)
	}
	for _, rec := range list {
		if rec.ID == deleted.Record.ID {
			return nil, ErrAlreadyRestored
		}
	}

	index := deleted.Index
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}

	if err := s.records.Insert(ctx, deleted.ProjectID, index, deleted.Record); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyRestored
		}
		return nil, mapRepoError("restoring error", err)
	}

	if stashed, err := s.records.StashedDeleted(ctx); err == nil && stashed != nil &&
		stashed.ProjectID == deleted.ProjectID && stashed.Record.ID == deleted.Record.ID {
		if err := s.records.StashDeleted(ctx, nil); err != nil {
			s.logger.Warn("clearing undo failed", "error", err)
		}
	}

	rec := deleted.Record
	s.record(ctx, deleted.ProjectID, rec.ID, activity.TypeErrorRestored, NoticeRestored, rec.Title)
	return &rec, nil
}

// Undo restores the most recent deletion. It works once per deletion.
func (s *Service) Undo(ctx context.Context) (*Deleted, error) {
	stashed, err := s.records.StashedDeleted(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNothingToUndo
		}
		return nil, fmt.Errorf("loading last deletion: %w", err)
	}
	if stashed == nil {
		return nil, ErrNothingToUndo
	}

	if _, err := s.Restore(ctx, *stashed); err != nil {
		if errors.Is(err, ErrAlreadyRestored) || errors.Is(err, ErrProjectNotFound) {
			_ = s.records.StashDeleted(ctx, nil)
		}
		return nil, err
	}
	return stashed, nil
}

// Duplicate inserts a copy of the record at index directly after it, with a
// fresh id and a " (copy)" title suffix.
func (s *Service) Duplicate(ctx context.Context, projectID string, index int) (*Record, error) {
	src, err := s.Get(ctx, projectID, index)
	if err != nil {
		return nil, err
	}

	id, err := s.NextID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	dup := *src
	dup.ID = id
	dup.Title = src.Title + CopySuffix

	if err := s.records.Insert(ctx, projectID, index+1, dup); err != nil {
		return nil, mapRepoError("duplicating error", err)
	}

	s.record(ctx, projectID, dup.ID, activity.TypeErrorDuplicated, NoticeDuplicated, dup.Title)
	return &dup, nil
}

// Get returns the record at index.
func (s *Service) Get(ctx context.Context, projectID string, index int) (*Record, error) {
	list, err := s.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}
	rec := list[index]
	return &rec, nil
}

// List returns the project's records in list order.
func (s *Service) List(ctx context.Context, projectID string) ([]Record, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}
	list, err := s.records.List(ctx, projectID)
	if err != nil {
		return nil, mapRepoError("loading errors", err)
	}
	return list, nil
}

// NextID hands out the project's next record id.
func (s *Service) NextID(ctx context.Context, projectID string) (int64, error) {
	if projectID == "" {
		return 0, ErrNoProject
	}
	id, err := s.records.NextID(ctx, projectID)
	if err != nil {
		return 0, mapRepoError("assigning id", err)
	}
	return id, nil
}

func (s *Service) record(ctx context.Context, projectID string, recordID int64, typ activity.ActivityType, summary, details string) {
	if s.activities == nil {
		return
	}
	_ = s.activities.Log(ctx, &activity.ActivityEntry{
		ProjectID:    projectID,
		RecordID:     &recordID,
		ActivityType: typ,
		Summary:      summary,
		Details:      details,
	})
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, repository.ErrOutOfRange):
		return ErrIndexOutOfRange
	}
	return fmt.Errorf("%s: %w", op, err)
}
