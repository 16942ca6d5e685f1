package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/infrastructure/logger"
	"github.com/taskforge/api/internal/ports"
)

const (
	defaultEntryListLimit = 50
	maxEntryListLimit     = 100
)

// TimerService enforces the timer state machine: at most one active entry
// per owner, completed durations folded into the owning task.
type TimerService struct {
	timeRepo ports.TimeEntryRepository
	taskRepo ports.TaskRepository
	logger   *logger.Logger
	now      func() time.Time
}

// NewTimerService creates a new timer service
func NewTimerService(timeRepo ports.TimeEntryRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *TimerService {
	return &TimerService{
		timeRepo: timeRepo,
		taskRepo: taskRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// StartTimer creates a new active entry for the caller. The task must exist
// and belong to the caller, and no other active entry may exist; the
// conflict check happens atomically in the store.
func (s *TimerService) StartTimer(ctx context.Context, ownerID int64, req ports.StartTimerRequest) (*entities.TimeEntry, error) {
	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	if !task.BelongsTo(ownerID) {
		return nil, entities.ErrNotOwner
	}

	entry := &entities.TimeEntry{
		TaskID:      task.ID,
		OwnerID:     ownerID,
		StartTime:   s.now().UTC(),
		Status:      entities.TimeEntryStatusActive,
		Description: req.Description,
		Category:    req.Category,
	}

	created, err := s.timeRepo.CreateActive(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Timer started", "entry_id", created.ID, "task_id", task.ID, "owner_id", ownerID)

	return created, nil
}

// StopTimer completes an active entry, recording its duration and adding it
// to the owning task's actual minutes. Stopping a non-active entry is
// rejected, not idempotent.
func (s *TimerService) StopTimer(ctx context.Context, ownerID, entryID int64, req ports.StopTimerRequest) (*entities.TimeEntry, error) {
	entry, err := s.getOwnedEntry(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.Stop(s.now().UTC()); err != nil {
		return nil, err
	}

	if req.Description != nil {
		entry.Description = req.Description
	}
	if req.Category != nil {
		entry.Category = req.Category
	}

	completed, err := s.timeRepo.Complete(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}

	s.logger.Infow("Timer stopped",
		"entry_id", completed.ID,
		"task_id", completed.TaskID,
		"owner_id", ownerID,
		"duration_minutes", *completed.DurationMinutes,
	)

	return completed, nil
}

// ActiveTimer returns the caller's running timer with elapsed minutes, or
// nil when no timer is active. "No active timer" is a result, not an error.
func (s *TimerService) ActiveTimer(ctx context.Context, ownerID int64) (*entities.ActiveTimer, error) {
	entry, err := s.timeRepo.GetActiveEntry(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active timer: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	task, err := s.taskRepo.GetByID(ctx, entry.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timed task: %w", err)
	}

	return &entities.ActiveTimer{
		TimeEntryID:    entry.ID,
		TaskID:         entry.TaskID,
		TaskTitle:      task.Title,
		StartTime:      entry.StartTime,
		ElapsedMinutes: entry.ElapsedMinutes(s.now()),
		Description:    entry.Description,
		Category:       entry.Category,
	}, nil
}

// ListTimeEntries lists the caller's entries, newest first
func (s *TimerService) ListTimeEntries(ctx context.Context, ownerID int64, filter ports.TimeEntryFilter) ([]entities.TimeEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultEntryListLimit
	}
	if filter.Limit > maxEntryListLimit {
		filter.Limit = maxEntryListLimit
	}

	entries, err := s.timeRepo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	return entries, nil
}

// UpdateTimeEntry applies a partial update; the duration is recomputed when
// end_time changes.
func (s *TimerService) UpdateTimeEntry(ctx context.Context, ownerID, entryID int64, req ports.UpdateTimeEntryRequest) (*entities.TimeEntry, error) {
	entry, err := s.getOwnedEntry(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		entry.Description = req.Description
	}
	if req.Category != nil {
		entry.Category = req.Category
	}
	if req.StartTime != nil {
		entry.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		entry.EndTime = req.EndTime
	}

	if req.EndTime != nil || req.StartTime != nil {
		if entry.EndTime != nil {
			duration := int(entry.EndTime.UTC().Sub(entry.StartTime.UTC()).Minutes())
			entry.DurationMinutes = &duration
		}
	}

	updated, err := s.timeRepo.Update(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	return updated, nil
}

// DeleteTimeEntry removes an entry. A completed entry's duration is
// subtracted from its task's actual minutes, floored at zero.
func (s *TimerService) DeleteTimeEntry(ctx context.Context, ownerID, entryID int64) error {
	entry, err := s.getOwnedEntry(ctx, ownerID, entryID)
	if err != nil {
		return err
	}

	if err := s.timeRepo.Remove(ctx, entry); err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	s.logger.Infow("Time entry deleted", "entry_id", entry.ID, "owner_id", ownerID)

	return nil
}

// Summary aggregates the caller's completed entries over the past N days
func (s *TimerService) Summary(ctx context.Context, ownerID int64, days int) (*ports.TimeSummary, error) {
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -days)

	summary, err := s.timeRepo.Summary(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build time summary: %w", err)
	}

	return summary, nil
}

func (s *TimerService) getOwnedEntry(ctx context.Context, ownerID, entryID int64) (*entities.TimeEntry, error) {
	entry, err := s.timeRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !entry.BelongsTo(ownerID) {
		return nil, entities.ErrNotOwner
	}

	return entry, nil
}
