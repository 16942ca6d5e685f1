package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/infrastructure/database"
	"github.com/taskforge/api/internal/ports"
)

const timeEntryColumns = `id, task_id, owner_id, start_time, end_time, duration_minutes,
	status, description, category, created_at, updated_at`

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (owner_id) WHERE status = 'active'.
const uniqueViolation = "23505"

// TimeEntryRepository implements the time entry repository interface
type TimeEntryRepository struct {
	db *database.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *database.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// CreateActive inserts a new active entry, guarded against a second active
// timer for the same owner. The guard is a conditional insert backed by a
// partial unique index, so two concurrent starts cannot both succeed.
func (r *TimeEntryRepository) CreateActive(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	query := `
		INSERT INTO time_entries (task_id, owner_id, start_time, status, description, category)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM time_entries WHERE owner_id = $2 AND status = $7
		)
		RETURNING id, created_at, updated_at
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		entry.TaskID,
		entry.OwnerID,
		entry.StartTime,
		entry.Status,
		entry.Description,
		entry.Category,
		entities.TimeEntryStatusActive,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.Is(err, sql.ErrNoRows) || (errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation) {
			return nil, r.timerConflict(ctx, entry.OwnerID)
		}
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	return entry, nil
}

// timerConflict builds the conflict error naming the task already being
// timed. Losing the title lookup race only degrades the message.
func (r *TimeEntryRepository) timerConflict(ctx context.Context, ownerID int64) error {
	var title string
	query := `
		SELECT t.title
		FROM time_entries te
		JOIN tasks t ON te.task_id = t.id
		WHERE te.owner_id = $1 AND te.status = $2
		LIMIT 1
	`
	if err := r.db.DB.QueryRowContext(ctx, query, ownerID, entities.TimeEntryStatusActive).Scan(&title); err != nil {
		title = "another task"
	}

	return &entities.TimerConflictError{TaskTitle: title}
}

// GetByID retrieves a time entry by ID
func (r *TimeEntryRepository) GetByID(ctx context.Context, id int64) (*entities.TimeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE id = $1`, timeEntryColumns)

	var entry entities.TimeEntry
	err := scanTimeEntry(r.db.DB.QueryRowContext(ctx, query, id), &entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	return &entry, nil
}

// GetActiveEntry retrieves the owner's active entry, or nil when none exists
func (r *TimeEntryRepository) GetActiveEntry(ctx context.Context, ownerID int64) (*entities.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM time_entries
		WHERE owner_id = $1 AND status = $2
		ORDER BY start_time DESC
		LIMIT 1
	`, timeEntryColumns)

	var entry entities.TimeEntry
	err := scanTimeEntry(r.db.DB.QueryRowContext(ctx, query, ownerID, entities.TimeEntryStatusActive), &entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active entry: %w", err)
	}

	return &entry, nil
}

// List retrieves an owner's time entries, newest first
func (r *TimeEntryRepository) List(ctx context.Context, ownerID int64, filter ports.TimeEntryFilter) ([]entities.TimeEntry, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	argIndex := 2

	if filter.TaskID != nil {
		conditions = append(conditions, fmt.Sprintf("task_id = $%d", argIndex))
		args = append(args, *filter.TaskID)
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", argIndex))
		args = append(args, *filter.DateFrom)
		argIndex++
	}

	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("start_time <= $%d", argIndex))
		args = append(args, *filter.DateTo)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM time_entries
		WHERE %s
		ORDER BY start_time DESC
		LIMIT $%d
	`, timeEntryColumns, strings.Join(conditions, " AND "), argIndex)

	args = append(args, filter.Limit)

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []entities.TimeEntry
	for rows.Next() {
		var entry entities.TimeEntry
		if err := scanTimeEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Update updates a time entry
func (r *TimeEntryRepository) Update(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	query := `
		UPDATE time_entries
		SET start_time = $2, end_time = $3, duration_minutes = $4, status = $5,
			description = $6, category = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		entry.ID,
		entry.StartTime,
		entry.EndTime,
		entry.DurationMinutes,
		entry.Status,
		entry.Description,
		entry.Category,
	).Scan(&entry.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	return entry, nil
}

// Complete persists a stopped entry and folds its duration into the owning
// task's actual_minutes within one transaction.
func (r *TimeEntryRepository) Complete(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE time_entries
			SET end_time = $2, duration_minutes = $3, status = $4,
				description = $5, category = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`

		err := tx.QueryRowContext(ctx, query,
			entry.ID,
			entry.EndTime,
			entry.DurationMinutes,
			entry.Status,
			entry.Description,
			entry.Category,
		).Scan(&entry.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entities.ErrTimeEntryNotFound
			}
			return fmt.Errorf("failed to complete time entry: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE tasks
			SET actual_minutes = COALESCE(actual_minutes, 0) + $2, updated_at = NOW()
			WHERE id = $1
		`, entry.TaskID, derefInt(entry.DurationMinutes))
		if err != nil {
			return fmt.Errorf("failed to update task actual minutes: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Remove deletes an entry; a completed entry's recorded duration is
// subtracted from the owning task's total (floored at zero) in the same
// transaction.
func (r *TimeEntryRepository) Remove(ctx context.Context, entry *entities.TimeEntry) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if entry.Status == entities.TimeEntryStatusCompleted && entry.DurationMinutes != nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE tasks
				SET actual_minutes = GREATEST(COALESCE(actual_minutes, 0) - $2, 0), updated_at = NOW()
				WHERE id = $1
			`, entry.TaskID, *entry.DurationMinutes)
			if err != nil {
				return fmt.Errorf("failed to roll back task actual minutes: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM time_entries WHERE id = $1`, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to delete time entry: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return entities.ErrTimeEntryNotFound
		}

		return nil
	})
}

// Summary aggregates completed entries for a period
func (r *TimeEntryRepository) Summary(ctx context.Context, ownerID int64, from, to time.Time) (*ports.TimeSummary, error) {
	var summary ports.TimeSummary

	err := r.db.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_minutes), 0),
			COUNT(id),
			ROUND(COALESCE(AVG(duration_minutes), 0)::numeric, 2)
		FROM time_entries
		WHERE owner_id = $1 AND status = $2 AND start_time >= $3 AND start_time <= $4
	`, ownerID, entities.TimeEntryStatusCompleted, from, to).Scan(
		&summary.TotalTimeMinutes,
		&summary.TotalEntries,
		&summary.AverageSessionMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate time entries: %w", err)
	}

	var category sql.NullString
	err = r.db.DB.QueryRowContext(ctx, `
		SELECT category
		FROM time_entries
		WHERE owner_id = $1 AND status = $2 AND start_time >= $3 AND start_time <= $4
			AND category IS NOT NULL
		GROUP BY category
		ORDER BY SUM(duration_minutes) DESC
		LIMIT 1
	`, ownerID, entities.TimeEntryStatusCompleted, from, to).Scan(&category)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get most productive category: %w", err)
	}
	if category.Valid {
		summary.MostProductiveCategory = &category.String
	}

	todayStart := to.UTC().Truncate(24 * time.Hour)
	weekStart := startOfWeek(to.UTC())

	if err := r.sumCompletedSince(ctx, ownerID, todayStart, &summary.TodayTimeMinutes); err != nil {
		return nil, err
	}
	if err := r.sumCompletedSince(ctx, ownerID, weekStart, &summary.ThisWeekTimeMinutes); err != nil {
		return nil, err
	}

	return &summary, nil
}

func (r *TimeEntryRepository) sumCompletedSince(ctx context.Context, ownerID int64, since time.Time, dest *int) error {
	err := r.db.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM time_entries
		WHERE owner_id = $1 AND status = $2 AND start_time >= $3
	`, ownerID, entities.TimeEntryStatusCompleted, since).Scan(dest)
	if err != nil {
		return fmt.Errorf("failed to sum completed entries: %w", err)
	}

	return nil
}

func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	// time.Weekday counts Sunday as 0; the week here starts on Monday.
	if weekday == 0 {
		weekday = 7
	}
	day := t.Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -(weekday - 1))
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func scanTimeEntry(row rowScanner, entry *entities.TimeEntry) error {
	return row.Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.OwnerID,
		&entry.StartTime,
		&entry.EndTime,
		&entry.DurationMinutes,
		&entry.Status,
		&entry.Description,
		&entry.Category,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
}
