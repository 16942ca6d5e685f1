package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/pagination"
	"github.com/taskforge/api/internal/ports"
	"github.com/taskforge/api/internal/search"
)

const taskColumns = `id, title, description, category, status, priority, due_date,
	estimated_minutes, actual_minutes, is_archived, owner_id, created_at, updated_at`

// TaskRepository implements the task repository interface
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		INSERT INTO tasks (title, description, category, status, priority, due_date, estimated_minutes, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, actual_minutes, is_archived, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedMinutes,
		task.OwnerID,
	).Scan(&task.ID, &task.ActualMinutes, &task.IsArchived, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)

	var task entities.Task
	err := scanTask(r.db.QueryRowContext(ctx, query, id), &task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// Update updates a task
func (r *TaskRepository) Update(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, category = $4, status = $5, priority = $6,
			due_date = $7, estimated_minutes = $8, actual_minutes = $9, is_archived = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedMinutes,
		task.ActualMinutes,
		task.IsArchived,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete permanently deletes a task
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

// SetArchived flips the archived flag, returning the updated task
func (r *TaskRepository) SetArchived(ctx context.Context, id int64, archived bool) (*entities.Task, error) {
	query := fmt.Sprintf(`
		UPDATE tasks SET is_archived = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, taskColumns)

	var task entities.Task
	err := scanTask(r.db.QueryRowContext(ctx, query, id, archived), &task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}

	return &task, nil
}

// ListPage retrieves one page of tasks ordered by (created_at DESC, id DESC),
// resuming after the cursor position when one is supplied. It fetches
// limit+1 rows so the caller can detect a further page.
func (r *TaskRepository) ListPage(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	argIndex := 2

	conditions, args, argIndex = appendListFilters(conditions, args, argIndex, filter)
	conditions, args, argIndex = appendCursorCondition(conditions, args, argIndex, cursor)

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, taskColumns, strings.Join(conditions, " AND "), argIndex)

	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []entities.Task
	for rows.Next() {
		var task entities.Task
		if err := scanTask(rows, &task); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, nil
}

// Count counts the tasks matching the list filter
func (r *TaskRepository) Count(ctx context.Context, ownerID int64, filter ports.TaskListFilter) (int, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}

	conditions, args, _ = appendListFilters(conditions, args, 2, filter)

	query := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", strings.Join(conditions, " AND "))

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return total, nil
}

// Search executes a ranked full-text query, returning up to limit+1 rows
func (r *TaskRepository) Search(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
	stmt := fmt.Sprintf("%s LIMIT %d", query.SQL, limit+1)

	rows, err := r.db.QueryContext(ctx, stmt, query.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer rows.Close()

	var results []ports.RankedTask
	for rows.Next() {
		var rt ports.RankedTask
		// Every column is scanned by position into a named field; a row with
		// an unexpected shape fails loudly instead of defaulting fields.
		err := rows.Scan(
			&rt.Task.ID,
			&rt.Task.Title,
			&rt.Task.Description,
			&rt.Task.Category,
			&rt.Task.Status,
			&rt.Task.Priority,
			&rt.Task.DueDate,
			&rt.Task.EstimatedMinutes,
			&rt.Task.ActualMinutes,
			&rt.Task.IsArchived,
			&rt.Task.OwnerID,
			&rt.Task.CreatedAt,
			&rt.Task.UpdatedAt,
			&rt.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// CountSearch counts all matches for a search query without rank or limit
func (r *TaskRepository) CountSearch(ctx context.Context, query search.Query) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, query.CountSQL, query.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count search matches: %w", err)
	}

	return total, nil
}

// Suggestions returns distinct owner-scoped titles/descriptions starting
// with the given prefix, case-insensitively
func (r *TaskRepository) Suggestions(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT
			CASE
				WHEN LOWER(t.title) LIKE LOWER($2 || '%') THEN t.title
				WHEN LOWER(t.description) LIKE LOWER($2 || '%') THEN t.description
			END AS suggestion
		FROM tasks t
		WHERE t.owner_id = $1
		AND (
			LOWER(t.title) LIKE LOWER($2 || '%')
			OR LOWER(t.description) LIKE LOWER($2 || '%')
		)
		AND LENGTH(COALESCE(t.title, '')) > 0
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get search suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []string
	for rows.Next() {
		var suggestion sql.NullString
		if err := rows.Scan(&suggestion); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		if suggestion.Valid {
			suggestions = append(suggestions, suggestion.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return suggestions, nil
}

func appendListFilters(conditions []string, args []interface{}, argIndex int, filter ports.TaskListFilter) ([]string, []interface{}, int) {
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.DueBefore != nil {
		conditions = append(conditions, fmt.Sprintf("due_date IS NOT NULL AND due_date <= $%d", argIndex))
		args = append(args, *filter.DueBefore)
		argIndex++
	}

	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("is_archived = $%d", argIndex))
		args = append(args, *filter.Archived)
		argIndex++
	}

	return conditions, args, argIndex
}

// appendCursorCondition resumes the keyset scan strictly after the cursor
// row. created_at alone is not unique (bulk inserts share timestamps), so
// the predicate compares the composite (created_at, id) key; dropping the id
// tie-break would skip or duplicate rows that share a timestamp.
func appendCursorCondition(conditions []string, args []interface{}, argIndex int, cursor *pagination.Cursor) ([]string, []interface{}, int) {
	if cursor == nil {
		return conditions, args, argIndex
	}

	conditions = append(conditions, fmt.Sprintf(
		"(created_at < $%d OR (created_at = $%d AND id < $%d))",
		argIndex, argIndex, argIndex+1,
	))
	args = append(args, cursor.CreatedAt, cursor.ID)

	return conditions, args, argIndex + 2
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner, task *entities.Task) error {
	return row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.EstimatedMinutes,
		&task.ActualMinutes,
		&task.IsArchived,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
}
