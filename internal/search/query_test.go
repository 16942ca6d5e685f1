package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/api/internal/domain/entities"
)

func TestBuildQueryNoFilters(t *testing.T) {
	q := BuildQuery("login bug", Filters{}, 7)

	require.Len(t, q.Args, 2)
	assert.Equal(t, "login bug", q.Args[0])
	assert.Equal(t, int64(7), q.Args[1])

	assert.Contains(t, q.SQL, "t.owner_id = $2")
	assert.Contains(t, q.SQL, "plainto_tsquery('english', $1)")
	assert.Contains(t, q.SQL, "ts_rank")
	assert.Contains(t, q.SQL, "ORDER BY rank DESC, t.created_at DESC")
	assert.NotContains(t, q.SQL, "$3")

	assert.Contains(t, q.CountSQL, "COUNT(*)")
	assert.Contains(t, q.CountSQL, "t.owner_id = $2")
	assert.NotContains(t, q.CountSQL, "ORDER BY")
}

func TestBuildQueryAllFilters(t *testing.T) {
	status := entities.TaskStatusInProgress
	category := "backend"
	priority := entities.TaskPriorityHigh
	createdAfter := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	createdBefore := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dueAfter := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	dueBefore := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	archived := false

	q := BuildQuery("deploy", Filters{
		Status:        &status,
		Category:      &category,
		Priority:      &priority,
		CreatedAfter:  &createdAfter,
		CreatedBefore: &createdBefore,
		DueAfter:      &dueAfter,
		DueBefore:     &dueBefore,
		Archived:      &archived,
	}, 3)

	// $1 query, $2 owner, then one placeholder per filter in declaration order.
	require.Len(t, q.Args, 10)
	assert.Equal(t, status, q.Args[2])
	assert.Equal(t, category, q.Args[3])
	assert.Equal(t, priority, q.Args[4])
	assert.Equal(t, createdAfter, q.Args[5])
	assert.Equal(t, createdBefore, q.Args[6])
	assert.Equal(t, dueAfter, q.Args[7])
	assert.Equal(t, dueBefore, q.Args[8])
	assert.Equal(t, archived, q.Args[9])

	assert.Contains(t, q.SQL, "t.status = $3")
	assert.Contains(t, q.SQL, "t.category = $4")
	assert.Contains(t, q.SQL, "t.priority = $5")
	assert.Contains(t, q.SQL, "t.created_at >= $6")
	assert.Contains(t, q.SQL, "t.created_at <= $7")
	assert.Contains(t, q.SQL, "t.due_date >= $8")
	assert.Contains(t, q.SQL, "t.due_date <= $9")
	assert.Contains(t, q.SQL, "t.is_archived = $10")

	// The count statement sees the same filters.
	assert.Contains(t, q.CountSQL, "t.is_archived = $10")
}

func TestBuildQuerySparseFiltersRenumber(t *testing.T) {
	category := "ops"
	archived := true

	q := BuildQuery("rotate keys", Filters{Category: &category, Archived: &archived}, 9)

	require.Len(t, q.Args, 4)
	assert.Contains(t, q.SQL, "t.category = $3")
	assert.Contains(t, q.SQL, "t.is_archived = $4")
	assert.NotContains(t, q.SQL, "$5")
}
