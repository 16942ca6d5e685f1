package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskforge/api/internal/domain/entities"
)

// Filters bundles the optional structured constraints a search request may
// carry. A nil field adds no constraint.
type Filters struct {
	Status        *entities.TaskStatus
	Category      *string
	Priority      *entities.TaskPriority
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	DueAfter      *time.Time
	DueBefore     *time.Time
	Archived      *bool
}

// taskDocument is the text expression rank and match both operate on. Using
// the same expression for both guarantees every matching row has a defined
// rank.
const taskDocument = "to_tsvector('english', t.title || ' ' || COALESCE(t.description, ''))"

// Query is a fully parameterized search statement ready for execution.
type Query struct {
	SQL      string
	CountSQL string
	Args     []interface{}
}

// BuildQuery combines a normalized query string with structured filters into
// one owner-scoped full-text statement, ranked by relevance then recency.
// The caller is responsible for normalizing the query first; BuildQuery does
// not re-clean it.
func BuildQuery(normalizedQuery string, filters Filters, ownerID int64) Query {
	args := []interface{}{normalizedQuery, ownerID}
	argIndex := 3

	var conditions []string
	appendCondition := func(expr string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(expr, argIndex))
		args = append(args, value)
		argIndex++
	}

	if filters.Status != nil {
		appendCondition("t.status = $%d", *filters.Status)
	}
	if filters.Category != nil {
		appendCondition("t.category = $%d", *filters.Category)
	}
	if filters.Priority != nil {
		appendCondition("t.priority = $%d", *filters.Priority)
	}
	if filters.CreatedAfter != nil {
		appendCondition("t.created_at >= $%d", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		appendCondition("t.created_at <= $%d", *filters.CreatedBefore)
	}
	if filters.DueAfter != nil {
		appendCondition("t.due_date >= $%d", *filters.DueAfter)
	}
	if filters.DueBefore != nil {
		appendCondition("t.due_date <= $%d", *filters.DueBefore)
	}
	if filters.Archived != nil {
		appendCondition("t.is_archived = $%d", *filters.Archived)
	}

	where := fmt.Sprintf(
		"WHERE t.owner_id = $2 AND %s @@ plainto_tsquery('english', $1)",
		taskDocument,
	)
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	columns := `t.id, t.title, t.description, t.category, t.status, t.priority,
		t.due_date, t.estimated_minutes, t.actual_minutes, t.is_archived,
		t.owner_id, t.created_at, t.updated_at`

	sql := fmt.Sprintf(
		"SELECT %s, ts_rank(%s, plainto_tsquery('english', $1)) AS rank FROM tasks t %s ORDER BY rank DESC, t.created_at DESC",
		columns, taskDocument, where,
	)

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM tasks t %s", where)

	return Query{SQL: sql, CountSQL: countSQL, Args: args}
}
