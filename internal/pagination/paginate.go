package pagination

const (
	// DefaultLimit is the page size used when the caller does not specify one.
	DefaultLimit = 20
	// MaxLimit caps the page size. Out-of-range values are clamped rather
	// than rejected, matching the list contract.
	MaxLimit = 100
)

// ClampLimit bounds a caller-supplied page size to [1, MaxLimit]. A
// non-positive limit falls back to DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page is one page of a keyset scan plus the continuation state.
type Page[T any] struct {
	Items      []T
	NextCursor *string
	HasNext    bool
}

// BuildPage assembles a page from rows fetched with limit+1. If more than
// limit rows came back, the extra row is trimmed, HasNext is set, and the
// next cursor is derived from the last row of the trimmed page.
func BuildPage[T any](rows []T, limit int, cursorFor func(T) string) Page[T] {
	page := Page[T]{Items: rows}

	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasNext = true
	}

	if page.HasNext && len(page.Items) > 0 {
		token := cursorFor(page.Items[len(page.Items)-1])
		page.NextCursor = &token
	}

	return page
}
