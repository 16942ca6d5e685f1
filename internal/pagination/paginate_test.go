package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id int64
}

func cursorForRow(r row) string {
	return fmt.Sprintf("cursor-%d", r.id)
}

func TestBuildPageFullPageWithMore(t *testing.T) {
	// limit+1 rows back means there is a next page.
	rows := []row{{1}, {2}, {3}, {4}}

	page := BuildPage(rows, 3, cursorForRow)

	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasNext)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "cursor-3", *page.NextCursor)
}

func TestBuildPageLastPage(t *testing.T) {
	rows := []row{{1}, {2}}

	page := BuildPage(rows, 3, cursorForRow)

	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasNext)
	assert.Nil(t, page.NextCursor)
}

func TestBuildPageExactlyLimit(t *testing.T) {
	// Exactly limit rows: the page is full but there is nothing after it.
	rows := []row{{1}, {2}, {3}}

	page := BuildPage(rows, 3, cursorForRow)

	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasNext)
	assert.Nil(t, page.NextCursor)
}

func TestBuildPageEmpty(t *testing.T) {
	page := BuildPage([]row{}, 20, cursorForRow)

	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
	assert.Nil(t, page.NextCursor)
}

func TestBuildPageWalksWholeSet(t *testing.T) {
	// Walking page by page must visit every row exactly once.
	all := make([]row, 10)
	for i := range all {
		all[i] = row{id: int64(10 - i)}
	}

	const limit = 3
	var seen []int64
	offset := 0

	for {
		end := offset + limit + 1
		if end > len(all) {
			end = len(all)
		}
		page := BuildPage(all[offset:end], limit, cursorForRow)
		for _, r := range page.Items {
			seen = append(seen, r.id)
		}
		if !page.HasNext {
			break
		}
		offset += limit
	}

	require.Len(t, seen, 10)
	for i, id := range seen {
		assert.Equal(t, int64(10-i), id)
	}
}
