// Package pagination implements opaque cursors for descending keyset scans.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor marks a position in a scan ordered by (created_at DESC, id DESC).
type Cursor struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// EncodeCursor produces an opaque token for the given row. The token is
// base64 over JSON, using the URL-safe alphabet so it survives a query
// parameter unescaped.
func EncodeCursor(id int64, createdAt time.Time) string {
	payload, err := json.Marshal(Cursor{ID: id, CreatedAt: createdAt.UTC()})
	if err != nil {
		// A Cursor is two scalar fields; Marshal cannot fail on it.
		return ""
	}
	return base64.URLEncoding.EncodeToString(payload)
}

// DecodeCursor parses a token back into a cursor. Decoding is total: any
// malformed, truncated, or foreign token yields nil, which callers treat as
// "start from the beginning". Pagination must stay usable no matter what the
// client sends.
func DecodeCursor(token string) *Cursor {
	if token == "" {
		return nil
	}

	payload, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}

	var c Cursor
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil
	}

	if c.ID == 0 || c.CreatedAt.IsZero() {
		return nil
	}

	return &c
}
