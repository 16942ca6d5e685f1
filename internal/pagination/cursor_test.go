package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	token := EncodeCursor(42, createdAt)
	require.NotEmpty(t, token)

	c := DecodeCursor(token)
	require.NotNil(t, c)
	assert.Equal(t, int64(42), c.ID)
	assert.True(t, c.CreatedAt.Equal(createdAt))
}

func TestEncodeCursorNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	createdAt := time.Date(2024, 3, 15, 13, 30, 0, 0, loc)

	c := DecodeCursor(EncodeCursor(7, createdAt))
	require.NotNil(t, c)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.True(t, c.CreatedAt.Equal(createdAt))
}

func TestDecodeCursorMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"base64 but not json", base64.URLEncoding.EncodeToString([]byte("hello"))},
		{"json but wrong shape", base64.URLEncoding.EncodeToString([]byte(`{"foo": "bar"}`))},
		{"zero id", base64.URLEncoding.EncodeToString([]byte(`{"id": 0, "created_at": "2024-03-15T10:30:00Z"}`))},
		{"zero time", base64.URLEncoding.EncodeToString([]byte(`{"id": 5}`))},
		{"truncated", EncodeCursor(42, time.Now())[:8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, DecodeCursor(tt.token))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 50, ClampLimit(50))
	assert.Equal(t, MaxLimit, ClampLimit(100))
	assert.Equal(t, MaxLimit, ClampLimit(500))
}
