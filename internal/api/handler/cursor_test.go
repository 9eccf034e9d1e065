package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/mediascan-be/internal/api/storage"
)

func TestJobCursorRoundTrip(t *testing.T) {
	cursor := &storage.JobCursor{
		CreatedAt: time.Date(2025, 6, 15, 10, 30, 0, 123456789, time.UTC),
		JobID:     "11111111-1111-1111-1111-111111111111",
	}

	decoded, err := DecodeJobCursor(EncodeJobCursor(cursor))
	require.NoError(t, err)

	assert.Equal(t, cursor.CreatedAt.UnixNano(), decoded.CreatedAt.UnixNano())
	assert.Equal(t, cursor.JobID, decoded.JobID)
}

func TestDecodeJobCursor_Empty(t *testing.T) {
	cursor, err := DecodeJobCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeJobCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "not-base64!!!"},
		{name: "missing separator", cursor: "bm9zZXBhcmF0b3I="},   // "noseparator"
		{name: "non numeric timestamp", cursor: "YWJjfGpvYi0x"},   // "abc|job-1"
		{name: "too many fields", cursor: "MTIzfGpvYi0xfGV4dHJh"}, // "123|job-1|extra"
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJobCursor(tt.cursor)
			assert.Error(t, err)
		})
	}
}
