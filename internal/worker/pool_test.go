package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

func TestShouldRequeueJob(t *testing.T) {
	w := &Worker{}

	tests := []struct {
		name    string
		err     error
		requeue bool
	}{
		{
			name:    "transient error is requeued",
			err:     domain.NewRetryableError(errors.New("connection refused")),
			requeue: true,
		},
		{
			name:    "wrapped transient error is requeued",
			err:     domain.NewRetryableError(errors.New("db down")),
			requeue: true,
		},
		{
			name:    "claimed job is dropped",
			err:     domain.ErrJobAlreadyClaimed,
			requeue: false,
		},
		{
			name:    "invalid payload is dropped",
			err:     domain.ErrInvalidPayload,
			requeue: false,
		},
		{
			name:    "plain processing error is dropped",
			err:     errors.New("enrichment failed"),
			requeue: false,
		},
		{
			name:    "job not found is dropped",
			err:     domain.ErrJobNotFound,
			requeue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.requeue, w.shouldRequeueJob(tt.err))
		})
	}
}

func TestFilterSymbologies(t *testing.T) {
	hits := []domain.DecodedSymbol{
		{RawText: "4006381333931", SymbolType: "EAN13"},
		{RawText: "ABC-123", SymbolType: "CODE128"},
		{RawText: "036000291452", SymbolType: "UPCA"},
	}

	kept := filterSymbologies(hits, []string{"ean13", "UPCA"})

	assert.Len(t, kept, 2)
	assert.Equal(t, "EAN13", kept[0].SymbolType)
	assert.Equal(t, "UPCA", kept[1].SymbolType)
}
