package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/mediascan-be/internal/barcode"
	"github.com/cuongbtq/mediascan-be/internal/domain"
	"github.com/cuongbtq/mediascan-be/internal/ocr"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStorage(sqlx.NewDb(db, "sqlmock"), logger), mock
}

func claimedJob(t *testing.T) *domain.ProcessingJob {
	t.Helper()
	job := domain.NewJob("11111111-1111-1111-1111-111111111111", domain.JobTypeBarcode, "abcd1234abcd1234")
	require.NoError(t, job.StartProcessing())
	return job
}

func TestMarkProcessing(t *testing.T) {
	store, mock := newMockStorage(t)
	job := claimedJob(t)

	mock.ExpectExec("UPDATE jobs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MarkProcessing(context.Background(), job)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessing_LostRace(t *testing.T) {
	store, mock := newMockStorage(t)
	job := claimedJob(t)

	// Another worker flipped the row out of PENDING first.
	mock.ExpectExec("UPDATE jobs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkProcessing(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrJobAlreadyClaimed)
}

func TestCompleteJob(t *testing.T) {
	store, mock := newMockStorage(t)
	job := claimedJob(t)

	results := &domain.JobResults{
		Barcodes: &domain.BarcodePayload{Count: 1, SymbolTypes: []string{"EAN13"}},
	}
	require.NoError(t, job.CompleteSuccessfully(results, 120))

	mock.ExpectExec("UPDATE jobs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.CompleteJob(context.Background(), job)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailJob(t *testing.T) {
	store, mock := newMockStorage(t)
	job := claimedJob(t)

	require.NoError(t, job.FailWithError(domain.ErrCodeProcessingError, "enrichment failed",
		map[string]string{"error": "boom"}))

	mock.ExpectExec("UPDATE jobs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.FailJob(context.Background(), job)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBarcodeResults(t *testing.T) {
	store, mock := newMockStorage(t)

	rows := []*barcode.Result{
		barcode.BuildResult("11111111-1111-1111-1111-111111111111", domain.DecodedSymbol{
			RawText: "4006381333931", SymbolType: "EAN13", BBox: []int{10, 10, 200, 80}, Quality: 0.9,
		}),
		barcode.BuildResult("11111111-1111-1111-1111-111111111111", domain.DecodedSymbol{
			RawText: "ABC-123", SymbolType: "CODE128", Quality: 0.7,
		}),
	}

	mock.ExpectExec("INSERT INTO barcode_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO barcode_results").WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.InsertBarcodeResults(context.Background(), rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOCRResult(t *testing.T) {
	store, mock := newMockStorage(t)

	row := ocr.BuildResult("11111111-1111-1111-1111-111111111111", []domain.TextBlock{
		{Text: "Hello world.", Confidence: 0.95},
	}, "en")

	mock.ExpectExec("INSERT INTO ocr_results").WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.InsertOCRResult(context.Background(), &row)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
