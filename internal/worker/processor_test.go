package worker

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/mediascan-be/internal/metrics"
	"github.com/cuongbtq/mediascan-be/internal/worker/storage"
	"github.com/cuongbtq/mediascan-be/shared/logger"
)

func newTestWorker(t *testing.T) (*Worker, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Worker{
		logger:     &logger.Logger{Logger: discard},
		storage:    storage.NewStorage(sqlx.NewDb(db, "sqlmock"), discard),
		metrics:    metrics.New(prometheus.NewRegistry()),
		jobTimeout: time.Second,
	}, mock
}

var processorJobColumns = []string{
	"job_id", "job_type", "status",
	"input_filename", "input_format", "input_size_bytes", "input_hash",
	"payload", "params", "results", "results_summary",
	"error_code", "error_message", "error_details",
	"created_at", "updated_at", "started_at", "completed_at",
	"queue_time_ms", "processing_time_ms",
	"client_ip", "user_agent", "session_id",
}

func pendingBarcodeJobRows(payload string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(processorJobColumns).AddRow(
		"11111111-1111-1111-1111-111111111111", "barcode", "PENDING",
		"", "", int64(2048), "",
		payload, nil, nil, "",
		"", "", nil,
		now, now, nil, nil,
		nil, nil,
		"203.0.113.7", "test-agent", "abcd1234abcd1234",
	)
}

func TestProcessJob_SkipsFinishedJob(t *testing.T) {
	w, mock := newTestWorker(t)

	rows := sqlmock.NewRows(processorJobColumns).AddRow(
		"11111111-1111-1111-1111-111111111111", "barcode", "CANCELLED",
		"", "", int64(0), "",
		"", nil, nil, "",
		"", "", nil,
		time.Now().UTC(), time.Now().UTC(), nil, nil,
		nil, nil,
		"203.0.113.7", "test-agent", "abcd1234abcd1234",
	)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	err := w.processJob(context.Background(), &JobMessage{JobID: "11111111-1111-1111-1111-111111111111"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessJob_ResultPersistFailureEndsFailed(t *testing.T) {
	w, mock := newTestWorker(t)

	payload := `{"symbols":[{"raw_text":"4006381333931","symbol_type":"EAN13","bbox":[10,10,200,80],"quality":0.9}]}`
	mock.ExpectQuery("SELECT").WillReturnRows(pendingBarcodeJobRows(payload))
	// Claim succeeds, the result rows land, but the completion write fails.
	mock.ExpectExec("UPDATE jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO barcode_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE jobs").WillReturnError(sql.ErrConnDone)
	// The claim must still end terminal: a FAILED write plus session accounting.
	mock.ExpectExec("UPDATE jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM sessions").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(0, 1))

	err := w.processJob(context.Background(), &JobMessage{JobID: "11111111-1111-1111-1111-111111111111"})
	require.Error(t, err)
	assert.False(t, w.shouldRequeueJob(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
