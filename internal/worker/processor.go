package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/mediascan-be/internal/barcode"
	"github.com/cuongbtq/mediascan-be/internal/domain"
	"github.com/cuongbtq/mediascan-be/internal/ocr"
	"github.com/cuongbtq/mediascan-be/internal/qrcode"
	"github.com/cuongbtq/mediascan-be/internal/session"
	"github.com/cuongbtq/mediascan-be/shared/logger"
)

// jobPayload is the decoder output stored on the job at submit time.
type jobPayload struct {
	Symbols    []domain.DecodedSymbol `json:"symbols,omitempty"`
	TextBlocks []domain.TextBlock     `json:"text_blocks,omitempty"`
	Language   string                 `json:"language,omitempty"`
}

// processJob runs the enrichment pipeline for one queue message: claim the
// job, enrich its decoder payload, persist result rows and the final status,
// and fold the outcome into the owning session.
//
// Errors returned before the claim succeeds may be retryable; once the job is
// claimed it always reaches a terminal status here.
func (w *Worker) processJob(ctx context.Context, msg *JobMessage) error {
	start := time.Now()
	log := w.logger.With(slog.String("job_id", msg.JobID))

	w.metrics.QueueDepth.Inc()
	defer w.metrics.QueueDepth.Dec()

	job, err := w.storage.GetJobByID(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return err
		}
		return domain.NewRetryableError(fmt.Errorf("failed to load job: %w", err))
	}

	log = w.logger.ForJob(job.JobID, string(job.JobType))

	// Cancelled (or otherwise finished) while queued: drop the message.
	if job.IsFinished() {
		log.Info("skipping finished job", slog.String("status", string(job.Status)))
		return nil
	}

	if err := job.StartProcessing(); err != nil {
		return domain.ErrJobAlreadyClaimed
	}
	if err := w.storage.MarkProcessing(ctx, job); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyClaimed) {
			return err
		}
		return domain.NewRetryableError(err)
	}

	log.Info("job claimed", slog.Int64("queue_time_ms", *job.QueueTimeMs))

	var payload jobPayload
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		w.failJob(ctx, log, job, domain.ErrCodeInvalidPayload,
			"job payload is not valid json",
			map[string]string{"error": err.Error()})
		return domain.ErrInvalidPayload
	}

	procCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	results, err := w.enrich(procCtx, job, &payload)
	if err != nil {
		code := domain.ErrCodeProcessingError
		if errors.Is(err, context.DeadlineExceeded) {
			code = domain.ErrCodeTimeout
		}
		w.failJob(ctx, log, job, code, "enrichment failed",
			map[string]string{"error": err.Error()})
		return fmt.Errorf("enrichment failed: %w", err)
	}

	elapsed := time.Since(start).Milliseconds()
	if err := job.CompleteSuccessfully(results, elapsed); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if err := w.storage.CompleteJob(ctx, job); err != nil {
		log.Error("failed to persist job results", slog.String("error", err.Error()))
		// The row is still PROCESSING; record a terminal failure so the
		// claim is not orphaned.
		job.Status = domain.JobStatusProcessing
		w.failJob(ctx, log, job, domain.ErrCodeProcessingError,
			"failed to persist results",
			map[string]string{"error": err.Error()})
		return fmt.Errorf("failed to persist results: %w", err)
	}

	w.updateSession(ctx, log, job, true)
	w.metrics.JobsProcessed.WithLabelValues(string(job.JobType), string(job.Status)).Inc()
	w.metrics.ProcessingTime.WithLabelValues(string(job.JobType)).Observe(job.DurationSeconds())

	log.Info("job processed",
		slog.Int64("processing_time_ms", elapsed),
		slog.String("summary", job.ResultsSummary),
	)
	return nil
}

// enrich dispatches the payload to the per-type builders and assembles
// the results document stored on the job.
func (w *Worker) enrich(ctx context.Context, job *domain.ProcessingJob, payload *jobPayload) (*domain.JobResults, error) {
	results := &domain.JobResults{}

	switch job.JobType {
	case domain.JobTypeBarcode:
		p, err := w.enrichBarcodes(ctx, job, payload.Symbols)
		if err != nil {
			return nil, err
		}
		results.Barcodes = p

	case domain.JobTypeQRCode:
		p, err := w.enrichQRCodes(ctx, job, payload.Symbols)
		if err != nil {
			return nil, err
		}
		results.QRCodes = p

	case domain.JobTypeOCR:
		p, err := w.enrichOCR(ctx, job, payload.TextBlocks, payload.Language)
		if err != nil {
			return nil, err
		}
		results.OCR = p

	case domain.JobTypeAll:
		// QR symbols and linear barcodes arrive mixed in one slice.
		var barcodeHits, qrHits []domain.DecodedSymbol
		for _, hit := range payload.Symbols {
			if strings.EqualFold(hit.SymbolType, "QRCODE") {
				qrHits = append(qrHits, hit)
			} else {
				barcodeHits = append(barcodeHits, hit)
			}
		}

		if len(barcodeHits) > 0 {
			p, err := w.enrichBarcodes(ctx, job, barcodeHits)
			if err != nil {
				return nil, err
			}
			results.Barcodes = p
		}
		if len(qrHits) > 0 {
			p, err := w.enrichQRCodes(ctx, job, qrHits)
			if err != nil {
				return nil, err
			}
			results.QRCodes = p
		}
		if len(payload.TextBlocks) > 0 {
			p, err := w.enrichOCR(ctx, job, payload.TextBlocks, payload.Language)
			if err != nil {
				return nil, err
			}
			results.OCR = p
		}

	default:
		return nil, fmt.Errorf("unsupported job type %q: %w", job.JobType, domain.ErrInvalidPayload)
	}

	return results, ctx.Err()
}

// enrichBarcodes builds and stores one result row per decoded barcode and
// returns the compact summary embedded in the job results.
func (w *Worker) enrichBarcodes(ctx context.Context, job *domain.ProcessingJob, hits []domain.DecodedSymbol) (*domain.BarcodePayload, error) {
	if params := job.Params; params != nil && params.Barcode != nil && len(params.Barcode.Symbologies) > 0 {
		hits = filterSymbologies(hits, params.Barcode.Symbologies)
	}

	rows := make([]*barcode.Result, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, barcode.BuildResult(job.JobID, hit))
	}
	if err := w.storage.InsertBarcodeResults(ctx, rows); err != nil {
		return nil, err
	}
	w.metrics.SymbolsExtracted.WithLabelValues("barcode").Add(float64(len(rows)))

	payload := &domain.BarcodePayload{Count: len(rows)}
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.BarcodeType] {
			seen[row.BarcodeType] = true
			payload.SymbolTypes = append(payload.SymbolTypes, row.BarcodeType)
		}
		payload.Items = append(payload.Items, domain.BarcodeItem{
			Data:          row.BarcodeData,
			Type:          row.BarcodeType,
			ContentType:   row.ContentType,
			ChecksumValid: row.ChecksumValid,
		})
	}
	return payload, nil
}

// enrichQRCodes builds and stores one result row per decoded QR symbol and
// returns the compact summary embedded in the job results.
func (w *Worker) enrichQRCodes(ctx context.Context, job *domain.ProcessingJob, hits []domain.DecodedSymbol) (*domain.QRCodePayload, error) {
	rows := make([]qrcode.Result, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, qrcode.BuildResult(job.JobID, hit))
	}
	if err := w.storage.InsertQRCodeResults(ctx, rows); err != nil {
		return nil, err
	}
	w.metrics.SymbolsExtracted.WithLabelValues("qrcode").Add(float64(len(rows)))

	payload := &domain.QRCodePayload{
		Count:        len(rows),
		ContentTypes: make(map[string]int),
	}
	for i := range rows {
		payload.ContentTypes[rows[i].DataType]++
		payload.Items = append(payload.Items, domain.QRCodeItem{
			Data:       rows[i].QRData,
			DataType:   rows[i].DataType,
			Suspicious: rows[i].Suspicious,
		})
	}
	return payload, nil
}

// enrichOCR aggregates recognized blocks into the stored OCR row and the
// job-level text summary. Blocks below the configured confidence floor are
// dropped before aggregation.
func (w *Worker) enrichOCR(ctx context.Context, job *domain.ProcessingJob, blocks []domain.TextBlock, language string) (*domain.OCRPayload, error) {
	if params := job.Params; params != nil && params.OCR != nil {
		if params.OCR.MinConfidence > 0 {
			kept := blocks[:0:0]
			for _, b := range blocks {
				if b.Confidence >= params.OCR.MinConfidence {
					kept = append(kept, b)
				}
			}
			blocks = kept
		}
		if language == "" {
			language = params.OCR.Language
		}
	}

	row := ocr.BuildResult(job.JobID, blocks, language)
	if err := w.storage.InsertOCRResult(ctx, &row); err != nil {
		return nil, err
	}
	w.metrics.SymbolsExtracted.WithLabelValues("text").Add(float64(row.TotalBlocks))

	return ocr.ComputeStats(blocks).Payload(language), nil
}

// failJob persists a terminal failure and the session bookkeeping for it.
// Persistence errors here are logged, not propagated: the job outcome is
// already decided.
func (w *Worker) failJob(ctx context.Context, log *logger.Logger, job *domain.ProcessingJob, code, message string, details map[string]string) {
	if err := job.FailWithError(code, message, details); err != nil {
		log.Error("cannot mark job failed", slog.String("error", err.Error()))
		return
	}
	if err := w.storage.FailJob(ctx, job); err != nil {
		log.Error("failed to persist job failure", slog.String("error", err.Error()))
		return
	}

	w.updateSession(ctx, log, job, false)
	w.metrics.JobsProcessed.WithLabelValues(string(job.JobType), string(job.Status)).Inc()
}

// updateSession folds the finished job into the owning session record,
// creating it on first sight. Session accounting is best effort.
func (w *Worker) updateSession(ctx context.Context, log *logger.Logger, job *domain.ProcessingJob, success bool) {
	if job.SessionID == "" {
		return
	}
	log = log.ForSession(job.SessionID)

	sess, err := w.storage.GetSession(ctx, job.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		sess = session.New(job.SessionID, job.ClientIP, job.UserAgent,
			w.sessionDailyJobs, w.sessionMinuteLimit)
	} else if err != nil {
		log.Error("failed to load session", slog.String("error", err.Error()))
		return
	}

	var processingMs float64
	if job.ProcessingTimeMs != nil {
		processingMs = float64(*job.ProcessingTimeMs)
	}
	sess.UpdateActivity(job.JobType, success, processingMs, job.InputSizeBytes)

	if err := w.storage.SaveSession(ctx, sess); err != nil {
		log.Error("failed to save session", slog.String("error", err.Error()))
	}
}

// filterSymbologies keeps only hits whose symbol type is in the allow list.
func filterSymbologies(hits []domain.DecodedSymbol, allowed []string) []domain.DecodedSymbol {
	kept := hits[:0:0]
	for _, hit := range hits {
		for _, sym := range allowed {
			if strings.EqualFold(hit.SymbolType, sym) {
				kept = append(kept, hit)
				break
			}
		}
	}
	return kept
}
