package ocr

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// Result is the persisted per-job OCR aggregate row.
type Result struct {
	ResultID         string    `db:"result_id" json:"result_id"`
	JobID            string    `db:"job_id" json:"job_id"`
	FullText         string    `db:"full_text" json:"full_text"`
	TotalBlocks      int       `db:"total_blocks" json:"total_blocks"`
	TotalCharacters  int       `db:"total_characters" json:"total_characters"`
	TotalWords       int       `db:"total_words" json:"total_words"`
	LanguageDetected string    `db:"language_detected" json:"language_detected"`
	ConfidenceAvg    float64   `db:"confidence_avg" json:"confidence_avg"`
	ConfidenceMin    float64   `db:"confidence_min" json:"confidence_min"`
	ConfidenceMax    float64   `db:"confidence_max" json:"confidence_max"`
	ConfidenceStddev float64   `db:"confidence_stddev" json:"confidence_stddev"`
	LowConfidence    int       `db:"low_confidence_blocks" json:"low_confidence_blocks"`
	EmailCount       int       `db:"email_count" json:"email_count"`
	PhoneCount       int       `db:"phone_count" json:"phone_count"`
	URLCount         int       `db:"url_count" json:"url_count"`
	NumericCount     int       `db:"numeric_count" json:"numeric_count"`
	SentenceCount    int       `db:"sentence_count" json:"sentence_count"`
	ParagraphCount   int       `db:"paragraph_count" json:"paragraph_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// BuildResult aggregates recognized blocks into the stored OCR row.
func BuildResult(jobID string, blocks []domain.TextBlock, language string) Result {
	stats := ComputeStats(blocks)
	if language == "" {
		language = "unknown"
	}
	return Result{
		ResultID:         uuid.New().String(),
		JobID:            jobID,
		FullText:         stats.FullText,
		TotalBlocks:      stats.TotalBlocks,
		TotalCharacters:  stats.TotalCharacters,
		TotalWords:       stats.TotalWords,
		LanguageDetected: language,
		ConfidenceAvg:    stats.ConfidenceAvg,
		ConfidenceMin:    stats.ConfidenceMin,
		ConfidenceMax:    stats.ConfidenceMax,
		ConfidenceStddev: stats.ConfidenceStddev,
		LowConfidence:    stats.LowConfidence,
		EmailCount:       stats.EmailCount,
		PhoneCount:       stats.PhoneCount,
		URLCount:         stats.URLCount,
		NumericCount:     stats.NumericCount,
		SentenceCount:    stats.SentenceCount,
		ParagraphCount:   stats.ParagraphCount,
		CreatedAt:        time.Now().UTC(),
	}
}
