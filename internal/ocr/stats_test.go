package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.TotalBlocks)
	assert.Zero(t, stats.TotalCharacters)
	assert.Zero(t, stats.ConfidenceAvg)
	assert.Empty(t, stats.FullText)
}

func TestComputeStats_Confidence(t *testing.T) {
	blocks := []domain.TextBlock{
		{Text: "alpha", Confidence: 0.9},
		{Text: "beta", Confidence: 0.7},
		{Text: "gamma", Confidence: 0.5},
	}
	stats := ComputeStats(blocks)

	assert.Equal(t, 3, stats.TotalBlocks)
	assert.InDelta(t, 0.7, stats.ConfidenceAvg, 1e-9)
	assert.InDelta(t, 0.5, stats.ConfidenceMin, 1e-9)
	assert.InDelta(t, 0.9, stats.ConfidenceMax, 1e-9)
	// sample stddev of {0.9, 0.7, 0.5}
	assert.InDelta(t, 0.2, stats.ConfidenceStddev, 1e-9)
	assert.Equal(t, 2, stats.LowConfidence)
}

func TestComputeStats_SingleBlockHasZeroStddev(t *testing.T) {
	stats := ComputeStats([]domain.TextBlock{{Text: "only", Confidence: 0.85}})
	assert.Zero(t, stats.ConfidenceStddev)
	assert.Zero(t, stats.LowConfidence)
}

func TestComputeStats_TextMetrics(t *testing.T) {
	blocks := []domain.TextBlock{
		{Text: "Contact us at support@example.com or call +1 415 555 1234.", Confidence: 0.95},
		{Text: "Visit https://example.com/help for details. Order 123456 shipped!", Confidence: 0.92},
	}
	stats := ComputeStats(blocks)

	assert.Equal(t, 2, stats.TotalBlocks)
	assert.Equal(t, 1, stats.EmailCount)
	assert.Equal(t, 1, stats.PhoneCount)
	assert.Equal(t, 1, stats.URLCount)
	assert.Equal(t, 2, stats.NumericCount) // 1234 in the phone and 123456
	assert.Equal(t, 3, stats.SentenceCount)
	assert.Equal(t, 1, stats.ParagraphCount)
	assert.Equal(t, 17, stats.TotalWords)
}

func TestComputeStats_Paragraphs(t *testing.T) {
	blocks := []domain.TextBlock{
		{Text: "first paragraph", Confidence: 0.9},
		{Text: "", Confidence: 0.9},
		{Text: "second paragraph", Confidence: 0.9},
	}
	stats := ComputeStats(blocks)
	assert.Equal(t, 2, stats.ParagraphCount)
}

func TestStatsPayload(t *testing.T) {
	stats := ComputeStats([]domain.TextBlock{{Text: "hello world", Confidence: 0.9}})

	payload := stats.Payload("en")
	assert.Equal(t, "hello world", payload.FullText)
	assert.Equal(t, 2, payload.TotalWords)
	assert.Equal(t, "en", payload.LanguageDetected)

	assert.Equal(t, "unknown", stats.Payload("").LanguageDetected)
}

func TestBuildResult(t *testing.T) {
	res := BuildResult("job-1", []domain.TextBlock{
		{Text: "invoice 20240815", Confidence: 0.75},
	}, "")

	assert.NotEmpty(t, res.ResultID)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, "unknown", res.LanguageDetected)
	assert.Equal(t, 1, res.NumericCount)
	assert.Equal(t, 1, res.LowConfidence)
	assert.False(t, res.CreatedAt.IsZero())
}
