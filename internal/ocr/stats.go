package ocr

import (
	"math"
	"regexp"
	"strings"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// Confidence scores below this are counted as low-confidence blocks.
const lowConfidenceThreshold = 0.8

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?[0-9][0-9()\-\s.]{6,}[0-9]`)
	urlPattern     = regexp.MustCompile(`https?://[^\s]+|www\.[^\s]+`)
	numericPattern = regexp.MustCompile(`\b\d{4,}\b`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+`)
)

// Stats aggregates every recognized text block of a job into document
// level metrics.
type Stats struct {
	FullText        string `json:"full_text"`
	TotalBlocks     int    `json:"total_blocks"`
	TotalCharacters int    `json:"total_characters"`
	TotalWords      int    `json:"total_words"`

	ConfidenceAvg    float64 `json:"confidence_avg"`
	ConfidenceMin    float64 `json:"confidence_min"`
	ConfidenceMax    float64 `json:"confidence_max"`
	ConfidenceStddev float64 `json:"confidence_stddev"`
	LowConfidence    int     `json:"low_confidence_blocks"`

	EmailCount     int `json:"email_count"`
	PhoneCount     int `json:"phone_count"`
	URLCount       int `json:"url_count"`
	NumericCount   int `json:"numeric_count"`
	SentenceCount  int `json:"sentence_count"`
	ParagraphCount int `json:"paragraph_count"`
}

// ComputeStats folds decoder text blocks into document metrics. An empty
// input yields zeroed stats, never an error.
func ComputeStats(blocks []domain.TextBlock) Stats {
	stats := Stats{TotalBlocks: len(blocks)}
	if len(blocks) == 0 {
		return stats
	}

	texts := make([]string, 0, len(blocks))
	min, max, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, b := range blocks {
		texts = append(texts, b.Text)
		sum += b.Confidence
		if b.Confidence < min {
			min = b.Confidence
		}
		if b.Confidence > max {
			max = b.Confidence
		}
		if b.Confidence < lowConfidenceThreshold {
			stats.LowConfidence++
		}
	}

	n := float64(len(blocks))
	stats.ConfidenceAvg = sum / n
	stats.ConfidenceMin = min
	stats.ConfidenceMax = max
	if len(blocks) > 1 {
		var sq float64
		for _, b := range blocks {
			d := b.Confidence - stats.ConfidenceAvg
			sq += d * d
		}
		stats.ConfidenceStddev = math.Sqrt(sq / (n - 1))
	}

	stats.FullText = strings.Join(texts, "\n")
	stats.TotalCharacters = len(stats.FullText)
	stats.TotalWords = len(strings.Fields(stats.FullText))

	stats.EmailCount = len(emailPattern.FindAllString(stats.FullText, -1))
	stats.URLCount = len(urlPattern.FindAllString(stats.FullText, -1))

	// Emails and URLs are masked before the remaining counts so a dot in
	// a domain is not a sentence end and a path id is not a phone number.
	masked := emailPattern.ReplaceAllString(stats.FullText, " ")
	masked = urlPattern.ReplaceAllString(masked, " ")
	stats.PhoneCount = len(phonePattern.FindAllString(masked, -1))
	stats.NumericCount = len(numericPattern.FindAllString(masked, -1))
	stats.SentenceCount = len(sentenceEnd.FindAllString(masked, -1))
	stats.ParagraphCount = len(splitParagraphs(stats.FullText))
	return stats
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Payload converts stats into the per-job OCR results block.
func (s Stats) Payload(language string) *domain.OCRPayload {
	if language == "" {
		language = "unknown"
	}
	return &domain.OCRPayload{
		FullText:         s.FullText,
		TotalBlocks:      s.TotalBlocks,
		TotalCharacters:  s.TotalCharacters,
		TotalWords:       s.TotalWords,
		LanguageDetected: language,
		ConfidenceAvg:    s.ConfidenceAvg,
	}
}
