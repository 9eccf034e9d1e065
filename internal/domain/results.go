package domain

// ProcessingParams carries per-type processing options. Exactly the variants
// matching the job type are expected to be set; the rest stay nil.
type ProcessingParams struct {
	OCR     *OCRParams     `json:"ocr,omitempty"`
	Barcode *BarcodeParams `json:"barcode,omitempty"`
	QRCode  *QRCodeParams  `json:"qrcode,omitempty"`
}

// OCRParams are options for text-recognition jobs.
type OCRParams struct {
	Language      string  `json:"language,omitempty"`
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// BarcodeParams are options for barcode-reading jobs.
type BarcodeParams struct {
	Symbologies       []string `json:"symbologies,omitempty"`
	ValidateChecksums bool     `json:"validate_checksums,omitempty"`
}

// QRCodeParams are options for QR-reading jobs.
type QRCodeParams struct {
	AnalyzeSecurity bool `json:"analyze_security,omitempty"`
}

// JobResults is the structured results payload stored on a completed job,
// keyed by job type. Combined ("all") jobs populate several variants.
type JobResults struct {
	OCR      *OCRPayload     `json:"ocr,omitempty"`
	Barcodes *BarcodePayload `json:"barcodes,omitempty"`
	QRCodes  *QRCodePayload  `json:"qr_codes,omitempty"`
}

// OCRPayload summarizes extracted text for the results column. Full block
// detail lives in the ocr_results table.
type OCRPayload struct {
	FullText         string  `json:"full_text"`
	TotalBlocks      int     `json:"total_blocks"`
	TotalCharacters  int     `json:"total_characters"`
	TotalWords       int     `json:"total_words"`
	LanguageDetected string  `json:"language_detected,omitempty"`
	ConfidenceAvg    float64 `json:"confidence_avg"`
}

// BarcodePayload summarizes detected barcodes for the results column.
type BarcodePayload struct {
	Count       int           `json:"count"`
	SymbolTypes []string      `json:"symbol_types,omitempty"` // distinct, in first-seen order
	Items       []BarcodeItem `json:"items,omitempty"`
}

// BarcodeItem is the compact per-symbol entry embedded in the job results.
type BarcodeItem struct {
	Data          string `json:"data"`
	Type          string `json:"type"`
	ContentType   string `json:"content_type,omitempty"`
	ChecksumValid *bool  `json:"checksum_valid,omitempty"`
}

// QRCodePayload summarizes detected QR codes for the results column.
type QRCodePayload struct {
	Count        int            `json:"count"`
	ContentTypes map[string]int `json:"content_types,omitempty"` // data_type -> count
	Items        []QRCodeItem   `json:"items,omitempty"`
}

// QRCodeItem is the compact per-symbol entry embedded in the job results.
type QRCodeItem struct {
	Data       string `json:"data"`
	DataType   string `json:"data_type"`
	Suspicious bool   `json:"suspicious,omitempty"`
}

// DominantContentType returns the most frequent QR data type, breaking ties
// by the lexicographically smaller name so summaries stay deterministic.
func (p *QRCodePayload) DominantContentType() string {
	best := ""
	bestCount := 0
	for name, count := range p.ContentTypes {
		if count > bestCount || (count == bestCount && (best == "" || name < best)) {
			best = name
			bestCount = count
		}
	}
	return best
}
