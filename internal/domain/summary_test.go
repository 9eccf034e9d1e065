package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeResults(t *testing.T) {
	tests := []struct {
		name    string
		jobType JobType
		results *JobResults
		want    string
	}{
		{
			name:    "ocr with language",
			jobType: JobTypeOCR,
			results: &JobResults{OCR: &OCRPayload{TotalBlocks: 3, TotalCharacters: 120, LanguageDetected: "en"}},
			want:    "OCR: 3 blocks, 120 characters, language: en",
		},
		{
			name:    "ocr without language",
			jobType: JobTypeOCR,
			results: &JobResults{OCR: &OCRPayload{TotalBlocks: 1, TotalCharacters: 10}},
			want:    "OCR: 1 blocks, 10 characters, language: unknown",
		},
		{
			name:    "no barcodes",
			jobType: JobTypeBarcode,
			results: &JobResults{Barcodes: &BarcodePayload{}},
			want:    "Barcode: no codes found",
		},
		{
			name:    "single barcode",
			jobType: JobTypeBarcode,
			results: &JobResults{Barcodes: &BarcodePayload{Count: 1, SymbolTypes: []string{"CODE128"}}},
			want:    "Barcode: 1 CODE128 code found",
		},
		{
			name:    "multiple barcodes with distinct types",
			jobType: JobTypeBarcode,
			results: &JobResults{Barcodes: &BarcodePayload{Count: 3, SymbolTypes: []string{"EAN13", "CODE39"}}},
			want:    "Barcode: 3 codes found (EAN13, CODE39)",
		},
		{
			name:    "single qr code with dominant type",
			jobType: JobTypeQRCode,
			results: &JobResults{QRCodes: &QRCodePayload{Count: 1, ContentTypes: map[string]int{"url": 1}}},
			want:    "QR Code: 1 url code found",
		},
		{
			name:    "multiple qr codes",
			jobType: JobTypeQRCode,
			results: &JobResults{QRCodes: &QRCodePayload{Count: 4, ContentTypes: map[string]int{"url": 2, "wifi": 2}}},
			want:    "QR Code: 4 codes found",
		},
		{
			name:    "combined joins sub-summaries",
			jobType: JobTypeAll,
			results: &JobResults{
				OCR:      &OCRPayload{TotalBlocks: 2, TotalCharacters: 40, LanguageDetected: "pt"},
				Barcodes: &BarcodePayload{Count: 1, SymbolTypes: []string{"UPC_A"}},
				QRCodes:  &QRCodePayload{Count: 2, ContentTypes: map[string]int{"text": 2}},
			},
			want: "OCR: 2 blocks, 40 characters, language: pt | Barcode: 1 UPC_A code found | QR Code: 2 codes found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarizeResults(tt.jobType, tt.results))
		})
	}
}

func TestDominantContentType(t *testing.T) {
	p := &QRCodePayload{ContentTypes: map[string]int{"url": 2, "wifi": 5, "text": 1}}
	assert.Equal(t, "wifi", p.DominantContentType())

	// Deterministic tie break.
	tie := &QRCodePayload{ContentTypes: map[string]int{"wifi": 2, "geo": 2}}
	assert.Equal(t, "geo", tie.DominantContentType())

	assert.Equal(t, "", (&QRCodePayload{}).DominantContentType())
}
