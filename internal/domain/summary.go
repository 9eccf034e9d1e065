package domain

import (
	"fmt"
	"strings"
)

// summarizeResults derives the one-line human-readable summary stored next to
// the structured results payload.
func summarizeResults(jobType JobType, results *JobResults) string {
	if results == nil {
		return fmt.Sprintf("%s processing completed", jobType)
	}

	switch jobType {
	case JobTypeOCR:
		return summarizeOCR(results.OCR)
	case JobTypeBarcode:
		return summarizeBarcodes(results.Barcodes)
	case JobTypeQRCode:
		return summarizeQRCodes(results.QRCodes)
	case JobTypeAll:
		return summarizeCombined(results)
	default:
		return fmt.Sprintf("%s processing completed", jobType)
	}
}

func summarizeOCR(p *OCRPayload) string {
	if p == nil {
		return "OCR: no text found"
	}
	language := p.LanguageDetected
	if language == "" {
		language = "unknown"
	}
	return fmt.Sprintf("OCR: %d blocks, %d characters, language: %s",
		p.TotalBlocks, p.TotalCharacters, language)
}

func summarizeBarcodes(p *BarcodePayload) string {
	if p == nil || p.Count == 0 {
		return "Barcode: no codes found"
	}
	if p.Count == 1 {
		symbolType := "unknown"
		if len(p.SymbolTypes) > 0 {
			symbolType = p.SymbolTypes[0]
		}
		return fmt.Sprintf("Barcode: 1 %s code found", symbolType)
	}
	return fmt.Sprintf("Barcode: %d codes found (%s)", p.Count, strings.Join(p.SymbolTypes, ", "))
}

func summarizeQRCodes(p *QRCodePayload) string {
	if p == nil || p.Count == 0 {
		return "QR Code: no codes found"
	}
	if p.Count == 1 {
		dataType := p.DominantContentType()
		if dataType == "" {
			dataType = "text"
		}
		return fmt.Sprintf("QR Code: 1 %s code found", dataType)
	}
	return fmt.Sprintf("QR Code: %d codes found", p.Count)
}

func summarizeCombined(results *JobResults) string {
	var parts []string
	if results.OCR != nil {
		parts = append(parts, summarizeOCR(results.OCR))
	}
	if results.Barcodes != nil {
		parts = append(parts, summarizeBarcodes(results.Barcodes))
	}
	if results.QRCodes != nil {
		parts = append(parts, summarizeQRCodes(results.QRCodes))
	}
	if len(parts) == 0 {
		return "combined processing completed"
	}
	return strings.Join(parts, " | ")
}
