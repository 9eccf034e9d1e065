package barcode

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// Result is one enriched barcode record, owned by exactly one processing job.
// All derived fields are computed deterministically from the raw decoder hit
// at construction time and never edited afterward.
type Result struct {
	ResultID string `db:"result_id" json:"result_id"`
	JobID    string `db:"job_id" json:"job_id"`

	BarcodeData string `db:"barcode_data" json:"barcode_data"`
	BarcodeType string `db:"barcode_type" json:"barcode_type"`
	DataLength  int    `db:"data_length" json:"data_length"`

	CenterX    int `db:"center_x" json:"center_x"`
	CenterY    int `db:"center_y" json:"center_y"`
	Width      int `db:"width" json:"width"`
	Height     int `db:"height" json:"height"`
	AreaPixels int `db:"area_pixels" json:"area_pixels"`

	QualityScore       float64 `db:"quality_score" json:"quality_score"`
	QualityDescription string  `db:"quality_description" json:"quality_description"`

	ChecksumValid *bool  `db:"checksum_valid" json:"checksum_valid,omitempty"`
	ChecksumValue string `db:"checksum_value" json:"checksum_value,omitempty"`
	FormatValid   bool   `db:"format_valid" json:"format_valid"`

	ContentType      string `db:"content_type" json:"content_type"`
	CountryCode      string `db:"country_code" json:"country_code,omitempty"`
	ManufacturerCode string `db:"manufacturer_code" json:"manufacturer_code,omitempty"`
	ProductCode      string `db:"product_code" json:"product_code,omitempty"`
	CheckDigit       string `db:"check_digit" json:"check_digit,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BuildResult enriches one raw decoder hit into a barcode result attached to
// the given job.
func BuildResult(jobID string, hit domain.DecodedSymbol) *Result {
	geo := hit.DeriveGeometry()
	analysis := Analyze(hit.RawText, hit.SymbolType)

	return &Result{
		ResultID:           uuid.New().String(),
		JobID:              jobID,
		BarcodeData:        hit.RawText,
		BarcodeType:        hit.SymbolType,
		DataLength:         len(hit.RawText),
		CenterX:            geo.CenterX,
		CenterY:            geo.CenterY,
		Width:              geo.Width,
		Height:             geo.Height,
		AreaPixels:         geo.AreaPixels,
		QualityScore:       hit.Quality,
		QualityDescription: domain.QualityDescription(hit.Quality),
		ChecksumValid:      analysis.ChecksumValid,
		ChecksumValue:      analysis.ChecksumValue,
		FormatValid:        analysis.FormatValid,
		ContentType:        analysis.ContentType,
		CountryCode:        analysis.CountryCode,
		ManufacturerCode:   analysis.ManufacturerCode,
		ProductCode:        analysis.ProductCode,
		CheckDigit:         analysis.CheckDigit,
		CreatedAt:          time.Now().UTC(),
	}
}
