package qrcode

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// Result is one decoded QR symbol enriched with content classification,
// geometry and a security assessment.
type Result struct {
	ResultID        string  `db:"result_id" json:"result_id"`
	JobID           string  `db:"job_id" json:"job_id"`
	QRData          string  `db:"qr_data" json:"qr_data"`
	DataType        string  `db:"data_type" json:"data_type"`
	DataLength      int     `db:"data_length" json:"data_length"`
	Version         int     `db:"version" json:"version,omitempty"`
	ErrorCorrection string  `db:"error_correction" json:"error_correction,omitempty"`
	ModulesCount    int     `db:"modules_count" json:"modules_count,omitempty"`
	ModuleSize      float64 `db:"module_size" json:"module_size,omitempty"`
	EstimatedCap    int     `db:"estimated_capacity" json:"estimated_capacity,omitempty"`
	DataUtilization float64 `db:"data_utilization" json:"data_utilization,omitempty"`

	CenterX    int `db:"center_x" json:"center_x"`
	CenterY    int `db:"center_y" json:"center_y"`
	Width      int `db:"width" json:"width"`
	Height     int `db:"height" json:"height"`
	AreaPixels int `db:"area_pixels" json:"area_pixels"`

	QualityScore       float64 `db:"quality_score" json:"quality_score"`
	QualityDescription string  `db:"quality_description" json:"quality_description"`

	ContainsURL       bool `db:"contains_url" json:"contains_url"`
	URLShortener      bool `db:"url_shortener" json:"url_shortener"`
	SuspiciousContent bool `db:"suspicious_content" json:"suspicious_content"`
	Suspicious        bool `db:"suspicious" json:"suspicious"`

	// Classified sub-record (URLInfo, WiFiInfo, GeoInfo or ContactInfo)
	// serialized for the parsed_data column.
	ParsedData json.RawMessage `db:"parsed_data" json:"parsed_data,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BuildResult assembles the full enriched record for one decoded QR
// symbol belonging to jobID.
func BuildResult(jobID string, hit domain.DecodedSymbol) Result {
	geom := hit.DeriveGeometry()
	dataType := Classify(hit.RawText)
	flags := AssessSecurity(hit.RawText)

	res := Result{
		ResultID:           uuid.New().String(),
		JobID:              jobID,
		QRData:             hit.RawText,
		DataType:           dataType,
		DataLength:         len(hit.RawText),
		Version:            hit.Version,
		ErrorCorrection:    hit.ECCLevel,
		CenterX:            geom.CenterX,
		CenterY:            geom.CenterY,
		Width:              geom.Width,
		Height:             geom.Height,
		AreaPixels:         geom.AreaPixels,
		QualityScore:       hit.Quality,
		QualityDescription: domain.QualityDescription(hit.Quality),
		ContainsURL:        flags.ContainsURL,
		URLShortener:       flags.URLShortener,
		SuspiciousContent:  flags.SuspiciousContent,
		Suspicious:         flags.Suspicious(),
		CreatedAt:          time.Now().UTC(),
	}

	if hit.Version > 0 {
		res.ModulesCount = ModulesCount(hit.Version)
		if geom.Width > 0 && res.ModulesCount > 0 {
			res.ModuleSize = float64(geom.Width) / float64(res.ModulesCount)
		}
		res.EstimatedCap = EstimatedCapacity(hit.Version, hit.ECCLevel)
		if res.EstimatedCap > 0 {
			res.DataUtilization = float64(res.DataLength) / float64(res.EstimatedCap)
			if res.DataUtilization > 1.0 {
				res.DataUtilization = 1.0
			}
		}
	}

	if parsed := parseByType(dataType, hit.RawText); parsed != nil {
		if raw, err := json.Marshal(parsed); err == nil {
			res.ParsedData = raw
		}
	}
	return res
}

func parseByType(dataType, data string) any {
	switch dataType {
	case DataTypeURL:
		return ParseURL(data)
	case DataTypeWiFi:
		return ParseWiFi(data)
	case DataTypeGeo:
		return ParseGeo(data)
	case DataTypeVCard:
		return ParseVCard(data)
	default:
		return nil
	}
}
