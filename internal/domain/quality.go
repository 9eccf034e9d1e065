package domain

// QualityDescription maps a decoder quality score to a qualitative bucket.
// The same mapping applies to barcode and QR results.
func QualityDescription(score float64) string {
	switch {
	case score >= 0.9:
		return "excellent"
	case score >= 0.7:
		return "good"
	case score >= 0.5:
		return "fair"
	default:
		return "poor"
	}
}
