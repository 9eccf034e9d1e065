package barcode

import (
	"strconv"
	"strings"
)

// Content classification tags assigned by Analyze.
const (
	ContentProduct      = "product"
	ContentISBN         = "isbn"
	ContentSerial       = "serial"
	ContentNumeric      = "numeric"
	ContentAlphanumeric = "alphanumeric"
	ContentCustom       = "custom"
	ContentMixed        = "mixed"
)

// Analysis is the outcome of classifying and validating one barcode payload.
// ChecksumValid is nil for symbologies without a check digit.
type Analysis struct {
	ContentType      string
	CountryCode      string
	ManufacturerCode string
	ProductCode      string
	CheckDigit       string
	ChecksumValid    *bool
	ChecksumValue    string
	FormatValid      bool
}

// Analyze classifies a decoded barcode payload by symbology and validates its
// check digit where the symbology defines one. It is a pure function: the same
// input always yields the same analysis, and malformed input degrades to
// FormatValid=false / ChecksumValid=false instead of failing.
func Analyze(data, symbolType string) Analysis {
	data = strings.TrimSpace(data)
	a := Analysis{FormatValid: true}

	switch strings.ToUpper(symbolType) {
	case "EAN13", "EAN8", "UPC_A", "UPC_E":
		analyzeProduct(&a, data, strings.ToUpper(symbolType))
	case "CODE128", "CODE39":
		analyzeAlphanumeric(&a, data)
	default:
		a.ContentType = classifyFreeform(data)
	}

	return a
}

// analyzeProduct slices EAN/UPC payloads into their fixed-offset fields and
// runs the check-digit arithmetic for EAN13 and UPC-A.
func analyzeProduct(a *Analysis, data, symbolType string) {
	a.ContentType = ContentProduct

	switch symbolType {
	case "EAN13":
		if len(data) != 13 || !isDigits(data) {
			a.FormatValid = false
			a.ChecksumValid = boolPtr(false)
			return
		}
		a.CountryCode = data[0:3]
		a.ManufacturerCode = data[3:7]
		a.ProductCode = data[7:12]
		a.CheckDigit = data[12:13]
		check, valid := ValidateEAN13(data)
		a.ChecksumValue = strconv.Itoa(check)
		a.ChecksumValid = boolPtr(valid)

	case "UPC_A":
		if len(data) != 12 || !isDigits(data) {
			a.FormatValid = false
			a.ChecksumValid = boolPtr(false)
			return
		}
		a.ManufacturerCode = data[0:6]
		a.ProductCode = data[6:11]
		a.CheckDigit = data[11:12]
		check, valid := ValidateUPCA(data)
		a.ChecksumValue = strconv.Itoa(check)
		a.ChecksumValid = boolPtr(valid)

	case "EAN8":
		if len(data) != 8 || !isDigits(data) {
			a.FormatValid = false
			return
		}
		a.CountryCode = data[0:2]
		a.ManufacturerCode = data[2:5]
		a.ProductCode = data[5:7]
		a.CheckDigit = data[7:8]

	default: // UPC_E and other compressed product codes keep the tag only
		if !isDigits(data) {
			a.FormatValid = false
		}
	}
}

func analyzeAlphanumeric(a *Analysis, data string) {
	upper := strings.ToUpper(data)
	switch {
	case strings.HasPrefix(upper, "ISBN"):
		a.ContentType = ContentISBN
	case strings.HasPrefix(upper, "SN"):
		a.ContentType = ContentSerial
	case isDigits(data):
		a.ContentType = ContentNumeric
	default:
		a.ContentType = ContentCustom
	}
}

func classifyFreeform(data string) string {
	switch {
	case isDigits(data):
		return ContentNumeric
	case isAlnum(data):
		return ContentAlphanumeric
	default:
		return ContentMixed
	}
}

// ValidateEAN13 computes the EAN13 check digit and compares it against the
// payload's last digit. The caller guarantees 13 numeric characters.
func ValidateEAN13(data string) (checkDigit int, valid bool) {
	oddSum, evenSum := 0, 0
	for i := 0; i < 12; i++ {
		d := int(data[i] - '0')
		if i%2 == 0 {
			oddSum += d
		} else {
			evenSum += d
		}
	}
	checkDigit = (10 - (oddSum+evenSum*3)%10) % 10
	return checkDigit, checkDigit == int(data[12]-'0')
}

// ValidateUPCA computes the UPC-A check digit and compares it against the
// payload's last digit. The caller guarantees 12 numeric characters.
func ValidateUPCA(data string) (checkDigit int, valid bool) {
	oddSum, evenSum := 0, 0
	for i := 0; i < 11; i++ {
		d := int(data[i] - '0')
		if i%2 == 0 {
			oddSum += d
		} else {
			evenSum += d
		}
	}
	checkDigit = (10 - (oddSum*3+evenSum)%10) % 10
	return checkDigit, checkDigit == int(data[11]-'0')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

func boolPtr(b bool) *bool { return &b }
