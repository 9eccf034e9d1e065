package qrcode

// Alphanumeric capacity in characters for QR versions 1-5 at each error
// correction level, per ISO/IEC 18004 table 7.
var alphanumericCapacity = map[int]map[string]int{
	1: {"L": 25, "M": 20, "Q": 16, "H": 10},
	2: {"L": 47, "M": 38, "Q": 29, "H": 20},
	3: {"L": 77, "M": 61, "Q": 47, "H": 35},
	4: {"L": 114, "M": 90, "Q": 67, "H": 50},
	5: {"L": 154, "M": 122, "Q": 87, "H": 64},
}

// EstimatedCapacity returns the alphanumeric capacity for the given
// version and ECC level, or 0 when the combination is outside the table.
func EstimatedCapacity(version int, eccLevel string) int {
	levels, ok := alphanumericCapacity[version]
	if !ok {
		return 0
	}
	return levels[eccLevel]
}

// ModulesCount returns the module grid dimension for a QR version.
func ModulesCount(version int) int {
	if version < 1 {
		return 0
	}
	return version*4 + 17
}
