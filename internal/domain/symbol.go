package domain

// DecodedSymbol is one raw barcode or QR hit emitted by an external decoder.
// The engine only consumes decoder output; it never decodes images itself.
type DecodedSymbol struct {
	RawText    string  `json:"raw_text"`
	SymbolType string  `json:"symbol_type"`
	BBox       []int   `json:"bbox,omitempty"` // [x, y, width, height] in pixels
	Quality    float64 `json:"quality"`        // decoder quality hint, 0-1

	// QR-specific, zero when the decoder did not report them.
	Version  int    `json:"version,omitempty"`
	ECCLevel string `json:"ecc_level,omitempty"` // L, M, Q, H
}

// Geometry derived from a symbol bounding box. All fields are zero when the
// decoder supplied no usable box.
type Geometry struct {
	CenterX    int `json:"center_x"`
	CenterY    int `json:"center_y"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	AreaPixels int `json:"area_pixels"`
}

// DeriveGeometry computes center and area from a [x, y, w, h] bounding box.
func (s DecodedSymbol) DeriveGeometry() Geometry {
	if len(s.BBox) < 4 {
		return Geometry{}
	}
	x, y, w, h := s.BBox[0], s.BBox[1], s.BBox[2], s.BBox[3]
	return Geometry{
		CenterX:    x + w/2,
		CenterY:    y + h/2,
		Width:      w,
		Height:     h,
		AreaPixels: w * h,
	}
}

// TextBlock is one OCR text region emitted by an external recognizer.
type TextBlock struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-1
	BBox       []int   `json:"bbox,omitempty"`
}
