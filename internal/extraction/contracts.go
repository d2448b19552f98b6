package extraction

import (
	"encoding/json"
	"fmt"
)

// BBox is an axis-aligned box in image space. Origin is the top-left corner
// of the page; Y grows downward.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MarshalJSON emits the compact [x, y, w, h] form used on the wire.
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.Width, b.Height})
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(arr) != 4 {
		return fmt.Errorf("bbox: expected 4 elements, got %d", len(arr))
	}
	b.X, b.Y, b.Width, b.Height = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// TextFragment is one OCR-recognized span with its position and the engine's
// recognition confidence in [0,1]. Fragments are produced once per page by
// the OCR layer and read-only afterward.
type TextFragment struct {
	Text       string  `json:"text"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

// CandidateItem is a row interpreted into name/quantity/rate/amount, not yet
// validated. ItemAmount is whatever the row reported; it is not required to
// equal quantity*rate (OCR noise makes exact reconciliation unrealistic).
type CandidateItem struct {
	ItemName     string  `json:"item_name"`
	ItemQuantity float64 `json:"item_quantity"`
	ItemRate     float64 `json:"item_rate"`
	ItemAmount   float64 `json:"item_amount"`
}

// Config holds the tunables of the heuristic extractor.
type Config struct {
	// RowYThreshold is the maximum vertical distance (image units) between a
	// fragment and the last fragment placed in the current row for the two to
	// be considered the same visual line. Larger values merge more
	// aggressively at the risk of conflating two real lines. Default 18.
	RowYThreshold float64

	// MinRowFragments is the minimum number of fragments a row needs to
	// survive grouping. Isolated fragments cannot form an item row. Default 2.
	MinRowFragments int

	// MinNameLength rejects rows whose reconstructed name is shorter than
	// this many characters. Default 2.
	MinNameLength int
}

func (c Config) withDefaults() Config {
	if c.RowYThreshold <= 0 {
		c.RowYThreshold = 18
	}
	if c.MinRowFragments <= 0 {
		c.MinRowFragments = 2
	}
	if c.MinNameLength <= 0 {
		c.MinNameLength = 2
	}
	return c
}
