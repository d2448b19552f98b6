package extraction

import (
	"sort"
	"strings"
)

// headerKeywords mark table header rows. A row matching at least two distinct
// keywords is a header, not data. Substring containment (rather than token
// equality) tolerates OCR runs that merge adjacent words.
var headerKeywords = []string{
	"item", "product", "description", "name",
	"qty", "quantity", "rate", "price", "amount", "total", "mrp",
}

// buildRows groups unordered fragments into top-to-bottom visual lines.
//
// Fragments are sorted by the top of their bounding box and chained: a
// fragment joins the open row when its Y is within RowYThreshold of the last
// fragment placed in that row. Rows with fewer than MinRowFragments are
// dropped as noise.
//
// The comparison is against the last-placed fragment, not a row centroid, so
// a long row with accumulating vertical drift can absorb a fragment from the
// next visual line.
func (e *Extractor) buildRows(frags []TextFragment) [][]TextFragment {
	if len(frags) == 0 {
		return nil
	}

	sorted := make([]TextFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Y < sorted[j].BBox.Y
	})

	var rows [][]TextFragment
	var current []TextFragment
	for _, f := range sorted {
		if len(current) == 0 {
			current = append(current, f)
			continue
		}
		prevY := current[len(current)-1].BBox.Y
		if abs(f.BBox.Y-prevY) < e.cfg.RowYThreshold {
			current = append(current, f)
			continue
		}
		if len(current) >= e.cfg.MinRowFragments {
			rows = append(rows, current)
		}
		current = []TextFragment{f}
	}
	if len(current) >= e.cfg.MinRowFragments {
		rows = append(rows, current)
	}
	return rows
}

// isHeaderRow reports whether a row looks like a table header rather than a
// data row: two or more distinct header keywords appearing in its joined,
// lower-cased text.
func isHeaderRow(row []TextFragment) bool {
	var b strings.Builder
	for i, f := range row {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Text)
	}
	text := strings.ToLower(b.String())

	matches := 0
	for _, kw := range headerKeywords {
		if strings.Contains(text, kw) {
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
