package extraction

import "testing"

func frag(text string, x, y float64) TextFragment {
	return TextFragment{Text: text, BBox: BBox{X: x, Y: y, Width: 40, Height: 12}, Confidence: 0.9}
}

func TestBuildRowsSmallInputs(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	testCases := []struct {
		name  string
		frags []TextFragment
	}{
		{name: "empty", frags: nil},
		{name: "single fragment", frags: []TextFragment{frag("Paracetamol", 10, 10)}},
		{name: "two isolated fragments", frags: []TextFragment{
			frag("Paracetamol", 10, 10),
			frag("Bandage", 10, 100),
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if rows := e.buildRows(tc.frags); len(rows) != 0 {
				t.Fatalf("expected no rows, got %d", len(rows))
			}
		})
	}
}

func TestBuildRowsGroupsByVerticalProximity(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	// Two visual lines, fragments deliberately out of order.
	frags := []TextFragment{
		frag("25.0", 300, 42),
		frag("Paracetamol", 10, 40),
		frag("Total", 10, 90),
		frag("10", 150, 44),
		frag("25.0", 300, 92),
	}
	rows := e.buildRows(frags)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != 3 || rows[0][0].Text != "Paracetamol" {
		t.Errorf("first row wrong: %+v", rows[0])
	}
	if len(rows[1]) != 2 || rows[1][0].Text != "Total" {
		t.Errorf("second row wrong: %+v", rows[1])
	}
}

// Pins the chained-comparison grouping policy: each step is under the
// threshold, so the whole drifting run collapses into one row even though
// the first and last fragments are far apart. A centroid-based grouping
// would split this set differently.
func TestBuildRowsChainedDrift(t *testing.T) {
	e := NewExtractor(Config{RowYThreshold: 18}, nil)

	frags := []TextFragment{
		frag("a", 10, 0),
		frag("b", 60, 12),
		frag("c", 110, 24),
		frag("d", 160, 36),
	}
	rows := e.buildRows(frags)
	if len(rows) != 1 {
		t.Fatalf("expected 1 drifted row, got %d", len(rows))
	}
	if len(rows[0]) != 4 {
		t.Fatalf("expected all 4 fragments chained, got %d", len(rows[0]))
	}
}

func TestIsHeaderRow(t *testing.T) {
	testCases := []struct {
		name   string
		texts  []string
		header bool
	}{
		{name: "classic header", texts: []string{"Item", "Qty", "Rate", "Amount"}, header: true},
		{name: "merged ocr words", texts: []string{"ItemDescription", "QtyRate"}, header: true},
		{name: "single keyword", texts: []string{"Description", "of services"}, header: false},
		{name: "data row", texts: []string{"Paracetamol", "10", "2.5", "25.0"}, header: false},
		{name: "case insensitive", texts: []string{"PRODUCT", "PRICE"}, header: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := make([]TextFragment, len(tc.texts))
			for i, txt := range tc.texts {
				row[i] = frag(txt, float64(i*100), 10)
			}
			if got := isHeaderRow(row); got != tc.header {
				t.Errorf("isHeaderRow(%v) = %v, want %v", tc.texts, got, tc.header)
			}
		})
	}
}

// Adding a matching keyword to a header row can never flip the verdict back
// to "not header".
func TestIsHeaderRowMonotonic(t *testing.T) {
	row := []TextFragment{frag("Item", 0, 10), frag("Qty", 100, 10)}
	if !isHeaderRow(row) {
		t.Fatal("base row should be a header")
	}
	for _, kw := range headerKeywords {
		grown := append(append([]TextFragment{}, row...), frag(kw, 200, 10))
		if !isHeaderRow(grown) {
			t.Errorf("adding %q flipped header verdict", kw)
		}
	}
}
