package extraction

import "testing"

func TestExtractNumber(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "25.0", want: 25.0, ok: true},
		{in: "₹1,234.50", want: 1234.5, ok: true},
		{in: "$ 99", want: 99, ok: true},
		{in: "Qty:10", want: 10, ok: true},
		{in: "Paracetamol", ok: false},
		{in: "", ok: false},
		{in: "€£₹", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := extractNumber(tc.in)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("extractNumber(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestInterpretRow(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	testCases := []struct {
		name  string
		texts []string
		want  CandidateItem
		ok    bool
	}{
		{
			name:  "three numbers",
			texts: []string{"Paracetamol", "10", "2.5", "25.0"},
			want:  CandidateItem{ItemName: "Paracetamol", ItemQuantity: 10, ItemRate: 2.5, ItemAmount: 25.0},
			ok:    true,
		},
		{
			name:  "four numbers keeps rightmost three",
			texts: []string{"Syringe", "5ml", "4", "12.0", "48.0"},
			want:  CandidateItem{ItemName: "Syringe", ItemQuantity: 4, ItemRate: 12.0, ItemAmount: 48.0},
			ok:    true,
		},
		{
			name:  "two numbers derives rate",
			texts: []string{"Gauze Roll", "4", "20.0"},
			want:  CandidateItem{ItemName: "Gauze Roll", ItemQuantity: 4, ItemRate: 5.0, ItemAmount: 20.0},
			ok:    true,
		},
		{
			name:  "two numbers zero quantity never divides",
			texts: []string{"Gauze Roll", "0", "20.0"},
			want:  CandidateItem{ItemName: "Gauze Roll", ItemQuantity: 0, ItemRate: 0, ItemAmount: 20.0},
			ok:    true,
		},
		{
			name:  "single number is a single-unit total",
			texts: []string{"Bandage", "50"},
			want:  CandidateItem{ItemName: "Bandage", ItemQuantity: 1, ItemRate: 50, ItemAmount: 50},
			ok:    true,
		},
		{
			name:  "no numbers",
			texts: []string{"Thank", "you"},
			ok:    false,
		},
		{
			name:  "number first leaves empty name",
			texts: []string{"10", "2.5", "25.0"},
			ok:    false,
		},
		{
			name:  "name too short",
			texts: []string{"X", "25.0"},
			ok:    false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := make([]TextFragment, len(tc.texts))
			for i, txt := range tc.texts {
				row[i] = frag(txt, float64(10+i*100), 40)
			}
			got, ok := e.interpretRow(row)
			if ok != tc.ok {
				t.Fatalf("interpretRow ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("interpretRow = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestInterpretRowRestoresReadingOrder(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	// Fragments arrive in arbitrary horizontal order.
	row := []TextFragment{
		frag("25.0", 300, 40),
		frag("10", 150, 40),
		frag("Paracetamol", 10, 40),
		frag("2.5", 220, 40),
	}
	got, ok := e.interpretRow(row)
	if !ok {
		t.Fatal("row should parse")
	}
	want := CandidateItem{ItemName: "Paracetamol", ItemQuantity: 10, ItemRate: 2.5, ItemAmount: 25.0}
	if got != want {
		t.Errorf("interpretRow = %+v, want %+v", got, want)
	}
}

func TestIsExcluded(t *testing.T) {
	testCases := []struct {
		name     string
		excluded bool
	}{
		{name: "Paracetamol 500mg", excluded: false},
		{name: "Grand Total", excluded: true},
		{name: "SUB-TOTAL", excluded: true},
		{name: "CGST 9%", excluded: true},
		{name: "Round Off", excluded: true},
		{name: "Vatika Hair Oil", excluded: true}, // substring match, known tradeoff
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isExcluded(CandidateItem{ItemName: tc.name}); got != tc.excluded {
				t.Errorf("isExcluded(%q) = %v, want %v", tc.name, got, tc.excluded)
			}
		})
	}
}

// Full pipeline over a small synthetic bill: a header row, one item row and
// a total row. Only the item survives.
func TestExtractItems(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	frags := []TextFragment{
		frag("Item", 10, 0), frag("Qty", 150, 0), frag("Rate", 220, 2), frag("Amount", 300, 1),
		frag("Paracetamol", 10, 40), frag("10", 150, 42), frag("2.5", 220, 41), frag("25.0", 300, 40),
		frag("Total", 10, 90), frag("25.0", 300, 92),
	}
	items := e.ExtractItems(frags)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	want := CandidateItem{ItemName: "Paracetamol", ItemQuantity: 10, ItemRate: 2.5, ItemAmount: 25.0}
	if items[0] != want {
		t.Errorf("item = %+v, want %+v", items[0], want)
	}
}

func TestExtractItemsEmptyInput(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	if items := e.ExtractItems(nil); len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}
