package extraction

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reCurrencyNoise = regexp.MustCompile(`[₹$€£,\s]`)
	reDecimalToken  = regexp.MustCompile(`\d+\.?\d*`)
)

// excludeKeywords identify candidate items that are totals, taxes or other
// summary lines rather than purchasable items. Matched against the fully
// formed lower-cased item name, after row interpretation.
var excludeKeywords = []string{
	"subtotal", "sub-total", "total", "grand total", "net total",
	"cgst", "sgst", "igst", "tax", "gst", "vat",
	"discount", "round off", "amount due",
}

// extractNumber strips currency symbols, commas and whitespace from a
// fragment's text and returns the first decimal token found.
func extractNumber(text string) (float64, bool) {
	cleaned := reCurrencyNoise.ReplaceAllString(text, "")
	tok := reDecimalToken.FindString(cleaned)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// interpretRow parses one row into a candidate item, or reports the row as
// not parseable. Fragments are re-sorted left to right first: reading order
// is horizontal, independent of the vertical sort used for grouping.
//
// Everything before the first fragment carrying a number becomes the item
// name. The numeric values, left to right, are assigned by count:
//
//	>=3  the three rightmost are quantity, rate, amount
//	 2   quantity and amount; rate derived as amount/quantity (0 if qty is 0)
//	 1   a single number is a single-unit total: qty=1, rate=amount=value
func (e *Extractor) interpretRow(row []TextFragment) (CandidateItem, bool) {
	sorted := make([]TextFragment, len(row))
	copy(sorted, row)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	var nums []float64
	firstNumIdx := -1
	for i, f := range sorted {
		if v, ok := extractNumber(f.Text); ok {
			if firstNumIdx < 0 {
				firstNumIdx = i
			}
			nums = append(nums, v)
		}
	}
	if firstNumIdx < 0 {
		return CandidateItem{}, false
	}

	var nameParts []string
	for _, f := range sorted[:firstNumIdx] {
		if t := strings.TrimSpace(f.Text); t != "" {
			nameParts = append(nameParts, t)
		}
	}
	name := strings.Join(nameParts, " ")
	if len(name) < e.cfg.MinNameLength {
		return CandidateItem{}, false
	}

	item := CandidateItem{ItemName: name}
	switch {
	case len(nums) >= 3:
		item.ItemQuantity = nums[len(nums)-3]
		item.ItemRate = nums[len(nums)-2]
		item.ItemAmount = nums[len(nums)-1]
	case len(nums) == 2:
		item.ItemQuantity = nums[0]
		item.ItemAmount = nums[1]
		if item.ItemQuantity > 0 {
			item.ItemRate = item.ItemAmount / item.ItemQuantity
		}
	default:
		item.ItemQuantity = 1
		item.ItemAmount = nums[0]
		item.ItemRate = nums[0]
	}
	return item, true
}

// isExcluded reports whether a candidate item is a summary line (total, tax,
// discount, ...) that should never reach the item list.
func isExcluded(item CandidateItem) bool {
	name := strings.ToLower(item.ItemName)
	for _, kw := range excludeKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
