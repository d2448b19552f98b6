// Package validation scores and sanity-checks extracted line items. It is
// the consumer side of the extraction seam: any producer of CandidateItem
// values (the heuristic pipeline or the LLM extractor) can feed it.
package validation

import (
	"math"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
)

// IssueCode labels a structural problem found on a single item.
type IssueCode string

const (
	IssueInvalidNumbers      IssueCode = "invalid_numbers"
	IssueNonPositiveQuantity IssueCode = "non_positive_quantity"
	IssueNonPositiveAmount   IssueCode = "non_positive_amount"
)

// ValidatedItem wraps a candidate with its verdict. OK is true iff the issue
// set is empty; Confidence is diagnostic and reported even for rejected
// items. Validation never mutates the underlying candidate.
type ValidatedItem struct {
	Item       extraction.CandidateItem `json:"item"`
	OK         bool                     `json:"ok"`
	Confidence float64                  `json:"confidence"`
	Issues     []IssueCode              `json:"issues,omitempty"`
}

// Config holds the validation tunables.
type Config struct {
	// BaselineConfidence is the starting confidence for every item before
	// penalties apply. Default 0.95.
	BaselineConfidence float64

	// MissingNamePenalty is subtracted when the item name is empty.
	// Default 0.4.
	MissingNamePenalty float64

	// IssuePenalty is subtracted once per issue found. Default 0.2.
	IssuePenalty float64

	// OutlierSigma is the deviation multiplier above which an amount is an
	// outlier. Default 3.
	OutlierSigma float64

	// LowConfidenceCutoff marks accepted items whose confidence falls below
	// it for review. Default 0.85.
	LowConfidenceCutoff float64
}

func (c Config) withDefaults() Config {
	if c.BaselineConfidence <= 0 {
		c.BaselineConfidence = 0.95
	}
	if c.MissingNamePenalty <= 0 {
		c.MissingNamePenalty = 0.4
	}
	if c.IssuePenalty <= 0 {
		c.IssuePenalty = 0.2
	}
	if c.OutlierSigma <= 0 {
		c.OutlierSigma = 3
	}
	if c.LowConfidenceCutoff <= 0 {
		c.LowConfidenceCutoff = 0.85
	}
	return c
}

// ValidateItem checks one candidate for structural sanity.
//
// Non-finite quantity or amount short-circuits with invalid_numbers and zero
// confidence. Otherwise non-positive quantity and amount each add an issue.
// Confidence starts at the baseline, loses MissingNamePenalty for an empty
// name and IssuePenalty per issue, and is clamped to [0,1].
func (p *Pipeline) ValidateItem(item extraction.CandidateItem) ValidatedItem {
	if !isFinite(item.ItemQuantity) || !isFinite(item.ItemAmount) {
		return ValidatedItem{
			Item:   item,
			Issues: []IssueCode{IssueInvalidNumbers},
		}
	}

	var issues []IssueCode
	if item.ItemQuantity <= 0 {
		issues = append(issues, IssueNonPositiveQuantity)
	}
	if item.ItemAmount <= 0 {
		issues = append(issues, IssueNonPositiveAmount)
	}

	conf := p.cfg.BaselineConfidence
	if item.ItemName == "" {
		conf -= p.cfg.MissingNamePenalty
	}
	conf -= p.cfg.IssuePenalty * float64(len(issues))

	return ValidatedItem{
		Item:       item,
		OK:         len(issues) == 0,
		Confidence: clamp01(conf),
		Issues:     issues,
	}
}

// DetectOutliers returns the amounts whose deviation from the population
// mean exceeds OutlierSigma population standard deviations. Fewer than two
// amounts, or zero variance, give no statistical basis and return nothing.
func (p *Pipeline) DetectOutliers(amounts []float64) []float64 {
	if len(amounts) < 2 {
		return nil
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var sq float64
	for _, a := range amounts {
		d := a - mean
		sq += d * d
	}
	stdev := math.Sqrt(sq / float64(len(amounts)))
	if stdev == 0 {
		return nil
	}

	var outliers []float64
	for _, a := range amounts {
		if math.Abs(a-mean) > p.cfg.OutlierSigma*stdev {
			outliers = append(outliers, a)
		}
	}
	return outliers
}

// AggregateConfidence rolls per-item confidence into one score. An empty
// list scores 0. Items reporting zero confidence without any recorded issue
// never went through the validator; they count as the baseline so producers
// that skip per-item scoring are not punished for it.
func (p *Pipeline) AggregateConfidence(items []ValidatedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, v := range items {
		c := v.Confidence
		if c == 0 && len(v.Issues) == 0 {
			c = p.cfg.BaselineConfidence
		}
		sum += c
	}
	return sum / float64(len(items))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
