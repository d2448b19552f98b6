package validation

import (
	"log/slog"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
)

type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

func NewPipeline(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg.withDefaults(), logger: logger}
}

// Report is the validation pipeline output for one page's items.
type Report struct {
	// Accepted items, in input order.
	Accepted []ValidatedItem
	// Rejected items with their issues, kept for diagnostics.
	Rejected []ValidatedItem
	// Outliers among accepted amounts.
	Outliers []float64
	// Confidence is the aggregate extraction-quality score in [0,1].
	Confidence float64
	// LowConfidenceNames lists accepted items under the review cutoff.
	LowConfidenceNames []string
	// ReconciledAmount is the sum of accepted amounts.
	ReconciledAmount float64
}

// Run validates every candidate, splits accepted from rejected, flags
// statistical outliers among the accepted amounts, and aggregates
// confidence. It is pure: running it twice on the same input yields the
// same report.
func (p *Pipeline) Run(items []extraction.CandidateItem) Report {
	var rep Report
	amounts := make([]float64, 0, len(items))
	for _, it := range items {
		v := p.ValidateItem(it)
		if !v.OK {
			rep.Rejected = append(rep.Rejected, v)
			continue
		}
		rep.Accepted = append(rep.Accepted, v)
		amounts = append(amounts, it.ItemAmount)
		rep.ReconciledAmount += it.ItemAmount
		if v.Confidence < p.cfg.LowConfidenceCutoff {
			rep.LowConfidenceNames = append(rep.LowConfidenceNames, it.ItemName)
		}
	}
	rep.Outliers = p.DetectOutliers(amounts)
	rep.Confidence = p.AggregateConfidence(rep.Accepted)

	p.logger.Debug("validation.run",
		"candidates", len(items),
		"accepted", len(rep.Accepted),
		"rejected", len(rep.Rejected),
		"outliers", len(rep.Outliers),
		"confidence", rep.Confidence,
	)
	return rep
}
