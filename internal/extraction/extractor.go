// Package extraction reconstructs structured bill line items from the
// spatially scattered text fragments an OCR engine produces for one page.
//
// The pipeline is pure and holds no state between calls: fragments are
// grouped into visual rows by vertical proximity, header rows are discarded,
// each remaining row is interpreted into a name plus quantity/rate/amount,
// and summary rows (totals, taxes) are filtered out. Callers may run it
// concurrently across pages without locking.
package extraction

import "log/slog"

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg.withDefaults(), logger: logger}
}

// ExtractItems runs the full heuristic pipeline over one page's fragments.
// An empty fragment set is a valid empty result, not an error; rows that
// cannot be parsed are dropped silently (they carry no numeric evidence).
func (e *Extractor) ExtractItems(frags []TextFragment) []CandidateItem {
	rows := e.buildRows(frags)

	var headers, unparseable, excluded int
	items := make([]CandidateItem, 0, len(rows))
	for _, row := range rows {
		if isHeaderRow(row) {
			headers++
			continue
		}
		item, ok := e.interpretRow(row)
		if !ok {
			unparseable++
			continue
		}
		if isExcluded(item) {
			excluded++
			continue
		}
		items = append(items, item)
	}

	e.logger.Debug("extraction.heuristic",
		"fragments", len(frags),
		"rows", len(rows),
		"headers", headers,
		"unparseable", unparseable,
		"excluded", excluded,
		"items", len(items),
	)
	return items
}
