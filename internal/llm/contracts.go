package llm

import (
	"context"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
)

type ExtractRequest struct {
	// OCRText is the page's reassembled plain text.
	OCRText string
	// DocumentHint is an optional caller-supplied label (URL, filename) for
	// prompt context and logs.
	DocumentHint string
	// PrepConfidence is the OCR stage's page confidence, if known.
	PrepConfidence float32
}

// ItemExtractor is the alternative line-item producer. Implementations emit
// the same CandidateItem shape as the heuristic pipeline, so callers can feed
// either into the validation pipeline unchanged.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, req ExtractRequest) ([]extraction.CandidateItem, []byte /*rawJSON*/, error)
}
