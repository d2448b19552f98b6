package validation

import (
	"math"
	"reflect"
	"testing"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
)

func TestPipelineRun(t *testing.T) {
	p := NewPipeline(Config{}, nil)

	items := []extraction.CandidateItem{
		item("Paracetamol", 10, 2.5, 25.0),
		item("Bandage", 1, 50, 50),
		item("Expired credit", -1, 0, 10), // rejected: non-positive quantity
	}
	rep := p.Run(items)

	if len(rep.Accepted) != 2 {
		t.Fatalf("accepted = %d, want 2", len(rep.Accepted))
	}
	if len(rep.Rejected) != 1 {
		t.Fatalf("rejected = %d, want 1", len(rep.Rejected))
	}
	if rep.Rejected[0].Issues[0] != IssueNonPositiveQuantity {
		t.Errorf("rejected issue = %v", rep.Rejected[0].Issues)
	}
	if math.Abs(rep.ReconciledAmount-75.0) > 1e-9 {
		t.Errorf("reconciled = %v, want 75", rep.ReconciledAmount)
	}
	if len(rep.Outliers) != 0 {
		t.Errorf("outliers = %v, want none", rep.Outliers)
	}
	if math.Abs(rep.Confidence-0.95) > 1e-9 {
		t.Errorf("confidence = %v, want 0.95", rep.Confidence)
	}
	if len(rep.LowConfidenceNames) != 0 {
		t.Errorf("low confidence names = %v, want none", rep.LowConfidenceNames)
	}
}

func TestPipelineRunEmpty(t *testing.T) {
	p := NewPipeline(Config{}, nil)
	rep := p.Run(nil)
	if len(rep.Accepted) != 0 || len(rep.Rejected) != 0 || rep.Confidence != 0 {
		t.Errorf("empty input produced non-empty report: %+v", rep)
	}
}

// The pipeline holds no state between calls: two runs over the same input
// produce identical reports.
func TestPipelineRunIdempotent(t *testing.T) {
	p := NewPipeline(Config{}, nil)
	items := []extraction.CandidateItem{
		item("Paracetamol", 10, 2.5, 25.0),
		item("", 2, 5, 10),
		item("Broken", 0, 0, -1),
	}
	first := p.Run(items)
	second := p.Run(items)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestPipelineLowConfidenceCutoff(t *testing.T) {
	// An accepted item with an empty name keeps its issues clear but lands
	// under the review cutoff.
	p := NewPipeline(Config{}, nil)
	rep := p.Run([]extraction.CandidateItem{item("", 1, 5, 5)})
	if len(rep.Accepted) != 1 {
		t.Fatalf("accepted = %d, want 1", len(rep.Accepted))
	}
	if len(rep.LowConfidenceNames) != 1 {
		t.Fatalf("expected the empty-name item to be flagged for review")
	}
}
