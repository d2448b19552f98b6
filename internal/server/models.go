package server

import (
	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/validation"
)

// ExtractBillRequest is the body of POST /extract-bill-data.
type ExtractBillRequest struct {
	Document string `json:"document" binding:"required"`
}

// BillPage holds the line items of one page. Pages are processed
// independently; this service handles one page per request.
type BillPage struct {
	PageNo    string                     `json:"page_no"`
	BillItems []extraction.CandidateItem `json:"bill_items"`
}

type BillExtractionData struct {
	PagewiseLineItems []BillPage `json:"pagewise_line_items"`
	TotalItemCount    int        `json:"total_item_count"`
	ReconciledAmount  float64    `json:"reconciled_amount"`
}

type QualityMetrics struct {
	ImageQualityScore      float64  `json:"image_quality_score"`
	ExtractionConfidence   float64  `json:"extraction_confidence"`
	ItemsWithLowConfidence []string `json:"items_with_low_confidence"`
	OutliersDetected       []string `json:"outliers_detected"`
	Flags                  []string `json:"flags"`
}

// SuspiciousItem is a rejected candidate kept for diagnostics.
type SuspiciousItem struct {
	Item   extraction.CandidateItem `json:"item"`
	Issues []validation.IssueCode   `json:"issues"`
}

type ReconciliationReport struct {
	SuspiciousItems []SuspiciousItem `json:"suspicious_items"`
	ValidItems      int              `json:"valid_items"`
}

type ExtractionResponse struct {
	IsSuccess            bool                  `json:"is_success"`
	JobID                string                `json:"job_id,omitempty"`
	Data                 *BillExtractionData   `json:"data,omitempty"`
	Error                string                `json:"error,omitempty"`
	QualityMetrics       *QualityMetrics       `json:"quality_metrics,omitempty"`
	ReconciliationReport *ReconciliationReport `json:"reconciliation_report,omitempty"`
}
