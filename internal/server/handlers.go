package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-extraction/internal/export"
	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/llm"
	"github.com/joseph-ayodele/bill-extraction/internal/ocr"
	"github.com/joseph-ayodele/bill-extraction/internal/preprocess"
	"github.com/joseph-ayodele/bill-extraction/internal/repository"
)

const lowImageQualityCutoff = 0.3

func (s *Server) handleExtractBill(c *gin.Context) {
	var req ExtractBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ExtractionResponse{
			Error: fmt.Sprintf("invalid request: %v", err),
		})
		return
	}
	ctx := c.Request.Context()

	raw, err := s.fetchDocument(ctx, req.Document)
	if err != nil {
		s.logger.Warn("document download failed", "url", req.Document, "error", err)
		c.JSON(http.StatusBadGateway, ExtractionResponse{Error: err.Error()})
		return
	}

	img, err := preprocess.Decode(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ExtractionResponse{Error: err.Error()})
		return
	}
	quality := preprocess.QualityScore(img)
	enhanced := preprocess.EnhanceForOCR(img)

	tmp, err := os.CreateTemp("", "bill-*.png")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ExtractionResponse{Error: "temp file: " + err.Error()})
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if rerr := os.Remove(tmpPath); rerr != nil {
			s.logger.Warn("temp image cleanup failed", "path", filepath.Base(tmpPath), "error", rerr)
		}
	}()
	if err := preprocess.Save(enhanced, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, ExtractionResponse{Error: err.Error()})
		return
	}

	page, err := s.deps.Pages.Extract(ctx, tmpPath)
	if err != nil {
		s.logger.Error("ocr failed", "url", req.Document, "error", err)
		c.JSON(http.StatusInternalServerError, ExtractionResponse{Error: err.Error()})
		return
	}

	var flags []string
	if quality < lowImageQualityCutoff {
		flags = append(flags, "low_image_quality")
	}

	items, method := s.extractItems(c, req.Document, page)
	if method == "heuristic" && s.deps.Items != nil {
		flags = append(flags, "heuristic_fallback")
	}

	rep := s.deps.Validator.Run(items)

	accepted := make([]extraction.CandidateItem, 0, len(rep.Accepted))
	for _, v := range rep.Accepted {
		accepted = append(accepted, v.Item)
	}
	suspicious := make([]SuspiciousItem, 0, len(rep.Rejected))
	for _, v := range rep.Rejected {
		suspicious = append(suspicious, SuspiciousItem{Item: v.Item, Issues: v.Issues})
	}
	outliers := make([]string, 0, len(rep.Outliers))
	for _, a := range rep.Outliers {
		outliers = append(outliers, fmt.Sprintf("%.2f", a))
	}

	resp := ExtractionResponse{
		IsSuccess: true,
		Data: &BillExtractionData{
			PagewiseLineItems: []BillPage{{PageNo: "1", BillItems: accepted}},
			TotalItemCount:    len(accepted),
			ReconciledAmount:  rep.ReconciledAmount,
		},
		QualityMetrics: &QualityMetrics{
			ImageQualityScore:      quality,
			ExtractionConfidence:   rep.Confidence,
			ItemsWithLowConfidence: rep.LowConfidenceNames,
			OutliersDetected:       outliers,
			Flags:                  flags,
		},
		ReconciliationReport: &ReconciliationReport{
			SuspiciousItems: suspicious,
			ValidItems:      len(accepted),
		},
	}

	if s.deps.Jobs != nil {
		resp.JobID = s.persistJob(c, req.Document, method, &resp)
	}

	c.JSON(http.StatusOK, resp)
}

// extractItems runs the configured producer. The LLM path is primary when
// wired; any LLM failure falls back to the positional heuristic so a bad
// upstream never fails the request.
func (s *Server) extractItems(c *gin.Context, docURL string, page ocr.Result) ([]extraction.CandidateItem, string) {
	if s.deps.Items != nil {
		items, _, err := s.deps.Items.ExtractItems(c.Request.Context(), llm.ExtractRequest{
			OCRText:        page.Text,
			DocumentHint:   docURL,
			PrepConfidence: page.Confidence,
		})
		if err == nil {
			return items, "llm"
		}
		s.logger.Warn("llm extraction failed, falling back to heuristic",
			"url", docURL, "error", err)
	}
	return s.deps.Heuristic.ExtractItems(page.Fragments), "heuristic"
}

// persistJob stores the run best-effort; a storage failure is logged but
// never fails the request.
func (s *Server) persistJob(c *gin.Context, docURL, method string, resp *ExtractionResponse) string {
	body, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("job result marshal failed", "error", err)
		return ""
	}
	job := &repository.ExtractionJob{
		DocumentURL:      docURL,
		Method:           method,
		ItemCount:        resp.Data.TotalItemCount,
		ReconciledAmount: resp.Data.ReconciledAmount,
		Confidence:       resp.QualityMetrics.ExtractionConfidence,
		ResultJSON:       body,
	}
	if err := s.deps.Jobs.Insert(c.Request.Context(), job); err != nil {
		s.logger.Warn("job persist failed", "url", docURL, "error", err)
		return ""
	}
	return job.ID.String()
}

func (s *Server) handleExportJob(c *gin.Context) {
	if s.deps.Jobs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persistence is not configured"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := s.deps.Jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	var stored ExtractionResponse
	if err := json.Unmarshal(job.ResultJSON, &stored); err != nil || stored.Data == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored result is unreadable"})
		return
	}

	var rows []export.Row
	for _, pg := range stored.Data.PagewiseLineItems {
		for _, it := range pg.BillItems {
			rows = append(rows, export.Row{
				Name:       it.ItemName,
				Quantity:   it.ItemQuantity,
				Rate:       it.ItemRate,
				Amount:     it.ItemAmount,
				Confidence: job.Confidence,
			})
		}
	}

	book, err := s.deps.Exporter.ItemsXLSX(rows, export.Meta{
		DocumentURL:      job.DocumentURL,
		Confidence:       job.Confidence,
		ReconciledAmount: job.ReconciledAmount,
		GeneratedAt:      job.CreatedAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "extraction-"+job.ID.String()+".xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", book)
}
