package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/llm"
	"github.com/joseph-ayodele/bill-extraction/internal/ocr"
	"github.com/joseph-ayodele/bill-extraction/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPageReader struct {
	result ocr.Result
	err    error
}

func (s stubPageReader) Extract(_ context.Context, _ string) (ocr.Result, error) {
	return s.result, s.err
}

type stubItemExtractor struct {
	items []extraction.CandidateItem
	err   error
}

func (s stubItemExtractor) ExtractItems(_ context.Context, _ llm.ExtractRequest) ([]extraction.CandidateItem, []byte, error) {
	return s.items, nil, s.err
}

func frag(text string, x, y float64) extraction.TextFragment {
	return extraction.TextFragment{
		Text:       text,
		BBox:       extraction.BBox{X: x, Y: y, Width: 40, Height: 12},
		Confidence: 0.9,
	}
}

// billPage is a typical single-item bill: header row, one item row.
func billPage() ocr.Result {
	return ocr.Result{
		Fragments: []extraction.TextFragment{
			frag("Item", 10, 10), frag("Qty", 200, 10), frag("Rate", 300, 10), frag("Amount", 400, 10),
			frag("Paracetamol", 10, 50), frag("2", 200, 50), frag("12.5", 300, 50), frag("25.0", 400, 50),
		},
		Text:       "Item Qty Rate Amount\nParacetamol 2 12.5 25.0",
		Confidence: 0.9,
	}
}

// imageServer serves a small non-flat PNG, standing in for the bill image
// host.
func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
}

func newTestServer(pages PageReader, items llm.ItemExtractor) *Server {
	return New(Config{}, Deps{
		Pages:     pages,
		Heuristic: extraction.NewExtractor(extraction.Config{}, nil),
		Validator: validation.NewPipeline(validation.Config{}, nil),
		Items:     items,
	}, nil)
}

func postExtract(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/extract-bill-data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(stubPageReader{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestExtractBillRejectsMissingDocument(t *testing.T) {
	s := newTestServer(stubPageReader{}, nil)
	w := postExtract(t, s, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestExtractBillDownloadFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	s := newTestServer(stubPageReader{}, nil)
	w := postExtract(t, s, `{"document":"`+upstream.URL+`"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestExtractBillHeuristicPath(t *testing.T) {
	upstream := imageServer(t)
	defer upstream.Close()

	s := newTestServer(stubPageReader{result: billPage()}, nil)
	w := postExtract(t, s, `{"document":"`+upstream.URL+`/bill.png"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ExtractionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.IsSuccess {
		t.Fatalf("is_success = false, error = %s", resp.Error)
	}
	if resp.Data == nil || resp.Data.TotalItemCount != 1 {
		t.Fatalf("data = %+v, want 1 item", resp.Data)
	}
	got := resp.Data.PagewiseLineItems[0].BillItems[0]
	if got.ItemName != "Paracetamol" || got.ItemQuantity != 2 || got.ItemAmount != 25 {
		t.Fatalf("item = %+v", got)
	}
	if resp.Data.ReconciledAmount != 25 {
		t.Fatalf("reconciled_amount = %v, want 25", resp.Data.ReconciledAmount)
	}
	if resp.QualityMetrics == nil || resp.QualityMetrics.ExtractionConfidence <= 0 {
		t.Fatalf("quality_metrics = %+v", resp.QualityMetrics)
	}
}

func TestExtractBillLLMPrimary(t *testing.T) {
	upstream := imageServer(t)
	defer upstream.Close()

	llmItems := []extraction.CandidateItem{
		{ItemName: "Ibuprofen", ItemQuantity: 1, ItemRate: 40, ItemAmount: 40},
	}
	s := newTestServer(stubPageReader{result: billPage()}, stubItemExtractor{items: llmItems})
	w := postExtract(t, s, `{"document":"`+upstream.URL+`/bill.png"}`)

	var resp ExtractionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.PagewiseLineItems[0].BillItems[0].ItemName != "Ibuprofen" {
		t.Fatalf("items = %+v, want LLM result", resp.Data.PagewiseLineItems[0].BillItems)
	}
	for _, f := range resp.QualityMetrics.Flags {
		if f == "heuristic_fallback" {
			t.Fatal("fallback flag set on the LLM path")
		}
	}
}

func TestExtractBillFallsBackWhenLLMFails(t *testing.T) {
	upstream := imageServer(t)
	defer upstream.Close()

	s := newTestServer(
		stubPageReader{result: billPage()},
		stubItemExtractor{err: errors.New("model unavailable")},
	)
	w := postExtract(t, s, `{"document":"`+upstream.URL+`/bill.png"}`)

	var resp ExtractionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.IsSuccess {
		t.Fatalf("is_success = false, error = %s", resp.Error)
	}
	if resp.Data.PagewiseLineItems[0].BillItems[0].ItemName != "Paracetamol" {
		t.Fatalf("items = %+v, want heuristic result", resp.Data.PagewiseLineItems[0].BillItems)
	}
	var sawFlag bool
	for _, f := range resp.QualityMetrics.Flags {
		if f == "heuristic_fallback" {
			sawFlag = true
		}
	}
	if !sawFlag {
		t.Fatalf("flags = %v, want heuristic_fallback", resp.QualityMetrics.Flags)
	}
}

func TestExportWithoutPersistence(t *testing.T) {
	s := newTestServer(stubPageReader{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/extraction-jobs/00000000-0000-0000-0000-000000000000/export", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
