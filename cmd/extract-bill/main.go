// extract-bill runs the heuristic extraction and validation pipeline over a
// JSON file of OCR fragments and prints the report, optionally writing an
// XLSX workbook. Useful for tuning thresholds against captured OCR output
// without standing up the service.
//
// Input format: [{"text": "...", "bbox": [x, y, w, h], "confidence": 0.9}, ...]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/bill-extraction/internal/export"
	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/validation"
)

type report struct {
	Items              []extraction.CandidateItem `json:"items"`
	Rejected           []validation.ValidatedItem `json:"rejected,omitempty"`
	Outliers           []float64                  `json:"outliers,omitempty"`
	Confidence         float64                    `json:"confidence"`
	LowConfidenceNames []string                   `json:"low_confidence_names,omitempty"`
	ReconciledAmount   float64                    `json:"reconciled_amount"`
}

func main() {
	var (
		input        = flag.String("input", "", "path to a JSON file of OCR fragments (required)")
		rowThreshold = flag.Float64("row-threshold", 18, "vertical grouping threshold in image units")
		outlierSigma = flag.Float64("outlier-sigma", 3, "stdev multiple for amount outliers")
		xlsxPath     = flag.String("xlsx", "", "also write an XLSX workbook to this path")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		fatal("read input: %v", err)
	}
	var frags []extraction.TextFragment
	if err := json.Unmarshal(data, &frags); err != nil {
		fatal("parse fragments: %v", err)
	}

	extractor := extraction.NewExtractor(extraction.Config{RowYThreshold: *rowThreshold}, logger)
	pipeline := validation.NewPipeline(validation.Config{OutlierSigma: *outlierSigma}, logger)

	items := extractor.ExtractItems(frags)
	rep := pipeline.Run(items)

	out := report{
		Rejected:           rep.Rejected,
		Outliers:           rep.Outliers,
		Confidence:         rep.Confidence,
		LowConfidenceNames: rep.LowConfidenceNames,
		ReconciledAmount:   rep.ReconciledAmount,
	}
	for _, v := range rep.Accepted {
		out.Items = append(out.Items, v.Item)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatal("write report: %v", err)
	}

	if *xlsxPath != "" {
		var rows []export.Row
		for _, v := range rep.Accepted {
			rows = append(rows, export.Row{
				Name:       v.Item.ItemName,
				Quantity:   v.Item.ItemQuantity,
				Rate:       v.Item.ItemRate,
				Amount:     v.Item.ItemAmount,
				Confidence: v.Confidence,
			})
		}
		book, err := export.NewService(logger).ItemsXLSX(rows, export.Meta{
			DocumentURL:      *input,
			Confidence:       rep.Confidence,
			ReconciledAmount: rep.ReconciledAmount,
			GeneratedAt:      time.Now(),
		})
		if err != nil {
			fatal("build workbook: %v", err)
		}
		if err := os.WriteFile(*xlsxPath, book, 0o644); err != nil {
			fatal("write workbook: %v", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d rows)\n", *xlsxPath, len(rows))
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
