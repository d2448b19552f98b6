// Package ocr turns a bill image into positioned text fragments by driving
// the tesseract binary in TSV mode. Each TSV word row carries a bounding box
// and a recognition confidence, which is exactly the fragment contract the
// extraction pipeline consumes.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"

	TessdataDir string
	PSM         int // 6 works well for a uniform block of bill text
	OEM         int // 1 = LSTM; leave 0 to use the default
}

// Result is one page's OCR output: the fragments for the row builder, the
// reassembled plain text for the LLM path, and a blended page confidence.
type Result struct {
	Fragments  []extraction.TextFragment
	Text       string
	Confidence float32
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract runs tesseract over one image and parses its TSV output.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("tesseract TSV: %w", err)
	}

	res := parseTSV(string(out))
	res.Duration = time.Since(start)

	e.logger.Debug("ocr.extract",
		"path", path,
		"fragments", len(res.Fragments),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// parseTSV converts tesseract TSV output into fragments and reassembled
// text. TSV columns: level, page_num, block_num, par_num, line_num,
// word_num, left, top, width, height, conf, text. Word rows are level 5;
// conf is 0..100 with -1 meaning "no recognition".
func parseTSV(tsv string) Result {
	var res Result
	var text strings.Builder
	var confSum float64
	var confN int
	lastLine := ""

	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		left, err1 := strconv.ParseFloat(cols[6], 64)
		top, err2 := strconv.ParseFloat(cols[7], 64)
		width, err3 := strconv.ParseFloat(cols[8], 64)
		height, err4 := strconv.ParseFloat(cols[9], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		res.Fragments = append(res.Fragments, extraction.TextFragment{
			Text:       word,
			BBox:       extraction.BBox{X: left, Y: top, Width: width, Height: height},
			Confidence: conf / 100.0,
		})
		confSum += conf
		confN++

		// page/block/par/line identify the visual line the word sits on
		lineKey := strings.Join(cols[1:5], "/")
		if text.Len() > 0 {
			if lineKey == lastLine {
				text.WriteByte(' ')
			} else {
				text.WriteByte('\n')
			}
		}
		text.WriteString(word)
		lastLine = lineKey
	}

	res.Text = text.String()

	var ocrConf float32
	if confN > 0 {
		ocrConf = float32(confSum / float64(confN) / 100.0)
	}
	res.Confidence = blendConfidence(ocrConf, heuristicConfidence(res.Text))
	return res
}
