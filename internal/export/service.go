package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// Row is one exported line item.
type Row struct {
	Name       string
	Quantity   float64
	Rate       float64
	Amount     float64
	Confidence float64
}

// Meta describes the extraction run a workbook belongs to.
type Meta struct {
	DocumentURL      string
	Confidence       float64
	ReconciledAmount float64
	GeneratedAt      time.Time
}

// Service produces XLSX bytes for extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ItemsXLSX returns an XLSX workbook (as bytes) listing the run's line items
// with a small summary block beneath them.
func (s *Service) ItemsXLSX(rows []Row, meta Meta) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Line Items"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Item", "Quantity", "Rate", "Amount", "Confidence"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	rowIdx := 2
	for _, r := range rows {
		write(1, rowIdx, r.Name)
		write(2, rowIdx, r.Quantity)
		write(3, rowIdx, fmt.Sprintf("%.2f", r.Rate))
		write(4, rowIdx, fmt.Sprintf("%.2f", r.Amount))
		write(5, rowIdx, fmt.Sprintf("%.2f", r.Confidence))
		rowIdx++
	}

	// summary block under the items
	rowIdx++
	write(1, rowIdx, "Document")
	write(2, rowIdx, meta.DocumentURL)
	rowIdx++
	write(1, rowIdx, "Reconciled amount")
	write(2, rowIdx, fmt.Sprintf("%.2f", meta.ReconciledAmount))
	rowIdx++
	write(1, rowIdx, "Extraction confidence")
	write(2, rowIdx, fmt.Sprintf("%.2f", meta.Confidence))
	rowIdx++
	write(1, rowIdx, "Generated at")
	if !meta.GeneratedAt.IsZero() {
		write(2, rowIdx, meta.GeneratedAt.UTC().Format(time.RFC3339))
	}

	_ = f.SetColWidth(sheet, "A", "A", 36) // item name
	_ = f.SetColWidth(sheet, "B", "E", 14) // numbers

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
