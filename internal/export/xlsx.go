// Package export writes filtered award tables to XLSX workbooks, the
// optional spreadsheet sink for pipeline results.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/tabular"
)

const (
	awardsSheet = "Awards"
	infoSheet   = "Info"
)

// Writer produces XLSX workbooks from award tables.
type Writer struct {
	logger *zap.Logger
}

// NewWriter builds a Writer.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Workbook renders the table into an XLSX workbook: one Awards sheet with a
// header row, and an Info sheet stamping when the data was last updated.
func (w *Writer) Workbook(t tabular.Table, updatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", awardsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(awardsSheet, cell, col); err != nil {
			return nil, fmt.Errorf("write header %s: %w", col, err)
		}
	}
	for rowIdx, row := range t.Rows {
		for colIdx, col := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("cell %d,%d: %w", colIdx, rowIdx, err)
			}
			if err := f.SetCellValue(awardsSheet, cell, row[col]); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.NewSheet(infoSheet); err != nil {
		return nil, fmt.Errorf("create info sheet: %w", err)
	}
	if err := f.SetCellValue(infoSheet, "A1", "Last Updated"); err != nil {
		return nil, fmt.Errorf("write info label: %w", err)
	}
	if err := f.SetCellValue(infoSheet, "B1", updatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("write info timestamp: %w", err)
	}

	w.logger.Info("workbook built", zap.Int("rows", t.Len()), zap.Int("columns", len(t.Columns)))
	return f, nil
}

// WriteFile renders the table and saves it to path.
func (w *Writer) WriteFile(path string, t tabular.Table, updatedAt time.Time) error {
	f, err := w.Workbook(t, updatedAt)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // save below is the authoritative result
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	w.logger.Info("workbook saved", zap.String("path", path))
	return nil
}
