package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

type Workbook struct {
	File *excelize.File
}

// NewWorkbook — книга из готовых листов; первый лист заменяет стандартный Sheet1.
func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook without sheets")
	}
	f := excelize.NewFile()
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}

		header := make([]any, len(s.Header))
		for i, h := range s.Header {
			header[i] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("header %s: %w", name, err)
		}
		for r, row := range s.Rows {
			cell := fmt.Sprintf("A%d", r+2)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, fmt.Errorf("set row %s: %w", cell, err)
			}
		}
		if err := ApplyDefaultExcelFormatting(f, name); err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
	}
	return &Workbook{File: f}, nil
}

// Bytes — готовый xlsx для отправки документом в чат.
func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.File.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Workbook) Close() error { return w.File.Close() }
