package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type SheetInfo struct {
	Name string
	Rows int
}

// ReportSummary — что внутри отчёта, скачанного с портала.
type ReportSummary struct {
	Sheets []SheetInfo
}

// SummarizeReport открывает xlsx из памяти и считает строки данных на листах (без заголовка).
func SummarizeReport(data []byte) (*ReportSummary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	sum := &ReportSummary{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		n := len(rows)
		if n > 0 {
			n--
		}
		sum.Sheets = append(sum.Sheets, SheetInfo{Name: name, Rows: n})
	}
	return sum, nil
}

// Caption — подпись к документу в чате.
func (s *ReportSummary) Caption() string {
	if s == nil || len(s.Sheets) == 0 {
		return "📥 AICTE report"
	}
	parts := make([]string, 0, len(s.Sheets))
	for _, sh := range s.Sheets {
		parts = append(parts, fmt.Sprintf("%s: %d", sh.Name, sh.Rows))
	}
	return "📥 AICTE report · " + strings.Join(parts, " · ")
}
