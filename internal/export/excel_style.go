package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ApplyDefaultExcelFormatting applies:
// - bold header (row 1),
// - auto-filter on row 1,
// - approximate auto-width for all data columns present on the sheet.
func ApplyDefaultExcelFormatting(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return nil
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", fmt.Sprintf("%s1", columName(cols)), style)
	}
	_ = f.AutoFilter(sheet, fmt.Sprintf("A1:%s1", columName(cols)), nil)

	widths := make([]float64, cols)
	for c := range widths {
		widths[c] = 10
	}
	for rIdx, row := range rows {
		if rIdx > 200 {
			break
		}
		for cIdx, v := range row {
			w := float64(visualLen(v)) * 1.1
			if rIdx == 0 {
				w += 1.5
			}
			if w > 60 {
				w = 60
			}
			if w > widths[cIdx] {
				widths[cIdx] = w
			}
		}
	}
	for i, w := range widths {
		col := columName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

// BuildInstitutionsFilename — имя выгрузки списка учреждений с отметкой фильтра.
func BuildInstitutionsFilename(filter string, at time.Time) string {
	base := "AICTE Institutions"
	if f := strings.TrimSpace(filter); f != "" {
		base += " — " + f
	}
	return sanitizeFileName(fmt.Sprintf("%s — %s.xlsx", base, at.Format("2006-01-02")))
}

// BuildReportFilename — запасное имя отчёта, если портал не прислал Content-Disposition.
func BuildReportFilename(name string, institutionID int64) string {
	name = sanitizeFileName(name)
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("AICTE_Report_%d.xlsx", institutionID)
	}
	return name
}

// 1 -> A; 27 -> AA
func columName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

// visualLen approximates text width by counting runes, treating tabs as 4 chars.
func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = invalidFileRe.ReplaceAllString(s, "_")
	return s
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "—"
	}
	return s
}
