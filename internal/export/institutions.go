package export

import (
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

var institutionsHeader = []string{
	"Institution", "AICTE ID", "State", "Students", "Faculty", "Labs",
	"Risk Score", "Risk Level", "Approval Status",
}

// InstitutionsWorkbook — выгрузка отфильтрованного списка учреждений и сводки по нему.
func InstitutionsWorkbook(list []models.InstitutionSummary) (*Workbook, error) {
	rows := make([][]any, 0, len(list))
	for _, it := range list {
		level := it.RiskLevel
		if level == "" {
			level = "Not Analyzed"
		}
		status := string(it.ApprovalStatus)
		if status == "" {
			status = string(models.StatusPending)
		}
		rows = append(rows, []any{
			cleanName(it.InstitutionName), cleanName(it.AicteID), cleanName(it.State),
			it.TotalStudents, it.TotalFaculty, it.TotalLabs,
			it.RiskScore, level, status,
		})
	}

	a := workflow.BuildAnalytics(list)
	var summary [][]any
	summary = append(summary, []any{"Total", "", a.Total})
	for _, c := range a.ByRisk {
		summary = append(summary, []any{"Risk", c.Key, c.N})
	}
	for _, c := range a.ByApproval {
		summary = append(summary, []any{"Approval", c.Key, c.N})
	}
	for _, c := range a.ByState {
		summary = append(summary, []any{"State", c.Key, c.N})
	}

	return NewWorkbook([]SheetSpec{
		{Title: "Institutions", Header: institutionsHeader, Rows: rows},
		{Title: "Summary", Header: []string{"Group", "Value", "Count"}, Rows: summary},
	})
}
