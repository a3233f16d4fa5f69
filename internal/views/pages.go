package views

import (
	"fmt"
	"strings"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/otp"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

// FacultyStats — показатели по преподавателям для дашборда.
type FacultyStats struct {
	Total      int
	PhDPct     int
	Ratio      string
	RatioOK    bool
	Shortage   int
	Duplicates int
}

func ComputeFacultyStats(d models.SectionData) FacultyStats {
	fs := FacultyStats{Total: d.TotalFaculty, Ratio: "N/A"}
	if d.TotalFaculty > 0 {
		fs.PhDPct = int(float64(d.FacultyPhDCount)/float64(d.TotalFaculty)*100 + 0.5)
		if d.TotalStudents > 0 {
			ratio := float64(d.TotalStudents) / float64(d.TotalFaculty)
			fs.Ratio = fmt.Sprintf("%.1f", ratio)
			fs.RatioOK = ratio <= 15
		}
	}
	if short := d.RequiredFaculty - d.TotalFaculty; short > 0 {
		fs.Shortage = short
	}
	seen := map[string]bool{}
	for _, f := range d.FacultyDetails {
		n := strings.ToLower(strings.TrimSpace(f.Name))
		if n == "" {
			continue
		}
		if seen[n] {
			fs.Duplicates++
		}
		seen[n] = true
	}
	return fs
}

type Row struct {
	Field string
	Value string
}

// ExtractedRows — поля, извлечённые ИИ из PDF раздела.
func (r *Renderer) ExtractedRows(sec models.Section, d models.SectionData) []Row {
	var rows []Row
	add := func(f, v string) { rows = append(rows, Row{f, v}) }
	switch sec {
	case models.Faculty:
		add("Total Faculty", r.Num(d.TotalFaculty))
		add("Required Faculty", r.Num(d.RequiredFaculty))
		add("PhD Count", r.Num(d.FacultyPhDCount))
		if n := len(d.FacultyDetails); n > 0 {
			add(fmt.Sprintf("Faculty List (%d records)", n), "")
			for i, f := range d.FacultyDetails {
				if i == 5 {
					add(More(5, n), "")
					break
				}
				add(fmt.Sprintf("%s (%s)", Dash(f.Name), Dash(f.Dept)),
					fmt.Sprintf("%s, %s yrs", Dash(f.Qualification), Score(f.ExperienceYears)))
			}
		}
	case models.Labs:
		add("Total Labs", r.Num(d.TotalLabs))
		for i, l := range d.LabDetails {
			if i == 5 {
				add(More(5, len(d.LabDetails)), "")
				break
			}
			add(fmt.Sprintf("%s (%s)", Dash(l.Name), Dash(l.Dept)),
				fmt.Sprintf("%s sqft, %d equip", r.Num(l.AreaSqft), l.EquipmentCount))
		}
	case models.Infrastructure:
		add("Classrooms", r.Num(d.TotalClassrooms))
		add("Library Books", r.Num(d.LibraryBooks))
		add("Computers", r.Num(d.ComputerCount))
		add("Total Area (sqft)", r.Num(d.TotalAreaSqft))
		add("Hostel Capacity", r.Num(d.HostelCapacity))
	case models.Students:
		add("Total Students", r.Num(d.TotalStudents))
		add("UG Students", r.Num(d.UGStudents))
		add("PG Students", r.Num(d.PGStudents))
		add("Programs Offered", Dash(strings.Join(d.Programs, ", ")))
	case models.Financials:
		add("Annual Budget", Lakhs(d.AnnualBudget))
		var ug, pg float64
		if d.FeeStructure != nil {
			ug, pg = d.FeeStructure.UGFee, d.FeeStructure.PGFee
		}
		add("UG Fee", "₹"+r.Num(ug))
		add("PG Fee", "₹"+r.Num(pg))
	case models.Accreditation:
		add("NAAC Grade", Dash(d.NAACGrade))
		add("NBA Programs", Dash(d.NBA()))
		add("ISO Certified", YesNo(d.ISOCertified))
	}
	return rows
}

func (r *Renderer) Dashboard(v *workflow.DashboardView, unread int) (string, error) {
	d := v.Data
	health := make([]sectionHealth, 0, len(models.AllSections))
	for _, sec := range models.AllSections {
		h := sectionHealth{Sec: sec, Points: d.SectionScores[sec]}
		if det, ok := d.SectionDetails[sec]; ok {
			h.Uploaded = true
			h.Review = det.ReviewStatus
		}
		health = append(health, h)
	}
	return r.Render("dashboard", struct {
		*workflow.DashboardView
		D         *models.Dashboard
		Uploaded  int
		Unread    int
		Faculty   FacultyStats
		Health    []sectionHealth
		HasScores bool
		Decisions []decisionRow
		FirstRisk string
	}{
		DashboardView: v,
		D:             d,
		Uploaded:      len(d.SectionsUploaded),
		Unread:        unread,
		Faculty:       ComputeFacultyStats(d.InstData),
		Health:        health,
		HasScores:     len(d.SectionScores) > 0 || len(d.SectionDetails) > 0,
		Decisions:     decisionRows(d.LatestApproval),
		FirstRisk:     first(d.RiskFactors),
	})
}

type sectionHealth struct {
	Sec      models.Section
	Points   float64
	Uploaded bool
	Review   models.DecisionStatus
}

type decisionRow struct {
	Sec models.Section
	models.SectionDecision
}

func decisionRows(a *models.ApprovalRequest) []decisionRow {
	if a == nil {
		return nil
	}
	return decisionsOf(a.SectionDecisions)
}

func decisionsOf(m map[models.Section]models.SectionDecision) []decisionRow {
	var out []decisionRow
	for _, sec := range models.AllSections {
		if d, ok := m[sec]; ok {
			out = append(out, decisionRow{sec, d})
		}
	}
	return out
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func (r *Renderer) UploadGrid(rows []workflow.SectionRow, uploaded int) (string, error) {
	return r.Render("upload_grid", struct {
		Rows     []workflow.SectionRow
		Uploaded int
		Total    int
	}{rows, uploaded, len(models.AllSections)})
}

func (r *Renderer) UploadResult(res *upload.Result) (string, error) {
	a := res.Analysis
	if a == nil {
		a = &models.UploadAnalysis{SectionType: res.Section}
	}
	return r.Render("upload_result", struct {
		*upload.Result
		A    *models.UploadAnalysis
		Rows []Row
	}{res, a, r.ExtractedRows(res.Section, a.AIData)})
}

func (r *Renderer) Disclosures(list []models.Disclosure) (string, error) {
	shown := list
	if len(shown) > MaxRows {
		shown = shown[:MaxRows]
	}
	return r.Render("disclosures", struct {
		List  []models.Disclosure
		Total int
		More  string
	}{shown, len(list), More(len(shown), len(list))})
}

// RiskReport: nil — анализа ещё нет.
func (r *Renderer) RiskReport(rep *models.RiskReport) (string, error) {
	return r.Render("ai_risk", rep)
}

func (r *Renderer) ApprovalStatus(d *models.ApprovalStatusDetail) (string, error) {
	return r.Render("approval_status", struct {
		*models.ApprovalStatusDetail
		Decisions []decisionRow
	}{d, decisionsOf(d.SectionDecisions)})
}

func (r *Renderer) Notifications(list []models.Notification, unread int) (string, error) {
	shown := list
	if len(shown) > MaxRows {
		shown = shown[:MaxRows]
	}
	return r.Render("notifications", struct {
		List   []models.Notification
		Unread int
		More   string
	}{shown, unread, More(len(shown), len(list))})
}

func (r *Renderer) Profile(s *session.Session, d *models.Dashboard) (string, error) {
	return r.Render("profile", struct {
		S *session.Session
		D *models.Dashboard
	}{s, d})
}

func (r *Renderer) AuthorityDashboard(ov *workflow.Overview) (string, error) {
	high := ov.HighRisk
	if len(high) > MaxRows {
		high = high[:MaxRows]
	}
	return r.Render("auth_dashboard", struct {
		*workflow.Overview
		High []models.InstitutionSummary
		More string
	}{ov, high, More(len(high), len(ov.HighRisk))})
}

func (r *Renderer) Pending(list []models.ApprovalRequest, status string) (string, error) {
	shown := list
	if len(shown) > MaxRows {
		shown = shown[:MaxRows]
	}
	return r.Render("auth_pending", struct {
		List   []models.ApprovalRequest
		Status string
		More   string
	}{shown, status, More(len(shown), len(list))})
}

type reviewRow struct {
	Sec      models.Section
	Uploaded bool
	Brief    string
	PDF      models.PDFMeta
	HasPDF   bool
	Decision models.SectionDecision
}

func (r *Renderer) Review(rc *workflow.ReviewContext) (string, error) {
	req := rc.Form.Request
	rows := make([]reviewRow, 0, len(models.AllSections))
	for _, sec := range models.AllSections {
		row := reviewRow{Sec: sec, Decision: rc.Form.Decision(sec)}
		if info, ok := req.SectionsData[sec]; ok {
			row.Uploaded = true
			row.Brief = info.AIData.Brief(sec)
		}
		if p, ok := rc.PDFs[sec]; ok && p.PresignedURL != "" {
			row.PDF, row.HasPDF = p, true
		}
		rows = append(rows, row)
	}
	return r.Render("auth_review", struct {
		Req   models.ApprovalRequest
		Notes string
		Rows  []reviewRow
		PDFs  int
	}{req, rc.Form.Notes, rows, len(rc.PDFs)})
}

func (r *Renderer) Institutions(list []models.InstitutionSummary, f workflow.Filter) (string, error) {
	shown := list
	if len(shown) > MaxRows {
		shown = shown[:MaxRows]
	}
	return r.Render("auth_institutions", struct {
		List   []models.InstitutionSummary
		Total  int
		Filter workflow.Filter
		More   string
	}{shown, len(list), f, More(len(shown), len(list))})
}

func (r *Renderer) Analytics(a workflow.Analytics) (string, error) {
	return r.Render("auth_analytics", a)
}

// OTP — экран ввода кода.
func (r *Renderer) OTP(reg *otp.Registration, left int) (string, error) {
	return r.Render("otp", struct {
		SentTo string
		Mask   string
		Left   int
		Shake  bool
	}{reg.SentTo(), reg.Code.Mask(), left, reg.Shake})
}
