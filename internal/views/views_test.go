package views

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/otp"
	"github.com/Spok95/disclosure-portal-bot/internal/risk"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

func TestHelpers(t *testing.T) {
	r := MustNew()
	require.Equal(t, "12,345", r.Num(12345))
	require.Equal(t, "0", r.Num(0))
	require.Equal(t, "—", r.dashNum(0))
	require.Equal(t, "₹12.5 Lakhs", Lakhs(12.5))
	require.Equal(t, "₹250 Lakhs (₹2.5 Cr)", Lakhs(250))
	require.Equal(t, "41.5", Score(41.5))
	require.Equal(t, "-12 pts", Points(12))
	require.Equal(t, "✅ 0 pts", Points(0))
	require.Equal(t, "▰▰▰▰▰▰▰▱▱▱", Bar(70))
	require.Equal(t, "▱▱▱▱▱▱▱▱▱▱", Bar(-5))
	require.Equal(t, "… and 3 more", More(5, 8))
	require.Empty(t, More(5, 5))
}

func TestComputeFacultyStats(t *testing.T) {
	fs := ComputeFacultyStats(models.SectionData{
		TotalFaculty: 20, FacultyPhDCount: 5, RequiredFaculty: 25, TotalStudents: 400,
		FacultyDetails: []models.FacultyMember{{Name: "A Rao"}, {Name: "a rao "}, {Name: "B"}, {Name: ""}},
	})
	require.Equal(t, 25, fs.PhDPct)
	require.Equal(t, 5, fs.Shortage)
	require.Equal(t, "20.0", fs.Ratio)
	require.False(t, fs.RatioOK)
	require.Equal(t, 1, fs.Duplicates)

	empty := ComputeFacultyStats(models.SectionData{})
	require.Equal(t, "N/A", empty.Ratio)
}

func TestDashboard_Render(t *testing.T) {
	r := MustNew()
	d := &models.Dashboard{
		InstitutionName:  "VVIT <Guntur>",
		SectionsUploaded: []models.Section{models.Faculty, models.Labs},
		RiskScore:        64,
		RiskLevel:        "High",
		RiskFactors:      []string{"Faculty shortage of 5"},
		SectionScores:    map[models.Section]float64{models.Faculty: 12},
		SectionDetails:   map[models.Section]models.SectionUpload{models.Faculty: {ReviewStatus: models.DecisionApproved}},
		InstData:         models.SectionData{TotalFaculty: 20, TotalStudents: 400, AnnualBudget: 150, NAACGrade: "A"},
		LatestApproval:   &models.ApprovalRequest{Status: models.StatusRejected, AuthorityNotes: "Fix labs"},
	}
	b := approval.BannerFor(models.StatusRejected)
	v := &workflow.DashboardView{Data: d, Band: risk.High, Submit: approval.DeriveSubmit("", d.LatestApproval, 2), Banner: &b}
	out, err := r.Dashboard(v, 3)
	require.NoError(t, err)
	require.Contains(t, out, "VVIT &lt;Guntur&gt;")
	require.Contains(t, out, "64/100")
	require.Contains(t, out, "High Risk:</b> Faculty shortage of 5")
	require.Contains(t, out, "Reason: Fix labs")
	require.Contains(t, out, "🔄 Resubmit Application")
	require.Contains(t, out, "3 unread")
	require.Contains(t, out, "[approved]")
	require.Contains(t, out, "₹150 Lakhs (₹1.5 Cr)")
	require.NotContains(t, out, "\n\n\n")
}

func TestUploadResult_Render(t *testing.T) {
	r := MustNew()
	staff := make([]models.FacultyMember, 7)
	for i := range staff {
		staff[i] = models.FacultyMember{Name: "F", Dept: "CSE", Qualification: "PhD", ExperienceYears: 4}
	}
	res := &upload.Result{
		Section: models.Faculty, Analyzed: true, StoreErr: errors.New("x"),
		Analysis: &models.UploadAnalysis{
			AIData: models.SectionData{TotalFaculty: 7, FacultyDetails: staff},
			Risk:   models.UploadRisk{RiskScore: 35, RiskLevel: "Medium", RiskFactors: []string{"a", "b", "c", "d"}},
		},
	}
	out, err := r.UploadResult(res)
	require.NoError(t, err)
	require.Contains(t, out, "cloud save failed")
	require.Contains(t, out, "Faculty List (7 records)")
	require.Contains(t, out, "… and 2 more")
	require.Contains(t, out, "⚠️ c")
	require.NotContains(t, out, "⚠️ d")
}

func TestRiskReport_NotAnalyzed(t *testing.T) {
	out, err := MustNew().RiskReport(nil)
	require.NoError(t, err)
	require.Contains(t, out, "No Risk Analysis Yet")
}

func TestRiskReport_Render(t *testing.T) {
	rep := &models.RiskReport{
		RiskScore: 30, RiskLevel: "Medium", CompliancePct: 71.6, FacultyRatio: 18.3,
		FacultyShortage:  true,
		SectionBreakdown: map[models.Section]models.SectionUpload{models.Labs: {ReviewStatus: models.DecisionRejected}},
		SectionScores:    map[models.Section]float64{models.Labs: 9},
		Suggestions:      []string{"Hire faculty"},
	}
	out, err := MustNew().RiskReport(rep)
	require.NoError(t, err)
	require.Contains(t, out, "🟠 Risk Score: <b>30/100</b>")
	require.Contains(t, out, "Compliance: <b>72%</b>")
	require.Contains(t, out, "1:18.3")
	require.Contains(t, out, "Faculty Shortage: ⚠️ Issue Found")
	require.Contains(t, out, "LABS: ❌ rejected · -9 pts")
	require.Contains(t, out, "FACULTY: Not uploaded")
	require.Contains(t, out, "1. Hire faculty")
}

func TestApprovalStatus_Render(t *testing.T) {
	r := MustNew()
	out, err := r.ApprovalStatus(&models.ApprovalStatusDetail{ApprovalRequest: models.ApprovalRequest{Status: models.StatusNotSubmitted}})
	require.NoError(t, err)
	require.Contains(t, out, "No Application Submitted Yet")

	out, err = r.ApprovalStatus(&models.ApprovalStatusDetail{
		ApprovalRequest: models.ApprovalRequest{
			Status:           "escalated",
			SectionDecisions: map[models.Section]models.SectionDecision{models.Students: {Status: models.DecisionApproved}},
		},
		History: []models.ApprovalHistoryEntry{{Status: models.StatusRejected, RiskScore: 40}},
	})
	require.NoError(t, err)
	require.Contains(t, out, "escalated")
	require.Contains(t, out, "✅ STUDENTS: approved")
	require.Contains(t, out, "Application History")
}

func TestNotifications_Render(t *testing.T) {
	list := []models.Notification{{Title: "Approved", Type: "success"}, {Title: "Read", IsRead: true}}
	out, err := MustNew().Notifications(list, models.UnreadCount(list))
	require.NoError(t, err)
	require.Contains(t, out, "1 Unread")
	require.Contains(t, out, "✅ <b>Approved</b> 🟠")
	require.Contains(t, out, "📢 <b>Read</b>\n")
}

func TestAuthorityPages_Render(t *testing.T) {
	r := MustNew()
	insts := []models.InstitutionSummary{{InstitutionName: "VVIT", State: "AP", RiskLevel: "High", RiskScore: 70}}

	out, err := r.AuthorityDashboard(&workflow.Overview{Stats: &models.AuthorityStats{TotalInstitutions: 1, HighRisk: 1}, HighRisk: insts})
	require.NoError(t, err)
	require.Contains(t, out, "<b>VVIT</b>")

	out, err = r.Institutions(nil, workflow.Filter{Search: "zzz"})
	require.NoError(t, err)
	require.Contains(t, out, "No institutions found.")
	require.Contains(t, out, "search “zzz”")

	out, err = r.Analytics(workflow.BuildAnalytics(insts))
	require.NoError(t, err)
	require.Contains(t, out, "High: 1")
	require.Contains(t, out, "AP: 1")

	req := models.ApprovalRequest{ApprovalID: 4, InstitutionName: "VVIT", RiskScore: 20,
		SectionsData: map[models.Section]models.SectionUpload{models.Labs: {AIData: models.SectionData{TotalLabs: 9}}}}
	rc := &workflow.ReviewContext{
		Form: approval.NewReviewForm(req),
		PDFs: map[models.Section]models.PDFMeta{models.Labs: {SectionType: models.Labs, PresignedURL: "https://s3/l.pdf"}},
	}
	out, err = r.Review(rc)
	require.NoError(t, err)
	require.Contains(t, out, "Labs: 9")
	require.Contains(t, out, `<a href="https://s3/l.pdf">`)
	require.Contains(t, out, "<b>FACULTY</b>: Not uploaded · No PDF")
	require.Equal(t, 6, strings.Count(out, "Decision: <b>pending</b>"))

	out, err = r.Pending(nil, "rejected")
	require.NoError(t, err)
	require.Contains(t, out, "No applications found.")
}

func TestOTPAndProfile_Render(t *testing.T) {
	r := MustNew()
	reg := otp.NewRegistration()
	reg.MarkSent("a@b.co")
	reg.Code.Paste("12")
	out, err := r.OTP(reg, 17)
	require.NoError(t, err)
	require.Contains(t, out, "a@b.co")
	require.Contains(t, out, "Resend OTP in 17s")

	s := session.New(1)
	s.LoginInstitution(7, "VVIT", "a@b.co")
	out, err = r.Profile(s, nil)
	require.NoError(t, err)
	require.Contains(t, out, "VVIT")
	require.Contains(t, out, "Login: a@b.co")
}
