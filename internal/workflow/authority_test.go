package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

type fakeAuthority struct {
	insts    []models.InstitutionSummary
	pending  []models.ApprovalRequest
	pdfErr   error
	reviews  []models.ReviewSubmission
	statuses []string
}

func (f *fakeAuthority) AuthorityStats(context.Context) (*models.AuthorityStats, error) {
	return &models.AuthorityStats{TotalInstitutions: len(f.insts)}, nil
}

func (f *fakeAuthority) AllInstitutions(context.Context) ([]models.InstitutionSummary, error) {
	return f.insts, nil
}

func (f *fakeAuthority) PendingApprovals(_ context.Context, status string) ([]models.ApprovalRequest, error) {
	f.statuses = append(f.statuses, status)
	return f.pending, nil
}

func (f *fakeAuthority) InstitutionPDFs(context.Context, int64) ([]models.PDFMeta, error) {
	if f.pdfErr != nil {
		return nil, f.pdfErr
	}
	return []models.PDFMeta{{SectionType: models.Faculty, PresignedURL: "https://s3/f.pdf"}}, nil
}

func (f *fakeAuthority) Review(_ context.Context, sub models.ReviewSubmission) error {
	f.reviews = append(f.reviews, sub)
	return nil
}

func officer() *session.Session {
	s := session.New(9)
	s.LoginAuthority("Officer", "o@aicte.gov")
	return s
}

var sample = []models.InstitutionSummary{
	{InstitutionID: 1, InstitutionName: "Vasireddy Venkatadri Institute", State: "Andhra Pradesh", RiskLevel: "High", ApprovalStatus: models.StatusPending},
	{InstitutionID: 2, InstitutionName: "Chennai Tech", State: "Tamil Nadu", RiskLevel: "Low", ApprovalStatus: models.StatusApproved},
	{InstitutionID: 3, InstitutionName: "Guntur Engineering", State: "Andhra Pradesh", RiskLevel: "Medium", ApprovalStatus: models.StatusRejected},
}

func TestFilterInstitutions(t *testing.T) {
	cases := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"empty", Filter{}, []int64{1, 2, 3}},
		{"state_substring", Filter{Search: "andhra"}, []int64{1, 3}},
		{"fuzzy_name", Filter{Search: "chn tch"}, []int64{2}},
		{"fuzzy_subsequence", Filter{Search: "gntr"}, []int64{3}},
		{"risk", Filter{Risk: "High"}, []int64{1}},
		{"approval", Filter{Approval: models.StatusApproved}, []int64{2}},
		{"combined", Filter{Search: "pradesh", Risk: "Medium"}, []int64{3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterInstitutions(sample, tc.f)
			var ids []int64
			for _, it := range got {
				ids = append(ids, it.InstitutionID)
			}
			require.Equal(t, tc.want, ids)
		})
	}
}

func TestBuildAnalytics(t *testing.T) {
	a := BuildAnalytics(sample)
	require.Equal(t, 3, a.Total)
	require.Equal(t, Count{"Andhra Pradesh", 2}, a.ByState[0])
	require.Equal(t, []Count{{"Low", 1}, {"Medium", 1}, {"High", 1}}, a.ByRisk)
	require.Equal(t, []Count{{"pending", 1}, {"approved", 1}, {"rejected", 1}}, a.ByApproval)
}

func TestOverview_HighRisk(t *testing.T) {
	w := NewAuthority(&fakeAuthority{insts: sample}, nil)
	ov, err := w.Overview(context.Background(), officer())
	require.NoError(t, err)
	require.Len(t, ov.HighRisk, 1)
	require.Equal(t, int64(1), ov.HighRisk[0].InstitutionID)
}

func TestOpenAndSubmitReview(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAuthority{pending: []models.ApprovalRequest{
		{ApprovalID: 5, InstitutionID: 1, Status: models.StatusSubmitted, SectionDecisions: map[models.Section]models.SectionDecision{
			models.Labs: {Status: models.DecisionRejected, Notes: "no equipment list"},
		}},
	}, pdfErr: errors.New("s3 down")}
	w := NewAuthority(fa, nil)
	s := officer()

	rc, err := w.OpenReview(ctx, s, 5)
	require.NoError(t, err, "ошибка загрузки PDF не мешает ревью")
	require.Empty(t, rc.PDFs)
	require.Equal(t, int64(5), s.ReviewID)
	require.Equal(t, models.DecisionRejected, rc.Form.Decision(models.Labs).Status)

	require.NoError(t, rc.Form.SetStatus(models.Faculty, models.DecisionApproved))
	require.NoError(t, w.SubmitReview(ctx, s, rc.Form, approval.ActionReject))
	require.Len(t, fa.reviews, 1)
	sub := fa.reviews[0]
	require.Len(t, sub.SectionDecisions, 6)
	require.Equal(t, models.DecisionPending, sub.SectionDecisions[models.Students].Status)
	require.Equal(t, "no equipment list", sub.SectionDecisions[models.Labs].Notes)
	require.Zero(t, s.ReviewID)
}

func TestOpenReview_NotFound(t *testing.T) {
	w := NewAuthority(&fakeAuthority{}, nil)
	_, err := w.OpenReview(context.Background(), officer(), 77)
	require.ErrorIs(t, err, ErrApprovalNotFound)
}

func TestSubmitReview_RejectsUnknownAction(t *testing.T) {
	fa := &fakeAuthority{}
	w := NewAuthority(fa, nil)
	form := approval.NewReviewForm(models.ApprovalRequest{ApprovalID: 1})
	err := w.SubmitReview(context.Background(), officer(), form, "escalate")
	require.ErrorIs(t, err, approval.ErrUnknownAction)
	require.Empty(t, fa.reviews)
}

func TestReviewable(t *testing.T) {
	require.True(t, Reviewable(models.StatusSubmitted))
	require.True(t, Reviewable(models.StatusResubmitted))
	require.False(t, Reviewable(models.StatusApproved))
	require.False(t, Reviewable(models.StatusRejected))
}
