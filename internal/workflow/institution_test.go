package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
)

var pdf = []byte("%PDF-1.4\n%%EOF\n")

func TestEndToEnd_UploadSubmitReview(t *testing.T) {
	ctx := context.Background()
	fp, client := startFake(t)
	auth := NewAuth(client, nil)
	inst := NewInstitution(client, nil)
	up := upload.New(client, "2024-25", nil)
	s := session.New(100)

	require.NoError(t, auth.Login(ctx, s, "admin@vvit.ac.in", "secret1"))
	require.True(t, s.IsInstitution())

	v, err := inst.Dashboard(ctx, s)
	require.NoError(t, err)
	require.False(t, v.Submit.Enabled)
	require.Equal(t, "Upload all 6 sections (0/6)", v.Submit.Label)

	for _, sec := range models.AllSections {
		_, err := up.Upload(ctx, s, sec, string(sec)+".pdf", pdf)
		require.NoError(t, err)
	}
	// повторная загрузка раздела ничего не дублирует
	_, err = up.Upload(ctx, s, models.Faculty, "faculty.pdf", pdf)
	require.NoError(t, err)

	v, err = inst.Dashboard(ctx, s)
	require.NoError(t, err)
	require.Equal(t, 6, s.UploadedCount())
	require.True(t, v.Submit.Visible)
	require.True(t, v.Submit.Enabled)
	require.Equal(t, approval.LabelSubmit, v.Submit.Label)

	res, err := inst.Submit(ctx, s)
	require.NoError(t, err)
	require.Equal(t, models.StatusSubmitted, res.Status)

	st, err := inst.ApprovalStatus(ctx, s)
	require.NoError(t, err)
	require.Equal(t, models.StatusSubmitted, st.Status)

	v, err = inst.Dashboard(ctx, s)
	require.NoError(t, err)
	require.True(t, v.Submit.Visible)
	require.False(t, v.Submit.Enabled)
	require.Equal(t, approval.LabelReview, v.Submit.Label)
	require.NotNil(t, v.Banner)

	require.Equal(t, 1, fp.count("/submit-approval/"))
}

func TestSubmit_LocalGuard(t *testing.T) {
	fp, client := startFake(t)
	inst := NewInstitution(client, nil)
	s := session.New(1)
	s.LoginInstitution(7, "VVIT", "a@b.co")
	s.MarkUploaded(models.Faculty)

	_, err := inst.Submit(context.Background(), s)
	require.ErrorIs(t, err, ErrIncompleteUpload)
	require.Zero(t, fp.count("/submit-approval/"), "без шести разделов в сеть не ходим")
}

func TestLogin_ServerError(t *testing.T) {
	_, client := startFake(t)
	auth := NewAuth(client, nil)
	s := session.New(1)

	err := auth.Login(context.Background(), s, "a@b.co", "wrong")
	require.Error(t, err)
	require.True(t, IsRemote(err))
	require.Equal(t, "❌ Invalid credentials", UserMessage(err))
	require.False(t, s.LoggedIn())

	require.ErrorIs(t, auth.Login(context.Background(), s, " ", "x"), ErrCredentialsRequired)
}

func TestRequiresInstitution(t *testing.T) {
	_, client := startFake(t)
	inst := NewInstitution(client, nil)
	s := session.New(1)
	s.LoginAuthority("Officer", "o@a.in")
	_, err := inst.Dashboard(context.Background(), s)
	require.ErrorIs(t, err, ErrNotInstitution)
}

func TestUploadGrid(t *testing.T) {
	s := session.New(1)
	s.LoginInstitution(7, "VVIT", "a@b.co")
	s.MarkUploaded(models.Labs)
	s.Dashboard = &models.Dashboard{SectionDetails: map[models.Section]models.SectionUpload{
		models.Labs: {ReviewStatus: models.DecisionRejected, ReviewNotes: "blurry scan"},
	}}
	rows := UploadGrid(s)
	require.Len(t, rows, 6)
	require.Equal(t, models.Faculty, rows[0].Def.Key)
	require.Equal(t, "⬜ Not uploaded yet", rows[0].State.Status)
	require.Equal(t, "blurry scan", rows[1].State.Notes)
	require.Equal(t, "🔄 Re-upload (Fix Required)", rows[1].State.Button)
}
