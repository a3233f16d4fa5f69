package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/testutil/tgfake"
	"github.com/Spok95/disclosure-portal-bot/internal/views"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

type stubPortal struct {
	mu       sync.Mutex
	sent     []string
	verified *models.Registration
	code     string
}

func (p *stubPortal) SendOTP(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, email)
	return nil
}

func (p *stubPortal) VerifyOTP(_ context.Context, profile models.Registration, code string) (models.InstitutionLogin, error) {
	if code != "123456" {
		return models.InstitutionLogin{}, &portal.APIError{Status: 400, Message: "Invalid OTP"}
	}
	p.verified = &profile
	p.code = code
	return models.InstitutionLogin{InstitutionID: 11, InstitutionName: profile.InstitutionName}, nil
}

func (p *stubPortal) Login(_ context.Context, cr models.Credentials) (models.InstitutionLogin, error) {
	if cr.Password != "secret1" {
		return models.InstitutionLogin{}, &portal.APIError{Status: 401, Message: "Invalid credentials"}
	}
	return models.InstitutionLogin{InstitutionID: 7, InstitutionName: "VVIT"}, nil
}

func (p *stubPortal) AuthorityLogin(_ context.Context, cr models.Credentials) (models.AuthorityLogin, error) {
	if cr.Password != "admin1" {
		return models.AuthorityLogin{}, &portal.APIError{Status: 401, Message: "Invalid credentials"}
	}
	return models.AuthorityLogin{Name: "AICTE Officer"}, nil
}

type noLock struct{}

func (noLock) Lock(int64) func() { return func() {} }

func newFlows(t *testing.T) (*Flows, *tgfake.Bot, *stubPortal) {
	t.Helper()
	bot := tgfake.New()
	p := &stubPortal{}
	f := New(bot, workflow.NewAuth(p, nil), views.MustNew(), noLock{}, time.Minute, nil)
	return f, bot, p
}

func TestLogin_InstitutionSuccess(t *testing.T) {
	f, bot, _ := newFlows(t)
	s := session.New(1)
	ctx := context.Background()

	f.StartLogin(1, models.Institution)
	require.True(t, f.Active(1))
	assert.Equal(t, Handled, f.HandleText(ctx, s, tgfake.Message(1, "info@vvit.edu")))
	assert.Equal(t, Handled, f.HandleText(ctx, s, tgfake.Message(1, "wrong")))
	assert.True(t, bot.Contains("❌ Invalid credentials"))
	assert.False(t, s.LoggedIn())

	assert.Equal(t, LoggedIn, f.HandleText(ctx, s, tgfake.Message(1, "secret1")))
	assert.True(t, s.IsInstitution())
	assert.Equal(t, int64(7), s.InstitutionID)
	assert.False(t, f.Active(1))
}

func TestLogin_Authority(t *testing.T) {
	f, _, _ := newFlows(t)
	s := session.New(2)
	ctx := context.Background()

	f.StartLogin(2, models.Authority)
	f.HandleText(ctx, s, tgfake.Message(2, "officer@aicte.gov.in"))
	assert.Equal(t, LoggedIn, f.HandleText(ctx, s, tgfake.Message(2, "admin1")))
	assert.True(t, s.IsAuthority())
	assert.Equal(t, "AICTE Officer", s.Name)
}

func TestLogin_CancelByButton(t *testing.T) {
	f, bot, _ := newFlows(t)
	f.StartLogin(3, models.Institution)
	out := f.HandleCallback(context.Background(), session.New(3), tgfake.Callback(3, menu.CbLoginCancel))
	assert.Equal(t, Handled, out)
	assert.False(t, f.Active(3))
	assert.True(t, bot.Contains("Login cancelled"))
}

func TestHandleText_NoFlow(t *testing.T) {
	f, _, _ := newFlows(t)
	assert.Equal(t, NotHandled, f.HandleText(context.Background(), session.New(4), tgfake.Message(4, "hello")))
}

func fillRegistration(t *testing.T, f *Flows, s *session.Session, chatID int64) {
	t.Helper()
	ctx := context.Background()
	f.StartRegistration(chatID)
	for _, in := range []string{"VVIT", "info@vvit.edu", "secret1", "secret1"} {
		require.Equal(t, Handled, f.HandleText(ctx, s, tgfake.Message(chatID, in)))
	}
	// год и пинкод заполняем, остальное пропускаем
	for i := range optionalFields {
		switch optionalFields[i].label {
		case "Established":
			f.HandleText(ctx, s, tgfake.Message(chatID, "abc"))
		case "Pincode":
			f.HandleText(ctx, s, tgfake.Message(chatID, "522508"))
		default:
			f.HandleCallback(ctx, s, tgfake.Callback(chatID, menu.CbRegSkip))
		}
	}
	require.Equal(t, regReview, f.regOf(chatID).step)
}

func TestRegistration_FullFlow(t *testing.T) {
	f, bot, p := newFlows(t)
	s := session.New(5)
	ctx := context.Background()
	fillRegistration(t, f, s, 5)

	f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbRegContinue))
	assert.Equal(t, regReview, f.regOf(5).step, "без отправленного кода дальше не пускаем")

	f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbRegSend))
	require.Equal(t, []string{"info@vvit.edu"}, p.sent)
	assert.True(t, bot.Contains("OTP sent to <b>info@vvit.edu</b>"))

	f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbRegContinue))
	require.Equal(t, regOTP, f.regOf(5).step)

	for _, d := range "12345" {
		f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbOTPDigit+string(d)))
	}
	f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbOTPErase))
	f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbOTPDigit+"5"))
	f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbOTPDigit+"6"))

	out := f.HandleCallback(ctx, s, tgfake.Callback(5, menu.CbOTPVerify))
	require.Equal(t, LoggedIn, out)
	require.NotNil(t, p.verified)
	assert.Equal(t, 2000, p.verified.YearEstablished)
	assert.Equal(t, "522508", p.verified.Pincode)
	assert.True(t, s.IsInstitution())
	assert.False(t, f.Active(5))
}

func TestRegistration_PastedWrongCodeShakes(t *testing.T) {
	f, bot, _ := newFlows(t)
	s := session.New(6)
	ctx := context.Background()
	fillRegistration(t, f, s, 6)
	f.HandleCallback(ctx, s, tgfake.Callback(6, menu.CbRegSend))
	f.HandleCallback(ctx, s, tgfake.Callback(6, menu.CbRegContinue))

	out := f.HandleText(ctx, s, tgfake.Message(6, "99 99 99"))
	assert.Equal(t, Handled, out)
	st := f.regOf(6)
	require.NotNil(t, st)
	assert.True(t, st.reg.Shake)
	assert.Equal(t, "999999", st.reg.Code.Value(), "цифры после отказа остаются")
	assert.True(t, bot.Contains("❌ Invalid OTP"))
	assert.False(t, s.LoggedIn())
	f.Cancel(6)
}

func TestRegistration_ResendTooEarly(t *testing.T) {
	f, bot, p := newFlows(t)
	s := session.New(7)
	ctx := context.Background()
	fillRegistration(t, f, s, 7)
	f.HandleCallback(ctx, s, tgfake.Callback(7, menu.CbRegSend))
	f.HandleCallback(ctx, s, tgfake.Callback(7, menu.CbRegContinue))

	f.HandleCallback(ctx, s, tgfake.Callback(7, menu.CbOTPResend))
	assert.Len(t, p.sent, 1, "пока идёт отсчёт, повторной отправки нет")
	cbs := bot.Callbacks()
	require.NotEmpty(t, cbs)
	assert.True(t, strings.Contains(cbs[len(cbs)-1].Text, "Please wait"))
	f.Cancel(7)
}

func TestRegistration_EmailChangeInvalidatesOTP(t *testing.T) {
	f, _, _ := newFlows(t)
	s := session.New(8)
	ctx := context.Background()
	fillRegistration(t, f, s, 8)
	f.HandleCallback(ctx, s, tgfake.Callback(8, menu.CbRegSend))

	f.HandleCallback(ctx, s, tgfake.Callback(8, menu.CbRegEmail))
	f.HandleText(ctx, s, tgfake.Message(8, "admin@vvit.edu"))
	st := f.regOf(8)
	require.NotNil(t, st)
	assert.Equal(t, regReview, st.step)
	assert.Empty(t, st.reg.SentTo())

	f.HandleCallback(ctx, s, tgfake.Callback(8, menu.CbRegContinue))
	assert.Equal(t, regReview, f.regOf(8).step)
}

func TestRegistration_PasswordMismatch(t *testing.T) {
	f, bot, _ := newFlows(t)
	s := session.New(9)
	ctx := context.Background()
	f.StartRegistration(9)
	for _, in := range []string{"VVIT", "info@vvit.edu", "secret1", "secret2"} {
		f.HandleText(ctx, s, tgfake.Message(9, in))
	}
	assert.Equal(t, regPassword, f.regOf(9).step)
	assert.True(t, bot.Contains("Passwords do not match."))
}

func TestRegistration_CountdownRefreshesKeypad(t *testing.T) {
	bot := tgfake.New()
	p := &stubPortal{}
	f := New(bot, workflow.NewAuth(p, nil), views.MustNew(), noLock{}, 30*time.Millisecond, nil)
	f.tick = 10 * time.Millisecond
	s := session.New(10)
	ctx := context.Background()
	fillRegistration(t, f, s, 10)
	f.HandleCallback(ctx, s, tgfake.Callback(10, menu.CbRegSend))

	require.Eventually(t, func() bool {
		return !f.regOf(10).cd.Running()
	}, time.Second, 5*time.Millisecond)
	assert.True(t, bot.Contains("OTP sent to info@vvit.edu"))
}
