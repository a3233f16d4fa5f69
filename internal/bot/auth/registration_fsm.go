package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/otp"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

type regStep int

const (
	regName regStep = iota
	regEmail
	regPassword
	regConfirm
	regOptional
	regReview
	regOTP
)

type regState struct {
	reg   *otp.Registration
	cd    *otp.Countdown
	step  regStep
	field int
	msgID int // карточка или клавиатура кода, которую правим по таймеру
	left  int
}

type optionalField struct {
	label  string
	prompt string
	get    func(p *models.Registration) string
	set    func(p *models.Registration, v string)
}

var optionalFields = []optionalField{
	{"AICTE ID", "AICTE ID (e.g. 1-1234567890):",
		func(p *models.Registration) string { return p.AicteID },
		func(p *models.Registration, v string) { p.AicteID = v }},
	{"Type", "Institution type (Engineering, Pharmacy, Management…):",
		func(p *models.Registration) string { return p.InstType },
		func(p *models.Registration, v string) { p.InstType = v }},
	{"Category", "Category (Government, Private, Aided…):",
		func(p *models.Registration) string { return p.Category },
		func(p *models.Registration, v string) { p.Category = v }},
	{"Established", "Year established:",
		func(p *models.Registration) string {
			if p.YearEstablished == 0 {
				return ""
			}
			return strconv.Itoa(p.YearEstablished)
		},
		func(p *models.Registration, v string) {
			// нечисловой год не сохраняем, при отправке подставится значение по умолчанию
			n, err := strconv.Atoi(v)
			if err != nil {
				n = 0
			}
			p.YearEstablished = n
		}},
	{"Affiliated University", "Affiliated university:",
		func(p *models.Registration) string { return p.AffiliatedUniv },
		func(p *models.Registration, v string) { p.AffiliatedUniv = v }},
	{"State", "State:",
		func(p *models.Registration) string { return p.State },
		func(p *models.Registration, v string) { p.State = v }},
	{"District", "District:",
		func(p *models.Registration) string { return p.District },
		func(p *models.Registration, v string) { p.District = v }},
	{"Pincode", "Pincode (6 digits):",
		func(p *models.Registration) string { return p.Pincode },
		func(p *models.Registration, v string) { p.Pincode = v }},
	{"Principal", "Principal name:",
		func(p *models.Registration) string { return p.PrincipalName },
		func(p *models.Registration, v string) { p.PrincipalName = v }},
	{"Mobile", "Mobile number:",
		func(p *models.Registration) string { return p.Mobile },
		func(p *models.Registration, v string) { p.Mobile = v }},
}

func (f *Flows) StartRegistration(chatID int64) {
	f.Cancel(chatID)
	st := &regState{reg: otp.NewRegistration(), cd: otp.NewCountdown(f.tick)}
	f.mu.Lock()
	f.reg[chatID] = st
	f.mu.Unlock()
	f.send(chatID, "📝 <b>Institution Registration</b>\nEnter the institution name:", menu.CancelOnly(menu.CbRegCancel))
}

func (f *Flows) regOf(chatID int64) *regState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reg[chatID]
}

// HandleText — текстовый ввод для активного сценария.
func (f *Flows) HandleText(ctx context.Context, s *session.Session, msg *tgbotapi.Message) Outcome {
	chatID := msg.Chat.ID
	if st := f.loginOf(chatID); st != nil {
		return f.handleLoginText(ctx, s, st, msg)
	}
	st := f.regOf(chatID)
	if st == nil {
		return NotHandled
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		f.Cancel(chatID)
		f.send(chatID, "🚫 Registration cancelled.", nil)
		return Handled
	}

	p := &st.reg.Profile
	switch st.step {
	case regName:
		if text == "" {
			f.send(chatID, workflow.Text(otp.ErrNameRequired), nil)
			return Handled
		}
		p.InstitutionName = text
		st.step = regEmail
		f.askEmail(chatID)

	case regEmail:
		if !otp.ValidEmail(text) {
			f.send(chatID, workflow.Text(otp.ErrInvalidEmail), menu.CancelOnly(menu.CbRegCancel))
			return Handled
		}
		changed := st.reg.SetEmail(text)
		if p.Password != "" {
			// смена адреса с карточки
			if changed {
				st.cd.Cancel()
				st.left = 0
				f.send(chatID, "✉️ "+workflow.Text(otp.ErrEmailChanged), nil)
			}
			f.showReview(chatID, st)
			return Handled
		}
		st.step = regPassword
		f.send(chatID, "📧 <b>"+html.EscapeString(st.reg.Profile.Email)+"</b>\n"+
			"You can send the OTP now and keep filling the form.\n\nEnter a password (min 6 characters):",
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📨 Send OTP", menu.CbRegSend)),
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", menu.CbRegCancel)),
			))

	case regPassword:
		f.dropMessage(chatID, msg.MessageID)
		if len(msg.Text) < 6 {
			f.send(chatID, workflow.Text(otp.ErrPasswordShort)+"\nEnter a password:", menu.CancelOnly(menu.CbRegCancel))
			return Handled
		}
		p.Password = msg.Text
		st.step = regConfirm
		f.send(chatID, "🔑 Confirm the password:", menu.CancelOnly(menu.CbRegCancel))

	case regConfirm:
		f.dropMessage(chatID, msg.MessageID)
		if msg.Text != p.Password {
			p.Password = ""
			st.step = regPassword
			f.send(chatID, workflow.Text(otp.ErrPasswordMismatch)+"\nEnter a password:", menu.CancelOnly(menu.CbRegCancel))
			return Handled
		}
		st.reg.ConfirmPassword = msg.Text
		st.step = regOptional
		st.field = 0
		f.askOptional(chatID, st)

	case regOptional:
		optionalFields[st.field].set(p, text)
		f.nextOptional(chatID, st)

	case regReview:
		f.showReview(chatID, st)

	case regOTP:
		st.reg.Code.Paste(text)
		st.reg.Shake = false
		if st.reg.Code.Complete() {
			return f.verify(ctx, s, chatID, st)
		}
		f.showOTP(chatID, st)
	}
	return Handled
}

func (f *Flows) askEmail(chatID int64) {
	f.send(chatID, "Enter the institution email:", menu.CancelOnly(menu.CbRegCancel))
}

func (f *Flows) askOptional(chatID int64, st *regState) {
	fld := optionalFields[st.field]
	f.send(chatID, fmt.Sprintf("(%d/%d) %s", st.field+1, len(optionalFields), fld.prompt), menu.SkipCancel())
}

func (f *Flows) nextOptional(chatID int64, st *regState) {
	st.field++
	if st.field < len(optionalFields) {
		f.askOptional(chatID, st)
		return
	}
	st.step = regReview
	f.showReview(chatID, st)
}

func (f *Flows) reviewText(st *regState) string {
	p := st.reg.Profile
	var b strings.Builder
	b.WriteString("📝 <b>Check your details</b>\n\n")
	fmt.Fprintf(&b, "Institution: <b>%s</b>\n", html.EscapeString(p.InstitutionName))
	fmt.Fprintf(&b, "Email: <b>%s</b>\n", html.EscapeString(p.Email))
	for _, fld := range optionalFields {
		if v := fld.get(&p); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", fld.label, html.EscapeString(v))
		}
	}
	b.WriteString("\n")
	if to := st.reg.SentTo(); to != "" {
		fmt.Fprintf(&b, "✅ OTP sent to %s", html.EscapeString(to))
	} else {
		b.WriteString("📨 Send the OTP to your email, then tap Continue.")
	}
	return b.String()
}

func (f *Flows) showReview(chatID int64, st *regState) {
	st.step = regReview
	st.msgID = f.send(chatID, f.reviewText(st), menu.RegistrationReview(st.reg.SentTo() != "", st.left))
}

func (f *Flows) otpText(st *regState) string {
	text, err := f.views.OTP(st.reg, st.left)
	if err != nil {
		f.log.Error("render otp", zap.Error(err))
		return "🔐 Enter the 6-digit code: <code>" + st.reg.Code.Mask() + "</code>"
	}
	return text
}

func (f *Flows) showOTP(chatID int64, st *regState) {
	st.msgID = f.send(chatID, f.otpText(st), menu.OTPKeypad(st.left))
}

// refresh перерисовывает текущую карточку на месте.
func (f *Flows) refresh(chatID int64, st *regState) {
	if st.msgID == 0 {
		return
	}
	switch st.step {
	case regOTP:
		f.edit(chatID, st.msgID, f.otpText(st), menu.OTPKeypad(st.left))
	case regReview:
		f.edit(chatID, st.msgID, f.reviewText(st), menu.RegistrationReview(st.reg.SentTo() != "", st.left))
	}
}

// startCountdown: таймер правит сообщение раз в 5 секунд и в конце. Тик берёт замок чата.
func (f *Flows) startCountdown(chatID int64, st *regState) {
	ticks := int(f.resendAfter / f.tick)
	secs := func(left int) int { return int(time.Duration(left) * f.tick / time.Second) }
	st.left = secs(ticks)
	st.cd.Start(ticks, func(left int) {
		sec := secs(left)
		if sec%5 != 0 {
			return
		}
		f.tickRefresh(chatID, st, sec)
	}, func() {
		f.tickRefresh(chatID, st, 0)
	})
}

func (f *Flows) tickRefresh(chatID int64, st *regState, left int) {
	if f.lock != nil {
		unlock := f.lock.Lock(chatID)
		defer unlock()
	}
	if f.regOf(chatID) != st {
		return
	}
	st.left = left
	f.refresh(chatID, st)
}

func (f *Flows) sendOTP(ctx context.Context, chatID int64, st *regState) error {
	var (
		to  string
		err error
	)
	if st.reg.SentTo() != "" {
		to, err = f.auth.Resend(ctx, st.reg, st.cd)
	} else {
		to, err = f.auth.SendOTP(ctx, st.reg)
	}
	if err != nil {
		return err
	}
	f.startCountdown(chatID, st)
	f.send(chatID, "📧 OTP sent to <b>"+html.EscapeString(to)+"</b>. Check your inbox.", nil)
	return nil
}

func (f *Flows) verify(ctx context.Context, s *session.Session, chatID int64, st *regState) Outcome {
	err := f.auth.Register(ctx, s, st.reg)
	if err == nil {
		f.Cancel(chatID)
		f.send(chatID, "✅ Registration successful! Welcome, <b>"+html.EscapeString(s.Name)+"</b>.", menu.GetRoleMenu(s.Role))
		return LoggedIn
	}
	f.send(chatID, html.EscapeString(workflow.UserMessage(err)), nil)
	if errors.Is(err, otp.ErrEmailChanged) || errors.Is(err, otp.ErrOTPNotSent) {
		st.cd.Cancel()
		st.left = 0
		f.showReview(chatID, st)
		return Handled
	}
	f.showOTP(chatID, st)
	return Handled
}

// HandleCallback — кнопки регистрации, клавиатуры кода и отмены входа.
func (f *Flows) HandleCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) Outcome {
	if cb.Message == nil {
		return NotHandled
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	if data == menu.CbLoginCancel {
		if f.loginOf(chatID) == nil {
			f.answer(cb, "", false)
			return Handled
		}
		f.Cancel(chatID)
		f.answer(cb, "Cancelled", false)
		f.send(chatID, "🚫 Login cancelled.", nil)
		return Handled
	}

	if !strings.HasPrefix(data, "reg_") && !strings.HasPrefix(data, "otp_") {
		return NotHandled
	}
	st := f.regOf(chatID)
	if st == nil {
		f.answer(cb, "This form is no longer active.", false)
		return Handled
	}

	switch {
	case data == menu.CbRegCancel:
		f.Cancel(chatID)
		f.answer(cb, "Cancelled", false)
		f.send(chatID, "🚫 Registration cancelled.", nil)

	case data == menu.CbRegSend:
		if err := f.sendOTP(ctx, chatID, st); err != nil {
			f.answer(cb, "", false)
			f.send(chatID, html.EscapeString(workflow.UserMessage(err)), nil)
			if st.step == regReview {
				f.showReview(chatID, st)
			}
			return Handled
		}
		f.answer(cb, "OTP sent", false)
		f.refresh(chatID, st)

	case data == menu.CbRegSkip:
		f.answer(cb, "", false)
		if st.step == regOptional {
			f.nextOptional(chatID, st)
		}

	case data == menu.CbRegEmail:
		f.answer(cb, "", false)
		st.step = regEmail
		f.askEmail(chatID)

	case data == menu.CbRegContinue:
		if err := st.reg.Proceed(); err != nil {
			f.answer(cb, workflow.Text(err), true)
			switch {
			case errors.Is(err, otp.ErrPasswordMismatch), errors.Is(err, otp.ErrPasswordShort), errors.Is(err, otp.ErrPasswordRequired):
				st.reg.Profile.Password = ""
				st.step = regPassword
				f.send(chatID, "Enter a password (min 6 characters):", menu.CancelOnly(menu.CbRegCancel))
			case errors.Is(err, otp.ErrEmailChanged):
				st.cd.Cancel()
				st.left = 0
				f.showReview(chatID, st)
			}
			return Handled
		}
		f.answer(cb, "", false)
		st.step = regOTP
		f.showOTP(chatID, st)

	case strings.HasPrefix(data, menu.CbOTPDigit):
		f.answer(cb, "", false)
		if st.step != regOTP {
			return Handled
		}
		st.reg.Shake = false
		st.reg.Code.Type(strings.TrimPrefix(data, menu.CbOTPDigit))
		f.refresh(chatID, st)

	case data == menu.CbOTPErase:
		f.answer(cb, "", false)
		if st.step != regOTP {
			return Handled
		}
		st.reg.Shake = false
		st.reg.Code.Erase()
		f.refresh(chatID, st)

	case data == menu.CbOTPVerify:
		if !st.reg.Code.Complete() {
			f.answer(cb, workflow.Text(otp.ErrIncompleteOTP), true)
			return Handled
		}
		f.answer(cb, "", false)
		return f.verify(ctx, s, chatID, st)

	case data == menu.CbOTPResend:
		if err := f.sendOTP(ctx, chatID, st); err != nil {
			f.answer(cb, workflow.UserMessage(err), true)
			return Handled
		}
		f.answer(cb, "OTP sent", false)
		f.refresh(chatID, st)

	case data == menu.CbOTPEdit:
		f.answer(cb, "", false)
		st.reg.Back()
		f.showReview(chatID, st)

	default:
		f.answer(cb, "", false)
	}
	return Handled
}
