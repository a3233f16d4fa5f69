package otp

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

type State string

const (
	StateIdle         State = "idle"
	StateOTPRequested State = "otp_requested"
	StateRegistered   State = "registered"
)

var (
	ErrInvalidEmail     = errors.New("otp: invalid email")
	ErrNameRequired     = errors.New("otp: institution name required")
	ErrEmailRequired    = errors.New("otp: email required")
	ErrPasswordRequired = errors.New("otp: password required")
	ErrPasswordMismatch = errors.New("otp: passwords do not match")
	ErrPasswordShort    = errors.New("otp: password shorter than 6 characters")
	ErrOTPNotSent       = errors.New("otp: code not sent")
	ErrEmailChanged     = errors.New("otp: email changed after code was sent")
	ErrIncompleteOTP    = errors.New("otp: code incomplete")
	ErrResendTooEarly   = errors.New("otp: resend before countdown ended")
	ErrInvalidProfile   = errors.New("otp: registration details incomplete")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool { return emailRe.MatchString(strings.TrimSpace(s)) }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Registration — локальное состояние формы регистрации одного чата.
// Сеть сюда не ходит: методы только проверяют ввод и двигают состояние.
type Registration struct {
	Profile         models.Registration
	ConfirmPassword string
	Code            Entry
	Shake           bool

	state   State
	sentTo  string
	inOTPUI bool
}

func NewRegistration() *Registration { return &Registration{state: StateIdle} }

func (r *Registration) State() State { return r.state }

func (r *Registration) SentTo() string { return r.sentTo }

func (r *Registration) OnOTPStep() bool { return r.inOTPUI }

// SetEmail меняет e-mail в форме. Если код уже ушёл на другой адрес — флаг "отправлено" сбрасывается.
// Возвращает true, если отправку нужно повторить.
func (r *Registration) SetEmail(email string) bool {
	email = strings.TrimSpace(email)
	r.Profile.Email = email
	if r.sentTo != "" && r.sentTo != email {
		r.invalidate()
		return true
	}
	return false
}

// PrepareSend — проверка перед запросом кода.
func (r *Registration) PrepareSend() (string, error) {
	email := strings.TrimSpace(r.Profile.Email)
	if email == "" || !ValidEmail(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// MarkSent фиксирует адрес, на который сервер отправил код.
func (r *Registration) MarkSent(email string) {
	r.sentTo = strings.TrimSpace(email)
	r.state = StateOTPRequested
	r.Code.Clear()
	r.Shake = false
}

// SendFailed — любая ошибка отправки возвращает форму в idle.
func (r *Registration) SendFailed() {
	r.invalidate()
}

func (r *Registration) invalidate() {
	r.sentTo = ""
	r.state = StateIdle
	r.inOTPUI = false
}

// Proceed — переход ко вводу кода. Проверяет форму и привязку e-mail.
func (r *Registration) Proceed() error {
	p := &r.Profile
	p.InstitutionName = strings.TrimSpace(p.InstitutionName)
	email := strings.TrimSpace(p.Email)
	switch {
	case p.InstitutionName == "":
		return ErrNameRequired
	case email == "":
		return ErrEmailRequired
	case p.Password == "":
		return ErrPasswordRequired
	case p.Password != r.ConfirmPassword:
		return ErrPasswordMismatch
	case len(p.Password) < 6:
		return ErrPasswordShort
	case r.sentTo == "":
		return ErrOTPNotSent
	case r.sentTo != email:
		r.invalidate()
		return ErrEmailChanged
	}
	r.inOTPUI = true
	return nil
}

// Back — назад к первому шагу, код и флаг отправки сохраняются.
func (r *Registration) Back() { r.inOTPUI = false }

// PrepareVerify собирает запрос на проверку кода. Ошибка — значит в сеть не идём.
func (r *Registration) PrepareVerify() (models.Registration, string, error) {
	if r.sentTo == "" {
		return models.Registration{}, "", ErrOTPNotSent
	}
	if r.sentTo != strings.TrimSpace(r.Profile.Email) {
		r.invalidate()
		return models.Registration{}, "", ErrEmailChanged
	}
	if !r.Code.Complete() {
		return models.Registration{}, "", ErrIncompleteOTP
	}
	p := r.Profile
	p.Email = r.sentTo
	if p.YearEstablished == 0 {
		p.YearEstablished = 2000
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.Registration{}, "", &ProfileError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
		}
		return models.Registration{}, "", ErrInvalidProfile
	}
	return p, r.Code.Value(), nil
}

// VerifyFailed — сервер отказал: цифры не трогаем, только "трясём" поле.
func (r *Registration) VerifyFailed() { r.Shake = true }

func (r *Registration) Registered() {
	r.state = StateRegistered
	r.Shake = false
}

// ProfileError — поле профиля не прошло валидацию.
type ProfileError struct {
	Field string
	Tag   string
}

func (e *ProfileError) Error() string {
	return "Invalid " + e.Field + " (" + e.Tag + ")."
}

func (e *ProfileError) Unwrap() error { return ErrInvalidProfile }
