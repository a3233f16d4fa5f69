package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/otp"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

type AuthPortal interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, profile models.Registration, code string) (models.InstitutionLogin, error)
	Login(ctx context.Context, cr models.Credentials) (models.InstitutionLogin, error)
	AuthorityLogin(ctx context.Context, cr models.Credentials) (models.AuthorityLogin, error)
}

type Auth struct {
	portal AuthPortal
	log    *zap.Logger
}

func NewAuth(p AuthPortal, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{portal: p, log: log}
}

// SendOTP проверяет адрес локально и запрашивает код. Возвращает адрес, на который код ушёл.
func (a *Auth) SendOTP(ctx context.Context, reg *otp.Registration) (string, error) {
	email, err := reg.PrepareSend()
	if err != nil {
		return "", err
	}
	if err := a.portal.SendOTP(ctx, email); err != nil {
		reg.SendFailed()
		a.log.Info("send otp failed", zap.String("email", email), zap.Error(err))
		return "", err
	}
	reg.MarkSent(email)
	return email, nil
}

// Resend разрешён только после окончания отсчёта.
func (a *Auth) Resend(ctx context.Context, reg *otp.Registration, cd *otp.Countdown) (string, error) {
	if cd != nil && cd.Running() {
		return "", otp.ErrResendTooEarly
	}
	return a.SendOTP(ctx, reg)
}

// Register — проверка кода и регистрация; при успехе сессия становится сессией учреждения.
func (a *Auth) Register(ctx context.Context, s *session.Session, reg *otp.Registration) error {
	profile, code, err := reg.PrepareVerify()
	if err != nil {
		return err
	}
	res, err := a.portal.VerifyOTP(ctx, profile, code)
	if err != nil {
		reg.VerifyFailed()
		return err
	}
	reg.Registered()
	name := res.InstitutionName
	if name == "" {
		name = profile.InstitutionName
	}
	s.LoginInstitution(res.InstitutionID, name, profile.Email)
	a.log.Info("institution registered", zap.Int64("institution_id", res.InstitutionID), zap.Int64("chat_id", s.ChatID))
	return nil
}

func credentials(email, password string) (models.Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.Credentials{}, ErrCredentialsRequired
	}
	return models.Credentials{Email: email, Password: password}, nil
}

func (a *Auth) Login(ctx context.Context, s *session.Session, email, password string) error {
	cr, err := credentials(email, password)
	if err != nil {
		return err
	}
	res, err := a.portal.Login(ctx, cr)
	if err != nil {
		return err
	}
	s.LoginInstitution(res.InstitutionID, res.InstitutionName, cr.Email)
	return nil
}

func (a *Auth) AuthorityLogin(ctx context.Context, s *session.Session, email, password string) error {
	cr, err := credentials(email, password)
	if err != nil {
		return err
	}
	res, err := a.portal.AuthorityLogin(ctx, cr)
	if err != nil {
		return err
	}
	s.LoginAuthority(res.Name, cr.Email)
	return nil
}
