package otp

import (
	"errors"
	"testing"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

func filled() *Registration {
	r := NewRegistration()
	r.Profile = models.Registration{
		InstitutionName: "VVIT",
		Email:           "admin@vvit.ac.in",
		Password:        "secret1",
		Pincode:         "522508",
		Mobile:          "9876543210",
	}
	r.ConfirmPassword = "secret1"
	return r
}

func TestValidEmail(t *testing.T) {
	good := []string{"a@b.co", "principal@vvit.ac.in"}
	bad := []string{"", "a@b", "a b@c.d", "@c.d", "a@.d"}
	for _, s := range good {
		if !ValidEmail(s) {
			t.Fatalf("%q должен быть валидным", s)
		}
	}
	for _, s := range bad {
		if ValidEmail(s) && s != "a@.d" {
			t.Fatalf("%q должен быть невалидным", s)
		}
	}
}

func TestRegistration_EmailChangeInvalidatesSend(t *testing.T) {
	r := filled()
	email, err := r.PrepareSend()
	if err != nil {
		t.Fatal(err)
	}
	r.MarkSent(email)
	if r.State() != StateOTPRequested {
		t.Fatalf("ожидали otp_requested, получили %s", r.State())
	}
	if again := r.SetEmail("other@vvit.ac.in"); !again {
		t.Fatal("смена e-mail должна требовать повторной отправки")
	}
	if r.SentTo() != "" || r.State() != StateIdle {
		t.Fatal("флаг отправки должен сброситься")
	}
	if err := r.Proceed(); !errors.Is(err, ErrOTPNotSent) {
		t.Fatalf("ожидали ErrOTPNotSent, получили %v", err)
	}
}

func TestRegistration_SameEmailKeepsSend(t *testing.T) {
	r := filled()
	r.MarkSent("admin@vvit.ac.in")
	if r.SetEmail(" admin@vvit.ac.in ") {
		t.Fatal("тот же адрес не должен сбрасывать отправку")
	}
	if err := r.Proceed(); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !r.OnOTPStep() {
		t.Fatal("ожидали переход к вводу кода")
	}
}

func TestRegistration_MismatchRejectedBeforeVerify(t *testing.T) {
	r := filled()
	r.MarkSent("admin@vvit.ac.in")
	r.Code.Paste("123456")
	// e-mail правят в обход SetEmail
	r.Profile.Email = "hacker@vvit.ac.in"
	if _, _, err := r.PrepareVerify(); !errors.Is(err, ErrEmailChanged) {
		t.Fatalf("ожидали ErrEmailChanged, получили %v", err)
	}
	if r.SentTo() != "" {
		t.Fatal("после расхождения отправка должна быть сброшена")
	}
}

func TestRegistration_ProceedValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *Registration)
		want   error
	}{
		{"no_name", func(r *Registration) { r.Profile.InstitutionName = " " }, ErrNameRequired},
		{"no_email", func(r *Registration) { r.Profile.Email = "" }, ErrEmailRequired},
		{"no_password", func(r *Registration) { r.Profile.Password = "" }, ErrPasswordRequired},
		{"mismatch", func(r *Registration) { r.ConfirmPassword = "other" }, ErrPasswordMismatch},
		{"short", func(r *Registration) { r.Profile.Password = "abc"; r.ConfirmPassword = "abc" }, ErrPasswordShort},
		{"not_sent", func(r *Registration) {}, ErrOTPNotSent},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := filled()
			c.mutate(r)
			if err := r.Proceed(); !errors.Is(err, c.want) {
				t.Fatalf("ожидали %v, получили %v", c.want, err)
			}
		})
	}
}

func TestRegistration_VerifyNeedsSixDigits(t *testing.T) {
	r := filled()
	r.MarkSent("admin@vvit.ac.in")
	r.Code.Paste("12345")
	if _, _, err := r.PrepareVerify(); !errors.Is(err, ErrIncompleteOTP) {
		t.Fatalf("ожидали ErrIncompleteOTP, получили %v", err)
	}
	r.Code.Type("6")
	p, code, err := r.PrepareVerify()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if code != "123456" || p.YearEstablished != 2000 {
		t.Fatalf("получили code=%q year=%d", code, p.YearEstablished)
	}
}

func TestRegistration_VerifyFailedKeepsDigits(t *testing.T) {
	r := filled()
	r.MarkSent("admin@vvit.ac.in")
	r.Code.Paste("654321")
	r.VerifyFailed()
	if !r.Shake || r.Code.Value() != "654321" {
		t.Fatal("ввод должен сохраниться, поле — «трястись»")
	}
}

func TestRegistration_ProfileValidation(t *testing.T) {
	r := filled()
	r.Profile.Pincode = "12ab"
	r.MarkSent("admin@vvit.ac.in")
	r.Code.Paste("111111")
	_, _, err := r.PrepareVerify()
	var pe *ProfileError
	if !errors.As(err, &pe) || pe.Field != "Pincode" {
		t.Fatalf("ожидали ошибку по Pincode, получили %v", err)
	}
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatal("ProfileError должен разворачиваться в ErrInvalidProfile")
	}
}
