package workflow

import (
	"context"
	"errors"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/otp"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
)

// ValidationError — локальная проверка не пройдена, в сеть не ходили.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

var (
	ErrCredentialsRequired = invalid("Please enter email and password.")
	ErrIncompleteUpload    = invalid("Upload all 6 mandatory sections before submission.")
	ErrNotInstitution      = invalid("Please log in as an institution first.")
	ErrNotAuthority        = invalid("Please log in as an authority first.")
	ErrApprovalNotFound    = invalid("Application not found.")
)

// userTexts — как локальные ошибки otp, upload и approval выглядят в чате.
var userTexts = []struct {
	err  error
	text string
}{
	{otp.ErrInvalidEmail, "Please enter a valid email address first."},
	{otp.ErrNameRequired, "Institution name is required."},
	{otp.ErrEmailRequired, "Email is required."},
	{otp.ErrPasswordRequired, "Password is required."},
	{otp.ErrPasswordMismatch, "Passwords do not match."},
	{otp.ErrPasswordShort, "Password must be at least 6 characters."},
	{otp.ErrOTPNotSent, "Please send OTP to your email first before proceeding."},
	{otp.ErrEmailChanged, "Email changed after OTP was sent. Please send OTP again."},
	{otp.ErrIncompleteOTP, "Please enter the complete 6-digit OTP."},
	{otp.ErrResendTooEarly, "Please wait before requesting a new OTP."},
	{otp.ErrInvalidProfile, "Registration details are incomplete."},
	{upload.ErrNotPDF, "Only PDF files accepted."},
	{upload.ErrNotLoggedIn, "Please log in first."},
	{upload.ErrUnknownSection, "Unknown disclosure section."},
	{upload.ErrEmptyFile, "The file is empty."},
	{approval.ErrUnknownSection, "Unknown section."},
	{approval.ErrUnknownDecision, "Decision must be pending, approved or rejected."},
	{approval.ErrUnknownAction, "Choose approve or reject."},
	{approval.ErrNoApproval, "Open the application again from the list."},
}

// Text — текст ошибки для чата без значка.
func Text(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range userTexts {
		if errors.Is(err, t.err) {
			return t.text
		}
	}
	return err.Error()
}

// UserMessage — текст ошибки для чата. Ни одна ошибка не завершает сессию.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *portal.APIError
	switch {
	case errors.As(err, &ae):
		return "❌ " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "❌ Server did not respond in time. Please try again."
	case errors.Is(err, portal.ErrUnavailable):
		return "❌ Server error. Please try again."
	default:
		return "⚠️ " + Text(err)
	}
}

// IsRemote — ошибка пришла от портала или сети, а не из локальной проверки.
func IsRemote(err error) bool {
	var ae *portal.APIError
	return errors.As(err, &ae) || errors.Is(err, portal.ErrUnavailable)
}
