package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/otp"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"api", &portal.APIError{Status: 400, Message: "Email already registered"}, "❌ Email already registered"},
		{"api_wrapped", fmt.Errorf("Upload failed: %w", &portal.APIError{Status: 500, Message: "AI down"}), "❌ Upload failed: AI down"},
		{"timeout", fmt.Errorf("upload: %w: %w", portal.ErrUnavailable, context.DeadlineExceeded), "❌ Server did not respond in time. Please try again."},
		{"transport", fmt.Errorf("login: %w: dial tcp", portal.ErrUnavailable), "❌ Server error. Please try again."},
		{"local", otp.ErrPasswordMismatch, "⚠️ Passwords do not match."},
		{"upload", fmt.Errorf("check faculty.docx: %w", upload.ErrNotPDF), "⚠️ Only PDF files accepted."},
		{"unmapped", fmt.Errorf("something odd"), "⚠️ something odd"},
		{"validation", ErrIncompleteUpload, "⚠️ Upload all 6 mandatory sections before submission."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, UserMessage(tc.err))
		})
	}
	require.False(t, IsRemote(otp.ErrIncompleteOTP))
}

func TestText_EverySentinelHasChatText(t *testing.T) {
	for _, ut := range userTexts {
		msg := ut.err.Error()
		if r := []rune(msg)[0]; unicode.IsUpper(r) || strings.HasSuffix(msg, ".") {
			t.Errorf("ошибка %q: строчная буква и без точки в конце", msg)
		}
		if got := Text(ut.err); got == msg || got == "" {
			t.Errorf("для %q нет текста для чата", msg)
		}
	}
	require.Equal(t, "Please wait before requesting a new OTP.", Text(fmt.Errorf("resend: %w", otp.ErrResendTooEarly)))
	require.Empty(t, Text(nil))
}
