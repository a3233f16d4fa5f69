package portal

import (
	"context"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.postJSON(ctx, "send_otp", "/send-otp/", map[string]string{"email": email}, nil)
}

type verifyBody struct {
	models.Registration
	OTP string `json:"otp"`
}

// VerifyOTP — проверка кода и регистрация одним запросом.
func (c *Client) VerifyOTP(ctx context.Context, profile models.Registration, otp string) (models.InstitutionLogin, error) {
	var out models.InstitutionLogin
	err := c.postJSON(ctx, "verify_otp", "/verify-otp/", verifyBody{Registration: profile, OTP: otp}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, cr models.Credentials) (models.InstitutionLogin, error) {
	var out models.InstitutionLogin
	err := c.postJSON(ctx, "login", "/login/", cr, &out)
	return out, err
}

func (c *Client) AuthorityLogin(ctx context.Context, cr models.Credentials) (models.AuthorityLogin, error) {
	var out models.AuthorityLogin
	err := c.postJSON(ctx, "authority_login", "/authority/login/", cr, &out)
	return out, err
}
