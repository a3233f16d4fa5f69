package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("PORTAL_API_URL", "http://localhost:9000/vvit/")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/vvit", cfg.PortalURL)
	require.Equal(t, 30*time.Second, cfg.PortalTimeout)
	require.Equal(t, 3*time.Minute, cfg.UploadTimeout)
	require.Equal(t, "2024-25", cfg.AcademicYear)
	require.Equal(t, 30*time.Second, cfg.OTPResendAfter)
	require.Empty(t, cfg.DatabaseURL)
	require.NotNil(t, cfg.Location)
	require.False(t, cfg.IsProd())
}

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoad_DotEnvFile(t *testing.T) {
	os.Unsetenv("NOTIFY_POLL_INTERVAL")
	t.Setenv("BOT_TOKEN", "from-env")
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("BOT_TOKEN=from-file\nNOTIFY_POLL_INTERVAL=45s\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("NOTIFY_POLL_INTERVAL") })

	cfg, err := Load(p)
	require.NoError(t, err)
	// godotenv не перетирает уже заданные переменные
	require.Equal(t, "from-env", cfg.BotToken)
	require.Equal(t, 45*time.Second, cfg.NotifyPollInterval)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("BOT_TOKEN", "x")
	t.Setenv("PORTAL_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
