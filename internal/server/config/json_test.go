package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_address":          "www.example:9000",
		"database_dsn":          "postgres://db/users",
		"verification_window":   "30m",
		"verification_base_url": "https://users.example/verify",
		"recaptcha_secret":      "captcha-secret",
		"recaptcha_timeout":     "3s",
		"smtp_host":             "smtp.example",
		"smtp_port":             465,
		"mail_timeout":          int64(2 * time.Second),
		"sweep_hour":            0,
		"redis_addr":            "redis:6379",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, ":50051", cfg.GRPCAddr, "absent keys keep defaults")
		assert.Equal(t, "postgres://db/users", cfg.DatabaseDSN)
		assert.Equal(t, 30*time.Minute, cfg.VerificationWindow)
		assert.Equal(t, "https://users.example/verify", cfg.VerificationBaseURL)
		assert.Equal(t, "captcha-secret", cfg.RecaptchaSecret)
		assert.Equal(t, 3*time.Second, cfg.RecaptchaTimeout)
		assert.Equal(t, "smtp.example", cfg.SMTPHost)
		assert.Equal(t, 465, cfg.SMTPPort)
		assert.Equal(t, 2*time.Second, cfg.MailTimeout)
		assert.Equal(t, 0, cfg.SweepHour, "explicit zero hour is honored")
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", SweepHour: 4, MailTimeout: time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, 4, cfg.SweepHour)
		assert.Equal(t, time.Minute, cfg.MailTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "missing.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestParseJson_SweepHourOutOfRangePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{"sweep_hour": 27})
	os.Args = []string{"testbin", "-c", path}

	cfg := &Config{SweepHour: 3}
	require.Panics(t, func() { parseJson(cfg) })
	assert.Equal(t, 3, cfg.SweepHour)
}
