package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApplyEnv(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	err := applyEnv(c, map[string]string{
		"DATABASE_DSN":                "postgres://u:p@db/users",
		"VERIFICATION_WINDOW_MINUTES": "30",
		"RECAPTCHA_TIMEOUT":           "2s",
		"SMTP_PORT":                   "465",
		"REDIS_ADDR":                  "redis:6379",
		"LOG_LEVEL":                   "",
		"UNRELATED":                   "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/users", c.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, c.VerificationWindow)
	assert.Equal(t, 2*time.Second, c.RecaptchaTimeout)
	assert.Equal(t, 465, c.SMTPPort)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, "info", c.LogLevel, "empty values keep the previous layer")
}

func TestApplyEnv_BadValue(t *testing.T) {
	c := &Config{}

	err := applyEnv(c, map[string]string{"SMTP_PORT": "smtp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")

	err = applyEnv(c, map[string]string{"MAIL_TIMEOUT": "10"})
	require.Error(t, err)
}

func TestApplyEnv_SweepHourRange(t *testing.T) {
	for _, v := range []string{"-1", "24", "27"} {
		c := &Config{SweepHour: 3}
		err := applyEnv(c, map[string]string{"SWEEP_HOUR": v})
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "SWEEP_HOUR")
		assert.Equal(t, 3, c.SweepHour)
	}

	c := &Config{}
	require.NoError(t, applyEnv(c, map[string]string{"SWEEP_HOUR": "23"}))
	assert.Equal(t, 23, c.SweepHour)
}

func TestParseEnv_ProcessEnvWinsOverFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	envFile := writeFile(t, dir, "dev.env", "GRPC_ADDRESS=:6000\nMAIL_FROM=file@example.com\n")
	os.Args = []string{"testbin", "-env-file", envFile}
	t.Setenv("MAIL_FROM", "proc@example.com")

	c := &Config{}
	parseEnv(c)

	assert.Equal(t, ":6000", c.GRPCAddr)
	assert.Equal(t, "proc@example.com", c.MailFrom)
}

func TestParseEnv_DefaultDotenvIsOptional(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	c := &Config{HTTPAddr: ":1"}
	require.NotPanics(t, func() { parseEnv(c) })
	assert.Equal(t, ":1", c.HTTPAddr)
}

func TestParseEnv_MissingExplicitFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-e", filepath.Join(t.TempDir(), "nope.env")}

	require.Panics(t, func() { parseEnv(&Config{}) })
}
