package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/userservice/internal/flagx"
	"github.com/joho/godotenv"
)

// envBinding maps one environment variable onto a Config field.
type envBinding struct {
	name string
	set  func(c *Config, v string) error
}

func str(f func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*f(c) = v
		return nil
	}
}

func integer(f func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*f(c) = n
		return nil
	}
}

func hour(f func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if err := checkSweepHour(n); err != nil {
			return err
		}
		*f(c) = n
		return nil
	}
}

func duration(f func(c *Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*f(c) = d
		return nil
	}
}

func minutes(f func(c *Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*f(c) = time.Duration(n) * time.Minute
		return nil
	}
}

var envBindings = []envBinding{
	{"HTTP_ADDRESS", str(func(c *Config) *string { return &c.HTTPAddr })},
	{"GRPC_ADDRESS", str(func(c *Config) *string { return &c.GRPCAddr })},
	{"DATABASE_DSN", str(func(c *Config) *string { return &c.DatabaseDSN })},
	{"VERIFICATION_WINDOW_MINUTES", minutes(func(c *Config) *time.Duration { return &c.VerificationWindow })},
	{"VERIFICATION_BASE_URL", str(func(c *Config) *string { return &c.VerificationBaseURL })},
	{"RECAPTCHA_SECRET", str(func(c *Config) *string { return &c.RecaptchaSecret })},
	{"RECAPTCHA_VERIFY_URL", str(func(c *Config) *string { return &c.RecaptchaVerifyURL })},
	{"RECAPTCHA_TIMEOUT", duration(func(c *Config) *time.Duration { return &c.RecaptchaTimeout })},
	{"SMTP_HOST", str(func(c *Config) *string { return &c.SMTPHost })},
	{"SMTP_PORT", integer(func(c *Config) *int { return &c.SMTPPort })},
	{"SMTP_USERNAME", str(func(c *Config) *string { return &c.SMTPUser })},
	{"SMTP_PASSWORD", str(func(c *Config) *string { return &c.SMTPPassword })},
	{"MAIL_FROM", str(func(c *Config) *string { return &c.MailFrom })},
	{"MAIL_TIMEOUT", duration(func(c *Config) *time.Duration { return &c.MailTimeout })},
	{"MAIL_OUTBOX_DIR", str(func(c *Config) *string { return &c.MailOutboxDir })},
	{"SWEEP_HOUR", hour(func(c *Config) *int { return &c.SweepHour })},
	{"REDIS_ADDR", str(func(c *Config) *string { return &c.RedisAddr })},
	{"REDIS_PASSWORD", str(func(c *Config) *string { return &c.RedisPassword })},
	{"LOG_LEVEL", str(func(c *Config) *string { return &c.LogLevel })},
}

// parseEnv overlays Config with environment variables. Values from a dotenv
// file (-e/-env-file, or ./.env when present) are applied first; the process
// environment wins over the file. A malformed value panics, like the other
// configuration layers.
func parseEnv(config *Config) {
	vars, err := readDotenv(flagx.EnvFileFlags())
	if err != nil {
		panic(err)
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	if err := applyEnv(config, vars); err != nil {
		panic(err)
	}
}

// readDotenv reads the given dotenv file. With no explicit file a missing
// ./.env is not an error.
func readDotenv(file string) (map[string]string, error) {
	if file != "" {
		return godotenv.Read(file)
	}
	vars, err := godotenv.Read()
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return vars, nil
}

func applyEnv(config *Config, vars map[string]string) error {
	for _, b := range envBindings {
		v, ok := vars[b.name]
		if !ok || v == "" {
			continue
		}
		if err := b.set(config, v); err != nil {
			return fmt.Errorf("env %s: %w", b.name, err)
		}
	}
	return nil
}
