// Package config handles configuration for the user service, including
// defaults, dotenv/environment overlay, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the user service.
//
// An empty DatabaseDSN selects the in-memory store and an empty SMTPHost
// selects the logging (or outbox directory) mail transport. Both are meant
// for local development only.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	DatabaseDSN string

	VerificationWindow  time.Duration
	VerificationBaseURL string

	RecaptchaSecret    string
	RecaptchaVerifyURL string
	RecaptchaTimeout   time.Duration

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	MailFrom      string
	MailTimeout   time.Duration
	MailOutboxDir string

	SweepHour     int
	RedisAddr     string
	RedisPassword string

	LogLevel string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.VerificationWindow = 1440 * time.Minute
	c.VerificationBaseURL = "http://localhost:8080/api/auth/verify-email"
	c.RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	c.RecaptchaTimeout = 5 * time.Second
	c.SMTPPort = 587
	c.MailFrom = "no-reply@localhost"
	c.MailTimeout = 10 * time.Second
	c.SweepHour = 3
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (optionally seeded from a dotenv file), from an
// optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// checkSweepHour rejects hours that time.Date would roll over into another
// hour or day.
func checkSweepHour(h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("sweep hour out of range 0-23: %d", h)
	}
	return nil
}
