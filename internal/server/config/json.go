package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/userservice/internal/flagx"
	"github.com/dmitrijs2005/userservice/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted. Fields
// left out of the file keep the value from the previous layers.
type JsonConfig struct {
	HTTPAddr            string         `json:"http_address"`
	GRPCAddr            string         `json:"grpc_address"`
	DatabaseDSN         string         `json:"database_dsn"`
	VerificationWindow  timex.Duration `json:"verification_window"`
	VerificationBaseURL string         `json:"verification_base_url"`
	RecaptchaSecret     string         `json:"recaptcha_secret"`
	RecaptchaVerifyURL  string         `json:"recaptcha_verify_url"`
	RecaptchaTimeout    timex.Duration `json:"recaptcha_timeout"`
	SMTPHost            string         `json:"smtp_host"`
	SMTPPort            int            `json:"smtp_port"`
	SMTPUser            string         `json:"smtp_username"`
	SMTPPassword        string         `json:"smtp_password"`
	MailFrom            string         `json:"mail_from"`
	MailTimeout         timex.Duration `json:"mail_timeout"`
	MailOutboxDir       string         `json:"mail_outbox_dir"`
	SweepHour           *int           `json:"sweep_hour"`
	RedisAddr           string         `json:"redis_addr"`
	RedisPassword       string         `json:"redis_password"`
	LogLevel            string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, on top of config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if err := c.apply(config); err != nil {
		panic(err)
	}
}

func (c *JsonConfig) apply(config *Config) error {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.VerificationBaseURL, c.VerificationBaseURL)
	setString(&config.RecaptchaSecret, c.RecaptchaSecret)
	setString(&config.RecaptchaVerifyURL, c.RecaptchaVerifyURL)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailOutboxDir, c.MailOutboxDir)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.LogLevel, c.LogLevel)

	if c.VerificationWindow.Duration > 0 {
		config.VerificationWindow = c.VerificationWindow.Duration
	}
	if c.RecaptchaTimeout.Duration > 0 {
		config.RecaptchaTimeout = c.RecaptchaTimeout.Duration
	}
	if c.MailTimeout.Duration > 0 {
		config.MailTimeout = c.MailTimeout.Duration
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SweepHour != nil {
		if err := checkSweepHour(*c.SweepHour); err != nil {
			return err
		}
		config.SweepHour = *c.SweepHour
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
