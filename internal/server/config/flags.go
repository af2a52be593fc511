package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN; empty selects the in-memory store
//	-w int      verification window, minutes
//	-u string   base URL of the emailed verification link
//	-k string   reCAPTCHA secret
//	-m string   SMTP host; empty selects the log/outbox transport
//	-o string   mail outbox directory
//	-s int      hour of day (0-23) the sweeper runs
//	-r string   Redis address for the sweeper lock
//	-l string   log level
//
// -c and -e are reserved for the JSON and dotenv files.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-w", "-u", "-k", "-m", "-o", "-s", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	window := fs.Int("w", int(config.VerificationWindow.Minutes()), "verification window (in minutes)")

	fs.StringVar(&config.VerificationBaseURL, "u", config.VerificationBaseURL, "verification link base URL")
	fs.StringVar(&config.RecaptchaSecret, "k", config.RecaptchaSecret, "reCAPTCHA secret")
	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.StringVar(&config.MailOutboxDir, "o", config.MailOutboxDir, "mail outbox directory")
	fs.IntVar(&config.SweepHour, "s", config.SweepHour, "sweeper hour of day (0-23)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.VerificationWindow = time.Duration(*window) * time.Minute

	if err := checkSweepHour(config.SweepHour); err != nil {
		panic(err)
	}
}
