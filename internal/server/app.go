// Package server initializes and runs the user service: storage, the account
// lifecycle services, the HTTP API, the gRPC health endpoint and the
// expiration sweeper, with graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/userservice/internal/cryptox"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/server/captcha"
	"github.com/dmitrijs2005/userservice/internal/server/config"
	"github.com/dmitrijs2005/userservice/internal/server/httpapi"
	"github.com/dmitrijs2005/userservice/internal/server/locks"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
	"github.com/dmitrijs2005/userservice/internal/server/notify"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/server/services"

	gs "github.com/dmitrijs2005/userservice/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	redis   *redis.Client
	http    *httpapi.Server
	health  *gs.HealthServer
	sweeper *services.Sweeper
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	repos, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory storage")
	}

	app := &App{config: c, logger: logger, repos: repos}

	m := metrics.New()
	al := audit.NewLogger(logger, repos.AuditLogs(repos.Conn()), nil)

	transport, err := app.mailTransport(ctx)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	accounts := services.NewAccountService(services.AccountDeps{
		Repos:    repos,
		Captcha:  captcha.NewVerifier(captcha.NewRecaptchaClient(c.RecaptchaSecret, c.RecaptchaVerifyURL, c.RecaptchaTimeout), al, m),
		Notifier: notify.NewDispatcher(transport, c.MailFrom, c.VerificationBaseURL, al, nil),
		Hasher:   cryptox.NewBcryptHasher(0),
		Audit:    al,
		Metrics:  m,
	}, c.VerificationWindow)

	var locker services.Locker
	if c.RedisAddr != "" {
		rdb, err := locks.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		app.redis = rdb
		locker = locks.NewRedisLocker(rdb)
	}
	app.sweeper = services.NewSweeper(repos, al, m, nil, locker, c.SweepHour)

	var pinger httpapi.Pinger
	if p, ok := repos.(httpapi.Pinger); ok {
		pinger = p
	}
	trail := services.NewIntegrationTrail(repos.IntegrationLogs(repos.Conn()), logger, nil)
	router := httpapi.NewRouter(httpapi.NewHandler(accounts, trail, al), pinger, m.Handler(), logger)

	app.http = httpapi.NewServer(c.HTTPAddr, router, logger)
	app.health = gs.NewHealthServer(c.GRPCAddr, logger)

	return app, nil
}

// mailTransport picks SMTP when a host is configured, otherwise the outbox
// directory or the log.
func (app *App) mailTransport(ctx context.Context) (notify.Transport, error) {
	c := app.config
	switch {
	case c.SMTPHost != "":
		return notify.NewSMTPTransport(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.MailTimeout), nil
	case c.MailOutboxDir != "":
		t, err := notify.NewOutboxTransport(c.MailOutboxDir)
		if err != nil {
			return nil, fmt.Errorf("mail outbox error: %w", err)
		}
		app.logger.Warn(ctx, "no SMTP host configured, writing mail to outbox", "dir", t.Dir())
		return t, nil
	default:
		app.logger.Warn(ctx, "no SMTP host configured, mail goes to the log")
		return notify.NewLogTransport(app.logger), nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a shutdown signal arrives or a server fails, then
// releases storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
