// Package cli implements the interactive command-line client of the user
// service: registration with a captcha, email confirmation and login.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/userservice/internal/client/api"
	"github.com/dmitrijs2005/userservice/internal/client/config"
	"github.com/dmitrijs2005/userservice/internal/logging"
)

// accountAPI is the server surface the commands use.
type accountAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.Envelope, error)
	VerifyEmail(ctx context.Context, req api.VerifyEmailRequest) (*api.Envelope, error)
	VerifyLink(ctx context.Context, link string) (*api.Envelope, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.Envelope, error)
}

type App struct {
	config   *config.Config
	api      accountAPI
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &App{
		config: c,
		api:    api.NewClient(c.ServerURL, c.RequestTimeout),
		logger: logging.NewTextLogger(os.Stderr, c.Verbose),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) status() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// Run executes the command named in args, or starts the REPL when args is
// empty.
func (a *App) Run(ctx context.Context, args []string) {
	if len(args) > 0 {
		dispatch(ctx, a, args[0])
		return
	}

	fmt.Fprintln(a.out, "User service CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

// report prints the outcome of one API call. The error is returned unchanged.
func (a *App) report(ctx context.Context, env *api.Envelope, err error) error {
	var apiErr *api.Error
	switch {
	case err == nil:
		fmt.Fprintln(a.out, env.Response.Message)
		a.logger.Debug(ctx, "request done", "rqid", env.RequestID, "rsid", env.ResponseID)
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.out, "Error:", apiErr.Message)
		a.logger.Debug(ctx, "request failed", "status", apiErr.StatusCode, "rqid", apiErr.RequestID)
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
		a.logger.Warn(ctx, "server unavailable", "error", err)
	default:
		fmt.Fprintln(a.out, "Error:", err)
		a.logger.Error(ctx, "request failed", "error", err)
	}
	return err
}
