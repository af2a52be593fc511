// Package api is the CLI's HTTP client for the user service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/userservice/internal/netx"
)

var (
	ErrUnavailable = errors.New("server unavailable")
)

// Error is a failure the server reported inside its envelope.
type Error struct {
	StatusCode int
	RequestID  string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d, rqid %s)", e.Message, e.StatusCode, e.RequestID)
}

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
	EmailVerified bool      `json:"emailVerified"`
}

type Envelope struct {
	RequestID    string    `json:"rqid"`
	ResponseID   string    `json:"rsid"`
	StatusCode   int       `json:"statusCode"`
	ResponseTime time.Time `json:"responseTime"`
	Response     struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		User    *User  `json:"user"`
	} `json:"response"`
}

type RegisterRequest struct {
	RequestID        string `json:"rqid,omitempty"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	VerificationType string `json:"verificationType"`
	RecaptchaToken   string `json:"recaptchaToken,omitempty"`
	MathToken        string `json:"mathToken,omitempty"`
}

type VerifyEmailRequest struct {
	RequestID string `json:"rqid,omitempty"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

type LoginRequest struct {
	RequestID string `json:"rqid,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Envelope, error) {
	return c.post(ctx, "/api/auth/register", req)
}

func (c *Client) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*Envelope, error) {
	return c.post(ctx, "/api/auth/verify-email", req)
}

// VerifyLink follows a confirmation link copied from the email.
func (c *Client) VerifyLink(ctx context.Context, link string) (*Envelope, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("invalid link: %w", err)
	}
	return c.do(ctx, http.MethodGet, c.baseURL+u.Path+"?"+u.RawQuery, nil)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*Envelope, error) {
	return c.post(ctx, "/api/auth/login", req)
}

func (c *Client) post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+path, body)
}

// do returns the envelope on success and an *Error carrying the envelope's
// message otherwise. Connection failures are ErrUnavailable.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*Envelope, error) {
	var env Envelope
	code, err := netx.DoJSON(ctx, c.http, method, endpoint, nil, body, &env)
	if err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if code != http.StatusOK {
		return &env, &Error{StatusCode: code, RequestID: env.RequestID, Message: env.Response.Error}
	}
	return &env, nil
}
