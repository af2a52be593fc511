package captcha

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/userservice/internal/netx"
)

// RemoteVerifier adjudicates an external challenge token.
type RemoteVerifier interface {
	Verify(ctx context.Context, token string) (RemoteResult, error)
}

// RemoteResult is the decoded siteverify answer.
type RemoteResult struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// RecaptchaClient posts tokens to the reCAPTCHA siteverify endpoint.
type RecaptchaClient struct {
	secret   string
	endpoint string
	client   *http.Client
}

// NewRecaptchaClient builds a client bounded by timeout.
func NewRecaptchaClient(secret, endpoint string, timeout time.Duration) *RecaptchaClient {
	return &RecaptchaClient{
		secret:   secret,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *RecaptchaClient) Verify(ctx context.Context, token string) (RemoteResult, error) {
	var res RemoteResult
	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}
	if err := netx.PostFormJSON(ctx, c.client, c.endpoint, form, &res); err != nil {
		return RemoteResult{}, err
	}
	return res, nil
}
