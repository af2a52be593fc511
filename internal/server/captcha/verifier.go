package captcha

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
)

const component = "CaptchaVerifier"

// Verifier checks registration challenges. Every outcome is written to the
// audit log before Verify returns.
type Verifier struct {
	remote  RemoteVerifier
	audit   *audit.ComponentLogger
	metrics *metrics.Metrics
}

func NewVerifier(remote RemoteVerifier, a *audit.Logger, m *metrics.Metrics) *Verifier {
	return &Verifier{remote: remote, audit: a.Component(component), metrics: m}
}

// VerifyKind resolves the wire kind and verifies the evidence against it.
func (v *Verifier) VerifyKind(ctx context.Context, rqid, kind, evidence string) error {
	c, err := NewChallenge(kind, evidence)
	if err != nil {
		v.audit.Error(ctx, rqid, "Unsupported captcha type: "+kind)
		v.metrics.ObserveCaptcha("unsupported", err)
		return err
	}
	return v.Verify(ctx, rqid, c)
}

// Verify returns nil when the challenge is solved. Failures carry one of the
// captcha error kinds, or ErrTransport when the remote endpoint could not be
// consulted.
func (v *Verifier) Verify(ctx context.Context, rqid string, c Challenge) error {
	v.audit.Info(ctx, rqid, "Starting captcha verification for type: "+string(c.Kind()))

	var err error
	switch ch := c.(type) {
	case ExternalChallenge:
		err = v.verifyExternal(ctx, rqid, ch)
	case ArithmeticChallenge:
		err = v.verifyArithmetic(ctx, rqid, ch)
	}

	v.metrics.ObserveCaptcha(string(c.Kind()), err)

	if err != nil {
		return err
	}

	v.audit.Info(ctx, rqid, "Captcha verification successful for type: "+string(c.Kind()))
	return nil
}

func (v *Verifier) verifyExternal(ctx context.Context, rqid string, c ExternalChallenge) error {
	if strings.TrimSpace(c.Token) == "" {
		v.audit.Error(ctx, rqid, "reCAPTCHA token must be provided")
		return common.NewError(common.ErrMalformedChallenge, "reCAPTCHA token must be provided")
	}

	res, err := v.remote.Verify(ctx, c.Token)
	if err != nil {
		v.audit.Error(ctx, rqid, "reCAPTCHA endpoint unavailable", "error", err)
		return common.WrapError(common.ErrTransport, "Captcha verification unavailable", err)
	}

	if !res.Success {
		v.audit.Error(ctx, rqid, "reCAPTCHA verification failed", "errorCodes", res.ErrorCodes)
		return common.NewError(common.ErrInvalidEvidence, "Incorrect captcha")
	}

	return nil
}

func (v *Verifier) verifyArithmetic(ctx context.Context, rqid string, c ArithmeticChallenge) error {
	ok, err := EvaluateArithmetic(c.Expression)
	if err != nil {
		v.audit.Error(ctx, rqid, "Math captcha rejected: "+common.Message(err))
		return err
	}
	if !ok {
		v.audit.Error(ctx, rqid, "Math captcha failed: wrong answer")
		return common.NewError(common.ErrInvalidEvidence, "Incorrect captcha")
	}
	return nil
}
