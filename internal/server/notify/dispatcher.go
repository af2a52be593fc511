package notify

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/timex"
)

const component = "NotificationDispatcher"

// Dispatcher renders account emails and hands them to a Transport. Send
// failures come back as ErrTransport; the caller decides whether they are
// fatal.
type Dispatcher struct {
	transport Transport
	from      string
	baseURL   string
	audit     *audit.ComponentLogger
	clock     timex.Clock
}

func NewDispatcher(t Transport, from, verificationBaseURL string, a *audit.Logger, clock timex.Clock) *Dispatcher {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &Dispatcher{
		transport: t,
		from:      from,
		baseURL:   verificationBaseURL,
		audit:     a.Component(component),
		clock:     clock,
	}
}

// VerificationURL builds the link embedded in the confirmation mail. Every
// parameter is query-escaped.
func VerificationURL(base, email, token, rqid string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	q.Set("rqid", rqid)
	return base + "?" + q.Encode()
}

// SendVerification mails the confirmation link for token to the given address.
func (d *Dispatcher) SendVerification(ctx context.Context, rqid, to, token string, expiresAt time.Time) error {
	var body bytes.Buffer
	err := verificationTmpl.Execute(&body, verificationData{
		URL:       VerificationURL(d.baseURL, to, token, rqid),
		ExpiresAt: expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		d.audit.Error(ctx, rqid, "Failed to render verification email", "error", err)
		return common.WrapError(common.ErrorInternal, "Failed to render verification email", err)
	}

	return d.send(ctx, rqid, "verification email", Message{
		From: d.from, To: to, Subject: verificationSubject, Body: body.String(), HTML: true,
	})
}

// SendLoginNotification mails a plain-text sign-in notice.
func (d *Dispatcher) SendLoginNotification(ctx context.Context, rqid, to, username string) error {
	var body bytes.Buffer
	err := loginTmpl.Execute(&body, loginData{
		Username: username,
		At:       d.clock().UTC().Format(time.RFC1123),
	})
	if err != nil {
		d.audit.Error(ctx, rqid, "Failed to render login notification", "error", err)
		return common.WrapError(common.ErrorInternal, "Failed to render login notification", err)
	}

	return d.send(ctx, rqid, "login notification", Message{
		From: d.from, To: to, Subject: loginSubject, Body: body.String(),
	})
}

func (d *Dispatcher) send(ctx context.Context, rqid, kind string, m Message) error {
	if err := d.transport.Send(ctx, m); err != nil {
		d.audit.Error(ctx, rqid, "Failed to send "+kind+" to: "+m.To, "error", err)
		return common.WrapError(common.ErrTransport, "Failed to send "+kind, err)
	}
	d.audit.Info(ctx, rqid, kind+" sent successfully to: "+m.To)
	return nil
}
