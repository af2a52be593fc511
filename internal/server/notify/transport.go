// Package notify delivers account emails: the confirmation link after
// registration and the notice after a successful login.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"time"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Transport hands a message to the mail system. Implementations must bound
// the call in time; a timeout is a failed send.
type Transport interface {
	Send(ctx context.Context, m Message) error
}

// render encodes m as an RFC 5322 message with a quoted-printable body.
func render(m Message, date time.Time) ([]byte, error) {
	ct := "text/plain"
	if m.HTML {
		ct = "text/html"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: %s; charset=\"utf-8\"\r\n", ct)
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	w := quotedprintable.NewWriter(&buf)
	if _, err := w.Write([]byte(m.Body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
