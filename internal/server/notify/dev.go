package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/filex"
	"github.com/dmitrijs2005/userservice/internal/logging"
)

// LogTransport writes mails to the operational log instead of sending them.
type LogTransport struct {
	log logging.Logger
}

func NewLogTransport(log logging.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(ctx context.Context, m Message) error {
	t.log.Info(ctx, "mail not sent, no SMTP host configured",
		"to", m.To, "subject", m.Subject, "html", m.HTML, "body", m.Body)
	return nil
}

// OutboxTransport drops every mail as an .eml file into a directory.
type OutboxTransport struct {
	dir string
}

// NewOutboxTransport creates dir if needed.
func NewOutboxTransport(dir string) (*OutboxTransport, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &OutboxTransport{dir: abs}, nil
}

func (t *OutboxTransport) Dir() string {
	return t.dir
}

func (t *OutboxTransport) Send(_ context.Context, m Message) error {
	now := time.Now()
	b, err := render(m, now)
	if err != nil {
		return err
	}
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%s.eml", now.UTC().Format("20060102T150405.000000000"), suffix)
	_, err = filex.WriteAtomic(t.dir, name, b)
	return err
}
