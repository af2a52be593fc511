package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/userservice/internal/cryptox"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeCaptcha struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeCaptcha) VerifyKind(context.Context, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type sentMail struct {
	Kind      string
	To        string
	Token     string
	Username  string
	ExpiresAt time.Time
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sentMail
	loginErr error
	verifErr error
}

func (f *fakeNotifier) SendVerification(_ context.Context, _, to, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifErr != nil {
		return f.verifErr
	}
	f.sent = append(f.sent, sentMail{Kind: "verification", To: to, Token: token, ExpiresAt: expiresAt})
	return nil
}

func (f *fakeNotifier) SendLoginNotification(_ context.Context, _, to, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return f.loginErr
	}
	f.sent = append(f.sent, sentMail{Kind: "login", To: to, Username: username})
	return nil
}

func (f *fakeNotifier) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// clock is a settable timex.Clock.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// gatedAudit stores audit records except those reject picks out.
type gatedAudit struct {
	*auditlogs.MemoryRepository
	reject func(r *models.AuditRecord) bool
}

func (g *gatedAudit) Insert(ctx context.Context, r *models.AuditRecord) error {
	if g.reject != nil && g.reject(r) {
		return errors.New("db down")
	}
	return g.MemoryRepository.Insert(ctx, r)
}

type fixture struct {
	rm       *repomanager.MemoryRepositoryManager
	audit    *auditlogs.MemoryRepository
	gate     *gatedAudit
	captcha  *fakeCaptcha
	notifier *fakeNotifier
	clock    *clock
	metrics  *metrics.Metrics
	svc      *AccountService
}

const window = 24 * time.Hour

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rm:       repomanager.NewMemoryRepositoryManager(),
		audit:    auditlogs.NewMemoryRepository(),
		captcha:  &fakeCaptcha{},
		notifier: &fakeNotifier{},
		clock:    &clock{now: t0},
		metrics:  metrics.New(),
	}
	f.gate = &gatedAudit{MemoryRepository: f.audit}
	f.svc = f.newService(f.rm)
	return f
}

func (f *fixture) newService(rm repomanager.RepositoryManager) *AccountService {
	return NewAccountService(AccountDeps{
		Repos:    rm,
		Captcha:  f.captcha,
		Notifier: f.notifier,
		Hasher:   cryptox.NewBcryptHasher(bcrypt.MinCost),
		Audit:    audit.NewLogger(logging.Nop{}, f.gate, f.clock.Now),
		Metrics:  f.metrics,
		Clock:    f.clock.Now,
	}, window)
}

func (f *fixture) auditFor(rqid string) []models.AuditRecord {
	var out []models.AuditRecord
	for _, r := range f.audit.List() {
		if r.RequestID == rqid {
			out = append(out, r)
		}
	}
	return out
}

func levels(recs []models.AuditRecord) []models.LogLevel {
	out := make([]models.LogLevel, len(recs))
	for i, r := range recs {
		out[i] = r.Level
	}
	return out
}

func input(username, email, password string) RegisterInput {
	return RegisterInput{Username: username, Email: email, Password: password, VerificationKind: "math", Evidence: "2 + 2 = 4"}
}

var errBoom = errors.New("boom")
