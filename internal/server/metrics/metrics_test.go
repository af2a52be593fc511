package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "conflict", Outcome(common.ErrCredentialsInUse))
	assert.Equal(t, "upstream", Outcome(common.NewError(common.ErrTransport, "mail down")))
	assert.Equal(t, "internal", Outcome(errors.New("boom")))
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveOperation("register", nil)
	m.ObserveOperation("register", nil)
	m.ObserveOperation("login", common.ErrInvalidCredentials)
	m.ObserveCaptcha("math", common.ErrInvalidEvidence)
	m.AddSwept(3)
	m.AddSwept(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("register", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("login", "unauthorized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.captcha.WithLabelValues("math", "validation")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweeperDeleted))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", nil)
		m.ObserveCaptcha("x", nil)
		m.AddSwept(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.AddSwept(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), "userservice_sweeper_deleted_total 2"))
}
