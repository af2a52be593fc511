package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/integrationlogs"
	"github.com/dmitrijs2005/userservice/internal/timex"
	"github.com/oklog/ulid/v2"
)

// MaskedSecret replaces passwords in stored request payloads.
const MaskedSecret = "******"

// Envelope is the response shape of every externally facing operation.
type Envelope struct {
	RequestID    string    `json:"rqid"`
	ResponseID   string    `json:"rsid"`
	StatusCode   int       `json:"statusCode"`
	Response     any       `json:"response"`
	ResponseTime time.Time `json:"responseTime"`
}

// SuccessBody is the payload of a successful operation.
type SuccessBody struct {
	Message string              `json:"message"`
	User    *models.AccountView `json:"user,omitempty"`
}

// ErrorBody is the payload of a failed operation.
type ErrorBody struct {
	Error string `json:"error"`
}

// StatusCode maps an operation error onto an HTTP-like status; nil is 200.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch common.Category(err) {
	case common.CategoryValidation:
		return http.StatusBadRequest
	case common.CategoryNotFound:
		return http.StatusNotFound
	case common.CategoryConflict:
		return http.StatusConflict
	case common.CategoryUnauthorized:
		return http.StatusUnauthorized
	case common.CategoryUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IntegrationTrail wraps operations so each call produces one envelope that
// is both returned and persisted.
type IntegrationTrail struct {
	store   integrationlogs.Repository
	log     logging.Logger
	clock   timex.Clock
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewIntegrationTrail(store integrationlogs.Repository, log logging.Logger, clock timex.Clock) *IntegrationTrail {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &IntegrationTrail{
		store:   store,
		log:     log.With("component", "IntegrationAuditTrail"),
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// newResponseID returns a ULID that sorts after every earlier one from this
// trail.
func (t *IntegrationTrail) newResponseID(at time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), t.entropy).String()
}

// Wrap runs fn and turns its outcome into an Envelope. request is the
// inbound payload as it should be stored; secrets must already be masked.
// A successful outcome is only reported once its record is stored: if that
// write fails the caller gets an internal error envelope instead. On the
// error path a failed write is logged and the envelope is kept.
func (t *IntegrationTrail) Wrap(ctx context.Context, rqid string, request any, fn func() (*Result, error)) Envelope {
	requestTime := t.clock()

	res, err := fn()

	env := t.envelope(rqid, res, err)
	storeErr := t.store.Insert(ctx, t.record(request, requestTime, env))
	if storeErr == nil {
		return env
	}
	t.log.Error(ctx, "integration log write failed", "rqid", rqid, "rsid", env.ResponseID, "error", storeErr)
	if err != nil {
		return env
	}

	env = t.envelope(rqid, nil, common.WrapError(common.ErrorInternal, "Internal server error", storeErr))
	if err := t.store.Insert(ctx, t.record(request, requestTime, env)); err != nil {
		t.log.Error(ctx, "integration log write failed", "rqid", rqid, "rsid", env.ResponseID, "error", err)
	}
	return env
}

func (t *IntegrationTrail) envelope(rqid string, res *Result, err error) Envelope {
	responseTime := t.clock()
	env := Envelope{
		RequestID:    rqid,
		ResponseID:   t.newResponseID(responseTime),
		StatusCode:   StatusCode(err),
		ResponseTime: responseTime,
	}
	if err != nil {
		env.Response = ErrorBody{Error: common.Message(err)}
		return env
	}
	body := SuccessBody{Message: res.Message}
	if res.Account.ID != 0 {
		view := res.Account
		body.User = &view
	}
	env.Response = body
	return env
}

func (t *IntegrationTrail) record(request any, requestTime time.Time, env Envelope) *models.IntegrationRecord {
	return &models.IntegrationRecord{
		RequestID:    env.RequestID,
		ResponseID:   env.ResponseID,
		RequestTime:  requestTime,
		ResponseTime: env.ResponseTime,
		StatusCode:   env.StatusCode,
		RequestData:  marshal(request),
		ResponseData: marshal(env.Response),
	}
}

func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
