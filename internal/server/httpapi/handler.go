// Package httpapi is the HTTP boundary of the user service: JSON endpoints
// for registration, email confirmation and login, plus health and metrics.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

// AccountService is the lifecycle API the handlers drive.
type AccountService interface {
	Register(ctx context.Context, rqid string, in services.RegisterInput) (*services.Result, error)
	VerifyEmail(ctx context.Context, rqid, email, token string) (*services.Result, error)
	Login(ctx context.Context, rqid, email, password string) (*services.Result, error)
}

type validatable interface {
	Validate() error
}

const component = "HttpApi"

type Handler struct {
	accounts AccountService
	trail    *services.IntegrationTrail
	audit    *audit.ComponentLogger
}

func NewHandler(accounts AccountService, trail *services.IntegrationTrail, a *audit.Logger) *Handler {
	return &Handler{accounts: accounts, trail: trail, audit: a.Component(component)}
}

// requestID prefers the id from the body over the one the middleware put on
// the context.
func requestID(ctx context.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if rqid := audit.RequestIDFrom(ctx); rqid != "" {
		return rqid
	}
	return audit.NewCorrelationID()
}

// checkFormat runs the payload format rules. A violation is audited and
// reported as incomplete input carrying the validator's message.
func (h *Handler) checkFormat(ctx context.Context, rqid string, v validatable) error {
	if err := v.Validate(); err != nil {
		h.audit.Error(ctx, rqid, "Request rejected by format rules: "+err.Error())
		return common.NewError(common.ErrIncompleteInput, err.Error())
	}
	return nil
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, env services.Envelope) {
	render.Status(r, env.StatusCode)
	render.JSON(w, r, env)
}

// decode reads a JSON body into dst. A body that cannot be parsed still gets
// an envelope.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		rqid := requestID(r.Context(), "")
		h.audit.Error(r.Context(), rqid, "Malformed request body on "+r.URL.Path, "error", err)
		env := h.trail.Wrap(r.Context(), rqid, nil, func() (*services.Result, error) {
			return nil, common.NewError(common.ErrIncompleteInput, "Malformed request body")
		})
		h.respond(w, r, env)
		return false
	}
	return true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	rqid := requestID(r.Context(), req.RequestID)

	env := h.trail.Wrap(r.Context(), rqid, req.Masked(), func() (*services.Result, error) {
		if err := h.checkFormat(r.Context(), rqid, req); err != nil {
			return nil, err
		}
		return h.accounts.Register(r.Context(), rqid, req.Input())
	})
	h.respond(w, r, env)
}

// VerifyEmail serves both the emailed link (query parameters) and JSON posts.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req = VerifyEmailRequest{RequestID: q.Get("rqid"), Email: q.Get("email"), Token: q.Get("token")}
	} else if !h.decode(w, r, &req) {
		return
	}
	rqid := requestID(r.Context(), req.RequestID)

	env := h.trail.Wrap(r.Context(), rqid, req, func() (*services.Result, error) {
		if err := h.checkFormat(r.Context(), rqid, req); err != nil {
			return nil, err
		}
		return h.accounts.VerifyEmail(r.Context(), rqid, req.Email, req.Token)
	})
	h.respond(w, r, env)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	rqid := requestID(r.Context(), req.RequestID)

	env := h.trail.Wrap(r.Context(), rqid, req.Masked(), func() (*services.Result, error) {
		if err := h.checkFormat(r.Context(), rqid, req); err != nil {
			return nil, err
		}
		return h.accounts.Login(r.Context(), rqid, req.Email, req.Password)
	})
	h.respond(w, r, env)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health reports UP, or DOWN with 503 when the database does not answer.
// db may be nil when running on in-memory storage.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, healthResponse{Status: "DOWN"})
				return
			}
		}
		render.JSON(w, r, healthResponse{Status: "UP"})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, services.ErrorBody{Error: "Not found"})
}
