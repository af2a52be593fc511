package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
)

// RequestIDHeader is read from requests and echoed on responses.
const RequestIDHeader = common.RequestIDHeaderName

// withRequestID puts the header correlation id, or a fresh one, on the
// request context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rqid := r.Header.Get(RequestIDHeader)
		if rqid == "" {
			rqid = audit.NewCorrelationID()
		}
		w.Header().Set(RequestIDHeader, rqid)
		next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), rqid)))
	})
}

// accessLog writes one line per request.
func accessLog(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// NewRouter wires the API routes. metrics may be nil.
func NewRouter(h *Handler, db Pinger, metrics http.Handler, l logging.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(accessLog(l.With("module", "http_access")))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(notFound)
	r.Get("/health", Health(db))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api/auth", func(api chi.Router) {
		api.Use(render.SetContentType(render.ContentTypeJSON))
		api.Post("/register", h.Register)
		api.Get("/verify-email", h.VerifyEmail)
		api.Post("/verify-email", h.VerifyEmail)
		api.Post("/login", h.Login)
	})

	return r
}

// Server runs the router until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

func NewServer(addr string, handler http.Handler, l logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: l.With("module", "http_server"),
	}
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
