// Package httpapi is the HTTP boundary: the /api/auth endpoints, the page
// placeholders and the route guard in front of them.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/logging"
	"github.com/dmitrijs2005/outreach/internal/server/session"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators of the HTTP server. Metrics, MetricsHandler
// and Health are optional.
type Deps struct {
	Auth           AuthGateway
	Sessions       SessionManager
	Cookie         session.CookieOptions
	Logger         logging.Logger
	Metrics        RequestObserver
	MetricsHandler http.Handler
	Health         func(context.Context) error
}

// NewRouter builds the routing tree wrapped in the request middlewares.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		auth:     d.Auth,
		sessions: d.Sessions,
		cookie:   d.Cookie,
		health:   d.Health,
		logger:   d.Logger,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	// A shared /api/auth subrouter would answer 404 instead of 405 on a
	// method mismatch, so the API routes hang off the root router.
	r.HandleFunc(common.RegisterAPIPath, h.Register).Methods(http.MethodPost)
	r.HandleFunc(common.LoginAPIPath, h.Login).Methods(http.MethodPost)
	r.HandleFunc(common.LogoutAPIPath, h.Logout).Methods(http.MethodPost)
	r.HandleFunc(common.SessionAPIPath, h.Session).Methods(http.MethodGet)

	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc(common.DashboardPath, h.Dashboard).Methods(http.MethodGet)
	r.PathPrefix(common.DashboardPath + "/").HandlerFunc(h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc(common.SignInPath, h.SignIn).Methods(http.MethodGet)
	r.HandleFunc(common.SignUpPath, h.SignUp).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler).Methods(http.MethodGet)
	}

	var handler http.Handler = r
	handler = NewGuard(d.Cookie.Name).Middleware(handler)
	handler = accessLog(d.Logger, d.Metrics, r)(handler)
	handler = recoverer(d.Logger)(handler)
	handler = requestID(handler)
	return handler
}

type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, logger logging.Logger) *Server {
	return &Server{address: address, handler: handler, logger: logger}
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis and shuts the server down gracefully
// once ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "HTTP server started", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
