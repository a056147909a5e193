package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"driftchat/internal/image"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config wires the HTTP layer together: the shared pool, the media
// core service, auth, and operational settings.
type Config struct {
	Addr           string // e.g. ":8080"
	Build          BuildInfo
	Auth           AuthConfig
	DB             *sql.DB
	Images         *image.Service
	MaxUploadBytes int64
	CORSOrigins    []string
}

// Server owns the HTTP listener, the chat hub, and the optional
// archiver lifecycle.
type Server struct {
	httpServer *http.Server
	hub        *ChatHub
	archiver   *Archiver
}

// New assembles the route tree and middleware chain. The media core is
// already constructed by the caller; this layer only decides which
// handler runs and maps pipeline errors to statuses.
func New(cfg Config) (*Server, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = image.MaxUploadBytesDefault
	}

	corsPolicy, err := newCORSPolicy(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	hub := NewChatHub()
	go hub.Run()

	// Tighter limits on the routes attackers poke at.
	authLimiter := newRateLimiter(30, time.Minute)
	uploadLimiter := newRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/auth/signup", authLimiter.middleware(cfg.signupHandler()))
	mux.Handle("GET /api/v1/auth/login", authLimiter.middleware(cfg.loginHandler()))
	mux.Handle("GET /api/v1/auth/me", cfg.meHandler())

	mux.Handle("POST /api/v1/images", uploadLimiter.middleware(cfg.uploadImageHandler()))
	mux.Handle("GET /api/v1/images/{filename}", cfg.downloadImageHandler())
	mux.Handle("GET /api/v1/images/{id}/info", cfg.imageInfoHandler())

	mux.Handle("POST /api/v1/profiles/avatar", uploadLimiter.middleware(cfg.uploadAvatarHandler()))

	mux.Handle("GET /api/v1/chat", cfg.chatHandler(hub))

	mux.Handle("GET /health", healthHandler(cfg.DB, cfg.Build.Version))
	mux.Handle("GET /ready", readyHandler(cfg.DB))
	mux.Handle("GET /metrics", NewPrometheusExporter(cfg.Build.Version).Handler())

	// Wrap middleware: requestID -> logging -> security headers -> CORS -> mux
	var handler http.Handler = mux
	handler = corsMiddleware(corsPolicy, handler)
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s, hub: hub}, nil
}

// SetArchiver attaches an optional image archiver whose lifecycle
// follows the server's.
func (s *Server) SetArchiver(a *Archiver) {
	s.archiver = a
}

// Handler exposes the assembled route tree, mainly for tests that
// mount it on their own listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	if s.archiver != nil {
		s.archiver.Start()
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

// Shutdown drains in-flight requests and stops the background pieces.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.archiver != nil {
		s.archiver.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
