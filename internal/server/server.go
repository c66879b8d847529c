// Package server provides the local HTTP frontend for jdstudio: the recruiter page, the
// streamed job-description reveal, PDF export and the admin dashboard.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/config"
	"github.com/jonathan/jdstudio/internal/reveal"
	"github.com/jonathan/jdstudio/internal/server/middleware"
	"github.com/jonathan/jdstudio/internal/server/ratelimit"
	"github.com/jonathan/jdstudio/internal/types"
)

// DefaultShutdownTimeout bounds how long in-flight requests get to finish on shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Backend is the job-description API the server forwards to.
type Backend interface {
	Generate(ctx context.Context, token string, form *types.JobForm) (*types.JobDescription, error)
	UploadPDF(ctx context.Context, token, filename string, r io.Reader) (*types.JobDescription, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error)
}

// Exporter turns job-description text into PDF bytes.
type Exporter interface {
	Export(ctx context.Context, text, title string) ([]byte, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	backend         Backend
	exporter        Exporter
	rateLimiter     *ratelimit.Limiter
	jwtService      *JWTService
	validator       *validator.Validate
	loop            *reveal.Loop
	preflight       func(path string) (pages int, err error)
	interval        time.Duration
	shutdownTimeout time.Duration
	verbose         bool

	// sessions is only touched on loop.
	sessions map[string]*revealSession
}

// Config holds server configuration
type Config struct {
	Port            int
	RevealInterval  time.Duration
	Backend         Backend
	Exporter        Exporter          // optional; /jd/export answers 503 without one
	JWT             *config.JWTConfig // optional; expiry-only checks when nil
	RateLimit       *ratelimit.Config // optional; read from RATE_LIMIT_* when nil
	ShutdownTimeout time.Duration
	Verbose         bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.RevealInterval <= 0 {
		return nil, &reveal.IntervalError{Interval: cfg.RevealInterval}
	}
	if cfg.Backend == nil {
		return nil, errors.New("server requires a backend")
	}

	s := &Server{
		backend:         cfg.Backend,
		exporter:        cfg.Exporter,
		jwtService:      NewJWTService(cfg.JWT),
		validator:       validator.New(),
		loop:            reveal.NewLoop(),
		preflight:       backend.Preflight,
		interval:        cfg.RevealInterval,
		shutdownTimeout: cfg.ShutdownTimeout,
		verbose:         cfg.Verbose,
		sessions:        make(map[string]*revealSession),
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = DefaultShutdownTimeout
	}

	rateCfg := cfg.RateLimit
	if rateCfg == nil {
		rateCfg = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateCfg)

	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Sidebar login and admin overview
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("GET /admin/dashboard", requireAuth(http.HandlerFunc(s.handleDashboard)))

	// Job description endpoints
	mux.Handle("POST /jd/format", requireAuth(http.HandlerFunc(s.handleFormat)))
	mux.Handle("POST /jd/generate/stream", requireAuth(http.HandlerFunc(s.handleGenerateStream)))
	mux.Handle("POST /jd/upload/stream", requireAuth(http.HandlerFunc(s.handleUploadStream)))
	mux.Handle("POST /jd/export", requireAuth(http.HandlerFunc(s.handleExport)))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for streamed reveals
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve runs the reveal loop and serves HTTP on ln until ctx is cancelled, then shuts both down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("reveal loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Printf("Server listening on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		// Closing the loop first ends open reveal streams so Shutdown does not wait on them.
		s.loop.Close()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Println("Server stopped")
		return nil
	})

	return g.Wait()
}

// Start listens on the configured port and serves until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure writes err with the status HTTPStatus picks for it.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %v", err)
	}
	s.errorResponse(w, status, publicMessage(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
