package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "github.com/brohem/BudgedBuddy/internal/log"
)

// TurnProcessor runs one inbound message and returns the reply text. The
// reply is always usable even when the error is non-nil.
type TurnProcessor interface {
	HandleTurn(ctx context.Context, sender, body string) (string, error)
}

type Server struct {
	http.Server
	proc         TurnProcessor
	rateLimiter  *rateLimiter
	log          *applog.Logger
	shutdownOnce sync.Once
}

// NewServer wires the webhook routes onto a ready-to-run http.Server.
func NewServer(addr string, proc TurnProcessor, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		proc:        proc,
		rateLimiter: newRateLimiter(),
		log:         logger.WithComponent(applog.ComponentHTTP),
	}

	mux.HandleFunc("/bot", s.withRequestLogging(s.handleInbound))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// handleInbound is the message webhook: a form-encoded POST carrying the
// sender identity (From) and message text (Body), answered with a reply
// envelope in the response body.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.log.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err)
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	sender := r.PostFormValue("From")
	if sender == "" {
		http.Error(w, "missing sender", http.StatusBadRequest)
		return
	}
	body := r.PostFormValue("Body")

	if !s.rateLimiter.allow(sender) {
		s.log.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldRequestID, requestIDFrom(r.Context()),
			applog.FieldSender, sender)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		return
	}

	reply, err := s.proc.HandleTurn(r.Context(), sender, body)
	if err != nil {
		s.log.WarnContext(r.Context(), "Turn ended with error",
			applog.FieldRequestID, requestIDFrom(r.Context()),
			applog.FieldSender, sender, applog.FieldError, err)
	}

	if err := writeTwiML(w, reply); err != nil {
		s.log.ErrorContext(r.Context(), "Write reply failed", applog.FieldError, err)
	}
}

// withRequestLogging adds security headers, a request ID and request
// logging to a handler.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.log.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.log.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// requestIDFrom returns the request ID the logging middleware stashed in
// ctx, or "" for a request that bypassed it.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
