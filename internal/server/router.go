package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const (
	PathPage        = "/"
	PathProfile     = "/profile"
	PathSubmitPin   = "/pin"
	PathContactCard = "/contact-card"
	PathHealth      = "/healthz"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Pages  *PageHandlers
	Health *HealthChecker
	// Status adds extra fields to the health payload (e.g. circuit state).
	Status func() map[string]any
}

// NewRouter wires the HTTP routes exposed by the web front-end.
func NewRouter(logger *zap.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+PathHealth, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), constants.HealthConfig.ProbeTimeout)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{
			"status": "ok",
		}

		if failures := deps.Health.Check(ctx); len(failures) > 0 {
			logger.Error("Health probe failed", zap.Any("failures", failures))
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload["errors"] = failures
		}
		if deps.Status != nil {
			for k, v := range deps.Status() {
				payload[k] = v
			}
		}

		respondJSON(w, status, payload)
	})

	if deps.Pages != nil {
		mux.HandleFunc("GET /{$}", deps.Pages.handlePage)
		mux.HandleFunc("GET "+PathProfile, deps.Pages.handlePage)
		mux.HandleFunc("POST "+PathSubmitPin, deps.Pages.handleSubmitPin)
		mux.HandleFunc("GET "+PathContactCard, deps.Pages.handleContactCard)
	}

	return recoveryMiddleware(logger, loggingMiddleware(logger, mux))
}

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		// path only: query strings may carry identifiers
		logger.Info("Request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		var catcher panics.Catcher
		catcher.Try(func() {
			next.ServeHTTP(rec, r)
		})

		recovered := catcher.Recovered()
		if recovered == nil {
			return
		}
		// net/http uses this sentinel to abort the response silently
		if recovered.Value == http.ErrAbortHandler {
			panic(http.ErrAbortHandler)
		}

		logger.Error("Handler panicked",
			zap.String("path", r.URL.Path),
			zap.Any("panic", recovered.Value),
			zap.String("stack", string(recovered.Stack)),
		)
		if rec.wroteHeader {
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
