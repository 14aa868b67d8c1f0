// Package trace assigns every request an ID and logs its lifecycle.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"valorizza/internal/log"
)

type ctxKey struct{}

// Middleware tags requests with an ID, logs start and end, and keeps
// the request counters behind the metrics endpoint.
type Middleware struct {
	extractIP  func(*http.Request) string
	structured *log.StructuredLogger

	totalRequests int64
	totalMillis   int64
}

// Metrics is a snapshot of the request counters.
type Metrics struct {
	TotalRequests int64
	AverageMillis int64
}

func NewMiddleware(extractIP func(*http.Request) string, structured *log.StructuredLogger) *Middleware {
	return &Middleware{
		extractIP:  extractIP,
		structured: structured,
	}
}

// Middleware returns the HTTP middleware wrapping next.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, newRequestID())
		r = r.WithContext(ctx)

		m.structured.LogHTTPStart(ctx, r, clientIP)
		atomic.AddInt64(&m.totalRequests, 1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		millis := time.Since(start).Milliseconds()
		atomic.AddInt64(&m.totalMillis, millis)

		m.structured.LogHTTPEnd(ctx, r, rec.status, millis, clientIP)
	})
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// GetRequestID extracts the request ID from ctx, or "" when the
// request never passed through the middleware.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current request counters.
func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.totalRequests)
	millis := atomic.LoadInt64(&m.totalMillis)

	snap := Metrics{TotalRequests: total}
	if total > 0 {
		snap.AverageMillis = millis / total
	}
	return snap
}
