package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"valorizza/internal/letter"
	"valorizza/internal/log"
)

// monthEndOption is one entry of the valuation date selector.
type monthEndOption struct {
	Value string // 2006-01-02, the form value
	Label string // 02/01/2006, as printed on the letter
}

// recipientOption is one entry of the salutation selector.
type recipientOption struct {
	Value string
	Label string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ends := letter.MonthEnds(time.Now(), s.monthEndChoices)
	options := make([]monthEndOption, 0, len(ends))
	for _, d := range ends {
		options = append(options, monthEndOption{
			Value: d.Format("2006-01-02"),
			Label: letter.FormatDate(d),
		})
	}

	data := struct {
		Client      letter.ClientFields
		MonthEnds   []monthEndOption
		Recipients  []recipientOption
		DefaultCity string
		MaxUploadMB int
	}{
		MonthEnds: options,
		Recipients: []recipientOption{
			{Value: "uomo", Label: "Uomo"},
			{Value: "donna", Label: "Donna"},
			{Value: "societa", Label: "Società"},
		},
		DefaultCity: s.defaultCity,
		MaxUploadMB: s.maxUploadMB,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check templates
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	// Check category registry
	if s.reg == nil {
		checks["registry"] = "failed: registry not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["registry"] = map[string]interface{}{
			"status":  "ok",
			"version": s.reg.Version(),
			"rules":   len(s.reg.Rules()),
		}
	}

	// Check generation log database
	if s.repo == nil {
		checks["database"] = "not_configured"
	} else if err := s.repo.Ping(ctx); err != nil {
		checks["database"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	// Check cache health
	checks["cache"] = map[string]interface{}{
		"history_entries": s.history.Size(),
		"status":          "ok",
	}

	// Check rate limiter
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	traceMetrics := s.tracer.GetMetrics()

	previews := atomic.LoadInt64(&s.appMetrics.previews)
	letters := atomic.LoadInt64(&s.appMetrics.lettersGenerated)
	cacheHits := atomic.LoadInt64(&s.appMetrics.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.appMetrics.cacheMisses)
	uptime := time.Since(s.appMetrics.startedAt)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_avg_ms Mean request duration in milliseconds\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_avg_ms gauge\n")
	fmt.Fprintf(w, "http_request_duration_avg_ms %d\n\n", traceMetrics.AverageMillis)

	fmt.Fprintf(w, "# HELP previews_total Total number of aggregation previews rendered\n")
	fmt.Fprintf(w, "# TYPE previews_total counter\n")
	fmt.Fprintf(w, "previews_total %d\n\n", previews)

	fmt.Fprintf(w, "# HELP letters_generated_total Total number of letters generated\n")
	fmt.Fprintf(w, "# TYPE letters_generated_total counter\n")
	fmt.Fprintf(w, "letters_generated_total %d\n\n", letters)

	fmt.Fprintf(w, "# HELP cache_hits_total Total history cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total history cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP cache_entries Current history cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"history\"} %d\n\n", s.history.Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP invalid_forwarded_ips_total Forwarded headers carrying unparseable addresses\n")
	fmt.Fprintf(w, "# TYPE invalid_forwarded_ips_total counter\n")
	fmt.Fprintf(w, "invalid_forwarded_ips_total %d\n\n", securityMetrics.InvalidForwardedIP)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}
