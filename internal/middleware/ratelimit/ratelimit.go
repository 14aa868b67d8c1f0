// Package ratelimit tracks per-client request counts so a single
// browser or script cannot hammer the upload endpoints.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Config bounds how many requests a client may make per minute and
// how often idle clients are forgotten.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// Limiter counts requests per client IP over fixed one-minute
// windows. The zero value is not usable; call NewLimiter.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	quota   int

	stop     chan struct{}
	stopOnce sync.Once

	totalHits int64
}

// window is one client's current counting window.
type window struct {
	start time.Time
	count int
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		windows: make(map[string]*window),
		quota:   cfg.RequestsPerMinute,
		stop:    make(chan struct{}),
	}
	go l.evictIdle(cfg.CleanupInterval)
	return l
}

// Allow records a request from clientIP and reports whether it fits
// the per-minute quota. The window is fixed, not sliding: the count
// restarts one minute after the window's first request.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[clientIP]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.windows[clientIP] = &window{start: now, count: 1}
		return true
	}

	w.count++
	if w.count > l.quota {
		atomic.AddInt64(&l.totalHits, 1)
		return false
	}
	return true
}

func (l *Limiter) evictIdle(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for ip, w := range l.windows {
				if w.start.Before(cutoff) {
					delete(l.windows, ip)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// ActiveClients reports how many clients currently hold a window.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop ends the eviction goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Metrics is a snapshot for the metrics endpoint.
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	clients := int64(len(l.windows))
	l.mu.Unlock()

	return Metrics{
		TotalHits:   atomic.LoadInt64(&l.totalHits),
		ClientCount: clients,
	}
}
