package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// probeFragments are path or query fragments that only show up in
// scanner traffic. The app serves a handful of fixed routes, so any
// of these in a URL means someone is poking around.
var probeFragments = []string{
	"../", "..\\", ".env", ".git", ".ssh",
	"wp-admin", "wp-login", "phpmyadmin", "admin.php", "config.php",
	"etc/passwd", "cmd.exe",
	"<script", "javascript:", "eval(",
	"union select", "union+select", "union%20select",
}

// scannerAgents are User-Agent substrings of common probing tools.
// Plain curl and wget stay unflagged: uptime checks and the companion
// CLI use them against the health endpoints.
var scannerAgents = []string{
	"sqlmap", "nikto", "nmap", "masscan", "gobuster", "dirb", "scanner",
}

// rareMethods never occur in normal traffic to this app.
var rareMethods = map[string]bool{
	"TRACE":   true,
	"TRACK":   true,
	"DEBUG":   true,
	"CONNECT": true,
}

// DetectionMetrics is a snapshot of screening counters.
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidForwardedIP int64
}

// Detector screens incoming requests and resolves the real client IP
// behind trusted proxies.
type Detector struct {
	suspicious   int64
	invalidFwdIP int64

	trustedProxies []*net.IPNet
}

func NewDetector() *Detector {
	return &Detector{
		trustedProxies: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
		},
	}
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("bad builtin proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// AddTrustedProxy extends the set of networks whose forwarded headers
// are believed.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// Suspicious reports whether the request looks like scanner traffic.
// Flagged requests are still served; the caller only logs them.
func (d *Detector) Suspicious(r *http.Request) bool {
	if d.suspiciousRequest(r) {
		atomic.AddInt64(&d.suspicious, 1)
		return true
	}
	return false
}

func (d *Detector) suspiciousRequest(r *http.Request) bool {
	if rareMethods[r.Method] {
		return true
	}
	if len(r.URL.String()) > 2048 {
		return true
	}

	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, frag := range probeFragments {
		if strings.Contains(target, frag) {
			return true
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, sig := range scannerAgents {
		if strings.Contains(agent, sig) {
			return true
		}
	}

	// A long proxy chain on a directly reachable app is forged.
	if xff := r.Header.Get("X-Forwarded-For"); strings.Count(xff, ",") > 5 {
		return true
	}

	return false
}

// ExtractClientIP resolves the client address, believing forwarded
// headers only when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil {
		return directIP
	}

	if !d.isTrustedProxy(parsed) {
		return directIP
	}

	// X-Forwarded-For lists client first, proxies after.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
		atomic.AddInt64(&d.invalidFwdIP, 1)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
		atomic.AddInt64(&d.invalidFwdIP, 1)
	}

	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current screening counters.
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.suspicious),
		InvalidForwardedIP: atomic.LoadInt64(&d.invalidFwdIP),
	}
}
