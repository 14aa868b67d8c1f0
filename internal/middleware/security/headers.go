package security

import (
	"fmt"
	"net/http"
)

// Policy is the response header set applied to every route.
type Policy struct {
	CSP            string
	FrameOptions   string
	ReferrerPolicy string
	Permissions    string
	HSTSMaxAge     int
}

// DefaultPolicy locks the app down to itself plus unpkg.com, where
// htmx is loaded from. Inline styles stay allowed because the letter
// preview carries rendered HTML.
func DefaultPolicy() Policy {
	return Policy{
		CSP: "default-src 'self'; " +
			"script-src 'self' https://unpkg.com; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self'; " +
			"font-src 'self'; " +
			"object-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'",
		FrameOptions:   "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		Permissions:    "geolocation=(), microphone=(), camera=(), payment=()",
		HSTSMaxAge:     31536000,
	}
}

// Headers applies p to every response passing through.
func Headers(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", p.CSP)
			h.Set("X-Frame-Options", p.FrameOptions)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", p.ReferrerPolicy)
			h.Set("Permissions-Policy", p.Permissions)

			// HSTS only makes sense on a TLS connection.
			if r.TLS != nil && p.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security",
					fmt.Sprintf("max-age=%d; includeSubDomains", p.HSTSMaxAge))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StaticAssets adds long-lived caching headers for the embedded
// static files.
func StaticAssets(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
