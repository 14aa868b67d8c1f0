// Package web carries the embedded UI: HTML templates for the upload
// form and preview partials, plus the static assets they reference.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Templates parses every embedded page and partial.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// Static returns the asset tree rooted at static/, ready to mount
// behind an http.FileServer.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
