package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Fragment is an htmx fragment response in the making: body, status
// and the HX-Trigger events the page script listens for. Nothing
// touches the ResponseWriter until Write, so a handler can still
// change status or queue events halfway through.
type Fragment struct {
	status int
	body   []byte
	events map[string]any
	allow  string
}

// NewFragment starts an empty 200 fragment.
func NewFragment() *Fragment {
	return &Fragment{status: http.StatusOK, events: map[string]any{}}
}

// Status overrides the response status.
func (f *Fragment) Status(code int) *Fragment {
	f.status = code
	return f
}

// HTML sets the fragment body. Escaping stays with the caller:
// template output is already safe, hand-built markup goes through
// Fail.
func (f *Fragment) HTML(markup string) *Fragment {
	f.body = []byte(markup)
	return f
}

// Event queues a named HX-Trigger event with its payload.
func (f *Fragment) Event(name string, payload any) *Fragment {
	f.events[name] = payload
	return f
}

// ClientImported reports how many client fields the clipboard text
// yielded.
func (f *Fragment) ClientImported(fields int) *Fragment {
	return f.Event("client:imported", map[string]int{"fields": fields})
}

// Toast levels rendered by the notification area.
const (
	ToastSuccess = "success"
	ToastWarning = "warning"
	ToastError   = "error"
)

// Toast queues a transient on-page notification.
func (f *Fragment) Toast(level, message string, durationMs int) *Fragment {
	return f.Event("show-notification", map[string]any{
		"type":     level,
		"message":  message,
		"duration": durationMs,
	})
}

// Write sends headers, events and body in one shot.
func (f *Fragment) Write(w http.ResponseWriter) {
	if f.allow != "" {
		w.Header().Set("Allow", f.allow)
	}
	if len(f.events) > 0 {
		if payload, err := json.Marshal(f.events); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	if len(f.body) > 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(f.status)
	if len(f.body) > 0 {
		_, _ = w.Write(f.body)
	}
}

// Fail builds an inline error box, message escaped, ready to swap
// into the target element.
func Fail(status int, msg string) *Fragment {
	return NewFragment().
		Status(status).
		HTML(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`)
}

// RequirePOST returns a ready 405 for anything but POST, nil
// otherwise.
func RequirePOST(r *http.Request) *Fragment {
	if r.Method == http.MethodPost {
		return nil
	}
	f := NewFragment().Status(http.StatusMethodNotAllowed)
	f.allow = http.MethodPost
	return f
}
