package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"valorizza/internal/letter"
)

// ClientParams holds the client fields of the letter form, sanitized.
// The zero value means an untouched form.
type ClientParams struct {
	Name       string
	Address    string
	FiscalCode string
	Contract   string
	Recipient  string
	City       string
	Valuation  string // 2006-01-02, as submitted by the month-end selector
}

// ParseClientParams extracts the client fields from form values.
// This consolidates the repeated pattern of pulling the same seven
// fields out of the preview and the download forms.
func ParseClientParams(form url.Values) ClientParams {
	return ClientParams{
		Name:       sanitizeInput(form.Get("nome")),
		Address:    sanitizeInput(form.Get("indirizzo")),
		FiscalCode: sanitizeInput(form.Get("codice_fiscale")),
		Contract:   sanitizeInput(form.Get("contratto")),
		Recipient:  sanitizeInput(form.Get("destinatario")),
		City:       sanitizeInput(form.Get("luogo")),
		Valuation:  strings.TrimSpace(form.Get("data_valorizzazione")),
	}
}

// MissingFields lists the required client fields still empty, named
// the way the form labels them.
func (p ClientParams) MissingFields() []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "nome del cliente")
	}
	if p.Address == "" {
		missing = append(missing, "indirizzo")
	}
	if p.FiscalCode == "" {
		missing = append(missing, "codice fiscale")
	}
	if p.Contract == "" {
		missing = append(missing, "numero di polizza")
	}
	return missing
}

// Complete reports whether the letter can be assembled from the form
// as submitted.
func (p ClientParams) Complete() bool {
	return len(p.MissingFields()) == 0 && p.Valuation != ""
}

var (
	errBadRecipient = errors.New("destinatario non riconosciuto")
	errBadValuation = errors.New("data di valorizzazione non valida")
)

// Context assembles the letter context from the form values. The
// recipient defaults to uomo when the selector came back empty, the
// city falls back to the configured default.
func (p ClientParams) Context(defaultCity string, today time.Time) (letter.Context, error) {
	rec := letter.Uomo
	if p.Recipient != "" {
		var err error
		rec, err = letter.ParseRecipient(p.Recipient)
		if err != nil {
			return letter.Context{}, errBadRecipient
		}
	}

	city := p.City
	if city == "" {
		city = defaultCity
	}

	val, err := time.Parse("2006-01-02", p.Valuation)
	if err != nil {
		return letter.Context{}, errBadValuation
	}

	return letter.Context{
		Name:       p.Name,
		Address:    p.Address,
		FiscalCode: p.FiscalCode,
		Contract:   p.Contract,
		Recipient:  rec,
		City:       city,
		Valuation:  val,
		Today:      today,
	}, nil
}

// FormBody is the body of a fragment POST, read once. htmx submits
// urlencoded forms by default and JSON objects when the json-enc
// extension is active; Field answers for both encodings.
type FormBody struct {
	values url.Values
	object map[string]any
}

// ReadFormBody drains and decodes the request body. An empty body is
// fine: every field just reads as empty.
func ReadFormBody(r *http.Request) (*FormBody, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	body := bytes.TrimSpace(data)
	if len(body) == 0 {
		return &FormBody{values: url.Values{}}, nil
	}
	if body[0] == '{' {
		object := make(map[string]any)
		if err := json.Unmarshal(body, &object); err != nil {
			return nil, err
		}
		return &FormBody{object: object}, nil
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, err
	}
	return &FormBody{values: values}, nil
}

// Field returns the sanitized value of a field, whichever encoding
// carried it.
func (b *FormBody) Field(name string) string {
	if b.object != nil {
		return sanitizeInput(jsonFieldString(b.object[name]))
	}
	return sanitizeInput(b.values.Get(name))
}

// IsJSON reports whether the body was a JSON object.
func (b *FormBody) IsJSON() bool {
	return b.object != nil
}

// jsonFieldString renders the scalar values a form field can carry
// once it went through json-enc.
func jsonFieldString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
