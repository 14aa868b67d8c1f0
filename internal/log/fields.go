package log

// Field names shared across structured log records.
const (
	FieldComponent       = "component"
	FieldRequestID       = "request_id"
	FieldClientIP        = "client_ip"
	FieldMethod          = "method"
	FieldPath            = "path"
	FieldQuery           = "query"
	FieldStatusCode      = "status_code"
	FieldDuration        = "duration_ms"
	FieldUserAgent       = "user_agent"
	FieldReferer         = "referer"
	FieldSuccess         = "success"
	FieldError           = "error"
	FieldOperation       = "operation"
	FieldContract        = "contract"
	FieldValuation       = "valuation_date"
	FieldGrandTotalCents = "grand_total_cents"
	FieldRows            = "rows"
	FieldSkipped         = "skipped_rows"
	FieldUnmapped        = "unmapped_categories"
	FieldFilename        = "filename"
)

// Component names identifying which part of the app logged a record.
const (
	ComponentHTTP     = "http"
	ComponentLetter   = "letter"
	ComponentPipeline = "pipeline"
	ComponentStorage  = "storage"
	ComponentDocx     = "docx"
	ComponentTemplate = "template"
)

// Operation names for error and audit records.
const (
	OpAggregate = "aggregate"
	OpRender    = "render"
	OpGenerate  = "generate"
)

// Error categories for records that feed alerting.
const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
)

// LogFields accumulates attributes for one record.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError records the error message. A nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithLetter attaches the identifying fields of a generated letter.
func (f LogFields) WithLetter(contract, valuationDate string, grandTotalCents int64) LogFields {
	f[FieldContract] = contract
	f[FieldValuation] = valuationDate
	f[FieldGrandTotalCents] = grandTotalCents
	return f
}

// WithPipeline attaches the outcome counts of a ledger run.
func (f LogFields) WithPipeline(rows, skipped, unmapped int) LogFields {
	f[FieldRows] = rows
	f[FieldSkipped] = skipped
	f[FieldUnmapped] = unmapped
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key-value arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
