package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"valorizza/internal/core"
	"valorizza/internal/docx"
	"valorizza/internal/ledger"
	"valorizza/internal/letter"
	"valorizza/internal/log"
	"valorizza/internal/storage"
)

// previewRow is one line of an aggregated table as shown on screen.
type previewRow struct {
	Label    string
	Amount   string
	Bold     bool
	Unmapped bool
}

// previewTable is one client-facing table, amounts already formatted.
type previewTable struct {
	Title      string
	Rows       []previewRow
	TotalLabel string
	Total      string
	HasTotal   bool
}

// previewData feeds the anteprima template.
type previewData struct {
	Tables          []previewTable
	GrandTotalLabel string
	GrandTotal      string
	SourceRows      int
	Skipped         int
	Unmapped        []string
	LetterHTML      template.HTML
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	res, sum, ok := s.loadUpload(w, r, true)
	if !ok {
		return
	}

	data := buildPreview(res, sum, s.amounts)

	// The letter body joins the preview only once every client field is
	// filled in and the valuation date lands on a month end. Until then
	// the tables alone are shown.
	params := ParseClientParams(r.PostForm)
	if params.Complete() {
		if lctx, err := params.Context(s.defaultCity, time.Now()); err == nil && lctx.Validate() == nil {
			md := letter.Markdown(letter.Compose(lctx, sum, s.amounts))
			var buf bytes.Buffer
			if err := s.markdown.Convert([]byte(md), &buf); err != nil {
				s.logger.WarnContext(r.Context(), "Letter preview rendering failed",
					"error", err,
					log.FieldComponent, log.ComponentLetter,
					log.FieldOperation, log.OpRender)
			} else {
				data.LetterHTML = template.HTML(buf.String())
			}
		}
	}

	atomic.AddInt64(&s.appMetrics.previews, 1)

	if err := s.templates.ExecuteTemplate(w, "anteprima.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Preview template execution failed", "error", err, "template", "anteprima.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_, sum, ok := s.loadUpload(w, r, false)
	if !ok {
		return
	}

	params := ParseClientParams(r.PostForm)
	if missing := params.MissingFields(); len(missing) > 0 {
		http.Error(w, "Dati cliente incompleti: "+strings.Join(missing, ", "), http.StatusUnprocessableEntity)
		return
	}

	now := time.Now()
	lctx, err := params.Context(s.defaultCity, now)
	if err != nil {
		http.Error(w, "Dati cliente non validi: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := lctx.Validate(); err != nil {
		if errors.Is(err, letter.ErrNotMonthEnd) {
			http.Error(w, "La data di valorizzazione deve cadere su un fine mese", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Dati cliente non validi", http.StatusUnprocessableEntity)
		return
	}

	payload, err := docx.Render(letter.Compose(lctx, sum, s.amounts))
	if err != nil {
		s.structured.LogError(r.Context(), "Document rendering failed", err,
			log.ComponentDocx, log.OpRender, log.NewFields().WithLetter(lctx.Contract, letter.FormatDate(lctx.Valuation), sum.GrandTotal.Cents()))
		http.Error(w, "Errore nella generazione del documento", http.StatusInternalServerError)
		return
	}

	filename := letter.Filename(lctx.Contract, now)

	// The generation log is best effort: a full disk must not stand
	// between the operator and the letter.
	if s.repo != nil {
		rec := storage.Letter{
			Contract:        lctx.Contract,
			ClientName:      lctx.Name,
			Recipient:       lctx.Recipient.String(),
			ValuationDate:   letter.FormatDate(lctx.Valuation),
			GrandTotal:      sum.GrandTotal.Decimal().StringFixed(2),
			RegistryVersion: s.reg.Version(),
			Filename:        filename,
		}
		if _, err := s.repo.Insert(r.Context(), rec); err != nil {
			s.logger.WarnContext(r.Context(), "Letter log write failed",
				"error", err,
				log.FieldComponent, log.ComponentStorage,
				log.FieldContract, lctx.Contract)
		} else {
			s.history.Delete(historyCacheKey)
			if n, err := s.repo.CountByContract(r.Context(), lctx.Contract); err == nil && n > 1 {
				s.logger.InfoContext(r.Context(), "Repeat valuation for contract",
					log.FieldContract, lctx.Contract,
					"generations", n)
			}
		}
	}

	atomic.AddInt64(&s.appMetrics.lettersGenerated, 1)
	s.structured.LogLetterGenerated(r.Context(), lctx.Contract, letter.FormatDate(lctx.Valuation), sum.GrandTotal.Cents(), filename)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// loadUpload reads the uploaded extract out of the multipart form and
// runs it through parsing, classification and aggregation. On failure
// the response has already been written and ok is false.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request, htmx bool) (ledger.Result, core.Summary, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeUploadError(w, htmx, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File troppo grande (max %d MB)", s.maxUploadMB))
			return ledger.Result{}, core.Summary{}, false
		}
		s.writeUploadError(w, htmx, http.StatusBadRequest, "Formato richiesta non valido")
		return ledger.Result{}, core.Summary{}, false
	}

	file, header, err := r.FormFile("estratto")
	if err != nil {
		s.writeUploadError(w, htmx, http.StatusBadRequest, "Nessun file caricato: selezionare l'estratto movimenti")
		return ledger.Result{}, core.Summary{}, false
	}
	defer file.Close()

	res, err := ledger.Parse(file, header.Filename)
	if err != nil {
		status, msg := ledgerErrorMessage(err)
		s.writeUploadError(w, htmx, status, msg)
		return ledger.Result{}, core.Summary{}, false
	}
	if len(res.Rows) == 0 {
		s.writeUploadError(w, htmx, http.StatusUnprocessableEntity, "Nessun movimento leggibile nel file")
		return ledger.Result{}, core.Summary{}, false
	}

	sum := core.Run(s.reg, res.Rows)
	if err := sum.Check(); err != nil {
		s.structured.LogError(r.Context(), "Aggregated totals failed reconciliation", err,
			log.ComponentPipeline, log.OpAggregate,
			log.NewFields().WithPipeline(res.Total, res.Skipped, len(sum.UnmappedLabels)))
		s.writeUploadError(w, htmx, http.StatusInternalServerError, "Errore interno nel calcolo dei totali")
		return ledger.Result{}, core.Summary{}, false
	}

	s.logger.InfoContext(r.Context(), "Extract aggregated",
		log.NewFields().
			WithComponent(log.ComponentPipeline).
			WithOperation(log.OpAggregate).
			WithPipeline(res.Total, res.Skipped, len(sum.UnmappedLabels)).
			ToSlice()...)

	return res, sum, true
}

// ledgerErrorMessage maps a parse failure onto a status code and a
// message the operator can act on.
func ledgerErrorMessage(err error) (int, string) {
	var missing *ledger.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "Colonne mancanti nell'estratto: " + strings.Join(missing.Missing, ", ")
	case errors.Is(err, ledger.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "Formato file non supportato: caricare un estratto .xlsx, .xlsm o .csv"
	case errors.Is(err, ledger.ErrEmptyFile):
		return http.StatusUnprocessableEntity, "File vuoto o senza intestazione riconoscibile"
	default:
		return http.StatusUnprocessableEntity, "Impossibile leggere l'estratto movimenti"
	}
}

// writeUploadError answers in the shape the caller expects: an inline
// fragment for the preview (swapped into the page by htmx), a plain
// error page for the download form.
func (s *Server) writeUploadError(w http.ResponseWriter, htmx bool, status int, msg string) {
	if htmx {
		Fail(status, msg).Write(w)
		return
	}
	http.Error(w, msg, status)
}

// buildPreview formats a summary for the on-screen tables.
func buildPreview(res ledger.Result, sum core.Summary, amounts core.AmountFormatter) previewData {
	data := previewData{
		GrandTotalLabel: sum.GrandTotalLabel,
		GrandTotal:      amounts.Format(sum.GrandTotal),
		SourceRows:      res.Total,
		Skipped:         res.Skipped,
		Unmapped:        sum.UnmappedLabels,
	}
	for _, t := range sum.Tables {
		pt := previewTable{
			Title:      t.Title,
			TotalLabel: t.TotalLabel,
			HasTotal:   t.TotalRow,
		}
		if t.TotalRow {
			pt.Total = amounts.Format(t.Total)
		}
		for _, row := range t.Rows {
			pt.Rows = append(pt.Rows, previewRow{
				Label:    row.Label,
				Amount:   amounts.Format(row.Amount),
				Bold:     row.Bold,
				Unmapped: row.Unmapped,
			})
		}
		data.Tables = append(data.Tables, pt)
	}
	return data
}
