package http

import (
	"bytes"
	"net/http"

	"github.com/shopspring/decimal"

	"valorizza/internal/core"
	"valorizza/internal/letter"
	"valorizza/internal/storage"
)

// handleClipboardImport turns a block of text pasted out of the policy
// system into prefilled client form fields.
func (s *Server) handleClipboardImport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	body, err := ReadFormBody(r)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Clipboard import body parse error", "error", err, "method", r.Method, "url", r.URL.Path)
		Fail(http.StatusBadRequest, "Formato richiesta non valido").Write(w)
		return
	}

	blob := body.Field("testo")
	if blob == "" {
		Fail(http.StatusUnprocessableEntity, "Incollare i dati del cliente nel riquadro").Write(w)
		return
	}

	fields := letter.ParseClipboard(blob)
	found := 0
	for _, v := range []string{fields.Contract, fields.Name, fields.Address, fields.FiscalCode} {
		if v != "" {
			found++
		}
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "campi_cliente.html", fields); err != nil {
		s.logger.ErrorContext(r.Context(), "Client fields template execution failed", "error", err, "template", "campi_cliente.html")
		Fail(http.StatusInternalServerError, "Errore nella preparazione dei campi").Write(w)
		return
	}

	resp := NewFragment().
		HTML(buf.String()).
		ClientImported(found)
	if found > 0 {
		resp.Toast(ToastSuccess, "Dati cliente importati", 3000)
	} else {
		resp.Toast(ToastWarning, "Nessun dato riconosciuto nel testo incollato", 5000)
	}
	resp.Write(w)
}

// historyRow is one generated letter as listed in the storico partial.
type historyRow struct {
	When       string
	Contract   string
	ClientName string
	Valuation  string
	GrandTotal string
	Filename   string
}

// historyData feeds the storico template.
type historyData struct {
	Available bool
	Rows      []historyRow
}

// handleHistory renders the recent generations partial. The rows come
// from the TTL cache when fresh, from the database otherwise.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := historyData{Available: s.repo != nil}
	if s.repo != nil {
		letters, err := s.cachedRecent(r.Context())
		if err != nil {
			s.logger.ErrorContext(r.Context(), "History lookup failed", "error", err)
			Fail(http.StatusInternalServerError, "Errore nel caricamento dello storico").Write(w)
			return
		}
		for _, l := range letters {
			data.Rows = append(data.Rows, historyRow{
				When:       l.CreatedAt.Local().Format("02/01/2006 15:04"),
				Contract:   l.Contract,
				ClientName: l.ClientName,
				Valuation:  l.ValuationDate,
				GrandTotal: formatStoredTotal(l, s.amounts),
				Filename:   l.Filename,
			})
		}
	}

	if err := s.templates.ExecuteTemplate(w, "storico.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "History template execution failed", "error", err, "template", "storico.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// formatStoredTotal renders a persisted grand total the way the letter
// shows amounts. Records written by hand or by older versions may not
// parse; those show as stored.
func formatStoredTotal(l storage.Letter, amounts core.AmountFormatter) string {
	d, err := decimal.NewFromString(l.GrandTotal)
	if err != nil {
		return l.GrandTotal
	}
	return amounts.Format(core.MoneyFromDecimal(d))
}
