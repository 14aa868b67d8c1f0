// Command valorizza-cli genera una lettera di valorizzazione da riga di
// comando: stesso motore del modulo web, pensato per lotti e script.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"valorizza/internal/cli"
	"valorizza/internal/config"
	"valorizza/internal/core"
	"valorizza/internal/docx"
	"valorizza/internal/ledger"
	"valorizza/internal/letter"
	"valorizza/internal/storage"
)

var (
	input      = flag.String("estratto", "", "File movimenti da elaborare (.xlsx, .xlsm o .csv).")
	output     = flag.String("o", "", "Percorso del .docx da scrivere (default: VAL_<polizza>_<ggmmaa>.docx).")
	clientName = flag.String("nome", "", "Nome del cliente.")
	address    = flag.String("indirizzo", "", "Indirizzo del cliente; le virgole separano le righe.")
	fiscalCode = flag.String("cf", "", "Codice fiscale del cliente.")
	contract   = flag.String("polizza", "", "Numero di polizza.")
	recipient  = flag.String("destinatario", "uomo", "Destinatario: uomo, donna o societa.")
	city       = flag.String("luogo", "", "Luogo stampato prima della data (default da LETTER_CITY).")
	valuation  = flag.String("data", "", "Data di valorizzazione gg/mm/aaaa, solo fine mese (default: ultimo fine mese).")
	preview    = flag.Bool("anteprima", false, "Stampa la lettera in markdown su stdout invece di scrivere il .docx.")
	noRecord   = flag.Bool("no-registro", false, "Non registrare la generazione nel database.")
)

func main() {
	flag.Parse()
	cli.LoadEnvFile()

	// Diagnostics go to stderr so that -anteprima output stays pipeable.
	slogger := cli.NewLogger(os.Stderr)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "valorizza-cli: indicare il file movimenti con -estratto")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	reg := cli.InitRegistry(slogger)

	f, err := os.Open(*input)
	if err != nil {
		slogger.Error("Cannot open extract", "error", err, "path", *input)
		os.Exit(1)
	}
	res, err := ledger.Parse(f, *input)
	_ = f.Close()
	if err != nil {
		slogger.Error("Extract parsing failed", "error", err, "path", *input)
		os.Exit(1)
	}
	if len(res.Rows) == 0 {
		slogger.Error("No readable movements in extract", "path", *input, "skipped_rows", res.Skipped)
		os.Exit(1)
	}

	sum := core.Run(reg, res.Rows)
	if err := sum.Check(); err != nil {
		slogger.Error("Aggregated totals failed reconciliation", "error", err)
		os.Exit(1)
	}
	if sum.HasUnmapped() {
		slogger.Warn("Unmapped categories shown under their raw names",
			"unmapped_categories", strings.Join(sum.UnmappedLabels, "; "))
	}

	rec, err := letter.ParseRecipient(*recipient)
	if err != nil {
		slogger.Error("Invalid recipient", "error", err, "recipient", *recipient)
		os.Exit(2)
	}

	now := time.Now()
	valDate := letter.PrevMonthEnd(now)
	if *valuation != "" {
		valDate, err = time.Parse("02/01/2006", *valuation)
		if err != nil {
			slogger.Error("Invalid valuation date, expected gg/mm/aaaa", "error", err, "valuation_date", *valuation)
			os.Exit(2)
		}
	}

	cityVal := *city
	if cityVal == "" {
		cityVal = cfg.DefaultCity
	}

	lctx := letter.Context{
		Name:       *clientName,
		Address:    *address,
		FiscalCode: *fiscalCode,
		Contract:   *contract,
		Recipient:  rec,
		City:       cityVal,
		Valuation:  valDate,
		Today:      now,
	}
	if err := lctx.Validate(); err != nil {
		slogger.Error("Letter data incomplete", "error", err)
		os.Exit(2)
	}

	amounts := core.EuroIT()
	blocks := letter.Compose(lctx, sum, amounts)

	if *preview {
		fmt.Println(letter.Markdown(blocks))
		return
	}

	out := *output
	if out == "" {
		out = letter.Filename(lctx.Contract, now)
	}

	payload, err := docx.Render(blocks)
	if err != nil {
		slogger.Error("Document rendering failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		slogger.Error("Cannot write document", "error", err, "path", out)
		os.Exit(1)
	}

	if !*noRecord && cfg.SQLiteDBPath != "" {
		recordGeneration(slogger, cfg, lctx, sum, reg.Version(), out)
	}

	slogger.Info("Letter written",
		"path", out,
		"rows", res.Total,
		"skipped_rows", res.Skipped,
		"grand_total", amounts.Format(sum.GrandTotal))
}

// recordGeneration appends the letter to the generation log. Failures
// are reported and ignored: the document on disk is what matters.
func recordGeneration(slogger *slog.Logger, cfg *config.Config, lctx letter.Context, sum core.Summary, registryVersion int, filename string) {
	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		slogger.Warn("Letter log unavailable", "error", err, "path", cfg.SQLiteDBPath)
		return
	}
	defer repo.Close()

	rec := storage.Letter{
		Contract:        lctx.Contract,
		ClientName:      lctx.Name,
		Recipient:       lctx.Recipient.String(),
		ValuationDate:   letter.FormatDate(lctx.Valuation),
		GrandTotal:      sum.GrandTotal.Decimal().StringFixed(2),
		RegistryVersion: registryVersion,
		Filename:        filename,
	}
	if _, err := repo.Insert(context.Background(), rec); err != nil {
		slogger.Warn("Letter log write failed", "error", err)
	}
}
