// Package storage mantiene il registro delle lettere generate: solo
// metadati derivati (contratto, intestatario, data di valorizzazione,
// totale, nome file), mai il contenuto dell'estratto conto caricato.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Letter is one row of the generation log.
type Letter struct {
	ID              int64
	CreatedAt       time.Time
	Contract        string
	ClientName      string
	Recipient       string
	ValuationDate   string // gg/mm/aaaa, as printed on the letter
	GrandTotal      string // exact decimal, euro
	RegistryVersion int
	Filename        string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert appends a generation record and returns its id.
func (r *Repository) Insert(ctx context.Context, l Letter) (int64, error) {
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO letters (
			created_at, contract, client_name, recipient,
			valuation_date, grand_total, registry_version, filename
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339),
		l.Contract,
		l.ClientName,
		l.Recipient,
		l.ValuationDate,
		l.GrandTotal,
		l.RegistryVersion,
		l.Filename,
	)
	if err != nil {
		return 0, fmt.Errorf("insert letter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("letter id: %w", err)
	}

	slog.InfoContext(ctx, "Letter recorded",
		"id", id,
		"contract", l.Contract,
		"valuation_date", l.ValuationDate,
		"filename", l.Filename)

	return id, nil
}

// Recent returns the latest generation records, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Letter, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, contract, client_name, recipient,
		       valuation_date, grand_total, registry_version, filename
		FROM letters
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list letters: %w", err)
	}
	defer rows.Close()

	var out []Letter
	for rows.Next() {
		var l Letter
		var createdAt string
		if err := rows.Scan(
			&l.ID, &createdAt, &l.Contract, &l.ClientName, &l.Recipient,
			&l.ValuationDate, &l.GrandTotal, &l.RegistryVersion, &l.Filename,
		); err != nil {
			return nil, fmt.Errorf("scan letter: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			l.CreatedAt = t
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate letters: %w", err)
	}
	return out, nil
}

// CountByContract reports how many letters were already generated for
// a contract, for the repeat-generation hint in the history view.
func (r *Repository) CountByContract(ctx context.Context, contract string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM letters WHERE contract = ?`, contract).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count letters: %w", err)
	}
	return n, nil
}
