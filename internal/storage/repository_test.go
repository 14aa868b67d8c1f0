package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "valorizza.db"))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndRecent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	letters := []Letter{
		{Contract: "700123", ClientName: "Maria Di Salvatore", Recipient: "donna",
			ValuationDate: "30/06/2025", GrandTotal: "415.00", RegistryVersion: 3,
			Filename: "VAL_700123_250825.docx"},
		{Contract: "700124", ClientName: "ACME S.p.A.", Recipient: "società",
			ValuationDate: "31/07/2025", GrandTotal: "-12.00", RegistryVersion: 3,
			Filename: "VAL_700124_250825.docx"},
	}
	for _, l := range letters {
		id, err := repo.Insert(ctx, l)
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if id <= 0 {
			t.Fatalf("expected a positive id, got %d", id)
		}
	}

	got, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Contract != "700124" {
		t.Fatalf("expected newest first, got %q", got[0].Contract)
	}
	if got[0].GrandTotal != "-12.00" || got[0].ClientName != "ACME S.p.A." {
		t.Fatalf("unexpected record: %+v", got[0])
	}
	if got[1].CreatedAt.IsZero() {
		t.Fatal("created_at must round-trip")
	}
}

func TestRecentLimit(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.Insert(ctx, Letter{
			Contract: "1", ClientName: "Mario Rossi", Recipient: "uomo",
			ValuationDate: "30/06/2025", GrandTotal: "100",
			RegistryVersion: 3, Filename: "VAL_1_250825.docx",
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
}

func TestCountByContract(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := repo.Insert(ctx, Letter{
			Contract: "700123", ClientName: "Mario Rossi", Recipient: "uomo",
			ValuationDate: "30/06/2025", GrandTotal: "200",
			RegistryVersion: 3, Filename: "VAL_700123_250825.docx",
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	n, err := repo.CountByContract(ctx, "700123")
	if err != nil {
		t.Fatalf("CountByContract failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
	n, err = repo.CountByContract(ctx, "missing")
	if err != nil || n != 0 {
		t.Fatalf("expected 0 for unknown contract, got %d (err=%v)", n, err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valorizza.db")

	first, err := NewRepository(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	first.Close()

	second, err := NewRepository(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	if err := second.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
