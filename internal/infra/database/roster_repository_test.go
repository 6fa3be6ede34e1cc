package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"club_meeting_bot/internal/domain/roster"
)

func openTestRepository(t *testing.T) *RosterRepository {
	t.Helper()
	db, dialect, err := Open("sqlite", filepath.Join(t.TempDir(), "data", "meeting.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	repo := NewRosterRepository(db, dialect)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	// idempotent
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema twice: %v", err)
	}
	return repo
}

func insert(t *testing.T, repo *RosterRepository, name, callSign string) roster.Entry {
	t.Helper()
	e := roster.Entry{Name: name, CallSign: callSign}
	if err := repo.Insert(context.Background(), &e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return e
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, _, err := Open("mysql", "x"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewSQLiteConnection(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRosterInsertAndList(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()

	first := insert(t, repo, "ERIK", "DL1ABC")
	insert(t, repo, "", "DO2XYZ")
	insert(t, repo, "ANNA", "")

	if first.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "ERIK" || entries[0].CallSign != "DL1ABC" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Name != "" || entries[1].CallSign != "DO2XYZ" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at")
	}
}

func TestRosterExistsAndDeleteConjunctive(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	insert(t, repo, "ERIK", "DL1ABC")
	insert(t, repo, "ERIK", "")

	exact := roster.Matcher{Mode: roster.MatchConjunctive, Key: roster.Entry{Name: "ERIK", CallSign: "DL1ABC"}}
	if ok, err := repo.Exists(ctx, exact); err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}
	other := roster.Matcher{Mode: roster.MatchConjunctive, Key: roster.Entry{Name: "ERIK", CallSign: "DL9ZZZ"}}
	if ok, err := repo.Exists(ctx, other); err != nil || ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}

	nameOnly := roster.Matcher{Mode: roster.MatchConjunctive, Key: roster.Entry{Name: "ERIK"}}
	n, err := repo.DeleteWhere(ctx, nameOnly)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the name-only row deleted, got %d", n)
	}
	entries, _ := repo.ListAll(ctx)
	if len(entries) != 1 || entries[0].CallSign != "DL1ABC" {
		t.Fatalf("unexpected remaining entries %+v", entries)
	}
}

func TestRosterDeleteDisjunctive(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	insert(t, repo, "ERIK", "")
	insert(t, repo, "", "DL1ABC")
	insert(t, repo, "ANNA", "DO2XYZ")

	m := roster.Matcher{Mode: roster.MatchDisjunctive, Key: roster.Entry{Name: "ERIK", CallSign: "DL1ABC"}}
	n, err := repo.DeleteWhere(ctx, m)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows deleted, got %d", n)
	}

	empty := roster.Matcher{Mode: roster.MatchDisjunctive}
	if ok, err := repo.Exists(ctx, empty); err != nil || ok {
		t.Fatalf("empty disjunctive key must match nothing: %v, %v", ok, err)
	}
}

func TestRosterClearAndCycles(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()

	if _, err := repo.CurrentCycle(ctx); !errors.Is(err, ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}

	first := time.Date(2026, time.October, 9, 20, 50, 0, 0, time.UTC)
	if err := repo.StartCycle(ctx, &roster.Cycle{ID: "c1", StartedAt: first}); err != nil {
		t.Fatalf("start cycle: %v", err)
	}
	insert(t, repo, "ERIK", "DL1ABC")
	insert(t, repo, "ANNA", "")

	second := first.AddDate(0, 0, 7)
	if err := repo.ClearAndStartCycle(ctx, &roster.Cycle{ID: "c2", StartedAt: second, ArchivedEntries: 2}); err != nil {
		t.Fatalf("clear and start: %v", err)
	}
	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty roster, got %d", len(entries))
	}
	cur, err := repo.CurrentCycle(ctx)
	if err != nil {
		t.Fatalf("current cycle: %v", err)
	}
	if cur.ID != "c2" || !cur.StartedAt.Equal(second) || cur.ArchivedEntries != 2 {
		t.Fatalf("unexpected cycle %+v", cur)
	}

	// duplicate id makes the transaction fail and keeps the roster
	insert(t, repo, "OTTO", "")
	if err := repo.ClearAndStartCycle(ctx, &roster.Cycle{ID: "c2", StartedAt: second.AddDate(0, 0, 7)}); err == nil {
		t.Fatal("expected duplicate cycle id error")
	}
	entries, _ = repo.ListAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected rollback to keep 1 entry, got %d", len(entries))
	}

	before, err := repo.CurrentCycle(ctx)
	if err != nil {
		t.Fatalf("current cycle: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ = repo.ListAll(ctx)
	if len(entries) != 0 {
		t.Fatalf("expected empty roster after clear, got %d", len(entries))
	}
	after, err := repo.CurrentCycle(ctx)
	if err != nil || after.ID != before.ID {
		t.Fatalf("clear touched cycles: before %+v, after %+v (%v)", before, after, err)
	}
}

func TestDialectRebind(t *testing.T) {
	q := "SELECT 1 WHERE a = ? AND b = ?"
	if got := DialectSQLite.rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	if got := DialectPostgres.rebind(q); got != "SELECT 1 WHERE a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
}
