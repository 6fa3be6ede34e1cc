package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"club_meeting_bot/internal/domain/roster"
)

// Custom errors
var ErrCycleNotFound = fmt.Errorf("cycle not found")

// RosterRepository stores the roster in roster_entries and the cycle history
// in cycles. It works on Postgres and SQLite.
type RosterRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewRosterRepository(db *sql.DB, dialect Dialect) *RosterRepository {
	return &RosterRepository{db: db, dialect: dialect}
}

// EnsureSchema creates the tables if they do not exist yet.
func (r *RosterRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range r.dialect.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// whereClause renders a Matcher as SQL. Disjunctive keys with no non-empty
// field match nothing.
func whereClause(m roster.Matcher) (string, []any) {
	if m.Mode == roster.MatchDisjunctive {
		var parts []string
		var args []any
		if m.Key.Name != "" {
			parts = append(parts, "name = ?")
			args = append(args, m.Key.Name)
		}
		if m.Key.CallSign != "" {
			parts = append(parts, "call_sign = ?")
			args = append(args, m.Key.CallSign)
		}
		if len(parts) == 0 {
			return "1 = 0", nil
		}
		return "(" + strings.Join(parts, " OR ") + ")", args
	}
	return "name = ? AND call_sign = ?", []any{m.Key.Name, m.Key.CallSign}
}

func (r *RosterRepository) Insert(ctx context.Context, e *roster.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := r.dialect.rebind(`INSERT INTO roster_entries (name, call_sign, created_at)
               VALUES (?, ?, ?)
               RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, e.Name, e.CallSign, toMillis(e.CreatedAt)).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("error inserting roster entry: %w", err)
	}
	return nil
}

func (r *RosterRepository) DeleteWhere(ctx context.Context, m roster.Matcher) (int64, error) {
	where, args := whereClause(m)
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM roster_entries WHERE `+where), args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting roster entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading deleted row count: %w", err)
	}
	return n, nil
}

func (r *RosterRepository) Exists(ctx context.Context, m roster.Matcher) (bool, error) {
	where, args := whereClause(m)
	var exists bool
	query := r.dialect.rebind(`SELECT EXISTS (SELECT 1 FROM roster_entries WHERE ` + where + `)`)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking roster entry: %w", err)
	}
	return exists, nil
}

func (r *RosterRepository) ListAll(ctx context.Context) ([]roster.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, call_sign, created_at FROM roster_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing roster entries: %w", err)
	}
	defer rows.Close()

	entries := make([]roster.Entry, 0)
	for rows.Next() {
		var e roster.Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Name, &e.CallSign, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning roster entry: %w", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster entries: %w", err)
	}
	return entries, nil
}

// Clear deletes every roster entry without recording a cycle.
func (r *RosterRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM roster_entries`); err != nil {
		return fmt.Errorf("error clearing roster: %w", err)
	}
	return nil
}

func (r *RosterRepository) ClearAndStartCycle(ctx context.Context, c *roster.Cycle) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM roster_entries`); err != nil {
		return fmt.Errorf("error clearing roster: %w", err)
	}
	if err = r.insertCycle(ctx, tx, c); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing cycle start: %w", err)
	}
	return nil
}

func (r *RosterRepository) StartCycle(ctx context.Context, c *roster.Cycle) error {
	return r.insertCycle(ctx, r.db, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *RosterRepository) insertCycle(ctx context.Context, ex execer, c *roster.Cycle) error {
	query := r.dialect.rebind(`INSERT INTO cycles (id, started_at, archived_entries) VALUES (?, ?, ?)`)
	if _, err := ex.ExecContext(ctx, query, c.ID, toMillis(c.StartedAt), c.ArchivedEntries); err != nil {
		return fmt.Errorf("error creating cycle: %w", err)
	}
	return nil
}

func (r *RosterRepository) CurrentCycle(ctx context.Context) (*roster.Cycle, error) {
	query := `SELECT id, started_at, archived_entries FROM cycles ORDER BY started_at DESC LIMIT 1`
	c := &roster.Cycle{}
	var startedAt int64
	err := r.db.QueryRowContext(ctx, query).Scan(&c.ID, &startedAt, &c.ArchivedEntries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting current cycle: %w", err)
	}
	c.StartedAt = fromMillis(startedAt)
	return c, nil
}
