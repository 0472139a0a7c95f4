package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zeebo/xxh3"
)

// Statement is a rendered statement handed to an executor.
type Statement struct {
	Dialect string
	Version string
	Text    string
	Source  string // where the statement came from, e.g. a document path
}

// Entry is one journaled statement.
type Entry struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Dialect     string `json:"dialect"`
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint"`
	Statement   string `json:"statement"`
	Source      string `json:"source,omitempty"`
}

// Executor runs rendered statements.
type Executor interface {
	Execute(ctx context.Context, s Statement) (Entry, error)
}

var _ Executor = (*Journal)(nil)

// ErrNotFound is returned when no entry matches.
var ErrNotFound = errors.New("journal entry not found")

// Fingerprint returns the content fingerprint of a statement text.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(text))
}

// Execute records s without running it.
func (j *Journal) Execute(ctx context.Context, s Statement) (Entry, error) {
	return j.Record(ctx, s)
}

// Record appends s to the journal and returns the stored entry.
func (j *Journal) Record(ctx context.Context, s Statement) (Entry, error) {
	if strings.TrimSpace(s.Text) == "" {
		return Entry{}, fmt.Errorf("record statement: empty statement")
	}
	if s.Dialect == "" {
		return Entry{}, fmt.Errorf("record statement: dialect is required")
	}
	e := Entry{
		ID:          j.ids.Generate(),
		Seq:         j.clock.Next(),
		Dialect:     s.Dialect,
		Version:     s.Version,
		Fingerprint: Fingerprint(s.Text),
		Statement:   s.Text,
		Source:      s.Source,
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO statements
		(id, seq, dialect, version, fingerprint, statement, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Seq, e.Dialect, e.Version, e.Fingerprint, e.Statement, e.Source)
	if err != nil {
		return Entry{}, fmt.Errorf("record statement: %w", err)
	}
	slog.Debug("statement journaled", "id", e.ID, "seq", e.Seq, "dialect", e.Dialect, "fingerprint", e.Fingerprint)
	return e, nil
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Dialect string
	Limit   int
}

// List returns entries in journal order.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT id, seq, dialect, version, fingerprint, statement, source FROM statements`
	var args []any
	if f.Dialect != "" {
		query += ` WHERE dialect = ?`
		args = append(args, f.Dialect)
	}
	query += ` ORDER BY seq ASC, id ASC COLLATE BINARY`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return j.query(ctx, "list statements", query, args...)
}

// ByFingerprint returns every entry with the given fingerprint.
func (j *Journal) ByFingerprint(ctx context.Context, fingerprint string) ([]Entry, error) {
	return j.query(ctx, "statements by fingerprint", `
		SELECT id, seq, dialect, version, fingerprint, statement, source
		FROM statements
		WHERE fingerprint = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, fingerprint)
}

// Get returns the entry with id, or ErrNotFound.
func (j *Journal) Get(ctx context.Context, id string) (Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, seq, dialect, version, fingerprint, statement, source
		FROM statements
		WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get statement %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get statement %s: %w", id, err)
	}
	return e, nil
}

// LastSeq returns the highest stored seq, or 0 for an empty journal.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := j.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM statements`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

func (j *Journal) query(ctx context.Context, op, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	err := s.Scan(&e.ID, &e.Seq, &e.Dialect, &e.Version, &e.Fingerprint, &e.Statement, &e.Source)
	return e, err
}
