package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"csv2json/internal/mapper"
)

const recordChunk = 500

var ErrNotFound = errors.New("store: conversion not found")

var bodyAPI = sonic.Config{ValidateString: true}.Froze()

// Conversion is one recorded pipeline run.
type Conversion struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Delimiter string    `json:"delimiter"`
	HasHeader bool      `json:"hasHeader"`
	Empty     string    `json:"empty"`
	Rows      int       `json:"rows"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	db      *sql.DB
	sq      sq.StatementBuilderType
	driver  string
	timeout time.Duration
}

func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the history tables. The DDL is valid for MySQL and SQLite.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS csv2json_conversion (
			id           VARCHAR(36)  NOT NULL PRIMARY KEY,
			source       VARCHAR(255) NOT NULL,
			delimiter    VARCHAR(16)  NOT NULL,
			has_header   SMALLINT     NOT NULL,
			empty_policy VARCHAR(8)   NOT NULL,
			row_count    BIGINT       NOT NULL,
			record_count BIGINT       NOT NULL,
			created_at   BIGINT       NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS csv2json_record (
			conversion_id VARCHAR(36) NOT NULL,
			idx           BIGINT      NOT NULL,
			body          MEDIUMTEXT  NOT NULL,
			PRIMARY KEY (conversion_id, idx)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Save records a conversion and its records in one transaction and returns
// the conversion with ID and CreatedAt filled in.
func (s *Store) Save(ctx context.Context, c Conversion, records []mapper.Record) (Conversion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Records = len(records)
	if len(c.Source) > 255 {
		c.Source = strings.ToValidUTF8(c.Source[:255], "")
	}

	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		b, err := bodyAPI.Marshal(rec)
		if err != nil {
			return Conversion{}, fmt.Errorf("store: record %d: %w", i, err)
		}
		rows = append(rows, []any{c.ID, i, string(b)})
	}

	hdr := 0
	if c.HasHeader {
		hdr = 1
	}
	q, args, err := s.sq.Insert("csv2json_conversion").
		Columns("id", "source", "delimiter", "has_header", "empty_policy", "row_count", "record_count", "created_at").
		Values(c.ID, c.Source, c.Delimiter, hdr, c.Empty, c.Rows, c.Records, c.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return Conversion{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return Conversion{}, err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		_ = tx.Rollback()
		return Conversion{}, fmt.Errorf("store: insert conversion: %w", err)
	}
	if err := s.chunkedExec(ctx, tx, "csv2json_record", []string{"conversion_id", "idx", "body"}, rows, recordChunk); err != nil {
		_ = tx.Rollback()
		return Conversion{}, fmt.Errorf("store: insert records: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Conversion{}, err
	}
	return c, nil
}

// Recent lists the latest conversions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, args, err := s.sq.
		Select("id", "source", "delimiter", "has_header", "empty_policy", "row_count", "record_count", "created_at").
		From("csv2json_conversion").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	out := make([]Conversion, 0, limit)
	for rows.Next() {
		var (
			c       Conversion
			hdr     int
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.Delimiter, &hdr, &c.Empty, &c.Rows, &c.Records, &created); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		c.HasHeader = hdr == 1
		c.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// Records returns the stored JSON of each record of a conversion, in order.
func (s *Store) Records(ctx context.Context, id string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, args, err := s.sq.Select("COUNT(*)").From("csv2json_conversion").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	q, args, err = s.sq.Select("body").From("csv2json_record").
		Where(sq.Eq{"conversion_id": id}).
		OrderBy("idx").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, n)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// chunkedExec inserts rows in multi-row INSERT statements of at most chunk rows.
func (s *Store) chunkedExec(ctx context.Context, db execer, table string, cols []string, rows [][]any, chunk int) error {
	if len(rows) == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = recordChunk
	}
	for i := 0; i < len(rows); i += chunk {
		j := i + chunk
		if j > len(rows) {
			j = len(rows)
		}
		if err := s.bulkInsert(ctx, db, table, cols, rows[i:j]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) bulkInsert(ctx context.Context, db execer, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	ins := s.sq.Insert(table).Columns(cols...)
	for _, r := range rows {
		ins = ins.Values(r...)
	}
	q, args, err := ins.ToSql()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, q, args...)
	return err
}
