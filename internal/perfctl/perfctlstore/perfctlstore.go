// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlstore journals analysis reports to a SQLite database.
//
// Each imported report gets a ULID, so listing reports by ID lists them in
// import order.
package perfctlstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/pkg/backoff"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// writePolicy retries writes that hit SQLITE_BUSY or SQLITE_LOCKED.
var writePolicy = backoff.Policy{
	MaxAttempts:  5,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     time.Second,
	IsRetryable:  isLockError,
}

// ErrNotFound is returned when a report ID is not in the journal.
var ErrNotFound = errors.New("report not found")

// ReportRecord is a journaled report without its trades.
type ReportRecord struct {
	ID            string          `json:"id"`
	FileName      string          `json:"file_name"`
	Source        string          `json:"source"`
	Format        string          `json:"format"`
	LowConfidence bool            `json:"low_confidence"`
	TradeCount    int             `json:"trade_count"`
	ImportedAt    time.Time       `json:"imported_at"`
	Summary       metrics.Summary `json:"-"`
}

// MarshalJSON implements json.Marshaler. The summary is emitted in its
// display form, as in a report.
func (r ReportRecord) MarshalJSON() ([]byte, error) {
	type plainRecord ReportRecord
	return json.Marshal(struct {
		plainRecord
		Summary map[string]any `json:"summary"`
	}{
		plainRecord: plainRecord(r),
		Summary:     r.Summary.Map(),
	})
}

// Store is a SQLite journal.
type Store struct {
	db *sql.DB
	// now is overridden in tests.
	now func() time.Time

	lock    sync.Mutex
	entropy io.Reader
}

// Open opens the journal at filePath, creating the file and schema if needed.
func Open(ctx context.Context, filePath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := sql.Open("sqlite3", filePath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer, so serialize all access.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Join(fmt.Errorf("creating journal schema: %w", err), db.Close())
	}
	return &Store{
		db:      db,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport journals the report with its trades and equity series and
// returns the new report ID.
//
// The write is retried while another process holds the database lock.
func (s *Store) SaveReport(ctx context.Context, report *perfctlreport.Report) (string, error) {
	id, importedAt, err := s.newID()
	if err != nil {
		return "", err
	}
	summaryJSON, err := json.Marshal(report.Summary())
	if err != nil {
		return "", err
	}
	return backoff.Retry(
		ctx,
		writePolicy,
		func(ctx context.Context, _ int) (string, error) {
			return id, s.saveReport(ctx, id, importedAt, summaryJSON, report)
		},
	)
}

func (s *Store) saveReport(
	ctx context.Context,
	id string,
	importedAt time.Time,
	summaryJSON []byte,
	report *perfctlreport.Report,
) (retErr error) {
	trades := report.Trades()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, tx.Rollback())
		}
	}()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO reports
		(id, file_name, source, format, low_confidence, trade_count, imported_at, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		report.FileName(),
		string(report.Source()),
		report.Format().String(),
		report.LowConfidence(),
		len(trades),
		formatTime(importedAt),
		string(summaryJSON),
	); err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	tradeStatement, err := tx.PrepareContext(
		ctx,
		`INSERT INTO trades
		(report_id, seq, open_time, deal_id, order_id, symbol, type, direction, side, volume, price,
		stop_loss, take_profit, commission, swap, profit, balance, comment, time_fallback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, tradeStatement.Close())
	}()
	for i, trade := range trades {
		if _, err := tradeStatement.ExecContext(
			ctx,
			id,
			i,
			formatTime(trade.OpenTime),
			trade.DealID,
			trade.Order,
			trade.Symbol,
			trade.Type,
			trade.Direction,
			trade.Side,
			trade.VolumeLots,
			trade.PriceOpen,
			nullFloat(trade.StopLoss),
			nullFloat(trade.TakeProfit),
			trade.Commission,
			trade.Swap,
			trade.Profit,
			nullFloat(trade.Balance),
			trade.Comment,
			trade.TimeFallback,
		); err != nil {
			return fmt.Errorf("inserting trade %d: %w", i, err)
		}
	}
	for i, point := range report.Equity().Points {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO equity (report_id, seq, time, balance) VALUES (?, ?, ?, ?)`,
			id,
			i,
			formatTime(point.Time),
			point.Balance,
		); err != nil {
			return fmt.Errorf("inserting equity point %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListReports returns the journaled reports in import order.
func (s *Store) ListReports(ctx context.Context) (_ []ReportRecord, retErr error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, file_name, source, format, low_confidence, trade_count, imported_at, summary_json
		FROM reports ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, rows.Close())
	}()
	var records []ReportRecord
	for rows.Next() {
		record, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetReport returns the journaled report with the given ID.
func (s *Store) GetReport(ctx context.Context, id string) (*ReportRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, file_name, source, format, low_confidence, trade_count, imported_at, summary_json
		FROM reports WHERE id = ?`,
		id,
	)
	record, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &record, nil
}

// GetTrades returns the trades of the journaled report in file order.
func (s *Store) GetTrades(ctx context.Context, id string) (_ []ledger.Trade, retErr error) {
	if _, err := s.GetReport(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT open_time, deal_id, order_id, symbol, type, direction, side, volume, price,
		stop_loss, take_profit, commission, swap, profit, balance, comment, time_fallback
		FROM trades WHERE report_id = ? ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, rows.Close())
	}()
	var trades []ledger.Trade
	for rows.Next() {
		var (
			trade                         ledger.Trade
			openTime                      string
			stopLoss, takeProfit, balance sql.NullFloat64
		)
		if err := rows.Scan(
			&openTime,
			&trade.DealID,
			&trade.Order,
			&trade.Symbol,
			&trade.Type,
			&trade.Direction,
			&trade.Side,
			&trade.VolumeLots,
			&trade.PriceOpen,
			&stopLoss,
			&takeProfit,
			&trade.Commission,
			&trade.Swap,
			&trade.Profit,
			&balance,
			&trade.Comment,
			&trade.TimeFallback,
		); err != nil {
			return nil, err
		}
		if trade.OpenTime, err = parseTime(openTime); err != nil {
			return nil, err
		}
		trade.StopLoss = floatPointer(stopLoss)
		trade.TakeProfit = floatPointer(takeProfit)
		trade.Balance = floatPointer(balance)
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

// GetEquity returns the equity series of the journaled report.
func (s *Store) GetEquity(ctx context.Context, id string) (_ []ledger.EquityPoint, retErr error) {
	if _, err := s.GetReport(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT time, balance FROM equity WHERE report_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, rows.Close())
	}()
	var points []ledger.EquityPoint
	for rows.Next() {
		var (
			point     ledger.EquityPoint
			pointTime string
		)
		if err := rows.Scan(&pointTime, &point.Balance); err != nil {
			return nil, err
		}
		if point.Time, err = parseTime(pointTime); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

// DeleteReport removes the report with its trades and equity series.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) newID() (string, time.Time, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	now := s.now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating report ID: %w", err)
	}
	return id.String(), now, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (ReportRecord, error) {
	var (
		record      ReportRecord
		importedAt  string
		summaryJSON string
	)
	if err := row.Scan(
		&record.ID,
		&record.FileName,
		&record.Source,
		&record.Format,
		&record.LowConfidence,
		&record.TradeCount,
		&importedAt,
		&summaryJSON,
	); err != nil {
		return ReportRecord{}, err
	}
	var err error
	if record.ImportedAt, err = parseTime(importedAt); err != nil {
		return ReportRecord{}, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &record.Summary); err != nil {
		return ReportRecord{}, fmt.Errorf("decoding summary of report %s: %w", record.ID, err)
	}
	return record, nil
}

func isLockError(err error) bool {
	var sqliteError sqlite3.Error
	if !errors.As(err, &sqliteError) {
		return false
	}
	return sqliteError.Code == sqlite3.ErrBusy || sqliteError.Code == sqlite3.ErrLocked
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding journal time %q: %w", value, err)
	}
	return t, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func floatPointer(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	return ledger.Float(value.Float64)
}
