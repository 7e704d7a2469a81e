// Copyright 2026 Peter Edge
//
// All rights reserved.

package perfctlstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/pkg/xlsxtest"
	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	importedAt := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	store.now = func() time.Time { return importedAt }

	report := testReport(t, "deals.xlsx")
	id, err := store.SaveReport(ctx, report)
	require.NoError(t, err)
	require.Len(t, id, 26)

	records, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	record := records[0]
	require.Equal(t, id, record.ID)
	require.Equal(t, "deals.xlsx", record.FileName)
	require.Equal(t, string(perfctlreport.SourceMT5), record.Source)
	require.Equal(t, "mt5_deals", record.Format)
	require.False(t, record.LowConfidence)
	require.Equal(t, 3, record.TradeCount)
	require.True(t, importedAt.Equal(record.ImportedAt))
	require.True(t, cmp.Equal(report.Summary(), record.Summary), cmp.Diff(report.Summary(), record.Summary))

	trades, err := store.GetTrades(ctx, id)
	require.NoError(t, err)
	require.True(t, cmp.Equal(report.Trades(), trades), cmp.Diff(report.Trades(), trades))

	points, err := store.GetEquity(ctx, id)
	require.NoError(t, err)
	require.True(t, cmp.Equal(report.Equity().Points, points), cmp.Diff(report.Equity().Points, points))
}

func TestReportRecordJSON(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	id, err := store.SaveReport(ctx, testReport(t, "deals.xlsx"))
	require.NoError(t, err)
	record, err := store.GetReport(ctx, id)
	require.NoError(t, err)
	data, err := json.Marshal(record)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, id, decoded["id"])
	require.Equal(t, "deals.xlsx", decoded["file_name"])
	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 1000.0, summary["Initial Balance"])
	require.Equal(t, 1.0, summary["Total Trades"])
}

func TestListReportsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	var ids []string
	for _, fileName := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
		id, err := store.SaveReport(ctx, testReport(t, fileName))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	records, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		require.Equal(t, ids[i], record.ID)
	}
	require.Equal(t, "a.xlsx", records[0].FileName)
	require.Equal(t, "c.xlsx", records[2].FileName)
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	_, err := store.GetReport(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = store.GetTrades(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = store.GetEquity(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))
	require.True(t, errors.Is(store.DeleteReport(ctx, "missing"), ErrNotFound))
}

func TestDeleteReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	id, err := store.SaveReport(ctx, testReport(t, "deals.xlsx"))
	require.NoError(t, err)
	require.NoError(t, store.DeleteReport(ctx, id))
	records, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
	_, err = store.GetTrades(ctx, id)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	filePath := filepath.Join(t.TempDir(), "v1", "journal.db")
	store, err := Open(ctx, filePath)
	require.NoError(t, err)
	id, err := store.SaveReport(ctx, testReport(t, "deals.xlsx"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(ctx, filePath)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	record, err := store.GetReport(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "deals.xlsx", record.FileName)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func testReport(t *testing.T, fileName string) *perfctlreport.Report {
	t.Helper()
	data := xlsxtest.Bytes(t, xlsxtest.NewSheet(
		"Sheet1",
		[]string{"Time", "Deal", "Symbol", "Type", "Direction", "Volume", "Price", "Order", "Commission", "Swap", "Profit", "Balance", "Comment"},
		[]string{"2024.01.02 09:00:00", "1", "", "balance", "", "", "", "", "0", "0", "1000", "1000", "Deposit"},
		[]string{"2024.01.02 10:00:00", "2", "EURUSD", "buy", "in", "0.1", "1.1", "11", "-0.35", "0", "0", "999.65", "sl 1.05 tp 1.2"},
		[]string{"2024.01.02 11:00:00", "3", "EURUSD", "sell", "out", "0.1", "1.2", "12", "-0.35", "0", "100.25", "1099.55"},
	))
	report, err := perfctlreport.Analyze(context.Background(), slog.Default(), fileName, bytes.NewReader(data), perfctlreport.DefaultOptions())
	require.NoError(t, err)
	return report
}

func TestIsLockError(t *testing.T) {
	t.Parallel()
	require.True(t, isLockError(sqlite3.Error{Code: sqlite3.ErrBusy}))
	require.True(t, isLockError(fmt.Errorf("inserting report: %w", sqlite3.Error{Code: sqlite3.ErrLocked})))
	require.False(t, isLockError(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	require.False(t, isLockError(errors.New("other")))
}
