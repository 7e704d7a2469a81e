// Copyright 2026 Peter Edge
//
// All rights reserved.

package tvtrades

import (
	"log/slog"
	"testing"
	"time"

	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/stretchr/testify/require"
)

var fallbackTime = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	t.Parallel()
	rows := [][]string{
		{"Trade #", "Type", "Signal", "Date/Time", "Price USD", "Contracts", "Profit USD", "Profit %", "Cumulative profit USD"},
		{"1", "Entry Long", "Buy", "2024-01-02 10:00", "100", "2", "40", "2", "40"},
		{"1", "Exit Long", "Close", "2024-01-02 14:30", "120", "2", "40", "2", "40"},
		{"2", "Entry Short", "Sell", "2024-01-03 10:00", "130", "1", "-25", "-1", "15"},
		{"2", "Exit Short", "Cover", "not-a-date", "155", "1", "-25", "-1", "15"},
		{"3", "Entry", "Long signal", "2024-01-04 10:00:30", "150", "1", "10", "1", "25"},
		{"3", "Exit", "TP", "2024-01-04 11:00", "160", "1", "10", "1", "25"},
	}
	result := Parse(slog.Default(), rows, Options{FallbackTime: fallbackTime})
	require.Len(t, result.Trades, 6)
	require.Equal(t, ledger.Diagnostics{FallbackTimes: 1}, result.Diagnostics)
	require.Equal(t, 25.0, result.RunningMaxDrawdown)

	entry := result.Trades[0]
	require.Equal(t, ledger.DirectionIn, entry.Direction)
	require.Equal(t, ledger.SideLong, entry.Side)
	require.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), entry.OpenTime)
	require.Equal(t, 2.0, entry.VolumeLots)
	require.Zero(t, entry.Profit)
	require.Nil(t, entry.Balance)
	require.False(t, entry.IsDeposit())

	exit := result.Trades[1]
	require.Equal(t, ledger.DirectionOut, exit.Direction)
	require.Equal(t, ledger.SideLong, exit.Side)
	require.Equal(t, 40.0, exit.Profit)
	require.Equal(t, 40.0, *exit.Balance)
	require.True(t, exit.IsClosed())

	require.Equal(t, ledger.SideShort, result.Trades[3].Side)
	require.True(t, result.Trades[3].TimeFallback)
	require.Equal(t, fallbackTime, result.Trades[3].OpenTime)

	// The side comes from the signal when the type does not say.
	require.Equal(t, ledger.SideLong, result.Trades[4].Side)
	require.Equal(t, time.Date(2024, 1, 4, 10, 0, 30, 0, time.UTC), result.Trades[4].OpenTime)
	require.Equal(t, "", result.Trades[5].Side)
}

func TestParseAliases(t *testing.T) {
	t.Parallel()
	rows := [][]string{
		{"Trade #", "Type", "Date and time", "Signal", "Price", "Position size (qty)", "Net P&L USD", "Cumulative P&L USD", "Symbol"},
		{"1", "Exit long", "2024-05-01 09:30", "Stop", "1 010,5", "3", "-12,5", "-12,5", "NASDAQ:AAPL"},
	}
	result := Parse(slog.Default(), rows, Options{FallbackTime: fallbackTime})
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	require.Equal(t, "NASDAQ:AAPL", trade.Symbol)
	require.Equal(t, 1010.5, trade.PriceOpen)
	require.Equal(t, 3.0, trade.VolumeLots)
	require.Equal(t, -12.5, trade.Profit)
	require.Equal(t, -12.5, *trade.Balance)
	require.Equal(t, "Stop", trade.Comment)
}

func TestParseExcelSerialTimes(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		value        string
		expected     time.Time
		expectedFall bool
	}{
		{name: "serial_noon", value: "45292.5", expected: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{name: "serial_day", value: "45293", expected: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "text", value: "2024-01-02 14:30", expected: time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)},
		{name: "serial_out_of_range", value: "0", expected: fallbackTime, expectedFall: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			rows := [][]string{
				{"Trade #", "Type", "Date/Time", "Profit USD", "Cumulative profit USD"},
				{"1", "Exit Long", testCase.value, "10", "10"},
			}
			result := Parse(slog.Default(), rows, Options{FallbackTime: fallbackTime})
			require.Len(t, result.Trades, 1)
			require.Equal(t, testCase.expected, result.Trades[0].OpenTime)
			require.Equal(t, testCase.expectedFall, result.Trades[0].TimeFallback)
		})
	}
}

func TestParseMissingColumns(t *testing.T) {
	t.Parallel()
	rows := [][]string{
		{"Trade #", "Type"},
		{"1", "Exit Short"},
	}
	result := Parse(slog.Default(), rows, Options{FallbackTime: fallbackTime})
	require.Len(t, result.Trades, 1)
	require.Nil(t, result.Trades[0].Balance)
	require.True(t, result.Trades[0].TimeFallback)
	require.Empty(t, Parse(slog.Default(), nil, Options{FallbackTime: fallbackTime}).Trades)
}

func TestNewColumnMap(t *testing.T) {
	t.Parallel()
	columnMap := NewColumnMap([]string{" trade # ", "TYPE", "Profit %"})
	require.Equal(t, 0, columnMap[ColumnTradeNumber])
	require.Equal(t, 1, columnMap[ColumnType])
	require.Equal(t, -1, columnMap[ColumnProfit])
	require.Equal(t, -1, columnMap[ColumnSymbol])
}
