// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tvtrades parses TradingView strategy tester "List of trades" sheets
// into canonical trades.
//
// Each row is one leg of a trade. Exit legs carry the realized profit and the
// cumulative profit of the strategy, which becomes the trade balance. Rows are
// processed strictly in file order because cumulative profit depends on it.
package tvtrades

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bufdev/perfctl/internal/pkg/cellparse"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
)

// Column is a TradingView column.
type Column int

const (
	ColumnTradeNumber Column = iota
	ColumnType
	ColumnSignal
	ColumnDateTime
	ColumnPrice
	ColumnContracts
	ColumnProfit
	ColumnCumulativeProfit
	ColumnSymbol
	numColumns
)

// columnNames lists the accepted header names per column. Newer exports
// renamed several columns.
var columnNames = [numColumns][]string{
	ColumnTradeNumber:      {"Trade #"},
	ColumnType:             {"Type"},
	ColumnSignal:           {"Signal"},
	ColumnDateTime:         {"Date/Time", "Date and time"},
	ColumnPrice:            {"Price USD", "Price"},
	ColumnContracts:        {"Contracts", "Position size (qty)"},
	ColumnProfit:           {"Profit USD", "Net P&L USD"},
	ColumnCumulativeProfit: {"Cumulative profit USD", "Cumulative P&L USD"},
	ColumnSymbol:           {"Symbol"},
}

// ColumnMap maps each column to its index, or -1 if the header lacks it.
type ColumnMap [numColumns]int

// NewColumnMap resolves the header row by exact, case-insensitive name.
func NewColumnMap(header []string) ColumnMap {
	var columnMap ColumnMap
	for column := range numColumns {
		columnMap[column] = -1
		for i, cell := range header {
			if matchesAny(cell, columnNames[column]) {
				columnMap[column] = i
				break
			}
		}
	}
	return columnMap
}

// Get returns the trimmed cell for the column, or "" if the column is unmapped.
func (c ColumnMap) Get(row []string, column Column) string {
	return xlsxsheet.RowCell(row, c[column])
}

// Options configures parsing.
type Options struct {
	// FallbackTime replaces times that cannot be parsed. It must not be zero.
	FallbackTime time.Time
}

// Result is the output of Parse.
type Result struct {
	// Trades are the legs in file order.
	Trades []ledger.Trade
	// Diagnostics counts recovered problems.
	Diagnostics ledger.Diagnostics
	// RunningMaxDrawdown is the largest decline of cumulative profit from its
	// running peak, tracked across exit legs in file order.
	RunningMaxDrawdown float64
}

// Parse parses the sheet rows. The first row is the header.
func Parse(logger *slog.Logger, rows [][]string, options Options) *Result {
	result := &Result{}
	if len(rows) == 0 {
		return result
	}
	columnMap := NewColumnMap(rows[0])
	var peak float64
	var havePeak bool
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if xlsxsheet.IsEmptyRow(row) {
			continue
		}
		trade := newTrade(row, columnMap, &result.Diagnostics)
		openTime, err := parseTradeTime(columnMap.Get(row, ColumnDateTime))
		if err != nil {
			logger.Debug("unparseable trade time, using fallback", "row", i+1, "trade", trade.DealID, "value", columnMap.Get(row, ColumnDateTime))
			result.Diagnostics.FallbackTimes++
			trade.OpenTime = options.FallbackTime
			trade.TimeFallback = true
		} else {
			trade.OpenTime = openTime
		}
		// Track the running peak and drawdown of cumulative profit on exits.
		if trade.Direction == ledger.DirectionOut && trade.Balance != nil {
			cumulative := *trade.Balance
			if !havePeak || cumulative > peak {
				peak = cumulative
				havePeak = true
			}
			result.RunningMaxDrawdown = max(result.RunningMaxDrawdown, peak-cumulative)
		}
		result.Trades = append(result.Trades, trade)
	}
	return result
}

func newTrade(row []string, columnMap ColumnMap, diagnostics *ledger.Diagnostics) ledger.Trade {
	number := func(column Column) float64 {
		value, err := cellparse.ParseNumber(columnMap.Get(row, column))
		if err != nil {
			diagnostics.CoercedNumbers++
			return 0
		}
		return value
	}
	tradeType := columnMap.Get(row, ColumnType)
	signal := columnMap.Get(row, ColumnSignal)
	trade := ledger.Trade{
		DealID:     columnMap.Get(row, ColumnTradeNumber),
		Symbol:     columnMap.Get(row, ColumnSymbol),
		Type:       tradeType,
		Direction:  direction(tradeType),
		Side:       side(tradeType, signal),
		VolumeLots: number(ColumnContracts),
		PriceOpen:  number(ColumnPrice),
		Comment:    signal,
	}
	// Only exits realize profit. Entry rows repeat the trade profit, which
	// would double count it.
	if trade.Direction == ledger.DirectionOut {
		trade.Profit = number(ColumnProfit)
		if cumulative := columnMap.Get(row, ColumnCumulativeProfit); cumulative != "" {
			value, err := cellparse.ParseNumber(cumulative)
			if err != nil {
				diagnostics.CoercedNumbers++
			} else {
				trade.Balance = &value
			}
		}
	}
	return trade
}

func direction(tradeType string) string {
	lowerType := strings.ToLower(tradeType)
	switch {
	case strings.Contains(lowerType, "entry"):
		return ledger.DirectionIn
	case strings.Contains(lowerType, "exit"):
		return ledger.DirectionOut
	default:
		return ""
	}
}

// side reads the side from the type, then from the signal.
func side(tradeType string, signal string) string {
	for _, value := range []string{tradeType, signal} {
		lowerValue := strings.ToLower(value)
		switch {
		case strings.Contains(lowerValue, ledger.SideLong):
			return ledger.SideLong
		case strings.Contains(lowerValue, ledger.SideShort):
			return ledger.SideShort
		}
	}
	return ""
}

func matchesAny(cell string, names []string) bool {
	cell = strings.TrimSpace(cell)
	for _, name := range names {
		if strings.EqualFold(cell, name) {
			return true
		}
	}
	return false
}

// parseTradeTime accepts TradingView text layouts and falls back to Excel
// serial day numbers for cells stored as raw dates.
func parseTradeTime(value string) (time.Time, error) {
	parsed, err := cellparse.ParseTime(value, cellparse.TVLayouts)
	if err == nil {
		return parsed, nil
	}
	if serial, serialErr := cellparse.ParseExcelSerial(value); serialErr == nil {
		return serial, nil
	}
	return time.Time{}, err
}
