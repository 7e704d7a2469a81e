// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package mtdeals parses MetaTrader 4 and 5 "Deals" report sheets into
// canonical trades.
//
// Parsing never fails. Rows that cannot be understood are skipped, unparseable
// times are replaced by the fallback timestamp, and unparseable numbers are
// read as zero. Every such recovery is counted in the result diagnostics.
package mtdeals

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bufdev/perfctl/internal/pkg/cellparse"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
)

// Options configures parsing.
type Options struct {
	// FallbackTime replaces times that cannot be parsed. It must not be zero.
	FallbackTime time.Time
}

// Result is the output of Parse and ParseFallback.
type Result struct {
	// Trades are the parsed trades in file order.
	Trades []ledger.Trade
	// Diagnostics counts recovered problems.
	Diagnostics ledger.Diagnostics
	// LowConfidence is true when the trades were read positionally without a header.
	LowConfidence bool
}

// Parse parses the rows following the header row at headerRow.
func Parse(logger *slog.Logger, rows [][]string, headerRow int, options Options) *Result {
	result := &Result{}
	if headerRow < 0 || headerRow >= len(rows) {
		return result
	}
	columnMap := NewColumnMap(rows[headerRow])
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if xlsxsheet.IsEmptyRow(row) {
			continue
		}
		timeCell := columnMap.Get(row, FieldTime)
		dealCell := columnMap.Get(row, FieldDeal)
		// Totals and section titles have neither a time nor a deal.
		if timeCell == "" && dealCell == "" {
			result.Diagnostics.SkippedRows++
			continue
		}
		openTime, err := cellparse.ParseMTTime(timeCell)
		if err != nil {
			// Trailing report sections have text in the first column but no deal.
			if dealCell == "" {
				result.Diagnostics.SkippedRows++
				continue
			}
			logger.Debug("unparseable deal time, using fallback", "row", i+1, "deal", dealCell, "value", timeCell)
			result.Diagnostics.FallbackTimes++
		}
		trade := newTrade(row, columnMap, &result.Diagnostics)
		if err != nil {
			trade.OpenTime = options.FallbackTime
			trade.TimeFallback = true
		} else {
			trade.OpenTime = openTime
		}
		result.Trades = append(result.Trades, trade)
	}
	return result
}

// ParseFallback parses a sheet without a recognizable header by column position.
//
// Each row must start with a date, either as separate date and time cells,
// a combined "MM/DD/YYYY HH:MM:SS" cell, or a dot-separated date. The
// remaining cells are read in MetaTrader 5 order. The result is flagged as
// low confidence.
func ParseFallback(logger *slog.Logger, rows [][]string, options Options) *Result {
	result := &Result{LowConfidence: true}
	for i, row := range rows {
		if xlsxsheet.IsEmptyRow(row) {
			continue
		}
		openTime, start, ok := parseLeadingTime(row)
		if !ok {
			logger.Debug("skipping row without a recognizable date", "row", i+1)
			result.Diagnostics.SkippedRows++
			continue
		}
		trade := newTrade(row, positionalColumnMap(start, len(row)), &result.Diagnostics)
		trade.OpenTime = openTime
		result.Trades = append(result.Trades, trade)
	}
	return result
}

// parseLeadingTime returns the row time and the index of the first field after it.
func parseLeadingTime(row []string) (time.Time, int, bool) {
	first := xlsxsheet.RowCell(row, 0)
	second := xlsxsheet.RowCell(row, 1)
	if cellparse.IsClock(second) {
		if t, err := cellparse.ParseDateAndClock(first, second); err == nil {
			return t, 2, true
		}
	}
	if t, err := cellparse.ParseTime(first, cellparse.USLayouts); err == nil {
		return t, 1, true
	}
	if t, err := cellparse.ParseTime(first, cellparse.MTLayouts); err == nil {
		return t, 1, true
	}
	return time.Time{}, 0, false
}

func newTrade(row []string, columnMap ColumnMap, diagnostics *ledger.Diagnostics) ledger.Trade {
	number := func(field Field) float64 {
		value, err := cellparse.ParseNumber(columnMap.Get(row, field))
		if err != nil {
			diagnostics.CoercedNumbers++
			return 0
		}
		return value
	}
	tradeType := columnMap.Get(row, FieldType)
	direction := normalizeDirection(columnMap.Get(row, FieldDirection))
	comment := columnMap.Get(row, FieldComment)
	stopLoss, takeProfit := cellparse.ParseStopLevels(comment)
	return ledger.Trade{
		DealID:     columnMap.Get(row, FieldDeal),
		Order:      columnMap.Get(row, FieldOrder),
		Symbol:     columnMap.Get(row, FieldSymbol),
		Type:       tradeType,
		Direction:  direction,
		Side:       side(tradeType, direction),
		VolumeLots: number(FieldVolume),
		PriceOpen:  number(FieldPrice),
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Commission: number(FieldCommission),
		Swap:       number(FieldSwap),
		Profit:     number(FieldProfit),
		Balance:    balance(columnMap.Get(row, FieldBalance), diagnostics),
		Comment:    comment,
	}
}

// balance returns nil for an absent or unparseable balance so the ledger
// synthesizes the equity series instead of reading a false zero.
func balance(value string, diagnostics *ledger.Diagnostics) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := cellparse.ParseNumber(value)
	if err != nil {
		diagnostics.CoercedNumbers++
		return nil
	}
	return &parsed
}

// normalizeDirection maps MetaTrader entry values to ledger directions.
//
// "in/out" reversals and "out by" closes both realize profit and count as out.
func normalizeDirection(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case value == "in":
		return ledger.DirectionIn
	case value == "in/out", strings.HasPrefix(value, "out"):
		return ledger.DirectionOut
	default:
		return ""
	}
}

// side returns the side of the position a deal opens or closes.
//
// A closing sell closes a long position and a closing buy closes a short one.
func side(tradeType string, direction string) string {
	tradeType = strings.ToLower(strings.TrimSpace(tradeType))
	isBuy := strings.HasPrefix(tradeType, "buy")
	isSell := strings.HasPrefix(tradeType, "sell")
	switch direction {
	case ledger.DirectionIn:
		if isBuy {
			return ledger.SideLong
		}
		if isSell {
			return ledger.SideShort
		}
	case ledger.DirectionOut:
		if isSell {
			return ledger.SideLong
		}
		if isBuy {
			return ledger.SideShort
		}
	}
	return ""
}
