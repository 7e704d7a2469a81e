// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package ledger defines the canonical trade record shared by every export
// parser and reconciles trades into a single equity series.
//
// MetaTrader exports carry a running account balance on every deal, while
// TradingView exports only carry cumulative profit on exit legs. Reconcile
// hides that difference so metrics are computed the same way for both.
package ledger

import (
	"slices"
	"strings"
	"time"
)

const (
	// DirectionIn marks the opening leg of a position.
	DirectionIn = "in"
	// DirectionOut marks the closing leg of a position.
	DirectionOut = "out"
	// SideLong is a long position.
	SideLong = "long"
	// SideShort is a short position.
	SideShort = "short"
	// TypeBalance is the deal type MetaTrader uses for deposits and withdrawals.
	TypeBalance = "balance"
)

// Trade is one canonical deal or leg.
//
// Trades are produced once per parse and never mutated afterward.
type Trade struct {
	// OpenTime is the deal time. It is never zero.
	OpenTime time.Time
	// DealID is the source deal identifier or TradingView trade number.
	DealID string
	// Order is the source order identifier.
	Order string
	// Symbol is the instrument symbol.
	Symbol string
	// Type is the free-text source label, for example "buy", "balance" or "Entry Long".
	Type string
	// Direction is DirectionIn, DirectionOut, or empty.
	Direction string
	// Side is SideLong, SideShort, or empty.
	Side string
	// VolumeLots is the traded volume.
	VolumeLots float64
	// PriceOpen is the deal price.
	PriceOpen float64
	// StopLoss is the stop-loss level extracted from the comment, if any.
	StopLoss *float64
	// TakeProfit is the take-profit level extracted from the comment, if any.
	TakeProfit *float64
	// Commission is the commission charged on the deal.
	Commission float64
	// Swap is the swap charged on the deal.
	Swap float64
	// Profit is the realized profit for closing legs.
	Profit float64
	// Balance is the account balance after the deal, present only when the source row has it.
	Balance *float64
	// Comment is the free-text deal comment.
	Comment string
	// TimeFallback is true when the source time could not be parsed and
	// OpenTime holds the fallback timestamp instead.
	TimeFallback bool
}

// IsDeposit returns true for balance operations, which are kept in the
// ledger but excluded from trading statistics.
func (t Trade) IsDeposit() bool {
	trimmedType := strings.TrimSpace(t.Type)
	return trimmedType == "" || strings.EqualFold(trimmedType, TypeBalance)
}

// IsClosed returns true for a closing leg that realized profit.
func (t Trade) IsClosed() bool {
	return t.Direction == DirectionOut && !t.IsDeposit()
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() Trade {
	t.StopLoss = cloneFloat(t.StopLoss)
	t.TakeProfit = cloneFloat(t.TakeProfit)
	t.Balance = cloneFloat(t.Balance)
	return t
}

// CloneTrades returns a deep copy of the trades.
func CloneTrades(trades []Trade) []Trade {
	if trades == nil {
		return nil
	}
	clones := make([]Trade, len(trades))
	for i, trade := range trades {
		clones[i] = trade.Clone()
	}
	return clones
}

// ClosedTrades returns the closing legs in file order.
func ClosedTrades(trades []Trade) []Trade {
	var closed []Trade
	for _, trade := range trades {
		if trade.IsClosed() {
			closed = append(closed, trade)
		}
	}
	return closed
}

// SortedByTime returns a copy of the trades stable-sorted by OpenTime.
func SortedByTime(trades []Trade) []Trade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a Trade, b Trade) int {
		return a.OpenTime.Compare(b.OpenTime)
	})
	return sorted
}

// Float returns a pointer to a copy of value.
func Float(value float64) *float64 {
	return &value
}

// Diagnostics counts the recoverable problems found while parsing a sheet.
type Diagnostics struct {
	// SkippedRows is the number of non-empty rows that were not turned into trades.
	SkippedRows int `json:"skipped_rows"`
	// FallbackTimes is the number of trades whose time could not be parsed.
	FallbackTimes int `json:"fallback_times"`
	// CoercedNumbers is the number of numeric cells that could not be parsed and were read as 0.
	CoercedNumbers int `json:"coerced_numbers"`
}

// IsZero returns true if no problems were recorded.
func (d Diagnostics) IsZero() bool {
	return d == Diagnostics{}
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	return Float(*value)
}
