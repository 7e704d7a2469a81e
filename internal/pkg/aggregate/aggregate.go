// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package aggregate groups closed trades by calendar month and by symbol.
package aggregate

import (
	"cmp"
	"slices"

	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/shopspring/decimal"
)

// MonthLayout is the month group key layout. It sorts chronologically as a string.
const MonthLayout = "2006-01"

// Group is the aggregate of the closed trades sharing a key.
type Group struct {
	// Key is the month ("2006-01") or the symbol.
	Key string `json:"key"`
	// TradeCount is the number of closed trades.
	TradeCount int `json:"trade_count"`
	// WinCount is the number of closed trades with positive profit.
	WinCount int `json:"win_count"`
	// TotalProfit is the sum of profit.
	TotalProfit float64 `json:"total_profit"`
	// TotalVolume is the sum of traded volume.
	TotalVolume float64 `json:"total_volume"`
}

// Monthly groups closed trades by the month of their time, oldest first.
func Monthly(trades []ledger.Trade) []Group {
	groups := groupBy(trades, func(trade ledger.Trade) string {
		return trade.OpenTime.Format(MonthLayout)
	})
	slices.SortFunc(groups, func(a Group, b Group) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return groups
}

// BySymbol groups closed trades by symbol, most profitable first. Ties are
// ordered by symbol.
func BySymbol(trades []ledger.Trade) []Group {
	groups := groupBy(trades, func(trade ledger.Trade) string {
		return trade.Symbol
	})
	slices.SortFunc(groups, func(a Group, b Group) int {
		if c := cmp.Compare(b.TotalProfit, a.TotalProfit); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return groups
}

type accumulator struct {
	key         string
	tradeCount  int
	winCount    int
	totalProfit decimal.Decimal
	totalVolume decimal.Decimal
}

// groupBy sums with decimals so per-group totals add up to the overall
// closed profit without drift from summation order.
func groupBy(trades []ledger.Trade, keyFunc func(ledger.Trade) string) []Group {
	var accumulators []*accumulator
	keyToAccumulator := make(map[string]*accumulator)
	for _, trade := range ledger.ClosedTrades(trades) {
		key := keyFunc(trade)
		acc, ok := keyToAccumulator[key]
		if !ok {
			acc = &accumulator{key: key}
			keyToAccumulator[key] = acc
			accumulators = append(accumulators, acc)
		}
		acc.tradeCount++
		if trade.Profit > 0 {
			acc.winCount++
		}
		acc.totalProfit = acc.totalProfit.Add(decimal.NewFromFloat(trade.Profit))
		acc.totalVolume = acc.totalVolume.Add(decimal.NewFromFloat(trade.VolumeLots))
	}
	groups := make([]Group, 0, len(accumulators))
	for _, acc := range accumulators {
		groups = append(groups, Group{
			Key:         acc.key,
			TradeCount:  acc.tradeCount,
			WinCount:    acc.winCount,
			TotalProfit: acc.totalProfit.InexactFloat64(),
			TotalVolume: acc.totalVolume.InexactFloat64(),
		})
	}
	return groups
}
