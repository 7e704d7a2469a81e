// Copyright 2026 Peter Edge
//
// All rights reserved.

package metrics

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// UnboundedDisplay is the display value of an unbounded profit factor.
const UnboundedDisplay = "∞"

// Entry is one named value of the display form of a Summary.
//
// Value is a float64, an int, or a string.
type Entry struct {
	Key   string
	Value any
}

// String formats the value for tables.
func (e Entry) String() string {
	return FormatValue(e.Value)
}

// FormatValue formats a display value for tables.
func FormatValue(value any) string {
	switch typedValue := value.(type) {
	case float64:
		return strconv.FormatFloat(typedValue, 'f', 2, 64)
	case int:
		return strconv.Itoa(typedValue)
	case string:
		return typedValue
	default:
		return ""
	}
}

// DisplayKeys are the display keys in display order.
var DisplayKeys = []string{
	"Initial Balance",
	"Final Balance",
	"Total Net Profit",
	"Gross Profit",
	"Gross Loss",
	"Profit Factor",
	"Expected Payoff",
	"Recovery Factor",
	"Sharpe Ratio",
	"Maximal Drawdown",
	"Relative Drawdown",
	"Total Trades",
	"Profit Trades",
	"Loss Trades",
	"Win Rate",
	"Average Profit Trade",
	"Average Loss Trade",
	"Largest Profit Trade",
	"Largest Loss Trade",
	"Maximum Consecutive Wins",
	"Maximum Consecutive Losses",
	"Long Trades",
	"Short Trades",
	"Total Commission",
	"Total Swap",
	"Trade Quality Score",
}

// Entries returns the display form of the summary in DisplayKeys order.
//
// Currency values, ratios, and percentages are rounded to two decimals.
func (s Summary) Entries() []Entry {
	var profitFactor any = round(s.ProfitFactor)
	if s.ProfitFactorIsUnbounded {
		profitFactor = UnboundedDisplay
	}
	values := []any{
		round(s.InitialBalance),
		round(s.FinalBalance),
		round(s.NetProfit),
		round(s.GrossProfit),
		round(s.GrossLoss),
		profitFactor,
		round(s.ExpectedPayoff),
		round(s.RecoveryFactor),
		round(s.SharpeRatio),
		round(s.Drawdown.MaxDrawdown),
		round(s.Drawdown.RelativePercent),
		s.TotalTrades,
		s.ProfitTrades,
		s.LossTrades,
		round(s.WinRate),
		round(s.AverageProfit),
		round(s.AverageLoss),
		round(s.LargestProfit),
		round(s.LargestLoss),
		s.MaxConsecutiveWins,
		s.MaxConsecutiveLosses,
		s.LongTrades,
		s.ShortTrades,
		round(s.TotalCommission),
		round(s.TotalSwap),
		round(s.QualityScore),
	}
	entries := make([]Entry, len(DisplayKeys))
	for i, key := range DisplayKeys {
		entries[i] = Entry{Key: key, Value: values[i]}
	}
	return entries
}

// Map returns the display form of the summary keyed by display key.
func (s Summary) Map() map[string]any {
	entries := s.Entries()
	m := make(map[string]any, len(entries))
	for _, entry := range entries {
		m[entry.Key] = entry.Value
	}
	return m
}

func round(value float64) float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
