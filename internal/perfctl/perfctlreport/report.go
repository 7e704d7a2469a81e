// Copyright 2026 Peter Edge
//
// All rights reserved.

package perfctlreport

import (
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"github.com/bufdev/perfctl/internal/pkg/aggregate"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/bufdev/perfctl/internal/pkg/sheetformat"
)

// TimeLayout is the layout used for times in CSV and table output.
const TimeLayout = "2006.01.02 15:04:05"

// TradeCSVHeaders are the trade CSV columns in their fixed order.
var TradeCSVHeaders = []string{
	"Time",
	"Deal",
	"Symbol",
	"Type",
	"Direction",
	"Volume",
	"Price",
	"Order",
	"Commission",
	"Swap",
	"Profit",
	"Balance",
	"Comment",
}

// Report is the immutable result of analyzing one file.
//
// Accessors return copies, so callers cannot change a Report.
type Report struct {
	source        Source
	fileName      string
	format        sheetformat.Format
	lowConfidence bool
	trades        []ledger.Trade
	equity        ledger.Equity
	summary       metrics.Summary
	monthly       []aggregate.Group
	bySymbol      []aggregate.Group
	diagnostics   ledger.Diagnostics
}

// Source returns the platform that produced the export.
func (r *Report) Source() Source { return r.source }

// FileName returns the base name of the analyzed file.
func (r *Report) FileName() string { return r.fileName }

// Format returns the detected format.
func (r *Report) Format() sheetformat.Format { return r.format }

// LowConfidence returns true when trades were read positionally without a header row.
func (r *Report) LowConfidence() bool { return r.lowConfidence }

// Trades returns the canonical trades in file order.
func (r *Report) Trades() []ledger.Trade { return ledger.CloneTrades(r.trades) }

// Equity returns the reconciled equity series.
func (r *Report) Equity() ledger.Equity { return r.equity.Clone() }

// Summary returns the computed statistics.
func (r *Report) Summary() metrics.Summary { return r.summary }

// Monthly returns the closed trades grouped by month, oldest first.
func (r *Report) Monthly() []aggregate.Group { return slices.Clone(r.monthly) }

// BySymbol returns the closed trades grouped by symbol, most profitable first.
func (r *Report) BySymbol() []aggregate.Group { return slices.Clone(r.bySymbol) }

// Diagnostics returns the counts of recovered parse problems.
func (r *Report) Diagnostics() ledger.Diagnostics { return r.diagnostics }

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	points := r.equity.Points
	if points == nil {
		points = []ledger.EquityPoint{}
	}
	return json.Marshal(externalReport{
		Source:        string(r.source),
		FileName:      r.fileName,
		Format:        r.format.String(),
		LowConfidence: r.lowConfidence,
		Trades:        NewExternalTrades(r.trades),
		Equity: externalEquity{
			InitialBalance: r.equity.InitialBalance,
			Points:         points,
		},
		Summary:     r.summary.Map(),
		Monthly:     nonNilGroups(r.monthly),
		BySymbol:    nonNilGroups(r.bySymbol),
		Diagnostics: r.diagnostics,
	})
}

// TradeToCSVRow converts a trade to a row in TradeCSVHeaders order.
func TradeToCSVRow(trade ledger.Trade) []string {
	balance := ""
	if trade.Balance != nil {
		balance = formatFloat(*trade.Balance)
	}
	return []string{
		trade.OpenTime.Format(TimeLayout),
		trade.DealID,
		trade.Symbol,
		trade.Type,
		trade.Direction,
		formatFloat(trade.VolumeLots),
		formatFloat(trade.PriceOpen),
		trade.Order,
		formatFloat(trade.Commission),
		formatFloat(trade.Swap),
		formatFloat(trade.Profit),
		balance,
		trade.Comment,
	}
}

// SummaryHeaders are the columns of the summary table.
var SummaryHeaders = []string{"Metric", "Value"}

// SummaryToRows converts the summary to display rows.
func SummaryToRows(summary metrics.Summary) [][]string {
	entries := summary.Entries()
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Key, entry.String()})
	}
	return rows
}

// EquityHeaders are the columns of the equity table.
var EquityHeaders = []string{"Time", "Balance"}

// EquityPointToRow converts an equity point to a row in EquityHeaders order.
func EquityPointToRow(point ledger.EquityPoint) []string {
	return []string{
		point.Time.Format(TimeLayout),
		strconv.FormatFloat(point.Balance, 'f', 2, 64),
	}
}

// GroupHeaders returns the columns of an aggregate table keyed by keyName.
func GroupHeaders(keyName string) []string {
	return []string{keyName, "Trades", "Wins", "Win Rate", "Profit", "Volume"}
}

// GroupToRow converts an aggregate group to a row in GroupHeaders order.
func GroupToRow(group aggregate.Group) []string {
	winRate := 0.0
	if group.TradeCount > 0 {
		winRate = float64(group.WinCount) / float64(group.TradeCount) * 100
	}
	return []string{
		group.Key,
		strconv.Itoa(group.TradeCount),
		strconv.Itoa(group.WinCount),
		strconv.FormatFloat(winRate, 'f', 2, 64),
		strconv.FormatFloat(group.TotalProfit, 'f', 2, 64),
		formatFloat(group.TotalVolume),
	}
}

// GroupTotalsRow sums the groups into a totals row in GroupHeaders order.
func GroupTotalsRow(groups []aggregate.Group) []string {
	total := aggregate.Group{Key: "TOTAL"}
	for _, group := range groups {
		total.TradeCount += group.TradeCount
		total.WinCount += group.WinCount
		total.TotalProfit += group.TotalProfit
		total.TotalVolume += group.TotalVolume
	}
	return GroupToRow(total)
}

type externalReport struct {
	Source        string             `json:"source"`
	FileName      string             `json:"file_name"`
	Format        string             `json:"format"`
	LowConfidence bool               `json:"low_confidence"`
	Trades        []ExternalTrade    `json:"trades"`
	Equity        externalEquity     `json:"equity"`
	Summary       map[string]any     `json:"summary"`
	Monthly       []aggregate.Group  `json:"monthly"`
	BySymbol      []aggregate.Group  `json:"by_symbol"`
	Diagnostics   ledger.Diagnostics `json:"diagnostics"`
}

type externalEquity struct {
	InitialBalance float64              `json:"initial_balance"`
	Points         []ledger.EquityPoint `json:"points"`
}

// ExternalTrade is the JSON form of a trade.
type ExternalTrade struct {
	Time         time.Time `json:"time"`
	Deal         string    `json:"deal"`
	Order        string    `json:"order"`
	Symbol       string    `json:"symbol"`
	Type         string    `json:"type"`
	Direction    string    `json:"direction"`
	Side         string    `json:"side"`
	Volume       float64   `json:"volume"`
	Price        float64   `json:"price"`
	StopLoss     *float64  `json:"stop_loss"`
	TakeProfit   *float64  `json:"take_profit"`
	Commission   float64   `json:"commission"`
	Swap         float64   `json:"swap"`
	Profit       float64   `json:"profit"`
	Balance      *float64  `json:"balance"`
	Comment      string    `json:"comment"`
	TimeFallback bool      `json:"time_fallback,omitempty"`
}

// NewExternalTrades converts trades to their JSON form. The result is never nil.
func NewExternalTrades(trades []ledger.Trade) []ExternalTrade {
	externalTrades := make([]ExternalTrade, 0, len(trades))
	for _, trade := range trades {
		externalTrades = append(externalTrades, NewExternalTrade(trade))
	}
	return externalTrades
}

// NewExternalTrade converts a trade to its JSON form.
func NewExternalTrade(trade ledger.Trade) ExternalTrade {
	return ExternalTrade{
		Time:         trade.OpenTime,
		Deal:         trade.DealID,
		Order:        trade.Order,
		Symbol:       trade.Symbol,
		Type:         trade.Type,
		Direction:    trade.Direction,
		Side:         trade.Side,
		Volume:       trade.VolumeLots,
		Price:        trade.PriceOpen,
		StopLoss:     trade.StopLoss,
		TakeProfit:   trade.TakeProfit,
		Commission:   trade.Commission,
		Swap:         trade.Swap,
		Profit:       trade.Profit,
		Balance:      trade.Balance,
		Comment:      trade.Comment,
		TimeFallback: trade.TimeFallback,
	}
}

func nonNilGroups(groups []aggregate.Group) []aggregate.Group {
	if groups == nil {
		return []aggregate.Group{}
	}
	return groups
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
