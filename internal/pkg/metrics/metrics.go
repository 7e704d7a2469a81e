// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package metrics computes performance and risk statistics from canonical
// trades and their reconciled equity series.
//
// Only closing legs that are not balance operations count as trades.
// Every statistic has a defined value on empty input, so Compute never
// returns NaN or an infinity.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/bufdev/perfctl/internal/pkg/ledger"
)

// ProfitFactorUnbounded is reported as the profit factor when there is
// profit but no loss.
const ProfitFactorUnbounded = 999.99

// DefaultAnnualizationPeriods annualizes the Sharpe ratio for daily returns.
const DefaultAnnualizationPeriods = 252

// ScoreWeights weights the components of the trade quality score.
type ScoreWeights struct {
	WinRate      float64
	ProfitFactor float64
	Recovery     float64
	Sharpe       float64
}

// DefaultScoreWeights weights every component equally.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		WinRate:      0.25,
		ProfitFactor: 0.25,
		Recovery:     0.25,
		Sharpe:       0.25,
	}
}

// Validate returns an error if a weight is negative or the weights do not sum to 1.
func (w ScoreWeights) Validate() error {
	if w.WinRate < 0 || w.ProfitFactor < 0 || w.Recovery < 0 || w.Sharpe < 0 {
		return errors.New("score weights must not be negative")
	}
	if sum := w.WinRate + w.ProfitFactor + w.Recovery + w.Sharpe; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1, got %v", sum)
	}
	return nil
}

// Options configures Compute.
type Options struct {
	// AnnualizationPeriods multiplies the Sharpe ratio by its square root.
	AnnualizationPeriods float64
	// ScoreWeights weights the trade quality score.
	ScoreWeights ScoreWeights
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		AnnualizationPeriods: DefaultAnnualizationPeriods,
		ScoreWeights:         DefaultScoreWeights(),
	}
}

// Summary holds the computed statistics.
type Summary struct {
	InitialBalance          float64  `json:"initial_balance"`
	FinalBalance            float64  `json:"final_balance"`
	NetProfit               float64  `json:"net_profit"`
	ClosedProfit            float64  `json:"closed_profit"`
	GrossProfit             float64  `json:"gross_profit"`
	GrossLoss               float64  `json:"gross_loss"`
	ProfitFactor            float64  `json:"profit_factor"`
	ProfitFactorIsUnbounded bool     `json:"profit_factor_is_unbounded"`
	ExpectedPayoff          float64  `json:"expected_payoff"`
	RecoveryFactor          float64  `json:"recovery_factor"`
	SharpeRatio             float64  `json:"sharpe_ratio"`
	Drawdown                Drawdown `json:"drawdown"`
	TotalTrades             int      `json:"total_trades"`
	ProfitTrades            int      `json:"profit_trades"`
	LossTrades              int      `json:"loss_trades"`
	// WinRate is a percentage in [0, 100].
	WinRate float64 `json:"win_rate"`
	// AverageProfit is the mean of the winning trades.
	AverageProfit float64 `json:"average_profit"`
	// AverageLoss is the mean of the losing trades, and is negative.
	AverageLoss          float64 `json:"average_loss"`
	LargestProfit        float64 `json:"largest_profit"`
	LargestLoss          float64 `json:"largest_loss"`
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	LongTrades           int     `json:"long_trades"`
	ShortTrades          int     `json:"short_trades"`
	TotalCommission      float64 `json:"total_commission"`
	TotalSwap            float64 `json:"total_swap"`
	// QualityScore is the composite trade quality score in [0, 100].
	QualityScore float64 `json:"quality_score"`
}

// Compute computes the summary of the trades and their equity series.
func Compute(trades []ledger.Trade, equity ledger.Equity, options Options) Summary {
	if options.AnnualizationPeriods <= 0 {
		options.AnnualizationPeriods = DefaultAnnualizationPeriods
	}
	balances := equity.Balances()
	summary := Summary{
		InitialBalance: equity.InitialBalance,
		FinalBalance:   equity.FinalBalance(),
		Drawdown:       ComputeDrawdown(balances),
		SharpeRatio:    SharpeRatio(balances, options.AnnualizationPeriods),
	}
	if len(equity.Points) > 0 {
		summary.NetProfit = summary.FinalBalance - summary.InitialBalance
	}
	// Commission and swap are charged on both legs.
	for _, trade := range trades {
		if trade.IsDeposit() {
			continue
		}
		summary.TotalCommission += trade.Commission
		summary.TotalSwap += trade.Swap
	}
	closed := ledger.ClosedTrades(trades)
	summary.TotalTrades = len(closed)
	for _, trade := range closed {
		summary.ClosedProfit += trade.Profit
		switch {
		case trade.Profit > 0:
			summary.ProfitTrades++
			summary.GrossProfit += trade.Profit
			summary.LargestProfit = max(summary.LargestProfit, trade.Profit)
		case trade.Profit < 0:
			summary.LossTrades++
			summary.GrossLoss -= trade.Profit
			summary.LargestLoss = min(summary.LargestLoss, trade.Profit)
		}
		switch trade.Side {
		case ledger.SideLong:
			summary.LongTrades++
		case ledger.SideShort:
			summary.ShortTrades++
		}
	}
	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.ProfitTrades) / float64(summary.TotalTrades) * 100
		summary.ExpectedPayoff = summary.ClosedProfit / float64(summary.TotalTrades)
	}
	if summary.ProfitTrades > 0 {
		summary.AverageProfit = summary.GrossProfit / float64(summary.ProfitTrades)
	}
	if summary.LossTrades > 0 {
		summary.AverageLoss = -summary.GrossLoss / float64(summary.LossTrades)
	}
	summary.ProfitFactor, summary.ProfitFactorIsUnbounded = ProfitFactor(summary.GrossProfit, summary.GrossLoss)
	if summary.Drawdown.MaxDrawdown > 0 {
		summary.RecoveryFactor = summary.NetProfit / summary.Drawdown.MaxDrawdown
	}
	summary.MaxConsecutiveWins, summary.MaxConsecutiveLosses = Streaks(ledger.SortedByTime(closed))
	summary.QualityScore = QualityScore(summary, options.ScoreWeights)
	return summary
}

// ProfitFactor returns gross profit over gross loss.
//
// It is 0 when both are 0, and ProfitFactorUnbounded with unbounded set
// when there is profit but no loss.
func ProfitFactor(grossProfit float64, grossLoss float64) (profitFactor float64, unbounded bool) {
	switch {
	case grossLoss == 0 && grossProfit == 0:
		return 0, false
	case grossLoss == 0:
		return ProfitFactorUnbounded, true
	default:
		return grossProfit / grossLoss, false
	}
}

// SharpeRatio returns mean(returns) / stddev(returns) * sqrt(periods), where
// returns are the successive fractional changes of the balances and stddev
// is the population standard deviation.
//
// Changes from a zero balance are skipped. The ratio is 0 when the standard
// deviation is 0.
func SharpeRatio(balances []float64, periods float64) float64 {
	var returns []float64
	for i := 1; i < len(balances); i++ {
		if balances[i-1] == 0 {
			continue
		}
		returns = append(returns, (balances[i]-balances[i-1])/balances[i-1])
	}
	if len(returns) == 0 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	var squares float64
	for _, r := range returns {
		squares += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(squares / float64(len(returns)))
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(periods)
}

// Streaks returns the longest runs of winning and losing trades in order.
//
// A zero-profit trade ends both runs.
func Streaks(trades []ledger.Trade) (maxWins int, maxLosses int) {
	var wins, losses int
	for _, trade := range trades {
		switch {
		case trade.Profit > 0:
			wins++
			losses = 0
		case trade.Profit < 0:
			losses++
			wins = 0
		default:
			wins = 0
			losses = 0
		}
		maxWins = max(maxWins, wins)
		maxLosses = max(maxLosses, losses)
	}
	return maxWins, maxLosses
}

// QualityScore blends win rate, profit factor, recovery factor, and Sharpe
// ratio into a score in [0, 100].
//
// Each component is clamped and normalized to [0, 1] first: win rate over
// 0..100, profit factor over 0..3, recovery factor over 0..5, and Sharpe
// ratio over 0..3.
func QualityScore(summary Summary, weights ScoreWeights) float64 {
	score := weights.WinRate*clamp(summary.WinRate, 0, 100)/100 +
		weights.ProfitFactor*clamp(summary.ProfitFactor, 0, 3)/3 +
		weights.Recovery*clamp(summary.RecoveryFactor, 0, 5)/5 +
		weights.Sharpe*clamp(summary.SharpeRatio, 0, 3)/3
	return clamp(score*100, 0, 100)
}

func clamp(value float64, low float64, high float64) float64 {
	return max(low, min(high, value))
}
