// Copyright 2026 Peter Edge
//
// All rights reserved.

package ledger

import (
	"slices"
	"time"
)

// EquityPoint is the account balance at a point in time.
type EquityPoint struct {
	// Time is the time of the balance.
	Time time.Time `json:"time"`
	// Balance is the account balance.
	Balance float64 `json:"balance"`
}

// Equity is the reconciled equity series of a ledger.
type Equity struct {
	// InitialBalance is the balance before the first trade.
	InitialBalance float64
	// Points are sorted by time, with file order preserved for ties.
	Points []EquityPoint
	// Synthesized is true when the points were built from cumulative profit
	// rather than copied from source balances.
	Synthesized bool
}

// Balances returns the balance of every point in order.
func (e Equity) Balances() []float64 {
	balances := make([]float64, len(e.Points))
	for i, point := range e.Points {
		balances[i] = point.Balance
	}
	return balances
}

// FinalBalance returns the balance of the last point, or the initial balance
// if there are no points.
func (e Equity) FinalBalance() float64 {
	if len(e.Points) == 0 {
		return e.InitialBalance
	}
	return e.Points[len(e.Points)-1].Balance
}

// Clone returns a deep copy of the equity series.
func (e Equity) Clone() Equity {
	e.Points = slices.Clone(e.Points)
	return e
}

// ReconcileOptions configures Reconcile.
type ReconcileOptions struct {
	// InitialCapital is added to the initial balance and to every point when
	// the ledger has no deposit row, for sources that report profit relative
	// to zero.
	InitialCapital float64
}

// Reconcile derives the equity series from the trades.
//
// If every trade carries a balance, the series is those balances sorted by
// time, offset by InitialCapital when there is no deposit row. Otherwise the series is synthesized by accumulating the profit of
// each closing leg onto the initial balance in file order.
func Reconcile(trades []Trade, options ReconcileOptions) Equity {
	if len(trades) == 0 {
		return Equity{}
	}
	if allHaveBalance(trades) {
		return reconcileFromBalances(trades, options)
	}
	return synthesize(trades, options)
}

func reconcileFromBalances(trades []Trade, options ReconcileOptions) Equity {
	// Sort a copy so ties keep file order, then read balances from it.
	sorted := SortedByTime(trades)
	var offset float64
	deposit, hasDeposit := firstDeposit(trades)
	if !hasDeposit {
		offset = options.InitialCapital
	}
	points := make([]EquityPoint, 0, len(sorted))
	for _, trade := range sorted {
		points = append(points, EquityPoint{
			Time:    trade.OpenTime,
			Balance: *trade.Balance + offset,
		})
	}
	initialBalance := *sorted[0].Balance - sorted[0].Profit + offset
	if hasDeposit {
		initialBalance = *deposit.Balance
	}
	return Equity{
		InitialBalance: initialBalance,
		Points:         points,
	}
}

func synthesize(trades []Trade, options ReconcileOptions) Equity {
	var initialBalance float64
	if deposit, ok := firstDeposit(trades); ok {
		initialBalance = *deposit.Balance
	} else {
		// Back out the first known balance by its own profit.
		for _, trade := range trades {
			if trade.Balance != nil {
				initialBalance = *trade.Balance - trade.Profit
				break
			}
		}
		initialBalance += options.InitialCapital
	}
	var points []EquityPoint
	running := initialBalance
	for _, trade := range trades {
		if !trade.IsClosed() {
			continue
		}
		running += trade.Profit
		points = append(points, EquityPoint{
			Time:    trade.OpenTime,
			Balance: running,
		})
	}
	return Equity{
		InitialBalance: initialBalance,
		Points:         points,
		Synthesized:    true,
	}
}

func allHaveBalance(trades []Trade) bool {
	for _, trade := range trades {
		if trade.Balance == nil {
			return false
		}
	}
	return true
}

func firstDeposit(trades []Trade) (Trade, bool) {
	for _, trade := range trades {
		if trade.IsDeposit() && trade.Balance != nil {
			return trade, true
		}
	}
	return Trade{}, false
}
