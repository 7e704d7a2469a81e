// Copyright 2026 Peter Edge
//
// All rights reserved.

package ledger

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

func TestReconcileFromBalances(t *testing.T) {
	t.Parallel()
	trades := []Trade{
		{OpenTime: baseTime, Type: TypeBalance, Balance: Float(10000)},
		{OpenTime: baseTime.Add(2 * time.Hour), Type: "sell", Direction: DirectionOut, Profit: -300, Balance: Float(9900)},
		// Out of order in the file, sorted by time in the series.
		{OpenTime: baseTime.Add(time.Hour), Type: "buy", Direction: DirectionOut, Profit: 200, Balance: Float(10200)},
		// Same time as the previous row in sort order, file order is kept.
		{OpenTime: baseTime.Add(2 * time.Hour), Type: "buy", Direction: DirectionIn, Balance: Float(9900)},
	}
	equity := Reconcile(trades, ReconcileOptions{})
	require.False(t, equity.Synthesized)
	require.Equal(t, 10000.0, equity.InitialBalance)
	expected := []EquityPoint{
		{Time: baseTime, Balance: 10000},
		{Time: baseTime.Add(time.Hour), Balance: 10200},
		{Time: baseTime.Add(2 * time.Hour), Balance: 9900},
		{Time: baseTime.Add(2 * time.Hour), Balance: 9900},
	}
	require.True(t, cmp.Equal(expected, equity.Points), cmp.Diff(expected, equity.Points))
	require.Equal(t, 9900.0, equity.FinalBalance())
}

func TestReconcileFromBalancesWithoutDeposit(t *testing.T) {
	t.Parallel()
	trades := []Trade{
		{OpenTime: baseTime, Type: "buy", Direction: DirectionOut, Profit: 50, Balance: Float(1050)},
		{OpenTime: baseTime.Add(time.Hour), Type: "sell", Direction: DirectionOut, Profit: -25, Balance: Float(1025)},
	}
	equity := Reconcile(trades, ReconcileOptions{})
	require.Equal(t, 1000.0, equity.InitialBalance)
	require.Equal(t, []float64{1050, 1025}, equity.Balances())
}

func TestReconcileFromBalancesInitialCapital(t *testing.T) {
	t.Parallel()
	// TradingView exits only: every row has a cumulative balance from zero.
	trades := []Trade{
		{OpenTime: baseTime, Type: "Exit Long", Direction: DirectionOut, Profit: 100, Balance: Float(100)},
		{OpenTime: baseTime.Add(time.Hour), Type: "Exit Short", Direction: DirectionOut, Profit: -50, Balance: Float(50)},
	}
	equity := Reconcile(trades, ReconcileOptions{InitialCapital: 10000})
	require.False(t, equity.Synthesized)
	require.Equal(t, 10000.0, equity.InitialBalance)
	require.Equal(t, []float64{10100, 10050}, equity.Balances())

	// A deposit row sets the initial balance, so the capital is not added.
	withDeposit := append([]Trade{{OpenTime: baseTime.Add(-time.Hour), Type: TypeBalance, Balance: Float(0)}}, trades...)
	equity = Reconcile(withDeposit, ReconcileOptions{InitialCapital: 10000})
	require.Equal(t, 0.0, equity.InitialBalance)
	require.Equal(t, []float64{0, 100, 50}, equity.Balances())
}

func TestReconcileSynthesized(t *testing.T) {
	t.Parallel()
	// TradingView style: entries carry no balance, exits carry cumulative profit.
	trades := []Trade{
		{OpenTime: baseTime, Type: "Entry Long", Direction: DirectionIn},
		{OpenTime: baseTime.Add(time.Hour), Type: "Exit Long", Direction: DirectionOut, Profit: 100, Balance: Float(100)},
		{OpenTime: baseTime.Add(2 * time.Hour), Type: "Entry Short", Direction: DirectionIn},
		{OpenTime: baseTime.Add(3 * time.Hour), Type: "Exit Short", Direction: DirectionOut, Profit: -40, Balance: Float(60)},
	}
	equity := Reconcile(trades, ReconcileOptions{})
	require.True(t, equity.Synthesized)
	require.Equal(t, 0.0, equity.InitialBalance)
	require.Equal(t, []float64{100, 60}, equity.Balances())

	equity = Reconcile(trades, ReconcileOptions{InitialCapital: 5000})
	require.Equal(t, 5000.0, equity.InitialBalance)
	require.Equal(t, []float64{5100, 5060}, equity.Balances())
}

func TestReconcileSynthesizedWithDeposit(t *testing.T) {
	t.Parallel()
	// A partial MetaTrader export where one deal is missing its balance.
	trades := []Trade{
		{OpenTime: baseTime, Type: TypeBalance, Balance: Float(2000)},
		{OpenTime: baseTime.Add(time.Hour), Type: "buy", Direction: DirectionIn},
		{OpenTime: baseTime.Add(2 * time.Hour), Type: "sell", Direction: DirectionOut, Profit: 75},
	}
	equity := Reconcile(trades, ReconcileOptions{InitialCapital: 5000})
	require.True(t, equity.Synthesized)
	require.Equal(t, 2000.0, equity.InitialBalance)
	require.Equal(t, []float64{2075}, equity.Balances())
}

func TestReconcileEmpty(t *testing.T) {
	t.Parallel()
	equity := Reconcile(nil, ReconcileOptions{InitialCapital: 100})
	require.Empty(t, equity.Points)
	require.Zero(t, equity.InitialBalance)
	require.Zero(t, equity.FinalBalance())
}

func TestTradeClassification(t *testing.T) {
	t.Parallel()
	require.True(t, Trade{Type: "Balance"}.IsDeposit())
	require.True(t, Trade{Type: " "}.IsDeposit())
	require.False(t, Trade{Type: "buy"}.IsDeposit())
	require.True(t, Trade{Type: "buy", Direction: DirectionOut}.IsClosed())
	require.False(t, Trade{Type: "balance", Direction: DirectionOut}.IsClosed())
	require.False(t, Trade{Type: "buy", Direction: DirectionIn}.IsClosed())
}

func TestCloneTrades(t *testing.T) {
	t.Parallel()
	trades := []Trade{{Type: "buy", Balance: Float(1), StopLoss: Float(2)}}
	clones := CloneTrades(trades)
	*clones[0].Balance = 99
	*clones[0].StopLoss = 99
	require.Equal(t, 1.0, *trades[0].Balance)
	require.Equal(t, 2.0, *trades[0].StopLoss)
	require.Nil(t, CloneTrades(nil))
}
