// Copyright 2026 Peter Edge
//
// All rights reserved.

package metrics

// Drawdown is the result of folding an equity series.
//
// 0 <= MaxDrawdown <= PeakAtTrough whenever PeakAtTrough is positive.
type Drawdown struct {
	// Peak is the highest balance seen.
	Peak float64 `json:"peak"`
	// MaxDrawdown is the largest decline from a running peak, in currency.
	MaxDrawdown float64 `json:"max_drawdown"`
	// PeakAtTrough is the running peak in effect at the deepest trough.
	PeakAtTrough float64 `json:"peak_at_trough"`
	// RelativePercent is MaxDrawdown as a percentage of PeakAtTrough.
	RelativePercent float64 `json:"relative_percent"`
}

// ComputeDrawdown folds the balances in order into a Drawdown.
func ComputeDrawdown(balances []float64) Drawdown {
	if len(balances) == 0 {
		return Drawdown{}
	}
	drawdown := Drawdown{Peak: balances[0], PeakAtTrough: balances[0]}
	for _, balance := range balances[1:] {
		drawdown = drawdown.next(balance)
	}
	if drawdown.MaxDrawdown > 0 && drawdown.PeakAtTrough > 0 {
		drawdown.RelativePercent = drawdown.MaxDrawdown / drawdown.PeakAtTrough * 100
	}
	return drawdown
}

// next returns the fold state after observing balance.
func (d Drawdown) next(balance float64) Drawdown {
	if balance > d.Peak {
		d.Peak = balance
	}
	if decline := d.Peak - balance; decline > d.MaxDrawdown {
		d.MaxDrawdown = decline
		d.PeakAtTrough = d.Peak
	}
	return d
}
