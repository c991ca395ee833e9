package journal

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to cents.
func Round2(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Points returns the P&L of e in instrument points. An explicit PnL wins;
// otherwise it is derived from entry and exit by direction. Missing data
// yields 0.
func Points(e Entry) float64 {
	if isNum(e.PnL) {
		return *e.PnL
	}
	if finite(e.EntryPrice) && isNum(e.ExitPrice) {
		if e.Direction == Long {
			return *e.ExitPrice - e.EntryPrice
		}
		return e.EntryPrice - *e.ExitPrice
	}
	return 0
}

// ComputeUsdPnl converts e's points to USD using the instrument's point value
// and the position size (default 1). Without an instrument the result is 0.
func ComputeUsdPnl(e Entry, inst *Instrument) float64 {
	if inst == nil {
		return 0
	}

	size := 1.0
	if isNum(e.PositionSize) {
		size = *e.PositionSize
	}

	usd := Points(e) * inst.PointValueUSD * size
	if !finite(usd) {
		return 0
	}
	usd = Round2(usd)
	if usd == 0 {
		// avoid -0 in stored documents
		return 0
	}
	return usd
}

// ComputeRiskReward returns |exit-entry| / |entry-stop| rounded to 2 places.
// It is nil when any price is missing or the risk is zero.
func ComputeRiskReward(e Entry) *float64 {
	if !finite(e.EntryPrice) || !isNum(e.ExitPrice) || !isNum(e.StopLoss) {
		return nil
	}
	profit := math.Abs(*e.ExitPrice - e.EntryPrice)
	risk := math.Abs(e.EntryPrice - *e.StopLoss)
	if risk <= 0 {
		return nil
	}
	rr := Round2(profit / risk)
	if !finite(rr) {
		return nil
	}
	return &rr
}

// Derive overwrites the derived fields of e.
func Derive(e Entry, inst *Instrument) Entry {
	usd := ComputeUsdPnl(e, inst)
	e.UsdPnL = &usd
	e.RiskReward = ComputeRiskReward(e)
	return e
}

// IsSettled reports whether e's P&L belongs in its account balance: a
// settling status, an exit price and an account.
func IsSettled(e Entry) bool {
	return e.Status.Settles() && isNum(e.ExitPrice) && e.AccountID != ""
}
