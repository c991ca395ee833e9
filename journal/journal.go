// Package journal keeps the trade log: entries, the instruments and accounts
// they reference, and the settlement of realized P&L into account balances.
package journal

import (
	"math"
	"time"
)

type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

func (d Direction) Valid() bool { return d == Long || d == Short }

type Status string

const (
	Open   Status = "Open"
	Closed Status = "Closed"
	Win    Status = "Win"
	Loss   Status = "Loss"
)

func (s Status) Valid() bool {
	switch s {
	case Open, Closed, Win, Loss:
		return true
	}
	return false
}

// Settles reports whether an entry in this status books its P&L to an account.
// Only Closed, Win and Loss do; Open never does.
func (s Status) Settles() bool {
	return s == Closed || s == Win || s == Loss
}

// Entry is one trade in the journal. Optional numbers are pointers; nil means
// the value was never given. UsdPnL and RiskReward are derived and are
// recomputed on every write.
type Entry struct {
	ID           string    `json:"id"`
	Date         int64     `json:"date"` // epoch millis
	Symbol       string    `json:"symbol"`
	InstrumentID string    `json:"instrumentId,omitempty"`
	AccountID    string    `json:"accountId,omitempty"`
	StrategyID   string    `json:"strategyId,omitempty"`
	Direction    Direction `json:"direction"`
	EntryPrice   float64   `json:"entryPrice"`
	ExitPrice    *float64  `json:"exitPrice,omitempty"`
	StopLoss     *float64  `json:"stopLoss,omitempty"`
	PositionSize *float64  `json:"positionSize,omitempty"`
	Status       Status    `json:"status"`
	PnL          *float64  `json:"pnl,omitempty"` // points
	UsdPnL       *float64  `json:"usdPnl,omitempty"`
	RiskReward   *float64  `json:"riskReward,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Images       []string  `json:"imageFileNames"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Time returns the trade date as a time.Time in loc.
func (e Entry) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Date).In(loc)
}

// Instrument maps a traded contract to the USD value of one point.
type Instrument struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PointValueUSD float64   `json:"pointValueUSD"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Account holds a running USD balance fed by settled entries.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Strategy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Float returns a pointer to v, for filling optional fields.
func Float(v float64) *float64 { return &v }

func isNum(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
