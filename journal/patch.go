package journal

import "fmt"

// Draft is the input for a new entry. Images holds raw image payloads; they
// are saved through the ImageStore and replaced by filenames. Image is the
// single-image form older clients send.
type Draft struct {
	Entry
	Images []string `json:"images,omitempty"`
	Image  string   `json:"image,omitempty"`
}

func (d Draft) payloads() []string {
	out := make([]string, 0, len(d.Images)+1)
	if d.Image != "" {
		out = append(out, d.Image)
	}
	for _, p := range d.Images {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Patch changes an existing entry. Nil fields are left as they are; an empty
// string clears an id reference. Optional numbers are cleared by naming them
// in Unset (json names: exitPrice, stopLoss, positionSize, pnl).
//
// UsdPnL and RiskReward are accepted so clients can echo a whole entry back,
// but they are always recomputed.
type Patch struct {
	Date         *int64     `json:"date,omitempty"`
	Symbol       *string    `json:"symbol,omitempty"`
	InstrumentID *string    `json:"instrumentId,omitempty"`
	AccountID    *string    `json:"accountId,omitempty"`
	StrategyID   *string    `json:"strategyId,omitempty"`
	Direction    *Direction `json:"direction,omitempty"`
	EntryPrice   *float64   `json:"entryPrice,omitempty"`
	ExitPrice    *float64   `json:"exitPrice,omitempty"`
	StopLoss     *float64   `json:"stopLoss,omitempty"`
	PositionSize *float64   `json:"positionSize,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	PnL          *float64   `json:"pnl,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	UsdPnL       *float64   `json:"usdPnl,omitempty"`
	RiskReward   *float64   `json:"riskReward,omitempty"`

	Unset []string `json:"unset,omitempty"`

	Images               []string `json:"images,omitempty"`
	RemoveImageFileNames []string `json:"removeImageFileNames,omitempty"`
}

func (p Patch) validate() error {
	if p.Direction != nil && !p.Direction.Valid() {
		return fmt.Errorf("%w: direction %q", ErrInvalidInput, *p.Direction)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, *p.Status)
	}
	for _, f := range p.Unset {
		switch f {
		case "exitPrice", "stopLoss", "positionSize", "pnl":
		default:
			return fmt.Errorf("%w: cannot unset %q", ErrInvalidInput, f)
		}
	}
	return nil
}

// Apply overlays p on e. Image fields and derived fields are not touched.
func (p Patch) Apply(e Entry) Entry {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Symbol != nil {
		e.Symbol = *p.Symbol
	}
	if p.InstrumentID != nil {
		e.InstrumentID = *p.InstrumentID
	}
	if p.AccountID != nil {
		e.AccountID = *p.AccountID
	}
	if p.StrategyID != nil {
		e.StrategyID = *p.StrategyID
	}
	if p.Direction != nil {
		e.Direction = *p.Direction
	}
	if p.EntryPrice != nil {
		e.EntryPrice = *p.EntryPrice
	}
	if p.ExitPrice != nil {
		e.ExitPrice = Float(*p.ExitPrice)
	}
	if p.StopLoss != nil {
		e.StopLoss = Float(*p.StopLoss)
	}
	if p.PositionSize != nil {
		e.PositionSize = Float(*p.PositionSize)
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.PnL != nil {
		e.PnL = Float(*p.PnL)
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}

	for _, f := range p.Unset {
		switch f {
		case "exitPrice":
			e.ExitPrice = nil
		case "stopLoss":
			e.StopLoss = nil
		case "positionSize":
			e.PositionSize = nil
		case "pnl":
			e.PnL = nil
		}
	}
	return e
}
