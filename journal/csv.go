package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"id", "date", "symbol", "direction", "status",
	"entry_price", "exit_price", "stop_loss", "position_size",
	"pnl_points", "usd_pnl", "risk_reward",
	"instrument_id", "account_id", "strategy_id", "notes", "images",
}

// WriteCSV writes entries as CSV with a header row. Missing optional numbers
// are empty cells; images are joined with ';'.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		err := cw.Write([]string{
			e.ID,
			time.UnixMilli(e.Date).UTC().Format(time.RFC3339),
			e.Symbol,
			string(e.Direction),
			string(e.Status),
			f(e.EntryPrice),
			opt(e.ExitPrice),
			opt(e.StopLoss),
			opt(e.PositionSize),
			opt(e.PnL),
			opt(e.UsdPnL),
			opt(e.RiskReward),
			e.InstrumentID,
			e.AccountID,
			e.StrategyID,
			e.Notes,
			strings.Join(e.Images, ";"),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func opt(p *float64) string {
	if !isNum(p) {
		return ""
	}
	return f(*p)
}
