package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatEntryOrg renders an entry as an Org-mode block for pasting into a
// notes file. Structured fields go in the PROPERTIES drawer; the narrative
// headings are left for the trader to fill in.
func FormatEntryOrg(e Entry) string {
	heading := fmt.Sprintf("** %s %s %s (%s)", e.Symbol, e.Direction, e.Status, shortID(e.ID))
	date := time.UnixMilli(e.Date).UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", e.ID))
	b.WriteString(fmt.Sprintf(":DATE: %s\n", date))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", e.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", e.Direction))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", e.Status))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %s\n", num(&e.EntryPrice)))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %s\n", num(e.ExitPrice)))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %s\n", num(e.StopLoss)))
	b.WriteString(fmt.Sprintf(":SIZE: %s\n", num(e.PositionSize)))
	b.WriteString(fmt.Sprintf(":PNL_POINTS: %s\n", num(e.PnL)))
	b.WriteString(fmt.Sprintf(":PNL_USD: %s\n", money(e.UsdPnL)))
	b.WriteString(fmt.Sprintf(":RR: %s\n", money(e.RiskReward)))
	if e.InstrumentID != "" {
		b.WriteString(fmt.Sprintf(":INSTRUMENT_ID: %s\n", e.InstrumentID))
	}
	if e.AccountID != "" {
		b.WriteString(fmt.Sprintf(":ACCOUNT_ID: %s\n", e.AccountID))
	}
	if e.StrategyID != "" {
		b.WriteString(fmt.Sprintf(":STRATEGY_ID: %s\n", e.StrategyID))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- ")
	b.WriteString(e.Notes)
	b.WriteString("\n")
	for _, img := range e.Images {
		b.WriteString(fmt.Sprintf("[[file:%s]]\n", img))
	}

	return b.String()
}

// FormatEntriesOrg renders multiple entries separated by blank lines.
func FormatEntriesOrg(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatEntryOrg(e))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}

func num(p *float64) string {
	if !isNum(p) {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}

func money(p *float64) string {
	if !isNum(p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}
