package cli

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/journal"
)

func newJournalCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Record and query trades",
		Long: `Record and query journal entries.

Settled entries (Closed, Win or Loss with an exit price and an account)
book their USD P&L to the account balance; edits and deletes reverse it.

Examples:
  candlewaker journal add --symbol ES --direction Long --entry 5000 --exit 5004 \
      --status Win --instrument <id> --account <id> --image chart.png
  candlewaker journal list --status Win,Loss --from 2024-05-01
  candlewaker journal update <id> --status Open --unset exitPrice
  candlewaker journal export --format org`,
	}

	cmd.AddCommand(
		newJournalListCmd(rc),
		newJournalShowCmd(rc),
		newJournalAddCmd(rc),
		newJournalUpdateCmd(rc),
		newJournalRmCmd(rc),
		newJournalImageCmd(rc),
		newJournalExportCmd(rc),
	)
	return cmd
}

type queryFlags struct {
	account, instrument, strategy string
	status                        string
	from, to                      string
	limit                         int
	asc                           bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.account, "account", "", "account id")
	cmd.Flags().StringVar(&f.instrument, "instrument", "", "instrument id")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "strategy id")
	cmd.Flags().StringVar(&f.status, "status", "", "comma separated statuses")
	cmd.Flags().StringVar(&f.from, "from", "", "earliest trade date")
	cmd.Flags().StringVar(&f.to, "to", "", "latest trade date")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "max entries (0 = all)")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "oldest first")
}

func (f *queryFlags) query() (journal.EntryQuery, error) {
	q := journal.EntryQuery{
		AccountID:    f.account,
		InstrumentID: f.instrument,
		StrategyID:   f.strategy,
		Limit:        f.limit,
		Ascending:    f.asc,
	}
	if f.status != "" {
		for _, s := range strings.Split(f.status, ",") {
			st := journal.Status(strings.TrimSpace(s))
			if !st.Valid() {
				return q, fmt.Errorf("unknown status %q", s)
			}
			q.Statuses = append(q.Statuses, st)
		}
	}
	var err error
	if f.from != "" {
		if q.From, err = parseDate(f.from); err != nil {
			return q, err
		}
	}
	if f.to != "" {
		if q.To, err = parseDate(f.to); err != nil {
			return q, err
		}
	}
	return q, nil
}

func printEntries(rc *RootConfig, cmd *cobra.Command, entries []journal.Entry) error {
	return rc.emit(cmd, entries, func(w io.Writer) {
		row(w, "ID", "DATE", "SYMBOL", "DIR", "STATUS", "ENTRY", "EXIT", "STOP", "SIZE", "USD", "RR")
		for _, e := range entries {
			row(w, e.ID, localTime(e.Date), e.Symbol, e.Direction, e.Status,
				optNum(&e.EntryPrice), optNum(e.ExitPrice), optNum(e.StopLoss), optNum(e.PositionSize),
				usd(e.UsdPnL), optNum(e.RiskReward))
		}
	})
}

func newJournalListCmd(rc *RootConfig) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Journal.ListEntries(commandContext(cmd), q)
			if err != nil {
				return err
			}
			return printEntries(rc, cmd, entries)
		},
	}
	qf.register(cmd)
	return cmd
}

func newJournalShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry as an Org block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.Journal.GetEntry(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if rc.JSON {
				return rc.emit(cmd, e, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatEntryOrg(e))
			return nil
		},
	}
}

// entryFlags are the editable entry fields shared by add and update.
type entryFlags struct {
	date                          string
	symbol, direction, status     string
	instrument, account, strategy string
	entry, exit, stop, size, pnl  float64
	notes                         string
	images                        []string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "trade date (default now)")
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "traded symbol")
	cmd.Flags().StringVar(&f.direction, "direction", "", "Long or Short")
	cmd.Flags().StringVar(&f.status, "status", "", "Open, Closed, Win or Loss")
	cmd.Flags().StringVar(&f.instrument, "instrument", "", "instrument id")
	cmd.Flags().StringVar(&f.account, "account", "", "account id")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "strategy id")
	cmd.Flags().Float64Var(&f.entry, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&f.exit, "exit", 0, "exit price")
	cmd.Flags().Float64Var(&f.stop, "stop", 0, "stop loss")
	cmd.Flags().Float64Var(&f.size, "size", 0, "position size (default 1)")
	cmd.Flags().Float64Var(&f.pnl, "pnl", 0, "P&L in points, overrides entry/exit")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free text notes")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "screenshot file to attach (repeatable)")
}

func readImages(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		out = append(out, base64.StdEncoding.EncodeToString(data))
	}
	return out, nil
}

func newJournalAddCmd(rc *RootConfig) *cobra.Command {
	var ef entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			d := journal.Draft{Entry: journal.Entry{
				Symbol:       ef.symbol,
				Direction:    journal.Direction(ef.direction),
				Status:       journal.Status(ef.status),
				InstrumentID: ef.instrument,
				AccountID:    ef.account,
				StrategyID:   ef.strategy,
				EntryPrice:   ef.entry,
				Notes:        ef.notes,
			}}
			if ef.date != "" {
				ms, err := parseDate(ef.date)
				if err != nil {
					return err
				}
				d.Date = ms
			}
			if changed("exit") {
				d.ExitPrice = journal.Float(ef.exit)
			}
			if changed("stop") {
				d.StopLoss = journal.Float(ef.stop)
			}
			if changed("size") {
				d.PositionSize = journal.Float(ef.size)
			}
			if changed("pnl") {
				d.PnL = journal.Float(ef.pnl)
			}
			payloads, err := readImages(ef.images)
			if err != nil {
				return err
			}
			d.Images = payloads

			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.Journal.CreateEntry(commandContext(cmd), d)
			if err != nil {
				return err
			}
			return printEntries(rc, cmd, []journal.Entry{e})
		},
	}
	ef.register(cmd)
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("direction")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func newJournalUpdateCmd(rc *RootConfig) *cobra.Command {
	var (
		ef           entryFlags
		unset        []string
		removeImages []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			p := journal.Patch{Unset: unset, RemoveImageFileNames: removeImages}

			if changed("date") {
				ms, err := parseDate(ef.date)
				if err != nil {
					return err
				}
				p.Date = &ms
			}
			str := func(flag string, v string) *string {
				if !changed(flag) {
					return nil
				}
				return &v
			}
			num := func(flag string, v float64) *float64 {
				if !changed(flag) {
					return nil
				}
				return journal.Float(v)
			}
			p.Symbol = str("symbol", ef.symbol)
			p.InstrumentID = str("instrument", ef.instrument)
			p.AccountID = str("account", ef.account)
			p.StrategyID = str("strategy", ef.strategy)
			p.Notes = str("notes", ef.notes)
			if changed("direction") {
				d := journal.Direction(ef.direction)
				p.Direction = &d
			}
			if changed("status") {
				s := journal.Status(ef.status)
				p.Status = &s
			}
			p.EntryPrice = num("entry", ef.entry)
			p.ExitPrice = num("exit", ef.exit)
			p.StopLoss = num("stop", ef.stop)
			p.PositionSize = num("size", ef.size)
			p.PnL = num("pnl", ef.pnl)

			payloads, err := readImages(ef.images)
			if err != nil {
				return err
			}
			p.Images = payloads

			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.UpdateEntry(commandContext(cmd), args[0], p)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("entry %s: %w", args[0], journal.ErrNotFound)
			}
			e, err := a.Journal.GetEntry(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printEntries(rc, cmd, []journal.Entry{e})
		},
	}
	ef.register(cmd)
	cmd.Flags().StringSliceVar(&unset, "unset", nil, "clear exitPrice, stopLoss, positionSize or pnl")
	cmd.Flags().StringSliceVar(&removeImages, "remove-image", nil, "attached image filename to delete")
	return cmd
}

func newJournalRmCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an entry, its images and its settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.DeleteEntry(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
			return nil
		},
	}
}

func newJournalImageCmd(rc *RootConfig) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "image <filename>",
		Short: "Print an attached image as a data URI, or save it with --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			uri, err := a.Journal.ReadImage(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), uri)
				return nil
			}
			data, err := base64.StdEncoding.DecodeString(uri[strings.IndexByte(uri, ',')+1:])
			if err != nil {
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the image to this file")
	return cmd
}

func newJournalExportCmd(rc *RootConfig) *cobra.Command {
	var (
		qf     queryFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as CSV or Org",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Journal.ListEntries(commandContext(cmd), q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "csv":
				return journal.WriteCSV(w, entries)
			case "org":
				_, err := fmt.Fprintln(w, journal.FormatEntriesOrg(entries))
				return err
			}
			return fmt.Errorf("unknown format %q (want csv or org)", format)
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or org")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
