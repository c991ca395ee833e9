package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/journal"
)

func newStatsCmd(rc *RootConfig) *cobra.Command {
	var (
		mode     string
		from, to string
		account  string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Win rate and net P&L over a period",
		Long: `Summarize Win and Loss entries over a period.

Ranges: all, week (from Monday), month, year, custom (needs --from and
--to as YYYY-MM-DD).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := journal.RangeFor(mode, time.Now(), from, to)
			if err != nil {
				return err
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Journal.Stats(commandContext(cmd), account, r)
			if err != nil {
				return err
			}
			return rc.emit(cmd, st, func(w io.Writer) {
				row(w, "TRADES", "WINS", "LOSSES", "WIN RATE", "NET PTS", "NET USD", "AVG RR")
				row(w, st.Total, st.Wins, st.Losses, fmt.Sprintf("%.1f%%", st.WinRate),
					st.NetPoints, fmt.Sprintf("%.2f", st.NetUSD), optNum(st.AvgRiskReward))
				if len(st.ByStrategy) == 0 {
					return
				}
				row(w)
				row(w, "STRATEGY", "WINS", "LOSSES", "TOTAL", "WIN RATE")
				for _, s := range st.ByStrategy {
					row(w, s.Name, s.Wins, s.Losses, s.Total, fmt.Sprintf("%.1f%%", s.WinRate))
				}
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "range", "r", "all", "all, week, month, year or custom")
	cmd.Flags().StringVar(&from, "from", "", "first day for --range custom")
	cmd.Flags().StringVar(&to, "to", "", "last day for --range custom")
	cmd.Flags().StringVar(&account, "account", "", "only this account")
	return cmd
}
