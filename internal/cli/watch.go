package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/countdown"
)

func newWatchCmd(rc *RootConfig) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the countdowns in the terminal until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if len(a.Tasks.Tasks()) == 0 {
				fmt.Fprintln(out, "no tasks; add one with `candlewaker task add`")
				return nil
			}

			if !quiet {
				a.Runner.OnTick(func(s countdown.TaskSnapshot) {
					if !s.Enabled {
						return
					}
					mark := " "
					if s.Urgent {
						mark = "!"
					}
					fmt.Fprintf(out, "%s %-20s %s\n", mark, s.Name, s.Formatted)
				})
			}

			a.Runner.Start()
			defer a.Runner.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case <-quit:
			case <-commandContext(cmd).Done():
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print reminders, not every tick")
	return cmd
}
