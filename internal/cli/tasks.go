package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/market"
	"github.com/rustyeddy/candlewaker/tasks"
)

func newTaskCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage candle close reminders",
		Long: `Manage candle close reminders.

Periods accept minutes ("15"), timeframe codes ("M15", "H4", "D1") or Go
durations ("90m").

Examples:
  candlewaker task add "ES 15m" --period M15 --notify-before 30
  candlewaker task toggle <id>
  candlewaker task import tasks.json`,
	}

	cmd.AddCommand(
		newTaskListCmd(rc),
		newTaskAddCmd(rc),
		newTaskSetCmd(rc),
		newTaskToggleCmd(rc),
		newTaskRmCmd(rc),
		newTaskImportCmd(rc),
	)
	return cmd
}

func printTasks(rc *RootConfig, cmd *cobra.Command, list []tasks.Task) error {
	return rc.emit(cmd, list, func(w io.Writer) {
		row(w, "ID", "NAME", "PERIOD", "NOTIFY", "ENABLED")
		for _, t := range list {
			row(w, t.ID, t.Name, market.PeriodLabel(t.Period), fmt.Sprintf("%ds", t.NotifyBefore), t.Enabled)
		}
	})
}

func newTaskListCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reminders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return printTasks(rc, cmd, a.Tasks.Tasks())
		},
	}
}

func newTaskAddCmd(rc *RootConfig) *cobra.Command {
	var (
		period       string
		notifyBefore int
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an enabled reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := market.ParsePeriod(period)
			if err != nil {
				return err
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.Tasks.Add(commandContext(cmd), args[0], minutes, notifyBefore)
			if err != nil {
				return err
			}
			return printTasks(rc, cmd, []tasks.Task{t})
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", "15", "candle period")
	cmd.Flags().IntVarP(&notifyBefore, "notify-before", "n", 0, "seconds before the close to notify")
	return cmd
}

func newTaskSetCmd(rc *RootConfig) *cobra.Command {
	var (
		name         string
		period       string
		notifyBefore int
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change a reminder's name, period or notify window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u tasks.Update
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("period") {
				minutes, err := market.ParsePeriod(period)
				if err != nil {
					return err
				}
				u.Period = &minutes
			}
			if cmd.Flags().Changed("notify-before") {
				u.NotifyBefore = &notifyBefore
			}

			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.Tasks.Update(commandContext(cmd), args[0], u)
			if err != nil {
				return err
			}
			return printTasks(rc, cmd, []tasks.Task{t})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&period, "period", "p", "", "new candle period")
	cmd.Flags().IntVarP(&notifyBefore, "notify-before", "n", 0, "new notify window in seconds")
	return cmd
}

func newTaskToggleCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Enable or disable a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.Tasks.Toggle(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printTasks(rc, cmd, []tasks.Task{t})
		},
	}
}

func newTaskRmCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Tasks.Remove(commandContext(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newTaskImportCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a JSON task list into an empty task store",
		Long: `Import a JSON array of tasks exported by an older install. The import
only runs when no tasks exist yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var legacy []tasks.Task
			if err := json.Unmarshal(data, &legacy); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Tasks.Import(commandContext(cmd), legacy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", n)
			return nil
		},
	}
}
