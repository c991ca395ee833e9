package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/journal"
)

func printInstruments(rc *RootConfig, cmd *cobra.Command, list []journal.Instrument) error {
	return rc.emit(cmd, list, func(w io.Writer) {
		row(w, "ID", "NAME", "POINT USD")
		for _, i := range list {
			row(w, i.ID, i.Name, fmt.Sprintf("%g", i.PointValueUSD))
		}
	})
}

func printAccounts(rc *RootConfig, cmd *cobra.Command, list []journal.Account) error {
	return rc.emit(cmd, list, func(w io.Writer) {
		row(w, "ID", "NAME", "BALANCE")
		for _, a := range list {
			row(w, a.ID, a.Name, fmt.Sprintf("%.2f", a.Balance))
		}
	})
}

func printStrategies(rc *RootConfig, cmd *cobra.Command, list []journal.Strategy) error {
	return rc.emit(cmd, list, func(w io.Writer) {
		row(w, "ID", "NAME", "DESCRIPTION")
		for _, s := range list {
			row(w, s.ID, s.Name, s.Description)
		}
	})
}

// reportCount prints how many records a set or rm touched; 0 means the id
// was not found.
func reportCount(cmd *cobra.Command, verb, kind, id string, n int64) error {
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, journal.ErrNotFound)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, kind, id)
	return nil
}

func newInstrumentCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instrument",
		Aliases: []string{"inst"},
		Short:   "Manage instruments and their point values",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List instruments by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Journal.ListInstruments(commandContext(cmd))
			if err != nil {
				return err
			}
			return printInstruments(rc, cmd, out)
		},
	}

	add := &cobra.Command{
		Use:   "add <name> <point-value-usd>",
		Short: "Add an instrument",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pv, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("point value: %w", err)
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			inst, err := a.Journal.CreateInstrument(commandContext(cmd), args[0], pv)
			if err != nil {
				return err
			}
			return printInstruments(rc, cmd, []journal.Instrument{inst})
		},
	}

	var (
		name       string
		pointValue float64
	)
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Rename an instrument or change its point value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p journal.InstrumentPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("point-value") {
				p.PointValueUSD = &pointValue
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.UpdateInstrument(commandContext(cmd), args[0], p)
			if err != nil {
				return err
			}
			return reportCount(cmd, "updated", "instrument", args[0], n)
		},
	}
	set.Flags().StringVar(&name, "name", "", "new name")
	set.Flags().Float64Var(&pointValue, "point-value", 0, "USD per point")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an instrument no entry references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.DeleteInstrument(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return reportCount(cmd, "deleted", "instrument", args[0], n)
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Add the preset futures contracts that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.SeedInstruments(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d instruments\n", n)
			return nil
		},
	}

	cmd.AddCommand(list, add, set, rm, seed)
	return cmd
}

func newAccountCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"acct"},
		Short:   "Manage trading accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Journal.ListAccounts(commandContext(cmd))
			if err != nil {
				return err
			}
			return printAccounts(rc, cmd, out)
		},
	}

	var balance float64
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			acct, err := a.Journal.CreateAccount(commandContext(cmd), args[0], balance)
			if err != nil {
				return err
			}
			return printAccounts(rc, cmd, []journal.Account{acct})
		},
	}
	add.Flags().Float64Var(&balance, "balance", 0, "starting balance in USD")

	var (
		name       string
		newBalance float64
	)
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Rename an account or correct its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p journal.AccountPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("balance") {
				p.Balance = &newBalance
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.UpdateAccount(commandContext(cmd), args[0], p)
			if err != nil {
				return err
			}
			return reportCount(cmd, "updated", "account", args[0], n)
		},
	}
	set.Flags().StringVar(&name, "name", "", "new name")
	set.Flags().Float64Var(&newBalance, "balance", 0, "balance in USD")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an account no entry references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.DeleteAccount(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return reportCount(cmd, "deleted", "account", args[0], n)
		},
	}

	cmd.AddCommand(list, add, set, rm)
	return cmd
}

func newStrategyCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Manage trading strategies",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Journal.ListStrategies(commandContext(cmd))
			if err != nil {
				return err
			}
			return printStrategies(rc, cmd, out)
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Journal.CreateStrategy(commandContext(cmd), args[0], description)
			if err != nil {
				return err
			}
			return printStrategies(rc, cmd, []journal.Strategy{st})
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "what the setup looks like")

	var name, newDescription string
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Rename a strategy or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p journal.StrategyPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &newDescription
			}
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.UpdateStrategy(commandContext(cmd), args[0], p)
			if err != nil {
				return err
			}
			return reportCount(cmd, "updated", "strategy", args[0], n)
		},
	}
	set.Flags().StringVar(&name, "name", "", "new name")
	set.Flags().StringVarP(&newDescription, "description", "d", "", "new description")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a strategy; entries keep the dangling id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Journal.DeleteStrategy(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return reportCount(cmd, "deleted", "strategy", args[0], n)
		},
	}

	cmd.AddCommand(list, add, set, rm)
	return cmd
}
