package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/store/sqlite"
)

func newImportCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data from earlier versions",
	}

	nedb := &cobra.Command{
		Use:   "nedb <collection> <file>",
		Short: "Load a NeDB datafile into the database",
		Long: fmt.Sprintf(`Load an append-only NeDB datafile (one JSON document per line).

Collections: %s

Documents keep their ids, so settled entries and their accounts stay
consistent. Importing the same file twice overwrites instead of
duplicating.

Example:
  candlewaker import nedb journal ~/old/journal.db`, strings.Join(sqlite.Kinds, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: sqlite.Kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.DB.ImportNeDB(commandContext(cmd), args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, args[0])
			return nil
		},
	}

	cmd.AddCommand(nedb)
	return cmd
}
