package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate, validate or show configuration",
		Long: `Manage the configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file
  show     - Print the effective configuration

Examples:
  candlewaker config init --output candlewaker.yaml
  candlewaker config validate --file candlewaker.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  candlewaker --config %s watch\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "candlewaker.yaml", "output config file path")

	var file string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(file)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", file)
			fmt.Fprintf(out, "  Database: %s\n", cfg.Database())
			fmt.Fprintf(out, "  Images:   %s\n", cfg.Images())
			fmt.Fprintf(out, "  API:      %s\n", cfg.API.Addr)
			return nil
		},
	}
	validate.Flags().StringVarP(&file, "file", "f", "", "path to config file (required)")
	_ = validate.MarkFlagRequired("file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.loadConfig()
			if err != nil {
				return err
			}
			rc.JSON = true
			return rc.emit(cmd, cfg, nil)
		},
	}

	cmd.AddCommand(initCmd, validate, show)
	return cmd
}
