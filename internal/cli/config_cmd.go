package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"redmine-upload/pkg/config"
)

const defaultConfigFile = "./redmine-upload.yaml"

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}

	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			masked := opts.cfg.Masked()
			data, err := masked.ToYAML()
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", opts.configFrom, data)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		// a broken existing config must not block writing a new one
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			if _, err := config.LoadFromFile(path); err != nil {
				return fmt.Errorf("written config does not load back: %w", err)
			}

			printSuccess(cmd.ErrOrStderr(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
