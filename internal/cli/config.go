package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goLPLockd/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and generate configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init [path]",
			Short: "Write an example configuration file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := config.DefaultConfigPath
				if len(args) == 1 {
					path = args[0]
				}
				if err := config.SaveExampleConfig(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.config()
				if err != nil {
					return err
				}
				source := cfg.GetConfigPath()
				if source == "" {
					source = "defaults"
				}
				return a.print(cmd, record{
					{"source", source},
					{"program_id", cfg.Program.ID},
					{"amm_program_id", cfg.Program.AMMID},
					{"min_lock_amount", cfg.Lock.MinAmount},
					{"max_lock_duration", cfg.Lock.MaxDuration},
					{"database", cfg.Database.Backend + ":" + cfg.Database.Path},
					{"journal", journalSummary(cfg)},
					{"events", cfg.Events.Enabled},
					{"owner", cfg.Owner},
				})
			},
		},
	)
	return cmd
}

func journalSummary(cfg *config.Config) string {
	if !cfg.Journal.Enabled {
		return "disabled"
	}
	if cfg.Journal.Driver == "sqlite" || cfg.Journal.Driver == "sqlite3" {
		return cfg.Journal.Driver + ":" + cfg.Journal.Path
	}
	return cfg.Journal.Driver
}
