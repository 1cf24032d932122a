package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-health/halcyon/internal/app"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the config and data directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveAppConfig()
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("resolve config: %s", err))
			}

			// Opening runs the migration chain and creates the data
			// directory; closing immediately leaves it initialized.
			a, err := app.Open(cfg, newLogger())
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("initialize storage: %s", err))
			}
			if err := a.Close(); err != nil {
				return exitError(exitSysError, fmt.Sprintf("finalize storage: %s", err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Halcyon initialized (backend %s, data dir %s)\n",
				cfg.Backend, cfg.DataDir)
			return nil
		},
	}
}
