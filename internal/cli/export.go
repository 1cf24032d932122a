package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-health/halcyon/internal/app"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export a complete snapshot to a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveAppConfig()
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("resolve config: %s", err))
			}
			a, err := app.Open(cfg, newLogger())
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("open storage: %s", err))
			}
			defer a.Close()

			if err := a.ExportTo(args[0]); err != nil {
				return exitError(exitSysError, fmt.Sprintf("export: %s", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported snapshot to %s\n", args[0])
			return nil
		},
	}
}
