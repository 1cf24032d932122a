package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-health/halcyon/internal/app"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore collections from a backup file",
		Long: "Import validates the backup (migrating it in-memory when it was\n" +
			"written by an older release) and atomically replaces every collection\n" +
			"it names. A backup from a newer release is rejected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return exitError(exitUserError, fmt.Sprintf("read backup file: %s", err))
			}

			cfg, err := resolveAppConfig()
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("resolve config: %s", err))
			}
			a, err := app.Open(cfg, newLogger())
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("open storage: %s", err))
			}
			defer a.Close()

			if err := a.Import(raw); err != nil {
				return exitError(exitUserError, fmt.Sprintf("import: %s", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot from %s\n", args[0])
			return nil
		},
	}
}
