package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-health/halcyon/internal/app"
)

// statusOutput is the --json shape of the status command.
type statusOutput struct {
	Backend       string         `json:"backend"`
	DataDir       string         `json:"dataDir"`
	SchemaVersion int            `json:"schemaVersion"`
	Counts        map[string]int `json:"counts"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show schema version and collection counts",
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

			version, err := a.SchemaVersion()
			if err != nil {
				return exitError(exitSysError, fmt.Sprintf("read schema version: %s", err))
			}

			counts := make(map[string]int)
			for _, name := range a.Collections() {
				docs, err := a.ReadCollection(name)
				if err != nil {
					return exitError(exitSysError, fmt.Sprintf("read %s: %s", name, err))
				}
				counts[name] = len(docs)
			}

			if flags.jsonMode {
				out := statusOutput{
					Backend:       cfg.Backend,
					DataDir:       cfg.DataDir,
					SchemaVersion: version,
					Counts:        counts,
				}
				raw, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return exitError(exitSysError, fmt.Sprintf("encode status: %s", err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "backend:        %s\n", cfg.Backend)
			fmt.Fprintf(cmd.OutOrStdout(), "data dir:       %s\n", cfg.DataDir)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
			for _, name := range a.Collections() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-15s %d\n", name+":", counts[name])
			}
			return nil
		},
	}
}
