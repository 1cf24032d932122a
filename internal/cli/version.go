package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the halcyon release version.
const Version = "0.4.0"

const modulePath = "github.com/halcyon-health/halcyon"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the halcyon version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "halcyon v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
