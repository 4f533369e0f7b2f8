package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the buzjet release, overridden at build time with
// -ldflags "-X github.com/stopidhan/backend-buzjet-api/internal/cli.Version=...".
var Version = "0.1.0"

const modulePath = "github.com/stopidhan/backend-buzjet-api"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the buzjet version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "buzjet v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
