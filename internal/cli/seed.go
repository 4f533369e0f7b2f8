package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stopidhan/backend-buzjet-api/internal/sqlite"
)

func (a *app) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog",
		Long:  "Insert the demo locations, destinations, hotels, transportations and users.\nNothing is inserted when the catalog already holds locations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.backend.Seed(cmd.Context())
			if err != nil {
				return fail(fmt.Errorf("seed catalog: %w", err))
			}
			if a.flags.jsonMode {
				return a.printJSON(cmd, report)
			}
			printSeedReport(cmd, report)
			return nil
		},
	}
}

func printSeedReport(cmd *cobra.Command, report sqlite.SeedReport) {
	out := cmd.OutOrStdout()
	if report.Skipped() {
		fmt.Fprintln(out, "catalog already seeded")
		return
	}
	fmt.Fprintf(out, "seeded %d locations, %d destinations, %d hotels, %d transportations, %d users\n",
		report.Locations, report.Destinations, report.Hotels, report.Transportations, report.Users)
}
