package cli

import (
	"github.com/spf13/cobra"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

func (a *app) newNearbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Find offers at the location of a destination",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "hotels <destination-id>",
		Short: "List hotels in the destination's location",
		Args:  cobra.ExactArgs(1),
		RunE: a.nearby(func(s *session, cmd *cobra.Command, id int64) types.Result {
			return s.svc.HotelsNearDestination(cmd.Context(), id)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "transportations <destination-id>",
		Short: "List transportations in the destination's location",
		Args:  cobra.ExactArgs(1),
		RunE: a.nearby(func(s *session, cmd *cobra.Command, id int64) types.Result {
			return s.svc.TransportationsNearDestination(cmd.Context(), id)
		}),
	})
	return cmd
}

func (a *app) nearby(query func(*session, *cobra.Command, int64) types.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := a.open(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return a.render(cmd, query(s, cmd, id))
	}
}
