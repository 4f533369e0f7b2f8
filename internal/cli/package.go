package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stopidhan/backend-buzjet-api/internal/catalog"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

func (a *app) newPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "package",
		Aliases: []string{"pkg"},
		Short:   "Compose and inspect tour packages",
	}
	cmd.AddCommand(a.newPackageCreateCmd())
	cmd.AddCommand(a.newPackageUpdateCmd())
	cmd.AddCommand(a.newPackageGetCmd())
	cmd.AddCommand(a.newPackageListCmd())
	cmd.AddCommand(a.newPackageDeleteCmd())
	cmd.AddCommand(a.newPackageLinksCmd())
	return cmd
}

func (a *app) newPackageCreateCmd() *cobra.Command {
	var in payloadFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a package with its destinations and hotels",
		Long: `Create a package from a JSON document.

Example:
  buzjet package create --data '{"name": "Bali Explorer", "description": "Four days in Bali",
    "price": 4500000, "duration_days": 4, "nights": 3, "capacity": 20, "owner_id": 1,
    "destination_ids": [1, 2], "hotel_ids": [1]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := in.payload(cmd)
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return a.render(cmd, s.svc.CreatePackage(cmd.Context(), payload))
		},
	}
	in.register(cmd)
	return cmd
}

func (a *app) newPackageUpdateCmd() *cobra.Command {
	var in payloadFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a package",
		Long: `Update a package from a JSON document. Absent fields keep their value; a
present destination_ids or hotel_ids replaces that whole link set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			payload, err := in.payload(cmd)
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return a.render(cmd, s.svc.UpdatePackage(cmd.Context(), id, payload))
		},
	}
	in.register(cmd)
	return cmd
}

func (a *app) newPackageGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a package with its destinations, hotels and owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return a.render(cmd, s.svc.GetPackage(cmd.Context(), id))
		},
	}
}

func (a *app) newPackageListCmd() *cobra.Command {
	var owner, destination, hotel int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{}
			if cmd.Flags().Changed("owner") {
				filter["owner_id"] = owner
			}
			if cmd.Flags().Changed("destination") {
				filter["destination_id"] = destination
			}
			if cmd.Flags().Changed("hotel") {
				filter["hotel_id"] = hotel
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return a.render(cmd, s.svc.ListPackages(cmd.Context(), filter))
		},
	}
	cmd.Flags().Int64Var(&owner, "owner", 0, "only packages owned by this user")
	cmd.Flags().Int64Var(&destination, "destination", 0, "only packages visiting this destination")
	cmd.Flags().Int64Var(&hotel, "hotel", 0, "only packages staying at this hotel")
	return cmd
}

func (a *app) newPackageDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a package and its links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return a.render(cmd, s.svc.DeletePackage(cmd.Context(), id))
		},
	}
}

// newPackageLinksCmd shows the raw link rows, including ids whose target
// has since been deleted.
func (a *app) newPackageLinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links <id>",
		Short: "Show the stored link rows of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			ok, err := s.backend.ExistsByID(ctx, types.TablePackages, id)
			if err != nil {
				return fail(err)
			}
			if !ok {
				return fail(&types.NotFoundError{Kind: types.TablePackages, ID: id})
			}

			links := make(map[types.Relation][]types.Link, len(types.Relations))
			for _, rel := range types.Relations {
				rows, err := s.backend.ListLinks(ctx, id, rel)
				if err != nil {
					return fail(fmt.Errorf("list %s links: %w", rel, err))
				}
				links[rel] = rows
			}

			if a.flags.jsonMode {
				return a.printJSON(cmd, types.Succeeded(http.StatusOK, "links found", links))
			}
			var rows [][]string
			for _, rel := range types.Relations {
				for _, l := range links[rel] {
					rows = append(rows, []string{string(rel), strconv.FormatInt(l.TargetID, 10), l.LinkID,
						l.CreatedAt.Format("2006-01-02 15:04:05")})
				}
			}
			printTable(cmd.OutOrStdout(), []string{"RELATION", "TARGET", "LINK", "CREATED"}, rows)
			return nil
		},
	}
}

// payload decodes the document keeping numbers exact.
func (p *payloadFlags) payload(cmd *cobra.Command) (map[string]any, error) {
	raw, err := p.read(cmd)
	if err != nil {
		return nil, err
	}
	payload, err := catalog.DecodePayload(bytes.NewReader(raw))
	if err != nil {
		return nil, fail(err)
	}
	return payload, nil
}
