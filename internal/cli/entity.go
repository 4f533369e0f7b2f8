package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// entityKind describes one of the catalog tables the CLI edits directly.
type entityKind struct {
	name   string
	table  string
	header []string
	row    func(e any) []string
}

var (
	locationKind = entityKind{
		name:   "location",
		table:  types.TableLocations,
		header: []string{"ID", "CITY", "PROVINCE", "COUNTRY"},
		row: func(e any) []string {
			l, ok := e.(*types.Location)
			if !ok {
				return []string{fmt.Sprint(e)}
			}
			return []string{strconv.FormatInt(l.ID, 10), l.City, l.Province, l.Country}
		},
	}
	destinationKind = entityKind{
		name:   "destination",
		table:  types.TableDestinations,
		header: []string{"ID", "NAME", "LOCATION", "DESCRIPTION"},
		row: func(e any) []string {
			d, ok := e.(*types.Destination)
			if !ok {
				return []string{fmt.Sprint(e)}
			}
			return []string{strconv.FormatInt(d.ID, 10), d.Name, strconv.FormatInt(d.LocationID, 10), d.Description}
		},
	}
	hotelKind = entityKind{
		name:   "hotel",
		table:  types.TableHotels,
		header: []string{"ID", "NAME", "LOCATION", "PRICE/NIGHT", "RATING"},
		row: func(e any) []string {
			h, ok := e.(*types.Hotel)
			if !ok {
				return []string{fmt.Sprint(e)}
			}
			return []string{strconv.FormatInt(h.ID, 10), h.Name, strconv.FormatInt(h.LocationID, 10),
				formatAmount(h.PricePerNight), formatAmount(h.Rating)}
		},
	}
	transportationKind = entityKind{
		name:   "transportation",
		table:  types.TableTransportations,
		header: []string{"ID", "TYPE", "NAME", "PROVIDER", "PRICE", "LOCATION"},
		row: func(e any) []string {
			t, ok := e.(*types.Transportation)
			if !ok {
				return []string{fmt.Sprint(e)}
			}
			return []string{strconv.FormatInt(t.ID, 10), t.Type, t.Name, t.Provider,
				formatAmount(t.Price), strconv.FormatInt(t.LocationID, 10)}
		},
	}
)

var entityKinds = []entityKind{locationKind, destinationKind, hotelKind, transportationKind}

func (a *app) newEntityCmd(kind entityKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.name,
		Short: fmt.Sprintf("Manage %s", kind.table),
	}
	cmd.AddCommand(a.newEntityListCmd(kind))
	cmd.AddCommand(a.newEntityGetCmd(kind))
	cmd.AddCommand(a.newEntityCreateCmd(kind))
	cmd.AddCommand(a.newEntityUpdateCmd(kind))
	cmd.AddCommand(a.newEntityDeleteCmd(kind))
	return cmd
}

func (a *app) newEntityListCmd(kind entityKind) *cobra.Command {
	return &cobra.Command{
		Use:   "list [key=value...]",
		Short: fmt.Sprintf("List %s with optional filters", kind.table),
		Long: fmt.Sprintf(`List %s ordered by id.

Filters are key=value pairs and are ANDed together.

Example:
  buzjet %s list location_id=1`, kind.table, kind.name),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args)
			if err != nil {
				return fail(err)
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			rows, err := s.backend.ListAll(cmd.Context(), kind.table, filter)
			if err != nil {
				return fail(fmt.Errorf("list %s: %w", kind.table, err))
			}
			return a.emit(cmd, kind, http.StatusOK, kind.table+" found", rows, rows)
		},
	}
}

func (a *app) newEntityGetCmd(kind entityKind) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", kind.name),
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

			e, err := s.backend.FindByID(cmd.Context(), kind.table, id)
			if err != nil {
				return fail(err)
			}
			return a.emit(cmd, kind, http.StatusOK, kind.name+" found", e, []any{e})
		},
	}
}

func (a *app) newEntityCreateCmd(kind entityKind) *cobra.Command {
	var in payloadFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s from JSON", kind.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := in.read(cmd)
			if err != nil {
				return err
			}
			entity := types.NewEntity(kind.table)
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(entity); err != nil {
				return fail(fmt.Errorf("%w: decoding %s: %v", types.ErrInvalidData, kind.name, err))
			}

			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if _, err := s.backend.Create(cmd.Context(), kind.table, entity); err != nil {
				return fail(fmt.Errorf("create %s: %w", kind.name, err))
			}
			return a.emit(cmd, kind, http.StatusCreated, kind.name+" created", entity, []any{entity})
		},
	}
	in.register(cmd)
	return cmd
}

func (a *app) newEntityUpdateCmd(kind entityKind) *cobra.Command {
	var in payloadFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update fields of a %s from JSON", kind.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := in.payload(cmd)
			if err != nil {
				return err
			}

			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			e, err := s.backend.Update(cmd.Context(), kind.table, id, fields)
			if err != nil {
				return fail(fmt.Errorf("update %s %d: %w", kind.name, id, err))
			}
			return a.emit(cmd, kind, http.StatusOK, kind.name+" updated", e, []any{e})
		},
	}
	in.register(cmd)
	return cmd
}

func (a *app) newEntityDeleteCmd(kind entityKind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", kind.name),
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

			if err := s.backend.Delete(cmd.Context(), kind.table, id); err != nil {
				return fail(fmt.Errorf("delete %s %d: %w", kind.name, id, err))
			}
			if a.flags.jsonMode {
				return a.printJSON(cmd, types.Succeeded(http.StatusOK, kind.name+" deleted", nil))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d deleted\n", kind.name, id)
			return nil
		},
	}
}

// emit prints data inside a result envelope in JSON mode, or rows as a
// table otherwise.
func (a *app) emit(cmd *cobra.Command, kind entityKind, status int, message string, data any, rows []any) error {
	if a.flags.jsonMode {
		return a.printJSON(cmd, types.Succeeded(status, message, data))
	}
	printEntities(cmd.OutOrStdout(), kind, rows)
	return nil
}

// payloadFlags reads a JSON document from --data or --file.
type payloadFlags struct {
	data string
	file string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.data, "data", "d", "", "JSON document")
	cmd.Flags().StringVarP(&p.file, "file", "f", "", "read the JSON document from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
}

func (p *payloadFlags) read(cmd *cobra.Command) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case p.data != "":
		raw = []byte(p.data)
	case p.file == "-":
		raw, err = io.ReadAll(cmd.InOrStdin())
	case p.file != "":
		raw, err = os.ReadFile(p.file)
	default:
		return nil, fail(fmt.Errorf("%w: one of --data or --file is required", types.ErrInvalidData))
	}
	if err != nil {
		return nil, fail(fmt.Errorf("read payload: %w", err))
	}
	return raw, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fail(fmt.Errorf("%w: %q", types.ErrInvalidID, arg))
	}
	return id, nil
}

// parseFilter turns key=value arguments into a filter. Integer and decimal
// values are passed as numbers, everything else as strings.
func parseFilter(args []string) (types.Filter, error) {
	filter := types.Filter{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (expected key=value)", types.ErrInvalidFilter, arg)
		}
		filter[key] = parseFilterValue(value)
	}
	return filter, nil
}

func parseFilterValue(value string) any {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return value
}
