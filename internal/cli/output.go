package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// printJSON writes v as indented JSON.
func (a *app) printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// render prints a service result and returns the error that carries its
// exit code. In JSON mode the whole envelope is printed, failures included.
func (a *app) render(cmd *cobra.Command, res types.Result) error {
	if a.flags.jsonMode {
		if err := a.printJSON(cmd, res); err != nil {
			return err
		}
	} else {
		printResult(cmd.OutOrStdout(), res)
	}
	return resultError(res)
}

func resultError(res types.Result) error {
	code := exitUserError
	switch {
	case res.Degraded():
		code = exitDegraded
	case res.OK:
		return nil
	case res.Status >= http.StatusInternalServerError:
		code = exitSysError
	}
	err := res.Err
	if err == nil {
		err = errors.New(res.Message)
	}
	return &exitError{code: code, err: err}
}

func printResult(out io.Writer, res types.Result) {
	if !res.OK || res.Degraded() {
		fmt.Fprintln(out, res.Message)
		fields := make([]string, 0, len(res.Errors))
		for field := range res.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			for _, msg := range res.Errors[field] {
				fmt.Fprintf(out, "  %s: %s\n", field, msg)
			}
		}
	}
	if res.Data != nil {
		printData(out, res.Data)
	}
}

// printData renders the catalog read models as text. Anything else is
// printed as JSON.
func printData(out io.Writer, data any) {
	switch d := data.(type) {
	case *types.PackageView:
		printPackage(out, d)
	case []*types.PackageView:
		rows := make([][]string, 0, len(d))
		for _, v := range d {
			rows = append(rows, []string{
				strconv.FormatInt(v.ID, 10),
				v.Name,
				formatAmount(v.Price),
				fmt.Sprintf("%dD/%dN", v.DurationDays, v.Nights),
				strconv.Itoa(v.Capacity),
				joinInts(v.DestinationIDs()),
				joinInts(v.HotelIDs()),
			})
		}
		printTable(out, []string{"ID", "NAME", "PRICE", "DURATION", "CAPACITY", "DESTINATIONS", "HOTELS"}, rows)
	case []*types.Hotel:
		printEntities(out, hotelKind, anySlice(d))
	case []*types.Transportation:
		printEntities(out, transportationKind, anySlice(d))
	default:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Fprintf(out, "%v\n", data)
			return
		}
		fmt.Fprintln(out, string(b))
	}
}

func printPackage(out io.Writer, v *types.PackageView) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", v.ID)
	fmt.Fprintf(w, "Name:\t%s\n", v.Name)
	fmt.Fprintf(w, "Description:\t%s\n", v.Description)
	fmt.Fprintf(w, "Price:\t%s\n", formatAmount(v.Price))
	fmt.Fprintf(w, "Duration:\t%d days / %d nights\n", v.DurationDays, v.Nights)
	fmt.Fprintf(w, "Capacity:\t%d\n", v.Capacity)
	if v.Owner != nil {
		fmt.Fprintf(w, "Owner:\t%s (#%d)\n", v.Owner.Name, v.Owner.ID)
	} else {
		fmt.Fprintf(w, "Owner:\t#%d\n", v.OwnerID)
	}
	names := make([]string, 0, len(v.Destinations))
	for _, d := range v.Destinations {
		names = append(names, fmt.Sprintf("%s (#%d)", d.Name, d.ID))
	}
	fmt.Fprintf(w, "Destinations:\t%s\n", strings.Join(names, ", "))
	names = names[:0]
	for _, h := range v.Hotels {
		names = append(names, fmt.Sprintf("%s (#%d)", h.Name, h.ID))
	}
	fmt.Fprintf(w, "Hotels:\t%s\n", strings.Join(names, ", "))
	w.Flush()
}

func printEntities(out io.Writer, kind entityKind, entities []any) {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, kind.row(e))
	}
	printTable(out, kind.header, rows)
}

func printTable(out io.Writer, header []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func joinInts(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
