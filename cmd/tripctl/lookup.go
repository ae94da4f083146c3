package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/app"
	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/reference"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <airports|airlines> <query>",
	Short: "Fuzzy-search a reference table",
	Example: `  tripctl lookup airports "Heathrow"
  tripctl lookup airlines BA --field iata`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("field", reference.FieldName, "Field to match against")
	lookupCmd.Flags().Int("limit", 10, "Maximum rows to print (0 for all)")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	field, _ := cmd.Flags().GetString("field")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.LoadReference()
	if err != nil {
		return err
	}
	catalog, err := app.LoadCatalog(cmd.Context(), cfg, newLogger(cmd))
	if err != nil {
		return err
	}
	matches, err := catalog.Lookup(args[0], field, args[1])
	if err != nil {
		return err
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return writeMatches(cmd.OutOrStdout(), matches)
}

// writeMatches prints one aligned row per match, score first.
func writeMatches(w io.Writer, matches []reference.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "no matches")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fields := matches[0].Record.Fields()
	fmt.Fprintf(tw, "SCORE\t%s\n", strings.ToUpper(strings.Join(fields, "\t")))
	for _, m := range matches {
		values := make([]string, len(fields))
		for i, f := range fields {
			values[i] = m.Record.Get(f)
		}
		fmt.Fprintf(tw, "%.1f\t%s\n", m.Score, strings.Join(values, "\t"))
	}
	return tw.Flush()
}
