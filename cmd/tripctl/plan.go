package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/app"
	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/metrics"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Suggest trips and price flights and weather for each",
	Example: `  tripctl plan --origin Heathrow --descriptor beach --descriptor warm \
    --depart 2026-12-01 --return 2026-12-08 --max-price 900 --adults 2`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	addPlanFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func addPlanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("origin", "", "Origin airport name")
	f.StringSlice("descriptor", nil, "Trip descriptor (repeatable)")
	f.String("depart", "", "Departure date, YYYY-MM-DD")
	f.String("return", "", "Return date, YYYY-MM-DD")
	f.Int("max-price", 0, "Maximum total price")
	f.Int("adults", 1, "Adult passengers")
	f.Int("children", 0, "Child passengers")
	f.Int("infants", 0, "Infant passengers")
	f.String("class", "", "Travel class: Economy, Premium Economy, Business or First")
	f.Bool("non-stop", false, "Only non-stop flights")
	f.String("format", formatMarkdown, "Output format: markdown or json")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != formatJSON && format != formatMarkdown {
		return fmt.Errorf("unknown format %q", format)
	}
	raw, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := newLogger(cmd)

	catalog, err := app.LoadCatalog(ctx, cfg.Reference, logger)
	if err != nil {
		return err
	}
	clients, err := app.NewClients(ctx, cfg)
	if err != nil {
		return err
	}
	recorder, err := metrics.NewRecorder(metrics.NewRegistry())
	if err != nil {
		return err
	}
	planner := app.NewPlanner(cfg, catalog, clients, recorder.Hooks(), logger)

	trips, err := planner.Plan(ctx, raw)
	if err != nil {
		if f, ok := domain.AsFailure(err); ok {
			return reportFailure(cmd.ErrOrStderr(), f)
		}
		return err
	}
	return writeTrips(cmd.OutOrStdout(), format, trips)
}

// buildRequest maps flags onto a raw request. Flags left at their defaults
// stay unprovided so the validator applies its own rules.
func buildRequest(cmd *cobra.Command) (domain.RawTripRequest, error) {
	f := cmd.Flags()
	var raw domain.RawTripRequest

	for name, dst := range map[string]*domain.Value{
		"origin": &raw.OriginAirport,
		"depart": &raw.DepartureDate,
		"return": &raw.ReturnDate,
		"class":  &raw.TravelClass,
	} {
		if f.Changed(name) {
			s, err := f.GetString(name)
			if err != nil {
				return raw, err
			}
			*dst = domain.StringValue(s)
		}
	}

	for name, dst := range map[string]*domain.Value{
		"max-price": &raw.MaxPrice,
		"children":  &raw.Children,
		"infants":   &raw.Infants,
	} {
		if f.Changed(name) {
			n, err := f.GetInt(name)
			if err != nil {
				return raw, err
			}
			*dst = domain.IntValue(n)
		}
	}

	// adults has a usable default, so it is always sent.
	adults, err := f.GetInt("adults")
	if err != nil {
		return raw, err
	}
	raw.Adults = domain.IntValue(adults)

	if f.Changed("descriptor") {
		descriptors, err := f.GetStringSlice("descriptor")
		if err != nil {
			return raw, err
		}
		raw.Descriptors = domain.ListValue(descriptors...)
	}
	if f.Changed("non-stop") {
		nonStop, err := f.GetBool("non-stop")
		if err != nil {
			return raw, err
		}
		raw.NonStop = domain.BoolValue(nonStop)
	}
	return raw, nil
}

// reportFailure prints every record of a planner failure and returns a
// short error for the exit status.
func reportFailure(w io.Writer, f domain.Failure) error {
	if err := writeJSON(w, map[string]any{"errors": domain.Serialize(f)}); err != nil {
		return err
	}
	return fmt.Errorf("plan failed with %d error(s)", len(f.Records()))
}

func writeTrips(w io.Writer, format string, trips []domain.TripResult) error {
	if format == formatJSON {
		if trips == nil {
			trips = []domain.TripResult{}
		}
		return writeJSON(w, trips)
	}
	out, err := renderMarkdown(tripsMarkdown(trips))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
