package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/app"
	"github.com/pkordes/trip-planner/internal/config"
)

var weatherCmd = &cobra.Command{
	Use:     "weather <place>",
	Short:   "Print the seven-day forecast for a place",
	Example: `  tripctl weather "Lisbon, Portugal"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runWeather,
}

func init() {
	weatherCmd.Flags().String("format", formatMarkdown, "Output format: markdown or json")
	rootCmd.AddCommand(weatherCmd)
}

func runWeather(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != formatJSON && format != formatMarkdown {
		return fmt.Errorf("unknown format %q", format)
	}
	cfg, timeout, err := config.LoadWeather()
	if err != nil {
		return err
	}
	client := app.NewWeather(cfg, &http.Client{Timeout: timeout})

	daily, err := client.Daily(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(w, daily)
	}
	var b strings.Builder
	writeWeather(&b, daily)
	out, err := renderMarkdown(b.String())
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(out))
	return err
}
