package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/pkordes/trip-planner/internal/domain"
)

// renderMarkdown styles markdown for the terminal.
func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return r.Render(md)
}

func tripsMarkdown(trips []domain.TripResult) string {
	if len(trips) == 0 {
		return "_No trips found._\n"
	}
	var b strings.Builder
	for i, t := range trips {
		loc := t.Candidate.Location
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, loc.Place())
		fmt.Fprintf(&b, "%s\n\n", loc.Description)

		fl := t.Flight
		price := fmt.Sprintf("%.2f", fl.Cost)
		if fl.Currency != "" {
			price += " " + fl.Currency
		}
		fmt.Fprintf(&b, "**Flight:** %s, %s, %d seats left\n\n", fl.Airline, price, fl.Seats)
		fmt.Fprintf(&b, "- Departs %s from %s\n", fl.Departure.Time, fl.Departure.Airport)
		fmt.Fprintf(&b, "- Arrives %s at %s\n\n", fl.Arrival.Time, fl.Arrival.Airport)

		if len(loc.Activities) > 0 {
			b.WriteString("**Things to do:**\n\n")
			for _, a := range loc.Activities {
				fmt.Fprintf(&b, "- %s\n", a)
			}
			b.WriteString("\n")
		}
		if len(loc.Warnings) > 0 {
			b.WriteString("**Warnings:**\n\n")
			for _, w := range loc.Warnings {
				fmt.Fprintf(&b, "- %s\n", w)
			}
			b.WriteString("\n")
		}
		writeWeather(&b, t.Weather)
	}
	return b.String()
}

func writeWeather(b *strings.Builder, w domain.WeatherDaily) {
	b.WriteString("| Date | Temp °F | Feels like °F | Wind mph | Rain |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, d := range w {
		fmt.Fprintf(b, "| %s | %.0f to %.0f | %.0f to %.0f | %.0f | %.0f%%, %.2f in |\n",
			d.Date,
			d.Temperature.Min, d.Temperature.Max,
			d.FeltTemperature.Min, d.FeltTemperature.Max,
			d.WindSpeed.Max,
			d.Precipitation.Probability, d.Precipitation.Amount,
		)
	}
	b.WriteString("\n")
}
