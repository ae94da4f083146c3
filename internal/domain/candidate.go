package domain

import "strings"

// Location describes a suggested destination.
// State and Warnings are optional; the suggestion service omits them for
// places where they do not apply.
type Location struct {
	City        string   `json:"city" validate:"required"`
	State       *string  `json:"state,omitempty"`
	Country     string   `json:"country" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Activities  []string `json:"activities" validate:"required"`
	Warnings    []string `json:"warnings,omitempty"`
	Culture     string   `json:"culture" validate:"required"`
	History     string   `json:"history" validate:"required"`
}

// Place renders the location as "city, state, country", or "city, country"
// when there is no state. It is the query sent to the geocoder.
func (l Location) Place() string {
	parts := []string{l.City}
	if l.State != nil && strings.TrimSpace(*l.State) != "" {
		parts = append(parts, *l.State)
	}
	parts = append(parts, l.Country)
	return strings.Join(parts, ", ")
}

// CandidateTrip is one destination proposed by the suggestion service.
// It is untrusted external data: only its schema is checked.
// DestinationAirport is a free-text airport name, not a code.
type CandidateTrip struct {
	Location           Location `json:"location" validate:"required"`
	DestinationAirport string   `json:"destination_airport" validate:"required"`
	Price              float64  `json:"price" validate:"gte=0"`
}

// SuggestionQuery is the input contract of the suggestion service.
type SuggestionQuery struct {
	MaxPrice      int      `json:"max_price"`
	OriginAirport string   `json:"origin_airport"`
	Descriptors   []string `json:"descriptors"`
}
