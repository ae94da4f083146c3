package domain

// FlightQuery is the input contract of the flight-offer service.
// Codes are IATA airport codes; dates are ISO (YYYY-MM-DD).
type FlightQuery struct {
	OriginCode      string
	DestinationCode string
	DepartureDate   string
	ReturnDate      *string
	Adults          int
	Children        *int
	Infants         *int
	TravelClass     *TravelClass
	NonStop         *bool
	MaxPrice        int
}

// FlightOffer is one priced itinerary returned by the flight-offer service.
// Segments cover the outbound itinerary only, in flying order.
type FlightOffer struct {
	TotalPrice  float64
	Currency    string
	Seats       int
	CarrierCode string
	Segments    []Segment
}

// Segment is one leg of an itinerary.
type Segment struct {
	Departure SegmentEndpoint
	Arrival   SegmentEndpoint
}

// SegmentEndpoint is an airport code plus a local timestamp.
type SegmentEndpoint struct {
	Code string
	At   string
}

// FlightSummary condenses the cheapest offer for one candidate trip.
// Airline and airport names are display names, not codes.
type FlightSummary struct {
	Cost      float64        `json:"cost"`
	Currency  string         `json:"currency,omitempty"`
	Airline   string         `json:"airline"`
	Seats     int            `json:"seats"`
	Departure FlightEndpoint `json:"departure"`
	Arrival   FlightEndpoint `json:"arrival"`
}

// FlightEndpoint is a timestamp plus an airport display name.
type FlightEndpoint struct {
	Time    string `json:"time"`
	Airport string `json:"airport"`
}
