// Package domain contains the core data types for the trip planner.
// It depends only on the standard library and is imported by every other
// internal package (reference, service, provider, handler).
package domain

// RawTripRequest is a trip request before validation. Every field keeps its
// wire shape so the validator can report type errors per field.
type RawTripRequest struct {
	OriginAirport Value `json:"origin_airport"`
	Descriptors   Value `json:"descriptors"`
	DepartureDate Value `json:"departure_date"`
	ReturnDate    Value `json:"return_date"`
	MaxPrice      Value `json:"max_price"`
	Adults        Value `json:"adults"`
	Children      Value `json:"children"`
	Infants       Value `json:"infants"`
	TravelClass   Value `json:"trav_class"`
	NonStop       Value `json:"non_stop"`
}

// TripRequest is a validated, normalized request.
// Optional fields are nil when the caller did not provide them.
type TripRequest struct {
	OriginAirport string       `json:"origin_airport"`
	Descriptors   []string     `json:"descriptors"`
	DepartureDate Date         `json:"departure_date"`
	ReturnDate    *Date        `json:"return_date,omitempty"`
	MaxPrice      int          `json:"max_price"`
	Adults        int          `json:"adults"`
	Children      *int         `json:"children,omitempty"`
	Infants       *int         `json:"infants,omitempty"`
	TravelClass   *TravelClass `json:"trav_class,omitempty"`
	NonStop       *bool        `json:"non_stop,omitempty"`
}

// MaxSeatedPassengers caps adults plus children on one booking.
// Infants travel on a lap and do not count.
const MaxSeatedPassengers = 9

// TravelClass is the cabin requested by the traveller, in display form.
type TravelClass string

const (
	ClassNone           TravelClass = "None"
	ClassEconomy        TravelClass = "Economy"
	ClassPremiumEconomy TravelClass = "Premium Economy"
	ClassBusiness       TravelClass = "Business"
	ClassFirst          TravelClass = "First"
)

var travelClassCodes = map[TravelClass]string{
	ClassNone:           "",
	ClassEconomy:        "ECONOMY",
	ClassPremiumEconomy: "PREMIUM_ECONOMY",
	ClassBusiness:       "BUSINESS",
	ClassFirst:          "FIRST",
}

// ParseTravelClass accepts exactly the display names above.
func ParseTravelClass(s string) (TravelClass, bool) {
	c := TravelClass(s)
	_, ok := travelClassCodes[c]
	return c, ok
}

// Code returns the flight-offer API code for the class, or "" for ClassNone.
func (c TravelClass) Code() string {
	return travelClassCodes[c]
}
