package service

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/reference"
)

// Catalog is the read side of the reference tables.
// *reference.Catalog satisfies it.
type Catalog interface {
	Lookup(table, field, query string) ([]reference.Match, error)
}

// Validator turns a RawTripRequest into a TripRequest, reporting the first
// violated rule. The only multi-record failure is a departure date on or
// after the return date.
type Validator struct {
	catalog Catalog
	now     func() time.Time
}

// NewValidator returns a Validator. now supplies "today"; nil means time.Now.
func NewValidator(c Catalog, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{catalog: c, now: now}
}

// fail builds a record whose cause text may differ from the user message.
func fail(kind, message, cause string) *domain.ErrorRecord {
	return &domain.ErrorRecord{Kind: kind, Message: message, Cause: errors.New(cause)}
}

// Validate runs the checks in a fixed order. A non-nil error is always a
// domain.Failure.
func (v *Validator) Validate(raw domain.RawTripRequest) (domain.TripRequest, error) {
	if err := checkRequired(raw); err != nil {
		return domain.TripRequest{}, err
	}
	req, descs, err := coerce(raw)
	if err != nil {
		return domain.TripRequest{}, err
	}
	if err := v.checkOrigin(req.OriginAirport); err != nil {
		return domain.TripRequest{}, err
	}
	if err := checkCounts(req); err != nil {
		return domain.TripRequest{}, err
	}
	dep, ret, err := v.checkDates(raw)
	if err != nil {
		return domain.TripRequest{}, err
	}
	req.DepartureDate = dep
	req.ReturnDate = ret

	if raw.TravelClass.Provided() {
		class, ok := domain.ParseTravelClass(raw.TravelClass.Text())
		if !ok {
			return domain.TripRequest{}, domain.NewErrorRecord(domain.KindInvalidClass, "The travel class is invalid")
		}
		req.TravelClass = &class
	}

	req.Descriptors = cleanDescriptors(descs)
	if len(req.Descriptors) == 0 {
		return domain.TripRequest{}, domain.NewErrorRecord(domain.KindInvalidDescriptors, "The descriptors cannot be empty")
	}
	return req, nil
}

func checkRequired(raw domain.RawTripRequest) error {
	switch {
	case !raw.Descriptors.Provided():
		return domain.NewErrorRecord(domain.KindInvalidDescriptors, "The descriptors cannot be empty")
	case !raw.MaxPrice.Provided():
		return domain.NewErrorRecord(domain.KindInvalidPrice, "The maximum price cannot be empty")
	case !raw.Adults.Provided():
		return domain.NewErrorRecord(domain.KindInvalidPassenger, "The number of passengers cannot be empty")
	case !raw.DepartureDate.Provided():
		return domain.NewErrorRecord(domain.KindInvalidDepartureDate, "The departure date cannot be empty")
	case !raw.OriginAirport.Provided():
		return domain.NewErrorRecord(domain.KindInvalidAirport, "The origin airport cannot be empty")
	}
	return nil
}

// coerce checks wire types. Optional fields are only checked when provided.
func coerce(raw domain.RawTripRequest) (domain.TripRequest, []string, error) {
	var req domain.TripRequest

	if !raw.OriginAirport.IsString() {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidAirport, "The origin airport must be a string")
	}
	req.OriginAirport = raw.OriginAirport.Text()

	adults, ok := raw.Adults.Int()
	if !ok {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidPassenger, "The number of passengers must be a number")
	}
	req.Adults = adults

	if raw.Children.Provided() {
		n, ok := raw.Children.Int()
		if !ok {
			return req, nil, domain.NewErrorRecord(domain.KindInvalidPassenger, "The number of children must be a number")
		}
		req.Children = &n
	}
	if raw.Infants.Provided() {
		n, ok := raw.Infants.Int()
		if !ok {
			return req, nil, domain.NewErrorRecord(domain.KindInvalidPassenger, "The number of infants must be a number")
		}
		req.Infants = &n
	}

	price, ok := raw.MaxPrice.Int()
	if !ok {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidPrice, "The maximum price must be a number")
	}
	req.MaxPrice = price

	if raw.TravelClass.Provided() && !raw.TravelClass.IsString() {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidClass, "The travel class must be a string")
	}
	if raw.NonStop.Provided() {
		b, ok := raw.NonStop.Bool()
		if !ok {
			return req, nil, domain.NewErrorRecord(domain.KindInvalidNonStop, "The non-stop value must be a boolean")
		}
		req.NonStop = &b
	}
	if !raw.DepartureDate.IsString() {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidDepartureDate, "The departure date must be a string")
	}
	if raw.ReturnDate.Provided() && !raw.ReturnDate.IsString() {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidReturnDate, "The return date must be a string")
	}
	descs, ok := raw.Descriptors.Strings()
	if !ok {
		return req, nil, domain.NewErrorRecord(domain.KindInvalidDescriptors, "The descriptors must be a string")
	}
	return req, descs, nil
}

func (v *Validator) checkOrigin(origin string) error {
	for _, r := range origin {
		if !unicode.IsLetter(r) {
			return domain.NewErrorRecord(domain.KindInvalidAirport, "The origin airport contains invalid characters")
		}
	}
	matches, err := v.catalog.Lookup(reference.Airports, reference.FieldName, origin)
	if err != nil {
		return domain.Unexpected(err)
	}
	if len(matches) == 0 {
		return errOriginNotFound()
	}
	return nil
}

func errOriginNotFound() *domain.ErrorRecord {
	return fail(domain.KindInvalidAirport,
		"The specified airport could not be found",
		"The specified origin airport could not be found")
}

func checkCounts(req domain.TripRequest) error {
	children, infants := deref(req.Children), deref(req.Infants)
	switch {
	case req.MaxPrice <= 0:
		return domain.NewErrorRecord(domain.KindInvalidPrice, "The maximum price cannot be less than or equal to zero")
	case req.Adults < 1:
		return domain.NewErrorRecord(domain.KindInvalidPassenger, "There must be at least one adult passenger")
	case children < 0:
		return domain.NewErrorRecord(domain.KindInvalidPassenger, "The number of children cannot be negative")
	case infants < 0:
		return domain.NewErrorRecord(domain.KindInvalidPassenger, "The number of infants cannot be negative")
	// children is non-negative here, so the subtraction cannot overflow.
	case req.Adults > domain.MaxSeatedPassengers-children:
		return domain.NewErrorRecord(domain.KindTooManyPassengers, "The number of passengers exceeds the limit of 9")
	case infants > req.Adults:
		return domain.NewErrorRecord(domain.KindTooManyInfants, "The number of infants exceeds the number of adults")
	}
	return nil
}

func (v *Validator) checkDates(raw domain.RawTripRequest) (domain.Date, *domain.Date, error) {
	dep, ok := domain.ParseDate(raw.DepartureDate.Text())
	if !ok {
		return domain.Date{}, nil, domain.NewErrorRecord(domain.KindInvalidDepartureDate, "The departure date is not a valid date")
	}
	var ret *domain.Date
	if raw.ReturnDate.Provided() {
		d, ok := domain.ParseDate(raw.ReturnDate.Text())
		if !ok {
			return domain.Date{}, nil, domain.NewErrorRecord(domain.KindInvalidReturnDate, "The return date is not a valid date")
		}
		ret = &d
	}

	today := domain.DateOf(v.now())
	if ret != nil {
		switch domain.CompareDates(*ret, today) {
		case -1:
			return domain.Date{}, nil, domain.NewErrorRecord(domain.KindInvalidReturnDate, "The return date is before the current date")
		case 0:
			return domain.Date{}, nil, domain.NewErrorRecord(domain.KindInvalidReturnDate, "The return date is the current date")
		}
	}
	switch domain.CompareDates(dep, today) {
	case -1:
		return domain.Date{}, nil, domain.NewErrorRecord(domain.KindInvalidDepartureDate, "The departure date is before the current date")
	case 0:
		return domain.Date{}, nil, domain.NewErrorRecord(domain.KindInvalidDepartureDate, "The departure date is the current date")
	}

	if ret != nil && domain.CompareDates(dep, *ret) >= 0 {
		depErr := domain.NewErrorRecord(domain.KindInvalidDepartureDate, "The departure date is after the return date")
		retErr := domain.NewErrorRecord(domain.KindInvalidReturnDate, "The return date is before the departure date")
		return domain.Date{}, nil, depErr.Add(retErr)
	}
	return dep, ret, nil
}

func cleanDescriptors(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
