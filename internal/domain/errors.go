package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo functions when the requested reference
// table has no rows.
var ErrNotFound = errors.New("not found")

// ErrRecordNotPresent is returned by CompositeError.Difference and
// CompositeError.Remove when a requested record is not in the collection.
var ErrRecordNotPresent = errors.New("error record not present")

// Validation kinds. One kind per violated request rule.
const (
	KindInvalidAirport       = "InvalidAirportError"
	KindInvalidPrice         = "InvalidPriceError"
	KindInvalidPassenger     = "InvalidPassengerError"
	KindTooManyPassengers    = "TooManyPassengersError"
	KindTooManyInfants       = "TooManyInfantsError"
	KindInvalidDepartureDate = "InvalidDepartureDateError"
	KindInvalidReturnDate    = "InvalidReturnDateError"
	KindInvalidClass         = "InvalidClass"
	KindInvalidNonStop       = "InvalidNonStopError"
	KindInvalidDescriptors   = "InvalidDescriptorsError"
)

// Domain kinds. The request was well-formed but the world could not satisfy it.
const (
	KindNoTripsFound    = "NoTripsFoundError"
	KindAirportNotFound = "AirportNotFoundError"
	KindNoFlightsFound  = "NoFlightsFoundError"
)

// UnexpectedMessage is the fixed user-facing message attached to every
// collaborator failure the planner did not anticipate.
const UnexpectedMessage = "An Unexpected Error Occurred, Please Try Again Later"

// Failure is the error half of every planner result: either a single
// *ErrorRecord or a *CompositeError. Records lists the failures in the
// order they were recorded.
type Failure interface {
	error
	Records() []*ErrorRecord
}

// ErrorRecord is a single named failure.
// Kind identifies the violated rule, Message is safe to show to a user and
// Cause carries the underlying error (never shown verbatim to users).
type ErrorRecord struct {
	Kind    string
	Message string
	Cause   error
}

// NewErrorRecord builds a record whose cause is a plain error carrying the
// same message. Most validation failures have no deeper cause than that.
func NewErrorRecord(kind, message string) *ErrorRecord {
	return &ErrorRecord{Kind: kind, Message: message, Cause: errors.New(message)}
}

// Unexpected wraps an unanticipated failure. The kind is the Go type name of
// err so logs still tell transport errors apart from decode errors.
func Unexpected(err error) *ErrorRecord {
	return &ErrorRecord{Kind: typeName(err), Message: UnexpectedMessage, Cause: err}
}

func (e *ErrorRecord) Error() string {
	return e.Kind + ": " + e.Message
}

// Unwrap exposes Cause to errors.Is and errors.As.
func (e *ErrorRecord) Unwrap() error {
	return e.Cause
}

// Records returns the record itself as a one-element slice.
func (e *ErrorRecord) Records() []*ErrorRecord {
	return []*ErrorRecord{e}
}

// Add combines two records into a new CompositeError holding e then other.
func (e *ErrorRecord) Add(other *ErrorRecord) *CompositeError {
	return NewCompositeError(e, other)
}

// Equal reports whether two records describe the same failure.
// Identical pointers are always equal; otherwise kind, message and the
// cause's text must match.
func (e *ErrorRecord) Equal(other *ErrorRecord) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	return e.Kind == other.Kind && e.Message == other.Message && causeText(e.Cause) == causeText(other.Cause)
}

// CompositeError is an ordered group of records reported as one failure.
// The zero value is an empty, usable collection.
type CompositeError struct {
	records []*ErrorRecord
}

// NewCompositeError returns a composite holding records in the given order.
func NewCompositeError(records ...*ErrorRecord) *CompositeError {
	c := &CompositeError{records: make([]*ErrorRecord, 0, len(records))}
	c.records = append(c.records, records...)
	return c
}

func (c *CompositeError) Error() string {
	parts := make([]string, len(c.records))
	for i, r := range c.records {
		parts[i] = r.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is and errors.As inspect every record.
func (c *CompositeError) Unwrap() []error {
	out := make([]error, len(c.records))
	for i, r := range c.records {
		out[i] = r
	}
	return out
}

// Records returns a copy of the records in insertion order.
func (c *CompositeError) Records() []*ErrorRecord {
	out := make([]*ErrorRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of records.
func (c *CompositeError) Len() int {
	return len(c.records)
}

// Append adds r to the end of the collection.
func (c *CompositeError) Append(r *ErrorRecord) {
	c.records = append(c.records, r)
}

// Remove deletes the first record equal to r.
func (c *CompositeError) Remove(r *ErrorRecord) error {
	i := c.indexOf(r)
	if i < 0 {
		return fmt.Errorf("domain.CompositeError.Remove: %w: %s", ErrRecordNotPresent, r.Kind)
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	return nil
}

// RemoveAt deletes and returns the record at index i.
func (c *CompositeError) RemoveAt(i int) (*ErrorRecord, error) {
	if i < 0 || i >= len(c.records) {
		return nil, fmt.Errorf("domain.CompositeError.RemoveAt: index %d out of range [0,%d)", i, len(c.records))
	}
	r := c.records[i]
	c.records = append(c.records[:i], c.records[i+1:]...)
	return r, nil
}

// Union returns a new composite holding c's records followed by other's.
// Neither operand is modified.
func (c *CompositeError) Union(other Failure) *CompositeError {
	out := NewCompositeError(c.records...)
	if other != nil {
		out.records = append(out.records, other.Records()...)
	}
	return out
}

// Difference removes each record of other from c and returns the removed
// records in the order they were requested. It is all-or-nothing: if any
// requested record is absent, c is left untouched and ErrRecordNotPresent
// is returned.
func (c *CompositeError) Difference(other Failure) ([]*ErrorRecord, error) {
	if other == nil {
		return nil, nil
	}
	work := c.Records()
	var removed []*ErrorRecord
	for _, want := range other.Records() {
		i := indexOf(work, want)
		if i < 0 {
			return nil, fmt.Errorf("domain.CompositeError.Difference: %w: %s", ErrRecordNotPresent, want.Kind)
		}
		removed = append(removed, work[i])
		work = append(work[:i], work[i+1:]...)
	}
	c.records = work
	return removed, nil
}

func (c *CompositeError) indexOf(r *ErrorRecord) int {
	return indexOf(c.records, r)
}

func indexOf(records []*ErrorRecord, r *ErrorRecord) int {
	for i, have := range records {
		if have.Equal(r) {
			return i
		}
	}
	return -1
}

// SerializedError is the wire form of an ErrorRecord.
type SerializedError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Cause   string `json:"cause"`
}

// Serialize flattens any Failure into its ordered wire form.
func Serialize(f Failure) []SerializedError {
	records := f.Records()
	out := make([]SerializedError, len(records))
	for i, r := range records {
		out[i] = SerializedError{Kind: r.Kind, Message: r.Message, Cause: causeText(r.Cause)}
	}
	return out
}

// MarshalJSON encodes the record as a single SerializedError.
func (e *ErrorRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(Serialize(e)[0])
}

// MarshalJSON encodes the composite as an ordered array of SerializedError.
func (c *CompositeError) MarshalJSON() ([]byte, error) {
	return json.Marshal(Serialize(c))
}

// AsFailure returns err as a Failure when it is one (directly or wrapped).
func AsFailure(err error) (Failure, bool) {
	var composite *CompositeError
	if errors.As(err, &composite) {
		return composite, true
	}
	var record *ErrorRecord
	if errors.As(err, &record) {
		return record, true
	}
	return nil, false
}

// HasKind reports whether any record in f has the given kind.
func HasKind(f Failure, kind string) bool {
	for _, r := range f.Records() {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// typeName renders the dynamic type of err without the pointer marker,
// e.g. "url.Error" or "json.SyntaxError". Context prefixes added with
// fmt.Errorf("...: %w") are skipped so the kind names the real failure.
func typeName(err error) string {
	if err == nil {
		return "UnknownError"
	}
	for {
		name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
		if name != "fmt.wrapError" {
			return name
		}
		inner := errors.Unwrap(err)
		if inner == nil {
			return name
		}
		err = inner
	}
}
