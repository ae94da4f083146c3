package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type valueType int

const (
	valueAbsent valueType = iota
	valueString
	valueNumber
	valueBool
	valueList
	valueOther
)

// Value is a loosely-typed request field exactly as it arrived on the wire.
// Clients send the same field as "2", 2, or not at all; Value keeps enough
// of the original shape for the validator to tell those cases apart.
// The zero value is an absent field.
type Value struct {
	typ  valueType
	text string
	list []string
}

// StringValue returns a Value holding a JSON string.
func StringValue(s string) Value { return Value{typ: valueString, text: s} }

// IntValue returns a Value holding a JSON number.
func IntValue(i int) Value { return Value{typ: valueNumber, text: strconv.Itoa(i)} }

// NumberValue returns a Value holding a raw JSON number literal such as "2.5".
func NumberValue(literal string) Value { return Value{typ: valueNumber, text: literal} }

// BoolValue returns a Value holding a JSON boolean.
func BoolValue(b bool) Value { return Value{typ: valueBool, text: strconv.FormatBool(b)} }

// ListValue returns a Value holding a JSON array of strings.
func ListValue(items ...string) Value { return Value{typ: valueList, list: items} }

// Provided reports whether the field carries anything. Absent fields, JSON
// null and the empty string all count as not provided.
func (v Value) Provided() bool {
	switch v.typ {
	case valueAbsent:
		return false
	case valueString:
		return v.text != ""
	default:
		return true
	}
}

// IsString reports whether the field arrived as a JSON string.
func (v Value) IsString() bool { return v.typ == valueString }

// Text returns the raw text of a scalar field.
func (v Value) Text() string { return v.text }

// Int coerces the field to an integer. Strings must consist of ASCII digits
// only; numbers must be integral.
func (v Value) Int() (int, bool) {
	switch v.typ {
	case valueString:
		if !isDigits(v.text) {
			return 0, false
		}
	case valueNumber:
	default:
		return 0, false
	}
	n, err := strconv.Atoi(v.text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool coerces the field to a boolean. Strings must be "true" or "false",
// compared case-insensitively.
func (v Value) Bool() (bool, bool) {
	switch v.typ {
	case valueBool:
		return v.text == "true", true
	case valueString:
		switch strings.ToLower(v.text) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Strings returns the raw items of a list field, or the comma-separated
// parts of a string field. Items are not trimmed.
func (v Value) Strings() ([]string, bool) {
	switch v.typ {
	case valueString:
		return strings.Split(v.text, ","), true
	case valueList:
		out := make([]string, len(v.list))
		copy(out, v.list)
		return out, true
	}
	return nil, false
}

// UnmarshalJSON records the JSON type alongside the value.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*v = Value{}
		return nil
	}
	switch b[0] {
	case 'n':
		*v = Value{}
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(b, &flag); err != nil {
			return err
		}
		*v = BoolValue(flag)
	case '[':
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			// Arrays of anything but strings are kept so the validator can
			// report them as a type error instead of a decode failure.
			*v = Value{typ: valueOther, text: string(b)}
			return nil
		}
		*v = ListValue(items...)
	case '{':
		*v = Value{typ: valueOther, text: string(b)}
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*v = NumberValue(n.String())
	}
	return nil
}

// MarshalJSON writes the value back in the JSON type it arrived as.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case valueString:
		return json.Marshal(v.text)
	case valueNumber, valueBool, valueOther:
		return []byte(v.text), nil
	case valueList:
		return json.Marshal(v.list)
	}
	return []byte("null"), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
