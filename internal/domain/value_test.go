package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
)

func TestValue_UnmarshalJSON_Shapes(t *testing.T) {
	var req domain.RawTripRequest
	body := `{
		"origin_airport": "Heathrow",
		"adults": 2,
		"children": "",
		"infants": null,
		"non_stop": "TRUE",
		"descriptors": ["beach", " food "],
		"max_price": "1500"
	}`

	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.True(t, req.OriginAirport.IsString())
	assert.Equal(t, "Heathrow", req.OriginAirport.Text())

	n, ok := req.Adults.Int()
	require.True(t, ok)
	assert.Equal(t, 2, n)

	assert.False(t, req.Children.Provided(), "empty string is not provided")
	assert.False(t, req.Infants.Provided(), "null is not provided")
	assert.False(t, req.ReturnDate.Provided(), "absent is not provided")

	b, ok := req.NonStop.Bool()
	require.True(t, ok)
	assert.True(t, b)

	items, ok := req.Descriptors.Strings()
	require.True(t, ok)
	assert.Equal(t, []string{"beach", " food "}, items)

	price, ok := req.MaxPrice.Int()
	require.True(t, ok)
	assert.Equal(t, 1500, price)
}

func TestValue_Int(t *testing.T) {
	tests := []struct {
		name string
		v    domain.Value
		want int
		ok   bool
	}{
		{"digit string", domain.StringValue("42"), 42, true},
		{"signed string", domain.StringValue("-1"), 0, false},
		{"spaced string", domain.StringValue(" 4"), 0, false},
		{"integral number", domain.IntValue(-3), -3, true},
		{"fractional number", domain.NumberValue("2.5"), 0, false},
		{"bool", domain.BoolValue(true), 0, false},
		{"list", domain.ListValue("1"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Int()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_Bool(t *testing.T) {
	for _, s := range []string{"true", "True", "TRUE"} {
		b, ok := domain.StringValue(s).Bool()
		assert.True(t, ok, s)
		assert.True(t, b, s)
	}
	b, ok := domain.StringValue("fAlSe").Bool()
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = domain.StringValue("yes").Bool()
	assert.False(t, ok)
	_, ok = domain.IntValue(1).Bool()
	assert.False(t, ok)
}

func TestValue_NonStringArrayIsKeptForTypeCheck(t *testing.T) {
	var v domain.Value

	require.NoError(t, json.Unmarshal([]byte(`[1, 2]`), &v))

	assert.True(t, v.Provided())
	_, ok := v.Strings()
	assert.False(t, ok)
}
