package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/handler/gen"
	"github.com/pkordes/trip-planner/internal/reference"
)

// mockAirportLookup is a test double for handler.AirportLookup.
type mockAirportLookup struct {
	lookup func(table, field, query string) ([]reference.Match, error)
}

func (m *mockAirportLookup) Lookup(table, field, query string) ([]reference.Match, error) {
	return m.lookup(table, field, query)
}

var _ handler.AirportLookup = (*mockAirportLookup)(nil)

func testCatalog(t *testing.T) *reference.Catalog {
	t.Helper()
	schema, err := reference.DefaultSchema()
	require.NoError(t, err)
	tables, err := reference.Load(context.Background(),
		reference.NewCSVSource("../reference/testdata/airports.csv", "../reference/testdata/airlines.csv"), schema)
	require.NoError(t, err)
	return reference.NewCatalog(tables, reference.NewResolver(reference.DefaultThreshold))
}

func getAirports(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/airports?"+query, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAirports(t *testing.T, rec *httptest.ResponseRecorder) []gen.AirportMatch {
	t.Helper()
	return decodeAirportList(t, rec).Data
}

func decodeAirportList(t *testing.T, rec *httptest.ResponseRecorder) gen.AirportList {
	t.Helper()
	var body gen.AirportList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// ---- GET /airports ---------------------------------------------------------

func TestListAirports_200_ByName(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=Heathrow")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeAirports(t, rec)
	require.Len(t, data, 1)
	assert.Equal(t, "London Heathrow Airport", data[0].Name)
	assert.Equal(t, "LHR", data[0].Iata)
	assert.Equal(t, "EGLL", data[0].Icao)
	assert.Equal(t, "London", data[0].City)
	assert.Greater(t, data[0].Score, float64(reference.DefaultThreshold))
}

func TestListAirports_200_ByIATA(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=CUN&field=iata")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeAirports(t, rec)
	require.NotEmpty(t, data)
	assert.Equal(t, "Cancún International Airport", data[0].Name)
}

func TestListAirports_200_LimitKeepsBestFirst(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=International+Airport&limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeAirportList(t, rec)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "John F Kennedy International Airport", body.Data[0].Name)
	assert.Equal(t, "Chicago O'Hare International Airport", body.Data[1].Name)
	assert.Equal(t, gen.Pagination{Page: 1, Limit: 2, Total: 6}, body.Pagination)
}

func TestListAirports_200_SecondPage(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=International+Airport&limit=4&page=2")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeAirportList(t, rec)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Daniel K Inouye International Airport", body.Data[0].Name)
	assert.Equal(t, "Cancún International Airport", body.Data[1].Name)
	assert.Equal(t, 6, body.Pagination.Total)
}

func TestListAirports_200_LimitIsClamped(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=Paris&field=city&limit=500&page=0")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeAirportList(t, rec)
	assert.Equal(t, gen.Pagination{Page: 1, Limit: 100, Total: 1}, body.Pagination)
}

func TestListAirports_200_HugePageIsEmpty(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=International+Airport&limit=100&page=4611686018427387904")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeAirportList(t, rec)
	assert.Empty(t, body.Data)
	assert.Equal(t, gen.Pagination{Page: 1 << 62, Limit: 100, Total: 6}, body.Pagination)
}

func TestListAirports_200_NoMatchesIsEmptyArray(t *testing.T) {
	h := newHTTPHandler(nil, testCatalog(t))

	rec := getAirports(t, h, "q=zzzz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":10,"total":0}}`, rec.Body.String())
}

func TestListAirports_400(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing q", "limit=5"},
		{"limit not a number", "q=Paris&limit=lots"},
		{"page not a number", "q=Paris&page=two"},
		{"unknown field", "q=Paris&field=elevation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHTTPHandler(nil, testCatalog(t))

			rec := getAirports(t, h, tt.query)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			errs := decodeErrors(t, rec)
			require.Len(t, errs, 1)
			assert.Equal(t, "BadRequestError", errs[0].Kind)
		})
	}
}

func TestListAirports_500_LookupError(t *testing.T) {
	a := &mockAirportLookup{
		lookup: func(string, string, string) ([]reference.Match, error) {
			return nil, errors.New("tables not loaded")
		},
	}

	rec := getAirports(t, newHTTPHandler(nil, a), "q=Paris")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListAirports_PassesAirportsTableAndField(t *testing.T) {
	var gotTable, gotField, gotQuery string
	a := &mockAirportLookup{
		lookup: func(table, field, query string) ([]reference.Match, error) {
			gotTable, gotField, gotQuery = table, field, query
			return nil, nil
		},
	}

	rec := getAirports(t, newHTTPHandler(nil, a), "q=Charles+de+Gaulle&field=city")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reference.Airports, gotTable)
	assert.Equal(t, "city", gotField)
	assert.Equal(t, "Charles de Gaulle", gotQuery)
}
