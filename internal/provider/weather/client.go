// Package weather geocodes places with OpenCage and fetches seven-day
// forecasts from meteoblue.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// Public endpoints.
const (
	DefaultGeocodeURL  = "https://api.opencagedata.com"
	DefaultForecastURL = "https://my.meteoblue.com"
)

var (
	// ErrPlaceNotFound is returned when the geocoder has no result.
	ErrPlaceNotFound = errors.New("weather: place not found")
	// ErrShortForecast is returned when fewer than seven days come back.
	ErrShortForecast = errors.New("weather: forecast shorter than seven days")
)

// StatusError is a non-2xx reply from either service.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather: %s returned %d: %s", e.Service, e.Status, e.Body)
}

// Config holds keys and endpoints. Empty URLs use the public endpoints.
type Config struct {
	GeocodeURL  string
	GeocodeKey  string
	ForecastURL string
	ForecastKey string
	HTTPClient  *http.Client
}

// Client implements service.WeatherService.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a Client.
func New(cfg Config) *Client {
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	cfg.GeocodeURL = strings.TrimRight(cfg.GeocodeURL, "/")
	cfg.ForecastURL = strings.TrimRight(cfg.ForecastURL, "/")
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{cfg: cfg, http: hc}
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Results []struct {
		Bounds *struct {
			Northeast latLng `json:"northeast"`
			Southwest latLng `json:"southwest"`
		} `json:"bounds"`
		Geometry *latLng `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the midpoint of the first result's bounding box, or its
// point geometry when the result has no box.
func (c *Client) Geocode(ctx context.Context, place string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("key", c.cfg.GeocodeKey)
	q.Set("limit", "1")
	q.Set("no_annotations", "1")

	var body geocodeResponse
	if err := c.getJSON(ctx, "opencage", c.cfg.GeocodeURL+"/geocode/v1/json?"+q.Encode(), &body); err != nil {
		return domain.Coordinates{}, fmt.Errorf("weather.Client.Geocode: %w", err)
	}
	if len(body.Results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("weather.Client.Geocode: %q: %w", place, ErrPlaceNotFound)
	}
	r := body.Results[0]
	switch {
	case r.Bounds != nil:
		return domain.Coordinates{
			Lat: (r.Bounds.Northeast.Lat + r.Bounds.Southwest.Lat) / 2,
			Lng: (r.Bounds.Northeast.Lng + r.Bounds.Southwest.Lng) / 2,
		}, nil
	case r.Geometry != nil:
		return domain.Coordinates{Lat: r.Geometry.Lat, Lng: r.Geometry.Lng}, nil
	}
	return domain.Coordinates{}, fmt.Errorf("weather.Client.Geocode: %q: %w", place, ErrPlaceNotFound)
}

type dayData struct {
	Time                     []string  `json:"time"`
	TemperatureMax           []float64 `json:"temperature_max"`
	TemperatureMin           []float64 `json:"temperature_min"`
	TemperatureMean          []float64 `json:"temperature_mean"`
	FeltTemperatureMax       []float64 `json:"felttemperature_max"`
	FeltTemperatureMin       []float64 `json:"felttemperature_min"`
	FeltTemperatureMean      []float64 `json:"felttemperature_mean"`
	WindSpeedMax             []float64 `json:"windspeed_max"`
	WindSpeedMin             []float64 `json:"windspeed_min"`
	WindSpeedMean            []float64 `json:"windspeed_mean"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	Precipitation            []float64 `json:"precipitation"`
}

// Forecast fetches the basic-day package in °F, mph and inches.
func (c *Client) Forecast(ctx context.Context, at domain.Coordinates) (domain.WeatherDaily, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	q.Set("apikey", c.cfg.ForecastKey)
	q.Set("format", "json")
	q.Set("temperature", "F")
	q.Set("windspeed", "mph")
	q.Set("precipitationamount", "inch")

	var body struct {
		DataDay dayData `json:"data_day"`
	}
	if err := c.getJSON(ctx, "meteoblue", c.cfg.ForecastURL+"/packages/basic-day?"+q.Encode(), &body); err != nil {
		return domain.WeatherDaily{}, fmt.Errorf("weather.Client.Forecast: %w", err)
	}
	return body.DataDay.daily()
}

// Daily geocodes place and forecasts there.
func (c *Client) Daily(ctx context.Context, place string) (domain.WeatherDaily, error) {
	at, err := c.Geocode(ctx, place)
	if err != nil {
		return domain.WeatherDaily{}, err
	}
	return c.Forecast(ctx, at)
}

// daily takes the first seven entries of every series.
func (d dayData) daily() (domain.WeatherDaily, error) {
	var out domain.WeatherDaily
	series := [][]float64{
		d.TemperatureMax, d.TemperatureMin, d.TemperatureMean,
		d.FeltTemperatureMax, d.FeltTemperatureMin, d.FeltTemperatureMean,
		d.WindSpeedMax, d.WindSpeedMin, d.WindSpeedMean,
		d.PrecipitationProbability, d.Precipitation,
	}
	for _, s := range series {
		if len(s) < domain.ForecastDays {
			return out, ErrShortForecast
		}
	}
	for i := range out {
		if i < len(d.Time) {
			out[i].Date = d.Time[i]
		}
		out[i].Temperature = domain.Range{Min: d.TemperatureMin[i], Mean: d.TemperatureMean[i], Max: d.TemperatureMax[i]}
		out[i].FeltTemperature = domain.Range{Min: d.FeltTemperatureMin[i], Mean: d.FeltTemperatureMean[i], Max: d.FeltTemperatureMax[i]}
		out[i].WindSpeed = domain.Range{Min: d.WindSpeedMin[i], Mean: d.WindSpeedMean[i], Max: d.WindSpeedMax[i]}
		out[i].Precipitation = domain.Precipitation{Probability: d.PrecipitationProbability[i], Amount: d.Precipitation[i]}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, service, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Service: service, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}
