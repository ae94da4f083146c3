// Package amadeus searches flight offers through the Amadeus Self-Service API.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/pkordes/trip-planner/internal/domain"
)

const (
	tokenPath  = "/v1/security/oauth2/token"
	offersPath = "/v2/shopping/flight-offers"
)

// Config holds the client's credentials and transport settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// RatePerSecond paces outbound searches. Zero disables pacing.
	RatePerSecond float64
	// HTTPClient is the base transport for both token and search calls.
	HTTPClient *http.Client
}

// Client implements service.FlightSearcher.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New returns a Client. Tokens are fetched lazily and refreshed on expiry.
func New(cfg Config) *Client {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	hc := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	hc.Timeout = base.Timeout

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return &Client{baseURL: baseURL, http: hc, limiter: limiter}
}

// APIError is a non-2xx reply from the API.
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("amadeus: %d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("amadeus: %d %s", e.Status, e.Title)
}

// SearchOffers returns every offer for q in API order.
func (c *Client) SearchOffers(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("amadeus.Client.SearchOffers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+offersPath+"?"+queryParams(q).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("amadeus.Client.SearchOffers: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.amadeus+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amadeus.Client.SearchOffers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, decodeAPIError(resp)
	}

	var body offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("amadeus.Client.SearchOffers: decode: %w", err)
	}
	offers := make([]domain.FlightOffer, 0, len(body.Data))
	for i, o := range body.Data {
		offer, err := o.toDomain()
		if err != nil {
			return nil, fmt.Errorf("amadeus.Client.SearchOffers: offer %d: %w", i, err)
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func queryParams(q domain.FlightQuery) url.Values {
	v := url.Values{}
	v.Set("originLocationCode", q.OriginCode)
	v.Set("destinationLocationCode", q.DestinationCode)
	v.Set("departureDate", q.DepartureDate)
	v.Set("adults", strconv.Itoa(q.Adults))
	v.Set("maxPrice", strconv.Itoa(q.MaxPrice))
	if q.ReturnDate != nil {
		v.Set("returnDate", *q.ReturnDate)
	}
	if q.Children != nil {
		v.Set("children", strconv.Itoa(*q.Children))
	}
	if q.Infants != nil {
		v.Set("infants", strconv.Itoa(*q.Infants))
	}
	if q.TravelClass != nil && q.TravelClass.Code() != "" {
		v.Set("travelClass", q.TravelClass.Code())
	}
	if q.NonStop != nil {
		v.Set("nonStop", strconv.FormatBool(*q.NonStop))
	}
	return v
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	var body struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && len(body.Errors) > 0 {
		apiErr.Title = body.Errors[0].Title
		apiErr.Detail = body.Errors[0].Detail
	}
	return apiErr
}

type offersResponse struct {
	Data []offer `json:"data"`
}

type offer struct {
	NumberOfBookableSeats  int         `json:"numberOfBookableSeats"`
	ValidatingAirlineCodes []string    `json:"validatingAirlineCodes"`
	Price                  price       `json:"price"`
	Itineraries            []itinerary `json:"itineraries"`
}

type price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type itinerary struct {
	Segments []segment `json:"segments"`
}

type segment struct {
	Departure endpoint `json:"departure"`
	Arrival   endpoint `json:"arrival"`
}

type endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

// toDomain keeps only the outbound itinerary.
func (o offer) toDomain() (domain.FlightOffer, error) {
	total, err := strconv.ParseFloat(o.Price.Total, 64)
	if err != nil {
		return domain.FlightOffer{}, fmt.Errorf("price %q: %w", o.Price.Total, err)
	}
	out := domain.FlightOffer{
		TotalPrice: total,
		Currency:   o.Price.Currency,
		Seats:      o.NumberOfBookableSeats,
	}
	if len(o.ValidatingAirlineCodes) > 0 {
		out.CarrierCode = o.ValidatingAirlineCodes[0]
	}
	if len(o.Itineraries) > 0 {
		for _, s := range o.Itineraries[0].Segments {
			out.Segments = append(out.Segments, domain.Segment{
				Departure: domain.SegmentEndpoint{Code: s.Departure.IATACode, At: s.Departure.At},
				Arrival:   domain.SegmentEndpoint{Code: s.Arrival.IATACode, At: s.Arrival.At},
			})
		}
	}
	return out, nil
}
