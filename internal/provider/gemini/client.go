// Package gemini asks a Gemini model for candidate destinations.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("gemini: empty response")

// InvalidSuggestionError reports a candidate that failed schema checks.
type InvalidSuggestionError struct {
	Index int
	Err   error
}

func (e *InvalidSuggestionError) Error() string {
	return fmt.Sprintf("gemini: suggestion %d: %v", e.Index, e.Err)
}

func (e *InvalidSuggestionError) Unwrap() error { return e.Err }

// Model is the part of llms.Model the client uses.
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client implements service.Suggester.
type Client struct {
	model    Model
	validate *validator.Validate
}

// New connects to the Gemini API.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	opts := []googleai.Option{googleai.WithAPIKey(apiKey)}
	if model != "" {
		opts = append(opts, googleai.WithDefaultModel(model))
	}
	m, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini.New: %w", err)
	}
	return NewWithModel(m), nil
}

// NewWithModel wraps an existing model.
func NewWithModel(m Model) *Client {
	return &Client{model: m, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Suggest returns the model's candidate trips in the order it listed them.
func (c *Client) Suggest(ctx context.Context, q domain.SuggestionQuery) ([]domain.CandidateTrip, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("gemini.Client.Suggest: %w", err)
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, string(payload)),
	}

	resp, err := c.model.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("gemini.Client.Suggest: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	trips, err := decodeTrips(resp.Choices[0].Content)
	if err != nil {
		return nil, fmt.Errorf("gemini.Client.Suggest: %w", err)
	}
	for i := range trips {
		normalize(&trips[i])
		if err := c.validate.Struct(trips[i]); err != nil {
			return nil, &InvalidSuggestionError{Index: i, Err: err}
		}
	}
	return trips, nil
}

// decodeTrips accepts a bare array of trips, an array of {"trip": ...}
// envelopes, or an object holding exactly one such array.
func decodeTrips(text string) ([]domain.CandidateTrip, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		var wrapper map[string]json.RawMessage
		if objErr := json.Unmarshal([]byte(raw), &wrapper); objErr != nil || len(wrapper) != 1 {
			return nil, fmt.Errorf("decode trips: %w", err)
		}
		for _, v := range wrapper {
			if err := json.Unmarshal(v, &items); err != nil {
				return nil, fmt.Errorf("decode trips: %w", err)
			}
		}
	}

	trips := make([]domain.CandidateTrip, 0, len(items))
	for i, item := range items {
		var env struct {
			Trip *domain.CandidateTrip `json:"trip"`
		}
		if err := json.Unmarshal(item, &env); err != nil {
			return nil, fmt.Errorf("decode trip %d: %w", i, err)
		}
		if env.Trip != nil {
			trips = append(trips, *env.Trip)
			continue
		}
		var t domain.CandidateTrip
		if err := json.Unmarshal(item, &t); err != nil {
			return nil, fmt.Errorf("decode trip %d: %w", i, err)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// normalize clears the placeholder values models use for "no state".
func normalize(t *domain.CandidateTrip) {
	if s := t.Location.State; s != nil {
		switch strings.TrimSpace(*s) {
		case "", "None", "null", "N/A":
			t.Location.State = nil
		}
	}
}
