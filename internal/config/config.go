// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Reference source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 64 KiB.
	MaxBodyBytes int64

	// CandidateWorkers bounds how many candidate trips are processed at once.
	// 1 means strictly sequential.
	CandidateWorkers int

	// ProviderTimeout is the HTTP client timeout for every outbound call.
	ProviderTimeout time.Duration

	Reference Reference
	Gemini    Gemini
	Amadeus   Amadeus
	Weather   Weather
}

// Reference configures where the airport and airline tables come from.
type Reference struct {
	// Source is SourceCSV or SourcePostgres.
	Source       string
	AirportsPath string
	AirlinesPath string
	// DatabaseURL is required when Source is SourcePostgres.
	DatabaseURL string
	// MatchThreshold is the resolver's score floor.
	MatchThreshold float64
}

// Gemini configures the suggestion service.
type Gemini struct {
	APIKey string
	Model  string
}

// Amadeus configures the flight-offer service.
type Amadeus struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// RateLimit is the outbound request rate in requests per second.
	RateLimit float64
}

// Weather configures the geocoding and forecast services.
type Weather struct {
	OpenCageURL  string
	OpenCageKey  string
	MeteoblueURL string
	MeteoblueKey string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set and every
// variable that could not be parsed.
func Load() (Config, error) {
	var p parser
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes:     int64(p.intVar("MAX_BODY_BYTES", 65536)),
		CandidateWorkers: p.intVar("CANDIDATE_WORKERS", 1),
		ProviderTimeout:  p.durationVar("PROVIDER_TIMEOUT", 30*time.Second),
		Reference:        p.reference(),
		Gemini: Gemini{
			APIKey: p.required("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Amadeus: Amadeus{
			BaseURL:      getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
			ClientID:     p.required("AMADEUS_CLIENT_ID"),
			ClientSecret: p.required("AMADEUS_CLIENT_SECRET"),
			RateLimit:    p.floatVar("AMADEUS_RATE_LIMIT", 10),
		},
		Weather: p.weather(),
	}
	if cfg.CandidateWorkers < 1 {
		p.invalid = append(p.invalid, "CANDIDATE_WORKERS (must be >= 1)")
	}
	if err := p.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadReference reads only the reference-data section. Commands that never
// call the remote services use it so they do not need API keys.
func LoadReference() (Reference, error) {
	var p parser
	ref := p.reference()
	if err := p.err(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// LoadWeather reads the geocoding and forecast settings plus the shared
// provider timeout.
func LoadWeather() (Weather, time.Duration, error) {
	var p parser
	w := p.weather()
	timeout := p.durationVar("PROVIDER_TIMEOUT", 30*time.Second)
	if err := p.err(); err != nil {
		return Weather{}, 0, err
	}
	return w, timeout, nil
}

// parser accumulates problems so one error can name all of them.
type parser struct {
	missing []string
	invalid []string
}

func (p *parser) reference() Reference {
	ref := Reference{
		Source:         strings.ToLower(getEnv("REFERENCE_SOURCE", SourceCSV)),
		AirportsPath:   getEnv("AIRPORTS_CSV_PATH", "data/airports.csv"),
		AirlinesPath:   getEnv("AIRLINES_CSV_PATH", "data/airlines.csv"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MatchThreshold: p.floatVar("MATCH_THRESHOLD", 90),
	}
	switch ref.Source {
	case SourceCSV:
	case SourcePostgres:
		if ref.DatabaseURL == "" {
			p.missing = append(p.missing, "DATABASE_URL")
		}
	default:
		p.invalid = append(p.invalid, fmt.Sprintf("REFERENCE_SOURCE (%q is not csv or postgres)", ref.Source))
	}
	return ref
}

func (p *parser) weather() Weather {
	return Weather{
		OpenCageURL:  getEnv("OPENCAGE_BASE_URL", "https://api.opencagedata.com"),
		OpenCageKey:  p.required("OPENCAGE_API_KEY"),
		MeteoblueURL: getEnv("METEOBLUE_BASE_URL", "https://my.meteoblue.com"),
		MeteoblueKey: p.required("METEOBLUE_API_KEY"),
	}
}

func (p *parser) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		p.missing = append(p.missing, key)
	}
	return v
}

func (p *parser) intVar(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return n
}

func (p *parser) floatVar(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return f
}

func (p *parser) durationVar(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return d
}

func (p *parser) err() error {
	var parts []string
	if len(p.missing) > 0 {
		parts = append(parts, "required environment variables not set: "+strings.Join(p.missing, ", "))
	}
	if len(p.invalid) > 0 {
		parts = append(parts, "invalid environment variables: "+strings.Join(p.invalid, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return errors.New(strings.Join(parts, "; "))
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
