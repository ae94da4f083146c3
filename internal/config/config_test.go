package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/config"
)

// setRequired sets every variable Load needs and clears the optional ones so
// the host environment cannot leak into a test.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("AMADEUS_CLIENT_ID", "amadeus-id")
	t.Setenv("AMADEUS_CLIENT_SECRET", "amadeus-secret")
	t.Setenv("OPENCAGE_API_KEY", "opencage-key")
	t.Setenv("METEOBLUE_API_KEY", "meteoblue-key")
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "CORS_ORIGINS", "MAX_BODY_BYTES", "CANDIDATE_WORKERS",
		"PROVIDER_TIMEOUT", "REFERENCE_SOURCE", "AIRPORTS_CSV_PATH", "AIRLINES_CSV_PATH",
		"DATABASE_URL", "MATCH_THRESHOLD", "GEMINI_MODEL", "AMADEUS_BASE_URL",
		"AMADEUS_RATE_LIMIT", "OPENCAGE_BASE_URL", "METEOBLUE_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the required keys are provided.
func TestLoad_defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, int64(65536), cfg.MaxBodyBytes)
	require.Equal(t, 1, cfg.CandidateWorkers)
	require.Equal(t, 30*time.Second, cfg.ProviderTimeout)

	require.Equal(t, config.SourceCSV, cfg.Reference.Source)
	require.Equal(t, "data/airports.csv", cfg.Reference.AirportsPath)
	require.Equal(t, "data/airlines.csv", cfg.Reference.AirlinesPath)
	require.Equal(t, 90.0, cfg.Reference.MatchThreshold)

	require.Equal(t, "gemini-key", cfg.Gemini.APIKey)
	require.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	require.Equal(t, "https://test.api.amadeus.com", cfg.Amadeus.BaseURL)
	require.Equal(t, 10.0, cfg.Amadeus.RateLimit)
	require.Equal(t, "https://api.opencagedata.com", cfg.Weather.OpenCageURL)
	require.Equal(t, "https://my.meteoblue.com", cfg.Weather.MeteoblueURL)
}

// TestLoad_overrides verifies that values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("CANDIDATE_WORKERS", "4")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("REFERENCE_SOURCE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/trips")
	t.Setenv("MATCH_THRESHOLD", "95")
	t.Setenv("AMADEUS_RATE_LIMIT", "2.5")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, 4, cfg.CandidateWorkers)
	require.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	require.Equal(t, config.SourcePostgres, cfg.Reference.Source)
	require.Equal(t, "postgres://user:pass@db:5432/trips", cfg.Reference.DatabaseURL)
	require.Equal(t, 95.0, cfg.Reference.MatchThreshold)
	require.Equal(t, 2.5, cfg.Amadeus.RateLimit)
}

// TestLoad_missingRequired verifies that the error names every missing
// variable, not just the first.
func TestLoad_missingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("METEOBLUE_API_KEY", "")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "GEMINI_API_KEY")
	require.ErrorContains(t, err, "METEOBLUE_API_KEY")
	require.NotContains(t, err.Error(), "AMADEUS_CLIENT_ID")
}

func TestLoad_postgresSourceNeedsDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("REFERENCE_SOURCE", "postgres")

	_, err := config.Load()

	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_invalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("CANDIDATE_WORKERS", "many")
	t.Setenv("PROVIDER_TIMEOUT", "30")
	t.Setenv("REFERENCE_SOURCE", "sqlite")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "CANDIDATE_WORKERS")
	require.ErrorContains(t, err, "PROVIDER_TIMEOUT")
	require.ErrorContains(t, err, "REFERENCE_SOURCE")
}

func TestLoad_zeroWorkersRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("CANDIDATE_WORKERS", "0")

	_, err := config.Load()

	require.ErrorContains(t, err, "CANDIDATE_WORKERS")
}

// TestLoadReference_ignoresServiceKeys verifies that reference-only commands
// work without any API keys set.
func TestLoadReference_ignoresServiceKeys(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("AMADEUS_CLIENT_ID", "")
	t.Setenv("AIRPORTS_CSV_PATH", "/srv/airports.dat")

	ref, err := config.LoadReference()

	require.NoError(t, err)
	require.Equal(t, config.SourceCSV, ref.Source)
	require.Equal(t, "/srv/airports.dat", ref.AirportsPath)
}

func TestLoadWeather(t *testing.T) {
	t.Setenv("OPENCAGE_API_KEY", "oc")
	t.Setenv("METEOBLUE_API_KEY", "")
	t.Setenv("METEOBLUE_BASE_URL", "")
	t.Setenv("PROVIDER_TIMEOUT", "")

	_, _, err := config.LoadWeather()
	require.Error(t, err)
	require.Contains(t, err.Error(), "METEOBLUE_API_KEY")

	t.Setenv("METEOBLUE_API_KEY", "mb")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	w, timeout, err := config.LoadWeather()
	require.NoError(t, err)
	require.Equal(t, "oc", w.OpenCageKey)
	require.Equal(t, "https://my.meteoblue.com", w.MeteoblueURL)
	require.Equal(t, 5*time.Second, timeout)
}
