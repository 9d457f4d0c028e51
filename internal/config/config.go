package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type AppConfig struct {
	Port string `toml:"port" validate:"required,numeric"`

	OpenWeatherAPIKey      string `toml:"openweather_api_key"`
	OpenWeatherCurrentURL  string `toml:"openweather_current_url" validate:"required,url"`
	OpenWeatherForecastURL string `toml:"openweather_forecast_url" validate:"required,url"`
	Units                  string `toml:"units" validate:"oneof=standard metric imperial"`

	// APITimeout bounds every upstream call.
	APITimeout time.Duration `toml:"api_timeout" validate:"gt=0"`

	// Inbound fixed-window rate limit.
	RateLimitWindow      time.Duration `toml:"rate_limit_window" validate:"gte=1s"`
	RateLimitMaxRequests int           `toml:"rate_limit_max_requests" validate:"gt=0"`

	CORSOrigin string `toml:"cors_origin" validate:"required"`

	// Outbound token bucket (0 = unlimited).
	UpstreamRPS   float64 `toml:"upstream_rps" validate:"gte=0"`
	UpstreamBurst int     `toml:"upstream_burst" validate:"gte=1"`

	// CredentialCheckInterval controls the periodic credential check (0 = disabled).
	CredentialCheckInterval time.Duration `toml:"credential_check_interval" validate:"gte=0"`

	// GeocoderAPIKey enables the geocoding fallback for city search.
	GeocoderAPIKey string `toml:"geocoder_api_key"`

	LogLevel  string `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `toml:"log_format" validate:"oneof=json console"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *AppConfig {
	return &AppConfig{
		Port:                    "3001",
		OpenWeatherCurrentURL:   "https://api.openweathermap.org/data/2.5/weather",
		OpenWeatherForecastURL:  "https://api.openweathermap.org/data/2.5/forecast",
		Units:                   "metric",
		APITimeout:              10 * time.Second,
		RateLimitWindow:         15 * time.Minute,
		RateLimitMaxRequests:    100,
		CORSOrigin:              "http://localhost:5173",
		UpstreamRPS:             0,
		UpstreamBurst:           1,
		CredentialCheckInterval: 30 * time.Minute,
		LogLevel:                "info",
		LogFormat:               "json",
	}
}

// Load builds the configuration from defaults, an optional TOML file named by
// CONFIG_FILE, and finally the environment (a .env file is loaded first if present).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a TOML file over cfg. Durations are written as strings ("10s").
func loadFile(path string, cfg *AppConfig) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", cfg.OpenWeatherAPIKey)
	cfg.OpenWeatherCurrentURL = getenvDefault("OPENWEATHER_CURRENT_URL", cfg.OpenWeatherCurrentURL)
	cfg.OpenWeatherForecastURL = getenvDefault("OPENWEATHER_FORECAST_URL", cfg.OpenWeatherForecastURL)
	cfg.Units = getenvDefault("OPENWEATHER_UNITS", cfg.Units)
	cfg.CORSOrigin = getenvDefault("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.GeocoderAPIKey = getenvDefault("GEOCODER_API_KEY", cfg.GeocoderAPIKey)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenvDefault("LOG_FORMAT", cfg.LogFormat)

	// The placeholder from the sample .env is not a credential.
	if cfg.OpenWeatherAPIKey == "your_api_key_here" {
		cfg.OpenWeatherAPIKey = ""
	}

	var err error
	if cfg.APITimeout, err = getenvDuration("API_TIMEOUT", cfg.APITimeout); err != nil {
		return err
	}
	// RATE_LIMIT_WINDOW_MS is the name used by older deployments.
	windowKey := "RATE_LIMIT_WINDOW"
	if os.Getenv(windowKey) == "" {
		windowKey = "RATE_LIMIT_WINDOW_MS"
	}
	if cfg.RateLimitWindow, err = getenvDuration(windowKey, cfg.RateLimitWindow); err != nil {
		return err
	}
	if cfg.CredentialCheckInterval, err = getenvDuration("CREDENTIAL_CHECK_INTERVAL", cfg.CredentialCheckInterval); err != nil {
		return err
	}

	cfg.RateLimitMaxRequests = getenvInt("RATE_LIMIT_MAX_REQUESTS", cfg.RateLimitMaxRequests)
	cfg.UpstreamBurst = getenvInt("UPSTREAM_BURST", cfg.UpstreamBurst)

	if v := os.Getenv("UPSTREAM_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid UPSTREAM_RPS: %w", err)
		}
		cfg.UpstreamRPS = rps
	}

	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

// getenvDuration accepts Go durations ("10s") or plain milliseconds ("10000").
func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
