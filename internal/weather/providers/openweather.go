package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	DefaultOpenWeatherCurrentURL  = "https://api.openweathermap.org/data/2.5/weather"
	DefaultOpenWeatherForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
	DefaultUnits                  = "metric"
)

const clockLayout = "15:04:05"

// OpenWeatherConfig holds the endpoints and credential for OpenWeatherMap.
type OpenWeatherConfig struct {
	APIKey      string
	CurrentURL  string
	ForecastURL string
	Units       string
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name        string
	apiKey      string
	currentURL  string
	forecastURL string
	units       string
	httpCfg     HTTPClientConfig
}

func NewOpenWeatherProvider(httpCfg HTTPClientConfig, cfg OpenWeatherConfig) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:        "openweathermap",
		apiKey:      cfg.APIKey,
		currentURL:  cfg.CurrentURL,
		forecastURL: cfg.ForecastURL,
		units:       cfg.Units,
		httpCfg:     httpCfg,
	}
	if p.currentURL == "" {
		p.currentURL = DefaultOpenWeatherCurrentURL
	}
	if p.forecastURL == "" {
		p.forecastURL = DefaultOpenWeatherForecastURL
	}
	if p.units == "" {
		p.units = DefaultUnits
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	ID          int    `json:"id"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type owmCurrentPayload struct {
	Name     string `json:"name"`
	Timezone int    `json:"timezone"` // seconds east of UTC
	Sys      struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Weather    []owmCondition `json:"weather"`
	Visibility float64        `json:"visibility"` // meters
	Clouds     struct {
		All int `json:"all"`
	} `json:"clouds"`
}

type owmForecastPayload struct {
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

// Current fetches and normalizes current conditions for city.
func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (weather.CurrentWeather, error) {
	if p.apiKey == "" {
		return weather.CurrentWeather{}, weather.ErrConfiguration
	}

	resp, err := doRequest(ctx, p.httpCfg, p.requestBuilder(p.currentURL, city))
	if err != nil {
		return weather.CurrentWeather{}, err
	}

	var payload owmCurrentPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.CurrentWeather{}, err
	}

	return normalizeCurrent(payload, time.Now().UTC()), nil
}

// Forecast fetches the 5-day/3-hour series for city and summarizes it per day.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string) (weather.ForecastResponse, error) {
	if p.apiKey == "" {
		return weather.ForecastResponse{}, weather.ErrConfiguration
	}

	resp, err := doRequest(ctx, p.httpCfg, p.requestBuilder(p.forecastURL, city))
	if err != nil {
		return weather.ForecastResponse{}, err
	}

	var payload owmForecastPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.ForecastResponse{}, err
	}

	return normalizeForecast(payload, time.Now().UTC()), nil
}

func (p *OpenWeatherProvider) requestBuilder(endpoint, city string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("units", p.units)
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

func normalizeCurrent(payload owmCurrentPayload, now time.Time) weather.CurrentWeather {
	loc := time.FixedZone("", payload.Timezone)

	var cond owmCondition
	if len(payload.Weather) > 0 {
		cond = payload.Weather[0]
	}

	return weather.CurrentWeather{
		City:          payload.Name,
		Country:       payload.Sys.Country,
		Temperature:   weather.RoundHalfUp(payload.Main.Temp),
		FeelsLike:     weather.RoundHalfUp(payload.Main.FeelsLike),
		Humidity:      payload.Main.Humidity,
		Pressure:      payload.Main.Pressure,
		WindSpeed:     payload.Wind.Speed,
		WindDirection: payload.Wind.Deg,
		Description:   cond.Description,
		WeatherCode:   cond.ID,
		Icon:          cond.Icon,
		Visibility:    payload.Visibility / 1000,
		Cloudiness:    payload.Clouds.All,
		Sunrise:       clock(payload.Sys.Sunrise, loc),
		Sunset:        clock(payload.Sys.Sunset, loc),
		Timestamp:     now,
	}
}

func normalizeForecast(payload owmForecastPayload, now time.Time) weather.ForecastResponse {
	samples := make([]weather.RawSample, 0, len(payload.List))
	for _, item := range payload.List {
		var cond owmCondition
		if len(item.Weather) > 0 {
			cond = item.Weather[0]
		}
		samples = append(samples, weather.RawSample{
			Timestamp:     item.Dt,
			Temperature:   item.Main.Temp,
			Humidity:      item.Main.Humidity,
			WindSpeed:     item.Wind.Speed,
			ConditionCode: cond.ID,
			Icon:          cond.Icon,
			Description:   cond.Description,
		})
	}

	loc := time.FixedZone("", payload.City.Timezone)

	return weather.ForecastResponse{
		City:      payload.City.Name,
		Country:   payload.City.Country,
		Forecast:  weather.Summarize(samples, loc),
		Timestamp: now,
	}
}

// clock formats a unix timestamp as a local time of day; zero means unknown.
func clock(unix int64, loc *time.Location) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).In(loc).Format(clockLayout)
}
