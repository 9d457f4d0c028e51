package weather

import (
	"time"
)

// MaxForecastDays caps the number of daily summaries returned for a forecast.
const MaxForecastDays = 5

// RawSample is a single 3-hourly entry of the provider's forecast series.
type RawSample struct {
	Timestamp     int64 // unix seconds
	Temperature   float64
	Humidity      int
	WindSpeed     float64
	ConditionCode int
	Icon          string
	Description   string
}

// Time returns the sample timestamp in the given location (UTC if nil).
func (s RawSample) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(s.Timestamp, 0).In(loc)
}

// DailySummary is the aggregated view of all samples falling on one calendar date.
type DailySummary struct {
	Date        string  `json:"date"`
	TempMax     int     `json:"tempMax"`
	TempMin     int     `json:"tempMin"`
	TempAvg     int     `json:"tempAvg"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	WeatherCode int     `json:"weatherCode"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// CurrentWeather is the normalized current-conditions response.
type CurrentWeather struct {
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Temperature   int       `json:"temperature"`
	FeelsLike     int       `json:"feelsLike"`
	Humidity      int       `json:"humidity"`
	Pressure      int       `json:"pressure"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection int       `json:"windDirection"`
	Description   string    `json:"description"`
	WeatherCode   int       `json:"weatherCode"`
	Icon          string    `json:"icon"`
	Visibility    float64   `json:"visibility"` // kilometers
	Cloudiness    int       `json:"cloudiness"`
	Sunrise       string    `json:"sunrise"`
	Sunset        string    `json:"sunset"`
	Timestamp     time.Time `json:"timestamp"` // generation time, always UTC
}

// ForecastResponse holds up to MaxForecastDays daily summaries, earliest first.
type ForecastResponse struct {
	City      string         `json:"city"`
	Country   string         `json:"country"`
	Forecast  []DailySummary `json:"forecast"`
	Timestamp time.Time      `json:"timestamp"`
}

// Overview combines current conditions and the daily forecast for one city.
type Overview struct {
	Current  CurrentWeather   `json:"current"`
	Forecast ForecastResponse `json:"forecast"`
}
