package weather

import (
	"context"
)

// Provider abstracts the upstream weather API. Implementations normalize the
// provider payload and report failures as *Error values.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string) (CurrentWeather, error)
	Forecast(ctx context.Context, city string) (ForecastResponse, error)
}
