package weather

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// checkCity is queried by ValidateCredential.
const checkCity = "London"

// Service is the gateway in front of the upstream provider. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService creates a new Service. A zero timeout leaves deadlines to the caller.
func NewService(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger.Named("weather-service"),
	}
}

// CurrentWeather returns the current conditions for city.
func (s *Service) CurrentWeather(ctx context.Context, city string) (CurrentWeather, error) {
	city, err := normalizeCity(city)
	if err != nil {
		return CurrentWeather{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cw, err := s.provider.Current(ctx, city)
	if err != nil {
		s.logger.Debug("current weather failed",
			zap.String("city", city),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
		return CurrentWeather{}, err
	}
	return cw, nil
}

// Forecast returns up to MaxForecastDays daily summaries for city.
func (s *Service) Forecast(ctx context.Context, city string) (ForecastResponse, error) {
	city, err := normalizeCity(city)
	if err != nil {
		return ForecastResponse{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	fr, err := s.provider.Forecast(ctx, city)
	if err != nil {
		s.logger.Debug("forecast failed",
			zap.String("city", city),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
		return ForecastResponse{}, err
	}
	if len(fr.Forecast) > MaxForecastDays {
		fr.Forecast = fr.Forecast[:MaxForecastDays]
	}
	return fr, nil
}

// Overview fetches current conditions and the forecast concurrently. Either
// failure fails the whole call; the current-weather error is reported first.
func (s *Service) Overview(ctx context.Context, city string) (Overview, error) {
	city, err := normalizeCity(city)
	if err != nil {
		return Overview{}, err
	}

	var (
		wg          sync.WaitGroup
		current     CurrentWeather
		forecast    ForecastResponse
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.CurrentWeather(ctx, city)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.Forecast(ctx, city)
	}()
	wg.Wait()

	if currentErr != nil {
		return Overview{}, currentErr
	}
	if forecastErr != nil {
		return Overview{}, forecastErr
	}
	return Overview{Current: current, Forecast: forecast}, nil
}

// ValidateCredential issues a minimal current-weather request and reports
// whether the provider accepted it. Errors are logged, never returned.
func (s *Service) ValidateCredential(ctx context.Context) bool {
	if _, err := s.CurrentWeather(ctx, checkCity); err != nil {
		s.logger.Info("credential check failed", zap.Stringer("kind", KindOf(err)), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func normalizeCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", ValidationError("City name is required")
	}
	return city, nil
}
