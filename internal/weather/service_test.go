package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeProvider answers from canned values and records the cities it saw.
type fakeProvider struct {
	mu          sync.Mutex
	cities      []string
	current     func(city string) (CurrentWeather, error)
	forecast    func(city string) (ForecastResponse, error)
	sawDeadline bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) record(ctx context.Context, city string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append(f.cities, city)
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline = true
	}
}

func (f *fakeProvider) Current(ctx context.Context, city string) (CurrentWeather, error) {
	f.record(ctx, city)
	if f.current == nil {
		return CurrentWeather{City: city}, nil
	}
	return f.current(city)
}

func (f *fakeProvider) Forecast(ctx context.Context, city string) (ForecastResponse, error) {
	f.record(ctx, city)
	if f.forecast == nil {
		return ForecastResponse{City: city}, nil
	}
	return f.forecast(city)
}

func TestServiceRejectsEmptyCity(t *testing.T) {
	p := &fakeProvider{}
	svc := NewService(p, time.Second, nil)

	for _, city := range []string{"", "   "} {
		_, err := svc.CurrentWeather(context.Background(), city)
		if KindOf(err) != KindValidation {
			t.Fatalf("expected validation error for %q, got %v", city, err)
		}
		_, err = svc.Forecast(context.Background(), city)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", city, err)
		}
	}
	if len(p.cities) != 0 {
		t.Fatalf("provider should not be called, got %v", p.cities)
	}
}

func TestServiceTrimsCityAndAppliesTimeout(t *testing.T) {
	p := &fakeProvider{}
	svc := NewService(p, time.Second, nil)

	if _, err := svc.CurrentWeather(context.Background(), "  Paris "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.cities[0] != "Paris" {
		t.Fatalf("expected trimmed city, got %q", p.cities[0])
	}
	if !p.sawDeadline {
		t.Fatalf("expected provider context to carry a deadline")
	}
}

func TestServiceForecastCapsDays(t *testing.T) {
	p := &fakeProvider{
		forecast: func(city string) (ForecastResponse, error) {
			days := make([]DailySummary, 6)
			for i := range days {
				days[i].Date = fmt.Sprintf("2024-03-0%d", i+1)
			}
			return ForecastResponse{City: city, Forecast: days}, nil
		},
	}
	svc := NewService(p, 0, nil)

	fr, err := svc.Forecast(context.Background(), "Oslo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fr.Forecast) != MaxForecastDays {
		t.Fatalf("expected %d days, got %d", MaxForecastDays, len(fr.Forecast))
	}
	if fr.Forecast[0].Date != "2024-03-01" {
		t.Fatalf("expected earliest day first, got %s", fr.Forecast[0].Date)
	}
}

func TestServiceOverview(t *testing.T) {
	p := &fakeProvider{}
	svc := NewService(p, time.Second, nil)

	ov, err := svc.Overview(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.Current.City != "Tokyo" || ov.Forecast.City != "Tokyo" {
		t.Fatalf("unexpected overview %+v", ov)
	}
	if len(p.cities) != 2 {
		t.Fatalf("expected two upstream calls, got %d", len(p.cities))
	}
}

func TestServiceOverviewFailsOnEitherError(t *testing.T) {
	p := &fakeProvider{
		forecast: func(string) (ForecastResponse, error) {
			return ForecastResponse{}, NewError(ErrUnreachable, errors.New("dial tcp: refused"))
		},
	}
	svc := NewService(p, time.Second, nil)

	_, err := svc.Overview(context.Background(), "Tokyo")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected unreachable error, got %v", err)
	}

	p.current = func(string) (CurrentWeather, error) { return CurrentWeather{}, ErrCityNotFound }
	_, err = svc.Overview(context.Background(), "Tokyo")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected current-weather error to be reported first, got %v", err)
	}
}

func TestServiceValidateCredential(t *testing.T) {
	p := &fakeProvider{}
	svc := NewService(p, time.Second, nil)

	if !svc.ValidateCredential(context.Background()) {
		t.Fatalf("expected credential to be valid")
	}
	if p.cities[0] != checkCity {
		t.Fatalf("expected check for %s, got %s", checkCity, p.cities[0])
	}

	p.current = func(string) (CurrentWeather, error) { return CurrentWeather{}, ErrInvalidCredential }
	if svc.ValidateCredential(context.Background()) {
		t.Fatalf("expected credential to be rejected")
	}
}

// TestServiceConcurrentCalls checks that concurrent calls for different cities
// do not see each other's results.
func TestServiceConcurrentCalls(t *testing.T) {
	p := &fakeProvider{}
	svc := NewService(p, time.Second, nil)

	cities := []string{"London", "Paris", "Tokyo", "Sydney", "Moscow", "Beijing"}
	var wg sync.WaitGroup
	errs := make(chan error, len(cities)*10)

	for i := 0; i < 10; i++ {
		for _, city := range cities {
			city := city
			wg.Add(1)
			go func() {
				defer wg.Done()
				cw, err := svc.CurrentWeather(context.Background(), city)
				if err != nil {
					errs <- err
					return
				}
				if cw.City != city {
					errs <- fmt.Errorf("asked for %s, got %s", city, cw.City)
				}
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("fetch: %w", NewError(ErrCityNotFound, errors.New("upstream status 404")))

	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected wrapped error to match ErrCityNotFound")
	}
	if errors.Is(err, ErrUnreachable) {
		t.Fatalf("kinds must not match across variants")
	}
	if KindOf(err) != KindCityNotFound {
		t.Fatalf("expected KindCityNotFound, got %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected KindUnknown for non-gateway errors")
	}

	up := UpstreamError(503, "")
	if up.Error() != "API error (503): Unknown error" {
		t.Fatalf("unexpected upstream message %q", up.Error())
	}
}
