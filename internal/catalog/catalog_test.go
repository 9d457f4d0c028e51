package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
)

func TestStaticCatalogSearch(t *testing.T) {
	c := NewStaticCatalog(nil)

	cities, err := c.Search(context.Background(), "on")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"London", "Hong Kong"}
	if len(cities) != len(want) {
		t.Fatalf("expected %v, got %v", want, cities)
	}
	for i, name := range want {
		if cities[i].Name != name {
			t.Fatalf("result %d: expected %s, got %s", i, name, cities[i].Name)
		}
	}
}

func TestStaticCatalogCaseInsensitive(t *testing.T) {
	c := NewStaticCatalog(nil)

	cities, _ := c.Search(context.Background(), "NEW y")
	if len(cities) != 1 || cities[0].Country != "US" {
		t.Fatalf("expected New York, got %v", cities)
	}
}

func TestStaticCatalogNoMatch(t *testing.T) {
	cities, err := NewStaticCatalog(nil).Search(context.Background(), "zz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cities == nil || len(cities) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", cities)
	}
}

func TestGeocodingCatalogPrefersStatic(t *testing.T) {
	c := NewGeocodingCatalog(NewStaticCatalog(nil), "", nil)
	c.geocode = func(geocoder.Address) (geocoder.Location, error) {
		t.Fatalf("geocoder must not be called when the static list matches")
		return geocoder.Location{}, nil
	}

	cities, err := c.Search(context.Background(), "paris")
	if err != nil || len(cities) != 1 || cities[0].Name != "Paris" {
		t.Fatalf("expected Paris from static list, got %v, %v", cities, err)
	}
}

func TestGeocodingCatalogFallback(t *testing.T) {
	c := NewGeocodingCatalog(NewStaticCatalog(nil), "", nil)
	c.geocode = func(a geocoder.Address) (geocoder.Location, error) {
		if a.City != "Oslo" {
			t.Fatalf("expected city Oslo, got %q", a.City)
		}
		return geocoder.Location{Latitude: 59.91, Longitude: 10.75}, nil
	}
	c.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return []geocoder.Address{{City: "Oslo", Country: "Norway"}}, nil
	}

	cities, err := c.Search(context.Background(), " Oslo ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cities) != 1 {
		t.Fatalf("expected one geocoded city, got %v", cities)
	}
	got := cities[0]
	if got.Name != "Oslo" || got.Country != "Norway" || got.Lat != 59.91 || got.Lon != 10.75 {
		t.Fatalf("unexpected city %+v", got)
	}
}

func TestGeocodingCatalogDegradesOnError(t *testing.T) {
	c := NewGeocodingCatalog(NewStaticCatalog(nil), "", nil)
	c.geocode = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("quota exceeded")
	}

	cities, err := c.Search(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("geocoder errors should not surface, got %v", err)
	}
	if len(cities) != 0 {
		t.Fatalf("expected no results, got %v", cities)
	}
}

func TestGeocodingCatalogHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := NewGeocodingCatalog(NewStaticCatalog(nil), "", nil)
	c.geocode = func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{Latitude: 1, Longitude: 1}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	cities, err := c.Search(ctx, "Atlantis")
	if err != nil {
		t.Fatalf("a stalled geocoder should not surface, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("search did not return at the deadline, took %v", elapsed)
	}
	if cities == nil || len(cities) != 0 {
		t.Fatalf("expected empty non-nil results, got %v", cities)
	}
}
