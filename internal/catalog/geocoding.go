package catalog

import (
	"context"
	"strings"

	"github.com/kelvins/geocoder"
	"go.uber.org/zap"
)

// GeocodingCatalog answers from a static catalog first and falls back to the
// Google geocoding API when the static list has no match.
type GeocodingCatalog struct {
	static *StaticCatalog
	logger *zap.Logger

	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGeocodingCatalog configures the geocoder with apiKey. The geocoder package
// keeps its key in a package variable, so only one key can be active per process.
func NewGeocodingCatalog(static *StaticCatalog, apiKey string, logger *zap.Logger) *GeocodingCatalog {
	geocoder.ApiKey = apiKey
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeocodingCatalog{
		static:  static,
		logger:  logger.Named("geocoding-catalog"),
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (c *GeocodingCatalog) Search(ctx context.Context, query string) ([]City, error) {
	cities, err := c.static.Search(ctx, query)
	if err != nil || len(cities) > 0 {
		return cities, err
	}

	name := strings.TrimSpace(query)

	// The geocoder client takes no context, so the lookup runs on its own and
	// is abandoned once ctx is done.
	type result struct {
		city City
		err  error
	}
	done := make(chan result, 1)
	go func() {
		city, err := c.lookup(name)
		done <- result{city, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			c.logger.Warn("geocoding failed", zap.String("query", name), zap.Error(r.err))
			return cities, nil
		}
		return []City{r.city}, nil
	case <-ctx.Done():
		c.logger.Warn("geocoding abandoned", zap.String("query", name), zap.Error(ctx.Err()))
		return cities, nil
	}
}

func (c *GeocodingCatalog) lookup(name string) (City, error) {
	loc, err := c.geocode(geocoder.Address{City: name})
	if err != nil {
		return City{}, err
	}

	city := City{Name: name, Lat: loc.Latitude, Lon: loc.Longitude}

	// Country is best effort; the coordinates alone are enough to be useful.
	if addrs, err := c.reverse(loc); err == nil && len(addrs) > 0 {
		if addrs[0].City != "" {
			city.Name = addrs[0].City
		}
		city.Country = addrs[0].Country
	} else if err != nil {
		c.logger.Debug("reverse geocoding failed", zap.String("query", name), zap.Error(err))
	}

	return city, nil
}
