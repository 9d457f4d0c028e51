package catalog

import (
	"context"
	"strings"
)

// MinQueryLength is the shortest accepted search query.
const MinQueryLength = 2

// City is a search result.
type City struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Searcher finds cities matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]City, error)
}

// popularCities is the fixed reference list served by StaticCatalog.
var popularCities = []City{
	{Name: "Beijing", Country: "CN", Lat: 39.9042, Lon: 116.4074},
	{Name: "Shanghai", Country: "CN", Lat: 31.2304, Lon: 121.4737},
	{Name: "New York", Country: "US", Lat: 40.7128, Lon: -74.0060},
	{Name: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278},
	{Name: "Tokyo", Country: "JP", Lat: 35.6762, Lon: 139.6503},
	{Name: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522},
	{Name: "Sydney", Country: "AU", Lat: -33.8688, Lon: 151.2093},
	{Name: "Moscow", Country: "RU", Lat: 55.7558, Lon: 37.6173},
	{Name: "Hong Kong", Country: "HK", Lat: 22.3193, Lon: 114.1694},
	{Name: "Singapore", Country: "SG", Lat: 1.3521, Lon: 103.8198},
}

// StaticCatalog filters a fixed list of cities by case-insensitive substring.
type StaticCatalog struct {
	cities []City
}

// NewStaticCatalog returns a catalog over cities, or over the built-in list if cities is empty.
func NewStaticCatalog(cities []City) *StaticCatalog {
	if len(cities) == 0 {
		cities = popularCities
	}
	return &StaticCatalog{cities: cities}
}

func (c *StaticCatalog) Search(_ context.Context, query string) ([]City, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]City, 0)
	for _, city := range c.cities {
		if strings.Contains(strings.ToLower(city.Name), q) {
			result = append(result, city)
		}
	}
	return result, nil
}
