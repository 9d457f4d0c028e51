package httpapi

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/catalog"
	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	defaultHealthTimeout = 15 * time.Second
	defaultSearchTimeout = 5 * time.Second
)

var validate = validator.New()

// Options tunes the routes registered by RegisterRoutes.
type Options struct {
	// RateLimit, when set, runs for every /api request before any handler.
	RateLimit fiber.Handler

	// HealthTimeout bounds the credential check behind /health.
	HealthTimeout time.Duration

	// SearchTimeout bounds a city search, including any geocoding lookup.
	SearchTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.HealthTimeout <= 0 {
		o.HealthTimeout = defaultHealthTimeout
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = defaultSearchTimeout
	}
	return o
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, searcher catalog.Searcher, opts Options) {
	opts = opts.withDefaults()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "Weather API",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"current":  "/api/weather/current/{city}",
				"forecast": "/api/weather/forecast/{city}",
				"overview": "/api/weather/overview/{city}",
				"search":   "/api/weather/search/{query}",
				"health":   "/api/weather/health",
			},
			"documentation": "https://openweathermap.org/api",
		})
	})

	api := app.Group("/api")
	if opts.RateLimit != nil {
		api.Use(opts.RateLimit)
	}

	w := api.Group("/weather")

	current := func(c *fiber.Ctx, city string) error {
		data, err := service.CurrentWeather(c.UserContext(), city)
		if err != nil {
			return err
		}
		return success(c, data)
	}
	w.Get("/current/:city", func(c *fiber.Ctx) error {
		city, err := cityFromPath(c)
		if err != nil {
			return err
		}
		return current(c, city)
	})
	w.Get("/current", func(c *fiber.Ctx) error {
		city, err := cityFromQuery(c)
		if err != nil {
			return err
		}
		return current(c, city)
	})

	forecast := func(c *fiber.Ctx, city string) error {
		data, err := service.Forecast(c.UserContext(), city)
		if err != nil {
			return err
		}
		return success(c, data)
	}
	w.Get("/forecast/:city", func(c *fiber.Ctx) error {
		city, err := cityFromPath(c)
		if err != nil {
			return err
		}
		return forecast(c, city)
	})
	w.Get("/forecast", func(c *fiber.Ctx) error {
		city, err := cityFromQuery(c)
		if err != nil {
			return err
		}
		return forecast(c, city)
	})

	overview := func(c *fiber.Ctx, city string) error {
		data, err := service.Overview(c.UserContext(), city)
		if err != nil {
			return err
		}
		return success(c, data)
	}
	w.Get("/overview/:city", func(c *fiber.Ctx) error {
		city, err := cityFromPath(c)
		if err != nil {
			return err
		}
		return overview(c, city)
	})
	w.Get("/overview", func(c *fiber.Ctx) error {
		city, err := cityFromQuery(c)
		if err != nil {
			return err
		}
		return overview(c, city)
	})

	w.Get("/search/:query", func(c *fiber.Ctx) error {
		q := searchQuery{Query: strings.TrimSpace(pathParam(c, "query"))}
		if err := validate.Struct(q); err != nil {
			return weather.ValidationError("Search query must be at least 2 characters")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), opts.SearchTimeout)
		defer cancel()

		cities, err := searcher.Search(ctx, q.Query)
		if err != nil {
			return err
		}
		return success(c, cities)
	})

	w.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), opts.HealthTimeout)
		defer cancel()

		valid := service.ValidateCredential(ctx)
		if ctx.Err() != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"status":  "unhealthy",
				"error":   "health check did not complete in time",
			})
		}

		return c.JSON(fiber.Map{
			"success":          true,
			"status":           "healthy",
			"apiKeyConfigured": valid,
		})
	})

	// Anything not matched above.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Endpoint not found")
	})
}

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// cityQuery holds the city identifying a weather request.
type cityQuery struct {
	City string `validate:"required"`
}

// searchQuery holds the free-text city search.
type searchQuery struct {
	Query string `validate:"min=2"`
}

func cityFromPath(c *fiber.Ctx) (string, error) {
	q := cityQuery{City: strings.TrimSpace(pathParam(c, "city"))}
	if err := validate.Struct(q); err != nil {
		return "", weather.ValidationError("City name is required")
	}
	return q.City, nil
}

func cityFromQuery(c *fiber.Ctx) (string, error) {
	q := cityQuery{City: strings.TrimSpace(c.Query("city"))}
	if err := validate.Struct(q); err != nil {
		return "", weather.ValidationError("City name is required as query parameter")
	}
	return q.City, nil
}

// pathParam returns the URL-decoded route parameter.
func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
