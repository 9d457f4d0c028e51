package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	// maxErrorBody bounds how much of an error response is read for its message.
	maxErrorBody = 64 << 10

	// maxResponseBody bounds a successful payload. A forecast is well under 100KB.
	maxResponseBody = 4 << 20
)

// HTTPClientConfig bundles the HTTP client and the optional outbound throttle.
type HTTPClientConfig struct {
	Client *http.Client
	// Limiter throttles outbound calls to protect the provider quota. Nil disables it.
	Limiter *rate.Limiter
}

var errNoHTTPClient = errors.New("http client not configured")

// upstreamErrorBody is the error shape returned by the provider.
type upstreamErrorBody struct {
	Message string `json:"message"`
}

// doRequest executes a single request and maps every failure to a *weather.Error.
// There are no retries: each call is independent. On success the caller owns
// the response body.
func doRequest(ctx context.Context, cfg HTTPClientConfig, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, weather.NewError(weather.ErrUnreachable, errNoHTTPClient)
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, weather.NewError(weather.ErrRateLimited, fmt.Errorf("outbound throttle: %w", err))
		}
	}

	req, err := buildRequest()
	if err != nil {
		return nil, &weather.Error{
			Kind:    weather.KindUpstream,
			Message: fmt.Sprintf("Request error: %v", err),
			Err:     err,
		}
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	resp, err := cfg.Client.Do(req)
	if err != nil {
		// Timeouts, DNS and connection failures all mean no response was received.
		return nil, weather.NewError(weather.ErrUnreachable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	return nil, statusError(resp)
}

// statusError maps a non-2xx upstream response to the gateway taxonomy.
func statusError(resp *http.Response) error {
	cause := fmt.Errorf("upstream status %d", resp.StatusCode)

	var e *weather.Error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e = weather.NewError(weather.ErrInvalidCredential, cause)
	case http.StatusNotFound:
		e = weather.NewError(weather.ErrCityNotFound, cause)
	case http.StatusTooManyRequests:
		e = weather.NewError(weather.ErrRateLimited, cause)
	default:
		var body upstreamErrorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, &body)
		e = weather.UpstreamError(resp.StatusCode, body.Message)
		e.Err = cause
	}
	e.Status = resp.StatusCode
	return e
}

// decodeJSON decodes the response body into target, reporting malformed or
// oversized payloads as upstream errors. At most maxResponseBody bytes are read.
func decodeJSON(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(target); err != nil {
		return &weather.Error{
			Kind:    weather.KindUpstream,
			Message: "Invalid response from weather service.",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}
