package weather

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the failures surfaced by the gateway.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindValidation
	KindInvalidCredential
	KindCityNotFound
	KindRateLimited
	KindUnreachable
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindCityNotFound:
		return "city_not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUnreachable:
		return "unreachable"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is a tagged gateway failure. Message is safe to show to callers.
type Error struct {
	Kind    ErrorKind
	Message string
	// Status is the upstream HTTP status, if one was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrConfiguration = &Error{
		Kind:    KindConfiguration,
		Message: "API key not configured. Please set OPENWEATHER_API_KEY in the environment or .env file.",
	}
	ErrInvalidCredential = &Error{
		Kind:    KindInvalidCredential,
		Message: "Invalid API key. Please check your OpenWeatherMap API key.",
	}
	ErrCityNotFound = &Error{
		Kind:    KindCityNotFound,
		Message: "City not found. Please check the city name and try again.",
	}
	ErrRateLimited = &Error{
		Kind:    KindRateLimited,
		Message: "Too many requests. Please wait a moment and try again.",
	}
	ErrUnreachable = &Error{
		Kind:    KindUnreachable,
		Message: "Unable to connect to weather service. Please check your internet connection.",
	}
	ErrUpstream = &Error{
		Kind:    KindUpstream,
		Message: "Weather service returned an error.",
	}
	ErrValidation = &Error{
		Kind:    KindValidation,
		Message: "Invalid request.",
	}
)

// NewError returns a copy of the sentinel for kind wrapping cause.
func NewError(sentinel *Error, cause error) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Err:     cause,
	}
}

// UpstreamError builds a KindUpstream error carrying the provider's status and message.
func UpstreamError(status int, message string) *Error {
	if message == "" {
		message = "Unknown error"
	}
	return &Error{
		Kind:    KindUpstream,
		Message: fmt.Sprintf("API error (%d): %s", status, message),
		Status:  status,
	}
}

// ValidationError builds a KindValidation error with the given message.
func ValidationError(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
	}
}

// KindOf extracts the discriminant from err, or KindUnknown if err is not a gateway error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
