package solar

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package and its providers wraps
// exactly one of them.
var (
	ErrConfig    = errors.New("configuration error")
	ErrTransport = errors.New("transport error")
	ErrDecode    = errors.New("response decode error")
	ErrInput     = errors.New("input error")
)

var (
	// ErrMissingAPIKey is returned when no PVWatts credential is configured.
	ErrMissingAPIKey = fmt.Errorf("%w: PVWATTS_API_KEY is not set", ErrConfig)

	// ErrMissingColumn is returned when a location file lacks city, lat or lon.
	ErrMissingColumn = fmt.Errorf("%w: missing required column", ErrInput)

	// ErrCityNotFound is returned when a city is not present in a location file.
	ErrCityNotFound = fmt.Errorf("%w: city not found", ErrInput)

	// ErrAmbiguousCity is returned when a city name occurs on more than one row.
	ErrAmbiguousCity = fmt.Errorf("%w: city listed more than once", ErrInput)
)

// StatusError reports a non-2xx answer from the remote API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("status code: %d\n%s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}
