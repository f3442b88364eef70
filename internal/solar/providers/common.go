package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pvforecast/pvwatts-importer/internal/solar"
)

// HTTPClientConfig bundles the outbound HTTP settings shared by providers.
// When Client is nil a new one is built with Timeout.
type HTTPClientConfig struct {
	Client  *http.Client
	Timeout time.Duration
}

func (c HTTPClientConfig) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: c.Timeout}
}

const maxErrorBody = 512

// statusError builds a *solar.StatusError for a non-2xx answer. The body is
// kept verbatim (truncated) and never decoded.
func statusError(code int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &solar.StatusError{StatusCode: code, Body: strings.TrimSpace(string(body))}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// outcome classifies err for a solar.Recorder.
func outcome(err error) string {
	var se *solar.StatusError
	switch {
	case err == nil:
		return solar.OutcomeOK
	case errors.As(err, &se):
		return solar.OutcomeStatus
	case errors.Is(err, solar.ErrDecode):
		return solar.OutcomeDecode
	default:
		return solar.OutcomeTransport
	}
}

func transportError(err error) error {
	return fmt.Errorf("%w: %v", solar.ErrTransport, err)
}
