package solar

import (
	"context"
	"time"
)

// Provider abstracts the simulation source (PVWatts).
type Provider interface {
	Name() string
	Load(ctx context.Context, params Params) (*Table, error)
}

// Recorder observes every outbound request a provider makes.
type Recorder interface {
	ObserveRequest(provider, outcome string, elapsed time.Duration)
}

// Request outcomes reported to a Recorder.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeStatus    = "status_error"
	OutcomeDecode    = "decode_error"
)

// Range selects rows [Start, Stop) of a location file. Negative values count
// from the end and out-of-range values are clamped.
type Range struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Bounds resolves r against n rows and returns concrete slice indices.
func (r Range) Bounds(n int) (start, stop int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				i = 0
			}
		}
		if i > n {
			i = n
		}
		return i
	}

	start, stop = clamp(r.Start), clamp(r.Stop)
	if stop < start {
		stop = start
	}
	return start, stop
}
