package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pvforecast/pvwatts-importer/internal/common"
	"github.com/pvforecast/pvwatts-importer/internal/solar"
)

// DefaultPVWattsEndpoint is the PVWatts v6 JSON endpoint.
const DefaultPVWattsEndpoint = "https://developer.nrel.gov/api/pvwatts/v6.json"

// PVWattsProvider implements the solar.Provider interface for NREL PVWatts v6.
type PVWattsProvider struct {
	name     string
	apiKey   string
	endpoint string
	client   *resty.Client
	recorder solar.Recorder
	logger   *zap.Logger
}

// Option customises a PVWattsProvider.
type Option func(*PVWattsProvider)

// WithEndpoint overrides the PVWatts URL.
func WithEndpoint(endpoint string) Option {
	return func(p *PVWattsProvider) {
		if endpoint != "" {
			p.endpoint = endpoint
		}
	}
}

// WithRecorder reports every request outcome to r.
func WithRecorder(r solar.Recorder) Option {
	return func(p *PVWattsProvider) {
		p.recorder = r
	}
}

// WithLogger sets the provider logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *PVWattsProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPVWattsProvider returns a provider bound to apiKey. An empty key is a
// configuration error and no provider is built.
func NewPVWattsProvider(httpCfg HTTPClientConfig, apiKey string, opts ...Option) (*PVWattsProvider, error) {
	if apiKey == "" {
		return nil, solar.ErrMissingAPIKey
	}

	p := &PVWattsProvider{
		name:     "pvwatts",
		apiKey:   apiKey,
		endpoint: DefaultPVWattsEndpoint,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = resty.NewWithClient(httpCfg.client()).
		SetHeader("Accept", "application/json").
		SetLogger(p.logger.Sugar())

	return p, nil
}

func (p *PVWattsProvider) Name() string {
	return p.name
}

// Load issues one GET for params and shapes the hourly outputs into a table.
func (p *PVWattsProvider) Load(ctx context.Context, params solar.Params) (*solar.Table, error) {
	started := time.Now()
	table, err := p.load(ctx, params)

	elapsed := time.Since(started)
	if p.recorder != nil {
		p.recorder.ObserveRequest(p.name, outcome(err), elapsed)
	}
	if err != nil {
		p.logger.Debug("pvwatts request failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}
	p.logger.Debug("pvwatts request done", zap.Duration("elapsed", elapsed), zap.Int("records", table.Len()))
	return table, nil
}

func (p *PVWattsProvider) load(ctx context.Context, params solar.Params) (*solar.Table, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(p.queryParams(params)).
		Get(p.endpoint)
	if err != nil {
		return nil, transportError(err)
	}

	if !isSuccess(resp.StatusCode()) {
		return nil, statusError(resp.StatusCode(), resp.Body())
	}

	var payload struct {
		Outputs *struct {
			AC   *[]float64 `json:"ac"`
			Tamb *[]float64 `json:"tamb"`
			Wspd *[]float64 `json:"wspd"`
		} `json:"outputs"`
	}

	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", solar.ErrDecode, err)
	}

	out := payload.Outputs
	switch {
	case out == nil:
		return nil, fmt.Errorf("%w: missing outputs", solar.ErrDecode)
	case out.AC == nil:
		return nil, fmt.Errorf("%w: missing outputs.ac", solar.ErrDecode)
	case out.Tamb == nil:
		return nil, fmt.Errorf("%w: missing outputs.tamb", solar.ErrDecode)
	case out.Wspd == nil:
		return nil, fmt.Errorf("%w: missing outputs.wspd", solar.ErrDecode)
	}

	return solar.NewTable(*out.AC, *out.Tamb, *out.Wspd)
}

func (p *PVWattsProvider) queryParams(params solar.Params) map[string]string {
	q := map[string]string{
		"api_key":         p.apiKey,
		"system_capacity": common.FormatFloat(params.SystemCapacity),
		"module_type":     common.FormatInt(params.ModuleType),
		"losses":          common.FormatFloat(params.Losses),
		"array_type":      common.FormatInt(params.ArrayType),
		"tilt":            common.FormatFloat(params.Tilt),
		"azimuth":         common.FormatFloat(params.Azimuth),
		"radius":          common.FormatInt(params.Radius),
		"timeframe":       solar.Timeframe,
		"dataset":         solar.Dataset,
	}
	if params.Address != "" {
		q["address"] = params.Address
	}
	if params.Lat != nil {
		q["lat"] = common.FormatFloat(*params.Lat)
	}
	if params.Lon != nil {
		q["lon"] = common.FormatFloat(*params.Lon)
	}
	return q
}
