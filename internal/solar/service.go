package solar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs single and bulk loads against a Provider. It keeps no state
// between calls.
type Service struct {
	provider Provider
	defaults Params
	logger   *zap.Logger
}

// NewService creates a new Service. defaults are the parameters used for every
// field a caller or a location file does not set.
func NewService(provider Provider, defaults Params, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults returns a copy of the default request parameters.
func (s *Service) Defaults() Params {
	return s.defaults.Clone()
}

// Load fetches one hourly table.
func (s *Service) Load(ctx context.Context, params Params) (*Table, error) {
	return s.provider.Load(ctx, params)
}

// BulkLoadFromList loads every location of the file at path, restricted to rng
// when it is not nil. Rows are fetched one after another and the first
// failure aborts the whole run.
func (s *Service) BulkLoadFromList(ctx context.Context, path string, rng *Range) (*CityCollection, error) {
	locs, err := ReadLocationsFile(path)
	if err != nil {
		return nil, err
	}

	start, stop := 0, len(locs)
	if rng != nil {
		start, stop = rng.Bounds(len(locs))
	}

	runID := uuid.NewString()
	log := s.logger.With(zap.String("run", runID), zap.String("file", path))
	log.Debug("bulk load started",
		zap.Int("rows", len(locs)), zap.Int("start", start), zap.Int("stop", stop))

	cities := NewCityCollection()
	for _, loc := range locs[start:stop] {
		table, err := s.provider.Load(ctx, s.defaults.WithLocation(Location{Lat: loc.Lat, Lon: loc.Lon}))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", loc.Name, err)
		}
		cities.Set(loc.Name, table)
		log.Debug("city loaded", zap.String("city", loc.Name), zap.Int("records", table.Len()))
	}

	log.Debug("bulk load finished", zap.Int("cities", cities.Len()))
	return cities, nil
}

// LoadCityFromList loads the single location named city from the file at path.
func (s *Service) LoadCityFromList(ctx context.Context, path, city string) (*Table, error) {
	locs, err := ReadLocationsFile(path)
	if err != nil {
		return nil, err
	}

	var (
		match Location
		found int
	)
	for _, loc := range locs {
		if loc.Name == city {
			match = loc
			found++
		}
	}

	switch {
	case found == 0:
		return nil, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	case found > 1:
		return nil, fmt.Errorf("%w: %q appears %d times", ErrAmbiguousCity, city, found)
	}

	s.logger.Debug("loading city", zap.String("city", city), zap.String("file", path))
	return s.provider.Load(ctx, s.defaults.WithLocation(Location{Lat: match.Lat, Lon: match.Lon}))
}
