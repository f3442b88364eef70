package solar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	columnCity = "city"
	columnLat  = "lat"
	columnLon  = "lon"
)

// ReadLocationsFile reads a location file from disk. See ReadLocations.
func ReadLocationsFile(path string) ([]Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open location file: %v", ErrInput, err)
	}
	defer f.Close()

	locs, err := ReadLocations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return locs, nil
}

// ReadLocations parses CSV with a header row holding at least the city, lat
// and lon columns in any order. Other columns are ignored and an empty lon
// cell yields a nil longitude.
func ReadLocations(r io.Reader) ([]Location, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInput, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	for _, col := range []string{columnCity, columnLat, columnLon} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	cityIdx, latIdx, lonIdx := idx[columnCity], idx[columnLat], idx[columnLon]

	var locs []Location
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInput, err)
		}
		line, _ := cr.FieldPos(0)

		field := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		lat, err := strconv.ParseFloat(field(latIdx), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid lat %q", ErrInput, line, field(latIdx))
		}
		loc := Location{Name: field(cityIdx), Lat: lat}

		if raw := field(lonIdx); raw != "" {
			lon, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid lon %q", ErrInput, line, raw)
			}
			loc.Lon = &lon
		}

		locs = append(locs, loc)
	}

	return locs, nil
}
