package solar

import (
	"time"
)

// Fixed query values sent with every PVWatts request.
const (
	Timeframe = "hourly"
	Dataset   = "tmy3"
)

// Output column names. The API's "ac" field is exposed as power.
const (
	ColumnPower = "power"
	ColumnTamb  = "tamb"
	ColumnWspd  = "wspd"
)

// IndexStart is the first timestamp of every hourly table. It is synthetic and
// unrelated to the meteorological year behind the typical-year dataset.
var IndexStart = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

// Location is a named site from a location file.
// Either the coordinates or the address must be resolvable by PVWatts.
type Location struct {
	Name    string   `json:"city"`
	Lat     float64  `json:"lat"`
	Lon     *float64 `json:"lon,omitempty"`
	Address string   `json:"address,omitempty"`
}

// Params is the set of simulation inputs sent to PVWatts.
// A nil coordinate or an empty address is left out of the query.
type Params struct {
	SystemCapacity float64  `yaml:"system_capacity" json:"system_capacity"`
	ModuleType     int      `yaml:"module_type" json:"module_type"`
	Losses         float64  `yaml:"losses" json:"losses"`
	ArrayType      int      `yaml:"array_type" json:"array_type"`
	Tilt           float64  `yaml:"tilt" json:"tilt"`
	Azimuth        float64  `yaml:"azimuth" json:"azimuth"`
	Address        string   `yaml:"address" json:"address,omitempty"`
	Lat            *float64 `yaml:"lat" json:"lat,omitempty"`
	Lon            *float64 `yaml:"lon" json:"lon,omitempty"`
	Radius         int      `yaml:"radius" json:"radius"`
}

// DefaultParams returns a 4 kW standard fixed open-rack system in Münster.
func DefaultParams() Params {
	lat, lon := 51.9607, 7.6261
	return Params{
		SystemCapacity: 4,
		ModuleType:     0,
		Losses:         14,
		ArrayType:      0,
		Tilt:           25,
		Azimuth:        180,
		Lat:            &lat,
		Lon:            &lon,
		Radius:         0,
	}
}

// WithLocation returns a copy of p pointed at loc. Only the coordinates and
// address come from loc; every other field keeps its value.
func (p Params) WithLocation(loc Location) Params {
	lat := loc.Lat
	p.Lat = &lat
	p.Lon = nil
	if loc.Lon != nil {
		lon := *loc.Lon
		p.Lon = &lon
	}
	if loc.Address != "" {
		p.Address = loc.Address
	}
	return p
}

// Clone returns a copy of p that shares no pointers with it.
func (p Params) Clone() Params {
	if p.Lat != nil {
		lat := *p.Lat
		p.Lat = &lat
	}
	if p.Lon != nil {
		lon := *p.Lon
		p.Lon = &lon
	}
	return p
}
