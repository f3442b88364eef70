package solar

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pvforecast/pvwatts-importer/internal/common"
)

// Record is one hour of simulated output.
type Record struct {
	Time  time.Time `json:"time"` // always UTC
	Power float64   `json:"power"`
	Tamb  float64   `json:"tamb"`
	Wspd  float64   `json:"wspd"`
}

// Table is an hourly series indexed by Record.Time in chronological order.
type Table struct {
	Records []Record
}

// NewTable shapes the three output series into a Table with an hourly index
// starting at IndexStart. The series must have equal length.
func NewTable(power, tamb, wspd []float64) (*Table, error) {
	if len(power) != len(tamb) || len(power) != len(wspd) {
		return nil, fmt.Errorf("%w: series length mismatch: ac=%d tamb=%d wspd=%d",
			ErrDecode, len(power), len(tamb), len(wspd))
	}

	records := make([]Record, len(power))
	for i := range power {
		records[i] = Record{
			Time:  IndexStart.Add(time.Duration(i) * time.Hour),
			Power: power[i],
			Tamb:  tamb[i],
			Wspd:  wspd[i],
		}
	}
	return &Table{Records: records}, nil
}

// Columns returns the value column names in output order.
func (t *Table) Columns() []string {
	return []string{ColumnPower, ColumnTamb, ColumnWspd}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// Index returns the row timestamps.
func (t *Table) Index() []time.Time {
	index := make([]time.Time, len(t.Records))
	for i, r := range t.Records {
		index[i] = r.Time
	}
	return index
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	var pick func(Record) float64
	switch name {
	case ColumnPower:
		pick = func(r Record) float64 { return r.Power }
	case ColumnTamb:
		pick = func(r Record) float64 { return r.Tamb }
	case ColumnWspd:
		pick = func(r Record) float64 { return r.Wspd }
	default:
		return nil, false
	}

	values := make([]float64, len(t.Records))
	for i, r := range t.Records {
		values[i] = pick(r)
	}
	return values, true
}

func (t *Table) MarshalJSON() ([]byte, error) {
	if t.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Records)
}

// WriteCSV writes the table with a time,power,tamb,wspd header.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"time"}, t.Columns()...)); err != nil {
		return err
	}
	for _, r := range t.Records {
		if err := cw.Write(r.csvFields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Record) csvFields() []string {
	return []string{
		r.Time.Format("2006-01-02 15:04:05"),
		common.FormatFloat(r.Power),
		common.FormatFloat(r.Tamb),
		common.FormatFloat(r.Wspd),
	}
}

// CityCollection maps city names to their tables and remembers insertion order.
// Setting an existing name replaces its table and keeps its position.
type CityCollection struct {
	order  []string
	tables map[string]*Table
}

func NewCityCollection() *CityCollection {
	return &CityCollection{tables: make(map[string]*Table)}
}

func (c *CityCollection) Set(city string, table *Table) {
	if _, ok := c.tables[city]; !ok {
		c.order = append(c.order, city)
	}
	c.tables[city] = table
}

func (c *CityCollection) Get(city string) (*Table, bool) {
	t, ok := c.tables[city]
	return t, ok
}

// Cities returns the city names in insertion order.
func (c *CityCollection) Cities() []string {
	return append([]string(nil), c.order...)
}

func (c *CityCollection) Len() int {
	return len(c.order)
}

// MarshalJSON encodes the collection as an object whose keys keep insertion order.
func (c *CityCollection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, city := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(city)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.tables[city])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteCSV writes every table in order with a leading city column.
func (c *CityCollection) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"city", "time", ColumnPower, ColumnTamb, ColumnWspd}); err != nil {
		return err
	}
	for _, city := range c.order {
		for _, r := range c.tables[city].Records {
			if err := cw.Write(append([]string{city}, r.csvFields()...)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
