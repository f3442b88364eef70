package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pvforecast/pvwatts-importer/internal/solar"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. City endpoints
// read locationsFile on every request.
func RegisterRoutes(app *fiber.App, service *solar.Service, locationsFile string) {
	v1 := app.Group("/api/v1")

	v1.Get("/pvwatts/hourly", func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		params, err := parseParams(c, service.Defaults())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		table, err := service.Load(c.UserContext(), params)
		if err != nil {
			return toFiberError(err)
		}
		return sendTable(c, format, table)
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		var q rangeQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cities, err := service.BulkLoadFromList(c.UserContext(), locationsFile, q.toRange())
		if err != nil {
			return toFiberError(err)
		}
		return sendCollection(c, format, cities)
	})

	v1.Get("/cities/:city", func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		city, err := url.PathUnescape(c.Params("city"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req := cityRequest{City: city}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		table, err := service.LoadCityFromList(c.UserContext(), locationsFile, req.City)
		if err != nil {
			return toFiberError(err)
		}
		return sendTable(c, format, table)
	})
}

// toFiberError maps domain error kinds onto HTTP status codes.
func toFiberError(err error) error {
	switch {
	case errors.Is(err, solar.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, solar.ErrInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, solar.ErrTransport), errors.Is(err, solar.ErrDecode):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

type cityRequest struct {
	City string `validate:"required"`
}

type formatQuery struct {
	Format string `validate:"oneof=json csv"`
}

func parseFormat(c *fiber.Ctx) (string, error) {
	q := formatQuery{Format: c.Query("format", "json")}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	return q.Format, nil
}

// rangeQuery holds the optional start/stop row bounds of a bulk load.
type rangeQuery struct {
	Start *int
	Stop  *int
}

func (r *rangeQuery) bind(c *fiber.Ctx) error {
	var err error
	if r.Start, err = optionalInt(c, "start"); err != nil {
		return err
	}
	if r.Stop, err = optionalInt(c, "stop"); err != nil {
		return err
	}
	return nil
}

// toRange returns nil when neither bound is given. A missing stop means the
// end of the file.
func (r rangeQuery) toRange() *solar.Range {
	if r.Start == nil && r.Stop == nil {
		return nil
	}
	rng := &solar.Range{Stop: math.MaxInt}
	if r.Start != nil {
		rng.Start = *r.Start
	}
	if r.Stop != nil {
		rng.Stop = *r.Stop
	}
	return rng
}

// parseParams overlays the query string on defaults.
func parseParams(c *fiber.Ctx, p solar.Params) (solar.Params, error) {
	floats := []struct {
		key string
		dst *float64
	}{
		{"system_capacity", &p.SystemCapacity},
		{"losses", &p.Losses},
		{"tilt", &p.Tilt},
		{"azimuth", &p.Azimuth},
	}
	for _, f := range floats {
		v, err := optionalFloat(c, f.key)
		if err != nil {
			return p, err
		}
		if v != nil {
			*f.dst = *v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"module_type", &p.ModuleType},
		{"array_type", &p.ArrayType},
		{"radius", &p.Radius},
	}
	for _, f := range ints {
		v, err := optionalInt(c, f.key)
		if err != nil {
			return p, err
		}
		if v != nil {
			*f.dst = *v
		}
	}

	lat, err := optionalFloat(c, "lat")
	if err != nil {
		return p, err
	}
	lon, err := optionalFloat(c, "lon")
	if err != nil {
		return p, err
	}
	if lat != nil {
		p.Lat = lat
	}
	if lon != nil {
		p.Lon = lon
	}
	if address := c.Query("address"); address != "" {
		p.Address = address
	}
	return p, nil
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &v, nil
}

func optionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &v, nil
}

func sendTable(c *fiber.Ctx, format string, table *solar.Table) error {
	if format == "csv" {
		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			return err
		}
		c.Type("csv")
		return c.Send(buf.Bytes())
	}
	return c.JSON(table)
}

func sendCollection(c *fiber.Ctx, format string, cities *solar.CityCollection) error {
	if format == "csv" {
		var buf bytes.Buffer
		if err := cities.WriteCSV(&buf); err != nil {
			return err
		}
		c.Type("csv")
		return c.Send(buf.Bytes())
	}
	return c.JSON(cities)
}
