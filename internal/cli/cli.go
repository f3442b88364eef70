package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/pvforecast/pvwatts-importer/internal/solar"
)

// ServeFunc runs the HTTP API until ctx is done.
type ServeFunc func(ctx context.Context) error

type output interface {
	WriteCSV(w io.Writer) error
}

func New(service *solar.Service, serve ServeFunc) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "pvwatts-importer",
		Short:         "Fetch hourly PVWatts simulations for one or many locations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("format", "csv", "output format: csv or json")

	root.AddCommand(
		newLoadCommand(service),
		newCityCommand(service),
		newBulkCommand(service),
		newServeCommand(serve),
	)

	return root, nil
}

func newLoadCommand(service *solar.Service) *cobra.Command {
	params := service.Defaults()
	var lat, lon float64
	if params.Lat != nil {
		lat = *params.Lat
	}
	if params.Lon != nil {
		lon = *params.Lon
	}

	cmd := &cobra.Command{
		Use:   "load",
		Args:  cobra.NoArgs,
		Short: "Fetch one hourly table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("lat") || params.Lat != nil {
				params.Lat = &lat
			}
			if cmd.Flags().Changed("lon") || params.Lon != nil {
				params.Lon = &lon
			}

			table, err := service.Load(cmd.Context(), params)
			if err != nil {
				return err
			}
			return write(cmd, table)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&params.SystemCapacity, "system-capacity", params.SystemCapacity, "nameplate capacity (kW)")
	f.IntVar(&params.ModuleType, "module-type", params.ModuleType, "0 standard, 1 premium, 2 thin film")
	f.Float64Var(&params.Losses, "losses", params.Losses, "system losses (%)")
	f.IntVar(&params.ArrayType, "array-type", params.ArrayType, "0 fixed open rack, 1 fixed roof, 2 1-axis, 3 1-axis backtracking, 4 2-axis")
	f.Float64Var(&params.Tilt, "tilt", params.Tilt, "tilt angle (deg)")
	f.Float64Var(&params.Azimuth, "azimuth", params.Azimuth, "azimuth angle (deg)")
	f.StringVar(&params.Address, "address", params.Address, "street address resolved by PVWatts")
	f.Float64Var(&lat, "lat", lat, "latitude")
	f.Float64Var(&lon, "lon", lon, "longitude")
	f.IntVar(&params.Radius, "radius", params.Radius, "search radius for the closest climate data station (miles), 0 for closest")

	return cmd
}

func newCityCommand(service *solar.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "city <file> <name>",
		Args:  cobra.ExactArgs(2),
		Short: "Fetch the hourly table of one city from a location file",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := service.LoadCityFromList(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return write(cmd, table)
		},
	}
}

func newBulkCommand(service *solar.Service) *cobra.Command {
	var start, stop int

	cmd := &cobra.Command{
		Use:   "bulk <file>",
		Args:  cobra.ExactArgs(1),
		Short: "Fetch hourly tables for every city in a location file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rng *solar.Range
			if cmd.Flags().Changed("start") || cmd.Flags().Changed("stop") {
				rng = &solar.Range{Start: start, Stop: stop}
			}

			cities, err := service.BulkLoadFromList(cmd.Context(), args[0], rng)
			if err != nil {
				return err
			}
			return write(cmd, cities)
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "first row (inclusive)")
	cmd.Flags().IntVar(&stop, "stop", math.MaxInt, "last row (exclusive)")

	return cmd
}

func newServeCommand(serve ServeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serve == nil {
				return fmt.Errorf("serve is not configured")
			}
			return serve(cmd.Context())
		},
	}
}

func write(cmd *cobra.Command, out output) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		return out.WriteCSV(cmd.OutOrStdout())
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
