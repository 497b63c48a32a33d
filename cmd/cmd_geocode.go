package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manzanit0/tourplanner/pkg/geocode"
)

var geocodeOptions struct {
	provider string
	reverse  bool
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <place> | --reverse <lat> <lon>",
	Short: "Look up a place the way the map search does",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var client geocode.Client
		switch geocodeOptions.provider {
		case "nominatim":
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			client = a.geocoder
		case "osm":
			client = geocode.NewOpenstreetmapClient()
		default:
			return fmt.Errorf("unknown provider %q, expected nominatim or osm", geocodeOptions.provider)
		}

		var loc *geocode.Location
		var err error

		if geocodeOptions.reverse {
			lat, lon, perr := parseLatLon(args)
			if perr != nil {
				return perr
			}
			loc, err = client.ReverseGeocode(ctx, lat, lon)
		} else {
			loc, err = client.Geocode(ctx, strings.Join(args, " "))
		}

		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(loc)
	},
}

func parseLatLon(args []string) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("reverse lookups take exactly <lat> <lon>")
	}

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude: %w", err)
	}

	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude: %w", err)
	}

	return lat, lon, nil
}

func init() {
	geocodeCmd.Flags().StringVar(&geocodeOptions.provider, "provider", "nominatim", "geocoding backend: nominatim (cached, rate limited) or osm (geo-golang)")
	geocodeCmd.Flags().BoolVar(&geocodeOptions.reverse, "reverse", false, "look up the address at <lat> <lon>")

	rootCmd.AddCommand(geocodeCmd)
}
