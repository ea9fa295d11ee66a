package commands

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"healthmap/internal/geocoder"
	"healthmap/internal/sensor"
	"healthmap/internal/services"
	"healthmap/internal/utils"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [address...]",
		Short: "Geocode an address the way the map's search box does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appCtx.cfg
			logr := appCtx.logr.Component("search")

			var geo geocoder.Geocoder = geocoder.NewNominatim(
				cfg.GeocoderURL,
				cfg.GeocoderUserAgent,
				cfg.GeocoderTimeout,
				geocoder.WithLogger(logr),
			)
			rdb, err := utils.OpenRedis(cfg)
			if err != nil {
				logr.Warn("redis unavailable, geocoder cache disabled", zap.Error(err))
			}
			if rdb != nil {
				defer rdb.Close()
			}
			geo = geocoder.NewCached(geo, rdb, cfg.GeocoderCacheTTL, nil, logr)

			r := services.NewPositionResolver(geo, nil, logr)
			_, err = r.LocateViaAddress(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, services.ErrInvalidQuery) {
				return errors.New(services.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), r.Snapshot())
		},
	}
	return cmd
}

func locateCmd() *cobra.Command {
	var lat, lon float64
	var ip string

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Resolve a position from a fixed reading or, with --ip, a GeoIP lookup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var s sensor.Sensor
			switch {
			case ip != "":
				parsed := net.ParseIP(ip)
				if parsed == nil {
					return fmt.Errorf("invalid ip %q", ip)
				}
				if appCtx.cfg.GeoIPDBPath == "" {
					return errors.New("GEOIP_DB_PATH is not set")
				}
				g, err := sensor.OpenGeoIP(appCtx.cfg.GeoIPDBPath)
				if err != nil {
					return err
				}
				defer g.Close()
				s = g
				ctx = sensor.WithClientIP(ctx, parsed)
			case cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon"):
				s = sensor.Fixed{Reading: sensor.Reading{Lat: lat, Lon: lon}}
			}

			r := services.NewPositionResolver(nil, nil, appCtx.logr.Logger)
			_, _ = r.LocateViaSensor(ctx, s)
			return printJSON(cmd.OutOrStdout(), r.Snapshot())
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of a fixed reading")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of a fixed reading")
	cmd.Flags().StringVar(&ip, "ip", "", "estimate the position of this address with the GeoIP database")
	return cmd
}
