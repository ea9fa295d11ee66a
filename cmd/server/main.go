package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthmap/internal/catalog"
	"healthmap/internal/config"
	"healthmap/internal/geocoder"
	"healthmap/internal/logger"
	"healthmap/internal/metrics"
	"healthmap/internal/routes"
	"healthmap/internal/sensor"
	"healthmap/internal/services"
	"healthmap/internal/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.LoadConfigured(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to load catalog", zap.Error(err))
	}
	territories, servicesCount, drones := cat.Counts()
	logr.Info("catalog loaded",
		zap.String("source", cfg.CatalogSource),
		zap.Int("territories", territories),
		zap.Int("services", servicesCount),
		zap.Int("drones", drones))

	m, err := metrics.New(nil)
	if err != nil {
		logr.Fatal("failed to register metrics", zap.Error(err))
	}

	rdb, err := utils.OpenRedis(cfg)
	if err != nil {
		logr.Warn("redis unavailable, geocoder cache disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var geo geocoder.Geocoder = geocoder.NewNominatim(
		cfg.GeocoderURL,
		cfg.GeocoderUserAgent,
		cfg.GeocoderTimeout,
		geocoder.WithMetrics(m),
		geocoder.WithLogger(logr.Component("geocoder")),
	)
	geo = geocoder.NewCached(geo, rdb, cfg.GeocoderCacheTTL, m, logr.Component("geocoder"))

	var fallback sensor.Sensor
	if cfg.GeoIPDBPath != "" {
		g, err := sensor.OpenGeoIP(cfg.GeoIPDBPath)
		if err != nil {
			logr.Warn("geoip database unavailable", zap.Error(err))
		} else {
			defer g.Close()
			fallback = g
		}
	}

	sessions := services.NewSessionStore(geo, cfg.SessionIdleTTL, m, logr.Component("sessions"))
	go sessions.Run(ctx, time.Minute)

	r, err := routes.NewRouter(cfg, routes.Deps{
		Catalog:  cat,
		Sessions: sessions,
		Sensor:   fallback,
		Metrics:  m,
	}, logr)
	if err != nil {
		logr.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logr.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}
