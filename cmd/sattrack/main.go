package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/api"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/auth"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/orbit"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/track"
	"github.com/OorjitSethi/SatelliteTrackingAPI/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	srvCfg := api.Config{Addr: ":8080"}
	if v := os.Getenv("SATTRACK_HTTP_ADDR"); v != "" {
		srvCfg.Addr = v
	}
	if v := os.Getenv("SATTRACK_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SATTRACK_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			srvCfg.TrustProxy = trust
		}
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	consts := loadConstants(logger)
	trackCfg := loadTrackConfig(logger)

	pred := orbit.NewPredictor(consts)
	sampler := track.NewSampler(pred, trackCfg, logger)

	srv := api.NewServer(srvCfg, logger, authCfg, pred, sampler, web.Content)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", srvCfg.Addr, "auth_enabled", authCfg.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SATTRACK_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SATTRACK_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SATTRACK_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SATTRACK_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// loadConstants reads the Earth model from the environment. The values
// are fixed for the lifetime of the process.
func loadConstants(logger *slog.Logger) orbit.Constants {
	consts := orbit.DefaultConstants()

	if v := os.Getenv("SATTRACK_MU"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid SATTRACK_MU value, using default", "value", v, "default", consts.Mu)
		} else {
			consts.Mu = f
		}
	}

	if v := os.Getenv("SATTRACK_EARTH_RADIUS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid SATTRACK_EARTH_RADIUS value, using default", "value", v, "default", consts.EquatorialRadius)
		} else {
			consts.EquatorialRadius = f
		}
	}

	if v := os.Getenv("SATTRACK_J2"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			logger.Warn("invalid SATTRACK_J2 value, using default", "value", v, "default", consts.J2)
		} else {
			consts.J2 = f
		}
	}

	logger.Info("earth model",
		"mu", consts.Mu,
		"equatorial_radius", consts.EquatorialRadius,
		"j2", consts.J2,
	)

	return consts
}

func loadTrackConfig(logger *slog.Logger) track.Config {
	cfg := track.Config{
		Workers:   runtime.NumCPU(),
		MaxPoints: 10000,
	}

	if v := os.Getenv("SATTRACK_TRACK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SATTRACK_TRACK_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("SATTRACK_TRACK_MAX_POINTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SATTRACK_TRACK_MAX_POINTS value, using default", "value", v, "default", cfg.MaxPoints)
		} else {
			cfg.MaxPoints = n
		}
	}

	logger.Info("track config",
		"workers", cfg.Workers,
		"max_points", cfg.MaxPoints,
	)

	return cfg
}
