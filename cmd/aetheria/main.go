// Package main is the entry point for the Aetheria weather globe.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/app"
	"github.com/Faultbox/aetheria/internal/config"
	"github.com/Faultbox/aetheria/internal/engine/audio"
	"github.com/Faultbox/aetheria/internal/engine/texture"
	"github.com/Faultbox/aetheria/internal/logger"
	"github.com/Faultbox/aetheria/internal/observability"
	"github.com/Faultbox/aetheria/internal/weather"
)

const (
	headlessFPS    = 60
	weatherTimeout = 10 * time.Second
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	if config.InitRequested() {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if config.PrintRequested() {
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logOpts := logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: os.Stdout,
	}
	if cfg.Logging.LogFile != "" {
		logOpts.File = logger.RotatedFile(cfg.Logging.LogFile)
	}
	if err := logger.Init(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== Aetheria ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Error("aetheria stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("closed normally")
	logger.Sync()
}

func run(ctx context.Context, cfg *config.Config) error {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	if cfg.Debug.MetricsAddr != "" {
		srv := serveMetrics(cfg.Debug.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	opts := app.Options{
		Config:  cfg,
		Metrics: metrics,
		Fetcher: texture.HTTPFetcher{Client: &http.Client{}},
	}

	if cfg.Graphics.Headless {
		opts.Host = app.NewHeadlessHost(cfg.Graphics.Width, cfg.Graphics.Height, nil, headlessFPS)
	} else {
		d, err := newDesktop(cfg)
		if err != nil {
			return fmt.Errorf("create window: %w", err)
		}
		defer d.Close()
		opts.Host = d

		if cfg.Audio.Enabled {
			amb := audio.New(audio.DefaultSampleRate, cfg.Audio.MasterVolume, logger.Named("audio"))
			if err := amb.Init(); err != nil {
				logger.Warn("audio disabled", zap.Error(err))
			} else {
				defer amb.Close()
				opts.Audio = amb
			}
		}
	}

	if cfg.Weather.Source == "open-meteo" {
		opts.Source = weather.NewOpenMeteo(cfg.Weather.Endpoint, weatherTimeout, logger.Named("weather"))
	}

	a, err := app.New(opts)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func initConfig() error {
	dir := config.ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")
	written, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if written {
		fmt.Println("wrote", path)
	} else {
		fmt.Println("kept existing", path)
	}
	return nil
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
