// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/aetheria/internal/weather"
)

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Globe    GlobeConfig    `yaml:"globe"`
	Assets   AssetsConfig   `yaml:"assets"`
	Weather  WeatherConfig  `yaml:"weather"`
	Audio    AudioConfig    `yaml:"audio"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	// Headless renders into an accounting device without opening a window.
	Headless bool `yaml:"headless"`
}

// GlobeConfig holds the initial view and idle motion of the globe.
type GlobeConfig struct {
	Condition         string        `yaml:"condition"`
	Latitude          float64       `yaml:"latitude"`
	Longitude         float64       `yaml:"longitude"`
	IsDay             bool          `yaml:"is_day"`
	SpinPerFrame      float32       `yaml:"spin_per_frame"`
	CloudSpinPerFrame float32       `yaml:"cloud_spin_per_frame"`
	ReadyTimeout      time.Duration `yaml:"ready_timeout"`
}

// AssetsConfig holds the globe texture locations.
type AssetsConfig struct {
	EarthDay     string        `yaml:"earth_day"`
	EarthBump    string        `yaml:"earth_bump"`
	EarthWater   string        `yaml:"earth_water"`
	EarthNight   string        `yaml:"earth_night"`
	Clouds       string        `yaml:"clouds"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// WeatherConfig selects where the current conditions come from.
type WeatherConfig struct {
	// Source is "static" or "open-meteo".
	Source          string        `yaml:"source"`
	Endpoint        string        `yaml:"endpoint"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// AudioConfig holds ambience settings.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	MasterVolume float64 `yaml:"master_volume"`
	Muted        bool    `yaml:"muted"`
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	LogStatsInterval time.Duration `yaml:"log_stats_interval"`
	ScreenshotDir    string        `yaml:"screenshot_dir"`

	// MetricsAddr serves Prometheus metrics on /metrics when set.
	MetricsAddr string `yaml:"metrics_addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

const textureBase = "https://unpkg.com/three-globe/example/img/"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Globe: GlobeConfig{
			Condition:         string(weather.Clear),
			Latitude:          40.7128,
			Longitude:         -74.0060,
			IsDay:             true,
			SpinPerFrame:      0.0005,
			CloudSpinPerFrame: 0.0003,
			ReadyTimeout:      3500 * time.Millisecond,
		},
		Assets: AssetsConfig{
			EarthDay:     textureBase + "earth-blue-marble.jpg",
			EarthBump:    textureBase + "earth-topology.png",
			EarthWater:   textureBase + "earth-water.png",
			EarthNight:   textureBase + "earth-night-lights.png",
			Clouds:       textureBase + "earth-clouds.png",
			FetchTimeout: 20 * time.Second,
		},
		Weather: WeatherConfig{
			Source:          "static",
			Endpoint:        "https://api.open-meteo.com/v1/forecast",
			RefreshInterval: 10 * time.Minute,
		},
		Audio: AudioConfig{
			Enabled:      true,
			MasterVolume: 0.4,
			Muted:        false,
		},
		Debug: DebugConfig{
			LogStatsInterval: 5 * time.Second,
			ScreenshotDir:    "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// TextureURLs returns the asset URLs in load order.
func (a AssetsConfig) TextureURLs() []string {
	return []string{a.EarthDay, a.EarthBump, a.EarthWater, a.EarthNight, a.Clouds}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if _, err := weather.Parse(c.Globe.Condition); err != nil {
		errs = append(errs, fmt.Errorf("globe: %w", err))
	}
	if c.Globe.Latitude < -90 || c.Globe.Latitude > 90 {
		errs = append(errs, fmt.Errorf("globe: latitude %v out of range", c.Globe.Latitude))
	}
	if c.Globe.Longitude < -180 || c.Globe.Longitude > 180 {
		errs = append(errs, fmt.Errorf("globe: longitude %v out of range", c.Globe.Longitude))
	}
	switch c.Weather.Source {
	case "static", "open-meteo":
	default:
		errs = append(errs, fmt.Errorf("weather: unknown source %q", c.Weather.Source))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q", c.Logging.Format))
	}
	if c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 1 {
		errs = append(errs, fmt.Errorf("audio: master volume %v out of range", c.Audio.MasterVolume))
	}
	return errors.Join(errs...)
}
