package config

import (
	"flag"
	"math"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagHeadless   = flag.Bool("headless", false, "Render without a window")
	flagCondition  = flag.String("condition", "", "Initial weather condition (Clear, Cloudy, Fog, Rain, Drizzle, Thunderstorm, Snow)")
	flagLat        = flag.Float64("lat", math.NaN(), "Initial latitude in degrees")
	flagLng        = flag.Float64("lng", math.NaN(), "Initial longitude in degrees")
	flagNight      = flag.Bool("night", false, "Start with the night side lit")
	flagMute       = flag.Bool("mute", false, "Start with audio muted")
	flagOffline    = flag.Bool("offline", false, "Use the static weather source")
	flagMetrics    = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flagPrint      = flag.Bool("print-config", false, "Print the effective config and exit")
	flagInit       = flag.Bool("init-config", false, "Write a default config file to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagHeadless {
		cfg.Graphics.Headless = true
	}
	if *flagCondition != "" {
		cfg.Globe.Condition = *flagCondition
	}
	if !math.IsNaN(*flagLat) {
		cfg.Globe.Latitude = *flagLat
	}
	if !math.IsNaN(*flagLng) {
		cfg.Globe.Longitude = *flagLng
	}
	if *flagNight {
		cfg.Globe.IsDay = false
	}
	if *flagMute {
		cfg.Audio.Muted = true
	}
	if *flagOffline {
		cfg.Weather.Source = "static"
	}
	if *flagMetrics != "" {
		cfg.Debug.MetricsAddr = *flagMetrics
	}
}

// PrintRequested reports whether --print-config was given.
func PrintRequested() bool {
	return *flagPrint
}

// InitRequested reports whether --init-config was given.
func InitRequested() bool {
	return *flagInit
}
