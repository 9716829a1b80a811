package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

// Load builds the effective configuration. Later layers win:
// defaults < config file < AETHERIA_* environment < command-line flags.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config.yaml in the working directory or
// ConfigDir, or "" if there is none.
func findConfigFile() string {
	for _, path := range []string{fileName, filepath.Join(ConfigDir(), fileName)} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory of the application.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Aetheria")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Aetheria")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aetheria")
	}
	return filepath.Join(home, ".config", "aetheria")
}

// loadFromFile merges a YAML file over cfg. Keys missing from the file keep
// their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overrides the settings that deployments usually pin without a
// config file.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"AETHERIA_CONDITION", &cfg.Globe.Condition},
		{"AETHERIA_WEATHER_SOURCE", &cfg.Weather.Source},
		{"AETHERIA_WEATHER_ENDPOINT", &cfg.Weather.Endpoint},
		{"AETHERIA_METRICS_ADDR", &cfg.Debug.MetricsAddr},
		{"AETHERIA_LOG_LEVEL", &cfg.Logging.Level},
		{"AETHERIA_LOG_FORMAT", &cfg.Logging.Format},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup("AETHERIA_WEATHER_REFRESH"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid AETHERIA_WEATHER_REFRESH %q", v)
		}
		cfg.Weather.RefreshInterval = d
	}
	return nil
}

// Encode writes the configuration as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// WriteDefault writes the default configuration to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := Default().Encode(f); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}
