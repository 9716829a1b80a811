package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.Headless {
		t.Error("expected headless to be false by default")
	}

	// Test globe defaults
	if cfg.Globe.Condition != "Clear" {
		t.Errorf("expected condition Clear, got %s", cfg.Globe.Condition)
	}
	if cfg.Globe.Latitude != 40.7128 || cfg.Globe.Longitude != -74.0060 {
		t.Errorf("expected New York, got %v,%v", cfg.Globe.Latitude, cfg.Globe.Longitude)
	}
	if !cfg.Globe.IsDay {
		t.Error("expected day by default")
	}
	if cfg.Globe.ReadyTimeout != 3500*time.Millisecond {
		t.Errorf("expected ready timeout 3.5s, got %v", cfg.Globe.ReadyTimeout)
	}

	// Test audio defaults
	if cfg.Audio.MasterVolume != 0.4 {
		t.Errorf("expected master volume 0.4, got %f", cfg.Audio.MasterVolume)
	}

	// Test weather defaults
	if cfg.Weather.Source != "static" {
		t.Errorf("expected static weather source, got %s", cfg.Weather.Source)
	}

	if len(cfg.Assets.TextureURLs()) != 5 {
		t.Errorf("expected 5 texture urls, got %d", len(cfg.Assets.TextureURLs()))
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

globe:
  condition: Snow
  latitude: 51.5074
  longitude: -0.1278
  is_day: false
  ready_timeout: 5s

weather:
  source: open-meteo
  refresh_interval: 1m

audio:
  master_volume: 0.5
  muted: true

logging:
  level: "debug"
  log_file: "aetheria.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Globe.Condition != "Snow" {
		t.Errorf("expected condition Snow, got %s", cfg.Globe.Condition)
	}
	if cfg.Globe.Latitude != 51.5074 {
		t.Errorf("expected latitude 51.5074, got %v", cfg.Globe.Latitude)
	}
	if cfg.Globe.IsDay {
		t.Error("expected night")
	}
	if cfg.Globe.ReadyTimeout != 5*time.Second {
		t.Errorf("expected ready timeout 5s, got %v", cfg.Globe.ReadyTimeout)
	}
	// Unset keys keep their defaults.
	if cfg.Globe.SpinPerFrame != 0.0005 {
		t.Errorf("expected default spin, got %v", cfg.Globe.SpinPerFrame)
	}

	if cfg.Weather.Source != "open-meteo" {
		t.Errorf("expected open-meteo, got %s", cfg.Weather.Source)
	}
	if cfg.Weather.RefreshInterval != time.Minute {
		t.Errorf("expected refresh 1m, got %v", cfg.Weather.RefreshInterval)
	}

	if !cfg.Audio.Muted {
		t.Error("expected muted to be true")
	}

	if cfg.Logging.LogFile != "aetheria.log" {
		t.Errorf("expected log file 'aetheria.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown condition", func(c *Config) { c.Globe.Condition = "Hail" }, "unknown weather condition"},
		{"latitude", func(c *Config) { c.Globe.Latitude = 91 }, "latitude"},
		{"longitude", func(c *Config) { c.Globe.Longitude = -181 }, "longitude"},
		{"size", func(c *Config) { c.Graphics.Width = 0 }, "invalid size"},
		{"source", func(c *Config) { c.Weather.Source = "radar" }, "unknown source"},
		{"volume", func(c *Config) { c.Audio.MasterVolume = 2 }, "master volume"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "location flags",
			setup: func() {
				*flagLat = 0
				*flagLng = 0
			},
			verify: func(cfg *Config) {
				if cfg.Globe.Latitude != 0 || cfg.Globe.Longitude != 0 {
					t.Errorf("expected 0,0 from flags, got %v,%v", cfg.Globe.Latitude, cfg.Globe.Longitude)
				}
			},
			teardown: func() {
				*flagLat = math.NaN()
				*flagLng = math.NaN()
			},
		},
		{
			name: "condition and night flags",
			setup: func() {
				*flagCondition = "Thunderstorm"
				*flagNight = true
			},
			verify: func(cfg *Config) {
				if cfg.Globe.Condition != "Thunderstorm" {
					t.Errorf("expected Thunderstorm, got %s", cfg.Globe.Condition)
				}
				if cfg.Globe.IsDay {
					t.Error("expected night with night flag")
				}
			},
			teardown: func() {
				*flagCondition = ""
				*flagNight = false
			},
		},
		{
			name: "offline and mute flags",
			setup: func() {
				*flagOffline = true
				*flagMute = true
			},
			verify: func(cfg *Config) {
				if cfg.Weather.Source != "static" {
					t.Errorf("expected static source, got %s", cfg.Weather.Source)
				}
				if !cfg.Audio.Muted {
					t.Error("expected muted with mute flag")
				}
			},
			teardown: func() {
				*flagOffline = false
				*flagMute = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("globe:\n  condition: Hail\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid condition to fail Load")
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	for _, key := range []string{"graphics:", "globe:", "condition: Clear", "master_volume: 0.4"} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %q in encoded config", key)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AETHERIA_CONDITION":       "Snow",
		"AETHERIA_WEATHER_SOURCE":  "open-meteo",
		"AETHERIA_LOG_FORMAT":      "json",
		"AETHERIA_METRICS_ADDR":    ":9102",
		"AETHERIA_WEATHER_REFRESH": "90s",
		"AETHERIA_LOG_LEVEL":       "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Globe.Condition != "Snow" {
		t.Errorf("condition = %q, want Snow", cfg.Globe.Condition)
	}
	if cfg.Weather.Source != "open-meteo" {
		t.Errorf("source = %q, want open-meteo", cfg.Weather.Source)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("log format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Debug.MetricsAddr != ":9102" {
		t.Errorf("metrics addr = %q, want :9102", cfg.Debug.MetricsAddr)
	}
	if cfg.Weather.RefreshInterval != 90*time.Second {
		t.Errorf("refresh = %v, want 90s", cfg.Weather.RefreshInterval)
	}
	// Empty values leave the default alone.
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestApplyEnvRejectsBadDuration(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "AETHERIA_WEATHER_REFRESH" {
			return "soon", true
		}
		return "", false
	}
	if err := applyEnv(Default(), lookup); err == nil {
		t.Error("expected invalid duration to fail")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	written, err := WriteDefault(path)
	if err != nil || !written {
		t.Fatalf("first write: written=%v err=%v", written, err)
	}

	cfg := Default()
	cfg.Graphics.Width = 1
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Graphics.Width != Default().Graphics.Width {
		t.Errorf("reloaded width = %d, want default", cfg.Graphics.Width)
	}

	if err := os.WriteFile(path, []byte("graphics:\n  width: 640\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	written, err = WriteDefault(path)
	if err != nil || written {
		t.Fatalf("second write: written=%v err=%v", written, err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "640") {
		t.Error("existing config was overwritten")
	}
}
