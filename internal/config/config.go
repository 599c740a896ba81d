// Package config holds the scrollsite settings: YAML file, then environment
// overrides, then validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Scenes  ScenesConfig  `yaml:"scenes"`
	Scroll  ScrollConfig  `yaml:"scroll"`
	Logging LoggingConfig `yaml:"logging"`

	BuildVersion string `yaml:"-"`
}

// ServerConfig is the HTTP side of `serve`.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	PublicURL       string `yaml:"public_url"` // base for upload URLs and share codes
	APIPrefix       string `yaml:"api_prefix"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// APIConfig is what the CMS client talks to.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type StorageConfig struct {
	DBPath      string `yaml:"db_path"`
	UploadDir   string `yaml:"upload_dir"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	CoverDPI    int    `yaml:"cover_dpi"` // PDF covers are rasterized at this DPI
}

type ScenesConfig struct {
	Dir      string `yaml:"dir"`
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`
}

// ScrollConfig tunes the smooth-scroll adapter and the frame loop.
type ScrollConfig struct {
	Mode            string  `yaml:"mode"`     // tween | spring
	Duration        string  `yaml:"duration"` // tween length
	FPS             int     `yaml:"fps"`
	Frequency       float64 `yaml:"frequency"`
	Damping         float64 `yaml:"damping"`
	WheelMultiplier float64 `yaml:"wheel_multiplier"`
	RefreshDebounce string  `yaml:"refresh_debounce"`
	ViewportWidth   float64 `yaml:"viewport_width"`
	ViewportHeight  float64 `yaml:"viewport_height"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json | console
}

// SimulationParams describes one headless run of a scene.
type SimulationParams struct {
	Width, Height float64
	FPS           int
	Duration      float64 // seconds of simulated scrolling
	Distance      float64 // px scrolled over Duration; 0 scrolls to the end
	Verbose       bool
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			PublicURL:       "http://localhost:8080",
			APIPrefix:       "/api",
			ShutdownTimeout: "10s",
		},
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: "15s",
		},
		Storage: StorageConfig{
			DBPath:      "scrollsite.db",
			UploadDir:   "uploads",
			MaxUploadMB: 10,
			CoverDPI:    96,
		},
		Scenes: ScenesConfig{
			Dir:      "scenes",
			Watch:    true,
			Debounce: "300ms",
		},
		Scroll: ScrollConfig{
			Mode:            "tween",
			Duration:        "1.2s",
			FPS:             60,
			Frequency:       6.0,
			Damping:         1.0,
			WheelMultiplier: 1.0,
			RefreshDebounce: "150ms",
			ViewportWidth:   1440,
			ViewportHeight:  900,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults and applies SCROLLSITE_* overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"SCROLLSITE_ADDR":        &c.Server.Addr,
		"SCROLLSITE_PUBLIC_URL":  &c.Server.PublicURL,
		"SCROLLSITE_API_PREFIX":  &c.Server.APIPrefix,
		"SCROLLSITE_API_URL":     &c.API.BaseURL,
		"SCROLLSITE_API_TIMEOUT": &c.API.Timeout,
		"SCROLLSITE_DB":          &c.Storage.DBPath,
		"SCROLLSITE_UPLOAD_DIR":  &c.Storage.UploadDir,
		"SCROLLSITE_SCENES_DIR":  &c.Scenes.Dir,
		"SCROLLSITE_SCROLL_MODE": &c.Scroll.Mode,
		"SCROLLSITE_LOG_LEVEL":   &c.Logging.Level,
		"SCROLLSITE_LOG_FORMAT":  &c.Logging.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SCROLLSITE_MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCROLLSITE_MAX_UPLOAD_MB: %w", err)
		}
		c.Storage.MaxUploadMB = n
	}
	if v := os.Getenv("SCROLLSITE_SCENES_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SCROLLSITE_SCENES_WATCH: %w", err)
		}
		c.Scenes.Watch = b
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is empty")
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		problems = append(problems, fmt.Sprintf("server.api_prefix %q must start with /", c.Server.APIPrefix))
	}
	if c.Storage.MaxUploadMB <= 0 {
		problems = append(problems, "storage.max_upload_mb must be positive")
	}
	switch c.Scroll.Mode {
	case "tween", "spring":
	default:
		problems = append(problems, fmt.Sprintf("scroll.mode %q must be tween or spring", c.Scroll.Mode))
	}
	if c.Scroll.FPS <= 0 || c.Scroll.FPS > 240 {
		problems = append(problems, fmt.Sprintf("scroll.fps %d out of range", c.Scroll.FPS))
	}
	for name, v := range map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"api.timeout":             c.API.Timeout,
		"scenes.debounce":         c.Scenes.Debounce,
		"scroll.duration":         c.Scroll.Duration,
		"scroll.refresh_debounce": c.Scroll.RefreshDebounce,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is unknown", c.Logging.Level))
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) << 20
}

// GetAPITimeout returns the API client timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 15*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown window.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetScenesDebounce returns the scene watcher debounce.
func (c *Config) GetScenesDebounce() time.Duration {
	return parseDuration(c.Scenes.Debounce, 300*time.Millisecond)
}

// GetDuration returns the scroll tween duration.
func (s ScrollConfig) GetDuration() time.Duration {
	return parseDuration(s.Duration, 1200*time.Millisecond)
}

// GetRefreshDebounce returns the tracker refresh debounce.
func (s ScrollConfig) GetRefreshDebounce() time.Duration {
	return parseDuration(s.RefreshDebounce, 150*time.Millisecond)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

