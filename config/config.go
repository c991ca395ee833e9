package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/candlewaker/notify"
)

// Config is the complete application configuration.
type Config struct {
	DataDir   string          `json:"data_dir" yaml:"data_dir"`
	DBPath    string          `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	ImagesDir string          `json:"images_dir,omitempty" yaml:"images_dir,omitempty"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Notify    notify.Settings `json:"notify" yaml:"notify"`
	API       APIConfig       `json:"api" yaml:"api"`
	Countdown CountdownConfig `json:"countdown" yaml:"countdown"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// APIConfig controls the local HTTP API started by `serve`.
type APIConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

type CountdownConfig struct {
	UrgentSeconds int `json:"urgent_seconds" yaml:"urgent_seconds"`
}

// Environment variables that override file values.
const (
	EnvDataDir  = "CANDLEWAKER_DATA_DIR"
	EnvDB       = "CANDLEWAKER_DB"
	EnvLogLevel = "CANDLEWAKER_LOG_LEVEL"
	EnvAPIAddr  = "CANDLEWAKER_API_ADDR"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Notify: notify.DefaultSettings(),
		API: APIConfig{
			Addr: "127.0.0.1:8765",
		},
		Countdown: CountdownConfig{
			UrgentSeconds: 10,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "candlewaker")
	}
	return "./data"
}

// Load builds the configuration: defaults, then an optional .env file, then
// the config file at path (skipped when empty), then environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
// on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, c); err != nil {
		if jerr := json.Unmarshal(data, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvAPIAddr); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("CANDLEWAKER_URGENT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Countdown.UrgentSeconds = n
		}
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if err := c.Notify.Validate(); err != nil {
		return err
	}
	if c.API.Addr == "" {
		return fmt.Errorf("api.addr is required")
	}
	if c.Countdown.UrgentSeconds < 0 {
		return fmt.Errorf("countdown.urgent_seconds must not be negative")
	}
	return nil
}

// Database returns the SQLite path, defaulting to candlewaker.sqlite in DataDir.
func (c *Config) Database() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "candlewaker.sqlite")
}

// Images returns the screenshot directory, defaulting to trade_images/ in DataDir.
func (c *Config) Images() string {
	if c.ImagesDir != "" {
		return c.ImagesDir
	}
	return filepath.Join(c.DataDir, "trade_images")
}
