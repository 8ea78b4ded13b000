package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for a sync run
type Config struct {
	// Record store connection
	Airtable AirtableConfig `yaml:"airtable" json:"airtable"`

	// Target profile
	TikTok TikTokConfig `yaml:"tiktok" json:"tiktok"`

	// Headless browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Media download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AirtableConfig holds record store configuration. RequestTimeout bounds each
// API call including the media upload; 0 disables it.
type AirtableConfig struct {
	APIKey         string        `yaml:"api_key" json:"-"`
	BaseID         string        `yaml:"base_id" json:"base_id"`
	TableName      string        `yaml:"table_name" json:"table_name"`
	APIURL         string        `yaml:"api_url" json:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// TikTokConfig holds the monitored profile and site settings
type TikTokConfig struct {
	Username  string `yaml:"username" json:"username"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// BrowserConfig holds headless browser configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	BinPath           string        `yaml:"bin_path" json:"bin_path"`
	IdleInterval      time.Duration `yaml:"idle_interval" json:"idle_interval"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
}

// DownloadConfig holds media download configuration. A zero Timeout leaves
// the media fetch unbounded.
type DownloadConfig struct {
	ScratchPath string        `yaml:"scratch_path" json:"scratch_path"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Quiet reports whether the level hides warnings, in which case the terminal
// only prints errors as well.
func (l *LoggingConfig) Quiet() bool {
	switch strings.ToLower(l.Level) {
	case "error", "fatal", "panic", "disabled":
		return true
	}
	return false
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Airtable: AirtableConfig{
			APIURL: "https://api.airtable.com/v0",
		},
		TikTok: TikTokConfig{
			BaseURL:   "https://www.tiktok.com",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Browser: BrowserConfig{
			Headless:          true,
			IdleInterval:      500 * time.Millisecond,
			NavigationTimeout: 30 * time.Second,
		},
		Download: DownloadConfig{
			ScratchPath: "./latest_tiktok.mp4",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("AIRTABLE_API_KEY"); apiKey != "" {
		c.Airtable.APIKey = apiKey
	}
	if baseID := os.Getenv("AIRTABLE_BASE_ID"); baseID != "" {
		c.Airtable.BaseID = baseID
	}
	if table := os.Getenv("AIRTABLE_TABLE_NAME"); table != "" {
		c.Airtable.TableName = table
	}
	if apiURL := os.Getenv("AIRTABLE_API_URL"); apiURL != "" {
		c.Airtable.APIURL = apiURL
	}

	if username := os.Getenv("TIKTOK_USERNAME"); username != "" {
		c.TikTok.Username = username
	}

	if bin := os.Getenv("TIKTOKSYNC_BROWSER_BIN"); bin != "" {
		c.Browser.BinPath = bin
	}
	if headless := os.Getenv("TIKTOKSYNC_HEADLESS"); headless != "" {
		val, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid TIKTOKSYNC_HEADLESS value %q: %w", headless, err)
		}
		c.Browser.Headless = val
	}

	if scratch := os.Getenv("TIKTOKSYNC_SCRATCH_PATH"); scratch != "" {
		c.Download.ScratchPath = scratch
	}

	if logLevel := os.Getenv("TIKTOKSYNC_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("TIKTOKSYNC_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".tiktoksync.yaml",
		".tiktoksync.yml",
		filepath.Join(home, ".config", "tiktoksync", "config.yaml"),
		filepath.Join(home, ".config", "tiktoksync", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Normalize trims user-supplied values into their canonical form
func (c *Config) Normalize() {
	c.TikTok.Username = SanitizeUsername(c.TikTok.Username)
	c.TikTok.BaseURL = strings.TrimRight(c.TikTok.BaseURL, "/")
	c.Airtable.APIURL = strings.TrimRight(c.Airtable.APIURL, "/")
}

// Validate checks if the configuration is valid. The API key is not checked
// here because it may still be resolved from the system keyring.
func (c *Config) Validate() error {
	var errs []error

	if c.Airtable.BaseID == "" {
		errs = append(errs, errors.New("airtable base id is required (AIRTABLE_BASE_ID)"))
	}
	if c.Airtable.TableName == "" {
		errs = append(errs, errors.New("airtable table name is required (AIRTABLE_TABLE_NAME)"))
	}
	if c.Airtable.APIURL == "" {
		errs = append(errs, errors.New("airtable api url is required"))
	}
	if c.Airtable.RequestTimeout < 0 {
		errs = append(errs, errors.New("airtable request timeout cannot be negative"))
	}

	if c.TikTok.Username == "" {
		errs = append(errs, errors.New("tiktok username is required (TIKTOK_USERNAME)"))
	} else if !IsValidUsername(c.TikTok.Username) {
		errs = append(errs, fmt.Errorf("invalid tiktok username %q", c.TikTok.Username))
	}
	if c.TikTok.BaseURL == "" {
		errs = append(errs, errors.New("tiktok base url is required"))
	}

	if c.Browser.IdleInterval <= 0 {
		errs = append(errs, errors.New("browser idle interval must be positive"))
	}
	if c.Browser.NavigationTimeout < 0 {
		errs = append(errs, errors.New("browser navigation timeout cannot be negative"))
	}

	if c.Download.ScratchPath == "" {
		errs = append(errs, errors.New("download scratch path is required"))
	}
	if c.Download.Timeout < 0 {
		errs = append(errs, errors.New("download timeout cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, "@")
	return strings.TrimRight(username, "/ ")
}

// IsValidUsername checks a profile handle: letters, digits, periods and
// underscores, at most 24 characters
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 24 {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tiktoksync.env"))

	if configPath == "" {
		configPath = os.Getenv("TIKTOKSYNC_CONFIG")
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.Normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
