package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	HTTP        HTTPConfig        `toml:"http"`
}

// CredentialsConfig contains provider-specific credentials.
type CredentialsConfig struct {
	TMDB      TMDBConfig      `toml:"tmdb"`
	SerpAPI   SerpAPIConfig   `toml:"serpapi"`
	Anthropic AnthropicConfig `toml:"anthropic"`
}

// TMDBConfig contains metadata provider credentials.
//
// AccessToken (v4 read access token) takes precedence over APIKey (v3 key).
type TMDBConfig struct {
	APIKey       string `toml:"api_key"`
	AccessToken  string `toml:"access_token"`
	BaseURL      string `toml:"base_url" validate:"omitempty,url"`
	ImageBaseURL string `toml:"image_base_url" validate:"omitempty,url"`
}

// SerpAPIConfig contains web search provider credentials.
type SerpAPIConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url" validate:"omitempty,url"`
	NumResults int    `toml:"num_results" validate:"gte=0,lte=100"`
}

// AnthropicConfig contains language model provider credentials.
type AnthropicConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
	Model   string `toml:"model"`
	Version string `toml:"version"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string `toml:"host"`
	Port               int    `toml:"port" validate:"gte=0,lte=65535"`
	SessionIdleMinutes int    `toml:"session_idle_minutes" validate:"gte=0"`
}

// SessionIdle returns how long an unused API session is kept. Zero keeps sessions until logout.
func (s ServerConfig) SessionIdle() time.Duration {
	return time.Duration(s.SessionIdleMinutes) * time.Minute
}

// HTTPConfig contains settings shared by all outbound provider clients.
type HTTPConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds" validate:"gte=0"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"`
}

// Timeout returns the configured client timeout. Zero means no timeout.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides credentials and the database path with environment variables, then
// validates the result.
//
// A .env file in the working directory is loaded first if present; variables already
// set in the process environment win over the file. An unreadable or malformed .env is
// skipped and reported on logger at debug level.
func (c *Config) ApplyEnv(logger *log.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) && logger != nil {
		logger.Debug("skipping .env file", "error", err)
	}

	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	override(&c.Credentials.TMDB.APIKey, "TMDB_API_KEY")
	override(&c.Credentials.TMDB.AccessToken, "TMDB_ACCESS_TOKEN")
	override(&c.Credentials.SerpAPI.APIKey, "SERPAPI_KEY")
	override(&c.Credentials.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	override(&c.Database.Path, "REEL_DB_PATH")

	return c.Validate()
}
