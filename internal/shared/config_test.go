package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./watchlist.db" {
			t.Errorf("expected database path ./watchlist.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected server addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}

		if config.Credentials.SerpAPI.NumResults != 5 {
			t.Errorf("expected 5 search results, got %d", config.Credentials.SerpAPI.NumResults)
		}

		if config.HTTP.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %s", config.HTTP.Timeout())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("config file should exist: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/watchlist.db"

[server]
port = 8080

[credentials.tmdb]
access_token = "tmdb_token"

[credentials.anthropic]
api_key = "sk-test"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/watchlist.db" {
			t.Errorf("expected database path /custom/watchlist.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host to survive overlay, got %s", config.Server.Host)
		}
		if config.Credentials.TMDB.AccessToken != "tmdb_token" {
			t.Errorf("expected tmdb access token tmdb_token, got %s", config.Credentials.TMDB.AccessToken)
		}
		if config.Credentials.Anthropic.Model == "" {
			t.Error("expected default anthropic model to survive overlay")
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server]\nport = 70000\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv reads .env", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("SERPAPI_KEY", "")
		os.Unsetenv("SERPAPI_KEY")
		if err := os.WriteFile(".env", []byte("SERPAPI_KEY=from_dotenv\n"), 0600); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}

		config := DefaultConfig()
		if err := config.ApplyEnv(nil); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if config.Credentials.SerpAPI.APIKey != "from_dotenv" {
			t.Errorf("expected key from .env, got %q", config.Credentials.SerpAPI.APIKey)
		}
	})

	t.Run("ApplyEnv unreadable .env is logged", func(t *testing.T) {
		t.Chdir(t.TempDir())
		if err := os.Mkdir(".env", 0755); err != nil {
			t.Fatalf("failed to create .env directory: %v", err)
		}

		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.DebugLevel)

		if err := DefaultConfig().ApplyEnv(logger); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if !strings.Contains(buf.String(), "skipping .env file") {
			t.Errorf("expected debug log for unreadable .env, got %q", buf.String())
		}
	})

	t.Run("ApplyEnv missing .env is silent", func(t *testing.T) {
		t.Chdir(t.TempDir())

		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.DebugLevel)

		if err := DefaultConfig().ApplyEnv(logger); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no log output, got %q", buf.String())
		}
	})

	t.Run("ApplyEnv validates", func(t *testing.T) {
		t.Chdir(t.TempDir())
		config := DefaultConfig()
		config.Server.Port = 70000

		if err := config.ApplyEnv(nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("TMDB_API_KEY", "env_tmdb")
		t.Setenv("SERPAPI_KEY", "env_serp")
		t.Setenv("ANTHROPIC_API_KEY", "env_anthropic")
		t.Setenv("REEL_DB_PATH", "/tmp/env.db")

		config := DefaultConfig()
		if err := config.ApplyEnv(nil); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.Credentials.TMDB.APIKey != "env_tmdb" {
			t.Errorf("expected env tmdb key, got %s", config.Credentials.TMDB.APIKey)
		}
		if config.Credentials.SerpAPI.APIKey != "env_serp" {
			t.Errorf("expected env serpapi key, got %s", config.Credentials.SerpAPI.APIKey)
		}
		if config.Credentials.Anthropic.APIKey != "env_anthropic" {
			t.Errorf("expected env anthropic key, got %s", config.Credentials.Anthropic.APIKey)
		}
		if config.Database.Path != "/tmp/env.db" {
			t.Errorf("expected env database path, got %s", config.Database.Path)
		}
	})
}
