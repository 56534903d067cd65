// Package config loads service configuration from a TOML file with
// environment variable overrides. A .env file in the working directory is
// honored for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Perplexity PerplexityConfig `toml:"perplexity"`
	Storage    StorageConfig    `toml:"storage"`
	Log        LogConfig        `toml:"log"`
}

type ServerConfig struct {
	Port       int  `toml:"port"`
	MCPEnabled bool `toml:"mcp_enabled"`
}

type PerplexityConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:       4600,
			MCPEnabled: false,
		},
		Perplexity: PerplexityConfig{
			BaseURL: "https://api.perplexity.ai",
			Model:   "sonar-pro",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from $XDG_CONFIG_HOME/revu/config.toml, then
// applies REVU_* environment variable overrides. A missing config file is
// not an error: defaults apply. A missing API key is also not an error; the
// service runs with enrichment degraded to fallbacks until a key is set.
func Load() (Config, error) {
	godotenv.Load()
	return loadFromPath(ConfigFilePath())
}

func loadFromPath(path string) (Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	return cfg, nil
}

// ConfigFilePath returns the XDG path of the config file.
func ConfigFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "revu", "config.toml")
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "revu-data"
		}
	}
	return filepath.Join(dir, "revu")
}
