package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	// fallbackEnv is consulted when env is unset. Used for credential
	// variables with an established name outside the REVU_ prefix.
	fallbackEnv string
	secret      bool
	apply       func(cfg *Config, v any)
	extract     func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "REVU_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.mcp_enabled", typ: kBool, env: "REVU_SERVER_MCP_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPEnabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Server.MCPEnabled },
	},
	{
		key: "perplexity.api_key", typ: kString, env: "REVU_PERPLEXITY_API_KEY",
		fallbackEnv: "PERPLEXITY_API_KEY",
		secret:      true,
		apply:   func(cfg *Config, v any) { cfg.Perplexity.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Perplexity.APIKey },
	},
	{
		key: "perplexity.base_url", typ: kString, env: "REVU_PERPLEXITY_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Perplexity.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Perplexity.BaseURL },
	},
	{
		key: "perplexity.model", typ: kString, env: "REVU_PERPLEXITY_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Perplexity.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Perplexity.Model },
	},
	{
		key: "storage.data_dir", typ: kString, env: "REVU_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "REVU_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" && s.fallbackEnv != "" {
			raw = os.Getenv(s.fallbackEnv)
		}
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
