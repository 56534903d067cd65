package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll returns all non-secret config key/value pairs from the current config.
func ShowAll(cfg Config) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		if s.secret {
			continue
		}
		result = append(result, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return result
}

// SetKey writes a config key to the config file, creating it if needed.
func SetKey(key, value string) error {
	return setKeyAt(ConfigFilePath(), key, value)
}

func setKeyAt(path, key, value string) error {
	for _, s := range specs {
		if s.key != key {
			continue
		}
		if s.secret {
			return fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
		}

		var parsed any
		switch s.typ {
		case kString:
			parsed = value
		case kInt:
			i, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid integer value for %s: %w", key, err)
			}
			parsed = i
		case kBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean value for %s: %w", key, err)
			}
			parsed = b
		}
		return writeKey(path, key, parsed)
	}

	return fmt.Errorf("unknown config key: %q", key)
}

// writeKey rewrites the config file with the dotted key set. The file is a
// two-level TOML document: section.key.
func writeKey(path, dotted string, value any) error {
	doc := make(map[string]map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &doc); err != nil {
			return fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	section, key, ok := splitKey(dotted)
	if !ok {
		return fmt.Errorf("malformed config key: %q", dotted)
	}
	if doc[section] == nil {
		doc[section] = make(map[string]any)
	}
	doc[section][key] = value

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(doc)
}

func splitKey(dotted string) (section, key string, ok bool) {
	for i := range dotted {
		if dotted[i] == '.' {
			return dotted[:i], dotted[i+1:], i > 0 && i < len(dotted)-1
		}
	}
	return "", "", false
}

// ValidKeys returns the list of valid non-secret config key names.
func ValidKeys() []string {
	var keys []string
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}
