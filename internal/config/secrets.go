package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type secrets struct {
	AdminToken string `json:"admin_token"`
}

// AdminToken returns the bearer token protecting the admin API, generating
// and persisting one under the data dir on first use.
func AdminToken(dataDir string) (string, error) {
	path := filepath.Join(dataDir, "secrets.json")

	data, err := os.ReadFile(path)
	if err == nil {
		var s secrets
		if err := json.Unmarshal(data, &s); err != nil {
			return "", fmt.Errorf("parsing secrets file %s: %w", path, err)
		}
		if s.AdminToken != "" {
			return s.AdminToken, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading secrets file %s: %w", path, err)
	}

	s := secrets{AdminToken: uuid.New().String()}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", fmt.Errorf("writing secrets file: %w", err)
	}
	return s.AdminToken, nil
}
