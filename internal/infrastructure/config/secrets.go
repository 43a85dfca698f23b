package config

import (
	"fmt"
	"os"
	"strings"
)

// loadSecretFiles fills API keys from *_file settings (docker secrets or a
// plain key file) when the key itself is not set.
func (c *Config) loadSecretFiles() error {
	secrets := []struct {
		name  string
		value *string
		file  string
	}{
		{"ai.api_key", &c.AI.APIKey, c.AI.APIKeyFile},
		{"provider.api_key", &c.Provider.APIKey, c.Provider.APIKeyFile},
	}

	for _, s := range secrets {
		if *s.value != "" || s.file == "" {
			continue
		}
		data, err := os.ReadFile(s.file)
		if err != nil {
			return fmt.Errorf("failed to read %s file: %w", s.name, err)
		}
		*s.value = strings.TrimSpace(string(data))
	}
	return nil
}

// Redacted returns a copy of the configuration safe to log
func (c Config) Redacted() Config {
	c.AI.APIKey = redact(c.AI.APIKey)
	c.Provider.APIKey = redact(c.Provider.APIKey)
	return c
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
