//go:build !tinygo

package config

import "encoding/json"

// LoadConfig parses a JSON board description and fills in defaults.
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var cfg BoardConfig

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}
