// Package config loads the optional stile.yaml project file that sits next
// to the flow directories. Flags always win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config declares project-level defaults for the CLI and server commands.
type Config struct {
	// Flow is the default flow name to run or serve.
	Flow string `mapstructure:"flow"`

	// Backend is the base URL of the signup backend.
	Backend string `mapstructure:"backend"`

	// Redis is the session store URL; empty means local files.
	Redis string `mapstructure:"redis"`

	// Store overrides the local session directory.
	Store string `mapstructure:"store"`

	// SessionTTL expires abandoned sessions (Redis store only),
	// e.g. "24h".
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

var fileNames = []string{"stile.yaml", "stile.yml"}

// Load reads the project config from dir. A missing file is not an error:
// it returns the zero config.
func Load(dir string) (Config, error) {
	var data []byte
	var err error

	for _, name := range fileNames {
		data, err = os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			break
		}
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read project config: %w", err)
		}
	}
	if err != nil {
		return Config{}, nil
	}

	// Unmarshal generically first: mapstructure handles the struct mapping
	// and gives us duration parsing via its decode hook.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse project config: %w", err)
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid project config: %w", err)
	}

	return cfg, nil
}
