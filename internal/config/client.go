package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Client is the command line configuration stored as config.toml.
type Client struct {
	APIURL    string `toml:"api_url"`
	StatePath string `toml:"state_path,omitempty"`
	Timezone  string `toml:"timezone,omitempty"`
}

func DefaultClient() Client {
	return Client{
		APIURL:    "http://localhost:8080",
		StatePath: filepath.Join(Dir(), "state.db"),
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kpitracker")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kpitracker")
}

func ClientPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadClient reads path, returning defaults if it doesn't exist.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultClient().StatePath
	}
	return cfg, nil
}

func SaveClient(path string, cfg Client) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
