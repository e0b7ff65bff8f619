// Package config handles savepoint engine configuration: the author
// identity recorded on checkpoints, the base data directory, and logging.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents savepoint configuration
type Config struct {
	User UserConfig `json:"user"`
	Core CoreConfig `json:"core"`
}

// UserConfig holds the identity recorded on checkpoints
type UserConfig struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CoreConfig holds core engine settings
type CoreConfig struct {
	DataDir string `json:"data_dir,omitempty"`
	Debug   bool   `json:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		User: UserConfig{
			Name:  "savepoint",
			Email: "savepoint@localhost",
		},
		Core: CoreConfig{
			DataDir: "",
			Debug:   false,
		},
	}
}

// Author formats the checkpoint author line.
func (c *Config) Author() string {
	name := c.User.Name
	if name == "" {
		name = "savepoint"
	}
	email := c.User.Email
	if email == "" {
		email = "savepoint@localhost"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// DataDir resolves the base data directory: config value, then the
// SAVEPOINT_DATA_DIR environment variable, then ~/.savepoint.
func (c *Config) DataDir() (string, error) {
	if c.Core.DataDir != "" {
		return c.Core.DataDir, nil
	}
	if dir := os.Getenv("SAVEPOINT_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".savepoint"), nil
}

// globalConfigPath returns the path to the global config file
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".savepointconfig"), nil
}

// LoadConfig loads configuration from the global config file, falling back
// to defaults when the file is absent or unreadable. SAVEPOINT_DEBUG=1
// overrides the debug flag.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	globalPath, err := globalConfigPath()
	if err == nil {
		if data, err := os.ReadFile(globalPath); err == nil {
			var fileCfg Config
			if err := json.Unmarshal(data, &fileCfg); err == nil {
				mergeConfig(cfg, &fileCfg)
			}
		}
	}

	if os.Getenv("SAVEPOINT_DEBUG") == "1" {
		cfg.Core.Debug = true
	}

	return cfg, nil
}

// SaveGlobalConfig saves configuration to the global config file
func SaveGlobalConfig(cfg *Config) error {
	globalPath, err := globalConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(globalPath, data, 0644)
}

// mergeConfig overlays non-empty values of src onto dst
func mergeConfig(dst, src *Config) {
	if src.User.Name != "" {
		dst.User.Name = src.User.Name
	}
	if src.User.Email != "" {
		dst.User.Email = src.User.Email
	}
	if src.Core.DataDir != "" {
		dst.Core.DataDir = src.Core.DataDir
	}
	if src.Core.Debug {
		dst.Core.Debug = true
	}
}
