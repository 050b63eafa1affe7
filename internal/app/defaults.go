package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix scopes the environment overrides: FOODLOG_CONFIG_PATH, FOODLOG_HOME, FOODLOG_ADDR.
const envPrefix = "FOODLOG"

// environment holds the optional overrides read from the process environment.
type environment struct {
	ConfigPath string `split_words:"true"`
	Home       string
	Addr       string
}

// GetDefaults returns application default paths, checking environment variables first.
//   - FOODLOG_CONFIG_PATH: config file location (default: ~/.config/foodlog.toml)
//   - FOODLOG_HOME: base directory for foodlog data (default: ~/.local/share/foodlog)
//   - FOODLOG_ADDR: listen address for `foodlog serve` (default: from config)
func GetDefaults() (map[string]string, error) {
	var env environment
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil && (env.ConfigPath == "" || env.Home == "") {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := env.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "foodlog.toml")
	}
	baseDir := env.Home
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "foodlog")
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"addr":        env.Addr,
	}, nil
}
