package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - PHOTOFIND_CONFIG_PATH: config file location (default: ~/.config/photofind.toml)
//   - PHOTOFIND_HOME: base directory for photofind data (default: ~/.local/share/photofind)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking PHOTOFIND_CONFIG_PATH
// env var first, then falling back to the default ~/.config/photofind.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("PHOTOFIND_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "photofind.toml"), nil
}

// getBaseDir returns the base directory for photofind data, checking
// PHOTOFIND_HOME env var first, then the XDG default ~/.local/share/photofind.
func getBaseDir() (string, error) {
	if path := os.Getenv("PHOTOFIND_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "photofind"), nil
}
