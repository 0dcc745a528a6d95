// Package config provides configuration file parsing and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hcf/internal/domain"
)

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ParseConfigPath validates an explicit config file path. The path must be
// absolute, free of ".." components, and name an existing .yaml or .yml file.
func ParseConfigPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("config path cannot be empty")
	}
	path = ExpandHome(path)

	if !filepath.IsAbs(path) {
		return "", errors.New("config path must be absolute")
	}
	if strings.Contains(path, "..") {
		return "", errors.New("config path contains invalid traversal")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("config file does not exist")
		}
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("config path is a directory, not a file")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return "", errors.New("config file must have .yaml or .yml extension")
	}

	return filepath.Clean(path), nil
}

// ValidateGameDir checks that path names an existing directory and returns
// it absolute and cleaned.
func ValidateGameDir(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", domain.ErrGameDirNotSet
	}

	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("resolving game path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: game path %s does not exist", domain.ErrInvalidConfig, abs)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: game path %s is not a directory", domain.ErrInvalidConfig, abs)
	}
	return abs, nil
}
