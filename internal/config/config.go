// Package config manages the per-user Adapter Studio configuration.
//
// The toolkit location lives in ~/.adapter-studio/config.json, a flat JSON
// object. Optional defaults live alongside it in settings.toml.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirName    = ".adapter-studio"
	fileName   = "config.json"
	tmpPattern = "config-*.json.tmp"

	// KeyToolkitPath is the config key holding the toolkit location.
	KeyToolkitPath = "toolkit_path"
)

// Dir returns the config directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Path returns the config file path, creating the directory if needed.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config file. A missing file yields an empty mapping.
// A corrupt file is deleted and likewise treated as absent, so a bad
// write never wedges the tool.
func Load() (map[string]string, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := map[string]string{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		_ = os.Remove(path)
		return map[string]string{}, nil
	}
	return cfg, nil
}

// Save writes the config atomically: a temp file in the same directory is
// renamed over the old one, so a crash mid-write leaves the previous
// config intact.
func Save(cfg map[string]string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp config: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, fileName)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// ToolkitPath returns the configured toolkit path. The boolean is false
// when no toolkit has been configured yet.
func ToolkitPath() (string, bool) {
	cfg, err := Load()
	if err != nil {
		return "", false
	}
	path := cfg[KeyToolkitPath]
	return path, path != ""
}

// SetToolkitPath normalizes and persists the toolkit path.
func SetToolkitPath(path string) error {
	normalized, err := NormalizePath(path)
	if err != nil {
		return err
	}

	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg[KeyToolkitPath] = normalized
	return Save(cfg)
}

// NormalizePath expands a leading ~ and resolves the path to absolute.
func NormalizePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return filepath.Clean(abs), nil
}
