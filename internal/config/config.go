// Package config loads, validates, and persists the application
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dupesweep/dupesweep/pkg/utils"
)

// Config represents the application configuration
type Config struct {
	// IndexPath is where the hash index database lives. A leading ~ is
	// expanded to the user's home directory.
	IndexPath string `yaml:"index_path"`

	Scan   ScanConfig   `yaml:"scan"`
	Output OutputConfig `yaml:"output"`

	DryRun  bool `yaml:"dry_run"`
	Verbose bool `yaml:"verbose"`
}

// ScanConfig holds default scan behavior
type ScanConfig struct {
	ExcludeFolders []string `yaml:"exclude_folders"`
	FileTypes      []string `yaml:"file_types"`
	MinFileSize    string   `yaml:"min_file_size"` // e.g., "1KB"
	ScanSubfolders bool     `yaml:"scan_subfolders"`
	IncludeHidden  bool     `yaml:"include_hidden"`
	IncludeDirs    bool     `yaml:"include_dirs"`

	// FlushEvery persists the index after this many hashed items.
	FlushEvery int `yaml:"flush_every"`
}

// OutputConfig holds default result presentation
type OutputConfig struct {
	SortBy    string `yaml:"sort_by"`    // size, name, date, path
	Reverse   bool   `yaml:"reverse"`
	GroupSort string `yaml:"group_sort"` // group_size, count, hash
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.IndexPath == "" {
		return fmt.Errorf("index_path must not be empty")
	}

	if c.Scan.MinFileSize != "" {
		if _, err := utils.ParseSize(c.Scan.MinFileSize); err != nil {
			return fmt.Errorf("invalid min_file_size %q: %w", c.Scan.MinFileSize, err)
		}
	}

	if c.Scan.FlushEvery < 0 {
		return fmt.Errorf("flush_every must be >= 0")
	}

	switch c.Output.SortBy {
	case "", "size", "name", "date", "path":
	default:
		return fmt.Errorf("sort_by must be one of size, name, date, path")
	}

	switch c.Output.GroupSort {
	case "", "group_size", "count", "hash":
	default:
		return fmt.Errorf("group_sort must be one of group_size, count, hash")
	}

	return nil
}

// MinSizeBytes returns the configured minimum file size in bytes.
func (c *Config) MinSizeBytes() int64 {
	if c.Scan.MinFileSize == "" {
		return 0
	}
	n, err := utils.ParseSize(c.Scan.MinFileSize)
	if err != nil {
		return 0
	}
	return n
}

// ResolvedIndexPath returns the index path with ~ expanded.
func (c *Config) ResolvedIndexPath() string {
	return ExpandTilde(c.IndexPath)
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "dupesweep")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
