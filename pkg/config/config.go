/*
Package config manages TOML config for the UniNav client core.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/uninav/navcore/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Suggest SuggestConfig `toml:"suggest"`
	History HistoryConfig `toml:"history"`
	Cache   CacheConfig   `toml:"cache"`
	Remote  RemoteConfig  `toml:"remote"`
}

// SuggestConfig has suggestion engine options.
type SuggestConfig struct {
	Enabled       bool `toml:"enabled"`
	MaxResults    int  `toml:"max_results"`
	MinCharacters int  `toml:"min_characters"`
	DebounceMS    int  `toml:"debounce_ms"`
}

// HistoryConfig holds search history options.
type HistoryConfig struct {
	MaxEntries int    `toml:"max_entries"`
	DataDir    string `toml:"data_dir"`
}

// CacheConfig holds query cache options.
type CacheConfig struct {
	Size int `toml:"size"`
}

// RemoteConfig holds backend API options. The URL and token can also come
// from the environment, which wins over the file.
type RemoteConfig struct {
	BaseURL string `toml:"base_url"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "navcore")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "navcore")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/navcore/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Suggest: SuggestConfig{
			Enabled:       true,
			MaxResults:    5,
			MinCharacters: 1,
			DebounceMS:    150,
		},
		History: HistoryConfig{
			MaxEntries: 50,
			DataDir:    "",
		},
		Cache: CacheConfig{
			Size: 512,
		},
		Remote: RemoteConfig{
			BaseURL: "https://api.uninav.app/v1",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if suggestSection, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		extractSuggestConfig(suggestSection, &config.Suggest)
	}
	if historySection, ok := utils.ExtractSection(tempConfig, "history"); ok {
		extractHistoryConfig(historySection, &config.History)
	}
	if cacheSection, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(cacheSection, &config.Cache)
	}
	if remoteSection, ok := utils.ExtractSection(tempConfig, "remote"); ok {
		extractRemoteConfig(remoteSection, &config.Remote)
	}
	return config, nil
}

// extractSuggestConfig extracts suggestion configuration from a map
func extractSuggestConfig(data map[string]any, suggest *SuggestConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		suggest.Enabled = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		suggest.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "min_characters"); ok {
		suggest.MinCharacters = val
	}
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		suggest.DebounceMS = val
	}
}

// extractHistoryConfig extracts history configuration from a map
func extractHistoryConfig(data map[string]any, history *HistoryConfig) {
	if val, ok := utils.ExtractInt64(data, "max_entries"); ok {
		history.MaxEntries = val
	}
	if val, ok := utils.ExtractString(data, "data_dir"); ok {
		history.DataDir = val
	}
}

// extractCacheConfig extracts cache config from a map
func extractCacheConfig(data map[string]any, cache *CacheConfig) {
	if val, ok := utils.ExtractInt64(data, "size"); ok {
		cache.Size = val
	}
}

// extractRemoteConfig extracts remote API config from a map
func extractRemoteConfig(data map[string]any, remote *RemoteConfig) {
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		remote.BaseURL = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the suggestion values and saves to file
func (c *Config) Update(configPath string, maxResults, minCharacters *int, enabled *bool) error {
	suggest := &c.Suggest
	if maxResults != nil {
		suggest.MaxResults = *maxResults
	}
	if minCharacters != nil {
		suggest.MinCharacters = *minCharacters
	}
	if enabled != nil {
		suggest.Enabled = *enabled
	}
	return SaveConfig(c, configPath)
}
