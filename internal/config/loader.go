package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override the file,
// e.g. LPLOCKD_JOURNAL_DRIVER for journal.driver.
const EnvPrefix = "LPLOCKD"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (lplockd.toml), when path is not empty
// 3. Environment variables (LPLOCKD_ prefix)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load the configuration file
	if path != "" {
		if err := loadMainConfig(v, path); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	// 3. Set up environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	// 5. Validate the complete configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadDefaultConfig loads DefaultConfigPath if it exists, and defaults plus
// environment otherwise.
func LoadDefaultConfig() (*Config, error) {
	if _, err := os.Stat(DefaultConfigPath); errors.Is(err, os.ErrNotExist) {
		return LoadConfig("")
	}
	return LoadConfig(DefaultConfigPath)
}

// loadMainConfig loads the main configuration file
func loadMainConfig(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return nil
}

// SaveExampleConfig writes a configuration file holding every default.
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)
	for key, value := range exampleOverrides() {
		v.Set(key, value)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}

// exampleOverrides are the values an example file shows instead of the
// built-in defaults.
func exampleOverrides() map[string]interface{} {
	return map[string]interface{}{
		"database.path": "/var/lib/lplockd/state",
		"journal.path":  "/var/lib/lplockd/journal.db",
		"log.format":    "json",
	}
}
