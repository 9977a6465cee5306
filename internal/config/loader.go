package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/commvault-mcp-server"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns the default configuration directory,
// $HOME/.config/commvault-mcp-server.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads the configuration from configPath/config.yaml, layered
// over the built-in defaults and overridden by environment variables. A
// missing file is not an error; malformed YAML is.
func LoadConfig(configPath string) (Config, error) {
	cfg := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides on top of the
// file-based configuration. The variable names match the ones used by the
// setup wizard and the deployment documentation.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CC_SERVER_URL"); v != "" {
		cfg.CommCell.ServerURL = v
	}
	if v := os.Getenv("SSL_VERIFY"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			logging.Warn("ConfigLoader", "Ignoring invalid SSL_VERIFY value %q", v)
		} else {
			cfg.CommCell.SSLVerify = parsed
		}
	}
	if v := os.Getenv("MCP_TRANSPORT_MODE"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("MCP_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MCP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			logging.Warn("ConfigLoader", "Ignoring invalid MCP_PORT value %q", v)
		} else {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MCP_PATH"); v != "" {
		cfg.Server.Path = v
	}
	if v := os.Getenv("TRUSTED_PROXY_IPS"); v != "" {
		cfg.Auth.TrustedProxyIPs = v
	}
}

// WriteConfig persists cfg to configPath/config.yaml, creating the directory
// if needed. Used by the setup wizard; the server itself never writes
// configuration.
func WriteConfig(configPath string, cfg Config) error {
	if err := os.MkdirAll(configPath, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configPath, err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("could not marshal configuration: %w", err)
	}
	configFilePath := filepath.Join(configPath, configFileName)
	if err := os.WriteFile(configFilePath, data, 0o600); err != nil {
		return fmt.Errorf("could not write %s: %w", configFilePath, err)
	}
	return nil
}
