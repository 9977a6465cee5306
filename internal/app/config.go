package app

// Config holds the command-line level application configuration.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool

	// ConfigPath overrides the default config file location when set.
	ConfigPath string

	// Version is the build version reported to MCP clients.
	Version string
}

// NewConfig creates a new application configuration.
func NewConfig(debug bool, configPath, version string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		Version:    version,
	}
}
