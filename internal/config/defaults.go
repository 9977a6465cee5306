package config

// GetDefaultConfig returns the built-in default configuration. Values here
// are overridden by config.yaml and then by environment variables.
func GetDefaultConfig() Config {
	return Config{
		CommCell: CommCellConfig{
			SSLVerify: true,
		},
		Server: ServerConfig{
			Transport: TransportStreamableHTTP,
			Host:      "localhost",
			Port:      8000,
			Path:      "/mcp",
		},
	}
}
