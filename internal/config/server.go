package config

import "fmt"

// ServerConfig controls the HTTP boundary.
type ServerConfig struct {
	Port string `json:"port"`
	// Hub is the default depot label used by /initialize and by vehicles
	// that have no explicit home depot.
	Hub string `json:"hub"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Hub == "" {
		c.Hub = "Phoenix Distribution Hub"
	}
}

func (c ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server: port is required")
	}
	return nil
}
