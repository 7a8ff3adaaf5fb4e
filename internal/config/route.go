package config

import "fmt"

// RouteConfig tunes the Route Cache and its external client.
type RouteConfig struct {
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key"`
	TimeoutS  int    `json:"timeout_s"`
	CacheSize int    `json:"cache_size"`
	CacheTTLS int    `json:"cache_ttl_s"`
}

func (c *RouteConfig) SetDefaults() {
	if c.TimeoutS == 0 {
		c.TimeoutS = 15
	}
	if c.CacheSize == 0 {
		c.CacheSize = 1024
	}
	if c.CacheTTLS == 0 {
		c.CacheTTLS = 3600
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openrouteservice.org"
	}
}

func (c RouteConfig) Validate() error {
	if c.TimeoutS <= 0 {
		return fmt.Errorf("route: timeout_s must be positive")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("route: cache_size must be positive")
	}
	if c.CacheTTLS <= 0 {
		return fmt.Errorf("route: cache_ttl_s must be positive")
	}
	return nil
}
