package config

import "fmt"

// AdvisorConfig tunes the external language-model advisor client.
type AdvisorConfig struct {
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	TimeoutS int    `json:"timeout_s"`
}

func (c *AdvisorConfig) SetDefaults() {
	if c.TimeoutS == 0 {
		c.TimeoutS = 20
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
}

func (c AdvisorConfig) Validate() error {
	if c.TimeoutS <= 0 {
		return fmt.Errorf("advisor: timeout_s must be positive")
	}
	return nil
}
