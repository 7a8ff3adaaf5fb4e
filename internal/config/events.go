package config

import "fmt"

// EventsConfig bounds the store's event ring.
type EventsConfig struct {
	RingSize int `json:"ring_size"`
}

func (c *EventsConfig) SetDefaults() {
	if c.RingSize == 0 {
		c.RingSize = 500
	}
}

func (c EventsConfig) Validate() error {
	if c.RingSize <= 0 {
		return fmt.Errorf("events: ring_size must be positive")
	}
	return nil
}
