package config

import "fmt"

// ObserverConfig tunes the Observer agent's trigger thresholds.
type ObserverConfig struct {
	IdleTimeoutMinutes       float64 `json:"idle_timeout_minutes"`
	NearDeliveryProgress     float64 `json:"near_delivery_progress"`
	HighPriorityRatePerKm    float64 `json:"high_priority_rate_per_km"`
}

func (c *ObserverConfig) SetDefaults() {
	if c.IdleTimeoutMinutes == 0 {
		c.IdleTimeoutMinutes = 30
	}
	if c.NearDeliveryProgress == 0 {
		c.NearDeliveryProgress = 90
	}
	if c.HighPriorityRatePerKm == 0 {
		c.HighPriorityRatePerKm = 3.0
	}
}

func (c ObserverConfig) Validate() error {
	if c.IdleTimeoutMinutes <= 0 {
		return fmt.Errorf("observer: idle_timeout_minutes must be positive")
	}
	if c.NearDeliveryProgress <= 0 || c.NearDeliveryProgress > 100 {
		return fmt.Errorf("observer: near_delivery_progress must be in (0, 100]")
	}
	if c.HighPriorityRatePerKm <= 0 {
		return fmt.Errorf("observer: high_priority_rate_per_km must be positive")
	}
	return nil
}
