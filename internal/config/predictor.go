package config

import "fmt"

// PredictorConfig tunes the pure ETA/advisory calculation.
type PredictorConfig struct {
	FuelLowThresholdPercent  float64 `json:"fuel_low_threshold_percent"`
	TrafficDelayDivisorMins  float64 `json:"traffic_delay_divisor_minutes"`
}

func (c *PredictorConfig) SetDefaults() {
	if c.FuelLowThresholdPercent == 0 {
		c.FuelLowThresholdPercent = 10
	}
	if c.TrafficDelayDivisorMins == 0 {
		c.TrafficDelayDivisorMins = 60
	}
}

func (c PredictorConfig) Validate() error {
	if c.FuelLowThresholdPercent < 0 || c.FuelLowThresholdPercent > 100 {
		return fmt.Errorf("predictor: fuel_low_threshold_percent must be in [0, 100]")
	}
	if c.TrafficDelayDivisorMins <= 0 {
		return fmt.Errorf("predictor: traffic_delay_divisor_minutes must be positive")
	}
	return nil
}
