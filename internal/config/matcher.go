package config

import "fmt"

// MatcherConfig tunes the Matcher agent's enumeration, advisor call, and
// fallback behavior.
type MatcherConfig struct {
	TopK             int     `json:"top_k"`
	FallbackFanout   int     `json:"fallback_fanout"`
	ProfitMarginMin  float64 `json:"profit_margin_min"`
	UtilizationMin   float64 `json:"utilization_min"`
	AssumedSpeedKmh  float64 `json:"assumed_speed_kmh"`
	FuelCostPerKm    float64 `json:"fuel_cost_per_km"`
	DriverCostPerHr  float64 `json:"driver_cost_per_hour"`
	AdvisorTimeoutS  int     `json:"advisor_timeout_s"`
}

func (c *MatcherConfig) SetDefaults() {
	if c.TopK == 0 {
		c.TopK = 10
	}
	if c.FallbackFanout == 0 {
		c.FallbackFanout = 3
	}
	if c.ProfitMarginMin == 0 {
		c.ProfitMarginMin = 0.12
	}
	if c.UtilizationMin == 0 {
		c.UtilizationMin = 0.85
	}
	if c.AssumedSpeedKmh == 0 {
		c.AssumedSpeedKmh = 60
	}
	if c.FuelCostPerKm == 0 {
		c.FuelCostPerKm = 0.35
	}
	if c.DriverCostPerHr == 0 {
		c.DriverCostPerHr = 25
	}
	if c.AdvisorTimeoutS == 0 {
		c.AdvisorTimeoutS = 15
	}
}

func (c MatcherConfig) Validate() error {
	if c.TopK <= 0 || c.FallbackFanout <= 0 {
		return fmt.Errorf("matcher: top_k and fallback_fanout must be positive")
	}
	if c.ProfitMarginMin < 0 || c.UtilizationMin < 0 || c.UtilizationMin > 1 {
		return fmt.Errorf("matcher: margin/utilization thresholds out of range")
	}
	return nil
}
