package config

import "fmt"

// AdapterConfig tunes the Adapter agent's opportunity search and fallback
// decision rule.
type AdapterConfig struct {
	DetourBudgetKm     float64 `json:"detour_budget_km"`
	OpportunitiesTopM  int     `json:"opportunities_top_m"`
	FollowupDelayMinMin float64 `json:"followup_delay_min"`
	FollowupMarginMin  float64 `json:"followup_margin_min"`
	AdvisorTimeoutS    int     `json:"advisor_timeout_s"`
}

func (c *AdapterConfig) SetDefaults() {
	if c.DetourBudgetKm == 0 {
		c.DetourBudgetKm = 100
	}
	if c.OpportunitiesTopM == 0 {
		c.OpportunitiesTopM = 5
	}
	if c.FollowupDelayMinMin == 0 {
		c.FollowupDelayMinMin = 60
	}
	if c.FollowupMarginMin == 0 {
		c.FollowupMarginMin = 0.20
	}
	if c.AdvisorTimeoutS == 0 {
		c.AdvisorTimeoutS = 20
	}
}

func (c AdapterConfig) Validate() error {
	if c.DetourBudgetKm <= 0 || c.OpportunitiesTopM <= 0 {
		return fmt.Errorf("adapter: detour_budget_km and opportunities_top_m must be positive")
	}
	return nil
}
