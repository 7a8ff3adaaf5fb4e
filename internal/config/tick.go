package config

import (
	"fmt"
	"time"
)

// TickConfig carries the Dispatch Loop's four independent cadences.
type TickConfig struct {
	MotionPeriodS   int `json:"period_motion_s"`
	ObserverPeriodS int `json:"period_observer_s"`
	MatcherPeriodS  int `json:"period_matcher_s"`
	AdapterPeriodS  int `json:"period_adapter_s"`
}

func (c *TickConfig) SetDefaults() {
	if c.MotionPeriodS == 0 {
		c.MotionPeriodS = 3
	}
	if c.ObserverPeriodS == 0 {
		c.ObserverPeriodS = 10
	}
	if c.MatcherPeriodS == 0 {
		c.MatcherPeriodS = 30
	}
	if c.AdapterPeriodS == 0 {
		c.AdapterPeriodS = 30
	}
}

func (c TickConfig) Validate() error {
	if c.MotionPeriodS <= 0 || c.ObserverPeriodS <= 0 || c.MatcherPeriodS <= 0 || c.AdapterPeriodS <= 0 {
		return fmt.Errorf("tick: all periods must be positive")
	}
	return nil
}

func (c TickConfig) Motion() time.Duration   { return time.Duration(c.MotionPeriodS) * time.Second }
func (c TickConfig) Observer() time.Duration { return time.Duration(c.ObserverPeriodS) * time.Second }
func (c TickConfig) Matcher() time.Duration  { return time.Duration(c.MatcherPeriodS) * time.Second }
func (c TickConfig) Adapter() time.Duration  { return time.Duration(c.AdapterPeriodS) * time.Second }
