// Package config loads the engine's single Config struct once at startup,
// via github.com/knadh/koanf/v2, mirroring the section-based
// SetDefaults/Validate discipline used throughout this codebase's sibling
// services.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the engine's full configuration surface. Every tunable named in
// the external interfaces has a home in one of these sections.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Server  ServerConfig  `json:"server"`
	Tick    TickConfig    `json:"tick"`
	Motion  MotionConfig  `json:"motion"`
	Matcher MatcherConfig `json:"matcher"`
	Adapter AdapterConfig `json:"adapter"`
	Route   RouteConfig   `json:"route"`
	Advisor AdvisorConfig `json:"advisor"`
	Events  EventsConfig  `json:"events"`
	Predictor PredictorConfig `json:"predictor"`
	Observer  ObserverConfig  `json:"observer"`
}

// Default returns a Config with every section's defaults applied and no
// file or environment overrides.
func Default() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults applies sane defaults to every section.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Server.SetDefaults()
	c.Tick.SetDefaults()
	c.Motion.SetDefaults()
	c.Matcher.SetDefaults()
	c.Adapter.SetDefaults()
	c.Route.SetDefaults()
	c.Advisor.SetDefaults()
	c.Events.SetDefaults()
	c.Predictor.SetDefaults()
	c.Observer.SetDefaults()
}

// Validate runs every section's validation.
func (c Config) Validate() error {
	for _, v := range []interface{ Validate() error }{
		c.Logging, c.Server, c.Tick, c.Motion, c.Matcher, c.Adapter, c.Route, c.Advisor, c.Events, c.Predictor, c.Observer,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Load reads Config from a YAML file at path (if non-empty), then applies
// FLEET_-prefixed environment overrides (FLEET_MOTION__SPEED_KMH maps to
// motion.speed_kmh), then defaults for anything left unset, then validates.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return Config{}, fmt.Errorf("load config: unsupported config format %q", ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("FLEET_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fleet_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load config: env overrides: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
