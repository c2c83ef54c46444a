package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable balance of the progression loop. Everything has
// a sensible default so the file is optional.
type Config struct {
	Version  string   `yaml:"version" json:"version"`
	XP       XP       `yaml:"xp" json:"xp"`
	Start    Start    `yaml:"start" json:"start"`
	Events   Events   `yaml:"events" json:"events"`
	Daily    Daily    `yaml:"daily" json:"daily"`
	Autosave Autosave `yaml:"autosave" json:"autosave"`
}

type XP struct {
	Base      int `yaml:"base" json:"base"`
	GrowthPct int `yaml:"growth_pct" json:"growth_pct"`
}

type Start struct {
	Gold int `yaml:"gold" json:"gold"`
	Stat int `yaml:"stat" json:"stat"`
}

type Events struct {
	PrepHorizonDays  int `yaml:"prep_horizon_days" json:"prep_horizon_days"`
	BadgeHorizonDays int `yaml:"badge_horizon_days" json:"badge_horizon_days"`
}

type Daily struct {
	EncounterChance float64 `yaml:"encounter_chance" json:"encounter_chance"`
}

type Autosave struct {
	IntervalSeconds int `yaml:"interval_seconds" json:"interval_seconds"`
}

func (c *Config) ApplyDefaults() {
	if c.XP.Base == 0 {
		c.XP.Base = 100
	}
	if c.XP.GrowthPct == 0 {
		c.XP.GrowthPct = 115
	}
	if c.Start.Gold == 0 {
		c.Start.Gold = 100
	}
	if c.Start.Stat == 0 {
		c.Start.Stat = 5
	}
	if c.Events.PrepHorizonDays == 0 {
		c.Events.PrepHorizonDays = 3
	}
	if c.Events.BadgeHorizonDays == 0 {
		c.Events.BadgeHorizonDays = 7
	}
	if c.Daily.EncounterChance == 0 {
		c.Daily.EncounterChance = 0.3
	}
	if c.Autosave.IntervalSeconds == 0 {
		c.Autosave.IntervalSeconds = 15
	}
}

// Default is the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads the YAML config. A missing file is not an error; it yields the
// defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}
