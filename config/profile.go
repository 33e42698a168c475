package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
)

// Profile is a YAML tuning document for the heading detector. Zero fields
// keep the detector defaults, so a profile only has to name what it changes.
type Profile struct {
	HeadingThreshold float64 `yaml:"heading_threshold"`
	MinLength        int     `yaml:"min_length"`
	MaxLength        int     `yaml:"max_length"`
	MaxLevel         int     `yaml:"max_level"`
}

// LoadProfile reads and parses a tuning profile from disk.
func LoadProfile(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read tuning profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("parse tuning profile %s: %w", path, err)
	}
	return p, nil
}

// OutlineConfig maps a profile onto detector configuration. A nil profile
// returns the zero config, which the builder fills with defaults.
func (p *Profile) OutlineConfig() outline.Config {
	if p == nil {
		return outline.Config{}
	}
	return outline.Config{
		HeadingThreshold: p.HeadingThreshold,
		MinLength:        p.MinLength,
		MaxLength:        p.MaxLength,
		MaxLevel:         p.MaxLevel,
	}
}
