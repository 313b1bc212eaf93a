// Package config provides engine configuration for methodd.
package config

import (
	"fmt"

	"github.com/interpretivelabs/methodd/internal/saturation"
	"github.com/interpretivelabs/methodd/internal/strain"
)

// Config holds all tunable engine settings. Everything has a working
// default; the file and environment only override.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Strain     StrainConfig     `koanf:"strain"`
	Saturation SaturationConfig `koanf:"saturation"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is console or json.
	Format string `koanf:"format"`
}

// StrainConfig seeds strain tracking at project initialization.
type StrainConfig struct {
	// Threshold is the per-phase override count that flags strain.
	Threshold int `koanf:"threshold"`
}

// SaturationConfig seeds the saturation thresholds at project
// initialization. Existing projects keep the thresholds stored in their
// document.
type SaturationConfig struct {
	StableRate       float64 `koanf:"stable_rate"`
	RefinementStable int     `koanf:"refinement_stable"`
	RedundancyHigh   float64 `koanf:"redundancy_high"`
	CoverageAdequate float64 `koanf:"coverage_adequate"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Strain: StrainConfig{
			Threshold: strain.DefaultThreshold,
		},
		Saturation: SaturationConfig{
			StableRate:       saturation.DefaultStableRate,
			RefinementStable: saturation.DefaultRefinementStable,
			RedundancyHigh:   saturation.DefaultRedundancyHigh,
			CoverageAdequate: saturation.DefaultCoverageAdequate,
		},
	}
}

// Validate rejects settings that would make the engine misbehave quietly.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q (expected debug, info, warn, or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging format %q (expected console or json)", c.Logging.Format)
	}
	if c.Strain.Threshold < 1 {
		return fmt.Errorf("strain threshold must be at least 1, got %d", c.Strain.Threshold)
	}
	if c.Saturation.StableRate <= 0 {
		return fmt.Errorf("saturation stable rate must be positive, got %v", c.Saturation.StableRate)
	}
	if c.Saturation.RefinementStable < 0 {
		return fmt.Errorf("refinement stable threshold cannot be negative, got %d", c.Saturation.RefinementStable)
	}
	if c.Saturation.RedundancyHigh <= 0 || c.Saturation.RedundancyHigh > 1 {
		return fmt.Errorf("redundancy high cutoff must be in (0, 1], got %v", c.Saturation.RedundancyHigh)
	}
	if c.Saturation.CoverageAdequate <= 0 || c.Saturation.CoverageAdequate > 1 {
		return fmt.Errorf("coverage adequate ratio must be in (0, 1], got %v", c.Saturation.CoverageAdequate)
	}
	return nil
}
