// Package profiles provides the target stepchart profiles .ssc headers are rendered for
package profiles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pump single defaults
const (
	PumpSingleStepsType   = "pump-single"
	DefaultDescription    = "Mez"
	DefaultMusic          = "song.ogg"
	DefaultMeterBase      = 30
	DefaultMeterStep      = 5
	PumpSingleProfileName = "pump-single"
)

// DefaultLabels are the .ssc difficulty names for Expert, Hard, Medium and Easy
var DefaultLabels = []string{"Challenge", "Hard", "Medium", "Easy"}

// Config is the YAML form of a profile
type Config struct {
	StepsType   string   `yaml:"steps_type"`
	Description string   `yaml:"description"`
	Music       string   `yaml:"music"`
	MeterBase   int      `yaml:"meter_base"`
	MeterStep   int      `yaml:"meter_step"`
	Labels      []string `yaml:"labels"`
}

// PumpSingle renders 5-panel pump-single charts
type PumpSingle struct {
	cfg Config
}

// NewPumpSingle creates the default pump-single profile
func NewPumpSingle() *PumpSingle {
	return &PumpSingle{cfg: DefaultConfig()}
}

// DefaultConfig returns the pump-single defaults
func DefaultConfig() Config {
	return Config{
		StepsType:   PumpSingleStepsType,
		Description: DefaultDescription,
		Music:       DefaultMusic,
		MeterBase:   DefaultMeterBase,
		MeterStep:   DefaultMeterStep,
		Labels:      append([]string(nil), DefaultLabels...),
	}
}

// LoadConfig reads a YAML profile; fields left out keep their defaults
func LoadConfig(path string) (*PumpSingle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML profile data over the defaults
func ParseConfig(data []byte) (*PumpSingle, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if cfg.MeterBase <= 0 {
		return nil, fmt.Errorf("invalid profile: meter_base must be positive, got %d", cfg.MeterBase)
	}
	if cfg.MeterStep < 0 {
		return nil, fmt.Errorf("invalid profile: meter_step must not be negative, got %d", cfg.MeterStep)
	}
	return &PumpSingle{cfg: cfg}, nil
}

// Name returns the profile name
func (p *PumpSingle) Name() string {
	return PumpSingleProfileName
}

// StepsType returns the #STEPSTYPE value
func (p *PumpSingle) StepsType() string {
	return p.cfg.StepsType
}

// Description returns the #DESCRIPTION value
func (p *PumpSingle) Description() string {
	return p.cfg.Description
}

// Music returns the #MUSIC fallback used when the chart names no stream
func (p *PumpSingle) Music() string {
	return p.cfg.Music
}

// DifficultyLabel returns the #DIFFICULTY value for the difficulty at position
func (p *PumpSingle) DifficultyLabel(position int) string {
	if position >= 0 && position < len(p.cfg.Labels) {
		return p.cfg.Labels[position]
	}
	return "Edit"
}

// Meter returns the #METER value, decreasing by a fixed step per position and never below 1
func (p *PumpSingle) Meter(position int) int {
	m := p.cfg.MeterBase - p.cfg.MeterStep*position
	if m < 1 {
		return 1
	}
	return m
}
