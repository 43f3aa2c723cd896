package simulator

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PreemptionMode selects what happens when a higher priority process becomes
// ready while another one is in the middle of its quantum.
type PreemptionMode int

const (
	PreemptionNone    PreemptionMode = iota // Running process always finishes its slice
	PreemptionArrival                       // A numerically lower ready level interrupts the running slice
)

// String returns the string representation of PreemptionMode
func (pm PreemptionMode) String() string {
	switch pm {
	case PreemptionNone:
		return "none"
	case PreemptionArrival:
		return "arrival"
	default:
		return "unknown"
	}
}

// ParsePreemptionMode parses a string into PreemptionMode
func ParsePreemptionMode(s string) (PreemptionMode, error) {
	switch s {
	case "none", "":
		return PreemptionNone, nil
	case "arrival":
		return PreemptionArrival, nil
	default:
		return PreemptionNone, fmt.Errorf("invalid preemption mode: %s (must be 'none' or 'arrival')", s)
	}
}

// MarshalJSON implements json.Marshaler for PreemptionMode
func (pm PreemptionMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(pm.String())
}

// UnmarshalJSON implements json.Unmarshaler for PreemptionMode
func (pm *PreemptionMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePreemptionMode(s)
	if err != nil {
		return err
	}
	*pm = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for PreemptionMode
func (pm PreemptionMode) MarshalYAML() (interface{}, error) {
	return pm.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for PreemptionMode
func (pm *PreemptionMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePreemptionMode(s)
	if err != nil {
		return err
	}
	*pm = parsed
	return nil
}

// SimConfig holds the scheduling parameters of one simulation run
type SimConfig struct {
	Quantum        int            `json:"quantum" yaml:"quantum"`       // Max contiguous units per dispatch
	AgingThreshold int            `json:"agingThreshold" yaml:"aging"`  // Wait units before a queued process is promoted one level
	DecayThreshold int            `json:"decayThreshold" yaml:"decay"`  // Consecutive processed units before a process is demoted one level
	Preemption     PreemptionMode `json:"preemption" yaml:"preemption"` // none (default) or arrival
}

// DefaultConfig returns the parameters the scheduler ships with
func DefaultConfig() SimConfig {
	return SimConfig{
		Quantum:        3,
		AgingThreshold: 5,
		DecayThreshold: 6,
		Preemption:     PreemptionNone,
	}
}

// Validate checks if configuration values are usable
func (c *SimConfig) Validate() error {
	if c.Quantum <= 0 {
		return errInvalidConfig("quantum must be > 0, got %d", c.Quantum)
	}
	if c.AgingThreshold <= 0 {
		return errInvalidConfig("agingThreshold must be > 0, got %d", c.AgingThreshold)
	}
	if c.DecayThreshold <= 0 {
		return errInvalidConfig("decayThreshold must be > 0, got %d", c.DecayThreshold)
	}
	if c.Preemption != PreemptionNone && c.Preemption != PreemptionArrival {
		return errInvalidConfig("unknown preemption mode %d", int(c.Preemption))
	}
	return nil
}
