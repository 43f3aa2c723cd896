package workload

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gopkg.in/yaml.v3"
)

// DistributionType selects how generated values are spread over their range
type DistributionType int

const (
	DistUniform DistributionType = iota
	DistExponential
	DistGeometric
	DistFixed
)

// String returns the string representation of DistributionType
func (dt DistributionType) String() string {
	switch dt {
	case DistUniform:
		return "uniform"
	case DistExponential:
		return "exponential"
	case DistGeometric:
		return "geometric"
	case DistFixed:
		return "fixed"
	default:
		return fmt.Sprintf("unknown(%d)", int(dt))
	}
}

// ParseDistributionType parses a string into a DistributionType
func ParseDistributionType(s string) (DistributionType, error) {
	switch s {
	case "uniform", "":
		return DistUniform, nil
	case "exponential":
		return DistExponential, nil
	case "geometric":
		return DistGeometric, nil
	case "fixed":
		return DistFixed, nil
	default:
		return DistUniform, fmt.Errorf("invalid distribution: %s (must be 'uniform', 'exponential', 'geometric', or 'fixed')", s)
	}
}

// IsValid reports whether dt names a known distribution
func (dt DistributionType) IsValid() bool {
	return dt >= DistUniform && dt <= DistFixed
}

// MarshalJSON implements json.Marshaler for DistributionType
func (dt DistributionType) MarshalJSON() ([]byte, error) {
	if !dt.IsValid() {
		return nil, fmt.Errorf("invalid distribution: %s", dt)
	}
	return json.Marshal(dt.String())
}

// UnmarshalJSON implements json.Unmarshaler for DistributionType
func (dt *DistributionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDistributionType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for DistributionType
func (dt DistributionType) MarshalYAML() (interface{}, error) {
	if !dt.IsValid() {
		return nil, fmt.Errorf("invalid distribution: %s", dt)
	}
	return dt.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for DistributionType
func (dt *DistributionType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDistributionType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// Distribution draws an integer in [lo, hi]
type Distribution interface {
	Sample(rng *rand.Rand, lo, hi int) int
}

// UniformDistribution samples uniformly between lo and hi
type UniformDistribution struct{}

func (d *UniformDistribution) Sample(rng *rand.Rand, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// ExponentialDistribution samples with exponential bias toward lo.
// Mostly short bursts with an occasional long one.
type ExponentialDistribution struct {
	Lambda float64 // Rate parameter (higher = more skewed toward lo)
}

func (d *ExponentialDistribution) Sample(rng *rand.Rand, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	u := rng.Float64()
	if u == 0 {
		u = 1e-10 // Avoid log(0)
	}
	x := -math.Log(u) / d.Lambda

	// 95% of draws fall under 6/lambda; clamp the tail to hi
	normalized := math.Min(x/(6.0/d.Lambda), 1.0)
	return lo + int(normalized*float64(hi-lo))
}

// GeometricDistribution counts failures before the first success, capped at hi
type GeometricDistribution struct {
	P float64 // Success probability (higher = more skewed toward lo)
}

func (d *GeometricDistribution) Sample(rng *rand.Rand, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	u := rng.Float64()
	if u == 0 {
		u = 1e-10
	}
	if u >= 1.0 {
		u = 0.999999
	}

	failures := 0
	if d.P > 0 && d.P < 1 {
		failures = max(int(math.Log(1-u)/math.Log(1-d.P)), 0)
	}
	return lo + min(failures, hi-lo)
}

// FixedDistribution always returns the same point of the range
type FixedDistribution struct {
	Percentage float64 // Position in the range, 0.0 (lo) to 1.0 (hi)
}

func (d *FixedDistribution) Sample(_ *rand.Rand, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	p := math.Max(0.0, math.Min(d.Percentage, 1.0))
	result := lo + int(p*float64(hi-lo))
	// Floating point can land just outside the range
	return max(lo, min(result, hi))
}

// NewDistribution creates a distribution based on type
func NewDistribution(distType DistributionType) Distribution {
	switch distType {
	case DistExponential:
		return &ExponentialDistribution{Lambda: 0.5}
	case DistGeometric:
		return &GeometricDistribution{P: 0.3}
	case DistFixed:
		return &FixedDistribution{Percentage: 0.5}
	default:
		return &UniformDistribution{}
	}
}

// newRand returns a seeded source; seed 0 picks a random seed
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return rand.New(rand.NewSource(seed))
}
