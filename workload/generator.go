package workload

import (
	"fmt"

	"github.com/miretskiy/mlqsim/simulator"
)

// GeneratorConfig describes a random workload. Arrivals are built from
// inter-arrival gaps so the generated list is already in arrival order.
type GeneratorConfig struct {
	Count int   `json:"count" yaml:"count"`
	Seed  int64 `json:"seed" yaml:"seed"` // 0 = random seed

	MaxInterArrival int `json:"maxInterArrival" yaml:"maxInterArrival"`
	MinBurst        int `json:"minBurst" yaml:"minBurst"`
	MaxBurst        int `json:"maxBurst" yaml:"maxBurst"`
	MinPriority     int `json:"minPriority" yaml:"minPriority"`
	MaxPriority     int `json:"maxPriority" yaml:"maxPriority"`

	ArrivalDist  DistributionType `json:"arrivalDist" yaml:"arrivalDist"`
	BurstDist    DistributionType `json:"burstDist" yaml:"burstDist"`
	PriorityDist DistributionType `json:"priorityDist" yaml:"priorityDist"`

	Config simulator.SimConfig `json:"config" yaml:"config"`
}

// DefaultGeneratorConfig returns a mix of short and long jobs over five levels
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Count:           10,
		Seed:            1,
		MaxInterArrival: 4,
		MinBurst:        1,
		MaxBurst:        20,
		MinPriority:     1,
		MaxPriority:     5,
		ArrivalDist:     DistUniform,
		BurstDist:       DistExponential,
		PriorityDist:    DistUniform,
		Config:          simulator.DefaultConfig(),
	}
}

// Validate checks the generator ranges
func (c *GeneratorConfig) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be > 0, got %d", c.Count)
	}
	if c.MaxInterArrival < 0 {
		return fmt.Errorf("maxInterArrival must be >= 0, got %d", c.MaxInterArrival)
	}
	if c.MinBurst < 1 || c.MaxBurst < c.MinBurst {
		return fmt.Errorf("burst range [%d, %d] invalid (need 1 <= min <= max)", c.MinBurst, c.MaxBurst)
	}
	if c.MinPriority < simulator.MinPriority || c.MaxPriority < c.MinPriority {
		return fmt.Errorf("priority range [%d, %d] invalid (need %d <= min <= max)", c.MinPriority, c.MaxPriority, simulator.MinPriority)
	}
	dists := []struct {
		name string
		dt   DistributionType
	}{
		{"arrivalDist", c.ArrivalDist},
		{"burstDist", c.BurstDist},
		{"priorityDist", c.PriorityDist},
	}
	for _, d := range dists {
		if !d.dt.IsValid() {
			return fmt.Errorf("%s: invalid distribution %s", d.name, d.dt)
		}
	}
	return c.Config.Validate()
}

// Generate builds a workload from cfg. The same non-zero seed always yields
// the same workload. Ids are assigned 1..Count in arrival order.
func Generate(cfg GeneratorConfig) (simulator.Workload, error) {
	if err := cfg.Validate(); err != nil {
		return simulator.Workload{}, fmt.Errorf("generator config: %w", err)
	}

	rng := newRand(cfg.Seed)
	arrivals := NewDistribution(cfg.ArrivalDist)
	bursts := NewDistribution(cfg.BurstDist)
	priorities := NewDistribution(cfg.PriorityDist)

	procs := make([]simulator.ProcessDescriptor, cfg.Count)
	arrival := 0
	for i := range procs {
		if i > 0 {
			arrival += arrivals.Sample(rng, 0, cfg.MaxInterArrival)
		}
		procs[i] = simulator.ProcessDescriptor{
			ID:          i + 1,
			ArrivalTime: arrival,
			BurstTime:   bursts.Sample(rng, cfg.MinBurst, cfg.MaxBurst),
			Priority:    priorities.Sample(rng, cfg.MinPriority, cfg.MaxPriority),
		}
	}
	return simulator.Workload{Config: cfg.Config, Processes: procs}, nil
}
