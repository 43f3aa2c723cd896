package integration

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/miretskiy/mlqsim/simulator"
	"github.com/miretskiy/mlqsim/workload"
)

// SchedulerConfig defines configuration for the CPU scheduler component model
type SchedulerConfig struct {
	// Scheduling parameters
	Quantum        int    `yaml:"quantum" json:"quantum"`
	AgingThreshold int    `yaml:"aging_threshold" json:"aging_threshold"`
	DecayThreshold int    `yaml:"decay_threshold" json:"decay_threshold"`
	Preemption     string `yaml:"preemption" json:"preemption"` // "none" (default) or "arrival"

	// Workload: explicit processes win over a generator; neither means the sample workload
	Processes []simulator.ProcessDescriptor `yaml:"processes,omitempty" json:"processes,omitempty"`
	Generator *workload.GeneratorConfig     `yaml:"generator,omitempty" json:"generator,omitempty"`

	// Time mapping
	TickDurationMs float64 `yaml:"tick_duration_ms" json:"tick_duration_ms"` // Request time per simulated tick
	Repeat         bool    `yaml:"repeat" json:"repeat"`                     // Restart the workload once it completes

	// Fault injection
	ErrorRate *float64 `yaml:"error_rate,omitempty" json:"error_rate,omitempty"`
	ErrorType *string  `yaml:"error_type,omitempty" json:"error_type,omitempty"`
	Seed      int64    `yaml:"seed" json:"seed"` // 0 = time based
}

// GensimRequestContext contains information about the incoming request
type GensimRequestContext struct {
	Component   string
	CurrentTime float64 // Seconds since the model started
}

// GensimLogEntry represents a log emitted by the model
type GensimLogEntry struct {
	OffsetMs float64
	Status   string
	Message  string
}

// GensimMetricSample represents a custom metric emitted by the model
type GensimMetricSample struct {
	Name  string
	Type  string
	Value float64
	Tags  map[string]string
}

// GensimParameterDescriptor describes a mutable configuration field
type GensimParameterDescriptor struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	CurrentValue interface{} `json:"current_value"`
	Min          *float64    `json:"min,omitempty"`
	Max          *float64    `json:"max,omitempty"`
	Description  string      `json:"description,omitempty"` // Detailed explanation of what this parameter does
}

// GensimResult represents the outcome of the model simulation for a request
type GensimResult struct {
	DurationMs float64
	WaitTimeMs float64
	Status     string
	ErrorType  *string
	ErrorMsg   *string
	Logs       []GensimLogEntry
	Metrics    []GensimMetricSample
}

// SchedulerModel exposes a multi-level priority scheduler simulation as a
// component. Each request advances the simulation to the request time.
type SchedulerModel struct {
	component string
	cfg       *SchedulerConfig
	mu        sync.Mutex
	sim       *simulator.Simulator
	rng       *rand.Rand

	epochStartTick int // Absolute tick at which the current workload cycle began
	cycles         int // Completed workload cycles

	// Log lines emitted by the simulator during the current request
	pendingLogs []GensimLogEntry
	requestTick int
}

// NewSchedulerModel creates a new scheduler component model
func NewSchedulerModel(component string, cfg *SchedulerConfig) (*SchedulerModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("scheduler config is required")
	}

	def := simulator.DefaultConfig()
	if cfg.Quantum == 0 {
		cfg.Quantum = def.Quantum
	}
	if cfg.AgingThreshold == 0 {
		cfg.AgingThreshold = def.AgingThreshold
	}
	if cfg.DecayThreshold == 0 {
		cfg.DecayThreshold = def.DecayThreshold
	}
	if cfg.TickDurationMs <= 0 {
		cfg.TickDurationMs = 1000.0 // One tick per second
	}

	simCfg, err := cfg.simConfig()
	if err != nil {
		return nil, err
	}

	procs, err := cfg.processes()
	if err != nil {
		return nil, err
	}

	sim, err := simulator.NewSimulator(procs, simCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulator: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	model := &SchedulerModel{
		component: component,
		cfg:       cfg,
		sim:       sim,
		rng:       rand.New(rand.NewSource(seed)),
	}
	sim.LogEvent = model.captureLog
	return model, nil
}

func (c *SchedulerConfig) simConfig() (simulator.SimConfig, error) {
	mode, err := simulator.ParsePreemptionMode(c.Preemption)
	if err != nil {
		return simulator.SimConfig{}, err
	}
	simCfg := simulator.SimConfig{
		Quantum:        c.Quantum,
		AgingThreshold: c.AgingThreshold,
		DecayThreshold: c.DecayThreshold,
		Preemption:     mode,
	}
	if err := simCfg.Validate(); err != nil {
		return simulator.SimConfig{}, err
	}
	return simCfg, nil
}

func (c *SchedulerConfig) processes() ([]simulator.ProcessDescriptor, error) {
	switch {
	case len(c.Processes) > 0:
		return c.Processes, nil
	case c.Generator != nil:
		w, err := workload.Generate(*c.Generator)
		if err != nil {
			return nil, fmt.Errorf("failed to generate workload: %w", err)
		}
		return w.Processes, nil
	default:
		return simulator.DefaultWorkload().Processes, nil
	}
}

// Name returns the component name
func (m *SchedulerModel) Name() string {
	return m.component
}

// captureLog is the simulator's LogEvent hook. Lines are attributed to the
// tick that produced them, relative to the start of the current request.
func (m *SchedulerModel) captureLog(msg string) {
	tick := m.epochStartTick + m.sim.Clock()
	m.pendingLogs = append(m.pendingLogs, GensimLogEntry{
		OffsetMs: float64(max(tick-m.requestTick, 0)) * m.cfg.TickDurationMs,
		Status:   "info",
		Message:  fmt.Sprintf("%s %s", m.component, msg),
	})
}

func completedIDs(sim *simulator.Simulator) map[int]bool {
	ids := make(map[int]bool)
	for _, r := range sim.CompletedResults() {
		ids[r.ID] = true
	}
	return ids
}

// newlyCompleted returns the completed results whose ids are not in seen
func newlyCompleted(sim *simulator.Simulator, seen map[int]bool) []simulator.CompletedResult {
	var out []simulator.CompletedResult
	for _, r := range sim.CompletedResults() {
		if !seen[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// longestWaitLocked returns the longest time any queued process has gone
// without running
func (m *SchedulerModel) longestWaitLocked() int {
	longest := 0
	clock := m.sim.Clock()
	for _, level := range m.sim.Queues() {
		for _, p := range level.Processes {
			longest = max(longest, p.SinceLastRun(clock))
		}
	}
	return longest
}

func (m *SchedulerModel) currentHealthLocked() (string, string) {
	if m.longestWaitLocked() > 2*m.cfg.AgingThreshold {
		return "warn", "starving"
	}
	if m.sim.IsFinished() {
		return "ok", "idle"
	}
	return "ok", "normal"
}

// Health returns the generic health status of the scheduler model
func (m *SchedulerModel) Health() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	generic, _ := m.currentHealthLocked()
	return generic
}

// HealthStatus returns the detailed health status of the scheduler model
func (m *SchedulerModel) HealthStatus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, detailed := m.currentHealthLocked()
	return detailed
}

// HandleRequest advances the simulation to ctx.CurrentTime and reports what
// happened in between
func (m *SchedulerModel) HandleRequest(ctx *GensimRequestContext) (*GensimResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("request context is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	targetTick := int(ctx.CurrentTime * 1000.0 / m.cfg.TickDurationMs)
	startTick := m.epochStartTick + m.sim.Clock()
	m.requestTick = startTick

	before := m.sim.Metrics()
	seen := completedIDs(m.sim)
	var finishedNow []simulator.CompletedResult
	busyTicks := 0

	for m.epochStartTick+m.sim.Clock() < targetTick {
		if m.sim.IsFinished() {
			if !m.cfg.Repeat {
				break
			}
			finishedNow = append(finishedNow, newlyCompleted(m.sim, seen)...)
			busyTicks += m.sim.Metrics().BusyTicks - before.BusyTicks
			m.epochStartTick += m.sim.Clock()
			m.cycles++
			m.sim.Reset()
			before = m.sim.Metrics()
			seen = nil
		}
		m.sim.StepUntil(targetTick - m.epochStartTick)
	}
	finishedNow = append(finishedNow, newlyCompleted(m.sim, seen)...)
	after := m.sim.Metrics()
	busyTicks += after.BusyTicks - before.BusyTicks

	endTick := m.epochStartTick + m.sim.Clock()
	result := &GensimResult{
		DurationMs: float64(endTick-startTick) * m.cfg.TickDurationMs,
		Status:     "ok",
		Logs:       m.pendingLogs,
	}
	m.pendingLogs = nil

	// Wait time is the mean waiting time of the processes that completed in this request
	if len(finishedNow) > 0 {
		total := 0
		for _, r := range finishedNow {
			total += r.WaitingTime
		}
		result.WaitTimeMs = float64(total) / float64(len(finishedNow)) * m.cfg.TickDurationMs
	}

	if generic, detailed := m.currentHealthLocked(); generic != "ok" {
		result.Logs = append(result.Logs, GensimLogEntry{
			OffsetMs: result.DurationMs,
			Status:   generic,
			Message:  fmt.Sprintf("%s %s: a ready process has waited %d ticks", m.component, detailed, m.longestWaitLocked()),
		})
	}

	// Check for injected errors
	if m.cfg.ErrorRate != nil && *m.cfg.ErrorRate > 0 {
		if m.rng.Float64() < *m.cfg.ErrorRate {
			result.Status = "error"
			if m.cfg.ErrorType != nil {
				result.ErrorType = m.cfg.ErrorType
			} else {
				errType := "dispatch_error"
				result.ErrorType = &errType
			}
			msg := fmt.Sprintf("%s dispatch failed", m.component)
			result.ErrorMsg = &msg
		}
	}

	result.Metrics = m.buildMetrics(after, busyTicks, len(finishedNow))
	return result, nil
}

// buildMetrics constructs metric samples from simulator state
func (m *SchedulerModel) buildMetrics(after *simulator.Metrics, busyTicks, completedNow int) []GensimMetricSample {
	tags := map[string]string{
		"component_model": "mlq_scheduler",
	}
	gauge := func(name string, v float64) GensimMetricSample {
		return GensimMetricSample{Name: name, Type: "gauge", Value: v, Tags: tags}
	}
	counter := func(name string, v float64) GensimMetricSample {
		return GensimMetricSample{Name: name, Type: "counter", Value: v, Tags: tags}
	}

	samples := []GensimMetricSample{
		gauge("scheduler.clock", float64(after.Timestamp)),
		gauge("scheduler.cpu_utilization_percent", after.CPUUtilizationPercent),
		gauge("scheduler.queued", float64(after.QueuedCount)),
		gauge("scheduler.pending", float64(after.PendingCount)),
		gauge("scheduler.completed", float64(after.CompletedCount)),
		gauge("scheduler.longest_wait_ticks", float64(m.longestWaitLocked())),
		gauge("scheduler.avg_waiting_ticks", after.AvgWaiting),
		gauge("scheduler.avg_turnaround_ticks", after.AvgTurnaround),
		gauge("scheduler.throughput", after.Throughput),
		// Cumulative counters within the current workload cycle
		counter("scheduler.context_switches", float64(after.ContextSwitches)),
		counter("scheduler.promotions", float64(after.Promotions)),
		counter("scheduler.demotions", float64(after.Demotions)),
		counter("scheduler.preemptions", float64(after.Preemptions)),
		counter("scheduler.cycles", float64(m.cycles)),
		// Activity during this request
		gauge("scheduler.request_busy_ticks", float64(busyTicks)),
		gauge("scheduler.request_completions", float64(completedNow)),
	}

	// Per-level queue depth, in level order
	levels := make([]int, 0, len(after.PerLevelQueueDepth))
	for level := range after.PerLevelQueueDepth {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	for _, level := range levels {
		levelTags := make(map[string]string)
		for k, v := range tags {
			levelTags[k] = v
		}
		levelTags["priority"] = strconv.Itoa(level)
		samples = append(samples, GensimMetricSample{
			Name:  "scheduler.queue_depth",
			Type:  "gauge",
			Value: float64(after.PerLevelQueueDepth[level]),
			Tags:  levelTags,
		})
	}

	return samples
}

// Config returns the current model configuration
func (m *SchedulerModel) Config() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	simCfg := m.sim.Config()
	config := map[string]interface{}{
		"quantum":          simCfg.Quantum,
		"aging_threshold":  simCfg.AgingThreshold,
		"decay_threshold":  simCfg.DecayThreshold,
		"preemption":       simCfg.Preemption.String(),
		"tick_duration_ms": m.cfg.TickDurationMs,
		"repeat":           m.cfg.Repeat,
		"processes":        len(m.sim.Descriptors()),
	}
	if m.cfg.ErrorRate != nil {
		config["error_rate"] = *m.cfg.ErrorRate
	}
	return config
}

// MutableParameters returns descriptors for runtime-adjustable parameters
func (m *SchedulerModel) MutableParameters() []GensimParameterDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()

	simCfg := m.sim.Config()
	params := make([]GensimParameterDescriptor, 0)

	minQuantum := 1.0
	maxQuantum := 100.0
	params = append(params, GensimParameterDescriptor{
		Name:         "quantum",
		Type:         "int",
		CurrentValue: simCfg.Quantum,
		Min:          &minQuantum,
		Max:          &maxQuantum,
		Description:  "Maximum number of consecutive ticks a process may run per dispatch. Small values give fairer round-robin sharing within a priority level at the cost of more context switches; large values approach first-come-first-served. A new value applies from the next dispatch.",
	})

	minAging := 1.0
	maxAging := 1000.0
	params = append(params, GensimParameterDescriptor{
		Name:         "aging_threshold",
		Type:         "int",
		CurrentValue: simCfg.AgingThreshold,
		Min:          &minAging,
		Max:          &maxAging,
		Description:  "Ticks a ready process may wait before it is promoted one priority level. Lower values prevent starvation of low priority work sooner but blur the priority levels; higher values keep strict priority ordering longer.",
	})

	minDecay := 1.0
	maxDecay := 1000.0
	params = append(params, GensimParameterDescriptor{
		Name:         "decay_threshold",
		Type:         "int",
		CurrentValue: simCfg.DecayThreshold,
		Min:          &minDecay,
		Max:          &maxDecay,
		Description:  "Ticks of CPU a process may consume before it is demoted one priority level at the end of a quantum. Lower values push CPU-bound processes down quickly, favouring short interactive jobs.",
	})

	params = append(params, GensimParameterDescriptor{
		Name:         "preemption",
		Type:         "string",
		CurrentValue: simCfg.Preemption.String(),
		Description:  "Either \"none\" (a running process always finishes its slice) or \"arrival\" (a ready process at a better priority level interrupts the running slice).",
	})

	minTick := 1.0
	maxTick := 60000.0
	params = append(params, GensimParameterDescriptor{
		Name:         "tick_duration_ms",
		Type:         "float",
		CurrentValue: m.cfg.TickDurationMs,
		Min:          &minTick,
		Max:          &maxTick,
		Description:  "Request time represented by one simulated tick. Smaller values make the simulation progress faster relative to incoming requests.",
	})

	return params
}

// UpdateParameters applies runtime configuration changes. Either every
// change is applied or none is.
func (m *SchedulerModel) UpdateParameters(params map[string]interface{}) error {
	if len(params) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newConfig := m.sim.Config()
	tickDuration := m.cfg.TickDurationMs
	// Config change lines are reported with the next request
	m.requestTick = m.epochStartTick + m.sim.Clock()

	if raw, ok := params["quantum"]; ok {
		val, err := parseIntParam(raw)
		if err != nil {
			return fmt.Errorf("quantum: %w", err)
		}
		newConfig.Quantum = val
	}
	if raw, ok := params["aging_threshold"]; ok {
		val, err := parseIntParam(raw)
		if err != nil {
			return fmt.Errorf("aging_threshold: %w", err)
		}
		newConfig.AgingThreshold = val
	}
	if raw, ok := params["decay_threshold"]; ok {
		val, err := parseIntParam(raw)
		if err != nil {
			return fmt.Errorf("decay_threshold: %w", err)
		}
		newConfig.DecayThreshold = val
	}
	if raw, ok := params["preemption"]; ok {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("preemption: unsupported type %T", raw)
		}
		mode, err := simulator.ParsePreemptionMode(s)
		if err != nil {
			return fmt.Errorf("preemption: %w", err)
		}
		newConfig.Preemption = mode
	}
	if raw, ok := params["tick_duration_ms"]; ok {
		val, err := parseFloatParam(raw)
		if err != nil {
			return fmt.Errorf("tick_duration_ms: %w", err)
		}
		if val <= 0 {
			return fmt.Errorf("tick_duration_ms must be > 0")
		}
		tickDuration = val
	}

	if err := m.sim.UpdateConfig(newConfig); err != nil {
		return fmt.Errorf("failed to update simulator config: %w", err)
	}
	m.cfg.Quantum = newConfig.Quantum
	m.cfg.AgingThreshold = newConfig.AgingThreshold
	m.cfg.DecayThreshold = newConfig.DecayThreshold
	m.cfg.Preemption = newConfig.Preemption.String()
	m.cfg.TickDurationMs = tickDuration
	return nil
}

// Helper functions for parameter parsing
func parseIntParam(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case float32:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func parseFloatParam(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
