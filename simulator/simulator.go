package simulator

import (
	"fmt"
	"sort"
)

// Simulator is a PURE discrete event simulator with NO concurrency primitives.
// All state is accessed single-threaded via the Step() method.
// The caller (cmd/server, cmd/sim_runner, integration) decides whether to step
// one tick at a time or run to completion; both go through Step().
type Simulator struct {
	config      SimConfig
	descriptors []ProcessDescriptor // Original input, kept for Reset

	clock            int
	pending          []*Process // Not yet arrived, descriptor order
	queues           *ReadyQueues
	running          *Process
	quantumRemaining int        // Units left in the running process's slice
	completed        []*Process // Completion order
	trace            []TraceEntry
	metrics          *Metrics

	// Event logging callback (optional, for UI/debugging)
	LogEvent func(msg string)
}

// NewSimulator validates the descriptors and config and creates a simulator
// positioned at t=0. Nothing is constructed if validation fails.
func NewSimulator(procs []ProcessDescriptor, config SimConfig) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateDescriptors(procs); err != nil {
		return nil, err
	}

	descriptors := make([]ProcessDescriptor, len(procs))
	copy(descriptors, procs)

	sim := &Simulator{
		config:      config,
		descriptors: descriptors,
	}
	sim.init()
	return sim, nil
}

// init builds fresh run state from the stored descriptors
func (s *Simulator) init() {
	s.clock = 0
	s.pending = make([]*Process, 0, len(s.descriptors))
	for _, d := range s.descriptors {
		s.pending = append(s.pending, newProcess(d))
	}
	s.queues = NewReadyQueues()
	s.running = nil
	s.quantumRemaining = 0
	s.completed = make([]*Process, 0, len(s.descriptors))
	s.trace = make([]TraceEntry, 0)
	s.metrics = NewMetrics()
	s.metrics.Update(s.clock, s.queues, len(s.pending), s.running, s.completed)
}

// Step advances the simulation by exactly one time unit:
// admission, aging, (preemption), selection, one unit of execution, then
// completion or quantum expiry handling. This is the ONLY method that
// advances the simulation.
func (s *Simulator) Step() (TickOutcome, error) {
	if s.IsFinished() {
		return TickOutcome{}, errFinished(s.clock)
	}

	outcome := TickOutcome{Time: s.clock}
	outcome.Admitted = s.admitArrivals()
	outcome.Promotions = s.applyAging()

	if s.config.Preemption == PreemptionArrival {
		if id, ok := s.preemptRunning(); ok {
			outcome.PreemptedID = &id
		}
	}

	if s.running == nil || s.quantumRemaining == 0 {
		next := s.queues.PopHighest()
		if next == nil {
			outcome.Kind = TickIdle
			outcome.Entry = s.idle()
			s.endTick()
			return outcome, nil
		}
		s.dispatch(next)
		outcome.Dispatched = true
	}

	p := s.running
	outcome.Entry = s.executeUnit(p)

	switch {
	case p.IsComplete():
		// Completion takes precedence over quantum expiry
		result := s.recordCompletion(p)
		outcome.Kind = TickComplete
		outcome.Completed = &result
	case s.quantumRemaining == 0:
		outcome.Demotion = s.applyDecay(p)
		s.requeue(p)
		outcome.Kind = TickRequeue
	default:
		outcome.Kind = TickExecute
	}

	s.endTick()
	return outcome, nil
}

func (s *Simulator) endTick() {
	s.metrics.Update(s.clock, s.queues, len(s.pending), s.running, s.completed)
	if s.IsFinished() {
		s.logEvent("[t=%d] all %d processes completed", s.clock, len(s.completed))
	}
}

// IsFinished returns true once no process is pending, queued or running
func (s *Simulator) IsFinished() bool {
	return len(s.pending) == 0 && s.queues.IsEmpty() && s.running == nil
}

// RunToCompletion steps until IsFinished and returns the full trace.
// Calling it on a finished simulator returns the existing trace.
func (s *Simulator) RunToCompletion() ([]TraceEntry, error) {
	for !s.IsFinished() {
		if _, err := s.Step(); err != nil {
			return nil, err
		}
	}
	return s.Trace(), nil
}

// StepUntil advances the simulation until the clock reaches targetTime or the
// simulation finishes, and returns the resulting clock
func (s *Simulator) StepUntil(targetTime int) int {
	for s.clock < targetTime && !s.IsFinished() {
		if _, err := s.Step(); err != nil {
			break
		}
	}
	return s.clock
}

// Reset restarts the simulation from the original descriptors
func (s *Simulator) Reset() {
	s.init()
	s.logEvent("[t=0] simulation reset (%d processes)", len(s.descriptors))
}

// UpdateConfig replaces the scheduling parameters. The new values apply from
// the next tick; a new quantum applies from the next dispatch.
func (s *Simulator) UpdateConfig(newConfig SimConfig) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	old := s.config
	if old.Quantum != newConfig.Quantum {
		s.logEvent("[CONFIG] quantum changed: %d -> %d (t=%d)", old.Quantum, newConfig.Quantum, s.clock)
	}
	if old.AgingThreshold != newConfig.AgingThreshold {
		s.logEvent("[CONFIG] aging threshold changed: %d -> %d (t=%d)", old.AgingThreshold, newConfig.AgingThreshold, s.clock)
	}
	if old.DecayThreshold != newConfig.DecayThreshold {
		s.logEvent("[CONFIG] decay threshold changed: %d -> %d (t=%d)", old.DecayThreshold, newConfig.DecayThreshold, s.clock)
	}
	if old.Preemption != newConfig.Preemption {
		s.logEvent("[CONFIG] preemption changed: %s -> %s (t=%d)", old.Preemption, newConfig.Preemption, s.clock)
	}
	s.config = newConfig
	return nil
}

// Config returns a copy of the current configuration
func (s *Simulator) Config() SimConfig {
	return s.config
}

// Descriptors returns a copy of the process descriptors the simulation was built from
func (s *Simulator) Descriptors() []ProcessDescriptor {
	out := make([]ProcessDescriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

// Clock returns the current simulation time
func (s *Simulator) Clock() int {
	return s.clock
}

// QuantumRemaining returns the units left in the running process's slice
func (s *Simulator) QuantumRemaining() int {
	return s.quantumRemaining
}

// Running returns a snapshot of the running process, if any
func (s *Simulator) Running() (Process, bool) {
	if s.running == nil {
		return Process{}, false
	}
	return s.running.Clone(), true
}

// Queues returns a snapshot of every non-empty priority level
func (s *Simulator) Queues() []QueueLevel {
	return s.queues.Levels()
}

// Pending returns a snapshot of the processes that have not arrived yet
func (s *Simulator) Pending() []Process {
	out := make([]Process, len(s.pending))
	for i, p := range s.pending {
		out[i] = p.Clone()
	}
	return out
}

// Trace returns a copy of the trace emitted so far, one entry per tick
func (s *Simulator) Trace() []TraceEntry {
	out := make([]TraceEntry, len(s.trace))
	copy(out, s.trace)
	return out
}

// Gantt returns the trace coalesced into contiguous blocks
func (s *Simulator) Gantt() []TraceEntry {
	return CoalesceTrace(s.trace)
}

// CompletedResults returns the completed processes sorted by id
func (s *Simulator) CompletedResults() []CompletedResult {
	results := make([]CompletedResult, len(s.completed))
	for i, p := range s.completed {
		results[i] = resultOf(p)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// AggregateStats returns averages and throughput over the processes completed
// so far. Returns ErrNoData if none has completed.
func (s *Simulator) AggregateStats() (AggregateStats, error) {
	return computeAggregateStats(s.completed)
}

// Metrics returns a copy of current metrics
func (s *Simulator) Metrics() *Metrics {
	return s.metrics.Clone()
}

// State returns the current scheduler state for display
func (s *Simulator) State() map[string]interface{} {
	state := map[string]interface{}{
		"clock":            s.clock,
		"finished":         s.IsFinished(),
		"quantumRemaining": s.quantumRemaining,
		"queues":           s.Queues(),
		"pending":          s.Pending(),
		"completed":        s.CompletedResults(),
		"traceLength":      len(s.trace),
	}
	if running, ok := s.Running(); ok {
		state["running"] = running
	} else {
		state["running"] = nil
	}
	return state
}

// logEvent sends a log message to the LogEvent callback (if set)
func (s *Simulator) logEvent(format string, args ...interface{}) {
	if s.LogEvent == nil {
		return
	}
	s.LogEvent(fmt.Sprintf(format, args...))
}
