package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// traceIDs flattens a trace into process ids, 0 for idle ticks
func traceIDs(trace []TraceEntry) []int {
	ids := make([]int, len(trace))
	for i, e := range trace {
		if e.ProcessID != nil {
			ids[i] = *e.ProcessID
		}
	}
	return ids
}

func newTestSimulator(t *testing.T, cfg SimConfig, procs ...ProcessDescriptor) *Simulator {
	t.Helper()
	sim, err := NewSimulator(procs, cfg)
	require.NoError(t, err)
	return sim
}

func stepN(t *testing.T, sim *Simulator, n int) []TickOutcome {
	t.Helper()
	outcomes := make([]TickOutcome, 0, n)
	for i := 0; i < n; i++ {
		out, err := sim.Step()
		require.NoError(t, err)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// queuedPriority returns the level holding process id, or 0 if it is not queued
func queuedPriority(sim *Simulator, id int) int {
	for _, level := range sim.Queues() {
		for _, p := range level.Processes {
			if p.ID == id {
				return level.Priority
			}
		}
	}
	return 0
}

func resultByID(t *testing.T, results []CompletedResult, id int) CompletedResult {
	t.Helper()
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no result for P%d", id)
	return CompletedResult{}
}

// Two equal processes alternate every quantum.
// Timeline: P1 [0,2) P2 [2,4) P1 [4,6) P2 [6,8) P1 [8,9) P2 [9,10)
func TestSimulator_RoundRobinAlternation(t *testing.T) {
	cfg := SimConfig{Quantum: 2, AgingThreshold: 100, DecayThreshold: 100}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 5, Priority: 1},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 5, Priority: 1},
	)

	trace, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 2, 2, 1, 1, 2, 2, 1, 2}, traceIDs(trace))
	require.Equal(t, 10, sim.Clock())

	results := sim.CompletedResults()
	require.Equal(t, []CompletedResult{
		{ID: 1, ArrivalTime: 0, OriginalBurst: 5, FinalPriority: 1, CompletedTime: 9, WaitingTime: 4, TurnaroundTime: 9},
		{ID: 2, ArrivalTime: 0, OriginalBurst: 5, FinalPriority: 1, CompletedTime: 10, WaitingTime: 5, TurnaroundTime: 10},
	}, results)

	stats, err := sim.AggregateStats()
	require.NoError(t, err)
	require.InDelta(t, 4.5, stats.AvgWaiting, 1e-9)
	require.InDelta(t, 9.5, stats.AvgTurnaround, 1e-9)
	require.InDelta(t, 0.2, stats.Throughput, 1e-9)
	require.Equal(t, 10, stats.Makespan)
}

func TestSimulator_SingleProcessWithinQuantum(t *testing.T) {
	sim := newTestSimulator(t, SimConfig{Quantum: 5, AgingThreshold: 5, DecayThreshold: 6},
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 3, Priority: 1},
	)

	outcomes := stepN(t, sim, 3)
	require.True(t, sim.IsFinished())
	require.Equal(t, []int{1, 1, 1}, traceIDs(sim.Trace()))

	require.True(t, outcomes[0].Dispatched)
	require.Equal(t, TickExecute, outcomes[0].Kind)
	require.False(t, outcomes[1].Dispatched)
	require.Equal(t, TickComplete, outcomes[2].Kind)
	require.NotNil(t, outcomes[2].Completed)
	require.Equal(t, 0, outcomes[2].Completed.WaitingTime)
	require.Equal(t, 3, outcomes[2].Completed.TurnaroundTime)

	gantt := sim.Gantt()
	require.Len(t, gantt, 1)
	require.Equal(t, 3, gantt[0].Duration)
}

func TestSimulator_IdleUntilArrival(t *testing.T) {
	sim := newTestSimulator(t, DefaultConfig(),
		ProcessDescriptor{ID: 1, ArrivalTime: 4, BurstTime: 2, Priority: 1},
	)

	outcomes := stepN(t, sim, 4)
	for i, out := range outcomes {
		require.Equal(t, TickIdle, out.Kind, "tick %d", i)
		require.True(t, out.Entry.IsIdle())
		require.Equal(t, i, out.Entry.Start)
	}
	require.Len(t, sim.Pending(), 1)

	_, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0, 0, 1, 1}, traceIDs(sim.Trace()))

	r := sim.CompletedResults()[0]
	require.Equal(t, 6, r.CompletedTime)
	require.Equal(t, 2, r.TurnaroundTime)
	require.Equal(t, 0, r.WaitingTime)

	stats, err := sim.AggregateStats()
	require.NoError(t, err)
	require.InDelta(t, 1.0/6.0, stats.Throughput, 1e-9)

	m := sim.Metrics()
	require.Equal(t, 4, m.IdleTicks)
	require.Equal(t, 2, m.BusyTicks)
	require.InDelta(t, 100.0*2/6, m.CPUUtilizationPercent, 1e-9)
}

// A priority-3 process waits behind a long priority-1 process and is promoted
// once per aging threshold: 3 -> 2 at t=4, 2 -> 1 at t=8. It then runs at t=10
// after the priority-1 process finishes its current slice.
func TestSimulator_AgingPromotesStarvedProcess(t *testing.T) {
	cfg := SimConfig{Quantum: 2, AgingThreshold: 4, DecayThreshold: 100}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 12, Priority: 1},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 2, Priority: 3},
	)

	outcomes := stepN(t, sim, 4)
	for _, out := range outcomes {
		require.Empty(t, out.Promotions)
	}
	require.Equal(t, 3, queuedPriority(sim, 2))

	out, err := sim.Step() // t=4
	require.NoError(t, err)
	require.Equal(t, []PriorityChange{{ProcessID: 2, From: 3, To: 2}}, out.Promotions)
	require.Equal(t, 2, queuedPriority(sim, 2))

	// The promotion resets the wait basis; no further move until t=8
	for _, out := range stepN(t, sim, 3) {
		require.Empty(t, out.Promotions)
	}
	require.Equal(t, 2, queuedPriority(sim, 2))

	out, err = sim.Step() // t=8
	require.NoError(t, err)
	require.Equal(t, []PriorityChange{{ProcessID: 2, From: 2, To: 1}}, out.Promotions)
	// P1 was requeued at the end of t=7, so it is ahead of P2 in level 1
	require.Equal(t, 8, out.Entry.Start)
	require.Equal(t, 1, *out.Entry.ProcessID)

	_, err = sim.RunToCompletion()
	require.NoError(t, err)

	expected := []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 1, 1}
	require.Equal(t, expected, traceIDs(sim.Trace()))

	results := sim.CompletedResults()
	p1 := resultByID(t, results, 1)
	p2 := resultByID(t, results, 2)
	require.Equal(t, 14, p1.CompletedTime)
	require.Equal(t, 2, p1.WaitingTime)
	require.Equal(t, 12, p2.CompletedTime)
	require.Equal(t, 10, p2.WaitingTime)
	require.Equal(t, 1, p2.FinalPriority)
	require.Equal(t, 2, sim.Metrics().Promotions)
}

func TestProcess_WaitMeasures(t *testing.T) {
	cfg := SimConfig{Quantum: 2, AgingThreshold: 4, DecayThreshold: 100}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 12, Priority: 1},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 2, Priority: 3},
	)

	// P2 is promoted at t=4 and has not run yet
	stepN(t, sim, 5)
	require.Equal(t, 5, sim.Clock())

	var p2 *Process
	for _, level := range sim.Queues() {
		for i := range level.Processes {
			if level.Processes[i].ID == 2 {
				p2 = &level.Processes[i]
			}
		}
	}
	require.NotNil(t, p2)
	require.Equal(t, 5, p2.SinceLastRun(sim.Clock()))
	require.Equal(t, 1, p2.AgingWait(sim.Clock()))

	// Without a promotion both measures agree
	fresh := newProcess(ProcessDescriptor{ID: 3, ArrivalTime: 2, BurstTime: 1, Priority: 2})
	require.Equal(t, 3, fresh.SinceLastRun(5))
	require.Equal(t, 3, fresh.AgingWait(5))
	ran := 4
	fresh.LastExecutedAt = &ran
	require.Equal(t, 1, fresh.SinceLastRun(5))
}

func TestSimulator_AgingStopsAtMinPriority(t *testing.T) {
	cfg := SimConfig{Quantum: 20, AgingThreshold: 1, DecayThreshold: 100}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 10, Priority: 1},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 1, Priority: 2},
	)

	for !sim.IsFinished() {
		_, err := sim.Step()
		require.NoError(t, err)
		for _, level := range sim.Queues() {
			require.GreaterOrEqual(t, level.Priority, MinPriority)
			for _, p := range level.Processes {
				require.GreaterOrEqual(t, p.Priority, MinPriority)
			}
		}
	}
	// Promoted once (2 -> 1) at t=1, never below 1 after
	require.Equal(t, 1, sim.Metrics().Promotions)
	require.Equal(t, 1, resultByID(t, sim.CompletedResults(), 2).FinalPriority)
}

// With a quantum larger than the decay threshold the process is demoted once
// per requeue, not once per threshold multiple.
// Slices: [0,10) demote 1->2, [10,20) demote 2->3, [20,25) completes.
func TestSimulator_DecayOncePerQuantumExpiry(t *testing.T) {
	cfg := SimConfig{Quantum: 10, AgingThreshold: 100, DecayThreshold: 3}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 25, Priority: 1},
	)

	outcomes := stepN(t, sim, 10)
	for _, out := range outcomes[:9] {
		require.Nil(t, out.Demotion)
		require.Equal(t, TickExecute, out.Kind)
	}
	last := outcomes[9]
	require.Equal(t, TickRequeue, last.Kind)
	require.Equal(t, &PriorityChange{ProcessID: 1, From: 1, To: 2}, last.Demotion)
	_, running := sim.Running()
	require.False(t, running)
	require.Equal(t, 2, queuedPriority(sim, 1))

	outcomes = stepN(t, sim, 10)
	require.Equal(t, &PriorityChange{ProcessID: 1, From: 2, To: 3}, outcomes[9].Demotion)

	_, err := sim.RunToCompletion()
	require.NoError(t, err)
	r := sim.CompletedResults()[0]
	require.Equal(t, 25, r.CompletedTime)
	require.Equal(t, 3, r.FinalPriority)
	require.Equal(t, 2, sim.Metrics().Demotions)
}

// Consecutive processed time carries over between dispatches until a decay.
// Requeues at t=2,4,6,8 with 2,4,6,2 consecutive units: only the third decays.
func TestSimulator_DecayAccumulatesAcrossDispatches(t *testing.T) {
	cfg := SimConfig{Quantum: 2, AgingThreshold: 100, DecayThreshold: 5}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 10, Priority: 1},
	)

	var demotions []int
	for !sim.IsFinished() {
		out, err := sim.Step()
		require.NoError(t, err)
		if out.Demotion != nil {
			demotions = append(demotions, out.Time)
		}
	}
	require.Equal(t, []int{5}, demotions)
	require.Equal(t, 2, sim.CompletedResults()[0].FinalPriority)
}

func TestSimulator_CompletionTakesPrecedenceOverDecay(t *testing.T) {
	cfg := SimConfig{Quantum: 4, AgingThreshold: 100, DecayThreshold: 4}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 4, Priority: 1},
	)
	outcomes := stepN(t, sim, 4)
	require.Equal(t, TickComplete, outcomes[3].Kind)
	require.Nil(t, outcomes[3].Demotion)
	require.Equal(t, 1, sim.CompletedResults()[0].FinalPriority)
}

func TestSimulator_PreemptionModes(t *testing.T) {
	procs := []ProcessDescriptor{
		{ID: 1, ArrivalTime: 0, BurstTime: 6, Priority: 2},
		{ID: 2, ArrivalTime: 2, BurstTime: 2, Priority: 1},
	}

	tests := []struct {
		name      string
		mode      PreemptionMode
		trace     []int
		p1Waiting int
		p2Waiting int
		preempted int
	}{
		{
			name:      "none: P1 finishes its slice",
			mode:      PreemptionNone,
			trace:     []int{1, 1, 1, 1, 2, 2, 1, 1},
			p1Waiting: 2,
			p2Waiting: 2,
		},
		{
			name:      "arrival: P2 interrupts P1 at t=2",
			mode:      PreemptionArrival,
			trace:     []int{1, 1, 2, 2, 1, 1, 1, 1},
			p1Waiting: 2,
			p2Waiting: 0,
			preempted: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SimConfig{Quantum: 4, AgingThreshold: 100, DecayThreshold: 100, Preemption: tt.mode}
			sim := newTestSimulator(t, cfg, procs...)

			var preemptedAt []int
			for !sim.IsFinished() {
				out, err := sim.Step()
				require.NoError(t, err)
				if out.PreemptedID != nil {
					require.Equal(t, 1, *out.PreemptedID)
					preemptedAt = append(preemptedAt, out.Time)
				}
			}

			require.Equal(t, tt.trace, traceIDs(sim.Trace()))
			results := sim.CompletedResults()
			require.Equal(t, tt.p1Waiting, resultByID(t, results, 1).WaitingTime)
			require.Equal(t, tt.p2Waiting, resultByID(t, results, 2).WaitingTime)
			require.Equal(t, tt.preempted, sim.Metrics().Preemptions)
			if tt.preempted > 0 {
				require.Equal(t, []int{2}, preemptedAt)
			}
		})
	}
}

func TestSimulator_AdmissionOrderIsStable(t *testing.T) {
	cfg := SimConfig{Quantum: 1, AgingThreshold: 100, DecayThreshold: 100}
	sim := newTestSimulator(t, cfg,
		ProcessDescriptor{ID: 3, ArrivalTime: 0, BurstTime: 1, Priority: 1},
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 1, Priority: 1},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 1, Priority: 1},
	)

	out, err := sim.Step()
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 2}, out.Admitted)

	_, err = sim.RunToCompletion()
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 2}, traceIDs(sim.Trace()))

	// Results are reported by id regardless of completion order
	results := sim.CompletedResults()
	require.Equal(t, 1, results[0].ID)
	require.Equal(t, 2, results[1].ID)
	require.Equal(t, 3, results[2].ID)
}

func TestSimulator_StepAfterFinishFails(t *testing.T) {
	sim := newTestSimulator(t, DefaultConfig(),
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 1, Priority: 1},
	)
	_, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.True(t, sim.IsFinished())

	clock := sim.Clock()
	traceLen := len(sim.Trace())
	_, err = sim.Step()
	require.ErrorIs(t, err, ErrSimulationFinished)
	require.Equal(t, clock, sim.Clock())
	require.Len(t, sim.Trace(), traceLen)

	// RunToCompletion on a finished simulation is a no-op
	trace, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.Len(t, trace, traceLen)
}

func TestSimulator_AggregateStatsNoData(t *testing.T) {
	sim := newTestSimulator(t, DefaultConfig(),
		ProcessDescriptor{ID: 1, ArrivalTime: 2, BurstTime: 3, Priority: 1},
	)
	_, err := sim.AggregateStats()
	require.ErrorIs(t, err, ErrNoData)

	stepN(t, sim, 4)
	_, err = sim.AggregateStats()
	require.ErrorIs(t, err, ErrNoData)
	require.Nil(t, sim.Report().Stats)

	stepN(t, sim, 1)
	stats, err := sim.AggregateStats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Completed)
}

func TestNewSimulator_RejectsInvalidInput(t *testing.T) {
	valid := ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 1, Priority: 1}

	tests := []struct {
		name  string
		procs []ProcessDescriptor
		cfg   SimConfig
	}{
		{"no processes", nil, DefaultConfig()},
		{"zero id", []ProcessDescriptor{{ID: 0, BurstTime: 1, Priority: 1}}, DefaultConfig()},
		{"negative id", []ProcessDescriptor{{ID: -2, BurstTime: 1, Priority: 1}}, DefaultConfig()},
		{"duplicate id", []ProcessDescriptor{valid, valid}, DefaultConfig()},
		{"negative arrival", []ProcessDescriptor{{ID: 1, ArrivalTime: -1, BurstTime: 1, Priority: 1}}, DefaultConfig()},
		{"zero burst", []ProcessDescriptor{{ID: 1, BurstTime: 0, Priority: 1}}, DefaultConfig()},
		{"zero priority", []ProcessDescriptor{{ID: 1, BurstTime: 1, Priority: 0}}, DefaultConfig()},
		{"zero quantum", []ProcessDescriptor{valid}, SimConfig{Quantum: 0, AgingThreshold: 1, DecayThreshold: 1}},
		{"negative aging", []ProcessDescriptor{valid}, SimConfig{Quantum: 1, AgingThreshold: -1, DecayThreshold: 1}},
		{"zero decay", []ProcessDescriptor{valid}, SimConfig{Quantum: 1, AgingThreshold: 1, DecayThreshold: 0}},
		{"bad preemption", []ProcessDescriptor{valid}, SimConfig{Quantum: 1, AgingThreshold: 1, DecayThreshold: 1, Preemption: PreemptionMode(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := NewSimulator(tt.procs, tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Nil(t, sim)
		})
	}
}

func TestNewSimulator_CopiesDescriptors(t *testing.T) {
	procs := []ProcessDescriptor{{ID: 1, ArrivalTime: 0, BurstTime: 2, Priority: 1}}
	sim := newTestSimulator(t, DefaultConfig(), procs...)
	procs[0].BurstTime = 50

	_, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.Equal(t, 2, sim.Clock())
	require.Equal(t, 2, sim.Descriptors()[0].BurstTime)
}

func TestSimulator_ResetReplaysIdentically(t *testing.T) {
	w := DefaultWorkload()
	sim := newTestSimulator(t, w.Config, w.Processes...)

	first, err := sim.RunToCompletion()
	require.NoError(t, err)
	firstResults := sim.CompletedResults()

	sim.Reset()
	require.Equal(t, 0, sim.Clock())
	require.Empty(t, sim.Trace())
	require.Len(t, sim.Pending(), len(w.Processes))
	require.False(t, sim.IsFinished())
	require.Equal(t, 0, sim.Metrics().BusyTicks)

	second, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, firstResults, sim.CompletedResults())
}

func TestSimulator_UpdateConfigMidRun(t *testing.T) {
	sim := newTestSimulator(t, SimConfig{Quantum: 4, AgingThreshold: 100, DecayThreshold: 100},
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 6, Priority: 1},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 6, Priority: 1},
	)
	var logs []string
	sim.LogEvent = func(msg string) { logs = append(logs, msg) }

	stepN(t, sim, 1)
	require.Equal(t, 3, sim.QuantumRemaining())

	err := sim.UpdateConfig(SimConfig{Quantum: 1, AgingThreshold: 100, DecayThreshold: 100})
	require.NoError(t, err)
	require.Contains(t, logs, "[CONFIG] quantum changed: 4 -> 1 (t=1)")

	// Current slice keeps its length, next dispatch uses the new quantum
	stepN(t, sim, 3)
	require.Equal(t, []int{1, 1, 1, 1}, traceIDs(sim.Trace()))
	out, err := sim.Step()
	require.NoError(t, err)
	require.True(t, out.Dispatched)
	require.Equal(t, TickRequeue, out.Kind)
	require.Equal(t, 2, *out.Entry.ProcessID)

	err = sim.UpdateConfig(SimConfig{Quantum: 0, AgingThreshold: 1, DecayThreshold: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Equal(t, 1, sim.Config().Quantum)
}

func TestSimulator_StepUntil(t *testing.T) {
	w := DefaultWorkload()
	sim := newTestSimulator(t, w.Config, w.Processes...)

	require.Equal(t, 10, sim.StepUntil(10))
	require.Len(t, sim.Trace(), 10)

	end := sim.StepUntil(1 << 20)
	require.True(t, sim.IsFinished())
	require.Equal(t, sim.Clock(), end)
}

func TestSimulator_LogEvents(t *testing.T) {
	sim := newTestSimulator(t, SimConfig{Quantum: 2, AgingThreshold: 100, DecayThreshold: 100},
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 2, Priority: 1},
	)
	var logs []string
	sim.LogEvent = func(msg string) { logs = append(logs, msg) }

	_, err := sim.RunToCompletion()
	require.NoError(t, err)
	require.Equal(t, []string{
		"[t=0] P1 arrived (priority 1, burst 2)",
		"[t=0] P1 dispatched (priority 1, slice 2)",
		"[t=2] P1 completed (turnaround 2, waiting 0)",
		"[t=2] all 1 processes completed",
	}, logs)
}

func TestSimulator_StateSnapshot(t *testing.T) {
	sim := newTestSimulator(t, SimConfig{Quantum: 3, AgingThreshold: 100, DecayThreshold: 100},
		ProcessDescriptor{ID: 1, ArrivalTime: 0, BurstTime: 4, Priority: 2},
		ProcessDescriptor{ID: 2, ArrivalTime: 0, BurstTime: 4, Priority: 1},
		ProcessDescriptor{ID: 3, ArrivalTime: 9, BurstTime: 1, Priority: 1},
	)
	stepN(t, sim, 1)

	running, ok := sim.Running()
	require.True(t, ok)
	require.Equal(t, 2, running.ID)
	require.Equal(t, 3, running.RemainingBurst)
	require.NotNil(t, running.LastExecutedAt)
	require.Equal(t, 0, *running.LastExecutedAt)

	// Mutating the snapshot does not reach the engine
	running.RemainingBurst = 100
	*running.LastExecutedAt = 50
	again, _ := sim.Running()
	require.Equal(t, 3, again.RemainingBurst)
	require.Equal(t, 0, *again.LastExecutedAt)

	queues := sim.Queues()
	require.Len(t, queues, 1)
	require.Equal(t, 2, queues[0].Priority)
	require.Equal(t, 1, queues[0].Processes[0].ID)
	require.Nil(t, queues[0].Processes[0].LastExecutedAt)

	state := sim.State()
	require.Equal(t, 1, state["clock"])
	require.Equal(t, false, state["finished"])
	require.Equal(t, 2, state["quantumRemaining"])
	require.Len(t, state["pending"], 1)
}
