package simulator

// AggregateStats summarises the completed set. Values are full precision;
// rounding for display is left to the caller.
type AggregateStats struct {
	AvgWaiting    float64 `json:"avgWaiting"`
	AvgTurnaround float64 `json:"avgTurnaround"`
	Throughput    float64 `json:"throughput"` // completed / latest completion time
	Completed     int     `json:"completed"`
	Makespan      int     `json:"makespan"` // latest completion time
}

// computeAggregateStats is the results aggregator. It returns ErrNoData for an
// empty completed set.
func computeAggregateStats(completed []*Process) (AggregateStats, error) {
	if len(completed) == 0 {
		return AggregateStats{}, errNoData()
	}
	totalWaiting, totalTurnaround, maxComplete := 0, 0, 0
	for _, p := range completed {
		totalWaiting += p.WaitingTime
		totalTurnaround += p.TurnaroundTime
		if p.CompletedTime > maxComplete {
			maxComplete = p.CompletedTime
		}
	}
	n := float64(len(completed))
	stats := AggregateStats{
		AvgWaiting:    float64(totalWaiting) / n,
		AvgTurnaround: float64(totalTurnaround) / n,
		Completed:     len(completed),
		Makespan:      maxComplete,
	}
	// Completion always happens after at least one executed tick, so
	// maxComplete >= 1 here.
	stats.Throughput = n / float64(maxComplete)
	return stats, nil
}

// Metrics tracks scheduler activity for incremental display
type Metrics struct {
	Timestamp int `json:"timestamp"` // Clock after the latest tick

	// Cumulative counters
	BusyTicks       int `json:"busyTicks"`
	IdleTicks       int `json:"idleTicks"`
	Dispatches      int `json:"dispatches"`      // Selections of a process from the ready queues
	ContextSwitches int `json:"contextSwitches"` // Dispatches of a different process than the one that ran last
	Promotions      int `json:"promotions"`      // Aging moves
	Demotions       int `json:"demotions"`       // Decay moves
	Preemptions     int `json:"preemptions"`     // Mid-quantum interruptions (arrival preemption only)

	// Current state
	CPUUtilizationPercent float64     `json:"cpuUtilizationPercent"`
	QueuedCount           int         `json:"queuedCount"`
	PendingCount          int         `json:"pendingCount"`
	CompletedCount        int         `json:"completedCount"`
	MaxQueueDepth         int         `json:"maxQueueDepth"` // Peak total queued processes seen
	PerLevelQueueDepth    map[int]int `json:"perLevelQueueDepth"`
	RunningID             *int        `json:"runningId"`

	// Running aggregates over the completed set, valid when CompletedCount > 0
	AvgWaiting    float64 `json:"avgWaiting"`
	AvgTurnaround float64 `json:"avgTurnaround"`
	Throughput    float64 `json:"throughput"`

	lastRunID *int // process that executed the most recent busy tick
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		PerLevelQueueDepth: make(map[int]int),
	}
}

// RecordDispatch counts a new dispatch and whether it switched processes
func (m *Metrics) RecordDispatch(id int) {
	m.Dispatches++
	if m.lastRunID == nil || *m.lastRunID != id {
		m.ContextSwitches++
	}
}

// RecordExecution counts one busy tick for the given process
func (m *Metrics) RecordExecution(id int) {
	m.BusyTicks++
	m.lastRunID = &id
}

// RecordIdle counts one idle tick
func (m *Metrics) RecordIdle() {
	m.IdleTicks++
}

// Update refreshes the state gauges after a tick
func (m *Metrics) Update(clock int, queues *ReadyQueues, pending int, running *Process, completed []*Process) {
	m.Timestamp = clock
	if clock > 0 {
		m.CPUUtilizationPercent = float64(m.BusyTicks) / float64(clock) * 100.0
	}
	m.QueuedCount = queues.Len()
	if m.QueuedCount > m.MaxQueueDepth {
		m.MaxQueueDepth = m.QueuedCount
	}
	m.PerLevelQueueDepth = queues.Depths()
	m.PendingCount = pending
	m.CompletedCount = len(completed)
	m.RunningID = nil
	if running != nil {
		id := running.ID
		m.RunningID = &id
	}
	if stats, err := computeAggregateStats(completed); err == nil {
		m.AvgWaiting = stats.AvgWaiting
		m.AvgTurnaround = stats.AvgTurnaround
		m.Throughput = stats.Throughput
	}
}

// Clone returns a deep copy of the metrics
func (m *Metrics) Clone() *Metrics {
	c := *m
	c.PerLevelQueueDepth = make(map[int]int, len(m.PerLevelQueueDepth))
	for level, depth := range m.PerLevelQueueDepth {
		c.PerLevelQueueDepth[level] = depth
	}
	if m.RunningID != nil {
		id := *m.RunningID
		c.RunningID = &id
	}
	if m.lastRunID != nil {
		id := *m.lastRunID
		c.lastRunID = &id
	}
	return &c
}
