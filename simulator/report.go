package simulator

// Workload is a complete simulation input: scheduling parameters plus the
// ordered process list. It is the on-disk format of workload files and the
// request body of the server's simulate endpoint.
type Workload struct {
	Config    SimConfig           `json:"config" yaml:"config"`
	Processes []ProcessDescriptor `json:"processes" yaml:"processes"`
}

// ApplyDefaults fills zero-valued scheduling parameters from DefaultConfig
func (w *Workload) ApplyDefaults() {
	def := DefaultConfig()
	if w.Config.Quantum == 0 {
		w.Config.Quantum = def.Quantum
	}
	if w.Config.AgingThreshold == 0 {
		w.Config.AgingThreshold = def.AgingThreshold
	}
	if w.Config.DecayThreshold == 0 {
		w.Config.DecayThreshold = def.DecayThreshold
	}
}

// Report is the full output of a simulation, complete or partial
type Report struct {
	Config   SimConfig         `json:"config"`
	Finished bool              `json:"finished"`
	Clock    int               `json:"clock"`
	Trace    []TraceEntry      `json:"trace"`
	Gantt    []TraceEntry      `json:"gantt"`
	Results  []CompletedResult `json:"results"`
	Stats    *AggregateStats   `json:"stats"` // nil until a process completes
	Metrics  *Metrics          `json:"metrics"`
}

// Report snapshots the current trace, results and statistics
func (s *Simulator) Report() *Report {
	r := &Report{
		Config:   s.config,
		Finished: s.IsFinished(),
		Clock:    s.clock,
		Trace:    s.Trace(),
		Gantt:    s.Gantt(),
		Results:  s.CompletedResults(),
		Metrics:  s.Metrics(),
	}
	if stats, err := s.AggregateStats(); err == nil {
		r.Stats = &stats
	}
	return r
}

// RunWorkload creates a simulator for w, runs it to completion and returns
// the report. logEvent may be nil.
func RunWorkload(w Workload, logEvent func(msg string)) (*Report, error) {
	sim, err := NewSimulator(w.Processes, w.Config)
	if err != nil {
		return nil, err
	}
	sim.LogEvent = logEvent
	if _, err := sim.RunToCompletion(); err != nil {
		return nil, err
	}
	return sim.Report(), nil
}

// DefaultWorkload returns the sample process set the scheduler ships with
func DefaultWorkload() Workload {
	return Workload{
		Config: DefaultConfig(),
		Processes: []ProcessDescriptor{
			{ID: 1, ArrivalTime: 1, BurstTime: 20, Priority: 3},
			{ID: 2, ArrivalTime: 3, BurstTime: 10, Priority: 2},
			{ID: 3, ArrivalTime: 5, BurstTime: 2, Priority: 1},
			{ID: 4, ArrivalTime: 8, BurstTime: 7, Priority: 2},
			{ID: 5, ArrivalTime: 11, BurstTime: 15, Priority: 3},
			{ID: 6, ArrivalTime: 15, BurstTime: 8, Priority: 2},
			{ID: 7, ArrivalTime: 20, BurstTime: 4, Priority: 1},
		},
	}
}
