package simulator

import "fmt"

// MinPriority is the highest priority level; aging never promotes past it.
const MinPriority = 1

// ProcessDescriptor is the validated input for one process
type ProcessDescriptor struct {
	ID          int `json:"id" yaml:"id"`
	ArrivalTime int `json:"arrivalTime" yaml:"arrival"`
	BurstTime   int `json:"burstTime" yaml:"burst"`
	Priority    int `json:"priority" yaml:"priority"`
}

// Process is the mutable simulation state of one process.
// Lower Priority value means higher priority.
type Process struct {
	ID                   int  `json:"id"`
	ArrivalTime          int  `json:"arrivalTime"`
	RemainingBurst       int  `json:"remainingBurst"`
	OriginalBurst        int  `json:"originalBurst"`
	Priority             int  `json:"priority"`
	LastExecutedAt       *int `json:"lastExecutedAt"` // nil until first execution
	ConsecutiveProcessed int  `json:"consecutiveProcessed"`

	// Set once RemainingBurst reaches zero
	CompletedTime  int `json:"completedTime,omitempty"`
	TurnaroundTime int `json:"turnaroundTime,omitempty"`
	WaitingTime    int `json:"waitingTime,omitempty"`

	Dispatches int `json:"dispatches"`
	Promotions int `json:"promotions"`
	Demotions  int `json:"demotions"`

	agedAt int  // clock of the most recent promotion
	aged   bool // agedAt is meaningful
}

func newProcess(d ProcessDescriptor) *Process {
	return &Process{
		ID:             d.ID,
		ArrivalTime:    d.ArrivalTime,
		RemainingBurst: d.BurstTime,
		OriginalBurst:  d.BurstTime,
		Priority:       d.Priority,
	}
}

// lastRunBasis is the last executed tick, or the arrival time if the process
// never ran
func (p *Process) lastRunBasis() int {
	if p.LastExecutedAt != nil {
		return *p.LastExecutedAt
	}
	return p.ArrivalTime
}

// SinceLastRun returns how long the process has gone without the CPU at clock
func (p *Process) SinceLastRun(clock int) int {
	return clock - p.lastRunBasis()
}

// AgingWait returns the wait compared against the aging threshold at clock.
// It is SinceLastRun, restarted at the last promotion.
func (p *Process) AgingWait(clock int) int {
	return clock - p.waitBasis()
}

// waitBasis is the instant the aging wait is measured from: the last run basis
// moved forward to the last promotion so a promoted process has to wait a full
// threshold again before the next promotion.
func (p *Process) waitBasis() int {
	basis := p.lastRunBasis()
	if p.aged && p.agedAt > basis {
		basis = p.agedAt
	}
	return basis
}

// Executed returns how many units of CPU time the process has received
func (p *Process) Executed() int {
	return p.OriginalBurst - p.RemainingBurst
}

// IsComplete returns true once the process needs no more CPU time
func (p *Process) IsComplete() bool {
	return p.RemainingBurst == 0
}

// Clone returns a deep copy safe to hand to callers
func (p *Process) Clone() Process {
	c := *p
	if p.LastExecutedAt != nil {
		t := *p.LastExecutedAt
		c.LastExecutedAt = &t
	}
	return c
}

func (p *Process) String() string {
	return fmt.Sprintf("P%d(prio=%d, remaining=%d/%d)", p.ID, p.Priority, p.RemainingBurst, p.OriginalBurst)
}

// ValidateDescriptors checks every descriptor before anything is constructed
func ValidateDescriptors(procs []ProcessDescriptor) error {
	if len(procs) == 0 {
		return errInvalidConfig("at least one process is required")
	}
	seen := make(map[int]int, len(procs))
	for i, d := range procs {
		if d.ID <= 0 {
			return errInvalidConfig("process[%d]: id must be > 0, got %d", i, d.ID)
		}
		if prev, dup := seen[d.ID]; dup {
			return errInvalidConfig("process[%d]: duplicate id %d (first seen at process[%d])", i, d.ID, prev)
		}
		seen[d.ID] = i
		if d.ArrivalTime < 0 {
			return errInvalidConfig("process %d: arrivalTime must be >= 0, got %d", d.ID, d.ArrivalTime)
		}
		if d.BurstTime < 1 {
			return errInvalidConfig("process %d: burstTime must be >= 1, got %d", d.ID, d.BurstTime)
		}
		if d.Priority < MinPriority {
			return errInvalidConfig("process %d: priority must be >= %d, got %d", d.ID, MinPriority, d.Priority)
		}
	}
	return nil
}

// CompletedResult is the reporting view of a finished process
type CompletedResult struct {
	ID             int `json:"id"`
	ArrivalTime    int `json:"arrivalTime"`
	OriginalBurst  int `json:"originalBurst"`
	FinalPriority  int `json:"finalPriority"`
	CompletedTime  int `json:"completedTime"`
	WaitingTime    int `json:"waitingTime"`
	TurnaroundTime int `json:"turnaroundTime"`
}
