package simulator

import (
	"encoding/json"
	"fmt"
)

// TickKind classifies what happened during one tick
type TickKind int

const (
	TickIdle     TickKind = iota // No process was ready
	TickExecute                  // A process ran one unit and keeps the CPU
	TickRequeue                  // A process ran the last unit of its quantum and went back to a queue
	TickComplete                 // A process ran its last unit
)

func (tk TickKind) String() string {
	switch tk {
	case TickIdle:
		return "idle"
	case TickExecute:
		return "execute"
	case TickRequeue:
		return "requeue"
	case TickComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for TickKind
func (tk TickKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(tk.String())
}

// UnmarshalJSON implements json.Unmarshaler for TickKind
func (tk *TickKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, k := range []TickKind{TickIdle, TickExecute, TickRequeue, TickComplete} {
		if k.String() == s {
			*tk = k
			return nil
		}
	}
	return fmt.Errorf("invalid tick kind: %s", s)
}

// TraceEntry records which process occupied the CPU starting at Start.
// A nil ProcessID means the CPU was idle.
type TraceEntry struct {
	ProcessID *int `json:"processId"`
	Start     int  `json:"start"`
	Duration  int  `json:"duration"`
}

func idleEntry(start int) TraceEntry {
	return TraceEntry{Start: start, Duration: 1}
}

func runEntry(id, start int) TraceEntry {
	return TraceEntry{ProcessID: &id, Start: start, Duration: 1}
}

// IsIdle returns true if no process ran during the entry
func (e TraceEntry) IsIdle() bool {
	return e.ProcessID == nil
}

func (e TraceEntry) String() string {
	if e.IsIdle() {
		return fmt.Sprintf("idle[%d,%d)", e.Start, e.Start+e.Duration)
	}
	return fmt.Sprintf("P%d[%d,%d)", *e.ProcessID, e.Start, e.Start+e.Duration)
}

func sameProcess(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CoalesceTrace merges adjacent entries of the same process (or adjacent idle
// entries) into Gantt blocks. The input is not modified.
func CoalesceTrace(trace []TraceEntry) []TraceEntry {
	blocks := make([]TraceEntry, 0)
	for _, e := range trace {
		if n := len(blocks); n > 0 && sameProcess(blocks[n-1].ProcessID, e.ProcessID) &&
			blocks[n-1].Start+blocks[n-1].Duration == e.Start {
			blocks[n-1].Duration += e.Duration
			continue
		}
		block := e
		if e.ProcessID != nil {
			id := *e.ProcessID
			block.ProcessID = &id
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// PriorityChange records an aging promotion or a decay demotion
type PriorityChange struct {
	ProcessID int `json:"processId"`
	From      int `json:"from"`
	To        int `json:"to"`
}

// TickOutcome describes one call to Step
type TickOutcome struct {
	Kind        TickKind         `json:"kind"`
	Time        int              `json:"time"`                  // Clock value the tick started at
	Entry       TraceEntry       `json:"entry"`                 // Trace entry emitted by this tick
	Admitted    []int            `json:"admitted,omitempty"`    // Processes that arrived this tick
	Promotions  []PriorityChange `json:"promotions,omitempty"`  // Aging moves applied before selection
	Demotion    *PriorityChange  `json:"demotion,omitempty"`    // Decay applied on quantum exhaustion
	PreemptedID *int             `json:"preemptedId,omitempty"` // Process interrupted mid-quantum (arrival preemption only)
	Dispatched  bool             `json:"dispatched"`            // A new dispatch started this tick
	Completed   *CompletedResult `json:"completed,omitempty"`
}

func (o TickOutcome) String() string {
	return fmt.Sprintf("Tick(t=%d, %s, %s)", o.Time, o.Kind, o.Entry)
}
