package simulator

// Per-tick stages. Each one mutates simulator state directly and is only
// called from Step, so the tick stays atomic from the caller's point of view.

// admitArrivals moves every pending process whose arrival time has been
// reached into the ready queues. Pending keeps descriptor order, so processes
// arriving in the same tick are admitted in the order they were given.
func (s *Simulator) admitArrivals() []int {
	var admitted []int
	stillPending := make([]*Process, 0, len(s.pending))
	for _, p := range s.pending {
		if p.ArrivalTime > s.clock {
			stillPending = append(stillPending, p)
			continue
		}
		s.queues.Enqueue(p)
		admitted = append(admitted, p.ID)
		s.logEvent("[t=%d] P%d arrived (priority %d, burst %d)", s.clock, p.ID, p.Priority, p.OriginalBurst)
	}
	s.pending = stillPending
	return admitted
}

// applyAging promotes queued processes that have waited at least
// AgingThreshold units. It walks a snapshot of the queues (levels ascending,
// FIFO within a level), so a process moved in this pass is not visited again.
func (s *Simulator) applyAging() []PriorityChange {
	var changes []PriorityChange
	for _, p := range s.queues.Queued() {
		if p.Priority <= MinPriority {
			continue
		}
		if p.AgingWait(s.clock) < s.config.AgingThreshold {
			continue
		}
		s.queues.Remove(p.ID)
		from := p.Priority
		p.Priority--
		p.agedAt, p.aged = s.clock, true
		p.Promotions++
		s.queues.Enqueue(p)

		s.metrics.Promotions++
		changes = append(changes, PriorityChange{ProcessID: p.ID, From: from, To: p.Priority})
		s.logEvent("[t=%d] P%d aged: priority %d -> %d", s.clock, p.ID, from, p.Priority)
	}
	return changes
}

// preemptRunning interrupts the running process when a numerically lower
// level has a ready process. The rest of its slice is discarded and it goes
// to the tail of its own level without a decay check.
func (s *Simulator) preemptRunning() (int, bool) {
	if s.running == nil || s.quantumRemaining == 0 {
		return 0, false
	}
	level, ok := s.queues.HighestPriority()
	if !ok || level >= s.running.Priority {
		return 0, false
	}
	p := s.running
	s.running = nil
	s.quantumRemaining = 0
	s.queues.Enqueue(p)

	s.metrics.Preemptions++
	s.logEvent("[t=%d] P%d preempted by priority %d (was %d)", s.clock, p.ID, level, p.Priority)
	return p.ID, true
}

// dispatch makes p the running process with a fresh slice
func (s *Simulator) dispatch(p *Process) {
	s.running = p
	s.quantumRemaining = min(p.RemainingBurst, s.config.Quantum)
	p.Dispatches++
	s.metrics.RecordDispatch(p.ID)
	s.logEvent("[t=%d] P%d dispatched (priority %d, slice %d)", s.clock, p.ID, p.Priority, s.quantumRemaining)
}

// executeUnit runs p for one time unit and advances the clock
func (s *Simulator) executeUnit(p *Process) TraceEntry {
	entry := runEntry(p.ID, s.clock)
	p.RemainingBurst--
	p.ConsecutiveProcessed++
	s.quantumRemaining--
	executedAt := s.clock
	p.LastExecutedAt = &executedAt

	s.trace = append(s.trace, entry)
	s.metrics.RecordExecution(p.ID)
	s.clock++
	return entry
}

// idle records a tick with no ready process
func (s *Simulator) idle() TraceEntry {
	entry := idleEntry(s.clock)
	s.trace = append(s.trace, entry)
	s.metrics.RecordIdle()
	s.clock++
	return entry
}

// applyDecay demotes p by one level if it has processed DecayThreshold
// consecutive units since its last demotion.
func (s *Simulator) applyDecay(p *Process) *PriorityChange {
	if p.ConsecutiveProcessed < s.config.DecayThreshold {
		return nil
	}
	from := p.Priority
	p.Priority++
	p.ConsecutiveProcessed = 0
	p.Demotions++

	s.metrics.Demotions++
	s.logEvent("[t=%d] P%d decayed: priority %d -> %d", s.clock, p.ID, from, p.Priority)
	return &PriorityChange{ProcessID: p.ID, From: from, To: p.Priority}
}

// requeue returns the running process to the tail of its level
func (s *Simulator) requeue(p *Process) {
	s.queues.Enqueue(p)
	s.running = nil
	s.quantumRemaining = 0
}

// recordCompletion freezes the completion metrics of p. Must be called after
// the clock has advanced past its last unit.
func (s *Simulator) recordCompletion(p *Process) CompletedResult {
	p.CompletedTime = s.clock
	p.TurnaroundTime = p.CompletedTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.OriginalBurst
	s.completed = append(s.completed, p)
	s.running = nil
	s.quantumRemaining = 0

	s.logEvent("[t=%d] P%d completed (turnaround %d, waiting %d)", s.clock, p.ID, p.TurnaroundTime, p.WaitingTime)
	return resultOf(p)
}

func resultOf(p *Process) CompletedResult {
	return CompletedResult{
		ID:             p.ID,
		ArrivalTime:    p.ArrivalTime,
		OriginalBurst:  p.OriginalBurst,
		FinalPriority:  p.Priority,
		CompletedTime:  p.CompletedTime,
		WaitingTime:    p.WaitingTime,
		TurnaroundTime: p.TurnaroundTime,
	}
}
