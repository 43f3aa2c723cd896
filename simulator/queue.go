package simulator

import (
	"container/heap"
	"sort"
)

// ReadyQueues is the priority queue set: one FIFO per priority level plus a
// min-heap of the levels that currently hold at least one process.
// A level is in the heap if and only if its FIFO is non-empty.
type ReadyQueues struct {
	fifos  map[int][]*Process
	levels levelHeap
	size   int
}

// QueueLevel is a read-only snapshot of one priority level
type QueueLevel struct {
	Priority  int       `json:"priority"`
	Processes []Process `json:"processes"`
}

// NewReadyQueues creates an empty queue set
func NewReadyQueues() *ReadyQueues {
	q := &ReadyQueues{
		fifos:  make(map[int][]*Process),
		levels: make(levelHeap, 0),
	}
	heap.Init(&q.levels)
	return q
}

// Enqueue appends p to the tail of the level matching its current priority
func (q *ReadyQueues) Enqueue(p *Process) {
	fifo, ok := q.fifos[p.Priority]
	if !ok {
		heap.Push(&q.levels, p.Priority)
	}
	q.fifos[p.Priority] = append(fifo, p)
	q.size++
}

// HighestPriority returns the numerically lowest non-empty level
func (q *ReadyQueues) HighestPriority() (int, bool) {
	if q.IsEmpty() {
		return 0, false
	}
	return q.levels[0], true
}

// PopHighest removes and returns the head of the highest priority level.
// Returns nil if every level is empty.
func (q *ReadyQueues) PopHighest() *Process {
	level, ok := q.HighestPriority()
	if !ok {
		return nil
	}
	fifo := q.fifos[level]
	p := fifo[0]
	fifo[0] = nil
	q.setLevel(level, fifo[1:])
	q.size--
	return p
}

// Remove takes the process with the given id out of whichever level holds it
func (q *ReadyQueues) Remove(id int) *Process {
	for level, fifo := range q.fifos {
		for i, p := range fifo {
			if p.ID != id {
				continue
			}
			rest := make([]*Process, 0, len(fifo)-1)
			rest = append(rest, fifo[:i]...)
			rest = append(rest, fifo[i+1:]...)
			q.setLevel(level, rest)
			q.size--
			return p
		}
	}
	return nil
}

// setLevel replaces a level's FIFO, dropping the level when it becomes empty
func (q *ReadyQueues) setLevel(level int, fifo []*Process) {
	if len(fifo) > 0 {
		q.fifos[level] = fifo
		return
	}
	delete(q.fifos, level)
	for i, l := range q.levels {
		if l == level {
			heap.Remove(&q.levels, i)
			return
		}
	}
}

// Queued returns every queued process, levels ascending, FIFO order within a level.
// The returned slice is a snapshot; mutating the queue set does not affect it.
func (q *ReadyQueues) Queued() []*Process {
	out := make([]*Process, 0, q.size)
	for _, level := range q.sortedLevels() {
		out = append(out, q.fifos[level]...)
	}
	return out
}

// Levels returns a copy of every non-empty level for display
func (q *ReadyQueues) Levels() []QueueLevel {
	levels := q.sortedLevels()
	out := make([]QueueLevel, 0, len(levels))
	for _, level := range levels {
		fifo := q.fifos[level]
		procs := make([]Process, len(fifo))
		for i, p := range fifo {
			procs[i] = p.Clone()
		}
		out = append(out, QueueLevel{Priority: level, Processes: procs})
	}
	return out
}

// Depths returns the number of queued processes per level
func (q *ReadyQueues) Depths() map[int]int {
	depths := make(map[int]int, len(q.fifos))
	for level, fifo := range q.fifos {
		depths[level] = len(fifo)
	}
	return depths
}

func (q *ReadyQueues) sortedLevels() []int {
	levels := make([]int, len(q.levels))
	copy(levels, q.levels)
	sort.Ints(levels)
	return levels
}

// Len returns the total number of queued processes
func (q *ReadyQueues) Len() int {
	return q.size
}

// IsEmpty returns true if no level holds a process
func (q *ReadyQueues) IsEmpty() bool {
	return q.size == 0
}

// Clear removes all processes from every level
func (q *ReadyQueues) Clear() {
	q.fifos = make(map[int][]*Process)
	q.levels = make(levelHeap, 0)
	heap.Init(&q.levels)
	q.size = 0
}

// levelHeap implements heap.Interface over priority levels
type levelHeap []int

func (h levelHeap) Len() int           { return len(h) }
func (h levelHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h levelHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *levelHeap) Push(x interface{}) {
	*h = append(*h, x.(int))
}

func (h *levelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
