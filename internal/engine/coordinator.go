// Package engine schedules recomputation passes per document. Edits are
// debounced into a single trailing pass; configuration, visibility and file
// watch events recompute immediately. Each pass carries a monotonically
// increasing per-document counter; a completed pass is applied only while no
// newer pass has started, and an applied plan is never overwritten by an
// older pass that finishes late.
package engine

import (
	"sync"
	"time"

	"tagpeek/internal/render"
)

// ComputeFunc runs one recomputation pass for a document and returns its
// render plan. There is no cancellation; an overtaken pass simply has its
// result discarded.
type ComputeFunc func(uri string) (render.Plan, error)

// ApplyFunc hands a completed, non-stale plan to the render sink.
type ApplyFunc func(uri string, plan render.Plan)

type phase int

const (
	phaseIdle phase = iota
	phaseScheduled
	phaseComputing
)

type docState struct {
	phase    phase
	timer    *time.Timer
	started  uint64 // counter of the most recently started pass
	applied  uint64 // counter of the most recently applied pass
	inFlight int
	dirty    bool

	// applyMu serializes apply callbacks for this document so a slow older
	// pass cannot deliver after a newer one.
	applyMu sync.Mutex
}

// Coordinator owns the per-document scheduling state.
type Coordinator struct {
	mu       sync.Mutex
	docs     map[string]*docState
	debounce time.Duration
	compute  ComputeFunc
	apply    ApplyFunc
	closed   bool
}

func NewCoordinator(debounce time.Duration, compute ComputeFunc, apply ApplyFunc) *Coordinator {
	return &Coordinator{
		docs:     make(map[string]*docState),
		debounce: debounce,
		compute:  compute,
		apply:    apply,
	}
}

// SetDebounce changes the debounce window for subsequent schedules.
func (c *Coordinator) SetDebounce(d time.Duration) {
	c.mu.Lock()
	c.debounce = d
	c.mu.Unlock()
}

// Schedule requests a debounced recomputation, collapsing bursts of edit
// events into one trailing pass. A request while a pass is computing marks
// the document for an immediate re-run once the pass finishes.
func (c *Coordinator) Schedule(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	ds := c.stateLocked(uri)
	switch ds.phase {
	case phaseIdle:
		ds.phase = phaseScheduled
		ds.timer = time.AfterFunc(c.debounce, func() { c.fire(uri, ds) })
	case phaseScheduled:
		ds.timer.Reset(c.debounce)
	case phaseComputing:
		ds.dirty = true
	}
}

// ScheduleNow bypasses debouncing. If a pass is already computing, a new one
// starts anyway and overtakes it; the stale pass's result is discarded at
// completion by the counter check.
func (c *Coordinator) ScheduleNow(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	ds := c.stateLocked(uri)
	if ds.phase == phaseScheduled && ds.timer != nil {
		ds.timer.Stop()
	}
	c.startLocked(uri, ds)
}

// Forget drops all scheduling state for a document. A pass still in flight
// for it will find its state gone and discard its result.
func (c *Coordinator) Forget(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ds, ok := c.docs[uri]
	if !ok {
		return
	}
	if ds.timer != nil {
		ds.timer.Stop()
	}
	delete(c.docs, uri)
}

// Close stops all pending timers. In-flight passes finish and are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for uri, ds := range c.docs {
		if ds.timer != nil {
			ds.timer.Stop()
		}
		delete(c.docs, uri)
	}
}

func (c *Coordinator) stateLocked(uri string) *docState {
	ds, ok := c.docs[uri]
	if !ok {
		ds = &docState{}
		c.docs[uri] = ds
	}
	return ds
}

// fire is the debounce timer callback.
func (c *Coordinator) fire(uri string, ds *docState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.docs[uri] != ds || ds.phase != phaseScheduled {
		return
	}
	c.startLocked(uri, ds)
}

func (c *Coordinator) startLocked(uri string, ds *docState) {
	ds.phase = phaseComputing
	ds.inFlight++
	ds.started++
	seq := ds.started
	go c.runPass(uri, ds, seq)
}

func (c *Coordinator) runPass(uri string, ds *docState, seq uint64) {
	plan, err := c.compute(uri)

	ds.applyMu.Lock()
	c.mu.Lock()
	live := !c.closed && c.docs[uri] == ds
	// Discard when a newer pass has started, or when a newer result is
	// already applied. Not an error, just consistency.
	deliver := live && err == nil && seq >= ds.started && seq > ds.applied
	if deliver {
		ds.applied = seq
	}
	c.mu.Unlock()

	if deliver {
		c.apply(uri, plan)
	}
	ds.applyMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !live || c.docs[uri] != ds {
		return
	}
	ds.inFlight--
	if ds.inFlight > 0 {
		return
	}
	if ds.dirty {
		ds.dirty = false
		c.startLocked(uri, ds)
		return
	}
	ds.phase = phaseIdle
}
