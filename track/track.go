// Package track implements the timeline tracks of the time graph: the
// depth-indexed timer store each track owns, the projection of a visible
// time window onto world-space boxes and lines, and the classification
// policies that decide the color and label of individual timers.
//
// A track is fed from an ingestion goroutine through OnTimer while the
// rendering goroutine concurrently projects it. The only shared mutable
// state is the per-track map from depth to chain, guarded by one mutex held
// for map operations only; chains are append-only, so scans run without the
// lock (see Chain).
package track

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/atharwa-24/orbit/mem"
	"github.com/atharwa-24/orbit/trace"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Track is one visual lane of the time graph.
type Track interface {
	// OnTimer ingests one timer record. It is the sole mutator of a track
	// and safe to call concurrently with projection. It returns the stored
	// box, which stays valid for the life of the capture.
	OnTimer(t trace.Timer) *TimerBox
	// UpdatePrimitives projects the timers that fall into view onto
	// world-space primitives and hands them to sink.
	UpdatePrimitives(view View, rc *RenderContext, sink Batcher)
	Height() float32
	Label() string
	// Tooltip describes the track as a whole.
	Tooltip() string
	// BoxTooltip renders the tooltip for one drawn timer, "" if the timer
	// has none.
	BoxTooltip(rc *RenderContext, box *TimerBox) string

	Collapsed() bool
	SetCollapsed(collapsed bool)
	ToggleCollapsed()
	SetPos(x, y float32)

	NumTimers() int
	IsEmpty() bool
	MinTime() trace.Timestamp
	MaxTime() trace.Timestamp
	Depth() uint32

	// Timers returns a snapshot of the track's chains in ascending depth
	// order. The snapshot stays valid while ingestion continues; chains
	// only ever grow.
	Timers() []*Chain
	// TimersAtDepth returns the chain for one depth, nil if the track has
	// no timers there.
	TimersAtDepth(depth uint32) *Chain

	// GetFirstAfterTime returns the first timer at depth starting strictly
	// after t, GetFirstBeforeTime the last timer at depth starting at or
	// before t. Nil is a common, valid result for both.
	GetFirstAfterTime(t trace.Timestamp, depth uint32) *TimerBox
	GetFirstBeforeTime(t trace.Timestamp, depth uint32) *TimerBox
	// GetLeft, GetRight, GetUp and GetDown navigate from box to its
	// neighbors: left and right within the same depth in insertion order,
	// up and down across depths by start time. Nil means no neighbor.
	GetLeft(box *TimerBox) *TimerBox
	GetRight(box *TimerBox) *TimerBox
	GetUp(box *TimerBox) *TimerBox
	GetDown(box *TimerBox) *TimerBox
}

// base holds the state and behavior shared by all track kinds. Concrete
// tracks embed it and contribute their classification policy and layout
// quirks.
type base struct {
	mu     sync.RWMutex
	timers map[uint32]*Chain

	numTimers int
	minTime   trace.Timestamp
	maxTime   trace.Timestamp

	depth     atomic.Uint32
	collapsed atomic.Bool

	pos    [2]float32
	layout Layout
	policy Policy

	// Per-primitive user data handed out by the last projection pass,
	// recycled at the start of the next one. Only the rendering goroutine
	// touches these.
	udCache mem.AllocationCache[PickingUserData]
	udLive  []*PickingUserData
	// flatten selects how collapsing affects geometry: true draws all
	// timers in a single row at depth zero (GPU tracks), false keeps
	// per-depth rows but shrinks them to fit one row's height (thread
	// tracks).
	flatten bool
}

func (tr *base) init(layout Layout, policy Policy, flatten, collapsed bool) {
	tr.timers = map[uint32]*Chain{}
	tr.minTime = math.MaxInt64
	tr.maxTime = math.MinInt64
	tr.layout = layout
	tr.policy = policy
	tr.flatten = flatten
	tr.collapsed.Store(collapsed)
}

// insert appends t to the chain for its depth, creating the chain if
// needed, and widens the track's time bounds.
func (tr *base) insert(t trace.Timer) *TimerBox {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	chain := tr.timers[t.Depth]
	if chain == nil {
		chain = &Chain{}
		tr.timers[t.Depth] = chain
	}
	box := chain.push(t)
	tr.numTimers++
	if t.Start < tr.minTime {
		tr.minTime = t.Start
	}
	if t.End > tr.maxTime {
		tr.maxTime = t.End
	}
	return box
}

// updateDepth raises the track's depth counter to at least depth.
func (tr *base) updateDepth(depth uint32) {
	for {
		cur := tr.depth.Load()
		if depth <= cur || tr.depth.CompareAndSwap(cur, depth) {
			return
		}
	}
}

func (tr *base) Timers() []*Chain {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	depths := maps.Keys(tr.timers)
	slices.Sort(depths)
	chains := make([]*Chain, len(depths))
	for i, d := range depths {
		chains[i] = tr.timers[d]
	}
	return chains
}

func (tr *base) TimersAtDepth(depth uint32) *Chain {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.timers[depth]
}

func (tr *base) NumTimers() int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.numTimers
}

func (tr *base) IsEmpty() bool {
	return tr.NumTimers() == 0
}

// MinTime returns the smallest start seen so far. Only meaningful when the
// track isn't empty.
func (tr *base) MinTime() trace.Timestamp {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.minTime
}

// MaxTime returns the largest end seen so far. Only meaningful when the
// track isn't empty.
func (tr *base) MaxTime() trace.Timestamp {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.maxTime
}

func (tr *base) Depth() uint32 {
	return tr.depth.Load()
}

func (tr *base) Collapsed() bool {
	return tr.collapsed.Load()
}

func (tr *base) SetCollapsed(collapsed bool) {
	tr.collapsed.Store(collapsed)
}

func (tr *base) ToggleCollapsed() {
	tr.collapsed.Store(!tr.collapsed.Load())
}

// SetPos places the track in world space; y is the track's baseline, rows
// grow upwards from it.
func (tr *base) SetPos(x, y float32) {
	tr.pos[0] = x
	tr.pos[1] = y
}

func (tr *base) BoxTooltip(rc *RenderContext, box *TimerBox) string {
	return tr.policy.BoxTooltip(rc, box)
}

func (tr *base) GetFirstAfterTime(t trace.Timestamp, depth uint32) *TimerBox {
	chain := tr.TimersAtDepth(depth)
	if chain == nil {
		return nil
	}
	return chain.FirstAfter(t)
}

func (tr *base) GetFirstBeforeTime(t trace.Timestamp, depth uint32) *TimerBox {
	chain := tr.TimersAtDepth(depth)
	if chain == nil {
		return nil
	}
	return chain.LastBefore(t)
}

func (tr *base) GetUp(box *TimerBox) *TimerBox {
	if box.Timer.Depth == 0 {
		return nil
	}
	return tr.GetFirstBeforeTime(box.Timer.Start, box.Timer.Depth-1)
}

func (tr *base) GetDown(box *TimerBox) *TimerBox {
	return tr.GetFirstAfterTime(box.Timer.Start, box.Timer.Depth+1)
}

// elementBefore and elementAfter implement left/right navigation once the
// concrete track has verified that box belongs to it.
func (tr *base) elementBefore(box *TimerBox) *TimerBox {
	chain := tr.TimersAtDepth(box.Timer.Depth)
	if chain == nil {
		return nil
	}
	return chain.ElementBefore(box)
}

func (tr *base) elementAfter(box *TimerBox) *TimerBox {
	chain := tr.TimersAtDepth(box.Timer.Depth)
	if chain == nil {
		return nil
	}
	return chain.ElementAfter(box)
}
