// Package capture assembles tracks, string and function tables, and
// per-capture display state into one session, routes incoming timer records
// to the right track, and lays the tracks out for rendering.
package capture

import (
	"sync"

	"github.com/atharwa-24/orbit/trace"
	"github.com/atharwa-24/orbit/track"

	mycolor "github.com/atharwa-24/orbit/color"
)

// Capture is one profiling session. Ingestion calls OnTimer from its own
// goroutine; the rendering goroutine reads tracks through Tracks and
// UpdatePrimitives. The mutex guards the track maps and display state, not
// the tracks themselves, which have their own synchronization.
type Capture struct {
	timeBase trace.TimeBase
	layout   track.Layout

	strings   *StringTable
	functions *FunctionTable
	palette   *mycolor.Palette

	mu           sync.RWMutex
	threadTracks map[int32]*track.ThreadTrack
	gpuTracks    map[uint64]*track.GpuTrack
	// order keeps tracks in creation order, the order they stack on
	// screen.
	order       []track.Track
	threadNames map[int32]string

	selected         *track.TimerBox
	visibleFunctions map[uint64]bool
	showReturnValues bool
}

func New(tb trace.TimeBase) *Capture {
	return &Capture{
		timeBase:     tb,
		layout:       track.DefaultLayout(),
		strings:      NewStringTable(),
		functions:    NewFunctionTable(),
		palette:      mycolor.NewPalette(),
		threadTracks: map[int32]*track.ThreadTrack{},
		gpuTracks:    map[uint64]*track.GpuTrack{},
		threadNames:  map[int32]string{},
	}
}

func (c *Capture) TimeBase() trace.TimeBase  { return c.timeBase }
func (c *Capture) Strings() *StringTable     { return c.strings }
func (c *Capture) Functions() *FunctionTable { return c.functions }

// OnTimer routes one timer record to its track, creating the track on first
// sight. GPU activity goes to the timeline's track, everything else to the
// producing thread's track.
func (c *Capture) OnTimer(t trace.Timer) *track.TimerBox {
	if t.Kind == trace.KindGpuActivity {
		return c.GpuTrack(t.TimelineHash).OnTimer(t)
	}
	return c.ThreadTrack(t.ThreadID).OnTimer(t)
}

// ThreadTrack returns the track for tid, creating it if needed.
func (c *Capture) ThreadTrack(tid int32) *track.ThreadTrack {
	c.mu.RLock()
	tr := c.threadTracks[tid]
	c.mu.RUnlock()
	if tr != nil {
		return tr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tr = c.threadTracks[tid]; tr != nil {
		return tr
	}
	tr = track.NewThreadTrack(tid, c.layout)
	c.threadTracks[tid] = tr
	c.order = append(c.order, tr)
	return tr
}

// GpuTrack returns the track for the GPU timeline identified by
// timelineHash, creating it if needed. The timeline name has to be interned
// before the first timer of the timeline arrives for the track to get a
// proper label.
func (c *Capture) GpuTrack(timelineHash uint64) *track.GpuTrack {
	c.mu.RLock()
	tr := c.gpuTracks[timelineHash]
	c.mu.RUnlock()
	if tr != nil {
		return tr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tr = c.gpuTracks[timelineHash]; tr != nil {
		return tr
	}
	timeline := c.strings.Get(timelineHash).GetOr("")
	tr = track.NewGpuTrack(timelineHash, timeline, c.layout)
	c.gpuTracks[timelineHash] = tr
	c.order = append(c.order, tr)
	return tr
}

// Tracks returns a snapshot of all tracks in creation order.
func (c *Capture) Tracks() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]track.Track, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Capture) NumTimers() int {
	n := 0
	for _, tr := range c.Tracks() {
		n += tr.NumTimers()
	}
	return n
}

// MinTime returns the earliest start across all tracks, or false if the
// capture is empty.
func (c *Capture) MinTime() (trace.Timestamp, bool) {
	var min trace.Timestamp
	ok := false
	for _, tr := range c.Tracks() {
		if tr.IsEmpty() {
			continue
		}
		if t := tr.MinTime(); !ok || t < min {
			min = t
			ok = true
		}
	}
	return min, ok
}

// MaxTime returns the latest end across all tracks, or false if the capture
// is empty.
func (c *Capture) MaxTime() (trace.Timestamp, bool) {
	var max trace.Timestamp
	ok := false
	for _, tr := range c.Tracks() {
		if tr.IsEmpty() {
			continue
		}
		if t := tr.MaxTime(); !ok || t > max {
			max = t
			ok = true
		}
	}
	return max, ok
}

func (c *Capture) SetThreadName(tid int32, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threadNames[tid] = name
}

func (c *Capture) ThreadName(tid int32) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.threadNames[tid]
}

// Select marks box as the selected timer. A nil box clears the selection.
func (c *Capture) Select(box *track.TimerBox) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = box
}

func (c *Capture) Selected() *track.TimerBox {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// SetVisibleFunctions installs a function visibility filter. Timers whose
// function address isn't in the set are drawn inactive. Nil disables the
// filter.
func (c *Capture) SetVisibleFunctions(addrs map[uint64]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visibleFunctions = addrs
}

func (c *Capture) SetShowReturnValues(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showReturnValues = show
}

// RenderContext builds the per-frame context for projection and tooltip
// passes. The returned context snapshots the display state; concurrent
// Select or filter changes affect the next frame, not the one in flight.
func (c *Capture) RenderContext() *track.RenderContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &track.RenderContext{
		Strings:          c.strings,
		Functions:        c.functions,
		TimeBase:         c.timeBase,
		ThreadColor:      c.palette.ColorForThread,
		ThreadName:       c.ThreadName,
		Selected:         c.selected,
		VisibleFunctions: c.visibleFunctions,
		ShowReturnValues: c.showReturnValues,
	}
}

// UpdatePrimitives stacks all tracks top to bottom in creation order and
// projects each of them into sink. It returns the total height of the
// stack.
func (c *Capture) UpdatePrimitives(view track.View, rc *track.RenderContext, sink track.Batcher) float32 {
	y := float32(0)
	for _, tr := range c.Tracks() {
		h := tr.Height()
		// A track's origin is its bottom edge; boxes grow upwards from
		// there.
		tr.SetPos(view.WorldLeftX, y+h)
		tr.UpdatePrimitives(view, rc, sink)
		y += h
	}
	return y
}
