// Package batch collects the primitives emitted by a projection pass and
// groups them by color, so that a renderer can draw each group with a single
// draw call instead of one per primitive.
package batch

import (
	"image/color"
	"sync"

	"github.com/atharwa-24/orbit/mem"
	"github.com/atharwa-24/orbit/picking"
	"github.com/atharwa-24/orbit/track"
)

// Box is one filled rectangle in world space. Pos is the bottom-left corner.
type Box struct {
	Pos  track.Point
	Size track.Point
	Z    float32
	ID   picking.ID
}

// Line is one vertical line in world space, extending Height upwards from
// Pos.
type Line struct {
	Pos    track.Point
	Height float32
	Z      float32
	ID     picking.ID
}

// Frame accumulates the primitives of one frame. It implements
// track.Batcher. Primitives keep their per-color insertion order, which
// together with the z value is all the renderer needs.
//
// Element indices restart from zero on every Reset, so a picking.ID is only
// meaningful for the frame that produced it.
type Frame struct {
	batcherID picking.BatcherID

	mu       sync.Mutex
	boxes    map[color.NRGBA]*mem.BucketSlice[Box]
	lines    map[color.NRGBA]*mem.BucketSlice[Line]
	numBoxes uint32
	numLines uint32
	userData map[picking.ID]*track.PickingUserData
}

var (
	_ track.Batcher = (*Frame)(nil)
	_ track.Batcher = (*Counter)(nil)
)

func NewFrame(id picking.BatcherID) *Frame {
	return &Frame{
		batcherID: id,
		boxes:     map[color.NRGBA]*mem.BucketSlice[Box]{},
		lines:     map[color.NRGBA]*mem.BucketSlice[Line]{},
		userData:  map[picking.ID]*track.PickingUserData{},
	}
}

func (f *Frame) AddBox(pos, size track.Point, z float32, c color.NRGBA, ud *track.PickingUserData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := picking.MakeID(picking.KindBox, f.numBoxes, f.batcherID)
	f.numBoxes++
	bs := f.boxes[c]
	if bs == nil {
		bs = &mem.BucketSlice[Box]{}
		f.boxes[c] = bs
	}
	bs.Append(Box{Pos: pos, Size: size, Z: z, ID: id})
	if ud != nil {
		f.userData[id] = ud
	}
}

func (f *Frame) AddVerticalLine(pos track.Point, height, z float32, c color.NRGBA, ud *track.PickingUserData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := picking.MakeID(picking.KindLine, f.numLines, f.batcherID)
	f.numLines++
	ls := f.lines[c]
	if ls == nil {
		ls = &mem.BucketSlice[Line]{}
		f.lines[c] = ls
	}
	ls.Append(Line{Pos: pos, Height: height, Z: z, ID: id})
	if ud != nil {
		f.userData[id] = ud
	}
}

// Boxes calls fn once per color group, with the group's boxes in insertion
// order.
func (f *Frame) Boxes(fn func(c color.NRGBA, boxes *mem.BucketSlice[Box])) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c, bs := range f.boxes {
		fn(c, bs)
	}
}

// Lines calls fn once per color group, with the group's lines in insertion
// order.
func (f *Frame) Lines(fn func(c color.NRGBA, lines *mem.BucketSlice[Line])) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c, ls := range f.lines {
		fn(c, ls)
	}
}

// NumBoxes returns the number of boxes added since the last Reset.
func (f *Frame) NumBoxes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.numBoxes)
}

// NumLines returns the number of lines added since the last Reset.
func (f *Frame) NumLines() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.numLines)
}

// UserData returns the user data registered for id, or nil if id wasn't
// produced in the current frame.
func (f *Frame) UserData(id picking.ID) *track.PickingUserData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userData[id]
}

// Box returns the timer box behind id, or nil.
func (f *Frame) Box(id picking.ID) *track.TimerBox {
	ud := f.UserData(id)
	if ud == nil {
		return nil
	}
	return ud.Box
}

// Tooltip renders the tooltip for the primitive identified by id. It
// returns "" for unknown ids and for primitives that have no tooltip.
func (f *Frame) Tooltip(id picking.ID) string {
	ud := f.UserData(id)
	if ud == nil || ud.Tooltip == nil {
		return ""
	}
	return ud.Tooltip(id)
}

// Reset discards all primitives and user data, keeping the allocated
// per-color buckets for the next frame.
func (f *Frame) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, bs := range f.boxes {
		bs.Reset()
	}
	for _, ls := range f.lines {
		ls.Reset()
	}
	f.numBoxes = 0
	f.numLines = 0
	clear(f.userData)
}

// Counter is a track.Batcher that only counts primitives. It is what the
// capture inspection tooling uses when nothing gets drawn.
type Counter struct {
	NumBoxes int
	NumLines int
}

func (c *Counter) AddBox(pos, size track.Point, z float32, col color.NRGBA, ud *track.PickingUserData) {
	c.NumBoxes++
}

func (c *Counter) AddVerticalLine(pos track.Point, height, z float32, col color.NRGBA, ud *track.PickingUserData) {
	c.NumLines++
}

// Reset zeroes the counters.
func (c *Counter) Reset() {
	c.NumBoxes = 0
	c.NumLines = 0
}
