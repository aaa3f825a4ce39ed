package track

import (
	"math"
	"sync/atomic"

	"github.com/atharwa-24/orbit/trace"
)

// blockSize is the number of timers per block. Blocks bound reallocation
// cost during ingestion and let windowed scans skip long stretches of a
// chain using the per-block time bounds.
const blockSize = 1024

// TimerBox is one stored timer together with the ephemeral display state the
// rendering path keeps for it. The Timer is immutable after insertion. Text,
// ElapsedTextLen, Pos and Size are only touched by the rendering thread;
// Text is computed at most once per capture and reused on subsequent frames.
type TimerBox struct {
	Timer trace.Timer
	Text  string
	// ElapsedTextLen is the length of the elapsed-time suffix of Text. The
	// text renderer keeps that many trailing characters visible when the
	// label has to be truncated.
	ElapsedTextLen int
	Pos            Point
	Size           Point
}

// block is one fixed-capacity segment of a Chain. The publication protocol
// makes blocks safe for one writer concurrent with any number of readers:
// the writer fills boxes[n], widens the time bounds, and only then stores
// n+1. Readers load n first and never look past it, so they cannot observe
// torn records.
type block struct {
	next  atomic.Pointer[block]
	n     atomic.Int32
	minTs atomic.Int64
	maxTs atomic.Int64
	boxes [blockSize]TimerBox
}

func newBlock() *block {
	blk := &block{}
	blk.minTs.Store(math.MaxInt64)
	blk.maxTs.Store(math.MinInt64)
	return blk
}

// intersects reports whether any timer in the block may overlap [min, max].
// An empty block intersects nothing.
func (blk *block) intersects(min, max trace.Timestamp) bool {
	return min <= trace.Timestamp(blk.maxTs.Load()) && max >= trace.Timestamp(blk.minTs.Load())
}

// Chain is the append-only sequence of all timers of one track that share a
// nesting depth, in insertion order, which ingestion guarantees to also be
// non-decreasing start order. Pushing is serialized by the owning track's
// mutex; scanning needs no lock at all.
type Chain struct {
	head *block
	// tail is only accessed by the writer, under the track mutex.
	tail *block
}

func (c *Chain) push(t trace.Timer) *TimerBox {
	blk := c.tail
	if blk == nil || int(blk.n.Load()) == blockSize {
		nb := newBlock()
		if blk == nil {
			c.head = nb
		} else {
			blk.next.Store(nb)
		}
		c.tail = nb
		blk = nb
	}

	k := blk.n.Load()
	box := &blk.boxes[k]
	*box = TimerBox{Timer: t}
	if ts := int64(t.Start); ts < blk.minTs.Load() {
		blk.minTs.Store(ts)
	}
	if ts := int64(t.End); ts > blk.maxTs.Load() {
		blk.maxTs.Store(ts)
	}
	blk.n.Store(k + 1)
	return box
}

// Len returns the number of timers in the chain at the time of the call.
func (c *Chain) Len() int {
	n := 0
	for blk := c.head; blk != nil; blk = blk.next.Load() {
		n += int(blk.n.Load())
	}
	return n
}

// FirstAfter returns the first timer whose start lies strictly after t, or
// nil if there is none.
//
// TODO(dh): do better than linear search. Chains are shallow in practice,
// but a capture with one hot depth will make this O(n) per navigation step.
func (c *Chain) FirstAfter(t trace.Timestamp) *TimerBox {
	for blk := c.head; blk != nil; blk = blk.next.Load() {
		n := int(blk.n.Load())
		for k := 0; k < n; k++ {
			box := &blk.boxes[k]
			if box.Timer.Start > t {
				return box
			}
		}
	}
	return nil
}

// LastBefore returns the timer with the greatest start that is ≤ t, or nil
// if every timer starts after t.
func (c *Chain) LastBefore(t trace.Timestamp) *TimerBox {
	var prev *TimerBox
	for blk := c.head; blk != nil; blk = blk.next.Load() {
		n := int(blk.n.Load())
		for k := 0; k < n; k++ {
			box := &blk.boxes[k]
			if box.Timer.Start > t {
				return prev
			}
			prev = box
		}
	}
	return prev
}

// Do calls fn for every timer in the chain, in insertion order, until fn
// returns false. Timers pushed concurrently with the iteration may or may
// not be visited.
func (c *Chain) Do(fn func(box *TimerBox) bool) {
	for blk := c.head; blk != nil; blk = blk.next.Load() {
		n := int(blk.n.Load())
		for k := 0; k < n; k++ {
			if !fn(&blk.boxes[k]) {
				return
			}
		}
	}
}

// ElementBefore returns the immediate predecessor of box in insertion
// order, or nil if box is the first element or not part of the chain.
func (c *Chain) ElementBefore(box *TimerBox) *TimerBox {
	var prev *TimerBox
	for blk := c.head; blk != nil; blk = blk.next.Load() {
		n := int(blk.n.Load())
		for k := 0; k < n; k++ {
			cur := &blk.boxes[k]
			if cur == box {
				return prev
			}
			prev = cur
		}
	}
	return nil
}

// ElementAfter returns the immediate successor of box in insertion order,
// or nil if box is the last element or not part of the chain.
func (c *Chain) ElementAfter(box *TimerBox) *TimerBox {
	found := false
	for blk := c.head; blk != nil; blk = blk.next.Load() {
		n := int(blk.n.Load())
		for k := 0; k < n; k++ {
			cur := &blk.boxes[k]
			if found {
				return cur
			}
			if cur == box {
				found = true
			}
		}
	}
	return nil
}
