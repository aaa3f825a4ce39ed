package track

import (
	"image/color"
	"math"
	"time"

	"github.com/atharwa-24/orbit/picking"
	"github.com/atharwa-24/orbit/trace"
)

// ZBoxActive is the z order of the boxes and lines a projection pass emits.
const ZBoxActive float32 = 0.25

// Policy is the classification strategy of a track. It maps a timer's
// semantic tag (resolved function or interned string) to a color, a
// timeslice label and a tooltip, and decides which timers stay visible
// while the track is collapsed.
type Policy interface {
	Color(rc *RenderContext, t *trace.Timer, selected, inactive bool) color.NRGBA
	// SetText computes and caches the timeslice label on box if it hasn't
	// been computed yet this capture.
	SetText(rc *RenderContext, box *TimerBox, elapsed time.Duration)
	// Inactive reports whether the timer is hidden by the active
	// visibility filter. Inactive timers are still drawn, in a fixed
	// dimmed color.
	Inactive(rc *RenderContext, t *trace.Timer) bool
	VisibleCollapsed(rc *RenderContext, t *trace.Timer) bool
	BoxTooltip(rc *RenderContext, box *TimerBox) string
}

// PickingUserData links a drawn primitive back to the timer it represents
// and the tooltip to show when it is hit-tested. Ownership of the mapping
// from picking ids to user data lies with the Batcher.
type PickingUserData struct {
	Box *TimerBox
	// Tooltip renders the tooltip for the primitive identified by id.
	Tooltip func(id picking.ID) string
}

// Batcher is the sink that receives the primitives of a projection pass.
// The user data handed to it stays valid until the track's next projection
// pass, which recycles it; per-frame batchers have to be reset before then.
type Batcher interface {
	AddBox(pos, size Point, z float32, c color.NRGBA, ud *PickingUserData)
	AddVerticalLine(pos Point, height, z float32, c color.NRGBA, ud *PickingUserData)
}

// UpdatePrimitives projects every timer that intersects the view's time
// window onto a world-space primitive and hands it to sink.
//
// Timers wide enough to cover more than one pixel become boxes; narrower
// timers become single vertical lines, and the pixel-aligned tick range such
// a line covers is recorded as an ignore window so that further sub-pixel
// timers falling entirely inside it are skipped. When zoomed in enough that
// all timers are boxes this has no effect; when zoomed out it discards most
// of them cheaply. The ignore window resets at every block boundary, as
// otherwise events that should be drawn would be missed.
//
// Degenerate views (empty window, no pixels) produce no primitives.
func (tr *base) UpdatePrimitives(view View, rc *RenderContext, sink Batcher) {
	if view.MaxTick <= view.MinTick || view.PixelWidth <= 0 {
		return
	}

	for _, ud := range tr.udLive {
		tr.udCache.Put(ud)
	}
	tr.udLive = tr.udLive[:0]

	invTimeWindow := 1 / view.TimeWindowUs()
	collapsed := tr.Collapsed()
	boxHeight := tr.layout.TextBoxHeight
	if collapsed && !tr.flatten {
		if d := tr.depth.Load(); d > 0 {
			boxHeight /= float32(d)
		}
	}

	pixelDelta := view.PixelDeltaInTicks()
	chains := tr.Timers()

	for _, chain := range chains {
		for blk := chain.head; blk != nil; blk = blk.next.Load() {
			if !blk.intersects(view.MinTick, view.MaxTick) {
				continue
			}

			minIgnore := trace.Timestamp(math.MaxInt64)
			maxIgnore := trace.Timestamp(math.MinInt64)

			n := int(blk.n.Load())
			for k := 0; k < n; k++ {
				box := &blk.boxes[k]
				t := &box.Timer
				if view.MinTick > t.End || view.MaxTick < t.Start {
					continue
				}
				if t.Start >= minIgnore && t.End <= maxIgnore {
					// Already represented by a line at this pixel.
					continue
				}

				tr.updateDepth(t.Depth + 1)

				startUs := view.TimeBase.UsFromTick(t.Start)
				endUs := view.TimeBase.UsFromTick(t.End)
				elapsedUs := endUs - startUs
				normalizedStart := startUs * invTimeWindow
				normalizedLength := elapsedUs * invTimeWindow

				timerDepth := t.Depth
				if collapsed && tr.flatten {
					timerDepth = 0
				}
				pos := Pt(
					view.WorldLeftX+float32(normalizedStart*float64(view.WorldWidth)),
					tr.pos[1]-boxHeight*float32(timerDepth+1),
				)
				size := Pt(float32(normalizedLength*float64(view.WorldWidth)), boxHeight)

				selected := box == rc.Selected
				inactive := tr.policy.Inactive(rc, t)
				c := tr.policy.Color(rc, t, selected, inactive)
				box.Pos = pos
				box.Size = size

				if collapsed && !tr.policy.VisibleCollapsed(rc, t) {
					continue
				}

				// OPT(dh): the tooltip closure still allocates per visible
				// primitive; only the struct is recycled.
				ud := tr.udCache.Get()
				*ud = PickingUserData{Box: box}
				ud.Tooltip = func(picking.ID) string { return tr.policy.BoxTooltip(rc, box) }
				tr.udLive = append(tr.udLive, ud)

				if normalizedLength*float64(view.PixelWidth) > 1 {
					if !collapsed {
						tr.policy.SetText(rc, box, time.Duration(elapsedUs*float64(time.Microsecond)))
					}
					sink.AddBox(pos, size, ZBoxActive, c, ud)
				} else {
					sink.AddVerticalLine(pos, boxHeight, ZBoxActive, c, ud)
					// The entire pixel this timer falls into is covered
					// now. Align the ignore window on the pixel's tick
					// range. A zero pixelDelta would divide by zero, and
					// there'd be nothing to gain anyway.
					if pixelDelta != 0 {
						minIgnore = view.MinTick + (t.Start-view.MinTick)/pixelDelta*pixelDelta
						maxIgnore = minIgnore + pixelDelta
					}
				}
			}
		}
	}
}
