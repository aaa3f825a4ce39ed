package track

import (
	"image/color"
	"time"

	"github.com/atharwa-24/orbit/trace"
)

var (
	// inactiveColor dims timers hidden by the function visibility filter,
	// selectionColor overrides everything for the selected timer.
	inactiveColor  = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	selectionColor = color.NRGBA{R: 0, G: 128, B: 255, A: 255}
)

// evenDepthAlpha is applied to timers at even depths so that directly
// stacked frames of the same thread color stay distinguishable.
const evenDepthAlpha = 210

// ThreadTrack displays the timers recorded on one thread by dynamic
// instrumentation, one row per nesting depth.
type ThreadTrack struct {
	base
	threadID int32
}

var _ Track = (*ThreadTrack)(nil)

func NewThreadTrack(threadID int32, layout Layout) *ThreadTrack {
	tr := &ThreadTrack{threadID: threadID}
	tr.init(layout, functionPolicy{}, false, false)
	return tr
}

func (tr *ThreadTrack) ThreadID() int32 {
	return tr.threadID
}

func (tr *ThreadTrack) OnTimer(t trace.Timer) *TimerBox {
	// Core activity is drawn on the thread's rows but doesn't open a new
	// nesting level of its own.
	if t.Kind != trace.KindCoreActivity {
		tr.updateDepth(t.Depth + 1)
	}
	return tr.insert(t)
}

func (tr *ThreadTrack) Label() string {
	return local.Sprintf("Thread %d", tr.threadID)
}

func (tr *ThreadTrack) Tooltip() string {
	return "Shows collected samples and timings from dynamically instrumented functions"
}

func (tr *ThreadTrack) Height() float32 {
	l := tr.layout
	var depth uint32
	if tr.Collapsed() {
		if tr.NumTimers() > 0 {
			depth = 1
		}
	} else {
		depth = tr.Depth()
	}
	h := l.TextBoxHeight * float32(depth)
	if depth > 0 {
		h += l.SpaceBetweenTracksAndThread
	}
	return h + l.TrackBottomMargin
}

// GetLeft and GetRight step to the adjacent timer at the same depth, in
// insertion order. They only accept boxes that belong to this thread.
func (tr *ThreadTrack) GetLeft(box *TimerBox) *TimerBox {
	if box.Timer.ThreadID != tr.threadID {
		return nil
	}
	return tr.elementBefore(box)
}

func (tr *ThreadTrack) GetRight(box *TimerBox) *TimerBox {
	if box.Timer.ThreadID != tr.threadID {
		return nil
	}
	return tr.elementAfter(box)
}

// functionPolicy classifies timers by their instrumented function: the
// timer is labeled with the resolved function name, introspection timers
// fall back to the interned scope string, and anything else is a labeling
// error.
type functionPolicy struct{}

func (functionPolicy) Color(rc *RenderContext, t *trace.Timer, selected, inactive bool) color.NRGBA {
	if selected {
		return selectionColor
	}
	if inactive {
		return inactiveColor
	}
	c := rc.ThreadColor(t.ThreadID)
	if t.Depth&1 == 0 {
		c.A = evenDepthAlpha
	}
	return c
}

func (functionPolicy) SetText(rc *RenderContext, box *TimerBox, elapsed time.Duration) {
	if box.Text != "" {
		return
	}
	t := &box.Timer
	pretty := prettyTime(elapsed)

	if fn, ok := rc.Functions.Lookup(t.FunctionAddress).Get(); ok {
		box.ElapsedTextLen = len(pretty)
		if rc.ShowReturnValues && t.Kind == trace.KindNone {
			box.Text = local.Sprintf("%s [%d] %s", fn.DisplayName, t.UserDataKey, pretty)
		} else {
			box.Text = local.Sprintf("%s %s", fn.DisplayName, pretty)
		}
		return
	}
	if t.Kind == trace.KindIntrospection {
		box.ElapsedTextLen = len(pretty)
		box.Text = local.Sprintf("%s %s", rc.Strings.Get(t.UserDataKey).GetOr(""), pretty)
		return
	}
	rc.logf("track: no label for %s timer with unresolved function %#x", t.Kind, t.FunctionAddress)
}

func (functionPolicy) Inactive(rc *RenderContext, t *trace.Timer) bool {
	return rc.VisibleFunctions != nil && !rc.VisibleFunctions[t.FunctionAddress]
}

func (functionPolicy) VisibleCollapsed(*RenderContext, *trace.Timer) bool {
	return true
}

func (functionPolicy) BoxTooltip(rc *RenderContext, box *TimerBox) string {
	if box == nil || box.Timer.Kind == trace.KindCoreActivity {
		return ""
	}
	fn, ok := rc.Functions.Lookup(box.Timer.FunctionAddress).Get()
	if !ok {
		return box.Text
	}
	return local.Sprintf(
		"<b>%s</b><br/>"+
			"<i>Timing measured through dynamic instrumentation</i>"+
			"<br/><br/>"+
			"<b>Module:</b> %s<br/>"+
			"<b>Time:</b> %s",
		fn.DisplayName,
		fn.Module,
		prettyTime(rc.TimeBase.Duration(box.Timer.Start, box.Timer.End)))
}
