package track

import (
	"image/color"
	"strings"
	"time"

	"github.com/atharwa-24/orbit/trace"
)

// GPU pipeline stage tags, as interned by the tracer.
const (
	swQueueString     = "sw queue"
	hwQueueString     = "hw queue"
	hwExecutionString = "hw execution"
)

// MapGpuTimelineToTrackLabel derives a track label from a GPU timeline
// name.
func MapGpuTimelineToTrackLabel(timeline string) string {
	switch {
	case strings.HasPrefix(timeline, "gfx"):
		return local.Sprintf("Graphics queue (%s)", timeline)
	case strings.HasPrefix(timeline, "sdma"):
		return local.Sprintf("Transfer queue (%s)", timeline)
	case strings.HasPrefix(timeline, "comp"):
		return local.Sprintf("Compute queue (%s)", timeline)
	default:
		// Unknown hardware. Return the timeline so we at least display
		// something.
		return timeline
	}
}

// GpuTrack displays the activity of one GPU timeline. Each submission shows
// up to three stacked timers: its time on the software queue, on the
// hardware queue, and executing on the hardware.
type GpuTrack struct {
	base
	timelineHash uint64
	label        string
}

var _ Track = (*GpuTrack)(nil)

func NewGpuTrack(timelineHash uint64, timeline string, layout Layout) *GpuTrack {
	tr := &GpuTrack{
		timelineHash: timelineHash,
		label:        MapGpuTimelineToTrackLabel(timeline),
	}
	// GPU tracks are collapsed by default.
	tr.init(layout, gpuStagePolicy{}, true, true)
	return tr
}

func (tr *GpuTrack) TimelineHash() uint64 {
	return tr.timelineHash
}

func (tr *GpuTrack) OnTimer(t trace.Timer) *TimerBox {
	return tr.insert(t)
}

func (tr *GpuTrack) Label() string {
	return tr.label
}

func (tr *GpuTrack) Tooltip() string {
	return "Shows scheduling and execution times for selected GPU job submissions"
}

func (tr *GpuTrack) Height() float32 {
	l := tr.layout
	depth := tr.Depth()
	if tr.Collapsed() {
		depth = 1
	}
	return l.TextBoxHeight*float32(depth) + l.TrackBottomMargin
}

// GetLeft and GetRight step to the adjacent timer at the same depth, in
// insertion order. They only accept boxes that belong to this timeline.
func (tr *GpuTrack) GetLeft(box *TimerBox) *TimerBox {
	if box.Timer.TimelineHash != tr.timelineHash {
		return nil
	}
	return tr.elementBefore(box)
}

func (tr *GpuTrack) GetRight(box *TimerBox) *TimerBox {
	if box.Timer.TimelineHash != tr.timelineHash {
		return nil
	}
	return tr.elementAfter(box)
}

// gpuStagePolicy classifies timers by their GPU pipeline stage. The color
// is the submitting thread's, scaled by a per-stage intensity so that the
// three stages of one submission read as shades of the same color.
type gpuStagePolicy struct{}

func (gpuStagePolicy) stage(rc *RenderContext, t *trace.Timer) string {
	return rc.Strings.Get(t.UserDataKey).GetOr("")
}

func (p gpuStagePolicy) Color(rc *RenderContext, t *trace.Timer, selected, inactive bool) color.NRGBA {
	if selected {
		return selectionColor
	}
	if inactive {
		return inactiveColor
	}

	// Color code GPU activity with the color of the CPU thread that
	// submitted the job.
	c := rc.ThreadColor(t.ThreadID)

	var coeff float32 = 1.0
	switch p.stage(rc, t) {
	case swQueueString:
		coeff = 0.5
	case hwQueueString:
		coeff = 0.75
	case hwExecutionString:
		coeff = 1.0
	}
	c.R = uint8(coeff * float32(c.R))
	c.G = uint8(coeff * float32(c.G))
	c.B = uint8(coeff * float32(c.B))

	if t.Depth&1 == 0 {
		c.A = evenDepthAlpha
	}
	return c
}

func (p gpuStagePolicy) SetText(rc *RenderContext, box *TimerBox, elapsed time.Duration) {
	if box.Text != "" {
		return
	}
	if box.Timer.Kind != trace.KindGpuActivity {
		rc.logf("track: %s timer on a GPU timeline", box.Timer.Kind)
		return
	}
	pretty := prettyTime(elapsed)
	box.ElapsedTextLen = len(pretty)
	box.Text = local.Sprintf("%s  %s", p.stage(rc, &box.Timer), pretty)
}

func (gpuStagePolicy) Inactive(*RenderContext, *trace.Timer) bool {
	return false
}

// VisibleCollapsed keeps only the terminal stage: a collapsed GPU track
// shows one row of hardware execution times.
func (p gpuStagePolicy) VisibleCollapsed(rc *RenderContext, t *trace.Timer) bool {
	return p.stage(rc, t) == hwExecutionString
}

func (p gpuStagePolicy) BoxTooltip(rc *RenderContext, box *TimerBox) string {
	if box == nil || box.Timer.Kind == trace.KindCoreActivity {
		return ""
	}
	t := &box.Timer
	pretty := prettyTime(rc.TimeBase.Duration(t.Start, t.End))
	switch p.stage(rc, t) {
	case swQueueString:
		return local.Sprintf(
			"<b>Software Queue</b><br/>"+
				"<i>Time between job submission and job scheduling</i>"+
				"<br/>"+
				"<br/>"+
				"<b>Submitted from thread:</b> %s [%d]<br/>"+
				"<b>Time:</b> %s",
			rc.ThreadName(t.ThreadID), t.ThreadID, pretty)
	case hwQueueString:
		return local.Sprintf(
			"<b>Hardware Queue</b><br/>"+
				"<i>Time between job scheduling and start of GPU execution</i>"+
				"<br/>"+
				"<br/>"+
				"<b>Submitted from thread:</b> %s [%d]<br/>"+
				"<b>Time:</b> %s",
			rc.ThreadName(t.ThreadID), t.ThreadID, pretty)
	case hwExecutionString:
		return local.Sprintf(
			"<b>Hardware Execution</b><br/>"+
				"<i>End is marked by the completion signal for this command buffer submission</i>"+
				"<br/>"+
				"<br/>"+
				"<b>Submitted from thread:</b> %s [%d]<br/>"+
				"<b>Time:</b> %s",
			rc.ThreadName(t.ThreadID), t.ThreadID, pretty)
	default:
		return ""
	}
}
