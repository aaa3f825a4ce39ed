package track

import (
	"image/color"
	"log"

	"github.com/atharwa-24/orbit/container"
	"github.com/atharwa-24/orbit/trace"
)

// StringSource resolves interned-string keys to their strings.
type StringSource interface {
	Get(key uint64) container.Option[string]
}

// FunctionSource resolves instrumented function addresses.
type FunctionSource interface {
	Lookup(address uint64) container.Option[trace.Function]
}

// RenderContext carries the capture-wide lookup state a projection or
// tooltip pass needs. It replaces the ambient globals the rendering code
// would otherwise reach for: callers construct one per frame and pass it
// explicitly, which keeps tracks testable in isolation.
type RenderContext struct {
	Strings   StringSource
	Functions FunctionSource
	TimeBase  trace.TimeBase
	// ThreadColor returns the palette color assigned to a thread.
	ThreadColor func(tid int32) color.NRGBA
	// ThreadName returns the display name of a thread, "" if unknown.
	ThreadName func(tid int32) string
	// Selected is the currently selected timer box, if any. It is drawn in
	// the fixed selection color regardless of classification.
	Selected *TimerBox
	// VisibleFunctions is the active function visibility filter. A nil map
	// disables the filter; otherwise timers whose function is not in the
	// map are drawn in the inactive color.
	VisibleFunctions map[uint64]bool
	// ShowReturnValues appends the raw user data value to instrumented
	// function labels.
	ShowReturnValues bool
	// Logger receives classification diagnostics. A nil Logger falls back
	// to log.Default. Diagnostics are rare and never fatal.
	Logger *log.Logger
}

func (rc *RenderContext) logf(format string, args ...any) {
	l := rc.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}
