// Package trace defines the data model for captured timer events: tick
// timestamps, the time base that relates them to wall time, and the timer
// records that instrumentation and GPU tracing produce.
package trace

import (
	"fmt"
	"time"
)

// Timestamp is a monotonic tick as reported by the clock that produced the
// capture. Ticks only become durations through a TimeBase.
type Timestamp int64

// TimeBase converts between ticks and wall time for one capture session.
type TimeBase struct {
	// TicksPerSecond is the frequency of the clock that produced the
	// capture's timestamps.
	TicksPerSecond uint64
}

// UsFromTick returns t expressed in microseconds.
func (tb TimeBase) UsFromTick(t Timestamp) float64 {
	return float64(t) * 1e6 / float64(tb.TicksPerSecond)
}

// TickFromUs returns the tick that corresponds to us microseconds.
func (tb TimeBase) TickFromUs(us float64) Timestamp {
	return Timestamp(us * float64(tb.TicksPerSecond) / 1e6)
}

// Duration returns the wall time elapsed between two ticks.
func (tb TimeBase) Duration(start, end Timestamp) time.Duration {
	return time.Duration(float64(end-start) * float64(time.Second) / float64(tb.TicksPerSecond))
}

type TimerKind uint8

const (
	// KindNone marks a timer produced by dynamic instrumentation of a
	// function.
	KindNone TimerKind = iota
	// KindIntrospection marks a timer the profiler recorded about itself.
	KindIntrospection
	// KindGpuActivity marks a span on a GPU timeline.
	KindGpuActivity
	// KindCoreActivity marks per-core scheduling activity. Core activity is
	// drawn but never labeled and doesn't contribute to a track's depth.
	KindCoreActivity
)

func (k TimerKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindIntrospection:
		return "introspection"
	case KindGpuActivity:
		return "gpu activity"
	case KindCoreActivity:
		return "core activity"
	default:
		return fmt.Sprintf("TimerKind(%d)", uint8(k))
	}
}

// Timer is one instrumented or traced interval. Depth is the nesting level
// within the timer's track and is immutable once the timer has been ingested;
// records at the same depth arrive in non-decreasing Start order.
type Timer struct {
	Start Timestamp
	End   Timestamp
	Depth uint32
	// ThreadID identifies the thread that produced the timer. For GPU
	// activity it is the thread that submitted the work.
	ThreadID int32
	// FunctionAddress resolves to a Function for instrumented timers. Zero
	// if the timer wasn't produced by function instrumentation.
	FunctionAddress uint64
	// UserDataKey is an interned-string key. For GPU activity it names the
	// pipeline stage, for introspection timers the scope label.
	UserDataKey uint64
	// TimelineHash is the interned name of the GPU timeline the timer was
	// traced on. Zero for CPU timers.
	TimelineHash uint64
	Kind         TimerKind
}

// Function describes a resolved function reference.
type Function struct {
	Address uint64
	// DisplayName is the demangled, human-readable name.
	DisplayName string
	// Module is the name of the loaded module the function belongs to.
	Module string
}
