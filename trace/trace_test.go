package trace

import (
	"testing"
	"time"
)

func TestTimeBaseConversions(t *testing.T) {
	tb := TimeBase{TicksPerSecond: 1e9} // nanosecond ticks

	if got := tb.UsFromTick(1500); got != 1.5 {
		t.Errorf("got %v us, want 1.5", got)
	}
	if got := tb.TickFromUs(1.5); got != 1500 {
		t.Errorf("got tick %v, want 1500", got)
	}
	// With microsecond ticks the conversions are exact in both directions.
	us := TimeBase{TicksPerSecond: 1e6}
	for _, tick := range []Timestamp{0, 1, 1000, 123456789} {
		if got := us.TickFromUs(us.UsFromTick(tick)); got != tick {
			t.Errorf("round trip of tick %d: got %d", tick, got)
		}
	}

	if got := tb.Duration(1000, 2500); got != 1500*time.Nanosecond {
		t.Errorf("got duration %v, want 1.5us", got)
	}

	coarse := TimeBase{TicksPerSecond: 1e6}
	if got := coarse.Duration(100, 300); got != 200*time.Microsecond {
		t.Errorf("got duration %v, want 200us", got)
	}
}

func TestTimerKindString(t *testing.T) {
	cases := []struct {
		kind TimerKind
		want string
	}{
		{KindNone, "none"},
		{KindIntrospection, "introspection"},
		{KindGpuActivity, "gpu activity"},
		{KindCoreActivity, "core activity"},
		{TimerKind(99), "TimerKind(99)"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}
