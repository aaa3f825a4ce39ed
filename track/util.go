package track

import (
	"time"

	"golang.org/x/text/message"
)

var local = message.NewPrinter(message.MatchLanguage("en"))

// prettyTime formats a duration the way timeslice labels and tooltips
// expect it, picking the largest unit that keeps the value readable.
func prettyTime(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return local.Sprintf("%d ns", d.Nanoseconds())
	case d < time.Millisecond:
		return local.Sprintf("%.3f us", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return local.Sprintf("%.3f ms", float64(d.Nanoseconds())/1e6)
	case d < time.Minute:
		return local.Sprintf("%.3f s", d.Seconds())
	default:
		return d.String()
	}
}
