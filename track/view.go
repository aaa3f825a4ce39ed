package track

import (
	"github.com/atharwa-24/orbit/trace"
)

// Point is a position or extent in world coordinates.
type Point struct {
	X, Y float32
}

func Pt(x, y float32) Point {
	return Point{x, y}
}

// Layout holds the vertical metrics of the time graph. All tracks of a
// graph share one Layout.
type Layout struct {
	// TextBoxHeight is the height of one timer row.
	TextBoxHeight float32
	// SpaceBetweenTracksAndThread separates a thread track's header from
	// its timer rows.
	SpaceBetweenTracksAndThread float32
	TrackBottomMargin           float32
}

func DefaultLayout() Layout {
	return Layout{
		TextBoxHeight:               20,
		SpaceBetweenTracksAndThread: 2,
		TrackBottomMargin:           5,
	}
}

// View is the read-only description of the viewport a projection pass maps
// timers into. It is supplied by the canvas once per frame.
type View struct {
	// MinTick and MaxTick delimit the visible time window.
	MinTick trace.Timestamp
	MaxTick trace.Timestamp
	// WorldLeftX is the world-space x coordinate that tick zero of the time
	// base projects to; WorldWidth is the world-space width corresponding
	// to the visible window.
	WorldLeftX float32
	WorldWidth float32
	// PixelWidth is the width of the viewport in physical pixels. It
	// decides which timers are too narrow to draw as boxes.
	PixelWidth int
	TimeBase   trace.TimeBase
}

// TimeWindowUs returns the width of the visible window in microseconds.
func (v View) TimeWindowUs() float64 {
	return v.TimeBase.UsFromTick(v.MaxTick - v.MinTick)
}

// PixelDeltaInTicks returns how many ticks one pixel covers, zero when the
// viewport has no width.
func (v View) PixelDeltaInTicks() trace.Timestamp {
	if v.PixelWidth <= 0 {
		return 0
	}
	return (v.MaxTick - v.MinTick) / trace.Timestamp(v.PixelWidth)
}
