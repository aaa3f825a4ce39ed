// trackdump loads a capture dump and reports, per track, how many boxes and
// lines a projection of the requested time window would produce. It exists
// to inspect captures and to sanity-check overdraw elimination without a
// renderer attached.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/atharwa-24/orbit/batch"
	"github.com/atharwa-24/orbit/capture"
	"github.com/atharwa-24/orbit/track"
)

func main() {
	width := flag.Int("width", 1920, "viewport width in pixels")
	fromUs := flag.Float64("from", -1, "window start in microseconds (default: capture start)")
	toUs := flag.Float64("to", -1, "window end in microseconds (default: capture end)")
	expand := flag.Bool("expand", false, "expand all tracks before projecting")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: trackdump [flags] <capture file>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	c, err := capture.Load(f)
	if err != nil {
		log.Fatal(err)
	}

	tb := c.TimeBase()
	min, ok := c.MinTime()
	if !ok {
		log.Fatal("capture contains no timers")
	}
	max, _ := c.MaxTime()
	if *fromUs >= 0 {
		min = tb.TickFromUs(*fromUs)
	}
	if *toUs >= 0 {
		max = tb.TickFromUs(*toUs)
	}
	if max <= min {
		log.Fatalf("empty time window [%d, %d]", min, max)
	}

	if *expand {
		for _, tr := range c.Tracks() {
			tr.SetCollapsed(false)
		}
	}

	view := track.View{
		MinTick:    min,
		MaxTick:    max,
		WorldWidth: float32(*width),
		PixelWidth: *width,
		TimeBase:   tb,
	}
	rc := c.RenderContext()

	fmt.Printf("capture: %d timers across %d tracks, window %v\n",
		c.NumTimers(), len(c.Tracks()), tb.Duration(min, max))

	var total batch.Counter
	for _, tr := range c.Tracks() {
		var cnt batch.Counter
		tr.SetPos(view.WorldLeftX, tr.Height())
		tr.UpdatePrimitives(view, rc, &cnt)
		state := "expanded"
		if tr.Collapsed() {
			state = "collapsed"
		}
		fmt.Printf("%-24s %9s depth=%-3d timers=%-8d boxes=%-8d lines=%d\n",
			tr.Label(), state, tr.Depth(), tr.NumTimers(), cnt.NumBoxes, cnt.NumLines)
		total.NumBoxes += cnt.NumBoxes
		total.NumLines += cnt.NumLines
	}
	fmt.Printf("total: %d boxes, %d lines\n", total.NumBoxes, total.NumLines)
}
