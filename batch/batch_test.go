package batch

import (
	"image/color"
	"testing"

	"github.com/atharwa-24/orbit/mem"
	"github.com/atharwa-24/orbit/picking"
	"github.com/atharwa-24/orbit/track"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestFrameGroupsByColor(t *testing.T) {
	f := NewFrame(picking.BatcherTimeGraph)
	f.AddBox(track.Pt(0, 0), track.Pt(10, 20), 0.25, red, nil)
	f.AddBox(track.Pt(10, 0), track.Pt(10, 20), 0.25, blue, nil)
	f.AddBox(track.Pt(20, 0), track.Pt(10, 20), 0.25, red, nil)
	f.AddVerticalLine(track.Pt(30, 0), 20, 0.25, red, nil)

	if got := f.NumBoxes(); got != 3 {
		t.Errorf("got %d boxes, want 3", got)
	}
	if got := f.NumLines(); got != 1 {
		t.Errorf("got %d lines, want 1", got)
	}

	groups := map[color.NRGBA]int{}
	f.Boxes(func(c color.NRGBA, boxes *mem.BucketSlice[Box]) {
		groups[c] = boxes.Len()
	})
	if groups[red] != 2 || groups[blue] != 1 {
		t.Errorf("got box groups %v, want red=2 blue=1", groups)
	}

	// Insertion order within a group survives.
	f.Boxes(func(c color.NRGBA, boxes *mem.BucketSlice[Box]) {
		if c != red {
			return
		}
		if boxes.Get(0).Pos.X != 0 || boxes.Get(1).Pos.X != 20 {
			t.Errorf("red boxes out of order: %v, %v", boxes.Get(0).Pos, boxes.Get(1).Pos)
		}
	})
}

func TestFrameIDs(t *testing.T) {
	f := NewFrame(picking.BatcherTimeGraph)
	box := &track.TimerBox{}
	f.AddBox(track.Pt(0, 0), track.Pt(10, 20), 0.25, red, &track.PickingUserData{
		Box:     box,
		Tooltip: func(picking.ID) string { return "tip" },
	})
	f.AddVerticalLine(track.Pt(30, 0), 20, 0.25, red, nil)

	var boxID, lineID picking.ID
	f.Boxes(func(_ color.NRGBA, boxes *mem.BucketSlice[Box]) {
		boxID = boxes.Get(0).ID
	})
	f.Lines(func(_ color.NRGBA, lines *mem.BucketSlice[Line]) {
		lineID = lines.Get(0).ID
	})

	if boxID.Kind() != picking.KindBox || boxID.Element() != 0 {
		t.Errorf("got box id %v", boxID)
	}
	if lineID.Kind() != picking.KindLine || lineID.Element() != 0 {
		t.Errorf("got line id %v", lineID)
	}
	if boxID.Batcher() != picking.BatcherTimeGraph {
		t.Errorf("got batcher %v", boxID.Batcher())
	}

	if got := f.Box(boxID); got != box {
		t.Errorf("got user data box %v, want %v", got, box)
	}
	if got := f.Tooltip(boxID); got != "tip" {
		t.Errorf("got tooltip %q, want %q", got, "tip")
	}
	// The line carries no user data.
	if got := f.Tooltip(lineID); got != "" {
		t.Errorf("got tooltip %q for the line, want none", got)
	}
}

func TestFrameReset(t *testing.T) {
	f := NewFrame(picking.BatcherTimeGraph)
	f.AddBox(track.Pt(0, 0), track.Pt(10, 20), 0.25, red, &track.PickingUserData{})
	id := picking.MakeID(picking.KindBox, 0, picking.BatcherTimeGraph)
	if f.UserData(id) == nil {
		t.Fatal("user data missing before reset")
	}

	f.Reset()
	if f.NumBoxes() != 0 || f.NumLines() != 0 {
		t.Errorf("got %d boxes and %d lines after reset", f.NumBoxes(), f.NumLines())
	}
	if f.UserData(id) != nil {
		t.Error("user data survived reset")
	}
	f.Boxes(func(c color.NRGBA, boxes *mem.BucketSlice[Box]) {
		if boxes.Len() != 0 {
			t.Errorf("group %v kept %d boxes after reset", c, boxes.Len())
		}
	})

	// Element indexing restarts.
	f.AddBox(track.Pt(5, 0), track.Pt(10, 20), 0.25, blue, nil)
	found := false
	f.Boxes(func(_ color.NRGBA, boxes *mem.BucketSlice[Box]) {
		for i := 0; i < boxes.Len(); i++ {
			found = true
			if got := boxes.Get(i).ID.Element(); got != 0 {
				t.Errorf("got element %d after reset, want 0", got)
			}
		}
	})
	if !found {
		t.Error("box added after reset not found")
	}
}

func TestCounter(t *testing.T) {
	var c Counter
	var sink track.Batcher = &c
	sink.AddBox(track.Pt(0, 0), track.Pt(1, 1), 0, red, nil)
	sink.AddBox(track.Pt(1, 0), track.Pt(1, 1), 0, red, nil)
	sink.AddVerticalLine(track.Pt(2, 0), 1, 0, red, nil)
	if c.NumBoxes != 2 || c.NumLines != 1 {
		t.Errorf("got %d boxes and %d lines, want 2 and 1", c.NumBoxes, c.NumLines)
	}
	c.Reset()
	if c.NumBoxes != 0 || c.NumLines != 0 {
		t.Error("counter not zeroed by Reset")
	}
}
