package capture

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharwa-24/orbit/trace"
	"github.com/atharwa-24/orbit/track"
)

func testCapture() *Capture {
	return New(trace.TimeBase{TicksPerSecond: 1e6})
}

func TestRouting(t *testing.T) {
	c := testCapture()
	gfx := c.Strings().Intern("gfx")

	cpu := trace.Timer{Start: 100, End: 200, ThreadID: 7, FunctionAddress: 0xabc}
	gpu := trace.Timer{Start: 150, End: 250, ThreadID: 7, TimelineHash: gfx, Kind: trace.KindGpuActivity}
	intro := trace.Timer{Start: 300, End: 400, ThreadID: 8, Kind: trace.KindIntrospection}

	c.OnTimer(cpu)
	c.OnTimer(gpu)
	c.OnTimer(intro)

	require.Len(t, c.Tracks(), 3)
	assert.Equal(t, 1, c.ThreadTrack(7).NumTimers())
	assert.Equal(t, 1, c.ThreadTrack(8).NumTimers())
	assert.Equal(t, 1, c.GpuTrack(gfx).NumTimers())
	assert.Equal(t, 3, c.NumTimers())

	// GPU timers route by timeline, not by the submitting thread.
	assert.Equal(t, "Graphics queue (gfx)", c.GpuTrack(gfx).Label())

	min, ok := c.MinTime()
	require.True(t, ok)
	assert.Equal(t, trace.Timestamp(100), min)
	max, ok := c.MaxTime()
	require.True(t, ok)
	assert.Equal(t, trace.Timestamp(400), max)
}

func TestTracksAreReused(t *testing.T) {
	c := testCapture()
	tr := c.ThreadTrack(7)
	assert.Same(t, tr, c.ThreadTrack(7))

	gfx := c.Strings().Intern("gfx")
	g := c.GpuTrack(gfx)
	assert.Same(t, g, c.GpuTrack(gfx))
	assert.Len(t, c.Tracks(), 2)
}

func TestEmptyCapture(t *testing.T) {
	c := testCapture()
	_, ok := c.MinTime()
	assert.False(t, ok)
	_, ok = c.MaxTime()
	assert.False(t, ok)
	assert.Zero(t, c.NumTimers())
}

func TestRenderContext(t *testing.T) {
	c := testCapture()
	c.SetThreadName(7, "render thread")
	box := c.OnTimer(trace.Timer{Start: 100, End: 200, ThreadID: 7})
	c.Select(box)
	c.SetVisibleFunctions(map[uint64]bool{0xabc: true})
	c.SetShowReturnValues(true)

	rc := c.RenderContext()
	assert.Same(t, box, rc.Selected)
	assert.True(t, rc.ShowReturnValues)
	assert.True(t, rc.VisibleFunctions[0xabc])
	assert.Equal(t, "render thread", rc.ThreadName(7))
	assert.Equal(t, "", rc.ThreadName(99))

	// Colors are stable across frames.
	assert.Equal(t, rc.ThreadColor(7), c.RenderContext().ThreadColor(7))

	c.Select(nil)
	assert.Nil(t, c.RenderContext().Selected)
}

// recordingSink keeps the y coordinate of every primitive it is handed.
type recordingSink struct {
	ys []float32
}

func (s *recordingSink) AddBox(pos, size track.Point, z float32, c color.NRGBA, ud *track.PickingUserData) {
	s.ys = append(s.ys, pos.Y)
}

func (s *recordingSink) AddVerticalLine(pos track.Point, height, z float32, c color.NRGBA, ud *track.PickingUserData) {
	s.ys = append(s.ys, pos.Y)
}

func TestUpdatePrimitivesStacksTracks(t *testing.T) {
	c := testCapture()
	c.OnTimer(trace.Timer{Start: 100, End: 500, ThreadID: 1, FunctionAddress: 0xabc})
	c.OnTimer(trace.Timer{Start: 100, End: 500, ThreadID: 2, FunctionAddress: 0xabc})

	view := track.View{
		MinTick:    0,
		MaxTick:    1000,
		WorldWidth: 100,
		PixelWidth: 100,
		TimeBase:   c.TimeBase(),
	}
	var sink recordingSink
	height := c.UpdatePrimitives(view, c.RenderContext(), &sink)

	require.Len(t, sink.ys, 2)
	wantHeight := c.ThreadTrack(1).Height() + c.ThreadTrack(2).Height()
	assert.Equal(t, wantHeight, height)
	// Tracks stack instead of overlapping.
	assert.NotEqual(t, sink.ys[0], sink.ys[1])
}

func TestDumpLoadRoundTrip(t *testing.T) {
	c := testCapture()
	gfx := c.Strings().Intern("gfx")
	swQueue := c.Strings().Intern("sw queue")
	hwExecution := c.Strings().Intern("hw execution")
	c.Functions().Add(trace.Function{Address: 0xabc, DisplayName: "myFunc", Module: "libgame.so"})
	c.SetThreadName(7, "render thread")
	c.SetThreadName(8, "io thread")

	timers := []trace.Timer{
		{Start: 100, End: 500, Depth: 0, ThreadID: 7, FunctionAddress: 0xabc},
		{Start: 150, End: 450, Depth: 1, ThreadID: 7, FunctionAddress: 0xabc},
		{Start: 90, End: 300, Depth: 0, ThreadID: 7, TimelineHash: gfx, UserDataKey: swQueue, Kind: trace.KindGpuActivity},
		{Start: 300, End: 600, Depth: 2, ThreadID: 7, TimelineHash: gfx, UserDataKey: hwExecution, Kind: trace.KindGpuActivity},
		{Start: 700, End: 800, Depth: 0, ThreadID: 8, UserDataKey: 9, Kind: trace.KindIntrospection},
	}
	for _, timer := range timers {
		c.OnTimer(timer)
	}

	var buf bytes.Buffer
	require.NoError(t, c.Dump(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, c.TimeBase(), loaded.TimeBase())
	assert.Equal(t, c.NumTimers(), loaded.NumTimers())
	assert.Equal(t, "render thread", loaded.ThreadName(7))
	assert.Equal(t, "io thread", loaded.ThreadName(8))
	assert.Equal(t, "gfx", loaded.Strings().Get(gfx).MustGet())
	assert.Equal(t, "myFunc", loaded.Functions().Lookup(0xabc).MustGet().DisplayName)

	min, _ := loaded.MinTime()
	max, _ := loaded.MaxTime()
	assert.Equal(t, trace.Timestamp(90), min)
	assert.Equal(t, trace.Timestamp(800), max)

	require.Len(t, loaded.Tracks(), 3)
	assert.Equal(t, 2, loaded.ThreadTrack(7).NumTimers())
	assert.Equal(t, 1, loaded.ThreadTrack(8).NumTimers())
	gpu := loaded.GpuTrack(gfx)
	assert.Equal(t, 2, gpu.NumTimers())
	assert.Equal(t, "Graphics queue (gfx)", gpu.Label())

	// Per-depth ordering and the records themselves survive the trip.
	var got []trace.Timer
	for _, tr := range loaded.Tracks() {
		for _, chain := range tr.Timers() {
			chain.Do(func(box *track.TimerBox) bool {
				got = append(got, box.Timer)
				return true
			})
		}
	}
	assert.ElementsMatch(t, timers, got)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("not a capture")))
	assert.Error(t, err)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	_, err := sw.Write([]byte("XRBT\x01"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	_, err = Load(&buf)
	assert.ErrorContains(t, err, "bad magic")
}

func TestLoadRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	_, err := sw.Write([]byte("ORBT\xff"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	_, err = Load(&buf)
	assert.ErrorContains(t, err, "unsupported version")
}

func TestLoadRejectsHugeStringLength(t *testing.T) {
	// A well-framed stream whose one string entry claims a length no real
	// dump can contain. Load has to fail cleanly instead of allocating it.
	var payload bytes.Buffer
	payload.WriteString("ORBT\x01")
	var varbuf [binary.MaxVarintLen64]byte
	put := func(v uint64) {
		n := binary.PutUvarint(varbuf[:], v)
		payload.Write(varbuf[:n])
	}
	put(1e6)     // ticks per second
	put(1)       // one string entry
	put(42)      // key
	put(1 << 62) // length

	var framed bytes.Buffer
	sw := snappy.NewBufferedWriter(&framed)
	_, err := sw.Write(payload.Bytes())
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	_, err = Load(&framed)
	assert.ErrorContains(t, err, "length")
}

func TestLoadRejectsTruncated(t *testing.T) {
	c := testCapture()
	c.OnTimer(trace.Timer{Start: 100, End: 200, ThreadID: 7})
	var buf bytes.Buffer
	require.NoError(t, c.Dump(&buf))

	_, err := Load(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	assert.Error(t, err)
}
