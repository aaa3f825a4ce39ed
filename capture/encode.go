package capture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/atharwa-24/orbit/trace"
	"github.com/atharwa-24/orbit/track"
)

// Captures dump to a snappy-framed stream of varints. The format carries the
// data model only; display state like the selection or collapse flags is per
// session and not part of it.
var dumpMagic = [4]byte{'O', 'R', 'B', 'T'}

const dumpVersion = 1

type encoder struct {
	w   io.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) uvarint(v uint64) {
	n := binary.PutUvarint(e.buf[:], v)
	e.write(e.buf[:n])
}

func (e *encoder) varint(v int64) {
	n := binary.PutVarint(e.buf[:], v)
	e.write(e.buf[:n])
}

func (e *encoder) string(s string) {
	e.uvarint(uint64(len(s)))
	e.write([]byte(s))
}

func (e *encoder) byte(b byte) {
	e.write([]byte{b})
}

type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(d.r)
	d.err = err
	return v
}

func (d *decoder) varint() int64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadVarint(d.r)
	d.err = err
	return v
}

// maxStringLen bounds decoded string lengths. The strings in a dump are
// interned names and labels; a length prefix beyond this is corruption, and
// allocating it blindly would crash on a well-framed but bogus stream.
const maxStringLen = 1 << 20

func (d *decoder) string() string {
	n := d.uvarint()
	if d.err != nil {
		return ""
	}
	if n > maxStringLen {
		d.err = fmt.Errorf("string length %d exceeds %d", n, maxStringLen)
		return ""
	}
	b := make([]byte, n)
	_, d.err = io.ReadFull(d.r, b)
	return string(b)
}

func (d *decoder) byte() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	d.err = err
	return b
}

// Dump writes the capture to w. The tracks may keep ingesting while a dump
// is running; timers that arrive mid-dump may or may not be included.
func (c *Capture) Dump(w io.Writer) error {
	sw := snappy.NewBufferedWriter(w)
	e := &encoder{w: sw}

	e.write(dumpMagic[:])
	e.byte(dumpVersion)
	e.uvarint(c.timeBase.TicksPerSecond)

	e.uvarint(uint64(c.strings.Len()))
	c.strings.do(func(key uint64, s string) {
		e.uvarint(key)
		e.string(s)
	})

	e.uvarint(uint64(c.functions.Len()))
	c.functions.do(func(f trace.Function) {
		e.uvarint(f.Address)
		e.string(f.DisplayName)
		e.string(f.Module)
	})

	c.mu.RLock()
	names := make(map[int32]string, len(c.threadNames))
	for tid, name := range c.threadNames {
		names[tid] = name
	}
	c.mu.RUnlock()
	e.uvarint(uint64(len(names)))
	for tid, name := range names {
		e.varint(int64(tid))
		e.string(name)
	}

	// Timers are dumped track by track, chain by chain. Chain order is
	// non-decreasing in start time, which makes the start deltas small.
	tracks := c.Tracks()
	n := 0
	for _, tr := range tracks {
		n += tr.NumTimers()
	}
	e.uvarint(uint64(n))
	var prevStart trace.Timestamp
	for _, tr := range tracks {
		for _, chain := range tr.Timers() {
			chain.Do(func(box *track.TimerBox) bool {
				t := &box.Timer
				e.varint(int64(t.Start - prevStart))
				prevStart = t.Start
				e.uvarint(uint64(t.End - t.Start))
				e.uvarint(uint64(t.Depth))
				e.varint(int64(t.ThreadID))
				e.uvarint(t.FunctionAddress)
				e.uvarint(t.UserDataKey)
				e.uvarint(t.TimelineHash)
				e.byte(byte(t.Kind))
				return e.err == nil
			})
		}
	}

	if e.err != nil {
		return fmt.Errorf("dumping capture: %w", e.err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("dumping capture: %w", err)
	}
	return nil
}

// Load reads a capture dumped by Dump. Timers are re-ingested through the
// normal routing, so the loaded capture has the same tracks, bounds and
// depths as the dumped one.
func Load(r io.Reader) (*Capture, error) {
	d := &decoder{r: bufio.NewReader(snappy.NewReader(r))}

	var magic [4]byte
	if d.err == nil {
		_, d.err = io.ReadFull(d.r, magic[:])
	}
	if d.err != nil {
		return nil, fmt.Errorf("loading capture: %w", d.err)
	}
	if magic != dumpMagic {
		return nil, fmt.Errorf("loading capture: bad magic %q", magic[:])
	}
	if v := d.byte(); d.err == nil && v != dumpVersion {
		return nil, fmt.Errorf("loading capture: unsupported version %d", v)
	}

	c := New(trace.TimeBase{TicksPerSecond: d.uvarint()})

	for i, n := 0, int(d.uvarint()); i < n && d.err == nil; i++ {
		key := d.uvarint()
		c.strings.Add(key, d.string())
	}

	for i, n := 0, int(d.uvarint()); i < n && d.err == nil; i++ {
		c.functions.Add(trace.Function{
			Address:     d.uvarint(),
			DisplayName: d.string(),
			Module:      d.string(),
		})
	}

	for i, n := 0, int(d.uvarint()); i < n && d.err == nil; i++ {
		tid := int32(d.varint())
		c.SetThreadName(tid, d.string())
	}

	var prevStart trace.Timestamp
	for i, n := 0, int(d.uvarint()); i < n && d.err == nil; i++ {
		start := prevStart + trace.Timestamp(d.varint())
		prevStart = start
		t := trace.Timer{
			Start:           start,
			End:             start + trace.Timestamp(d.uvarint()),
			Depth:           uint32(d.uvarint()),
			ThreadID:        int32(d.varint()),
			FunctionAddress: d.uvarint(),
			UserDataKey:     d.uvarint(),
			TimelineHash:    d.uvarint(),
			Kind:            trace.TimerKind(d.byte()),
		}
		if d.err == nil {
			c.OnTimer(t)
		}
	}

	if d.err != nil {
		return nil, fmt.Errorf("loading capture: %w", d.err)
	}
	return c, nil
}
