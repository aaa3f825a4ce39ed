package color

import (
	"testing"
)

func TestPaletteStable(t *testing.T) {
	p := NewPalette()
	first := p.ColorForThread(7)
	for i := int32(0); i < 100; i++ {
		p.ColorForThread(i)
	}
	if got := p.ColorForThread(7); got != first {
		t.Errorf("thread color changed from %v to %v", first, got)
	}
}

func TestPaletteAssignmentOrder(t *testing.T) {
	// The color depends on when a thread is first seen, not on its id.
	p1 := NewPalette()
	p2 := NewPalette()
	a := p1.ColorForThread(100)
	b := p2.ColorForThread(200)
	if a != b {
		t.Errorf("first assigned colors differ: %v vs %v", a, b)
	}
}

func TestPaletteDistinct(t *testing.T) {
	p := NewPalette()
	seen := map[[4]uint8]int32{}
	for i := int32(0); i < 16; i++ {
		c := p.ColorForThread(i)
		key := [4]uint8{c.R, c.G, c.B, c.A}
		if prev, ok := seen[key]; ok {
			t.Errorf("threads %d and %d share color %v", prev, i, c)
		}
		seen[key] = i
	}
}

func TestOklchNRGBA(t *testing.T) {
	// Zero chroma is a grey: equal channels regardless of hue.
	for _, hue := range []float32{0, 90, 180, 270} {
		c := Oklch{L: 0.7, C: 0, H: hue, A: 1}.NRGBA()
		if c.R != c.G || c.G != c.B {
			t.Errorf("hue %v: achromatic color %v isn't grey", hue, c)
		}
	}

	if c := (Oklch{L: 1, C: 0, H: 0, A: 1}).NRGBA(); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("full lightness: got %v, want white", c)
	}
	if c := (Oklch{L: 0, C: 0, H: 0, A: 1}).NRGBA(); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("zero lightness: got %v, want black", c)
	}
	if c := (Oklch{L: 0.7, C: 0.1, H: 30, A: 0.5}).NRGBA(); c.A != 127 && c.A != 128 {
		t.Errorf("got alpha %d, want half", c.A)
	}
}

func TestOklchHueIsColorful(t *testing.T) {
	// With chroma, rotating the hue has to move the channels around.
	a := Oklch{L: 0.72, C: 0.125, H: 30, A: 1}.NRGBA()
	b := Oklch{L: 0.72, C: 0.125, H: 210, A: 1}.NRGBA()
	if a == b {
		t.Errorf("opposite hues produced the same color %v", a)
	}
}
