package color

import (
	"image/color"
	"sync"
)

// Golden angle in degrees. Successive hues land as far from all previous
// ones as possible, so tracks added over time stay distinguishable.
const hueStep = 137.50776405003785

const (
	paletteLightness = 0.72
	paletteChroma    = 0.125
)

// Palette hands out one stable color per thread. The first thread seen gets
// the first color, and a thread keeps its color for the life of the capture
// regardless of how many threads are added after it.
type Palette struct {
	mu       sync.Mutex
	assigned map[int32]color.NRGBA
	next     float32
}

func NewPalette() *Palette {
	return &Palette{assigned: map[int32]color.NRGBA{}}
}

// ColorForThread returns the color assigned to the thread, assigning a new
// one on first sight.
func (p *Palette) ColorForThread(tid int32) color.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.assigned[tid]; ok {
		return c
	}
	c := Oklch{L: paletteLightness, C: paletteChroma, H: p.next, A: 1}.NRGBA()
	p.next += hueStep
	for p.next >= 360 {
		p.next -= 360
	}
	p.assigned[tid] = c
	return c
}
