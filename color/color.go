// Package color assigns display colors to threads. Colors are picked in the
// perceptually uniform Oklch space so that any number of threads get colors
// of comparable lightness and chroma, then converted to 8-bit sRGB for the
// renderer.
package color

import (
	"image/color"
	"math"
)

type Oklch struct {
	L float32
	C float32
	H float32
	A float32
}

type oklab struct {
	l     float32
	a     float32
	b     float32
	alpha float32
}

type linearSRGB struct {
	r float32
	g float32
	b float32
	a float32
}

func (c Oklch) oklab() oklab {
	h := float64(c.H * (math.Pi / 180))
	return oklab{
		l:     c.L,
		a:     c.C * float32(math.Cos(h)),
		b:     c.C * float32(math.Sin(h)),
		alpha: c.A,
	}
}

// linearSRGB converts from Oklab to linear sRGB without gamut mapping;
// channels outside [0, 1] are clamped by NRGBA.
func (c oklab) linearSRGB() linearSRGB {
	l_ := c.l + 0.3963377774*c.a + 0.2158037573*c.b
	m_ := c.l - 0.1055613458*c.a - 0.0638541728*c.b
	s_ := c.l - 0.0894841775*c.a - 1.2914855480*c.b

	l := l_ * l_ * l_
	m := m_ * m_ * m_
	s := s_ * s_ * s_

	return linearSRGB{
		+4.0767416621*l - 3.3077115913*m + 0.2309699292*s,
		-1.2684380046*l + 2.6097574011*m - 0.3413193965*s,
		-0.0041960863*l - 0.7034186147*m + 1.7076147010*s,
		c.alpha,
	}
}

func gamma(c float32) float32 {
	cp := float64(c)
	if cp >= 0.0031308 {
		return float32(1.055*math.Pow(cp, 1.0/2.4) - 0.055)
	} else {
		return float32(12.92 * cp)
	}
}

func clamp01(c float32) float32 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// NRGBA converts the color to 8-bit non-premultiplied sRGB, clamping
// channels that fall outside the sRGB gamut.
func (c Oklch) NRGBA() color.NRGBA {
	m := c.oklab().linearSRGB()
	to8 := func(v float32) uint8 {
		return uint8(math.Round(float64(gamma(clamp01(v))) * 255))
	}
	return color.NRGBA{
		R: to8(m.r),
		G: to8(m.g),
		B: to8(m.b),
		A: uint8(math.Round(float64(clamp01(c.A)) * 255)),
	}
}
