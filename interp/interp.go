package interp

import "github.com/chewxy/math32"

// Interpolation performs piecewise linear interpolation over a set of
// sample points given as a flat {x0, y0, x1, y1, ...} slice with
// strictly ascending x values.
type Interpolation struct {
	xs []float32
	ys []float32
}

// New builds an interpolation from flat x/y pairs.
func New(pairs []float32) *Interpolation {
	n := len(pairs) / 2
	in := &Interpolation{
		xs: make([]float32, n),
		ys: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		in.xs[i] = pairs[2*i]
		in.ys[i] = pairs[2*i+1]
	}
	return in
}

// Y returns the interpolated value at x, clamped to the outermost
// samples outside the covered range.
func (in *Interpolation) Y(x float32) float32 {
	n := len(in.xs)
	if x <= in.xs[0] {
		return in.ys[0]
	}
	if x >= in.xs[n-1] {
		return in.ys[n-1]
	}
	i := 1
	for in.xs[i] < x {
		i++
	}
	x0, x1 := in.xs[i-1], in.xs[i]
	y0, y1 := in.ys[i-1], in.ys[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// YInt returns the interpolated value rounded to the nearest integer.
func (in *Interpolation) YInt(x float32) int {
	return int(math32.Round(in.Y(x)))
}
