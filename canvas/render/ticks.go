package render

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// NiceStep returns the 1-2-5 step that divides span into at most maxTicks
// intervals.
func NiceStep(span float64, maxTicks int) float64 {
	if span <= 0 || maxTicks <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 0
	}
	raw := span / float64(maxTicks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * mag; step >= raw {
			return step
		}
	}
	return 10 * mag
}

// Ticks returns the multiples of a nice step inside iv.
func Ticks(iv intervals.Interval, maxTicks int) []float64 {
	step := NiceStep(iv.Width(), maxTicks)
	if step == 0 {
		return nil
	}
	first := math.Ceil(iv.Min/step) * step
	last := math.Floor(iv.Max/step) * step
	n := int(math.Round((last-first)/step)) + 1
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{first}
	}
	ticks := floats.Span(make([]float64, n), first, last)
	// Span accumulates rounding error; snap back onto the step grid
	for i, v := range ticks {
		ticks[i] = math.Round(v/step) * step
	}
	return ticks
}
