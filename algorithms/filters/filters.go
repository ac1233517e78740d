// Package filters holds the first-order filters applied to audio before it
// is transformed.
package filters

import (
	"fmt"
	"math"
)

// DCBlocker is a one-pole high-pass filter that removes the DC component:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// The pole R sits just inside the unit circle; the closer to 1, the lower
// the cutoff.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCBlocker struct {
	pole   float64
	x1, y1 float64
}

// NewDCBlocker creates a DC blocker with a -3 dB point near cutoff Hz,
// using R ≈ 1 - 2π·fc/fs.
func NewDCBlocker(sampleRate int, cutoff float64) (*DCBlocker, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if cutoff <= 0 || cutoff >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("cutoff must be in (0, %d): %g", sampleRate/2, cutoff)
	}
	pole := 1 - 2*math.Pi*cutoff/float64(sampleRate)
	return &DCBlocker{pole: math.Min(math.Max(pole, 0.001), 0.999)}, nil
}

// Pole returns R.
func (dc *DCBlocker) Pole() float64 { return dc.pole }

// Process filters one sample.
func (dc *DCBlocker) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1, dc.y1 = x, y
	return y
}

// ProcessBuffer filters input into a new slice, carrying state across calls.
func (dc *DCBlocker) ProcessBuffer(input []float64) []float64 {
	out := make([]float64, len(input))
	for i, x := range input {
		out[i] = dc.Process(x)
	}
	return out
}

// Reset clears the filter state. Call it between discontinuous buffers.
func (dc *DCBlocker) Reset() {
	dc.x1, dc.y1 = 0, 0
}

// PreEmphasis lifts high frequencies with y[n] = x[n] - α·x[n-1]. Quiet
// ultrasonic calls show up better with α around 0.95.
type PreEmphasis struct {
	alpha float64
	x1    float64
}

func NewPreEmphasis(alpha float64) (*PreEmphasis, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("pre-emphasis coefficient must be in (0, 1): %g", alpha)
	}
	return &PreEmphasis{alpha: alpha}, nil
}

func (p *PreEmphasis) Process(x float64) float64 {
	y := x - p.alpha*p.x1
	p.x1 = x
	return y
}

func (p *PreEmphasis) ProcessBuffer(input []float64) []float64 {
	out := make([]float64, len(input))
	for i, x := range input {
		out[i] = p.Process(x)
	}
	return out
}

func (p *PreEmphasis) Reset() { p.x1 = 0 }
