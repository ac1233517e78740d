// Package windowing generates the taper applied to each STFT frame.
package windowing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownWindow = errors.New("unknown window type")

// Kind names a window function
type Kind string

const (
	Hann           Kind = "hann"
	Hamming        Kind = "hamming"
	Blackman       Kind = "blackman"
	BlackmanHarris Kind = "blackman_harris"
	Bartlett       Kind = "bartlett"
	Welch          Kind = "welch"
	Rectangular    Kind = "rectangular"
)

// Kinds lists every supported window
var Kinds = []Kind{Hann, Hamming, Blackman, BlackmanHarris, Bartlett, Welch, Rectangular}

// ParseKind accepts a window name in any case, with '-' or '_' separators.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, name)
}

// Window holds precomputed coefficients for one frame size.
type Window struct {
	kind         Kind
	coefficients []float64
}

// New builds a periodic window of the given size, the variant suited to
// overlapping STFT frames.
func New(kind Kind, size int) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive: %d", size)
	}
	coeffs, err := Coefficients(kind, size, false)
	if err != nil {
		return nil, err
	}
	return &Window{kind: kind, coefficients: coeffs}, nil
}

// Coefficients computes the window. Symmetric windows divide by size-1,
// periodic ones by size.
func Coefficients(kind Kind, size int, symmetric bool) ([]float64, error) {
	c := make([]float64, size)
	if size == 1 {
		c[0] = 1
		return c, nil
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}
	half := float64(size-1) / 2

	for i := range size {
		arg := 2 * math.Pi * float64(i) / denominator
		switch kind {
		case Hann:
			c[i] = 0.5 * (1 - math.Cos(arg))
		case Hamming:
			c[i] = 0.54 - 0.46*math.Cos(arg)
		case Blackman:
			c[i] = 0.42 - 0.5*math.Cos(arg) + 0.08*math.Cos(2*arg)
		case BlackmanHarris:
			c[i] = 0.35875 - 0.48829*math.Cos(arg) + 0.14128*math.Cos(2*arg) - 0.01168*math.Cos(3*arg)
		case Bartlett:
			c[i] = 1 - math.Abs((float64(i)-half)/half)
		case Welch:
			x := (float64(i) - half) / half
			c[i] = 1 - x*x
		case Rectangular:
			c[i] = 1
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, kind)
		}
	}
	return c, nil
}

func (w *Window) Kind() Kind { return w.kind }

func (w *Window) Size() int { return len(w.coefficients) }

// ApplyInPlace multiplies frame by the window.
func (w *Window) ApplyInPlace(frame []float64) error {
	if len(frame) != len(w.coefficients) {
		return fmt.Errorf("frame length (%d) doesn't match window size (%d)", len(frame), len(w.coefficients))
	}
	for i, c := range w.coefficients {
		frame[i] *= c
	}
	return nil
}

// Coherent returns the coherent gain, the mean coefficient. Magnitudes are
// divided by it to read in the units of an unwindowed sinusoid.
func (w *Window) Coherent() float64 {
	sum := 0.0
	for _, c := range w.coefficients {
		sum += c
	}
	return sum / float64(len(w.coefficients))
}
