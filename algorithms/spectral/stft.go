// Package spectral computes short-time Fourier transforms of mono PCM.
package spectral

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"runtime"

	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/windowing"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var ErrSignalTooShort = errors.New("signal too short for window")

// Window is applied to each frame before the FFT
type Window interface {
	ApplyInPlace(frame []float64) error
}

// STFT computes magnitude spectrograms on a bounded worker pool.
type STFT struct {
	workers int
	logger  logging.Logger
}

// Result holds a magnitude spectrogram, frames by bins
type Result struct {
	Magnitude  [][]float64 `json:"magnitude"`
	Frames     int         `json:"frames"`
	Bins       int         `json:"bins"`
	SampleRate int         `json:"sample_rate"`
	WindowSize int         `json:"window_size"`
	HopSize    int         `json:"hop_size"`
}

// FreqResolution is the bin width in Hz.
func (r *Result) FreqResolution() float64 {
	return float64(r.SampleRate) / float64(r.WindowSize)
}

// TimeResolution is the hop in seconds.
func (r *Result) TimeResolution() float64 {
	return float64(r.HopSize) / float64(r.SampleRate)
}

// FrameTime is the centre of frame i relative to the start of the signal.
func (r *Result) FrameTime(i int) float64 {
	return (float64(i*r.HopSize) + float64(r.WindowSize)/2) / float64(r.SampleRate)
}

// NewSTFT creates an STFT calculator. workers <= 0 sizes the pool from the
// CPU count.
func NewSTFT(workers int, logger logging.Logger) *STFT {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &STFT{
		workers: workers,
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// Compute transforms signal frame by frame. Frames are fanned out to the
// worker pool; ctx cancels the remaining ones.
func (s *STFT) Compute(ctx context.Context, signal []float64, windowSize, hopSize, sampleRate int, window Window) (*Result, error) {
	if windowSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("window and hop size must be positive: %d, %d", windowSize, hopSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if len(signal) < windowSize {
		return nil, fmt.Errorf("%w: %d samples, window %d", ErrSignalTooShort, len(signal), windowSize)
	}

	frames := (len(signal)-windowSize)/hopSize + 1
	bins := windowSize/2 + 1
	magnitude := make([][]float64, frames)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount(frames))
	for i := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frame := make([]float64, windowSize)
			copy(frame, signal[i*hopSize:i*hopSize+windowSize])
			if window != nil {
				if err := window.ApplyInPlace(frame); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
			}
			spectrum := fft.FFTReal(frame)
			row := make([]float64, bins)
			for b := range bins {
				row[b] = cmplx.Abs(spectrum[b])
			}
			magnitude[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("stft computed", logging.Fields{
		"frames":      frames,
		"bins":        bins,
		"window_size": windowSize,
		"hop_size":    hopSize,
	})

	return &Result{
		Magnitude:  magnitude,
		Frames:     frames,
		Bins:       bins,
		SampleRate: sampleRate,
		WindowSize: windowSize,
		HopSize:    hopSize,
	}, nil
}

// ComputeWindowed builds the named window and computes the STFT with it.
func (s *STFT) ComputeWindowed(ctx context.Context, signal []float64, windowSize, hopSize, sampleRate int, kind windowing.Kind) (*Result, error) {
	w, err := windowing.New(kind, windowSize)
	if err != nil {
		return nil, err
	}
	res, err := s.Compute(ctx, signal, windowSize, hopSize, sampleRate, w)
	if err != nil {
		return nil, err
	}
	// read magnitudes in the units of an unwindowed full-scale sinusoid
	scale := 2 / (float64(windowSize) * w.Coherent())
	for _, row := range res.Magnitude {
		for b := range row {
			row[b] *= scale
		}
	}
	return res, nil
}

// workerCount keeps small jobs from paying for goroutines they cannot use.
func (s *STFT) workerCount(frames int) int {
	return max(1, min(s.workers, frames))
}

// Decibels converts magnitudes to dB relative to ref. Values below floor
// are clamped to floor.
func Decibels(magnitude [][]float64, ref, floor float64) [][]float64 {
	out := make([][]float64, len(magnitude))
	for i, row := range magnitude {
		out[i] = make([]float64, len(row))
		for b, m := range row {
			db := floor
			if m > 0 {
				db = 20 * math.Log10(m/ref)
			}
			out[i][b] = math.Max(db, floor)
		}
	}
	return out
}
