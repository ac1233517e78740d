package spectral

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/windowing"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestComputeWindowedFindsTone(t *testing.T) {
	const (
		sampleRate = 8000
		windowSize = 256
		hopSize    = 128
	)
	// 1000 Hz sits exactly on bin 32 at 31.25 Hz per bin
	signal := sine(1000, sampleRate, 4096)
	s := NewSTFT(2, &logging.NoOpLogger{})

	res, err := s.ComputeWindowed(context.Background(), signal, windowSize, hopSize, sampleRate, windowing.Hann)
	if err != nil {
		t.Fatalf("ComputeWindowed() error = %v", err)
	}
	if want := (4096-windowSize)/hopSize + 1; res.Frames != want {
		t.Errorf("Frames = %d, want %d", res.Frames, want)
	}
	if res.Bins != windowSize/2+1 {
		t.Errorf("Bins = %d, want %d", res.Bins, windowSize/2+1)
	}
	if got := res.FreqResolution(); got != 31.25 {
		t.Errorf("FreqResolution() = %v, want 31.25", got)
	}

	for f, row := range res.Magnitude {
		peak := 0
		for b := range row {
			if row[b] > row[peak] {
				peak = b
			}
		}
		if peak != 32 {
			t.Fatalf("frame %d peak bin = %d, want 32", f, peak)
		}
		if math.Abs(row[peak]-1) > 1e-3 {
			t.Errorf("frame %d peak magnitude = %v, want 1", f, row[peak])
		}
	}
}

func TestComputeRejectsShortSignal(t *testing.T) {
	s := NewSTFT(0, &logging.NoOpLogger{})
	_, err := s.Compute(context.Background(), make([]float64, 10), 64, 32, 8000, nil)
	if !errors.Is(err, ErrSignalTooShort) {
		t.Errorf("Compute() error = %v, want ErrSignalTooShort", err)
	}
}

func TestComputeHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSTFT(1, &logging.NoOpLogger{})
	_, err := s.Compute(ctx, make([]float64, 4096), 64, 32, 8000, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Compute() error = %v, want context.Canceled", err)
	}
}

func TestDecibels(t *testing.T) {
	got := Decibels([][]float64{{1, 0.1, 0, 1e-9}}, 1, -100)
	want := []float64{0, -20, -100, -100}
	for i := range want {
		if math.Abs(got[0][i]-want[i]) > 1e-9 {
			t.Errorf("Decibels()[%d] = %v, want %v", i, got[0][i], want[i])
		}
	}
}

func TestFrameTime(t *testing.T) {
	r := &Result{SampleRate: 100, WindowSize: 20, HopSize: 10}
	if got := r.FrameTime(3); got != 0.4 {
		t.Errorf("FrameTime(3) = %v, want 0.4", got)
	}
}
