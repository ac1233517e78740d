// Package spectrogram renders spectrogram images of recording segments. A
// Renderer is the image source a canvas fetches its tiles from.
package spectrogram

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrEmptyAudio = errors.New("audio has no samples")

// Audio is random access to a mono recording.
type Audio interface {
	SampleRate() int
	// Duration is in seconds.
	Duration() float64
	// Samples returns the samples covering [start, end) seconds, clipped to
	// the recording, and the time of the first one.
	Samples(ctx context.Context, start, end float64) ([]float64, float64, error)
}

// PCM is a decoded recording held in memory.
type PCM struct {
	samples []float64
	rate    int
}

func NewPCM(samples []float64, sampleRate int) (*PCM, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	return &PCM{samples: samples, rate: sampleRate}, nil
}

func (p *PCM) SampleRate() int { return p.rate }

func (p *PCM) Duration() float64 {
	return float64(len(p.samples)) / float64(p.rate)
}

func (p *PCM) Samples(ctx context.Context, start, end float64) ([]float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	i := max(0, int(math.Floor(start*float64(p.rate))))
	j := min(len(p.samples), int(math.Ceil(end*float64(p.rate))))
	if i >= j {
		return nil, 0, fmt.Errorf("no samples in [%g, %g)", start, end)
	}
	return p.samples[i:j], float64(i) / float64(p.rate), nil
}

// Sweep is a linear chirp from From to To Hz over the whole signal.
type Sweep struct {
	From, To  float64
	Amplitude float64
}

// Synthesize renders sweeps into a mono recording. It stands in for a real
// recording in demos and tests.
func Synthesize(sampleRate int, duration float64, sweeps ...Sweep) (*PCM, error) {
	n := int(duration * float64(sampleRate))
	if n <= 0 {
		return nil, ErrEmptyAudio
	}
	samples := make([]float64, n)
	for _, s := range sweeps {
		// instantaneous frequency f(t) = From + k t, phase is its integral
		k := (s.To - s.From) / duration
		for i := range samples {
			t := float64(i) / float64(sampleRate)
			samples[i] += s.Amplitude * math.Sin(2*math.Pi*(s.From*t+k*t*t/2))
		}
	}
	return NewPCM(samples, sampleRate)
}
