package transcode

import (
	"context"
	"fmt"
	"math"
)

// Source reads a recording range by range, so only the segments a canvas
// asks for are ever decoded. It satisfies spectrogram.Audio.
type Source struct {
	decoder   *Decoder
	recording *Recording
}

// Open probes path and returns a Source over it.
func (d *Decoder) Open(ctx context.Context, path string) (*Source, error) {
	rec, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Source{decoder: d, recording: rec}, nil
}

func (s *Source) Recording() *Recording { return s.recording }

func (s *Source) SampleRate() int { return s.decoder.outputRate(s.recording) }

func (s *Source) Duration() float64 { return s.recording.Duration }

// Samples decodes [start, end) seconds. The start is snapped down to a
// sample boundary and returned with the samples.
func (s *Source) Samples(ctx context.Context, start, end float64) ([]float64, float64, error) {
	rate := float64(s.SampleRate())
	start = math.Floor(math.Max(start, 0)*rate) / rate
	data, err := s.decoder.DecodeRange(ctx, s.recording, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("samples [%g, %g): %w", start, end, err)
	}
	return data.PCM, data.Start, nil
}
