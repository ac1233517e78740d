package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var ErrNoSamples = errors.New("no audio samples decoded")

// AudioData is decoded mono PCM
type AudioData struct {
	PCM        []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
	Start      float64   `json:"start"` // seconds into the recording of PCM[0]
	Duration   float64   `json:"duration"`
}

// Decoder handles audio decoding using FFmpeg
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig, logger logging.Logger) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// Config returns the decoder configuration
func (d *Decoder) Config() *DecoderConfig {
	return d.config
}

// Decode decodes the whole recording.
func (d *Decoder) Decode(ctx context.Context, rec *Recording) (*AudioData, error) {
	return d.DecodeRange(ctx, rec, 0, rec.Duration)
}

// DecodeRange decodes [start, end) seconds of the recording, clipped to it.
func (d *Decoder) DecodeRange(ctx context.Context, rec *Recording, start, end float64) (*AudioData, error) {
	start = math.Max(start, 0)
	end = math.Min(end, rec.Duration)
	if end <= start {
		return nil, fmt.Errorf("empty range [%g, %g) in %s", start, end, rec.Path)
	}
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeRange",
		"path":     rec.Path,
		"start":    start,
		"end":      end,
	})

	args := d.buildArgs(rec, start, end-start)
	began := time.Now()
	output, err := d.run(ctx, d.config.FFmpegPath, args)
	if err != nil {
		logger.Error(err, "ffmpeg decode failed")
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	rate := d.outputRate(rec)
	logger.Debug("range decoded", logging.Fields{
		"samples":     len(samples),
		"sample_rate": rate,
		"decode_time": time.Since(began).Seconds(),
	})
	return &AudioData{
		PCM:        samples,
		SampleRate: rate,
		Start:      start,
		Duration:   float64(len(samples)) / float64(rate),
	}, nil
}

func (d *Decoder) outputRate(rec *Recording) int {
	if d.config.TargetSampleRate > 0 {
		return d.config.TargetSampleRate
	}
	return rec.SampleRate
}

// buildArgs seeks before the input so ffmpeg skips straight to start.
func (d *Decoder) buildArgs(rec *Recording, start, duration float64) []string {
	args := []string{"-v", "error"}
	if start > 0 {
		args = append(args, "-ss", strconv.FormatFloat(start, 'f', 6, 64))
	}
	args = append(args, "-i", rec.Path)
	if duration > 0 && start+duration < rec.Duration {
		args = append(args, "-t", strconv.FormatFloat(duration, 'f', 6, 64))
	}
	args = append(args,
		"-map", "0:a:0",
		"-vn",
		"-f", "f64le",
		"-ac", strconv.Itoa(d.config.TargetChannels),
		"-ar", strconv.Itoa(d.outputRate(rec)),
	)

	var filters []string
	if d.outputRate(rec) != rec.SampleRate {
		switch d.config.ResampleQuality {
		case "fast":
			filters = append(filters, "aresample=resampler=soxr:precision=16")
		case "medium":
			filters = append(filters, "aresample=resampler=soxr:precision=20")
		case "high":
			filters = append(filters, "aresample=resampler=soxr:precision=28")
		}
	}
	if d.config.EnableNormalization {
		if f := d.normalizationFilter(); f != "" {
			filters = append(filters, f)
		}
	}
	if len(filters) > 0 {
		args = append(args, "-af", strings.Join(filters, ","))
	}
	return append(args, "pipe:1")
}

func (d *Decoder) normalizationFilter() string {
	switch d.config.NormalizationMethod {
	case "loudnorm":
		return fmt.Sprintf("loudnorm=I=%.1f:TP=%.1f:LRA=%.1f",
			d.config.TargetLUFS,
			d.config.TargetPeak,
			d.config.LoudnessRange)
	case "dynaudnorm":
		return "dynaudnorm=p=0.95:m=10:s=12"
	default:
		return ""
	}
}

// run executes a binary under the configured timeout and returns stdout.
// A failing exit carries stderr in the error.
func (d *Decoder) run(ctx context.Context, bin string, args []string) ([]byte, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}
	d.logger.Debug("running command", logging.Fields{
		"command": bin + " " + strings.Join(args, " "),
	})
	output, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

// CheckBinaries verifies ffmpeg and ffprobe can be run.
func (d *Decoder) CheckBinaries(ctx context.Context) error {
	for _, bin := range []string{d.config.FFmpegPath, d.config.FFprobePath} {
		if _, err := d.run(ctx, bin, []string{"-version"}); err != nil {
			return fmt.Errorf("%s not available: %w", bin, err)
		}
	}
	return nil
}

// bytesToFloat64 reads f64le samples, dropping a trailing partial sample.
func bytesToFloat64(data []byte) []float64 {
	data = data[:len(data)-len(data)%8]
	samples := make([]float64, len(data)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples
}
