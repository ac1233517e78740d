// Package transcode reads recordings through ffmpeg. Probe reports what a
// file holds and Decode turns it into mono float64 PCM.
package transcode

import (
	"fmt"
	"time"
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // 0 keeps the recording's rate
	TargetChannels   int           `json:"target_channels"`
	ResampleQuality  string        `json:"resample_quality"` // "fast", "medium", "high"
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"`
	// Normalization options
	EnableNormalization bool    `json:"enable_normalization"`
	NormalizationMethod string  `json:"normalization_method"` // "loudnorm", "dynaudnorm"
	TargetLUFS          float64 `json:"target_lufs"`
	TargetPeak          float64 `json:"target_peak"`
	LoudnessRange       float64 `json:"loudness_range"`
}

// DefaultDecoderConfig returns default decoder configuration. Recordings are
// decoded at their own rate so the frequency axis reaches their Nyquist.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate:    0,
		TargetChannels:      1,
		ResampleQuality:     "medium",
		FFmpegPath:          "ffmpeg",
		FFprobePath:         "ffprobe",
		Timeout:             2 * time.Minute,
		EnableNormalization: false,
		NormalizationMethod: "loudnorm",
		TargetLUFS:          -23.0, // EBU R128
		TargetPeak:          -2.0,
		LoudnessRange:       7.0,
	}
}

// Validate checks the configuration without touching the binaries.
func (c *DecoderConfig) Validate() error {
	if c.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate cannot be negative: %d", c.TargetSampleRate)
	}
	if c.TargetChannels != 1 {
		return fmt.Errorf("only mono decoding is supported, got %d channels", c.TargetChannels)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", c.Timeout)
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return fmt.Errorf("ffmpeg and ffprobe paths are required")
	}
	switch c.ResampleQuality {
	case "", "fast", "medium", "high":
	default:
		return fmt.Errorf("unknown resample quality %q", c.ResampleQuality)
	}
	if c.EnableNormalization {
		switch c.NormalizationMethod {
		case "loudnorm", "dynaudnorm":
		default:
			return fmt.Errorf("unknown normalization method %q", c.NormalizationMethod)
		}
	}
	return nil
}
