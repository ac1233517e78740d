package transcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var ErrNoAudioStream = errors.New("no audio stream found")

// Recording describes the first audio stream of a file
type Recording struct {
	Path       string  `json:"path"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Duration   float64 `json:"duration"` // seconds
	Codec      string  `json:"codec"`
	Format     string  `json:"format"`
	Bitrate    int     `json:"bitrate,omitempty"`
}

// Bounds is the time–frequency extent of the recording: its length by its
// Nyquist frequency.
func (r *Recording) Bounds() intervals.Window {
	return intervals.Window{
		Time: intervals.Interval{Min: 0, Max: r.Duration},
		Freq: intervals.Interval{Min: 0, Max: float64(r.SampleRate) / 2},
	}
}

// Probe runs ffprobe on path.
func (d *Decoder) Probe(ctx context.Context, path string) (*Recording, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "Probe",
		"path":     path,
	})

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		"-select_streams", "a:0",
		path,
	}
	output, err := d.run(ctx, d.config.FFprobePath, args)
	if err != nil {
		logger.Error(err, "ffprobe failed")
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	rec, err := ParseProbe(output)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec.Path = path

	logger.Debug("recording probed", logging.Fields{
		"sample_rate": rec.SampleRate,
		"channels":    rec.Channels,
		"codec":       rec.Codec,
		"duration":    rec.Duration,
	})
	return rec, nil
}

// ParseProbe reads ffprobe's JSON output. The stream duration wins over the
// container's when both are present.
func ParseProbe(data []byte) (*Recording, error) {
	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
			BitRate    string `json:"bit_rate"`
		} `json:"streams"`
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, ErrNoAudioStream
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("%w: stream is %s", ErrNoAudioStream, stream.CodecType)
	}
	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %q", stream.SampleRate)
	}
	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil || duration <= 0 {
		duration, err = strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil || duration <= 0 {
			return nil, fmt.Errorf("unknown duration")
		}
	}
	bitrate, _ := strconv.Atoi(stream.BitRate)

	return &Recording{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Duration:   duration,
		Codec:      stream.CodecName,
		Format:     probe.Format.FormatName,
		Bitrate:    bitrate,
	}, nil
}
