// Package config holds the tunables of a spectrogram canvas: segment ladder,
// label and hit-test thresholds, playback behaviour and spectrogram rendering.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid canvas config")

// CanvasConfig holds configuration for one canvas instance
type CanvasConfig struct {
	Segments    SegmentConfig     `json:"segments"`
	Labels      LabelConfig       `json:"labels"`
	Interaction InteractionConfig `json:"interaction"`
	Playback    PlaybackConfig    `json:"playback"`
	Spectrogram SpectrogramConfig `json:"spectrogram"`

	HistoryLimit    int    `json:"history_limit"` // 0 keeps every saved window
	EventBufferSize int    `json:"event_buffer_size"`
	LogLevel        string `json:"log_level"`
}

// SegmentConfig controls how spectrogram tiles are cut from the recording
type SegmentConfig struct {
	Ladder  []float64 `json:"ladder"`  // tier durations in seconds, increasing
	Overlap float64   `json:"overlap"` // fraction of a segment shared with its neighbour
	Factor  float64   `json:"factor"`  // tier must cover Factor × viewport width
}

type LabelConfig struct {
	EdgeThreshold float64 `json:"edge_threshold"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
}

type InteractionConfig struct {
	HitRadius      float64 `json:"hit_radius"`       // pixels
	ZoomStep       float64 `json:"zoom_step"`        // scale factor per scroll notch
	ScrollPanRatio float64 `json:"scroll_pan_ratio"` // window widths per scroll notch
}

type PlaybackConfig struct {
	EdgeMargin     float64       `json:"edge_margin"` // fraction of the window width
	ScrollCooldown time.Duration `json:"scroll_cooldown"`
	FrameInterval  time.Duration `json:"frame_interval"`
	Loop           bool          `json:"loop"`
	Speed          float64       `json:"speed"`
}

// SpectrogramConfig holds the render parameters sent with every tile request
type SpectrogramConfig struct {
	WindowSize int     `json:"window_size"`
	HopSize    int     `json:"hop_size"`
	WindowType string  `json:"window_type"`
	MinDB      float64 `json:"min_db"`
	MaxDB      float64 `json:"max_db"`
	Columns    int     `json:"columns"` // image width per segment
	// AutoRange anchors MaxDB to the loudest content of each tile.
	AutoRange   bool    `json:"auto_range"`
	DCCutoff    float64 `json:"dc_cutoff"`    // Hz, 0 keeps DC
	PreEmphasis float64 `json:"pre_emphasis"` // 0 disables
}

// DefaultLadder doubles from 0.125s to 256s.
func DefaultLadder() []float64 {
	ladder := make([]float64, 0, 12)
	for d := 0.125; d <= 256; d *= 2 {
		ladder = append(ladder, d)
	}
	return ladder
}

// DefaultCanvasConfig returns default canvas configuration
func DefaultCanvasConfig() *CanvasConfig {
	return &CanvasConfig{
		Segments: SegmentConfig{
			Ladder:  DefaultLadder(),
			Overlap: 0.4,
			Factor:  3,
		},
		Labels: LabelConfig{
			EdgeThreshold: 50,
			Width:         80,
			Height:        16,
		},
		Interaction: InteractionConfig{
			HitRadius:      6,
			ZoomStep:       0.8,
			ScrollPanRatio: 0.1,
		},
		Playback: PlaybackConfig{
			EdgeMargin:     0.1,
			ScrollCooldown: 400 * time.Millisecond,
			FrameInterval:  16 * time.Millisecond,
			Loop:           false,
			Speed:          1,
		},
		Spectrogram: SpectrogramConfig{
			WindowSize: 512,
			HopSize:    256,
			WindowType: "hann",
			MinDB:      -100,
			MaxDB:      0,
			Columns:    512,
			DCCutoff:   10,
		},
		HistoryLimit:    64,
		EventBufferSize: 64,
		LogLevel:        "info",
	}
}

// Validate checks that the config can drive a canvas
func (c *CanvasConfig) Validate() error {
	if len(c.Segments.Ladder) == 0 {
		return fmt.Errorf("%w: segment ladder is empty", ErrInvalidConfig)
	}
	for i, d := range c.Segments.Ladder {
		if d <= 0 {
			return fmt.Errorf("%w: ladder value %g must be positive", ErrInvalidConfig, d)
		}
		if i > 0 && d <= c.Segments.Ladder[i-1] {
			return fmt.Errorf("%w: ladder must be strictly increasing at index %d", ErrInvalidConfig, i)
		}
	}
	if c.Segments.Overlap < 0 || c.Segments.Overlap >= 1 {
		return fmt.Errorf("%w: overlap %g outside [0, 1)", ErrInvalidConfig, c.Segments.Overlap)
	}
	if c.Segments.Factor <= 0 {
		return fmt.Errorf("%w: ladder factor must be positive", ErrInvalidConfig)
	}
	if c.Labels.EdgeThreshold < 0 || c.Interaction.HitRadius < 0 {
		return fmt.Errorf("%w: thresholds cannot be negative", ErrInvalidConfig)
	}
	if c.Interaction.ZoomStep <= 0 {
		return fmt.Errorf("%w: zoom step must be positive", ErrInvalidConfig)
	}
	if c.Playback.EdgeMargin < 0 || c.Playback.EdgeMargin >= 0.5 {
		return fmt.Errorf("%w: edge margin %g outside [0, 0.5)", ErrInvalidConfig, c.Playback.EdgeMargin)
	}
	if c.Playback.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame interval must be positive", ErrInvalidConfig)
	}
	if c.Playback.Speed <= 0 {
		return fmt.Errorf("%w: playback speed must be positive", ErrInvalidConfig)
	}
	if c.Spectrogram.WindowSize <= 0 || c.Spectrogram.HopSize <= 0 {
		return fmt.Errorf("%w: spectrogram window and hop must be positive", ErrInvalidConfig)
	}
	if c.Spectrogram.MinDB >= c.Spectrogram.MaxDB {
		return fmt.Errorf("%w: min_db must be below max_db", ErrInvalidConfig)
	}
	if c.Spectrogram.DCCutoff < 0 || c.Spectrogram.PreEmphasis < 0 || c.Spectrogram.PreEmphasis >= 1 {
		return fmt.Errorf("%w: dc_cutoff must be non-negative and pre_emphasis in [0, 1)", ErrInvalidConfig)
	}
	if c.EventBufferSize < 0 || c.HistoryLimit < 0 {
		return fmt.Errorf("%w: sizes cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Load reads a JSON config file over the defaults, then applies LIENZO_*
// environment overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*CanvasConfig, error) {
	cfg := DefaultCanvasConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from LIENZO_* environment variables. Values that
// do not parse are ignored.
func (c *CanvasConfig) ApplyEnv() {
	c.Segments.Ladder = envLadder("LIENZO_SEGMENT_LADDER", c.Segments.Ladder)
	c.Segments.Overlap = envFloat("LIENZO_SEGMENT_OVERLAP", c.Segments.Overlap)
	c.Segments.Factor = envFloat("LIENZO_SEGMENT_FACTOR", c.Segments.Factor)

	c.Labels.EdgeThreshold = envFloat("LIENZO_LABEL_THRESHOLD", c.Labels.EdgeThreshold)

	c.Interaction.HitRadius = envFloat("LIENZO_HIT_RADIUS", c.Interaction.HitRadius)
	c.Interaction.ZoomStep = envFloat("LIENZO_ZOOM_STEP", c.Interaction.ZoomStep)

	c.Playback.EdgeMargin = envFloat("LIENZO_PLAYBACK_MARGIN", c.Playback.EdgeMargin)
	c.Playback.ScrollCooldown = envDuration("LIENZO_SCROLL_COOLDOWN", c.Playback.ScrollCooldown)
	c.Playback.FrameInterval = envDuration("LIENZO_FRAME_INTERVAL", c.Playback.FrameInterval)
	c.Playback.Loop = envBool("LIENZO_LOOP", c.Playback.Loop)
	c.Playback.Speed = envFloat("LIENZO_PLAYBACK_SPEED", c.Playback.Speed)

	c.Spectrogram.WindowSize = envInt("LIENZO_FFT_WINDOW", c.Spectrogram.WindowSize)
	c.Spectrogram.HopSize = envInt("LIENZO_FFT_HOP", c.Spectrogram.HopSize)
	c.Spectrogram.WindowType = envStr("LIENZO_FFT_WINDOW_TYPE", c.Spectrogram.WindowType)
	c.Spectrogram.AutoRange = envBool("LIENZO_AUTO_RANGE", c.Spectrogram.AutoRange)
	c.Spectrogram.DCCutoff = envFloat("LIENZO_DC_CUTOFF", c.Spectrogram.DCCutoff)
	c.Spectrogram.PreEmphasis = envFloat("LIENZO_PRE_EMPHASIS", c.Spectrogram.PreEmphasis)

	c.HistoryLimit = envInt("LIENZO_HISTORY_LIMIT", c.HistoryLimit)
	c.EventBufferSize = envInt("LIENZO_EVENT_BUFFER", c.EventBufferSize)
	c.LogLevel = envStr("LIENZO_LOG_LEVEL", c.LogLevel)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envLadder parses a comma separated list such as "1,2,4,8".
func envLadder(key string, fallback []float64) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []float64
	for _, part := range strings.Split(v, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fallback
		}
		out = append(out, f)
	}
	return out
}
