package spectrogram

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/filters"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/spectral"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/windowing"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
	"github.com/RyanBlaney/sonido-lienzo/canvas/segments"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var ErrUnknownRecording = errors.New("unknown recording")

// autoRangeQuantile is the level mapped to the top of the colour ramp when
// the dB range follows the content.
const autoRangeQuantile = 0.995

// Options configures a Renderer
type Options struct {
	RecordingID string
	Audio       Audio
	Colormap    *Colormap
	// Workers bounds the STFT worker pool; 0 uses every CPU.
	Workers int
	Logger  logging.Logger
}

// Renderer computes segment images from audio. It implements
// render.ImageSource and is safe for concurrent use.
type Renderer struct {
	recordingID string
	audio       Audio
	colormap    *Colormap
	stft        *spectral.STFT
	logger      logging.Logger
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Audio == nil {
		return nil, fmt.Errorf("audio cannot be nil")
	}
	cm := opts.Colormap
	if cm == nil {
		cm = DefaultColormap()
	}
	logger := logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
		"component":    "spectrogram_renderer",
		"recording_id": opts.RecordingID,
	})
	return &Renderer{
		recordingID: opts.RecordingID,
		audio:       opts.Audio,
		colormap:    cm,
		stft:        spectral.NewSTFT(opts.Workers, logger),
		logger:      logger,
	}, nil
}

// Bounds is the time–frequency extent of the recording.
func (r *Renderer) Bounds() intervals.Window {
	return intervals.Window{
		Time: intervals.Interval{Min: 0, Max: r.audio.Duration()},
		Freq: intervals.Interval{Min: 0, Max: float64(r.audio.SampleRate()) / 2},
	}
}

// SegmentImage renders one segment. The tile bounds cover the frames that
// were actually computed, which differ slightly from the segment at the
// recording edges.
func (r *Renderer) SegmentImage(ctx context.Context, recordingID string, seg segments.Segment, params config.SpectrogramConfig) (render.Tile, error) {
	if recordingID != r.recordingID {
		return render.Tile{}, fmt.Errorf("%w: %s", ErrUnknownRecording, recordingID)
	}
	kind, err := windowing.ParseKind(params.WindowType)
	if err != nil {
		return render.Tile{}, err
	}
	if params.WindowSize <= 0 || params.HopSize <= 0 {
		return render.Tile{}, fmt.Errorf("window and hop size must be positive")
	}

	rate := r.audio.SampleRate()
	span := seg.Buffer
	if span.Width() <= 0 {
		span = seg.Interval
	}
	// half a window either side so the edge frames are centred on the span
	pad := float64(params.WindowSize) / 2 / float64(rate)
	samples, offset, err := r.audio.Samples(ctx, span.Min-pad, span.Max+pad)
	if err != nil {
		return render.Tile{}, fmt.Errorf("segment %s: %w", seg.Key(), err)
	}
	if samples, err = prefilter(samples, rate, params); err != nil {
		return render.Tile{}, err
	}
	if len(samples) < params.WindowSize {
		padded := make([]float64, params.WindowSize)
		copy(padded, samples)
		samples = padded
	}

	// long segments get a coarser hop so the image stays near Columns wide
	hop := params.HopSize
	if params.Columns > 0 {
		hop = max(hop, (len(samples)-params.WindowSize)/params.Columns+1)
	}

	res, err := r.stft.ComputeWindowed(ctx, samples, params.WindowSize, hop, rate, kind)
	if err != nil {
		return render.Tile{}, fmt.Errorf("segment %s: %w", seg.Key(), err)
	}

	db := spectral.Decibels(res.Magnitude, 1, params.MinDB)
	lo, hi := levels(db, params)
	img := r.paint(db, lo, hi)

	start := offset + res.FrameTime(0) - res.TimeResolution()/2
	tile := render.Tile{
		Image: img,
		Bounds: intervals.Window{
			Time: intervals.Interval{Min: start, Max: start + float64(res.Frames)*res.TimeResolution()},
			Freq: intervals.Interval{Min: 0, Max: float64(rate) / 2},
		},
	}
	r.logger.Debug("segment rendered", logging.Fields{
		"key":    seg.Key(),
		"frames": res.Frames,
		"bins":   res.Bins,
		"hop":    hop,
		"min_db": lo,
		"max_db": hi,
	})
	return tile, nil
}

// prefilter applies the configured DC blocker and pre-emphasis. Each tile
// starts from fresh filter state.
func prefilter(samples []float64, rate int, params config.SpectrogramConfig) ([]float64, error) {
	if params.DCCutoff > 0 {
		dc, err := filters.NewDCBlocker(rate, params.DCCutoff)
		if err != nil {
			return nil, err
		}
		samples = dc.ProcessBuffer(samples)
	}
	if params.PreEmphasis > 0 {
		pe, err := filters.NewPreEmphasis(params.PreEmphasis)
		if err != nil {
			return nil, err
		}
		samples = pe.ProcessBuffer(samples)
	}
	return samples, nil
}

// levels picks the dB range mapped onto the colour ramp.
func levels(db [][]float64, params config.SpectrogramConfig) (float64, float64) {
	lo, hi := params.MinDB, params.MaxDB
	if !params.AutoRange {
		return lo, hi
	}
	var all []float64
	for _, row := range db {
		all = append(all, row...)
	}
	if len(all) == 0 {
		return lo, hi
	}
	slices.Sort(all)
	top := stat.Quantile(autoRangeQuantile, stat.Empirical, all, nil)
	return top - (params.MaxDB - params.MinDB), top
}

// paint lays frames out left to right and bins bottom to top.
func (r *Renderer) paint(db [][]float64, lo, hi float64) *image.RGBA {
	frames := len(db)
	bins := 0
	if frames > 0 {
		bins = len(db[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, frames, bins))
	span := hi - lo
	for x, row := range db {
		for b, v := range row {
			level := 0.0
			if span > 0 {
				level = (v - lo) / span
			}
			img.SetRGBA(x, bins-1-b, r.colormap.At(level))
		}
	}
	return img
}
