// Package canvas is the spectrogram annotation engine. An Engine owns one
// canvas: its viewport, interaction state, annotation store, spectrogram
// tiles and playback synchronisation. Inputs go in through Dispatch and
// observers follow along on the event bus.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/events"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/canvas/playback"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
	"github.com/RyanBlaney/sonido-lienzo/canvas/segments"
	"github.com/RyanBlaney/sonido-lienzo/canvas/session"
	"github.com/RyanBlaney/sonido-lienzo/canvas/viewport"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var (
	ErrInvalidBounds = errors.New("invalid recording bounds")
	ErrNoPersistence = errors.New("persistence cannot be nil")
	ErrNothingToCopy = errors.New("no annotation selected")
	ErrEngineClosed  = errors.New("canvas engine closed")
)

// Options configures an Engine
type Options struct {
	Config      *config.CanvasConfig
	RecordingID string

	// Bounds is the whole recording: [0, duration] x [0, nyquist].
	Bounds intervals.Window
	// Initial is the window shown first; the zero value shows everything.
	Initial    intervals.Window
	Dimensions geometry.Dimensions

	Annotations  []annotations.Annotation
	Persistence  annotations.Persistence
	Images       render.ImageSource
	GeometryType geometry.Type

	// Clock drives playback. Nil selects a SimulatedClock.
	Clock playback.Clock
	// Session is shared between canvases. Nil creates a private one.
	Session *session.Session

	Now    func() time.Time
	Logger logging.Logger
}

// Engine is one canvas. All methods are safe for concurrent use; they are
// serialised on an internal lock, so the engine behaves as a single-owner
// event loop whichever goroutine calls it.
type Engine struct {
	mu sync.Mutex

	cfg         *config.CanvasConfig
	recordingID string
	dims        geometry.Dimensions

	viewport    *viewport.Controller
	state       interaction.State
	store       *annotations.Store
	persistence annotations.Persistence
	selector    *segments.Selector
	tiles       *render.TileCache
	player      *playback.Synchronizer
	session     *session.Session
	bus         *events.Bus

	// selectionGen changes whenever a different annotation becomes selected.
	selectionGen uint64
	commits      chan commitResult
	outstanding  int
	lastPointer  *intervals.Position
	playing      bool

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	logger logging.Logger
}

type commitResult struct {
	seq    uint64
	gen    uint64
	result annotations.Annotation
	err    error
}

// New creates an engine and selects the first spectrogram segments for the
// initial window.
func New(opts Options) (*Engine, error) {
	if !opts.Bounds.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBounds, opts.Bounds)
	}
	if opts.Persistence == nil {
		return nil, ErrNoPersistence
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultCanvasConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
		"component":    "canvas",
		"recording_id": opts.RecordingID,
	})

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clock := opts.Clock
	if clock == nil {
		clock = playback.NewSimulatedClock(cfg.Playback.Speed, now)
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(nil, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:         cfg,
		recordingID: opts.RecordingID,
		dims:        opts.Dimensions,
		state:       interaction.NewState(opts.GeometryType),
		store:       annotations.NewStore(opts.Annotations, logger),
		persistence: opts.Persistence,
		session:     sess,
		bus:         events.NewBus(logger),
		commits:     make(chan commitResult, 16),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}

	e.viewport = viewport.New(viewport.Options{
		Initial:      opts.Initial,
		Bounds:       opts.Bounds,
		HistoryLimit: cfg.HistoryLimit,
		OnChange:     e.viewportChanged,
		Logger:       logger,
	})
	e.selector = segments.NewSelector(opts.Bounds.Time.Max, cfg.Segments, logger)
	e.tiles = render.NewTileCache(render.TileCacheOptions{
		Source:      opts.Images,
		RecordingID: opts.RecordingID,
		Params:      cfg.Spectrogram,
		Logger:      logger,
	})
	e.player = playback.New(clock, e.viewport, playback.Options{
		Config: cfg.Playback,
		Range:  opts.Bounds.Time,
		Now:    now,
		Logger: logger,
	})

	e.updateSegments(e.viewport.Window())

	logger.Info("canvas opened", logging.Fields{
		"bounds":      opts.Bounds.String(),
		"window":      e.viewport.Window().String(),
		"annotations": len(opts.Annotations),
	})
	return e, nil
}

// Close cancels in-flight work and closes the event bus.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.cancel()
	e.bus.Close()
}

// Events subscribes to the canvas event stream. A size of 0 uses the
// configured buffer size.
func (e *Engine) Events(size int) *events.Listener {
	if size <= 0 {
		size = e.cfg.EventBufferSize
	}
	return e.bus.Subscribe(size)
}

// Bus returns the event bus, for callers that need Unsubscribe.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Session returns the session the canvas was opened in.
func (e *Engine) Session() *session.Session { return e.session }

// Config returns the configuration in use. Callers must not modify it.
func (e *Engine) Config() *config.CanvasConfig { return e.cfg }

func (e *Engine) Mode() interaction.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Mode
}

// State returns a snapshot of the interaction state.
func (e *Engine) State() interaction.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Selected returns a copy of the selected annotation, or nil.
func (e *Engine) Selected() *annotations.Annotation {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Selected == nil {
		return nil
	}
	a := e.state.Selected.Clone()
	return &a
}

func (e *Engine) Window() intervals.Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport.Window()
}

func (e *Engine) Bounds() intervals.Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport.Bounds()
}

// Annotations returns the speculative annotation list in drawing order.
func (e *Engine) Annotations() []annotations.Annotation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.List()
}

// PlayHead returns the clock position.
func (e *Engine) PlayHead() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.Clock().CurrentTime()
}

func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.Clock().IsPlaying()
}

// Tile returns the cache slot of a segment.
func (e *Engine) Tile(key string) (render.TileEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tiles.Get(key)
}

// Segments returns the segments wanted for the current window.
func (e *Engine) Segments() (segments.Selection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selector.Current()
}

// viewportChanged runs under e.mu from inside a viewport mutation.
func (e *Engine) viewportChanged(w intervals.Window) {
	e.bus.Publish(events.ViewportChanged{Window: w})
	e.updateSegments(w)
}

func (e *Engine) updateSegments(w intervals.Window) {
	sel, changed := e.selector.Update(w.Time)
	if changed {
		e.bus.Publish(events.SegmentChanged{Selection: sel})
	}
	for _, seg := range sel.Segments() {
		if e.tiles.Request(e.ctx, seg) {
			e.bus.Publish(events.TileStateChanged{Key: seg.Key(), State: string(render.TilePending)})
		}
	}
}

// RetryTile refetches a segment whose image failed.
func (e *Engine) RetryTile(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tiles.Retry(key)
	e.updateSegments(e.viewport.Window())
}
