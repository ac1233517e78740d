package render

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/segments"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var ErrNoImageSource = errors.New("no image source")

// Tile is a rendered spectrogram image. Bounds is authoritative and may
// differ from the segment that was requested.
type Tile struct {
	Image  image.Image
	Bounds intervals.Window
}

// ImageSource renders or fetches the spectrogram image of one segment.
type ImageSource interface {
	SegmentImage(ctx context.Context, recordingID string, seg segments.Segment, params config.SpectrogramConfig) (Tile, error)
}

// TileState is the drawable state of a cached segment.
type TileState string

const (
	TilePending TileState = "pending"
	TileLoaded  TileState = "loaded"
	TileError   TileState = "error"
)

// TileEntry is one cache slot.
type TileEntry struct {
	Segment segments.Segment
	State   TileState
	Tile    Tile
	Err     error
	used    uint64
}

// TileResult is what a fetch goroutine sends back.
type TileResult struct {
	Key  string
	Tile Tile
	Err  error
}

// TileCacheOptions configures a TileCache
type TileCacheOptions struct {
	Source      ImageSource
	RecordingID string
	Params      config.SpectrogramConfig
	// MaxEntries bounds loaded tiles kept around; 0 means 32.
	MaxEntries int
	Logger     logging.Logger
}

// TileCache tracks the spectrogram images of a canvas. Its methods must be
// called from the goroutine that owns the canvas; only fetches run
// elsewhere and they report through Results.
type TileCache struct {
	source      ImageSource
	recordingID string
	params      config.SpectrogramConfig
	maxEntries  int
	entries     map[string]*TileEntry
	results     chan TileResult
	clock       uint64
	logger      logging.Logger
}

func NewTileCache(opts TileCacheOptions) *TileCache {
	limit := opts.MaxEntries
	if limit <= 0 {
		limit = 32
	}
	return &TileCache{
		source:      opts.Source,
		recordingID: opts.RecordingID,
		params:      opts.Params,
		maxEntries:  limit,
		entries:     make(map[string]*TileEntry),
		results:     make(chan TileResult, 16),
		logger: logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
			"component":    "tile_cache",
			"recording_id": opts.RecordingID,
		}),
	}
}

// Results delivers finished fetches. Feed each one to Deliver.
func (c *TileCache) Results() <-chan TileResult { return c.results }

// Request starts fetching seg unless it is already cached or in flight.
// It returns true when a fetch was started.
func (c *TileCache) Request(ctx context.Context, seg segments.Segment) bool {
	key := seg.Key()
	c.clock++
	if e, ok := c.entries[key]; ok {
		e.used = c.clock
		return false
	}
	e := &TileEntry{Segment: seg, State: TilePending, used: c.clock}
	c.entries[key] = e

	if c.source == nil {
		e.State = TileError
		e.Err = ErrNoImageSource
		return false
	}

	c.logger.Debug("requesting tile", logging.Fields{"key": key})
	go func() {
		tile, err := c.source.SegmentImage(ctx, c.recordingID, seg, c.params)
		select {
		case c.results <- TileResult{Key: key, Tile: tile, Err: err}:
		case <-ctx.Done():
		}
	}()
	return true
}

// Deliver applies a fetch result. Results for segments no longer wanted,
// or no longer pending, are dropped and the slot is freed so the segment
// is fetched again when it comes back into view.
func (c *TileCache) Deliver(r TileResult, wanted bool) (TileState, bool) {
	e, ok := c.entries[r.Key]
	if !ok || e.State != TilePending {
		c.logger.Debug("dropping tile result for unknown slot", logging.Fields{"key": r.Key})
		return "", false
	}
	if !wanted {
		delete(c.entries, r.Key)
		c.logger.Debug("dropping stale tile", logging.Fields{"key": r.Key})
		return "", false
	}
	if r.Err != nil {
		e.State = TileError
		e.Err = fmt.Errorf("tile %s: %w", r.Key, r.Err)
		c.logger.Error(r.Err, "tile failed", logging.Fields{"key": r.Key})
		return TileError, true
	}
	e.State = TileLoaded
	e.Tile = r.Tile
	c.evict()
	return TileLoaded, true
}

// evict drops the least recently requested loaded tiles over the limit.
func (c *TileCache) evict() {
	for {
		loaded := 0
		var oldest string
		var oldestUsed uint64
		for key, e := range c.entries {
			if e.State != TileLoaded {
				continue
			}
			loaded++
			if oldest == "" || e.used < oldestUsed {
				oldest, oldestUsed = key, e.used
			}
		}
		if loaded <= c.maxEntries {
			return
		}
		delete(c.entries, oldest)
	}
}

// Get returns the slot for key.
func (c *TileCache) Get(key string) (TileEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return TileEntry{}, false
	}
	return *e, true
}

// Retry forgets a failed slot so the next Request fetches it again.
func (c *TileCache) Retry(key string) {
	if e, ok := c.entries[key]; ok && e.State == TileError {
		delete(c.entries, key)
	}
}

// Len returns the number of slots in any state.
func (c *TileCache) Len() int { return len(c.entries) }

// Pending returns the number of fetches still in flight.
func (c *TileCache) Pending() int {
	n := 0
	for _, e := range c.entries {
		if e.State == TilePending {
			n++
		}
	}
	return n
}
