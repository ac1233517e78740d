package canvas

import (
	"context"
	"time"

	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// Run is the canvas event loop. It applies inputs, persistence results and
// tile results in arrival order and ticks playback once per frame. It
// returns when ctx is done or inputs is closed.
func (e *Engine) Run(ctx context.Context, inputs <-chan Input) error {
	frame := e.cfg.Playback.FrameInterval
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	e.logger.Debug("canvas loop started", logging.Fields{"frame_interval": frame.String()})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.ctx.Done():
			return ErrEngineClosed
		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			e.Dispatch(in)
		case r := <-e.commits:
			e.locked(func() { e.handleCommit(r) })
		case r := <-e.tiles.Results():
			e.locked(func() { e.handleTile(r) })
		case <-ticker.C:
			e.Dispatch(TickInput{})
		}
	}
}

// Drain applies every persistence and tile result already waiting, without
// blocking. Hosts that run their own loop call it once per frame.
func (e *Engine) Drain() int {
	n := 0
	for {
		select {
		case r := <-e.commits:
			e.locked(func() { e.handleCommit(r) })
		case r := <-e.tiles.Results():
			e.locked(func() { e.handleTile(r) })
		default:
			return n
		}
		n++
	}
}

// Flush waits until no persistence call or tile fetch is in flight, applying
// results as they arrive.
func (e *Engine) Flush(ctx context.Context) error {
	for {
		var idle, closed bool
		e.locked(func() {
			idle = e.outstanding == 0 && e.tiles.Pending() == 0
			closed = e.closed
		})
		if idle {
			return nil
		}
		if closed {
			return ErrEngineClosed
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-e.commits:
			e.locked(func() { e.handleCommit(r) })
		case r := <-e.tiles.Results():
			e.locked(func() { e.handleTile(r) })
		}
	}
}

func (e *Engine) locked(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}
