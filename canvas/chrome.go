package canvas

import (
	"fmt"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/events"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
)

// SetMode switches tools. Leaving a mode drops whatever it had in progress.
func (e *Engine) SetMode(m interaction.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(interaction.SetMode{Mode: m})
}

// SetGeometryType picks the shape drawn in draw mode.
func (e *Engine) SetGeometryType(t geometry.Type) error {
	if !t.Drawable() {
		return fmt.Errorf("%w: %s cannot be drawn", geometry.ErrUnsupportedGeometry, t)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(interaction.SetGeometryType{Type: t})
	return nil
}

// Save pushes the current window onto the history.
func (e *Engine) Save() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport.Save()
}

// Back returns to the last saved window. It reports false when there is
// nothing to go back to.
func (e *Engine) Back() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport.Back()
}

// Reset shows the initial window again and clears the history.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport.Reset()
}

// ZoomBy scales the time axis around the window centre. Factors above 1
// zoom out.
func (e *Engine) ZoomBy(factor float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoomBy(factor)
}

// Pan shifts the window; with relative set, d is in window widths.
func (e *Engine) Pan(d intervals.Delta, relative bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport.Shift(d, relative)
	e.player.NoteScroll()
}

// SetWindow replaces the window, clamped to the bounds.
func (e *Engine) SetWindow(w intervals.Window) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport.Set(w)
}

func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.player.Play()
	e.playing = true
	e.bus.Publish(events.PlaybackChanged{Playing: true, Time: e.player.Clock().CurrentTime()})
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.player.Pause()
	e.playing = false
	e.bus.Publish(events.PlaybackChanged{Playing: false, Time: e.player.Clock().CurrentTime()})
}

// TogglePlay flips playback and returns whether it is now playing.
func (e *Engine) TogglePlay() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.togglePlay()
	return e.playing
}

// Seek moves the play-head without moving the viewport and returns the
// clamped time.
func (e *Engine) Seek(t float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t = e.player.Seek(t)
	e.bus.Publish(events.Seeked{Time: t})
	return t
}

// SetLoop toggles looping at the end of the recording.
func (e *Engine) SetLoop(loop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.player.SetLoop(loop)
}

// SetPlaybackRange restricts playback to r. It reports false when r does not
// overlap the recording.
func (e *Engine) SetPlaybackRange(r intervals.Interval) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.SetRange(r)
}

// CopySelected puts the selected annotation on the session clipboard.
func (e *Engine) CopySelected() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copySelected()
}

// PasteAt creates a copy of the clipboard annotation with its lower-left
// corner at p.
func (e *Engine) PasteAt(p intervals.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pasteAt(p)
}
