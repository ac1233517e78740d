// Package viewport owns the visible time–frequency window of a canvas. Every
// mutation is clamped to the recording bounds before anyone observes it.
package viewport

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// ChangeFunc receives the clamped window after every mutating call.
type ChangeFunc func(intervals.Window)

// Options configures a Controller
type Options struct {
	// Initial is the window shown on open and restored by Reset.
	// The zero value means the full bounds.
	Initial      intervals.Window
	Bounds       intervals.Window
	HistoryLimit int
	OnChange     ChangeFunc
	Logger       logging.Logger
}

// Controller is the only writer of a canvas viewport. It is not safe for
// concurrent use; the canvas event loop owns it.
type Controller struct {
	initial      intervals.Window
	bounds       intervals.Window
	current      intervals.Window
	history      []intervals.Window
	historyLimit int
	onChange     ChangeFunc
	logger       logging.Logger
}

// New creates a viewport controller. The initial window is clamped to the
// bounds and seeds the history.
func New(opts Options) *Controller {
	logger := logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
		"component": "viewport",
	})

	initial := opts.Initial
	if initial == (intervals.Window{}) {
		initial = opts.Bounds
	}
	initial = intervals.AdjustToBounds(initial, opts.Bounds)

	return &Controller{
		initial:      initial,
		bounds:       opts.Bounds,
		current:      initial,
		history:      []intervals.Window{initial},
		historyLimit: opts.HistoryLimit,
		onChange:     opts.OnChange,
		logger:       logger,
	}
}

// Window returns the current, always clamped, window.
func (c *Controller) Window() intervals.Window { return c.current }

// Bounds returns the fixed recording extent.
func (c *Controller) Bounds() intervals.Window { return c.bounds }

// Initial returns the window Reset goes back to.
func (c *Controller) Initial() intervals.Window { return c.initial }

// History returns a copy of the saved windows, oldest first.
func (c *Controller) History() []intervals.Window {
	return append([]intervals.Window(nil), c.history...)
}

// OnChange replaces the change hook.
func (c *Controller) OnChange(fn ChangeFunc) { c.onChange = fn }

// commit is the single funnel for every mutation.
func (c *Controller) commit(w intervals.Window) {
	c.current = intervals.AdjustToBounds(w, c.bounds)
	c.logger.Debug("viewport changed", logging.Fields{
		"time": c.current.Time.String(),
		"freq": c.current.Freq.String(),
	})
	if c.onChange != nil {
		c.onChange(c.current)
	}
}

// Set replaces the whole window.
func (c *Controller) Set(w intervals.Window) {
	c.commit(w)
}

// SetTimeInterval replaces the time axis only.
func (c *Controller) SetTimeInterval(i intervals.Interval) {
	w := c.current
	w.Time = i
	c.commit(w)
}

// SetFrequencyInterval replaces the frequency axis only.
func (c *Controller) SetFrequencyInterval(i intervals.Interval) {
	w := c.current
	w.Freq = i
	c.commit(w)
}

// Scale resizes around the window centre. Factors above 1 zoom out.
func (c *Controller) Scale(f intervals.Factors) {
	c.commit(intervals.Scale(c.current, f))
}

// Expand grows each axis symmetrically by d.
func (c *Controller) Expand(d intervals.Delta) {
	c.commit(intervals.Extend(c.current, d))
}

// Shift translates the window. With relative set, d is in window widths.
func (c *Controller) Shift(d intervals.Delta, relative bool) {
	c.commit(intervals.Shift(c.current, d, relative))
}

// CenterOn re-centres both axes on p.
func (c *Controller) CenterOn(p intervals.Position) {
	c.commit(intervals.CenterOn(c.current, p))
}

// CenterOnTime re-centres the time axis and leaves frequency alone.
func (c *Controller) CenterOnTime(t float64) {
	c.commit(intervals.CenterOnTime(c.current, t))
}

// CenterOnFreq re-centres the frequency axis and leaves time alone.
func (c *Controller) CenterOnFreq(f float64) {
	c.commit(intervals.CenterOnFreq(c.current, f))
}

// ZoomToPosition zooms by factor keeping p under the same screen spot.
func (c *Controller) ZoomToPosition(p intervals.Position, factor float64) {
	c.commit(intervals.ZoomToPosition(c.current, p, factor))
}

// Reset restores the initial window and re-seeds the history with it.
func (c *Controller) Reset() {
	c.history = []intervals.Window{c.initial}
	c.commit(c.initial)
}

// Save pushes the current window. It does nothing on a controller whose
// history was never seeded.
func (c *Controller) Save() {
	if len(c.history) == 0 {
		return
	}
	c.history = append(c.history, c.current)
	if c.historyLimit > 0 && len(c.history) > c.historyLimit {
		// the oldest entry goes, the stack never drops below one
		c.history = append(c.history[:0], c.history[len(c.history)-c.historyLimit:]...)
	}
}

// Back pops the most recently saved window and makes it current. With one
// level or less left it is a no-op and the change hook does not fire.
func (c *Controller) Back() bool {
	if len(c.history) <= 1 {
		return false
	}
	last := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	c.commit(last)
	return true
}
