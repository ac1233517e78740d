package playback

import (
	"time"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/viewport"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// Options configures a Synchronizer
type Options struct {
	Config config.PlaybackConfig
	// Range is the playable time span. Playback loops or stops at Range.Max.
	Range  intervals.Interval
	Now    func() time.Time
	Logger logging.Logger
}

// Status describes one Tick.
type Status struct {
	Time     float64
	Playing  bool
	Centered bool // the viewport was re-centred on the play-head
	Looped   bool
	Ended    bool // playback reached the end and paused
}

// Synchronizer couples a Clock to a viewport. It is driven by Tick once
// per frame from the goroutine that owns the viewport.
type Synchronizer struct {
	clock    Clock
	viewport *viewport.Controller
	cfg      config.PlaybackConfig
	span     intervals.Interval
	now      func() time.Time
	logger   logging.Logger

	gesture       bool
	cooldownUntil time.Time
}

// New creates a synchronizer. The loop flag of cfg is pushed to the clock.
func New(clock Clock, vp *viewport.Controller, opts Options) *Synchronizer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	span := opts.Range
	if !span.Valid() {
		span = vp.Bounds().Time
	}
	clock.SetLoop(opts.Config.Loop)
	return &Synchronizer{
		clock:    clock,
		viewport: vp,
		cfg:      opts.Config,
		span:     span,
		now:      now,
		logger: logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
			"component": "playback_sync",
		}),
	}
}

// Clock returns the underlying clock.
func (s *Synchronizer) Clock() Clock { return s.clock }

// Range returns the playable time span.
func (s *Synchronizer) Range() intervals.Interval { return s.span }

// SetRange changes the loop bounds. Spans outside the recording are ignored.
func (s *Synchronizer) SetRange(r intervals.Interval) bool {
	if !r.Valid() {
		return false
	}
	clipped, ok := intervals.Intersect(r, s.viewport.Bounds().Time)
	if !ok {
		return false
	}
	s.span = clipped
	return true
}

// Play starts playback, rewinding first when the play-head sits at the end.
func (s *Synchronizer) Play() {
	if s.clock.CurrentTime() >= s.span.Max {
		s.clock.Seek(s.span.Min)
	}
	s.clock.Play()
	s.logger.Debug("playback started", logging.Fields{"time": s.clock.CurrentTime()})
}

func (s *Synchronizer) Pause() {
	s.clock.Pause()
	s.logger.Debug("playback paused", logging.Fields{"time": s.clock.CurrentTime()})
}

// Toggle flips between playing and paused and returns the new state.
func (s *Synchronizer) Toggle() bool {
	if s.clock.IsPlaying() {
		s.Pause()
		return false
	}
	s.Play()
	return true
}

// Seek moves the play-head, clamped into the playable span. The viewport
// does not move.
func (s *Synchronizer) Seek(t float64) float64 {
	if t < s.span.Min {
		t = s.span.Min
	}
	if t > s.span.Max {
		t = s.span.Max
	}
	s.clock.Seek(t)
	return t
}

// SetLoop toggles looping on the clock.
func (s *Synchronizer) SetLoop(loop bool) { s.clock.SetLoop(loop) }

// BeginGesture suspends auto-centring until EndGesture.
func (s *Synchronizer) BeginGesture() { s.gesture = true }

func (s *Synchronizer) EndGesture() { s.gesture = false }

// NoteScroll suspends auto-centring for the scroll cooldown. Scroll has no
// end event, so the suppression expires on its own.
func (s *Synchronizer) NoteScroll() {
	s.cooldownUntil = s.now().Add(s.cfg.ScrollCooldown)
}

// Suppressed reports whether the user is currently moving the viewport.
func (s *Synchronizer) Suppressed() bool {
	return s.gesture || s.now().Before(s.cooldownUntil)
}

// Tick advances the coupling by one frame.
func (s *Synchronizer) Tick() Status {
	st := Status{Time: s.clock.CurrentTime(), Playing: s.clock.IsPlaying()}
	if !st.Playing {
		return st
	}

	if st.Time >= s.span.Max {
		if s.clock.Loop() {
			s.clock.Seek(s.span.Min)
			st.Time = s.span.Min
			st.Looped = true
		} else {
			s.clock.Pause()
			s.clock.Seek(s.span.Max)
			st.Time = s.span.Max
			st.Playing = false
			st.Ended = true
		}
	}

	if s.Suppressed() {
		return st
	}
	win := s.viewport.Window()
	w := win.Time
	margin := s.cfg.EdgeMargin * w.Width()
	if st.Time >= w.Min+margin && st.Time <= w.Max-margin {
		return st
	}
	// near the end of the recording the clamped window cannot move further
	target := intervals.AdjustToBounds(intervals.CenterOnTime(win, st.Time), s.viewport.Bounds())
	if target == win {
		return st
	}
	s.viewport.CenterOnTime(st.Time)
	st.Centered = true
	return st
}
