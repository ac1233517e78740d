package playback

import (
	"math"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/viewport"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

var testBounds = intervals.Window{
	Time: intervals.Interval{Min: 0, Max: 60},
	Freq: intervals.Interval{Min: 0, Max: 22050},
}

type fixture struct {
	clock   *SimulatedClock
	sync    *Synchronizer
	vp      *viewport.Controller
	ft      *fakeTime
	changes []intervals.Window
}

func newFixture(t *testing.T, loop bool) *fixture {
	t.Helper()
	f := &fixture{ft: &fakeTime{t: time.Unix(1000, 0)}}
	f.vp = viewport.New(viewport.Options{
		Initial: intervals.Window{
			Time: intervals.Interval{Min: 0, Max: 10},
			Freq: testBounds.Freq,
		},
		Bounds:   testBounds,
		OnChange: func(w intervals.Window) { f.changes = append(f.changes, w) },
		Logger:   &logging.NoOpLogger{},
	})
	f.clock = NewSimulatedClock(1, f.ft.now)
	cfg := config.DefaultCanvasConfig().Playback
	cfg.Loop = loop
	f.sync = New(f.clock, f.vp, Options{
		Config: cfg,
		Now:    f.ft.now,
		Logger: &logging.NoOpLogger{},
	})
	return f
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSimulatedClock(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewSimulatedClock(2, ft.now)

	ft.advance(time.Second)
	if got := c.CurrentTime(); got != 0 {
		t.Errorf("paused clock advanced to %v", got)
	}

	c.Play()
	ft.advance(1500 * time.Millisecond)
	if got := c.CurrentTime(); !near(got, 3) {
		t.Errorf("CurrentTime() = %v, want 3 at double speed", got)
	}

	c.Pause()
	ft.advance(time.Second)
	if got := c.CurrentTime(); !near(got, 3) {
		t.Errorf("CurrentTime() after pause = %v, want 3", got)
	}

	c.Seek(10)
	c.SetSpeed(1)
	c.Play()
	ft.advance(time.Second)
	if got := c.CurrentTime(); !near(got, 11) {
		t.Errorf("CurrentTime() = %v, want 11", got)
	}
}

func TestTickCentersPastWindowEdge(t *testing.T) {
	f := newFixture(t, false)
	f.sync.Play()

	f.ft.advance(5 * time.Second)
	if st := f.sync.Tick(); st.Centered {
		t.Errorf("Tick at t=5 centred a [0,10] window")
	}

	f.ft.advance(7 * time.Second)
	st := f.sync.Tick()
	if !st.Centered {
		t.Fatalf("Tick at t=%v did not centre", st.Time)
	}
	want := intervals.Interval{Min: 7, Max: 17}
	if got := f.vp.Window().Time; !near(got.Min, want.Min) || !near(got.Max, want.Max) {
		t.Errorf("window = %v, want %v", got, want)
	}
	if len(f.changes) != 1 {
		t.Errorf("onChange called %d times, want 1", len(f.changes))
	}
}

func TestTickCentersWithinMargin(t *testing.T) {
	f := newFixture(t, false)
	f.sync.Play()
	// default margin is 10% of a 10s window
	f.ft.advance(9500 * time.Millisecond)
	if st := f.sync.Tick(); !st.Centered {
		t.Error("play-head inside the edge margin did not centre")
	}
}

func TestTickCentersWithinLeftMargin(t *testing.T) {
	tests := []struct {
		name     string
		window   intervals.Interval
		seek     float64
		centred  bool
		wantTime intervals.Interval
	}{
		{"after a seek", intervals.Interval{Min: 20, Max: 30}, 20.5, true, intervals.Interval{Min: 15.5, Max: 25.5}},
		{"past the margin", intervals.Interval{Min: 20, Max: 30}, 21.5, false, intervals.Interval{Min: 20, Max: 30}},
		{"at recording start", intervals.Interval{Min: 0, Max: 10}, 0.5, false, intervals.Interval{Min: 0, Max: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.vp.SetTimeInterval(tt.window)
			f.sync.Seek(tt.seek)
			f.sync.Play()

			if st := f.sync.Tick(); st.Centered != tt.centred {
				t.Errorf("Tick().Centered = %v, want %v", st.Centered, tt.centred)
			}
			if got := f.vp.Window().Time; !near(got.Min, tt.wantTime.Min) || !near(got.Max, tt.wantTime.Max) {
				t.Errorf("window = %v, want %v", got, tt.wantTime)
			}
		})
	}
}

func TestGestureSuppressesCentering(t *testing.T) {
	f := newFixture(t, false)
	f.sync.Play()
	f.sync.BeginGesture()

	f.ft.advance(20 * time.Second)
	if st := f.sync.Tick(); st.Centered {
		t.Error("centred during a drag")
	}
	if len(f.changes) != 0 {
		t.Errorf("viewport changed %d times during a drag", len(f.changes))
	}

	f.sync.EndGesture()
	if st := f.sync.Tick(); !st.Centered {
		t.Error("centring did not resume after the drag")
	}
}

func TestScrollCooldown(t *testing.T) {
	f := newFixture(t, false)
	f.sync.Play()
	f.ft.advance(20 * time.Second)

	f.sync.NoteScroll()
	if !f.sync.Suppressed() {
		t.Fatal("scroll did not suppress centring")
	}
	if st := f.sync.Tick(); st.Centered {
		t.Error("centred right after a scroll")
	}

	f.ft.advance(500 * time.Millisecond)
	if st := f.sync.Tick(); !st.Centered {
		t.Error("centring did not resume after the cooldown")
	}
}

func TestSeekDoesNotMoveViewport(t *testing.T) {
	f := newFixture(t, false)
	if got := f.sync.Seek(30); got != 30 {
		t.Errorf("Seek(30) = %v", got)
	}
	if got := f.sync.Seek(-5); got != 0 {
		t.Errorf("Seek(-5) = %v, want clamp to 0", got)
	}
	if len(f.changes) != 0 {
		t.Errorf("seek changed the viewport %d times", len(f.changes))
	}
}

func TestEndOfRange(t *testing.T) {
	t.Run("pause", func(t *testing.T) {
		f := newFixture(t, false)
		f.sync.Seek(58)
		f.sync.Play()
		f.ft.advance(3 * time.Second)
		st := f.sync.Tick()
		if !st.Ended || st.Playing || f.clock.IsPlaying() {
			t.Errorf("status = %+v, want ended and paused", st)
		}
		if got := f.clock.CurrentTime(); got != 60 {
			t.Errorf("CurrentTime() = %v, want 60", got)
		}
	})

	t.Run("loop", func(t *testing.T) {
		f := newFixture(t, true)
		if !f.sync.SetRange(intervals.Interval{Min: 10, Max: 20}) {
			t.Fatal("SetRange rejected a valid span")
		}
		f.sync.Seek(19)
		f.sync.Play()
		f.ft.advance(2 * time.Second)
		st := f.sync.Tick()
		if !st.Looped || !f.clock.IsPlaying() {
			t.Errorf("status = %+v, want looped and playing", st)
		}
		if got := f.clock.CurrentTime(); got != 10 {
			t.Errorf("CurrentTime() = %v, want 10", got)
		}
	})
}

func TestPlayAtEndRewinds(t *testing.T) {
	f := newFixture(t, false)
	f.sync.Seek(60)
	f.sync.Play()
	if got := f.clock.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
}

func TestSetRangeRejectsOutside(t *testing.T) {
	f := newFixture(t, false)
	if f.sync.SetRange(intervals.Interval{Min: 100, Max: 200}) {
		t.Error("SetRange accepted a span outside the recording")
	}
	if f.sync.Range() != testBounds.Time {
		t.Errorf("Range() = %v, want bounds", f.sync.Range())
	}
}
