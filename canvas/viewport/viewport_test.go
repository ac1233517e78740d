package viewport

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var bounds = intervals.Window{
	Time: intervals.Interval{Min: 0, Max: 60},
	Freq: intervals.Interval{Min: 0, Max: 22050},
}

type recorder struct {
	calls []intervals.Window
}

func (r *recorder) record(w intervals.Window) {
	r.calls = append(r.calls, w)
}

func newController(t *testing.T, initial intervals.Window) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(Options{
		Initial:  initial,
		Bounds:   bounds,
		OnChange: rec.record,
		Logger:   &logging.NoOpLogger{},
	})
	return c, rec
}

func TestNewDefaultsToBounds(t *testing.T) {
	c, _ := newController(t, intervals.Window{})
	if c.Window() != bounds {
		t.Errorf("Window() = %v, want bounds", c.Window())
	}
	if len(c.History()) != 1 {
		t.Errorf("history length = %d, want 1", len(c.History()))
	}
}

func TestNewClampsInitial(t *testing.T) {
	c, _ := newController(t, intervals.Window{
		Time: intervals.Interval{Min: 55, Max: 65},
		Freq: intervals.Interval{Min: 0, Max: 1000},
	})
	if c.Window().Time != (intervals.Interval{Min: 50, Max: 60}) {
		t.Errorf("initial time = %v, want [50, 60]", c.Window().Time)
	}
}

func TestScaleThenShift(t *testing.T) {
	c, rec := newController(t, intervals.Window{})

	c.Scale(intervals.Factors{Time: 0.5})
	if c.Window().Time != (intervals.Interval{Min: 15, Max: 45}) {
		t.Fatalf("after Scale time = %v, want [15, 45]", c.Window().Time)
	}
	c.Shift(intervals.Delta{Time: 0.5}, true)
	if c.Window().Time != (intervals.Interval{Min: 30, Max: 60}) {
		t.Errorf("after Shift time = %v, want [30, 60]", c.Window().Time)
	}
	if len(rec.calls) != 2 {
		t.Errorf("onChange called %d times, want 2", len(rec.calls))
	}
}

func TestEveryOperationNotifiesOnceWithClampedWindow(t *testing.T) {
	ops := map[string]func(c *Controller){
		"Set": func(c *Controller) {
			c.Set(intervals.Window{Time: intervals.Interval{Min: -10, Max: 5}, Freq: bounds.Freq})
		},
		"SetTimeInterval":      func(c *Controller) { c.SetTimeInterval(intervals.Interval{Min: 58, Max: 70}) },
		"SetFrequencyInterval": func(c *Controller) { c.SetFrequencyInterval(intervals.Interval{Min: -5, Max: 100}) },
		"Scale":                func(c *Controller) { c.Scale(intervals.Factors{Time: 4, Freq: 4}) },
		"Expand":               func(c *Controller) { c.Expand(intervals.Delta{Time: 100}) },
		"Shift":                func(c *Controller) { c.Shift(intervals.Delta{Time: 1000}, false) },
		"CenterOn":             func(c *Controller) { c.CenterOn(intervals.Position{Time: 59, Freq: 22000}) },
		"CenterOnTime":         func(c *Controller) { c.CenterOnTime(-3) },
		"ZoomToPosition":       func(c *Controller) { c.ZoomToPosition(intervals.Position{Time: 59}, 10) },
		"Reset":                func(c *Controller) { c.Reset() },
		"NaN":                  func(c *Controller) { c.SetTimeInterval(intervals.Interval{Min: math.NaN(), Max: 1}) },
	}
	for name, op := range ops {
		c, rec := newController(t, intervals.Window{
			Time: intervals.Interval{Min: 10, Max: 20},
			Freq: intervals.Interval{Min: 0, Max: 5000},
		})
		op(c)
		if len(rec.calls) != 1 {
			t.Errorf("%s: onChange called %d times, want 1", name, len(rec.calls))
			continue
		}
		if rec.calls[0] != c.Window() {
			t.Errorf("%s: onChange saw %v, current is %v", name, rec.calls[0], c.Window())
		}
		if !bounds.ContainsWindow(c.Window()) || !c.Window().Valid() {
			t.Errorf("%s: window %v escapes bounds", name, c.Window())
		}
	}
}

func TestHistoryLaws(t *testing.T) {
	c, rec := newController(t, intervals.Window{})

	c.Scale(intervals.Factors{Time: 0.25})
	saved := c.Window()
	c.Save()

	c.Shift(intervals.Delta{Time: 0.3}, true)
	c.ZoomToPosition(intervals.Position{Time: 40, Freq: 1000}, 0.5)
	c.SetFrequencyInterval(intervals.Interval{Min: 100, Max: 200})

	if !c.Back() {
		t.Fatal("Back() = false after Save")
	}
	if c.Window() != saved {
		t.Errorf("Back restored %v, want saved %v", c.Window(), saved)
	}

	// only the seed remains
	calls := len(rec.calls)
	if c.Back() {
		t.Error("Back() = true with a single level left")
	}
	if len(rec.calls) != calls {
		t.Error("no-op Back notified onChange")
	}
	if len(c.History()) != 1 {
		t.Errorf("history length = %d, want 1", len(c.History()))
	}
}

func TestBackAfterResetIsNoOp(t *testing.T) {
	c, _ := newController(t, intervals.Window{})
	c.Scale(intervals.Factors{Time: 0.5})
	c.Save()
	c.Save()
	c.Reset()

	before := c.Window()
	if c.Back() {
		t.Error("Back() after Reset should be a no-op")
	}
	if c.Window() != before || before != c.Initial() {
		t.Errorf("window after Reset/Back = %v, want initial %v", c.Window(), c.Initial())
	}
}

func TestSaveOnUnseededControllerDoesNotPanic(t *testing.T) {
	var c Controller
	c.Save()
	if len(c.History()) != 0 {
		t.Errorf("Save on zero Controller grew history to %d", len(c.History()))
	}
}

func TestHistoryLimit(t *testing.T) {
	c := New(Options{Bounds: bounds, HistoryLimit: 3, Logger: &logging.NoOpLogger{}})
	for i := 0; i < 10; i++ {
		c.CenterOnTime(float64(i))
		c.Save()
	}
	if n := len(c.History()); n != 3 {
		t.Errorf("history length = %d, want 3", n)
	}
}
