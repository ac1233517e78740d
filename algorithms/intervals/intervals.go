// Package intervals implements the 1-D interval and 2-D time–frequency window
// algebra the canvas is built on. Every function is pure.
package intervals

import (
	"fmt"
	"math"
)

// Interval is a closed range [Min, Max]. A valid interval has finite ends and Min <= Max.
type Interval struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Window is a rectangle in time (seconds) × frequency (Hz) space.
type Window struct {
	Time Interval `json:"time"`
	Freq Interval `json:"freq"`
}

// Delta holds per-axis amounts for Extend and Shift.
type Delta struct {
	Time float64 `json:"time"`
	Freq float64 `json:"freq"`
}

// Factors holds per-axis multiplicative factors for Scale. A zero factor leaves
// that axis untouched, so Factors{Time: 0.5} only scales time.
type Factors struct {
	Time float64 `json:"time"`
	Freq float64 `json:"freq"`
}

// Position is a point in time–frequency space.
type Position struct {
	Time float64 `json:"time"`
	Freq float64 `json:"freq"`
}

// Width returns Max - Min.
func (i Interval) Width() float64 {
	return i.Max - i.Min
}

// Center returns the midpoint of the interval.
func (i Interval) Center() float64 {
	return i.Min + (i.Max-i.Min)/2
}

// Valid reports whether both ends are finite and Min <= Max.
func (i Interval) Valid() bool {
	return isFinite(i.Min) && isFinite(i.Max) && i.Min <= i.Max
}

// Contains reports whether x lies in the closed interval.
func (i Interval) Contains(x float64) bool {
	return x >= i.Min && x <= i.Max
}

// ContainsInterval reports whether o lies entirely inside i.
func (i Interval) ContainsInterval(o Interval) bool {
	return o.Min >= i.Min && o.Max <= i.Max
}

// Overlaps reports whether the closed intervals share at least one point.
func (i Interval) Overlaps(o Interval) bool {
	return i.Min <= o.Max && o.Min <= i.Max
}

// Clamp returns x limited to [Min, Max].
func (i Interval) Clamp(x float64) float64 {
	return math.Min(math.Max(x, i.Min), i.Max)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Min, i.Max)
}

// Valid reports whether both axes are valid intervals.
func (w Window) Valid() bool {
	return w.Time.Valid() && w.Freq.Valid()
}

// Contains reports whether p lies inside the window.
func (w Window) Contains(p Position) bool {
	return w.Time.Contains(p.Time) && w.Freq.Contains(p.Freq)
}

// ContainsWindow reports whether o lies entirely inside w.
func (w Window) ContainsWindow(o Window) bool {
	return w.Time.ContainsInterval(o.Time) && w.Freq.ContainsInterval(o.Freq)
}

// Center returns the window's midpoint.
func (w Window) Center() Position {
	return Position{Time: w.Time.Center(), Freq: w.Freq.Center()}
}

func (w Window) String() string {
	return fmt.Sprintf("time=%s freq=%s", w.Time, w.Freq)
}

// Intersect returns [max(a.Min,b.Min), min(a.Max,b.Max)]. The boolean is false
// when the intervals do not overlap; callers treat that as nothing to act on.
func Intersect(a, b Interval) (Interval, bool) {
	out := Interval{Min: math.Max(a.Min, b.Min), Max: math.Min(a.Max, b.Max)}
	if out.Min > out.Max || math.IsNaN(out.Min) || math.IsNaN(out.Max) {
		return Interval{}, false
	}
	return out, true
}

// IntersectWindows intersects both axes; false if either axis is disjoint.
func IntersectWindows(a, b Window) (Window, bool) {
	t, ok := Intersect(a.Time, b.Time)
	if !ok {
		return Window{}, false
	}
	f, ok := Intersect(a.Freq, b.Freq)
	if !ok {
		return Window{}, false
	}
	return Window{Time: t, Freq: f}, true
}

// Extend grows each axis symmetrically by the given amounts. Negative amounts
// shrink. No clamping happens here.
func Extend(w Window, d Delta) Window {
	return Window{
		Time: Interval{Min: w.Time.Min - d.Time, Max: w.Time.Max + d.Time},
		Freq: Interval{Min: w.Freq.Min - d.Freq, Max: w.Freq.Max + d.Freq},
	}
}

// Shift translates the window. When relative is true the amounts are in
// window widths/heights: Delta{Time: 1} moves one full window to the right.
func Shift(w Window, d Delta, relative bool) Window {
	dt, df := d.Time, d.Freq
	if relative {
		dt *= w.Time.Width()
		df *= w.Freq.Width()
	}
	return Window{
		Time: Interval{Min: w.Time.Min + dt, Max: w.Time.Max + dt},
		Freq: Interval{Min: w.Freq.Min + df, Max: w.Freq.Max + df},
	}
}

// Scale resizes the window around its own center. Factors above 1 zoom out,
// below 1 zoom in. Zero factors leave the axis untouched.
func Scale(w Window, f Factors) Window {
	return Window{
		Time: scaleInterval(w.Time, f.Time),
		Freq: scaleInterval(w.Freq, f.Freq),
	}
}

func scaleInterval(i Interval, factor float64) Interval {
	if factor == 0 || factor == 1 {
		return i
	}
	c := i.Center()
	half := i.Width() * factor / 2
	return Interval{Min: c - half, Max: c + half}
}

// CenterOn re-centers both axes on p, keeping width and height.
func CenterOn(w Window, p Position) Window {
	return CenterOnFreq(CenterOnTime(w, p.Time), p.Freq)
}

// CenterOnTime re-centers the time axis only.
func CenterOnTime(w Window, t float64) Window {
	w.Time = centerInterval(w.Time, t)
	return w
}

// CenterOnFreq re-centers the frequency axis only.
func CenterOnFreq(w Window, f float64) Window {
	w.Freq = centerInterval(w.Freq, f)
	return w
}

func centerInterval(i Interval, c float64) Interval {
	half := i.Width() / 2
	return Interval{Min: c - half, Max: c + half}
}

// ZoomToPosition scales the window by factor while keeping p at the same
// relative place inside it, which is how scroll-wheel zoom under the cursor behaves.
func ZoomToPosition(w Window, p Position, factor float64) Window {
	if factor <= 0 {
		return w
	}
	return Window{
		Time: zoomInterval(w.Time, p.Time, factor),
		Freq: zoomInterval(w.Freq, p.Freq, factor),
	}
}

func zoomInterval(i Interval, at, factor float64) Interval {
	width := i.Width()
	if width <= 0 {
		return i
	}
	frac := (at - i.Min) / width
	newWidth := width * factor
	min := at - frac*newWidth
	return Interval{Min: min, Max: min + newWidth}
}

// AdjustToBounds is the clamping primitive every viewport mutation funnels
// through. The output keeps min(width(w), width(bounds)) on each axis, is moved
// so that it lies inside bounds, and is finally intersected with bounds. Axes
// that are non-finite, inverted or disjoint fall back to the bounds axis.
func AdjustToBounds(w, bounds Window) Window {
	return Window{
		Time: adjustInterval(w.Time, bounds.Time),
		Freq: adjustInterval(w.Freq, bounds.Freq),
	}
}

func adjustInterval(i, bounds Interval) Interval {
	if !i.Valid() {
		return bounds
	}
	if bounds.ContainsInterval(i) {
		return i
	}

	width := i.Width()
	if width >= bounds.Width() {
		return bounds
	}

	// anchor on the edge being clamped against so min+width cannot round
	// past it
	out := Interval{Min: bounds.Max - width, Max: bounds.Max}
	if i.Min < bounds.Min {
		out = Interval{Min: bounds.Min, Max: bounds.Min + width}
	}

	out, ok := Intersect(out, bounds)
	if !ok {
		return bounds
	}
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
