// Package segments chooses which cacheable slice of a recording to render
// for a given viewport. Segment boundaries depend only on the recording
// duration and the chosen tier, so identical requests always produce the
// same cache keys.
package segments

import (
	"fmt"
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// Segment is a tile cache key: the time span the tile is requested for and
// the wider buffer span that is actually rendered.
type Segment struct {
	Interval intervals.Interval `json:"interval"`
	Buffer   intervals.Interval `json:"buffer"`
	Tier     float64            `json:"tier"`
	Index    int                `json:"index"`
}

// Key identifies a segment across re-renders.
func (s Segment) Key() string {
	return fmt.Sprintf("%g/%d", s.Tier, s.Index)
}

// Selection is the segment covering a viewport plus its neighbours for prefetch.
type Selection struct {
	Current  Segment
	Previous *Segment
	Next     *Segment
}

// Segments returns the current segment followed by any neighbours.
func (s Selection) Segments() []Segment {
	out := []Segment{s.Current}
	if s.Previous != nil {
		out = append(out, *s.Previous)
	}
	if s.Next != nil {
		out = append(out, *s.Next)
	}
	return out
}

// ChooseTier returns the smallest ladder value covering factor × width, or
// the largest ladder value when none does. The ladder must be increasing.
func ChooseTier(ladder []float64, width, factor float64) float64 {
	if len(ladder) == 0 {
		return 0
	}
	need := factor * width
	i := sort.SearchFloat64s(ladder, need)
	if i == len(ladder) {
		return ladder[len(ladder)-1]
	}
	return ladder[i]
}

// Stride is the distance between consecutive segment starts.
func Stride(tier, overlap float64) float64 {
	return tier * (1 - overlap)
}

// Count returns how many segments of the tier are needed to reach duration.
func Count(duration, tier, overlap float64) int {
	stride := Stride(tier, overlap)
	if tier >= duration || stride <= 0 {
		return 1
	}
	return int(math.Ceil((duration-tier)/stride)) + 1
}

// At returns the i-th segment of the tier. Interval is [i·stride, i·stride+tier]
// clipped to the recording; Buffer widens it by half the overlap on each side.
func At(i int, duration, tier, overlap float64) Segment {
	if tier >= duration {
		full := intervals.Interval{Min: 0, Max: duration}
		return Segment{Interval: full, Buffer: full, Tier: tier, Index: 0}
	}
	rec := intervals.Interval{Min: 0, Max: duration}
	start := float64(i) * Stride(tier, overlap)
	iv, _ := intervals.Intersect(intervals.Interval{Min: start, Max: start + tier}, rec)
	pad := overlap * tier / 2
	buf, _ := intervals.Intersect(intervals.Interval{Min: iv.Min - pad, Max: iv.Max + pad}, rec)
	return Segment{Interval: iv, Buffer: buf, Tier: tier, Index: i}
}

// Select picks the segment for viewport out of a recording spanning
// [0, duration]. The segment whose centre is closest to the viewport centre
// wins; ties go to the earlier segment.
func Select(viewport intervals.Interval, duration float64, cfg config.SegmentConfig) Selection {
	width := viewport.Width()
	if width >= duration {
		full := intervals.Interval{Min: 0, Max: duration}
		tier := ChooseTier(cfg.Ladder, width, cfg.Factor)
		return Selection{Current: Segment{Interval: full, Buffer: full, Tier: tier}}
	}

	tier := ChooseTier(cfg.Ladder, width, cfg.Factor)
	n := Count(duration, tier, cfg.Overlap)
	if n == 1 {
		return Selection{Current: At(0, duration, tier, cfg.Overlap)}
	}

	stride := Stride(tier, cfg.Overlap)
	center := viewport.Center()
	// centre of segment i is i·stride + tier/2, so the nearest index is a rounding away
	guess := int(math.Round((center - tier/2) / stride))
	best := clampIndex(guess, n)
	bestDist := math.Inf(1)
	for _, i := range []int{best - 1, best, best + 1} {
		if i < 0 || i >= n {
			continue
		}
		d := math.Abs(At(i, duration, tier, cfg.Overlap).Interval.Center() - center)
		if d < bestDist {
			best, bestDist = i, d
		}
	}

	sel := Selection{Current: At(best, duration, tier, cfg.Overlap)}
	if best > 0 {
		prev := At(best-1, duration, tier, cfg.Overlap)
		sel.Previous = &prev
	}
	if best < n-1 {
		next := At(best+1, duration, tier, cfg.Overlap)
		sel.Next = &next
	}
	return sel
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Selector remembers the last selection so callers can tell when the
// wanted tiles changed.
type Selector struct {
	duration float64
	cfg      config.SegmentConfig
	last     *Selection
	logger   logging.Logger
}

// NewSelector creates a selector for a recording of the given duration.
func NewSelector(duration float64, cfg config.SegmentConfig, logger logging.Logger) *Selector {
	return &Selector{
		duration: duration,
		cfg:      cfg,
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "segment_selector",
		}),
	}
}

// Update selects for viewport and reports whether the current segment changed.
func (s *Selector) Update(viewport intervals.Interval) (Selection, bool) {
	sel := Select(viewport, s.duration, s.cfg)
	changed := s.last == nil || s.last.Current.Key() != sel.Current.Key() ||
		s.last.Current.Interval != sel.Current.Interval
	if changed {
		s.logger.Debug("segment changed", logging.Fields{
			"tier":     sel.Current.Tier,
			"index":    sel.Current.Index,
			"interval": sel.Current.Interval.String(),
		})
	}
	s.last = &sel
	return sel, changed
}

// Wanted reports whether key belongs to the latest selection.
func (s *Selector) Wanted(key string) bool {
	if s.last == nil {
		return false
	}
	for _, seg := range s.last.Segments() {
		if seg.Key() == key {
			return true
		}
	}
	return false
}

// Current returns the latest selection, if any.
func (s *Selector) Current() (Selection, bool) {
	if s.last == nil {
		return Selection{}, false
	}
	return *s.last, true
}
