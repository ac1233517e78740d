// Package session holds state that lives as long as one editing session and
// is shared by every canvas opened in it: the annotation clipboard and the
// tag colour cache. A Session is created by the caller and handed to each
// canvas; there is no package-level instance.
package session

import (
	"errors"
	"sync"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var ErrClipboardEmpty = errors.New("clipboard is empty")

// Session is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	clipboard *annotations.Annotation
	colors    *TagColors
	logger    logging.Logger
}

// New creates a session. A nil palette selects DefaultPalette.
func New(palette []Color, logger logging.Logger) *Session {
	return &Session{
		colors: NewTagColors(palette),
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "session",
		}),
	}
}

// Copy places a copy of a on the clipboard, replacing what was there.
func (s *Session) Copy(a annotations.Annotation) error {
	if a.Geometry == nil {
		return geometry.ErrInvalidGeometry
	}
	c := a.Clone()
	s.mu.Lock()
	s.clipboard = &c
	s.mu.Unlock()
	s.logger.Debug("annotation copied", logging.Fields{
		"id":   a.ID,
		"type": string(a.Geometry.Type()),
	})
	return nil
}

// Clipboard returns the copied annotation, if any.
func (s *Session) Clipboard() (annotations.Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clipboard == nil {
		return annotations.Annotation{}, false
	}
	return s.clipboard.Clone(), true
}

// ClearClipboard empties the clipboard.
func (s *Session) ClearClipboard() {
	s.mu.Lock()
	s.clipboard = nil
	s.mu.Unlock()
}

// Paste returns the clipboard geometry moved so that the lower-left corner
// of its bounding box sits at p, together with the copied tags. The moved
// box is shifted back inside bounds where it would overhang. Time-only
// geometries move along the time axis only.
func (s *Session) Paste(p intervals.Position, bounds intervals.Window) (geometry.Geometry, []annotations.Tag, error) {
	a, ok := s.Clipboard()
	if !ok {
		return nil, nil, ErrClipboardEmpty
	}
	box := geometry.ComputeBBox(a.Geometry)
	target := intervals.AdjustToBounds(intervals.Window{
		Time: intervals.Interval{Min: p.Time, Max: p.Time + box.EndTime - box.StartTime},
		Freq: intervals.Interval{Min: p.Freq, Max: p.Freq + box.HighFreq - box.LowFreq},
	}, bounds)
	d := intervals.Delta{Time: target.Time.Min - box.StartTime}
	if !a.Geometry.Type().TimeOnly() {
		d.Freq = target.Freq.Min - box.LowFreq
	}
	return geometry.Translate(a.Geometry, d), a.Tags, nil
}

// TagColor returns the colour assigned to t.
func (s *Session) TagColor(t annotations.Tag) Color {
	return s.colors.Get(t)
}

// Colors exposes the tag colour cache.
func (s *Session) Colors() *TagColors {
	return s.colors
}
