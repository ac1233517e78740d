// Package geometry models the closed set of sound-event shapes that can be
// drawn on a spectrogram, and the transforms between time–frequency space and
// pixel space that drawing and hit testing depend on.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// Position is a (time, frequency) coordinate pair. In pixel space the same
// type carries (x, y).
type Position = intervals.Position

// Type names a geometry variant. The values match the soundevent wire format.
type Type string

const (
	TimeStampType       Type = "TimeStamp"
	TimeIntervalType    Type = "TimeInterval"
	BoundingBoxType     Type = "BoundingBox"
	PointType           Type = "Point"
	LineStringType      Type = "LineString"
	PolygonType         Type = "Polygon"
	MultiPointType      Type = "MultiPoint"
	MultiLineStringType Type = "MultiLineString"
	MultiPolygonType    Type = "MultiPolygon"
)

var (
	ErrInvalidGeometry     = errors.New("invalid geometry")
	ErrOutOfWindow         = errors.New("geometry is outside the window")
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
)

// Types lists every variant in declaration order.
var Types = []Type{
	TimeStampType, TimeIntervalType, BoundingBoxType,
	PointType, LineStringType, PolygonType,
	MultiPointType, MultiLineStringType, MultiPolygonType,
}

// Drawable reports whether t can be created with a drawing gesture.
func (t Type) Drawable() bool {
	switch t {
	case TimeStampType, TimeIntervalType, BoundingBoxType, PointType, LineStringType, PolygonType:
		return true
	default:
		return false
	}
}

// TimeOnly reports whether the variant has no frequency component.
func (t Type) TimeOnly() bool {
	return t == TimeStampType || t == TimeIntervalType
}

// Geometry is implemented by the nine variants below and nothing else.
type Geometry interface {
	Type() Type
	sealed()
}

// TimeStamp marks a single instant.
type TimeStamp struct {
	Time float64
}

// TimeInterval spans [Start, End] in time.
type TimeInterval struct {
	Start, End float64
}

// BoundingBox is [StartTime, LowFreq, EndTime, HighFreq].
type BoundingBox struct {
	StartTime, LowFreq, EndTime, HighFreq float64
}

// Point is a single time–frequency coordinate.
type Point struct {
	Position
}

// LineString is an open polyline.
type LineString struct {
	Coordinates []Position
}

// Polygon is an outer ring followed by optional holes. Rings are closed:
// the first and last coordinates are equal.
type Polygon struct {
	Rings [][]Position
}

type MultiPoint struct {
	Points []Position
}

type MultiLineString struct {
	Lines [][]Position
}

type MultiPolygon struct {
	Polygons [][][]Position
}

func (TimeStamp) Type() Type       { return TimeStampType }
func (TimeInterval) Type() Type    { return TimeIntervalType }
func (BoundingBox) Type() Type     { return BoundingBoxType }
func (Point) Type() Type           { return PointType }
func (LineString) Type() Type      { return LineStringType }
func (Polygon) Type() Type         { return PolygonType }
func (MultiPoint) Type() Type      { return MultiPointType }
func (MultiLineString) Type() Type { return MultiLineStringType }
func (MultiPolygon) Type() Type    { return MultiPolygonType }

func (TimeStamp) sealed()       {}
func (TimeInterval) sealed()    {}
func (BoundingBox) sealed()     {}
func (Point) sealed()           {}
func (LineString) sealed()      {}
func (Polygon) sealed()         {}
func (MultiPoint) sealed()      {}
func (MultiLineString) sealed() {}
func (MultiPolygon) sealed()    {}

// NewBoundingBox builds a box from two opposite corners in any order.
func NewBoundingBox(a, b Position) BoundingBox {
	return BoundingBox{
		StartTime: math.Min(a.Time, b.Time),
		LowFreq:   math.Min(a.Freq, b.Freq),
		EndTime:   math.Max(a.Time, b.Time),
		HighFreq:  math.Max(a.Freq, b.Freq),
	}
}

// NewTimeInterval builds an interval from two instants in any order.
func NewTimeInterval(a, b float64) TimeInterval {
	return TimeInterval{Start: math.Min(a, b), End: math.Max(a, b)}
}

// NewPolygon closes ring if needed and returns a single-ring polygon.
func NewPolygon(ring []Position) Polygon {
	closed := append([]Position(nil), ring...)
	if len(closed) > 0 && closed[0] != closed[len(closed)-1] {
		closed = append(closed, closed[0])
	}
	return Polygon{Rings: [][]Position{closed}}
}

// Window returns the box as a time–frequency window.
func (b BoundingBox) Window() intervals.Window {
	return intervals.Window{
		Time: intervals.Interval{Min: b.StartTime, Max: b.EndTime},
		Freq: intervals.Interval{Min: b.LowFreq, Max: b.HighFreq},
	}
}

// Duration returns EndTime - StartTime.
func (b BoundingBox) Duration() float64 { return b.EndTime - b.StartTime }

// Bandwidth returns HighFreq - LowFreq.
func (b BoundingBox) Bandwidth() float64 { return b.HighFreq - b.LowFreq }

// Duration returns End - Start.
func (i TimeInterval) Duration() float64 { return i.End - i.Start }

// Validate checks that g is well formed for its variant.
func Validate(g Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: nil geometry", ErrInvalidGeometry)
	}
	switch v := g.(type) {
	case TimeStamp:
		if !finite(v.Time) {
			return invalid(v, "time is not finite")
		}
	case TimeInterval:
		if !finite(v.Start) || !finite(v.End) {
			return invalid(v, "bounds are not finite")
		}
		if v.Start > v.End {
			return invalid(v, "start is after end")
		}
	case BoundingBox:
		if !finite(v.StartTime) || !finite(v.EndTime) || !finite(v.LowFreq) || !finite(v.HighFreq) {
			return invalid(v, "bounds are not finite")
		}
		if v.StartTime > v.EndTime || v.LowFreq > v.HighFreq {
			return invalid(v, "min is greater than max")
		}
	case Point:
		if !finitePosition(v.Position) {
			return invalid(v, "coordinate is not finite")
		}
	case LineString:
		return validateLine(v, v.Coordinates)
	case Polygon:
		return validatePolygon(v, v.Rings)
	case MultiPoint:
		if len(v.Points) == 0 {
			return invalid(v, "no points")
		}
		for _, p := range v.Points {
			if !finitePosition(p) {
				return invalid(v, "coordinate is not finite")
			}
		}
	case MultiLineString:
		if len(v.Lines) == 0 {
			return invalid(v, "no lines")
		}
		for _, line := range v.Lines {
			if err := validateLine(v, line); err != nil {
				return err
			}
		}
	case MultiPolygon:
		if len(v.Polygons) == 0 {
			return invalid(v, "no polygons")
		}
		for _, rings := range v.Polygons {
			if err := validatePolygon(v, rings); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
	return nil
}

func validateLine(g Geometry, coords []Position) error {
	if len(coords) < 2 {
		return invalid(g, "line needs at least 2 coordinates")
	}
	for _, p := range coords {
		if !finitePosition(p) {
			return invalid(g, "coordinate is not finite")
		}
	}
	return nil
}

func validatePolygon(g Geometry, rings [][]Position) error {
	if len(rings) == 0 {
		return invalid(g, "polygon has no rings")
	}
	for _, ring := range rings {
		if len(ring) < 4 {
			return invalid(g, "ring needs at least 4 coordinates")
		}
		if ring[0] != ring[len(ring)-1] {
			return invalid(g, "ring is not closed")
		}
		for _, p := range ring {
			if !finitePosition(p) {
				return invalid(g, "coordinate is not finite")
			}
		}
	}
	return nil
}

// NonDegenerate reports whether g has extent along every axis it defines.
// Zero-area boxes and zero-length intervals are interaction noise.
func NonDegenerate(g Geometry) bool {
	switch v := g.(type) {
	case BoundingBox:
		return v.Duration() > 0 && v.Bandwidth() > 0
	case TimeInterval:
		return v.Duration() > 0
	case LineString:
		return len(v.Coordinates) >= 2 && distinct(v.Coordinates) >= 2
	case Polygon:
		return len(v.Rings) > 0 && distinct(v.Rings[0]) >= 3
	default:
		return Validate(g) == nil
	}
}

func distinct(coords []Position) int {
	seen := make(map[Position]struct{}, len(coords))
	for _, p := range coords {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Clone returns a deep copy so callers can mutate coordinates freely.
func Clone(g Geometry) Geometry {
	switch v := g.(type) {
	case LineString:
		return LineString{Coordinates: clonePositions(v.Coordinates)}
	case Polygon:
		return Polygon{Rings: cloneRings(v.Rings)}
	case MultiPoint:
		return MultiPoint{Points: clonePositions(v.Points)}
	case MultiLineString:
		return MultiLineString{Lines: cloneRings(v.Lines)}
	case MultiPolygon:
		polys := make([][][]Position, len(v.Polygons))
		for i, rings := range v.Polygons {
			polys[i] = cloneRings(rings)
		}
		return MultiPolygon{Polygons: polys}
	default:
		return g
	}
}

// Equal reports whether a and b are the same variant with the same coordinates.
func Equal(a, b Geometry) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case LineString:
		return equalPositions(av.Coordinates, b.(LineString).Coordinates)
	case MultiPoint:
		return equalPositions(av.Points, b.(MultiPoint).Points)
	case Polygon:
		return equalRings(av.Rings, b.(Polygon).Rings)
	case MultiLineString:
		return equalRings(av.Lines, b.(MultiLineString).Lines)
	case MultiPolygon:
		bp := b.(MultiPolygon).Polygons
		if len(av.Polygons) != len(bp) {
			return false
		}
		for i := range av.Polygons {
			if !equalRings(av.Polygons[i], bp[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func clonePositions(ps []Position) []Position {
	return append([]Position(nil), ps...)
}

func cloneRings(rings [][]Position) [][]Position {
	out := make([][]Position, len(rings))
	for i, r := range rings {
		out[i] = clonePositions(r)
	}
	return out
}

func equalPositions(a, b []Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalRings(a, b [][]Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalPositions(a[i], b[i]) {
			return false
		}
	}
	return true
}

func invalid(g Geometry, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidGeometry, g.Type(), reason)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finitePosition(p Position) bool {
	return finite(p.Time) && finite(p.Freq)
}
