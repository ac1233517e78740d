package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// ComputeBBox returns the smallest box containing g. Point-like geometries
// give a zero-width box. Time-only geometries span the whole frequency axis,
// so their LowFreq/HighFreq are -Inf/+Inf.
func ComputeBBox(g Geometry) BoundingBox {
	switch v := g.(type) {
	case TimeStamp:
		return BoundingBox{StartTime: v.Time, LowFreq: math.Inf(-1), EndTime: v.Time, HighFreq: math.Inf(1)}
	case TimeInterval:
		return BoundingBox{StartTime: v.Start, LowFreq: math.Inf(-1), EndTime: v.End, HighFreq: math.Inf(1)}
	case BoundingBox:
		return v
	case Point:
		return BoundingBox{StartTime: v.Time, LowFreq: v.Freq, EndTime: v.Time, HighFreq: v.Freq}
	default:
		return bboxOf(flatten(g))
	}
}

// flatten collects every coordinate of a sequence-based geometry.
func flatten(g Geometry) []Position {
	switch v := g.(type) {
	case LineString:
		return v.Coordinates
	case MultiPoint:
		return v.Points
	case Polygon:
		return concat(v.Rings)
	case MultiLineString:
		return concat(v.Lines)
	case MultiPolygon:
		var out []Position
		for _, rings := range v.Polygons {
			out = append(out, concat(rings)...)
		}
		return out
	default:
		return nil
	}
}

func concat(rings [][]Position) []Position {
	var out []Position
	for _, r := range rings {
		out = append(out, r...)
	}
	return out
}

func bboxOf(coords []Position) BoundingBox {
	if len(coords) == 0 {
		return BoundingBox{}
	}
	times := make([]float64, len(coords))
	freqs := make([]float64, len(coords))
	for i, p := range coords {
		times[i] = p.Time
		freqs[i] = p.Freq
	}
	return BoundingBox{
		StartTime: floats.Min(times),
		LowFreq:   floats.Min(freqs),
		EndTime:   floats.Max(times),
		HighFreq:  floats.Max(freqs),
	}
}

// IsInWindow reports whether the bounding box of g intersects w. Time-only
// geometries are tested against the time axis alone.
func IsInWindow(g Geometry, w intervals.Window) bool {
	if g == nil {
		return false
	}
	box := ComputeBBox(g)
	timeAxis := intervals.Interval{Min: box.StartTime, Max: box.EndTime}
	if g.Type().TimeOnly() {
		return timeAxis.Overlaps(w.Time)
	}
	freqAxis := intervals.Interval{Min: box.LowFreq, Max: box.HighFreq}
	return timeAxis.Overlaps(w.Time) && freqAxis.Overlaps(w.Freq)
}

// Translate moves every coordinate of g by d. Time-only geometries ignore d.Freq.
func Translate(g Geometry, d intervals.Delta) Geometry {
	move := func(p Position) Position {
		return Position{Time: p.Time + d.Time, Freq: p.Freq + d.Freq}
	}
	return mapPositions(g, move)
}

// mapPositions applies fn to every coordinate, returning a new geometry of
// the same variant. Time-only variants pass their time through fn with a zero
// frequency.
func mapPositions(g Geometry, fn func(Position) Position) Geometry {
	switch v := g.(type) {
	case TimeStamp:
		return TimeStamp{Time: fn(Position{Time: v.Time}).Time}
	case TimeInterval:
		return TimeInterval{Start: fn(Position{Time: v.Start}).Time, End: fn(Position{Time: v.End}).Time}
	case BoundingBox:
		a := fn(Position{Time: v.StartTime, Freq: v.LowFreq})
		b := fn(Position{Time: v.EndTime, Freq: v.HighFreq})
		return NewBoundingBox(a, b)
	case Point:
		return Point{Position: fn(v.Position)}
	case LineString:
		return LineString{Coordinates: mapSlice(v.Coordinates, fn)}
	case MultiPoint:
		return MultiPoint{Points: mapSlice(v.Points, fn)}
	case Polygon:
		return Polygon{Rings: mapRings(v.Rings, fn)}
	case MultiLineString:
		return MultiLineString{Lines: mapRings(v.Lines, fn)}
	case MultiPolygon:
		polys := make([][][]Position, len(v.Polygons))
		for i, rings := range v.Polygons {
			polys[i] = mapRings(rings, fn)
		}
		return MultiPolygon{Polygons: polys}
	default:
		return g
	}
}

func mapSlice(ps []Position, fn func(Position) Position) []Position {
	out := make([]Position, len(ps))
	for i, p := range ps {
		out[i] = fn(p)
	}
	return out
}

func mapRings(rings [][]Position, fn func(Position) Position) [][]Position {
	out := make([][]Position, len(rings))
	for i, r := range rings {
		out[i] = mapSlice(r, fn)
	}
	return out
}
