package geometry

import (
	"fmt"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// ControlPoint is a draggable handle on a selected geometry.
type ControlPoint struct {
	Index    int
	Position Position
}

// Bounding box handle indices. Corners come first, then edge midpoints.
const (
	BoxBottomLeft = iota
	BoxBottomRight
	BoxTopRight
	BoxTopLeft
	BoxBottom
	BoxRight
	BoxTop
	BoxLeft
)

// ControlPoints lists the handles for g. Time-only geometries place their
// handles on the frequency centre of w so they can be drawn and hit.
func ControlPoints(g Geometry, w intervals.Window) []ControlPoint {
	fc := w.Freq.Center()
	switch v := g.(type) {
	case TimeStamp:
		return []ControlPoint{{0, Position{Time: v.Time, Freq: fc}}}
	case TimeInterval:
		return []ControlPoint{
			{0, Position{Time: v.Start, Freq: fc}},
			{1, Position{Time: v.End, Freq: fc}},
		}
	case BoundingBox:
		tc := (v.StartTime + v.EndTime) / 2
		bc := (v.LowFreq + v.HighFreq) / 2
		return []ControlPoint{
			{BoxBottomLeft, Position{Time: v.StartTime, Freq: v.LowFreq}},
			{BoxBottomRight, Position{Time: v.EndTime, Freq: v.LowFreq}},
			{BoxTopRight, Position{Time: v.EndTime, Freq: v.HighFreq}},
			{BoxTopLeft, Position{Time: v.StartTime, Freq: v.HighFreq}},
			{BoxBottom, Position{Time: tc, Freq: v.LowFreq}},
			{BoxRight, Position{Time: v.EndTime, Freq: bc}},
			{BoxTop, Position{Time: tc, Freq: v.HighFreq}},
			{BoxLeft, Position{Time: v.StartTime, Freq: bc}},
		}
	case Point:
		return []ControlPoint{{0, v.Position}}
	default:
		var out []ControlPoint
		for i, p := range vertices(g) {
			out = append(out, ControlPoint{Index: i, Position: p})
		}
		return out
	}
}

// vertices lists the editable vertices of a sequence geometry. Ring closing
// coordinates are left out since they mirror the first vertex.
func vertices(g Geometry) []Position {
	switch v := g.(type) {
	case LineString:
		return v.Coordinates
	case MultiPoint:
		return v.Points
	case MultiLineString:
		return concat(v.Lines)
	case Polygon:
		return openRings(v.Rings)
	case MultiPolygon:
		var out []Position
		for _, rings := range v.Polygons {
			out = append(out, openRings(rings)...)
		}
		return out
	default:
		return nil
	}
}

func openRings(rings [][]Position) []Position {
	var out []Position
	for _, r := range rings {
		if len(r) > 1 {
			out = append(out, r[:len(r)-1]...)
		}
	}
	return out
}

// MoveControlPoint returns a copy of g with handle index moved to p. Boxes
// and intervals are re-normalised so min <= max holds after crossing over.
func MoveControlPoint(g Geometry, index int, p Position) (Geometry, error) {
	switch v := g.(type) {
	case TimeStamp:
		if index != 0 {
			return nil, badHandle(g, index)
		}
		return TimeStamp{Time: p.Time}, nil
	case TimeInterval:
		switch index {
		case 0:
			return NewTimeInterval(p.Time, v.End), nil
		case 1:
			return NewTimeInterval(v.Start, p.Time), nil
		}
		return nil, badHandle(g, index)
	case BoundingBox:
		return moveBoxHandle(v, index, p)
	case Point:
		if index != 0 {
			return nil, badHandle(g, index)
		}
		return Point{Position: p}, nil
	case LineString:
		coords, ok := replaceAt(v.Coordinates, index, p)
		if !ok {
			return nil, badHandle(g, index)
		}
		return LineString{Coordinates: coords}, nil
	case MultiPoint:
		pts, ok := replaceAt(v.Points, index, p)
		if !ok {
			return nil, badHandle(g, index)
		}
		return MultiPoint{Points: pts}, nil
	case MultiLineString:
		lines := cloneRings(v.Lines)
		if !moveInLines(lines, index, p, false) {
			return nil, badHandle(g, index)
		}
		return MultiLineString{Lines: lines}, nil
	case Polygon:
		rings := cloneRings(v.Rings)
		if !moveInLines(rings, index, p, true) {
			return nil, badHandle(g, index)
		}
		return Polygon{Rings: rings}, nil
	case MultiPolygon:
		c := Clone(v).(MultiPolygon)
		for _, rings := range c.Polygons {
			n := len(openRings(rings))
			if index < n {
				moveInLines(rings, index, p, true)
				return c, nil
			}
			index -= n
		}
		return nil, badHandle(g, index)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
}

func moveBoxHandle(b BoundingBox, index int, p Position) (Geometry, error) {
	switch index {
	case BoxBottomLeft:
		b.StartTime, b.LowFreq = p.Time, p.Freq
	case BoxBottomRight:
		b.EndTime, b.LowFreq = p.Time, p.Freq
	case BoxTopRight:
		b.EndTime, b.HighFreq = p.Time, p.Freq
	case BoxTopLeft:
		b.StartTime, b.HighFreq = p.Time, p.Freq
	case BoxBottom:
		b.LowFreq = p.Freq
	case BoxRight:
		b.EndTime = p.Time
	case BoxTop:
		b.HighFreq = p.Freq
	case BoxLeft:
		b.StartTime = p.Time
	default:
		return nil, badHandle(b, index)
	}
	return NewBoundingBox(
		Position{Time: b.StartTime, Freq: b.LowFreq},
		Position{Time: b.EndTime, Freq: b.HighFreq},
	), nil
}

func replaceAt(ps []Position, index int, p Position) ([]Position, bool) {
	if index < 0 || index >= len(ps) {
		return nil, false
	}
	out := clonePositions(ps)
	out[index] = p
	return out, true
}

// moveInLines moves the index-th vertex across lines in place. Closed rings
// keep their closing coordinate in step with the first vertex.
func moveInLines(lines [][]Position, index int, p Position, closed bool) bool {
	if index < 0 {
		return false
	}
	for _, line := range lines {
		n := len(line)
		if closed && n > 1 {
			n--
		}
		if index < n {
			line[index] = p
			if closed && index == 0 && len(line) > 1 {
				line[len(line)-1] = p
			}
			return true
		}
		index -= n
	}
	return false
}

func badHandle(g Geometry, index int) error {
	return fmt.Errorf("%w: %s has no control point %d", ErrInvalidGeometry, g.Type(), index)
}
