package interaction

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

func draw(s State, e Event, env Env) (State, []Intent) {
	switch s.GeometryType {
	case geometry.TimeStampType, geometry.PointType:
		return drawSingle(s, e)
	case geometry.BoundingBoxType, geometry.TimeIntervalType:
		return drawSpan(s, e)
	case geometry.LineStringType, geometry.PolygonType:
		return drawVertices(s, e)
	}
	return s, nil
}

// drawSingle commits on press. There is no drag phase.
func drawSingle(s State, e Event) (State, []Intent) {
	ev, ok := e.(Press)
	if !ok {
		return s, nil
	}
	p := ev.Pointer.Position
	var g geometry.Geometry = geometry.Point{Position: p}
	if s.GeometryType == geometry.TimeStampType {
		g = geometry.TimeStamp{Time: p.Time}
	}
	return s, []Intent{Create{Geometry: g}}
}

// drawSpan handles press-drag-release shapes: the drag start and end are
// opposite corners.
func drawSpan(s State, e Event) (State, []Intent) {
	switch ev := e.(type) {
	case MoveStart:
		// a new gesture replaces anything left over from an interrupted one
		next := s
		next.Phase = PhaseDrawing
		next.gesture = gesture{active: true, origin: ev.Pointer.Position}
		next.Transient = spanGeometry(s.GeometryType, ev.Pointer.Position, ev.Pointer.Position)
		return next, nil
	case Move:
		if !s.gesture.active {
			return s, nil
		}
		next := s
		next.Transient = spanGeometry(s.GeometryType, s.gesture.origin, ev.Pointer.Position)
		return next, nil
	case MoveEnd:
		if !s.gesture.active {
			return s, nil
		}
		g := spanGeometry(s.GeometryType, s.gesture.origin, ev.Pointer.Position)
		next := s
		next.Phase = PhaseNone
		next.Transient = nil
		next.gesture = gesture{}
		if !geometry.NonDegenerate(g) {
			return next, nil
		}
		return next, []Intent{Create{Geometry: g}}
	}
	return s, nil
}

func spanGeometry(t geometry.Type, a, b intervals.Position) geometry.Geometry {
	if t == geometry.TimeIntervalType {
		return geometry.NewTimeInterval(a.Time, b.Time)
	}
	return geometry.NewBoundingBox(a, b)
}

// drawVertices handles click-to-add shapes. A plain click fixes a vertex and
// leaves a live vertex following the pointer. Dragging right after a click
// turns the vertex just added back into the live vertex; releasing fixes it
// where the drag ended. Shift-click adds the final vertex and commits once
// the shape has enough of them; ctrl-click drops the live vertex.
func drawVertices(s State, e Event) (State, []Intent) {
	switch ev := e.(type) {
	case Press:
		p := ev.Pointer.Position
		next := s
		if ev.Pointer.Modifiers.Ctrl {
			next.gesture.live = nil
			next.gesture.justClicked = false
			next.Transient = vertexPreview(s.GeometryType, next.gesture.vertices, nil)
			return next, nil
		}

		vertices := appendVertex(s.gesture.vertices, p)
		if ev.Pointer.Modifiers.Shift && len(vertices) >= minVertices(s.GeometryType) {
			done := State{Mode: s.Mode, GeometryType: s.GeometryType}
			return done, []Intent{Create{Geometry: vertexGeometry(s.GeometryType, vertices)}}
		}

		next.Phase = PhaseDrawing
		next.gesture.vertices = vertices
		next.gesture.live = &p
		next.gesture.justClicked = true
		next.Transient = vertexPreview(s.GeometryType, vertices, next.gesture.live)
		return next, nil

	case MoveStart:
		if !s.gesture.justClicked || len(s.gesture.vertices) == 0 {
			return s, nil
		}
		vertices := s.gesture.vertices[:len(s.gesture.vertices)-1:len(s.gesture.vertices)-1]
		p := ev.Pointer.Position
		next := s
		next.gesture.active = true
		next.gesture.justClicked = false
		next.gesture.vertices = vertices
		next.gesture.live = &p
		next.Transient = vertexPreview(s.GeometryType, vertices, &p)
		return next, nil

	case Move, Hover:
		if s.gesture.live == nil {
			return s, nil
		}
		p := pointerOf(ev).Position
		next := s
		next.gesture.live = &p
		if _, isMove := ev.(Move); !isMove {
			next.gesture.justClicked = false
		}
		next.Transient = vertexPreview(s.GeometryType, s.gesture.vertices, &p)
		return next, nil

	case MoveEnd:
		if !s.gesture.active {
			return s, nil
		}
		p := ev.Pointer.Position
		vertices := appendVertex(s.gesture.vertices, p)
		next := s
		next.gesture.active = false
		next.gesture.vertices = vertices
		next.gesture.live = &p
		next.Transient = vertexPreview(s.GeometryType, vertices, &p)
		return next, nil
	}
	return s, nil
}

func pointerOf(e Event) Pointer {
	switch ev := e.(type) {
	case Move:
		return ev.Pointer
	case Hover:
		return ev.Pointer
	}
	return Pointer{}
}

func minVertices(t geometry.Type) int {
	if t == geometry.PolygonType {
		return 3
	}
	return 2
}

// appendVertex never writes into the backing array of vs.
func appendVertex(vs []intervals.Position, p intervals.Position) []intervals.Position {
	out := make([]intervals.Position, len(vs), len(vs)+1)
	copy(out, vs)
	return append(out, p)
}

func vertexGeometry(t geometry.Type, vs []intervals.Position) geometry.Geometry {
	if t == geometry.PolygonType {
		return geometry.NewPolygon(vs)
	}
	return geometry.LineString{Coordinates: append([]intervals.Position(nil), vs...)}
}

// vertexPreview is the transient shown while drawing: the fixed vertices
// plus the live one.
func vertexPreview(t geometry.Type, vs []intervals.Position, live *intervals.Position) geometry.Geometry {
	coords := append([]intervals.Position(nil), vs...)
	if live != nil {
		coords = append(coords, *live)
	}
	if len(coords) == 0 {
		return nil
	}
	if t == geometry.PolygonType && len(coords) >= 3 {
		return geometry.NewPolygon(coords)
	}
	return geometry.LineString{Coordinates: coords}
}
