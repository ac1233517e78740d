package interaction

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

const bodyHandle = -1

func edit(s State, e Event, env Env) (State, []Intent) {
	switch ev := e.(type) {
	case Press:
		return editPress(s, ev.Pointer, env), nil
	case Hover:
		return hover(s, ev.Pointer, env), nil
	case MoveStart:
		return editGrab(s, ev.Pointer, env), nil
	case Move:
		if !s.gesture.active {
			return s, nil
		}
		next := s
		if g, ok := dragged(s, ev.Pointer); ok {
			next.Transient = g
		}
		return next, nil
	case MoveEnd:
		return editRelease(s, ev.Pointer)
	}
	return s, nil
}

// editPress picks or keeps the annotation being edited. Pressing on the
// selected shape or one of its handles keeps it; pressing elsewhere selects
// whatever is there, or nothing.
func editPress(s State, p Pointer, env Env) State {
	if s.Selected != nil && s.Phase == PhaseEditing {
		g := s.Selected.Geometry
		if hitHandle(g, p, env) >= 0 || hitBody(g, p, env) {
			return s
		}
	}
	next := s
	next.Transient = nil
	next.gesture = gesture{}
	if hit, ok := hitAnnotation(p, env); ok {
		next.Selected = &hit
		next.Phase = PhaseEditing
		return next
	}
	next.Selected = nil
	next.Phase = PhaseSelecting
	return next
}

// editGrab starts a drag on a handle or on the body of the selection.
func editGrab(s State, p Pointer, env Env) State {
	next := s
	next.Transient = nil
	next.gesture = gesture{}
	if s.Selected == nil || s.Phase != PhaseEditing {
		return next
	}
	g := s.Selected.Geometry
	handle := hitHandle(g, p, env)
	if handle < 0 {
		if !hitBody(g, p, env) {
			return next
		}
		handle = bodyHandle
	}
	next.gesture = gesture{
		active:   true,
		origin:   p.Position,
		last:     p.Pixel,
		handle:   handle,
		original: g,
	}
	next.Transient = g
	return next
}

// dragged computes the geometry for the current pointer. Shift is read on
// every move, so it can be toggled mid-drag.
func dragged(s State, p Pointer) (geometry.Geometry, bool) {
	g := s.gesture.original
	if s.gesture.handle == bodyHandle || p.Modifiers.Shift {
		d := intervals.Delta{
			Time: p.Position.Time - s.gesture.origin.Time,
			Freq: p.Position.Freq - s.gesture.origin.Freq,
		}
		return geometry.Translate(g, d), true
	}
	moved, err := geometry.MoveControlPoint(g, s.gesture.handle, p.Position)
	if err != nil {
		return nil, false
	}
	return moved, true
}

// editRelease commits the drag. Ctrl at release time makes it a copy.
func editRelease(s State, p Pointer) (State, []Intent) {
	if !s.gesture.active || s.Selected == nil {
		return s, nil
	}
	next := s
	next.Transient = nil
	next.gesture = gesture{}

	g, ok := dragged(s, p)
	if !ok || geometry.Equal(g, s.gesture.original) || !geometry.NonDegenerate(g) {
		return next, nil
	}

	if p.Modifiers.Ctrl {
		return next, []Intent{Copy{Source: s.Selected.Clone(), Geometry: g}}
	}
	updated := s.Selected.Clone()
	updated.Geometry = g
	next.Selected = &updated
	return next, []Intent{Update{ID: updated.ID, Geometry: g}}
}
