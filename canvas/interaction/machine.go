package interaction

import (
	"math"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// Next is the transition function. It is pure: the same state, event and
// environment always give the same result, and s is never modified.
func Next(s State, e Event, env Env) (State, []Intent) {
	switch ev := e.(type) {
	case SetMode:
		return setMode(s, ev.Mode)
	case SetGeometryType:
		return setGeometryType(s, ev.Type)
	case Escape:
		return escape(s)
	case CommitFailed:
		return toIdle(s), endPan(s)
	case Scroll:
		return s, scroll(ev, env)
	}

	switch s.Mode {
	case ModeIdle:
		return idle(s, e, env)
	case ModeDraw:
		return draw(s, e, env)
	case ModeSelect:
		return selectMode(s, e, env)
	case ModeEdit:
		return edit(s, e, env)
	case ModeDelete:
		return deleteMode(s, e, env)
	}
	return s, nil
}

// initialPhase is the phase a mode starts in.
func initialPhase(m Mode) Phase {
	switch m {
	case ModeSelect, ModeDelete, ModeEdit:
		return PhaseSelecting
	default:
		return PhaseNone
	}
}

func setMode(s State, m Mode) (State, []Intent) {
	if m == s.Mode || !validMode(m) {
		return s, nil
	}
	intents := endPan(s)

	next := State{
		Mode:         m,
		Phase:        initialPhase(m),
		GeometryType: s.GeometryType,
	}
	// selection survives moving between select and edit
	if s.Selected != nil && (m == ModeSelect || m == ModeEdit) && (s.Mode == ModeSelect || s.Mode == ModeEdit) {
		next.Selected = s.Selected
		if m == ModeEdit {
			next.Phase = PhaseEditing
		}
	}
	return next, intents
}

func validMode(m Mode) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

func setGeometryType(s State, t geometry.Type) (State, []Intent) {
	if !t.Drawable() || t == s.GeometryType {
		return s, nil
	}
	next := s
	next.GeometryType = t
	if s.Mode == ModeDraw {
		next.Transient = nil
		next.Phase = PhaseNone
		next.gesture = gesture{}
	}
	return next, nil
}

func escape(s State) (State, []Intent) {
	intents := endPan(s)
	switch s.Mode {
	case ModeSelect, ModeEdit, ModeDelete:
		return State{Mode: s.Mode, Phase: PhaseSelecting, GeometryType: s.GeometryType}, intents
	default:
		return State{Mode: ModeIdle, GeometryType: s.GeometryType}, intents
	}
}

// toIdle drops everything in progress, including the selection.
func toIdle(s State) State {
	return State{Mode: ModeIdle, GeometryType: s.GeometryType}
}

// endPan releases a viewport drag that a mode change or cancel cut short.
func endPan(s State) []Intent {
	if s.Phase == PhasePanning && s.gesture.active {
		return []Intent{ViewportGesture{Active: false}}
	}
	return nil
}

func scroll(ev Scroll, env Env) []Intent {
	cfg := env.Config
	switch {
	case ev.Pointer.Modifiers.Ctrl:
		if ev.DY == 0 {
			return nil
		}
		step := cfg.ZoomStep
		if step <= 0 {
			step = 0.8
		}
		return []Intent{Zoom{At: ev.Pointer.Position, Factor: math.Pow(step, -ev.DY)}}
	case ev.Pointer.Modifiers.Shift:
		if ev.DY == 0 {
			return nil
		}
		return []Intent{Pan{Delta: intervals.Delta{Freq: -ev.DY * cfg.ScrollPanRatio}, Relative: true}}
	default:
		dt := (ev.DY + ev.DX) * cfg.ScrollPanRatio
		if dt == 0 {
			return nil
		}
		return []Intent{Pan{Delta: intervals.Delta{Time: dt}, Relative: true}}
	}
}

func idle(s State, e Event, env Env) (State, []Intent) {
	switch ev := e.(type) {
	case DoublePress:
		return s, []Intent{Seek{Time: ev.Pointer.Position.Time}}
	case MoveStart:
		next := s
		next.Phase = PhasePanning
		next.gesture = gesture{active: true, last: ev.Pointer.Pixel}
		return next, []Intent{ViewportGesture{Active: true}}
	case Move:
		if !s.gesture.active {
			return s, nil
		}
		next := s
		next.gesture.last = ev.Pointer.Pixel
		d := pixelDelta(s.gesture.last, ev.Pointer.Pixel, env)
		if d == (intervals.Delta{}) {
			return next, nil
		}
		return next, []Intent{Pan{Delta: d}}
	case MoveEnd:
		if !s.gesture.active {
			return s, nil
		}
		next := s
		next.Phase = PhaseNone
		next.gesture = gesture{}
		intents := []Intent{}
		if d := pixelDelta(s.gesture.last, ev.Pointer.Pixel, env); d != (intervals.Delta{}) {
			intents = append(intents, Pan{Delta: d})
		}
		return next, append(intents, ViewportGesture{Active: false})
	}
	return s, nil
}

// pixelDelta converts a pointer drag into the viewport shift that keeps the
// content under the pointer.
func pixelDelta(from, to geometry.Pixel, env Env) intervals.Delta {
	d := env.Dimensions
	if !d.Valid() {
		return intervals.Delta{}
	}
	return intervals.Delta{
		Time: -(to.X - from.X) / d.Width * env.Window.Time.Width(),
		Freq: (to.Y - from.Y) / d.Height * env.Window.Freq.Width(),
	}
}

func selectMode(s State, e Event, env Env) (State, []Intent) {
	switch ev := e.(type) {
	case Press:
		next := s
		next.Phase = PhaseSelecting
		next.Selected = nil
		if hit, ok := hitAnnotation(ev.Pointer, env); ok {
			next.Selected = &hit
		}
		return next, nil
	case Hover:
		return hover(s, ev.Pointer, env), nil
	case DoublePress:
		return s, []Intent{Seek{Time: ev.Pointer.Position.Time}}
	}
	return s, nil
}

func deleteMode(s State, e Event, env Env) (State, []Intent) {
	switch ev := e.(type) {
	case Press:
		hit, ok := hitAnnotation(ev.Pointer, env)
		if !ok {
			return s, nil
		}
		return toIdle(s), []Intent{Delete{Annotation: hit}}
	case Hover:
		return hover(s, ev.Pointer, env), nil
	}
	return s, nil
}

func hover(s State, p Pointer, env Env) State {
	next := s
	next.Hovered = ""
	if hit, ok := hitAnnotation(p, env); ok {
		next.Hovered = hit.ID
	}
	return next
}
