package interaction

import (
	"testing"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
)

var (
	outer = annotations.Annotation{
		ID:       "outer",
		Geometry: geometry.BoundingBox{StartTime: 1, LowFreq: 100, EndTime: 5, HighFreq: 500},
		Tags:     []annotations.Tag{{Key: "species", Value: "pipistrellus"}},
	}
	inner = annotations.Annotation{
		ID:       "inner",
		Geometry: geometry.BoundingBox{StartTime: 2, LowFreq: 200, EndTime: 4, HighFreq: 400},
		Tags:     []annotations.Tag{{Key: "species", Value: "myotis"}},
	}
	offscreen = annotations.Annotation{
		ID:       "offscreen",
		Geometry: geometry.TimeStamp{Time: 50},
	}
)

func envWith(list ...annotations.Annotation) Env {
	env := testEnv
	env.Annotations = list
	return env
}

func inMode(t *testing.T, m Mode, env Env) State {
	t.Helper()
	s, _ := Next(NewState(geometry.BoundingBoxType), SetMode{Mode: m}, env)
	return s
}

func TestSelectPicksTopmost(t *testing.T) {
	env := envWith(outer, inner, offscreen)
	s := inMode(t, ModeSelect, env)

	s, _ = Next(s, Press{Pointer: at(3, 300)}, env)
	if s.SelectedID() != "inner" {
		t.Errorf("selected %q, want inner (drawn last)", s.SelectedID())
	}

	s, _ = Next(s, Press{Pointer: at(1.5, 150)}, env)
	if s.SelectedID() != "outer" {
		t.Errorf("selected %q, want outer", s.SelectedID())
	}

	s, _ = Next(s, Press{Pointer: at(8, 800)}, env)
	if s.Selected != nil {
		t.Errorf("clicking empty space left %q selected", s.SelectedID())
	}
	if s.Phase != PhaseSelecting {
		t.Errorf("Phase = %q, want selecting", s.Phase)
	}
}

func TestHoverTracksAnnotation(t *testing.T) {
	env := envWith(outer)
	s := inMode(t, ModeSelect, env)
	s, _ = Next(s, Hover{Pointer: at(1.5, 150)}, env)
	if s.Hovered != "outer" {
		t.Errorf("Hovered = %q, want outer", s.Hovered)
	}
	s, _ = Next(s, Hover{Pointer: at(9, 900)}, env)
	if s.Hovered != "" {
		t.Errorf("Hovered = %q, want empty", s.Hovered)
	}
}

func editing(t *testing.T, env Env, p Pointer) State {
	t.Helper()
	s := inMode(t, ModeEdit, env)
	if s.Phase != PhaseSelecting {
		t.Fatalf("edit mode starts in %q, want selecting", s.Phase)
	}
	s, _ = Next(s, Press{Pointer: p}, env)
	if s.Phase != PhaseEditing {
		t.Fatalf("Phase after selecting = %q, want editing", s.Phase)
	}
	return s
}

func TestEditResizeByHandle(t *testing.T) {
	env := envWith(inner)
	s := editing(t, env, at(3, 300))

	// top-right corner of inner is (4, 400)
	s, _ = Next(s, MoveStart{Pointer: at(4, 400)}, env)
	if !s.Dragging() {
		t.Fatal("grabbing the corner did not start a drag")
	}
	s, _ = Next(s, Move{Pointer: at(4.5, 450)}, env)
	if want := (geometry.BoundingBox{StartTime: 2, LowFreq: 200, EndTime: 4.5, HighFreq: 450}); s.Transient != want {
		t.Errorf("Transient = %v, want %v", s.Transient, want)
	}

	s, intents := Next(s, MoveEnd{Pointer: at(5, 500)}, env)
	if len(intents) != 1 {
		t.Fatalf("intents = %v, want one update", intents)
	}
	up, ok := intents[0].(Update)
	want := geometry.BoundingBox{StartTime: 2, LowFreq: 200, EndTime: 5, HighFreq: 500}
	if !ok || up.ID != "inner" || up.Geometry != want {
		t.Errorf("intent = %+v, want update of inner to %v", intents[0], want)
	}
	if s.Transient != nil || s.Phase != PhaseEditing || s.Selected.Geometry != want {
		t.Errorf("after release state = %+v", s)
	}
}

func TestEditShiftDragTranslates(t *testing.T) {
	env := envWith(inner)
	s := editing(t, env, at(3, 300))

	s, _ = Next(s, MoveStart{Pointer: shift(at(3, 300))}, env)
	_, intents := Next(s, MoveEnd{Pointer: shift(at(4, 350))}, env)

	want := geometry.BoundingBox{StartTime: 3, LowFreq: 250, EndTime: 5, HighFreq: 450}
	if len(intents) != 1 || intents[0].(Update).Geometry != want {
		t.Errorf("intents = %v, want update to %v", intents, want)
	}
}

func TestEditShiftOverHandleTranslates(t *testing.T) {
	env := envWith(inner)
	s := editing(t, env, at(3, 300))

	s, _ = Next(s, MoveStart{Pointer: at(4, 400)}, env)
	_, intents := Next(s, MoveEnd{Pointer: shift(at(5, 400))}, env)

	want := geometry.BoundingBox{StartTime: 3, LowFreq: 200, EndTime: 5, HighFreq: 400}
	if len(intents) != 1 || intents[0].(Update).Geometry != want {
		t.Errorf("intents = %v, want shift to translate to %v", intents, want)
	}
}

func TestEditCtrlIsReadAtRelease(t *testing.T) {
	env := envWith(inner)
	start := editing(t, env, at(3, 300))
	start, _ = Next(start, MoveStart{Pointer: at(3, 300)}, env)

	// ctrl pressed mid-drag, released before the end: plain update
	s, _ := Next(start, Move{Pointer: ctrl(at(3.5, 300))}, env)
	_, intents := Next(s, MoveEnd{Pointer: at(4, 300)}, env)
	if len(intents) != 1 {
		t.Fatalf("intents = %v, want an update", intents)
	}
	if _, ok := intents[0].(Update); !ok {
		t.Errorf("intent = %T, want Update", intents[0])
	}

	// ctrl held at release: copy with the source tags
	s, _ = Next(start, Move{Pointer: at(3.5, 300)}, env)
	after, intents := Next(s, MoveEnd{Pointer: ctrl(at(4, 300))}, env)
	if len(intents) != 1 {
		t.Fatalf("intents = %v, want one copy", intents)
	}
	cp, ok := intents[0].(Copy)
	if !ok {
		t.Fatalf("intent = %T, want Copy", intents[0])
	}
	if cp.Source.ID != "inner" || cp.Source.Tags[0].Value != "myotis" {
		t.Errorf("copy source = %+v", cp.Source)
	}
	if want := (geometry.BoundingBox{StartTime: 3, LowFreq: 200, EndTime: 5, HighFreq: 400}); cp.Geometry != want {
		t.Errorf("copy geometry = %v, want %v", cp.Geometry, want)
	}
	if after.Selected.Geometry != inner.Geometry {
		t.Error("copying changed the selected annotation")
	}
}

func TestEditWithoutMovementCommitsNothing(t *testing.T) {
	env := envWith(inner)
	s := editing(t, env, at(3, 300))
	s, _ = Next(s, MoveStart{Pointer: at(3, 300)}, env)
	_, intents := Next(s, MoveEnd{Pointer: at(3, 300)}, env)
	if len(intents) != 0 {
		t.Errorf("intents = %v, want none", intents)
	}
}

func TestEditCollapsingBoxIsDiscarded(t *testing.T) {
	env := envWith(inner)
	s := editing(t, env, at(3, 300))
	// drag the top edge down onto the bottom edge
	s, _ = Next(s, MoveStart{Pointer: at(3, 400)}, env)
	_, intents := Next(s, MoveEnd{Pointer: at(3, 200)}, env)
	if len(intents) != 0 {
		t.Errorf("intents = %v, want zero-height box discarded", intents)
	}
}

func TestEditPressElsewhereSwitchesSelection(t *testing.T) {
	env := envWith(outer, inner)
	s := editing(t, env, at(3, 300))
	if s.SelectedID() != "inner" {
		t.Fatalf("selected %q, want inner", s.SelectedID())
	}
	s, _ = Next(s, Press{Pointer: at(1.2, 120)}, env)
	if s.SelectedID() != "outer" || s.Phase != PhaseEditing {
		t.Errorf("after press selected %q phase %q", s.SelectedID(), s.Phase)
	}
	s, _ = Next(s, Press{Pointer: at(9, 900)}, env)
	if s.Selected != nil || s.Phase != PhaseSelecting {
		t.Errorf("after press on empty space selected %q phase %q", s.SelectedID(), s.Phase)
	}
}

func TestSelectionSurvivesSelectToEdit(t *testing.T) {
	env := envWith(inner)
	s := inMode(t, ModeSelect, env)
	s, _ = Next(s, Press{Pointer: at(3, 300)}, env)
	s, _ = Next(s, SetMode{Mode: ModeEdit}, env)
	if s.SelectedID() != "inner" || s.Phase != PhaseEditing {
		t.Errorf("edit after select: selected %q phase %q", s.SelectedID(), s.Phase)
	}
	s, _ = Next(s, SetMode{Mode: ModeDelete}, env)
	if s.Selected != nil {
		t.Error("selection carried into delete mode")
	}
}

func TestDelete(t *testing.T) {
	env := envWith(inner)
	s := inMode(t, ModeDelete, env)

	miss, intents := Next(s, Press{Pointer: at(8, 800)}, env)
	if len(intents) != 0 || miss.Mode != ModeDelete {
		t.Errorf("miss: mode %s intents %v", miss.Mode, intents)
	}

	hit, intents := Next(s, Press{Pointer: at(3, 300)}, env)
	if len(intents) != 1 {
		t.Fatalf("hit intents = %v, want one delete", intents)
	}
	if d, ok := intents[0].(Delete); !ok || d.Annotation.ID != "inner" {
		t.Errorf("intent = %+v, want delete of inner", intents[0])
	}
	if hit.Mode != ModeIdle {
		t.Errorf("mode after delete = %s, want idle", hit.Mode)
	}
}
