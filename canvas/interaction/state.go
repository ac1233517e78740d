// Package interaction implements the modal drawing/selection protocol of a
// canvas as a pure transition function. Next never touches the viewport,
// the annotation store or the audio clock; it returns Intents the engine
// carries out.
package interaction

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
)

// Mode is the tool the user picked.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeDraw   Mode = "draw"
	ModeSelect Mode = "select"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

// Modes lists every mode.
var Modes = []Mode{ModeIdle, ModeDraw, ModeSelect, ModeEdit, ModeDelete}

// Phase is the nested discriminant inside a mode.
type Phase string

const (
	PhaseNone      Phase = ""
	PhaseDrawing   Phase = "drawing"
	PhaseSelecting Phase = "selecting"
	PhaseEditing   Phase = "editing"
	PhasePanning   Phase = "panning"
)

// State is the whole interaction state of one canvas. Values are treated as
// immutable: Next returns a new State and never writes through the old one.
type State struct {
	Mode         Mode
	Phase        Phase
	GeometryType geometry.Type
	Selected     *annotations.Annotation
	// Transient is the uncommitted geometry being drawn or dragged.
	Transient geometry.Geometry
	// Hovered is the id of the annotation under the pointer in select,
	// edit and delete modes.
	Hovered string

	gesture gesture
}

// gesture is the private bookkeeping of the pointer gesture in progress.
type gesture struct {
	active bool
	origin intervals.Position
	last   geometry.Pixel

	// edit drags
	handle   int // control point index, or -1 for the whole shape
	original geometry.Geometry

	// line and polygon drawing
	vertices    []intervals.Position
	live        *intervals.Position
	justClicked bool
}

// NewState returns the idle state with the given geometry type selected for drawing.
func NewState(t geometry.Type) State {
	if !t.Drawable() {
		t = geometry.BoundingBoxType
	}
	return State{Mode: ModeIdle, GeometryType: t}
}

// Vertices returns the fixed vertices of a line or polygon being drawn.
func (s State) Vertices() []intervals.Position {
	return append([]intervals.Position(nil), s.gesture.vertices...)
}

// Dragging reports whether a pointer drag is in progress.
func (s State) Dragging() bool {
	return s.gesture.active
}

// SelectedID returns the selected annotation id or "".
func (s State) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.ID
}

// Env is the read-only context a transition needs. Annotations are in
// drawing order, so later entries are on top.
type Env struct {
	Window      intervals.Window
	Dimensions  geometry.Dimensions
	Annotations []annotations.Annotation
	Config      config.InteractionConfig
}

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Pointer locates a pointer event both on the surface and in the recording.
type Pointer struct {
	Position  intervals.Position
	Pixel     geometry.Pixel
	Modifiers Modifiers
}
