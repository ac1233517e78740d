package interaction

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
)

// Event is an input to Next. Within one gesture MoveStart precedes any Move,
// which precede exactly one MoveEnd.
type Event interface {
	isEvent()
}

type Press struct{ Pointer Pointer }
type MoveStart struct{ Pointer Pointer }
type Move struct{ Pointer Pointer }
type MoveEnd struct{ Pointer Pointer }
type DoublePress struct{ Pointer Pointer }
type Hover struct{ Pointer Pointer }

// Scroll is a wheel or trackpad scroll. DY > 0 scrolls down.
type Scroll struct {
	Pointer Pointer
	DX, DY  float64
}

// Escape cancels whatever is in progress.
type Escape struct{}

type SetMode struct{ Mode Mode }

type SetGeometryType struct{ Type geometry.Type }

// CommitFailed tells the machine that a create, update or delete it asked
// for was rejected.
type CommitFailed struct{}

func (Press) isEvent()           {}
func (MoveStart) isEvent()       {}
func (Move) isEvent()            {}
func (MoveEnd) isEvent()         {}
func (DoublePress) isEvent()     {}
func (Hover) isEvent()           {}
func (Scroll) isEvent()          {}
func (Escape) isEvent()          {}
func (SetMode) isEvent()         {}
func (SetGeometryType) isEvent() {}
func (CommitFailed) isEvent()    {}

// Intent is a side effect requested by a transition.
type Intent interface {
	isIntent()
}

// Create asks for a new annotation.
type Create struct {
	Geometry geometry.Geometry
	Tags     []annotations.Tag
}

// Copy asks for a new annotation carrying Source's tags.
type Copy struct {
	Source   annotations.Annotation
	Geometry geometry.Geometry
}

type Update struct {
	ID       string
	Geometry geometry.Geometry
}

type Delete struct {
	Annotation annotations.Annotation
}

// Seek moves the play-head without touching the viewport.
type Seek struct {
	Time float64
}

// Pan shifts the viewport. Relative deltas are in window widths.
type Pan struct {
	Delta    intervals.Delta
	Relative bool
}

// Zoom scales the viewport around At.
type Zoom struct {
	At     intervals.Position
	Factor float64
}

// ViewportGesture brackets a user-driven viewport drag.
type ViewportGesture struct {
	Active bool
}

func (Create) isIntent()          {}
func (Copy) isIntent()            {}
func (Update) isIntent()          {}
func (Delete) isIntent()          {}
func (Seek) isIntent()            {}
func (Pan) isIntent()             {}
func (Zoom) isIntent()            {}
func (ViewportGesture) isIntent() {}
