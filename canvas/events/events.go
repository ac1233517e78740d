// Package events is the single typed event stream of a canvas. The engine
// publishes; chrome, renderers and tests subscribe.
package events

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/canvas/segments"
)

// Kind tags an event for logging and filtering.
type Kind string

const (
	KindViewportChanged    Kind = "viewport_changed"
	KindModeChanged        Kind = "mode_changed"
	KindSelectionChanged   Kind = "selection_changed"
	KindAnnotationCreated  Kind = "annotation_created"
	KindAnnotationUpdated  Kind = "annotation_updated"
	KindAnnotationDeleted  Kind = "annotation_deleted"
	KindCommitFailed       Kind = "commit_failed"
	KindNotification       Kind = "notification"
	KindSeeked             Kind = "seeked"
	KindPlaybackChanged    Kind = "playback_changed"
	KindSegmentChanged     Kind = "segment_changed"
	KindTileStateChanged   Kind = "tile_state_changed"
	KindClipboardChanged   Kind = "clipboard_changed"
	KindGeometryTypeChosen Kind = "geometry_type_chosen"
)

// Event is implemented by every type in this package.
type Event interface {
	Kind() Kind
}

type ViewportChanged struct {
	Window intervals.Window
}

type ModeChanged struct {
	Mode  interaction.Mode
	Phase interaction.Phase
}

type GeometryTypeChosen struct {
	Type geometry.Type
}

// SelectionChanged carries nil when the selection was cleared.
type SelectionChanged struct {
	Selected *annotations.Annotation
}

type AnnotationCreated struct {
	Annotation annotations.Annotation
	// Copy is set when the annotation was created by a ctrl-drag in edit mode.
	Copy bool
}

type AnnotationUpdated struct {
	Annotation annotations.Annotation
}

type AnnotationDeleted struct {
	Annotation annotations.Annotation
}

// CommitFailed reports a persistence rejection. The canvas has already
// reverted to the last confirmed annotation list.
type CommitFailed struct {
	Op  annotations.Op
	ID  string
	Err error
}

// Severity of a Notification.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is a transient user-visible message.
type Notification struct {
	Severity Severity
	Message  string
}

type Seeked struct {
	Time float64
}

type PlaybackChanged struct {
	Playing bool
	Time    float64
}

type SegmentChanged struct {
	Selection segments.Selection
}

type TileStateChanged struct {
	Key   string
	State string
}

type ClipboardChanged struct {
	Geometry geometry.Geometry
}

func (ViewportChanged) Kind() Kind    { return KindViewportChanged }
func (ModeChanged) Kind() Kind        { return KindModeChanged }
func (GeometryTypeChosen) Kind() Kind { return KindGeometryTypeChosen }
func (SelectionChanged) Kind() Kind   { return KindSelectionChanged }
func (AnnotationCreated) Kind() Kind  { return KindAnnotationCreated }
func (AnnotationUpdated) Kind() Kind  { return KindAnnotationUpdated }
func (AnnotationDeleted) Kind() Kind  { return KindAnnotationDeleted }
func (CommitFailed) Kind() Kind       { return KindCommitFailed }
func (Notification) Kind() Kind       { return KindNotification }
func (Seeked) Kind() Kind             { return KindSeeked }
func (PlaybackChanged) Kind() Kind    { return KindPlaybackChanged }
func (SegmentChanged) Kind() Kind     { return KindSegmentChanged }
func (TileStateChanged) Kind() Kind   { return KindTileStateChanged }
func (ClipboardChanged) Kind() Kind   { return KindClipboardChanged }
