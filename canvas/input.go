package canvas

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/events"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// Input is anything the host feeds the engine.
type Input interface {
	isInput()
}

// PointerKind distinguishes pointer inputs.
type PointerKind string

const (
	PointerPress       PointerKind = "press"
	PointerMoveStart   PointerKind = "move_start"
	PointerMove        PointerKind = "move"
	PointerMoveEnd     PointerKind = "move_end"
	PointerDoublePress PointerKind = "double_press"
	PointerHover       PointerKind = "hover"
)

// PointerInput is a pointer event in surface pixels.
type PointerInput struct {
	Kind      PointerKind
	Pixel     geometry.Pixel
	Modifiers interaction.Modifiers
}

// ScrollInput is a wheel event. DY > 0 scrolls down.
type ScrollInput struct {
	Pixel     geometry.Pixel
	DX, DY    float64
	Modifiers interaction.Modifiers
}

// Key is a keyboard command the engine understands.
type Key string

const (
	KeyEscape     Key = "escape"
	KeyTogglePlay Key = "toggle_play"
	KeySave       Key = "save"
	KeyBack       Key = "back"
	KeyReset      Key = "reset"
	KeyCopy       Key = "copy"
	KeyPaste      Key = "paste"
	KeyZoomIn     Key = "zoom_in"
	KeyZoomOut    Key = "zoom_out"
)

type KeyInput struct {
	Key Key
}

// ResizeInput reports new surface dimensions.
type ResizeInput struct {
	Dimensions geometry.Dimensions
}

// TickInput advances playback by one frame.
type TickInput struct{}

func (PointerInput) isInput() {}
func (ScrollInput) isInput()  {}
func (KeyInput) isInput()     {}
func (ResizeInput) isInput()  {}
func (TickInput) isInput()    {}

// Dispatch applies one input.
func (e *Engine) Dispatch(in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.dispatch(in)
}

func (e *Engine) dispatch(in Input) {
	switch v := in.(type) {
	case PointerInput:
		e.pointer(v)
	case ScrollInput:
		p := e.pointerAt(v.Pixel, v.Modifiers)
		e.step(interaction.Scroll{Pointer: p, DX: v.DX, DY: v.DY})
	case KeyInput:
		e.key(v.Key)
	case ResizeInput:
		if v.Dimensions.Valid() {
			e.dims = v.Dimensions
		}
	case TickInput:
		e.tick()
	}
}

func (e *Engine) pointer(in PointerInput) {
	p := e.pointerAt(in.Pixel, in.Modifiers)
	var ev interaction.Event
	switch in.Kind {
	case PointerPress:
		ev = interaction.Press{Pointer: p}
	case PointerMoveStart:
		ev = interaction.MoveStart{Pointer: p}
	case PointerMove:
		ev = interaction.Move{Pointer: p}
	case PointerMoveEnd:
		ev = interaction.MoveEnd{Pointer: p}
	case PointerDoublePress:
		ev = interaction.DoublePress{Pointer: p}
	case PointerHover:
		ev = interaction.Hover{Pointer: p}
	default:
		e.logger.Warn("unknown pointer input", logging.Fields{"kind": string(in.Kind)})
		return
	}
	e.step(ev)
}

// pointerAt maps a surface pixel into the recording, clamped to its bounds.
func (e *Engine) pointerAt(px geometry.Pixel, mods interaction.Modifiers) interaction.Pointer {
	w := e.viewport.Window()
	pos := intervals.Position{Time: w.Time.Min, Freq: w.Freq.Min}
	if e.dims.Valid() {
		g := geometry.ScaleFromViewport(geometry.Point{Position: intervals.Position{Time: px.X, Freq: px.Y}}, w, e.dims)
		if pt, ok := g.(geometry.Point); ok {
			pos = pt.Position
		}
	}
	b := e.viewport.Bounds()
	pos = intervals.Position{Time: b.Time.Clamp(pos.Time), Freq: b.Freq.Clamp(pos.Freq)}
	e.lastPointer = &pos
	return interaction.Pointer{Position: pos, Pixel: px, Modifiers: mods}
}

func (e *Engine) key(k Key) {
	switch k {
	case KeyEscape:
		e.step(interaction.Escape{})
	case KeyTogglePlay:
		e.togglePlay()
	case KeySave:
		e.viewport.Save()
	case KeyBack:
		e.viewport.Back()
	case KeyReset:
		e.viewport.Reset()
	case KeyZoomIn:
		e.zoomBy(e.cfg.Interaction.ZoomStep)
	case KeyZoomOut:
		e.zoomBy(1 / e.cfg.Interaction.ZoomStep)
	case KeyCopy:
		if err := e.copySelected(); err != nil {
			e.notify(events.SeverityInfo, err.Error())
		}
	case KeyPaste:
		if err := e.pasteAt(e.pasteTarget()); err != nil {
			e.notify(events.SeverityInfo, err.Error())
		}
	}
}

// step runs the transition function and carries out its intents.
func (e *Engine) step(ev interaction.Event) {
	prev := e.state
	next, intents := interaction.Next(prev, ev, e.env())
	e.state = next
	// any pointer drag holds the viewport still
	switch {
	case !prev.Dragging() && next.Dragging():
		e.player.BeginGesture()
	case prev.Dragging() && !next.Dragging():
		e.player.EndGesture()
	}
	e.publishTransition(prev, next)
	for _, it := range intents {
		e.execute(it)
	}
}

func (e *Engine) env() interaction.Env {
	return interaction.Env{
		Window:      e.viewport.Window(),
		Dimensions:  e.dims,
		Annotations: e.store.List(),
		Config:      e.cfg.Interaction,
	}
}

func (e *Engine) publishTransition(prev, next interaction.State) {
	if prev.Mode != next.Mode || prev.Phase != next.Phase {
		e.bus.Publish(events.ModeChanged{Mode: next.Mode, Phase: next.Phase})
	}
	if prev.GeometryType != next.GeometryType {
		e.bus.Publish(events.GeometryTypeChosen{Type: next.GeometryType})
	}
	if prev.SelectedID() != next.SelectedID() {
		e.selectionGen++
		var sel *annotations.Annotation
		if next.Selected != nil {
			a := next.Selected.Clone()
			sel = &a
		}
		e.bus.Publish(events.SelectionChanged{Selected: sel})
	}
}
