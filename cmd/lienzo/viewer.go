package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/events"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

const (
	doublePressInterval = 400 * time.Millisecond
	minFrameInterval    = 33 * time.Millisecond
	statusLines         = 1
)

var (
	nord0  = lipgloss.Color("#2E3440")
	nord4  = lipgloss.Color("#D8DEE9")
	nord8  = lipgloss.Color("#88C0D0")
	nord11 = lipgloss.Color("#BF616A")
	nord13 = lipgloss.Color("#EBCB8B")

	statusStyle = lipgloss.NewStyle().Foreground(nord4).Background(nord0)
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(nord0).Background(nord8).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(nord11).Background(nord0)
	infoStyle   = lipgloss.NewStyle().Foreground(nord13).Background(nord0)
)

var modeKeys = map[string]interaction.Mode{
	"1": interaction.ModeIdle,
	"2": interaction.ModeDraw,
	"3": interaction.ModeSelect,
	"4": interaction.ModeEdit,
	"5": interaction.ModeDelete,
}

var geometryKeys = map[string]geometry.Type{
	"t": geometry.TimeStampType,
	"i": geometry.TimeIntervalType,
	"b": geometry.BoundingBoxType,
	"p": geometry.PointType,
	"l": geometry.LineStringType,
	"g": geometry.PolygonType,
}

var commandKeys = map[string]canvas.Key{
	"esc":       canvas.KeyEscape,
	" ":         canvas.KeyTogglePlay,
	"s":         canvas.KeySave,
	"backspace": canvas.KeyBack,
	"r":         canvas.KeyReset,
	"c":         canvas.KeyCopy,
	"v":         canvas.KeyPaste,
	"+":         canvas.KeyZoomIn,
	"=":         canvas.KeyZoomIn,
	"-":         canvas.KeyZoomOut,
}

type frameMsg time.Time

// viewer adapts terminal input to canvas inputs and draws the canvas.
type viewer struct {
	engine   *canvas.Engine
	listener *events.Listener
	frame    time.Duration
	logger   logging.Logger

	width, height int

	// pointer gesture tracking
	pressed   bool
	moved     bool
	down      geometry.Pixel
	lastClick time.Time
	lastAt    geometry.Pixel

	status  string
	message string
	isError bool
	loop    bool
}

func newViewer(engine *canvas.Engine, cfg *config.CanvasConfig, logger logging.Logger) *viewer {
	return &viewer{
		engine:   engine,
		listener: engine.Events(256),
		frame:    max(cfg.Playback.FrameInterval, minFrameInterval),
		logger:   logging.OrGlobal(logger).WithFields(logging.Fields{"component": "viewer"}),
		loop:     cfg.Playback.Loop,
	}
}

func (v *viewer) tick() tea.Cmd {
	return tea.Tick(v.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (v *viewer) Init() tea.Cmd {
	return v.tick()
}

func (v *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.engine.Dispatch(canvas.ResizeInput{Dimensions: v.canvasSize()})
		return v, nil

	case frameMsg:
		v.engine.Dispatch(canvas.TickInput{})
		v.engine.Drain()
		v.readEvents()
		return v, v.tick()

	case tea.MouseMsg:
		v.mouse(msg)
		return v, nil

	case tea.KeyMsg:
		return v, v.key(msg)
	}
	return v, nil
}

func (v *viewer) canvasSize() geometry.Dimensions {
	return geometry.Dimensions{
		Width:  float64(max(v.width, 1)),
		Height: float64(max(v.height-statusLines, 1)),
	}
}

func (v *viewer) key(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()
	switch k {
	case "q", "ctrl+c":
		return tea.Quit
	case "left":
		v.engine.Pan(intervals.Delta{Time: -0.1}, true)
	case "right":
		v.engine.Pan(intervals.Delta{Time: 0.1}, true)
	case "up":
		v.engine.Pan(intervals.Delta{Freq: 0.1}, true)
	case "down":
		v.engine.Pan(intervals.Delta{Freq: -0.1}, true)
	case "L":
		v.loop = !v.loop
		v.engine.SetLoop(v.loop)
		v.flash(fmt.Sprintf("loop %v", v.loop), false)
	}
	if m, ok := modeKeys[k]; ok {
		v.engine.SetMode(m)
	}
	if t, ok := geometryKeys[k]; ok {
		if err := v.engine.SetGeometryType(t); err != nil {
			v.flash(err.Error(), true)
		}
	}
	if c, ok := commandKeys[k]; ok {
		v.engine.Dispatch(canvas.KeyInput{Key: c})
	}
	return nil
}

// mouse turns terminal mouse reports into presses and drags. A release
// without motion is a press, two of them on one cell in quick succession a
// double press.
func (v *viewer) mouse(msg tea.MouseMsg) {
	at := geometry.Pixel{X: float64(msg.X) + 0.5, Y: float64(msg.Y) + 0.5}
	mods := interaction.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt}
	pointer := func(kind canvas.PointerKind, p geometry.Pixel) {
		v.engine.Dispatch(canvas.PointerInput{Kind: kind, Pixel: p, Modifiers: mods})
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp, msg.Button == tea.MouseButtonWheelDown,
		msg.Button == tea.MouseButtonWheelLeft, msg.Button == tea.MouseButtonWheelRight:
		in := canvas.ScrollInput{Pixel: at, Modifiers: mods}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			in.DY = -1
		case tea.MouseButtonWheelDown:
			in.DY = 1
		case tea.MouseButtonWheelLeft:
			in.DX = -1
		case tea.MouseButtonWheelRight:
			in.DX = 1
		}
		v.engine.Dispatch(in)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		v.pressed, v.moved, v.down = true, false, at

	case msg.Action == tea.MouseActionMotion && v.pressed:
		if !v.moved {
			v.moved = true
			pointer(canvas.PointerMoveStart, v.down)
		}
		pointer(canvas.PointerMove, at)

	case msg.Action == tea.MouseActionMotion:
		pointer(canvas.PointerHover, at)

	case msg.Action == tea.MouseActionRelease && v.pressed:
		v.pressed = false
		if v.moved {
			pointer(canvas.PointerMoveEnd, at)
			return
		}
		now := time.Now()
		if now.Sub(v.lastClick) < doublePressInterval && at == v.lastAt {
			v.lastClick = time.Time{}
			pointer(canvas.PointerDoublePress, at)
			return
		}
		v.lastClick, v.lastAt = now, at
		pointer(canvas.PointerPress, at)
	}
}

func (v *viewer) flash(msg string, isError bool) {
	v.message, v.isError = msg, isError
}

// readEvents folds whatever the canvas published since the last frame into
// the status line.
func (v *viewer) readEvents() {
	for {
		select {
		case ev := <-v.listener.C:
			v.apply(ev)
		default:
			return
		}
	}
}

func (v *viewer) apply(ev events.Event) {
	switch e := ev.(type) {
	case events.Notification:
		v.flash(e.Message, e.Severity == events.SeverityError)
	case events.AnnotationCreated:
		v.flash("created "+e.Annotation.ID, false)
	case events.AnnotationUpdated:
		v.flash("updated "+e.Annotation.ID, false)
	case events.AnnotationDeleted:
		v.flash("deleted "+e.Annotation.ID, false)
	case events.ClipboardChanged:
		v.flash("copied "+string(e.Geometry.Type()), false)
	case events.CommitFailed:
		v.logger.Warn("commit failed", logging.Fields{"op": string(e.Op), "id": e.ID})
	}
}

func (v *viewer) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}
	size := v.canvasSize()
	s := newTermSurface(int(size.Width), int(size.Height))
	v.engine.Draw(s, canvas.DrawOptions{AxisTicks: 6})
	return s.Render() + "\n" + v.statusLine()
}

func (v *viewer) statusLine() string {
	st := v.engine.State()
	w := v.engine.Window()
	mode := string(st.Mode)
	if st.Mode == interaction.ModeDraw {
		mode += ":" + string(st.GeometryType)
	}
	play := "paused"
	if v.engine.Playing() {
		play = "playing"
	}
	info := fmt.Sprintf(" %.2fs–%.2fs  %.0f–%.0f Hz  %s %.2fs  %d annotations ",
		w.Time.Min, w.Time.Max, w.Freq.Min, w.Freq.Max, play, v.engine.PlayHead(), len(v.engine.Annotations()))
	line := modeStyle.Render(mode) + statusStyle.Render(info)
	if v.message != "" {
		style := infoStyle
		if v.isError {
			style = errorStyle
		}
		line += style.Render(v.message)
	}
	return lipgloss.NewStyle().MaxWidth(v.width).Render(line)
}
