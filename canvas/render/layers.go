package render

import (
	"fmt"
	"image"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/session"
)

// TileView pairs a wanted segment with its cache slot.
type TileView struct {
	Key   string
	Entry TileEntry
	Found bool
}

// Scene is everything one frame needs.
type Scene struct {
	Window      intervals.Window
	Tiles       []TileView
	Annotations []annotations.Annotation
	Selected    *annotations.Annotation
	Hovered     string
	Transient   geometry.Geometry
	// Handles is true when the selection is being edited.
	Handles  bool
	PlayHead float64
	Playing  bool
	Labels   config.LabelConfig
	Colors   *session.TagColors
	Theme    Theme
	// AxisTicks is the tick budget per axis; 0 hides the axes.
	AxisTicks int
}

// Draw renders sc in layer order: tiles, annotations, preview, play-head,
// axes.
func Draw(s Surface, sc Scene) {
	d := s.Size()
	if !d.Valid() || !sc.Window.Valid() {
		return
	}
	s.FillRect(Rect{W: d.Width, H: d.Height}, sc.Theme.Background)
	DrawTiles(s, sc)
	DrawAnnotations(s, sc)
	DrawPreview(s, sc)
	DrawPlayHead(s, sc)
	DrawAxes(s, sc)
}

// DrawTiles blits loaded tiles clipped to the window and draws placeholders
// for pending and failed ones.
func DrawTiles(s Surface, sc Scene) {
	d := s.Size()
	for _, tv := range sc.Tiles {
		if !tv.Found {
			continue
		}
		e := tv.Entry
		bounds := e.Tile.Bounds
		if e.State != TileLoaded {
			bounds = intervals.Window{Time: e.Segment.Interval, Freq: sc.Window.Freq}
		}
		visible, ok := intervals.IntersectWindows(bounds, sc.Window)
		if !ok {
			continue
		}
		dst := windowRect(visible, sc.Window, d)
		if dst.Empty() {
			continue
		}
		if e.State != TileLoaded || e.Tile.Image == nil {
			s.DrawPlaceholder(dst, e.State)
			continue
		}
		s.DrawImage(e.Tile.Image, sourceRect(e.Tile.Image.Bounds(), bounds, visible), dst)
	}
}

// windowRect is the pixel rectangle covering v inside w.
func windowRect(v, w intervals.Window, d geometry.Dimensions) Rect {
	tl := geometry.ToPixel(intervals.Position{Time: v.Time.Min, Freq: v.Freq.Max}, w, d)
	br := geometry.ToPixel(intervals.Position{Time: v.Time.Max, Freq: v.Freq.Min}, w, d)
	return Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}

// sourceRect is the part of an image with the given bounds that shows v.
// Image rows run from high to low frequency.
func sourceRect(img image.Rectangle, bounds, v intervals.Window) image.Rectangle {
	d := geometry.Dimensions{Width: float64(img.Dx()), Height: float64(img.Dy())}
	r := windowRect(v, bounds, d)
	return image.Rect(
		img.Min.X+int(r.X), img.Min.Y+int(r.Y),
		img.Min.X+int(r.X+r.W+0.5), img.Min.Y+int(r.Y+r.H+0.5),
	).Intersect(img)
}

// DrawAnnotations draws every annotation touching the window, its label,
// and the control points of the selection when it is being edited.
func DrawAnnotations(s Surface, sc Scene) {
	d := s.Size()
	selectedID := ""
	if sc.Selected != nil {
		selectedID = sc.Selected.ID
	}
	for _, a := range sc.Annotations {
		if a.Geometry == nil || !geometry.IsInWindow(a.Geometry, sc.Window) {
			continue
		}
		g := a.Geometry
		if a.ID == selectedID {
			// the selection may carry an edit not yet confirmed
			g = sc.Selected.Geometry
		}
		st := Style{Stroke: annotationColor(a, sc), Width: 1}
		switch {
		case a.ID == selectedID:
			st.Stroke, st.Width = sc.Theme.Selected, 2
		case a.ID == sc.Hovered:
			st.Stroke = sc.Theme.Hovered
		case annotations.IsProvisional(a.ID):
			st.Stroke, st.Dashed = sc.Theme.Pending, true
		}
		strokeGeometry(s, g, sc.Window, d, st)
		drawLabel(s, a, g, sc, st.Stroke)
	}
	if sc.Selected != nil && sc.Handles && sc.Transient == nil {
		drawHandles(s, sc.Selected.Geometry, sc)
	}
}

func annotationColor(a annotations.Annotation, sc Scene) session.Color {
	if len(a.Tags) > 0 && sc.Colors != nil {
		return sc.Colors.Get(a.Tags[0])
	}
	return sc.Theme.Annotation
}

func drawLabel(s Surface, a annotations.Annotation, g geometry.Geometry, sc Scene, c session.Color) {
	if len(a.Tags) == 0 {
		return
	}
	threshold := sc.Labels.EdgeThreshold
	if threshold <= 0 {
		threshold = geometry.DefaultEdgeThreshold
	}
	label, err := geometry.PlaceLabel(g, sc.Window, s.Size(), threshold)
	if err != nil {
		return
	}
	text := a.Tags[0].String()
	if len(a.Tags) > 1 {
		text = fmt.Sprintf("%s +%d", text, len(a.Tags)-1)
	}
	s.DrawText(label.Anchor, text, c)
}

func drawHandles(s Surface, g geometry.Geometry, sc Scene) {
	d := s.Size()
	for _, cp := range geometry.ControlPoints(g, sc.Window) {
		if !sc.Window.Contains(cp.Position) {
			continue
		}
		px := geometry.ToPixel(cp.Position, sc.Window, d)
		s.FillRect(Rect{X: px.X - 3, Y: px.Y - 3, W: 6, H: 6}, sc.Theme.Handle)
	}
}

// DrawPreview draws the geometry being drawn or edited.
func DrawPreview(s Surface, sc Scene) {
	if sc.Transient == nil {
		return
	}
	strokeGeometry(s, sc.Transient, sc.Window, s.Size(), Style{
		Stroke: sc.Theme.Preview,
		Width:  1,
		Dashed: true,
	})
}

// DrawPlayHead draws a vertical line at the play-head when it is visible.
func DrawPlayHead(s Surface, sc Scene) {
	if !sc.Window.Time.Contains(sc.PlayHead) {
		return
	}
	d := s.Size()
	x := geometry.TimeToPixel(sc.PlayHead, sc.Window, d.Width)
	s.StrokePath([]geometry.Pixel{{X: x, Y: 0}, {X: x, Y: d.Height}}, false, Style{
		Stroke: sc.Theme.PlayHead,
		Width:  1,
	})
}

// DrawAxes labels the bottom edge with time ticks and the left edge with
// frequency ticks.
func DrawAxes(s Surface, sc Scene) {
	if sc.AxisTicks <= 0 {
		return
	}
	d := s.Size()
	for _, t := range Ticks(sc.Window.Time, sc.AxisTicks) {
		x := geometry.TimeToPixel(t, sc.Window, d.Width)
		s.DrawText(geometry.Pixel{X: x, Y: d.Height - 1}, FormatTime(t), sc.Theme.Axis)
	}
	for _, f := range Ticks(sc.Window.Freq, sc.AxisTicks) {
		y := geometry.FreqToPixel(f, sc.Window, d.Height)
		s.DrawText(geometry.Pixel{X: 0, Y: y}, FormatFreq(f), sc.Theme.Axis)
	}
}

// FormatTime prints seconds the way axis labels show them.
func FormatTime(t float64) string {
	if t >= 60 {
		m := int(t / 60)
		return fmt.Sprintf("%d:%04.1f", m, t-float64(m)*60)
	}
	return fmt.Sprintf("%gs", t)
}

// FormatFreq prints a frequency in Hz or kHz.
func FormatFreq(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%gk", f/1000)
	}
	return fmt.Sprintf("%g", f)
}

// strokeGeometry draws g in pixel space. Time-only geometries span the
// full surface height.
func strokeGeometry(s Surface, g geometry.Geometry, w intervals.Window, d geometry.Dimensions, st Style) {
	px := geometry.ScaleToViewport(g, w, d)
	switch v := px.(type) {
	case geometry.TimeStamp:
		s.StrokePath([]geometry.Pixel{{X: v.Time, Y: 0}, {X: v.Time, Y: d.Height}}, false, st)
	case geometry.TimeInterval:
		s.StrokePath([]geometry.Pixel{
			{X: v.Start, Y: 0}, {X: v.End, Y: 0}, {X: v.End, Y: d.Height}, {X: v.Start, Y: d.Height},
		}, true, st)
	case geometry.BoundingBox:
		s.StrokePath([]geometry.Pixel{
			{X: v.StartTime, Y: v.LowFreq}, {X: v.EndTime, Y: v.LowFreq},
			{X: v.EndTime, Y: v.HighFreq}, {X: v.StartTime, Y: v.HighFreq},
		}, true, st)
	case geometry.Point:
		marker(s, v.Position, st)
	case geometry.MultiPoint:
		for _, p := range v.Points {
			marker(s, p, st)
		}
	case geometry.LineString:
		s.StrokePath(pixels(v.Coordinates), false, st)
	case geometry.MultiLineString:
		for _, line := range v.Lines {
			s.StrokePath(pixels(line), false, st)
		}
	case geometry.Polygon:
		for _, ring := range v.Rings {
			s.StrokePath(pixels(ring), true, st)
		}
	case geometry.MultiPolygon:
		for _, poly := range v.Polygons {
			for _, ring := range poly {
				s.StrokePath(pixels(ring), true, st)
			}
		}
	}
}

func marker(s Surface, p intervals.Position, st Style) {
	s.StrokePath([]geometry.Pixel{
		{X: p.Time - 3, Y: p.Freq}, {X: p.Time, Y: p.Freq - 3},
		{X: p.Time + 3, Y: p.Freq}, {X: p.Time, Y: p.Freq + 3},
	}, true, st)
}

func pixels(ps []intervals.Position) []geometry.Pixel {
	out := make([]geometry.Pixel, len(ps))
	for i, p := range ps {
		out[i] = geometry.Pixel{X: p.Time, Y: p.Freq}
	}
	return out
}
