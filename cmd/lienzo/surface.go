package main

import (
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
	"github.com/RyanBlaney/sonido-lienzo/canvas/session"
)

// cell is one terminal character. A cell is one pixel of the surface.
type cell struct {
	ch rune
	fg session.Color
	bg session.Color
}

// termSurface is a render.Surface on a grid of terminal cells.
type termSurface struct {
	w, h  int
	cells []cell
}

func newTermSurface(w, h int) *termSurface {
	w, h = max(w, 1), max(h, 1)
	s := &termSurface{w: w, h: h, cells: make([]cell, w*h)}
	for i := range s.cells {
		s.cells[i].ch = ' '
	}
	return s
}

func (s *termSurface) Size() geometry.Dimensions {
	return geometry.Dimensions{Width: float64(s.w), Height: float64(s.h)}
}

func (s *termSurface) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return nil
	}
	return &s.cells[y*s.w+x]
}

// span converts a rect to the cells whose centres it covers.
func (s *termSurface) span(r render.Rect) (x0, y0, x1, y1 int) {
	x0 = max(0, int(math.Round(r.X)))
	y0 = max(0, int(math.Round(r.Y)))
	x1 = min(s.w, int(math.Round(r.X+r.W)))
	y1 = min(s.h, int(math.Round(r.Y+r.H)))
	return
}

func (s *termSurface) FillRect(r render.Rect, c session.Color) {
	x0, y0, x1, y1 := s.span(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.cells[y*s.w+x] = cell{ch: ' ', bg: c}
		}
	}
}

func (s *termSurface) StrokePath(points []geometry.Pixel, closed bool, st render.Style) {
	if len(points) == 1 {
		s.plot(points[0].X, points[0].Y, '●', st.Stroke)
		return
	}
	n := len(points) - 1
	if closed {
		n++
	}
	step := 0
	for i := range n {
		a, b := points[i], points[(i+1)%len(points)]
		s.line(a, b, func(x, y float64) {
			step++
			if st.Dashed && step%3 == 0 {
				return
			}
			s.plot(x, y, strokeRune(a, b), st.Stroke)
		})
	}
}

// line walks a segment one cell at a time.
func (s *termSurface) line(a, b geometry.Pixel, plot func(x, y float64)) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		plot(a.X, a.Y)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		plot(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
	}
}

func strokeRune(a, b geometry.Pixel) rune {
	dx, dy := math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)
	switch {
	case dy < dx/3:
		return '─'
	case dx < dy/3:
		return '│'
	case (b.X-a.X)*(b.Y-a.Y) > 0:
		return '╲'
	default:
		return '╱'
	}
}

func (s *termSurface) plot(x, y float64, ch rune, c session.Color) {
	if p := s.at(int(math.Floor(x)), int(math.Floor(y))); p != nil {
		p.ch, p.fg = ch, c
	}
}

// DrawImage samples src at each destination cell centre.
func (s *termSurface) DrawImage(img image.Image, src image.Rectangle, dst render.Rect) {
	if dst.Empty() || src.Empty() {
		return
	}
	x0, y0, x1, y1 := s.span(dst)
	sx := float64(src.Dx()) / dst.W
	sy := float64(src.Dy()) / dst.H
	for y := y0; y < y1; y++ {
		iy := src.Min.Y + min(src.Dy()-1, int((float64(y)+0.5-dst.Y)*sy))
		for x := x0; x < x1; x++ {
			ix := src.Min.X + min(src.Dx()-1, int((float64(x)+0.5-dst.X)*sx))
			c, ok := colorful.MakeColor(img.At(ix, iy))
			if !ok {
				continue
			}
			s.cells[y*s.w+x] = cell{ch: ' ', bg: session.Color(c.Hex())}
		}
	}
}

func (s *termSurface) DrawText(at geometry.Pixel, text string, c session.Color) {
	x, y := int(math.Floor(at.X)), int(math.Floor(at.Y))
	for _, r := range text {
		if p := s.at(x, y); p != nil {
			p.ch, p.fg = r, c
		}
		x++
	}
}

func (s *termSurface) DrawPlaceholder(r render.Rect, state render.TileState) {
	ch := '░'
	if state == render.TileError {
		ch = '╳'
	}
	x0, y0, x1, y1 := s.span(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := &s.cells[y*s.w+x]
			p.ch, p.fg = ch, "#4C566A"
		}
	}
}

// Render turns the grid into styled lines, one style per run of equal cells.
func (s *termSurface) Render() string {
	var b strings.Builder
	for y := range s.h {
		row := s.cells[y*s.w : (y+1)*s.w]
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg && row[x].bg == row[start].bg {
				continue
			}
			b.WriteString(cellStyle(row[start]).Render(runesOf(row[start:x])))
			start = x
		}
		if y < s.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cellStyle(c cell) lipgloss.Style {
	st := lipgloss.NewStyle()
	if c.fg != "" {
		st = st.Foreground(lipgloss.Color(c.fg))
	}
	if c.bg != "" {
		st = st.Background(lipgloss.Color(c.bg))
	}
	return st
}

func runesOf(cells []cell) string {
	rs := make([]rune, len(cells))
	for i, c := range cells {
		rs[i] = c.ch
	}
	return string(rs)
}
