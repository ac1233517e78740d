package main

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
)

func TestTermSurfaceFillAndText(t *testing.T) {
	s := newTermSurface(10, 4)
	if got := s.Size(); got != (geometry.Dimensions{Width: 10, Height: 4}) {
		t.Fatalf("Size = %v, want 10x4", got)
	}
	s.FillRect(render.Rect{X: 2, Y: 1, W: 3, H: 2}, "#112233")
	if c := s.at(2, 1); c.bg != "#112233" {
		t.Errorf("filled cell bg = %q, want #112233", c.bg)
	}
	if c := s.at(5, 1); c.bg != "" {
		t.Errorf("cell outside the rect bg = %q, want empty", c.bg)
	}

	s.DrawText(geometry.Pixel{X: 8, Y: 0}, "abc", "#ffffff")
	if s.at(8, 0).ch != 'a' || s.at(9, 0).ch != 'b' {
		t.Errorf("text = %q%q, want ab", s.at(8, 0).ch, s.at(9, 0).ch)
	}
}

func TestTermSurfaceStroke(t *testing.T) {
	s := newTermSurface(10, 3)
	s.StrokePath([]geometry.Pixel{{X: 1, Y: 1}, {X: 8, Y: 1}}, false, render.Style{Stroke: "#ff0000"})
	for x := 1; x <= 8; x++ {
		if c := s.at(x, 1); c.ch != '─' || c.fg != "#ff0000" {
			t.Errorf("cell %d = %q %q, want a red horizontal stroke", x, c.ch, c.fg)
		}
	}

	s.StrokePath([]geometry.Pixel{{X: 4.5, Y: 2.5}}, false, render.Style{Stroke: "#00ff00"})
	if c := s.at(4, 2); c.ch != '●' {
		t.Errorf("point cell = %q, want ●", c.ch)
	}
}

func TestTermSurfaceDrawImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	s := newTermSurface(4, 2)
	s.DrawImage(img, img.Bounds(), render.Rect{X: 0, Y: 0, W: 4, H: 2})
	tests := []struct {
		x, y int
		want string
	}{
		{0, 0, "#ff0000"},
		{1, 1, "#ff0000"},
		{2, 0, "#0000ff"},
		{3, 1, "#0000ff"},
	}
	for _, tt := range tests {
		if got := string(s.at(tt.x, tt.y).bg); got != tt.want {
			t.Errorf("cell (%d, %d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestTermSurfaceRender(t *testing.T) {
	s := newTermSurface(5, 3)
	s.DrawText(geometry.Pixel{X: 0, Y: 1}, "hi", "")
	out := s.Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Render lines = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "hi") {
		t.Errorf("line 1 = %q, want it to contain hi", lines[1])
	}
}
