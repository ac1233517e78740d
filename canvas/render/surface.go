// Package render draws a canvas frame onto a Surface. Each layer reads an
// immutable Scene; nothing here mutates engine state.
package render

import (
	"image"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/canvas/session"
)

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Style describes how a path is stroked.
type Style struct {
	Stroke session.Color
	Fill   session.Color // empty means no fill
	Width  float64
	Dashed bool
}

// Surface is the drawing target. Coordinates are pixels with the origin at
// the top-left corner.
type Surface interface {
	Size() geometry.Dimensions
	FillRect(r Rect, c session.Color)
	StrokePath(points []geometry.Pixel, closed bool, st Style)
	DrawImage(img image.Image, src image.Rectangle, dst Rect)
	DrawText(at geometry.Pixel, text string, c session.Color)
	DrawPlaceholder(r Rect, state TileState)
}

// Theme colours used by the layers.
type Theme struct {
	Background session.Color
	Annotation session.Color
	Selected   session.Color
	Hovered    session.Color
	Pending    session.Color
	Preview    session.Color
	Handle     session.Color
	PlayHead   session.Color
	Axis       session.Color
}

// DefaultTheme uses the nord palette.
func DefaultTheme() Theme {
	return Theme{
		Background: "#2E3440",
		Annotation: "#88C0D0",
		Selected:   "#EBCB8B",
		Hovered:    "#8FBCBB",
		Pending:    "#4C566A",
		Preview:    "#A3BE8C",
		Handle:     "#D8DEE9",
		PlayHead:   "#BF616A",
		Axis:       "#D8DEE9",
	}
}
