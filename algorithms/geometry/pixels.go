package geometry

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// Dimensions is the size of the drawing surface in pixels.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Pixel is a surface coordinate. X grows to the right, Y grows downwards.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// TimeToPixel maps t into [0, width]. Window min and max land exactly on 0 and width.
func TimeToPixel(t float64, w intervals.Window, width float64) float64 {
	span := w.Time.Width()
	if span <= 0 {
		return 0
	}
	return (t - w.Time.Min) / span * width
}

// FreqToPixel maps f into [0, height] with high frequencies at the top.
func FreqToPixel(f float64, w intervals.Window, height float64) float64 {
	span := w.Freq.Width()
	if span <= 0 {
		return height
	}
	return height - (f-w.Freq.Min)/span*height
}

// PixelToTime is the inverse of TimeToPixel.
func PixelToTime(x float64, w intervals.Window, width float64) float64 {
	if width <= 0 {
		return w.Time.Min
	}
	return lerp(w.Time, x/width)
}

// PixelToFreq is the inverse of FreqToPixel.
func PixelToFreq(y float64, w intervals.Window, height float64) float64 {
	if height <= 0 {
		return w.Freq.Min
	}
	return lerp(w.Freq, (height-y)/height)
}

// lerp is written as min*(1-a) + max*a so that a=0 and a=1 return the
// interval ends bit for bit.
func lerp(i intervals.Interval, a float64) float64 {
	return i.Min*(1-a) + i.Max*a
}

// ToPixel maps a time–frequency position onto the surface.
func ToPixel(p Position, w intervals.Window, d Dimensions) Pixel {
	return Pixel{X: TimeToPixel(p.Time, w, d.Width), Y: FreqToPixel(p.Freq, w, d.Height)}
}

// FromPixel maps a surface coordinate back into time–frequency space.
func FromPixel(px Pixel, w intervals.Window, d Dimensions) Position {
	return Position{Time: PixelToTime(px.X, w, d.Width), Freq: PixelToFreq(px.Y, w, d.Height)}
}

// ScaleToViewport converts g into pixel space. The result reuses the
// geometry types with Time holding x and Freq holding y; bounding boxes are
// re-normalised so LowFreq is the smaller y.
func ScaleToViewport(g Geometry, w intervals.Window, d Dimensions) Geometry {
	return mapPositions(g, func(p Position) Position {
		px := ToPixel(p, w, d)
		return Position{Time: px.X, Freq: px.Y}
	})
}

// ScaleFromViewport is the inverse of ScaleToViewport.
func ScaleFromViewport(g Geometry, w intervals.Window, d Dimensions) Geometry {
	return mapPositions(g, func(p Position) Position {
		return FromPixel(Pixel{X: p.Time, Y: p.Freq}, w, d)
	})
}
