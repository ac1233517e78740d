package geometry

import (
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// Placement says on which side of a geometry's on-screen box a label goes.
type Placement string

const (
	PlaceTopRight    Placement = "top-right"
	PlaceTopLeft     Placement = "top-left"
	PlaceBottomRight Placement = "bottom-right"
	PlaceBottomLeft  Placement = "bottom-left"
	PlaceRight       Placement = "right"
	PlaceLeft        Placement = "left"
	PlaceTop         Placement = "top"
	PlaceBottom      Placement = "bottom"
)

// DefaultEdgeThreshold is the distance in pixels under which a label flips
// to the opposite side.
const DefaultEdgeThreshold = 50.0

// Label is a placement plus the pixel the label hangs from.
type Label struct {
	Placement Placement
	Anchor    Pixel
}

// ScreenBox returns the part of g's bounding box visible in w, in pixels.
// LowFreq/HighFreq of the result hold the top and bottom y.
func ScreenBox(g Geometry, w intervals.Window, d Dimensions) (BoundingBox, error) {
	if g == nil || !IsInWindow(g, w) {
		return BoundingBox{}, ErrOutOfWindow
	}
	visible, ok := intervals.IntersectWindows(ComputeBBox(g).Window(), w)
	if !ok {
		return BoundingBox{}, ErrOutOfWindow
	}
	box := BoundingBox{
		StartTime: visible.Time.Min, LowFreq: visible.Freq.Min,
		EndTime: visible.Time.Max, HighFreq: visible.Freq.Max,
	}
	return ScaleToViewport(box, w, d).(BoundingBox), nil
}

// PlaceLabel picks where to draw g's label. The label prefers the top-right
// corner; each axis flips to the opposite side when the preferred side is
// closer than threshold to the surface edge. When neither side of an axis
// has room, that axis centres and the other decides. When no side has room
// the side with the most clearance wins, ties going to right, left, top,
// bottom in that order.
func PlaceLabel(g Geometry, w intervals.Window, d Dimensions, threshold float64) (Label, error) {
	box, err := ScreenBox(g, w, d)
	if err != nil {
		return Label{}, err
	}

	minX, maxX := box.StartTime, box.EndTime
	minY, maxY := box.LowFreq, box.HighFreq
	clearLeft := minX
	clearRight := d.Width - maxX
	clearTop := minY
	clearBottom := d.Height - maxY

	horizontal := ""
	switch {
	case clearRight >= threshold:
		horizontal = "right"
	case clearLeft >= threshold:
		horizontal = "left"
	}
	vertical := ""
	switch {
	case clearTop >= threshold:
		vertical = "top"
	case clearBottom >= threshold:
		vertical = "bottom"
	}

	var placement Placement
	switch {
	case horizontal != "" && vertical != "":
		placement = Placement(vertical + "-" + horizontal)
	case horizontal != "":
		placement = Placement(horizontal)
	case vertical != "":
		placement = Placement(vertical)
	default:
		placement = PlaceRight
		best := clearRight
		for _, c := range []struct {
			p Placement
			v float64
		}{{PlaceLeft, clearLeft}, {PlaceTop, clearTop}, {PlaceBottom, clearBottom}} {
			if c.v > best {
				placement, best = c.p, c.v
			}
		}
	}

	return Label{Placement: placement, Anchor: anchorFor(placement, minX, minY, maxX, maxY)}, nil
}

func anchorFor(p Placement, minX, minY, maxX, maxY float64) Pixel {
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	switch p {
	case PlaceTopRight:
		return Pixel{X: maxX, Y: minY}
	case PlaceTopLeft:
		return Pixel{X: minX, Y: minY}
	case PlaceBottomRight:
		return Pixel{X: maxX, Y: maxY}
	case PlaceBottomLeft:
		return Pixel{X: minX, Y: maxY}
	case PlaceRight:
		return Pixel{X: maxX, Y: cy}
	case PlaceLeft:
		return Pixel{X: minX, Y: cy}
	case PlaceTop:
		return Pixel{X: cx, Y: minY}
	default:
		return Pixel{X: cx, Y: maxY}
	}
}
