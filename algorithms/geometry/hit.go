package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
)

// PixelDistance returns how far px is from g once g is drawn on a surface of
// size d showing w. Filled shapes (boxes, intervals, polygons) report zero
// for pixels inside them.
func PixelDistance(g Geometry, w intervals.Window, d Dimensions, px Pixel) float64 {
	p := r2.Vec{X: px.X, Y: px.Y}
	switch v := ScaleToViewport(g, w, d).(type) {
	case TimeStamp:
		return math.Abs(px.X - v.Time)
	case TimeInterval:
		if px.X >= v.Start && px.X <= v.End {
			return 0
		}
		return math.Min(math.Abs(px.X-v.Start), math.Abs(px.X-v.End))
	case BoundingBox:
		return boxDistance(v, p)
	case Point:
		return r2.Norm(r2.Sub(p, vec(v.Position)))
	case MultiPoint:
		best := math.Inf(1)
		for _, q := range v.Points {
			best = math.Min(best, r2.Norm(r2.Sub(p, vec(q))))
		}
		return best
	case LineString:
		return polylineDistance(v.Coordinates, p)
	case MultiLineString:
		best := math.Inf(1)
		for _, line := range v.Lines {
			best = math.Min(best, polylineDistance(line, p))
		}
		return best
	case Polygon:
		return polygonDistance(v.Rings, p)
	case MultiPolygon:
		best := math.Inf(1)
		for _, rings := range v.Polygons {
			best = math.Min(best, polygonDistance(rings, p))
		}
		return best
	default:
		return math.Inf(1)
	}
}

// HitTest reports whether px is within radius pixels of g. It returns
// ErrOutOfWindow when g is not visible in w; callers pre-filter with IsInWindow.
func HitTest(g Geometry, w intervals.Window, d Dimensions, px Pixel, radius float64) (bool, error) {
	if !IsInWindow(g, w) {
		return false, ErrOutOfWindow
	}
	return PixelDistance(g, w, d, px) <= radius, nil
}

func vec(p Position) r2.Vec {
	return r2.Vec{X: p.Time, Y: p.Freq}
}

func boxDistance(b BoundingBox, p r2.Vec) float64 {
	dx := math.Max(math.Max(b.StartTime-p.X, 0), p.X-b.EndTime)
	dy := math.Max(math.Max(b.LowFreq-p.Y, 0), p.Y-b.HighFreq)
	return math.Hypot(dx, dy)
}

func segmentDistance(a, b, p r2.Vec) float64 {
	ab := r2.Sub(b, a)
	den := r2.Dot(ab, ab)
	if den == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / den
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, closest))
}

func polylineDistance(coords []Position, p r2.Vec) float64 {
	switch len(coords) {
	case 0:
		return math.Inf(1)
	case 1:
		return r2.Norm(r2.Sub(p, vec(coords[0])))
	}
	best := math.Inf(1)
	for i := 1; i < len(coords); i++ {
		best = math.Min(best, segmentDistance(vec(coords[i-1]), vec(coords[i]), p))
	}
	return best
}

func polygonDistance(rings [][]Position, p r2.Vec) float64 {
	if insideRings(rings, p) {
		return 0
	}
	best := math.Inf(1)
	for _, ring := range rings {
		best = math.Min(best, polylineDistance(ring, p))
	}
	return best
}

// insideRings applies the even-odd rule across all rings, so holes cut out.
func insideRings(rings [][]Position, p r2.Vec) bool {
	inside := false
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := vec(ring[i]), vec(ring[j])
			if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}
	return inside
}
