package interaction

import (
	"math"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
)

// hitAnnotation returns the annotation under p. Annotations outside the
// window are skipped before the precise test. Among hits the closest wins,
// and ties go to the one drawn last.
func hitAnnotation(p Pointer, env Env) (annotations.Annotation, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i := len(env.Annotations) - 1; i >= 0; i-- {
		a := env.Annotations[i]
		if a.Geometry == nil || !geometry.IsInWindow(a.Geometry, env.Window) {
			continue
		}
		d := geometry.PixelDistance(a.Geometry, env.Window, env.Dimensions, p.Pixel)
		if d <= env.Config.HitRadius && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return annotations.Annotation{}, false
	}
	return env.Annotations[best].Clone(), true
}

// hitHandle returns the control point of g nearest to p within the hit
// radius, or -1.
func hitHandle(g geometry.Geometry, p Pointer, env Env) int {
	best := -1
	bestDist := math.Inf(1)
	for _, cp := range geometry.ControlPoints(g, env.Window) {
		px := geometry.ToPixel(cp.Position, env.Window, env.Dimensions)
		d := math.Hypot(px.X-p.Pixel.X, px.Y-p.Pixel.Y)
		if d <= env.Config.HitRadius && d < bestDist {
			best, bestDist = cp.Index, d
		}
	}
	return best
}

// hitBody reports whether p touches g itself.
func hitBody(g geometry.Geometry, p Pointer, env Env) bool {
	if !geometry.IsInWindow(g, env.Window) {
		return false
	}
	return geometry.PixelDistance(g, env.Window, env.Dimensions, p.Pixel) <= env.Config.HitRadius
}
