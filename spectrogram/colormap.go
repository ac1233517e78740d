package spectrogram

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// NordStops runs from the nord background through frost to snow.
var NordStops = []string{"#2E3440", "#3B4252", "#5E81AC", "#81A1C1", "#88C0D0", "#A3BE8C", "#EBCB8B", "#ECEFF4"}

// Colormap maps a level in [0, 1] to a colour through a 256 entry table.
type Colormap struct {
	lut [256]color.RGBA
}

// NewColormap interpolates the hex stops in Lab space.
func NewColormap(stops ...string) (*Colormap, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("colormap needs at least two stops, got %d", len(stops))
	}
	colors := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("colormap stop %q: %w", s, err)
		}
		colors[i] = c
	}

	cm := &Colormap{}
	segments := float64(len(colors) - 1)
	for i := range cm.lut {
		pos := float64(i) / 255 * segments
		k := min(int(pos), len(colors)-2)
		c := colors[k].BlendLab(colors[k+1], pos-float64(k)).Clamped()
		r, g, b := c.RGB255()
		cm.lut[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return cm, nil
}

// DefaultColormap is the nord ramp.
func DefaultColormap() *Colormap {
	cm, err := NewColormap(NordStops...)
	if err != nil {
		panic(err)
	}
	return cm
}

// At returns the colour for v, clamped into [0, 1].
func (c *Colormap) At(v float64) color.RGBA {
	switch {
	case math.IsNaN(v) || v <= 0:
		return c.lut[0]
	case v >= 1:
		return c.lut[255]
	}
	return c.lut[int(v*255+0.5)]
}
