package canvas

import (
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
)

// DrawOptions tune a frame.
type DrawOptions struct {
	Theme render.Theme
	// AxisTicks is the tick budget per axis; 0 hides the axes.
	AxisTicks int
}

// Draw renders the current frame onto s. The surface size becomes the
// dimensions used for pointer mapping.
func (e *Engine) Draw(s render.Surface, opts DrawOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d := s.Size(); d.Valid() {
		e.dims = d
	}
	render.Draw(s, e.scene(opts))
}

// Scene returns the frame that Draw would render.
func (e *Engine) Scene(opts DrawOptions) render.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene(opts)
}

func (e *Engine) scene(opts DrawOptions) render.Scene {
	sc := render.Scene{
		Window:      e.viewport.Window(),
		Annotations: e.store.List(),
		Hovered:     e.state.Hovered,
		Transient:   e.state.Transient,
		Handles:     e.state.Mode == interaction.ModeEdit,
		PlayHead:    e.player.Clock().CurrentTime(),
		Playing:     e.player.Clock().IsPlaying(),
		Labels:      e.cfg.Labels,
		Colors:      e.session.Colors(),
		Theme:       opts.Theme,
		AxisTicks:   opts.AxisTicks,
	}
	if sc.Theme == (render.Theme{}) {
		sc.Theme = render.DefaultTheme()
	}
	if e.state.Selected != nil {
		a := e.state.Selected.Clone()
		sc.Selected = &a
	}
	if sel, ok := e.selector.Current(); ok {
		segs := sel.Segments()
		// the current segment goes last so it is drawn on top
		for i := len(segs) - 1; i >= 0; i-- {
			key := segs[i].Key()
			entry, found := e.tiles.Get(key)
			sc.Tiles = append(sc.Tiles, render.TileView{Key: key, Entry: entry, Found: found})
		}
	}
	return sc
}
