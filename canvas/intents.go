package canvas

import (
	"fmt"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/events"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

func (e *Engine) execute(it interaction.Intent) {
	switch v := it.(type) {
	case interaction.Create:
		e.commit(e.store.BeginCreate(v.Geometry, v.Tags, false))
	case interaction.Copy:
		e.commit(e.store.BeginCreate(v.Geometry, v.Source.Tags, true))
	case interaction.Update:
		p, err := e.store.BeginUpdate(v.ID, v.Geometry)
		if err != nil {
			e.reject(annotations.OpUpdate, v.ID, err)
			return
		}
		e.commit(p)
	case interaction.Delete:
		p, err := e.store.BeginDelete(v.Annotation.ID)
		if err != nil {
			e.reject(annotations.OpDelete, v.Annotation.ID, err)
			return
		}
		e.commit(p)
	case interaction.Seek:
		t := e.player.Seek(v.Time)
		e.bus.Publish(events.Seeked{Time: t})
	case interaction.Pan:
		e.viewport.Shift(v.Delta, v.Relative)
		if v.Relative {
			e.player.NoteScroll()
		}
	case interaction.Zoom:
		e.viewport.ZoomToPosition(v.At, v.Factor)
		e.player.NoteScroll()
	case interaction.ViewportGesture:
		if v.Active {
			e.player.BeginGesture()
		} else {
			e.player.EndGesture()
		}
	default:
		e.logger.Warn("unhandled intent", logging.Fields{"intent": fmt.Sprintf("%T", it)})
	}
}

// commit sends p to persistence on its own goroutine. The result comes back
// through e.commits and is applied by handleCommit.
func (e *Engine) commit(p annotations.Pending) {
	e.outstanding++
	gen := e.selectionGen
	e.logger.Debug("committing annotation", logging.Fields{
		"op":  string(p.Op),
		"id":  p.ID,
		"seq": p.Seq,
	})
	go func() {
		a, err := annotations.Commit(e.ctx, e.persistence, p)
		select {
		case e.commits <- commitResult{seq: p.Seq, gen: gen, result: a, err: err}:
		case <-e.ctx.Done():
		}
	}()
}

// handleCommit applies a persistence result. Failures revert the store to
// the confirmed list and the interaction state to idle.
func (e *Engine) handleCommit(r commitResult) {
	e.outstanding--
	p, ok := e.store.Resolve(r.seq, r.result, r.err)
	if !ok {
		return
	}
	if r.err != nil {
		e.step(interaction.CommitFailed{})
		e.bus.Publish(events.CommitFailed{Op: p.Op, ID: p.ID, Err: r.err})
		e.notify(events.SeverityError, fmt.Sprintf("could not %s annotation: %v", p.Op, r.err))
		return
	}

	switch p.Op {
	case annotations.OpCreate:
		e.bus.Publish(events.AnnotationCreated{Annotation: r.result.Clone(), Copy: p.Copy})
	case annotations.OpUpdate:
		e.refreshSelection(r, p)
		e.bus.Publish(events.AnnotationUpdated{Annotation: r.result.Clone()})
	case annotations.OpDelete:
		e.bus.Publish(events.AnnotationDeleted{Annotation: annotations.Annotation{
			ID:       p.ID,
			Geometry: geometry.Clone(p.Geometry),
			Tags:     append([]annotations.Tag(nil), p.Tags...),
		}})
	}
}

// refreshSelection swaps the confirmed geometry into the selection. A result
// for a selection that has since changed, or for an edit that has since been
// superseded, is stale and left alone.
func (e *Engine) refreshSelection(r commitResult, p annotations.Pending) {
	sel := e.state.Selected
	if r.gen != e.selectionGen || sel == nil || sel.ID != p.ID || e.state.Dragging() {
		return
	}
	if !geometry.Equal(sel.Geometry, p.Geometry) {
		return
	}
	a := r.result.Clone()
	e.state.Selected = &a
}

// reject reports an intent the store refused before anything was sent.
func (e *Engine) reject(op annotations.Op, id string, err error) {
	e.logger.Warn("annotation change refused", logging.Fields{
		"op":    string(op),
		"id":    id,
		"error": err.Error(),
	})
	e.step(interaction.CommitFailed{})
	e.notify(events.SeverityError, fmt.Sprintf("cannot %s annotation: %v", op, err))
}

func (e *Engine) notify(sev events.Severity, msg string) {
	e.bus.Publish(events.Notification{Severity: sev, Message: msg})
}

func (e *Engine) handleTile(r render.TileResult) {
	state, ok := e.tiles.Deliver(r, e.selector.Wanted(r.Key))
	if ok {
		e.bus.Publish(events.TileStateChanged{Key: r.Key, State: string(state)})
	}
}

func (e *Engine) tick() {
	st := e.player.Tick()
	if st.Playing != e.playing || st.Looped || st.Ended {
		e.playing = st.Playing
		e.bus.Publish(events.PlaybackChanged{Playing: st.Playing, Time: st.Time})
	}
}

func (e *Engine) togglePlay() {
	playing := e.player.Toggle()
	e.playing = playing
	e.bus.Publish(events.PlaybackChanged{Playing: playing, Time: e.player.Clock().CurrentTime()})
}

func (e *Engine) zoomBy(factor float64) {
	e.viewport.Scale(intervals.Factors{Time: factor, Freq: 1})
	e.player.NoteScroll()
}

func (e *Engine) copySelected() error {
	if e.state.Selected == nil {
		return ErrNothingToCopy
	}
	if err := e.session.Copy(*e.state.Selected); err != nil {
		return err
	}
	e.bus.Publish(events.ClipboardChanged{Geometry: geometry.Clone(e.state.Selected.Geometry)})
	return nil
}

// pasteTarget is the last pointer position, or the window centre.
func (e *Engine) pasteTarget() intervals.Position {
	if e.lastPointer != nil {
		return *e.lastPointer
	}
	return e.viewport.Window().Center()
}

func (e *Engine) pasteAt(at intervals.Position) error {
	g, tags, err := e.session.Paste(at, e.viewport.Bounds())
	if err != nil {
		return err
	}
	e.commit(e.store.BeginCreate(g, tags, true))
	return nil
}
