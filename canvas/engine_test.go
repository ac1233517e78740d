package canvas

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/algorithms/intervals"
	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
	"github.com/RyanBlaney/sonido-lienzo/canvas/config"
	"github.com/RyanBlaney/sonido-lienzo/canvas/events"
	"github.com/RyanBlaney/sonido-lienzo/canvas/interaction"
	"github.com/RyanBlaney/sonido-lienzo/canvas/render"
	"github.com/RyanBlaney/sonido-lienzo/canvas/segments"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var (
	testBounds = intervals.Window{
		Time: intervals.Interval{Min: 0, Max: 60},
		Freq: intervals.Interval{Min: 0, Max: 1000},
	}
	testInitial = intervals.Window{
		Time: intervals.Interval{Min: 0, Max: 10},
		Freq: intervals.Interval{Min: 0, Max: 1000},
	}
	// 100 px per second, 1 px per Hz with y growing downwards
	testDims = geometry.Dimensions{Width: 1000, Height: 1000}

	seeded = annotations.Annotation{
		ID:       "seeded",
		Geometry: geometry.BoundingBox{StartTime: 1, LowFreq: 200, EndTime: 3, HighFreq: 400},
		Tags:     []annotations.Tag{{Key: "species", Value: "myotis"}},
	}
)

type fakeTime struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeTime) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeTime) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

type stubImages struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubImages) SegmentImage(ctx context.Context, recordingID string, seg segments.Segment, params config.SpectrogramConfig) (render.Tile, error) {
	s.mu.Lock()
	s.calls++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return render.Tile{}, err
	}
	return render.Tile{
		Image:  image.NewRGBA(image.Rect(0, 0, 8, 8)),
		Bounds: intervals.Window{Time: seg.Interval, Freq: testBounds.Freq},
	}, nil
}

type fixture struct {
	engine      *Engine
	persistence *annotations.MemoryPersistence
	images      *stubImages
	time        *fakeTime
	listener    *events.Listener
}

func newFixture(t *testing.T, initial ...annotations.Annotation) *fixture {
	t.Helper()
	f := &fixture{
		persistence: annotations.NewMemoryPersistence(),
		images:      &stubImages{},
		time:        &fakeTime{t: time.Unix(1700000000, 0)},
	}
	for _, a := range initial {
		f.persistence.Put(a)
	}
	e, err := New(Options{
		RecordingID:  "rec-1",
		Bounds:       testBounds,
		Initial:      testInitial,
		Dimensions:   testDims,
		Annotations:  initial,
		Persistence:  f.persistence,
		Images:       f.images,
		GeometryType: geometry.BoundingBoxType,
		Now:          f.time.now,
		Logger:       &logging.NoOpLogger{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.engine = e
	f.listener = e.Events(256)
	t.Cleanup(e.Close)
	return f
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.engine.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func (f *fixture) events() []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-f.listener.C:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (f *fixture) pointer(kind PointerKind, x, y float64, mods interaction.Modifiers) {
	f.engine.Dispatch(PointerInput{Kind: kind, Pixel: geometry.Pixel{X: x, Y: y}, Modifiers: mods})
}

func findEvent[T events.Event](evs []events.Event) (T, bool) {
	for _, ev := range evs {
		if v, ok := ev.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func nearBox(got geometry.Geometry, want geometry.BoundingBox) bool {
	b, ok := got.(geometry.BoundingBox)
	return ok && near(b.StartTime, want.StartTime) && near(b.LowFreq, want.LowFreq) &&
		near(b.EndTime, want.EndTime) && near(b.HighFreq, want.HighFreq)
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{Persistence: annotations.NewMemoryPersistence()}); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("New() with zero bounds error = %v, want ErrInvalidBounds", err)
	}
	if _, err := New(Options{Bounds: testBounds}); !errors.Is(err, ErrNoPersistence) {
		t.Errorf("New() without persistence error = %v, want ErrNoPersistence", err)
	}
	bad := config.DefaultCanvasConfig()
	bad.Interaction.ZoomStep = 0
	_, err := New(Options{Bounds: testBounds, Persistence: annotations.NewMemoryPersistence(), Config: bad})
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("New() with bad config error = %v, want ErrInvalidConfig", err)
	}
}

func TestNewShowsInitialWindowAndRequestsTiles(t *testing.T) {
	f := newFixture(t)
	if got := f.engine.Window(); got != testInitial {
		t.Errorf("Window() = %v, want %v", got, testInitial)
	}
	if got := f.engine.Bounds(); got != testBounds {
		t.Errorf("Bounds() = %v, want %v", got, testBounds)
	}
	f.flush(t)

	sel, ok := f.engine.Segments()
	if !ok {
		t.Fatal("Segments() reported no selection")
	}
	for _, seg := range sel.Segments() {
		entry, found := f.engine.Tile(seg.Key())
		if !found || entry.State != render.TileLoaded {
			t.Errorf("tile %s = %v (found %v), want loaded", seg.Key(), entry.State, found)
		}
	}
	ev, ok := findEvent[events.TileStateChanged](f.events())
	if !ok || ev.State != string(render.TilePending) {
		t.Errorf("first tile event = %+v, want a pending tile", ev)
	}
}

func TestDrawBoxCreatesAnnotation(t *testing.T) {
	f := newFixture(t)
	f.engine.SetMode(interaction.ModeDraw)

	f.pointer(PointerMoveStart, 100, 800, interaction.Modifiers{})
	f.pointer(PointerMove, 200, 700, interaction.Modifiers{})
	if f.engine.State().Transient == nil {
		t.Error("no preview while dragging")
	}
	f.pointer(PointerMoveEnd, 300, 600, interaction.Modifiers{})

	list := f.engine.Annotations()
	if len(list) != 1 || !annotations.IsProvisional(list[0].ID) {
		t.Fatalf("Annotations() before commit = %v, want one provisional", list)
	}

	f.flush(t)
	list = f.engine.Annotations()
	if len(list) != 1 || annotations.IsProvisional(list[0].ID) {
		t.Fatalf("Annotations() after commit = %v, want one confirmed", list)
	}
	want := geometry.BoundingBox{StartTime: 1, LowFreq: 200, EndTime: 3, HighFreq: 400}
	if !nearBox(list[0].Geometry, want) {
		t.Errorf("geometry = %v, want %v", list[0].Geometry, want)
	}
	if got := len(f.persistence.All()); got != 1 {
		t.Errorf("persisted = %d, want 1", got)
	}

	created, ok := findEvent[events.AnnotationCreated](f.events())
	if !ok || created.Annotation.ID != list[0].ID || created.Copy {
		t.Errorf("AnnotationCreated = %+v, want id %s without copy", created, list[0].ID)
	}
}

func TestCommitFailureReverts(t *testing.T) {
	f := newFixture(t)
	rejected := errors.New("read-only project")
	f.persistence.SetFailFunc(func(op annotations.Op, id string) error { return rejected })
	f.engine.SetMode(interaction.ModeDraw)

	f.pointer(PointerMoveStart, 100, 800, interaction.Modifiers{})
	f.pointer(PointerMoveEnd, 300, 600, interaction.Modifiers{})
	f.flush(t)

	if list := f.engine.Annotations(); len(list) != 0 {
		t.Errorf("Annotations() = %v, want the rejected create reverted", list)
	}
	if got := f.engine.Mode(); got != interaction.ModeIdle {
		t.Errorf("Mode() = %s, want idle", got)
	}

	evs := f.events()
	failed, ok := findEvent[events.CommitFailed](evs)
	if !ok || failed.Op != annotations.OpCreate || !errors.Is(failed.Err, rejected) {
		t.Errorf("CommitFailed = %+v, want rejected create", failed)
	}
	note, ok := findEvent[events.Notification](evs)
	if !ok || note.Severity != events.SeverityError {
		t.Errorf("Notification = %+v, want an error", note)
	}
}

func TestEditDragUpdatesAnnotation(t *testing.T) {
	f := newFixture(t, seeded)
	f.engine.SetMode(interaction.ModeEdit)

	// the body of the seeded box spans x 100..300, y 600..800
	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
	if sel := f.engine.Selected(); sel == nil || sel.ID != seeded.ID {
		t.Fatalf("Selected() = %v, want %s", sel, seeded.ID)
	}
	f.pointer(PointerMoveStart, 200, 700, interaction.Modifiers{})
	f.pointer(PointerMove, 250, 700, interaction.Modifiers{})
	f.pointer(PointerMoveEnd, 300, 700, interaction.Modifiers{})
	f.flush(t)

	want := geometry.BoundingBox{StartTime: 2, LowFreq: 200, EndTime: 4, HighFreq: 400}
	list := f.engine.Annotations()
	if len(list) != 1 || !nearBox(list[0].Geometry, want) {
		t.Fatalf("Annotations() = %v, want the box moved to %v", list, want)
	}
	if sel := f.engine.Selected(); sel == nil || !nearBox(sel.Geometry, want) {
		t.Errorf("Selected() = %v, want the confirmed geometry", sel)
	}
	if _, ok := findEvent[events.AnnotationUpdated](f.events()); !ok {
		t.Error("no AnnotationUpdated event")
	}
}

func TestCtrlDragCopies(t *testing.T) {
	f := newFixture(t, seeded)
	f.engine.SetMode(interaction.ModeEdit)

	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
	f.pointer(PointerMoveStart, 200, 700, interaction.Modifiers{})
	f.pointer(PointerMoveEnd, 500, 700, interaction.Modifiers{Ctrl: true})
	f.flush(t)

	list := f.engine.Annotations()
	if len(list) != 2 {
		t.Fatalf("Annotations() = %v, want the original and a copy", list)
	}
	if !nearBox(list[0].Geometry, seeded.Geometry.(geometry.BoundingBox)) {
		t.Errorf("original = %v, want it untouched", list[0].Geometry)
	}
	if len(list[1].Tags) != 1 || list[1].Tags[0] != seeded.Tags[0] {
		t.Errorf("copy tags = %v, want %v", list[1].Tags, seeded.Tags)
	}
	created, ok := findEvent[events.AnnotationCreated](f.events())
	if !ok || !created.Copy {
		t.Errorf("AnnotationCreated = %+v, want a copy", created)
	}
}

func TestDeleteMode(t *testing.T) {
	f := newFixture(t, seeded)
	f.engine.SetMode(interaction.ModeDelete)
	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
	f.flush(t)

	if list := f.engine.Annotations(); len(list) != 0 {
		t.Errorf("Annotations() = %v, want none", list)
	}
	if got := f.engine.Mode(); got != interaction.ModeIdle {
		t.Errorf("Mode() = %s, want idle after a delete", got)
	}
	deleted, ok := findEvent[events.AnnotationDeleted](f.events())
	if !ok || deleted.Annotation.ID != seeded.ID {
		t.Errorf("AnnotationDeleted = %+v, want %s", deleted, seeded.ID)
	}
}

func TestLateUpdateForOldSelectionIsNotApplied(t *testing.T) {
	other := annotations.Annotation{
		ID:       "other",
		Geometry: geometry.BoundingBox{StartTime: 6, LowFreq: 200, EndTime: 8, HighFreq: 400},
	}
	f := newFixture(t, seeded, other)
	f.persistence.SetDelay(20 * time.Millisecond)
	f.engine.SetMode(interaction.ModeEdit)

	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
	f.pointer(PointerMoveStart, 200, 700, interaction.Modifiers{})
	f.pointer(PointerMoveEnd, 300, 700, interaction.Modifiers{})
	// select something else while the update is in flight
	f.pointer(PointerPress, 700, 700, interaction.Modifiers{})
	f.flush(t)

	if sel := f.engine.Selected(); sel == nil || sel.ID != other.ID {
		t.Errorf("Selected() = %v, want %s to stay selected", sel, other.ID)
	}
	updated, ok := f.engine.store.Get(seeded.ID)
	want := geometry.BoundingBox{StartTime: 2, LowFreq: 200, EndTime: 4, HighFreq: 400}
	if !ok || !nearBox(updated.Geometry, want) {
		t.Errorf("stored %s = %v, want %v", seeded.ID, updated.Geometry, want)
	}
}

func TestDoublePressSeeksWithoutMovingViewport(t *testing.T) {
	f := newFixture(t)
	f.pointer(PointerDoublePress, 500, 500, interaction.Modifiers{})
	if got := f.engine.PlayHead(); !near(got, 5) {
		t.Errorf("PlayHead() = %v, want 5", got)
	}
	if got := f.engine.Window(); got != testInitial {
		t.Errorf("Window() = %v, want unchanged", got)
	}

	// pixels left of the surface clamp to the start of the recording
	f.pointer(PointerDoublePress, -400, 500, interaction.Modifiers{})
	if got := f.engine.PlayHead(); got != 0 {
		t.Errorf("PlayHead() = %v, want 0", got)
	}
	if ev, ok := findEvent[events.Seeked](f.events()); !ok || !near(ev.Time, 5) {
		t.Errorf("Seeked = %+v, want 5", ev)
	}
}

func TestScrollPansAndZooms(t *testing.T) {
	f := newFixture(t)
	cfg := f.engine.Config().Interaction

	f.engine.Dispatch(ScrollInput{Pixel: geometry.Pixel{X: 500, Y: 500}, DY: 1})
	w := f.engine.Window()
	if want := 10 * cfg.ScrollPanRatio; !near(w.Time.Min, want) || !near(w.Time.Width(), 10) {
		t.Errorf("after scroll Window().Time = %v, want min %v width 10", w.Time, want)
	}

	f.engine.Reset()
	f.engine.Dispatch(ScrollInput{Pixel: geometry.Pixel{X: 500, Y: 500}, DY: -1, Modifiers: interaction.Modifiers{Ctrl: true}})
	w = f.engine.Window()
	if want := 10 * cfg.ZoomStep; !near(w.Time.Width(), want) {
		t.Errorf("after ctrl-scroll Window().Time width = %v, want %v", w.Time.Width(), want)
	}
	if !near(w.Time.Center(), 5) {
		t.Errorf("zoom moved the point under the pointer: centre %v", w.Time.Center())
	}
	if _, ok := findEvent[events.ViewportChanged](f.events()); !ok {
		t.Error("no ViewportChanged event")
	}
}

func TestViewportHistory(t *testing.T) {
	f := newFixture(t)
	if f.engine.Back() {
		t.Error("Back() on a fresh canvas = true, want false")
	}
	f.engine.Save()
	f.engine.Pan(intervals.Delta{Time: 20}, false)
	f.engine.Save()
	f.engine.ZoomBy(2)

	if !f.engine.Back() {
		t.Fatal("Back() = false, want true")
	}
	if got := f.engine.Window().Time; got != (intervals.Interval{Min: 20, Max: 30}) {
		t.Errorf("after Back() Window().Time = %v, want [20, 30]", got)
	}
	f.engine.Reset()
	if got := f.engine.Window(); got != testInitial {
		t.Errorf("after Reset() Window() = %v, want %v", got, testInitial)
	}
}

func TestPlaybackCentresViewport(t *testing.T) {
	f := newFixture(t)
	f.engine.Play()
	f.time.advance(12 * time.Second)
	f.engine.Dispatch(TickInput{})

	if got := f.engine.Window().Time; !near(got.Min, 7) || !near(got.Max, 17) {
		t.Errorf("Window().Time = %v, want [7, 17]", got)
	}
	if ev, ok := findEvent[events.PlaybackChanged](f.events()); !ok || !ev.Playing {
		t.Errorf("PlaybackChanged = %+v, want playing", ev)
	}

	if f.engine.TogglePlay() {
		t.Error("TogglePlay() = true, want paused")
	}
}

func TestDragHoldsViewportDuringPlayback(t *testing.T) {
	tests := []struct {
		name  string
		mode  interaction.Mode
		start func(f *fixture)
	}{
		{
			name: "draw",
			mode: interaction.ModeDraw,
			start: func(f *fixture) {
				f.pointer(PointerMoveStart, 500, 500, interaction.Modifiers{})
			},
		},
		{
			name: "edit",
			mode: interaction.ModeEdit,
			start: func(f *fixture) {
				f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
				f.pointer(PointerMoveStart, 200, 700, interaction.Modifiers{})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var initial []annotations.Annotation
			if tt.mode == interaction.ModeEdit {
				initial = append(initial, seeded)
			}
			f := newFixture(t, initial...)
			f.engine.SetMode(tt.mode)
			f.engine.Play()
			tt.start(f)
			if !f.engine.State().Dragging() {
				t.Fatal("Dragging() = false after MoveStart")
			}

			f.time.advance(12 * time.Second)
			f.engine.Dispatch(TickInput{})
			if got := f.engine.Window().Time; !near(got.Min, 0) || !near(got.Max, 10) {
				t.Errorf("Window().Time during drag = %v, want [0, 10]", got)
			}

			f.pointer(PointerMoveEnd, 600, 400, interaction.Modifiers{})
			f.engine.Dispatch(TickInput{})
			if got := f.engine.Window().Time; !near(got.Min, 7) || !near(got.Max, 17) {
				t.Errorf("Window().Time after drag = %v, want [7, 17]", got)
			}
		})
	}
}

func TestDrawDragKeepsBoxUnderPointerDuringPlayback(t *testing.T) {
	f := newFixture(t)
	f.engine.SetMode(interaction.ModeDraw)
	f.engine.Play()

	f.pointer(PointerMoveStart, 500, 500, interaction.Modifiers{})
	f.time.advance(12 * time.Second)
	f.engine.Dispatch(TickInput{})
	f.pointer(PointerMove, 600, 400, interaction.Modifiers{})

	want := geometry.BoundingBox{StartTime: 5, LowFreq: 500, EndTime: 6, HighFreq: 600}
	if got := f.engine.State().Transient; got == nil || !nearBox(got, want) {
		t.Errorf("Transient = %v, want %v", got, want)
	}

	f.pointer(PointerMoveEnd, 600, 400, interaction.Modifiers{})
	list := f.engine.Annotations()
	if len(list) != 1 || !nearBox(list[0].Geometry, want) {
		t.Errorf("Annotations() = %v, want one %v", list, want)
	}
}

func TestSetGeometryType(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.SetGeometryType(geometry.MultiPolygonType); !errors.Is(err, geometry.ErrUnsupportedGeometry) {
		t.Errorf("SetGeometryType(MultiPolygon) error = %v, want ErrUnsupportedGeometry", err)
	}
	if err := f.engine.SetGeometryType(geometry.TimeIntervalType); err != nil {
		t.Fatalf("SetGeometryType(TimeInterval) error = %v", err)
	}
	if got := f.engine.State().GeometryType; got != geometry.TimeIntervalType {
		t.Errorf("GeometryType = %s, want TimeInterval", got)
	}
	if ev, ok := findEvent[events.GeometryTypeChosen](f.events()); !ok || ev.Type != geometry.TimeIntervalType {
		t.Errorf("GeometryTypeChosen = %+v", ev)
	}
}

func TestCopyPaste(t *testing.T) {
	f := newFixture(t, seeded)
	if err := f.engine.CopySelected(); !errors.Is(err, ErrNothingToCopy) {
		t.Errorf("CopySelected() with no selection error = %v, want ErrNothingToCopy", err)
	}

	f.engine.SetMode(interaction.ModeSelect)
	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
	if err := f.engine.CopySelected(); err != nil {
		t.Fatalf("CopySelected() error = %v", err)
	}
	if err := f.engine.PasteAt(intervals.Position{Time: 5, Freq: 500}); err != nil {
		t.Fatalf("PasteAt() error = %v", err)
	}
	f.flush(t)

	list := f.engine.Annotations()
	if len(list) != 2 {
		t.Fatalf("Annotations() = %v, want two", list)
	}
	want := geometry.BoundingBox{StartTime: 5, LowFreq: 500, EndTime: 7, HighFreq: 700}
	if !nearBox(list[1].Geometry, want) {
		t.Errorf("pasted = %v, want %v", list[1].Geometry, want)
	}
	if _, ok := findEvent[events.ClipboardChanged](f.events()); !ok {
		t.Error("no ClipboardChanged event")
	}
}

func TestPasteStaysInsideRecording(t *testing.T) {
	f := newFixture(t, seeded)
	f.engine.SetMode(interaction.ModeSelect)
	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})
	if err := f.engine.CopySelected(); err != nil {
		t.Fatalf("CopySelected() error = %v", err)
	}
	if err := f.engine.PasteAt(intervals.Position{Time: 59, Freq: 900}); err != nil {
		t.Fatalf("PasteAt() error = %v", err)
	}
	f.flush(t)

	list := f.engine.Annotations()
	if len(list) != 2 {
		t.Fatalf("Annotations() = %v, want two", list)
	}
	want := geometry.BoundingBox{StartTime: 58, LowFreq: 800, EndTime: 60, HighFreq: 1000}
	if !nearBox(list[1].Geometry, want) {
		t.Errorf("pasted = %v, want %v", list[1].Geometry, want)
	}
}

func TestTileErrorAndRetry(t *testing.T) {
	f := newFixture(t)
	f.flush(t)
	sel, _ := f.engine.Segments()
	key := sel.Current.Key()

	f.images.mu.Lock()
	f.images.err = errors.New("decoder crashed")
	f.images.mu.Unlock()
	f.engine.ZoomBy(0.25)
	f.flush(t)

	sel, _ = f.engine.Segments()
	failed := sel.Current.Key()
	if failed == key {
		t.Fatalf("zoom did not change segment tier: %s", key)
	}
	if entry, _ := f.engine.Tile(failed); entry.State != render.TileError {
		t.Fatalf("tile %s = %v, want error", failed, entry.State)
	}

	f.images.mu.Lock()
	f.images.err = nil
	f.images.mu.Unlock()
	f.engine.RetryTile(failed)
	f.flush(t)
	if entry, _ := f.engine.Tile(failed); entry.State != render.TileLoaded {
		t.Errorf("tile %s after retry = %v, want loaded", failed, entry.State)
	}
}

func TestSceneCarriesSelectionAndTiles(t *testing.T) {
	f := newFixture(t, seeded)
	f.flush(t)
	f.engine.SetMode(interaction.ModeEdit)
	f.pointer(PointerPress, 200, 700, interaction.Modifiers{})

	sc := f.engine.Scene(DrawOptions{AxisTicks: 5})
	if sc.Selected == nil || sc.Selected.ID != seeded.ID {
		t.Errorf("Scene.Selected = %v, want %s", sc.Selected, seeded.ID)
	}
	if !sc.Handles {
		t.Error("Scene.Handles = false in edit mode")
	}
	if len(sc.Tiles) == 0 || !sc.Tiles[len(sc.Tiles)-1].Found {
		t.Errorf("Scene.Tiles = %v, want the current segment last", sc.Tiles)
	}
	if sc.Theme != render.DefaultTheme() {
		t.Error("Scene.Theme is not the default theme")
	}
}

func TestRunAppliesInputsAndStops(t *testing.T) {
	f := newFixture(t)
	inputs := make(chan Input)
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(context.Background(), inputs) }()

	inputs <- KeyInput{Key: KeyZoomIn}
	close(inputs)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on closed inputs", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return")
	}
	if got := f.engine.Window().Time.Width(); got >= 10 {
		t.Errorf("Window width = %v, want zoomed in", got)
	}
}

func TestCloseStopsDispatch(t *testing.T) {
	f := newFixture(t)
	f.engine.Close()
	f.engine.Dispatch(KeyInput{Key: KeyZoomIn})
	if got := f.engine.Window(); got != testInitial {
		t.Errorf("Window() after Close = %v, want unchanged", got)
	}
	f.engine.Close()
}
