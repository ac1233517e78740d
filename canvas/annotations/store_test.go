package annotations

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

var (
	boxA = geometry.BoundingBox{StartTime: 1, LowFreq: 100, EndTime: 2, HighFreq: 200}
	boxB = geometry.BoundingBox{StartTime: 3, LowFreq: 300, EndTime: 4, HighFreq: 400}
)

func newStore() *Store {
	return NewStore([]Annotation{
		{ID: "a", Geometry: boxA, Tags: []Tag{{Key: "species", Value: "myotis"}}},
	}, &logging.NoOpLogger{})
}

func TestCreateIsSpeculativeUntilResolved(t *testing.T) {
	s := newStore()
	p := s.BeginCreate(boxB, nil, false)

	if !IsProvisional(p.ID) {
		t.Errorf("create id %q is not provisional", p.ID)
	}
	if n := len(s.List()); n != 2 {
		t.Errorf("speculative list has %d entries, want 2", n)
	}
	if n := len(s.Confirmed()); n != 1 {
		t.Errorf("confirmed list has %d entries, want 1", n)
	}

	if _, ok := s.Resolve(p.Seq, Annotation{ID: "b", Geometry: boxB}, nil); !ok {
		t.Fatal("Resolve did not find the pending create")
	}
	if _, ok := s.Get("b"); !ok {
		t.Error("confirmed create missing from list")
	}
	if _, ok := s.Get(p.ID); ok {
		t.Error("provisional id still present after confirmation")
	}
	if len(s.Pending()) != 0 {
		t.Errorf("pending = %v, want empty", s.Pending())
	}
}

func TestRejectedUpdateRevertsToConfirmed(t *testing.T) {
	s := newStore()
	p, err := s.BeginUpdate("a", boxB)
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := s.Get("a"); !geometry.Equal(a.Geometry, boxB) {
		t.Errorf("speculative geometry = %v, want %v", a.Geometry, boxB)
	}

	s.Resolve(p.Seq, Annotation{}, errors.New("server said no"))

	a, ok := s.Get("a")
	if !ok || !geometry.Equal(a.Geometry, boxA) {
		t.Errorf("after rejection geometry = %v, want last known-good %v", a.Geometry, boxA)
	}
}

func TestRejectionKeepsOtherPendingOperations(t *testing.T) {
	s := newStore()
	create := s.BeginCreate(boxB, nil, false)
	del, err := s.BeginDelete("a")
	if err != nil {
		t.Fatal(err)
	}

	s.Resolve(create.Seq, Annotation{}, errors.New("boom"))

	list := s.List()
	if len(list) != 0 {
		t.Errorf("list = %v, want the delete still applied and the create gone", list)
	}
	s.Resolve(del.Seq, Annotation{ID: "a"}, nil)
	if len(s.Confirmed()) != 0 {
		t.Errorf("confirmed = %v, want empty after delete", s.Confirmed())
	}
}

func TestEditingUnknownOrProvisional(t *testing.T) {
	s := newStore()
	if _, err := s.BeginUpdate("zzz", boxA); !errors.Is(err, ErrNotFound) {
		t.Errorf("BeginUpdate unknown error = %v, want ErrNotFound", err)
	}
	p := s.BeginCreate(boxB, nil, false)
	if _, err := s.BeginDelete(p.ID); !errors.Is(err, ErrPending) {
		t.Errorf("BeginDelete provisional error = %v, want ErrPending", err)
	}
}

func TestResolveUnknownSeq(t *testing.T) {
	s := newStore()
	p := s.BeginCreate(boxB, nil, false)
	s.Reset(s.Confirmed())
	if _, ok := s.Resolve(p.Seq, Annotation{ID: "b"}, nil); ok {
		t.Error("Resolve after Reset should report the result as unknown")
	}
	if len(s.List()) != 1 {
		t.Errorf("list = %v, want only the confirmed annotation", s.List())
	}
}

func TestConfirmedIsACopy(t *testing.T) {
	s := newStore()
	list := s.Confirmed()
	list[0].Tags[0].Value = "changed"
	if a, _ := s.Get("a"); a.Tags[0].Value != "myotis" {
		t.Error("mutating Confirmed() leaked into the store")
	}
}

func TestAnnotationJSON(t *testing.T) {
	a := Annotation{ID: "x", Geometry: geometry.TimeInterval{Start: 1, End: 2}, Tags: []Tag{{Key: "k", Value: "v"}}}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"x","geometry":{"type":"TimeInterval","coordinates":[1,2]},"tags":[{"key":"k","value":"v"}]}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
	var back Annotation
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != "x" || !geometry.Equal(back.Geometry, a.Geometry) || len(back.Tags) != 1 {
		t.Errorf("Unmarshal = %+v", back)
	}
}

func TestMemoryPersistence(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryPersistence()

	a, err := m.Create(ctx, boxA, []Tag{{Value: "bird"}})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" {
		t.Error("Create returned an empty id")
	}
	if _, err := m.Update(ctx, a.ID, boxB); err != nil {
		t.Fatal(err)
	}
	if got := m.All()[0].Geometry; !geometry.Equal(got, boxB) {
		t.Errorf("stored geometry = %v, want %v", got, boxB)
	}

	m.SetFailFunc(func(op Op, id string) error {
		if op == OpDelete {
			return errors.New("read only")
		}
		return nil
	})
	if _, err := m.Delete(ctx, a.ID); err == nil {
		t.Error("Delete should fail with the hook installed")
	}
	m.SetFailFunc(nil)
	if _, err := m.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if _, err := m.Create(ctx, geometry.BoundingBox{StartTime: 2, EndTime: 1}, nil); !errors.Is(err, geometry.ErrInvalidGeometry) {
		t.Errorf("invalid create error = %v, want ErrInvalidGeometry", err)
	}
}

func TestMemoryPersistenceHonoursContext(t *testing.T) {
	m := NewMemoryPersistence()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Create(ctx, boxA, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Create on cancelled context = %v, want context.Canceled", err)
	}
}

func TestCommitDispatchesByOp(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryPersistence()
	m.Put(Annotation{ID: "a", Geometry: boxA})

	got, err := Commit(ctx, m, Pending{Op: OpUpdate, ID: "a", Geometry: boxB})
	if err != nil || !geometry.Equal(got.Geometry, boxB) {
		t.Errorf("Commit update = %v, %v", got, err)
	}
	if _, err := Commit(ctx, m, Pending{Op: "merge"}); err == nil {
		t.Error("Commit with unknown op should fail")
	}
}
