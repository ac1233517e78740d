// Package annotations keeps the sound-event annotations of one clip. It
// separates the list last confirmed by the persistence collaborator from the
// speculative operations still in flight, so a rejected commit can fall back
// to known-good state.
package annotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
)

var (
	ErrNotFound = errors.New("annotation not found")
	ErrPending  = errors.New("annotation is not confirmed yet")
)

// Tag is a key/value label attached to an annotation.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (t Tag) String() string {
	if t.Key == "" {
		return t.Value
	}
	return t.Key + ":" + t.Value
}

// Annotation is a sound event annotation or prediction.
type Annotation struct {
	ID       string
	Geometry geometry.Geometry
	Tags     []Tag
}

type wireAnnotation struct {
	ID       string          `json:"id"`
	Geometry json.RawMessage `json:"geometry"`
	Tags     []Tag           `json:"tags"`
}

func (a Annotation) MarshalJSON() ([]byte, error) {
	g, err := geometry.Marshal(a.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotation %s: %w", a.ID, err)
	}
	tags := a.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return json.Marshal(wireAnnotation{ID: a.ID, Geometry: g, Tags: tags})
}

func (a *Annotation) UnmarshalJSON(data []byte) error {
	var w wireAnnotation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g, err := geometry.Unmarshal(w.Geometry)
	if err != nil {
		return fmt.Errorf("failed to decode annotation %s: %w", w.ID, err)
	}
	a.ID, a.Geometry, a.Tags = w.ID, g, w.Tags
	return nil
}

// Clone returns a deep copy.
func (a Annotation) Clone() Annotation {
	return Annotation{
		ID:       a.ID,
		Geometry: geometry.Clone(a.Geometry),
		Tags:     append([]Tag(nil), a.Tags...),
	}
}

// Persistence is the collaborator that owns the authoritative annotation
// list. Every call may fail asynchronously.
type Persistence interface {
	Create(ctx context.Context, g geometry.Geometry, tags []Tag) (Annotation, error)
	Update(ctx context.Context, id string, g geometry.Geometry) (Annotation, error)
	Delete(ctx context.Context, id string) (Annotation, error)
}

// Op names a persistence operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Commit sends p to the persistence collaborator.
func Commit(ctx context.Context, persistence Persistence, p Pending) (Annotation, error) {
	switch p.Op {
	case OpCreate:
		return persistence.Create(ctx, p.Geometry, p.Tags)
	case OpUpdate:
		return persistence.Update(ctx, p.ID, p.Geometry)
	case OpDelete:
		return persistence.Delete(ctx, p.ID)
	default:
		return Annotation{}, fmt.Errorf("unknown operation %q", p.Op)
	}
}
