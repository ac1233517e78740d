package annotations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// provisionalPrefix marks ids handed out before the server confirmed a create.
const provisionalPrefix = "pending-"

// IsProvisional reports whether id was issued locally for an unconfirmed create.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// Pending is a speculative operation waiting for the persistence result.
type Pending struct {
	Seq      uint64
	Op       Op
	ID       string // target id, or the provisional id of a create
	Geometry geometry.Geometry
	Tags     []Tag
	Copy     bool
}

// Store holds the confirmed annotation list and the operations in flight.
// It is owned by the canvas event loop and is not safe for concurrent use.
type Store struct {
	confirmed []Annotation
	pending   []Pending
	seq       uint64
	logger    logging.Logger
}

// NewStore creates a store seeded with annotations already persisted.
func NewStore(initial []Annotation, logger logging.Logger) *Store {
	confirmed := make([]Annotation, len(initial))
	for i, a := range initial {
		confirmed[i] = a.Clone()
	}
	return &Store{
		confirmed: confirmed,
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "annotation_store",
		}),
	}
}

// Confirmed returns the last known-good list.
func (s *Store) Confirmed() []Annotation {
	return cloneAll(s.confirmed)
}

// Pending returns the operations still in flight, oldest first.
func (s *Store) Pending() []Pending {
	return append([]Pending(nil), s.pending...)
}

// List returns the speculative view: the confirmed list with every pending
// operation applied in order. Drawing order is list order.
func (s *Store) List() []Annotation {
	out := cloneAll(s.confirmed)
	for _, p := range s.pending {
		out = apply(out, p)
	}
	return out
}

// Get looks id up in the speculative view.
func (s *Store) Get(id string) (Annotation, bool) {
	for _, a := range s.List() {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// BeginCreate records a speculative create under a provisional id.
func (s *Store) BeginCreate(g geometry.Geometry, tags []Tag, copied bool) Pending {
	p := Pending{
		Seq:      s.next(),
		Op:       OpCreate,
		ID:       provisionalPrefix + uuid.NewString(),
		Geometry: geometry.Clone(g),
		Tags:     append([]Tag(nil), tags...),
		Copy:     copied,
	}
	s.pending = append(s.pending, p)
	return p
}

// BeginUpdate records a speculative geometry change for id.
func (s *Store) BeginUpdate(id string, g geometry.Geometry) (Pending, error) {
	a, err := s.editable(id)
	if err != nil {
		return Pending{}, err
	}
	p := Pending{Seq: s.next(), Op: OpUpdate, ID: id, Geometry: geometry.Clone(g), Tags: a.Tags}
	s.pending = append(s.pending, p)
	return p, nil
}

// BeginDelete records a speculative delete of id.
func (s *Store) BeginDelete(id string) (Pending, error) {
	a, err := s.editable(id)
	if err != nil {
		return Pending{}, err
	}
	p := Pending{Seq: s.next(), Op: OpDelete, ID: id, Geometry: a.Geometry, Tags: a.Tags}
	s.pending = append(s.pending, p)
	return p, nil
}

func (s *Store) editable(id string) (Annotation, error) {
	if IsProvisional(id) {
		return Annotation{}, fmt.Errorf("%w: %s", ErrPending, id)
	}
	a, ok := s.Get(id)
	if !ok {
		return Annotation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// Resolve settles the pending operation seq with the persistence result. On
// success the result becomes confirmed state; on failure the operation is
// dropped so the view falls back to what the server last confirmed. The
// returned bool is false when seq is unknown, which happens for results that
// arrive after a Reset.
func (s *Store) Resolve(seq uint64, result Annotation, err error) (Pending, bool) {
	idx := -1
	for i, p := range s.pending {
		if p.Seq == seq {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Debug("discarding result for unknown operation", logging.Fields{"seq": seq})
		return Pending{}, false
	}
	p := s.pending[idx]
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)

	if err != nil {
		s.logger.Error(err, "annotation commit rejected, reverting", logging.Fields{
			"op": string(p.Op),
			"id": p.ID,
		})
		return p, true
	}

	switch p.Op {
	case OpCreate:
		s.confirmed = append(s.confirmed, result.Clone())
	case OpUpdate:
		s.confirmed = replace(s.confirmed, result.Clone())
	case OpDelete:
		s.confirmed = remove(s.confirmed, p.ID)
	}
	s.logger.Debug("annotation commit confirmed", logging.Fields{
		"op": string(p.Op),
		"id": result.ID,
	})
	return p, true
}

// Reset replaces the confirmed list and forgets every pending operation.
func (s *Store) Reset(confirmed []Annotation) {
	s.confirmed = cloneAll(confirmed)
	s.pending = nil
}

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

func apply(list []Annotation, p Pending) []Annotation {
	switch p.Op {
	case OpCreate:
		return append(list, Annotation{ID: p.ID, Geometry: p.Geometry, Tags: p.Tags})
	case OpUpdate:
		for i := range list {
			if list[i].ID == p.ID {
				list[i].Geometry = p.Geometry
			}
		}
		return list
	case OpDelete:
		return remove(list, p.ID)
	default:
		return list
	}
}

func replace(list []Annotation, a Annotation) []Annotation {
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			return list
		}
	}
	return append(list, a)
}

func remove(list []Annotation, id string) []Annotation {
	out := list[:0]
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func cloneAll(list []Annotation) []Annotation {
	out := make([]Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}
