package annotations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-lienzo/algorithms/geometry"
)

// FailFunc decides whether a call to MemoryPersistence is rejected.
type FailFunc func(op Op, id string) error

// MemoryPersistence is an in-process Persistence used by the terminal
// front-end and by tests. It is safe for concurrent use.
type MemoryPersistence struct {
	mu    sync.Mutex
	items map[string]Annotation
	order []string
	fail  FailFunc
	delay time.Duration
}

// NewMemoryPersistence creates an empty store. Seed it with Put.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{items: make(map[string]Annotation)}
}

// SetFailFunc installs a rejection hook; nil accepts everything.
func (m *MemoryPersistence) SetFailFunc(fn FailFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// SetDelay makes every call wait d, or until its context is done.
func (m *MemoryPersistence) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Put stores a without going through the failure hook.
func (m *MemoryPersistence) Put(a Annotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		m.order = append(m.order, a.ID)
	}
	m.items[a.ID] = a.Clone()
}

// All returns the stored annotations in insertion order.
func (m *MemoryPersistence) All() []Annotation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Annotation, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id].Clone())
	}
	return out
}

func (m *MemoryPersistence) Create(ctx context.Context, g geometry.Geometry, tags []Tag) (Annotation, error) {
	if err := m.before(ctx, OpCreate, ""); err != nil {
		return Annotation{}, err
	}
	if err := geometry.Validate(g); err != nil {
		return Annotation{}, err
	}
	a := Annotation{ID: uuid.NewString(), Geometry: geometry.Clone(g), Tags: append([]Tag(nil), tags...)}
	m.Put(a)
	return a.Clone(), nil
}

func (m *MemoryPersistence) Update(ctx context.Context, id string, g geometry.Geometry) (Annotation, error) {
	if err := m.before(ctx, OpUpdate, id); err != nil {
		return Annotation{}, err
	}
	if err := geometry.Validate(g); err != nil {
		return Annotation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return Annotation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.Geometry = geometry.Clone(g)
	m.items[id] = a
	return a.Clone(), nil
}

func (m *MemoryPersistence) Delete(ctx context.Context, id string) (Annotation, error) {
	if err := m.before(ctx, OpDelete, id); err != nil {
		return Annotation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return Annotation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.items, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return a, nil
}

func (m *MemoryPersistence) before(ctx context.Context, op Op, id string) error {
	m.mu.Lock()
	fail, delay := m.fail, m.delay
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if fail != nil {
		if err := fail(op, id); err != nil {
			return fmt.Errorf("%s %s: %w", op, id, err)
		}
	}
	return nil
}
