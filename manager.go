package concord

import (
	"fmt"
	"sync"
	"time"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Cacheable is implemented by every entity kind a Manager can hold.
// Entities are always pointer types so that patching a cached instance
// is visible through every handle already given out.
type Cacheable interface {
	comparable
	// EntityID is the cache key. Immutable once assigned.
	EntityID() snowflake.ID
	// scopeID identifies the owning scope, zero for client-level kinds.
	scopeID() snowflake.ID
	// Patch merges a field-partial payload into the entity in place.
	Patch(p Payload) error
}

type cacheEntry[T Cacheable] struct {
	value   T
	touched time.Time
}

// Manager is the identity-keyed store for one (scope, entity kind)
// pair. At most one live instance exists per identity: re-adding a
// known identity patches the existing instance rather than allocating
// a new one.
//
// Reads take the read lock so a sweep can run beside them; patch and
// removal of the same identity serialize on the write lock.
type Manager[T Cacheable] struct {
	mu      sync.RWMutex
	entries map[snowflake.ID]*cacheEntry[T]

	scope   snowflake.ID
	alloc   func() T
	keyOf   func(Payload) (snowflake.ID, bool)
	nameOf  func(T) string
	onEvict func(T)
	now     func() time.Time
}

// ManagerOption configures a Manager at construction time.
type ManagerOption[T Cacheable] func(*Manager[T])

// WithKeyResolver overrides how the cache key is read from a payload.
// The default reads the top-level "id" field; member payloads, for
// example, key on the nested user object instead.
func WithKeyResolver[T Cacheable](fn func(Payload) (snowflake.ID, bool)) ManagerOption[T] {
	return func(m *Manager[T]) { m.keyOf = fn }
}

// WithSecondaryKey enables Resolve/ResolveID lookups by a non-identity
// key such as a name.
func WithSecondaryKey[T Cacheable](fn func(T) string) ManagerOption[T] {
	return func(m *Manager[T]) { m.nameOf = fn }
}

// WithEvictionHook registers a callback invoked after an entry leaves
// the cache, whether by Remove or by Sweep. The removed entity itself
// is never mutated, so held references keep their last known state.
func WithEvictionHook[T Cacheable](fn func(T)) ManagerOption[T] {
	return func(m *Manager[T]) { m.onEvict = fn }
}

// NewManager builds a Manager for the given owning scope. alloc
// produces an empty entity wired with its back-references; all field
// population happens through Patch.
func NewManager[T Cacheable](scope snowflake.ID, alloc func() T, opts ...ManagerOption[T]) *Manager[T] {
	m := &Manager[T]{
		entries: make(map[snowflake.ID]*cacheEntry[T]),
		scope:   scope,
		alloc:   alloc,
		keyOf: func(p Payload) (snowflake.ID, bool) {
			id, ok := p.Snowflake("id")
			return id, ok && id != 0
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add merges a payload into the cache. If an entity with the payload's
// identity exists it is patched in place and returned; otherwise a new
// entity is constructed via the same patch path and, when cache is
// true, inserted. cache=false yields an ephemeral view that never
// touches long-lived state.
func (m *Manager[T]) Add(p Payload, cache bool) (T, error) {
	var zero T

	id, ok := m.keyOf(p)
	if !ok {
		return zero, fmt.Errorf("%w: missing identity field", ErrMalformedPayload)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[id]; ok {
		if err := e.value.Patch(p); err != nil {
			return zero, err
		}
		e.touched = m.now()
		return e.value, nil
	}

	v := m.alloc()
	if err := v.Patch(p); err != nil {
		return zero, err
	}
	if cache {
		m.entries[id] = &cacheEntry[T]{value: v, touched: m.now()}
	}
	return v, nil
}

// Get returns the cached entity for id, if any.
func (m *Manager[T]) Get(id snowflake.ID) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Remove deletes the cache entry. The removed entity's fields are left
// untouched; handles already held become detached views of last-known
// state.
func (m *Manager[T]) Remove(id snowflake.ID) bool {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	m.mu.Unlock()

	if ok && m.onEvict != nil {
		m.onEvict(e.value)
	}
	return ok
}

// Resolve accepts an identity (ID, uint64, or decimal string), an
// entity instance, or, when the kind defines one, a secondary key such
// as a name. A miss returns the zero value with a nil error; only an
// instance from a foreign scope is an error.
func (m *Manager[T]) Resolve(v any) (T, error) {
	var zero T

	switch x := v.(type) {
	case nil:
		return zero, nil
	case T:
		if x.scopeID() != m.scope {
			return zero, fmt.Errorf("%w: entity %s", ErrWrongScope, x.EntityID())
		}
		return x, nil
	case snowflake.ID:
		e, _ := m.Get(x)
		return e, nil
	case uint64:
		e, _ := m.Get(snowflake.ID(x))
		return e, nil
	case string:
		if id, err := snowflake.Parse(x); err == nil {
			if e, ok := m.Get(id); ok {
				return e, nil
			}
		}
		return m.byName(x), nil
	}
	return zero, nil
}

// ResolveID performs the same resolution as Resolve but stops at the
// identity, for call sites that only need the key.
func (m *Manager[T]) ResolveID(v any) (snowflake.ID, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case T:
		if x.scopeID() != m.scope {
			return 0, fmt.Errorf("%w: entity %s", ErrWrongScope, x.EntityID())
		}
		return x.EntityID(), nil
	case snowflake.ID:
		return x, nil
	case uint64:
		return snowflake.ID(x), nil
	case string:
		if id, err := snowflake.Parse(x); err == nil {
			return id, nil
		}
		var zero T
		if e := m.byName(x); e != zero {
			return e.EntityID(), nil
		}
	}
	return 0, nil
}

func (m *Manager[T]) byName(name string) T {
	var zero T
	if m.nameOf == nil {
		return zero
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if m.nameOf(e.value) == name {
			return e.value
		}
	}
	return zero
}

// Len reports the number of cached entities.
func (m *Manager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// ForEach calls fn for every cached entity. fn must not call back into
// the manager.
func (m *Manager[T]) ForEach(fn func(T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		fn(e.value)
	}
}

// Sweep evicts entries whose last update is older than maxAge and
// reports how many were removed. Eviction hooks run after the lock is
// released.
func (m *Manager[T]) Sweep(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	var evicted []T
	for id, e := range m.entries {
		if e.touched.Before(cutoff) {
			delete(m.entries, id)
			evicted = append(evicted, e.value)
		}
	}
	m.mu.Unlock()

	if m.onEvict != nil {
		for _, v := range evicted {
			m.onEvict(v)
		}
	}
	return len(evicted)
}
