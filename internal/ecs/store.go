package ecs

import (
	"reflect"

	"github.com/talgya/aethelgard/internal/codec"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
)

// Store is a mapping from EntityId to a component of a single
// registered type T. Stores are iterable in insertion order for
// queries and serialization.
type Store[T any] struct {
	name string
	data map[ident.EntityId]T
	ord  []ident.EntityId
}

func newStore[T any](name string) *Store[T] {
	return &Store[T]{name: name, data: make(map[ident.EntityId]T)}
}

// TypeName is the store's serialized type name.
func (s *Store[T]) TypeName() string { return s.name }

// Len returns the number of rows in the store.
func (s *Store[T]) Len() int { return len(s.ord) }

// Order returns entity ids in insertion order. Callers must not rely on
// the ordering remaining stable across insertions.
func (s *Store[T]) Order() []ident.EntityId {
	out := make([]ident.EntityId, len(s.ord))
	copy(out, s.ord)
	return out
}

func (s *Store[T]) has(e ident.EntityId) bool {
	_, ok := s.data[e]
	return ok
}

func (s *Store[T]) remove(e ident.EntityId) bool {
	if _, ok := s.data[e]; !ok {
		return false
	}
	delete(s.data, e)
	for i, id := range s.ord {
		if id == e {
			s.ord = append(s.ord[:i], s.ord[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store[T]) get(e ident.EntityId) (T, bool) {
	v, ok := s.data[e]
	return v, ok
}

func (s *Store[T]) set(e ident.EntityId, v T) {
	if _, exists := s.data[e]; !exists {
		s.ord = append(s.ord, e)
	}
	s.data[e] = v
}

// RawEntries returns every (entity, component) row in insertion order,
// boxed as `any` for the type-erased ComponentStore interface.
func (s *Store[T]) RawEntries() []RawEntry {
	out := make([]RawEntry, len(s.ord))
	for i, e := range s.ord {
		out[i] = RawEntry{Entity: e, Data: s.data[e]}
	}
	return out
}

// DecodeAndSet decodes raw JSON into a fresh T and stores it under e.
// Used by the save loader and snapshot restore path, which only ever
// see component data as bytes, never as a compile-time T.
func (s *Store[T]) DecodeAndSet(e ident.EntityId, raw []byte) error {
	var v T
	if err := codec.Decode(raw, &v); err != nil {
		return err
	}
	s.set(e, v)
	return nil
}

func componentTypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func storeFor[T any](w *World) (*Store[T], bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	cs, ok := w.stores[t]
	if !ok {
		return nil, false
	}
	return cs.(*Store[T]), true
}

// RegisterComponent creates an empty store for T, named after T's Go
// type name. Re-registering the same type is a no-op: it neither
// throws nor clears the existing store.
func RegisterComponent[T any](w *World) {
	RegisterComponentNamed[T](w, componentTypeName[T]())
}

// RegisterComponentNamed is RegisterComponent with an explicit
// serialized type name, for callers that want the save-file "type"
// field to differ from the Go type name.
func RegisterComponentNamed[T any](w *World, name string) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := w.stores[t]; ok {
		return
	}
	s := newStore[T](name)
	w.stores[t] = s
	w.storesByName[name] = t
}

// HasStore reports whether T has a registered component store.
func HasStore[T any](w *World) bool {
	_, ok := storeFor[T](w)
	return ok
}

// AddComponent overwrites any existing row of type T on e. Fails with
// kernelerr.ErrStoreUnregistered if the store is absent, or
// kernelerr.ErrEntityDead if e is not alive.
func AddComponent[T any](w *World, e ident.EntityId, c T) error {
	s, ok := storeFor[T](w)
	if !ok {
		return kernelerr.ErrStoreUnregistered
	}
	if !w.IsAlive(e) {
		return kernelerr.ErrEntityDead
	}
	s.set(e, c)
	return nil
}

// GetComponent returns e's component of type T, if present. A missing
// component or entity is an absent result (ok=false), never an error.
func GetComponent[T any](w *World, e ident.EntityId) (T, bool) {
	s, ok := storeFor[T](w)
	if !ok {
		var zero T
		return zero, false
	}
	return s.get(e)
}

// RemoveComponent deletes e's component of type T, if any, and reports
// whether a row was removed.
func RemoveComponent[T any](w *World, e ident.EntityId) bool {
	s, ok := storeFor[T](w)
	if !ok {
		return false
	}
	return s.remove(e)
}

// Query returns entity ids with a component of type T, in insertion
// order.
func Query[T any](w *World) []ident.EntityId {
	s, ok := storeFor[T](w)
	if !ok {
		return nil
	}
	return s.Order()
}
