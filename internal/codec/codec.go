// Package codec implements the kernel's serialization primitives: the
// tagged Map/Set container protocol required for cross-implementation
// save-file compatibility, and the function-stripping pass applied to
// component and event payloads before they hit encoding/json.
//
// The normative wire shapes (see spec §4.K) are:
//
//	Map → {"__t":"M","d":[[k,v], …]}
//	Set → {"__t":"S","d":[v, …]}
//
// Everything else is plain encoding/json — component structs, Event
// structs, and the rest of the save payload round-trip through the
// standard library directly. Map and Set only need special treatment
// because a bare JSON object can't distinguish "this was a Go map" from
// "this was a struct", and bare JSON has no Set concept at all.
package codec

import "encoding/json"

// Map is an order-preserving, JSON-tagged associative container. Use it
// wherever dynamic (non-statically-typed) payload data needs map
// semantics that must round-trip distinguishably from a plain object —
// the kernel's own Opaque component payloads are the typical caller.
type Map[K comparable, V any] struct {
	pairs []pair[K, V]
	index map[K]int
}

type pair[K comparable, V any] struct {
	Key K
	Val V
}

// NewMap returns an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]int)}
}

// Set inserts or overwrites the value for key, preserving first-insertion order.
func (m *Map[K, V]) Set(key K, val V) {
	if m.index == nil {
		m.index = make(map[K]int)
	}
	if i, ok := m.index[key]; ok {
		m.pairs[i].Val = val
		return
	}
	m.index[key] = len(m.pairs)
	m.pairs = append(m.pairs, pair[K, V]{Key: key, Val: val})
}

// Get returns the value for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m.index == nil {
		return zero, false
	}
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.pairs[i].Val, true
}

// Delete removes key, preserving the order of remaining entries.
func (m *Map[K, V]) Delete(key K) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
	delete(m.index, key)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return len(m.pairs) }

// Range calls fn for every entry in insertion order. Stop iterating (fn
// returning false) is not supported — ranges are always exhaustive,
// matching the kernel's "stores are iterable in full" convention.
func (m *Map[K, V]) Range(fn func(key K, val V)) {
	for _, p := range m.pairs {
		fn(p.Key, p.Val)
	}
}

type taggedMapWire[K, V any] struct {
	Tag string    `json:"__t"`
	D   [][2]any `json:"d"`
}

// MarshalJSON implements the {"__t":"M","d":[[k,v], …]} wire protocol.
func (m Map[K, V]) MarshalJSON() ([]byte, error) {
	d := make([][2]any, len(m.pairs))
	for i, p := range m.pairs {
		d[i] = [2]any{p.Key, p.Val}
	}
	return json.Marshal(taggedMapWire[K, V]{Tag: "M", D: d})
}

// UnmarshalJSON parses the {"__t":"M","d":[[k,v], …]} wire protocol.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tag string            `json:"__t"`
		D   []json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Map[K, V]{index: make(map[K]int)}
	for _, entryRaw := range raw.D {
		var kv [2]json.RawMessage
		if err := json.Unmarshal(entryRaw, &kv); err != nil {
			return err
		}
		var k K
		var v V
		if err := json.Unmarshal(kv[0], &k); err != nil {
			return err
		}
		if err := json.Unmarshal(kv[1], &v); err != nil {
			return err
		}
		m.Set(k, v)
	}
	return nil
}

// Set is an order-preserving, JSON-tagged set container. Round-trips
// distinguishably from a bare JSON array via the {"__t":"S","d":[...]}
// wire protocol.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// NewSet returns an empty Set.
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{index: make(map[T]struct{})}
}

// Add inserts v if not already present.
func (s *Set[T]) Add(v T) {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
}

// Has reports whether v is a member.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Remove deletes v if present.
func (s *Set[T]) Remove(v T) {
	if _, ok := s.index[v]; !ok {
		return
	}
	delete(s.index, v)
	for i, item := range s.items {
		if item == v {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
}

// Len returns the number of members.
func (s *Set[T]) Len() int { return len(s.items) }

// Items returns the members in insertion order. The caller must not
// mutate the returned slice.
func (s *Set[T]) Items() []T { return s.items }

type taggedSetWire[T any] struct {
	Tag string `json:"__t"`
	D   []T    `json:"d"`
}

// MarshalJSON implements the {"__t":"S","d":[v, …]} wire protocol.
func (s Set[T]) MarshalJSON() ([]byte, error) {
	items := s.items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(taggedSetWire[T]{Tag: "S", D: items})
}

// UnmarshalJSON parses the {"__t":"S","d":[v, …]} wire protocol.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tag string `json:"__t"`
		D   []T    `json:"d"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Set[T]{index: make(map[T]struct{})}
	for _, v := range raw.D {
		s.Add(v)
	}
	return nil
}

// Encode marshals v to JSON after stripping function-valued fields.
// Components and events pass through here on their way into a save
// payload or snapshot.
func Encode(v any) (json.RawMessage, error) {
	stripped := stripFuncs(v)
	return json.Marshal(stripped)
}

// Decode unmarshals raw into out. Concrete component/event types are
// always the target, so encoding/json already dispatches to Map/Set's
// custom UnmarshalJSON wherever one appears as a field.
func Decode(raw json.RawMessage, out any) error {
	return json.Unmarshal(raw, out)
}
