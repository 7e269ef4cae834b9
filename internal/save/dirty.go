package save

import "github.com/talgya/aethelgard/internal/ident"

// Tracker records which entities changed since the last save, so
// SaveIncremental can write only what moved instead of the whole world.
// Zero value is ready to use.
type Tracker struct {
	dirty     map[ident.EntityId]struct{}
	created   map[ident.EntityId]struct{}
	destroyed map[ident.EntityId]struct{}
}

// NewTracker returns an empty dirty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		dirty:     make(map[ident.EntityId]struct{}),
		created:   make(map[ident.EntityId]struct{}),
		destroyed: make(map[ident.EntityId]struct{}),
	}
}

// MarkDirty records that e's components changed.
func (t *Tracker) MarkDirty(e ident.EntityId) { t.dirty[e] = struct{}{} }

// MarkCreated records that e is new since the last save.
func (t *Tracker) MarkCreated(e ident.EntityId) {
	t.created[e] = struct{}{}
	t.dirty[e] = struct{}{}
}

// MarkDestroyed records that e was destroyed since the last save. A
// destroyed entity is dropped from the dirty/created sets: its final
// component state is irrelevant once it's gone.
func (t *Tracker) MarkDestroyed(e ident.EntityId) {
	t.destroyed[e] = struct{}{}
	delete(t.dirty, e)
	delete(t.created, e)
}

// DirtyEntities returns every entity marked dirty (including created
// ones), order unspecified.
func (t *Tracker) DirtyEntities() []ident.EntityId {
	out := make([]ident.EntityId, 0, len(t.dirty))
	for e := range t.dirty {
		out = append(out, e)
	}
	return out
}

// CreatedEntities returns every entity marked created, order
// unspecified.
func (t *Tracker) CreatedEntities() []ident.EntityId {
	out := make([]ident.EntityId, 0, len(t.created))
	for e := range t.created {
		out = append(out, e)
	}
	return out
}

// DestroyedEntities returns every entity marked destroyed, order
// unspecified.
func (t *Tracker) DestroyedEntities() []ident.EntityId {
	out := make([]ident.EntityId, 0, len(t.destroyed))
	for e := range t.destroyed {
		out = append(out, e)
	}
	return out
}

// Reset clears all tracked state. Called after a successful save of any
// kind establishes a new baseline.
func (t *Tracker) Reset() {
	t.dirty = make(map[ident.EntityId]struct{})
	t.created = make(map[ident.EntityId]struct{})
	t.destroyed = make(map[ident.EntityId]struct{})
}
