// Package save implements full and incremental world persistence:
// gzip'd JSON payloads on a pluggable Storage, a rotating autosave
// ring, and a derived SQLite catalog for fast listing.
package save

import (
	"encoding/json"
	"errors"

	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/ident"
)

// CurrentVersion is the only payload version this package writes or
// accepts on load.
const CurrentVersion = 1

// ErrFileNotFound is returned by a Storage backend's ReadFile when name
// does not exist. A storage-layer error, not a kernelerr sentinel;
// LoadFull and LoadIncremental return it unchanged when the payload file
// is missing.
var ErrFileNotFound = errors.New("save: file not found")

// ComponentRow is one (entity, component data) pair inside a
// ComponentBlock.
type ComponentRow struct {
	Entity ident.EntityId  `json:"entityId"`
	Data   json.RawMessage `json:"data"`
}

// ComponentBlock groups every row of a single registered component
// type.
type ComponentBlock struct {
	Type    string         `json:"type"`
	Entries []ComponentRow `json:"entries"`
}

// FullPayload is the normative full-save JSON shape (spec §6).
type FullPayload struct {
	Version         int               `json:"version"`
	Metadata        map[string]string `json:"metadata"`
	Tick            uint64            `json:"tick"`
	RegisteredTypes []string          `json:"registeredTypes"`
	MaxEntityID     int32             `json:"maxEntityId"`
	AliveEntityIDs  []ident.EntityId  `json:"aliveEntityIds"`
	Components      []ComponentBlock  `json:"components"`
	Events          []event.Event     `json:"events"`
}

// IncrementalPayload is a delta save capturing changes since the last
// full save: created/destroyed entities and dirty component rows, plus
// any events appended since. Chained incremental-on-incremental replay
// is explicitly not supported (see DESIGN.md) — BaseSaveName must name a
// full save.
type IncrementalPayload struct {
	Version           int               `json:"version"`
	Metadata          map[string]string `json:"metadata"`
	BaseSaveName      string            `json:"baseSaveName"`
	BaseTick          uint64            `json:"baseTick"`
	CurrentTick       uint64            `json:"currentTick"`
	ChangedComponents []ComponentBlock  `json:"changedComponents"`
	DestroyedEntityIDs []ident.EntityId `json:"destroyedEntityIds"`
	NewEntityIDs      []ident.EntityId  `json:"newEntityIds"`
	NewEvents         []event.Event     `json:"newEvents"`
}

// MetaSidecar is the `<name>.meta.json` fast-listing sidecar.
type MetaSidecar struct {
	ID       ident.SaveId      `json:"id"`
	Version  int               `json:"version"`
	Metadata map[string]string `json:"metadata"`
}
