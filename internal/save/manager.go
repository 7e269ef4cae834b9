package save

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/aethelgard/internal/codec"
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/worldclock"
)

const (
	autosaveSlots      = 5
	autosavePrefix     = "autosave-"
	yearsBetweenAuto   = 10
	yearsForcingFull   = 100
	payloadSuffix      = ".aet"
	metaSuffix         = ".meta.json"
)

// Manager is the save subsystem: it owns a Storage backend, the last
// known save baseline (for incremental saves), and autosave rotation
// state.
type Manager struct {
	storage Storage
	allocs  *ident.Allocators

	lastFullSaveName string
	lastFullTick     uint64
	lastSaveTick     uint64
	nextAutosaveSlot int
}

// NewManager returns a Manager backed by storage. allocs is the
// world-wide id allocator set, used to mint SaveIds.
func NewManager(storage Storage, allocs *ident.Allocators) *Manager {
	return &Manager{storage: storage, allocs: allocs}
}

// SaveFull writes a full save named name (without extension): a gzip'd
// JSON payload plus a plain-JSON sidecar metadata file.
func (m *Manager) SaveFull(name string, w *ecs.World, clock *worldclock.Clock, log *eventlog.Log, meta map[string]string) (ident.SaveId, error) {
	id := m.allocs.NextSave()
	payload := buildFullPayload(w, clock, log, meta)

	if err := m.writePayload(name, payload.Version, payload, meta, id); err != nil {
		return 0, err
	}

	m.lastFullSaveName = name
	m.lastFullTick = clock.CurrentTick()
	m.lastSaveTick = clock.CurrentTick()
	return id, nil
}

// SaveIncremental writes a delta save against the last full save. If no
// prior full save exists, it transparently produces a full save instead
// (per spec.md §4.K's documented fallback).
func (m *Manager) SaveIncremental(name string, w *ecs.World, clock *worldclock.Clock, log *eventlog.Log, tracker *Tracker, meta map[string]string) (ident.SaveId, error) {
	if m.lastFullSaveName == "" {
		return m.SaveFull(name, w, clock, log, meta)
	}

	id := m.allocs.NextSave()
	payload := buildIncrementalPayload(w, clock, log, tracker, m.lastFullSaveName, m.lastFullTick, meta)

	if err := m.writePayload(name, payload.Version, payload, meta, id); err != nil {
		return 0, err
	}

	m.lastSaveTick = clock.CurrentTick()
	return id, nil
}

func (m *Manager) writePayload(name string, version int, payload any, meta map[string]string, id ident.SaveId) error {
	if err := m.storage.EnsureDir(); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	compressed, err := gzipBytes(raw)
	if err != nil {
		return err
	}

	if err := m.storage.WriteFile(name+payloadSuffix, compressed); err != nil {
		return err
	}

	sidecar, err := json.Marshal(MetaSidecar{ID: id, Version: version, Metadata: meta})
	if err != nil {
		return err
	}
	if err := m.storage.WriteFile(name+metaSuffix, sidecar); err != nil {
		return err
	}

	slog.Info("save written", "name", name, "rawBytes", humanize.Bytes(uint64(len(raw))), "compressedBytes", humanize.Bytes(uint64(len(compressed))))
	return nil
}

func buildFullPayload(w *ecs.World, clock *worldclock.Clock, log *eventlog.Log, meta map[string]string) FullPayload {
	events := log.GetAll()
	alive := w.GetAllEntities()

	var blocks []ComponentBlock
	for _, store := range w.Stores() {
		block := ComponentBlock{Type: store.TypeName()}
		for _, raw := range store.RawEntries() {
			data, err := codec.Encode(raw.Data)
			if err != nil {
				continue
			}
			block.Entries = append(block.Entries, ComponentRow{Entity: raw.Entity, Data: data})
		}
		blocks = append(blocks, block)
	}

	metaWithCounts := cloneMeta(meta)
	metaWithCounts["entityCount"] = fmt.Sprintf("%d", len(alive))
	metaWithCounts["eventCount"] = fmt.Sprintf("%d", len(events))
	metaWithCounts["isIncremental"] = "false"

	return FullPayload{
		Version:         CurrentVersion,
		Metadata:        metaWithCounts,
		Tick:            clock.CurrentTick(),
		RegisteredTypes: w.RegisteredTypeNames(),
		MaxEntityID:     int32(w.Allocators().HighWaterEntity()),
		AliveEntityIDs:  alive,
		Components:      blocks,
		Events:          events,
	}
}

func buildIncrementalPayload(w *ecs.World, clock *worldclock.Clock, log *eventlog.Log, tracker *Tracker, baseName string, baseTick uint64, meta map[string]string) IncrementalPayload {
	dirty := tracker.DirtyEntities()
	dirtySet := make(map[ident.EntityId]struct{}, len(dirty))
	for _, e := range dirty {
		dirtySet[e] = struct{}{}
	}

	var blocks []ComponentBlock
	for _, store := range w.Stores() {
		block := ComponentBlock{Type: store.TypeName()}
		for _, raw := range store.RawEntries() {
			if _, ok := dirtySet[raw.Entity]; !ok {
				continue
			}
			data, err := codec.Encode(raw.Data)
			if err != nil {
				continue
			}
			block.Entries = append(block.Entries, ComponentRow{Entity: raw.Entity, Data: data})
		}
		if len(block.Entries) > 0 {
			blocks = append(blocks, block)
		}
	}

	var newEvents []event.Event
	for _, e := range log.GetInTickRange(baseTick, clock.CurrentTick()) {
		newEvents = append(newEvents, e)
	}

	metaWithCounts := cloneMeta(meta)
	metaWithCounts["entityCount"] = fmt.Sprintf("%d", len(dirty))
	metaWithCounts["isIncremental"] = "true"

	return IncrementalPayload{
		Version:            CurrentVersion,
		Metadata:           metaWithCounts,
		BaseSaveName:       baseName,
		BaseTick:           baseTick,
		CurrentTick:        clock.CurrentTick(),
		ChangedComponents:  blocks,
		DestroyedEntityIDs: tracker.DestroyedEntities(),
		NewEntityIDs:       tracker.CreatedEntities(),
		NewEvents:          newEvents,
	}
}

func cloneMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta)+4)
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func gzipBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(compressed []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

// CheckAutoSave is invoked once per tick. It triggers a rotating
// autosave when yearsSinceLastSave >= 10; the autosave is full if
// yearsSinceLastSave >= 100 or no prior full save exists, otherwise
// incremental.
func (m *Manager) CheckAutoSave(w *ecs.World, clock *worldclock.Clock, log *eventlog.Log, tracker *Tracker, meta map[string]string) error {
	yearsSinceLastSave := yearsBetween(m.lastSaveTick, clock.CurrentTick())
	if yearsSinceLastSave < yearsBetweenAuto {
		return nil
	}

	slot := m.nextAutosaveSlot
	slotName := fmt.Sprintf("%s%d", autosavePrefix, slot)

	// After writing slot k, slot (k+1) mod autosaveSlots is deleted if
	// present — a one-ahead ring eviction, not a "delete before write".
	nextSlot := (slot + 1) % autosaveSlots
	nextSlotName := fmt.Sprintf("%s%d", autosavePrefix, nextSlot)

	var err error
	if yearsSinceLastSave >= yearsForcingFull || m.lastFullSaveName == "" {
		_, err = m.SaveFull(slotName, w, clock, log, meta)
	} else {
		_, err = m.SaveIncremental(slotName, w, clock, log, tracker, meta)
	}
	if err != nil {
		return err
	}

	if err := m.storage.DeleteFile(nextSlotName + payloadSuffix); err != nil {
		return err
	}
	if err := m.storage.DeleteFile(nextSlotName + metaSuffix); err != nil {
		return err
	}

	tracker.Reset()
	m.nextAutosaveSlot = nextSlot
	return nil
}

func yearsBetween(fromTick, toTick uint64) uint64 {
	if toTick < fromTick {
		return 0
	}
	return (toTick - fromTick) / worldclock.Annual
}
