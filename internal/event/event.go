// Package event defines the kernel's Event record and its declarative
// consequence-rule vocabulary. Event is shared by internal/eventlog,
// internal/eventbus, internal/eventqueue, and internal/cascade — it is
// the one type that crosses all four.
package event

import "github.com/talgya/aethelgard/internal/ident"

// Category is one of the ten fixed event categories named in spec §3.
type Category uint8

const (
	Military Category = iota
	Political
	Religious
	Personal
	Economic
	Disaster
	Magical
	Cultural
	Scientific
	Exploratory
)

var categoryNames = [...]string{
	Military: "military", Political: "political", Religious: "religious",
	Personal: "personal", Economic: "economic", Disaster: "disaster",
	Magical: "magical", Cultural: "cultural", Scientific: "scientific",
	Exploratory: "exploratory",
}

// String renders the category's lowercase name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// AllCategories lists the ten categories in declaration order — used by
// the cross-domain table and by tests that must exercise every source
// category.
func AllCategories() []Category {
	return []Category{Military, Political, Religious, Personal, Economic,
		Disaster, Magical, Cultural, Scientific, Exploratory}
}

// ConsequenceRule is a declarative rule attached to an event: if this
// event fires, a consequence of this shape may be scheduled.
type ConsequenceRule struct {
	EventSubtype    string   `json:"event_subtype"`
	BaseProbability float64  `json:"base_probability"`
	Category        Category `json:"category"`
	DelayTicks      int64    `json:"delay_ticks"`
	Dampening       float64  `json:"dampening"`
}

// Event is the kernel's immutable (save for Consequences, appended when
// a cascade link forms) record of something that happened.
type Event struct {
	ID                   ident.EventId       `json:"id"`
	Category             Category            `json:"category"`
	Subtype              string              `json:"subtype"`
	Timestamp            uint64              `json:"timestamp"`
	Participants         []ident.EntityId    `json:"participants"`
	Location             *ident.SiteId       `json:"location,omitempty"`
	Causes               []ident.EventId     `json:"causes"`
	Consequences         []ident.EventId     `json:"consequences"`
	Data                 map[string]any      `json:"data"`
	Significance         int32               `json:"significance"`
	ConsequencePotential []ConsequenceRule   `json:"consequencePotential"`
	TemporalOffset       *int32              `json:"temporalOffset,omitempty"`
}

// PendingConsequence is a scheduled-but-unfired consequence, tracked by
// the cascade engine.
type PendingConsequence struct {
	Rule                 ConsequenceRule
	SourceEventID        ident.EventId
	FireTick             uint64
	Depth                int
	EffectiveProbability float64
}
