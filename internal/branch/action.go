package branch

import (
	"encoding/json"

	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/ident"
)

// Action is a counterfactual divergence applied to a freshly restored
// branch before it starts ticking. At most one of the pointer fields is
// set; the zero value is a no-op divergence.
type Action struct {
	RemoveCharacter *RemoveCharacterAction
	AddEvent        *AddEventAction
	DifferentSeed   *DifferentSeedAction
	ChangeDecision  *ChangeDecisionAction
	ReverseOutcome  *ReverseOutcomeAction
}

// RemoveCharacterAction destroys a character's underlying entity.
type RemoveCharacterAction struct {
	ID ident.CharacterId
}

// AddEventAction injects an event directly into the branch's log and
// bus, as if it had just happened.
type AddEventAction struct {
	Event event.Event
}

// DifferentSeedAction replaces the branch's random source.
type DifferentSeedAction struct {
	Seed int64
}

// ChangeDecisionAction overlays patch onto characterId's componentType
// component. patch is applied as a raw JSON merge: fields present in
// patch overwrite the corresponding fields of the existing component.
type ChangeDecisionAction struct {
	CharacterID   ident.CharacterId
	ComponentType string
	Patch         json.RawMessage
}

// ReverseOutcomeAction appends a synthetic "<subtype>.reversed" event
// whose data overlays PatchData onto the original event and sets
// reversed=true.
type ReverseOutcomeAction struct {
	EventID   ident.EventId
	PatchData map[string]any
}
