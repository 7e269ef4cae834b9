package branch

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/aethelgard/internal/ident"
)

// applyAction mutates a freshly restored branch in place according to
// action. Exactly one field of action is expected to be non-nil; a
// zero-value Action is a no-op divergence (useful for "run the same
// world forward again" baselines).
func applyAction(b *Branch, action Action) error {
	switch {
	case action.RemoveCharacter != nil:
		b.World.DestroyEntity(characterEntity(action.RemoveCharacter.ID))
		return nil

	case action.AddEvent != nil:
		e := action.AddEvent.Event
		if err := b.Log.Append(e); err != nil {
			return err
		}
		b.Bus.Emit(e)
		return nil

	case action.DifferentSeed != nil:
		b.Seed = action.DifferentSeed.Seed
		b.RandomFn = randomFnFromSeed(b.Seed)
		return nil

	case action.ChangeDecision != nil:
		return applyChangeDecision(b, *action.ChangeDecision)

	case action.ReverseOutcome != nil:
		return applyReverseOutcome(b, *action.ReverseOutcome)

	default:
		return nil
	}
}

// characterEntity maps a CharacterId onto the EntityId backing it. Both
// are, underneath, the same 32-bit allocation space — a character is
// simply an entity the kernel's callers happen to address by a
// differently-branded id.
func characterEntity(c ident.CharacterId) ident.EntityId {
	return ident.ToEntityId(int32(c))
}

func applyChangeDecision(b *Branch, action ChangeDecisionAction) error {
	store, ok := b.World.StoreByName(action.ComponentType)
	if !ok {
		return fmt.Errorf("branch: change decision: component type %q not registered", action.ComponentType)
	}

	entity := characterEntity(action.CharacterID)
	var existing json.RawMessage
	for _, row := range store.RawEntries() {
		if row.Entity != entity {
			continue
		}
		data, err := json.Marshal(row.Data)
		if err != nil {
			return err
		}
		existing = data
		break
	}

	merged, err := mergeJSON(existing, action.Patch)
	if err != nil {
		return err
	}
	return store.DecodeAndSet(entity, merged)
}

// mergeJSON overlays patch's top-level fields onto base, leaving fields
// absent from patch untouched. base may be nil, in which case the
// result is patch verbatim.
func mergeJSON(base, patch json.RawMessage) (json.RawMessage, error) {
	if len(base) == 0 {
		return patch, nil
	}
	var baseFields map[string]json.RawMessage
	if err := json.Unmarshal(base, &baseFields); err != nil {
		return nil, err
	}
	var patchFields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &patchFields); err != nil {
		return nil, err
	}
	for k, v := range patchFields {
		baseFields[k] = v
	}
	return json.Marshal(baseFields)
}

func applyReverseOutcome(b *Branch, action ReverseOutcomeAction) error {
	source, ok := b.Log.GetByID(action.EventID)
	if !ok {
		return fmt.Errorf("branch: reverse outcome: unknown event %s", action.EventID)
	}

	data := make(map[string]any, len(source.Data)+len(action.PatchData)+1)
	for k, v := range source.Data {
		data[k] = v
	}
	for k, v := range action.PatchData {
		data[k] = v
	}
	data["reversed"] = true

	reversed := source
	reversed.ID = ident.ToEventId(b.World.Allocators().NextEntity())
	reversed.Subtype = source.Subtype + ".reversed"
	reversed.Data = data
	reversed.Causes = []ident.EventId{source.ID}
	reversed.Consequences = nil
	reversed.ConsequencePotential = nil

	if err := b.Log.Append(reversed); err != nil {
		return err
	}
	_ = b.Log.LinkCause(source.ID, reversed.ID)
	b.Bus.Emit(reversed)
	return nil
}
