package ecs

import "encoding/json"

// Position is one of the kernel's two built-in fixed-schema component
// types (the other being Tag). External subsystems define their own
// domain components (Health, Relationship, and so on); the kernel only
// ships the handful it needs for its own tests and for entities that
// are themselves events.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Tag is a bare label component, useful for marking entities (e.g.
// "this entity is an event of category Disaster") without a dedicated
// schema.
type Tag struct {
	Name string `json:"name"`
}

// Opaque is the escape hatch named in spec §9: a tagged payload holding
// subsystem-specific data the kernel never interprets. Only the
// serialization layer (internal/codec) walks its contents, via the
// Map/Set tag protocol where the producer chose to use codec.Map /
// codec.Set inside Value.
type Opaque struct {
	Value json.RawMessage `json:"value"`
}
