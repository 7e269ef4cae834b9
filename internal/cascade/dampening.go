package cascade

import "github.com/talgya/aethelgard/internal/event"

// DampenedProbability applies exponential dampening over depth:
// base * (1 - dampening)^depth. depth <= 0 returns base unchanged.
func DampenedProbability(base, dampening float64, depth int) float64 {
	if depth <= 0 {
		return base
	}
	factor := 1.0
	remaining := 1 - dampening
	for i := 0; i < depth; i++ {
		factor *= remaining
	}
	return base * factor
}

// AdjustDampeningForSignificance scales base dampening by how notable
// the source event was: highly significant events (sig >= 80) dampen
// cascades less (up to 40% reduction), forgettable ones (sig < 30)
// dampen more (up to 50% increase). Result is clamped to [0,1].
func AdjustDampeningForSignificance(base float64, sig int32) float64 {
	adjusted := base
	switch {
	case sig >= 80:
		t := float64(sig-80) / 20.0
		if t > 1 {
			t = 1
		}
		adjusted = base * (1 - 0.4*t)
	case sig < 30:
		t := float64(30-sig) / 30.0
		if t > 1 {
			t = 1
		}
		adjusted = base * (1 + 0.5*t)
	}
	return clamp01(adjusted)
}

// ShouldContinueCascade reports whether p still clears threshold (the
// kernel's default is 0.01, see Engine.minProbabilityThreshold).
func ShouldContinueCascade(p, threshold float64) bool { return p >= threshold }

// UndefinedTransitionPenalty multiplies effective probability when
// crossDomainModifier finds no defined transition between categories.
const UndefinedTransitionPenalty = 0.1

type transition struct {
	target     event.Category
	multiplier float64
}

// crossDomainTable maps each of the ten source categories to a small
// set of plausible target categories with a probability multiplier.
// Entries are illustrative defaults — external subsystems own the
// actual narrative meaning of a transition; the kernel only supplies a
// static table so cascade math has numbers to work with in the absence
// of caller-supplied rules.
var crossDomainTable = map[event.Category][]transition{
	event.Military: {
		{event.Political, 0.8}, {event.Economic, 0.6}, {event.Personal, 0.5},
	},
	event.Political: {
		{event.Military, 0.6}, {event.Religious, 0.4}, {event.Cultural, 0.3},
	},
	event.Religious: {
		{event.Cultural, 0.7}, {event.Political, 0.4}, {event.Magical, 0.3},
	},
	event.Personal: {
		{event.Political, 0.3}, {event.Cultural, 0.3},
	},
	event.Economic: {
		{event.Political, 0.5}, {event.Military, 0.3}, {event.Personal, 0.4},
	},
	event.Disaster: {
		{event.Economic, 0.7}, {event.Political, 0.5}, {event.Personal, 0.6},
	},
	event.Magical: {
		{event.Religious, 0.6}, {event.Disaster, 0.3}, {event.Scientific, 0.2},
	},
	event.Cultural: {
		{event.Religious, 0.4}, {event.Political, 0.3},
	},
	event.Scientific: {
		{event.Economic, 0.5}, {event.Magical, 0.2}, {event.Cultural, 0.3},
	},
	event.Exploratory: {
		{event.Economic, 0.5}, {event.Scientific, 0.4}, {event.Cultural, 0.3},
	},
}

// CrossDomainModifier looks up the probability multiplier for a
// transition from source to target. ok is false when no transition is
// defined, in which case callers apply UndefinedTransitionPenalty.
func CrossDomainModifier(source, target event.Category) (multiplier float64, ok bool) {
	for _, t := range crossDomainTable[source] {
		if t.target == target {
			return t.multiplier, true
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
