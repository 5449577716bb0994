// Package modifiers provides the layered passive-modifier substrate used
// throughout the ability engine (spec §4.3 "passive modifiers") and the
// entity model's effective_stats computation (spec §4.1). It is a direct
// adaptation of the teacher's ships/modifiers.go + ships/modifier_stack.go:
// the same additive-composition, prioritized-layer design, re-keyed from
// ship-DPS stats to TI4 unit stats.
package modifiers

// UnitStatMods are soft modifiers applied to a unit's base stats by
// upgrade technologies, active laws, and transient ability effects.
// Deltas are integer offsets; percentages (Pct) are additive across
// sources. Resolve only sums CombatHitsBonusPct; neither it nor
// units.EffectiveStats applies it to any roll or hit count.
type UnitStatMods struct {
	CombatDelta           int // +/- to the die value needed to hit (negative is better)
	CombatRerollBonus      int // extra rerolls granted to this unit's combat dice
	MoveDelta             int
	CapacityDelta         int
	ProductionDelta       int
	BombardmentDelta      int // negative improves the bombardment hit threshold
	SpaceCannonDelta      int // negative improves the space cannon hit threshold
	AntiFighterBarrageDelta int
	SustainDamageGrant    bool // grants sustain damage if the unit doesn't already have it
	PlanetaryShieldGrant  bool
	CombatHitsBonusPct    float64 // % bonus to produced hits (e.g. flagship abilities); summed only, not applied to hits
}

// CombineMods adds b into a and returns the result (linear composition,
// same as the teacher's CombineMods). Booleans are OR-composed.
func CombineMods(a, b UnitStatMods) UnitStatMods {
	a.CombatDelta += b.CombatDelta
	a.CombatRerollBonus += b.CombatRerollBonus
	a.MoveDelta += b.MoveDelta
	a.CapacityDelta += b.CapacityDelta
	a.ProductionDelta += b.ProductionDelta
	a.BombardmentDelta += b.BombardmentDelta
	a.SpaceCannonDelta += b.SpaceCannonDelta
	a.AntiFighterBarrageDelta += b.AntiFighterBarrageDelta
	a.SustainDamageGrant = a.SustainDamageGrant || b.SustainDamageGrant
	a.PlanetaryShieldGrant = a.PlanetaryShieldGrant || b.PlanetaryShieldGrant
	a.CombatHitsBonusPct += b.CombatHitsBonusPct
	return a
}

// Source identifies where a modifier layer comes from, matching the
// teacher's ModifierSource enumeration re-keyed to TI4 sources.
type Source string

const (
	SourceUnitUpgrade Source = "unit_upgrade" // applied tech that upgrades a unit type
	SourceLaw         Source = "law"          // a currently enacted Agenda law
	SourceAbility     Source = "ability"      // an active or triggered ability effect
	SourceEnvironment Source = "environment"  // nebula, gravity rift, anomaly effects
	SourceFaction     Source = "faction"      // faction sheet passive
	SourceLeader      Source = "leader"       // agent/commander/hero passive
)

// Priority constants mirror the teacher's ordering so layers always
// resolve base -> upgrade -> faction -> law -> leader -> environment -> ability,
// i.e. the most situational modifier applies last and is easiest to reason
// about when debugging a stack trace of layers.
const (
	PriorityUnitUpgrade = 100
	PriorityFaction     = 200
	PriorityLaw         = 300
	PriorityLeader      = 400
	PriorityEnvironment = 500
	PriorityAbility     = 600
)

// Layer is a single named contribution to a Stack.
type Layer struct {
	Source      Source
	SourceID    string // stable id of the law/tech/ability/leader contributing this layer
	Description string
	Mods        UnitStatMods
	Priority    int
}

// Stack is an ordered collection of modifier layers that resolve into a
// single UnitStatMods. Keeping layers (rather than folding immediately)
// lets callers explain "why is this unit's combat value 7" by walking the
// stack, same motivation as the teacher's ModifierStack.
type Stack struct {
	Layers []Layer
}

func NewStack() *Stack {
	return &Stack{Layers: []Layer{}}
}

func (s *Stack) Add(l Layer) {
	s.Layers = append(s.Layers, l)
}

// Resolve composes all layers in priority order into one UnitStatMods.
func (s *Stack) Resolve() UnitStatMods {
	ordered := append([]Layer(nil), s.Layers...)
	// stable insertion-order sort by priority (simple, layer counts are tiny)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Priority < ordered[j-1].Priority; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	var total UnitStatMods
	for _, l := range ordered {
		total = CombineMods(total, l.Mods)
	}
	return total
}
