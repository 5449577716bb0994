// Package combat implements the Combat Sub-Engine primitives shared by
// space combat, ground combat, bombardment, space cannon, and
// anti-fighter barrage (spec §4.6, component C6). It is grounded on the
// teacher's ships/formation_combat.go (CombatContext / hit-assignment /
// ApplyDamageToStack round structure) re-keyed from continuous-HP combat
// to TI4's threshold-die combat (roll >= unit's combat value produces a
// hit), and uses internal/rng for the injectable deterministic stream
// spec §5 requires.
package combat

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
	"github.com/nicoberrocal/ti4engine/internal/rng"
)

// Die is one rolled combat die: the unit that rolled it, its face value,
// and whether it currently counts as a hit.
type Die struct {
	UnitID   bson.ObjectID
	HitOn    int // the unit's effective combat/bombardment/space-cannon value
	Value    int
	Hit      bool
}

func (d *Die) recompute() { d.Hit = d.Value >= d.HitOn }

// RollSpec is one unit's contribution to a roll batch: how many dice and
// the value needed to hit.
type RollSpec struct {
	UnitID bson.ObjectID
	Dice   int
	HitOn  int
}

// Roll rolls every die for every spec in order (spec §4.6 roll(n, hit_on,
// modifiers); modifiers are folded into HitOn by the caller before
// calling Roll, since combat modifiers apply only to combat rolls per
// spec §4.6's last bullet and callers differ on which rolls get them).
func Roll(specs []RollSpec, stream *rng.Stream) []Die {
	var dice []Die
	for _, s := range specs {
		for i := 0; i < s.Dice; i++ {
			d := Die{UnitID: s.UnitID, HitOn: s.HitOn, Value: stream.D10()}
			d.recompute()
			dice = append(dice, d)
		}
	}
	return dice
}

// HitCount returns how many dice in the batch are hits.
func HitCount(dice []Die) int {
	n := 0
	for _, d := range dice {
		if d.Hit {
			n++
		}
	}
	return n
}

// ApplyReroll rerolls dice[index] if ability hasn't already rerolled it
// this window (Rule 74 / spec §4.3 Rerolls). Returns false if the
// ability has already used its one reroll on this die.
func ApplyReroll(dice []Die, index int, ability abilities.ID, state *abilities.RerollState, stream *rng.Stream) bool {
	if index < 0 || index >= len(dice) {
		return false
	}
	if !state.CanReroll(ability, index) {
		return false
	}
	dice[index].Value = stream.D10()
	dice[index].recompute()
	state.MarkRerolled(ability, index)
	return true
}

// HitChooser selects which of a player's eligible units absorbs each hit
// (spec §4.6 assign_hits: "chooser-selected"). The engine supplies this
// (typically from an AssignCombatHits/AssignSpaceCannonHits intent).
type HitChooser func(remainingHits int, candidates []bson.ObjectID) bson.ObjectID

// SustainCapable reports, for a candidate unit, whether it can currently
// absorb one hit via Sustain Damage (undamaged sustain-capable ship).
type SustainCapable func(unit bson.ObjectID) bool

// AssignmentResult records which units were destroyed and which merely
// took sustain damage.
type AssignmentResult struct {
	Destroyed       []bson.ObjectID
	SustainedDamage []bson.ObjectID
}

// AssignHits assigns `hits` hits one at a time: for each hit, the hit
// player chooses a candidate; if that unit can sustain damage and
// hasn't yet this combat, it's marked damaged instead of destroyed
// (spec §4.6 assign_hits, §4.4 step 3.4).
func AssignHits(hits int, candidates []bson.ObjectID, choose HitChooser, sustainCapable SustainCapable) AssignmentResult {
	var res AssignmentResult
	remaining := append([]bson.ObjectID(nil), candidates...)
	sustained := map[bson.ObjectID]bool{}
	for h := 0; h < hits && len(remaining) > 0; h++ {
		target := choose(hits-h, remaining)
		if sustainCapable != nil && sustainCapable(target) && !sustained[target] {
			sustained[target] = true
			res.SustainedDamage = append(res.SustainedDamage, target)
		} else {
			res.Destroyed = append(res.Destroyed, target)
			remaining = removeID(remaining, target)
		}
	}
	return res
}

func removeID(list []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	out := make([]bson.ObjectID, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// RollKind distinguishes which roll family modifiers may apply to.
// Combat modifiers (nebula defender +1, law +X, etc.) apply only to
// RollKindCombat (spec §4.6 last bullet).
type RollKind string

const (
	RollKindSpaceCombat   RollKind = "space_combat"
	RollKindGroundCombat  RollKind = "ground_combat"
	RollKindBombardment   RollKind = "bombardment"
	RollKindSpaceCannon   RollKind = "space_cannon"
	RollKindAntiFighter   RollKind = "anti_fighter_barrage"
)

// AppliesCombatModifiers reports whether combat-roll-only modifiers
// (nebula, combat-boosting laws) apply to this roll kind.
func (k RollKind) AppliesCombatModifiers() bool {
	return k == RollKindSpaceCombat || k == RollKindGroundCombat
}
