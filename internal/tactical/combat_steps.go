package tactical

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/combat"
	"github.com/nicoberrocal/ti4engine/internal/rng"
)

// CombatantShip is the minimal shape the space/ground combat round loop
// needs about one ship/ground force: its id, owner, combat value
// (already layered with modifiers -- nebula defender bonus, laws, etc --
// except roll-time rerolls), and whether it can currently sustain
// damage.
type CombatantShip struct {
	UnitID      bson.ObjectID
	Owner       bson.ObjectID
	Dice        int // number of combat dice this unit rolls
	HitOn       int // effective combat value after all non-reroll modifiers
	CanSustain  bool
	AlreadyDamaged bool
}

// RoundResult is the outcome of one combat round (spec §4.4 Step 3,
// items 1-5).
type RoundResult struct {
	AttackerDice []combat.Die
	DefenderDice []combat.Die
	AttackerAssignment combat.AssignmentResult
	DefenderAssignment combat.AssignmentResult
}

// RunCombatRound resolves one space- or ground-combat round: attacker
// rolls fully before defender (spec §4.4 Step 3.2, "per LRR 78.4"), then
// each side assigns its incoming hits via the supplied choosers. Reroll
// windows are the caller's responsibility (opened between Roll and
// AssignHits via combat.ApplyReroll) since they require ability-level
// input this package doesn't have visibility into.
func RunCombatRound(
	attacker, defender []CombatantShip,
	attackerChoose, defenderChoose combat.HitChooser,
	stream *rng.Stream,
) RoundResult {
	attackerSpecs := toSpecs(attacker)
	defenderSpecs := toSpecs(defender)

	attackerDice := combat.Roll(attackerSpecs, stream)
	defenderDice := combat.Roll(defenderSpecs, stream)

	attackerHitsOnDefender := combat.HitCount(attackerDice)
	defenderHitsOnAttacker := combat.HitCount(defenderDice)

	defenderCandidates := ids(defender)
	attackerCandidates := ids(attacker)

	defenderAssignment := combat.AssignHits(attackerHitsOnDefender, defenderCandidates, defenderChoose, sustainLookup(defender))
	attackerAssignment := combat.AssignHits(defenderHitsOnAttacker, attackerCandidates, attackerChoose, sustainLookup(attacker))

	return RoundResult{
		AttackerDice:        attackerDice,
		DefenderDice:        defenderDice,
		AttackerAssignment:  attackerAssignment,
		DefenderAssignment:  defenderAssignment,
	}
}

func toSpecs(ships []CombatantShip) []combat.RollSpec {
	out := make([]combat.RollSpec, 0, len(ships))
	for _, s := range ships {
		if s.Dice <= 0 {
			continue
		}
		out = append(out, combat.RollSpec{UnitID: s.UnitID, Dice: s.Dice, HitOn: s.HitOn})
	}
	return out
}

func ids(ships []CombatantShip) []bson.ObjectID {
	out := make([]bson.ObjectID, 0, len(ships))
	for _, s := range ships {
		out = append(out, s.UnitID)
	}
	return out
}

func sustainLookup(ships []CombatantShip) combat.SustainCapable {
	byID := map[bson.ObjectID]bool{}
	for _, s := range ships {
		byID[s.UnitID] = s.CanSustain && !s.AlreadyDamaged
	}
	return func(unit bson.ObjectID) bool { return byID[unit] }
}

// RemainingAfterRound filters a side's roster down to units that
// survived a round (neither destroyed nor double-hit) — destroyed units
// are dropped, sustain-damaged units are kept but flagged AlreadyDamaged.
func RemainingAfterRound(side []CombatantShip, assignment combat.AssignmentResult) []CombatantShip {
	destroyed := map[bson.ObjectID]bool{}
	for _, id := range assignment.Destroyed {
		destroyed[id] = true
	}
	damaged := map[bson.ObjectID]bool{}
	for _, id := range assignment.SustainedDamage {
		damaged[id] = true
	}
	out := make([]CombatantShip, 0, len(side))
	for _, s := range side {
		if destroyed[s.UnitID] {
			continue
		}
		if damaged[s.UnitID] {
			s.AlreadyDamaged = true
		}
		out = append(out, s)
	}
	return out
}

// BombardmentResult/SpaceCannonResult reuse AssignmentResult directly:
// bombardment and space cannon each produce hits assigned against ground
// forces (bombardment: defender chooses, spec §4.4 Step 4; space cannon
// defense: active player assigns against their own committed ground
// forces, same section).
