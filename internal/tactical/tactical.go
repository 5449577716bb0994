// Package tactical implements the five-step Tactical Action Pipeline
// (spec §4.4, component C4): Activation -> Movement -> Space Combat* ->
// Invasion* -> Production. It is grounded on the teacher's
// ships/formation_combat.go round-resolution shape (CombatContext,
// ExecuteFormationBattleRound) for the Space Combat/Ground Combat round
// loop, and ships/formation.go's state-machine-ish Formation/Assignment
// bookkeeping for how a tactical action's sub-state accumulates across a
// single activation.
package tactical

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/failure"
	"github.com/nicoberrocal/ti4engine/internal/galaxy"
)

// Step is the tactical action's current position in the pipeline.
type Step string

const (
	StepIdle        Step = "idle"
	StepActivation  Step = "activation"
	StepMovement    Step = "movement"
	StepSpaceCombat Step = "space_combat"
	StepInvasion    Step = "invasion"
	StepProduction  Step = "production"
	StepDone        Step = "done"
)

// State is the durable sub-state of one in-progress tactical action,
// held on GameState.Tactical while a tactical action is open (spec
// §3.1 GameState "phase sub-state").
type State struct {
	Player       bson.ObjectID `bson:"player" json:"player"`
	ActiveSystem bson.ObjectID `bson:"activeSystem" json:"activeSystem"`
	Step         Step          `bson:"step" json:"step"`

	MovedUnits map[bson.ObjectID]MovementContribution `bson:"movedUnits,omitempty" json:"movedUnits,omitempty"`
}

// MovementContribution is one ship's declared path into the active
// system (spec §6.1 DeclareMovement).
type MovementContribution struct {
	UnitID bson.ObjectID   `bson:"unitId" json:"unitId"`
	Path   []bson.ObjectID `bson:"path" json:"path"` // system ids, source first, destination (active system) last
	Cargo  []bson.ObjectID `bson:"cargo,omitempty" json:"cargo,omitempty"`
}

// Activate performs Step 1 (spec §4.4 Step 1).
func Activate(g *galaxy.Galaxy, player, system bson.ObjectID, tacticTokens int) (*State, *failure.Failure) {
	sys := g.System(system)
	if sys == nil {
		return nil, failure.Invalid("activation.unknown_system", "system does not exist")
	}
	if sys.ActiveCommandTokenOf != nil && *sys.ActiveCommandTokenOf == player {
		return nil, failure.Invalid("activation.already_active", "system already contains this player's tactic token")
	}
	if tacticTokens < 1 {
		return nil, failure.Violation("activation.no_tokens", "no tokens remaining in tactic pool")
	}
	sys.ActiveCommandTokenOf = &player
	return &State{Player: player, ActiveSystem: system, Step: StepMovement, MovedUnits: map[bson.ObjectID]MovementContribution{}}, nil
}

// PathCost computes the move cost of traversing `path` (one per step)
// and counts the gravity rifts traversed (spec §4.4 Step
// 2: "passing through a gravity rift adds +1 ... for the rest of this
// step"). It returns the number of rift traversals so the caller can
// roll the post-movement gravity-rift destruction check once per ship
// (spec: "roll one die per ship leaving the rift"; multiple rifts in the
// same system count as one rift for destruction but still stack the +1
// per separate rift entered).
func PathCost(g *galaxy.Galaxy, path []bson.ObjectID) (cost int, riftsEntered int, nebulaAtStart bool, ok bool) {
	if len(path) < 2 {
		return 0, 0, false, false
	}
	if first := g.System(path[0]); first != nil && first.HasAnomaly(galaxy.AnomalyNebula) {
		nebulaAtStart = true
	}
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		if !g.IsAdjacent(from, to) {
			return 0, 0, false, false
		}
		toTile := g.System(to)
		if toTile == nil {
			return 0, 0, false, false
		}
		// No system on the path, destination included, may block
		// transit absolutely (asteroid field, supernova).
		isDestination := i == len(path)-1
		if toTile.HasAnomaly(galaxy.AnomalyAsteroidField) || toTile.HasAnomaly(galaxy.AnomalySupernova) {
			return 0, 0, false, false
		}
		if toTile.HasAnomaly(galaxy.AnomalyNebula) && !isDestination {
			// A nebula may only be entered if it is the active (final)
			// system (spec §4.4 Step 2).
			return 0, 0, false, false
		}
		if toTile.HasAnomaly(galaxy.AnomalyGravityRift) {
			riftsEntered++
		}
		cost++
	}
	return cost, riftsEntered, nebulaAtStart, true
}

// EffectiveMoveForStep computes a ship's move value for this movement
// step, applying the nebula-at-start clamp (effective move = 1) and the
// gravity-rift bonus (+1 per rift entered), per spec §4.4 Step 2.
func EffectiveMoveForStep(baseMove int, nebulaAtStart bool, riftsEntered int) int {
	move := baseMove
	if nebulaAtStart {
		move = 1
	}
	return move + riftsEntered
}

// ValidatePath checks a single ship's declared path against the eligibility
// constraints of spec §4.4 Step 2 other than the opponent-ships-blocking
// rule (checked separately, since it needs fleet composition the galaxy
// package alone doesn't resolve) and the fleet-pool/capacity invariants
// (checked by the engine after all contributions are known).
func ValidatePath(g *galaxy.Galaxy, path []bson.ObjectID, baseMove int) *failure.Failure {
	cost, rifts, nebula, ok := PathCost(g, path)
	if !ok {
		return failure.Violation("movement.illegal_path", "path is not a valid sequence of adjacent systems, or crosses a blocking anomaly")
	}
	effective := EffectiveMoveForStep(baseMove, nebula, rifts)
	if cost > effective {
		return failure.Violation("movement.insufficient_move", "path length exceeds effective move value")
	}
	return nil
}

// SourceBlocked reports whether a ship may not move from `system`
// because it already contains the moving player's own command token
// (spec §4.4 Step 2 eligibility: "Source system must not contain the
// moving player's command token").
func SourceBlocked(g *galaxy.Galaxy, system, player bson.ObjectID) bool {
	s := g.System(system)
	if s == nil {
		return false
	}
	return s.ActiveCommandTokenOf != nil && *s.ActiveCommandTokenOf == player
}

// GravityRiftDestroyed reports whether a ship leaving a rift is destroyed:
// results 1-3 destroy the ship (spec §4.4 Step 2).
func GravityRiftDestroyed(roll int) bool {
	return roll >= 1 && roll <= 3
}
