package tactical

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/failure"
	"github.com/nicoberrocal/ti4engine/internal/units"
)

// ProductionOrder is one space dock's build order for Step 5 (spec §6.1
// PerformTacticalAction.Produce).
type ProductionOrder struct {
	SpaceDockID bson.ObjectID
	Build       []units.Type
}

// Cost computes the total resource cost of an order, honoring the
// dual-icon cost rule (fighters/infantry: one cost unit builds two units,
// spec §4.4 Step 5). Structures (cost 0, IsStructure) cannot be produced
// this way.
func Cost(order ProductionOrder) (int, *failure.Failure) {
	total := 0
	counts := map[units.Type]int{}
	for _, t := range order.Build {
		if t.IsStructure() {
			return 0, failure.Violation("production.structures_not_buildable", "structures cannot be produced through the Production ability")
		}
		counts[t]++
	}
	for t, n := range counts {
		bp, ok := units.Blueprints[t]
		if !ok {
			return 0, failure.Violation("production.unknown_unit_type", "unknown unit type")
		}
		if bp.DualIconCost {
			total += (n + 1) / 2 * bp.Cost
		} else {
			total += n * bp.Cost
		}
	}
	return total, nil
}

// Placement says where a produced unit goes (spec §4.4 Step 5
// Placement rules): ships into the active system's space area; ground
// forces either onto the planet holding the producing space dock or
// into the space area (LRR 68.4), caller's choice.
type Placement string

const (
	PlacementSpace  Placement = "space"
	PlacementPlanet Placement = "planet"
)

// ValidPlacement reports whether a requested placement is legal for a
// unit type.
func ValidPlacement(t units.Type, p Placement) bool {
	if t.IsGroundForce() {
		return true // either placement is legal for ground forces
	}
	return p == PlacementSpace
}
