package tactical

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/failure"
	"github.com/nicoberrocal/ti4engine/internal/galaxy"
)

// MecatolCustodiansFee is the influence cost to remove the custodians
// token, checked as a precondition atomic with committing ground forces
// to Mecatol Rex specifically (spec §9 open question 4 decision, §4.4
// Step 4 "Establish Control substep").
const MecatolCustodiansFee = 6

// CustodiansRemovalVP is the victory point awarded the instant the
// custodians token is removed (spec §4.4 Step 4, scenario 3).
const CustodiansRemovalVP = 1

// CommitGroundForces validates and records a commit of ground forces
// from ship transport capacity onto a target planet (spec §4.4 Step 4
// "Commit Ground Forces substep"). If the planet is Mecatol Rex and the
// custodians token is still present, influencePaid must be >= the fee or
// the commit is rejected (open question 4).
func CommitGroundForces(isMecatol bool, custodiansPresent bool, influencePaid int) *failure.Failure {
	if isMecatol && custodiansPresent {
		if influencePaid < MecatolCustodiansFee {
			return failure.Violation("invasion.custodians_fee_unpaid", "must pay 6 influence to remove the custodians token before committing ground forces to Mecatol Rex")
		}
	}
	return nil
}

// CanBombard reports whether a planet may be bombarded: it cannot if a
// unit with Planetary Shield sits on it, except a war sun attacker
// negates the shield for bombardment purposes, and X-89 Bacterial
// Weapon (identified by the caller) is explicitly allowed to ignore it
// regardless (spec §4.4 Step 4 Bombardment substep).
func CanBombard(planetaryShieldPresent, attackerHasWarSun, xenoBacterialWeapon bool) bool {
	if !planetaryShieldPresent {
		return true
	}
	return attackerHasWarSun || xenoBacterialWeapon
}

// EstablishControl performs the Establish Control substep for one planet
// (spec §4.4 Step 4): the active player gains control iff they have
// ground forces on the planet and the defender has none.
func EstablishControl(g *galaxy.Galaxy, planet bson.ObjectID, activePlayer bson.ObjectID, activeHasGroundForces, defenderHasGroundForces bool) bool {
	if !activeHasGroundForces || defenderHasGroundForces {
		return false
	}
	p := g.Planet(planet)
	if p == nil {
		return false
	}
	p.Controller = &activePlayer
	return true
}
