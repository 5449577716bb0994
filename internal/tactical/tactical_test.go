package tactical

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/galaxy"
)

func buildLine(g *galaxy.Galaxy, coords []galaxy.HexCoord) []bson.ObjectID {
	ids := make([]bson.ObjectID, len(coords))
	for i, c := range coords {
		id := bson.NewObjectID()
		g.Systems[id] = &galaxy.SystemTile{ID: id, Coord: c, Color: galaxy.TileBlue}
		ids[i] = id
	}
	return ids
}

func TestPathCost_SimpleAdjacentChain(t *testing.T) {
	g := galaxy.New(bson.NewObjectID())
	ids := buildLine(g, []galaxy.HexCoord{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}})

	cost, rifts, nebula, ok := PathCost(g, ids)
	if !ok {
		t.Fatalf("expected a valid path")
	}
	if cost != 2 || rifts != 0 || nebula {
		t.Errorf("got cost=%d rifts=%d nebula=%v, want cost=2 rifts=0 nebula=false", cost, rifts, nebula)
	}
}

func TestPathCost_AsteroidFieldBlocksTransit(t *testing.T) {
	g := galaxy.New(bson.NewObjectID())
	ids := buildLine(g, []galaxy.HexCoord{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}})
	g.Systems[ids[1]].Anomalies = []galaxy.AnomalyKind{galaxy.AnomalyAsteroidField}

	if _, _, _, ok := PathCost(g, ids); ok {
		t.Fatalf("path through an asteroid field must be rejected")
	}
}

func TestPathCost_NebulaOnlyEnterableAsDestination(t *testing.T) {
	g := galaxy.New(bson.NewObjectID())
	ids := buildLine(g, []galaxy.HexCoord{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}})
	g.Systems[ids[1]].Anomalies = []galaxy.AnomalyKind{galaxy.AnomalyNebula}

	if _, _, _, ok := PathCost(g, ids); ok {
		t.Fatalf("nebula may only be entered as the final destination")
	}

	destOnly := ids[:2]
	if _, _, nebula, ok := PathCost(g, destOnly); !ok || nebula {
		t.Errorf("entering a nebula as the destination should be valid, and the nebula-at-start flag should stay false")
	}
}

func TestPathCost_GravityRiftCountsEachEntry(t *testing.T) {
	g := galaxy.New(bson.NewObjectID())
	ids := buildLine(g, []galaxy.HexCoord{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}})
	g.Systems[ids[1]].Anomalies = []galaxy.AnomalyKind{galaxy.AnomalyGravityRift}

	_, rifts, _, ok := PathCost(g, ids)
	if !ok {
		t.Fatalf("expected a valid path through a single gravity rift")
	}
	if rifts != 1 {
		t.Errorf("rifts = %d, want 1", rifts)
	}
}

func TestEffectiveMoveForStep_NebulaClampsToOne(t *testing.T) {
	if got := EffectiveMoveForStep(3, true, 0); got != 1 {
		t.Errorf("EffectiveMoveForStep(3,true,0) = %d, want 1", got)
	}
}

func TestEffectiveMoveForStep_RiftsAddOnTopOfBase(t *testing.T) {
	if got := EffectiveMoveForStep(2, false, 2); got != 4 {
		t.Errorf("EffectiveMoveForStep(2,false,2) = %d, want 4", got)
	}
}

func TestGravityRiftDestroyed(t *testing.T) {
	for roll := 1; roll <= 10; roll++ {
		want := roll <= 3
		if got := GravityRiftDestroyed(roll); got != want {
			t.Errorf("GravityRiftDestroyed(%d) = %v, want %v", roll, got, want)
		}
	}
}

func TestCommitGroundForces_MecatolRequiresFee(t *testing.T) {
	if f := CommitGroundForces(true, true, 5); f == nil {
		t.Fatalf("expected rejection when custodians fee is underpaid")
	}
	if f := CommitGroundForces(true, true, 6); f != nil {
		t.Fatalf("expected success when fee is paid in full, got %v", f)
	}
}

func TestCommitGroundForces_NonMecatolNeverChargesFee(t *testing.T) {
	if f := CommitGroundForces(false, true, 0); f != nil {
		t.Fatalf("non-Mecatol commits should never require the custodians fee, got %v", f)
	}
}

func TestCanBombard_PlanetaryShieldBlocksUnlessWarSunOrBacterialWeapon(t *testing.T) {
	if !CanBombard(false, false, false) {
		t.Errorf("no shield present should always allow bombardment")
	}
	if CanBombard(true, false, false) {
		t.Errorf("shield present should block a plain attacker")
	}
	if !CanBombard(true, true, false) {
		t.Errorf("war sun should bypass the shield")
	}
	if !CanBombard(true, false, true) {
		t.Errorf("X-89 Bacterial Weapon should bypass the shield")
	}
}
