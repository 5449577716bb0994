package combat

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
	"github.com/nicoberrocal/ti4engine/internal/rng"
)

func TestRoll_ProducesOneDiePerRequestedDie(t *testing.T) {
	stream := rng.New([]byte("seed"))
	unit := bson.NewObjectID()
	dice := Roll([]RollSpec{{UnitID: unit, Dice: 3, HitOn: 1}}, stream)

	if len(dice) != 3 {
		t.Fatalf("got %d dice, want 3", len(dice))
	}
	for _, d := range dice {
		if !d.Hit {
			t.Errorf("die with HitOn=1 should always hit, got value %d", d.Value)
		}
	}
}

func TestHitCount_CountsOnlyHits(t *testing.T) {
	dice := []Die{{Hit: true}, {Hit: false}, {Hit: true}}
	if got := HitCount(dice); got != 2 {
		t.Errorf("HitCount() = %d, want 2", got)
	}
}

func TestAssignHits_SustainCapableUnitAbsorbsInsteadOfDying(t *testing.T) {
	unit := bson.NewObjectID()
	choose := func(remaining int, candidates []bson.ObjectID) bson.ObjectID { return candidates[0] }
	sustain := func(u bson.ObjectID) bool { return u == unit }

	res := AssignHits(1, []bson.ObjectID{unit}, choose, sustain)

	if len(res.Destroyed) != 0 {
		t.Errorf("sustain-capable unit should not be destroyed, got %v", res.Destroyed)
	}
	if len(res.SustainedDamage) != 1 || res.SustainedDamage[0] != unit {
		t.Errorf("expected unit to take sustain damage, got %v", res.SustainedDamage)
	}
}

func TestAssignHits_NonSustainUnitIsDestroyed(t *testing.T) {
	unit := bson.NewObjectID()
	choose := func(remaining int, candidates []bson.ObjectID) bson.ObjectID { return candidates[0] }

	res := AssignHits(1, []bson.ObjectID{unit}, choose, nil)

	if len(res.Destroyed) != 1 || res.Destroyed[0] != unit {
		t.Errorf("expected unit to be destroyed, got %v", res.Destroyed)
	}
}

func TestAssignHits_StopsWhenCandidatesExhausted(t *testing.T) {
	unit := bson.NewObjectID()
	choose := func(remaining int, candidates []bson.ObjectID) bson.ObjectID { return candidates[0] }

	res := AssignHits(5, []bson.ObjectID{unit}, choose, nil)

	if len(res.Destroyed) != 1 {
		t.Errorf("expected exactly one destruction once candidates run out, got %v", res.Destroyed)
	}
}

func TestApplyReroll_RespectsOnePerAbilityPerDie(t *testing.T) {
	stream := rng.New([]byte("seed"))
	state := abilities.NewRerollState()
	dice := []Die{{UnitID: bson.NewObjectID(), HitOn: 5, Value: 1}}

	if ok := ApplyReroll(dice, 0, "ability-x", state, stream); !ok {
		t.Fatalf("first reroll of a die by an ability should succeed")
	}
	if ok := ApplyReroll(dice, 0, "ability-x", state, stream); ok {
		t.Fatalf("same ability should not reroll the same die twice")
	}
}

func TestApplyReroll_DifferentAbilitiesCanEachRerollSameDie(t *testing.T) {
	stream := rng.New([]byte("seed"))
	state := abilities.NewRerollState()
	dice := []Die{{UnitID: bson.NewObjectID(), HitOn: 5, Value: 1}}

	if ok := ApplyReroll(dice, 0, "ability-x", state, stream); !ok {
		t.Fatalf("ability-x first reroll should succeed")
	}
	if ok := ApplyReroll(dice, 0, "ability-y", state, stream); !ok {
		t.Fatalf("a distinct ability should be able to reroll the same die")
	}
}

func TestRollKind_AppliesCombatModifiers(t *testing.T) {
	cases := []struct {
		kind    RollKind
		applies bool
	}{
		{RollKindSpaceCombat, true},
		{RollKindGroundCombat, true},
		{RollKindBombardment, false},
		{RollKindSpaceCannon, false},
		{RollKindAntiFighter, false},
	}
	for _, c := range cases {
		if got := c.kind.AppliesCombatModifiers(); got != c.applies {
			t.Errorf("%s.AppliesCombatModifiers() = %v, want %v", c.kind, got, c.applies)
		}
	}
}
