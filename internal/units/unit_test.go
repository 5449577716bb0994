package units

import (
	"testing"

	"github.com/nicoberrocal/ti4engine/internal/modifiers"
)

func TestEffectiveStats_CombatFloorsAtOne(t *testing.T) {
	u := Unit{Type: Cruiser}
	s := EffectiveStats(u, modifiers.UnitStatMods{CombatDelta: -20})
	if s.Combat != 1 {
		t.Errorf("Combat = %d, want floored to 1", s.Combat)
	}
}

func TestEffectiveStats_BombardmentUnaffectedWhenBlueprintGrantsNone(t *testing.T) {
	u := Unit{Type: Infantry}
	s := EffectiveStats(u, modifiers.UnitStatMods{BombardmentDelta: -5})
	if s.Bombardment != 0 {
		t.Errorf("infantry has no bombardment to modify, got %d", s.Bombardment)
	}
}

func TestEffectiveStats_MoveNeverNegative(t *testing.T) {
	u := Unit{Type: Carrier}
	s := EffectiveStats(u, modifiers.UnitStatMods{MoveDelta: -10})
	if s.Move != 0 {
		t.Errorf("Move = %d, want floored to 0", s.Move)
	}
}

func TestEffectiveStats_BombardmentFloorsAtOneWhenPresent(t *testing.T) {
	u := Unit{Type: Dreadnought}
	s := EffectiveStats(u, modifiers.UnitStatMods{BombardmentDelta: -10})
	if s.Bombardment != 1 {
		t.Errorf("Bombardment = %d, want floored to 1", s.Bombardment)
	}
}

func TestEffectiveStats_SustainAndShieldGrantsApply(t *testing.T) {
	u := Unit{Type: Cruiser} // no sustain/shield by default
	s := EffectiveStats(u, modifiers.UnitStatMods{SustainDamageGrant: true, PlanetaryShieldGrant: true})
	if !s.SustainDamage || !s.PlanetaryShield {
		t.Errorf("grants should set sustain/shield flags, got %+v", s.Blueprint)
	}
}

func TestEffectiveStats_UnknownTypeReturnsZeroBlueprintWithoutPanicking(t *testing.T) {
	u := Unit{Type: Type("nonexistent")}
	s := EffectiveStats(u, modifiers.UnitStatMods{})
	if s.Combat != 0 || s.Move != 0 {
		t.Errorf("unknown unit type should resolve to a zero blueprint, got %+v", s.Blueprint)
	}
}

func TestType_IsGroundForce(t *testing.T) {
	if !Infantry.IsGroundForce() || !Mech.IsGroundForce() {
		t.Errorf("infantry and mech should be ground forces")
	}
	if Cruiser.IsGroundForce() {
		t.Errorf("cruiser should not be a ground force")
	}
}

func TestType_CountsAgainstFleetPoolExcludesFighters(t *testing.T) {
	if Fighter.CountsAgainstFleetPool() {
		t.Errorf("fighters should never count against fleet pool")
	}
	if !Cruiser.CountsAgainstFleetPool() {
		t.Errorf("cruisers should count against fleet pool")
	}
	if PDS.CountsAgainstFleetPool() {
		t.Errorf("structures are not ships and should not count against fleet pool")
	}
}

func TestType_IsStructure(t *testing.T) {
	if !PDS.IsStructure() || !SpaceDock.IsStructure() {
		t.Errorf("PDS and space dock should be structures")
	}
	if Dreadnought.IsStructure() {
		t.Errorf("dreadnought should not be a structure")
	}
}
