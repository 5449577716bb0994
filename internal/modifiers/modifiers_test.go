package modifiers

import "testing"

func TestCombineMods_AddsDeltasAndOrsFlags(t *testing.T) {
	a := UnitStatMods{CombatDelta: -1, SustainDamageGrant: true}
	b := UnitStatMods{CombatDelta: -1, PlanetaryShieldGrant: true}

	got := CombineMods(a, b)

	if got.CombatDelta != -2 {
		t.Errorf("CombatDelta = %d, want -2", got.CombatDelta)
	}
	if !got.SustainDamageGrant || !got.PlanetaryShieldGrant {
		t.Errorf("boolean grants should OR together, got %+v", got)
	}
}

func TestStack_ResolveAppliesLayersAddedOutOfPriorityOrder(t *testing.T) {
	s := NewStack()
	// Added out of priority order; Resolve must still fold in both the
	// ability (600) and the unit upgrade (100) layer.
	s.Add(Layer{Source: SourceAbility, Priority: PriorityAbility, Mods: UnitStatMods{CombatDelta: -1}})
	s.Add(Layer{Source: SourceUnitUpgrade, Priority: PriorityUnitUpgrade, Mods: UnitStatMods{CombatDelta: -1}})

	got := s.Resolve()
	if got.CombatDelta != -2 {
		t.Errorf("CombatDelta = %d, want -2 (both layers applied)", got.CombatDelta)
	}
}

func TestStack_ResolveOfEmptyStackIsZeroValue(t *testing.T) {
	s := NewStack()
	if got := s.Resolve(); got != (UnitStatMods{}) {
		t.Errorf("Resolve() of empty stack = %+v, want zero value", got)
	}
}

func TestStack_ResolveSumsLayersWithDuplicatePriorities(t *testing.T) {
	s := NewStack()
	s.Add(Layer{Priority: PriorityLaw, Mods: UnitStatMods{MoveDelta: 1}})
	s.Add(Layer{Priority: PriorityLaw, Mods: UnitStatMods{MoveDelta: 2}})

	got := s.Resolve()
	if got.MoveDelta != 3 {
		t.Errorf("MoveDelta = %d, want 3", got.MoveDelta)
	}
}
