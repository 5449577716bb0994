// Package units implements the Unit entity and effective-stats
// computation (spec §3.1 Unit, §4.1 effective_stats). It adapts the
// teacher's ships/ship.go blueprint shape (static Ship definition plus a
// separate runtime instance) and ships/compute.go's layered
// ComputeEffectiveShipV2 pipeline, re-keyed from ship DPS/shield stats to
// TI4 unit stats (combat/move/capacity/production/bombardment/space
// cannon/sustain damage/planetary shield).
package units

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/modifiers"
)

// Type enumerates the base-game + Prophecy of Kings unit types (spec
// §3.1 Unit).
type Type string

const (
	Fighter    Type = "fighter"
	Infantry   Type = "infantry"
	Carrier    Type = "carrier"
	Cruiser    Type = "cruiser"
	Destroyer  Type = "destroyer"
	Dreadnought Type = "dreadnought"
	WarSun     Type = "war_sun"
	Flagship   Type = "flagship"
	Mech       Type = "mech"
	PDS        Type = "pds"
	SpaceDock  Type = "space_dock"
)

// UpgradeTier is the unit-upgrade technology tier applied, if any.
type UpgradeTier int

const (
	TierBase UpgradeTier = 0
	TierII   UpgradeTier = 2
)

// Blueprint is the static, data-only definition of a unit type's base
// stats (spec calls this "unit type" baseline), analogous to the
// teacher's ShipBlueprints map. 0 on a threshold stat means "no roll
// granted" (e.g. a PDS has Combat 0).
type Blueprint struct {
	Type Type

	Cost            int  // resources; 0 means "not producible through Production" (structures)
	DualIconCost    bool // fighters/infantry: one cost unit builds two
	Combat          int  // die value needed to hit, 0 = no combat rolls
	Move            int
	Capacity        int
	Production      int // 0 = no Production ability
	Bombardment     int // 0 = no Bombardment ability
	SpaceCannon     int // 0 = no Space Cannon ability
	AntiFighterBarrage int
	SustainDamage   bool
	PlanetaryShield bool
}

// Blueprints is the base-game + PoK unit catalog. Values follow the LRR
// unit stat reference. Only base rows exist: EffectiveStats reads these
// whatever a unit's Tier, so tier II stats come only from modifiers the
// caller passes in.
var Blueprints = map[Type]Blueprint{
	Fighter:    {Type: Fighter, Cost: 1, DualIconCost: true, Combat: 9, Move: 0},
	Infantry:   {Type: Infantry, Cost: 1, DualIconCost: true, Combat: 8, Move: 0},
	Carrier:    {Type: Carrier, Cost: 3, Combat: 9, Move: 1, Capacity: 4},
	Cruiser:    {Type: Cruiser, Cost: 2, Combat: 7, Move: 2, Capacity: 1},
	Destroyer:  {Type: Destroyer, Cost: 1, Combat: 9, Move: 2, Capacity: 0, AntiFighterBarrage: 6},
	Dreadnought: {Type: Dreadnought, Cost: 4, Combat: 5, Move: 1, Capacity: 1, Bombardment: 5, SustainDamage: true},
	WarSun:     {Type: WarSun, Cost: 12, Combat: 3, Move: 2, Capacity: 6, Bombardment: 3, SustainDamage: true},
	Flagship:   {Type: Flagship, Cost: 8, Combat: 7, Move: 1, Capacity: 3, SustainDamage: true},
	Mech:       {Type: Mech, Cost: 2, Combat: 6, Move: 0},
	PDS:        {Type: PDS, Cost: 0, SpaceCannon: 6, PlanetaryShield: true},
	SpaceDock:  {Type: SpaceDock, Cost: 0, Production: 0}, // no production limit is modeled; nothing reads a dock's Production
}

// Unit is a single unit instance (spec §3.1 Unit).
type Unit struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID  bson.ObjectID `bson:"ownerId" json:"ownerId"`
	Type     Type          `bson:"type" json:"type"`
	Tier     UpgradeTier   `bson:"tier" json:"tier"`
	Damaged  bool          `bson:"damaged" json:"damaged"` // sustain-damage-capable ships only

	// Location is exactly one of: a system's space area, a planet, the
	// owner's reinforcements, or a capturing player's faction sheet
	// (invariant 1).
	Location Location `bson:"location" json:"location"`

	// CarriedBy is set while this unit (fighter/ground force) is being
	// transported; it is not counted against fleet pool while set.
	CarriedBy *bson.ObjectID `bson:"carriedBy,omitempty" json:"carriedBy,omitempty"`
}

// LocationKind tags which field of Location is populated.
type LocationKind string

const (
	LocationSystemSpace   LocationKind = "system_space"
	LocationPlanet        LocationKind = "planet"
	LocationReinforcements LocationKind = "reinforcements"
	LocationCaptured      LocationKind = "captured" // on another player's faction sheet
)

type Location struct {
	Kind       LocationKind   `bson:"kind" json:"kind"`
	SystemID   *bson.ObjectID `bson:"systemId,omitempty" json:"systemId,omitempty"`
	PlanetID   *bson.ObjectID `bson:"planetId,omitempty" json:"planetId,omitempty"`
	CapturedBy *bson.ObjectID `bson:"capturedBy,omitempty" json:"capturedBy,omitempty"`
}

// Stats is the resolved, usable-this-instant stat block for a unit,
// produced by EffectiveStats. It deliberately excludes reroll
// information (spec §4.1: "does not apply combat rerolls; those are
// roll-time").
type Stats struct {
	Blueprint
}

// EffectiveStats applies owner-owned unit-upgrade tech, active laws, and
// transient modifiers to a unit's blueprint, mirroring the teacher's
// ComputeEffectiveShipV2 (base + role + sockets + gemwords) collapsed
// into base + modifier stack.
func EffectiveStats(u Unit, mods modifiers.UnitStatMods) Stats {
	bp, ok := Blueprints[u.Type]
	if !ok {
		// Unknown unit type is a programming error at this layer
		// (spec §4.1 "Failure mode"); return the zero blueprint rather
		// than panicking, since effective_stats has no error channel.
		bp = Blueprint{Type: u.Type}
	}

	s := Stats{Blueprint: bp}
	if s.Combat > 0 {
		s.Combat += mods.CombatDelta
		if s.Combat < 1 {
			s.Combat = 1
		}
	}
	s.Move += mods.MoveDelta
	if s.Move < 0 {
		s.Move = 0
	}
	s.Capacity += mods.CapacityDelta
	if s.Capacity < 0 {
		s.Capacity = 0
	}
	if s.Production > 0 {
		s.Production += mods.ProductionDelta
	}
	if s.Bombardment > 0 {
		s.Bombardment += mods.BombardmentDelta
		if s.Bombardment < 1 {
			s.Bombardment = 1
		}
	}
	if s.SpaceCannon > 0 {
		s.SpaceCannon += mods.SpaceCannonDelta
		if s.SpaceCannon < 1 {
			s.SpaceCannon = 1
		}
	}
	if s.AntiFighterBarrage > 0 {
		s.AntiFighterBarrage += mods.AntiFighterBarrageDelta
		if s.AntiFighterBarrage < 1 {
			s.AntiFighterBarrage = 1
		}
	}
	if mods.SustainDamageGrant {
		s.SustainDamage = true
	}
	if mods.PlanetaryShieldGrant {
		s.PlanetaryShield = true
	}
	return s
}

// IsGroundForce reports whether the type fights on planets (infantry and
// mechs).
func (t Type) IsGroundForce() bool {
	return t == Infantry || t == Mech
}

// IsShip reports whether the type occupies a system's space area under
// normal circumstances (everything except ground forces and PDS/space
// dock structures, which sit on planets).
func (t Type) IsShip() bool {
	switch t {
	case Carrier, Cruiser, Destroyer, Dreadnought, WarSun, Flagship, Fighter:
		return true
	default:
		return false
	}
}

// CountsAgainstFleetPool reports whether this unit counts against its
// owner's fleet pool in a system (invariant 2: non-fighter ships only).
func (t Type) CountsAgainstFleetPool() bool {
	return t.IsShip() && t != Fighter
}

// IsStructure reports whether the type is a structure (PDS/space dock),
// which cannot be produced through Production (spec §4.4 step 5).
func (t Type) IsStructure() bool {
	return t == PDS || t == SpaceDock
}
