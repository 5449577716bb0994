// Package galaxy implements the Entity Model's galaxy/system/planet layer
// (spec §3.1, §4.1 component C1). It is adapted from the teacher's
// maps/map.go (MongoMap -> Galaxy), orbitables/system.go (System/Planet,
// kept bson-tagged and Version-stamped for the same optimistic-locking
// snapshot reasons the teacher uses them), and orbitables/asteroid.go /
// nebula.go, whose standalone entities become the AnomalyKind set on a
// SystemTile — TI4 anomalies live on tiles, not as separate map objects,
// so the teacher's per-hazard documents are folded into one field.
package galaxy

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// HexCoord is an axial hex coordinate. TI4's board is a hex grid, which
// the teacher's X/Y float map never modeled (it used continuous
// coordinates for a different game); this is the one place SPEC_FULL
// necessarily departs from the teacher's literal field shape to satisfy
// spec §3.1 "Hex adjacency" and P1/P2 (see DESIGN.md).
type HexCoord struct {
	Q int `bson:"q" json:"q"`
	R int `bson:"r" json:"r"`
}

var hexDirections = [6]HexCoord{
	{Q: 1, R: 0}, {Q: 1, R: -1}, {Q: 0, R: -1},
	{Q: -1, R: 0}, {Q: -1, R: 1}, {Q: 0, R: 1},
}

// Neighbors returns the six axial neighbors of a hex coordinate. A
// coordinate is never its own neighbor (P1 Adjacency irreflexivity).
func (h HexCoord) Neighbors() []HexCoord {
	out := make([]HexCoord, 0, 6)
	for _, d := range hexDirections {
		out = append(out, HexCoord{Q: h.Q + d.Q, R: h.R + d.R})
	}
	return out
}

// TileColor is the tile-back color classification from spec §3.1.
type TileColor string

const (
	TileGreen TileColor = "green" // home system
	TileBlue  TileColor = "blue"  // planet system
	TileRed   TileColor = "red"   // anomaly/empty
)

// WormholeKind enumerates the wormhole letters plus the nexus sides.
type WormholeKind string

const (
	WormholeAlpha WormholeKind = "alpha"
	WormholeBeta  WormholeKind = "beta"
	WormholeGamma WormholeKind = "gamma"
	// WormholeNexusActive/Inactive represent the two sides of the
	// Wormhole Nexus tile; only the active side carries its wormhole
	// kinds for adjacency purposes.
	WormholeNexusActive   WormholeKind = "nexus_active"
	WormholeNexusInactive WormholeKind = "nexus_inactive"
)

// AnomalyKind enumerates anomaly effects a tile may carry. A system can
// carry more than one (spec §9 open question 5: anomalies stack by union
// of effects without doubling identical restrictions).
type AnomalyKind string

const (
	AnomalyAsteroidField AnomalyKind = "asteroid_field"
	AnomalySupernova     AnomalyKind = "supernova"
	AnomalyNebula        AnomalyKind = "nebula"
	AnomalyGravityRift   AnomalyKind = "gravity_rift"
)

// BlocksTransit reports whether this anomaly kind absolutely blocks
// transit and entry (asteroid fields and supernovae, spec §4.4 step 2).
func (a AnomalyKind) BlocksTransit() bool {
	return a == AnomalyAsteroidField || a == AnomalySupernova
}

// PlanetTrait is a planet attribute used for exploration-deck selection
// and tech specialty eligibility.
type PlanetTrait string

const (
	TraitCultural   PlanetTrait = "cultural"
	TraitHazardous  PlanetTrait = "hazardous"
	TraitIndustrial PlanetTrait = "industrial"
)

// TechSpecialty is the optional colored technology specialty a planet
// may grant toward a matching-color technology's prerequisites.
type TechSpecialty string

const (
	SpecialtyNone      TechSpecialty = ""
	SpecialtyBiotic    TechSpecialty = "biotic"
	SpecialtyPropulsion TechSpecialty = "propulsion"
	SpecialtyCybernetic TechSpecialty = "cybernetic"
	SpecialtyWarfare    TechSpecialty = "warfare"
)

// Attachment is a faceup card modifying a planet's resources/influence or
// traits (e.g. an exploration "Mining World" attachment).
type Attachment struct {
	CardID          bson.ObjectID `bson:"cardId" json:"cardId"`
	ResourceDelta   int           `bson:"resourceDelta" json:"resourceDelta"`
	InfluenceDelta  int           `bson:"influenceDelta" json:"influenceDelta"`
	AddsTrait       PlanetTrait   `bson:"addsTrait,omitempty" json:"addsTrait,omitempty"`
}

// Planet mirrors spec §3.1 Planet. It keeps the teacher's bson-tag and
// Version-stamp texture (orbitables/system.go) for the same
// optimistic-concurrency-friendly snapshot reasons, but every economic
// field the teacher modeled (Metals/Crystals/Hydrogen/Plasma, building
// slots) is replaced by TI4's resources/influence/traits/structures model.
type Planet struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string        `bson:"name" json:"name"`
	SystemID      bson.ObjectID `bson:"systemId" json:"systemId"`
	Resources     int           `bson:"resources" json:"resources"`
	Influence     int           `bson:"influence" json:"influence"`
	Traits        []PlanetTrait `bson:"traits,omitempty" json:"traits,omitempty"`
	TechSpecialty TechSpecialty `bson:"techSpecialty,omitempty" json:"techSpecialty,omitempty"`
	Legendary     bool          `bson:"legendary" json:"legendary"`
	Exhausted     bool          `bson:"exhausted" json:"exhausted"`
	Controller    *bson.ObjectID `bson:"controller,omitempty" json:"controller,omitempty"`

	GroundForces []bson.ObjectID `bson:"groundForces,omitempty" json:"groundForces,omitempty"` // unit ids
	Structures   []bson.ObjectID `bson:"structures,omitempty" json:"structures,omitempty"`      // unit ids (space dock, PDS)
	Attachments  []Attachment    `bson:"attachments,omitempty" json:"attachments,omitempty"`
	HasExplorationToken bool     `bson:"hasExplorationToken" json:"hasExplorationToken"`

	Version int64 `bson:"version" json:"version"`
}

// HasTrait reports whether a planet has the trait required to be
// explorable (a planet without a trait cannot be explored, spec §3.1).
func (p *Planet) HasTrait() bool {
	return len(p.Traits) > 0
}

// EffectiveResources/EffectiveInfluence fold attachment deltas into the
// base values, floored at zero.
func (p *Planet) EffectiveResources() int {
	v := p.Resources
	for _, a := range p.Attachments {
		v += a.ResourceDelta
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (p *Planet) EffectiveInfluence() int {
	v := p.Influence
	for _, a := range p.Attachments {
		v += a.InfluenceDelta
	}
	if v < 0 {
		v = 0
	}
	return v
}

// HyperlaneEdge identifies one side of a hyperlane tile's connection.
type HyperlaneEdge int

// HyperlaneConnection is an unordered pair of edge ids on a hyperlane
// tile connecting two neighboring systems.
type HyperlaneConnection struct {
	A HyperlaneEdge `bson:"a" json:"a"`
	B HyperlaneEdge `bson:"b" json:"b"`
}

// SpaceArea holds ships and transported cargo physically present in a
// system's space (as opposed to on one of its planets).
type SpaceArea struct {
	Ships     []bson.ObjectID `bson:"ships,omitempty" json:"ships,omitempty"`
	Transport map[bson.ObjectID][]bson.ObjectID `bson:"transport,omitempty" json:"transport,omitempty"` // carrier unit id -> cargo unit ids
}

// SystemTile mirrors spec §3.1 SystemTile.
type SystemTile struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Coord    HexCoord      `bson:"coord" json:"coord"`
	Color    TileColor     `bson:"color" json:"color"`
	IsHyperlane bool       `bson:"isHyperlane" json:"isHyperlane"`

	PlanetIDs    []bson.ObjectID       `bson:"planetIds,omitempty" json:"planetIds,omitempty"`
	Anomalies    []AnomalyKind         `bson:"anomalies,omitempty" json:"anomalies,omitempty"`
	Wormholes    []WormholeKind        `bson:"wormholes,omitempty" json:"wormholes,omitempty"`
	Hyperlanes   []HyperlaneConnection `bson:"hyperlanes,omitempty" json:"hyperlanes,omitempty"`
	HasFrontierToken bool              `bson:"hasFrontierToken" json:"hasFrontierToken"`

	Space SpaceArea `bson:"space" json:"space"`

	// ActiveCommandTokenOf tracks the tactic-token-placement invariant
	// (spec §3.2 invariant 16): at most one system is active at a time.
	ActiveCommandTokenOf *bson.ObjectID `bson:"activeCommandTokenOf,omitempty" json:"activeCommandTokenOf,omitempty"`

	// OtherCommandTokens records non-activating command tokens other
	// players may have historically placed here; they do not block
	// reactivation by the active player (spec §4.4 step 1).
	OtherCommandTokens []bson.ObjectID `bson:"otherCommandTokens,omitempty" json:"otherCommandTokens,omitempty"`

	Version int64 `bson:"version" json:"version"`
}

// HasAnomaly reports whether the tile carries the given anomaly kind.
func (s *SystemTile) HasAnomaly(kind AnomalyKind) bool {
	for _, a := range s.Anomalies {
		if a == kind {
			return true
		}
	}
	return false
}

// Galaxy is the root hex-map collection, adapted from the teacher's
// maps.MongoMap (which held the player roster and per-player ship
// settings for a single running game map). Those fields move onto
// engine.GameState/players.Player; Galaxy itself keeps only spatial data.
type Galaxy struct {
	ID      bson.ObjectID              `bson:"_id,omitempty" json:"id,omitempty"`
	Systems map[bson.ObjectID]*SystemTile `bson:"systems" json:"systems"`
	Planets map[bson.ObjectID]*Planet     `bson:"planets" json:"planets"`

	byCoord map[HexCoord]bson.ObjectID // derived index, not persisted
}

// New creates an empty Galaxy.
func New(id bson.ObjectID) *Galaxy {
	return &Galaxy{
		ID:      id,
		Systems: map[bson.ObjectID]*SystemTile{},
		Planets: map[bson.ObjectID]*Planet{},
	}
}

// reindex rebuilds the coordinate index. Called lazily so Galaxy values
// decoded straight from a snapshot (with byCoord nil) still work.
func (g *Galaxy) reindex() {
	g.byCoord = make(map[HexCoord]bson.ObjectID, len(g.Systems))
	for id, s := range g.Systems {
		if s.IsHyperlane {
			continue
		}
		g.byCoord[s.Coord] = id
	}
}

// System looks up a system by id. Unknown ids are a programming error
// (spec §4.1 "Failure mode"), signaled by a nil return; callers at the
// engine boundary are expected to have validated the id already.
func (g *Galaxy) System(id bson.ObjectID) *SystemTile {
	return g.Systems[id]
}

func (g *Galaxy) Planet(id bson.ObjectID) *Planet {
	return g.Planets[id]
}

// systemAt returns the system id at a hex coordinate, if any (rebuilding
// the index on first use or after structural changes).
func (g *Galaxy) systemAt(c HexCoord) (bson.ObjectID, bool) {
	if g.byCoord == nil || len(g.byCoord) != countNonHyperlane(g.Systems) {
		g.reindex()
	}
	id, ok := g.byCoord[c]
	return id, ok
}

func countNonHyperlane(systems map[bson.ObjectID]*SystemTile) int {
	n := 0
	for _, s := range systems {
		if !s.IsHyperlane {
			n++
		}
	}
	return n
}

// Adjacent returns the set of system ids adjacent to the given system:
// hex neighbors, wormhole matches (including an inactive nexus carrying
// no wormholes, spec §3.1/§4.4), and hyperlane connections. A system is
// never adjacent to itself (P1).
func (g *Galaxy) Adjacent(id bson.ObjectID) map[bson.ObjectID]struct{} {
	out := map[bson.ObjectID]struct{}{}
	s := g.System(id)
	if s == nil {
		return out
	}

	for _, n := range s.Coord.Neighbors() {
		if nid, ok := g.systemAt(n); ok && nid != id {
			out[nid] = struct{}{}
		}
	}

	for _, wk := range s.Wormholes {
		for oid, other := range g.Systems {
			if oid == id || other.IsHyperlane {
				continue
			}
			if other.hasWormhole(wk) {
				out[oid] = struct{}{}
			}
		}
	}

	for oid, other := range g.Systems {
		if oid == id {
			continue
		}
		if g.hyperlaneConnects(id, oid) {
			out[oid] = struct{}{}
		}
	}

	delete(out, id)
	return out
}

func (s *SystemTile) hasWormhole(kind WormholeKind) bool {
	for _, w := range s.Wormholes {
		if w == kind {
			return true
		}
	}
	return false
}

// hyperlaneConnects reports whether a or any chain of hyperlane tiles
// directly links a and b via a single hyperlane tile's connection pairs.
// Hyperlane tiles themselves are never systems (spec §3.1) so this looks
// for a hyperlane tile adjacent (by hex) to both endpoints that has at
// least one connection pair. The edge ids in the pairs are not compared,
// so any such tile links every two systems it touches.
func (g *Galaxy) hyperlaneConnects(a, b bson.ObjectID) bool {
	sa, sb := g.System(a), g.System(b)
	if sa == nil || sb == nil {
		return false
	}
	for _, tile := range g.Systems {
		if !tile.IsHyperlane || len(tile.Hyperlanes) == 0 {
			continue
		}
		touchesA, touchesB := false, false
		for _, n := range tile.Coord.Neighbors() {
			if nid, ok := g.systemAt(n); ok {
				if nid == a {
					touchesA = true
				}
				if nid == b {
					touchesB = true
				}
			}
		}
		if touchesA && touchesB {
			return true
		}
	}
	return false
}

// IsAdjacent is a convenience boolean wrapper over Adjacent.
func (g *Galaxy) IsAdjacent(a, b bson.ObjectID) bool {
	_, ok := g.Adjacent(a)[b]
	return ok
}
