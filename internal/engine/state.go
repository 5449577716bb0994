// Package engine implements the External Interfaces / root composition
// (spec §4.7, component C7): GameState, the Intent/Event schema,
// apply/legal_intents/observe. It is grounded on the teacher's
// players/game_state.go (a single bson-tagged root document aggregating
// per-game state) generalized to compose every subsystem package, and on
// maps/queue.go's PlayerAction (a typed, ordered, timestamped action
// record) for the Intent/Event envelope shape.
package engine

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
	"github.com/nicoberrocal/ti4engine/internal/cards"
	"github.com/nicoberrocal/ti4engine/internal/failure"
	"github.com/nicoberrocal/ti4engine/internal/galaxy"
	"github.com/nicoberrocal/ti4engine/internal/phases"
	"github.com/nicoberrocal/ti4engine/internal/players"
	"github.com/nicoberrocal/ti4engine/internal/rng"
	"github.com/nicoberrocal/ti4engine/internal/tactical"
	"github.com/nicoberrocal/ti4engine/internal/tokens"
	"github.com/nicoberrocal/ti4engine/internal/transactions"
	"github.com/nicoberrocal/ti4engine/internal/units"
)

// PendingDecision identifies which player must supply the next intent
// and what shape is expected (spec §5 suspension points).
type PendingDecision struct {
	Player       bson.ObjectID `bson:"player" json:"player"`
	ExpectedKind IntentKind    `bson:"expectedKind" json:"expectedKind"`
	Reason       string        `bson:"reason" json:"reason"`
}

// GameState is the root snapshot (spec §3.1 GameState). Every mutation
// made by Apply happens in place on a GameState obtained by the caller's
// own copy-on-write discipline at the storage boundary; spec's "produces
// a new GameState value" is satisfied by Apply never being called
// concurrently on the same logical game (spec §5 locking discipline) and
// callers snapshotting before each Apply if they need the prior value.
type GameState struct {
	ID      bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Round   *phases.RoundState `bson:"round" json:"round"`

	Galaxy  *galaxy.Galaxy `bson:"galaxy" json:"galaxy"`

	// Units is the authoritative unit registry (spec §3.1 Unit):
	// galaxy.SpaceArea.Ships and galaxy.Planet.GroundForces/Structures
	// hold only ids; this is where Type/Owner/Damaged/Location live.
	Units map[bson.ObjectID]*units.Unit `bson:"units" json:"units"`

	Players    map[bson.ObjectID]*players.Player `bson:"players" json:"players"`
	PlayerOrder []bson.ObjectID                  `bson:"playerOrder" json:"playerOrder"`

	// StrategyCards maps player -> the strategy card number (1-8) they
	// chose this round (spec §4.5 Strategy phase, invariant 14).
	StrategyCards map[bson.ObjectID]int `bson:"strategyCards,omitempty" json:"strategyCards,omitempty"`
	// StrategicActionDone tracks whether a player has performed the
	// primary ability of the strategy card they hold this round, the
	// precondition phases.CanPass checks.
	StrategicActionDone map[bson.ObjectID]bool `bson:"strategicActionDone,omitempty" json:"strategicActionDone,omitempty"`

	// VoteTally accumulates influence cast per outcome during the current
	// agenda (spec §4.5 Agenda phase voting substep); reset on reveal.
	VoteTally map[string]int `bson:"voteTally,omitempty" json:"voteTally,omitempty"`

	Cards *cards.Registry `bson:"-" json:"-"` // card content is shared read-only catalog data, not per-game state
	Decks GameDecks        `bson:"decks" json:"decks"`

	CommandTokens *tokens.Ledger         `bson:"commandTokens" json:"commandTokens"`
	Transactions  *transactions.State    `bson:"-" json:"-"`

	Abilities *abilities.Registry `bson:"-" json:"-"`

	Tactical *tactical.State `bson:"tactical,omitempty" json:"tactical,omitempty"`

	Pending *PendingDecision `bson:"pending,omitempty" json:"pending,omitempty"`

	VPTarget phases.VPTarget `bson:"vpTarget" json:"vpTarget"`
	Winner   *bson.ObjectID  `bson:"winner,omitempty" json:"winner,omitempty"`

	Stream *rng.Stream `bson:"-" json:"-"`

	Log []Event `bson:"-" json:"-"` // accumulates this Apply call's events; reset each call
}

// GameDecks groups every deck the status/agenda/exploration/tactical
// flows draw from (spec §3.1 Deck/DiscardPile, §4.2).
type GameDecks struct {
	Action       cards.Deck            `bson:"action" json:"action"`
	Agenda       cards.Deck            `bson:"agenda" json:"agenda"`
	ObjectivesII cards.Deck            `bson:"objectivesII" json:"objectivesII"`
	SecretObjectives cards.Deck        `bson:"secretObjectives" json:"secretObjectives"`
	Technology   cards.Deck            `bson:"technology" json:"technology"`
	Relics       cards.Deck            `bson:"relics" json:"relics"`
	Exploration  map[string]*cards.Deck `bson:"exploration" json:"exploration"` // keyed by trait or "frontier"

	PublicObjectivesRevealed []bson.ObjectID `bson:"publicObjectivesRevealed,omitempty" json:"publicObjectivesRevealed,omitempty"`
	PublicObjectivesQueue    []bson.ObjectID `bson:"publicObjectivesQueue,omitempty" json:"publicObjectivesQueue,omitempty"` // 5 stage I then 5 stage II, in reveal order
}

// New constructs an empty GameState ready for StartGame setup.
func New(id bson.ObjectID, seed []byte) *GameState {
	return &GameState{
		ID:                  id,
		Galaxy:              galaxy.New(bson.NewObjectID()),
		Units:               map[bson.ObjectID]*units.Unit{},
		Players:             map[bson.ObjectID]*players.Player{},
		StrategyCards:       map[bson.ObjectID]int{},
		StrategicActionDone: map[bson.ObjectID]bool{},
		Cards:               cards.NewRegistry(),
		CommandTokens:       tokens.NewLedger(),
		Transactions:        transactions.NewState(),
		Abilities:           abilities.NewRegistry(),
		Stream:              rng.New(seed),
		VPTarget:            phases.VPTargetStandard,
		Decks: GameDecks{
			Exploration: map[string]*cards.Deck{},
		},
	}
}

// emit appends an event to the current Apply call's log and returns it,
// mirroring the teacher's pattern of small builder-style helpers.
func (s *GameState) emit(kind string, data map[string]any) Event {
	e := Event{Kind: kind, Data: data}
	s.Log = append(s.Log, e)
	return e
}

// checkGameEnd applies spec §4.5 Game end / §9 open question 1 at the
// end of whatever window just closed.
func (s *GameState) checkGameEnd() {
	if s.Winner != nil {
		return
	}
	vp := map[bson.ObjectID]int{}
	for id, p := range s.Players {
		vp[id] = p.VictoryPoints
	}
	if w, ended := phases.GameEndCheck(vp, s.VPTarget, s.Round.InitiativeOrder); ended {
		s.Winner = &w
		s.emit("GameEnded", map[string]any{"winner": w})
	}
}

// removeID removes the first occurrence of id from ids, preserving the
// teacher's append-slice-deletion idiom (apply.go's hand-removal code).
func removeID(ids []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	for i, x := range ids {
		if x == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// removeUnitFromCurrentLocation detaches u from whichever galaxy
// structure its Location currently names, without touching s.Units.
func (s *GameState) removeUnitFromCurrentLocation(u *units.Unit) {
	switch u.Location.Kind {
	case units.LocationSystemSpace:
		if u.Location.SystemID != nil {
			if sys := s.Galaxy.System(*u.Location.SystemID); sys != nil {
				sys.Space.Ships = removeID(sys.Space.Ships, u.ID)
			}
		}
	case units.LocationPlanet:
		if u.Location.PlanetID != nil {
			if p := s.Galaxy.Planet(*u.Location.PlanetID); p != nil {
				p.GroundForces = removeID(p.GroundForces, u.ID)
				p.Structures = removeID(p.Structures, u.ID)
			}
		}
	}
}

// placeUnitInSpace relocates u into system's space area, updating both
// its Location and the galaxy-side ship list.
func (s *GameState) placeUnitInSpace(u *units.Unit, system bson.ObjectID) {
	s.removeUnitFromCurrentLocation(u)
	sysID := system
	u.Location = units.Location{Kind: units.LocationSystemSpace, SystemID: &sysID}
	if sys := s.Galaxy.System(system); sys != nil {
		sys.Space.Ships = append(sys.Space.Ships, u.ID)
	}
}

// placeUnitOnPlanet relocates u onto planet, into GroundForces (infantry/
// mechs) or Structures (space dock/PDS) per spec §4.4 Step 5 Placement.
func (s *GameState) placeUnitOnPlanet(u *units.Unit, planet bson.ObjectID) {
	s.removeUnitFromCurrentLocation(u)
	planetID := planet
	u.Location = units.Location{Kind: units.LocationPlanet, PlanetID: &planetID}
	p := s.Galaxy.Planet(planet)
	if p == nil {
		return
	}
	if u.Type.IsGroundForce() {
		p.GroundForces = append(p.GroundForces, u.ID)
	} else {
		p.Structures = append(p.Structures, u.ID)
	}
}

// internalHalt is how the engine signals an InternalInvariantViolation:
// the caller must not keep applying intents against this state (spec
// §7). We don't panic (spec: "never throws control-flow exceptions
// across the apply boundary") — we return the Failure and the caller is
// expected to stop.
func internalHalt(code, msg string) *failure.Failure {
	return failure.Internal(code, msg)
}
