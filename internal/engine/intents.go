package engine

import "go.mongodb.org/mongo-driver/v2/bson"

// IntentKind tags which variant of Intent is populated (spec §6.1). Kept
// as a flat tagged struct rather than a Go interface hierarchy so the
// whole variant set round-trips through a snapshot uniformly, matching
// the teacher's maps/queue.go PlayerAction ("Type string" + a handful of
// optional fields) rather than introducing per-intent Go types.
type IntentKind string

const (
	IntentStartGame               IntentKind = "start_game"
	IntentChooseStrategyCard      IntentKind = "choose_strategy_card"
	IntentActivate                IntentKind = "activate"
	IntentDeclareMovement         IntentKind = "declare_movement"
	IntentAssignSpaceCannonHits   IntentKind = "assign_space_cannon_hits"
	IntentRetreat                 IntentKind = "retreat"
	IntentBombard                 IntentKind = "bombard"
	IntentCommit                  IntentKind = "commit"
	IntentAssignCombatHits        IntentKind = "assign_combat_hits"
	IntentProduce                 IntentKind = "produce"
	IntentPerformStrategicAction  IntentKind = "perform_strategic_action"
	IntentResolveSecondary        IntentKind = "resolve_secondary"
	IntentPlayActionCard          IntentKind = "play_action_card"
	IntentPlayPromissoryNote      IntentKind = "play_promissory_note"
	IntentProposeTransaction      IntentKind = "propose_transaction"
	IntentCastVotes               IntentKind = "cast_votes"
	IntentScoreObjective          IntentKind = "score_objective"
	IntentPass                    IntentKind = "pass"
	IntentConfirmOptional         IntentKind = "confirm_optional"
	IntentTimeout                 IntentKind = "timeout"
	IntentExplore                 IntentKind = "explore"
)

// Intent is the tagged envelope for every player-initiated action (spec
// §6.1). Fields are a superset; each IntentKind only reads the fields
// relevant to it, exactly as the teacher's PlayerAction carries a Type
// plus a grab-bag of optional fields (TargetID/SourceID/X/Y/Payload).
type Intent struct {
	Kind   IntentKind
	Player bson.ObjectID

	// Common targeting fields
	SystemID   bson.ObjectID
	PlanetID   bson.ObjectID
	CardID     bson.ObjectID
	UnitID     bson.ObjectID

	// StartGame
	PlayerSetups []PlayerSetup
	TargetVP     int
	Seed         []byte

	// DeclareMovement
	Movements []MovementOrder

	// Bombard / AssignCombatHits / AssignSpaceCannonHits / Commit
	Assignments []HitAssignment
	Commitments []Commitment

	// Produce
	ProduceOrders []ProduceOrder

	// Strategic action / secondary / action card / promissory note
	Params map[string]any
	Decline bool

	// ProposeTransaction
	To      bson.ObjectID
	Give    TransactionOffer
	Receive TransactionOffer

	// CastVotes
	Votes []Vote
}

type PlayerSetup struct {
	PlayerID     bson.ObjectID
	Faction      string
	HomeSystemID bson.ObjectID
}

type MovementOrder struct {
	UnitID bson.ObjectID
	Path   []bson.ObjectID
	Cargo  []bson.ObjectID
}

type HitAssignment struct {
	UnitID bson.ObjectID
	Target bson.ObjectID
}

type Commitment struct {
	UnitID   bson.ObjectID
	PlanetID bson.ObjectID
}

type ProduceOrder struct {
	SpaceDockID bson.ObjectID
	Build       []string // unit type keys
	// Placements names, per entry in Build (same index), whether the unit
	// goes to the system's space area or onto a planet (ground forces
	// only; ships are always PlacementSpace). Missing entries default to
	// PlacementSpace.
	Placements []string
	// Planets lists the controlled, readied planets exhausted to pay for
	// this order's resources (spec §4.4 Step 5); trade goods cover any
	// shortfall 1:1 (players.SpendTradeGoodsFor).
	Planets []bson.ObjectID
}

type TransactionOffer struct {
	Resources        int
	Influence        int
	TradeGoods       int
	Commodities      int
	PromissoryNoteID *bson.ObjectID
	RelicID          *bson.ObjectID
}

type Vote struct {
	PlanetID bson.ObjectID // planet exhausted to cast this vote's influence
	Outcome  string
}
