// Package players implements the Player entity (spec §3.1 Player): id,
// faction, color, command sheet (three token pools), commodity area,
// leader sheet, hidden hands, scored objectives, and victory points.
//
// The teacher's players.Player (players/player.go) is an auth-oriented
// account record (username/email/password) — account management is
// explicitly out of scope (spec §1). It is replaced here, but the
// surrounding players.PlayerGameState (players/game_state.go) shape —
// bson-tagged, per-game resource/territory bookkeeping distinct from the
// account record — is exactly the split spec wants between an account
// system (out of scope) and in-game player state (in scope), so that
// separation of concerns is kept: Player below is the in-game record.
package players

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Faction identifies one of the base-game/PoK factions by stable key.
// No faction sheet catalog (home system, commodity value, starting
// units/tech) exists in this module; a Faction is only a key.
type Faction string

// Color is the player's chosen unit/token color.
type Color string

// LeaderState tracks one leader slot's unlock/exhaust/purge lifecycle.
type LeaderState struct {
	CardID   bson.ObjectID `bson:"cardId" json:"cardId"`
	Unlocked bool          `bson:"unlocked" json:"unlocked"` // commanders/heroes
	Exhausted bool         `bson:"exhausted" json:"exhausted"` // agents
	Purged   bool          `bson:"purged" json:"purged"`        // heroes, after use
}

// LeaderSheet holds a player's agent, commander, and hero (spec §3.1),
// plus Nomad's extra agent slots (SPEC_FULL §3 supplement).
type LeaderSheet struct {
	Agent       LeaderState   `bson:"agent" json:"agent"`
	Commander   LeaderState   `bson:"commander" json:"commander"`
	Hero        LeaderState   `bson:"hero" json:"hero"`
	ExtraAgents []LeaderState `bson:"extraAgents,omitempty" json:"extraAgents,omitempty"`
}

// CommandSheet holds the three command token pools (spec §4.2).
type CommandSheet struct {
	TacticPool   int `bson:"tacticPool" json:"tacticPool"`
	FleetPool    int `bson:"fleetPool" json:"fleetPool"`
	StrategyPool int `bson:"strategyPool" json:"strategyPool"`
}

// Total returns the sum of the three pools, used by the command-token
// conservation invariant (spec invariant 12 / property P7) together with
// tokens placed on the board and in reinforcements (tracked by the
// tokens package's ledger).
func (c CommandSheet) Total() int {
	return c.TacticPool + c.FleetPool + c.StrategyPool
}

// Hand sizes/caps (spec invariants 10, 11).
const (
	SecretObjectiveCap = 3
	ActionCardSoftCap  = 7
)

// Player mirrors spec §3.1 Player.
type Player struct {
	ID      bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Faction Faction       `bson:"faction" json:"faction"`
	Color   Color         `bson:"color" json:"color"`
	HomeSystemID bson.ObjectID `bson:"homeSystemId" json:"homeSystemId"`

	Leaders LeaderSheet  `bson:"leaders" json:"leaders"`
	Command CommandSheet `bson:"command" json:"command"`

	CommodityValue int `bson:"commodityValue" json:"commodityValue"` // faction sheet max
	Commodities    int `bson:"commodities" json:"commodities"`       // current, invariant 9
	TradeGoods     int `bson:"tradeGoods" json:"tradeGoods"`

	TechnologyIDs []bson.ObjectID `bson:"technologyIds,omitempty" json:"technologyIds,omitempty"`
	PlanetIDs     []bson.ObjectID `bson:"planetIds,omitempty" json:"planetIds,omitempty"`

	// Hidden hands: action cards, promissory notes, secret objectives.
	// observe() redacts these for other viewers (spec §6.1 observe, P9).
	ActionCardHand      []bson.ObjectID `bson:"actionCardHand,omitempty" json:"actionCardHand,omitempty"`
	PromissoryNoteHand  []bson.ObjectID `bson:"promissoryNoteHand,omitempty" json:"promissoryNoteHand,omitempty"`
	SecretObjectiveHand []bson.ObjectID `bson:"secretObjectiveHand,omitempty" json:"secretObjectiveHand,omitempty"`

	ScoredObjectiveIDs []bson.ObjectID `bson:"scoredObjectiveIds,omitempty" json:"scoredObjectiveIds,omitempty"`
	VictoryPoints      int             `bson:"victoryPoints" json:"victoryPoints"`

	ReinforcementUnitCount map[string]int `bson:"reinforcementUnitCount,omitempty" json:"reinforcementUnitCount,omitempty"` // unit type key -> remaining

	Eliminated bool `bson:"eliminated" json:"eliminated"`

	Version int64 `bson:"version" json:"version"`
}

// CanAffordVotes reports whether exhausting the given set of readied
// planets the player controls yields at least minInfluence (trade goods
// never substitute for votes, spec §4.5 Agenda phase / invariant 7).
func CanAffordVotes(readiedInfluence, minInfluence int) bool {
	return readiedInfluence >= minInfluence
}

// GiveCommodities transfers n commodities from p to recipient, flipping
// them to trade goods on the recipient's side (spec §4.2 trade
// goods/commodities; scenario 4). It does not mutate VP/trigger state;
// callers emit the TradeGoodGained-equivalent event themselves, and per
// Rule 21.5c this conversion must NOT be reported as a trade-good gain
// for ability-trigger purposes.
func GiveCommodities(p, recipient *Player, n int) bool {
	if n <= 0 || p.Commodities < n {
		return false
	}
	p.Commodities -= n
	recipient.TradeGoods += n
	return true
}

// SpendTradeGoodsFor substitutes trade goods 1:1 for resources or
// influence (never for votes, spec §4.2). Returns false if insufficient.
func (p *Player) SpendTradeGoodsFor(amount int) bool {
	if amount <= 0 || p.TradeGoods < amount {
		return false
	}
	p.TradeGoods -= amount
	return true
}
