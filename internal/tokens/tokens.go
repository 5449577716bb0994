// Package tokens implements command-token conservation bookkeeping and
// control tokens (spec §3.1 Token, §4.2 "Command tokens", invariant 12 /
// property P7). Command pools themselves live on players.Player.CommandSheet;
// this package tracks the remaining two locations invariant 12 sums over
// (board placements and reinforcements) so the full conservation equation
// can be checked.
package tokens

import "go.mongodb.org/mongo-driver/v2/bson"

// Ledger tracks, per player, how many of that faction's fixed command
// token total currently sit on the board (placed during tactical
// actions, spec §4.4 step 1) versus in reinforcements (unallocated).
type Ledger struct {
	FixedTotal       map[bson.ObjectID]int `bson:"fixedTotal" json:"fixedTotal"`
	OnBoard          map[bson.ObjectID]int `bson:"onBoard" json:"onBoard"`
	Reinforcements   map[bson.ObjectID]int `bson:"reinforcements" json:"reinforcements"`
}

func NewLedger() *Ledger {
	return &Ledger{
		FixedTotal:     map[bson.ObjectID]int{},
		OnBoard:        map[bson.ObjectID]int{},
		Reinforcements: map[bson.ObjectID]int{},
	}
}

// Init records a player's fixed total and starts all of it in
// reinforcements (pre-setup).
func (l *Ledger) Init(player bson.ObjectID, total int) {
	l.FixedTotal[player] = total
	l.Reinforcements[player] = total
	l.OnBoard[player] = 0
}

// PlaceOnBoard moves one token from reinforcements to the board.
func (l *Ledger) PlaceOnBoard(player bson.ObjectID) bool {
	if l.Reinforcements[player] <= 0 {
		return false
	}
	l.Reinforcements[player]--
	l.OnBoard[player]++
	return true
}

// ReturnFromBoard moves one token from the board back to reinforcements
// (status phase "Remove Command Tokens" step, spec §4.5).
func (l *Ledger) ReturnFromBoard(player bson.ObjectID) bool {
	if l.OnBoard[player] <= 0 {
		return false
	}
	l.OnBoard[player]--
	l.Reinforcements[player]++
	return true
}

// AllocateToPool moves one token from reinforcements directly onto a
// player's command sheet (status phase "Gain and Redistribute Command
// Tokens" step, spec §4.5): unlike PlaceOnBoard this does not mark the
// token as activated in a system. The caller is responsible for
// incrementing the chosen CommandSheet pool field.
func (l *Ledger) AllocateToPool(player bson.ObjectID) bool {
	if l.Reinforcements[player] <= 0 {
		return false
	}
	l.Reinforcements[player]--
	return true
}

// Spend returns one token from a command pool to reinforcements (Rule
// 20.2: spending a command token from a pool). The caller is responsible
// for decrementing the chosen CommandSheet pool field first.
func (l *Ledger) Spend(player bson.ObjectID) {
	l.Reinforcements[player]++
}

// ConservationHolds reports whether poolTotal + on-board +
// reinforcements equals the player's fixed total. poolTotal is the
// player's command pool sum (tactic+fleet+strategy); callers pass this in
// from players.Player.Command.Total() since this package does not import
// players to avoid a cycle.
func (l *Ledger) ConservationHolds(player bson.ObjectID, poolTotal int) bool {
	return poolTotal+l.OnBoard[player]+l.Reinforcements[player] == l.FixedTotal[player]
}

// ControlTokens tracks, per planet, which player's control token sits on
// an unoccupied planet (spec §3.2 invariant 5). Planets with a player's
// ground force present do not need a control token for that player to
// control it, but a control token is placed when the player's last
// ground force on the planet is removed via effects that otherwise
// preserve control (e.g. commit-then-retreat sequences), and removed the
// instant a ground force of any other player lands there.
type ControlTokens struct {
	ByPlanet map[bson.ObjectID]bson.ObjectID `bson:"byPlanet" json:"byPlanet"`
}

func NewControlTokens() *ControlTokens {
	return &ControlTokens{ByPlanet: map[bson.ObjectID]bson.ObjectID{}}
}

func (c *ControlTokens) Place(planet, player bson.ObjectID) {
	c.ByPlanet[planet] = player
}

func (c *ControlTokens) Remove(planet bson.ObjectID) {
	delete(c.ByPlanet, planet)
}

func (c *ControlTokens) ControllerByToken(planet bson.ObjectID) (bson.ObjectID, bool) {
	p, ok := c.ByPlanet[planet]
	return p, ok
}
