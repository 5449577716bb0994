package engine

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/cards"
	"github.com/nicoberrocal/ti4engine/internal/galaxy"
	"github.com/nicoberrocal/ti4engine/internal/phases"
	"github.com/nicoberrocal/ti4engine/internal/tactical"
)

// PublicPlayerView is a viewer-redacted Player: hidden hands collapse to
// counts, everything else is copied as-is (spec §6.1 observe, P9
// Observation safety).
type PublicPlayerView struct {
	ID           bson.ObjectID
	Faction      string
	Color        string
	Command      PublicCommandView
	TradeGoods   int
	Commodities  int
	VictoryPoints int

	ActionCardCount      int
	PromissoryNoteCount  int
	SecretObjectiveCount int

	ActionCardHand      []bson.ObjectID // populated only for the viewer's own player
	PromissoryNoteHand  []bson.ObjectID
	SecretObjectiveHand []bson.ObjectID
}

type PublicCommandView struct {
	TacticPool   int
	FleetPool    int
	StrategyPool int
}

// PublicState is the redacted projection returned by Observe (spec §6.1
// "observe(state, viewer) -> PublicState"). It carries everything a
// player is entitled to see about the shared board plus their own full
// hidden information, with every other player's hidden information
// reduced to counts.
type PublicState struct {
	ID      bson.ObjectID
	Round   *phases.RoundState
	Galaxy  *galaxy.Galaxy
	Players map[bson.ObjectID]PublicPlayerView
	Tactical *tactical.State
	Pending *PendingDecision
	VPTarget phases.VPTarget
	Winner   *bson.ObjectID
	VisibleEvents []Event
}

// Observe projects s for viewer, redacting every other player's hidden
// hands to counts and filtering the event log by ViewerScope (spec P9).
// Galaxy, units, and public card locations are never hidden (spec §6.1:
// "no information available to any player through physical inspection of
// the board is hidden").
func Observe(s *GameState, viewer bson.ObjectID, log []Event) PublicState {
	out := PublicState{
		ID:       s.ID,
		Round:    s.Round,
		Galaxy:   s.Galaxy,
		Players:  make(map[bson.ObjectID]PublicPlayerView, len(s.Players)),
		Tactical: s.Tactical,
		VPTarget: s.VPTarget,
		Winner:   s.Winner,
	}
	if s.Pending == nil || s.Pending.Player == viewer {
		out.Pending = s.Pending
	}
	for id, p := range s.Players {
		view := PublicPlayerView{
			ID:      p.ID,
			Faction: string(p.Faction),
			Color:   string(p.Color),
			Command: PublicCommandView{
				TacticPool:   p.Command.TacticPool,
				FleetPool:    p.Command.FleetPool,
				StrategyPool: p.Command.StrategyPool,
			},
			TradeGoods:           p.TradeGoods,
			Commodities:          p.Commodities,
			VictoryPoints:        p.VictoryPoints,
			ActionCardCount:      len(p.ActionCardHand),
			PromissoryNoteCount:  len(p.PromissoryNoteHand),
			SecretObjectiveCount: len(p.SecretObjectiveHand),
		}
		if id == viewer {
			view.ActionCardHand = p.ActionCardHand
			view.PromissoryNoteHand = p.PromissoryNoteHand
			view.SecretObjectiveHand = p.SecretObjectiveHand
		}
		out.Players[id] = view
	}
	for _, e := range log {
		if e.visibleTo(viewer) {
			out.VisibleEvents = append(out.VisibleEvents, e)
		}
	}
	return out
}

// visibleCard reports whether a card's content may be shown to viewer
// given its current zone: hands and decks are hidden unless the viewer
// owns the hand; discard, play area, and purged are public (spec §3.1
// "its state ... is held outside the card value", §6.1 observe).
func visibleCard(loc cards.Location, owner, viewer bson.ObjectID) bool {
	switch loc {
	case cards.LocHand:
		return owner == viewer
	case cards.LocDeck:
		return false
	default:
		return true
	}
}
