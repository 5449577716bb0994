package engine

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
)

// GameState implements abilities.Mutator so the ability engine's effect
// queue can run atoms against real state without abilities importing
// engine (dependency inversion, see internal/abilities doc comment).
var _ abilities.Mutator = (*GameState)(nil)

func (s *GameState) GainTradeGood(player bson.ObjectID, n int) abilities.Event {
	if p := s.Players[player]; p != nil {
		p.TradeGoods += n
	}
	s.emit(EventTradeGoodGained, map[string]any{"player": player, "n": n})
	return abilities.Event{Kind: EventTradeGoodGained, Data: map[string]any{"player": player, "n": n}}
}

func (s *GameState) DrawActionCard(player bson.ObjectID) abilities.Event {
	id, ok := s.Decks.Action.Draw(s.Stream)
	if !ok {
		s.emit(EventWarning, map[string]any{"code": "deck.empty", "deck": "action"})
		return abilities.Event{Kind: EventWarning}
	}
	if p := s.Players[player]; p != nil {
		p.ActionCardHand = append(p.ActionCardHand, id)
	}
	s.emit(EventCardDrawn, map[string]any{"player": player, "card": id})
	return abilities.Event{Kind: EventCardDrawn, Data: map[string]any{"player": player, "card": id}}
}

func (s *GameState) ExhaustPlanet(planet bson.ObjectID) abilities.Event {
	if p := s.Galaxy.Planet(planet); p != nil {
		p.Exhausted = true
	}
	s.emit(EventPlanetExhausted, map[string]any{"planet": planet})
	return abilities.Event{Kind: EventPlanetExhausted, Data: map[string]any{"planet": planet}}
}

func (s *GameState) ReadyPlanet(planet bson.ObjectID) abilities.Event {
	if p := s.Galaxy.Planet(planet); p != nil {
		p.Exhausted = false
	}
	s.emit(EventPlanetReadied, map[string]any{"planet": planet})
	return abilities.Event{Kind: EventPlanetReadied, Data: map[string]any{"planet": planet}}
}

func (s *GameState) ProduceHit(unit bson.ObjectID) abilities.Event {
	s.emit(EventHitsProduced, map[string]any{"unit": unit})
	return abilities.Event{Kind: EventHitsProduced, Data: map[string]any{"unit": unit}}
}

func (s *GameState) DestroyUnit(unit bson.ObjectID) abilities.Event {
	if u := s.Units[unit]; u != nil {
		s.removeUnitFromCurrentLocation(u)
		delete(s.Units, unit)
	}
	s.emit(EventUnitDestroyed, map[string]any{"unit": unit})
	return abilities.Event{Kind: EventUnitDestroyed, Data: map[string]any{"unit": unit}}
}

func (s *GameState) MoveUnit(unit, toSystem bson.ObjectID) abilities.Event {
	if u := s.Units[unit]; u != nil {
		s.placeUnitInSpace(u, toSystem)
	}
	s.emit(EventUnitMoved, map[string]any{"unit": unit, "to": toSystem})
	return abilities.Event{Kind: EventUnitMoved, Data: map[string]any{"unit": unit, "to": toSystem}}
}

func (s *GameState) ScoreObjective(player, objective bson.ObjectID) abilities.Event {
	if p := s.Players[player]; p != nil {
		p.ScoredObjectiveIDs = append(p.ScoredObjectiveIDs, objective)
	}
	s.emit(EventObjectiveScored, map[string]any{"player": player, "objective": objective})
	s.checkGameEnd()
	return abilities.Event{Kind: EventObjectiveScored, Data: map[string]any{"player": player, "objective": objective}}
}

func (s *GameState) PurgeCard(card bson.ObjectID) abilities.Event {
	s.emit(EventCardPurged, map[string]any{"card": card})
	return abilities.Event{Kind: EventCardPurged, Data: map[string]any{"card": card}}
}

func (s *GameState) DiscardCard(card bson.ObjectID) abilities.Event {
	s.emit(EventCardDiscarded, map[string]any{"card": card})
	return abilities.Event{Kind: EventCardDiscarded, Data: map[string]any{"card": card}}
}

func (s *GameState) GainCommandToken(player bson.ObjectID, pool string) abilities.Event {
	if p := s.Players[player]; p != nil {
		switch pool {
		case "tactic":
			p.Command.TacticPool++
		case "fleet":
			p.Command.FleetPool++
		case "strategy":
			p.Command.StrategyPool++
		}
	}
	s.emit(EventCommandTokenReturned, map[string]any{"player": player, "pool": pool})
	return abilities.Event{Kind: EventCommandTokenReturned}
}

func (s *GameState) ChangePlanetControl(planet, newController bson.ObjectID) abilities.Event {
	if p := s.Galaxy.Planet(planet); p != nil {
		p.Controller = &newController
	}
	s.emit(EventPlanetControlChanged, map[string]any{"planet": planet, "controller": newController})
	return abilities.Event{Kind: EventPlanetControlChanged, Data: map[string]any{"planet": planet, "controller": newController}}
}

func (s *GameState) Warn(code, message string) abilities.Event {
	s.emit(EventWarning, map[string]any{"code": code, "message": message})
	return abilities.Event{Kind: EventWarning}
}
