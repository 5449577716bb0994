package engine

import "go.mongodb.org/mongo-driver/v2/bson"

// Event is the tagged, viewer-scoped observable log entry (spec §6.2).
// ViewerScope nil means publicly visible to all; a non-nil slice
// restricts visibility to those player ids (e.g. the contents of a card
// drawn to hand).
type Event struct {
	Kind        string
	Data        map[string]any
	ViewerScope []bson.ObjectID
}

// Representative event kind constants (spec §6.2); Data's shape is
// documented per kind rather than typed, matching the teacher's
// bson.D-payload style in maps/queue.go (PlayerAction.Payload).
const (
	EventUnitMoved            = "UnitMoved"
	EventUnitDestroyed        = "UnitDestroyed"
	EventDiceRolled           = "DiceRolled"
	EventHitsProduced         = "HitsProduced"
	EventHitAssigned          = "HitAssigned"
	EventSustainDamage        = "SustainDamage"
	EventPlanetExhausted      = "PlanetExhausted"
	EventPlanetReadied        = "PlanetReadied"
	EventPlanetControlChanged = "PlanetControlChanged"
	EventCardDrawn            = "CardDrawn"
	EventCardDiscarded        = "CardDiscarded"
	EventCardPurged           = "CardPurged"
	EventObjectiveScored      = "ObjectiveScored"
	EventLawEnacted           = "LawEnacted"
	EventLawDiscarded         = "LawDiscarded"
	EventCommandTokenPlaced   = "CommandTokenPlaced"
	EventCommandTokenReturned = "CommandTokenReturned"
	EventTradeGoodGained      = "TradeGoodGained"
	EventCommodityConverted   = "CommodityConverted"
	EventTransactionCompleted = "TransactionCompleted"
	EventPhaseChanged         = "PhaseChanged"
	EventGameEnded            = "GameEnded"
	EventWarning              = "Warning"
)

// visibleTo reports whether viewer may see this event (spec P9
// Observation safety).
func (e Event) visibleTo(viewer bson.ObjectID) bool {
	if e.ViewerScope == nil {
		return true
	}
	for _, v := range e.ViewerScope {
		if v == viewer {
			return true
		}
	}
	return false
}
