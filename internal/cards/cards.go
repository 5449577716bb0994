// Package cards implements the Card entities and Deck/DiscardPile
// lifecycle (spec §3.1 "Card entities", §3.3 lifecycles, §4.2 Decks and
// hands). It is adapted from the teacher's buildings/buildings.go, whose
// "shared interface + field-only concrete structs, no logic" pattern
// (Building interface, BaseBuilding family) is exactly spec §9 design
// note #1's prescription: "a tagged variant per card kind combined with
// a registry of ability descriptors", replacing the source's polymorphic
// classes. Unit costs are not kept here (they live in units.Blueprints),
// and tech prerequisites are a field of each technology card, not a
// separate table.
package cards

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/galaxy"
	"github.com/nicoberrocal/ti4engine/internal/rng"
)

// Kind tags which concrete card family a Card belongs to.
type Kind string

const (
	KindAction      Kind = "action"
	KindAgendaLaw   Kind = "agenda_law"
	KindAgendaDirective Kind = "agenda_directive"
	KindObjectivePublicI   Kind = "objective_public_1"
	KindObjectivePublicII  Kind = "objective_public_2"
	KindObjectiveSecret    Kind = "objective_secret"
	KindTechnology  Kind = "technology"
	KindRelic       Kind = "relic"
	KindRelicFragment Kind = "relic_fragment"
	KindExploration Kind = "exploration"
	KindPromissory  Kind = "promissory"
)

// Card is the shared interface every concrete card kind satisfies. Like
// the teacher's Building interface, it intentionally carries only
// identity accessors — behavior lives in the ability registry
// (internal/abilities), not on the card struct, so new cards are data.
type Card interface {
	CardID() bson.ObjectID
	CardKind() Kind
}

// base is embedded by every concrete card struct for the common identity
// fields, mirroring the teacher's BaseBuilding embedding pattern.
type base struct {
	ID   bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Kind Kind          `bson:"kind" json:"kind"`
	Name string        `bson:"name" json:"name"`
}

func (b base) CardID() bson.ObjectID { return b.ID }
func (b base) CardKind() Kind        { return b.Kind }

// ActionCard (spec §3.1/§3.3).
type ActionCard struct {
	base
}

// AgendaCard is either a Law or a Directive (spec §3.1 Agenda).
type AgendaCard struct {
	base
	ElectionRequired bool `bson:"electionRequired" json:"electionRequired"`
}

// ObjectiveTiming enumerates when an objective's condition may be
// checked (spec §4.2 "Score conditions are checked at the listed timing
// only").
type ObjectiveTiming string

const (
	TimingStatusPhase ObjectiveTiming = "status_phase"
	TimingActionPhase ObjectiveTiming = "action_phase_special"
)

// ObjectiveCard (spec §3.1 Objective).
type ObjectiveCard struct {
	base
	RequiredVP int             `bson:"requiredVP" json:"requiredVP"`
	Timing     ObjectiveTiming `bson:"timing" json:"timing"`
}

// TechColor is a prerequisite color for technology (spec §3.1 Technology
// card, "colored prerequisites").
type TechColor string

const (
	TechBiotic     TechColor = "biotic"
	TechPropulsion TechColor = "propulsion"
	TechCybernetic TechColor = "cybernetic"
	TechWarfare    TechColor = "warfare"
)

// TechnologyCard (spec §3.1 Technology card).
type TechnologyCard struct {
	base
	Prerequisites   map[TechColor]int `bson:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	UnitUpgradeType string            `bson:"unitUpgradeType,omitempty" json:"unitUpgradeType,omitempty"` // non-empty if this is a unit-upgrade tech
}

// RelicCard / RelicFragment (spec §3.3 lifecycle).
type RelicCard struct {
	base
}

type RelicFragmentCard struct {
	base
	Set string `bson:"set" json:"set"` // matching-set identifier required to combine fragments
}

// ExplorationCard (spec §3.1 Card entities: "with trait or frontier").
type ExplorationCard struct {
	base
	Trait       galaxy.PlanetTrait `bson:"trait,omitempty" json:"trait,omitempty"`
	IsFrontier  bool               `bson:"isFrontier" json:"isFrontier"`
	IsAttachment bool              `bson:"isAttachment" json:"isAttachment"`
	IsRelicFragment bool           `bson:"isRelicFragment" json:"isRelicFragment"`
}

// PromissoryNote (spec §3.1/§3.3).
type PromissoryNote struct {
	base
	OwnerID bson.ObjectID `bson:"ownerId" json:"ownerId"` // faction this note belongs to; never its own player/color when played
}

// Registry is the central card dictionary (spec §9 design note #2:
// "cards live in a central dictionary"; ownership forms a DAG via stable
// ids). It is deliberately not keyed by Kind-specific maps so that any
// card id resolves the same way regardless of family, matching the
// Card-interface polymorphism above.
type Registry struct {
	byID map[bson.ObjectID]Card
}

func NewRegistry() *Registry {
	return &Registry{byID: map[bson.ObjectID]Card{}}
}

func (r *Registry) Register(c Card) {
	r.byID[c.CardID()] = c
}

func (r *Registry) Lookup(id bson.ObjectID) Card {
	return r.byID[id]
}

// Location is a card's current zone (spec §3.1 "its state ... is held
// outside the card value").
type Location string

const (
	LocDeck     Location = "deck"
	LocHand     Location = "hand"
	LocPlay     Location = "play"
	LocDiscard  Location = "discard"
	LocPurged   Location = "purged"
	LocAttached Location = "attached"
)

// Deck is an ordered sequence of card ids; drawing returns the top (end
// of slice) and shortens the deck (spec §4.2). When exhausted it is
// refilled by shuffling the matching discard pile in place.
type Deck struct {
	Cards   []bson.ObjectID `bson:"cards" json:"cards"`
	Discard []bson.ObjectID `bson:"discard" json:"discard"`
}

// Draw returns the top card id and ok=false if both the deck and its
// discard pile are empty (spec B1: UnresolvableEffect in that case,
// signaled to the caller via the bool).
func (d *Deck) Draw(r *rng.Stream) (bson.ObjectID, bool) {
	if len(d.Cards) == 0 {
		if len(d.Discard) == 0 {
			return bson.ObjectID{}, false
		}
		d.Cards = d.Discard
		d.Discard = nil
		r.Shuffle(len(d.Cards), func(i, j int) { d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i] })
	}
	n := len(d.Cards)
	top := d.Cards[n-1]
	d.Cards = d.Cards[:n-1]
	return top, true
}

// DiscardCard appends a card id to the discard pile.
func (d *Deck) DiscardCard(id bson.ObjectID) {
	d.Discard = append(d.Discard, id)
}

// Empty reports whether both the deck and discard are empty.
func (d *Deck) Empty() bool {
	return len(d.Cards) == 0 && len(d.Discard) == 0
}
