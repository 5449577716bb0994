// Package abilities implements the Ability & Effect Resolution Engine
// (spec §4.3, component C3): ability registration, timing windows,
// mandatory/optional resolution order, cancellation, and the FIFO effect
// queue. It replaces the source's polymorphic ability classes with a
// registry of declarative AbilityDescriptors (spec §9 design note #1),
// grounded on the teacher's ships/ability_effects.go
// (map[AbilityID]StatMods as a flat effects catalog) generalized into a
// full descriptor (source/timing/condition/cost/effect/cancellation) and
// on ships/modifier_stack.go's prioritized-layer composition for how
// passive effects accumulate (internal/modifiers.Stack).
package abilities

import "go.mongodb.org/mongo-driver/v2/bson"

// ID is the stable identifier of an ability (card text, unit ability,
// faction passive, or law effect).
type ID string

// RelativeOrdering is "before" | "when" | "after" a trigger point (spec
// §4.3 timing window model).
type RelativeOrdering string

const (
	Before RelativeOrdering = "before"
	When   RelativeOrdering = "when"
	After  RelativeOrdering = "after"
)

// Window identifies a timing window by (phase/step, trigger, ordering).
type Window struct {
	Step    string // e.g. "tactical.movement", "status.score_objectives"
	Trigger string // e.g. "unit_would_be_destroyed", "agenda_revealed"
	Order   RelativeOrdering
}

// SourceKind identifies what kind of game object an ability originates
// from (spec §4.3 "a source").
type SourceKind string

const (
	SourceCard     SourceKind = "card"
	SourceUnit     SourceKind = "unit_type"
	SourceFaction  SourceKind = "faction_sheet"
	SourceLaw      SourceKind = "law"
	SourceLeader   SourceKind = "leader"
)

// Timing is mandatory or optional for the controlling player.
type Timing string

const (
	Mandatory Timing = "mandatory"
	Optional  Timing = "optional"
)

// Cancellability describes whether and how an ability may be cancelled.
type Cancellability struct {
	Cancellable bool
	ByCardKinds []string // card kinds whose text can cancel this ability, e.g. "action:Sabotage"
}

// Descriptor is the data-only definition of one ability (spec §4.3
// "Each ability has..."). Condition/Cost/Effect are pure functions over
// a Context so a Descriptor stays serializable/comparable metadata while
// still being executable — same split the teacher keeps between
// BaseBuilding (data) and the (absent, by design) per-building logic.
type Descriptor struct {
	ID          ID
	Source      SourceKind
	SourceID    string // card id / unit type / faction key / law id / leader id, as a string
	Window      Window
	Timing      Timing
	Cancel      Cancellability

	// Condition reports whether the ability is currently eligible,
	// given the active player for this window (spec: "whose conditions
	// hold").
	Condition func(ctx *Context) bool

	// Cost, if non-nil, must be paid (exhausting a card, spending trade
	// goods, purging, committing a ground force) before Effect runs; it
	// returns false if the cost cannot be paid.
	Cost func(ctx *Context) bool

	// Effect produces the atomic effects to enqueue (spec: "a
	// deterministic transformation into a queue of lower-level atomic
	// effects").
	Effect func(ctx *Context) []Atom
}

// Registry is the central ability dictionary, analogous to
// cards.Registry and to the teacher's AbilityEffectsCatalog, but keyed
// by ability ID with full descriptors rather than a flat stat-mod map.
type Registry struct {
	byID map[ID]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byID: map[ID]Descriptor{}}
}

func (r *Registry) Register(d Descriptor) {
	r.byID[d.ID] = d
}

func (r *Registry) Get(id ID) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns every registered descriptor, in no particular order (used
// by callers fanning out eligibility checks across the whole registry
// rather than one specific window).
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	return out
}

// ForWindow returns every registered descriptor whose Window matches w.
func (r *Registry) ForWindow(w Window) []Descriptor {
	var out []Descriptor
	for _, d := range r.byID {
		if d.Window == w {
			out = append(out, d)
		}
	}
	return out
}

// Context is the minimal state-access surface an ability Condition/Cost/
// Effect function needs. It is a struct whose state access goes through
// the Mutator interface (dependency inversion, same shape as the
// teacher's diplomacy.Provider) so abilities never imports the engine
// package; engine's GameState implements Mutator.
type Context struct {
	Mutator     Mutator
	ActivePlayer bson.ObjectID
	Owner        bson.ObjectID // the player who owns/controls this ability's source
	Window       Window
	// Params carries intent-supplied parameters (target ids, choices)
	// for the specific ConfirmOptional/PlayActionCard/etc. intent that
	// triggered this resolution.
	Params map[string]any
}

// Mutator is the effect queue's execution surface: every atom ultimately
// calls one of these methods. Grounded on spec §4.3's own atom list
// ("gain trade good, draw action card, produce hit on unit, move unit,
// exhaust planet, score objective, etc.").
type Mutator interface {
	GainTradeGood(player bson.ObjectID, n int) Event
	DrawActionCard(player bson.ObjectID) Event
	ExhaustPlanet(planet bson.ObjectID) Event
	ReadyPlanet(planet bson.ObjectID) Event
	ProduceHit(unit bson.ObjectID) Event
	DestroyUnit(unit bson.ObjectID) Event
	MoveUnit(unit, toSystem bson.ObjectID) Event
	ScoreObjective(player, objective bson.ObjectID) Event
	PurgeCard(card bson.ObjectID) Event
	DiscardCard(card bson.ObjectID) Event
	GainCommandToken(player bson.ObjectID, pool string) Event
	ChangePlanetControl(planet, newController bson.ObjectID) Event
	Warn(code, message string) Event
}

// Event is the minimal shape an atom's execution reports back; the full
// tagged event schema lives in internal/engine (spec §6.2), this is
// just what the effect queue threads through.
type Event struct {
	Kind    string
	Data    map[string]any
}

// Atom is one queued, FIFO-resolved effect (spec §4.3 "Effect queue").
// Atoms that fail their preconditions at resolution time silently no-op
// (emitting a Warning event) unless the originating ability text
// specifies otherwise — callers encode "otherwise" by having Run itself
// choose the alternative atom.
type Atom interface {
	Run(ctx *Context) Event
}

// AtomFunc adapts a function to the Atom interface.
type AtomFunc func(ctx *Context) Event

func (f AtomFunc) Run(ctx *Context) Event { return f(ctx) }
