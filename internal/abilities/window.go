package abilities

import "go.mongodb.org/mongo-driver/v2/bson"

// TurnOrder supplies clockwise player order starting from a given player
// (spec §4.3 "proceeding clockwise (LRR default)"); the engine's phase
// controller owns the authoritative seating order, so this is another
// dependency-inversion interface.
type TurnOrder interface {
	ClockwiseFrom(player bson.ObjectID) []bson.ObjectID
}

// Decision is how a player responds when offered an eligible ability:
// play it (with params) or decline.
type Decision struct {
	Play   bool
	Ability ID
	Params map[string]any
}

// DecisionSource supplies each player's decision during a window. In the
// real engine this is backed by PendingDecision / the next delivered
// intent (spec §5 suspension points); tests can supply a canned source.
type DecisionSource interface {
	Decide(player bson.ObjectID, eligible []Descriptor) Decision
}

// Queue is the FIFO effect queue (spec §4.3 "Effect queue"). It holds
// only the atoms enqueued before Drain runs; see Drain for atoms enqueued
// while draining.
type Queue struct {
	atoms []Atom
}

func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Enqueue(atoms ...Atom) {
	q.atoms = append(q.atoms, atoms...)
}

// Drain runs every queued atom FIFO, returning the events produced. New
// atoms enqueued by an atom's own execution are not supported here
// (intentionally: spec atoms are "atomic operations on state", and any
// cascade must come from a fresh Resolve of the newly opened window, not
// from atoms enqueuing atoms) — triggered abilities instead open a new
// Resolve call from the caller, keeping the trigger graph explicit.
func (q *Queue) Drain(ctx *Context) []Event {
	var events []Event
	for _, a := range q.atoms {
		events = append(events, a.Run(ctx))
	}
	q.atoms = nil
	return events
}

// Resolve opens one timing window end-to-end (spec §4.3 "Timing window
// model", steps 1-4):
//  1. gather eligible descriptors,
//  2. resolve mandatory ones in clockwise order starting at the active
//     player, one at a time, re-gathering eligibility after each,
//  3. offer optional ones in the same order; a player may decline or
//     play one eligible ability, then eligibility is re-evaluated,
//  4. close when the active player passes and then every other player
//     passes in a full clockwise round with no ability played.
func Resolve(reg *Registry, mut Mutator, order TurnOrder, decide DecisionSource, active bson.ObjectID, win Window) []Event {
	var events []Event
	q := NewQueue()

	runOne := func(player bson.ObjectID, d Descriptor, params map[string]any) {
		ctx := &Context{Mutator: mut, ActivePlayer: active, Owner: player, Window: win, Params: params}
		if d.Cost != nil && !d.Cost(ctx) {
			events = append(events, mut.Warn("ability.cost_unpaid", string(d.ID)))
			return
		}
		q.Enqueue(d.Effect(ctx)...)
		events = append(events, q.Drain(ctx)...)
	}

	eligibleFor := func(player bson.ObjectID, timing Timing) []Descriptor {
		var out []Descriptor
		for _, d := range reg.ForWindow(win) {
			if d.Timing != timing {
				continue
			}
			ctx := &Context{Mutator: mut, ActivePlayer: active, Owner: player, Window: win}
			if d.Condition == nil || d.Condition(ctx) {
				out = append(out, d)
			}
		}
		return out
	}

	seating := order.ClockwiseFrom(active)

	// Step 2: mandatory abilities, clockwise from active player, one at
	// a time, re-evaluating eligibility after each resolves.
	for changed := true; changed; {
		changed = false
		for _, player := range seating {
			elig := eligibleFor(player, Mandatory)
			if len(elig) == 0 {
				continue
			}
			runOne(player, elig[0], nil)
			changed = true
		}
	}

	// Step 3/4: optional abilities offered in turn order; the window
	// closes once a full clockwise round passes with nobody playing.
	for {
		anyPlayed := false
		for _, player := range seating {
			elig := eligibleFor(player, Optional)
			if len(elig) == 0 {
				continue
			}
			dec := decide.Decide(player, elig)
			if !dec.Play {
				continue
			}
			d, ok := reg.Get(dec.Ability)
			if !ok {
				continue
			}
			runOne(player, d, dec.Params)
			anyPlayed = true
		}
		if !anyPlayed {
			break
		}
	}

	return events
}

// RerollState tracks, per ability, which die indices it has already
// rerolled this window (spec §4.3 Rerolls/Rule 74: "each reroll ability
// may reroll a specific die at most once per ability; multiple distinct
// abilities may each reroll the same die"). It is scoped to one combat
// roll's reroll window and discarded afterward.
type RerollState struct {
	used map[ID]map[int]bool
}

func NewRerollState() *RerollState {
	return &RerollState{used: map[ID]map[int]bool{}}
}

// CanReroll reports whether ability has not already rerolled dieIndex.
func (r *RerollState) CanReroll(ability ID, dieIndex int) bool {
	return !r.used[ability][dieIndex]
}

// MarkRerolled records that ability has now rerolled dieIndex.
func (r *RerollState) MarkRerolled(ability ID, dieIndex int) {
	if r.used[ability] == nil {
		r.used[ability] = map[int]bool{}
	}
	r.used[ability][dieIndex] = true
}
