// Package transactions implements binding component exchanges between
// players (spec §1 "the core... enforces only binding transactions") and
// the agenda-phase transaction-frequency limit (spec §9 open question 3).
//
// It is adapted from the teacher's diplomacy package: diplomacy/state.go's
// Pair/normalizePair/Entry/State shape (a symmetric per-player-pair
// relation, keyed so (a,b) and (b,a) collide) is reused verbatim for
// "how many transactions has this pair completed this agenda", and
// diplomacy/provider.go's Provider interface — originally
// AreAllies/AreEnemies gating stack-vs-stack combat — becomes Neighbor,
// gating which pairs may transact at all outside the agenda phase
// (Rule 24: only with a neighbor, unless Rule 94.6 agenda-phase
// transactions apply). Non-binding "deals" (spoken agreements with no
// component exchange) are out of scope (spec §1) and have no
// representation here.
package transactions

import (
	"bytes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Pair is a normalized unordered player pair, same trick as the
// teacher's diplomacy.Pair: whichever id sorts first by byte value
// becomes A, so (a,b) and (b,a) always produce an identical key.
type Pair struct {
	A bson.ObjectID
	B bson.ObjectID
}

func NewPair(a, b bson.ObjectID) Pair {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return Pair{A: a, B: b}
	}
	return Pair{A: b, B: a}
}

// Neighbor reports whether two players are considered neighbors for
// transaction purposes (adjacent systems each controls, or an open
// wormhole link per LRR 24.3) — evaluated by the engine's galaxy lookup;
// this package only consumes the boolean.
type Neighbor interface {
	AreNeighbors(a, b bson.ObjectID) bool
}

// Offer is one side of a proposed transaction: components given.
type Offer struct {
	Resources        int             `bson:"resources,omitempty" json:"resources,omitempty"`
	Influence        int             `bson:"influence,omitempty" json:"influence,omitempty"`
	TradeGoods       int             `bson:"tradeGoods,omitempty" json:"tradeGoods,omitempty"`
	Commodities      int             `bson:"commodities,omitempty" json:"commodities,omitempty"`
	PromissoryNoteID *bson.ObjectID  `bson:"promissoryNoteId,omitempty" json:"promissoryNoteId,omitempty"`
	RelicID          *bson.ObjectID  `bson:"relicId,omitempty" json:"relicId,omitempty"`
}

// CountsAsPromissoryNote reports whether the offer includes a promissory
// note (max one per transaction, spec §6.1 ProposeTransaction).
func (o Offer) CountsAsPromissoryNote() bool { return o.PromissoryNoteID != nil }

// Phase identifies which phase a transaction limit applies within.
// Agenda-phase transactions are counted per-agenda, not per-phase (open
// question 3 decision below).
type Phase string

const (
	PhaseAction Phase = "action"
	PhaseAgenda Phase = "agenda"
)

// counterKey scopes a transaction-count entry to a phase occurrence. For
// the agenda phase, AgendaIndex (0 or 1, the first or second agenda
// resolved this phase) is part of the key — open question 3 decision in
// DESIGN.md: at most one transaction with each other player per agenda,
// i.e. the counter resets between the two agendas, not just between rounds.
type counterKey struct {
	pair        Pair
	phase       Phase
	agendaIndex int
}

// State tracks, per normalized pair and per phase-occurrence, how many
// transactions have completed — direct structural reuse of the teacher's
// diplomacy.State{MapID, Relations map[Pair]Entry}.
type State struct {
	counts map[counterKey]int
}

func NewState() *State {
	return &State{counts: map[counterKey]int{}}
}

// MaxPerNonNeighborAgendaPair is the Rule 94.6 limit: during the agenda
// phase, players who are not neighbors may still transact, capped at one
// transaction with each other player per agenda.
const MaxPerNonNeighborAgendaPair = 1

// CanTransact reports whether a and b may complete another transaction
// right now. Outside the agenda phase, neighbor-gating is the caller's
// responsibility (via Neighbor); inside the agenda phase this enforces
// the one-per-agenda cap regardless of neighbor status.
func (s *State) CanTransact(a, b bson.ObjectID, phase Phase, agendaIndex int) bool {
	if phase != PhaseAgenda {
		return true
	}
	key := counterKey{pair: NewPair(a, b), phase: phase, agendaIndex: agendaIndex}
	return s.counts[key] < MaxPerNonNeighborAgendaPair
}

// RecordCompleted increments the pair's transaction counter for the
// given phase occurrence.
func (s *State) RecordCompleted(a, b bson.ObjectID, phase Phase, agendaIndex int) {
	key := counterKey{pair: NewPair(a, b), phase: phase, agendaIndex: agendaIndex}
	s.counts[key]++
}

// ResetAgenda clears agenda-phase counters, called once at the start of
// each of the two agendas resolved per phase (spec §4.5 Agenda phase).
func (s *State) ResetAgenda(agendaIndex int) {
	for k := range s.counts {
		if k.phase == PhaseAgenda && k.agendaIndex == agendaIndex {
			delete(s.counts, k)
		}
	}
}
