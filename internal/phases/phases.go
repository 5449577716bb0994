// Package phases implements the Phase / Round Controller (spec §4.5,
// component C5): Strategy -> Action -> Status -> (Agenda if custodians
// removed) -> next round, plus the game-end check. It is grounded on the
// teacher's maps/queue.go PlayerAction document (a typed, timestamped,
// ordered record of one player's in-flight action) generalized into the
// phase/turn bookkeeping, and on diplomacy/state.go's small explicit
// state-struct style for round/phase tracking.
package phases

import "go.mongodb.org/mongo-driver/v2/bson"

// Phase identifies the current top-level phase (spec §3.3 Round
// lifecycle).
type Phase string

const (
	PhaseStrategy Phase = "strategy"
	PhaseAction   Phase = "action"
	PhaseStatus   Phase = "status"
	PhaseAgenda   Phase = "agenda"
)

// StatusStep enumerates the ordered status-phase steps (spec §4.5).
type StatusStep int

const (
	StepScoreObjectives StatusStep = iota
	StepRevealPublicObjective
	StepDrawActionCards
	StepRemoveCommandTokens
	StepGainRedistributeCommandTokens
	StepReadyCards
	StepRepairUnits
	StepReturnStrategyCards
	StepStatusDone
)

// AgendaSubPhase tracks progress through the two agendas resolved per
// agenda phase (spec §4.5 Agenda phase).
type AgendaSubPhase int

const (
	AgendaNotStarted AgendaSubPhase = iota
	AgendaFirstReveal
	AgendaFirstVoting
	AgendaFirstResolve
	AgendaSecondReveal
	AgendaSecondVoting
	AgendaSecondResolve
	AgendaDone
)

// RoundState is the controller's persistent sub-state (spec §3.1
// GameState "phase sub-state").
type RoundState struct {
	Round             int            `bson:"round" json:"round"`
	Phase             Phase          `bson:"phase" json:"phase"`
	ActivePlayer      bson.ObjectID  `bson:"activePlayer" json:"activePlayer"`
	Speaker           bson.ObjectID  `bson:"speaker" json:"speaker"`
	CustodiansRemoved bool           `bson:"custodiansRemoved" json:"custodiansRemoved"`

	InitiativeOrder []bson.ObjectID `bson:"initiativeOrder,omitempty" json:"initiativeOrder,omitempty"`
	Passed          map[bson.ObjectID]bool `bson:"passed,omitempty" json:"passed,omitempty"`

	StatusStep  StatusStep     `bson:"statusStep" json:"statusStep"`
	AgendaIndex int            `bson:"agendaIndex" json:"agendaIndex"` // 0 or 1: which of the two agendas
	AgendaSub   AgendaSubPhase `bson:"agendaSub" json:"agendaSub"`
}

// NewRoundState starts round 1 in the Strategy phase (spec §3.3 "created
// by a setup protocol").
func NewRoundState(speaker bson.ObjectID) *RoundState {
	return &RoundState{
		Round:   1,
		Phase:   PhaseStrategy,
		Speaker: speaker,
		Passed:  map[bson.ObjectID]bool{},
	}
}

// ClockwiseFrom implements abilities.TurnOrder: seating order is
// initiative order starting from `player`, wrapping around. This is used
// both for ability-window resolution (spec §4.3) and status/agenda
// per-player steps (spec §4.5).
func (r *RoundState) ClockwiseFrom(player bson.ObjectID) []bson.ObjectID {
	n := len(r.InitiativeOrder)
	if n == 0 {
		return []bson.ObjectID{player}
	}
	start := 0
	for i, p := range r.InitiativeOrder {
		if p == player {
			start = i
			break
		}
	}
	out := make([]bson.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.InitiativeOrder[(start+i)%n])
	}
	return out
}

// CanPass reports whether a player may Pass during the action phase:
// only once they have performed the strategic action of every strategy
// card they hold (spec §4.5 Action phase).
func CanPass(strategyCardsHeld, strategicActionsPerformed int) bool {
	return strategicActionsPerformed >= strategyCardsHeld
}

// AllPassed reports whether every player in turnOrder has passed,
// ending the action phase (spec §4.5).
func AllPassed(turnOrder []bson.ObjectID, passed map[bson.ObjectID]bool) bool {
	for _, p := range turnOrder {
		if !passed[p] {
			return false
		}
	}
	return true
}

// AdvanceStatusStep moves to the next status-phase step in order (spec
// §4.5 steps 1-8), stopping at StepStatusDone. It does not change the
// phase; branching after step 8 to the Agenda phase or the next round
// is left to the caller.
func (r *RoundState) AdvanceStatusStep() {
	if r.StatusStep < StepStatusDone {
		r.StatusStep++
	}
}

// NextRound resets round-scoped sub-state and increments the round
// counter, transitioning back to the Strategy phase.
func (r *RoundState) NextRound() {
	r.Round++
	r.Phase = PhaseStrategy
	r.StatusStep = StepScoreObjectives
	r.AgendaIndex = 0
	r.AgendaSub = AgendaNotStarted
	r.Passed = map[bson.ObjectID]bool{}
}

// EnterAgendaPhase transitions from end-of-status into the agenda phase
// (spec §4.5 "If the custodians token has been removed, continue to
// Agenda phase").
func (r *RoundState) EnterAgendaPhase() {
	r.Phase = PhaseAgenda
	r.AgendaIndex = 0
	r.AgendaSub = AgendaFirstReveal
}

// VPTarget is 10 or 14 depending on setup (spec §3.2 invariant 8).
type VPTarget int

const (
	VPTargetStandard VPTarget = 10
	VPTargetExtended VPTarget = 14
)

// GameEndCheck reports the winner, if any, applying the simultaneous-
// trigger tie-break: earliest in initiativeOrder among everyone who has
// reached target (spec §4.5 Game end, §9 open question 1 decision: the
// check is performed at the end of the window, not per effect-queue
// atom).
func GameEndCheck(vp map[bson.ObjectID]int, target VPTarget, initiativeOrder []bson.ObjectID) (winner bson.ObjectID, ended bool) {
	for _, p := range initiativeOrder {
		if vp[p] >= int(target) {
			return p, true
		}
	}
	// Fall back to map iteration for players not in initiativeOrder yet
	// (shouldn't happen once the game is underway, but keeps this total).
	for p, v := range vp {
		if v >= int(target) {
			return p, true
		}
	}
	return bson.ObjectID{}, false
}
