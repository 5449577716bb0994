package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
	"github.com/nicoberrocal/ti4engine/internal/phases"
	"github.com/nicoberrocal/ti4engine/internal/tactical"
)

// eligibilityCheck is one independent candidate-intent-kind check:
// whether player currently has at least one legal intent of that shape.
// Each check only reads s, never mutates it, so the set can run
// concurrently (spec §2 legal_intents "does not mutate State").
type eligibilityCheck struct {
	kind  IntentKind
	check func(s *GameState, player bson.ObjectID) bool
}

var eligibilityChecks = []eligibilityCheck{
	{IntentPass, func(s *GameState, player bson.ObjectID) bool {
		return s.Round.Phase == phases.PhaseAction && !s.Round.Passed[player]
	}},
	{IntentActivate, func(s *GameState, player bson.ObjectID) bool {
		if s.Round.Phase != phases.PhaseAction || s.Round.Passed[player] {
			return false
		}
		p := s.Players[player]
		return p != nil && p.Command.TacticPool > 0 && (s.Tactical == nil || s.Tactical.Step == tactical.StepDone || s.Tactical.Step == tactical.StepIdle)
	}},
	{IntentDeclareMovement, func(s *GameState, player bson.ObjectID) bool {
		return s.Tactical != nil && s.Tactical.Player == player && s.Tactical.Step == tactical.StepMovement
	}},
	{IntentProduce, func(s *GameState, player bson.ObjectID) bool {
		return s.Tactical != nil && s.Tactical.Player == player && s.Tactical.Step == tactical.StepProduction
	}},
	{IntentCommit, func(s *GameState, player bson.ObjectID) bool {
		return s.Tactical != nil && s.Tactical.Player == player && s.Tactical.Step == tactical.StepInvasion
	}},
	{IntentPlayActionCard, func(s *GameState, player bson.ObjectID) bool {
		p := s.Players[player]
		return p != nil && len(p.ActionCardHand) > 0
	}},
	{IntentCastVotes, func(s *GameState, player bson.ObjectID) bool {
		return s.Round.Phase == phases.PhaseAgenda && (s.Round.AgendaSub == phases.AgendaFirstVoting || s.Round.AgendaSub == phases.AgendaSecondVoting)
	}},
	{IntentScoreObjective, func(s *GameState, player bson.ObjectID) bool {
		return s.Round.Phase == phases.PhaseStatus && s.Round.StatusStep == phases.StepScoreObjectives
	}},
	{IntentConfirmOptional, func(s *GameState, player bson.ObjectID) bool {
		if s.Round.Phase == phases.PhaseStatus || s.Round.Phase == phases.PhaseAgenda {
			return true
		}
		return hasEligibleOptionalAbility(s, player)
	}},
}

// hasEligibleOptionalAbility fans out across every registered
// descriptor's Condition function concurrently via errgroup.Group: this
// mirrors how internal/abilities.Resolve gathers eligible abilities from
// the registry during a real timing window (its eligibleFor closure),
// except here the fan-out spans the *whole* registry rather than one
// window, since LegalIntents doesn't know in advance which window a
// ConfirmOptional intent would open. Unlike the other checks in this
// file (O(1) field reads), a registry can hold an arbitrary, data-driven
// number of descriptors with arbitrarily expensive Condition closures, so
// this is genuine variable-sized concurrent work rather than decorative
// parallelism over constant-time lookups.
func hasEligibleOptionalAbility(s *GameState, player bson.ObjectID) bool {
	descriptors := s.Abilities.All()
	found := make([]bool, len(descriptors))
	g, _ := errgroup.WithContext(context.Background())
	for i, d := range descriptors {
		if d.Timing != abilities.Optional {
			continue
		}
		i, d := i, d
		g.Go(func() error {
			ctx := &abilities.Context{Mutator: s, ActivePlayer: s.Round.ActivePlayer, Owner: player, Window: d.Window}
			found[i] = d.Condition == nil || d.Condition(ctx)
			return nil
		})
	}
	_ = g.Wait()
	for _, ok := range found {
		if ok {
			return true
		}
	}
	return false
}

// LegalIntents reports which IntentKinds player currently has at least
// one legal instance of (spec §2 "legal_intents(State, player) ->
// set<Intent>"). Each independent check runs concurrently via
// errgroup.Group; the checks themselves never return an error, so the
// returned error is always nil.
func LegalIntents(s *GameState, player bson.ObjectID) ([]IntentKind, error) {
	results := make([]bool, len(eligibilityChecks))
	g, _ := errgroup.WithContext(context.Background())
	for i, ec := range eligibilityChecks {
		i, ec := i, ec
		g.Go(func() error {
			results[i] = ec.check(s, player)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []IntentKind
	for i, ok := range results {
		if ok {
			out = append(out, eligibilityChecks[i].kind)
		}
	}
	return out, nil
}

// IsLegal reports whether player currently has at least one legal
// intent of the given kind, without running anything (spec §2
// is_legal). It takes a kind rather than a full intent: it probes only
// the kind-level eligibility from LegalIntents and leaves field-level
// validation (exact path, exact assignment) to Apply's own rejection
// path.
func IsLegal(s *GameState, player bson.ObjectID, kind IntentKind) bool {
	kinds, err := LegalIntents(s, player)
	if err != nil {
		return false
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
