package engine

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/galaxy"
	"github.com/nicoberrocal/ti4engine/internal/phases"
	"github.com/nicoberrocal/ti4engine/internal/units"
)

// newStartedGame builds a 3-player game with a home system for player 1
// and one neighboring system it can activate and move a ship into.
func newStartedGame(t *testing.T) (*GameState, []bson.ObjectID, bson.ObjectID, bson.ObjectID) {
	t.Helper()
	s := New(bson.NewObjectID(), []byte("seed"))

	home := bson.NewObjectID()
	s.Galaxy.Systems[home] = &galaxy.SystemTile{ID: home, Coord: galaxy.HexCoord{Q: 0, R: 0}, Color: galaxy.TileGreen}
	target := bson.NewObjectID()
	s.Galaxy.Systems[target] = &galaxy.SystemTile{ID: target, Coord: galaxy.HexCoord{Q: 1, R: 0}, Color: galaxy.TileBlue}

	p1, p2, p3 := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	events, fail := Apply(s, Intent{
		Kind: IntentStartGame,
		PlayerSetups: []PlayerSetup{
			{PlayerID: p1, Faction: "arborec", HomeSystemID: home},
			{PlayerID: p2, Faction: "jolnar"},
			{PlayerID: p3, Faction: "hacan"},
		},
	})
	if fail != nil {
		t.Fatalf("StartGame failed: %+v", fail)
	}
	if len(events) == 0 {
		t.Fatalf("StartGame should emit at least one event")
	}
	return s, []bson.ObjectID{p1, p2, p3}, home, target
}

func TestApply_StartGameRejectsTooFewPlayers(t *testing.T) {
	s := New(bson.NewObjectID(), []byte("seed"))
	_, fail := Apply(s, Intent{
		Kind:         IntentStartGame,
		PlayerSetups: []PlayerSetup{{PlayerID: bson.NewObjectID()}, {PlayerID: bson.NewObjectID()}},
	})
	if fail == nil {
		t.Fatalf("expected a failure for a 2-player game")
	}
}

func TestApply_StartGameSeedsCommandPoolsAndInitiative(t *testing.T) {
	s, players, _, _ := newStartedGame(t)

	for _, id := range players {
		p := s.Players[id]
		if p.Command.TacticPool != 3 || p.Command.FleetPool != 3 || p.Command.StrategyPool != 2 {
			t.Fatalf("unexpected starting command sheet for %v: %+v", id, p.Command)
		}
	}
	if len(s.Round.InitiativeOrder) != 3 {
		t.Fatalf("expected initiative order to be seeded with all 3 players")
	}
	if s.Round.Phase != phases.PhaseStrategy {
		t.Errorf("game should start in the Strategy phase")
	}
}

func TestApply_ActivateThenDeclareMovementThenPass(t *testing.T) {
	s, players, home, target := newStartedGame(t)
	p1 := players[0]
	s.Round.Phase = phases.PhaseAction

	unit := bson.NewObjectID()
	s.Units[unit] = &units.Unit{ID: unit, OwnerID: p1, Type: units.Cruiser, Location: units.Location{Kind: units.LocationSystemSpace, SystemID: &home}}
	s.Galaxy.Systems[home].Space.Ships = append(s.Galaxy.Systems[home].Space.Ships, unit)

	if _, fail := Apply(s, Intent{Kind: IntentActivate, Player: p1, SystemID: target}); fail != nil {
		t.Fatalf("Activate failed: %+v", fail)
	}
	if s.Players[p1].Command.TacticPool != 2 {
		t.Errorf("tactic pool should be decremented to 2, got %d", s.Players[p1].Command.TacticPool)
	}
	if s.Tactical == nil || s.Tactical.Step != "movement" {
		t.Fatalf("expected tactical state to be awaiting movement, got %+v", s.Tactical)
	}

	_, fail := Apply(s, Intent{
		Kind:   IntentDeclareMovement,
		Player: p1,
		Movements: []MovementOrder{
			{UnitID: unit, Path: []bson.ObjectID{home, target}},
		},
	})
	if fail != nil {
		t.Fatalf("DeclareMovement failed: %+v", fail)
	}
	found := false
	for _, u := range s.Galaxy.Systems[target].Space.Ships {
		if u == unit {
			found = true
		}
	}
	if !found {
		t.Errorf("unit should have arrived in the target system")
	}

	for _, id := range players {
		if _, fail := Apply(s, Intent{Kind: IntentPass, Player: id}); fail != nil {
			t.Fatalf("Pass failed for %v: %+v", id, fail)
		}
	}
	if s.Round.Phase != phases.PhaseStatus {
		t.Errorf("phase should advance to Status once everyone has passed, got %v", s.Round.Phase)
	}
}

// TestApply_DeclareMovementUsesUnitEffectiveMoveNotAHardcodedConstant
// proves a cruiser (move value 2) can legally cross two systems in one
// declaration, which a hardcoded base-move-of-1 would wrongly reject.
func TestApply_DeclareMovementUsesUnitEffectiveMoveNotAHardcodedConstant(t *testing.T) {
	s, players, home, mid := newStartedGame(t)
	p1 := players[0]
	s.Round.Phase = phases.PhaseAction

	far := bson.NewObjectID()
	s.Galaxy.Systems[far] = &galaxy.SystemTile{ID: far, Coord: galaxy.HexCoord{Q: 2, R: 0}, Color: galaxy.TileRed}

	unit := bson.NewObjectID()
	s.Units[unit] = &units.Unit{ID: unit, OwnerID: p1, Type: units.Cruiser, Location: units.Location{Kind: units.LocationSystemSpace, SystemID: &home}}
	s.Galaxy.Systems[home].Space.Ships = append(s.Galaxy.Systems[home].Space.Ships, unit)

	if _, fail := Apply(s, Intent{Kind: IntentActivate, Player: p1, SystemID: far}); fail != nil {
		t.Fatalf("Activate failed: %+v", fail)
	}

	_, fail := Apply(s, Intent{
		Kind:   IntentDeclareMovement,
		Player: p1,
		Movements: []MovementOrder{
			{UnitID: unit, Path: []bson.ObjectID{home, mid, far}},
		},
	})
	if fail != nil {
		t.Fatalf("a cruiser (move 2) should legally reach a system two hops away, got: %+v", fail)
	}
	found := false
	for _, u := range s.Galaxy.Systems[far].Space.Ships {
		if u == unit {
			found = true
		}
	}
	if !found {
		t.Errorf("unit should have arrived at the two-hop destination")
	}
}

func TestApply_PassRejectedOutsideActionPhase(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	if _, fail := Apply(s, Intent{Kind: IntentPass, Player: players[0]}); fail == nil {
		t.Fatalf("Pass should be rejected during the Strategy phase")
	}
}

func TestApply_ScoreObjectiveRejectsDuplicate(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	obj := bson.NewObjectID()

	if _, fail := Apply(s, Intent{Kind: IntentScoreObjective, Player: players[0], CardID: obj}); fail != nil {
		t.Fatalf("first scoring should succeed: %+v", fail)
	}
	if s.Players[players[0]].VictoryPoints != 1 {
		t.Errorf("victory points should be 1 after scoring once")
	}
	if _, fail := Apply(s, Intent{Kind: IntentScoreObjective, Player: players[0], CardID: obj}); fail == nil {
		t.Fatalf("scoring the same objective twice should be rejected")
	}
}

func TestApply_ProposeTransactionRejectsInsufficientFunds(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	p1, p2 := players[0], players[1]

	_, fail := Apply(s, Intent{
		Kind:   IntentProposeTransaction,
		Player: p1,
		To:     p2,
		Give:   TransactionOffer{TradeGoods: 5},
	})
	if fail == nil {
		t.Fatalf("expected rejection: player has no trade goods to give")
	}
}

func TestApply_ProposeTransactionSucceedsAndMovesGoods(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	p1, p2 := players[0], players[1]
	s.Players[p1].TradeGoods = 3

	_, fail := Apply(s, Intent{
		Kind:   IntentProposeTransaction,
		Player: p1,
		To:     p2,
		Give:   TransactionOffer{TradeGoods: 3},
	})
	if fail != nil {
		t.Fatalf("transaction should succeed: %+v", fail)
	}
	if s.Players[p1].TradeGoods != 0 || s.Players[p2].TradeGoods != 3 {
		t.Fatalf("trade goods should have moved from p1 to p2, got p1=%d p2=%d", s.Players[p1].TradeGoods, s.Players[p2].TradeGoods)
	}
}

func TestApply_ProposeTransactionCapsAtOnePerAgenda(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	p1, p2 := players[0], players[1]
	s.Round.Phase = phases.PhaseAgenda

	if _, fail := Apply(s, Intent{Kind: IntentProposeTransaction, Player: p1, To: p2}); fail != nil {
		t.Fatalf("first agenda-phase transaction should succeed: %+v", fail)
	}
	if _, fail := Apply(s, Intent{Kind: IntentProposeTransaction, Player: p1, To: p2}); fail == nil {
		t.Fatalf("a second transaction between the same pair in the same agenda should be rejected")
	}
}

func TestApply_ExploreRejectsPlanetWithoutTrait(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	planetID := bson.NewObjectID()
	s.Galaxy.Planets[planetID] = &galaxy.Planet{ID: planetID, HasExplorationToken: true}

	if _, fail := Apply(s, Intent{Kind: IntentExplore, Player: players[0], PlanetID: planetID}); fail == nil {
		t.Fatalf("exploring a planet with no trait should be rejected")
	}
}

func TestObserve_RedactsOtherPlayersHandsToCounts(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	p1, p2 := players[0], players[1]
	s.Players[p1].ActionCardHand = []bson.ObjectID{bson.NewObjectID(), bson.NewObjectID()}
	s.Players[p2].ActionCardHand = []bson.ObjectID{bson.NewObjectID()}

	view := Observe(s, p1, nil)

	if view.Players[p1].ActionCardCount != 2 || len(view.Players[p1].ActionCardHand) != 2 {
		t.Errorf("viewer's own hand should be fully visible: %+v", view.Players[p1])
	}
	if view.Players[p2].ActionCardCount != 1 || view.Players[p2].ActionCardHand != nil {
		t.Errorf("other players' hands should be redacted to a count only: %+v", view.Players[p2])
	}
}

func TestObserve_FiltersViewerScopedEvents(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	p1, p2 := players[0], players[1]
	log := []Event{
		{Kind: "Public", Data: nil},
		{Kind: "Secret", Data: nil, ViewerScope: []bson.ObjectID{p1}},
	}

	viewFor1 := Observe(s, p1, log)
	viewFor2 := Observe(s, p2, log)

	if len(viewFor1.VisibleEvents) != 2 {
		t.Errorf("p1 should see both events, got %d", len(viewFor1.VisibleEvents))
	}
	if len(viewFor2.VisibleEvents) != 1 {
		t.Errorf("p2 should only see the public event, got %d", len(viewFor2.VisibleEvents))
	}
}

func TestLegalIntents_PassNotOfferedInStrategyPhase(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	kinds, err := LegalIntents(s, players[0])
	if err != nil {
		t.Fatalf("LegalIntents failed: %v", err)
	}
	for _, k := range kinds {
		if k == IntentPass {
			t.Fatalf("Pass should not be legal during the Strategy phase")
		}
	}
}

func TestLegalIntents_PassNotOfferedAfterAlreadyPassing(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	s.Round.Phase = phases.PhaseAction
	s.Round.Passed[players[0]] = true

	if IsLegal(s, players[0], IntentPass) {
		t.Fatalf("a player who has already passed should not have Pass listed as legal")
	}
}

func TestLegalIntents_ActivateRequiresTacticTokens(t *testing.T) {
	s, players, _, _ := newStartedGame(t)
	s.Round.Phase = phases.PhaseAction
	s.Players[players[0]].Command.TacticPool = 0

	if IsLegal(s, players[0], IntentActivate) {
		t.Fatalf("a player with no tactic tokens left should not be able to Activate")
	}
}
