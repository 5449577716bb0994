package engine

import (
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
	"github.com/nicoberrocal/ti4engine/internal/combat"
	"github.com/nicoberrocal/ti4engine/internal/failure"
	"github.com/nicoberrocal/ti4engine/internal/galaxy"
	"github.com/nicoberrocal/ti4engine/internal/modifiers"
	"github.com/nicoberrocal/ti4engine/internal/phases"
	"github.com/nicoberrocal/ti4engine/internal/players"
	"github.com/nicoberrocal/ti4engine/internal/tactical"
	"github.com/nicoberrocal/ti4engine/internal/transactions"
	"github.com/nicoberrocal/ti4engine/internal/units"
)

// Apply is the engine's single entry point (spec §2 apply(State, Intent,
// Rng) -> (State', Events)). It dispatches on Intent.Kind, mutates s in
// place, and returns the events produced by this call plus a Failure if
// the intent could not be applied. Rng is threaded through s.Stream
// rather than a parameter, matching the teacher's pattern of carrying
// request-scoped state (diplomacy.Provider) on the receiver rather than
// passing it down every call.
//
// Grounded on the teacher's maps/queue.go dispatch loop (a switch over
// PlayerAction.Type driving mutation of the shared MongoMap), generalized
// from one flat action type to the full tagged Intent union (spec §6.1).
func Apply(s *GameState, intent Intent) ([]Event, *failure.Failure) {
	s.Log = nil

	// §5 suspension points: once the engine is waiting on a specific
	// player for a specific intent shape, that player may not act out of
	// turn (any other player's intents, and this player's own Timeout,
	// still pass through undisturbed).
	if s.Pending != nil && intent.Player == s.Pending.Player && intent.Kind != s.Pending.ExpectedKind && intent.Kind != IntentTimeout {
		return nil, failure.Ambiguous("pending.unexpected_intent", s.Pending.Reason)
	}

	var fail *failure.Failure
	switch intent.Kind {
	case IntentStartGame:
		fail = applyStartGame(s, intent)
	case IntentChooseStrategyCard:
		fail = applyChooseStrategyCard(s, intent)
	case IntentActivate:
		fail = applyActivate(s, intent)
	case IntentDeclareMovement:
		fail = applyDeclareMovement(s, intent)
	case IntentAssignSpaceCannonHits:
		fail = applyAssignHits(s, intent, "space_cannon")
	case IntentRetreat:
		fail = applyRetreat(s, intent)
	case IntentBombard:
		fail = applyBombard(s, intent)
	case IntentCommit:
		fail = applyCommit(s, intent)
	case IntentAssignCombatHits:
		fail = applyAssignHits(s, intent, "combat")
	case IntentProduce:
		fail = applyProduce(s, intent)
	case IntentPerformStrategicAction:
		fail = applyStrategicAction(s, intent)
	case IntentResolveSecondary:
		fail = applyResolveSecondary(s, intent)
	case IntentPlayActionCard:
		fail = applyPlayActionCard(s, intent)
	case IntentPlayPromissoryNote:
		fail = applyPlayPromissoryNote(s, intent)
	case IntentProposeTransaction:
		fail = applyProposeTransaction(s, intent)
	case IntentCastVotes:
		fail = applyCastVotes(s, intent)
	case IntentScoreObjective:
		fail = applyScoreObjective(s, intent)
	case IntentPass:
		fail = applyPass(s, intent)
	case IntentConfirmOptional:
		fail = applyConfirmOptional(s, intent)
	case IntentTimeout:
		fail = applyTimeout(s, intent)
	case IntentExplore:
		fail = applyExplore(s, intent)
	default:
		fail = failure.Invalid("intent.unknown_kind", "unrecognized intent kind")
	}

	if fail != nil {
		return nil, fail
	}
	if s.Pending != nil && s.Pending.Player == intent.Player {
		s.Pending = nil
	}
	s.checkGameEnd()
	return s.Log, nil
}

func applyStartGame(s *GameState, intent Intent) *failure.Failure {
	if len(s.Players) > 0 {
		return failure.Invalid("start_game.already_started", "game has already been started")
	}
	if len(intent.PlayerSetups) < 3 || len(intent.PlayerSetups) > 8 {
		return failure.Invalid("start_game.bad_player_count", "player count must be between 3 and 8")
	}
	for _, setup := range intent.PlayerSetups {
		p := &players.Player{
			ID:           setup.PlayerID,
			Faction:      players.Faction(setup.Faction),
			HomeSystemID: setup.HomeSystemID,
			Command:      players.CommandSheet{TacticPool: 3, FleetPool: 3, StrategyPool: 2},
		}
		s.Players[setup.PlayerID] = p
		s.PlayerOrder = append(s.PlayerOrder, setup.PlayerID)
		s.CommandTokens.Init(setup.PlayerID, 16)
	}
	if intent.TargetVP > 0 {
		s.VPTarget = phases.VPTarget(intent.TargetVP)
	}
	speaker := s.PlayerOrder[0]
	s.Round = phases.NewRoundState(speaker)
	s.Round.InitiativeOrder = append([]bson.ObjectID(nil), s.PlayerOrder...)
	s.emit(EventPhaseChanged, map[string]any{"phase": phases.PhaseStrategy, "round": 1})
	return nil
}

// applyChooseStrategyCard assigns the chosen card number to the player
// (spec §4.5 Strategy phase) and, once every player at the table has
// chosen, derives initiative order by ascending card number (invariant
// 14) and opens the Action phase.
func applyChooseStrategyCard(s *GameState, intent Intent) *failure.Failure {
	if s.Round.Phase != phases.PhaseStrategy {
		return failure.Invalid("strategy_card.wrong_phase", "strategy cards are only chosen in the Strategy phase")
	}
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("strategy_card.unknown_player", "unknown player")
	}
	card, ok := intent.Params["card"].(int)
	if !ok || card < 1 || card > 8 {
		return failure.Invalid("strategy_card.bad_card", "card must be an integer 1-8")
	}
	for other, c := range s.StrategyCards {
		if c == card && other != intent.Player {
			return failure.Violation("strategy_card.already_taken", "another player already holds this strategy card")
		}
	}
	s.StrategyCards[intent.Player] = card
	s.emit("StrategyCardChosen", map[string]any{"player": intent.Player, "card": card})

	if len(s.StrategyCards) < len(s.PlayerOrder) {
		return nil
	}
	order := append([]bson.ObjectID(nil), s.PlayerOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		return s.StrategyCards[order[i]] < s.StrategyCards[order[j]]
	})
	s.Round.InitiativeOrder = order
	s.Round.ActivePlayer = order[0]
	s.Round.Phase = phases.PhaseAction
	s.emit(EventPhaseChanged, map[string]any{"phase": phases.PhaseAction, "round": s.Round.Round})
	return nil
}

func applyActivate(s *GameState, intent Intent) *failure.Failure {
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("activate.unknown_player", "unknown player")
	}
	if s.Tactical != nil && s.Tactical.Step != tactical.StepDone && s.Tactical.Step != tactical.StepIdle {
		return failure.Invalid("activate.action_in_progress", "another tactical action is already in progress")
	}
	st, f := tactical.Activate(s.Galaxy, intent.Player, intent.SystemID, p.Command.TacticPool)
	if f != nil {
		return f
	}
	p.Command.TacticPool--
	s.CommandTokens.PlaceOnBoard(intent.Player)
	s.Tactical = st
	s.Round.ActivePlayer = intent.Player
	s.emit(EventCommandTokenPlaced, map[string]any{"player": intent.Player, "system": intent.SystemID})
	return nil
}

// applyDeclareMovement validates and executes every ship's declared path
// into the active system (spec §4.4 Step 2), using the unit's own
// effective move value (not a fixed constant), applying the gravity-rift
// destruction check on exit, opening the movement_declared ability
// window, and routing the tactical action into Space Combat or straight
// to Invasion depending on whether a contested fleet now shares the
// system.
func applyDeclareMovement(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical == nil || s.Tactical.Step != tactical.StepMovement {
		return failure.Invalid("movement.wrong_step", "no system is awaiting movement declarations")
	}
	dest := s.Tactical.ActiveSystem

	for _, m := range intent.Movements {
		if len(m.Path) < 2 || m.Path[len(m.Path)-1] != dest {
			return failure.Violation("movement.wrong_destination", "declared path must end at the active system")
		}
		u := s.Units[m.UnitID]
		if u == nil {
			return internalHalt("movement.unknown_unit", "movement order references a unit with no record in the unit registry")
		}
		if u.OwnerID != intent.Player {
			return failure.Violation("movement.not_owned", "a player may only move their own units")
		}
		if tactical.SourceBlocked(s.Galaxy, m.Path[0], intent.Player) {
			return failure.Violation("movement.source_blocked", "source system contains the moving player's own command token")
		}
		cost, rifts, nebula, ok := tactical.PathCost(s.Galaxy, m.Path)
		if !ok {
			return failure.Violation("movement.illegal_path", "path is not a valid sequence of adjacent systems, or crosses a blocking anomaly")
		}
		stats := units.EffectiveStats(*u, modifiers.UnitStatMods{})
		effective := tactical.EffectiveMoveForStep(stats.Move, nebula, rifts)
		if cost > effective {
			return failure.Violation("movement.insufficient_move", "unit's effective move value cannot reach the declared destination")
		}
		s.Tactical.MovedUnits[m.UnitID] = tactical.MovementContribution{UnitID: m.UnitID, Path: m.Path, Cargo: m.Cargo}

		if rifts > 0 && tactical.GravityRiftDestroyed(s.Stream.D10()) {
			s.DestroyUnit(m.UnitID)
			s.emit("GravityRiftDestroyedUnit", map[string]any{"unit": m.UnitID})
			continue
		}
		s.MoveUnit(m.UnitID, dest)
	}

	resolveWindow(s, abilities.Window{Step: "tactical.movement", Trigger: "movement_declared", Order: abilities.After}, decisionSourceFromParams(intent.Params))

	byOwner := shipsByOwner(s, dest)
	if len(byOwner) > 1 {
		s.Tactical.Step = tactical.StepSpaceCombat
		for owner := range byOwner {
			if owner != intent.Player {
				s.Pending = &PendingDecision{Player: owner, ExpectedKind: IntentAssignSpaceCannonHits, Reason: "defending fleet must resolve space cannon before the combat round"}
				break
			}
		}
	} else {
		s.Tactical.Step = tactical.StepInvasion
	}
	return nil
}

// shipsByOwner groups a system's registered ships by owning player.
func shipsByOwner(s *GameState, systemID bson.ObjectID) map[bson.ObjectID][]bson.ObjectID {
	out := map[bson.ObjectID][]bson.ObjectID{}
	sys := s.Galaxy.System(systemID)
	if sys == nil {
		return out
	}
	for _, id := range sys.Space.Ships {
		u := s.Units[id]
		if u == nil {
			continue
		}
		out[u.OwnerID] = append(out[u.OwnerID], id)
	}
	return out
}

// buildCombatants turns a list of unit ids into the tactical combat
// round loop's CombatantShip shape, folding an environment modifier
// layer (e.g. nebula defender bonus) through the same effectiveCombatValue/
// sustainCapable helpers the modifier stack's priority ordering defines.
func buildCombatants(s *GameState, unitIDs []bson.ObjectID, envMods modifiers.UnitStatMods) []tactical.CombatantShip {
	stack := modifiers.Stack{}
	if envMods != (modifiers.UnitStatMods{}) {
		stack.Add(modifiers.Layer{Source: modifiers.SourceEnvironment, Mods: envMods, Priority: modifiers.PriorityEnvironment})
	}
	out := make([]tactical.CombatantShip, 0, len(unitIDs))
	for _, id := range unitIDs {
		u := s.Units[id]
		if u == nil {
			continue
		}
		hitOn := effectiveCombatValue(*u, stack)
		if hitOn <= 0 {
			continue
		}
		out = append(out, tactical.CombatantShip{
			UnitID:         id,
			Owner:          u.OwnerID,
			Dice:           1,
			HitOn:          hitOn,
			CanSustain:     sustainCapable(*u, stack),
			AlreadyDamaged: u.Damaged,
		})
	}
	return out
}

// nebulaModsFor returns the defender combat bonus a nebula grants (spec
// §4.4 combat environment effects): -1 to the hit-on threshold, modeled
// as a SourceEnvironment layer so it composes through the normal
// modifier-stack priority ordering rather than a one-off special case.
func nebulaModsFor(s *GameState, system bson.ObjectID) modifiers.UnitStatMods {
	sys := s.Galaxy.System(system)
	if sys != nil && sys.HasAnomaly(galaxy.AnomalyNebula) {
		return modifiers.UnitStatMods{CombatDelta: -1}
	}
	return modifiers.UnitStatMods{}
}

// assignmentChooser builds a combat.HitChooser driven by an intent's
// declared assignments (spec §6.1 HitAssignment): each entry names the
// unit its owner wants the next hit to land on, consumed in order. If
// the declared list runs out (or names units no longer among the
// candidates, e.g. already destroyed), it falls back to the first
// remaining candidate so AssignHits always terminates.
func assignmentChooser(assignments []HitAssignment) combat.HitChooser {
	idx := 0
	return func(remainingHits int, candidates []bson.ObjectID) bson.ObjectID {
		for idx < len(assignments) {
			candidate := assignments[idx].UnitID
			idx++
			for _, c := range candidates {
				if c == candidate {
					return candidate
				}
			}
		}
		return candidates[0]
	}
}

// sustainLookupFor adapts a unit's effective stats into a
// combat.SustainCapable closure.
func sustainLookupFor(s *GameState) combat.SustainCapable {
	return func(unit bson.ObjectID) bool {
		u := s.Units[unit]
		if u == nil {
			return false
		}
		return units.EffectiveStats(*u, modifiers.UnitStatMods{}).SustainDamage && !u.Damaged
	}
}

// applyAssignHits drives the space-cannon and space-combat hit
// resolution steps (spec §4.4 Step 3), dispatching to the real
// combat-round resolver in internal/tactical rather than echoing the
// declared assignments straight into events.
func applyAssignHits(s *GameState, intent Intent, kind string) *failure.Failure {
	if s.Tactical == nil {
		return failure.Invalid("assign_hits.no_active_combat", "no tactical action is awaiting hit assignment")
	}
	switch kind {
	case "combat":
		return runSpaceCombatRound(s, intent)
	case "space_cannon":
		return runSpaceCannonStep(s, intent)
	}
	return failure.Invalid("assign_hits.unknown_kind", "unknown hit-assignment kind")
}

// runSpaceCannonStep resolves defending PDS space cannon fire against
// the arriving fleet, opened as a window right after movement and
// before the first combat round (spec §4.4 "Space Cannon Offense").
func runSpaceCannonStep(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical.Step != tactical.StepSpaceCombat {
		return failure.Invalid("assign_hits.wrong_step", "space cannon only fires entering the Space Combat step")
	}
	system := s.Tactical.ActiveSystem
	attacker := s.Tactical.Player
	byOwner := shipsByOwner(s, system)

	firing := shipsByOwner(s, system)
	if sys := s.Galaxy.System(system); sys != nil {
		for _, pid := range sys.PlanetIDs {
			if p := s.Galaxy.Planet(pid); p != nil {
				for _, id := range p.Structures {
					if u := s.Units[id]; u != nil {
						firing[u.OwnerID] = append(firing[u.OwnerID], id)
					}
				}
			}
		}
	}

	var hits int
	for owner, shipIDs := range firing {
		if owner == attacker {
			continue
		}
		for _, id := range shipIDs {
			u := s.Units[id]
			if u == nil {
				continue
			}
			stats := units.EffectiveStats(*u, modifiers.UnitStatMods{})
			if stats.SpaceCannon <= 0 {
				continue
			}
			dice := combat.Roll([]combat.RollSpec{{UnitID: id, Dice: 1, HitOn: stats.SpaceCannon}}, s.Stream)
			hits += combat.HitCount(dice)
		}
	}
	s.emit(EventDiceRolled, map[string]any{"system": system, "kind": "space_cannon", "hits": hits})
	if hits == 0 {
		return nil
	}
	candidates := append([]bson.ObjectID(nil), byOwner[attacker]...)
	if len(candidates) == 0 {
		return nil
	}
	assignment := combat.AssignHits(hits, candidates, assignmentChooser(intent.Assignments), sustainLookupFor(s))
	for _, id := range assignment.Destroyed {
		s.DestroyUnit(id)
	}
	for _, id := range assignment.SustainedDamage {
		if u := s.Units[id]; u != nil {
			u.Damaged = true
		}
		s.emit(EventSustainDamage, map[string]any{"unit": id})
	}
	s.emit(EventHitsProduced, map[string]any{"kind": "space_cannon", "hits": hits})
	return nil
}

// runSpaceCombatRound resolves one full round of space combat (spec
// §4.4 Step 3, items 1-5): both sides roll, each assigns its incoming
// hits to its own ships via the intent's declared assignments, and the
// pipeline advances to Invasion once one side has no ships left.
func runSpaceCombatRound(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical.Step != tactical.StepSpaceCombat {
		return failure.Invalid("assign_hits.wrong_step", "combat hits may only be assigned during the Space Combat step")
	}
	system := s.Tactical.ActiveSystem
	attacker := s.Tactical.Player
	byOwner := shipsByOwner(s, system)

	var defender bson.ObjectID
	defenderFound := false
	for owner := range byOwner {
		if owner != attacker {
			defender = owner
			defenderFound = true
			break
		}
	}
	if !defenderFound {
		s.Tactical.Step = tactical.StepInvasion
		return nil
	}

	resolveWindow(s, abilities.Window{Step: "tactical.space_combat", Trigger: "round_start", Order: abilities.Before}, decisionSourceFromParams(intent.Params))

	envMods := nebulaModsFor(s, system)
	attackerShips := buildCombatants(s, byOwner[attacker], modifiers.UnitStatMods{})
	defenderShips := buildCombatants(s, byOwner[defender], envMods)
	if len(attackerShips) == 0 || len(defenderShips) == 0 {
		s.Tactical.Step = tactical.StepInvasion
		return nil
	}

	var attackerAssign, defenderAssign []HitAssignment
	for _, a := range intent.Assignments {
		if u := s.Units[a.UnitID]; u != nil && u.OwnerID == attacker {
			attackerAssign = append(attackerAssign, a)
		} else {
			defenderAssign = append(defenderAssign, a)
		}
	}

	result := tactical.RunCombatRound(attackerShips, defenderShips, assignmentChooser(attackerAssign), assignmentChooser(defenderAssign), s.Stream)
	s.emit(EventDiceRolled, map[string]any{"system": system, "kind": "combat", "attackerDice": len(result.AttackerDice), "defenderDice": len(result.DefenderDice)})

	for _, id := range result.DefenderAssignment.Destroyed {
		s.DestroyUnit(id)
	}
	for _, id := range result.DefenderAssignment.SustainedDamage {
		if u := s.Units[id]; u != nil {
			u.Damaged = true
		}
		s.emit(EventSustainDamage, map[string]any{"unit": id})
	}
	for _, id := range result.AttackerAssignment.Destroyed {
		s.DestroyUnit(id)
	}
	for _, id := range result.AttackerAssignment.SustainedDamage {
		if u := s.Units[id]; u != nil {
			u.Damaged = true
		}
		s.emit(EventSustainDamage, map[string]any{"unit": id})
	}

	resolveWindow(s, abilities.Window{Step: "tactical.space_combat", Trigger: "round_end", Order: abilities.After}, decisionSourceFromParams(intent.Params))

	remaining := shipsByOwner(s, system)
	if len(remaining[attacker]) == 0 || len(remaining[defender]) == 0 {
		s.Tactical.Step = tactical.StepInvasion
	}
	return nil
}

// applyRetreat relocates a fleet out of the active system mid-combat
// (spec §4.4 Step 3 "Retreat") into an adjacent system the player
// declares, ending that side's participation in the round.
func applyRetreat(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical == nil || s.Tactical.Step != tactical.StepSpaceCombat {
		return failure.Invalid("retreat.no_active_combat", "retreat is only declared during the Space Combat step")
	}
	if !s.Galaxy.IsAdjacent(s.Tactical.ActiveSystem, intent.SystemID) {
		return failure.Violation("retreat.not_adjacent", "a fleet may only retreat to an adjacent system")
	}
	byOwner := shipsByOwner(s, s.Tactical.ActiveSystem)
	for _, id := range byOwner[intent.Player] {
		s.MoveUnit(id, intent.SystemID)
	}
	s.emit("RetreatDeclared", map[string]any{"player": intent.Player, "to": intent.SystemID})
	remaining := shipsByOwner(s, s.Tactical.ActiveSystem)
	if len(remaining) <= 1 {
		s.Tactical.Step = tactical.StepInvasion
	}
	return nil
}

func applyBombard(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical == nil || s.Tactical.Step != tactical.StepInvasion {
		return failure.Invalid("bombard.wrong_step", "bombardment is only declared during the Invasion step")
	}
	shieldPresent, _ := intent.Params["planetaryShieldPresent"].(bool)
	hasWarSun, _ := intent.Params["attackerHasWarSun"].(bool)
	xeno, _ := intent.Params["xenoBacterialWeapon"].(bool)
	if !tactical.CanBombard(shieldPresent, hasWarSun, xeno) {
		return failure.Violation("bombard.shield_blocks", "a planetary shield prevents bombardment of this planet")
	}
	resolveWindow(s, abilities.Window{Step: "tactical.invasion", Trigger: "bombardment", Order: abilities.When}, decisionSourceFromParams(intent.Params))
	s.emit("BombardmentDeclared", map[string]any{"player": intent.Player, "planet": intent.PlanetID})
	return nil
}

func applyCommit(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical == nil || s.Tactical.Step != tactical.StepInvasion {
		return failure.Invalid("commit.wrong_step", "ground forces are only committed during the Invasion step")
	}
	isMecatol, _ := intent.Params["isMecatol"].(bool)
	influencePaid, _ := intent.Params["influencePaid"].(int)
	if f := tactical.CommitGroundForces(isMecatol, !s.Round.CustodiansRemoved, influencePaid); f != nil {
		return f
	}
	if isMecatol && !s.Round.CustodiansRemoved {
		s.Round.CustodiansRemoved = true
		if p := s.Players[intent.Player]; p != nil {
			p.VictoryPoints += tactical.CustodiansRemovalVP
		}
		s.emit("CustodiansRemoved", map[string]any{"player": intent.Player})
	}
	for _, c := range intent.Commitments {
		if u := s.Units[c.UnitID]; u != nil {
			s.placeUnitOnPlanet(u, c.PlanetID)
		}
		s.emit("GroundForceCommitted", map[string]any{"unit": c.UnitID, "planet": c.PlanetID})
	}
	established := tactical.EstablishControl(s.Galaxy, intent.PlanetID, intent.Player, len(intent.Commitments) > 0, false)
	if established {
		s.emit(EventPlanetControlChanged, map[string]any{"planet": intent.PlanetID, "controller": intent.Player})
	}
	resolveWindow(s, abilities.Window{Step: "tactical.invasion", Trigger: "ground_combat_resolved", Order: abilities.After}, decisionSourceFromParams(intent.Params))
	// Commit is the last invasion-step intent a player submits for a given
	// planet (possibly with zero Commitments, to signal "no ground forces
	// committed here"); once submitted the pipeline moves to Production.
	s.Tactical.Step = tactical.StepProduction
	return nil
}

// fleetPoolUsed counts unit ids already in system, owned by owner, and
// carried by nothing, that count against fleet pool (invariant 2).
func fleetPoolUsed(s *GameState, system, owner bson.ObjectID) int {
	sys := s.Galaxy.System(system)
	if sys == nil {
		return 0
	}
	n := 0
	for _, id := range sys.Space.Ships {
		u := s.Units[id]
		if u != nil && u.OwnerID == owner && u.CarriedBy == nil && u.Type.CountsAgainstFleetPool() {
			n++
		}
	}
	return n
}

// applyProduce executes Step 5 of the tactical pipeline (spec §4.4 Step
// 5): it prices every space dock's build order, exhausts the declared
// planets (trade goods covering any shortfall 1:1), enforces the fleet-
// pool invariant (invariant 2) and valid-placement rule, then actually
// creates and places the produced units.
func applyProduce(s *GameState, intent Intent) *failure.Failure {
	if s.Tactical == nil || s.Tactical.Step != tactical.StepProduction {
		return failure.Invalid("produce.wrong_step", "units may only be produced during the Production step")
	}
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("produce.unknown_player", "unknown player")
	}
	system := s.Tactical.ActiveSystem

	type builtUnit struct {
		unit      *units.Unit
		placement tactical.Placement
		planet    bson.ObjectID
	}
	var toPlace []builtUnit
	var totalCost int
	var planetsToExhaust []bson.ObjectID
	fleetPoolAdded := 0

	for _, order := range intent.ProduceOrders {
		build := make([]units.Type, 0, len(order.Build))
		for _, t := range order.Build {
			build = append(build, units.Type(t))
		}
		cost, f := tactical.Cost(tactical.ProductionOrder{SpaceDockID: order.SpaceDockID, Build: build})
		if f != nil {
			return f
		}
		totalCost += cost
		planetsToExhaust = append(planetsToExhaust, order.Planets...)

		var dockPlanet bson.ObjectID
		if dock := s.Units[order.SpaceDockID]; dock != nil && dock.Location.Kind == units.LocationPlanet && dock.Location.PlanetID != nil {
			dockPlanet = *dock.Location.PlanetID
		}

		for i, t := range build {
			placement := tactical.PlacementSpace
			if i < len(order.Placements) && order.Placements[i] == string(tactical.PlacementPlanet) {
				placement = tactical.PlacementPlanet
			}
			if !tactical.ValidPlacement(t, placement) {
				return failure.Violation("produce.invalid_placement", "unit type cannot be placed there")
			}
			if t.CountsAgainstFleetPool() {
				fleetPoolAdded++
			}
			toPlace = append(toPlace, builtUnit{
				unit:      &units.Unit{ID: bson.NewObjectID(), OwnerID: intent.Player, Type: t},
				placement: placement,
				planet:    dockPlanet,
			})
		}
	}

	if fleetPoolUsed(s, system, intent.Player)+fleetPoolAdded > p.Command.FleetPool {
		return failure.Violation("produce.fleet_pool_exceeded", "producing these units would exceed the player's fleet pool in this system")
	}

	paid := 0
	for _, planetID := range planetsToExhaust {
		planet := s.Galaxy.Planet(planetID)
		if planet == nil || planet.Exhausted || planet.Controller == nil || *planet.Controller != intent.Player {
			return failure.Violation("produce.invalid_planet", "planet is not a readied, controlled planet")
		}
		planet.Exhausted = true
		paid += planet.EffectiveResources()
		s.emit(EventPlanetExhausted, map[string]any{"planet": planetID})
	}
	if paid < totalCost {
		if !p.SpendTradeGoodsFor(totalCost - paid) {
			return failure.Violation("produce.insufficient_resources", "exhausted planets and trade goods do not cover the production cost")
		}
	}

	for _, b := range toPlace {
		s.Units[b.unit.ID] = b.unit
		if b.placement == tactical.PlacementPlanet && b.planet != (bson.ObjectID{}) {
			s.placeUnitOnPlanet(b.unit, b.planet)
		} else {
			s.placeUnitInSpace(b.unit, system)
		}
	}
	s.emit("UnitsProduced", map[string]any{"player": intent.Player, "orders": len(intent.ProduceOrders), "cost": totalCost})
	s.Tactical.Step = tactical.StepDone
	return nil
}

// applyStrategicAction resolves the primary ability of the strategy card
// the player holds (spec §4.5 Action phase "Strategic Action"), opening
// its primary-ability window and marking it performed so phases.CanPass
// can later clear the player to pass.
func applyStrategicAction(s *GameState, intent Intent) *failure.Failure {
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("strategic_action.unknown_player", "unknown player")
	}
	card, held := s.StrategyCards[intent.Player]
	if !held {
		return failure.Violation("strategic_action.no_card", "player does not hold a strategy card")
	}
	if s.StrategicActionDone[intent.Player] {
		return failure.Violation("strategic_action.already_performed", "strategic action already performed this round")
	}
	win := abilities.Window{Step: "strategy.primary", Trigger: strconv.Itoa(card), Order: abilities.When}
	resolveWindow(s, win, decisionSourceFromParams(intent.Params))
	s.StrategicActionDone[intent.Player] = true
	s.emit("StrategicActionPerformed", map[string]any{"player": intent.Player, "card": card})
	return nil
}

// applyResolveSecondary resolves another player's secondary ability of
// the active strategy card, spending one strategy-pool token unless the
// player declines (spec §4.5 "Strategic Action").
func applyResolveSecondary(s *GameState, intent Intent) *failure.Failure {
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("resolve_secondary.unknown_player", "unknown player")
	}
	card, _ := intent.Params["card"].(int)
	if !intent.Decline {
		if p.Command.StrategyPool < 1 {
			return failure.Violation("resolve_secondary.no_tokens", "no strategy pool tokens remaining to resolve a secondary ability")
		}
		p.Command.StrategyPool--
		s.CommandTokens.Spend(intent.Player)
		win := abilities.Window{Step: "strategy.secondary", Trigger: strconv.Itoa(card), Order: abilities.When}
		resolveWindow(s, win, decisionSourceFromParams(intent.Params))
	}
	s.emit("SecondaryResolved", map[string]any{"player": intent.Player, "card": card, "declined": intent.Decline})
	return nil
}

func applyPlayActionCard(s *GameState, intent Intent) *failure.Failure {
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("play_action_card.unknown_player", "unknown player")
	}
	idx := -1
	for i, c := range p.ActionCardHand {
		if c == intent.CardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return failure.Violation("play_action_card.not_in_hand", "card is not in the player's hand")
	}
	p.ActionCardHand = append(p.ActionCardHand[:idx], p.ActionCardHand[idx+1:]...)
	s.Decks.Action.DiscardCard(intent.CardID)
	s.emit(EventCardDiscarded, map[string]any{"player": intent.Player, "card": intent.CardID})
	return nil
}

func applyPlayPromissoryNote(s *GameState, intent Intent) *failure.Failure {
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("play_promissory_note.unknown_player", "unknown player")
	}
	idx := -1
	for i, c := range p.PromissoryNoteHand {
		if c == intent.CardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return failure.Violation("play_promissory_note.not_in_hand", "note is not in the player's hand")
	}
	p.PromissoryNoteHand = append(p.PromissoryNoteHand[:idx], p.PromissoryNoteHand[idx+1:]...)
	s.emit("PromissoryNotePlayed", map[string]any{"player": intent.Player, "card": intent.CardID})
	return nil
}

func applyProposeTransaction(s *GameState, intent Intent) *failure.Failure {
	from, to := s.Players[intent.Player], s.Players[intent.To]
	if from == nil || to == nil {
		return failure.Invalid("transaction.unknown_player", "unknown counterparty")
	}
	phase := transactions.PhaseAction
	if s.Round.Phase == phases.PhaseAgenda {
		phase = transactions.PhaseAgenda
	}
	if !s.Transactions.CanTransact(intent.Player, intent.To, phase, s.Round.AgendaIndex) {
		return failure.Violation("transaction.limit_reached", "transaction limit with this player already reached this agenda")
	}
	if !transferOffer(from, to, intent.Give) || !transferOffer(to, from, intent.Receive) {
		return failure.Violation("transaction.insufficient_components", "offering player lacks the offered components")
	}
	s.Transactions.RecordCompleted(intent.Player, intent.To, phase, s.Round.AgendaIndex)
	s.emit(EventTransactionCompleted, map[string]any{"from": intent.Player, "to": intent.To})
	return nil
}

func transferOffer(from, to *players.Player, o TransactionOffer) bool {
	if o.Resources == 0 && o.Influence == 0 && o.TradeGoods == 0 && o.Commodities == 0 && o.PromissoryNoteID == nil && o.RelicID == nil {
		return true
	}
	if o.TradeGoods > 0 {
		if from.TradeGoods < o.TradeGoods {
			return false
		}
		from.TradeGoods -= o.TradeGoods
		to.TradeGoods += o.TradeGoods
	}
	if o.Commodities > 0 {
		if !players.GiveCommodities(from, to, o.Commodities) {
			return false
		}
	}
	return true
}

func applyCastVotes(s *GameState, intent Intent) *failure.Failure {
	if s.Round.Phase != phases.PhaseAgenda || (s.Round.AgendaSub != phases.AgendaFirstVoting && s.Round.AgendaSub != phases.AgendaSecondVoting) {
		return failure.Invalid("cast_votes.wrong_phase", "votes may only be cast during an agenda's voting sub-phase")
	}
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("cast_votes.unknown_player", "unknown player")
	}
	if s.VoteTally == nil {
		s.VoteTally = map[string]int{}
	}
	var influence int
	for _, v := range intent.Votes {
		planet := s.Galaxy.Planet(v.PlanetID)
		if planet == nil || planet.Exhausted || planet.Controller == nil || *planet.Controller != intent.Player {
			return failure.Violation("cast_votes.invalid_planet", "planet is not a readied, controlled planet")
		}
		planet.Exhausted = true
		gained := planet.EffectiveInfluence()
		influence += gained
		s.VoteTally[v.Outcome] += gained
		s.emit(EventPlanetExhausted, map[string]any{"planet": v.PlanetID})
	}
	s.emit("VotesCast", map[string]any{"player": intent.Player, "influence": influence})
	return nil
}

func applyScoreObjective(s *GameState, intent Intent) *failure.Failure {
	p := s.Players[intent.Player]
	if p == nil {
		return failure.Invalid("score_objective.unknown_player", "unknown player")
	}
	for _, already := range p.ScoredObjectiveIDs {
		if already == intent.CardID {
			return failure.Violation("score_objective.already_scored", "player has already scored this objective")
		}
	}
	p.ScoredObjectiveIDs = append(p.ScoredObjectiveIDs, intent.CardID)
	p.VictoryPoints++
	s.emit(EventObjectiveScored, map[string]any{"player": intent.Player, "objective": intent.CardID})
	return nil
}

func applyPass(s *GameState, intent Intent) *failure.Failure {
	if s.Round.Phase != phases.PhaseAction {
		return failure.Invalid("pass.wrong_phase", "passing only applies during the Action phase")
	}
	held := 0
	if _, ok := s.StrategyCards[intent.Player]; ok {
		held = 1
	}
	performed := 0
	if s.StrategicActionDone[intent.Player] {
		performed = 1
	}
	if !phases.CanPass(held, performed) {
		return failure.Violation("pass.strategic_action_pending", "player must perform the strategic action of their strategy card before passing")
	}
	s.Round.Passed[intent.Player] = true
	if phases.AllPassed(s.Round.InitiativeOrder, s.Round.Passed) {
		s.Round.Phase = phases.PhaseStatus
		s.Round.StatusStep = phases.StepScoreObjectives
		s.emit(EventPhaseChanged, map[string]any{"phase": phases.PhaseStatus})
	}
	return nil
}

// applyConfirmOptional is the generic "this player is done responding to
// the current window" signal (spec §5). During the Status and Agenda
// phases it additionally drives that phase's automatic step machinery,
// since those phases have no other player-initiated intent to hang
// advancement off of.
func applyConfirmOptional(s *GameState, intent Intent) *failure.Failure {
	switch s.Round.Phase {
	case phases.PhaseStatus:
		return advanceStatusPhase(s, intent)
	case phases.PhaseAgenda:
		return advanceAgendaPhase(s, intent)
	}
	s.emit("OptionalConfirmed", map[string]any{"player": intent.Player, "decline": intent.Decline})
	return nil
}

func applyTimeout(s *GameState, intent Intent) *failure.Failure {
	if s.Pending != nil && s.Pending.Player == intent.Player {
		s.Pending = nil
	}
	s.emit("Timeout", map[string]any{"player": intent.Player})
	return nil
}

func applyExplore(s *GameState, intent Intent) *failure.Failure {
	planet := s.Galaxy.Planet(intent.PlanetID)
	if planet == nil || !planet.HasTrait() {
		return failure.Invalid("explore.not_explorable", "planet has no trait to explore")
	}
	if !planet.HasExplorationToken {
		return failure.Violation("explore.no_token", "planet carries no unused exploration token")
	}
	trait := string(planet.Traits[0])
	deck := s.Decks.Exploration[trait]
	if deck == nil {
		return failure.Unresolvable("explore.no_deck", "no exploration deck configured for this trait")
	}
	id, ok := deck.Draw(s.Stream)
	if !ok {
		return failure.Unresolvable("explore.deck_empty", "exploration deck and its discard are both empty")
	}
	planet.HasExplorationToken = false
	s.emit("ExplorationCardDrawn", map[string]any{"planet": intent.PlanetID, "card": id})
	return nil
}

// advanceStatusPhase performs the bulk automatic action of the current
// status step (spec §4.5, steps 1-8) and moves to the next one; step 8
// branches into the Agenda phase (if the custodians token has been
// removed) or straight into the next round.
func advanceStatusPhase(s *GameState, intent Intent) *failure.Failure {
	switch s.Round.StatusStep {
	case phases.StepScoreObjectives:
		// Players score public/secret objectives via IntentScoreObjective
		// directly; this step just gates progression until everyone has
		// confirmed they're done scoring.
	case phases.StepRevealPublicObjective:
		if len(s.Decks.PublicObjectivesQueue) > 0 {
			next := s.Decks.PublicObjectivesQueue[0]
			s.Decks.PublicObjectivesQueue = s.Decks.PublicObjectivesQueue[1:]
			s.Decks.PublicObjectivesRevealed = append(s.Decks.PublicObjectivesRevealed, next)
			s.emit("PublicObjectiveRevealed", map[string]any{"objective": next})
		}
	case phases.StepDrawActionCards:
		for _, pid := range s.PlayerOrder {
			s.DrawActionCard(pid)
		}
	case phases.StepRemoveCommandTokens:
		for id := range s.Galaxy.Systems {
			if sys := s.Galaxy.Systems[id]; sys != nil && sys.ActiveCommandTokenOf != nil {
				owner := *sys.ActiveCommandTokenOf
				sys.ActiveCommandTokenOf = nil
				s.CommandTokens.ReturnFromBoard(owner)
				s.emit(EventCommandTokenReturned, map[string]any{"player": owner, "system": id})
			}
		}
	case phases.StepGainRedistributeCommandTokens:
		for _, pid := range s.PlayerOrder {
			if s.CommandTokens.AllocateToPool(pid) {
				if p := s.Players[pid]; p != nil {
					p.Command.TacticPool++
				}
			}
		}
	case phases.StepReadyCards:
		for _, sys := range s.Galaxy.Systems {
			for _, planetID := range sys.PlanetIDs {
				if planet := s.Galaxy.Planet(planetID); planet != nil {
					planet.Exhausted = false
				}
			}
		}
	case phases.StepRepairUnits:
		for _, u := range s.Units {
			u.Damaged = false
		}
	case phases.StepReturnStrategyCards:
		s.StrategyCards = map[bson.ObjectID]int{}
		s.StrategicActionDone = map[bson.ObjectID]bool{}
	}

	s.emit("StatusStepAdvanced", map[string]any{"step": int(s.Round.StatusStep)})
	s.Round.AdvanceStatusStep()
	if s.Round.StatusStep == phases.StepStatusDone {
		if s.Round.CustodiansRemoved {
			s.Round.EnterAgendaPhase()
			s.emit(EventPhaseChanged, map[string]any{"phase": phases.PhaseAgenda})
		} else {
			s.Round.NextRound()
			s.emit(EventPhaseChanged, map[string]any{"phase": phases.PhaseStrategy, "round": s.Round.Round})
		}
	}
	return nil
}

// resolveAgendaOutcome picks the outcome with the highest tallied
// influence, breaking ties alphabetically for determinism; full
// predictive-voting/riders resolution is out of scope (DESIGN.md).
func resolveAgendaOutcome(tally map[string]int) (string, bool) {
	best := ""
	bestVotes := -1
	for outcome, votes := range tally {
		if votes > bestVotes || (votes == bestVotes && outcome < best) {
			best, bestVotes = outcome, votes
		}
	}
	return best, best != ""
}

// advanceAgendaPhase steps through the two agendas' reveal/voting/
// resolve sub-phases (spec §4.5 Agenda phase).
func advanceAgendaPhase(s *GameState, intent Intent) *failure.Failure {
	switch s.Round.AgendaSub {
	case phases.AgendaFirstReveal, phases.AgendaSecondReveal:
		s.VoteTally = map[string]int{}
		s.Transactions.ResetAgenda(s.Round.AgendaIndex)
		id, ok := s.Decks.Agenda.Draw(s.Stream)
		if ok {
			s.emit("AgendaRevealed", map[string]any{"agenda": id, "index": s.Round.AgendaIndex})
		}
		s.Round.AgendaSub++
	case phases.AgendaFirstVoting, phases.AgendaSecondVoting:
		s.Round.AgendaSub++
	case phases.AgendaFirstResolve, phases.AgendaSecondResolve:
		outcome, ok := resolveAgendaOutcome(s.VoteTally)
		if ok {
			s.emit("AgendaResolved", map[string]any{"outcome": outcome, "index": s.Round.AgendaIndex})
		}
		if s.Round.AgendaSub == phases.AgendaFirstResolve {
			s.Round.AgendaIndex = 1
			s.Round.AgendaSub = phases.AgendaSecondReveal
		} else {
			s.Round.AgendaSub = phases.AgendaDone
		}
	}

	if s.Round.AgendaSub == phases.AgendaDone {
		s.Round.NextRound()
		s.emit(EventPhaseChanged, map[string]any{"phase": phases.PhaseStrategy, "round": s.Round.Round})
	}
	return nil
}

// resolveWindow is the entry point other Apply* handlers use to open an
// ability timing window mid-intent (spec §4.3).
func resolveWindow(s *GameState, win abilities.Window, decide abilities.DecisionSource) []Event {
	active := s.Round.ActivePlayer
	raw := abilities.Resolve(s.Abilities, s, s.Round, decide, active, win)
	out := make([]Event, 0, len(raw))
	for _, e := range raw {
		ev := Event{Kind: e.Kind, Data: e.Data}
		s.Log = append(s.Log, ev)
		out = append(out, ev)
	}
	return out
}

// effectiveCombatValue folds a unit's layered modifier stack into its
// roll-time hit value for one combat roll (spec §4.6 "modifiers are
// folded into HitOn by the caller").
func effectiveCombatValue(u units.Unit, stack modifiers.Stack) int {
	stats := units.EffectiveStats(u, stack.Resolve())
	return stats.Combat
}

// sustainCapable reports whether a unit type can currently sustain
// damage given its resolved stats.
func sustainCapable(u units.Unit, stack modifiers.Stack) bool {
	return units.EffectiveStats(u, stack.Resolve()).SustainDamage && !u.Damaged
}
