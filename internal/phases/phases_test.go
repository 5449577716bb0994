package phases

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRoundState_ClockwiseFromWrapsAround(t *testing.T) {
	p1, p2, p3 := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	r := NewRoundState(p1)
	r.InitiativeOrder = []bson.ObjectID{p1, p2, p3}

	order := r.ClockwiseFrom(p2)
	want := []bson.ObjectID{p2, p3, p1}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("ClockwiseFrom(p2) = %v, want %v", order, want)
		}
	}
}

func TestCanPass_RequiresAllStrategicActionsPerformed(t *testing.T) {
	if CanPass(2, 1) {
		t.Errorf("should not be able to pass with an unperformed strategy card")
	}
	if !CanPass(2, 2) {
		t.Errorf("should be able to pass once every strategy card's action is performed")
	}
}

func TestAllPassed(t *testing.T) {
	p1, p2 := bson.NewObjectID(), bson.NewObjectID()
	order := []bson.ObjectID{p1, p2}

	if AllPassed(order, map[bson.ObjectID]bool{p1: true}) {
		t.Errorf("should not report all-passed while p2 hasn't passed")
	}
	if !AllPassed(order, map[bson.ObjectID]bool{p1: true, p2: true}) {
		t.Errorf("should report all-passed once everyone has passed")
	}
}

func TestNextRound_ResetsRoundScopedState(t *testing.T) {
	r := NewRoundState(bson.NewObjectID())
	r.StatusStep = StepRepairUnits
	r.AgendaIndex = 1
	r.Passed[bson.NewObjectID()] = true

	r.NextRound()

	if r.Round != 2 {
		t.Errorf("Round = %d, want 2", r.Round)
	}
	if r.Phase != PhaseStrategy {
		t.Errorf("Phase = %v, want strategy", r.Phase)
	}
	if r.StatusStep != StepScoreObjectives {
		t.Errorf("StatusStep not reset")
	}
	if len(r.Passed) != 0 {
		t.Errorf("Passed map should be cleared")
	}
}

func TestGameEndCheck_InitiativeOrderTieBreak(t *testing.T) {
	p1, p2 := bson.NewObjectID(), bson.NewObjectID()
	vp := map[bson.ObjectID]int{p1: 10, p2: 10}

	winner, ended := GameEndCheck(vp, VPTargetStandard, []bson.ObjectID{p2, p1})
	if !ended {
		t.Fatalf("expected game to end with two players at target")
	}
	if winner != p2 {
		t.Errorf("winner should be the first in initiative order among qualifying players, got %v", winner)
	}
}

func TestGameEndCheck_NoWinnerBelowTarget(t *testing.T) {
	p1 := bson.NewObjectID()
	_, ended := GameEndCheck(map[bson.ObjectID]int{p1: 9}, VPTargetStandard, []bson.ObjectID{p1})
	if ended {
		t.Fatalf("game should not end below the VP target")
	}
}
