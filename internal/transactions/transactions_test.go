package transactions

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNewPair_IsSymmetric(t *testing.T) {
	a, b := bson.NewObjectID(), bson.NewObjectID()
	if NewPair(a, b) != NewPair(b, a) {
		t.Fatalf("NewPair(a,b) must equal NewPair(b,a)")
	}
}

func TestCanTransact_UnboundedOutsideAgendaPhase(t *testing.T) {
	s := NewState()
	a, b := bson.NewObjectID(), bson.NewObjectID()
	for i := 0; i < 5; i++ {
		if !s.CanTransact(a, b, PhaseAction, 0) {
			t.Fatalf("action-phase transactions should never be limited by this package")
		}
		s.RecordCompleted(a, b, PhaseAction, 0)
	}
}

func TestCanTransact_AgendaPhaseCapsAtOnePerAgenda(t *testing.T) {
	s := NewState()
	a, b := bson.NewObjectID(), bson.NewObjectID()

	if !s.CanTransact(a, b, PhaseAgenda, 0) {
		t.Fatalf("first agenda transaction between a pair should be allowed")
	}
	s.RecordCompleted(a, b, PhaseAgenda, 0)
	if s.CanTransact(a, b, PhaseAgenda, 0) {
		t.Fatalf("a second transaction in the same agenda between the same pair must be rejected")
	}
}

func TestCanTransact_ResetsBetweenTheTwoAgendas(t *testing.T) {
	s := NewState()
	a, b := bson.NewObjectID(), bson.NewObjectID()
	s.RecordCompleted(a, b, PhaseAgenda, 0)

	if s.CanTransact(a, b, PhaseAgenda, 1) == false {
		t.Fatalf("the counter must be independent between agendaIndex 0 and 1 (open question 3)")
	}
}

func TestResetAgenda_ClearsOnlyThatAgendaIndex(t *testing.T) {
	s := NewState()
	a, b := bson.NewObjectID(), bson.NewObjectID()
	s.RecordCompleted(a, b, PhaseAgenda, 0)
	s.RecordCompleted(a, b, PhaseAgenda, 1)

	s.ResetAgenda(0)

	if !s.CanTransact(a, b, PhaseAgenda, 0) {
		t.Errorf("agenda 0's counter should be cleared")
	}
	if s.CanTransact(a, b, PhaseAgenda, 1) {
		t.Errorf("agenda 1's counter should be untouched by resetting agenda 0")
	}
}
