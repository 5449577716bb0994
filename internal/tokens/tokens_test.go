package tokens

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestLedger_InitSeedsReinforcementsOnly(t *testing.T) {
	l := NewLedger()
	p := bson.NewObjectID()
	l.Init(p, 16)

	if l.Reinforcements[p] != 16 || l.OnBoard[p] != 0 {
		t.Fatalf("Init should start all tokens in reinforcements, got onBoard=%d reinforcements=%d", l.OnBoard[p], l.Reinforcements[p])
	}
	if !l.ConservationHolds(p, 0) {
		t.Errorf("conservation should hold immediately after Init with an empty command pool")
	}
}

func TestLedger_PlaceOnBoardMovesOneToken(t *testing.T) {
	l := NewLedger()
	p := bson.NewObjectID()
	l.Init(p, 3)

	if ok := l.PlaceOnBoard(p); !ok {
		t.Fatalf("expected placement to succeed while reinforcements remain")
	}
	if l.OnBoard[p] != 1 || l.Reinforcements[p] != 2 {
		t.Errorf("onBoard=%d reinforcements=%d, want 1 and 2", l.OnBoard[p], l.Reinforcements[p])
	}
}

func TestLedger_PlaceOnBoardFailsWhenReinforcementsExhausted(t *testing.T) {
	l := NewLedger()
	p := bson.NewObjectID()
	l.Init(p, 1)
	l.PlaceOnBoard(p)

	if l.PlaceOnBoard(p) {
		t.Fatalf("placement should fail once reinforcements are exhausted")
	}
}

func TestLedger_ReturnFromBoardReversesPlacement(t *testing.T) {
	l := NewLedger()
	p := bson.NewObjectID()
	l.Init(p, 3)
	l.PlaceOnBoard(p)

	if ok := l.ReturnFromBoard(p); !ok {
		t.Fatalf("expected return from board to succeed")
	}
	if l.OnBoard[p] != 0 || l.Reinforcements[p] != 3 {
		t.Errorf("onBoard=%d reinforcements=%d, want 0 and 3", l.OnBoard[p], l.Reinforcements[p])
	}
}

func TestLedger_ReturnFromBoardFailsWhenBoardEmpty(t *testing.T) {
	l := NewLedger()
	p := bson.NewObjectID()
	l.Init(p, 3)

	if l.ReturnFromBoard(p) {
		t.Fatalf("return from board should fail when nothing is on the board")
	}
}

func TestLedger_ConservationHoldsAcrossAllThreeLocations(t *testing.T) {
	l := NewLedger()
	p := bson.NewObjectID()
	l.Init(p, 16)
	l.PlaceOnBoard(p)
	l.PlaceOnBoard(p)

	if !l.ConservationHolds(p, 0) {
		t.Errorf("0 (pool) + 2 (board) + 14 (reinforcements) should equal the fixed total 16")
	}
	if l.ConservationHolds(p, 13) {
		t.Errorf("conservation should fail if the claimed pool total is wrong")
	}
}

func TestControlTokens_PlaceAndRemove(t *testing.T) {
	c := NewControlTokens()
	planet, player := bson.NewObjectID(), bson.NewObjectID()

	c.Place(planet, player)
	got, ok := c.ControllerByToken(planet)
	if !ok || got != player {
		t.Fatalf("expected controller %v, got %v (ok=%v)", player, got, ok)
	}

	c.Remove(planet)
	if _, ok := c.ControllerByToken(planet); ok {
		t.Errorf("expected no controller after removal")
	}
}
