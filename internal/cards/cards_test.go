package cards

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/rng"
)

func TestDeck_DrawReturnsFalseWhenBothEmpty(t *testing.T) {
	d := &Deck{}
	if _, ok := d.Draw(rng.New([]byte("seed"))); ok {
		t.Fatalf("drawing from an empty deck with no discard should fail")
	}
}

func TestDeck_DrawReshufflesDiscardWhenDeckEmpty(t *testing.T) {
	discarded := []bson.ObjectID{bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()}
	d := &Deck{Discard: append([]bson.ObjectID(nil), discarded...)}

	id, ok := d.Draw(rng.New([]byte("seed")))
	if !ok {
		t.Fatalf("expected a successful draw after reshuffling the discard pile")
	}
	found := false
	for _, c := range discarded {
		if c == id {
			found = true
		}
	}
	if !found {
		t.Errorf("drawn card %v was not among the reshuffled discard pile", id)
	}
	if len(d.Discard) != 0 {
		t.Errorf("discard pile should be empty immediately after reshuffling into the deck")
	}
}

func TestDeck_DiscardCardAppendsToDiscard(t *testing.T) {
	d := &Deck{}
	id := bson.NewObjectID()
	d.DiscardCard(id)

	if len(d.Discard) != 1 || d.Discard[0] != id {
		t.Fatalf("expected card to be appended to discard pile")
	}
}

func TestDeck_Empty(t *testing.T) {
	d := &Deck{}
	if !d.Empty() {
		t.Errorf("a deck with no cards and no discard should be empty")
	}
	d.DiscardCard(bson.NewObjectID())
	if d.Empty() {
		t.Errorf("a deck with cards in its discard pile should not be reported empty")
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	c := ActionCard{base: base{ID: bson.NewObjectID(), Kind: KindAction, Name: "Sabotage"}}
	r.Register(c)

	got := r.Lookup(c.CardID())
	if got == nil || got.CardKind() != KindAction {
		t.Fatalf("expected to look up the registered action card")
	}
}

func TestRegistry_LookupUnknownIDReturnsNil(t *testing.T) {
	r := NewRegistry()
	if got := r.Lookup(bson.NewObjectID()); got != nil {
		t.Errorf("looking up an unregistered id should return nil")
	}
}
