package galaxy

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTile(g *Galaxy, coord HexCoord) *SystemTile {
	id := bson.NewObjectID()
	t := &SystemTile{ID: id, Coord: coord, Color: TileBlue}
	g.Systems[id] = t
	return t
}

func TestAdjacency_HexNeighborsAreMutual(t *testing.T) {
	g := New(bson.NewObjectID())
	a := newTile(g, HexCoord{Q: 0, R: 0})
	b := newTile(g, HexCoord{Q: 1, R: 0})

	if !g.IsAdjacent(a.ID, b.ID) {
		t.Fatalf("expected a adjacent to b")
	}
	if !g.IsAdjacent(b.ID, a.ID) {
		t.Fatalf("expected adjacency to be symmetric")
	}
}

func TestAdjacency_SystemIsNeverAdjacentToItself(t *testing.T) {
	g := New(bson.NewObjectID())
	a := newTile(g, HexCoord{Q: 0, R: 0})

	if g.IsAdjacent(a.ID, a.ID) {
		t.Fatalf("a system must not be adjacent to itself (P1)")
	}
}

func TestAdjacency_NonNeighboringTilesAreNotAdjacent(t *testing.T) {
	g := New(bson.NewObjectID())
	a := newTile(g, HexCoord{Q: 0, R: 0})
	c := newTile(g, HexCoord{Q: 5, R: 5})

	if g.IsAdjacent(a.ID, c.ID) {
		t.Fatalf("tiles far apart on the hex grid must not be adjacent")
	}
}

func TestAdjacency_WormholesConnectNonNeighboringTiles(t *testing.T) {
	g := New(bson.NewObjectID())
	a := newTile(g, HexCoord{Q: 0, R: 0})
	b := newTile(g, HexCoord{Q: 10, R: 10})
	a.Wormholes = []WormholeKind{WormholeAlpha}
	b.Wormholes = []WormholeKind{WormholeAlpha}

	if !g.IsAdjacent(a.ID, b.ID) {
		t.Fatalf("matching wormholes should create adjacency regardless of hex distance (P2)")
	}
}

func TestAdjacency_MismatchedWormholesDoNotConnect(t *testing.T) {
	g := New(bson.NewObjectID())
	a := newTile(g, HexCoord{Q: 0, R: 0})
	b := newTile(g, HexCoord{Q: 10, R: 10})
	a.Wormholes = []WormholeKind{WormholeAlpha}
	b.Wormholes = []WormholeKind{WormholeBeta}

	if g.IsAdjacent(a.ID, b.ID) {
		t.Fatalf("mismatched wormhole kinds must not connect systems")
	}
}

func TestAnomalyKind_BlocksTransit(t *testing.T) {
	cases := []struct {
		kind   AnomalyKind
		blocks bool
	}{
		{AnomalyAsteroidField, true},
		{AnomalySupernova, true},
		{AnomalyNebula, false},
		{AnomalyGravityRift, false},
	}
	for _, c := range cases {
		if got := c.kind.BlocksTransit(); got != c.blocks {
			t.Errorf("%s.BlocksTransit() = %v, want %v", c.kind, got, c.blocks)
		}
	}
}

func TestPlanet_EffectiveResourcesAppliesAttachments(t *testing.T) {
	p := &Planet{Resources: 2, Influence: 1}
	p.Attachments = append(p.Attachments, Attachment{ResourceDelta: 1, InfluenceDelta: -2})

	if got := p.EffectiveResources(); got != 3 {
		t.Errorf("EffectiveResources() = %d, want 3", got)
	}
	if got := p.EffectiveInfluence(); got != 0 {
		t.Errorf("EffectiveInfluence() = %d, want 0 (floored)", got)
	}
}
