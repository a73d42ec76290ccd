package raster

import (
	"testing"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

func TestTrace_Block(t *testing.T) {
	b := newBitmap(t, 5, 5)
	fillRect(t, b, geometry.NewRect(1, 1, 3, 3))

	chain := b.Trace()
	want := Chain{
		{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 2},
		{X: 3, Y: 3}, {X: 2, Y: 3}, {X: 1, Y: 3}, {X: 1, Y: 2},
	}
	if len(chain) != len(want) {
		t.Fatalf("chain: got %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("chain[%d]: got %v, want %v", i, chain[i], want[i])
		}
	}
}

func TestTrace_Degenerate(t *testing.T) {
	if got := newBitmap(t, 4, 4).Trace(); got != nil {
		t.Errorf("empty bitmap: got %v, want nil", got)
	}

	single := newBitmap(t, 4, 4, geometry.Point{X: 2, Y: 1})
	chain := single.Trace()
	if len(chain) != 1 || chain[0] != (geometry.Point{X: 2, Y: 1}) {
		t.Errorf("isolated pixel: got %v, want [(2,1)]", chain)
	}

	pair := newBitmap(t, 4, 4, geometry.Point{X: 0, Y: 0}, geometry.Point{X: 1, Y: 0})
	if got := pair.Trace(); len(got) != 2 {
		t.Errorf("pixel pair: got %v, want 2 pixels", got)
	}
}

func TestChain_DominantPoints(t *testing.T) {
	b := newBitmap(t, 5, 5)
	fillRect(t, b, geometry.NewRect(1, 1, 3, 3))

	poly := b.Trace().DominantPoints(1, 30)
	want := geometry.Polygon{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}}
	if len(poly) != len(want) {
		t.Fatalf("dominant points: got %v, want %v", poly, want)
	}
	for i := range want {
		if poly[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, poly[i], want[i])
		}
	}
}

func TestChain_DominantPoints_Short(t *testing.T) {
	c := Chain{{X: 0, Y: 0}, {X: 1, Y: 0}}
	if got := c.DominantPoints(3, 30); len(got) != 2 {
		t.Errorf("short chain: got %v, want it unchanged", got)
	}
}
