package raster

import (
	"testing"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// assertPolygonCovers checks that the pixels whose centres lie inside the
// polygon are exactly the on pixels of want.
func assertPolygonCovers(t *testing.T, poly geometry.Polygon, want *Bitmap) {
	t.Helper()
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			on, _ := want.IsOn(x, y)
			if got := poly.Contains(x, y); got != on {
				t.Errorf("pixel (%d,%d): polygon contains %v, want %v", x, y, got, on)
			}
		}
	}
}

func TestComponents_TwoBlocks(t *testing.T) {
	b := newBitmap(t, 10, 10)
	fillRect(t, b, geometry.NewRect(1, 1, 3, 3))
	fillRect(t, b, geometry.NewRect(6, 5, 3, 3))

	comps := b.Components()
	if len(comps) != 2 {
		t.Fatalf("components: got %d, want 2", len(comps))
	}
	if comps[0] != geometry.NewRect(1, 1, 3, 3) {
		t.Errorf("first component: got %v", comps[0])
	}
	if comps[1] != geometry.NewRect(6, 5, 3, 3) {
		t.Errorf("second component: got %v", comps[1])
	}
}

func TestComponents_DiagonalChain(t *testing.T) {
	b := newBitmap(t, 10, 10)
	for i := 0; i < 6; i++ {
		fillRect(t, b, geometry.NewRect(i+2, i+1, 1, 1))
	}

	comps := b.PolyComponents()
	if len(comps) != 1 {
		t.Fatalf("components: got %d, want 1", len(comps))
	}
	if comps[0].Area != 6 {
		t.Errorf("area: got %d, want 6", comps[0].Area)
	}
	assertPolygonCovers(t, comps[0].Polygon, b)
}

func TestComponents_Empty(t *testing.T) {
	b := newBitmap(t, 8, 8)
	if got := b.Components(); len(got) != 0 {
		t.Errorf("empty bitmap: got %d components, want 0", len(got))
	}
	if got := b.PolyComponents(); len(got) != 0 {
		t.Errorf("empty bitmap: got %d poly components, want 0", len(got))
	}
}

func TestPolyComponents_Block(t *testing.T) {
	b := newBitmap(t, 10, 10)
	fillRect(t, b, geometry.NewRect(2, 2, 4, 4))

	comps := b.PolyComponents()
	if len(comps) != 1 {
		t.Fatalf("components: got %d, want 1", len(comps))
	}
	c := comps[0]
	if c.Area != 16 {
		t.Errorf("area: got %d, want 16", c.Area)
	}
	want := geometry.Polygon{{X: 2, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 6}, {X: 2, Y: 6}}
	if len(c.Polygon) != len(want) {
		t.Fatalf("polygon: got %v, want %v", c.Polygon, want)
	}
	for i := range want {
		if c.Polygon[i] != want[i] {
			t.Errorf("vertex %d: got %v, want %v", i, c.Polygon[i], want[i])
		}
	}
	if c.Polygon.Bounds() != c.Bounds {
		t.Errorf("polygon bounds %v differ from component bounds %v", c.Polygon.Bounds(), c.Bounds)
	}
}

func TestPolyComponents_DiagonalPair(t *testing.T) {
	b := newBitmap(t, 3, 3, geometry.Point{X: 0, Y: 0}, geometry.Point{X: 1, Y: 1})

	comps := b.PolyComponents()
	if len(comps) != 1 {
		t.Fatalf("components: got %d, want 1", len(comps))
	}
	poly := comps[0].Polygon
	if len(poly) != 8 {
		t.Errorf("polygon vertices: got %d (%v), want 8", len(poly), poly)
	}
	if got := poly.Area(); got != 2 {
		t.Errorf("polygon area: got %v, want 2", got)
	}
	assertPolygonCovers(t, poly, b)
}

func TestPolyComponents_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		rects []geometry.Rect
	}{
		{"single pixel", []geometry.Rect{geometry.NewRect(4, 4, 1, 1)}},
		{"L shape", []geometry.Rect{geometry.NewRect(1, 1, 2, 6), geometry.NewRect(1, 5, 6, 2)}},
		{"plus", []geometry.Rect{geometry.NewRect(3, 1, 2, 7), geometry.NewRect(1, 3, 7, 2)}},
		{"U shape", []geometry.Rect{
			geometry.NewRect(1, 1, 2, 6), geometry.NewRect(6, 1, 2, 6), geometry.NewRect(1, 5, 7, 2),
		}},
		{"touching edge", []geometry.Rect{geometry.NewRect(0, 0, 9, 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBitmap(t, 9, 9)
			for _, r := range tt.rects {
				fillRect(t, b, r)
			}

			comps := b.PolyComponents()
			if len(comps) != 1 {
				t.Fatalf("components: got %d, want 1", len(comps))
			}
			if comps[0].Area != b.Area() {
				t.Errorf("area: got %d, want %d", comps[0].Area, b.Area())
			}
			if got := comps[0].Polygon.Area(); int(got) != b.Area() {
				t.Errorf("polygon area: got %v, want %d", got, b.Area())
			}
			assertPolygonCovers(t, comps[0].Polygon, b)
		})
	}
}

func TestLabel_Nested(t *testing.T) {
	b := newBitmap(t, 10, 10)
	for _, r := range []geometry.Rect{
		geometry.NewRect(1, 1, 8, 1), geometry.NewRect(1, 8, 8, 1),
		geometry.NewRect(1, 2, 1, 6), geometry.NewRect(8, 2, 1, 6),
		geometry.NewRect(4, 4, 2, 2),
	} {
		fillRect(t, b, r)
	}

	labels, comps := b.Label()
	if len(comps) != 2 {
		t.Fatalf("components: got %d, want 2", len(comps))
	}
	tests := []struct {
		x, y int
		want int
	}{
		{1, 1, 1},
		{8, 8, 1},
		{4, 4, 2},
		{5, 5, 2},
		{3, 3, 0},
		{-1, 0, 0},
		{10, 10, 0},
	}
	for _, tt := range tests {
		if got := labels.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d,%d): got %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
	if comps[0].Area != 28 || comps[1].Area != 4 {
		t.Errorf("areas: got %d and %d, want 28 and 4", comps[0].Area, comps[1].Area)
	}
}
