package raster

import (
	"testing"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

func TestThin_Bar(t *testing.T) {
	b := newBitmap(t, 12, 7)
	fillRect(t, b, geometry.NewRect(1, 2, 10, 3))

	skel := b.Thin()
	if skel.Area() == 0 {
		t.Fatal("skeleton should not be empty")
	}
	if skel.Area() >= b.Area() {
		t.Errorf("skeleton area %d should be smaller than %d", skel.Area(), b.Area())
	}
	if got := len(skel.Components()); got != 1 {
		t.Errorf("skeleton components: got %d, want 1", got)
	}
	for y := 0; y < skel.Height()-1; y++ {
		for x := 0; x < skel.Width()-1; x++ {
			if skel.at(x, y) && skel.at(x+1, y) && skel.at(x, y+1) && skel.at(x+1, y+1) {
				t.Errorf("skeleton has a 2x2 block at (%d,%d)", x, y)
			}
			if skel.at(x, y) && !b.at(x, y) {
				t.Errorf("skeleton pixel (%d,%d) not in source", x, y)
			}
		}
	}
	if b.Area() != 30 {
		t.Error("Thin must not modify the receiver")
	}
}

func TestThin_LineUnchanged(t *testing.T) {
	b := newBitmap(t, 8, 3)
	fillRect(t, b, geometry.NewRect(1, 1, 5, 1))

	if skel := b.Thin(); !skel.Equal(b) {
		t.Errorf("one-pixel line should be unchanged, got area %d", skel.Area())
	}
}

func TestThin_ThickShapes(t *testing.T) {
	var staircase []geometry.Point
	for i := 1; i <= 4; i++ {
		staircase = append(staircase, geometry.Point{X: i, Y: i}, geometry.Point{X: i + 1, Y: i})
	}

	tests := []struct {
		name       string
		src        *Bitmap
		wantBounds bool
	}{
		{"2x2 block", filled(t, geometry.NewRect(1, 1, 2, 2)), true},
		{"6x2 bar", filled(t, geometry.NewRect(1, 1, 6, 2)), true},
		{"diagonal pair", newBitmap(t, 10, 10, geometry.Point{X: 1, Y: 1}, geometry.Point{X: 2, Y: 2}), true},
		{"thick diagonal", newBitmap(t, 10, 10, staircase...), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skel := tt.src.Thin()
			got := skel.Components()
			if len(got) != 1 {
				t.Fatalf("skeleton components: got %d (area %d), want 1", len(got), skel.Area())
			}
			want := tt.src.Components()[0]
			if tt.wantBounds && got[0] != want {
				t.Errorf("skeleton bounds: got %v, want %v", got[0], want)
			}
			for y := 0; y < skel.Height(); y++ {
				for x := 0; x < skel.Width(); x++ {
					if skel.at(x, y) && !tt.src.at(x, y) {
						t.Errorf("skeleton pixel (%d,%d) not in source", x, y)
					}
				}
			}
		})
	}
}

func TestThin_DiagonalPairUnchanged(t *testing.T) {
	b := newBitmap(t, 6, 6, geometry.Point{X: 1, Y: 1}, geometry.Point{X: 2, Y: 2})
	if skel := b.Thin(); !skel.Equal(b) {
		t.Errorf("diagonal pair should be unchanged, got area %d", skel.Area())
	}
}

func filled(t *testing.T, r geometry.Rect) *Bitmap {
	t.Helper()
	b := newBitmap(t, 10, 10)
	fillRect(t, b, r)
	return b
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		on   []geometry.Point
		want []geometry.Line
	}{
		{
			name: "horizontal line",
			on:   []geometry.Point{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}, {X: 5, Y: 2}, {X: 6, Y: 2}},
			want: []geometry.Line{{A: geometry.Point{X: 1, Y: 2}, B: geometry.Point{X: 6, Y: 2}}},
		},
		{
			name: "diagonal then horizontal",
			on:   []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}},
			want: []geometry.Line{
				{A: geometry.Point{X: 0, Y: 0}, B: geometry.Point{X: 2, Y: 2}},
				{A: geometry.Point{X: 2, Y: 2}, B: geometry.Point{X: 4, Y: 2}},
			},
		},
		{
			name: "isolated pixel",
			on:   []geometry.Point{{X: 3, Y: 3}},
			want: []geometry.Line{{A: geometry.Point{X: 3, Y: 3}, B: geometry.Point{X: 3, Y: 3}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBitmap(t, 8, 8, tt.on...)
			got := b.Segments()
			if len(got) != len(tt.want) {
				t.Fatalf("segments: got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegments_Empty(t *testing.T) {
	if got := newBitmap(t, 4, 4).Segments(); len(got) != 0 {
		t.Errorf("empty skeleton: got %v, want none", got)
	}
}
