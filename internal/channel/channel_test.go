package channel

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// createInMemoryImage creates an RGBA image filled with one color.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		pix  []uint8
	}{
		{"zero width", 0, 1, nil},
		{"short pixel data", 2, 2, []uint8{1, 2, 3}},
		{"long pixel data", 1, 1, []uint8{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Gray, tt.w, tt.h, tt.pix); !errors.Is(err, ErrInvalidChannel) {
				t.Errorf("got %v, want ErrInvalidChannel", err)
			}
		})
	}
}

func TestChannel_HistogramAndRange(t *testing.T) {
	c, err := New(Gray, 2, 2, []uint8{10, 20, 20, 30})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if c.Min() != 10 || c.Max() != 30 {
		t.Errorf("range: got [%d,%d], want [10,30]", c.Min(), c.Max())
	}
	if h := c.Histogram(); h[20] != 2 {
		t.Errorf("histogram[20]: got %d, want 2", h[20])
	}
	pmf := c.PMF()
	if pmf[20] != 0.5 || pmf[10] != 0.25 {
		t.Errorf("pmf: got %v at 20 and %v at 10, want 0.5 and 0.25", pmf[20], pmf[10])
	}
	if c.Get(1, 1) != 30 {
		t.Errorf("Get(1,1): got %d, want 30", c.Get(1, 1))
	}

	s := c.Stats()
	if s.Mean != 20 || s.Variance != 50 {
		t.Errorf("stats: got mean %v variance %v, want 20 and 50", s.Mean, s.Variance)
	}
}

func TestChannel_Crop(t *testing.T) {
	c, _ := New(Gray, 3, 3, []uint8{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	sub, err := c.Crop(geometry.NewRect(1, 1, 2, 2))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if sub.Get(0, 0) != 5 || sub.Get(1, 1) != 9 {
		t.Errorf("crop values: got %d and %d, want 5 and 9", sub.Get(0, 0), sub.Get(1, 1))
	}
	if _, err := c.Crop(geometry.NewRect(2, 2, 2, 2)); err == nil {
		t.Error("crop outside channel should fail")
	}
}

func TestFromImage_Kinds(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{200, 100, 50, 255})

	tests := []struct {
		kind Kind
		want uint8
	}{
		{Red, 200},
		{Green, 100},
		{Blue, 50},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, err := FromImage(img, tt.kind)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if got := c.Get(3, 3); got != tt.want {
				t.Errorf("value: got %d, want %d", got, tt.want)
			}
			if c.Kind() != tt.kind {
				t.Errorf("kind: got %v, want %v", c.Kind(), tt.kind)
			}
		})
	}
}

func TestFromImage_GrayAndLightness(t *testing.T) {
	white := createInMemoryImage(2, 2, color.White)
	black := createInMemoryImage(2, 2, color.Black)
	mid := createInMemoryImage(2, 2, color.RGBA{128, 128, 128, 255})

	for _, kind := range []Kind{Gray, Lightness} {
		w, _ := FromImage(white, kind)
		b, _ := FromImage(black, kind)
		if w.Get(0, 0) != 255 {
			t.Errorf("%s of white: got %d, want 255", kind, w.Get(0, 0))
		}
		if b.Get(0, 0) != 0 {
			t.Errorf("%s of black: got %d, want 0", kind, b.Get(0, 0))
		}
	}

	g, _ := FromImage(mid, Gray)
	if g.Get(1, 1) != 128 {
		t.Errorf("gray of mid gray: got %d, want 128", g.Get(1, 1))
	}
	l, _ := FromImage(mid, Lightness)
	if l.Get(1, 1) <= 64 || l.Get(1, 1) >= 192 {
		t.Errorf("lightness of mid gray: got %d, want a mid-range value", l.Get(1, 1))
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(5, 5, 8, 7))
	img.SetGray(5, 5, color.Gray{Y: 42})

	c, err := FromImage(img, Red)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if c.Width() != 3 || c.Height() != 2 {
		t.Fatalf("size: got %dx%d, want 3x2", c.Width(), c.Height())
	}
	if c.Get(0, 0) != 42 {
		t.Errorf("origin value: got %d, want 42", c.Get(0, 0))
	}
}

func TestFromImage_UnknownKind(t *testing.T) {
	if _, err := FromImage(createInMemoryImage(1, 1, color.White), Kind("alpha")); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := ParseKind("alpha"); err == nil {
		t.Error("ParseKind should reject unknown names")
	}
	if k, err := ParseKind("lightness"); err != nil || k != Lightness {
		t.Errorf("ParseKind(lightness): got %v, %v", k, err)
	}
}

func TestSplit(t *testing.T) {
	chans, err := Split(createInMemoryImage(3, 3, color.RGBA{10, 20, 30, 255}))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chans) != len(Kinds) {
		t.Fatalf("channels: got %d, want %d", len(chans), len(Kinds))
	}
	for i, c := range chans {
		if c.Kind() != Kinds[i] {
			t.Errorf("channel %d: got %v, want %v", i, c.Kind(), Kinds[i])
		}
	}
}

func TestSmooth(t *testing.T) {
	pix := make([]uint8, 64)
	for i := range pix {
		if (i/8+i%8)%2 == 0 {
			pix[i] = 255
		}
	}
	c, _ := New(Gray, 8, 8, pix)

	if c.Smooth(0) != c {
		t.Error("Smooth(0) should return the channel unchanged")
	}

	s := c.Smooth(2)
	if s.Min() == 0 || s.Max() == 255 {
		t.Errorf("smoothed checkerboard range: got [%d,%d], want it narrowed", s.Min(), s.Max())
	}
	mean := s.Stats().Mean
	if math.Abs(mean-127.5) > 16 {
		t.Errorf("smoothed mean: got %v, want about 127.5", mean)
	}
	if c.Get(0, 0) != 255 {
		t.Error("Smooth must not modify the source channel")
	}
}
