package channel

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind names the way a channel is derived from a color image.
type Kind string

const (
	Gray      Kind = "gray"
	Red       Kind = "red"
	Green     Kind = "green"
	Blue      Kind = "blue"
	Lightness Kind = "lightness"
)

// Kinds lists every supported channel kind in Split order.
var Kinds = []Kind{Gray, Red, Green, Blue, Lightness}

// ParseKind converts a channel name to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown channel kind %q", ErrInvalidChannel, name)
}

// FromImage extracts one channel from img.
//
// Parameters:
//   - img: Any decoded image. Its bounds need not start at (0, 0); the
//     channel is always addressed from (0, 0).
//   - kind: Which channel to derive.
//
// Returns an error for an unknown kind or an empty image.
func FromImage(img image.Image, kind Kind) (*Channel, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidChannel)
	}
	pix := make([]uint8, w*h)

	switch kind {
	case Gray:
		gray := imaging.Grayscale(img)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = gray.Pix[y*gray.Stride+x*4]
			}
		}
	case Red, Green, Blue:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				v := r
				if kind == Green {
					v = g
				} else if kind == Blue {
					v = bl
				}
				pix[y*w+x] = uint8(v >> 8)
			}
		}
	case Lightness:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c, ok := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
				if !ok {
					continue // fully transparent
				}
				l, _, _ := c.Lab()
				pix[y*w+x] = uint8(math.Round(math.Max(0, math.Min(1, l)) * 255))
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown channel kind %q", ErrInvalidChannel, kind)
	}

	return New(kind, w, h, pix)
}

// Split extracts every channel kind from img, in the order of Kinds.
func Split(img image.Image) ([]*Channel, error) {
	out := make([]*Channel, 0, len(Kinds))
	for _, k := range Kinds {
		c, err := FromImage(img, k)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Smooth returns a Gaussian-blurred copy of the channel. A radius of zero or
// less returns the channel itself, since channels are immutable.
func (c *Channel) Smooth(radius float64) *Channel {
	if radius <= 0 {
		return c
	}
	blurred := blur.Gaussian(c.Image(), radius)
	pix := make([]uint8, c.width*c.height)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			pix[y*c.width+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	out := &Channel{kind: c.kind, width: c.width, height: c.height, pix: pix}
	out.index()
	return out
}
