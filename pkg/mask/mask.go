// Package mask builds binary occupancy masks from pixel data.
//
// A pixel is opaque when its alpha channel, or its luminance for formats
// without alpha, is strictly greater than zero. The rule is fixed; there is no
// tunable threshold.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Mask errors.
var (
	ErrUnsupportedFormat = errors.New("pixel format has no alpha or luminance channel")
	ErrInvalidSize       = errors.New("invalid mask dimensions")
	ErrTruncatedPixels   = errors.New("truncated pixel buffer")
)

// Mask is an immutable width x height grid of opaque/transparent cells.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// New returns a mask of the given size built from a row-major opacity slice.
// The slice is copied.
func New(width, height int, opaque []bool) (*Mask, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if len(opaque) != width*height {
		return nil, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidSize, width*height, len(opaque))
	}
	bits := make([]bool, len(opaque))
	copy(bits, opaque)
	return &Mask{width: width, height: height, bits: bits}, nil
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// Bounds returns the mask rectangle, anchored at the origin.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Opaque reports whether (x, y) is opaque. Points outside the mask are
// transparent.
func (m *Mask) Opaque(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Count returns the number of opaque pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no opaque pixel.
func (m *Mask) Empty() bool {
	for _, b := range m.bits {
		if b {
			return false
		}
	}
	return true
}

// FromImage builds a mask from any image.Image. The mask origin is the image
// bounds' minimum point.
func FromImage(img image.Image) (*Mask, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	bits := make([]bool, w*h)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := range h {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				bits[y*w+x] = row[x*4+3] > 0
			}
		}
	case *image.RGBA:
		for y := range h {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				bits[y*w+x] = row[x*4+3] > 0
			}
		}
	case *image.Alpha:
		for y := range h {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				bits[y*w+x] = row[x] > 0
			}
		}
	case *image.Gray:
		for y := range h {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				bits[y*w+x] = row[x] > 0
			}
		}
	case *image.Paletted:
		opaque := make([]bool, len(src.Palette))
		for i, c := range src.Palette {
			_, _, _, a := c.RGBA()
			opaque[i] = a > 0
		}
		for y := range h {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				idx := int(row[x])
				bits[y*w+x] = idx < len(opaque) && opaque[idx]
			}
		}
	default:
		test, err := opacityFunc(img.ColorModel())
		if err != nil {
			return nil, err
		}
		for y := range h {
			for x := range w {
				bits[y*w+x] = test(img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}

	return &Mask{width: w, height: h, bits: bits}, nil
}

// opacityFunc picks the opacity test for a color model: luminance for the
// gray and luma-chroma models, alpha for everything that carries alpha.
func opacityFunc(model color.Model) (func(color.Color) bool, error) {
	alpha := func(c color.Color) bool {
		_, _, _, a := c.RGBA()
		return a > 0
	}
	// Palettes are slices and must not reach the comparisons below.
	if _, ok := model.(color.Palette); ok {
		return alpha, nil
	}

	switch model {
	case color.CMYKModel:
		return nil, fmt.Errorf("%w: CMYK", ErrUnsupportedFormat)
	case color.GrayModel, color.Gray16Model:
		return func(c color.Color) bool {
			return color.Gray16Model.Convert(c).(color.Gray16).Y > 0
		}, nil
	case color.YCbCrModel:
		return func(c color.Color) bool {
			return color.YCbCrModel.Convert(c).(color.YCbCr).Y > 0
		}, nil
	}
	return alpha, nil
}
