package mask

import (
	"fmt"
)

// PixelFormat describes the layout of a raw 8-bit pixel buffer.
type PixelFormat uint8

// Supported layouts. RGB8 and BGR8 are recognised but carry no opacity data
// and are rejected.
const (
	RGBA8 PixelFormat = iota // R, G, B, A
	BGRA8                    // B, G, R, A
	ABGR8                    // A, B, G, R (SPR true-color order)
	LA8                      // luminance, alpha
	A8                       // alpha only
	L8                       // luminance only
	RGB8                     // no opacity channel
	BGR8                     // no opacity channel
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case BGRA8:
		return "BGRA8"
	case ABGR8:
		return "ABGR8"
	case LA8:
		return "LA8"
	case A8:
		return "A8"
	case L8:
		return "L8"
	case RGB8:
		return "RGB8"
	case BGR8:
		return "BGR8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

// layout returns bytes per pixel and the offset of the opacity channel.
func (f PixelFormat) layout() (stride, channel int, ok bool) {
	switch f {
	case RGBA8, BGRA8:
		return 4, 3, true
	case ABGR8:
		return 4, 0, true
	case LA8:
		return 2, 1, true
	case A8, L8:
		return 1, 0, true
	default:
		return 0, 0, false
	}
}

// FromPixels builds a mask from a tightly packed row-major buffer.
func FromPixels(width, height int, format PixelFormat, pix []byte) (*Mask, error) {
	stride, channel, ok := format.layout()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if need := width * height * stride; len(pix) < need {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrTruncatedPixels, need, len(pix))
	}

	bits := make([]bool, width*height)
	for i := range bits {
		bits[i] = pix[i*stride+channel] > 0
	}
	return &Mask{width: width, height: height, bits: bits}, nil
}
