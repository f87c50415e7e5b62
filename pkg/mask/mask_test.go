package mask

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestFromImage_NRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{A: 1})        // barely opaque
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 0}) // colored but transparent

	m, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if m.Width() != 3 || m.Height() != 2 {
		t.Fatalf("expected 3x2 mask, got %dx%d", m.Width(), m.Height())
	}

	want := map[image.Point]bool{{0, 0}: true, {2, 1}: true}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := m.Opaque(x, y); got != want[image.Pt(x, y)] {
				t.Errorf("Opaque(%d,%d) = %v, want %v", x, y, got, want[image.Pt(x, y)])
			}
		}
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 opaque pixels, got %d", m.Count())
	}
}

func TestFromImage_SubImageOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{A: 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4))
	m, err := FromImage(sub)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if m.Width() != 2 || m.Height() != 2 {
		t.Fatalf("expected 2x2 mask, got %dx%d", m.Width(), m.Height())
	}
	if !m.Opaque(0, 0) {
		t.Error("sub-image origin pixel should map to mask (0,0)")
	}
}

func TestFromImage_Luminance(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(1, 0, color.Gray{Y: 10})

	m, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if m.Opaque(0, 0) || !m.Opaque(1, 0) {
		t.Errorf("gray mask = [%v %v], want [false true]", m.Opaque(0, 0), m.Opaque(1, 0))
	}
}

func TestFromImage_Paletted(t *testing.T) {
	palette := color.Palette{color.NRGBA{}, color.NRGBA{G: 200, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), palette)
	img.SetColorIndex(1, 0, 1)

	m, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if m.Opaque(0, 0) || !m.Opaque(1, 0) {
		t.Errorf("paletted mask = [%v %v], want [false true]", m.Opaque(0, 0), m.Opaque(1, 0))
	}
}

func TestFromImage_CMYKUnsupported(t *testing.T) {
	img := image.NewCMYK(image.Rect(0, 0, 2, 2))
	_, err := FromImage(img)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFromPixels(t *testing.T) {
	tests := []struct {
		name   string
		format PixelFormat
		pix    []byte
		want   []bool
	}{
		{
			name:   "RGBA8",
			format: RGBA8,
			pix:    []byte{255, 255, 255, 0, 0, 0, 0, 7},
			want:   []bool{false, true},
		},
		{
			name:   "ABGR8",
			format: ABGR8,
			pix:    []byte{9, 0, 0, 0, 0, 255, 255, 255},
			want:   []bool{true, false},
		},
		{
			name:   "LA8",
			format: LA8,
			pix:    []byte{255, 0, 0, 1},
			want:   []bool{false, true},
		},
		{
			name:   "L8",
			format: L8,
			pix:    []byte{0, 3},
			want:   []bool{false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromPixels(2, 1, tt.format, tt.pix)
			if err != nil {
				t.Fatalf("FromPixels failed: %v", err)
			}
			for x, want := range tt.want {
				if got := m.Opaque(x, 0); got != want {
					t.Errorf("Opaque(%d,0) = %v, want %v", x, got, want)
				}
			}
		})
	}
}

func TestFromPixels_Errors(t *testing.T) {
	if _, err := FromPixels(1, 1, RGB8, []byte{1, 2, 3}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("RGB8: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := FromPixels(1, 1, BGR8, []byte{1, 2, 3}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("BGR8: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := FromPixels(2, 2, RGBA8, make([]byte, 15)); !errors.Is(err, ErrTruncatedPixels) {
		t.Errorf("short buffer: expected ErrTruncatedPixels, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(2, 2, make([]bool, 3)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}

	src := []bool{true, false}
	m, err := New(2, 1, src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	src[0] = false
	if !m.Opaque(0, 0) {
		t.Error("mask must not alias the caller's slice")
	}
	if m.Opaque(-1, 0) || m.Opaque(2, 0) {
		t.Error("out-of-bounds points must be transparent")
	}
	if m.Empty() {
		t.Error("mask with an opaque pixel reported empty")
	}
}
