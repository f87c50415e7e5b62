package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sprBuilder writes synthetic SPR files.
type sprBuilder struct {
	buf bytes.Buffer
}

func newSPR(major, minor uint8, indexed, trueColor int) *sprBuilder {
	b := &sprBuilder{}
	b.buf.WriteString("SP")
	b.buf.WriteByte(minor)
	b.buf.WriteByte(major)
	b.u16(indexed)
	if major >= 2 {
		b.u16(trueColor)
	}
	return b
}

func (b *sprBuilder) u16(v int) {
	binary.Write(&b.buf, binary.LittleEndian, uint16(v))
}

func (b *sprBuilder) raw(w, h int, indices ...byte) *sprBuilder {
	b.u16(w)
	b.u16(h)
	b.buf.Write(indices)
	return b
}

func (b *sprBuilder) rle(w, h int, packed ...byte) *sprBuilder {
	b.u16(w)
	b.u16(h)
	b.u16(len(packed))
	b.buf.Write(packed)
	return b
}

func (b *sprBuilder) abgr(w, h int, pix ...byte) *sprBuilder {
	b.u16(w)
	b.u16(h)
	b.buf.Write(pix)
	return b
}

// bytes appends a palette where index 1 is red, 2 green and 3 blue.
func (b *sprBuilder) bytes() []byte {
	palette := make([]byte, sprPaletteSize)
	copy(palette[4:], []byte{255, 0, 0, 0, 0, 255, 0, 0, 0, 0, 255, 0})
	b.buf.Write(palette)
	return b.buf.Bytes()
}

func TestParseSPR_InvalidMagic(t *testing.T) {
	if _, err := ParseSPR([]byte("XX\x01\x02")); !errors.Is(err, ErrInvalidSPRMagic) {
		t.Errorf("expected ErrInvalidSPRMagic, got %v", err)
	}
}

func TestParseSPR_TruncatedData(t *testing.T) {
	if _, err := ParseSPR([]byte("SP")); !errors.Is(err, ErrTruncatedSPRData) {
		t.Errorf("expected ErrTruncatedSPRData, got %v", err)
	}
	if _, err := ParseSPR([]byte("SP\x01\x01\x01\x00")); !errors.Is(err, ErrTruncatedSPRData) {
		t.Errorf("missing palette: expected ErrTruncatedSPRData, got %v", err)
	}

	data := newSPR(1, 1, 2, 0).raw(2, 2, 1, 1, 1, 1).bytes()
	if _, err := ParseSPR(data[:len(data)-sprPaletteSize]); !errors.Is(err, ErrTruncatedSPRData) {
		t.Errorf("missing frame: expected ErrTruncatedSPRData, got %v", err)
	}
}

func TestParseSPR_UnsupportedVersion(t *testing.T) {
	for _, v := range [][2]uint8{{1, 0}, {3, 0}, {0, 5}} {
		data := newSPR(v[0], v[1], 0, 0).bytes()
		if _, err := ParseSPR(data); !errors.Is(err, ErrUnsupportedSPRVersion) {
			t.Errorf("version %d.%d: expected ErrUnsupportedSPRVersion, got %v", v[0], v[1], err)
		}
	}
}

func TestParseSPR_Version11(t *testing.T) {
	spr, err := ParseSPR(newSPR(1, 1, 1, 0).raw(2, 2, 0, 1, 2, 3).bytes())
	if err != nil {
		t.Fatalf("ParseSPR failed: %v", err)
	}
	if spr.Version.String() != "1.1" {
		t.Errorf("expected version 1.1, got %s", spr.Version)
	}
	if len(spr.Frames) != 1 || spr.IndexedCount() != 1 {
		t.Fatalf("expected 1 indexed frame, got %d (%d indexed)", len(spr.Frames), spr.IndexedCount())
	}

	img := spr.Frames[0].(*image.Paletted)
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("expected 2x2 frame, got %v", img.Bounds())
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got.A != 0 {
		t.Errorf("index 0 should be transparent, got %v", got)
	}
	if got := color.NRGBAModel.Convert(img.At(1, 0)).(color.NRGBA); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("index 1 should be opaque red, got %v", got)
	}
}

func TestParseSPR_Version20_TrueColor(t *testing.T) {
	data := newSPR(2, 0, 1, 1).
		raw(2, 2, 0, 1, 2, 3).
		abgr(2, 1,
			255, 0, 0, 255, // opaque red
			128, 64, 32, 16, // half-transparent
		).bytes()
	spr, err := ParseSPR(data)
	if err != nil {
		t.Fatalf("ParseSPR failed: %v", err)
	}
	if len(spr.Frames) != 2 || spr.IndexedCount() != 1 {
		t.Fatalf("expected 1 indexed + 1 true-color frame, got %d (%d indexed)", len(spr.Frames), spr.IndexedCount())
	}
	tc := spr.Frames[1].(*image.NRGBA)
	want := []byte{255, 0, 0, 255, 16, 32, 64, 128}
	if d := cmp.Diff(want, tc.Pix); d != "" {
		t.Errorf("ABGR conversion mismatch: %s", d)
	}
}

func TestParseSPR_Version21_RLE(t *testing.T) {
	// 4 transparent, red, 6 transparent, green, 5 transparent.
	data := newSPR(2, 1, 1, 0).rle(4, 4, 0x00, 0x04, 0x01, 0x00, 0x06, 0x02, 0x00, 0x05).bytes()
	spr, err := ParseSPR(data)
	if err != nil {
		t.Fatalf("ParseSPR failed: %v", err)
	}
	img := spr.Frames[0].(*image.Paletted)
	want := []byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0}
	if d := cmp.Diff(want, img.Pix); d != "" {
		t.Error(d)
	}
}

func TestParseSPR_BlankFrame(t *testing.T) {
	data := newSPR(2, 0, 1, 0).raw(0xFFFF, 0xFFFF).bytes()
	spr, err := ParseSPR(data)
	if err != nil {
		t.Fatalf("ParseSPR failed: %v", err)
	}
	if len(spr.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(spr.Frames))
	}
	if b := spr.Frames[0].Bounds(); b != image.Rect(0, 0, 1, 1) {
		t.Errorf("expected 1x1 placeholder, got %v", b)
	}
}

func TestDecompressRLE(t *testing.T) {
	tests := []struct {
		name   string
		packed []byte
		size   int
		want   []byte
	}{
		{"literal bytes", []byte{1, 2, 3, 4}, 4, []byte{1, 2, 3, 4}},
		{"run of zeros", []byte{0x00, 0x04}, 4, []byte{0, 0, 0, 0}},
		{"single zero", []byte{0x00, 0x00}, 1, []byte{0}},
		{"mixed", []byte{1, 0x00, 0x02, 2}, 4, []byte{1, 0, 0, 2}},
		{"short stream pads", []byte{7}, 3, []byte{7, 0, 0}},
		{"overlong run clipped", []byte{0x00, 0x09, 5}, 2, []byte{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.size)
			decompressRLE(dst, tt.packed)
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("got %v, want %v", dst, tt.want)
			}
		})
	}
}
