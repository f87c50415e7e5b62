package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// SPR format errors.
var (
	ErrInvalidSPRMagic       = errors.New("invalid SPR magic: expected 'SP'")
	ErrUnsupportedSPRVersion = errors.New("unsupported SPR version")
	ErrTruncatedSPRData      = errors.New("truncated SPR data")
)

const sprPaletteSize = 256 * 4

// SPRVersion represents the SPR file version.
type SPRVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v SPRVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// rle reports whether indexed frames are run-length encoded (v2.1+).
func (v SPRVersion) rle() bool {
	return v.Major == 2 && v.Minor >= 1
}

// SPR is a decoded Ragnarok Online sprite sheet.
//
// Indexed frames come first as *image.Paletted sharing Palette; true-color
// frames follow as *image.NRGBA. Blank frames (zero or 0xFFFF dimensions) are
// kept as 1x1 transparent images so frame indices stay stable.
type SPR struct {
	Version SPRVersion
	Frames  []image.Image
	Palette color.Palette
}

// IndexedCount returns the number of palette frames at the start of Frames.
func (s *SPR) IndexedCount() int {
	n := 0
	for _, f := range s.Frames {
		if _, ok := f.(*image.Paletted); !ok {
			break
		}
		n++
	}
	return n
}

// ParseSPR decodes an SPR file from raw bytes.
func ParseSPR(data []byte) (*SPR, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedSPRData
	}
	if data[0] != 'S' || data[1] != 'P' {
		return nil, ErrInvalidSPRMagic
	}

	// Stored minor first.
	version := SPRVersion{Major: data[3], Minor: data[2]}
	if version.Major < 1 || version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSPRVersion, version)
	}
	if version.Major == 1 && version.Minor < 1 {
		return nil, fmt.Errorf("%w: %s (system palette not supported)", ErrUnsupportedSPRVersion, version)
	}

	r := bytes.NewReader(data[4:])
	var indexed, trueColor uint16
	if err := binary.Read(r, binary.LittleEndian, &indexed); err != nil {
		return nil, fmt.Errorf("%w: reading indexed count", ErrTruncatedSPRData)
	}
	if version.Major >= 2 {
		if err := binary.Read(r, binary.LittleEndian, &trueColor); err != nil {
			return nil, fmt.Errorf("%w: reading true-color count", ErrTruncatedSPRData)
		}
	}

	if len(data) < 4+sprPaletteSize {
		return nil, fmt.Errorf("%w: missing palette", ErrTruncatedSPRData)
	}
	spr := &SPR{
		Version: version,
		Frames:  make([]image.Image, 0, int(indexed)+int(trueColor)),
		Palette: parsePalette(data[len(data)-sprPaletteSize:]),
	}

	// The palette trails the frame data; true-color frames never reach into it.
	frameEnd := int64(len(data) - sprPaletteSize - 4)

	for i := 0; i < int(indexed); i++ {
		img, err := readIndexedFrame(r, spr.Palette, version.rle())
		if err != nil {
			return nil, fmt.Errorf("indexed frame %d: %w", i, err)
		}
		spr.Frames = append(spr.Frames, img)
	}
	for i := 0; i < int(trueColor); i++ {
		if pos, _ := r.Seek(0, io.SeekCurrent); pos >= frameEnd {
			break
		}
		img, err := readTrueColorFrame(r)
		if err != nil {
			return nil, fmt.Errorf("true-color frame %d: %w", i, err)
		}
		spr.Frames = append(spr.Frames, img)
	}
	return spr, nil
}

// parsePalette reads 256 RGBA entries. Index 0 is the transparent key; every
// other entry is drawn fully opaque regardless of its stored alpha.
func parsePalette(data []byte) color.Palette {
	p := make(color.Palette, 256)
	p[0] = color.NRGBA{}
	for i := 1; i < 256; i++ {
		o := i * 4
		p[i] = color.NRGBA{R: data[o], G: data[o+1], B: data[o+2], A: 0xFF}
	}
	return p
}

func readSize(r io.Reader) (w, h int, blank bool, err error) {
	var dims [2]uint16
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return 0, 0, false, fmt.Errorf("%w: reading frame size", ErrTruncatedSPRData)
	}
	w, h = int(dims[0]), int(dims[1])
	blank = w == 0 || h == 0 || w == 0xFFFF || h == 0xFFFF
	return w, h, blank, nil
}

func blankFrame() image.Image {
	return image.NewNRGBA(image.Rect(0, 0, 1, 1))
}

func readIndexedFrame(r io.Reader, palette color.Palette, rle bool) (image.Image, error) {
	w, h, blank, err := readSize(r)
	if err != nil {
		return nil, err
	}
	if blank {
		return blankFrame(), nil
	}

	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	if !rle {
		if _, err := io.ReadFull(r, img.Pix); err != nil {
			return nil, fmt.Errorf("%w: reading pixel indices", ErrTruncatedSPRData)
		}
		return img, nil
	}

	var size uint16
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: reading compressed size", ErrTruncatedSPRData)
	}
	packed := make([]byte, size)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, fmt.Errorf("%w: reading compressed data", ErrTruncatedSPRData)
	}
	decompressRLE(img.Pix, packed)
	return img, nil
}

// decompressRLE expands zero runs into dst: 0x00 n writes n zeros (one zero
// when n is 0), any other byte is a literal index. Output beyond the packed
// data stays zero, which is the transparent index.
func decompressRLE(dst, packed []byte) {
	o := 0
	for i := 0; i < len(packed) && o < len(dst); i++ {
		b := packed[i]
		if b != 0 {
			dst[o] = b
			o++
			continue
		}
		if i+1 >= len(packed) {
			break
		}
		i++
		run := max(int(packed[i]), 1)
		for j := 0; j < run && o < len(dst); j++ {
			dst[o] = 0
			o++
		}
	}
}

func readTrueColorFrame(r io.Reader) (image.Image, error) {
	w, h, blank, err := readSize(r)
	if err != nil {
		return nil, err
	}
	if blank {
		return blankFrame(), nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(r, img.Pix); err != nil {
		return nil, fmt.Errorf("%w: reading ABGR data", ErrTruncatedSPRData)
	}
	// Stored A, B, G, R; reverse in place.
	for i := 0; i+3 < len(img.Pix); i += 4 {
		p := img.Pix[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = p[3], p[2], p[1], p[0]
	}
	return img, nil
}
