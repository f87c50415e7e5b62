package formats

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA errors.
var (
	ErrTruncatedTGAData = errors.New("truncated TGA data")
	ErrUnsupportedTGA   = errors.New("unsupported TGA variant")
)

// TGA image types handled by DecodeTGA.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color TGA
// with 24 or 32 bits per pixel. 24-bit images decode fully opaque.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: header", ErrTruncatedTGAData)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topDown := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	case imageType != TGATypeUncompressed && imageType != TGATypeRLE:
		return nil, fmt.Errorf("%w: image type %d", ErrUnsupportedTGA, imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedTGA, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: image id", ErrTruncatedTGAData)
	}

	d := tgaDecoder{
		img:     image.NewNRGBA(image.Rect(0, 0, width, height)),
		src:     data[offset:],
		bytesPP: bpp / 8,
		topDown: topDown,
	}
	if imageType == TGATypeUncompressed {
		if len(d.src) < width*height*d.bytesPP {
			return nil, fmt.Errorf("%w: pixel data", ErrTruncatedTGAData)
		}
		for i := 0; i < width*height; i++ {
			d.put(i, d.read())
		}
	} else {
		d.rle()
	}
	return d.img, nil
}

type tgaDecoder struct {
	img     *image.NRGBA
	src     []byte
	pos     int
	bytesPP int
	topDown bool
}

func (d *tgaDecoder) available() bool {
	return d.pos+d.bytesPP <= len(d.src)
}

// read consumes one BGR(A) pixel.
func (d *tgaDecoder) read() color.NRGBA {
	p := d.src[d.pos : d.pos+d.bytesPP]
	d.pos += d.bytesPP
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xFF}
	if d.bytesPP == 4 {
		c.A = p[3]
	}
	return c
}

// put stores the i-th pixel in file order, flipping bottom-up images.
func (d *tgaDecoder) put(i int, c color.NRGBA) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := i%w, i/w
	if !d.topDown {
		y = h - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
}

// rle decodes run-length packets until the image is full or the data ends;
// a short stream leaves the remaining pixels transparent.
func (d *tgaDecoder) rle() {
	total := d.img.Rect.Dx() * d.img.Rect.Dy()
	i := 0
	for i < total && d.pos < len(d.src) {
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if !d.available() {
				return
			}
			c := d.read()
			for j := 0; j < count && i < total; j++ {
				d.put(i, c)
				i++
			}
			continue
		}
		for j := 0; j < count && i < total; j++ {
			if !d.available() {
				return
			}
			d.put(i, d.read())
			i++
		}
	}
}

// IsMagentaKey reports whether an RGB color matches the magenta transparency
// key used by Ragnarok Online bitmaps. The tolerance absorbs encoder drift.
func IsMagentaKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ApplyMagentaKey returns a copy of img as NRGBA with magenta-keyed pixels
// made fully transparent.
func ApplyMagentaKey(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if IsMagentaKey(c.R, c.G, c.B) {
				c = color.NRGBA{}
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
