// Package formats decodes the sprite sources collidergen traces: Ragnarok
// Online SPR sheets, TGA textures and the common raster formats.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"strings"

	// Raster decoders registered with image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnknownFormat is returned for file extensions no decoder handles.
var ErrUnknownFormat = errors.New("unknown sprite format")

// Extensions lists the lower-case file extensions DecodeFrames accepts.
var Extensions = []string{".spr", ".tga", ".png", ".gif", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// Supported reports whether name has a decodable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Options adjust decoding.
type Options struct {
	// MagentaKey turns magenta pixels transparent in formats without alpha
	// (BMP and JPEG), matching how the game renders them.
	MagentaKey bool
}

// DecodeFrames decodes every frame stored in data, choosing the decoder by
// the extension of name. SPR sheets and animated GIFs yield one image per
// frame; other formats yield a single image.
func DecodeFrames(name string, data []byte, opts Options) ([]image.Image, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".spr":
		spr, err := ParseSPR(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return spr.Frames, nil
	case ".tga":
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return []image.Image{img}, nil
	case ".gif":
		anim, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return gifFrames(anim), nil
	}

	if !Supported(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if opts.MagentaKey && (ext == ".bmp" || ext == ".jpg" || ext == ".jpeg") {
		img = ApplyMagentaKey(img)
	}
	return []image.Image{img}, nil
}

// gifFrames composes each GIF frame onto the logical screen, honouring the
// frame disposal methods, so every frame is a complete picture.
func gifFrames(anim *gif.GIF) []image.Image {
	screen := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)
	if screen.Empty() && len(anim.Image) > 0 {
		screen = anim.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(screen)
	frames := make([]image.Image, 0, len(anim.Image))
	for i, frame := range anim.Image {
		var prev *image.NRGBA
		disposal := byte(0)
		if i < len(anim.Disposal) {
			disposal = anim.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			prev = image.NewNRGBA(screen)
			draw.Draw(prev, screen, canvas, screen.Min, draw.Src)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		out := image.NewNRGBA(screen)
		draw.Draw(out, screen, canvas, screen.Min, draw.Src)
		frames = append(frames, out)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = prev
		}
	}
	return frames
}

// DecodeFile reads and decodes a sprite file from disk.
func DecodeFile(path string, opts Options) ([]image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sprite: %w", err)
	}
	return DecodeFrames(filepath.Base(path), data, opts)
}
