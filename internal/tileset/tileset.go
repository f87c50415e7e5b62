// Package tileset cuts the tiles of a Tiled map's tilesets into individual
// images so each tile can get its own collider.
package tileset

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/lafriks/go-tiled"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/collidergen/internal/logger"
	"github.com/Faultbox/collidergen/pkg/formats"
)

// ErrNoImage is returned for tilesets without a sheet or per-tile images.
var ErrNoImage = errors.New("tileset has no image")

// Tile is one tile image cut out of a tileset.
type Tile struct {
	Tileset string
	ID      uint32 // local tile id
	GID     uint32 // global id in the map
	Image   *image.NRGBA
}

// Name returns a stable label "tileset/id" for logs and exports.
func (t Tile) Name() string {
	return fmt.Sprintf("%s/%d", t.Tileset, t.ID)
}

// Load reads the TMX map at tmxPath from fsys and returns every tile of
// every tileset it references, in tileset then id order. Paths are slash
// separated and relative to fsys, so embed.FS and os.DirFS both work.
func Load(fsys fs.FS, tmxPath string, opts formats.Options) ([]Tile, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}
	log := logger.Named("tileset")

	var tiles []Tile
	for _, ts := range m.Tilesets {
		cut, err := cutTileset(fsys, ts, opts)
		if err != nil {
			return nil, fmt.Errorf("tileset %s: %w", ts.Name, err)
		}
		log.Debug("tileset loaded",
			zap.String("map", tmxPath),
			zap.String("tileset", ts.Name),
			zap.Int("tiles", len(cut)))
		tiles = append(tiles, cut...)
	}
	return tiles, nil
}

func cutTileset(fsys fs.FS, ts *tiled.Tileset, opts formats.Options) ([]Tile, error) {
	// Image collection: every tile carries its own picture.
	if ts.Image == nil || ts.Image.Source == "" {
		if len(ts.Tiles) == 0 {
			return nil, ErrNoImage
		}
		var tiles []Tile
		for _, tt := range ts.Tiles {
			if tt.Image == nil || tt.Image.Source == "" {
				continue
			}
			img, err := decode(fsys, sourcePath(ts, tt.Image.Source), opts)
			if err != nil {
				return nil, err
			}
			tiles = append(tiles, Tile{
				Tileset: ts.Name,
				ID:      tt.ID,
				GID:     ts.FirstGID + tt.ID,
				Image:   crop(img, img.Bounds()),
			})
		}
		if len(tiles) == 0 {
			return nil, ErrNoImage
		}
		return tiles, nil
	}

	sheet, err := decode(fsys, sourcePath(ts, ts.Image.Source), opts)
	if err != nil {
		return nil, err
	}
	if ts.TileWidth <= 0 || ts.TileHeight <= 0 {
		return nil, fmt.Errorf("invalid tile size %dx%d", ts.TileWidth, ts.TileHeight)
	}

	columns := ts.Columns
	if columns <= 0 {
		columns = (sheet.Bounds().Dx() - 2*ts.Margin + ts.Spacing) / (ts.TileWidth + ts.Spacing)
	}
	count := ts.TileCount
	if count <= 0 && columns > 0 {
		rows := (sheet.Bounds().Dy() - 2*ts.Margin + ts.Spacing) / (ts.TileHeight + ts.Spacing)
		count = columns * rows
	}

	tiles := make([]Tile, 0, count)
	for id := 0; id < count; id++ {
		r := TileRect(id, columns, ts.TileWidth, ts.TileHeight, ts.Spacing, ts.Margin).
			Add(sheet.Bounds().Min)
		if !r.In(sheet.Bounds()) {
			return nil, fmt.Errorf("tile %d at %v lies outside the %v sheet", id, r, sheet.Bounds())
		}
		tiles = append(tiles, Tile{
			Tileset: ts.Name,
			ID:      uint32(id),
			GID:     ts.FirstGID + uint32(id),
			Image:   crop(sheet, r),
		})
	}
	return tiles, nil
}

// TileRect returns the sheet rectangle of tile id for a sheet laid out in
// columns with the given spacing between tiles and margin around them.
func TileRect(id, columns, tileW, tileH, spacing, margin int) image.Rectangle {
	col, row := id%columns, id/columns
	x := margin + col*(tileW+spacing)
	y := margin + row*(tileH+spacing)
	return image.Rect(x, y, x+tileW, y+tileH)
}

// sourcePath resolves an image reference against the file that declared the
// tileset: the map for embedded tilesets, the .tsx for external ones.
func sourcePath(ts *tiled.Tileset, source string) string {
	return path.Clean(filepath.ToSlash(ts.GetFileFullPath(source)))
}

func decode(fsys fs.FS, name string, opts formats.Options) (image.Image, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading tileset image: %w", err)
	}
	frames, err := formats.DecodeFrames(name, data, opts)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s has no frames", ErrNoImage, name)
	}
	return frames[0], nil
}

// crop copies r out of src into a new image anchored at the origin.
func crop(src image.Image, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, src, r, draw.Src, nil)
	return dst
}
