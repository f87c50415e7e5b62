// Package pipeline turns sprite sources into collider documents: it loads
// frames through the asset manager, runs the mask, trace and synthesis steps
// per frame and collects the results in export form.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/collidergen/internal/assets"
	"github.com/Faultbox/collidergen/internal/config"
	"github.com/Faultbox/collidergen/internal/export"
	"github.com/Faultbox/collidergen/internal/logger"
	"github.com/Faultbox/collidergen/internal/tileset"
	"github.com/Faultbox/collidergen/pkg/collider"
)

// Options controls a run.
type Options struct {
	Collider collider.Options
	// Multi emits one descriptor per connected region instead of one
	// descriptor for the merged outline.
	Multi bool
	// Sources is the number of files processed at once; <= 0 means
	// GOMAXPROCS.
	Sources int
}

// FromConfig derives run options from the generate section of cfg.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Collider: collider.Options{
			Kind:    cfg.Generate.Kind,
			Frame:   cfg.Generate.Frame,
			Workers: cfg.Generate.Workers,
		},
		Multi:   cfg.Generate.Multi,
		Sources: cfg.Generate.Workers,
	}
}

// Runner generates colliders for sprite sources.
type Runner struct {
	assets *assets.Manager
	opts   Options
	log    *zap.Logger
}

// New creates a runner reading sources from m.
func New(m *assets.Manager, opts Options) *Runner {
	return &Runner{assets: m, opts: opts, log: logger.Named("pipeline")}
}

func (r *Runner) document(source string) *export.Document {
	return &export.Document{
		Source: source,
		Kind:   r.opts.Collider.Kind,
		Frame:  r.opts.Collider.Frame,
		Multi:  r.opts.Multi,
	}
}

// Image generates the colliders of one decoded frame.
func (r *Runner) Image(index int, img image.Image) (export.Image, error) {
	var shapes []collider.Shape
	if r.opts.Multi {
		all, err := collider.GenerateAll(img, r.opts.Collider)
		if err != nil {
			return export.Image{}, err
		}
		shapes = all
	} else {
		s, _, err := collider.Generate(img, r.opts.Collider)
		if err != nil {
			return export.Image{}, err
		}
		shapes = []collider.Shape{s}
	}
	b := img.Bounds()
	return export.NewImage(index, b.Dx(), b.Dy(), shapes), nil
}

// Source generates the colliders of every frame of the sprite at path.
func (r *Runner) Source(ctx context.Context, path string) (*export.Document, error) {
	frames, err := r.assets.Frames(path)
	if err != nil {
		return nil, err
	}

	doc := r.document(path)
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.Image(i, frame)
		if err != nil {
			return nil, fmt.Errorf("%s frame %d: %w", path, i, err)
		}
		doc.Images = append(doc.Images, img)
	}

	r.log.Info("source processed",
		zap.String("source", path),
		zap.Int("frames", len(frames)),
		zap.Int("colliders", doc.Present()))
	return doc, nil
}

// Run processes paths concurrently and returns one document per path in
// input order. The first failure cancels the remaining sources.
func (r *Runner) Run(ctx context.Context, paths []string) ([]*export.Document, error) {
	docs := make([]*export.Document, len(paths))
	limit := r.opts.Sources
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := r.Source(ctx, path)
			if err != nil {
				r.log.Error("source failed", zap.String("source", path), zap.Error(err))
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Tiles generates one image entry per tile, indexed by global tile id.
func (r *Runner) Tiles(source string, tiles []tileset.Tile) (*export.Document, error) {
	doc := r.document(source)
	for _, t := range tiles {
		img, err := r.Image(int(t.GID), t.Image)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", t.Name(), err)
		}
		doc.Images = append(doc.Images, img)
	}
	r.log.Info("tiles processed",
		zap.String("source", source),
		zap.Int("tiles", len(tiles)),
		zap.Int("colliders", doc.Present()))
	return doc, nil
}
