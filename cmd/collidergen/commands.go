package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/collidergen/internal/config"
	"github.com/Faultbox/collidergen/internal/export"
	"github.com/Faultbox/collidergen/internal/logger"
	"github.com/Faultbox/collidergen/internal/pipeline"
	"github.com/Faultbox/collidergen/internal/tileset"
	"github.com/Faultbox/collidergen/pkg/backend/box2dbackend"
	"github.com/Faultbox/collidergen/pkg/backend/cpbackend"
	"github.com/Faultbox/collidergen/pkg/contour"
	"github.com/Faultbox/collidergen/pkg/formats"
	"github.com/Faultbox/collidergen/pkg/grf"
	"github.com/Faultbox/collidergen/pkg/mask"
)

func cmdGen(cfg *config.Config, args []string) error {
	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	paths := args
	if len(paths) == 0 {
		if paths, err = m.Sprites(); err != nil {
			return err
		}
		logger.Info("generating for all sprites", zap.Int("sources", len(paths)))
	}
	if len(paths) == 0 {
		return errors.New("no sprites found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	docs, err := pipeline.New(m, pipeline.FromConfig(cfg)).Run(ctx, paths)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := writeDoc(cfg, doc); err != nil {
			return err
		}
	}
	hits, misses := m.Stats()
	logger.Debug("frame cache", zap.Int("hits", hits), zap.Int("misses", misses))
	return nil
}

func cmdTrace(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: collidergen trace <sprite> [frame]")
	}
	index := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("frame index: %w", err)
		}
		index = n
	}

	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	frames, err := m.Frames(args[0])
	if err != nil {
		return err
	}
	if index < 0 || index >= len(frames) {
		return fmt.Errorf("frame %d out of range (%d frames)", index, len(frames))
	}
	mk, err := mask.FromImage(frames[index])
	if err != nil {
		return err
	}

	var loops contour.RegionSet
	if cfg.Generate.Multi {
		loops = contour.Multi(mk)
	} else {
		loops = contour.RegionSet{contour.Single(mk)}
	}
	loops = loops.In(cfg.Generate.Frame)

	fmt.Printf("%s frame %d: %dx%d, %d opaque pixels, %s frame\n",
		args[0], index, mk.Width(), mk.Height(), mk.Count(), cfg.Generate.Frame)
	for i, loop := range loops {
		fmt.Printf("loop %d: %d points", i, loop.Len())
		if loop.Frame == contour.Translated {
			fmt.Printf(", origin (%g, %g)", loop.Origin.X, loop.Origin.Y)
		}
		fmt.Println()
		for _, p := range loop.Points {
			fmt.Printf("  %g %g\n", p.X, p.Y)
		}
	}
	return nil
}

func cmdTiles(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: collidergen tiles <map.tmx>")
	}
	tmx := args[0]
	tiles, err := tileset.Load(os.DirFS(filepath.Dir(tmx)), filepath.Base(tmx),
		formats.Options{MagentaKey: cfg.Data.MagentaKey})
	if err != nil {
		return err
	}

	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	doc, err := pipeline.New(m, pipeline.FromConfig(cfg)).Tiles(tmx, tiles)
	if err != nil {
		return err
	}
	return writeDoc(cfg, doc)
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	ppm := fs.Float64("ppm", box2dbackend.DefaultPixelsPerMeter, "Box2D pixels per meter")
	flipY := fs.Bool("flip-y", true, "Negate y for y-up engines (cp, box2d)")
	cell := fs.Int("cell", 16, "resolv cell size")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: collidergen check <colliders.yaml>...")
	}

	opts := pipeline.CheckOptions{
		ResolvCellSize: *cell,
		CP:             cpbackend.Options{Scale: 1, FlipY: *flipY},
		Box2D:          box2dbackend.Options{PixelsPerMeter: *ppm, FlipY: *flipY, Density: 1},
	}
	for _, path := range fs.Args() {
		doc, err := export.ReadFile(path)
		if err != nil {
			return err
		}
		shapes, err := doc.Shapes()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rep, err := pipeline.Check(shapes, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Printf("%s: %d shapes (%s)\n", path, rep.Shapes, doc.Kind)
		for _, b := range rep.Backends {
			fmt.Printf("  %-8s accepted %-4d degenerate %-4d parts %d\n", b.Name, b.Accepted, b.Degenerate, b.Parts)
		}
	}
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}

func writeDoc(cfg *config.Config, doc *export.Document) error {
	if cfg.Output.Dir == "" {
		if cfg.Output.Format == config.FormatText {
			return export.WriteText(os.Stdout, doc)
		}
		return export.Encode(os.Stdout, doc)
	}
	path, err := export.WriteFile(cfg.Output.Dir, cfg.Output.Format, doc)
	if err != nil {
		return err
	}
	logger.Info("colliders written", zap.String("source", doc.Source), zap.String("file", path))
	return nil
}

func cmdGRF(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: collidergen grf <info|list|pack> ...")
	}
	switch args[0] {
	case "info":
		return grfInfo(args[1:])
	case "list", "ls":
		return grfList(args[1:])
	case "pack":
		return grfPack(args[1:])
	default:
		return fmt.Errorf("unknown grf command: %s", args[0])
	}
}

func grfInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: collidergen grf info <file.grf>")
	}
	archive, err := grf.Open(args[0])
	if err != nil {
		return err
	}
	defer archive.Close()

	files := archive.List()
	extCount := make(map[string]int)
	var totalSize uint64
	sprites := 0
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
		if e, ok := archive.Stat(f); ok {
			totalSize += uint64(e.UncompressedSize)
		}
		if formats.Supported(f) {
			sprites++
		}
	}

	fmt.Printf("Archive: %s\n", args[0])
	fmt.Printf("Version: 0x%x\n", archive.Header().Version)
	fmt.Printf("Files:   %d (%d sprites)\n", len(files), sprites)
	fmt.Printf("Size:    %.2f MB\n", float64(totalSize)/(1024*1024))
	fmt.Println()
	fmt.Println("Files by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ext < stats[j].ext
	})
	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
	return nil
}

func grfList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: collidergen grf list <file.grf> [pattern]")
	}
	archive, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	files := archive.List()
	if fs.NArg() > 1 {
		if files, err = archive.Glob(fs.Arg(1)); err != nil {
			return err
		}
	}
	for i, f := range files {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Println(f)
	}
	fmt.Fprintf(os.Stderr, "\n(%d files)\n", len(files))
	return nil
}

func grfPack(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: collidergen grf pack <out.grf> <dir>")
	}
	out, dir := args[0], args[1]

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := grf.NewWriter(f)
	count := 0
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		count++
		return w.Add(filepath.ToSlash(rel), data)
	})
	if err != nil {
		return fmt.Errorf("packing %s: %w", dir, err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("Packed %d files into %s\n", count, out)
	return nil
}
