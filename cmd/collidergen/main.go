// collidergen generates 2D collision shapes from sprite transparency.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/collidergen/internal/assets"
	"github.com/Faultbox/collidergen/internal/config"
	"github.com/Faultbox/collidergen/internal/logger"
	"github.com/Faultbox/collidergen/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	command, rest := args[0], args[1:]
	switch command {
	case "gen", "generate":
		err = cmdGen(cfg, rest)
	case "trace":
		err = cmdTrace(cfg, rest)
	case "tiles":
		err = cmdTiles(cfg, rest)
	case "check":
		err = cmdCheck(rest)
	case "grf":
		err = cmdGRF(rest)
	case "config":
		err = cmdConfig(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`collidergen - collision shapes from sprite transparency

Usage:
  collidergen [flags] <command> [arguments]

Commands:
  gen [sprite...]                Generate colliders (all known sprites if none given)
  trace <sprite> [frame]         Print the traced boundary loops of one frame
  tiles <map.tmx>                Generate one collider per tile of a Tiled map
  check <colliders.yaml>         Load exported colliders into resolv, cp and box2d
  grf info <file.grf>            Show archive information
  grf list <file.grf> [pattern]  List files (optional glob pattern)
  grf pack <out.grf> <dir>       Pack a directory into an archive
  config [path]                  Write the effective configuration

Flags:
  -config <file>   Config file (default ./collidergen.yaml)
  -kind <kind>     polyline, convex_polygon, convex_hull, heightfield
  -frame <frame>   raw or translated
  -multi           One collider per connected region
  -workers <n>     Parallel workers (0 = all CPUs)
  -out <dir>       Write one file per source instead of stdout
  -grf <file>      Additional GRF archive to search
  -debug           Debug logging

Examples:
  collidergen -kind heightfield gen sprites/ground.png
  collidergen -grf data.grf -multi -out colliders gen data/sprite/poring.spr
  collidergen grf list data.grf "*.spr"`)
}

// newManager builds the asset manager from the data section of cfg. Missing
// search directories are skipped; archives must open.
func newManager(cfg *config.Config) (*assets.Manager, error) {
	m := assets.NewManager(formats.Options{MagentaKey: cfg.Data.MagentaKey})
	for _, dir := range cfg.Data.SearchDirs {
		if err := m.AddDir(dir); err != nil {
			logger.Warn("skipping search directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	for _, path := range cfg.Data.GRFPaths {
		if err := m.AddArchive(path); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}
