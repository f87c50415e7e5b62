package config

import (
	"flag"

	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/contour"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagKind    = flag.String("kind", "", "Collider kind: polyline, convex_polygon, convex_hull, heightfield")
	flagFrame   = flag.String("frame", "", "Coordinate frame: raw or translated")
	flagMulti   = flag.Bool("multi", false, "Emit one collider per connected region")
	flagWorkers = flag.Int("workers", -1, "Parallel regions (0 = all CPUs)")
	flagOut     = flag.String("out", "", "Output directory (default stdout)")
	flagGRF     = flag.String("grf", "", "Additional GRF archive to search")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagKind != "" {
		kind, err := collider.ParseKind(*flagKind)
		if err != nil {
			return err
		}
		cfg.Generate.Kind = kind
	}
	if *flagFrame != "" {
		frame, err := contour.ParseFrame(*flagFrame)
		if err != nil {
			return err
		}
		cfg.Generate.Frame = frame
	}
	if *flagMulti {
		cfg.Generate.Multi = true
	}
	if *flagWorkers >= 0 {
		cfg.Generate.Workers = *flagWorkers
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagGRF != "" {
		cfg.Data.GRFPaths = append(cfg.Data.GRFPaths, *flagGRF)
	}
	return nil
}
