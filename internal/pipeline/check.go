package pipeline

import (
	"errors"

	"github.com/ByteArena/box2d"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/Faultbox/collidergen/internal/logger"
	"github.com/Faultbox/collidergen/pkg/backend"
	"github.com/Faultbox/collidergen/pkg/backend/box2dbackend"
	"github.com/Faultbox/collidergen/pkg/backend/cpbackend"
	"github.com/Faultbox/collidergen/pkg/backend/resolvbackend"
	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/math"
)

// Backend names used in reports.
const (
	BackendResolv = "resolv"
	BackendCP     = "cp"
	BackendBox2D  = "box2d"
)

// BackendReport summarises how one physics backend accepted a shape set.
type BackendReport struct {
	Name       string
	Accepted   int // descriptors converted
	Degenerate int // descriptors the backend refused as degenerate
	Parts      int // engine objects, shapes or fixtures created
}

// Report is the result of Check.
type Report struct {
	Shapes   int
	Backends []BackendReport
}

// CheckOptions configures the backend conversions.
type CheckOptions struct {
	ResolvCellSize int
	CP             cpbackend.Options
	Box2D          box2dbackend.Options
}

// Check loads every present shape into each physics backend. Degenerate
// descriptors are counted per backend; any other failure is returned.
func Check(shapes []collider.Shape, opts CheckOptions) (Report, error) {
	log := logger.Named("pipeline")
	rep := Report{}
	var present []collider.Shape
	for _, s := range shapes {
		if s != nil {
			present = append(present, s)
		}
	}
	rep.Shapes = len(present)

	checks := []struct {
		name  string
		try   func(collider.Shape) error
		build func([]collider.Shape) (int, error)
	}{
		{
			name: BackendResolv,
			try: func(s collider.Shape) error {
				_, err := resolvbackend.Objects(s, math.Vec2{})
				return err
			},
			build: func(ok []collider.Shape) (int, error) {
				space, _, err := resolvbackend.Space(ok, opts.ResolvCellSize)
				if err != nil {
					return 0, err
				}
				return len(space.Objects()), nil
			},
		},
		{
			name: BackendCP,
			try: func(s collider.Shape) error {
				_, err := cpbackend.Shapes(cp.NewStaticBody(), s, opts.CP)
				return err
			},
			build: func(ok []collider.Shape) (int, error) {
				return cpbackend.AddStatic(cp.NewSpace(), ok, opts.CP)
			},
		},
		{
			name: BackendBox2D,
			try: func(s collider.Shape) error {
				_, err := box2dbackend.Shapes(s, opts.Box2D)
				return err
			},
			build: func(ok []collider.Shape) (int, error) {
				_, bodies, err := box2dbackend.World(ok, opts.Box2D)
				if err != nil {
					return 0, err
				}
				return fixtures(bodies), nil
			},
		},
	}

	for _, c := range checks {
		br := BackendReport{Name: c.name}
		var ok []collider.Shape
		for _, s := range present {
			err := c.try(s)
			switch {
			case err == nil:
				ok = append(ok, s)
			case errors.Is(err, backend.ErrDegenerate):
				br.Degenerate++
				log.Debug("shape rejected", zap.String("backend", c.name), zap.Error(err))
			default:
				return rep, err
			}
		}
		parts, err := c.build(ok)
		if err != nil {
			return rep, err
		}
		br.Accepted = len(ok)
		br.Parts = parts
		rep.Backends = append(rep.Backends, br)
		log.Info("backend checked",
			zap.String("backend", c.name),
			zap.Int("accepted", br.Accepted),
			zap.Int("degenerate", br.Degenerate),
			zap.Int("parts", br.Parts))
	}
	return rep, nil
}

func fixtures(bodies []*box2d.B2Body) int {
	n := 0
	for _, b := range bodies {
		for f := b.GetFixtureList(); f != nil; f = f.GetNext() {
			n++
		}
	}
	return n
}
