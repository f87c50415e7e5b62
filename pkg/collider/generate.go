package collider

import (
	"fmt"
	"image"

	"github.com/Faultbox/collidergen/pkg/contour"
	"github.com/Faultbox/collidergen/pkg/mask"
)

// Options controls the image-to-collider pipeline.
type Options struct {
	Kind    Kind
	Frame   contour.Frame
	Workers int // parallel regions for GenerateAll; <= 0 means GOMAXPROCS
}

// Generate traces img as a single merged outline and synthesizes one
// descriptor. The error is non-nil only when the image has no usable opacity
// channel; ok reports whether a shape could be built.
func Generate(img image.Image, opts Options) (s Shape, ok bool, err error) {
	m, err := mask.FromImage(img)
	if err != nil {
		return nil, false, fmt.Errorf("building mask: %w", err)
	}
	loop := contour.Single(m).In(opts.Frame)
	s, ok = Synthesize(loop.Points, opts.Kind)
	return s, ok, nil
}

// GenerateAll traces every connected region of img and synthesizes one
// descriptor per region, in region discovery order. Absent results are nil
// slots; a failure in one region never affects its siblings.
func GenerateAll(img image.Image, opts Options) ([]Shape, error) {
	m, err := mask.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("building mask: %w", err)
	}
	regions := contour.Multi(m).In(opts.Frame)
	return SynthesizeAll(regions.Points(), opts.Kind, opts.Workers), nil
}
