package pipeline

import (
	"fmt"

	"github.com/AnyUserName/stochtex-cli/internal/colorspace"
	"github.com/AnyUserName/stochtex-cli/internal/gaussian"
	"github.com/AnyUserName/stochtex-cli/internal/miplut"
	"github.com/AnyUserName/stochtex-cli/internal/sortnet"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

// LUT edge bounds, per axis.
const (
	minLUTEdge = 2
	maxLUTEdge = 32
)

// Options control one conversion run.
type Options struct {
	LUTWidth              int
	LUTHeight             int
	Decorrelate           bool
	CompressionCorrection bool
	Workers               int
	Logf                  func(format string, args ...any)
}

// Result holds the numeric artifacts of one conversion run. A run owns
// its buffers exclusively; runs over different images are independent.
type Result struct {
	Gaussian *texture.Image
	Chain    *miplut.Chain
	Basis    colorspace.Basis
}

// clampLUTEdge forces v to a power of two inside [2, 32], rounding down.
func clampLUTEdge(v int) int {
	if v < minLUTEdge {
		return minLUTEdge
	}
	if v > maxLUTEdge {
		return maxLUTEdge
	}
	p := minLUTEdge
	for p<<1 <= v {
		p <<= 1
	}
	return p
}

// Convert runs the numeric pipeline over one image: optional colorspace
// decorrelation, per-channel rank sort, Gaussian image + base LUT, then
// the LUT mip chain. Dimensions are validated before any stage buffer is
// allocated; on error no partial result exists.
func Convert(src *texture.Image, opts Options) (*Result, error) {
	if err := texture.ValidateDims(src.Width, src.Height); err != nil {
		return nil, err
	}
	lutW := clampLUTEdge(opts.LUTWidth)
	lutH := clampLUTEdge(opts.LUTHeight)

	work := src.Clone()
	basis := colorspace.Identity()
	if opts.Decorrelate {
		basis = colorspace.Solve(work, opts.Workers, opts.Logf)
	}

	n := work.N()
	sorter := sortnet.Sorter{Workers: opts.Workers}
	var channels [texture.Channels]gaussian.Channel
	for c := 0; c < texture.Channels; c++ {
		values := work.Channel(c, nil)
		index := sortnet.Identity(n)
		if err := sorter.Sort(values, index); err != nil {
			return nil, fmt.Errorf("sort channel %d: %w", c, err)
		}
		channels[c] = gaussian.Channel{Values: values, Index: index}
	}

	img := gaussian.BuildImage(&channels, work.Width, work.Height, opts.Workers)
	base := gaussian.BuildBaseLUT(&channels, lutW*lutH, opts.Workers)

	// The mip chain measures the uncorrected Gaussian distribution;
	// compression correction is a storage-time rescale that consumers
	// undo before any LUT lookup, so it is applied last.
	chain := miplut.Build(base, lutW, lutH, img, opts.Workers)
	if opts.CompressionCorrection {
		inv := [3]float32{basis.Axes[0][3], basis.Axes[1][3], basis.Axes[2][3]}
		gaussian.CompressionCorrection(img, inv, opts.Workers)
	}

	return &Result{Gaussian: img, Chain: chain, Basis: basis}, nil
}
