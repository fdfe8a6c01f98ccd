package colorspace

import (
	"math"

	"github.com/AnyUserName/stochtex-cli/internal/parallel"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

// zeroRange is the threshold below which an axis is treated as degenerate
// and given an identity scale instead of a division by its range.
const zeroRange = 1e-12

// Basis is the decorrelated colorspace record shipped with the artifacts.
// Axes[i] packs direction·range in xyz and 1/range in w; consumers
// reconstruct with rgb = Σ Axes[i].xyz·coord_i + Center.
type Basis struct {
	Axes   [3][4]float32 `json:"axes"`
	Center [3]float32    `json:"center"`
}

// Solve computes the decorrelated basis of img and rewrites its RGB
// channels in place with coordinates in that basis, normalized to [0, 1]
// per axis. Alpha is left untouched.
//
// Axes are ordered so the axis with the greatest value range lands second:
// common 3-channel block formats give the middle channel the most bits,
// so the widest axis should receive the most precision. A zero-range axis
// gets an identity (length 1) scale; logf, when non-nil, is told about it.
func Solve(img *texture.Image, workers int, logf func(format string, args ...any)) Basis {
	cov := Covariance(img, workers)
	vecs, _ := EigenSym3(cov)

	n := img.N()
	pix := img.Pix

	// Pass 1: per-axis projection extents.
	type extent struct{ min, max [3]float64 }
	parts := make([]extent, parallel.Workers(workers))
	for i := range parts {
		for ax := 0; ax < 3; ax++ {
			parts[i].min[ax] = math.Inf(1)
			parts[i].max[ax] = math.Inf(-1)
		}
	}
	parallel.Strips(n, workers, func(strip, start, end int) {
		e := &parts[strip]
		for i := start; i < end; i++ {
			o := i * texture.Channels
			r := float64(pix[o])
			g := float64(pix[o+1])
			b := float64(pix[o+2])
			for ax := 0; ax < 3; ax++ {
				c := r*vecs[ax][0] + g*vecs[ax][1] + b*vecs[ax][2]
				if c < e.min[ax] {
					e.min[ax] = c
				}
				if c > e.max[ax] {
					e.max[ax] = c
				}
			}
		}
	})
	var lo, hi [3]float64
	for ax := 0; ax < 3; ax++ {
		lo[ax] = math.Inf(1)
		hi[ax] = math.Inf(-1)
		for _, e := range parts {
			lo[ax] = math.Min(lo[ax], e.min[ax])
			hi[ax] = math.Max(hi[ax], e.max[ax])
		}
	}

	// Order axes by range: the widest one becomes axis 1.
	order := orderByRange(lo, hi)
	var basisVecs [3][3]float64
	var rng [3]float64
	var bmin [3]float64
	for i, src := range order {
		basisVecs[i] = vecs[src]
		bmin[i] = lo[src]
		rng[i] = hi[src] - lo[src]
		if rng[i] < zeroRange {
			if logf != nil {
				logf("axis %d has zero range; substituting identity scale", i)
			}
			rng[i] = 1
		}
	}

	// Pass 2: write normalized coordinates.
	parallel.For(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			o := i * texture.Channels
			r := float64(pix[o])
			g := float64(pix[o+1])
			b := float64(pix[o+2])
			for ax := 0; ax < 3; ax++ {
				c := r*basisVecs[ax][0] + g*basisVecs[ax][1] + b*basisVecs[ax][2]
				pix[o+ax] = float32((c - bmin[ax]) / rng[ax])
			}
		}
	})

	var out Basis
	for ax := 0; ax < 3; ax++ {
		for k := 0; k < 3; k++ {
			out.Axes[ax][k] = float32(basisVecs[ax][k] * rng[ax])
			out.Center[k] += float32(bmin[ax] * basisVecs[ax][k])
		}
		out.Axes[ax][3] = float32(1 / rng[ax])
	}
	return out
}

// orderByRange returns axis indices with the largest-range axis second.
// The remaining two keep their relative order.
func orderByRange(lo, hi [3]float64) [3]int {
	widest := 0
	for ax := 1; ax < 3; ax++ {
		if hi[ax]-lo[ax] > hi[widest]-lo[widest] {
			widest = ax
		}
	}
	order := [3]int{}
	k := 0
	for ax := 0; ax < 3; ax++ {
		if ax == widest {
			continue
		}
		order[k] = ax
		k++
		if k == 1 {
			order[k] = widest
			k++
		}
	}
	return order
}

// Reconstruct maps normalized basis coordinates back to RGB:
// rgb = Σ Axes[i].xyz·coord_i + Center.
func (b Basis) Reconstruct(coord [3]float32) [3]float32 {
	var rgb [3]float32
	for ax := 0; ax < 3; ax++ {
		for k := 0; k < 3; k++ {
			rgb[k] += b.Axes[ax][k] * coord[ax]
		}
	}
	for k := 0; k < 3; k++ {
		rgb[k] += b.Center[k]
	}
	return rgb
}

// Identity returns the basis that leaves RGB untouched: unit axes with
// unit scale and a zero center. Used when decorrelation is disabled so
// consumers can apply one reconstruction formula unconditionally.
func Identity() Basis {
	var b Basis
	for ax := 0; ax < 3; ax++ {
		b.Axes[ax][ax] = 1
		b.Axes[ax][3] = 1
	}
	return b
}
