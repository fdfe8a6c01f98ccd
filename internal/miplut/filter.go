// Package miplut builds the coarser-mip slices of the inverse lookup
// table. Bilinear interpolation between two base-LUT entries is invalid
// for a nonlinear, memoryless transform, so each coarser mip recomputes
// the quantile mapping against the image's block-averaged variance at
// that mip instead.
//
// Performance design:
//   - variance maps reduce by repeated factor-4 block averaging, a
//     parallel map per pass with no cross-worker state
//   - slice rows are independent and heavy (2·N_LUT inverse-CDF
//     evaluations each), so they are distributed one row per worker pull
package miplut

import (
	"math"

	"github.com/AnyUserName/stochtex-cli/internal/gaussian"
	"github.com/AnyUserName/stochtex-cli/internal/parallel"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

// Chain is the full LUT mip chain plus the per-mip standard deviations
// the slices were filtered with. Slices[0] is the base LUT; every slice
// holds Width·Height interleaved 4-channel cells.
type Chain struct {
	Width  int
	Height int
	Slices [][]float32
	StdDev [][texture.Channels]float32
}

// Build assembles the mip chain for a base LUT against the Gaussian
// image it inverts. The chain has one slice per image mip level; slice m
// is the base LUT filtered with the per-channel standard deviation of
// 2^m × 2^m blocks of the image.
func Build(base []float32, lutW, lutH int, img *texture.Image, workers int) *Chain {
	nLUT := lutW * lutH
	mips := texture.MipCount(img.Width, img.Height)
	ch := &Chain{
		Width:  lutW,
		Height: lutH,
		Slices: make([][]float32, mips),
		StdDev: make([][texture.Channels]float32, mips),
	}
	ch.Slices[0] = append([]float32(nil), base...)
	for m := 1; m < mips; m++ {
		variance := BlockVariance(img, m, workers)
		var std [texture.Channels]float64
		for c, v := range variance {
			std[c] = math.Sqrt(v)
			ch.StdDev[m][c] = float32(std[c])
		}
		ch.Slices[m] = filterSlice(base, nLUT, std, workers)
	}
	return ch
}

// filterSlice recomputes the quantile mapping for one mip. Cell j is the
// base LUT convolved with a Gaussian of the mip's standard deviation
// centered on the cell's quantile, evaluated numerically: an expanded row
// of 2·nLUT inverse-CDF samples fetches the base LUT, then the row is
// block-averaged down to a single value.
func filterSlice(base []float32, nLUT int, std [texture.Channels]float64, workers int) []float32 {
	out := make([]float32, nLUT*texture.Channels)
	expand := 2 * nLUT
	parallel.Each(nLUT, workers, func(j int) {
		row := make([]float32, expand*texture.Channels)
		x := gaussian.Quantile(j, nLUT)
		for s := 0; s < expand; s++ {
			u := gaussian.Quantile(s, expand)
			for c := 0; c < texture.Channels; c++ {
				g := gaussian.InvCDF(u, x, std[c])
				i := int(math.Round(g*float64(nLUT) - 0.5))
				if i < 0 {
					i = 0
				} else if i >= nLUT {
					i = nLUT - 1
				}
				row[s*texture.Channels+c] = base[i*texture.Channels+c]
			}
		}
		for width := expand; width > 1; {
			f := reduceFactor
			if width < f {
				f = width
			}
			width /= f
			inv := 1 / float32(f)
			for k := 0; k < width; k++ {
				var sum [texture.Channels]float32
				for d := 0; d < f; d++ {
					o := (k*f + d) * texture.Channels
					for c := 0; c < texture.Channels; c++ {
						sum[c] += row[o+c]
					}
				}
				for c := 0; c < texture.Channels; c++ {
					row[k*texture.Channels+c] = sum[c] * inv
				}
			}
		}
		copy(out[j*texture.Channels:(j+1)*texture.Channels], row[:texture.Channels])
	})
	return out
}
