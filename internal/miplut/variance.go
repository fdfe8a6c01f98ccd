package miplut

import (
	"github.com/AnyUserName/stochtex-cli/internal/parallel"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

// reduceFactor is the per-axis shrink applied by each block-averaging
// pass. Remaining extents smaller than the factor shrink by what is left.
const reduceFactor = 4

// BlockVariance returns, per channel, the average local variance of the
// image over 2^mip × 2^mip pixel blocks. Per-pixel value and value² maps
// are reduced by repeated factor-4 block averaging until one mean /
// mean-of-squares pair per block remains; each block contributes
// max(0, E[x²] − E[x]²).
func BlockVariance(img *texture.Image, mip, workers int) [texture.Channels]float64 {
	block := 1 << mip
	n := img.N() * texture.Channels
	values := make([]float32, n)
	copy(values, img.Pix)
	squares := make([]float32, n)
	parallel.For(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			squares[i] = img.Pix[i] * img.Pix[i]
		}
	})

	w, h := img.Width, img.Height
	for remaining := block; remaining > 1; {
		f := reduceFactor
		if remaining < f {
			f = remaining
		}
		values = reduceMap(values, w, h, f, workers)
		squares = reduceMap(squares, w, h, f, workers)
		w /= f
		h /= f
		remaining /= f
	}

	var out [texture.Channels]float64
	blocks := w * h
	for b := 0; b < blocks; b++ {
		for c := 0; c < texture.Channels; c++ {
			mean := float64(values[b*texture.Channels+c])
			sq := float64(squares[b*texture.Channels+c])
			if v := sq - mean*mean; v > 0 {
				out[c] += v
			}
		}
	}
	for c := range out {
		out[c] /= float64(blocks)
	}
	return out
}

// reduceMap averages f×f pixel groups of a w×h interleaved map, returning
// a (w/f)×(h/f) map.
func reduceMap(pix []float32, w, h, f, workers int) []float32 {
	ow, oh := w/f, h/f
	out := make([]float32, ow*oh*texture.Channels)
	inv := 1 / float32(f*f)
	parallel.For(ow*oh, workers, func(start, end int) {
		for i := start; i < end; i++ {
			ox, oy := i%ow, i/ow
			var sum [texture.Channels]float32
			for dy := 0; dy < f; dy++ {
				row := ((oy*f+dy)*w + ox*f) * texture.Channels
				for dx := 0; dx < f; dx++ {
					for c := 0; c < texture.Channels; c++ {
						sum[c] += pix[row+dx*texture.Channels+c]
					}
				}
			}
			o := i * texture.Channels
			for c := 0; c < texture.Channels; c++ {
				out[o+c] = sum[c] * inv
			}
		}
	})
	return out
}
