package gaussian

import (
	"github.com/AnyUserName/stochtex-cli/internal/parallel"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

// Channel is one channel's rank-sorted data: ascending pre-Gaussian
// values plus the permutation back to flattened pixel positions.
type Channel struct {
	Values []float32
	Index  []int32
}

// RankCurve returns the Gaussian value assigned to each rank of an
// n-element channel: InvCDF((i+0.5)/n, 0.5, 1/6). The curve depends only
// on n, so one curve serves all four channels of an image.
func RankCurve(n, workers int) []float32 {
	curve := make([]float32, n)
	parallel.For(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			curve[i] = float32(InvCDF(Quantile(i, n), Mean, Sigma))
		}
	})
	return curve
}

// BuildImage scatters the rank curve through every channel's permutation,
// producing the histogram-Gaussianized image: the pixel a rank originated
// from receives that rank's Gaussian value.
func BuildImage(channels *[texture.Channels]Channel, w, h, workers int) *texture.Image {
	out := texture.New(w, h)
	n := w * h
	curve := RankCurve(n, workers)
	for c := 0; c < texture.Channels; c++ {
		idx := channels[c].Index
		parallel.For(n, workers, func(start, end int) {
			for i := start; i < end; i++ {
				out.Pix[int(idx[i])*texture.Channels+c] = curve[i]
			}
		})
	}
	return out
}

// BuildBaseLUT builds the mip-0 lookup table with nLUT entries: cell j
// holds, per channel, the sorted pre-Gaussian value whose rank matches
// the Gaussian quantile at position (j+0.5)/nLUT.
func BuildBaseLUT(channels *[texture.Channels]Channel, nLUT, workers int) []float32 {
	lut := make([]float32, nLUT*texture.Channels)
	n := len(channels[0].Values)
	parallel.For(nLUT, workers, func(start, end int) {
		for j := start; j < end; j++ {
			u := CDF(Quantile(j, nLUT), Mean, Sigma)
			rank := int(u * float64(n))
			if rank < 0 {
				rank = 0
			} else if rank >= n {
				rank = n - 1
			}
			for c := 0; c < texture.Channels; c++ {
				lut[j*texture.Channels+c] = channels[c].Values[rank]
			}
		}
	})
	return lut
}

// CompressionCorrection rescales Gaussian deviations around 0.5 by each
// axis's inverse range so block compression distributes precision more
// evenly across the decorrelated axes. Scales are normalized by the
// largest inverse range to keep every value inside [0, 1]; consumers undo
// the correction with the ranges stored in the colorspace record. Alpha
// has no axis and is left alone.
func CompressionCorrection(img *texture.Image, invRange [3]float32, workers int) {
	maxInv := invRange[0]
	for _, v := range invRange[1:] {
		if v > maxInv {
			maxInv = v
		}
	}
	if maxInv <= 0 {
		return
	}
	var scale [3]float32
	for i, v := range invRange {
		scale[i] = v / maxInv
	}
	n := img.N()
	parallel.For(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			o := i * texture.Channels
			for c := 0; c < 3; c++ {
				img.Pix[o+c] = 0.5 + (img.Pix[o+c]-0.5)*scale[c]
			}
		}
	})
}
