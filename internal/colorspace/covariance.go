// Package colorspace builds the decorrelated 3-axis colorspace a
// conversion runs in. In that space the RGB channels are statistically
// independent, so gaussianizing each channel separately and reconstructing
// never invents colors absent from the source.
package colorspace

import (
	"github.com/AnyUserName/stochtex-cli/internal/parallel"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

// Covariance computes the symmetric 3×3 covariance matrix of the RGB
// channels: Bessel-corrected (divide by N−1) second moments about the
// per-channel means on the diagonal, cross moments off-diagonal.
// Alpha never participates in the basis.
func Covariance(img *texture.Image, workers int) [3][3]float64 {
	n := img.N()
	pix := img.Pix

	// Pass 1: channel means. Per-strip partials, summed after the join.
	meanPart := make([][3]float64, parallel.Workers(workers))
	parallel.Strips(n, workers, func(strip, start, end int) {
		var s [3]float64
		for i := start; i < end; i++ {
			o := i * texture.Channels
			s[0] += float64(pix[o])
			s[1] += float64(pix[o+1])
			s[2] += float64(pix[o+2])
		}
		meanPart[strip] = s
	})
	var mean [3]float64
	for _, s := range meanPart {
		mean[0] += s[0]
		mean[1] += s[1]
		mean[2] += s[2]
	}
	inv := 1 / float64(n)
	mean[0] *= inv
	mean[1] *= inv
	mean[2] *= inv

	// Pass 2: centered second moments. Two-pass keeps the subtraction
	// out of the accumulators, which matters for low-variance channels.
	momPart := make([][6]float64, parallel.Workers(workers)) // xx yy zz xy xz yz
	parallel.Strips(n, workers, func(strip, start, end int) {
		var s [6]float64
		for i := start; i < end; i++ {
			o := i * texture.Channels
			dx := float64(pix[o]) - mean[0]
			dy := float64(pix[o+1]) - mean[1]
			dz := float64(pix[o+2]) - mean[2]
			s[0] += dx * dx
			s[1] += dy * dy
			s[2] += dz * dz
			s[3] += dx * dy
			s[4] += dx * dz
			s[5] += dy * dz
		}
		momPart[strip] = s
	})
	var mom [6]float64
	for _, s := range momPart {
		for k := range mom {
			mom[k] += s[k]
		}
	}

	// Bessel correction: divide the centered sums by N−1, not N.
	bessel := 1.0
	if n > 1 {
		bessel = 1 / float64(n-1)
	}
	var m [3][3]float64
	m[0][0] = mom[0] * bessel
	m[1][1] = mom[1] * bessel
	m[2][2] = mom[2] * bessel
	m[0][1], m[1][0] = mom[3]*bessel, mom[3]*bessel
	m[0][2], m[2][0] = mom[4]*bessel, mom[4]*bessel
	m[1][2], m[2][1] = mom[5]*bessel, mom[5]*bessel
	return m
}
