package miplut

import (
	"math"
	"math/rand"
	"testing"

	"github.com/AnyUserName/stochtex-cli/internal/texture"
)

func randomImage(t *testing.T, w, h int) *texture.Image {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := texture.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = rng.Float32()
	}
	return img
}

// bruteBlockVariance mirrors BlockVariance with a plain double loop per
// block in float64.
func bruteBlockVariance(img *texture.Image, mip int) [texture.Channels]float64 {
	block := 1 << mip
	bw, bh := img.Width/block, img.Height/block
	var out [texture.Channels]float64
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for c := 0; c < texture.Channels; c++ {
				var sum, sumSq float64
				for y := 0; y < block; y++ {
					for x := 0; x < block; x++ {
						p := ((by*block+y)*img.Width + bx*block + x) * texture.Channels
						v := float64(img.Pix[p+c])
						sum += v
						sumSq += v * v
					}
				}
				n := float64(block * block)
				mean := sum / n
				if v := sumSq/n - mean*mean; v > 0 {
					out[c] += v
				}
			}
		}
	}
	for c := range out {
		out[c] /= float64(bw * bh)
	}
	return out
}

func TestBlockVariance_MatchesBruteForce(t *testing.T) {
	img := randomImage(t, 16, 16)
	for mip := 1; mip <= 4; mip++ {
		got := BlockVariance(img, mip, 4)
		want := bruteBlockVariance(img, mip)
		for c := 0; c < texture.Channels; c++ {
			if math.Abs(got[c]-want[c]) > 1e-5 {
				t.Errorf("mip %d channel %d: variance %g, brute force %g", mip, c, got[c], want[c])
			}
		}
	}
}

func TestBlockVariance_ConstantImage(t *testing.T) {
	img := texture.New(8, 8)
	for i := range img.Pix {
		img.Pix[i] = 0.75
	}
	v := BlockVariance(img, 2, 2)
	for c, got := range v {
		if got != 0 {
			t.Errorf("channel %d: variance %g for constant image", c, got)
		}
	}
}

func TestBuild_ZeroSigmaSlicesMatchBase(t *testing.T) {
	// A constant image has zero variance at every mip, so every filtered
	// slice must reproduce the base LUT.
	img := texture.New(16, 16)
	for i := range img.Pix {
		img.Pix[i] = 0.5
	}
	const lutW, lutH = 8, 8
	nLUT := lutW * lutH
	base := make([]float32, nLUT*texture.Channels)
	for j := 0; j < nLUT; j++ {
		for c := 0; c < texture.Channels; c++ {
			base[j*texture.Channels+c] = float32(j) / float32(nLUT)
		}
	}

	ch := Build(base, lutW, lutH, img, 4)
	if want := texture.MipCount(16, 16); len(ch.Slices) != want {
		t.Fatalf("chain has %d slices, want %d", len(ch.Slices), want)
	}
	for c, s := range ch.StdDev[0] {
		if s != 0 {
			t.Errorf("mip 0 stddev channel %d = %g, want 0", c, s)
		}
	}
	for m, slice := range ch.Slices {
		for i := range base {
			if d := math.Abs(float64(slice[i] - base[i])); d > 1e-6 {
				t.Fatalf("mip %d entry %d: %g, base %g", m, i, slice[i], base[i])
			}
		}
	}
}

func TestBuild_SlicesStayWithinBaseRange(t *testing.T) {
	img := randomImage(t, 32, 32)
	const lutW, lutH = 8, 4
	nLUT := lutW * lutH
	base := make([]float32, nLUT*texture.Channels)
	rng := rand.New(rand.NewSource(11))
	for i := range base {
		base[i] = rng.Float32()
	}
	var lo, hi [texture.Channels]float32
	for c := range lo {
		lo[c], hi[c] = float32(math.Inf(1)), float32(math.Inf(-1))
	}
	for j := 0; j < nLUT; j++ {
		for c := 0; c < texture.Channels; c++ {
			v := base[j*texture.Channels+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}

	ch := Build(base, lutW, lutH, img, 4)
	for m := 1; m < len(ch.Slices); m++ {
		for c, s := range ch.StdDev[m] {
			if s < 0 || math.IsNaN(float64(s)) {
				t.Fatalf("mip %d channel %d: stddev %g", m, c, s)
			}
		}
		for j := 0; j < nLUT; j++ {
			for c := 0; c < texture.Channels; c++ {
				v := ch.Slices[m][j*texture.Channels+c]
				if v < lo[c]-1e-6 || v > hi[c]+1e-6 {
					t.Fatalf("mip %d cell %d channel %d: %g outside base range [%g, %g]",
						m, j, c, v, lo[c], hi[c])
				}
			}
		}
	}
}

func TestReduceMap_Averages(t *testing.T) {
	pix := make([]float32, 4*4*texture.Channels)
	for i := range pix {
		pix[i] = float32(i % 16)
	}
	out := reduceMap(pix, 4, 4, 4, 1)
	if len(out) != texture.Channels {
		t.Fatalf("reduced map has %d floats, want %d", len(out), texture.Channels)
	}
	for c := 0; c < texture.Channels; c++ {
		var want float32
		for i := c; i < len(pix); i += texture.Channels {
			want += pix[i]
		}
		want /= 16
		if math.Abs(float64(out[c]-want)) > 1e-6 {
			t.Errorf("channel %d: reduced to %g, want %g", c, out[c], want)
		}
	}
}
