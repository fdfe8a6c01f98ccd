// Package texture holds the float32 RGBA working buffer the conversion
// pipeline mutates in place.
//
// Performance design:
//   - float32 throughout (matches the precision of the output artifacts,
//     halves memory against float64)
//   - interleaved RGBA layout, one flat slice, flattened index y*W+x
//   - decode fast paths: NRGBA, RGBA, Gray — zero image.At calls
package texture

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/bits"
)

// Channels is the fixed channel count of a working image.
const Channels = 4

// ErrNotPowerOfTwo is returned when a source image has a dimension that is
// not a power of two. The sorting network's requirement is a genuine
// algorithmic precondition, so the whole pipeline validates it up front.
var ErrNotPowerOfTwo = errors.New("image dimensions must be powers of two")

// Image is a W×H grid of 4-channel float32 pixels. Pix is interleaved
// RGBA with len W*H*4; channel values are nominally in [0, 1] but stages
// may move them outside temporarily.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

// New allocates a zeroed image. Dimensions are not validated here;
// callers that need the power-of-two contract use ValidateDims first.
func New(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]float32, w*h*Channels)}
}

// Clone returns a deep copy. Stages that must keep the pre-stage pixels
// (the sorter reads while the mapper writes) work on a clone.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Pix: make([]float32, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// N returns the pixel count.
func (m *Image) N() int { return m.Width * m.Height }

// At returns the 4 channels of the pixel with flattened index i.
func (m *Image) At(i int) [4]float32 {
	o := i * Channels
	return [4]float32{m.Pix[o], m.Pix[o+1], m.Pix[o+2], m.Pix[o+3]}
}

// Channel copies channel c into dst (len >= N) and returns it.
// dst == nil allocates.
func (m *Image) Channel(c int, dst []float32) []float32 {
	n := m.N()
	if dst == nil {
		dst = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		dst[i] = m.Pix[i*Channels+c]
	}
	return dst[:n]
}

// SetChannel writes src (len N) into channel c.
func (m *Image) SetChannel(c int, src []float32) {
	for i, v := range src {
		m.Pix[i*Channels+c] = v
	}
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// ValidateDims enforces the power-of-two contract on both dimensions.
func ValidateDims(w, h int) error {
	if !IsPowerOfTwo(w) || !IsPowerOfTwo(h) {
		return fmt.Errorf("%w: got %dx%d", ErrNotPowerOfTwo, w, h)
	}
	return nil
}

// MipCount returns the number of mip levels for a w×h image:
// log2(min(w,h)) + 1. Both dimensions must already be powers of two.
func MipCount(w, h int) int {
	m := w
	if h < m {
		m = h
	}
	return bits.Len(uint(m)) // len(minDim) = log2+1 for powers of two
}

// ─── decode ──────────────────────────────────────────────────

// FromImage converts any image.Image into a float32 working buffer,
// normalizing channels to [0, 1]. Alpha is kept non-premultiplied.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	out := New(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.NRGBA:
		fromNRGBA(src, b, out)
	case *image.RGBA:
		fromRGBA(src, b, out)
	case *image.Gray:
		fromGray(src, b, out)
	default:
		fromGeneric(img, b, out)
	}
	return out
}

func fromNRGBA(src *image.NRGBA, b image.Rectangle, out *Image) {
	const inv = 1.0 / 255
	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := (y-src.Rect.Min.Y)*src.Stride + (b.Min.X-src.Rect.Min.X)*4
		for x := 0; x < out.Width; x++ {
			out.Pix[di] = float32(src.Pix[off]) * inv
			out.Pix[di+1] = float32(src.Pix[off+1]) * inv
			out.Pix[di+2] = float32(src.Pix[off+2]) * inv
			out.Pix[di+3] = float32(src.Pix[off+3]) * inv
			di += 4
			off += 4
		}
	}
}

func fromRGBA(src *image.RGBA, b image.Rectangle, out *Image) {
	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := (y-src.Rect.Min.Y)*src.Stride + (b.Min.X-src.Rect.Min.X)*4
		for x := 0; x < out.Width; x++ {
			a := src.Pix[off+3]
			if a > 0 {
				// un-premultiply
				af := float32(a)
				out.Pix[di] = float32(src.Pix[off]) / af
				out.Pix[di+1] = float32(src.Pix[off+1]) / af
				out.Pix[di+2] = float32(src.Pix[off+2]) / af
			}
			out.Pix[di+3] = float32(a) / 255
			di += 4
			off += 4
		}
	}
}

func fromGray(src *image.Gray, b image.Rectangle, out *Image) {
	const inv = 1.0 / 255
	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := (y-src.Rect.Min.Y)*src.Stride + (b.Min.X - src.Rect.Min.X)
		for x := 0; x < out.Width; x++ {
			v := float32(src.Pix[off]) * inv
			out.Pix[di] = v
			out.Pix[di+1] = v
			out.Pix[di+2] = v
			out.Pix[di+3] = 1
			di += 4
			off++
		}
	}
}

// fromGeneric — fallback using image.At (interface dispatch per pixel).
func fromGeneric(img image.Image, b image.Rectangle, out *Image) {
	const inv = 1.0 / 65535
	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a > 0 {
				af := float32(a)
				out.Pix[di] = float32(r) / af
				out.Pix[di+1] = float32(g) / af
				out.Pix[di+2] = float32(bl) / af
			}
			out.Pix[di+3] = float32(a) * inv
			di += 4
		}
	}
}

// ─── encode ──────────────────────────────────────────────────

// ToNRGBA quantizes to 8 bits per channel, clamping to [0, 1].
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i := 0; i < m.N(); i++ {
		o := i * Channels
		out.Pix[o] = quant8(m.Pix[o])
		out.Pix[o+1] = quant8(m.Pix[o+1])
		out.Pix[o+2] = quant8(m.Pix[o+2])
		out.Pix[o+3] = quant8(m.Pix[o+3])
	}
	return out
}

// ToNRGBA64 quantizes to 16 bits per channel, clamping to [0, 1].
// Lossless artifacts (Gaussian image, LUT slices) go through this path so
// the round trip keeps enough precision for the numeric contract.
func (m *Image) ToNRGBA64() *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for i := 0; i < m.N(); i++ {
		src := i * Channels
		dst := i * 8
		for c := 0; c < Channels; c++ {
			v := quant16(m.Pix[src+c])
			out.Pix[dst+2*c] = byte(v >> 8)
			out.Pix[dst+2*c+1] = byte(v)
		}
	}
	return out
}

// HasAlpha reports whether any pixel is not fully opaque.
func (m *Image) HasAlpha() bool {
	for i := 3; i < len(m.Pix); i += Channels {
		if m.Pix[i] < 1 {
			return true
		}
	}
	return false
}

func quant8(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * 255))
}

func quant16(v float32) uint16 {
	return uint16(math.Round(float64(clamp01(v)) * 65535))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
