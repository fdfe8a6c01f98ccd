package texture

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestValidateDims(t *testing.T) {
	cases := []struct {
		w, h int
		ok   bool
	}{
		{2, 2, true},
		{64, 128, true},
		{1, 1, true},
		{0, 4, false},
		{3, 4, false},
		{4, 100, false},
		{-8, 8, false},
	}
	for _, c := range cases {
		err := ValidateDims(c.w, c.h)
		if c.ok && err != nil {
			t.Errorf("ValidateDims(%d,%d) = %v, want nil", c.w, c.h, err)
		}
		if !c.ok {
			if err == nil {
				t.Errorf("ValidateDims(%d,%d) = nil, want error", c.w, c.h)
			} else if !errors.Is(err, ErrNotPowerOfTwo) {
				t.Errorf("ValidateDims(%d,%d) error not ErrNotPowerOfTwo", c.w, c.h)
			}
		}
	}
}

func TestMipCount(t *testing.T) {
	cases := []struct {
		w, h, want int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{4, 4, 3},
		{256, 256, 9},
		{512, 128, 8}, // min dim rules
	}
	for _, c := range cases {
		if got := MipCount(c.w, c.h); got != c.want {
			t.Errorf("MipCount(%d,%d) = %d, want %d", c.w, c.h, got, c.want)
		}
	}
}

func TestFromImage_NRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	img.SetNRGBA(3, 1, color.NRGBA{R: 0, G: 128, B: 0, A: 128})

	m := FromImage(img)
	if m.Width != 4 || m.Height != 2 {
		t.Fatalf("dims %dx%d", m.Width, m.Height)
	}
	p := m.At(0)
	if p[0] != 1 || p[1] != 0 || math.Abs(float64(p[2])-51.0/255) > 1e-6 {
		t.Errorf("pixel 0 = %v", p)
	}
	p = m.At(7)
	if math.Abs(float64(p[3])-128.0/255) > 1e-6 {
		t.Errorf("alpha = %v", p[3])
	}
}

func TestFromImage_RGBAUnpremultiplies(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	// premultiplied half-alpha red
	img.SetRGBA(0, 0, color.RGBA{R: 128, G: 0, B: 0, A: 128})

	m := FromImage(img)
	p := m.At(0)
	if math.Abs(float64(p[0])-1) > 0.02 {
		t.Errorf("un-premultiplied red = %v, want ~1", p[0])
	}
}

func TestChannelRoundTrip(t *testing.T) {
	m := New(4, 4)
	for i := 0; i < m.N(); i++ {
		m.Pix[i*Channels+2] = float32(i) / 16
	}
	ch := m.Channel(2, nil)
	out := New(4, 4)
	out.SetChannel(2, ch)
	for i := 0; i < m.N(); i++ {
		if out.Pix[i*Channels+2] != m.Pix[i*Channels+2] {
			t.Fatalf("channel mismatch at %d", i)
		}
	}
}

func TestToNRGBA64_Precision(t *testing.T) {
	m := New(2, 2)
	m.Pix[0] = 0.5
	m.Pix[1] = 1.25  // clamps to 1
	m.Pix[2] = -0.25 // clamps to 0
	out := m.ToNRGBA64()

	r := uint16(out.Pix[0])<<8 | uint16(out.Pix[1])
	if r != 32768 {
		t.Errorf("0.5 quantized to %d, want 32768", r)
	}
	g := uint16(out.Pix[2])<<8 | uint16(out.Pix[3])
	if g != 65535 {
		t.Errorf("1.25 quantized to %d, want 65535", g)
	}
	b := uint16(out.Pix[4])<<8 | uint16(out.Pix[5])
	if b != 0 {
		t.Errorf("-0.25 quantized to %d, want 0", b)
	}
}

func TestHasAlpha(t *testing.T) {
	m := New(2, 2)
	for i := 3; i < len(m.Pix); i += Channels {
		m.Pix[i] = 1
	}
	if m.HasAlpha() {
		t.Error("opaque image reported as having alpha")
	}
	m.Pix[7] = 0.5
	if !m.HasAlpha() {
		t.Error("translucent pixel not detected")
	}
}
