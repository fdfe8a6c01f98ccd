package encoder

import (
	"fmt"
	"strings"
)

// Registry holds all available encoders.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}

	all := []Encoder{
		&PNGEncoder{},
		&TIFFEncoder{},
		&JPEGEncoder{},
	}

	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}

	return r
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[strings.ToLower(format)]
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	// Maintain priority order.
	for _, f := range []string{"png", "tiff", "jpeg"} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// ForGaussian resolves the profile's output format to the encoder used
// for the Gaussian image: "lossless" (and "png") map to 16-bit PNG,
// "tiff" to deflate TIFF, "lossy" (and "jpeg") to JPEG.
func (r *Registry) ForGaussian(format string) (Encoder, error) {
	var name string
	switch strings.ToLower(format) {
	case "", "lossless", "png":
		name = "png"
	case "tiff":
		name = "tiff"
	case "lossy", "jpeg":
		name = "jpeg"
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	enc := r.encoders[name]
	if enc == nil {
		return nil, fmt.Errorf("encoder %q unavailable", name)
	}
	return enc, nil
}

// ForLUT returns the encoder for LUT slices. LUT entries feed numeric
// reconstruction, so they are always written losslessly regardless of
// the Gaussian image's format.
func (r *Registry) ForLUT() (Encoder, error) {
	enc := r.encoders["png"]
	if enc == nil {
		return nil, fmt.Errorf("encoder %q unavailable", "png")
	}
	return enc, nil
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
