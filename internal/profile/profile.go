package profile

// Profile bundles conversion parameters for a class of textures.
type Profile struct {
	Name                  string
	LUTWidth              int    // power of two, clamped to [2,32]
	LUTHeight             int    // power of two, clamped to [2,32]
	Decorrelate           bool   // build a decorrelated colorspace first
	CompressionCorrection bool   // rescale Gaussian deviations by axis range
	Format                string // "lossless" or "lossy"
	Quality               int    // lossy encoding quality 1-100
}

// Built-in presets.
var profiles = map[string]Profile{
	"albedo": {
		Name:        "albedo",
		LUTWidth:    32,
		LUTHeight:   32,
		Decorrelate: true,
		Format:      "lossless",
		Quality:     90,
	},
	// Normal maps already live in a meaningful vector space; rotating
	// them into a statistical basis would break tangent-space consumers.
	"normal": {
		Name:      "normal",
		LUTWidth:  32,
		LUTHeight: 32,
		Format:    "lossless",
		Quality:   90,
	},
	"fast": {
		Name:        "fast",
		LUTWidth:    16,
		LUTHeight:   16,
		Decorrelate: true,
		Format:      "lossy",
		Quality:     85,
	},
}

// Get returns a profile by name. Falls back to albedo if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["albedo"]
	p.Name = name // preserve requested name
	return p
}
