package manifest

import "github.com/AnyUserName/stochtex-cli/internal/colorspace"

// Manifest is the top-level output of a stochtex convert run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers int `json:"workers"`
}

// Asset describes one converted texture: its source, the colorspace
// record consumers reconstruct with, the LUT geometry, and every artifact
// written for it.
type Asset struct {
	Original   OriginalInfo     `json:"original"`
	Colorspace colorspace.Basis `json:"colorspace"`
	LUT        LUTInfo          `json:"lut"`
	Artifacts  []Artifact       `json:"artifacts"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
	Resized  bool   `json:"resized,omitempty"` // fitted down to power-of-two dims
}

// LUTInfo records LUT geometry and the per-mip filter sigmas.
type LUTInfo struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Mips   int          `json:"mips"`
	StdDev [][4]float32 `json:"stddev"`
}

// Artifact is one encoded output file of an asset.
type Artifact struct {
	Kind   string `json:"kind"`          // "gaussian" or "lut"
	Mip    int    `json:"mip,omitempty"` // LUT mip level
	Format string `json:"format"`        // "png", "tiff", "jpeg"
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // first 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates conversion metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	TotalArtifacts   int   `json:"total_artifacts"`
	ResizedToPow2    int   `json:"resized_to_pow2,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
