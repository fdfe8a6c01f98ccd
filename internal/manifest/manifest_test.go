package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/stochtex-cli/internal/colorspace"
)

func TestManifestRoundtrip(t *testing.T) {
	m := New("albedo")
	m.BuildInfo = &BuildInfo{Workers: 4}
	m.Assets["textures/grass"] = Asset{
		Original: OriginalInfo{
			Width: 256, Height: 256,
			Format: "png", Size: 100000, HasAlpha: false,
		},
		Colorspace: colorspace.Identity(),
		LUT: LUTInfo{
			Width: 32, Height: 32, Mips: 9,
			StdDev: [][4]float32{{0, 0, 0, 0}, {0.1, 0.2, 0.05, 0}},
		},
		Artifacts: []Artifact{
			{Kind: "gaussian", Format: "png", Width: 256, Height: 256, Size: 50000,
				Hash: "abcd1234abcd1234", Path: "textures/grass.gaussian.abcd1234.png"},
			{Kind: "lut", Mip: 0, Format: "png", Width: 32, Height: 32, Size: 2000,
				Hash: "0123456789abcdef", Path: "textures/grass.lut0.01234567.png"},
		},
	}
	m.ComputeStats()

	// Write to temp file.
	dir := t.TempDir()
	path := filepath.Join(dir, "stochtex.manifest.json")
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Read back and parse.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var m2 Manifest
	if err := json.Unmarshal(data, &m2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Verify fields.
	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Profile != "albedo" {
		t.Errorf("profile: got %q", m2.Profile)
	}
	if m2.BuildInfo == nil {
		t.Fatal("build_info missing")
	}
	if m2.BuildInfo.Workers != 4 {
		t.Errorf("workers: got %d", m2.BuildInfo.Workers)
	}

	a, ok := m2.Assets["textures/grass"]
	if !ok {
		t.Fatal("asset textures/grass missing")
	}
	if a.Colorspace.Axes[1][1] != 1 || a.Colorspace.Axes[1][3] != 1 {
		t.Errorf("colorspace not identity: %+v", a.Colorspace)
	}
	if a.LUT.Width != 32 || a.LUT.Mips != 9 {
		t.Errorf("lut info: got %+v", a.LUT)
	}
	if len(a.LUT.StdDev) != 2 || a.LUT.StdDev[1][1] != 0.2 {
		t.Errorf("stddev: got %v", a.LUT.StdDev)
	}
	if len(a.Artifacts) != 2 {
		t.Fatalf("artifacts: got %d", len(a.Artifacts))
	}
	if a.Artifacts[0].Kind != "gaussian" || a.Artifacts[1].Kind != "lut" {
		t.Errorf("artifact kinds: %q, %q", a.Artifacts[0].Kind, a.Artifacts[1].Kind)
	}

	// Stats.
	if m2.Stats.TotalAssets != 1 {
		t.Errorf("total_assets: got %d", m2.Stats.TotalAssets)
	}
	if m2.Stats.TotalArtifacts != 2 {
		t.Errorf("total_artifacts: got %d", m2.Stats.TotalArtifacts)
	}
	if m2.Stats.TotalOutputBytes != 52000 {
		t.Errorf("total_output_bytes: got %d", m2.Stats.TotalOutputBytes)
	}
}

func TestManifestVersion(t *testing.T) {
	m := New("v-test")
	if m.Version != SupportedManifestVersion {
		t.Errorf("new manifest version: got %d, want %d", m.Version, SupportedManifestVersion)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	// Simulate a future manifest with extra fields.
	raw := `{
		"version": 1,
		"generated_at": "2026-01-01T00:00:00Z",
		"profile": "albedo",
		"base_path": "./",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "new_flag": true },
		"assets": {},
		"stats": { "total_input_bytes": 0, "total_output_bytes": 0, "total_assets": 0, "total_artifacts": 0, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("version: got %d", m.Version)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}
