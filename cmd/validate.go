package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/AnyUserName/stochtex-cli/internal/hasher"
	"github.com/AnyUserName/stochtex-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a stochtex manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	baseDir := filepath.Dir(manifestPath)
	errors := validateManifest(&m, baseDir)

	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d assets, %d artifacts — all files present\n",
			m.Stats.TotalAssets, m.Stats.TotalArtifacts)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	for key, asset := range m.Assets {
		// Converted dimensions are powers of two; originals may not be
		// when they were fitted, but must still be positive.
		if asset.Original.Width <= 0 || asset.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, asset.Original.Width, asset.Original.Height))
		}

		if !isPow2(asset.LUT.Width) || !isPow2(asset.LUT.Height) ||
			asset.LUT.Width < 2 || asset.LUT.Width > 32 ||
			asset.LUT.Height < 2 || asset.LUT.Height > 32 {
			errs = append(errs, fmt.Sprintf("asset %q: LUT dims %dx%d outside power-of-two [2,32]",
				key, asset.LUT.Width, asset.LUT.Height))
		}
		if asset.LUT.Mips <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: missing LUT mips", key))
		}
		if len(asset.LUT.StdDev) != asset.LUT.Mips {
			errs = append(errs, fmt.Sprintf("asset %q: %d stddev records for %d mips",
				key, len(asset.LUT.StdDev), asset.LUT.Mips))
		}
		for mip, std := range asset.LUT.StdDev {
			for c, s := range std {
				if s < 0 || math.IsNaN(float64(s)) {
					errs = append(errs, fmt.Sprintf("asset %q: mip %d channel %d stddev %g",
						key, mip, c, s))
				}
			}
		}

		// Axis scales must be usable by the reconstruction formula.
		for ax := 0; ax < 3; ax++ {
			if asset.Colorspace.Axes[ax][3] <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q: axis %d has non-positive inverse range",
					key, ax))
			}
		}

		if len(asset.Artifacts) == 0 {
			errs = append(errs, fmt.Sprintf("asset %q: no artifacts", key))
		}

		gaussians := 0
		lutMips := map[int]bool{}
		seenPaths := map[string]bool{}
		for i, art := range asset.Artifacts {
			switch art.Kind {
			case "gaussian":
				gaussians++
			case "lut":
				if lutMips[art.Mip] {
					errs = append(errs, fmt.Sprintf("asset %q: duplicate LUT mip %d", key, art.Mip))
				}
				lutMips[art.Mip] = true
			default:
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: unknown kind %q", key, i, art.Kind))
			}
			if art.Format == "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: empty format", key, i))
			}
			if art.Width <= 0 || art.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: invalid dimensions %dx%d",
					key, i, art.Width, art.Height))
			}
			if art.Hash == "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: missing hash", key, i))
			}
			if art.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: missing path", key, i))
				continue
			}

			if seenPaths[art.Path] {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: duplicate path %q", key, i, art.Path))
			}
			seenPaths[art.Path] = true

			fullPath := filepath.Join(baseDir, art.Path)
			info, err := os.Stat(fullPath)
			if err != nil {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: file not found: %s", key, i, art.Path))
			} else if art.Size > 0 && info.Size() != art.Size {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: size mismatch: manifest=%d, disk=%d",
					key, i, art.Size, info.Size()))
			} else if art.Hash != "" {
				if sum := fileHash(fullPath, len(art.Hash)); sum != "" && sum != art.Hash {
					errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: hash mismatch: manifest=%s, disk=%s",
						key, i, art.Hash, sum))
				}
			}
		}
		if gaussians != 1 {
			errs = append(errs, fmt.Sprintf("asset %q: %d gaussian artifacts, want 1", key, gaussians))
		}
		if asset.LUT.Mips > 0 && len(lutMips) != asset.LUT.Mips {
			errs = append(errs, fmt.Sprintf("asset %q: %d LUT artifacts for %d mips",
				key, len(lutMips), asset.LUT.Mips))
		}
	}

	// Verify stats consistency.
	assetCount := len(m.Assets)
	artifactCount := 0
	for _, a := range m.Assets {
		artifactCount += len(a.Artifacts)
	}
	if m.Stats.TotalAssets != assetCount {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, assetCount))
	}
	if m.Stats.TotalArtifacts != artifactCount {
		errs = append(errs, fmt.Sprintf("stats.total_artifacts mismatch: %d != %d", m.Stats.TotalArtifacts, artifactCount))
	}

	return errs
}

func isPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// fileHash streams a file through the content hasher; returns "" when the
// file cannot be read (already reported as a stat error).
func fileHash(path string, hexLen int) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	sum, err := hasher.ContentHashReader(f, hexLen)
	if err != nil {
		return ""
	}
	return sum
}
