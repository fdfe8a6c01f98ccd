package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/stochtex-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a converted texture set",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "stochtex.manifest.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	printStats(&m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d\n", m.BuildInfo.Workers)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total assets:     %d\n", s.TotalAssets)
	fmt.Printf("  Total artifacts:  %d\n", s.TotalArtifacts)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.ResizedToPow2 > 0 {
		fmt.Printf("  Resized inputs:   %d\n", s.ResizedToPow2)
	}
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, a := range m.Assets {
		for _, art := range a.Artifacts {
			fs := formatStats[art.Format]
			fs.count++
			fs.bytes += art.Size
			formatStats[art.Format] = fs
		}
	}

	fmt.Println("  Format breakdown:")
	for _, f := range []string{"png", "tiff", "jpeg"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	// Mip-depth breakdown.
	mipStats := map[int]int{}
	for _, a := range m.Assets {
		mipStats[a.LUT.Mips]++
	}
	var depths []int
	for d := range mipStats {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	fmt.Println("  LUT mip depth breakdown:")
	for _, d := range depths {
		fmt.Printf("    %3d mips  %4d assets\n", d, mipStats[d])
	}
	fmt.Println()

	// Decorrelation coverage: identity bases mean decorrelation was off
	// or the image was degenerate.
	identityCount := 0
	for _, a := range m.Assets {
		if isIdentityBasis(a) {
			identityCount++
		}
	}
	fmt.Printf("  Decorrelated: %d / %d assets\n", len(m.Assets)-identityCount, len(m.Assets))

	// Warnings.
	var warnings []string
	for key, a := range m.Assets {
		if len(a.Artifacts) == 0 {
			warnings = append(warnings, fmt.Sprintf("asset %q has no artifacts", key))
		}
		if a.LUT.Mips == 0 {
			warnings = append(warnings, fmt.Sprintf("asset %q missing LUT chain", key))
		}
	}
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}

func isIdentityBasis(a manifest.Asset) bool {
	for ax := 0; ax < 3; ax++ {
		for k := 0; k < 3; k++ {
			want := float32(0)
			if ax == k {
				want = 1
			}
			if a.Colorspace.Axes[ax][k] != want {
				return false
			}
		}
	}
	return true
}
