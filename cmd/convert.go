package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AnyUserName/stochtex-cli/internal/manifest"
	"github.com/AnyUserName/stochtex-cli/internal/pipeline"
	"github.com/AnyUserName/stochtex-cli/internal/profile"
	"github.com/spf13/cobra"
)

var (
	convOutDir      string
	convProfile     string
	convWorkers     int
	convLUTWidth    int
	convLUTHeight   int
	convDecorrelate bool
	convCorrection  bool
	convFormat      string
	convQuality     int
	convFitPow2     bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input_file_or_dir>",
	Short: "Gaussianize textures and generate LUT chains + manifest",
	Long: `Scans the input (single image or directory tree) for textures, builds a
decorrelated colorspace, gaussianizes each channel's histogram, and writes
the Gaussian image, a per-mip inverse LUT chain, and a manifest.

Input dimensions must be powers of two (use --fit-pow2 to resize down).
Output filenames are content-addressed: <key>.<kind>.<hash>.<ext>`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convOutDir, "out", "o", "./stochtex_out", "output directory")
	convertCmd.Flags().StringVarP(&convProfile, "profile", "p", "albedo", "conversion profile")
	convertCmd.Flags().IntVarP(&convWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	convertCmd.Flags().IntVar(&convLUTWidth, "lut-width", 0, "LUT width, power of two in [2,32] (0 = profile default)")
	convertCmd.Flags().IntVar(&convLUTHeight, "lut-height", 0, "LUT height, power of two in [2,32] (0 = profile default)")
	convertCmd.Flags().BoolVar(&convDecorrelate, "decorrelate", true, "build a decorrelated colorspace first")
	convertCmd.Flags().BoolVar(&convCorrection, "compression-correction", false, "rescale Gaussian deviations by axis range")
	convertCmd.Flags().StringVar(&convFormat, "format", "", "gaussian image format: lossless, tiff or lossy (default from profile)")
	convertCmd.Flags().IntVarP(&convQuality, "quality", "q", 0, "lossy quality 1-100 (0 = profile default)")
	convertCmd.Flags().BoolVar(&convFitPow2, "fit-pow2", false, "resize non-power-of-two inputs down instead of rejecting them")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	start := time.Now()

	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(convOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	// Load profile, apply flag overrides.
	prof := profile.Get(convProfile)
	if convLUTWidth > 0 {
		prof.LUTWidth = convLUTWidth
	}
	if convLUTHeight > 0 {
		prof.LUTHeight = convLUTHeight
	}
	if cmd.Flags().Changed("decorrelate") {
		prof.Decorrelate = convDecorrelate
	}
	if cmd.Flags().Changed("compression-correction") {
		prof.CompressionCorrection = convCorrection
	}
	if convFormat != "" {
		prof.Format = convFormat
	}
	if convQuality > 0 {
		prof.Quality = convQuality
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (lut=%dx%d, decorrelate=%t, correction=%t, format=%s)",
		prof.Name, prof.LUTWidth, prof.LUTHeight,
		prof.Decorrelate, prof.CompressionCorrection, prof.Format)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		Input:     absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   convWorkers,
		Verbose:   verbose,
		FitPow2:   convFitPow2,
	})

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, "stochtex.manifest.json")
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printConvertReport(m, time.Since(start))
	return nil
}

func printConvertReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║            stochtex convert complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	stats := m.Stats
	fmt.Printf("  Assets:      %d\n", stats.TotalAssets)
	fmt.Printf("  Artifacts:   %d\n", stats.TotalArtifacts)
	fmt.Printf("  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(stats.TotalOutputBytes))
	if stats.ResizedToPow2 > 0 {
		fmt.Printf("  Resized:     %d inputs fitted to power-of-two dims\n", stats.ResizedToPow2)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Println()

	// Top 10 heaviest assets.
	if len(m.Assets) > 0 {
		type assetSize struct {
			key        string
			inputSize  int64
			outputSize int64
		}
		var items []assetSize
		for key, a := range m.Assets {
			var outSum int64
			for _, art := range a.Artifacts {
				outSum += art.Size
			}
			items = append(items, assetSize{key, a.Original.Size, outSum})
		}
		sort.Slice(items, func(i, j int) bool {
			return items[i].inputSize > items[j].inputSize
		})
		n := len(items)
		if n > 10 {
			n = 10
		}
		fmt.Printf("  Top %d heaviest (original → artifacts):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8s → %8s\n",
				truncKey(it.key, 40),
				formatBytes(it.inputSize),
				formatBytes(it.outputSize),
			)
		}
		fmt.Println()
	}

	fmts := detectOutputFormats(m)
	fmt.Printf("  Formats:     %s\n", strings.Join(fmts, ", "))
	fmt.Println()

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    stochtex.manifest.json (%s)\n", formatBytes(int64(len(data))))
	fmt.Println()
}

func detectOutputFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, a := range m.Assets {
		for _, art := range a.Artifacts {
			set[art.Format] = true
		}
	}
	var out []string
	for _, f := range []string{"png", "tiff", "jpeg"} {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
