package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stochtex",
	Short: "Histogram-Gaussianization pipeline for stochastic texture tiling",
	Long: `stochtex — converts textures into a histogram-Gaussianized image plus an
inverse lookup table, so renderers can blend multiple tiled samples with a
variance-preserving formula instead of detail-washing linear blends.

Outputs a Gaussian image, a per-mip LUT chain, content-addressed filenames,
and a manifest carrying the colorspace record consumers reconstruct with.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"stochtex %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[stochtex] "+format+"\n", args...)
	}
}
