//go:build ignore

// gen_fixtures creates small test textures for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "terrain"), 0o755)

	// Stochastic textures, power-of-two dims.
	writeImage(filepath.Join(dir, "grass.png"), noise(256, 256, 1, color.NRGBA{60, 140, 40, 255}))
	writeImage(filepath.Join(dir, "terrain", "gravel.png"), noise(128, 128, 2, color.NRGBA{120, 110, 100, 255}))
	writeJPEG(filepath.Join(dir, "sand.jpg"), noise(64, 64, 3, color.NRGBA{200, 180, 130, 255}))

	// Alpha-carrying texture.
	writeImage(filepath.Join(dir, "moss.png"), noiseAlpha(64, 64, 4))

	// Non-power-of-two input for the --fit-pow2 path.
	writeImage(filepath.Join(dir, "odd.png"), noise(100, 60, 5, color.NRGBA{90, 90, 160, 255}))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 fixtures in %s\n", dir)
}

// noise fills an image with correlated noise around a base color, which
// gives the converter a non-degenerate covariance to decorrelate.
func noise(w, h int, seed int64, base color.NRGBA) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := rng.Intn(80) - 40
			img.SetNRGBA(x, y, color.NRGBA{
				R: clamp8(int(base.R) + n + rng.Intn(20)),
				G: clamp8(int(base.G) + n + rng.Intn(20)),
				B: clamp8(int(base.B) + n/2 + rng.Intn(20)),
				A: 255,
			})
		}
	}
	return img
}

func noiseAlpha(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: clamp8(40 + rng.Intn(60)),
				G: clamp8(100 + rng.Intn(80)),
				B: clamp8(30 + rng.Intn(40)),
				A: clamp8(128 + rng.Intn(128)),
			})
		}
	}
	return img
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 92}); err != nil {
		panic(err)
	}
}
