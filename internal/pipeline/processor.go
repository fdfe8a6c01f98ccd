package pipeline

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/AnyUserName/stochtex-cli/internal/encoder"
	"github.com/AnyUserName/stochtex-cli/internal/hasher"
	"github.com/AnyUserName/stochtex-cli/internal/manifest"
	"github.com/AnyUserName/stochtex-cli/internal/texture"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of converting a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// processImage handles a single source: decode, convert, encode and write
// artifacts.
func processImage(src Source, cfg Config, registry *encoder.Registry) processResult {
	result := processResult{key: src.Key}

	f, err := os.Open(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("open %s: %w", src.RelPath, err)
		return result
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}

	tex := texture.FromImage(img)
	origW, origH := tex.Width, tex.Height

	resized := false
	if cfg.FitPow2 && texture.ValidateDims(tex.Width, tex.Height) != nil {
		pw, ph := floorPow2(tex.Width), floorPow2(tex.Height)
		tex = texture.FromImage(imaging.Resize(img, pw, ph, imaging.Lanczos))
		resized = true
	}

	var logf func(format string, args ...any)
	if cfg.Verbose {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "[stochtex] "+src.Key+": "+format+"\n", args...)
		}
	}

	res, err := Convert(tex, Options{
		LUTWidth:              cfg.Profile.LUTWidth,
		LUTHeight:             cfg.Profile.LUTHeight,
		Decorrelate:           cfg.Profile.Decorrelate,
		CompressionCorrection: cfg.Profile.CompressionCorrection,
		Workers:               cfg.Workers,
		Logf:                  logf,
	})
	if err != nil {
		result.err = fmt.Errorf("convert %s: %w", src.RelPath, err)
		return result
	}

	gaussEnc, err := registry.ForGaussian(cfg.Profile.Format)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	lutEnc, err := registry.ForLUT()
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}

	// Ensure output subdirectory exists.
	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755)
	}

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:    origW,
			Height:   origH,
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: tex.HasAlpha(),
			Resized:  resized,
		},
		Colorspace: res.Basis,
		LUT: manifest.LUTInfo{
			Width:  res.Chain.Width,
			Height: res.Chain.Height,
			Mips:   len(res.Chain.Slices),
			StdDev: res.Chain.StdDev,
		},
	}

	// Gaussian image: lossy previews go through 8-bit, lossless through
	// 16-bit so quantile precision survives storage.
	var gaussImg image.Image
	if gaussEnc.Format() == "jpeg" {
		gaussImg = res.Gaussian.ToNRGBA()
	} else {
		gaussImg = res.Gaussian.ToNRGBA64()
	}
	art, err := writeArtifact(cfg.OutputDir, src.Key, "gaussian", 0,
		gaussEnc, gaussImg, cfg.Profile.Quality)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	result.asset.Artifacts = append(result.asset.Artifacts, art)

	// LUT slices, one per mip, always lossless 16-bit.
	for m, slice := range res.Chain.Slices {
		tile := texture.New(res.Chain.Width, res.Chain.Height)
		copy(tile.Pix, slice)
		art, err := writeArtifact(cfg.OutputDir, src.Key, "lut", m,
			lutEnc, tile.ToNRGBA64(), 0)
		if err != nil {
			result.err = fmt.Errorf("%s: %w", src.RelPath, err)
			return result
		}
		result.asset.Artifacts = append(result.asset.Artifacts, art)
	}

	return result
}

// writeArtifact encodes one artifact, names it by content hash and writes
// it under outDir: <key>.<kind><mip>.<hash>.<ext>.
func writeArtifact(outDir, key, kind string, mip int, enc encoder.Encoder, img image.Image, quality int) (manifest.Artifact, error) {
	data, err := enc.Encode(img, quality)
	if err != nil {
		return manifest.Artifact{}, fmt.Errorf("encode %s as %s: %w", kind, enc.Format(), err)
	}

	contentHash := hasher.ContentHash(data, 16)

	suffix := kind
	if kind == "lut" {
		suffix = fmt.Sprintf("%s%d", kind, mip)
	}
	fileName := fmt.Sprintf("%s.%s.%s.%s",
		filepath.Base(key), suffix, contentHash[:8], enc.Extension())
	keyDir := filepath.Dir(key)
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

	outPath := filepath.Join(outDir, relPath)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return manifest.Artifact{}, fmt.Errorf("write %s: %w", relPath, err)
	}

	b := img.Bounds()
	return manifest.Artifact{
		Kind:   kind,
		Mip:    mip,
		Format: enc.Format(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Size:   int64(len(data)),
		Hash:   contentHash,
		Path:   relPath,
	}, nil
}

// floorPow2 returns the largest power of two not exceeding v (minimum 1).
func floorPow2(v int) int {
	p := 1
	for p<<1 <= v {
		p <<= 1
	}
	return p
}
