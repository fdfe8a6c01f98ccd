package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/stochtex-cli/internal/profile"
)

func writePNGFixture(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*37 + y*11) % 256),
				G: uint8((x*13 + y*53) % 256),
				B: uint8((x + y*29) % 256),
				A: 255,
			})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writePNGFixture(t, filepath.Join(in, "grass.png"), 16, 16)
	writePNGFixture(t, filepath.Join(in, "rocks", "stone.png"), 8, 8)

	p := New(Config{
		Input:     in,
		OutputDir: out,
		Profile:   profile.Get("albedo"),
		Workers:   2,
	})
	m, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if m.Stats.TotalAssets != 2 {
		t.Fatalf("assets: got %d, want 2", m.Stats.TotalAssets)
	}

	// 16×16 has 5 mips, 8×8 has 4; each asset adds one gaussian artifact.
	wantArtifacts := map[string]int{
		"grass":       6,
		"rocks/stone": 5,
	}
	for key, want := range wantArtifacts {
		a, ok := m.Assets[key]
		if !ok {
			t.Fatalf("asset %q missing from manifest", key)
		}
		if len(a.Artifacts) != want {
			t.Errorf("asset %q: %d artifacts, want %d", key, len(a.Artifacts), want)
		}
		if a.LUT.Width != 32 || a.LUT.Height != 32 {
			t.Errorf("asset %q: lut %dx%d, want 32x32", key, a.LUT.Width, a.LUT.Height)
		}
		if a.Artifacts[0].Kind != "gaussian" {
			t.Errorf("asset %q: first artifact kind %q", key, a.Artifacts[0].Kind)
		}
		for _, art := range a.Artifacts {
			full := filepath.Join(out, filepath.FromSlash(art.Path))
			info, err := os.Stat(full)
			if err != nil {
				t.Errorf("artifact file missing: %s", art.Path)
				continue
			}
			if info.Size() != art.Size {
				t.Errorf("artifact %s: size %d on disk, %d in manifest",
					art.Path, info.Size(), art.Size)
			}
		}
	}
}

func TestPipelineRun_RejectsNonPowerOfTwo(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writePNGFixture(t, filepath.Join(in, "odd.png"), 10, 12)

	p := New(Config{
		Input:     in,
		OutputDir: out,
		Profile:   profile.Get("albedo"),
		Workers:   1,
	})
	if _, err := p.Run(); err == nil {
		t.Fatal("run succeeded on a non-power-of-two input")
	}

	// No partial artifacts.
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("output dir not empty after failed run: %v", entries)
	}
}

func TestPipelineRun_FitPow2(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writePNGFixture(t, filepath.Join(in, "odd.png"), 10, 12)

	p := New(Config{
		Input:     in,
		OutputDir: out,
		Profile:   profile.Get("fast"),
		Workers:   1,
		FitPow2:   true,
	})
	m, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	a, ok := m.Assets["odd"]
	if !ok {
		t.Fatal("asset odd missing")
	}
	if !a.Original.Resized {
		t.Error("asset not marked as resized")
	}
	if a.Original.Width != 10 || a.Original.Height != 12 {
		t.Errorf("original dims %dx%d, want 10x12", a.Original.Width, a.Original.Height)
	}
	// Fitted down to 8×8: 4 mips + gaussian.
	if len(a.Artifacts) != 5 {
		t.Errorf("artifacts: got %d, want 5", len(a.Artifacts))
	}
	if a.Artifacts[0].Width != 8 || a.Artifacts[0].Height != 8 {
		t.Errorf("gaussian dims %dx%d, want 8x8", a.Artifacts[0].Width, a.Artifacts[0].Height)
	}
}

func TestScanImages_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	writePNGFixture(t, path, 8, 8)

	sources, err := ScanImages(path)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("sources: got %d, want 1", len(sources))
	}
	if sources[0].Key != "tex" || sources[0].Format != "png" {
		t.Errorf("source: %+v", sources[0])
	}
}

func TestScanImages_SkipsHiddenDirsAndUnknownFiles(t *testing.T) {
	dir := t.TempDir()
	writePNGFixture(t, filepath.Join(dir, "a.png"), 8, 8)
	writePNGFixture(t, filepath.Join(dir, ".cache", "b.png"), 8, 8)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := ScanImages(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sources) != 1 || sources[0].Key != "a" {
		t.Fatalf("sources: %+v", sources)
	}
}
