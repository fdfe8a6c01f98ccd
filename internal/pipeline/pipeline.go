// Package pipeline sequences the conversion stages over a set of input
// textures and assembles the output artifacts plus manifest.
//
// Performance design:
//   - images are processed concurrently, bounded by a worker semaphore;
//     each conversion run owns its buffers, so runs share no mutable state
//   - within one run, every numeric stage fans out over the same worker
//     budget through internal/parallel
//   - per-file failures are reported and skipped; a run fails as a whole
//     only when every input failed
package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/stochtex-cli/internal/encoder"
	"github.com/AnyUserName/stochtex-cli/internal/manifest"
	"github.com/AnyUserName/stochtex-cli/internal/profile"
)

// Config holds all parameters for a convert run.
type Config struct {
	Input     string
	OutputDir string
	Profile   profile.Profile
	Workers   int
	Verbose   bool
	FitPow2   bool // resize non-power-of-two inputs down instead of rejecting
}

// Pipeline orchestrates texture conversion.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

// Run executes the full conversion over all inputs and returns the
// manifest.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[stochtex] %s\n", p.registry.String())
	}

	// Step 1: scan for inputs.
	sources, err := ScanImages(p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.Input)
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[stochtex] found %d images\n", len(sources))
	}

	// Step 2: convert images in parallel.
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[stochtex] converting: %s\n", s.Key)
			}

			results[idx] = processImage(s, p.cfg, p.registry)

			if p.cfg.Verbose && results[idx].err == nil {
				fmt.Fprintf(os.Stderr, "[stochtex] done: %s (%d artifacts)\n",
					s.Key, len(results[idx].asset.Artifacts))
			}
		}(i, src)
	}
	wg.Wait()

	// Step 3: collect results into the manifest.
	m := manifest.New(p.cfg.Profile.Name)

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
	}

	// Report errors but don't fail the entire run for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[stochtex] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to convert", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[stochtex] warning: %d of %d images had errors\n",
			len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
	}
	m.ComputeStats()
	return m, nil
}
