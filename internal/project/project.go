// Package project implements a batch driver: translating a whole source
// tree is embarrassingly parallel, since each module's translation shares
// nothing but the library search path. It discovers a tree of pre-parsed,
// JSON-serialized Python ASTs (a real parser is a separate concern this
// repository doesn't implement), translates each with a bounded worker
// pool, and writes one .js file per module plus a combined PYJS_DEPS
// manifest for a downstream bundler to consume.
//
// Grounded on esbuild's internal/bundler concurrent-build pattern (a fixed
// worker count draining a work queue, each worker storing its result at
// the unit's index in a pre-sized slice) and on sammcj-ingest/filesystem's doublestar-based
// directory walk for source discovery.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/andreyvit/pyjstranslate/internal/logger"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// DefaultPattern matches every serialized AST module in a source tree.
const DefaultPattern = "**/*.json"

// Unit is one discovered translation unit: its module name (derived from
// the path relative to root, dots for path separators, per the Python
// package-path convention) and the source file it was read from.
type Unit struct {
	ModuleName string
	SourcePath string
}

// Result is what one Unit's translation produced.
type Result struct {
	Unit     Unit
	Output   string
	Warnings []logger.Msg
	Err      error
}

// Discover walks root for AST files matching pattern (DefaultPattern if
// empty) and derives each one's module name from its path.
func Discover(root, pattern string) ([]Unit, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("project: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	units := make([]Unit, len(matches))
	for i, m := range matches {
		units[i] = Unit{
			ModuleName: moduleNameFromPath(m),
			SourcePath: filepath.Join(root, m),
		}
	}
	return units, nil
}

func moduleNameFromPath(relPath string) string {
	trimmed := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	parts := strings.Split(filepath.ToSlash(trimmed), "/")
	return strings.Join(parts, ".")
}

// Compile translates every unit concurrently through a pool of workers
// workers wide (at least 1), writing each module's JS output under outDir
// as "<moduleName>.js" and returning every result in discovery order. Per
// module failures do not stop the batch; the caller inspects Result.Err
// per unit and the aggregated *multierror.Error this returns for a
// summary. Soft warnings across the whole batch are folded into
// the same aggregate so a single `-v` run reports every one of them.
func Compile(ctx context.Context, units []Unit, opts options.Options, outDir string, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
	}

	results := make([]Result, len(units))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = compileOne(units[i], opts, outDir)
			}
		}()
	}

	for i := range units {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	var errs *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", r.Unit.ModuleName, r.Err))
		}
		for _, w := range r.Warnings {
			errs = multierror.Append(errs, w)
		}
	}
	return results, errs.ErrorOrNil()
}

func compileOne(unit Unit, opts options.Options, outDir string) Result {
	data, err := os.ReadFile(unit.SourcePath)
	if err != nil {
		return Result{Unit: unit, Err: fmt.Errorf("read %s: %w", unit.SourcePath, err)}
	}
	mod, err := pyast.UnmarshalModule(data)
	if err != nil {
		return Result{Unit: unit, Err: err}
	}

	out, warnings, err := translator.TranslateModule(unit.ModuleName, mod, opts)
	if err != nil {
		return Result{Unit: unit, Warnings: warnings, Err: err}
	}

	if outDir != "" {
		outPath := filepath.Join(outDir, unit.ModuleName+".js")
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return Result{Unit: unit, Warnings: warnings, Err: fmt.Errorf("write %s: %w", outPath, err)}
		}
	}
	return Result{Unit: unit, Output: out, Warnings: warnings}
}

// WriteManifest merges every result's PYJS_DEPS closure into one combined
// manifest file at manifestPath, one module per line followed by its
// dependencies, for a downstream bundler to compute a load order from.
func WriteManifest(results []Result, manifestPath string) error {
	var b strings.Builder
	names := make([]string, 0, len(results))
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		names = append(names, r.Unit.ModuleName)
		byName[r.Unit.ModuleName] = r
	}
	sort.Strings(names)
	for _, name := range names {
		deps := extractDeps(byName[name].Output)
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(deps, ", "))
	}
	return os.WriteFile(manifestPath, []byte(b.String()), 0o644)
}

// extractDeps pulls the dependency list back out of a module's own
// "// PYJS_DEPS: [...]" trailer (translator.Context.DepsTrailer's format)
// rather than recomputing it, so the manifest always matches what was
// actually emitted.
func extractDeps(js string) []string {
	const marker = "// PYJS_DEPS: ["
	idx := strings.LastIndex(js, marker)
	if idx < 0 {
		return nil
	}
	rest := js[idx+len(marker):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return nil
	}
	inner := rest[:end]
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	var deps []string
	for _, part := range strings.Split(inner, ",") {
		deps = append(deps, strings.Trim(strings.TrimSpace(part), "'"))
	}
	return deps
}
