// Command pyjstranslate is a thin driver over internal/translator and
// internal/project: resolve flags to an options.Options preset, read one
// file or walk a directory, and write the translated JS.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/andreyvit/pyjstranslate/internal/emitter"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/project"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

var (
	flagDebug   bool
	flagSpeed   bool
	flagStrict  bool
	flagOut     string
	flagVerbose bool
	flagWorkers int
)

func main() {
	root := &cobra.Command{
		Use:   "pyjstranslate <input.json | dir>",
		Short: "Translate a pre-parsed Python AST into JavaScript",
		Long: "pyjstranslate reads one JSON-serialized Python AST module (or, given\n" +
			"a directory, every module under it) and writes the equivalent\n" +
			"pyjslib-calling JavaScript.",
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	root.Flags().BoolVar(&flagDebug, "debug", false, "use the Debug compile preset")
	root.Flags().BoolVarP(&flagSpeed, "speed", "O", false, "use the Speed compile preset")
	root.Flags().BoolVar(&flagStrict, "strict", false, "use the Strict compile preset")
	root.Flags().StringVar(&flagOut, "out", "", "output file (single input) or directory (batch input)")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose operational logging")
	root.Flags().IntVar(&flagWorkers, "workers", 4, "worker pool size for directory input")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isTerminal(os.Stderr), TimeFormat: time.Kitchen}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

func resolveOptions() (options.Options, error) {
	switch {
	case flagDebug && (flagSpeed || flagStrict), flagSpeed && flagStrict:
		return options.Options{}, fmt.Errorf("--debug, --speed and --strict are mutually exclusive")
	case flagDebug:
		return options.Debug(), nil
	case flagSpeed:
		return options.Speed(), nil
	case flagStrict:
		return options.Strict(), nil
	default:
		return options.Default(), nil
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := newLogger()
	opts, err := resolveOptions()
	if err != nil {
		return err
	}

	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return runBatch(cmd.Context(), log, input, opts)
	}
	return runSingle(log, input, opts)
}

func runSingle(log zerolog.Logger, path string, opts options.Options) error {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	mod, err := pyast.UnmarshalModule(data)
	if err != nil {
		return err
	}

	out, warnings, err := translator.TranslateModule(mod.Name, mod, opts)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warn().Msg(w.Error())
	}

	if flagOut == "" {
		fmt.Print(out)
	} else if err := os.WriteFile(flagOut, []byte(out), 0o644); err != nil {
		return err
	}
	log.Debug().Str("module", mod.Name).Dur("elapsed", time.Since(start)).Msg("translated")
	return nil
}

func runBatch(ctx context.Context, log zerolog.Logger, dir string, opts options.Options) error {
	start := time.Now()
	units, err := project.Discover(dir, "")
	if err != nil {
		return err
	}
	log.Info().Int("modules", len(units)).Str("dir", dir).Msg("discovered")

	outDir := flagOut
	if outDir == "" {
		outDir = dir
	}
	results, err := project.Compile(ctx, units, opts, outDir, flagWorkers)
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			log.Error().Msg(e.Error())
		}
	}

	if e := project.WriteManifest(results, outDir+"/PYJS_DEPS.manifest"); e != nil {
		log.Error().Msg(e.Error())
	}

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	log.Info().Int("ok", len(results)-failures).Int("failed", failures).Dur("elapsed", time.Since(start)).Msg("batch done")
	if failures > 0 {
		return fmt.Errorf("%d of %d modules failed to translate", failures, len(results))
	}
	return nil
}
