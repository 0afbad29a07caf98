// Command tessera is the CLI front door: load a pieces file, solve one
// board, and either print and archive the solutions or drop into the
// interactive shell — the same role a shell-driven engine's own
// command-line front door plays, generalized from config-directory
// loading to this domain's pieces-file/board-type loading.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edgepuzzle/tessera/archive"
	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/config"
	"github.com/edgepuzzle/tessera/orchestrator"
	"github.com/edgepuzzle/tessera/piecesfile"
	"github.com/edgepuzzle/tessera/shell"
	"github.com/edgepuzzle/tessera/solve"
	"github.com/edgepuzzle/tessera/validate"
)

// GitVersion is set at build time via -ldflags, the teacher's own
// convention for stamping a release into an otherwise unversioned binary.
var GitVersion = "dev"

const usage = `tessera — edge-matching puzzle solver

usage:
  tessera WIDTH HEIGHT FILE [flags]
  tessera --pieces FILE -w WIDTH -h HEIGHT [flags]
  tessera --interactive
  tessera --validate
  tessera --help | --version

flags:
  -w, --width int         board width in base pieces
  -h, --height int        board height in base pieces
      --pieces string     path to the pieces file
      --bt int             board type, numpad-keyed (default: border on all four sides)
  -p, --print              print each solution (packed short flag -p)
  -q, --quit-on-first      stop after the first solution (packed short flag -q)
  -r, --randomize          randomize bucket iteration order (packed short flag -r)
  -t, --threaded            solve with a worker pool (packed short flag -t)
      --config string     YAML config file, merged under CLI flags
      --archive string    SQLite DSN for the solution archive
      --interactive        drop into the interactive shell
      --max-mem-mb int     override the detected memory ceiling, in megabytes
      --u int               largest macro-tile area the bridge builder may cascade to
      --validate            run the embedded self-test and exit
      --version             print the build version and exit
`

// exit codes, per the CLI's expanded contract: 0 success (including "no
// solutions" and validation success), 1 invalid arguments, 2 load
// failure, 3 over-capacity, 4 validation failure.
const (
	exitOK             = 0
	exitInvalidArgs    = 1
	exitLoadFailure    = 2
	exitOverCapacity   = 3
	exitValidationFail = 4
)

func main() {
	args := os.Args[1:]
	for _, a := range args {
		switch a {
		case "--help", "-help":
			fmt.Print(usage)
			os.Exit(exitOK)
		case "--version", "-version":
			fmt.Println(GitVersion)
			os.Exit(exitOK)
		}
	}

	logger := newLogger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sig
		logger.Info().Msg("got quit signal, cancelling in-flight work")
		cancel()
	}()

	os.Exit(run(ctx, args, logger))
}

func newLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	return zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func run(ctx context.Context, args []string, logger zerolog.Logger) int {
	for _, a := range args {
		if a == "--validate" {
			return runValidate(ctx, logger)
		}
	}
	for _, a := range args {
		if a == "--interactive" {
			return runInteractive(sigChanFor(ctx), logger)
		}
	}

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		fmt.Fprint(os.Stderr, usage)
		return exitInvalidArgs
	}
	return runOneShot(ctx, cfg, logger)
}

// sigChanFor returns a fresh one-slot signal channel for the interactive
// shell, which sends SIGINT into it when its loop ends; the channel also
// receives SIGINT once ctx is cancelled. Nothing else reads from it.
func sigChanFor(ctx context.Context) chan os.Signal {
	sig := make(chan os.Signal, 1)
	go func() {
		<-ctx.Done()
		sig <- syscall.SIGINT
	}()
	return sig
}

func runInteractive(sig chan os.Signal, logger zerolog.Logger) int {
	c, err := shell.New(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitInvalidArgs
	}
	defer c.Close()
	c.Loop(sig)
	return exitOK
}

func runValidate(ctx context.Context, logger zerolog.Logger) int {
	res, err := validate.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitValidationFail
	}
	fmt.Print(validate.Report(res))
	if !res.OK() {
		return exitValidationFail
	}
	return exitOK
}

func runOneShot(ctx context.Context, cfg *config.Settings, logger zerolog.Logger) int {
	f, err := os.Open(cfg.PiecesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: load:", err)
		return exitLoadFailure
	}
	pieces, err := piecesfile.Parse(f)
	f.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: load:", err)
		return exitLoadFailure
	}
	if err := piecesfile.Validate(pieces); err != nil {
		fmt.Fprintln(os.Stderr, "error: over-capacity:", err)
		return exitOverCapacity
	}
	logger.Info().Int("pieces", len(pieces)).Str("file", cfg.PiecesFile).Msg("loaded-pieces")

	var fanout archive.Fanout
	if cfg.Print {
		fanout.Sinks = append(fanout.Sinks, archive.NewPrinter(os.Stdout))
	}
	var ar *archive.Archive
	if cfg.ArchiveDSN != "" {
		ar, err = archive.Open(cfg.ArchiveDSN, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error: archive:", err)
			return exitLoadFailure
		}
		defer ar.Close()
		fanout.Sinks = append(fanout.Sinks, ar)
	}

	var sink solve.Sink = fanout
	if cfg.QuitOnFirst {
		sink = &quitAfterFirst{next: sink}
	}

	opts := orchestrator.Options{
		Width:        cfg.Width,
		Height:       cfg.Height,
		Border:       cfg.Border,
		Threaded:     cfg.Threaded,
		Randomize:    cfg.Randomize,
		MacroCeiling: cfg.MacroCeiling,
		MaxMemMB:     cfg.MaxMemMB,
	}

	start := time.Now()
	report, err := orchestrator.Run(ctx, pieces, opts, sink)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("solve-cancelled")
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: solve:", err)
		return exitOverCapacity
	}

	logger.Info().
		Int64("solutions", report.SolutionCount).
		Dur("elapsed", time.Since(start)).
		Int("levels", len(report.Levels)).
		Msg("solve-complete")
	fmt.Fprintf(os.Stderr, "found %d solutions\n", report.SolutionCount)
	return exitOK
}

// quitAfterFirst wraps another sink and asks the search to stop the
// moment the first solution arrives, the CLI's `-q` flag. It mirrors
// the shell package's own wrapper of the same name; each front door
// keeps its own copy rather than exporting one from solve, since the
// search engine itself has no opinion on why a caller wants to stop.
type quitAfterFirst struct {
	next solve.Sink
}

func (q *quitAfterFirst) Solution(b *board.Board, count int64) bool {
	q.next.Solution(b, count)
	return false
}
