// Package shell implements the interactive REPL front door onto the
// orchestrator: load a pieces file once, then re-run solves against it
// with different board types, macro caps, and flags without paying the
// parse cost again. It is grounded on the teacher codebase's
// readline-driven shell — a prompt, a line-oriented command switch, and
// a graceful SIGINT exit — generalized from Scrabble's GCG/rack/play
// commands to this domain's load/solve/set/stats vocabulary.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/edgepuzzle/tessera/archive"
	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/cache"
	"github.com/edgepuzzle/tessera/canon"
	"github.com/edgepuzzle/tessera/orchestrator"
	"github.com/edgepuzzle/tessera/piecesfile"
	"github.com/edgepuzzle/tessera/rottable"
	"github.com/edgepuzzle/tessera/solve"
)

// quitAfterFirst wraps another sink and asks the search to stop the
// moment the first solution arrives, the shell's `-q` flag.
type quitAfterFirst struct {
	next solve.Sink
}

func (q *quitAfterFirst) Solution(b *board.Board, count int64) bool {
	q.next.Solution(b, count)
	return false
}

// Controller owns one interactive session: the readline instance, a
// cache of parsed pieces files, and the board/macro/flag settings the
// `set` command tunes between solves.
type Controller struct {
	l   *readline.Instance
	log zerolog.Logger

	pieces  *cache.Cache
	bag     []canon.Piece
	bagPath string

	width, height int
	border        board.BorderSet
	macroCeiling  int
	strategy      rottable.Strategy
	print         bool
	randomize     bool
	threaded      bool
}

// HistoryFile is where the shell persists command history across
// sessions, matching the teacher shell's /tmp convention.
const HistoryFile = "/tmp/tessera-shell-history.tmp"

// New builds a Controller with default settings (normal border, no
// macro cascade, automatic strategy, single-threaded, printing on).
func New(log zerolog.Logger) (*Controller, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mtessera>\033[0m ",
		HistoryFile:     HistoryFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}
	return &Controller{
		l:        l,
		log:      log,
		pieces:   cache.New(),
		border:   board.BorderNormal,
		strategy: rottable.StrategyAuto,
		print:    true,
	}, nil
}

// Loop reads and executes commands until EOF, Ctrl-D, or `exit`, then
// signals sig the way the CLI's top-level SIGINT handling expects.
func (c *Controller) Loop(sig chan os.Signal) {
	defer c.l.Close()
	for {
		line, err := c.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				return
			}
			continue
		}
		if err == io.EOF {
			sig <- syscall.SIGINT
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := c.execute(line); err != nil {
			if err == errExit {
				sig <- syscall.SIGINT
				return
			}
			c.showError(err)
		}
	}
}

// errExit is returned by the `exit`/`quit` command to unwind Loop
// without treating a clean exit as an error worth logging.
var errExit = fmt.Errorf("shell: exit requested")

func (c *Controller) showMessage(msg string) { fmt.Fprintln(c.l.Stdout(), msg) }
func (c *Controller) showError(err error)    { fmt.Fprintln(c.l.Stderr(), "error:", err) }

// execute tokenizes one line with shell-style quoting (so a pieces-file
// path containing spaces can be loaded) and dispatches on its first
// word.
func (c *Controller) execute(line string) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "exit", "quit":
		return errExit
	case "load":
		return c.cmdLoad(fields[1:])
	case "solve":
		return c.cmdSolve(fields[1:])
	case "set":
		return c.cmdSet(fields[1:])
	case "stats":
		return c.cmdStats()
	case "help":
		c.showMessage("commands: load <file> | solve <W> <H> [flags] | set u <K> | set bt <N> | stats | exit")
		return nil
	default:
		return fmt.Errorf("unknown command %q (try: help)", fields[0])
	}
}

// cmdLoad parses and caches a pieces file, replacing the active bag.
// Re-running `load` on the same path invalidates the cached parse first,
// in case the file changed on disk since the last load.
func (c *Controller) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <file>")
	}
	path := args[0]
	c.pieces.Invalidate(path)
	obj, err := c.pieces.Get(path, func() (interface{}, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return piecesfile.Parse(f)
	})
	if err != nil {
		return err
	}
	c.bag = obj.([]canon.Piece)
	c.bagPath = path
	c.log.Info().Str("path", path).Int("pieces", len(c.bag)).Msg("shell-loaded-pieces")
	c.showMessage(fmt.Sprintf("loaded %d pieces from %s", len(c.bag), path))
	return nil
}

// cmdSolve runs one orchestrator.Run against the active bag, printing
// results via an archive.Printer (printing is on for every session and
// no command turns it off), and reports the solution count and cascade
// levels reached.
func (c *Controller) cmdSolve(args []string) error {
	if c.bag == nil {
		return fmt.Errorf("no pieces loaded; run `load <file>` first")
	}
	w, h, flags, err := parseSolveArgs(args, c.width, c.height)
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("usage: solve <W> <H> [-pqrt]")
	}

	opts := orchestrator.Options{
		Width:        w,
		Height:       h,
		Border:       c.border,
		Strategy:     c.strategy,
		Threaded:     flags.threaded || c.threaded,
		Randomize:    flags.randomize || c.randomize,
		MacroCeiling: c.macroCeiling,
	}

	var fanout archive.Fanout
	if flags.print || c.print {
		fanout.Sinks = append(fanout.Sinks, archive.NewPrinter(c.l.Stdout()))
	}
	var sink solve.Sink = fanout
	if flags.quitOnFirst {
		sink = &quitAfterFirst{next: sink}
	}

	report, err := orchestrator.Run(context.Background(), c.bag, opts, sink)
	if err != nil {
		return err
	}
	c.width, c.height = w, h
	c.log.Info().Int64("solutions", report.SolutionCount).Int("w", w).Int("h", h).Msg("shell-solve-complete")
	c.showMessage(fmt.Sprintf("found %d solutions across %d cascade level(s)", report.SolutionCount, len(report.Levels)))
	return nil
}

// solveFlags are the per-invocation overrides solve's packed short
// flags apply on top of the controller's `set` defaults.
type solveFlags struct {
	print, quitOnFirst, randomize, threaded bool
}

// parseSolveArgs reads `solve <W> <H> [-pqrt]`, falling back to the
// controller's last-used width/height when W/H are omitted so `solve`
// alone re-runs the previous dimensions with new flags.
func parseSolveArgs(args []string, defaultW, defaultH int) (int, int, solveFlags, error) {
	var flags solveFlags
	var nums []int
	for _, a := range args {
		if strings.HasPrefix(a, "-") && len(a) > 1 {
			for _, ch := range a[1:] {
				switch ch {
				case 'p':
					flags.print = true
				case 'q':
					flags.quitOnFirst = true
				case 'r':
					flags.randomize = true
				case 't':
					flags.threaded = true
				default:
					return 0, 0, flags, fmt.Errorf("unknown flag -%c", ch)
				}
			}
			continue
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			return 0, 0, flags, fmt.Errorf("%q is not a board dimension or flag", a)
		}
		nums = append(nums, n)
	}
	w, h := defaultW, defaultH
	if len(nums) >= 2 {
		w, h = nums[0], nums[1]
	}
	return w, h, flags, nil
}

// cmdSet adjusts a persistent session setting: `set u <K>` caps the
// macro-tile cascade, `set bt <N>` selects a board type by numpad code.
func (c *Controller) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set u <K> | set bt <N>")
	}
	val, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%q is not an integer: %w", args[1], err)
	}
	switch args[0] {
	case "u":
		c.macroCeiling = val
	case "bt":
		bt, ok := board.BorderSetFromNumpad(val)
		if !ok {
			return fmt.Errorf("invalid board type %d", val)
		}
		c.border = bt
	default:
		return fmt.Errorf("unknown setting %q", args[0])
	}
	return nil
}

// cmdStats reports the controller's cached-object count and current
// session settings.
func (c *Controller) cmdStats() error {
	c.showMessage(fmt.Sprintf("cached objects: %d", c.pieces.Len()))
	c.showMessage(fmt.Sprintf("bag: %s (%d pieces)", c.bagPath, len(c.bag)))
	c.showMessage(fmt.Sprintf("macro ceiling: %d, strategy: %v, border: %v", c.macroCeiling, c.strategy, c.border))
	return nil
}

// Close releases the readline instance's resources.
func (c *Controller) Close() error { return c.l.Close() }
