// Package config merges command-line flags, an optional YAML config
// file, and environment variables into one immutable settings object,
// the way the teacher codebase's config package merges flags into a
// Config struct — except sourced from viper/pflag instead of
// namsral/flag, since that package never actually shipped in the
// teacher's own dependency list.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/edgepuzzle/tessera/board"
)

// Settings is the merged, read-only configuration the orchestrator and
// CLI layer consume. Zero values are never valid for Width/Height/
// PiecesFile; Load always either fills them from a source or returns an
// error.
type Settings struct {
	Width, Height int
	PiecesFile    string
	Border        board.BorderSet

	Print       bool
	QuitOnFirst bool
	Randomize   bool
	Threaded    bool

	ConfigPath   string
	ArchiveDSN   string
	Interactive  bool
	MaxMemMB     int
	MacroCeiling int
}

// shortFlags is every single-character boolean flag that --pqrt-style
// packed short options may bundle together.
var shortFlags = map[byte]string{
	'p': "print",
	'q': "quit-on-first",
	'r': "randomize",
	't': "threaded",
}

// expandPackedShortFlags rewrites a single argument like "-pqrt" into
// "-p -q -r -t" so pflag, which only understands one short flag per
// dash, can parse it. Any argument that isn't a bundle of recognized
// short-flag letters passes through unchanged.
func expandPackedShortFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) < 3 || a[0] != '-' || a[1] == '-' {
			out = append(out, a)
			continue
		}
		bundle := a[1:]
		allShort := true
		for i := 0; i < len(bundle); i++ {
			if _, ok := shortFlags[bundle[i]]; !ok {
				allShort = false
				break
			}
		}
		if !allShort {
			out = append(out, a)
			continue
		}
		for i := 0; i < len(bundle); i++ {
			out = append(out, "-"+string(bundle[i]))
		}
	}
	return out
}

// Load parses args (normally os.Args[1:]). Flags set on the command line
// win; for anything they leave unset, environment variables prefixed
// TESSERA_ come next, then the YAML config file named by --config, then
// the built-in defaults. Board width, height, and pieces file may also
// be given as the three positional arguments W H FILE, which override
// the corresponding flags.
func Load(args []string) (*Settings, error) {
	fs := pflag.NewFlagSet("tessera", pflag.ContinueOnError)

	fs.IntP("width", "w", 0, "board width in base pieces")
	fs.IntP("height", "h", 0, "board height in base pieces")
	fs.String("pieces", "", "path to the pieces file")
	fs.Int("bt", 0, "board type, numpad-keyed: 7/8/9 top, 4/5/6 left/middle/right, 1/2/3 bottom; 0 = border on all four sides")

	for letter, name := range shortFlags {
		fs.BoolP(name, string(letter), false, name+" (packed short flag -"+string(letter)+")")
	}

	fs.String("config", "", "YAML config file, merged under CLI flags")
	fs.String("archive", "", "SQLite DSN for the solution archive")
	fs.Bool("interactive", false, "drop into the interactive shell instead of a one-shot solve")
	fs.Int("max-mem-mb", 0, "override the detected memory ceiling, in megabytes")
	fs.Int("u", 0, "largest macro-tile area (in base pieces) the bridge builder may cascade to")

	if err := fs.Parse(expandPackedShortFlags(args)); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("tessera")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}
	configPath := v.GetString("config")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	border := board.BorderNormal
	if bt := v.GetInt("bt"); bt != 0 {
		var ok bool
		if border, ok = board.BorderSetFromNumpad(bt); !ok {
			return nil, fmt.Errorf("config: invalid board type %d", bt)
		}
	}

	s := &Settings{
		Width:        v.GetInt("width"),
		Height:       v.GetInt("height"),
		PiecesFile:   v.GetString("pieces"),
		Border:       border,
		Print:        v.GetBool("print"),
		QuitOnFirst:  v.GetBool("quit-on-first"),
		Randomize:    v.GetBool("randomize"),
		Threaded:     v.GetBool("threaded"),
		ConfigPath:   configPath,
		ArchiveDSN:   v.GetString("archive"),
		Interactive:  v.GetBool("interactive"),
		MaxMemMB:     v.GetInt("max-mem-mb"),
		MacroCeiling: v.GetInt("u"),
	}

	if pos := fs.Args(); len(pos) > 0 {
		if len(pos) != 3 {
			return nil, fmt.Errorf("config: want positional arguments W H FILE, got %d argument(s)", len(pos))
		}
		w, errW := strconv.Atoi(pos[0])
		h, errH := strconv.Atoi(pos[1])
		if errW != nil || errH != nil {
			return nil, fmt.Errorf("config: positional board size %q x %q is not numeric", pos[0], pos[1])
		}
		s.Width, s.Height, s.PiecesFile = w, h, pos[2]
	}

	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("config: width and height must both be positive (got %dx%d)", s.Width, s.Height)
	}
	if s.PiecesFile == "" {
		return nil, fmt.Errorf("config: --pieces is required")
	}
	return s, nil
}
