// Package shell implements the interpreter core: the interactive loop,
// builtin dispatch, and pipeline execution against real OS processes.
package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mish-shell/mish/core/config"
	"github.com/mish-shell/mish/core/history"
	"github.com/mish-shell/mish/core/parser"
)

// Options configures the I/O and environment of a Shell. Zero values fall
// back to the real process streams and filesystem.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// FS is used to open redirection targets and the config file.
	FS afero.Fs

	// Logger receives structured session events. Defaults to a no-op.
	Logger *zap.Logger

	// Terminal enables the colored prompt and diagnostics.
	Terminal bool
}

// Shell owns one interpreter session: its history, its background jobs, and
// the executor that turns parsed pipelines into processes.
type Shell struct {
	Config  *config.Configuration
	History *history.Store

	// Readline is created by Run; one-shot usage via Interpret never needs it.
	Readline *readline.Instance

	exec     *Executor
	jobs     *jobTable
	log      *zap.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	terminal bool
	errColor *color.Color

	// Set to true to quit the interpreter.
	quit bool
}

// New builds a Shell from the configuration. The readline instance is only
// set up when Run is called.
func New(cfg *config.Configuration, opts Options) *Shell {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	errColor := color.New(color.FgRed)
	if !opts.Terminal {
		errColor.DisableColor()
	}

	s := &Shell{
		Config:   cfg,
		History:  history.NewStore(cfg.HistorySize),
		log:      opts.Logger,
		stdin:    opts.Stdin,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		terminal: opts.Terminal,
		errColor: errColor,
		jobs:     newJobTable(opts.Logger),
	}
	s.exec = newExecutor(opts.FS, opts.Stdin, opts.Stdout, opts.Stderr, s.jobs, opts.Logger, s.report)
	return s
}

// Run drives the interactive prompt loop until exit or EOF.
func (s *Shell) Run() (int, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(s.stdin),
		Stdout: s.stdout,
		Stderr: s.stderr,
		FuncIsTerminal: func() bool {
			return s.terminal
		},
	}
	if err := cfg.Init(); err != nil {
		return 1, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return 1, err
	}
	s.Readline = rl
	defer rl.Close()

	for !s.quit {
		s.printJobNotices()
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return 0, nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears the line.
			continue

		case err != nil:
			s.log.Error("readline failed", zap.Error(err))
			continue

		case strings.TrimSpace(line) == "":
			continue

		default:
			s.Interpret(line)
		}
	}
	return 0, nil
}

// Interpret records and executes one raw input line, returning the status of
// its last stage. Blank lines are ignored and never recorded.
func (s *Shell) Interpret(line string) int {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0
	}

	s.History.Record(line)
	s.log.Debug("line accepted", zap.String("line", line))
	return s.eval(line, 0)
}

// Quit reports whether the exit builtin has been invoked.
func (s *Shell) Quit() bool {
	return s.quit
}

// eval parses a raw line and routes it to the builtin dispatcher or the
// pipeline executor. depth tracks nested `!N` replays.
func (s *Shell) eval(line string, depth int) int {
	pipeline, err := parser.Parse(line)
	if err != nil {
		s.report(err)
		return 1
	}

	// Builtins are only consulted for single-stage pipelines; inside a
	// pipeline their names refer to external programs.
	if len(pipeline) == 1 {
		if status, handled := s.dispatchBuiltin(pipeline[0], depth); handled {
			return status
		}
	}

	return s.exec.Run(pipeline)
}

// prompt renders the configured prompt, expanding `\w` to the working
// directory with the home directory abbreviated to `~`.
func (s *Shell) prompt() string {
	prompt := s.Config.Prompt
	if strings.Contains(prompt, `\w`) {
		if wd, err := os.Getwd(); err == nil {
			if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(wd, home) {
				wd = "~" + strings.TrimPrefix(wd, home)
			}
			prompt = strings.ReplaceAll(prompt, `\w`, wd)
		}
	}
	return prompt
}

// report writes the single-line diagnostic for an error. Errors never
// terminate the interpreter; the only intentional exit path is the exit
// builtin.
func (s *Shell) report(err error) {
	s.errColor.Fprintf(s.stderr, "mish: %v\n", err)
}

// printJobNotices drains finished background jobs and announces them, one
// line per job, before the next prompt.
func (s *Shell) printJobNotices() {
	for _, n := range s.jobs.drain() {
		fmt.Fprintf(s.stdout, "[%d] done %s (status %d)\n", n.ID, n.Name, n.Status)
	}
}
