package shell

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"
	"go.uber.org/zap"

	"github.com/mish-shell/mish/core/parser"
)

// AllBuiltins holds a list of all registered shell builtins.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// dispatchBuiltin runs the stage as a builtin if its command name is one.
// The second return reports whether the stage was handled; unhandled stages
// fall through to the pipeline executor.
func (s *Shell) dispatchBuiltin(stage parser.Stage, depth int) (int, bool) {
	name := stage.Name()

	if n, ok := replayIndex(name); ok {
		return s.replay(n, depth), true
	}

	builtin, ok := AllBuiltins[name]
	if !ok {
		return 0, false
	}
	return builtin.Main(s, stage.Args), true
}

// replayIndex matches `!N` command names, returning the history index.
func replayIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "!") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// replay re-executes the history entry at index through the single-stage
// path, as if its line had been freshly typed. The replay itself is never
// recorded; depth caps nested replays so `!1` stored as entry 1 can't loop.
func (s *Shell) replay(index, depth int) int {
	if depth >= s.Config.ReplayDepth {
		s.report(ErrReplayDepth)
		return 1
	}

	line, err := s.History.Get(index)
	if err != nil {
		s.report(err)
		return 1
	}
	s.log.Debug("replaying history entry", zap.Int("index", index), zap.String("line", line))

	stage, err := parser.ParseStage(line)
	if err != nil {
		s.report(err)
		return 1
	}

	if status, handled := s.dispatchBuiltin(stage, depth+1); handled {
		return status
	}
	return s.exec.Run(parser.Pipeline{stage})
}

// Exit quits the interpreter with a farewell. Terminal: nothing dispatches
// after it.
func Exit(s *Shell, args []string) int {
	fmt.Fprintln(s.stdout, s.Config.Farewell)
	s.quit = true
	return 0
}

// Cd is the cd shell builtin. Failures leave the working directory unchanged
// and never terminate the interpreter.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		s.report(ErrMissingCdArgument)
		return 1
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			s.report(&DirectoryChangeError{Dir: args[1], Err: err})
			return 1
		}
	default:
		fmt.Fprintf(s.stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// History renders or clears the command history list.
func History(s *Shell, args []string) int {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: history [-c]")
		fmt.Fprintln(w, "Display or manipulate the history list.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return 1
		}
		return 0
	}

	if *clear {
		s.History.Clear()
		return 0
	}

	for _, entry := range s.History.List() {
		fmt.Fprintf(s.stdout, "[%d] %s\n", entry.Index, entry.Line)
	}
	return 0
}

// Help lists the registered builtins.
func Help(s *Shell, args []string) int {
	w := s.stdout
	fmt.Fprintln(w, "These shell commands are defined internally. Type `help' to see this list.")
	fmt.Fprintln(w, "Use !N to re-run entry N of the history list.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)

	var builtins []string
	for k := range AllBuiltins {
		builtins = append(builtins, k)
	}
	sort.Strings(builtins)

	fmt.Fprintln(w, strings.Join(builtins, "\n"))

	return 0
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
}
