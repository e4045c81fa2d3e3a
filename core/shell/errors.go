package shell

import (
	"errors"
	"fmt"

	"github.com/mish-shell/mish/core/parser"
)

var (
	// ErrMissingCdArgument is reported when cd is invoked with no directory.
	ErrMissingCdArgument = errors.New("cd: missing argument")

	// ErrReplayDepth is reported when nested `!N` replays exceed the
	// configured depth, e.g. a history entry that replays itself.
	ErrReplayDepth = errors.New("history replay: recursion limit reached")
)

// DirectoryChangeError wraps an OS error from a failed cd.
type DirectoryChangeError struct {
	Dir string
	Err error
}

func (e *DirectoryChangeError) Error() string {
	return fmt.Sprintf("cd: %v", e.Err)
}

func (e *DirectoryChangeError) Unwrap() error {
	return e.Err
}

// CommandNotFoundError is reported when a stage's command can't be located
// or isn't executable.
type CommandNotFoundError struct {
	Name string
	Err  error
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("%s: command not found", e.Name)
}

func (e *CommandNotFoundError) Unwrap() error {
	return e.Err
}

// RedirectOpenError wraps a failure to open a redirection target.
type RedirectOpenError struct {
	Kind parser.RedirectKind
	Path string
	Err  error
}

func (e *RedirectOpenError) Error() string {
	return fmt.Sprintf("cannot open %s for %s: %v", e.Path, e.Kind, e.Err)
}

func (e *RedirectOpenError) Unwrap() error {
	return e.Err
}

// SpawnError wraps a parent-side process or pipe creation failure. It aborts
// the current line only, never the interpreter.
type SpawnError struct {
	Stage string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Stage, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
