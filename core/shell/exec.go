package shell

import (
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mish-shell/mish/core/parser"
)

// Executor turns parsed pipelines into OS processes. It owns the pipe file
// descriptors for the lifetime of one pipeline execution and never reads or
// writes through them itself.
type Executor struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	jobs   *jobTable
	log    *zap.Logger
	report func(error)
}

func newExecutor(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer, jobs *jobTable, log *zap.Logger, report func(error)) *Executor {
	return &Executor{
		fs:     fs,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		jobs:   jobs,
		log:    log,
		report: report,
	}
}

// Run executes a parsed pipeline and returns the exit status of its last
// stage. Failures cost one diagnostic line and a nonzero status, never the
// interpreter.
func (e *Executor) Run(pipeline parser.Pipeline) int {
	switch len(pipeline) {
	case 0:
		e.report(parser.ErrEmptyPipeline)
		return 1
	case 1:
		return e.runSingle(pipeline[0])
	default:
		return e.runPipeline(pipeline)
	}
}

// runSingle spawns one process with redirection applied. Foreground stages
// block until exit; background stages return immediately and are reaped by
// the job table.
func (e *Executor) runSingle(stage parser.Stage) int {
	path, err := exec.LookPath(stage.Name())
	if err != nil {
		e.report(&CommandNotFoundError{Name: stage.Name(), Err: err})
		return 127
	}

	cmd := exec.Command(path, stage.Args[1:]...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	if stage.Background {
		// A background stage must not compete with the prompt for input.
		cmd.Stdin = nil
	}

	var toClose listCloser
	if stage.InputFile != "" {
		f, err := e.fs.Open(stage.InputFile)
		if err != nil {
			e.report(&RedirectOpenError{Kind: parser.RedirectInput, Path: stage.InputFile, Err: err})
			return 1
		}
		cmd.Stdin = f
		toClose = append(toClose, f)
	}
	if stage.OutputFile != "" {
		f, err := e.fs.OpenFile(stage.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			toClose.Close()
			e.report(&RedirectOpenError{Kind: parser.RedirectOutput, Path: stage.OutputFile, Err: err})
			return 1
		}
		cmd.Stdout = f
		toClose = append(toClose, f)
	}

	if err := cmd.Start(); err != nil {
		toClose.Close()
		e.report(&SpawnError{Stage: stage.Name(), Err: err})
		return 1
	}
	e.log.Debug("stage started",
		zap.String("command", path),
		zap.Int("pid", cmd.Process.Pid),
		zap.Bool("background", stage.Background))

	if stage.Background {
		// The redirect handles move to the job table and are released once
		// the reaper observes the exit.
		e.jobs.add(cmd, stage.Name(), toClose)
		return 0
	}

	status := exitStatus(cmd.Wait())
	toClose.Close()
	e.log.Debug("stage exited", zap.String("command", path), zap.Int("status", status))
	return status
}

// runPipeline connects 2+ stages with anonymous pipes and waits for all of
// them. Per-stage redirection and background markers are ignored here:
// position in the pipe chain fully determines stage I/O, and a multi-stage
// pipeline always runs in the foreground.
func (e *Executor) runPipeline(pipeline parser.Pipeline) int {
	cmds := make([]*exec.Cmd, len(pipeline))
	for i, stage := range pipeline {
		cmd := exec.Command(stage.Name(), stage.Args[1:]...)
		cmd.Stderr = e.stderr
		cmds[i] = cmd
	}
	cmds[0].Stdin = e.stdin
	cmds[len(cmds)-1].Stdout = e.stdout

	// ends[i] holds the parent's copies of the pipe descriptors bound to
	// stage i. They are closed right after that stage spawns so EOF
	// propagates once the upstream writer exits.
	type pipeEnds struct {
		in, out *os.File
	}
	ends := make([]pipeEnds, len(cmds))
	closeEnds := func(pe pipeEnds) {
		if pe.in != nil {
			pe.in.Close()
		}
		if pe.out != nil {
			pe.out.Close()
		}
	}

	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			for _, pe := range ends {
				closeEnds(pe)
			}
			e.report(&SpawnError{Stage: pipeline[i].Name(), Err: err})
			return 1
		}
		cmds[i].Stdout = w
		ends[i].out = w
		cmds[i+1].Stdin = r
		ends[i+1].in = r
	}

	started := make([]bool, len(cmds))
	status := 0
	for i, cmd := range cmds {
		err := cmd.Start()
		// Release the parent's pipe copies whether or not the spawn
		// succeeded; a stuck descriptor would stall the rest of the chain.
		closeEnds(ends[i])
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				e.report(&CommandNotFoundError{Name: pipeline[i].Name(), Err: err})
				status = 127
			} else {
				e.report(&SpawnError{Stage: pipeline[i].Name(), Err: err})
				status = 1
			}
			continue
		}
		started[i] = true
		e.log.Debug("pipeline stage started",
			zap.String("command", pipeline[i].Name()),
			zap.Int("stage", i),
			zap.Int("pid", cmd.Process.Pid))
	}

	for i, cmd := range cmds {
		if !started[i] {
			continue
		}
		st := exitStatus(cmd.Wait())
		if i == len(cmds)-1 {
			status = st
		}
	}
	e.log.Debug("pipeline finished", zap.Int("stages", len(cmds)), zap.Int("status", status))
	return status
}

// exitStatus maps a Wait error to a shell exit status.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
