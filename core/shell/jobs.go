package shell

import (
	"io"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// jobNotice describes a background job whose exit has been observed but not
// yet announced at the prompt.
type jobNotice struct {
	ID     int
	PID    int
	Name   string
	Status int
}

// jobTable tracks background jobs. Each job is reaped by its own goroutine
// the moment it exits; the completion notice is queued until the shell
// drains it before the next prompt.
type jobTable struct {
	mu       sync.Mutex
	nextID   int
	active   int
	finished []jobNotice
	log      *zap.Logger
}

func newJobTable(log *zap.Logger) *jobTable {
	return &jobTable{log: log}
}

// add registers a started command as a background job. toClose holds the
// job's redirect handles and is released once the exit is observed.
func (t *jobTable) add(cmd *exec.Cmd, name string, toClose io.Closer) int {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.active++
	t.mu.Unlock()

	pid := cmd.Process.Pid
	go func() {
		status := exitStatus(cmd.Wait())
		if toClose != nil {
			toClose.Close()
		}
		t.log.Debug("background job finished",
			zap.Int("job", id),
			zap.Int("pid", pid),
			zap.Int("status", status))

		t.mu.Lock()
		t.active--
		t.finished = append(t.finished, jobNotice{ID: id, PID: pid, Name: name, Status: status})
		t.mu.Unlock()
	}()
	return id
}

// drain returns the queued completion notices and clears the queue.
func (t *jobTable) drain() []jobNotice {
	t.mu.Lock()
	defer t.mu.Unlock()

	notices := t.finished
	t.finished = nil
	return notices
}

// running reports the number of jobs that have not exited yet.
func (t *jobTable) running() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
