package shell

import (
	"os/exec"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireCommands skips the test when the host lacks the external commands
// it spawns.
func requireCommands(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("command %q not available", name)
		}
	}
}

func TestRedirectRoundTrip(t *testing.T) {
	requireCommands(t, "echo", "cat")
	s, out, errOut := newTestShell(t)

	require.Zero(t, s.Interpret("echo Hello > out.txt"))
	require.Empty(t, errOut.String())

	contents, err := afero.ReadFile(s.exec.fs, "out.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", string(contents))

	require.Zero(t, s.Interpret("cat < out.txt"))
	assert.Equal(t, "Hello\n", out.String())
}

func TestOutputRedirectTruncates(t *testing.T) {
	requireCommands(t, "echo")
	s, _, _ := newTestShell(t)

	require.NoError(t, afero.WriteFile(s.exec.fs, "out.txt", []byte("previous contents, much longer"), 0644))
	require.Zero(t, s.Interpret("echo short > out.txt"))

	contents, err := afero.ReadFile(s.exec.fs, "out.txt")
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(contents))
}

func TestRedirectInputMissing(t *testing.T) {
	requireCommands(t, "cat")
	s, out, errOut := newTestShell(t)

	status := s.Interpret("cat < nope.txt")

	assert.Equal(t, 1, status)
	assert.Contains(t, errOut.String(), "cannot open nope.txt for input")
	assert.Empty(t, out.String(), "no process runs when the redirect open fails")
}

func TestPipelineTwoStages(t *testing.T) {
	requireCommands(t, "printf", "grep")
	s, out, errOut := newTestShell(t)

	status := s.Interpret(`printf a\nb\nc\n | grep b`)

	assert.Zero(t, status)
	assert.Empty(t, errOut.String())
	assert.Equal(t, "b\n", out.String())
}

func TestPipelineThreeStages(t *testing.T) {
	requireCommands(t, "printf", "grep", "wc")
	s, out, _ := newTestShell(t)

	status := s.Interpret(`printf a\nb\nc\n | grep b | wc -c`)

	assert.Zero(t, status)
	assert.Equal(t, "2\n", out.String())
}

func TestCommandNotFoundSingle(t *testing.T) {
	s, _, errOut := newTestShell(t)

	status := s.Interpret("no-such-command-mish-test")

	assert.Equal(t, 127, status)
	assert.Equal(t, "mish: no-such-command-mish-test: command not found\n", errOut.String())
}

func TestCommandNotFoundInPipeline(t *testing.T) {
	requireCommands(t, "echo")
	s, _, errOut := newTestShell(t)

	status := s.Interpret("echo hi | no-such-command-mish-test")

	assert.Equal(t, 127, status)
	assert.Contains(t, errOut.String(), "no-such-command-mish-test: command not found")
}

func TestPipelineStatusIsLastStage(t *testing.T) {
	requireCommands(t, "printf", "grep")
	s, out, _ := newTestShell(t)

	// grep exits 1 when nothing matches.
	status := s.Interpret(`printf a\n | grep zzz`)

	assert.Equal(t, 1, status)
	assert.Empty(t, out.String())
}

func TestForegroundBlocks(t *testing.T) {
	requireCommands(t, "sleep")
	s, _, _ := newTestShell(t)

	start := time.Now()
	status := s.Interpret("sleep 0.3")

	assert.Zero(t, status)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestBackgroundReturnsImmediately(t *testing.T) {
	requireCommands(t, "sleep")
	s, _, errOut := newTestShell(t)

	start := time.Now()
	status := s.Interpret("sleep 0.5 &")

	assert.Zero(t, status)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Empty(t, errOut.String())

	// The job is reaped asynchronously and announced exactly once.
	var notices []jobNotice
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		notices = append(notices, s.jobs.drain()...)
		if len(notices) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Len(t, notices, 1)
	assert.Equal(t, "sleep", notices[0].Name)
	assert.Zero(t, notices[0].Status)
	assert.Zero(t, s.jobs.running())
}

func TestPipelineIgnoresBackgroundMarker(t *testing.T) {
	requireCommands(t, "sleep", "cat")
	s, _, _ := newTestShell(t)

	start := time.Now()
	status := s.Interpret("sleep 0.3 & | cat")

	assert.Zero(t, status)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond,
		"a multi-stage pipeline always runs in the foreground")
}

func TestExecutorEmptyPipeline(t *testing.T) {
	s, _, errOut := newTestShell(t)

	status := s.exec.Run(nil)

	assert.Equal(t, 1, status)
	assert.Contains(t, errOut.String(), "empty pipeline")
}

func TestExitStatus(t *testing.T) {
	requireCommands(t, "true", "false")
	s, _, _ := newTestShell(t)

	assert.Equal(t, 1, s.Interpret("false"))
	assert.Zero(t, s.Interpret("true"))
}
