package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/kbukum/offlinestt/errors"
)

// stderrTailLines bounds the stderr excerpt attached to tool failures.
const stderrTailLines = 20

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, StopSignal is sent to the process group first,
// then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	var stdout bytes.Buffer
	h, err := start(ctx, cmd, &stdout)
	if err != nil {
		return nil, err
	}
	return h.Wait()
}

// Start launches a subprocess whose standard output is streamed through
// Handle.Stdout. The caller must drain Stdout before calling Wait.
func Start(ctx context.Context, cmd Command) (*Handle, error) {
	return start(ctx, cmd, nil)
}

// LookPath resolves binary on PATH, reporting a TOOL_NOT_FOUND error when absent.
func LookPath(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", errors.ToolNotFound(binary, err)
	}
	return path, nil
}

// Handle is a running subprocess.
type Handle struct {
	cmd     *exec.Cmd
	ctx     context.Context
	binary  string
	signal  syscall.Signal
	grace   time.Duration
	started time.Time

	stdout    io.ReadCloser
	stdoutBuf *bytes.Buffer
	stderr    bytes.Buffer

	stopped  atomic.Bool
	mu       sync.Mutex
	killTime *time.Timer
}

func start(ctx context.Context, cmd Command, stdoutBuf *bytes.Buffer) (*Handle, error) {
	if cmd.Binary == "" {
		return nil, errors.Internal(fmt.Errorf("process: binary is required"))
	}

	h := &Handle{
		ctx:       ctx,
		binary:    cmd.Binary,
		signal:    cmd.stopSignal(),
		grace:     cmd.gracePeriod(),
		stdoutBuf: stdoutBuf,
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	c.Stderr = &h.stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}
	if stdoutBuf != nil {
		c.Stdout = stdoutBuf
	} else {
		pipe, err := c.StdoutPipe()
		if err != nil {
			return nil, errors.Internal(err)
		}
		h.stdout = pipe
	}

	// Own process group: terminal interrupts reach only this process, which
	// forwards them deliberately.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return signalGroup(c.Process.Pid, h.signal)
	}
	c.WaitDelay = h.grace
	h.cmd = c

	h.started = time.Now()
	if err := c.Start(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ToolNotFound(cmd.Binary, err)
		}
		return nil, errors.ToolFailed(cmd.Binary, -1, err)
	}
	return h, nil
}

// Stdout returns the streaming standard output, nil for Run.
func (h *Handle) Stdout() io.Reader {
	return h.stdout
}

// Pid returns the process id.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Stop asks the process group to exit with StopSignal and escalates to
// SIGKILL after the grace period. An exit caused by Stop is not an error.
func (h *Handle) Stop() error {
	if !h.stopped.CompareAndSwap(false, true) {
		return nil
	}
	pid := h.cmd.Process.Pid
	h.mu.Lock()
	h.killTime = time.AfterFunc(h.grace, func() {
		_ = signalGroup(pid, syscall.SIGKILL)
	})
	h.mu.Unlock()
	return signalGroup(pid, h.signal)
}

// Wait waits for the process to exit and classifies the outcome.
func (h *Handle) Wait() (*Result, error) {
	err := h.cmd.Wait()

	h.mu.Lock()
	if h.killTime != nil {
		h.killTime.Stop()
	}
	h.mu.Unlock()

	result := &Result{
		Stderr:   h.stderr.Bytes(),
		ExitCode: h.cmd.ProcessState.ExitCode(),
		Duration: time.Since(h.started),
	}
	if h.stdoutBuf != nil {
		result.Stdout = h.stdoutBuf.Bytes()
	}
	return result, h.classify(err, result)
}

func (h *Handle) classify(err error, result *Result) error {
	if err == nil || h.stopped.Load() {
		return nil
	}
	switch ctxErr := h.ctx.Err(); {
	case stderrors.Is(ctxErr, context.DeadlineExceeded):
		return errors.ToolFailed(h.binary, result.ExitCode, ctxErr).
			WithDetail("timeout", true).
			WithDetail("stderr", result.StderrTail(stderrTailLines))
	case ctxErr != nil:
		return errors.Canceled(h.binary, ctxErr)
	}
	return errors.ToolFailed(h.binary, result.ExitCode, err).
		WithDetail("stderr", result.StderrTail(stderrTailLines))
}

func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if stderrors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
