package recorder

import (
	"context"
	stderrors "errors"
	"io"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/process"
)

// Capture is a running capture tool producing raw PCM.
type Capture interface {
	Stdout() io.Reader
	Stop() error
	Wait() (*process.Result, error)
}

// Starter launches the capture tool. process.Start in production.
type Starter func(ctx context.Context, cmd process.Command) (Capture, error)

func startProcess(ctx context.Context, cmd process.Command) (Capture, error) {
	h, err := process.Start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// StreamRecorder runs the capture tool with raw s16le output on stdout and
// evaluates the stop policy itself.
type StreamRecorder struct {
	binary string
	start  Starter
	log    *logger.Logger
}

// NewStreamRecorder returns a StreamRecorder driving the rec binary.
func NewStreamRecorder(binary string, log *logger.Logger) *StreamRecorder {
	if log == nil {
		log = logger.Nop()
	}
	return &StreamRecorder{binary: binary, start: startProcess, log: log}
}

// Args returns the capture tool arguments for raw PCM on stdout.
func (r *StreamRecorder) Args(f audio.Format) []string {
	return []string{
		"-q",
		"-t", "raw",
		"-r", strconv.Itoa(f.SampleRate),
		"-c", strconv.Itoa(f.Channels),
		"-b", strconv.Itoa(f.BitDepth),
		"-e", "signed-integer",
		"-",
	}
}

// Record captures into path until the policy, the ceiling, an interrupt or
// the capture tool ends the session.
func (r *StreamRecorder) Record(ctx context.Context, path string, opts Options) (*Outcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := &Outcome{Path: path, Started: time.Now()}

	w, err := audio.NewWriter(path, opts.Format)
	if err != nil {
		return nil, errors.Internal(err)
	}

	// The watchdog only fires if the tool stops delivering audio.
	watchdog, cancel := context.WithTimeout(context.Background(), opts.MaxDuration+2*opts.grace())
	defer cancel()

	capture, err := r.start(watchdog, process.Command{
		Binary:      r.binary,
		Args:        r.Args(opts.Format),
		StopSignal:  syscall.SIGINT,
		GracePeriod: opts.grace(),
	})
	if err != nil {
		_ = w.Close()
		return finish(out), err
	}

	var interrupted atomic.Bool
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			interrupted.Store(true)
			_ = capture.Stop()
		case <-done:
		}
	}()

	monitor := NewMonitor(opts)
	reason, readErr := r.pump(capture, w, monitor)
	closeErr := w.Close()
	_, waitErr := capture.Wait()

	switch {
	case reason != "":
		out.Reason = reason
	case interrupted.Load():
		out.Reason = ReasonInterrupted
	case watchdog.Err() != nil:
		out.Reason = ReasonMaxDuration
	default:
		out.Reason = ReasonCompleted
	}
	finish(out)

	r.log.Info("recording stopped", logger.Fields(
		logger.FieldPath, path,
		logger.FieldReason, string(out.Reason),
		"audio_seconds", monitor.Elapsed().Seconds(),
	))

	if reason == "" && !interrupted.Load() && watchdog.Err() == nil && waitErr != nil {
		return out, waitErr
	}
	if readErr != nil {
		return out, errors.Internal(readErr)
	}
	if closeErr != nil {
		return out, errors.Internal(closeErr)
	}
	return out, nil
}

// pump copies windows from the capture into w until the monitor stops the
// session or the stream ends. After a stop the remaining output is discarded.
func (r *StreamRecorder) pump(capture Capture, w *audio.Writer, m *Monitor) (Reason, error) {
	src := capture.Stdout()
	buf := make([]byte, WindowSamples(m.opts.Format)*2)
	for {
		n, err := io.ReadFull(src, buf)
		if n >= 2 {
			samples := audio.DecodeS16LE(buf[:n])
			if werr := w.WriteSamples(samples); werr != nil {
				_ = capture.Stop()
				_, _ = io.Copy(io.Discard, src)
				return "", werr
			}
			if stop, reason := m.Observe(samples); stop {
				_ = capture.Stop()
				_, _ = io.Copy(io.Discard, src)
				return reason, nil
			}
		}
		if err != nil {
			if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.ErrClosedPipe) {
				return "", nil
			}
			return "", err
		}
	}
}
