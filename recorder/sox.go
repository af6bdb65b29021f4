package recorder

import (
	"context"
	stderrors "errors"
	"strconv"
	"syscall"
	"time"

	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/process"
)

// Runner executes a subprocess to completion. process.Run in production.
type Runner func(ctx context.Context, cmd process.Command) (*process.Result, error)

// SoxRecorder lets the capture tool write the file and apply the stop policy
// with its own trim and silence effects.
type SoxRecorder struct {
	binary string
	run    Runner
	log    *logger.Logger
}

// NewSoxRecorder returns a SoxRecorder driving the rec binary.
func NewSoxRecorder(binary string, log *logger.Logger) *SoxRecorder {
	if log == nil {
		log = logger.Nop()
	}
	return &SoxRecorder{binary: binary, run: process.Run, log: log}
}

// Args returns the rec arguments for path. The trim effect always bounds the
// length; the silence effect is added only for PolicySilence.
func (r *SoxRecorder) Args(path string, opts Options) []string {
	args := []string{
		"-q",
		"-r", strconv.Itoa(opts.Format.SampleRate),
		"-c", strconv.Itoa(opts.Format.Channels),
		"-b", strconv.Itoa(opts.Format.BitDepth),
		"-e", "signed-integer",
		path,
		"trim", "0", secondsArg(opts.MaxDuration),
	}
	if opts.Policy == PolicySilence {
		threshold := strconv.FormatFloat(opts.SilenceThresholdDB, 'f', -1, 64) + "d"
		args = append(args,
			"silence",
			"1", secondsArg(opts.ProbeDuration), threshold,
			"1", secondsArg(opts.SilenceDuration), threshold,
		)
	}
	return args
}

// Record runs rec until its effects end the session or ctx is canceled.
// Cancellation sends SIGINT so rec finalizes the header.
func (r *SoxRecorder) Record(ctx context.Context, path string, opts Options) (*Outcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := &Outcome{Path: path, Started: time.Now()}

	// trim ends the session normally; the deadline covers a rec that hangs.
	runCtx, cancel := context.WithTimeout(ctx, opts.MaxDuration+opts.grace())
	defer cancel()

	_, err := r.run(runCtx, process.Command{
		Binary:      r.binary,
		Args:        r.Args(path, opts),
		StopSignal:  syscall.SIGINT,
		GracePeriod: opts.grace(),
	})

	switch {
	case ctx.Err() != nil:
		out.Reason = ReasonInterrupted
		err = nil
	case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
		out.Reason = ReasonMaxDuration
		err = nil
	case err != nil:
		// rec exits non-zero on SIGINT from the terminal; the file is still usable.
		if appErr, ok := errors.AsAppError(err); ok && appErr.Details["exit_code"] == 130 {
			out.Reason = ReasonInterrupted
			err = nil
		}
	}
	finish(out)

	if out.Reason == "" && err == nil {
		out.Reason = r.classify(out, opts)
	}
	if err != nil {
		r.log.WithError(err).Error("recording failed", logger.Fields(logger.FieldPath, path))
		return out, err
	}
	r.log.Info("recording stopped", logger.Fields(
		logger.FieldPath, path,
		logger.FieldReason, string(out.Reason),
		"audio_seconds", out.Audio.Seconds(),
	))
	return out, nil
}

// classify infers why rec exited on its own from the recorded length.
func (r *SoxRecorder) classify(out *Outcome, opts Options) Reason {
	if out.Audio >= opts.MaxDuration-WindowDuration {
		return ReasonMaxDuration
	}
	if opts.Policy == PolicySilence {
		return ReasonSilence
	}
	return ReasonCompleted
}

func secondsArg(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Engine names accepted by New.
const (
	EngineStream = "stream"
	EngineSox    = "sox"
)

// New returns the Recorder for engine.
func New(engine, binary string, log *logger.Logger) (Recorder, error) {
	switch engine {
	case EngineStream, "":
		return NewStreamRecorder(binary, log), nil
	case EngineSox:
		return NewSoxRecorder(binary, log), nil
	}
	return nil, errors.InvalidConfig("unknown recorder engine " + strconv.Quote(engine))
}
