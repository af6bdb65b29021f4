package recorder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/audiofile"
	"github.com/kbukum/offlinestt/errors"
)

// Policy selects the stop condition besides the duration ceiling.
type Policy string

const (
	// PolicySilence stops after a sustained run of low signal.
	PolicySilence Policy = "silence"
	// PolicyManual stops only on interrupt.
	PolicyManual Policy = "manual"
)

// Reason explains why a session ended.
type Reason string

const (
	ReasonMaxDuration Reason = "max-duration"
	ReasonSilence     Reason = "silence"
	ReasonInterrupted Reason = "interrupted"
	// ReasonCompleted means the capture tool exited on its own.
	ReasonCompleted Reason = "completed"
)

// Options configures one recording session.
type Options struct {
	Format      audio.Format
	MaxDuration time.Duration
	Policy      Policy
	// SilenceThresholdDB is the level in dBFS at or below which audio is silent.
	SilenceThresholdDB float64
	SilenceDuration    time.Duration
	// ProbeDuration is how long sound must persist above the threshold to
	// end a silence run. Shorter bursts are treated as part of the silence.
	ProbeDuration time.Duration
	// GracePeriod bounds the wait between SIGINT and SIGKILL.
	GracePeriod time.Duration
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	switch {
	case o.Format.SampleRate <= 0 || o.Format.Channels <= 0 || o.Format.BitDepth <= 0:
		return errors.InvalidConfig(fmt.Sprintf("invalid capture format %s", o.Format))
	case o.MaxDuration <= 0:
		return errors.InvalidConfig("max duration must be positive")
	case o.Policy != PolicySilence && o.Policy != PolicyManual:
		return errors.InvalidConfig(fmt.Sprintf("unknown stop policy %q", o.Policy))
	}
	if o.Policy == PolicySilence {
		if o.SilenceDuration <= 0 {
			return errors.InvalidConfig("silence duration must be positive")
		}
		if o.SilenceThresholdDB >= 0 {
			return errors.InvalidConfig("silence threshold must be below 0 dBFS")
		}
	}
	return nil
}

func (o Options) grace() time.Duration {
	if o.GracePeriod <= 0 {
		return 5 * time.Second
	}
	return o.GracePeriod
}

// Outcome describes a finished session. The file exists even when it holds
// no audio.
type Outcome struct {
	Path    string
	Reason  Reason
	Started time.Time
	Elapsed time.Duration
	Audio   time.Duration
	Bytes   int64
}

// Recorder captures one session into path.
type Recorder interface {
	Record(ctx context.Context, path string, opts Options) (*Outcome, error)
}

// SessionPath returns <dir>/<stamp>.wav for start. When that name is taken a
// numeric suffix is added so an existing recording is never overwritten.
func SessionPath(dir string, start time.Time, layout string) string {
	return audiofile.UniquePath(dir, start.Format(layout), ".wav")
}

// finish fills size and audio length from the file on disk.
func finish(out *Outcome) *Outcome {
	out.Elapsed = time.Since(out.Started)
	if st, err := os.Stat(out.Path); err == nil {
		out.Bytes = st.Size()
	}
	if info, err := audio.Inspect(out.Path); err == nil {
		out.Audio = info.Duration
	}
	return out
}
