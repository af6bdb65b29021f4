package recorder

import (
	"time"

	"github.com/kbukum/offlinestt/audio"
)

// WindowDuration is the span of audio evaluated as one level measurement.
const WindowDuration = 10 * time.Millisecond

// Monitor applies the stop policy to a stream of PCM windows.
//
// Under PolicySilence a window at or below the threshold extends the current
// silence run. Sound above the threshold pauses the run; once the sound
// observed since the run began adds up to ProbeDuration, the run resets.
type Monitor struct {
	opts Options

	elapsed time.Duration
	silent  time.Duration
	loud    time.Duration
	level   float64
}

// NewMonitor returns a Monitor for opts.
func NewMonitor(opts Options) *Monitor {
	return &Monitor{opts: opts, level: audio.SilenceFloor}
}

// WindowSamples returns the interleaved sample count of one window.
func WindowSamples(f audio.Format) int {
	return f.SampleRate * f.Channels * int(WindowDuration/time.Millisecond) / 1000
}

// Observe accounts for one window of interleaved samples and reports whether
// the session must stop. A short final window counts for its actual length.
func (m *Monitor) Observe(samples []int) (bool, Reason) {
	frames := len(samples) / max(m.opts.Format.Channels, 1)
	span := time.Duration(frames) * time.Second / time.Duration(m.opts.Format.SampleRate)
	m.elapsed += span

	if m.opts.Policy == PolicySilence {
		m.level = audio.DBFS(samples, m.opts.Format.BitDepth)
		if m.level <= m.opts.SilenceThresholdDB {
			m.silent += span
		} else {
			m.loud += span
			if m.loud >= m.opts.ProbeDuration {
				m.silent = 0
				m.loud = 0
			}
		}
		if m.silent >= m.opts.SilenceDuration {
			return true, ReasonSilence
		}
	}

	if m.elapsed >= m.opts.MaxDuration {
		return true, ReasonMaxDuration
	}
	return false, ""
}

// Elapsed returns the audio time observed so far.
func (m *Monitor) Elapsed() time.Duration { return m.elapsed }

// SilentFor returns the length of the current silence run.
func (m *Monitor) SilentFor() time.Duration { return m.silent }

// Level returns the last measured window level in dBFS.
func (m *Monitor) Level() float64 { return m.level }
