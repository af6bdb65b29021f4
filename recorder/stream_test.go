package recorder

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/process"
)

// fakeCapture streams synthetic PCM windows until stopped or exhausted.
type fakeCapture struct {
	r    *io.PipeReader
	w    *io.PipeWriter
	stop chan struct{}
	once sync.Once
	done chan struct{}

	waitErr error
	cmd     process.Command
}

// newFakeCapture produces windows from next until it returns nil or Stop is
// called. pace delays each window.
func newFakeCapture(next func(i int) []int, pace time.Duration) *fakeCapture {
	r, w := io.Pipe()
	c := &fakeCapture{r: r, w: w, stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(c.done)
		defer w.Close()
		for i := 0; ; i++ {
			select {
			case <-c.stop:
				return
			default:
			}
			samples := next(i)
			if samples == nil {
				return
			}
			buf := make([]byte, len(samples)*2)
			for j, s := range samples {
				binary.LittleEndian.PutUint16(buf[j*2:], uint16(int16(s)))
			}
			if _, err := w.Write(buf); err != nil {
				return
			}
			if pace > 0 {
				time.Sleep(pace)
			}
		}
	}()
	return c
}

func (c *fakeCapture) Stdout() io.Reader { return c.r }

func (c *fakeCapture) Stop() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *fakeCapture) Wait() (*process.Result, error) {
	<-c.done
	return &process.Result{}, c.waitErr
}

func (c *fakeCapture) starter() Starter {
	return func(_ context.Context, cmd process.Command) (Capture, error) {
		c.cmd = cmd
		return c, nil
	}
}

func forever(loud bool) func(int) []int {
	return func(int) []int { return window(audio.Canonical, loud) }
}

func newTestRecorder(start Starter) *StreamRecorder {
	r := NewStreamRecorder("rec", logger.Nop())
	r.start = start
	return r
}

func TestStreamRecorderStopsOnSilence(t *testing.T) {
	capture := newFakeCapture(forever(false), 0)
	path := filepath.Join(t.TempDir(), "session.wav")

	opts := silenceOpts(300*time.Millisecond, 5*time.Second)
	out, err := newTestRecorder(capture.starter()).Record(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if out.Reason != ReasonSilence {
		t.Errorf("reason = %q, want silence", out.Reason)
	}
	if out.Audio != 300*time.Millisecond {
		t.Errorf("audio = %v, want 300ms", out.Audio)
	}
	info, err := audio.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.IsCanonical() {
		t.Errorf("recorded format %s is not canonical", info.Format)
	}
	if capture.cmd.StopSignal != syscall.SIGINT {
		t.Errorf("stop signal = %v, want SIGINT", capture.cmd.StopSignal)
	}
}

func TestStreamRecorderStopsAtCeiling(t *testing.T) {
	capture := newFakeCapture(forever(true), 0)
	path := filepath.Join(t.TempDir(), "session.wav")

	opts := Options{Format: audio.Canonical, MaxDuration: 500 * time.Millisecond, Policy: PolicyManual}
	out, err := newTestRecorder(capture.starter()).Record(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if out.Reason != ReasonMaxDuration {
		t.Errorf("reason = %q, want max-duration", out.Reason)
	}
	if out.Audio != 500*time.Millisecond {
		t.Errorf("audio = %v, want 500ms", out.Audio)
	}
	if out.Bytes <= 16000 {
		t.Errorf("bytes = %d, want header plus 16000", out.Bytes)
	}
}

func TestStreamRecorderInterrupt(t *testing.T) {
	capture := newFakeCapture(forever(true), 5*time.Millisecond)
	path := filepath.Join(t.TempDir(), "session.wav")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	opts := Options{Format: audio.Canonical, MaxDuration: time.Minute, Policy: PolicyManual}
	out, err := newTestRecorder(capture.starter()).Record(ctx, path, opts)
	if err != nil {
		t.Fatalf("interrupt must not be an error: %v", err)
	}
	if out.Reason != ReasonInterrupted {
		t.Errorf("reason = %q, want interrupted", out.Reason)
	}
	if out.Audio <= 0 || out.Audio >= time.Minute {
		t.Errorf("unexpected audio length %v", out.Audio)
	}
}

func TestStreamRecorderToolExits(t *testing.T) {
	short := func(i int) []int {
		if i >= 10 {
			return nil
		}
		return window(audio.Canonical, true)
	}

	t.Run("clean exit completes", func(t *testing.T) {
		capture := newFakeCapture(short, 0)
		path := filepath.Join(t.TempDir(), "session.wav")
		opts := silenceOpts(time.Second, time.Minute)
		out, err := newTestRecorder(capture.starter()).Record(context.Background(), path, opts)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if out.Reason != ReasonCompleted || out.Audio != 100*time.Millisecond {
			t.Errorf("got %q with %v of audio", out.Reason, out.Audio)
		}
	})

	t.Run("failed exit is reported with the file", func(t *testing.T) {
		capture := newFakeCapture(short, 0)
		capture.waitErr = errors.ToolFailed("rec", 2, io.ErrUnexpectedEOF)
		path := filepath.Join(t.TempDir(), "session.wav")
		opts := silenceOpts(time.Second, time.Minute)
		out, err := newTestRecorder(capture.starter()).Record(context.Background(), path, opts)
		if !errors.HasCode(err, errors.ErrCodeToolFailed) {
			t.Fatalf("expected TOOL_FAILED, got %v", err)
		}
		if out == nil || out.Path != path {
			t.Fatalf("expected outcome with path, got %+v", out)
		}
	})
}

func TestStreamRecorderMissingTool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.wav")
	rec := NewStreamRecorder("offlinestt-no-such-rec", logger.Nop())

	out, err := rec.Record(context.Background(), path, silenceOpts(time.Second, time.Minute))
	if !errors.HasCode(err, errors.ErrCodeToolNotFound) {
		t.Fatalf("expected TOOL_NOT_FOUND, got %v", err)
	}
	if _, statErr := os.Stat(out.Path); statErr != nil {
		t.Errorf("expected an empty file to remain: %v", statErr)
	}
	if out.Audio != 0 {
		t.Errorf("audio = %v, want 0", out.Audio)
	}
}

func TestStreamRecorderInvalidOptions(t *testing.T) {
	rec := NewStreamRecorder("rec", nil)
	_, err := rec.Record(context.Background(), filepath.Join(t.TempDir(), "x.wav"), Options{Format: audio.Canonical})
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestStreamRecorderArgs(t *testing.T) {
	got := NewStreamRecorder("rec", nil).Args(audio.Canonical)
	want := []string{"-q", "-t", "raw", "-r", "16000", "-c", "1", "-b", "16", "-e", "signed-integer", "-"}
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("args = %v, want %v", got, want)
		}
	}
}
