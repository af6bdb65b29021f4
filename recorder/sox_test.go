package recorder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/process"
)

func TestSoxArgs(t *testing.T) {
	r := NewSoxRecorder("rec", nil)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "silence policy",
			opts: Options{
				Format:             audio.Canonical,
				MaxDuration:        3000 * time.Second,
				Policy:             PolicySilence,
				SilenceThresholdDB: -40,
				SilenceDuration:    3 * time.Second,
				ProbeDuration:      100 * time.Millisecond,
			},
			want: "-q -r 16000 -c 1 -b 16 -e signed-integer out.wav trim 0 3000 silence 1 0.1 -40d 1 3 -40d",
		},
		{
			name: "manual policy has no silence effect",
			opts: Options{Format: audio.Canonical, MaxDuration: 90 * time.Second, Policy: PolicyManual},
			want: "-q -r 16000 -c 1 -b 16 -e signed-integer out.wav trim 0 90",
		},
		{
			name: "fractional values",
			opts: Options{
				Format:             audio.Canonical,
				MaxDuration:        1500 * time.Millisecond,
				Policy:             PolicySilence,
				SilenceThresholdDB: -37.5,
				SilenceDuration:    750 * time.Millisecond,
			},
			want: "-q -r 16000 -c 1 -b 16 -e signed-integer out.wav trim 0 1.5 silence 1 0 -37.5d 1 0.75 -37.5d",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(r.Args("out.wav", tt.opts), " "); got != tt.want {
				t.Errorf("args:\n got %s\nwant %s", got, tt.want)
			}
		})
	}
}

// writingRunner simulates rec by writing seconds of silence to the target.
func writingRunner(seconds float64, err error) Runner {
	return func(_ context.Context, cmd process.Command) (*process.Result, error) {
		path := cmd.Args[9]
		w, werr := audio.NewWriter(path, audio.Canonical)
		if werr != nil {
			return nil, werr
		}
		_ = w.WriteSamples(make([]int, int(seconds*16000)))
		_ = w.Close()
		return &process.Result{}, err
	}
}

func TestSoxRecorderOutcome(t *testing.T) {
	opts := silenceOpts(time.Second, 2*time.Second)

	tests := []struct {
		name       string
		run        Runner
		opts       Options
		wantReason Reason
		wantCode   errors.ErrorCode
	}{
		{name: "ended by silence", run: writingRunner(1.5, nil), opts: opts, wantReason: ReasonSilence},
		{name: "ended by trim", run: writingRunner(2, nil), opts: opts, wantReason: ReasonMaxDuration},
		{
			name:       "terminal interrupt exit status",
			run:        writingRunner(0.5, errors.ToolFailed("rec", 130, nil)),
			opts:       opts,
			wantReason: ReasonInterrupted,
		},
		{
			name:     "tool missing",
			run:      func(context.Context, process.Command) (*process.Result, error) { return nil, errors.ToolNotFound("rec", os.ErrNotExist) },
			opts:     opts,
			wantCode: errors.ErrCodeToolNotFound,
		},
		{
			name:     "tool failure",
			run:      writingRunner(0, errors.ToolFailed("rec", 2, nil)),
			opts:     opts,
			wantCode: errors.ErrCodeToolFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSoxRecorder("rec", logger.Nop())
			r.run = tt.run
			out, err := r.Record(context.Background(), filepath.Join(t.TempDir(), "s.wav"), tt.opts)
			if tt.wantCode != "" {
				if !errors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if out.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", out.Reason, tt.wantReason)
			}
		})
	}
}

func TestSoxRecorderCanceled(t *testing.T) {
	r := NewSoxRecorder("rec", nil)
	r.run = func(ctx context.Context, _ process.Command) (*process.Result, error) {
		<-ctx.Done()
		return &process.Result{}, errors.Canceled("rec", ctx.Err())
	}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	out, err := r.Record(ctx, filepath.Join(t.TempDir(), "s.wav"), silenceOpts(time.Second, time.Minute))
	if err != nil {
		t.Fatalf("interrupt must not be an error: %v", err)
	}
	if out.Reason != ReasonInterrupted {
		t.Errorf("reason = %q, want interrupted", out.Reason)
	}
}

func TestNewEngine(t *testing.T) {
	if r, err := New("", "rec", nil); err != nil {
		t.Fatal(err)
	} else if _, ok := r.(*StreamRecorder); !ok {
		t.Errorf("default engine is %T", r)
	}
	if r, err := New(EngineSox, "rec", nil); err != nil {
		t.Fatal(err)
	} else if _, ok := r.(*SoxRecorder); !ok {
		t.Errorf("sox engine is %T", r)
	}
	if _, err := New("arecord", "rec", nil); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestSessionPath(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 3, 9, 14, 5, 33, 0, time.Local)
	layout := "2006-01-02_15-04"

	first := SessionPath(dir, start, layout)
	if filepath.Base(first) != "2026-03-09_14-05.wav" {
		t.Fatalf("unexpected name %s", first)
	}
	if err := os.WriteFile(first, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	second := SessionPath(dir, start, layout)
	if filepath.Base(second) != "2026-03-09_14-05_2.wav" {
		t.Fatalf("expected suffixed name, got %s", second)
	}
	if err := os.WriteFile(second, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if third := SessionPath(dir, start, layout); filepath.Base(third) != "2026-03-09_14-05_3.wav" {
		t.Fatalf("expected _3 suffix, got %s", third)
	}
}
