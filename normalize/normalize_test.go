package normalize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/process"
)

func writeWAV(t *testing.T, path string, format audio.Format, samples int) {
	t.Helper()
	w, err := audio.NewWriter(path, format)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]int, samples*format.Channels)
	for i := range data {
		data[i] = (i % 200) * 50
	}
	if err := w.WriteSamples(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// fakeFFmpeg writes a WAV in format to the output argument.
func fakeFFmpeg(t *testing.T, format audio.Format, calls *[]process.Command) Runner {
	return func(_ context.Context, cmd process.Command) (*process.Result, error) {
		*calls = append(*calls, cmd)
		writeWAV(t, cmd.Args[len(cmd.Args)-1], format, 1600)
		return &process.Result{}, nil
	}
}

func newInput(t *testing.T, dir string) string {
	t.Helper()
	in := filepath.Join(dir, "in.mp3")
	if err := os.WriteFile(in, []byte("mp3 frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	return in
}

func TestNormalizeSuccess(t *testing.T) {
	dir := t.TempDir()
	in := newInput(t, dir)
	out := filepath.Join(dir, "canonical.wav")
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls []process.Command
	n := New("ffmpeg", WithRunner(fakeFFmpeg(t, audio.Canonical, &calls)))
	if err := n.Normalize(context.Background(), in, out); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	info, err := audio.Inspect(out)
	if err != nil {
		t.Fatalf("output not a WAV: %v", err)
	}
	if !info.IsCanonical() {
		t.Errorf("expected canonical output, got %v", info.Format)
	}
	if _, err := os.Stat(filepath.Join(dir, "canonical.partial.wav")); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
	if data, _ := os.ReadFile(in); string(data) != "mp3 frames" {
		t.Error("input was modified")
	}
	if len(calls) != 1 || calls[0].Binary != "ffmpeg" {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestNormalizeArgs(t *testing.T) {
	got := strings.Join(New("ffmpeg").Args("/in.m4a", "/tmp/x.partial.wav"), " ")
	want := "-hide_banner -nostdin -loglevel error -y -i /in.m4a -vn -ar 16000 -ac 1 -c:a pcm_s16le /tmp/x.partial.wav"
	if got != want {
		t.Errorf("Args() =\n%s\nwant\n%s", got, want)
	}
}

func TestNormalizeFailures(t *testing.T) {
	tests := []struct {
		name     string
		run      func(t *testing.T) Runner
		wantCode errors.ErrorCode
	}{
		{
			name: "ffmpeg exits non-zero",
			run: func(t *testing.T) Runner {
				return func(_ context.Context, cmd process.Command) (*process.Result, error) {
					// partial output exists when ffmpeg dies midway
					_ = os.WriteFile(cmd.Args[len(cmd.Args)-1], []byte("RIFF"), 0o644)
					return &process.Result{ExitCode: 1}, errors.ToolFailed("ffmpeg", 1, fmt.Errorf("exit status 1"))
				}
			},
			wantCode: errors.ErrCodeToolFailed,
		},
		{
			name: "output is not audio",
			run: func(t *testing.T) Runner {
				return func(_ context.Context, cmd process.Command) (*process.Result, error) {
					return &process.Result{}, os.WriteFile(cmd.Args[len(cmd.Args)-1], []byte("garbage"), 0o644)
				}
			},
			wantCode: errors.ErrCodeToolFailed,
		},
		{
			name: "wrong output format",
			run: func(t *testing.T) Runner {
				var calls []process.Command
				return fakeFFmpeg(t, audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, &calls)
			},
			wantCode: errors.ErrCodeToolFailed,
		},
		{
			name: "ffmpeg missing",
			run: func(t *testing.T) Runner {
				return func(context.Context, process.Command) (*process.Result, error) {
					return nil, errors.ToolNotFound("ffmpeg", exec.ErrNotFound)
				}
			},
			wantCode: errors.ErrCodeToolNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			in := newInput(t, dir)
			out := filepath.Join(dir, "canonical.wav")

			err := New("ffmpeg", WithRunner(tc.run(t))).Normalize(context.Background(), in, out)
			if !errors.HasCode(err, tc.wantCode) {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 1 {
				t.Errorf("expected only the input to remain, got %d entries", len(entries))
			}
		})
	}
}

func TestNormalizeMissingInput(t *testing.T) {
	dir := t.TempDir()
	called := false
	n := New("ffmpeg", WithRunner(func(context.Context, process.Command) (*process.Result, error) {
		called = true
		return &process.Result{}, nil
	}))
	err := n.Normalize(context.Background(), filepath.Join(dir, "nope.wav"), filepath.Join(dir, "out.wav"))
	if !errors.HasCode(err, errors.ErrCodeInputNotFound) {
		t.Fatalf("expected INPUT_NOT_FOUND, got %v", err)
	}
	if called {
		t.Error("ffmpeg must not run for a missing input")
	}
}

func TestPartialPath(t *testing.T) {
	if got := partialPath("/s/canonical.wav"); got != "/s/canonical.partial.wav" {
		t.Errorf("got %q", got)
	}
	if got := partialPath("/s/out"); got != "/s/out.partial.wav" {
		t.Errorf("got %q", got)
	}
}

// Requires a real ffmpeg; feeding canonical output back in must keep the format and length.
func TestNormalizeIdempotentWithFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "source.wav")
	writeWAV(t, in, audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, 44100)

	n := New("ffmpeg")
	first := filepath.Join(dir, "first.wav")
	second := filepath.Join(dir, "second.wav")
	if err := n.Normalize(context.Background(), in, first); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if err := n.Normalize(context.Background(), first, second); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	a, err := audio.Inspect(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := audio.Inspect(second)
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsCanonical() || !b.IsCanonical() {
		t.Fatalf("expected canonical outputs, got %v and %v", a.Format, b.Format)
	}
	if a.DataLen != b.DataLen {
		t.Errorf("second pass changed length: %d -> %d", a.DataLen, b.DataLen)
	}
}
