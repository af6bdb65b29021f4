package diagnostics

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/transcription"
)

type fakeBackend struct{ available bool }

func (f fakeBackend) Name() string                     { return "sidecar" }
func (f fakeBackend) IsAvailable(context.Context) bool { return f.available }
func (f fakeBackend) Execute(context.Context, transcription.Request) (*transcription.Response, error) {
	return nil, nil
}

func found(name string) (string, error) { return "/usr/bin/" + name, nil }

func missing(string) (string, error) { return "", stderrors.New("not found") }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		RecordingsDir:  filepath.Join(root, "recordings"),
		TranscriptsDir: filepath.Join(root, "transcripts"),
		Tools:          config.ToolsConfig{Rec: "rec", FFmpeg: "ffmpeg"},
		Transcription: config.TranscriptionConfig{
			Backend:    "cli",
			ProjectDir: root,
			Script:     filepath.Join(root, "transcribe.py"),
			Python:     "python3",
		},
	}
	for _, dir := range []string{cfg.RecordingsDir, cfg.TranscriptsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(cfg.Transcription.Script, []byte("# model\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestChecker(opts ...Option) *Checker {
	c := NewChecker(opts...)
	c.interpreter = func(dir, _ string) (string, error) { return filepath.Join(dir, ".venv", "bin", "python"), nil }
	return c
}

func statusOf(t *testing.T, r Report, id string) Status {
	t.Helper()
	for _, item := range r.Items {
		if item.ID == id {
			return item.Status
		}
	}
	t.Fatalf("no check %q in %+v", id, r.Items)
	return ""
}

func TestRunAllPass(t *testing.T) {
	cfg := testConfig(t)
	report := newTestChecker(WithLookPath(found)).Run(context.Background(), cfg)
	if report.HasFailures() {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	if report.Err() != nil {
		t.Errorf("Err() = %v", report.Err())
	}
	if len(report.Items) != 6 {
		t.Errorf("expected 6 checks for the cli backend, got %d", len(report.Items))
	}
}

func TestRunMissingTools(t *testing.T) {
	cfg := testConfig(t)
	report := newTestChecker(WithLookPath(missing)).Run(context.Background(), cfg)

	if statusOf(t, report, "tool_rec") != StatusFail || statusOf(t, report, "tool_ffmpeg") != StatusFail {
		t.Errorf("expected both tools to fail: %+v", report.Items)
	}
	err := report.Err()
	if errors.ExitCodeOf(err) != errors.ExitToolNotFound {
		t.Errorf("exit code = %d, want %d", errors.ExitCodeOf(err), errors.ExitToolNotFound)
	}
	if !strings.Contains(err.Error(), "tool_rec") {
		t.Errorf("expected failed ids in %q", err)
	}
}

func TestRunDirectories(t *testing.T) {
	tests := []struct {
		name       string
		autoCreate bool
		want       Status
	}{
		{name: "missing fails", want: StatusFail},
		{name: "missing with auto-create warns", autoCreate: true, want: StatusWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.AutoCreateDirs = tt.autoCreate
			cfg.TranscriptsDir += "-missing"
			report := newTestChecker(WithLookPath(found)).Run(context.Background(), cfg)
			if got := statusOf(t, report, "transcripts_dir"); got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
			if tt.want == StatusFail && errors.ExitCodeOf(report.Err()) != errors.ExitMissingDir {
				t.Errorf("expected missing-directory exit code, got %v", report.Err())
			}
		})
	}
}

func TestRunRecordingsPathIsFile(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(t.TempDir(), "recordings")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.RecordingsDir = file
	report := newTestChecker(WithLookPath(found)).Run(context.Background(), cfg)
	if statusOf(t, report, "recordings_dir") != StatusFail {
		t.Error("a regular file is not a recordings directory")
	}
}

func TestRunModelProgram(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.Script = filepath.Join(cfg.Transcription.ProjectDir, "missing.py")

	c := newTestChecker(WithLookPath(found))
	c.interpreter = func(string, string) (string, error) {
		return "", errors.ToolNotFound("python3", stderrors.New("not found"))
	}
	report := c.Run(context.Background(), cfg)
	if statusOf(t, report, "interpreter") != StatusFail || statusOf(t, report, "script") != StatusFail {
		t.Errorf("expected interpreter and script failures: %+v", report.Items)
	}
}

func TestRunSidecarBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.Backend = "sidecar"

	report := newTestChecker(WithLookPath(found), WithBackend(fakeBackend{available: false})).Run(context.Background(), cfg)
	if statusOf(t, report, "backend") != StatusFail {
		t.Error("unreachable sidecar must fail")
	}
	for _, item := range report.Items {
		if item.ID == "interpreter" || item.ID == "script" {
			t.Errorf("local program checks do not apply to the sidecar backend: %s", item.ID)
		}
	}

	report = newTestChecker(WithLookPath(found), WithBackend(fakeBackend{available: true})).Run(context.Background(), cfg)
	if report.HasFailures() {
		t.Errorf("unexpected failures %+v", report.Items)
	}
}

func TestReportPrint(t *testing.T) {
	report := Report{Items: []Item{
		{ID: "tool_rec", Name: "rec", Status: StatusFail, Message: "not found: rec", Hint: "Install SoX."},
		{ID: "tool_ffmpeg", Name: "ffmpeg", Status: StatusPass, Message: "/usr/bin/ffmpeg", Hint: "unused"},
	}}
	var buf bytes.Buffer
	report.Print(&buf)
	out := buf.String()
	if !strings.Contains(out, "[fail] rec") || !strings.Contains(out, "hint: Install SoX.") {
		t.Errorf("unexpected report:\n%s", out)
	}
	if strings.Contains(out, "unused") {
		t.Error("hints are only printed for failing checks")
	}
}
