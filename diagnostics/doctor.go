// Package diagnostics checks that the external programs, directories and
// transcription backend a run depends on are in place.
package diagnostics

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/process"
	"github.com/kbukum/offlinestt/transcription"
	"github.com/kbukum/offlinestt/transcription/whispercli"
)

// Status is the result of one check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one check result. Code is set on failures and decides the exit code.
type Item struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Status  Status           `json:"status"`
	Message string           `json:"message"`
	Hint    string           `json:"hint,omitempty"`
	Code    errors.ErrorCode `json:"code,omitempty"`
}

// Report aggregates all checks of one doctor run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
}

// HasFailures reports whether any check failed.
func (r Report) HasFailures() bool {
	for _, item := range r.Items {
		if item.Status == StatusFail {
			return true
		}
	}
	return false
}

// Err returns an AppError carrying the code of the first failed check, or nil.
func (r Report) Err() error {
	var failed []string
	var code errors.ErrorCode
	for _, item := range r.Items {
		if item.Status != StatusFail {
			continue
		}
		if code == "" {
			code = item.Code
		}
		failed = append(failed, item.ID)
	}
	if len(failed) == 0 {
		return nil
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.New(code, "diagnostics failed: "+strings.Join(failed, ", ")).
		WithDetail("failed", failed)
}

// Print writes a human-readable report.
func (r Report) Print(w io.Writer) {
	for _, item := range r.Items {
		fmt.Fprintf(w, "[%-4s] %-22s %s\n", item.Status, item.Name, item.Message)
		if item.Hint != "" && item.Status != StatusPass {
			fmt.Fprintf(w, "       %-22s hint: %s\n", "", item.Hint)
		}
	}
}

// Checker runs the checks. Filesystem and PATH lookups are injectable.
type Checker struct {
	lookPath    func(string) (string, error)
	stat        func(string) (os.FileInfo, error)
	interpreter func(projectDir, python string) (string, error)
	backend     transcription.Provider
	now         func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithLookPath replaces the PATH lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Checker) { c.lookPath = fn }
}

// WithBackend adds an availability check against the configured backend.
func WithBackend(p transcription.Provider) Option {
	return func(c *Checker) { c.backend = p }
}

// NewChecker builds a checker using the real OS.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		lookPath:    process.LookPath,
		stat:        os.Stat,
		interpreter: whispercli.ResolveInterpreter,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes every check applicable to cfg.
func (c *Checker) Run(ctx context.Context, cfg *config.Config) Report {
	items := []Item{
		c.checkTool("rec", cfg.Tools.Rec, "Install SoX (it provides rec) and make sure it is on PATH."),
		c.checkTool("ffmpeg", cfg.Tools.FFmpeg, "Install ffmpeg and make sure it is on PATH."),
		c.checkDir("recordings_dir", "Recordings directory", cfg.RecordingsDir, cfg.AutoCreateDirs),
		c.checkDir("transcripts_dir", "Transcripts directory", cfg.TranscriptsDir, cfg.AutoCreateDirs),
	}
	if cfg.Transcription.Backend == whispercli.ProviderName {
		items = append(items,
			c.checkInterpreter(cfg.Transcription.ProjectDir, cfg.Transcription.Python),
			c.checkScript(cfg.Transcription.Script),
		)
	}
	if c.backend != nil {
		items = append(items, c.checkBackend(ctx))
	}
	return Report{GeneratedAt: c.now().UTC(), Items: items}
}

func (c *Checker) checkTool(name, binary, hint string) Item {
	item := Item{ID: "tool_" + name, Name: name}
	path, err := c.lookPath(binary)
	if err != nil {
		item.Status = StatusFail
		item.Code = errors.ErrCodeToolNotFound
		item.Message = fmt.Sprintf("not found: %s", binary)
		item.Hint = hint
		return item
	}
	item.Status = StatusPass
	item.Message = path
	return item
}

func (c *Checker) checkDir(id, name, dir string, autoCreate bool) Item {
	item := Item{ID: id, Name: name}
	info, err := c.stat(dir)
	switch {
	case err == nil && info.IsDir():
		item.Status = StatusPass
		item.Message = dir
	case err == nil:
		item.Status = StatusFail
		item.Code = errors.ErrCodeDirectoryNotFound
		item.Message = fmt.Sprintf("not a directory: %s", dir)
	case stderrors.Is(err, os.ErrNotExist) && autoCreate:
		item.Status = StatusWarn
		item.Message = fmt.Sprintf("missing, will be created: %s", dir)
	default:
		item.Status = StatusFail
		item.Code = errors.ErrCodeDirectoryNotFound
		item.Message = fmt.Sprintf("missing: %s", dir)
		item.Hint = "Create it or set auto_create_dirs: true."
	}
	return item
}

func (c *Checker) checkInterpreter(projectDir, python string) Item {
	item := Item{ID: "interpreter", Name: "Python interpreter"}
	path, err := c.interpreter(projectDir, python)
	if err != nil {
		item.Status = StatusFail
		item.Code = errors.ErrCodeToolNotFound
		item.Message = fmt.Sprintf("no .venv or venv in %s and %s is not on PATH", projectDir, python)
		item.Hint = "Create a virtual environment in the project directory with the model dependencies."
		return item
	}
	item.Status = StatusPass
	item.Message = path
	return item
}

func (c *Checker) checkScript(script string) Item {
	item := Item{ID: "script", Name: "Model program"}
	info, err := c.stat(script)
	if err != nil || info.IsDir() {
		item.Status = StatusFail
		item.Code = errors.ErrCodeToolNotFound
		item.Message = fmt.Sprintf("missing: %s", script)
		item.Hint = "Set transcription.script or TRANSCRIBE_SCRIPT."
		return item
	}
	item.Status = StatusPass
	item.Message = script
	return item
}

func (c *Checker) checkBackend(ctx context.Context) Item {
	item := Item{ID: "backend", Name: "Backend " + c.backend.Name()}
	if !c.backend.IsAvailable(ctx) {
		item.Status = StatusFail
		item.Code = errors.ErrCodeToolNotFound
		item.Message = "not available"
		return item
	}
	item.Status = StatusPass
	item.Message = "available"
	return item
}
