// Package whispercli runs the local transcription program under a Python
// interpreter, preferring a virtual environment inside the project directory.
package whispercli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/process"
	"github.com/kbukum/offlinestt/provider"
	"github.com/kbukum/offlinestt/transcription"
)

// ProviderName is the registered name of this backend.
const ProviderName = "cli"

// VenvCandidates are the project-relative interpreters tried, in order,
// before the system interpreter.
var VenvCandidates = []string{
	filepath.Join(".venv", "bin", "python"),
	filepath.Join("venv", "bin", "python"),
}

// Config configures the model program invocation.
type Config struct {
	ProjectDir string
	Script     string
	// Python is the interpreter used when the project has no virtualenv.
	Python string
	// Timeout bounds one run; zero means no limit.
	Timeout time.Duration
}

// ResolveInterpreter returns the first executable project interpreter or the
// system interpreter found on PATH.
func ResolveInterpreter(projectDir, python string) (string, error) {
	if projectDir != "" {
		for _, rel := range VenvCandidates {
			candidate := filepath.Join(projectDir, rel)
			if isExecutable(candidate) {
				return candidate, nil
			}
		}
	}
	return process.LookPath(python)
}

func isExecutable(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular() && st.Mode().Perm()&0o111 != 0
}

// Args returns the model program arguments for req.
func Args(script string, req transcription.Request) []string {
	args := []string{script, req.AudioPath, "-o", req.OutputPath, "-m", req.Model}
	if lang := req.LanguageHint(); lang != "" {
		args = append(args, "-l", lang)
	}
	if req.Device != "" {
		args = append(args, "-d", req.Device)
	}
	if req.ComputeType != "" {
		args = append(args, "-c", req.ComputeType)
	}
	return args
}

// invocation is one resolved run.
type invocation struct {
	req         transcription.Request
	interpreter string
}

// Provider runs the model program as a subprocess.
type Provider struct {
	cfg Config
	sub *process.SubprocessProvider[invocation, *transcription.Response]
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates the model program backend.
func NewProvider(cfg Config) *Provider {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	p := &Provider{cfg: cfg}
	p.sub = process.NewSubprocessProvider(ProviderName, p.command, parse)
	return p
}

// Factory returns a provider.Factory reading the keys produced by
// transcription.FactoryConfig.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		c := Config{}
		if v, ok := cfg["project_dir"].(string); ok {
			c.ProjectDir = v
		}
		if v, ok := cfg["script"].(string); ok {
			c.Script = v
		}
		if v, ok := cfg["python"].(string); ok {
			c.Python = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			c.Timeout = v
		}
		if c.Script == "" {
			return nil, errors.InvalidConfig("transcription.script is required for the cli backend")
		}
		return NewProvider(c), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether an interpreter and the script can be found.
func (p *Provider) IsAvailable(_ context.Context) bool {
	if _, err := ResolveInterpreter(p.cfg.ProjectDir, p.cfg.Python); err != nil {
		return false
	}
	_, err := os.Stat(p.cfg.Script)
	return err == nil
}

// Interpreter resolves the interpreter that the next run would use.
func (p *Provider) Interpreter() (string, error) {
	return ResolveInterpreter(p.cfg.ProjectDir, p.cfg.Python)
}

// Execute runs the model program on req.AudioPath. The program writes the
// transcript to req.OutputPath itself.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if req.Language == transcription.AutoLanguage {
		return nil, errors.InvalidConfig("the cli backend needs an explicit language; the model program has no detection mode")
	}
	if _, err := os.Stat(p.cfg.Script); err != nil {
		return nil, errors.ToolNotFound(p.cfg.Script, err)
	}
	interpreter, err := p.Interpreter()
	if err != nil {
		return nil, err
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	return p.sub.Execute(ctx, invocation{req: req, interpreter: interpreter})
}

func (p *Provider) command(in invocation) (process.Command, error) {
	return process.Command{
		Binary: in.interpreter,
		Args:   Args(p.cfg.Script, in.req),
		Dir:    p.cfg.ProjectDir,
	}, nil
}

func parse(in invocation, result *process.Result) (*transcription.Response, error) {
	if _, err := os.Stat(in.req.OutputPath); err != nil {
		return nil, errors.ToolFailed(in.interpreter, result.ExitCode,
			fmt.Errorf("model program exited without writing %s", in.req.OutputPath)).
			WithDetail("stderr", result.StderrTail(20))
	}
	return &transcription.Response{
		TranscriptPath: in.req.OutputPath,
		Interpreter:    in.interpreter,
		Language:       in.req.Language,
	}, nil
}
