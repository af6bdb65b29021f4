package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/offlinestt/audiofile"
	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/observability"
	"github.com/kbukum/offlinestt/transcription"
)

// CanonicalName is the scratch file handed to the model.
const CanonicalName = "canonical.wav"

// Normalizer converts an audio file to canonical PCM.
type Normalizer interface {
	Normalize(ctx context.Context, in, out string) error
}

// Config holds the settings of a Dispatcher.
type Config struct {
	RecordingsDir  string
	TranscriptsDir string
	// AutoCreateDirs creates missing directories instead of failing.
	AutoCreateDirs bool
	StampLayout    string
	Extensions     []string

	Model       string
	Language    string
	Device      string
	ComputeType string

	// ScratchRoot is where scratch directories are created; empty means os.TempDir.
	ScratchRoot string
}

// ConfigFrom derives the dispatcher settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		RecordingsDir:  cfg.RecordingsDir,
		TranscriptsDir: cfg.TranscriptsDir,
		AutoCreateDirs: cfg.AutoCreateDirs,
		StampLayout:    cfg.StampLayout(),
		Extensions:     audiofile.Extensions,
		Model:          cfg.Transcription.ModelSize,
		Language:       cfg.Transcription.Language,
		Device:         cfg.Transcription.Device,
		ComputeType:    cfg.Transcription.ComputeType,
	}
}

// Request selects the input of one dispatch.
type Request struct {
	// InputPath is the file to transcribe; empty selects the newest recording.
	InputPath string
}

// Result describes a successful dispatch.
type Result struct {
	DispatchID     string
	InputPath      string
	TranscriptPath string
	Interpreter    string
	Started        time.Time

	NormalizeDuration  time.Duration
	TranscribeDuration time.Duration
}

// Dispatcher runs dispatches.
type Dispatcher struct {
	cfg         Config
	normalizer  Normalizer
	transcriber transcription.Provider
	log         *logger.Logger
	now         func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithClock replaces time.Now for stamping transcripts.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New creates a Dispatcher.
func New(cfg Config, n Normalizer, t transcription.Provider, opts ...Option) *Dispatcher {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = audiofile.Extensions
	}
	if cfg.StampLayout == "" {
		cfg.StampLayout = config.LayoutMinute
	}
	d := &Dispatcher{
		cfg:         cfg,
		normalizer:  n,
		transcriber: t,
		log:         logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch transcribes req.InputPath, or the newest recording when it is
// empty, into a new transcript file.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	res := &Result{DispatchID: uuid.NewString(), Started: d.now()}
	log := d.log.WithFields(logger.Fields(logger.FieldDispatchID, res.DispatchID))
	ctx, span := observability.StartSpan(ctx, "offlinestt.dispatch")
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrDispatchID, res.DispatchID)

	if err := d.ensureDir("transcripts", d.cfg.TranscriptsDir); err != nil {
		return nil, err
	}

	input, err := d.resolveInput(ctx, req)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	res.InputPath = input
	observability.SetSpanAttribute(ctx, observability.AttrInput, input)
	log.Info("dispatch started", logger.Fields(logger.FieldInput, input))

	scratch, err := os.MkdirTemp(d.cfg.ScratchRoot, "offlinestt-"+res.DispatchID+"-*")
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("create scratch directory: %w", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			log.WithError(rmErr).Warn("scratch cleanup failed", logger.Fields(logger.FieldPath, scratch))
		}
	}()

	canonical := filepath.Join(scratch, CanonicalName)
	start := time.Now()
	phaseCtx, end := observability.StartPhase(ctx, observability.PhaseNormalize)
	err = d.normalizer.Normalize(phaseCtx, input, canonical)
	end(err)
	res.NormalizeDuration = time.Since(start)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	stem := res.Started.Format(d.cfg.StampLayout)
	res.TranscriptPath = audiofile.UniquePath(d.cfg.TranscriptsDir, stem, ".md")

	start = time.Now()
	phaseCtx, end = observability.StartPhase(ctx, observability.PhaseTranscribe)
	observability.SetSpanAttribute(phaseCtx, observability.AttrProvider, d.transcriber.Name())
	resp, err := d.transcriber.Execute(phaseCtx, transcription.Request{
		AudioPath:   canonical,
		OutputPath:  res.TranscriptPath,
		SourceName:  filepath.Base(input),
		Model:       d.cfg.Model,
		Language:    d.cfg.Language,
		Device:      d.cfg.Device,
		ComputeType: d.cfg.ComputeType,
	})
	end(err)
	res.TranscribeDuration = time.Since(start)
	if err != nil {
		// A partial transcript is never promoted.
		if rmErr := os.Remove(res.TranscriptPath); rmErr != nil && !stderrors.Is(rmErr, fs.ErrNotExist) {
			log.WithError(rmErr).Warn("partial transcript cleanup failed")
		}
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	if resp != nil {
		res.Interpreter = resp.Interpreter
	}

	log.Info("transcript written", logger.Fields(
		logger.FieldOutput, res.TranscriptPath,
		logger.FieldInterpreter, res.Interpreter,
		logger.FieldModel, d.cfg.Model,
		logger.FieldLanguage, d.cfg.Language,
		"normalize_ms", res.NormalizeDuration.Milliseconds(),
		"transcribe_ms", res.TranscribeDuration.Milliseconds(),
	))
	return res, nil
}

func (d *Dispatcher) resolveInput(ctx context.Context, req Request) (path string, err error) {
	_, end := observability.StartPhase(ctx, observability.PhaseSelect)
	defer func() { end(err) }()

	if req.InputPath != "" {
		st, statErr := os.Stat(req.InputPath)
		if statErr != nil {
			return "", errors.InputNotFound(req.InputPath).WithCause(statErr)
		}
		if !st.Mode().IsRegular() {
			return "", errors.InputNotFound(req.InputPath).WithDetail("reason", "not a regular file")
		}
		return req.InputPath, nil
	}

	if err := d.ensureDir("recordings", d.cfg.RecordingsDir); err != nil {
		return "", err
	}
	return audiofile.Latest(d.cfg.RecordingsDir, d.cfg.Extensions)
}

func (d *Dispatcher) ensureDir(role, dir string) error {
	created, err := EnsureDir(role, dir, d.cfg.AutoCreateDirs)
	if created {
		d.log.Info("created directory", logger.Fields(logger.FieldPath, dir, "role", role))
	}
	return err
}

// EnsureDir checks that dir exists, creating it when autoCreate is set.
// role names the directory in the error.
func EnsureDir(role, dir string, autoCreate bool) (created bool, err error) {
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		return false, nil
	case err == nil:
		return false, errors.DirectoryNotFound(role, dir).WithDetail("reason", "not a directory")
	case stderrors.Is(err, fs.ErrNotExist) && autoCreate:
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return false, errors.Internal(mkErr)
		}
		return true, nil
	}
	return false, errors.DirectoryNotFound(role, dir).WithCause(err)
}
