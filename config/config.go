package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/validation"
)

// Stamp precisions for recording and transcript file names.
const (
	PrecisionMinute = "minute"
	PrecisionSecond = "second"

	LayoutMinute = "2006-01-02_15-04"
	LayoutSecond = "2006-01-02_15-04-05"
)

// Config is the complete runtime configuration.
type Config struct {
	RecordingsDir  string `yaml:"recordings_dir" mapstructure:"recordings_dir" validate:"required"`
	TranscriptsDir string `yaml:"transcripts_dir" mapstructure:"transcripts_dir" validate:"required"`
	// AutoCreateDirs creates missing recordings/transcripts directories instead of failing.
	AutoCreateDirs bool `yaml:"auto_create_dirs" mapstructure:"auto_create_dirs"`
	// StampPrecision selects minute or second granularity for timestamped file names.
	StampPrecision string `yaml:"stamp_precision" mapstructure:"stamp_precision" validate:"oneof=minute second"`

	Recorder      RecorderConfig      `yaml:"recorder" mapstructure:"recorder"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	Tools         ToolsConfig         `yaml:"tools" mapstructure:"tools"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Tracing       TracingConfig       `yaml:"tracing" mapstructure:"tracing"`
}

// RecorderConfig configures capture and the stop-condition policy.
type RecorderConfig struct {
	Policy string `yaml:"policy" mapstructure:"policy" validate:"oneof=silence manual"`
	Engine string `yaml:"engine" mapstructure:"engine" validate:"oneof=sox stream"`
	// MaxSeconds is the hard recording ceiling.
	MaxSeconds int `yaml:"max_seconds" mapstructure:"max_seconds" validate:"gt=0"`
	// SilenceThreshold is the level in dBFS at or below which audio counts as silence.
	SilenceThreshold float64 `yaml:"silence_threshold" mapstructure:"silence_threshold" validate:"lt=0"`
	// SilenceDuration is the silence run, in seconds, that stops a silence-policy recording.
	SilenceDuration float64 `yaml:"silence_duration" mapstructure:"silence_duration" validate:"gt=0"`
	// ProbeDuration is how long sound must stay above the threshold to end a silence run.
	ProbeDuration float64 `yaml:"probe_duration" mapstructure:"probe_duration" validate:"gt=0"`
	// GraceSeconds bounds the wait between the stop signal and SIGKILL.
	GraceSeconds float64 `yaml:"grace_seconds" mapstructure:"grace_seconds" validate:"gt=0"`
	SampleRate   int     `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	Channels     int     `yaml:"channels" mapstructure:"channels" validate:"gt=0"`
	// BitDepth is fixed at 16: capture and the level monitor read s16le.
	BitDepth int `yaml:"bit_depth" mapstructure:"bit_depth" validate:"eq=16"`
}

// TranscriptionConfig configures the speech-to-text backend.
type TranscriptionConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend" validate:"oneof=cli sidecar"`
	ModelSize   string `yaml:"model_size" mapstructure:"model_size" validate:"required"`
	Language    string `yaml:"language" mapstructure:"language" validate:"required"`
	Device      string `yaml:"device" mapstructure:"device" validate:"oneof=cpu cuda auto"`
	ComputeType string `yaml:"compute_type" mapstructure:"compute_type"`
	// ProjectDir is searched for a local virtualenv and the model script.
	ProjectDir string `yaml:"project_dir" mapstructure:"project_dir"`
	// Script is the model program; relative paths resolve against ProjectDir.
	Script string `yaml:"script" mapstructure:"script"`
	// Python is the fallback interpreter when no project-local environment exists.
	Python     string `yaml:"python" mapstructure:"python" validate:"required"`
	SidecarURL string `yaml:"sidecar_url" mapstructure:"sidecar_url" validate:"omitempty,url"`
	// TimeoutSeconds bounds one model invocation; zero means no limit.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gte=0"`
	// SidecarAttempts bounds calls to the sidecar for one file, including the first.
	SidecarAttempts int `yaml:"sidecar_attempts" mapstructure:"sidecar_attempts" validate:"gte=1,lte=10"`
}

// ToolsConfig names the external programs.
type ToolsConfig struct {
	Rec    string `yaml:"rec" mapstructure:"rec" validate:"required"`
	FFmpeg string `yaml:"ffmpeg" mapstructure:"ffmpeg" validate:"required"`
}

// TracingConfig configures optional OpenTelemetry export. An empty endpoint disables tracing.
type TracingConfig struct {
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills derived values and expands "~" in paths.
func (c *Config) ApplyDefaults() {
	c.RecordingsDir = expandHome(c.RecordingsDir)
	c.TranscriptsDir = expandHome(c.TranscriptsDir)
	c.Transcription.ProjectDir = expandHome(c.Transcription.ProjectDir)
	c.Transcription.Script = expandHome(c.Transcription.Script)
	if c.Transcription.ProjectDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Transcription.ProjectDir = wd
		}
	}
	if c.Transcription.Script != "" && !filepath.IsAbs(c.Transcription.Script) {
		c.Transcription.Script = filepath.Join(c.Transcription.ProjectDir, c.Transcription.Script)
	}
	c.Logging.ApplyDefaults()
}

// Validate checks every field and the cross-field rules.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("config", validation.Validate(c))
	v.Merge("logging", c.Logging.Validate())
	if c.Recorder.MaxSeconds > 0 && c.Recorder.SilenceDuration >= float64(c.Recorder.MaxSeconds) {
		v.AddError("recorder.silence_duration", "must be shorter than recorder.max_seconds")
	}
	v.Custom(c.Transcription.Backend != "sidecar" || c.Transcription.SidecarURL != "",
		"transcription.sidecar_url", "is required when transcription.backend is sidecar")
	// The model program treats a missing -l as its own default language.
	v.Custom(c.Transcription.Backend != "cli" || c.Transcription.Language != "auto",
		"transcription.language", `"auto" requires transcription.backend sidecar`)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// MaxDuration returns the recording ceiling.
func (r RecorderConfig) MaxDuration() time.Duration {
	return time.Duration(r.MaxSeconds) * time.Second
}

// Silence returns the silence run that stops a recording.
func (r RecorderConfig) Silence() time.Duration {
	return seconds(r.SilenceDuration)
}

// Probe returns the above-threshold probe duration.
func (r RecorderConfig) Probe() time.Duration {
	return seconds(r.ProbeDuration)
}

// Grace returns the stop-signal grace period.
func (r RecorderConfig) Grace() time.Duration {
	return seconds(r.GraceSeconds)
}

// Timeout returns the model invocation limit, zero for none.
func (t TranscriptionConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// StampLayout returns the time layout for timestamped file names.
func (c *Config) StampLayout() string {
	if c.StampPrecision == PrecisionSecond {
		return LayoutSecond
	}
	return LayoutMinute
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
