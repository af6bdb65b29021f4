package bootstrap

import (
	"time"

	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/logger"
)

// Summary reports the effective settings of one invocation at debug level.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Fields returns the summary as log fields.
func (s *Summary) Fields(cfg *config.Config, files config.ResolvedFiles, components []string) map[string]interface{} {
	fields := map[string]interface{}{
		"service":         s.serviceName,
		"version":         s.version,
		"startup_ms":      s.startupDuration.Milliseconds(),
		"components":      components,
		"config_file":     orNone(files.ConfigFile),
		"env_file":        orNone(files.EnvFile),
		"recordings_dir":  cfg.RecordingsDir,
		"transcripts_dir": cfg.TranscriptsDir,
		"policy":          cfg.Recorder.Policy,
		"engine":          cfg.Recorder.Engine,
		"backend":         cfg.Transcription.Backend,
		"model":           cfg.Transcription.ModelSize,
		"language":        cfg.Transcription.Language,
	}
	if cfg.Tracing.Endpoint != "" {
		fields["tracing"] = cfg.Tracing.Endpoint
	}
	return fields
}

// Display logs the summary.
func (s *Summary) Display(log *logger.Logger, cfg *config.Config, files config.ResolvedFiles, components []string) {
	log.Debug("Configuration loaded", s.Fields(cfg, files, components))
}

func orNone(path string) string {
	if path == "" {
		return "none"
	}
	return path
}
