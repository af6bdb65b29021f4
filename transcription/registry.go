package transcription

import (
	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/provider"
)

// NewRegistry creates an empty registry of transcription backends.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// FactoryConfig flattens the transcription settings into the generic map
// consumed by backend factories.
func FactoryConfig(cfg config.TranscriptionConfig) map[string]any {
	return map[string]any{
		"project_dir": cfg.ProjectDir,
		"script":      cfg.Script,
		"python":      cfg.Python,
		"url":         cfg.SidecarURL,
		"timeout":     cfg.Timeout(),
	}
}
