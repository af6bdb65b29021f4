// Package transcription defines the request and response types shared by the
// speech-to-text backends and renders transcripts as markdown.
//
// # Backends
//
//   - transcription/whispercli: the local model program run under a Python interpreter
//   - transcription/whisper: a faster-whisper HTTP sidecar
//
// Backends register with a provider.Registry and are selected by name at run time:
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whispercli.ProviderName, whispercli.Factory())
//	p, err := reg.Create(cfg.Backend, transcription.FactoryConfig(cfg))
package transcription
