package main

import (
	"time"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/bootstrap"
	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/dispatch"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/normalize"
	"github.com/kbukum/offlinestt/provider"
	"github.com/kbukum/offlinestt/recorder"
	"github.com/kbukum/offlinestt/resilience"
	"github.com/kbukum/offlinestt/transcription"
	"github.com/kbukum/offlinestt/transcription/whisper"
	"github.com/kbukum/offlinestt/transcription/whispercli"
)

type transcriptionMiddleware = provider.Middleware[transcription.Request, *transcription.Response]

// newTranscriber creates the configured backend wrapped with logging and
// tracing. Only the sidecar backend retries.
func newTranscriber(cfg *config.Config, log *logger.Logger) (transcription.Provider, error) {
	registry := transcription.NewRegistry()
	registry.RegisterFactory(whispercli.ProviderName, whispercli.Factory())
	registry.RegisterFactory(whisper.ProviderName, whisper.Factory())

	backend, err := registry.Create(cfg.Transcription.Backend, transcription.FactoryConfig(cfg.Transcription))
	if err != nil {
		return nil, err
	}

	middlewares := []transcriptionMiddleware{
		provider.WithLogging[transcription.Request, *transcription.Response](log.WithComponent("transcription")),
		provider.WithTracing[transcription.Request, *transcription.Response](bootstrap.DefaultName),
	}
	if backend.Name() == whisper.ProviderName && cfg.Transcription.SidecarAttempts > 1 {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.Transcription.SidecarAttempts
		retry.RetryIf = whisper.IsRetryable
		retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.WithError(err).Warn("sidecar request failed, retrying", logger.Fields(
				"attempt", attempt, "backoff_ms", backoff.Milliseconds()))
		}
		middlewares = append(middlewares, provider.WithRetry[transcription.Request, *transcription.Response](retry))
	}
	return provider.Chain(middlewares...)(backend), nil
}

func newDispatcher(app *bootstrap.App) (*dispatch.Dispatcher, error) {
	backend, err := newTranscriber(app.Cfg, app.Logger)
	if err != nil {
		return nil, err
	}
	normalizer := normalize.New(app.Cfg.Tools.FFmpeg, normalize.WithLogger(app.Logger))
	return dispatch.New(dispatch.ConfigFrom(app.Cfg), normalizer, backend, dispatch.WithLogger(app.Logger)), nil
}

func recorderOptions(cfg config.RecorderConfig) recorder.Options {
	return recorder.Options{
		Format: audio.Format{
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
			BitDepth:   cfg.BitDepth,
		},
		MaxDuration:        cfg.MaxDuration(),
		Policy:             recorder.Policy(cfg.Policy),
		SilenceThresholdDB: cfg.SilenceThreshold,
		SilenceDuration:    cfg.Silence(),
		ProbeDuration:      cfg.Probe(),
		GracePeriod:        cfg.Grace(),
	}
}
