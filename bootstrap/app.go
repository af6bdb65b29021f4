package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/offlinestt/component"
	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/observability"
	"github.com/kbukum/offlinestt/version"
)

// DefaultName is the service name used for logs and traces.
const DefaultName = "offlinestt"

// App holds the per-invocation infrastructure shared by all commands.
type App struct {
	Name       string
	Version    string
	Cfg        *config.Config
	Files      config.ResolvedFiles
	Logger     *logger.Logger
	Components *component.Registry
	Summary    *Summary

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp creates the application from a loaded configuration. The logger is
// built from cfg.Logging unless WithLogger is given, and the tracer is
// registered as the first component.
func NewApp(loaded *config.Loaded, opts ...Option) (*App, error) {
	if loaded == nil || loaded.Config == nil {
		return nil, fmt.Errorf("bootstrap: configuration is required")
	}
	o := resolveOptions(opts)

	app := &App{
		Name:            DefaultName,
		Version:         version.GetShortVersion(),
		Cfg:             loaded.Config,
		Files:           loaded.Files,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&app.Cfg.Logging, app.Name)
		logger.SetGlobalLogger(app.Logger)
	}
	app.Components = component.NewRegistry(app.Logger)

	tracer := observability.NewTracerComponent(observability.TracerConfig{
		ServiceName:    app.Name,
		ServiceVersion: app.Version,
		Endpoint:       app.Cfg.Tracing.Endpoint,
		Insecure:       app.Cfg.Tracing.Insecure,
		SampleRate:     app.Cfg.Tracing.SampleRate,
	})
	if err := app.Components.Register(tracer); err != nil {
		return nil, err
	}

	app.Summary = NewSummary(app.Name, app.Version)
	return app, nil
}

// RegisterComponent adds a component started before the task.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// RunTask starts the components, runs task and shuts down. The task error
// wins over a shutdown error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskErr := task(ctx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display(a.Logger, a.Cfg, a.Files, a.Components.Names())
	return nil
}

// stop runs the OnStop hooks, then stops the components, within the
// graceful timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("shutdown", err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	return shutdownErr
}
