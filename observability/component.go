package observability

import "context"

// TracerComponent installs the tracer provider on Start and flushes it on Stop.
type TracerComponent struct {
	cfg      TracerConfig
	shutdown ShutdownFunc
}

// NewTracerComponent creates a tracer component for cfg.
func NewTracerComponent(cfg TracerConfig) *TracerComponent {
	return &TracerComponent{cfg: cfg, shutdown: noopShutdown}
}

// Name implements component.Component.
func (t *TracerComponent) Name() string { return "tracer" }

// Start implements component.Component.
func (t *TracerComponent) Start(ctx context.Context) error {
	shutdown, err := InitTracer(ctx, t.cfg)
	if err != nil {
		return err
	}
	t.shutdown = shutdown
	return nil
}

// Stop implements component.Component.
func (t *TracerComponent) Stop(ctx context.Context) error {
	return t.shutdown(ctx)
}

// Enabled reports whether spans are exported.
func (t *TracerComponent) Enabled() bool { return t.cfg.Endpoint != "" }
