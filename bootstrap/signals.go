package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Interrupts holds SIGINT and SIGTERM for the life of one command and hands
// each signal to the phase that is current when it arrives. A signal that
// arrives between phases cancels the next phase as soon as it begins.
type Interrupts struct {
	app   *App
	sigCh chan os.Signal
	done  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	phase   uint64
	cancel  context.CancelFunc
	pending bool
}

// Interrupts starts catching SIGINT and SIGTERM. Call Stop to restore the
// default handlers.
func (a *App) Interrupts() *Interrupts {
	in := &Interrupts{
		app:   a,
		sigCh: make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
	signal.Notify(in.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go in.loop()
	return in
}

func (in *Interrupts) loop() {
	for {
		select {
		case sig := <-in.sigCh:
			in.app.Logger.Info("Received signal, stopping", map[string]interface{}{
				"signal": sig.String(),
			})
			in.mu.Lock()
			if in.cancel != nil {
				in.cancel()
				in.cancel = nil
			} else {
				in.pending = true
			}
			in.mu.Unlock()
		case <-in.done:
			return
		}
	}
}

// Phase returns a context canceled by the next signal. Commands open one per
// phase, so the interrupt that ends a recording does not also abort the
// transcription after it. The returned function ends the phase.
func (in *Interrupts) Phase(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	in.mu.Lock()
	in.phase++
	id := in.phase
	if in.pending {
		in.pending = false
		cancel()
	} else {
		in.cancel = cancel
	}
	in.mu.Unlock()

	return ctx, func() {
		in.mu.Lock()
		if in.phase == id {
			in.cancel = nil
		}
		in.mu.Unlock()
		cancel()
	}
}

// Stop releases the signals.
func (in *Interrupts) Stop() {
	in.once.Do(func() {
		signal.Stop(in.sigCh)
		close(in.done)
	})
}
