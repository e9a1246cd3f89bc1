// Package supervisor runs the server's long-lived goroutines under a suture tree.
package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Config tunes restart behaviour. Zero values fall back to suture's defaults.
type Config struct {
	FailureThreshold float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// New builds the root supervisor, reporting suture events through logger.
func New(name string, cfg Config, logger zerolog.Logger) *suture.Supervisor {
	logger = logger.With().Str("component", "supervisor").Logger()
	return suture.New(name, suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
		EventHook: func(ev suture.Event) {
			evt := logger.Warn()
			if ev.Type() == suture.EventTypeBackoff || ev.Type() == suture.EventTypeResume {
				evt = logger.Info()
			}
			evt.Fields(ev.Map()).Msg(ev.String())
		},
	})
}

// Func adapts a blocking function into a named suture.Service.
type Func struct {
	Name string
	Run  func(ctx context.Context) error
}

// Serve implements suture.Service.
func (f Func) Serve(ctx context.Context) error {
	return f.Run(ctx)
}

func (f Func) String() string {
	return f.Name
}

// Ticker calls fn every interval until ctx ends. fn also runs once immediately.
func Ticker(name string, interval time.Duration, fn func(ctx context.Context)) Func {
	return Func{Name: name, Run: func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			fn(ctx)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}}
}
