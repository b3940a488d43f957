package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Background runs fire-and-forget side effects (view hits, notifications) outside the
// request path. Failures are logged and never reach the caller.
type Background struct {
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewBackground returns a runner that bounds every task by timeout.
func NewBackground(logger *slog.Logger, timeout time.Duration) *Background {
	return &Background{logger: logger, timeout: timeout}
}

// Go starts fn detached from ctx cancellation but keeping its values.
func (b *Background) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				b.logger.ErrorContext(ctx, "background task panicked", "task", name, "panic", r)
			}
		}()
		if err := fn(ctx); err != nil {
			b.logger.WarnContext(ctx, "background task failed", "task", name, "err", err)
		}
	}()
}

// Wait blocks until all started tasks finish or ctx is done.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
