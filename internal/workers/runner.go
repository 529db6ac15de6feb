// Package workers runs the periodic background loops next to the HTTP server.
package workers

import (
	"context"
	"meetflow/infras/metrics"
	"meetflow/infras/otel"
	"meetflow/shared/constant"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	TaskHoldExpiry          = "hold-expiry"
	TaskWebhookDrain        = "webhook-drain"
	TaskSubscriptionRenewal = "subscription-renewal"
	TaskWebhookRecovery     = "webhook-recovery"
)

// Task is a unit of periodic work. Run errors are logged and never stop the loop.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
	// Immediate also runs the task once as soon as it starts.
	Immediate bool
}

// Runner owns one goroutine and ticker per task.
type Runner struct {
	tasks   []Task
	metrics *metrics.Metrics
	otel    otel.Otel

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(metrics *metrics.Metrics, otel otel.Otel, tasks ...Task) *Runner {
	return &Runner{
		tasks:   tasks,
		metrics: metrics,
		otel:    otel,
	}
}

// Start launches every task. Calling Start on a running Runner is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)

	for _, task := range r.tasks {
		r.wg.Add(1)

		go r.loop(ctx, task)

		log.Info().Str("task", task.Name).Dur("interval", task.Interval).Msg("Background task started")
	}
}

// Stop cancels every loop and waits for in-flight ticks to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	r.wg.Wait()

	log.Info().Msg("Background tasks stopped")
}

func (r *Runner) loop(ctx context.Context, task Task) {
	defer r.wg.Done()

	if task.Immediate {
		r.tick(ctx, task)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx, task)
		}
	}
}

func (r *Runner) tick(ctx context.Context, task Task) {
	defer r.metrics.TrackTick(task.Name)(time.Now())

	ctx, scope := r.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+"."+task.Name)
	defer scope.End()

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Str("task", task.Name).Msg("background task panicked")
		}
	}()

	if err := task.Run(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("task", task.Name).Msg("background task failed")
	}
}
