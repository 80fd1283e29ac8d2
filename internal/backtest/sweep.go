package backtest

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sweep runs every job on its own simulator with at most workers running
// at once. Outcomes keep the order of jobs. The first failure cancels the
// remaining jobs. Runs that were already persisted are not failures.
func (r *Runner) Sweep(ctx context.Context, jobs []Job, workers int) ([]*Outcome, error) {
	if workers <= 0 {
		workers = 1
	}

	ctx, span := r.tracer.Start(ctx, "backtest.sweep", trace.WithAttributes(
		attribute.Int("jobs", len(jobs)),
		attribute.Int("workers", workers),
	))
	defer span.End()

	r.logger.Info("sweep started", zap.Int("jobs", len(jobs)), zap.Int("workers", workers))

	outcomes := make([]*Outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			if r.metrics != nil {
				r.metrics.SweepWorkers.Inc()
				defer r.metrics.SweepWorkers.Dec()
			}
			out, err := r.Run(gctx, job)
			outcomes[i] = out
			if err != nil && !errors.Is(err, ErrRunExists) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("sweep failed", zap.Error(err))
		return outcomes, err
	}

	r.logger.Info("sweep completed", zap.Int("runs", len(outcomes)))
	return outcomes, nil
}
