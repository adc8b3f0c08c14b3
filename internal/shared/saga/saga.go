// Package saga runs a compound mutation as an ordered list of per-record
// steps. The storage layer offers no multi-record transaction, so a failure
// midway is undone by explicitly compensating the steps that already applied,
// in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"

	"go.uber.org/zap"
)

type Step struct {
	Name string
	// Apply performs the step's write.
	Apply func(ctx context.Context) error
	// Compensate undoes the write. It must be idempotent: a retry after a
	// crash may compensate a step whose effect is already gone. Nil means
	// nothing to undo.
	Compensate func(ctx context.Context) error
}

type Runner struct {
	logger *zap.Logger
}

func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.L()
	}
	return &Runner{logger: logger.Named("saga")}
}

// Run applies steps in order. On failure it compensates every applied step in
// reverse and returns the causing error. If compensation itself fails the
// error escalates as PERSISTENCE_ERROR carrying both failures, so a human can
// reconcile manually instead of money being silently dropped.
func (r *Runner) Run(ctx context.Context, name string, steps []Step) error {
	applied := make([]Step, 0, len(steps))

	for _, step := range steps {
		if err := step.Apply(ctx); err != nil {
			r.logger.Warn("saga step failed, compensating",
				zap.String("saga", name),
				zap.String("step", step.Name),
				zap.Int("applied", len(applied)),
				zap.Error(err),
			)
			if compErr := r.compensate(ctx, name, applied); compErr != nil {
				return apperror.Wrap(
					errors.Join(err, compErr),
					apperror.CodePersistence,
					fmt.Sprintf("compensation failed for %s after step %s", name, step.Name),
					http.StatusInternalServerError,
				)
			}
			return err
		}
		applied = append(applied, step)
	}

	return nil
}

func (r *Runner) compensate(ctx context.Context, name string, applied []Step) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		step := applied[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			r.logger.Error("saga compensation failed",
				zap.String("saga", name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}
