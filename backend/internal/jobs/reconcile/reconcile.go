// Package reconcile repairs petition signature counters that drifted from
// the stored signatures.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/metrics"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
)

const defaultTimeout = 2 * time.Minute

type CountReconciler interface {
	ReconcileSignatureCounts(ctx context.Context) ([]pgrepo.SignatureCountAdjustment, error)
}

type Job struct {
	store   CountReconciler
	timeout time.Duration
	logger  *zap.Logger
}

func New(store CountReconciler, timeout time.Duration, logger *zap.Logger) *Job {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Run clamps every drifted counter and returns how many petitions changed.
func (j *Job) Run(ctx context.Context) (int, error) {
	if j.store == nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	adjustments, err := j.store.ReconcileSignatureCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile signature counts: %w", err)
	}

	for _, adj := range adjustments {
		j.logger.Warn("signature counter drift corrected",
			zap.String("petition_id", adj.PetitionID),
			zap.Int("previous", adj.Previous),
			zap.Int("actual", adj.Actual),
		)
	}
	metrics.ReconcileAdjusted(len(adjustments))

	if len(adjustments) > 0 {
		j.logger.Info("signature reconcile completed", zap.Int("adjusted", len(adjustments)))
	}
	return len(adjustments), nil
}
