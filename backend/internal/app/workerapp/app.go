package workerapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/jobs/reconcile"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
)

type Job interface {
	Run(ctx context.Context) (int, error)
}

type App struct {
	logger   *zap.Logger
	postgres *pgxpool.Pool
	cron     *cron.Cron
	job      Job
	runCtx   context.Context
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for worker app: %w", err)
	}

	job := reconcile.New(pgrepo.NewPetitionRepo(pool), cfg.Jobs.ReconcileTimeout, logger.Named("reconcile"))
	app, err := newApp(cfg.Jobs, job, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	app.postgres = pool
	return app, nil
}

func newApp(cfg config.JobsConfig, job Job, logger *zap.Logger) (*App, error) {
	schedule := strings.TrimSpace(cfg.ReconcileCron)
	if schedule == "" {
		schedule = config.Default().Jobs.ReconcileCron
	}

	c := cron.New(
		cron.WithLogger(cronLogger{s: logger.Sugar()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s: logger.Sugar()})),
	)
	a := &App{logger: logger, cron: c, job: job, runCtx: context.Background()}
	if _, err := c.AddFunc(schedule, func() { a.runOnce(a.runCtx) }); err != nil {
		return nil, fmt.Errorf("schedule reconcile %q: %w", schedule, err)
	}
	return a, nil
}

// Run reconciles once at startup and then on schedule until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("worker app started", zap.Int("scheduled_jobs", len(a.cron.Entries())))

	a.runCtx = ctx
	a.runOnce(ctx)
	a.cron.Start()

	<-ctx.Done()
	<-a.cron.Stop().Done()
	a.logger.Info("worker app stopped")
	return nil
}

func (a *App) runOnce(ctx context.Context) {
	if a.job == nil {
		return
	}
	if _, err := a.job.Run(ctx); err != nil {
		a.logger.Error("reconcile run failed", zap.Error(err))
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}

// cronLogger routes scheduler events into zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
