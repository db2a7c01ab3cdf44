package batch

import (
	"context"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/infrastructure/monitoring"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultSnapshotSchedule = "*/15 * * * *"
	defaultSnapshotTimeout  = 2 * time.Minute
)

// PortfolioSummarizer is the read side of loan.Repository the job needs.
type PortfolioSummarizer interface {
	PortfolioSummary(ctx context.Context) (*loan.PortfolioSummary, error)
}

// PortfolioSnapshotJob publishes portfolio totals as Prometheus gauges.
type PortfolioSnapshotJob struct {
	summarizer PortfolioSummarizer
	now        func() time.Time
	logger     *slog.Logger
}

func NewPortfolioSnapshotJob(summarizer PortfolioSummarizer, now func() time.Time, logger *slog.Logger) *PortfolioSnapshotJob {
	if summarizer == nil || logger == nil {
		panic("PortfolioSnapshotJob dependencies cannot be nil")
	}
	if now == nil {
		now = time.Now
	}
	return &PortfolioSnapshotJob{
		summarizer: summarizer,
		now:        now,
		logger:     logger.With("job", "PortfolioSnapshot"),
	}
}

func (j *PortfolioSnapshotJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting portfolio snapshot job.")

	summary, err := j.summarizer.PortfolioSummary(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to compute portfolio summary, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to summarize portfolio: %w", err)
	}

	monitoring.RecordPortfolioSnapshot(summary.Customers, summary.Loans, summary.OutstandingDebt, j.now())

	j.logger.InfoContext(ctx, "Portfolio snapshot job finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("customers", summary.Customers),
		slog.Int64("loans", summary.Loans),
		slog.Float64("outstanding_debt", summary.OutstandingDebt),
	)
	return nil
}

// Schedule registers the job on c. An empty spec or a non-positive timeout
// falls back to the defaults.
func (j *PortfolioSnapshotJob) Schedule(c *cron.Cron, spec string, timeout time.Duration) (cron.EntryID, error) {
	if spec == "" {
		spec = defaultSnapshotSchedule
		j.logger.Warn("Portfolio snapshot schedule not configured, using default", "schedule", spec)
	}
	if timeout <= 0 {
		timeout = defaultSnapshotTimeout
	}

	id, err := c.AddJob(spec, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if runErr := j.Run(ctx); runErr != nil {
			j.logger.Error("Portfolio snapshot job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to schedule portfolio snapshot job %q: %w", spec, err)
	}

	j.logger.Info("Scheduled portfolio snapshot job", "schedule", spec, "job_id", id)
	return id, nil
}
