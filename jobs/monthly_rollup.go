package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stocktide/stocktide/internal/jobs"
	"github.com/stocktide/stocktide/internal/rollup"
)

// TaskMonthlyRollup archives the previous month's stock movements.
const TaskMonthlyRollup = "stock:monthly_rollup"

// MonthlyRollupPayload pins the wall-clock time the run was scheduled for,
// so a task retried across midnight still targets the same month.
type MonthlyRollupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// RollupService describes the behaviour required to build monthly archives.
type RollupService interface {
	Run(ctx context.Context, now time.Time) (rollup.Result, error)
}

// MonthlyRollupJob coordinates the archive workflow.
type MonthlyRollupJob struct {
	Service RollupService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewMonthlyRollupJob constructs the job handler.
func NewMonthlyRollupJob(service RollupService, logger *slog.Logger, metrics *jobmetrics.Metrics) *MonthlyRollupJob {
	return &MonthlyRollupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (j *MonthlyRollupJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}

// NewMonthlyRollupTask creates an Asynq task for the archive run. A zero
// scheduledFor lets the handler fall back to its own clock.
func NewMonthlyRollupTask(scheduledFor time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(MonthlyRollupPayload{ScheduledFor: scheduledFor.UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMonthlyRollup, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the monthly rollup job. Per-product failures are reported
// through logs and metrics without failing the whole run.
func (j *MonthlyRollupJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("monthly rollup: dependencies not configured")
	}
	var payload MonthlyRollupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	now := payload.ScheduledFor
	if now.IsZero() {
		now = j.clock()
	}

	tracker := j.Metrics.Track(TaskMonthlyRollup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	result, err := j.Service.Run(ctx, now)
	if err != nil {
		resultErr = err
		j.log().Error("monthly rollup run", slog.Any("error", err))
		return resultErr
	}
	if result.Skipped {
		j.log().Info("monthly rollup skipped, not the first day of the month",
			slog.Time("scheduled_for", now))
		return nil
	}

	j.Metrics.AddRollupProducts("success", result.Succeeded)
	j.Metrics.AddRollupProducts("failure", result.Failed)
	for _, productErr := range result.Errors {
		j.log().Error("archive product",
			slog.Int64("product_id", productErr.ProductID),
			slog.String("product", productErr.Name),
			slog.Any("error", productErr.Err))
	}
	j.log().Info("monthly rollup finished",
		slog.String("target", result.Target.String()),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed))

	// Partial failure is final (the products that worked are archived, the
	// rest are in the logs). A run where nothing succeeded smells like an
	// outage, so let asynq retry it.
	if result.Failed > 0 && result.Succeeded == 0 {
		resultErr = fmt.Errorf("monthly rollup: all %d products failed", result.Failed)
		return resultErr
	}
	return nil
}

func (j *MonthlyRollupJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
