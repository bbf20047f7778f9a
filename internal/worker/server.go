package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"investment-service/internal/services"
	"investment-service/pkg/common"
)

type Worker struct {
	Accrual  *services.AccrualService
	Location *time.Location
	Log      *zap.Logger
}

func NewWorker(accrual *services.AccrualService, loc *time.Location, log *zap.Logger) *Worker {
	return &Worker{Accrual: accrual, Location: loc, Log: log}
}

// HandleAccrualSweep runs one day's sweep. Individual investment failures
// make the task fail so asynq retries it; investments that already accrued
// are skipped on the retry.
func (w *Worker) HandleAccrualSweep(ctx context.Context, t *asynq.Task) error {
	var p AccrualSweepPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	date, err := common.ParseDate(p.Date, w.Location)
	if err != nil {
		return fmt.Errorf("invalid sweep date %q: %v: %w", p.Date, err, asynq.SkipRetry)
	}

	report, err := w.Accrual.Sweep(ctx, date)
	if err != nil {
		w.Log.Warn("Accrual sweep incomplete",
			zap.String("date", report.Date),
			zap.Int("failed", report.Failed),
			zap.Error(err))
		return fmt.Errorf("sweep %s: %d of %d investments failed: %w", report.Date, report.Failed, report.Total, err)
	}
	return nil
}

func NewServeMux(w *Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAccrualSweep, w.HandleAccrualSweep)
	return mux
}

func StartWorker(redisOpt asynq.RedisClientOpt, concurrency int, w *Worker) error {
	if concurrency < 1 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger: w.Log.Sugar(),
		},
	)
	return srv.Run(NewServeMux(w))
}
