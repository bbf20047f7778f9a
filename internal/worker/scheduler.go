package worker

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"investment-service/pkg/common"
)

// StartScheduler enqueues the accrual sweep for the current day on spec,
// evaluated in loc.
func StartScheduler(spec string, loc *time.Location, client Enqueuer, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		date := common.FormatDate(time.Now(), loc)
		info, err := EnqueueSweep(client, date)
		switch {
		case errors.Is(err, ErrSweepQueued):
			log.Info("Accrual sweep already queued", zap.String("date", date))
		case err != nil:
			log.Error("Failed to enqueue accrual sweep", zap.String("date", date), zap.Error(err))
		default:
			log.Info("Accrual sweep enqueued", zap.String("date", date), zap.String("task_id", info.ID))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info("Accrual scheduler started", zap.String("schedule", spec), zap.String("timezone", loc.String()))
	return c, nil
}
