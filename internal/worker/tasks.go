package worker

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeAccrualSweep = "accrual:sweep"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ErrSweepQueued is returned when a sweep for the same day is already
// pending or running.
var ErrSweepQueued = errors.New("accrual sweep already queued for this date")

type AccrualSweepPayload struct {
	Date string `json:"date"` // YYYY-MM-DD in the accrual time zone
}

// NewAccrualSweepTask builds the daily sweep task. The task id is derived
// from the date so a second enqueue for the same day is rejected while the
// first is still queued or running.
func NewAccrualSweepTask(date string) (*asynq.Task, error) {
	data, err := json.Marshal(AccrualSweepPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAccrualSweep, data,
		asynq.TaskID(TypeAccrualSweep+":"+date),
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Hour),
	), nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func EnqueueSweep(client Enqueuer, date string) (*asynq.TaskInfo, error) {
	task, err := NewAccrualSweepTask(date)
	if err != nil {
		return nil, err
	}
	info, err := client.Enqueue(task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil, ErrSweepQueued
	}
	return info, err
}
