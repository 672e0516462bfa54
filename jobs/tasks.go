package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup prebuilds dashboard reports into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload selects the locales to warm. An empty list warms
// every supported locale. Bump invalidates cached reports first.
type DashboardWarmupPayload struct {
	Locales []string `json:"locales,omitempty"`
	Bump    bool     `json:"bump,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data, asynq.Queue(QueueDefault)), nil
}
