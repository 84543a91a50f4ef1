package tasks

import (
	"encoding/json"

	"ruach/models"

	"github.com/hibiken/asynq"
)

const TypeHistorySync = "history:sync"

// NewHistorySyncTask wraps one trimmed conversation log for the background
// sync worker.
func NewHistorySyncTask(payload models.HistorySyncPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeHistorySync, b), nil
}

// Enqueuer pushes history-sync tasks onto the queue. It satisfies the
// assistant engine's HistorySyncer.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) Enqueue(payload models.HistorySyncPayload) error {
	task, err := NewHistorySyncTask(payload)
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task, asynq.MaxRetry(3))
	return err
}
