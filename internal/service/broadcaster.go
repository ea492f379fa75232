package service

import "tarefas/internal/model"

// Broadcaster pushes batch progress events to observers (avoids import cycle)
type Broadcaster interface {
	TaskDone(batchID string, outcome model.TaskOutcome)
	BatchDone(batchID string, outcomes []model.TaskOutcome)
}
