package service

import (
	"context"
	"encoding/json"
	"log"

	"tarefas/internal/cache"
	"tarefas/internal/model"
)

// TaskService resolves a user's publication targets and merges task
// listings across them.
type TaskService struct {
	client  Upstream
	targets cache.TargetCache
}

// NewTaskService creates a new task listing service
func NewTaskService(client Upstream) *TaskService {
	return &TaskService{client: client}
}

// SetTargetCache attaches an optional publication-target cache
func (s *TaskService) SetTargetCache(c cache.TargetCache) {
	s.targets = c
}

// ListTasks fetches the user's rooms, derives publication targets and
// queries the todo endpoint once per target. A room fetch failure aborts;
// a single target's listing failure is logged and skipped. Results are
// concatenated without deduplication.
func (s *TaskService) ListTasks(ctx context.Context, token string, filter model.TaskFilter) ([]json.RawMessage, error) {
	targets, err := s.resolveTargets(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		log.Printf("[Tasks] no rooms found for user")
		return []json.RawMessage{}, nil
	}

	tasks := []json.RawMessage{}
	for _, target := range targets {
		found, err := s.client.ListTasks(ctx, token, target, filter)
		if err != nil {
			log.Printf("[Tasks] listing failed for target %q: %v", target, err)
			continue
		}
		tasks = append(tasks, found...)
	}
	return tasks, nil
}

func (s *TaskService) resolveTargets(ctx context.Context, token string) ([]string, error) {
	if s.targets != nil {
		cached, err := s.targets.Get(ctx, token)
		if err != nil {
			log.Printf("[Tasks] target cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	rooms, err := s.client.FetchRooms(ctx, token)
	if err != nil {
		return nil, err
	}
	targets := model.Targets(rooms)

	if s.targets != nil && len(targets) > 0 {
		if err := s.targets.Set(ctx, token, targets); err != nil {
			log.Printf("[Tasks] target cache write failed: %v", err)
		}
	}
	return targets, nil
}
