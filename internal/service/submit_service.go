package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"tarefas/internal/model"
)

// SubmitService fetches a task, synthesizes its answers, waits out a
// randomized human-pacing delay and posts the submission. Batches fan out
// over a bounded worker pool.
type SubmitService struct {
	client  Upstream
	answers *AnswerService
	hub     Broadcaster

	workerCap int

	// secondUnit is the wall-clock length of one pacing second.
	// time.Second in production; tests shrink it.
	secondUnit time.Duration
}

// NewSubmitService creates a new submission service. workerCap bounds the
// number of in-flight submissions per batch.
func NewSubmitService(client Upstream, answers *AnswerService, workerCap int) *SubmitService {
	if workerCap < 1 {
		workerCap = 1
	}
	return &SubmitService{
		client:     client,
		answers:    answers,
		workerCap:  workerCap,
		secondUnit: time.Second,
	}
}

// SetBroadcaster attaches an optional progress observer
func (s *SubmitService) SetBroadcaster(b Broadcaster) {
	s.hub = b
}

// ProcessTask runs one submission end to end and always returns an
// outcome, success or failure; nothing propagates past this boundary.
func (s *SubmitService) ProcessTask(ctx context.Context, token string, ref model.TaskRef, pacing model.Pacing) (outcome model.TaskOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Submit] recovered processing task %s: %v", ref.ID, r)
			outcome = model.TaskOutcome{Message: fmt.Sprint(r), TaskID: ref.ID}
		}
	}()

	taskID := ref.ID.String()
	if taskID == "" {
		return model.TaskOutcome{Message: "task reference has no id"}
	}

	task, err := s.client.GetTask(ctx, token, taskID)
	if err != nil {
		return failureOutcome(ref.ID, err)
	}

	payload := model.SubmissionPayload{
		Answers: make(map[string]model.QuestionAnswer),
		Final:   !pacing.IsDraft,
		Status:  model.StatusSubmitted,
	}
	if pacing.IsDraft {
		payload.Status = model.StatusDraft
	}
	for _, q := range task.Questions {
		if q.Type == model.QuestionInfo {
			continue
		}
		qa := s.answers.Synthesize(q)
		payload.Answers[qa.QuestionID.String()] = qa
	}

	// Deliberate pacing, not backoff: simulates the time a student would
	// spend on the task before the submission lands.
	delay := pacingSeconds(pacing)
	log.Printf("[Submit] processing task %s (sleeping %ds)", taskID, delay)
	time.Sleep(time.Duration(delay) * s.secondUnit)

	result, err := s.client.SubmitAnswers(ctx, token, taskID, payload)
	if err != nil {
		return failureOutcome(ref.ID, err)
	}

	return model.TaskOutcome{
		Success:        true,
		Message:        "submitted",
		TaskID:         ref.ID,
		Result:         result,
		ProcessingTime: delay,
	}
}

// CompleteBatch runs ProcessTask over every reference using a worker pool
// sized min(cap, len(refs)). Outcomes arrive in completion order; each is
// self-identifying via its task_id. Individual failures never abort the
// batch, and the aggregate returns only once every worker has finished.
func (s *SubmitService) CompleteBatch(ctx context.Context, token string, refs []model.TaskRef, pacing model.Pacing) []model.TaskOutcome {
	batchID := "batch_" + uuid.New().String()[:8]
	workers := s.workerCap
	if workers > len(refs) {
		workers = len(refs)
	}
	if workers < 1 {
		workers = 1
	}
	log.Printf("[Submit] %s: %d tasks, %d workers", batchID, len(refs), workers)

	sem := make(chan struct{}, workers)
	done := make(chan model.TaskOutcome, len(refs))
	var wg sync.WaitGroup

	for _, ref := range refs {
		wg.Add(1)
		go func(ref model.TaskRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := s.ProcessTask(ctx, token, ref, pacing)
			if s.hub != nil {
				s.hub.TaskDone(batchID, outcome)
			}
			done <- outcome
		}(ref)
	}

	wg.Wait()
	close(done)

	outcomes := make([]model.TaskOutcome, 0, len(refs))
	for outcome := range done {
		outcomes = append(outcomes, outcome)
	}

	if s.hub != nil {
		s.hub.BatchDone(batchID, outcomes)
	}
	log.Printf("[Submit] %s: finished %d tasks", batchID, len(outcomes))
	return outcomes
}

// pacingSeconds draws a uniform delay between the minute bounds, each
// coerced to at least one minute.
func pacingSeconds(p model.Pacing) int {
	secMin := max(1, p.TimeMin) * 60
	secMax := max(1, p.TimeMax) * 60
	if secMax < secMin {
		secMax = secMin
	}
	return secMin + rand.Intn(secMax-secMin+1)
}

func failureOutcome(id model.FlexID, err error) model.TaskOutcome {
	msg := err.Error()
	var ue *UpstreamError
	if errors.As(err, &ue) {
		msg = fmt.Sprintf("HTTP error: %d", ue.Status)
	}
	return model.TaskOutcome{Message: msg, TaskID: id}
}
