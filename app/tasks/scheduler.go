package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type RunStatus struct {
	TaskID    string        `json:"task_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Feeds     []WrittenFeed `json:"feeds"`
	Error     string        `json:"error,omitempty"`
}

type feedsReporter interface {
	GetFeeds() []WrittenFeed
}

// Scheduler runs a task at startup and on every tick. A single worker keeps
// generation runs sequential; a tick that arrives while a run is still queued
// is dropped.
type Scheduler struct {
	newTask   func() TaskInterface
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu      sync.RWMutex
	lastRun *RunStatus
}

func NewScheduler(newTask func() TaskInterface, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		newTask:   newTask,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTask()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTask()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) LastRun() (RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastRun == nil {
		return RunStatus{}, false
	}
	return *s.lastRun, true
}

func (s *Scheduler) enqueueTask() {
	task := s.newTask()
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "feed", task.GetName(), "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	status := RunStatus{
		TaskID:    task.GetID(),
		StartedAt: task.GetStartedAt(),
		Duration:  task.GetDuration(),
	}
	if reporter, ok := task.(feedsReporter); ok {
		status.Feeds = reporter.GetFeeds()
	}
	if err != nil {
		status.Error = err.Error()
		slog.Error("Worker task execution failed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}

	s.mu.Lock()
	s.lastRun = &status
	s.mu.Unlock()
}
