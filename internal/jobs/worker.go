package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/allforone/afo-portal/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan namedJob
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
	closeOnce     sync.Once
	closed        bool
	closedMu      sync.RWMutex
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// queueSize bounds the jobs waiting for a free processor.
const queueSize = 100

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, queueSize),
		maxConcurrent: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. When the queue is
// full the job runs on the caller's goroutine.
func (w *Worker) Enqueue(name string, job Job) {
	w.closedMu.RLock()
	defer w.closedMu.RUnlock()
	if w.closed {
		logger.Warn("worker stopped, dropping job", "job", name)
		return
	}

	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("worker queue full, running job synchronously", "job", name)
		w.run("sync", name, job)
	}
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(fmt.Sprintf("worker-%d", workerID), job.name, job.run)
		}
	}
}

// ScheduleEveryImmediate enqueues a job once at startup, then at fixed
// intervals. Runs go through the pool queue like any other job.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Enqueue(name, job)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.Enqueue(name, job)
			}
		}
	}()
}

// run executes one job, recording stats and recovering panics.
func (w *Worker) run(runner, name string, job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panic", "runner", runner, "job", name, "panic", fmt.Sprint(r))
			w.trackJobFailure()
		}
	}()

	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error("job failed", "runner", runner, "job", name, "error", err)
		w.trackJobFailure()
		return
	}
	logger.Debug("job completed", "runner", runner, "job", name, "duration", time.Since(start))
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.closedMu.Lock()
		w.closed = true
		w.closedMu.Unlock()

		w.cancel()
		close(w.queue)
	})
	w.wg.Wait()
}

// GetStats returns the current worker statistics. CompletedJobs counts every
// finished job; FailedJobs is the failed subset.
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
