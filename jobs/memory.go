package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/repository"
)

// NewMemoryQueue returns a Queue keeping all Jobs in memory.
// Nothing is persisted, use it for local development and demos only.
// A failed Job is put back at the end of the queue.
func NewMemoryQueue(logger alog.Logger, opts ...QueueOpt) *MemoryQueue {
	conf := newQueueConfig(opts)

	return &MemoryQueue{
		logger:       logger,
		pollInterval: conf.pollInterval,
		jobs:         []any{},
		workers:      map[string]JobFunc{},
		cron: cron.New(cron.WithParser(
			cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		)),
		cancel: func() {},
	}
}

type MemoryQueue struct { //nolint:govet // fields are grouped by meaning
	logger       alog.Logger
	pollInterval time.Duration

	mu      sync.Mutex
	jobs    []any
	workers map[string]JobFunc
	started bool
	wg      sync.WaitGroup

	cron   *cron.Cron
	cancel context.CancelFunc
}

var _ Queue = (*MemoryQueue)(nil)

// Enqueue takes part in a repository.MemoryUnitOfWork started in ctx,
// so the jobs are only queued once the unit of work saves its changes.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job, _ ...JobOpt) error {
	all, err := flattenJobs(job)
	if err != nil {
		return err
	}

	return repository.Stage(ctx, func() error { //nolint:wrapcheck // the change never fails
		q.mu.Lock()
		defer q.mu.Unlock()

		q.jobs = append(q.jobs, all...)

		return nil
	})
}

// Pending returns the number of jobs waiting to be processed.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.jobs)
}

func (q *MemoryQueue) Schedule(spec string, job Job) error {
	all, err := flattenJobs(job)
	if err != nil || len(all) != 1 {
		return fmt.Errorf("%w: only a single job can be scheduled", ErrScheduleFailed)
	}

	_, err = q.cron.AddFunc(spec, func() {
		_ = q.Enqueue(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScheduleFailed, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (q *MemoryQueue) RegisterJobFunc(jf JobFunc) error {
	param, err := jobFuncParam(jf)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	jobType := jobTypeOf(param)
	if _, exists := q.workers[jobType]; exists {
		return fmt.Errorf("%w: job type %s already registered", ErrInvalidJobFunc, jobType)
	}

	q.workers[jobType] = jf

	return nil
}

func (q *MemoryQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.started = true

	q.wg.Add(1)

	go func() {
		defer q.wg.Done()

		ticker := time.NewTicker(q.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				q.processNext(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	q.cron.Start()

	return nil
}

func (q *MemoryQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.cancel()
	q.started = false
	q.mu.Unlock()

	stopped := q.cron.Stop()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		<-stopped.Done()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}

// processNext runs the first Job that has a registered JobFunc.
// It returns false if there was none.
func (q *MemoryQueue) processNext(ctx context.Context) bool {
	q.mu.Lock()

	var (
		job any
		jf  JobFunc
	)

	for i, j := range q.jobs {
		if w, ok := q.workers[jobTypeOf(reflect.TypeOf(j))]; ok {
			job, jf = j, w
			q.jobs = append(q.jobs[:i:i], q.jobs[i+1:]...)

			break
		}
	}

	q.mu.Unlock()

	if jf == nil {
		return false
	}

	if err := callJobFunc(ctx, jf, reflect.ValueOf(job)); err != nil {
		q.logger.InfoContext(ctx, "job failed",
			slog.String("job_type", jobTypeOf(reflect.TypeOf(job))),
			alog.Error(err),
		)

		q.mu.Lock()
		q.jobs = append(q.jobs, job)
		q.mu.Unlock()
	}

	return true
}
