// Package jobs runs background work outside of a request, e.g. sending notifications
// or pruning expired data.
//
// A Job is a plain struct carrying the payload. A JobFunc processes all Jobs of one type.
// The PostgresQueue persists Jobs with gue, so Jobs enqueued inside a transaction
// are only visible to the workers after that transaction is committed.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	ctx2 "github.com/go-arrower/bizadmin/ctx"
)

// CtxJobID contains the ID of the Job currently processed.
const CtxJobID ctx2.CTXKey = "bizadmin.jobs"

var (
	ErrInvalidJobFunc  = errors.New("invalid JobFunc")
	ErrEnqueueFailed   = errors.New("enqueue failed")
	ErrInvalidJobType  = fmt.Errorf("%w: invalid job type", ErrEnqueueFailed)
	ErrScheduleFailed  = errors.New("schedule failed")
	ErrJobFuncFailed   = errors.New("job failed")
	ErrAlreadyStarted  = errors.New("queue already started")
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Enqueuer allows new Jobs to be enqueued.
type Enqueuer interface {
	// Enqueue persists one Job or a slice of Jobs.
	// If ctx carries a postgres.CtxTX, that transaction is used.
	Enqueue(ctx context.Context, job Job, opts ...JobOpt) error
}

type Queue interface {
	Enqueuer

	// Schedule enqueues job repeatedly, following the cron spec, e.g. "@hourly".
	Schedule(spec string, job Job) error

	// RegisterJobFunc registers the worker for the Job type of its second parameter.
	// All JobFuncs have to be registered before Start.
	RegisterJobFunc(jf JobFunc) error

	// Start processes Jobs until Shutdown is called.
	Start(ctx context.Context) error

	// Shutdown blocks until all started Jobs are finished or ctx is done.
	Shutdown(ctx context.Context) error
}

type (
	// Job is a named struct, or a slice of them, carrying the payload between
	// the code enqueueing it and the JobFunc processing it.
	// If it implements JobType, that is used as its type, otherwise the struct name.
	Job any

	JobType interface {
		JobType() string
	}

	// JobFunc has the signature: func(ctx context.Context, job J) error, with J a struct.
	JobFunc any
)

// JobOpt changes how a single Job is processed.
type JobOpt func(*jobConfig)

type jobConfig struct {
	runAt    time.Time
	priority int16
}

// WithPriority sets the priority of a Job. The default is 0, a lower number means a higher priority.
func WithPriority(priority int16) JobOpt {
	return func(c *jobConfig) {
		c.priority = priority
	}
}

// WithRunAt delays a Job, it is not processed before runAt.
func WithRunAt(runAt time.Time) JobOpt {
	return func(c *jobConfig) {
		c.runAt = runAt
	}
}

func newJobConfig(opts []JobOpt) jobConfig {
	conf := jobConfig{}

	for _, opt := range opts {
		opt(&conf)
	}

	return conf
}

// QueueOpt configures a Queue.
type QueueOpt func(*queueConfig)

type queueConfig struct {
	queue        string
	pollInterval time.Duration
	poolSize     int
}

// WithQueue sets the name of the queue, so multiple applications can share one table.
func WithQueue(queue string) QueueOpt {
	return func(c *queueConfig) {
		c.queue = queue
	}
}

// WithPollInterval sets how often workers look for new Jobs.
func WithPollInterval(d time.Duration) QueueOpt {
	return func(c *queueConfig) {
		c.pollInterval = d
	}
}

// WithPoolSize sets the number of workers.
func WithPoolSize(n int) QueueOpt {
	return func(c *queueConfig) {
		c.poolSize = n
	}
}

func newQueueConfig(opts []QueueOpt) queueConfig {
	const (
		defaultPollInterval = 5 * time.Second
		defaultPoolSize     = 5
	)

	conf := queueConfig{
		queue:        "bizadmin",
		pollInterval: defaultPollInterval,
		poolSize:     defaultPoolSize,
	}

	for _, opt := range opts {
		opt(&conf)
	}

	return conf
}

// payload is the persisted form of a Job.
// Carrier transports the trace of the enqueueing request to the worker.
type payload struct {
	JobData json.RawMessage   `json:"jobData"`
	Carrier map[string]string `json:"carrier,omitempty"`
}

var jobTypeInterface = reflect.TypeOf((*JobType)(nil)).Elem()

func jobTypeOf(t reflect.Type) string {
	if t.Implements(jobTypeInterface) {
		if jt, ok := reflect.Zero(t).Interface().(JobType); ok {
			return jt.JobType()
		}
	}

	return t.Name()
}

// flattenJobs returns the individual Jobs of job.
// Valid are a named struct or a non-empty slice of them.
func flattenJobs(job Job) ([]any, error) {
	if job == nil {
		return nil, ErrInvalidJobType
	}

	val := reflect.ValueOf(job)

	switch val.Kind() { //nolint:exhaustive // all other kinds are invalid
	case reflect.Struct:
		if val.Type().Name() == "" {
			return nil, ErrInvalidJobType
		}

		return []any{job}, nil
	case reflect.Slice:
		if val.Len() == 0 {
			return nil, ErrInvalidJobType
		}

		all := make([]any, 0, val.Len())

		for i := range val.Len() {
			elem := val.Index(i)
			if elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}

			if elem.Kind() != reflect.Struct || elem.Type().Name() == "" {
				return nil, ErrInvalidJobType
			}

			all = append(all, elem.Interface())
		}

		return all, nil
	default:
		return nil, ErrInvalidJobType
	}
}

// jobFuncParam validates jf and returns the type of Job it processes.
func jobFuncParam(jf JobFunc) (reflect.Type, error) {
	if jf == nil {
		return nil, ErrInvalidJobFunc
	}

	fn := reflect.TypeOf(jf)
	if fn.Kind() != reflect.Func || fn.NumIn() != 2 || fn.NumOut() != 1 {
		return nil, fmt.Errorf("%w: signature has to be func(context.Context, Job) error", ErrInvalidJobFunc)
	}

	ctxType := reflect.TypeOf((*context.Context)(nil)).Elem()
	errType := reflect.TypeOf((*error)(nil)).Elem()

	if fn.In(0) != ctxType || fn.Out(0) != errType {
		return nil, fmt.Errorf("%w: signature has to be func(context.Context, Job) error", ErrInvalidJobFunc)
	}

	if fn.In(1).Kind() != reflect.Struct || fn.In(1).Name() == "" {
		return nil, fmt.Errorf("%w: job has to be a named struct", ErrInvalidJobFunc)
	}

	return fn.In(1), nil
}

// callJobFunc calls jf with job, which has to be of jf's Job type.
func callJobFunc(ctx context.Context, jf JobFunc, job reflect.Value) error {
	out := reflect.ValueOf(jf).Call([]reflect.Value{reflect.ValueOf(ctx), job})

	if err, ok := out[0].Interface().(error); ok && err != nil {
		return fmt.Errorf("%w: %w", ErrJobFuncFailed, err)
	}

	return nil
}
