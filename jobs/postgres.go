package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vgarvardt/gue/v5"
	"github.com/vgarvardt/gue/v5/adapter/pgxv5"
	"github.com/vgarvardt/gueron/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/postgres"
)

// NewPostgresQueue returns a Queue persisting Jobs in the gue_jobs table.
func NewPostgresQueue(
	logger alog.Logger,
	meterProvider metric.MeterProvider,
	traceProvider trace.TracerProvider,
	pgxPool *pgxpool.Pool,
	opts ...QueueOpt,
) (*PostgresQueue, error) {
	conf := newQueueConfig(opts)

	gueLogger := &gueLogAdapter{l: logger}
	meter := meterProvider.Meter("bizadmin.jobs")
	tracer := traceProvider.Tracer("bizadmin.jobs")
	poolAdapter := pgxv5.NewConnPool(pgxPool)

	client, err := gue.NewClient(poolAdapter,
		gue.WithClientID(conf.queue),
		gue.WithClientLogger(gueLogger),
		gue.WithClientMeter(meter),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create gue client: %w", err)
	}

	scheduler, err := gueron.NewScheduler(poolAdapter,
		gueron.WithQueueName(conf.queue),
		gueron.WithHorizon(time.Hour),
		gueron.WithLogger(gueLogger),
		gueron.WithMeter(meter),
		gueron.WithPollInterval(conf.pollInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create cron scheduler: %w", err)
	}

	return &PostgresQueue{
		logger:     logger,
		gueLogger:  gueLogger,
		meter:      meter,
		tracer:     tracer,
		propagator: propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
		conf:       conf,
		client:     client,
		scheduler:  scheduler,
		workMap:    gue.WorkMap{},
	}, nil
}

type PostgresQueue struct { //nolint:govet // fields are grouped by meaning
	logger     alog.Logger
	gueLogger  *gueLogAdapter
	meter      metric.Meter
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	conf      queueConfig
	client    *gue.Client
	scheduler *gueron.Scheduler

	mu      sync.Mutex
	workMap gue.WorkMap
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

var _ Queue = (*PostgresQueue)(nil)

func (q *PostgresQueue) Enqueue(ctx context.Context, job Job, opts ...JobOpt) error {
	ctx, span := q.tracer.Start(ctx, "enqueue")
	defer span.End()

	all, err := flattenJobs(job)
	if err != nil {
		return err
	}

	carrier := propagation.MapCarrier{}
	q.propagator.Inject(ctx, carrier)

	conf := newJobConfig(opts)
	gueJobs := make([]*gue.Job, 0, len(all))

	for _, j := range all {
		args, err := marshalPayload(j, carrier)
		if err != nil {
			return err
		}

		gueJobs = append(gueJobs, &gue.Job{ //nolint:exhaustruct // gue sets the rest
			Queue:    q.conf.queue,
			Type:     jobTypeOf(reflect.TypeOf(j)),
			Priority: gue.JobPriority(conf.priority),
			RunAt:    conf.runAt,
			Args:     args,
		})
	}

	if tx, ok := ctx.Value(postgres.CtxTX).(pgx.Tx); ok {
		if err := q.client.EnqueueBatchTx(ctx, gueJobs, pgxv5.NewTx(tx)); err != nil {
			return fmt.Errorf("%w: %v", ErrEnqueueFailed, err) //nolint:errorlint // prevent err in api
		}

		return nil
	}

	if err := q.client.EnqueueBatch(ctx, gueJobs); err != nil {
		return fmt.Errorf("%w: %v", ErrEnqueueFailed, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (q *PostgresQueue) Schedule(spec string, job Job) error {
	all, err := flattenJobs(job)
	if err != nil || len(all) != 1 {
		return fmt.Errorf("%w: only a single job can be scheduled", ErrScheduleFailed)
	}

	args, err := marshalPayload(job, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScheduleFailed, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, err := q.scheduler.Add(spec, jobTypeOf(reflect.TypeOf(job)), args); err != nil {
		return fmt.Errorf("%w: %v", ErrScheduleFailed, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (q *PostgresQueue) RegisterJobFunc(jf JobFunc) error {
	param, err := jobFuncParam(jf)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return fmt.Errorf("%w: register all JobFuncs before Start", ErrAlreadyStarted)
	}

	jobType := jobTypeOf(param)
	if _, exists := q.workMap[jobType]; exists {
		return fmt.Errorf("%w: job type %s already registered", ErrInvalidJobFunc, jobType)
	}

	q.workMap[jobType] = q.workFunc(jf, param)

	return nil
}

func (q *PostgresQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return ErrAlreadyStarted
	}

	const panicStackBufSize = 4 * 1024

	workers, err := gue.NewWorkerPool(q.client, q.workMap, q.conf.poolSize,
		gue.WithPoolQueue(q.conf.queue),
		gue.WithPoolPollInterval(q.conf.pollInterval),
		gue.WithPoolID(q.conf.queue),
		gue.WithPoolLogger(q.gueLogger),
		gue.WithPoolMeter(q.meter),
		gue.WithPoolTracer(q.tracer),
		gue.WithPoolPanicStackBufSize(panicStackBufSize),
		gue.WithPoolHooksJobDone(q.logFailedJob),
	)
	if err != nil {
		return fmt.Errorf("could not create gue worker pool: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := workers.Run(gctx); err != nil {
			return fmt.Errorf("gue workers failed: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		// zero: the scheduler only enqueues, the workers above process
		if err := q.scheduler.Run(gctx, q.workMap, 0); err != nil {
			return fmt.Errorf("gueron scheduler failed: %w", err)
		}

		return nil
	})

	q.cancel = cancel
	q.group = group
	q.started = true

	q.logger.Log(ctx, alog.LevelInfo, "jobs started",
		slog.String("queue", q.conf.queue), slog.Int("workers", q.conf.poolSize))

	return nil
}

func (q *PostgresQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return nil
	}

	q.cancel()

	done := make(chan error, 1)
	go func() { done <- q.group.Wait() }()

	select {
	case err := <-done:
		q.started = false

		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}

// workFunc adapts jf to gue. The transaction of the gue Job is put into the context,
// so repositories used by jf take part in it. A failing jf rolls back to a savepoint,
// so the Job's error count is still persisted.
func (q *PostgresQueue) workFunc(jf JobFunc, param reflect.Type) gue.WorkFunc {
	return func(ctx context.Context, job *gue.Job) error {
		var p payload
		if err := json.Unmarshal(job.Args, &p); err != nil {
			return fmt.Errorf("%w: could not unmarshal payload: %v", ErrJobFuncFailed, err) //nolint:errorlint,lll // prevent err in api
		}

		data := reflect.New(param)
		if err := json.Unmarshal(p.JobData, data.Interface()); err != nil {
			return fmt.Errorf("%w: could not unmarshal job %s: %v", ErrJobFuncFailed, job.Type, err) //nolint:errorlint,lll // prevent err in api
		}

		tx, ok := pgxv5.UnwrapTx(job.Tx())
		if !ok {
			return fmt.Errorf("%w: could not unwrap gue job tx", ErrJobFuncFailed)
		}

		ctx = q.propagator.Extract(ctx, propagation.MapCarrier(p.Carrier))

		ctx, span := q.tracer.Start(ctx, "job: "+job.Type)
		defer span.End()

		span.SetAttributes(
			attribute.String("job_id", job.ID.String()),
			attribute.String("queue", job.Queue),
			attribute.Int("priority", int(job.Priority)),
			attribute.Int("run_count", int(job.ErrorCount)),
		)

		ctx = alog.AddAttr(ctx, slog.String("job_id", job.ID.String()))
		ctx = context.WithValue(ctx, CtxJobID, job.ID.String())
		ctx = context.WithValue(ctx, postgres.CtxTX, tx)

		if _, err := tx.Exec(ctx, `SAVEPOINT before_job`); err != nil {
			return fmt.Errorf("%w: could not create savepoint: %v", ErrJobFuncFailed, err) //nolint:errorlint,lll // prevent err in api
		}

		if err := callJobFunc(ctx, jf, data.Elem()); err != nil {
			span.SetStatus(codes.Error, err.Error())

			if _, rerr := tx.Exec(ctx, `ROLLBACK TO SAVEPOINT before_job`); rerr != nil {
				return fmt.Errorf("%w: could not roll back to savepoint: %v", ErrJobFuncFailed, rerr) //nolint:errorlint,lll // prevent err in api
			}

			return err
		}

		if _, err := tx.Exec(ctx, `RELEASE SAVEPOINT before_job`); err != nil {
			return fmt.Errorf("%w: could not release savepoint: %v", ErrJobFuncFailed, err) //nolint:errorlint,lll // prevent err in api
		}

		return nil
	}
}

func (q *PostgresQueue) logFailedJob(ctx context.Context, job *gue.Job, err error) {
	if err == nil {
		return
	}

	q.logger.InfoContext(ctx, "job failed",
		slog.String("job_id", job.ID.String()),
		slog.String("job_type", job.Type),
		slog.Int("run_count", int(job.ErrorCount)+1),
		alog.Error(err),
	)
}

func marshalPayload(job any, carrier map[string]string) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("%w: could not marshal job: %v", ErrEnqueueFailed, err) //nolint:errorlint // prevent err in api
	}

	args, err := json.Marshal(payload{JobData: data, Carrier: carrier})
	if err != nil {
		return nil, fmt.Errorf("%w: could not marshal payload: %v", ErrEnqueueFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return args, nil
}
