// Package bizadmin contains the infrastructure shared by all contexts of the business administration:
// configuration, observability, database, cache, mail, jobs, and the web router.
package bizadmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/cache"
	"github.com/go-arrower/bizadmin/jobs"
	"github.com/go-arrower/bizadmin/mail"
	"github.com/go-arrower/bizadmin/postgres"
	"github.com/go-arrower/bizadmin/repository"
)

var ErrMissingDependency = errors.New("missing dependency")

// Container holds global dependencies that can be used within each Context, to make initialisation easier.
type Container struct {
	Logger        *slog.Logger
	MeterProvider *metric.MeterProvider
	TraceProvider *trace.TracerProvider

	Config *Config
	// PGx is nil, unless the storage driver is postgres.
	PGx *pgxpool.Pool
	db  *postgres.Handler

	// UnitOfWork matches the storage driver, so all repositories of a context take part in it.
	UnitOfWork app.Transactor
	// MemoryStore persists the memory repositories, if a storage dir is configured.
	MemoryStore repository.Store

	Validate *validator.Validate
	Cache    app.Cache
	redis    *redis.Client

	Mailer    mail.Sender
	Templates *mail.Templates
	Queue     jobs.Queue

	WebRouter *echo.Echo
	APIRouter *echo.Group

	statusEndpoint *http.Server
	startedAt      time.Time
}

func (c *Container) EnsureAllDependenciesPresent() error {
	if c.Config == nil {
		return fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	if c.Logger == nil || c.WebRouter == nil || c.Queue == nil || c.UnitOfWork == nil {
		return fmt.Errorf("%w: container is not initialised", ErrMissingDependency)
	}

	if c.Config.Storage.Driver == DriverPostgres && c.PGx == nil {
		return fmt.Errorf("%w: postgres storage without a connection", ErrMissingDependency)
	}

	return nil
}

// UsesPostgres reports if the contexts keep their data in postgres.
func (c *Container) UsesPostgres() bool {
	return c.PGx != nil
}

// MemoryRepositoryOptions configures the memory repositories of all contexts alike.
func (c *Container) MemoryRepositoryOptions() []repository.Option {
	if c.MemoryStore == nil {
		return nil
	}

	return []repository.Option{repository.WithStore(c.MemoryStore)}
}

// InitialiseDefaultDependencies connects to all infrastructure the configuration asks for.
// On error, everything already started is shut down again.
func InitialiseDefaultDependencies(ctx context.Context, conf *Config) (*Container, error) { //nolint:funlen,gocyclo,cyclop,lll // dependency injection is long but also straight forward.
	if conf == nil {
		return nil, fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	dc := &Container{
		Config:    conf,
		Validate:  validator.New(validator.WithRequiredStructEnabled()),
		startedAt: time.Now(),
	}

	fail := func(err error) (*Container, error) {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_ = dc.Shutdown(shutdownCtx)

		return nil, err
	}

	{ // observability
		resource := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(fmt.Sprintf("%s.%s", conf.OrganisationName, conf.ApplicationName)),
			attribute.String("environment", string(conf.Environment)),
			attribute.String("instance_name", conf.InstanceName),
		)

		{ // traces
			opts := []otlptracegrpc.Option{
				otlptracegrpc.WithEndpoint(fmt.Sprintf("%s:%d", conf.OTEL.Host, conf.OTEL.Port)),
				otlptracegrpc.WithInsecure(),
			}

			if conf.Environment == TestEnv {
				// no collector runs while testing, so a shutdown would block until its ctx expires.
				opts = append(opts, otlptracegrpc.WithTimeout(10*time.Millisecond))
			}

			traceExporter, err := otlptracegrpc.New(ctx, opts...)
			if err != nil {
				return fail(fmt.Errorf("could not connect to trace exporter: %w", err))
			}

			traceProvider := trace.NewTracerProvider(
				trace.WithBatcher(traceExporter),
				trace.WithResource(resource),
				trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(0.6))),
			)
			if conf.Environment == LocalEnv {
				traceProvider = trace.NewTracerProvider(
					trace.WithBatcher(traceExporter),
					trace.WithResource(resource),
					trace.WithSampler(trace.AlwaysSample()),
				)
			}

			dc.TraceProvider = traceProvider
			otel.SetTracerProvider(traceProvider)
		}

		{ // metrics
			exporter, err := prometheus.New()
			if err != nil {
				return fail(fmt.Errorf("could not create prometheus exporter: %w", err))
			}

			meterProvider := metric.NewMeterProvider(
				metric.WithResource(resource),
				metric.WithReader(exporter),
			)

			dc.MeterProvider = meterProvider
			otel.SetMeterProvider(meterProvider)
		}
	}

	{ // logger
		var logger *slog.Logger
		if conf.Debug() {
			logger = alog.NewDevelopment()
		} else {
			logger = alog.New()
		}

		logger = logger.With(
			slog.String("organisation_name", conf.OrganisationName),
			slog.String("application_name", conf.ApplicationName),
			slog.String("instance_name", conf.InstanceName),
			slog.String("version", ReadBuildInfo().Version()),
			slog.String("environment", string(conf.Environment)),
		)

		dc.Logger = logger
		slog.SetDefault(logger)
	}

	if conf.Storage.Driver == DriverPostgres { // postgres
		pg, err := postgres.ConnectAndMigrate(ctx, postgres.Config{
			User:       conf.Postgres.User,
			Password:   conf.Postgres.Password.Secret(),
			Database:   conf.Postgres.Database,
			Host:       conf.Postgres.Host,
			Port:       conf.Postgres.Port,
			SSLMode:    conf.Postgres.SSLMode,
			MaxConns:   conf.Postgres.MaxConns,
			Migrations: postgres.Migrations,
		}, dc.TraceProvider)
		if err != nil {
			return fail(fmt.Errorf("could not connect to postgres: %w", err))
		}

		dc.db = pg
		dc.PGx = pg.PGx
		dc.UnitOfWork = postgres.NewUnitOfWork(pg.PGx)
	} else {
		dc.UnitOfWork = repository.NewMemoryUnitOfWork()

		if conf.Storage.Dir != "" {
			store, err := repository.NewJSONStore(conf.Storage.Dir)
			if err != nil {
				return fail(fmt.Errorf("could not open storage dir: %w", err))
			}

			dc.MemoryStore = store
		}
	}

	{ // cache
		switch conf.Cache.Driver {
		case DriverRedis:
			dc.redis = redis.NewClient(&redis.Options{
				Addr:     conf.Redis.Address,
				Password: conf.Redis.Password.Secret(),
				DB:       conf.Redis.DB,
			})

			c := cache.NewRedis(dc.redis, conf.ApplicationName, conf.Cache.TTL)
			if err := c.Ping(ctx); err != nil {
				return fail(fmt.Errorf("could not connect to redis: %w", err))
			}

			dc.Cache = c
		default:
			dc.Cache = cache.NewLRU(conf.Cache.Size, conf.Cache.TTL)
		}
	}

	{ // mail
		from := mail.From{Address: conf.Mail.FromAddress, Name: conf.Mail.FromName}

		switch conf.Mail.Driver {
		case DriverSES:
			sender, err := mail.NewSESSender(ctx, from, conf.Mail.SESRegion, conf.Mail.SESKeyID, conf.Mail.SESSecret.Secret())
			if err != nil {
				return fail(fmt.Errorf("could not connect to ses: %w", err))
			}

			dc.Mailer = sender
		default:
			dc.Mailer = mail.NewLogSender(dc.Logger, from)
		}

		templates, err := mail.NewTemplates()
		if err != nil {
			return fail(fmt.Errorf("could not load mail templates: %w", err))
		}

		dc.Templates = templates
	}

	{ // jobs
		opts := []jobs.QueueOpt{
			jobs.WithQueue(conf.Jobs.Queue),
			jobs.WithPollInterval(conf.Jobs.PollInterval),
			jobs.WithPoolSize(conf.Jobs.PoolSize),
		}

		if dc.PGx != nil {
			queue, err := jobs.NewPostgresQueue(dc.Logger, dc.MeterProvider, dc.TraceProvider, dc.PGx, opts...)
			if err != nil {
				return fail(fmt.Errorf("could not create job queue: %w", err))
			}

			dc.Queue = queue
		} else {
			dc.Queue = jobs.NewMemoryQueue(dc.Logger, opts...)
		}
	}

	{ // web routers
		router := echo.New()
		router.HideBanner = true
		router.HidePort = true
		router.Logger.SetOutput(io.Discard)
		router.Debug = conf.Debug()
		router.Validator = &CustomValidator{validator: dc.Validate}
		router.IPExtractor = echo.ExtractIPFromXFFHeader()

		router.Use(middleware.Recover())
		router.Use(otelecho.Middleware(conf.OTEL.Hostname, otelecho.WithTracerProvider(dc.TraceProvider)))
		router.Use(echoprometheus.NewMiddleware(conf.ApplicationName))
		router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TargetHeader: echo.HeaderXRequestID,
			RequestIDHandler: func(c echo.Context, rid string) {
				c.SetRequest(c.Request().WithContext(alog.AddAttr(
					c.Request().Context(),
					slog.String("request_id", rid)),
				))
			},
		}))
		router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: conf.HTTP.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))

		dc.WebRouter = router
		dc.APIRouter = router.Group("/api")
	}

	return dc, nil
}

// Start serves the web router, the status endpoint and processes jobs.
// It returns once everything is started, serve errors are logged.
func (c *Container) Start(ctx context.Context) error {
	if err := c.EnsureAllDependenciesPresent(); err != nil {
		return err
	}

	c.Logger.LogAttrs(ctx, alog.LevelInfo, "starting all servers",
		slog.Int("port", c.Config.HTTP.Port),
		slog.String("storage", c.Config.Storage.Driver),
	)

	if err := c.Queue.Start(ctx); err != nil {
		return fmt.Errorf("could not start job queue: %w", err)
	}

	if c.Config.HTTP.StatusEndpointEnabled {
		c.statusEndpoint = serveStatus(ctx, c)
	}

	go func() {
		err := c.WebRouter.Start(fmt.Sprintf(":%d", c.Config.HTTP.Port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.LogAttrs(ctx, alog.LevelInfo, "could not serve http", alog.Error(err))
		}
	}()

	return nil
}

// Shutdown stops all servers and closes all connections. It is safe to call on a partially initialised Container.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Logger != nil {
		c.Logger.LogAttrs(ctx, alog.LevelInfo, "shutting down all servers")
	}

	var errs []error

	if c.WebRouter != nil {
		errs = append(errs, c.WebRouter.Shutdown(ctx))
	}

	if c.statusEndpoint != nil {
		errs = append(errs, c.statusEndpoint.Shutdown(ctx))
	}

	if c.Queue != nil {
		errs = append(errs, c.Queue.Shutdown(ctx))
	}

	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}

	if c.db != nil {
		errs = append(errs, c.db.Shutdown(ctx))
	}

	if c.TraceProvider != nil {
		_ = c.TraceProvider.Shutdown(ctx) // fails while no collector is running
	}

	if c.MeterProvider != nil {
		errs = append(errs, c.MeterProvider.Shutdown(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	return nil
}

// serveStatus serves /status and /metrics on their own port, so they are not exposed with the api.
func serveStatus(ctx context.Context, di *Container) *http.Server {
	const (
		metricPath = "/metrics"
		statusPath = "/status"
	)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.Logger.SetOutput(io.Discard)

	router.GET(metricPath, echoprometheus.NewHandler())
	router.GET(statusPath, StatusHandler(di))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", di.Config.HTTP.StatusEndpointPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	di.Logger.InfoContext(ctx, "serving status endpoint",
		slog.String("addr", srv.Addr),
		slog.String("metric_path", metricPath),
		slog.String("status_path", statusPath),
	)

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			di.Logger.DebugContext(ctx, "error serving http", slog.String("err", err.Error()))
		}
	}()

	return srv
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err //nolint:wrapcheck // return the original validate error to not break the API for the caller.
	}

	return nil
}
