// Package postgres connects to PostgreSQL, migrates the schema,
// and offers a unit of work based on pgx transactions.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/trace"

	ctx2 "github.com/go-arrower/bizadmin/ctx"
)

// CtxTX contains a database transaction, only if set by the UnitOfWork.
const CtxTX ctx2.CTXKey = "bizadmin.tx"

// Migrations contains the schema of bizadmin.
//
//go:embed migrations/*.sql
var Migrations embed.FS

var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrMigrationFailed  = errors.New("migration failed")
)

// Config holds all values used to configure and connect to a postgres database.
type Config struct {
	// Migrations is a file system with a folder migrations in it. Use Migrations for the default schema.
	Migrations fs.FS
	User       string
	Password   string
	Database   string
	SSLMode    string
	Host       string
	Port       int
	MaxConns   int
}

func (c Config) toURL() string {
	if c.MaxConns == 0 { // prevent error: pool_max_conns too small
		c.MaxConns = 10
	}

	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database, c.SSLMode, c.MaxConns)
}

// Connect connects to a PostgreSQL database.
// Every query is traced with tracerProvider.
func Connect(ctx context.Context, pgConf Config, tracerProvider trace.TracerProvider) (*Handler, error) {
	config, err := pgxpool.ParseConfig(pgConf.toURL())
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse config: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	// to list all runtime settings: SHOW ALL;
	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "bizadmin",
		"search_path":      "public,crm,auth",
	}
	config.ConnConfig.Tracer = &pgxTraceAdapter{
		tracer: tracerProvider.Tracer("bizadmin.pgx"),
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: could not connect: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	err = dbpool.Ping(ctx)
	if err != nil {
		dbpool.Close()

		return nil, fmt.Errorf("%w: could not ping db: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	connStr := stdlib.RegisterConnConfig(config.ConnConfig) // offer std SQL for migrations and test fixtures

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		dbpool.Close()

		return nil, fmt.Errorf("%w: could not connect via the std lib registration: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return &Handler{
		PGx:    dbpool,
		DB:     db,
		Config: pgConf,
	}, nil
}

// ConnectAndMigrate connects to a PostgreSQL database and
// runs all migrations to ensure that the schema is on the latest version.
func ConnectAndMigrate(ctx context.Context, conf Config, tracerProvider trace.TracerProvider) (*Handler, error) {
	if conf.Migrations == nil {
		return nil, fmt.Errorf("%w: no migration files given", ErrMigrationFailed)
	}

	handler, err := Connect(ctx, conf, tracerProvider)
	if err != nil {
		return nil, err
	}

	err = handler.Migrate()
	if err != nil {
		_ = handler.Shutdown(ctx)

		return nil, err
	}

	return handler, nil
}

// Migrate migrates the schema up to the latest version.
func (h *Handler) Migrate() error {
	if h.Config.Migrations == nil {
		return fmt.Errorf("%w: no migration files given", ErrMigrationFailed)
	}

	fsDriver, err := iofs.New(h.Config.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%w: could not create migration file driver: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	driver, err := postgres.WithInstance(h.DB, &postgres.Config{}) //nolint:exhaustruct // use default config
	if err != nil {
		return fmt.Errorf("%w: could not get database driver: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	m, err := migrate.NewWithInstance("iofs", fsDriver, h.Config.Database, driver)
	if err != nil {
		return fmt.Errorf("%w: could not create new migration instance: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: could not migrate up: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

type Handler struct {
	PGx    *pgxpool.Pool
	DB     *sql.DB // keep a sql.DB connection around for migration & integration tests, e.g. setting up test fixtures.
	Config Config
}

// Ping reports whether the database is reachable.
func (h *Handler) Ping(ctx context.Context) error {
	if err := h.PGx.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return nil
}

// Shutdown waits & closes all connections to PostgreSQL.
func (h *Handler) Shutdown(_ context.Context) error {
	h.PGx.Close()

	if err := h.DB.Close(); err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}

	return nil
}
