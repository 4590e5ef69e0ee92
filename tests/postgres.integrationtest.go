//go:build integration

package tests

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-testfixtures/testfixtures/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khaiql/dbcleaner"
	"github.com/khaiql/dbcleaner/engine"
	"github.com/ory/dockertest/v3"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/go-arrower/bizadmin/postgres"
)

//nolint:gochecknoglobals // singleton, so all tests of a package share one database container.
var (
	muPostgres        = &sync.Mutex{}
	singletonPostgres *PostgresDocker
)

var (
	defaultPGConf = postgres.Config{ //nolint:gochecknoglobals,exhaustruct
		User:       "bizadmin",
		Password:   "secret",
		Database:   "bizadmin_test",
		Host:       "localhost",
		Port:       5432, //nolint:mnd
		MaxConns:   10,   //nolint:mnd
		Migrations: postgres.Migrations,
	}

	defaultPGRunOptions = &dockertest.RunOptions{ //nolint:gochecknoglobals,exhaustruct // only set required configuration
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=" + defaultPGConf.User,
			"POSTGRES_PASSWORD=" + defaultPGConf.Password,
			"POSTGRES_DB=" + defaultPGConf.Database,
		},
		Cmd: []string{"-c", "max_connections=1000"},
	}
)

type PostgresDocker struct {
	pg            *postgres.Handler
	cleanupDocker func() error
}

// GetPostgresDockerForIntegrationTestingInstance returns a connected and migrated database.
// Subsequent calls return the same instance. In case of an issue, it panics.
func GetPostgresDockerForIntegrationTestingInstance() *PostgresDocker {
	muPostgres.Lock()
	defer muPostgres.Unlock()

	if singletonPostgres != nil {
		return singletonPostgres
	}

	var pgHandler *postgres.Handler

	retryFunc := func(resource *dockertest.Resource) func() error {
		port, _ := strconv.Atoi(resource.GetPort("5432/tcp"))
		conf := defaultPGConf
		conf.Port = port

		return func() error {
			handler, err := postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())
			if err != nil {
				return err //nolint:wrapcheck
			}

			pgHandler = handler

			return nil
		}
	}

	options := *defaultPGRunOptions
	options.Name = fmt.Sprintf("bizadmin-testing-postgres-%d", rand.Intn(1000)) //nolint:gosec,mnd // prevent collisions only

	cleanup, err := StartDockerContainer(&options, retryFunc)
	if err != nil {
		panic(err)
	}

	singletonPostgres = &PostgresDocker{
		pg:            pgHandler,
		cleanupDocker: cleanup,
	}

	return singletonPostgres
}

const commonFixture = "testdata/fixtures/_common.yaml"

// PrepareDatabase truncates all tables and loads the given fixture files.
// If `testdata/fixtures/_common.yaml` exists, it is always loaded first.
// In case of an issue, it panics.
func (pd *PostgresDocker) PrepareDatabase(files ...string) {
	c := pd.pg.Config
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)

	cleaner := dbcleaner.New()
	cleaner.SetEngine(engine.NewPostgresEngine(dsn))

	var tables []string

	_ = pgxscan.Select(context.Background(), pd.PGx(), &tables,
		`SELECT table_schema || '.' || table_name
			FROM information_schema.tables
			WHERE table_schema IN ('crm', 'auth') AND table_type = 'BASE TABLE'`,
	)

	tables = append(tables, "public.gue_jobs")

	cleaner.Clean(tables...)
	_ = cleaner.Close()

	if _, err := os.Stat(commonFixture); errors.Is(err, nil) {
		files = append([]string{commonFixture}, files...)
	}

	if len(files) == 0 {
		return
	}

	fixtures, err := testfixtures.New(
		testfixtures.Database(pd.pg.DB),
		testfixtures.Dialect("postgres"),
		testfixtures.FilesMultiTables(files...),
		testfixtures.DangerousSkipTestDatabaseCheck(),
	)
	if err != nil {
		panic(err)
	}

	if err := fixtures.Load(); err != nil {
		panic(err)
	}
}

// Cleanup shuts the connection down and removes the container.
// It cannot be deferred in TestMain, if it exits with os.Exit(code). In case of an issue, it panics.
func (pd *PostgresDocker) Cleanup() {
	if err := pd.pg.Shutdown(context.Background()); err != nil {
		panic(err)
	}

	if err := pd.cleanupDocker(); err != nil {
		panic(err)
	}
}

func (pd *PostgresDocker) PGx() *pgxpool.Pool {
	return pd.pg.PGx
}

func (pd *PostgresDocker) Handler() *postgres.Handler {
	return pd.pg
}
