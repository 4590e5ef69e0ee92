package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/go-arrower/bizadmin"
	"github.com/go-arrower/bizadmin/postgres"
)

var ErrMigrationNotPossible = errors.New("migration not possible")

const shutdownTimeout = 15 * time.Second

// NewInterruptSignalChannel returns a channel listening for os.Signals bizadmin shuts down on.
func NewInterruptSignalChannel() chan os.Signal {
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

	return osSignal
}

func newServeCmd(loadConfig func() (*bizadmin.Config, error), setup Setup, osSignal <-chan os.Signal) *cobra.Command {
	return &cobra.Command{
		Use:                   "serve",
		Short:                 "Start the web server and process jobs until interrupted",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			di, err := bizadmin.InitialiseDefaultDependencies(ctx, conf)
			if err != nil {
				return fmt.Errorf("could not initialise dependencies: %w", err)
			}

			if setup != nil {
				if err = setup(ctx, di); err != nil {
					_ = shutdown(ctx, di)

					return fmt.Errorf("could not initialise contexts: %w", err)
				}
			}

			if err = di.Start(ctx); err != nil {
				_ = shutdown(ctx, di)

				return fmt.Errorf("could not start: %w", err)
			}

			printBanner(cmd, conf)

			<-osSignal

			color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "shutting down...")
			cancel()

			return shutdown(cmd.Context(), di)
		},
	}
}

func shutdown(ctx context.Context, di *bizadmin.Container) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := di.Shutdown(ctx); err != nil {
		return fmt.Errorf("could not shut down gracefully: %w", err)
	}

	return nil
}

func printBanner(cmd *cobra.Command, conf *bizadmin.Config) {
	blue := color.New(color.FgBlue, color.Bold).FprintfFunc()
	faint := color.New(color.Faint).FprintfFunc()

	blue(cmd.OutOrStdout(), "bizadmin %s\n", bizadmin.ReadBuildInfo().Version())
	faint(cmd.OutOrStdout(), "environment: %s, storage: %s, cache: %s, mail: %s\n",
		conf.Environment, conf.Storage.Driver, conf.Cache.Driver, conf.Mail.Driver)
	blue(cmd.OutOrStdout(), "listening on :%d\n", conf.HTTP.Port)

	if conf.HTTP.StatusEndpointEnabled {
		faint(cmd.OutOrStdout(), "status on :%d/status\n", conf.HTTP.StatusEndpointPort)
	}
}

func newMigrateCmd(loadConfig func() (*bizadmin.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:                   "migrate",
		Short:                 "Migrate the postgres schema to the latest version and exit",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}

			if conf.Storage.Driver != bizadmin.DriverPostgres {
				return fmt.Errorf("%w: storage driver is %s", ErrMigrationNotPossible, conf.Storage.Driver)
			}

			pg, err := postgres.ConnectAndMigrate(cmd.Context(), postgres.Config{
				User:       conf.Postgres.User,
				Password:   conf.Postgres.Password.Secret(),
				Database:   conf.Postgres.Database,
				Host:       conf.Postgres.Host,
				Port:       conf.Postgres.Port,
				SSLMode:    conf.Postgres.SSLMode,
				MaxConns:   conf.Postgres.MaxConns,
				Migrations: postgres.Migrations,
			}, noop.NewTracerProvider())
			if err != nil {
				return fmt.Errorf("could not migrate: %w", err)
			}

			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "database migrated")

			return pg.Shutdown(cmd.Context())
		},
	}
}
