// Package cmd contains the command line interface of bizadmin.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-arrower/bizadmin"
)

// Setup initialises the contexts on top of the shared dependencies.
// It registers their routes and job workers before anything is started.
type Setup func(ctx context.Context, di *bizadmin.Container) error

// NewBizadminCLI returns the root command with all sub commands.
func NewBizadminCLI(setup Setup, osSignal <-chan os.Signal) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "bizadmin",
		Short: "bizadmin serves the administration of users and reference data of a business.",
		Long: `bizadmin manages the reference data of the crm, like email types or titles,
and the users allowed to log in to the administration.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file (default is ./bizadmin.config.yaml)")

	loadConfig := func() (*bizadmin.Config, error) {
		conf, err := bizadmin.LoadConfig(bizadmin.DefaultViper(), configFile)
		if err != nil {
			return nil, fmt.Errorf("could not load config: %w", err)
		}

		return conf, nil
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd(loadConfig, setup, osSignal))
	rootCmd.AddCommand(newMigrateCmd(loadConfig))

	return rootCmd
}

// Execute runs the bizadmin cli.
func Execute(setup Setup) {
	if err := NewBizadminCLI(setup, NewInterruptSignalChannel()).Execute(); err != nil {
		os.Exit(1)
	}
}
