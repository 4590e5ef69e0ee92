package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-arrower/bizadmin"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		Short:                 "Print the version of bizadmin",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			info := bizadmin.ReadBuildInfo()

			fmt.Fprintf(cmd.OutOrStdout(), "bizadmin %s", info.Version())

			if info.Time != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " from %s", info.Time)
			}

			fmt.Fprintf(cmd.OutOrStdout(), " (%s)\n", info.GoVersion)
		},
	}
}
