package cmd

import (
	"bytes"
	"sync"
	"testing"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // a command must not be executed by two tests at the same time.
var executing sync.Mutex

// TestExecute runs command with args and returns everything it printed to its out and err writers.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	executing.Lock()
	defer executing.Unlock()

	var out bytes.Buffer

	command.SetOut(&out)
	command.SetErr(&out)
	command.SetArgs(args)

	_, err := command.ExecuteC()

	return out.String(), err //nolint:wrapcheck // return the error of the command as is
}
