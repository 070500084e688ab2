package execution

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtp/internal/domain"
)

const helperEnv = "DTP_HELPER_PROCESS"

// TestHelperProcess is not a real test; it stands in for a harness when re-executed by the tests below
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	switch os.Getenv("DTP_HELPER_MODE") {
	case "report":
		fmt.Println("harness debug output")
		fmt.Print(passingReport)
		os.Exit(0)
	case "crash":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(3)
	case "hang":
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperCommand(mode string) Command {
	return Command{
		Name: os.Args[0],
		Args: []string{"-test.run=^TestHelperProcess$", "--"},
		Env:  []string{helperEnv + "=1", "DTP_HELPER_MODE=" + mode},
	}
}

func TestExecRunner_Run(t *testing.T) {
	runner := NewExecRunner()

	t.Run("captures stdout", func(t *testing.T) {
		result, err := runner.Run(t.Context(), helperCommand("report"))
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Equal(t, "harness debug output\n"+passingReport, result.Stdout)
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		result, err := runner.Run(t.Context(), helperCommand("crash"))
		require.NoError(t, err)
		assert.Equal(t, 3, result.ExitCode)
		assert.Equal(t, "boom\n", result.Stderr)
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := runner.Run(t.Context(), Command{Name: "dtp-definitely-missing-binary"})
		assert.Error(t, err)
	})

	t.Run("cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
		defer cancel()
		result, err := runner.Run(ctx, helperCommand("hang"))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, -1, result.ExitCode)
	})
}

func TestRunner_RunRealProcess(t *testing.T) {
	t.Setenv(helperEnv, "1")
	t.Setenv("DTP_HELPER_MODE", "report")

	runner, logs := newObservedRunner(NewExecRunner())
	outcome := runner.Run(t.Context(), domain.EnvironmentSpec{
		Environment: domain.EnvironmentHeadless,
		Binary:      os.Args[0],
		Harness:     "-test.run=^TestHelperProcess$",
		Target:      "--",
	})

	require.False(t, outcome.HardFailure(), "unexpected failure: %v", outcome.Err)
	assert.True(t, outcome.Passed())
	assert.Equal(t, 1, logs.FilterMessage("harness debug output").Len())
}
