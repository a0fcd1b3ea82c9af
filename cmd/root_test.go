package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"lcovfilter.dev/pkg/lcovfilter/internal/domain"
	domainmocks "lcovfilter.dev/pkg/lcovfilter/internal/domain/mocks"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// newTestRootCmd builds a fresh command tree so flag bindings from earlier
// tests do not leak into viper.
func newTestRootCmd() *cobra.Command {
	cmd := newRootCmd()
	cmd.AddCommand(newRunCmd(), newScanCmd(), newInitCmd(), newVersionCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd
}

// executeWithLog runs cmd with the log redirected into a temp dir.
func executeWithLog(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()

	cmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "test.log")))

	return cmd.Execute()
}

func swapWorkflow(t *testing.T) *domainmocks.MockWorkflow {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	return mockWorkflow
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "lcovfilter", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup(rootFlagName))
	assert.NotNil(t, cmd.PersistentFlags().Lookup(verboseFlagName))
	assert.NotNil(t, cmd.PersistentFlags().Lookup(logFileFlagName))
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := newTestRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)

	cmd.SetArgs([]string{"--help"})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "lcov.filtered.info")
}

func TestInit(t *testing.T) {
	assert.NotNil(t, ui)
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, summaryStore)
	assert.NotNil(t, workflow)
	assert.NoError(t, workflowErr)
}

func TestRootCmd_FiltersWithDefaults(t *testing.T) {
	mockWorkflow := swapWorkflow(t)
	cmd := newTestRootCmd()

	mockWorkflow.On("Filter", mock.Anything, domain.FilterArgs{
		Root:   m.Path(defaultRoot),
		Input:  m.Path(defaultInput),
		Output: m.Path(defaultOutput),
	}).Return(nil)

	require.NoError(t, executeWithLog(t, cmd))
}

func TestRootCmd_RootFlag(t *testing.T) {
	mockWorkflow := swapWorkflow(t)
	cmd := newTestRootCmd()

	mockWorkflow.On("Filter", mock.Anything, mock.MatchedBy(func(args domain.FilterArgs) bool {
		return args.Root == m.Path("crates") && !args.DryRun
	})).Return(nil)

	require.NoError(t, executeWithLog(t, cmd, "-r", "crates"))
}

func TestRootCmd_PropagatesWorkflowError(t *testing.T) {
	mockWorkflow := swapWorkflow(t)
	cmd := newTestRootCmd()
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)

	mockWorkflow.On("Filter", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: lcov.info", domain.ErrInputNotFound))

	err := executeWithLog(t, cmd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInputNotFound))
	assert.Contains(t, stderr.String(), "input report not found")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	swapWorkflow(t)
	cmd := newTestRootCmd()

	err := executeWithLog(t, cmd, "lcov.info")
	require.Error(t, err)
}

func TestRootCmd_InvalidRules(t *testing.T) {
	swapWorkflow(t)

	originalErr := workflowErr
	t.Cleanup(func() { workflowErr = originalErr })

	viper.Set(rulesFunctionDefKey, `^\s*fn\s+\w+`)
	t.Cleanup(func() { viper.Set(rulesFunctionDefKey, m.DefaultFunctionDef) })

	_, workflowErr = newWorkflow(ui)
	require.Error(t, workflowErr)
	assert.True(t, errors.Is(workflowErr, domain.ErrInvalidRules))

	err := executeWithLog(t, newTestRootCmd())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRules))
}

func TestExecute(t *testing.T) {
	// Save original rootCmd
	originalRootCmd := rootCmd

	// Create a mock command that succeeds
	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})
	mockCmd.SetArgs([]string{})

	rootCmd = mockCmd

	// Execute should not panic or exit
	Execute()

	// Restore
	rootCmd = originalRootCmd
}

func TestExecute_ProcessLevel_Success(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS") == "1" {
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(_ *cobra.Command, _ []string) error {
				fmt.Println("success")
				return nil
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		mockCmd.SetArgs([]string{})
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Success")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS=1")
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, string(output), "success")
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(_ *cobra.Command, _ []string) error {
				fmt.Fprintln(os.Stderr, "error occurred")
				return fmt.Errorf("command failed")
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		mockCmd.SetArgs([]string{})
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute() // This should call os.Exit(1)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	output, err := cmd.CombinedOutput()

	require.Error(t, err)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		assert.Equal(t, 1, exitErr.ExitCode())
	} else {
		assert.Fail(t, "expected exec.ExitError", "got %T", err)
	}

	assert.Contains(t, string(output), "error occurred")
}
