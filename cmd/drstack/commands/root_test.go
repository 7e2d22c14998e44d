package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derluke/pulumi-datarobot-tests/internal/lifecycle"
)

func TestRoot_Subcommands(t *testing.T) {
	t.Parallel()

	cmd := Root()
	assert.Equal(t, "drstack", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "outputs", "down", "predict"}, names)

	for _, flag := range []string{"dir", "stack", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "persistent flag %s", flag)
	}
}

func TestUp_Flags(t *testing.T) {
	t.Parallel()

	cmd := Up(&globalFlags{})
	require.NotNil(t, cmd.Flags().Lookup("run"))
	require.NotNil(t, cmd.Flags().Lookup("expect-no-changes"))
	assert.Equal(t, "0", cmd.Flags().Lookup("run").DefValue)
}

func TestPredict_RequiredFlags(t *testing.T) {
	t.Parallel()

	cmd := Root()
	cmd.SetArgs([]string{"predict"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deployment-id")
}

func TestOutputs_RequiresStack(t *testing.T) {
	t.Parallel()

	cmd := Root()
	cmd.SetArgs([]string{"outputs", "--dir", t.TempDir()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--stack is required")
}

func TestReadRecords(t *testing.T) {
	t.Parallel()

	records, err := readRecords(strings.NewReader(`[{"a": 1, "b": 2, "c": 3}]`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"a": float64(1), "b": float64(2), "c": float64(3)}}, records)

	_, err = readRecords(strings.NewReader(`[]`))
	assert.Error(t, err)

	_, err = readRecords(strings.NewReader(`{"a": 1}`))
	assert.Error(t, err)
}

func TestReadRecordsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a": 1}]`), 0o600))

	records, err := readRecordsFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = readRecordsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

//nolint:paralleltest // Replaces the package stack openers
func TestStackCommands_OpenerSelection(t *testing.T) {
	t.Setenv("DATAROBOT_API_TOKEN", "")

	errStop := errors.New("stop after open")
	tests := []struct {
		args       []string
		wantUpsert bool
	}{
		{args: []string{"up", "--stack", "dev"}, wantUpsert: true},
		{args: []string{"outputs", "--stack", "dev"}},
		{args: []string{"down", "--stack", "dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			var upserted, selected []string
			restoreUpsert, restoreSelect := upsertStack, selectStack
			defer func() { upsertStack, selectStack = restoreUpsert, restoreSelect }()

			upsertStack = func(_ context.Context, stackName, _ string, _ ...lifecycle.Option) (*lifecycle.Stack, error) {
				upserted = append(upserted, stackName)

				return nil, errStop
			}
			selectStack = func(_ context.Context, stackName, _ string, _ ...lifecycle.Option) (*lifecycle.Stack, error) {
				selected = append(selected, stackName)

				return nil, errStop
			}

			cmd := Root()
			cmd.SetArgs(append(tt.args, "--dir", t.TempDir()))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			require.ErrorIs(t, err, errStop)
			if tt.wantUpsert {
				assert.Equal(t, []string{"dev"}, upserted)
				assert.Empty(t, selected)
			} else {
				assert.Empty(t, upserted, "%s must not create a stack", tt.args[0])
				assert.Equal(t, []string{"dev"}, selected)
			}
		})
	}
}
