// Package lifecycle drives the scenario programs through the Pulumi engine with
// the Automation API: one stack per test, one update per run, outputs compared
// between runs.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"go.uber.org/zap"

	"github.com/derluke/pulumi-datarobot-tests/internal/scenarios"
)

// RunConfigKey is the stack config key scenario programs read their run from.
const RunConfigKey = "run"

type stackOptions struct {
	logger   *zap.Logger
	envVars  map[string]string
	progress io.Writer
}

// Option configures a Stack.
type Option func(*stackOptions)

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *stackOptions) {
		o.logger = logger
	}
}

// WithEnvVars adds environment variables to every engine operation.
func WithEnvVars(envVars map[string]string) Option {
	return func(o *stackOptions) {
		for k, v := range envVars {
			o.envVars[k] = v
		}
	}
}

// WithProgress streams engine output to w.
func WithProgress(w io.Writer) Option {
	return func(o *stackOptions) {
		o.progress = w
	}
}

// Stack is a Pulumi stack of a local Go program.
type Stack struct {
	stack    auto.Stack
	logger   *zap.Logger
	progress io.Writer
}

// NewStackName returns a fresh stack name of the form test-stack-xxxxx.
func NewStackName() string {
	return "test-stack-" + uuid.NewString()[:5]
}

// ErrStackNotFound is returned by Select when the stack does not exist.
var ErrStackNotFound = errors.New("stack not found")

type stackLoader func(ctx context.Context, stackName, workDir string, opts ...auto.LocalWorkspaceOption) (auto.Stack, error)

// Open creates or selects the stack of the program in workDir.
func Open(ctx context.Context, stackName, workDir string, opts ...Option) (*Stack, error) {
	return load(ctx, auto.UpsertStackLocalSource, stackName, workDir, opts...)
}

// Select opens an existing stack of the program in workDir. It never creates one.
func Select(ctx context.Context, stackName, workDir string, opts ...Option) (*Stack, error) {
	stack, err := load(ctx, auto.SelectStackLocalSource, stackName, workDir, opts...)
	if err != nil && auto.IsSelectStack404Error(err) {
		return nil, fmt.Errorf("%w: %s in %s", ErrStackNotFound, stackName, workDir)
	}

	return stack, err
}

func load(ctx context.Context, loader stackLoader, stackName, workDir string, opts ...Option) (*Stack, error) {
	options := &stackOptions{
		logger:   zap.NewNop(),
		envVars:  map[string]string{},
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(options)
	}

	var workspaceOpts []auto.LocalWorkspaceOption
	if len(options.envVars) > 0 {
		workspaceOpts = append(workspaceOpts, auto.EnvVars(options.envVars))
	}

	stack, err := loader(ctx, stackName, workDir, workspaceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open stack %s in %s: %w", stackName, workDir, err)
	}
	options.logger.Info("stack ready", zap.String("stack", stackName), zap.String("dir", workDir))

	return &Stack{
		stack:    stack,
		logger:   options.logger.With(zap.String("stack", stackName)),
		progress: options.progress,
	}, nil
}

// Name returns the stack name.
func (s *Stack) Name() string {
	return s.stack.Name()
}

// SetRun selects the scenario run the next update declares.
func (s *Stack) SetRun(ctx context.Context, run int) error {
	err := s.stack.SetConfig(ctx, RunConfigKey, auto.ConfigValue{Value: strconv.Itoa(run)})
	if err != nil {
		return fmt.Errorf("failed to set run %d: %w", run, err)
	}

	return nil
}

// Up updates the stack. With expectNoChanges the update fails when any change is planned.
func (s *Stack) Up(ctx context.Context, expectNoChanges bool) (map[string]string, error) {
	opts := []optup.Option{optup.ProgressStreams(s.progress)}
	if expectNoChanges {
		opts = append(opts, optup.ExpectNoChanges())
	}

	result, err := s.stack.Up(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("pulumi up failed for %s: %w", s.Name(), err)
	}
	s.logger.Info("stack updated",
		zap.String("result", result.Summary.Result),
		zap.Any("changes", result.Summary.ResourceChanges))

	return StringOutputs(result.Outputs), nil
}

// Outputs returns the stack outputs with secrets in plain text.
func (s *Stack) Outputs(ctx context.Context) (map[string]string, error) {
	outputs, err := s.stack.Outputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs of %s: %w", s.Name(), err)
	}

	return StringOutputs(outputs), nil
}

// Destroy deletes every resource of the stack, then the stack itself.
func (s *Stack) Destroy(ctx context.Context) error {
	_, err := s.stack.Destroy(ctx, optdestroy.ProgressStreams(s.progress))
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", s.Name(), err)
	}

	err = s.stack.Workspace().RemoveStack(ctx, s.Name())
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", s.Name(), err)
	}
	s.logger.Info("stack removed")

	return nil
}

// Replay runs every step in order and checks each run's outputs against the previous run.
// check, when set, is called with the outputs of every run.
func (s *Stack) Replay(ctx context.Context, steps []scenarios.Step, check func(step scenarios.Step, outputs map[string]string) error) error {
	var previous map[string]string

	for _, step := range steps {
		s.logger.Info("running scenario step", zap.Int("run", step.Run), zap.Bool("expect_no_changes", step.ExpectNoChanges))

		if err := s.SetRun(ctx, step.Run); err != nil {
			return err
		}
		if _, err := s.Up(ctx, step.ExpectNoChanges); err != nil {
			return fmt.Errorf("run %d: %w", step.Run, err)
		}
		outputs, err := s.Outputs(ctx)
		if err != nil {
			return err
		}

		if previous != nil {
			if err := scenarios.CompareOutputs(step, previous, outputs); err != nil {
				return err
			}
		}
		if check != nil {
			if err := check(step, outputs); err != nil {
				return fmt.Errorf("run %d: %w", step.Run, err)
			}
		}
		previous = outputs
	}

	return nil
}

// StringOutputs renders stack outputs as strings.
func StringOutputs(outputs auto.OutputMap) map[string]string {
	values := make(map[string]string, len(outputs))
	for key, output := range outputs {
		switch v := output.Value.(type) {
		case string:
			values[key] = v
		case nil:
			values[key] = ""
		default:
			values[key] = fmt.Sprint(v)
		}
	}

	return values
}
