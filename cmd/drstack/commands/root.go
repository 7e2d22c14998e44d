// Package commands defines the drstack command tree and its flag bindings.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/derluke/pulumi-datarobot-tests/internal/lifecycle"
	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot/config"
)

type globalFlags struct {
	dir     string
	stack   string
	verbose bool
}

// Root returns the root command for the drstack CLI.
func Root() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "drstack",
		Short:         "Replay DataRobot Pulumi programs and score their deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.dir, "dir", ".", "directory of the Pulumi program")
	cmd.PersistentFlags().StringVarP(&flags.stack, "stack", "s", "", "stack name")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log engine progress and debug output")

	cmd.AddCommand(Up(flags))
	cmd.AddCommand(Outputs(flags))
	cmd.AddCommand(Down(flags))
	cmd.AddCommand(Predict())

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

type stackOpener func(ctx context.Context, stackName, workDir string, opts ...lifecycle.Option) (*lifecycle.Stack, error)

// Stack openers used by the commands: up may create its stack, the others only select one.
var (
	upsertStack stackOpener = lifecycle.Open
	selectStack stackOpener = lifecycle.Select
)

// openStack opens the stack named by the flags, passing the DataRobot connection to the engine.
func openStack(ctx context.Context, open stackOpener, flags *globalFlags, stdout io.Writer) (*lifecycle.Stack, error) {
	if flags.stack == "" {
		return nil, fmt.Errorf("--stack is required")
	}

	opts := []lifecycle.Option{lifecycle.WithLogger(zap.L())}
	if flags.verbose {
		opts = append(opts, lifecycle.WithProgress(stdout))
	}

	// Credentials are optional here: the provider can read its own configuration.
	if os.Getenv("DATAROBOT_API_TOKEN") != "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		opts = append(opts, lifecycle.WithEnvVars(map[string]string{
			"DATAROBOT_ENDPOINT":  cfg.DataRobotEndpoint,
			"DATAROBOT_API_TOKEN": cfg.DataRobotAPIToken,
		}))
	}

	return open(ctx, flags.stack, flags.dir, opts...)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}

	return nil
}
