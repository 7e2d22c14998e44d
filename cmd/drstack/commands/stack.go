package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derluke/pulumi-datarobot-tests/internal/lifecycle"
)

// Up returns the command that sets the scenario run and updates the stack.
func Up(flags *globalFlags) *cobra.Command {
	var (
		run             int
		expectNoChanges bool
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Update the stack for a scenario run and print its outputs",
		Long: `Update the stack of the program in --dir for the given run.

When --stack is empty a fresh test-stack-xxxxx name is generated and printed.
With --expect-no-changes the update fails if the engine plans any change.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.stack == "" {
				flags.stack = lifecycle.NewStackName()
				fmt.Fprintf(cmd.ErrOrStderr(), "using stack %s\n", flags.stack)
			}

			stack, err := openStack(cmd.Context(), upsertStack, flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if run > 0 {
				if err := stack.SetRun(cmd.Context(), run); err != nil {
					return err
				}
			}

			outputs, err := stack.Up(cmd.Context(), expectNoChanges)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), outputs)
		},
	}

	cmd.Flags().IntVar(&run, "run", 0, "scenario run to declare (unset keeps the current config)")
	cmd.Flags().BoolVar(&expectNoChanges, "expect-no-changes", false, "fail if the update plans any change")

	return cmd
}

// Outputs returns the command that prints the stack outputs, secrets included.
func Outputs(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "Print the stack outputs as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stack, err := openStack(cmd.Context(), selectStack, flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			outputs, err := stack.Outputs(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), outputs)
		},
	}
}

// Down returns the command that destroys the stack's resources and removes the stack.
func Down(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Destroy the stack and remove it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stack, err := openStack(cmd.Context(), selectStack, flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return stack.Destroy(cmd.Context())
		},
	}
}
