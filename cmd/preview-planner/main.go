package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// Exit codes let a CI pipeline tell a bad config from a broken planner.
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
	exitPrecondition = 3
	exitCollision    = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "preview-planner",
		Short:         "Plan listener rules and placement for per-branch preview environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newPlanCmd(stdout, stderr))
	root.AddCommand(newPriorityCmd(stdout))
	return root
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var verr *domain.ValidationError
	var perr *domain.PreconditionError
	var cerr *collisionError
	switch {
	case errors.As(err, &verr):
		return exitInvalidInput
	case errors.As(err, &perr):
		return exitPrecondition
	case errors.As(err, &cerr):
		return exitCollision
	}
	return exitFailure
}
