package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/irgordon/kari-preview/internal/core/domain"
	"github.com/irgordon/kari-preview/internal/core/services"
)

func newPriorityCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <previewId>",
		Short: "Print the listener rule priorities a preview ID maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Same trimming and rejection as the normalizer, so this agrees with plan.
			id := strings.TrimSpace(args[0])
			switch {
			case id == "":
				return &domain.ValidationError{Problems: []domain.FieldProblem{
					{Field: domain.KeyPreviewID, Reason: "is required"},
				}}
			case !utf8.ValidString(id):
				return &domain.ValidationError{Problems: []domain.FieldProblem{
					{Field: domain.KeyPreviewID, Reason: "must be valid UTF-8"},
				}}
			}

			base := services.AllocatePriority(id)
			_, err := fmt.Fprintf(stdout, "frontend %d\nbackend  %d\n", base, services.BackendPriority(base))
			return err
		},
	}
}
