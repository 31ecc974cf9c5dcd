package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template.yaml>",
		Short: "Check a template document against the format invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := template.NewParser(logger).ParseFile(args[0])
			if err != nil {
				return err
			}
			if apiErr := template.NewValidator(logger).Validate(t); apiErr != nil {
				printValidation(apiErr)
				return fmt.Errorf("template is invalid")
			}
			fmt.Printf("%s %s (version %s, %d steps, %d parameters)\n",
				color.GreenString("valid:"), args[0], t.Version, len(t.Steps), len(t.Parameters))
			return nil
		},
	}
}
