package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/spf13/cobra"
)

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params <template.yaml>",
		Short: "List the declared parameters of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := template.NewParser(logger).ParseFile(args[0])
			if err != nil {
				return err
			}
			if len(t.Parameters) == 0 {
				fmt.Println("no parameters declared")
				return nil
			}
			for _, p := range t.Parameters {
				line := fmt.Sprintf("%-16s %-8s", p.ID, p.Datatype)
				if p.Name != "" {
					line += " " + p.Name
				}
				if p.HasDefault() {
					line += fmt.Sprintf(" (default %v)", p.Default)
				} else if p.Required {
					line += " " + color.YellowString("(required)")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
