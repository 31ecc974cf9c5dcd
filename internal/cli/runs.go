package cli

import (
	"encoding/json"
	"fmt"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage workflow runs on the server",
	}
	cmd.AddCommand(newRunsStartCmd(), newRunsStatusCmd(), newRunsCancelCmd())
	return cmd
}

func newRunsStartCmd() *cobra.Command {
	var argPairs []string
	var argsFile string

	cmd := &cobra.Command{
		Use:   "start <template_id>",
		Short: "Start a run of a registered template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := collectArguments(argPairs, argsFile)
			if err != nil {
				return err
			}

			resp, err := client.Post("/api/v1/runs/", map[string]any{
				"template_id": args[0],
				"arguments":   raw,
			})
			if err != nil {
				return fmt.Errorf("start run: %w", err)
			}

			var run model.Run
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("run started: %s (%s)\n", run.ID, colorState(run.State))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "Argument value as id=value (repeatable)")
	cmd.Flags().StringVar(&argsFile, "args-file", "", "YAML file with argument values")
	return cmd
}

func newRunsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <run_id>",
		Short: "Check the state of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/runs/" + args[0])
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}

			var run model.Run
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			printRun(&run)
			return nil
		},
	}
}

func newRunsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <run_id>",
		Short: "Cancel a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/runs/" + args[0]); err != nil {
				return fmt.Errorf("cancel run: %w", err)
			}
			fmt.Printf("run canceled: %s\n", args[0])
			return nil
		},
	}
}
