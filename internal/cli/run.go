package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/scailfin/benchmark-multiproc-backend/internal/engine"
	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRunCmd() *cobra.Command {
	var srcDir string
	var baseDir string
	var argPairs []string
	var argsFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run <template.yaml>",
		Short: "Execute a workflow template locally and wait for the result",
		Long: `Runs a template synchronously with the local engine. Input files and
argument values are resolved on this machine; results are printed when
the run reaches a terminal state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specFile := args[0]
			if srcDir == "" {
				srcDir = filepath.Dir(specFile)
			}

			parser := template.NewParser(logger)
			t, err := parser.ParseFile(specFile)
			if err != nil {
				return err
			}
			if apiErr := template.NewValidator(logger).Validate(t); apiErr != nil {
				printValidation(apiErr)
				return fmt.Errorf("template is invalid")
			}

			rawArgs, err := collectArguments(argPairs, argsFile)
			if err != nil {
				return err
			}
			bound, err := template.Bind(t, rawArgs)
			if err != nil {
				return err
			}

			if baseDir == "" {
				dir, err := os.MkdirTemp("", "mproc-run-")
				if err != nil {
					return fmt.Errorf("create run base dir: %w", err)
				}
				baseDir = dir
			}

			eng, err := engine.New(baseDir, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			runID, err := eng.ExecuteSync(ctx, t, srcDir, bound)
			if err != nil {
				return err
			}
			run, err := eng.State(runID)
			if err != nil {
				return err
			}
			printRun(run)
			if run.State != model.RunStateSuccess {
				return fmt.Errorf("run finished in state %s", run.State)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&srcDir, "src", "", "Template payload directory (default: template file directory)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Base directory for run workspaces (default: temporary directory)")
	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "Argument value as id=value (repeatable)")
	cmd.Flags().StringVar(&argsFile, "args-file", "", "YAML file with argument values")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Execution timeout (0 to disable)")

	return cmd
}

// collectArguments merges an arguments YAML file and --arg pairs; pairs
// take precedence.
func collectArguments(pairs []string, argsFile string) (map[string]any, error) {
	raw := make(map[string]any)

	if argsFile != "" {
		data, err := os.ReadFile(argsFile)
		if err != nil {
			return nil, fmt.Errorf("read args file: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse args file: %w", err)
		}
	}

	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --arg %q (expected id=value)", pair)
		}
		raw[id] = value
	}
	return raw, nil
}

// printRun writes a human-readable run summary to stdout.
func printRun(run *model.Run) {
	fmt.Printf("Run: %s\n", run.ID)
	fmt.Printf("  State:    %s\n", colorState(run.State))
	if run.StartedAt != nil {
		fmt.Printf("  Duration: %s\n", run.Duration().Round(time.Millisecond))
	}
	if len(run.Messages) > 0 {
		fmt.Println("  Messages:")
		for _, msg := range run.Messages {
			fmt.Printf("    %s\n", msg)
		}
	}
	if len(run.Resources) > 0 {
		fmt.Println("  Outputs:")
		for _, res := range run.Resources {
			fmt.Printf("    %s -> %s\n", res.Identifier, res.Path)
		}
	}
}

// colorState renders a run state with the conventional colors.
func colorState(state model.RunState) string {
	switch state {
	case model.RunStateSuccess:
		return color.GreenString(state.String())
	case model.RunStateError:
		return color.RedString(state.String())
	case model.RunStateCanceled:
		return color.YellowString(state.String())
	case model.RunStateRunning:
		return color.CyanString(state.String())
	default:
		return state.String()
	}
}

// printValidation writes validator details to stderr.
func printValidation(apiErr *model.APIError) {
	fmt.Fprintln(os.Stderr, color.RedString("invalid template:"))
	for _, d := range apiErr.Details {
		if d.Field != "" {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Field, d.Message)
		} else {
			fmt.Fprintf(os.Stderr, "  %s\n", d.Message)
		}
	}
}
