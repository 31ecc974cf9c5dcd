package cli

import (
	"encoding/json"
	"fmt"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage templates registered with the server",
	}
	cmd.AddCommand(newTemplatesListCmd(), newTemplatesAddCmd(), newTemplatesDeleteCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/templates/")
			if err != nil {
				return fmt.Errorf("list templates: %w", err)
			}

			var templates []model.Template
			if err := json.Unmarshal(resp.Data, &templates); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			if len(templates) == 0 {
				fmt.Println("no templates registered")
				return nil
			}
			for _, t := range templates {
				fmt.Printf("%s  %-20s version %s, %d steps\n", t.ID, t.Name, t.Version, len(t.Steps))
			}
			return nil
		},
	}
}

func newTemplatesAddCmd() *cobra.Command {
	var name string
	var specFile string

	cmd := &cobra.Command{
		Use:   "add <src-dir>",
		Short: "Register a template from a payload directory on the server host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/templates/", map[string]any{
				"name":      name,
				"src_dir":   args[0],
				"spec_file": specFile,
			})
			if err != nil {
				return fmt.Errorf("add template: %w", err)
			}

			var t model.Template
			if err := json.Unmarshal(resp.Data, &t); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("template added: %s (%s)\n", t.ID, t.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Template name (default: payload directory name)")
	cmd.Flags().StringVar(&specFile, "spec", "", "Specification file (default: template.yaml in the payload)")
	return cmd
}

func newTemplatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template_id>",
		Short: "Delete a registered template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/templates/" + args[0]); err != nil {
				return fmt.Errorf("delete template: %w", err)
			}
			fmt.Printf("template deleted: %s\n", args[0])
			return nil
		},
	}
}
