// Package template parses, validates, and instantiates workflow template
// documents. A template is a YAML document with top-level keys `workflow`
// (the parameterized specification) and `parameters` (the declarations).
package template

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
	"gopkg.in/yaml.v3"
)

// Parser converts raw template YAML into typed domain models.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser with the given logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger.With("component", "template-parser")}
}

// ParseFile reads and parses a template document from disk.
func (p *Parser) ParseFile(path string) (*model.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse parses a template document into a model.Template. Structural
// invariants beyond basic shape are checked by the Validator, not here.
func (p *Parser) Parse(data []byte) (*model.Template, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	workflow, ok := raw["workflow"].(map[string]any)
	if !ok {
		return nil, &model.InvalidTemplateError{Reason: "missing 'workflow' section"}
	}

	t := &model.Template{
		Version:         stringField(workflow, "version"),
		InputParameters: make(map[string]any),
	}

	// workflow.inputs
	if inputs, ok := workflow["inputs"].(map[string]any); ok {
		files, err := stringList(inputs["files"])
		if err != nil {
			return nil, fmt.Errorf("inputs.files: %w", err)
		}
		t.InputFiles = files
		if params, ok := inputs["parameters"].(map[string]any); ok {
			t.InputParameters = params
		}
	}

	// workflow.workflow.specification.steps
	if spec, ok := workflow["workflow"].(map[string]any); ok {
		t.WorkflowType = stringField(spec, "type")
		if inner, ok := spec["specification"].(map[string]any); ok {
			steps, err := parseSteps(inner["steps"])
			if err != nil {
				return nil, err
			}
			t.Steps = steps
		}
	}

	// workflow.outputs
	if outputs, ok := workflow["outputs"].(map[string]any); ok {
		files, err := stringList(outputs["files"])
		if err != nil {
			return nil, fmt.Errorf("outputs.files: %w", err)
		}
		t.OutputFiles = files
	}

	params, err := parseParameters(raw["parameters"])
	if err != nil {
		return nil, err
	}
	t.Parameters = params

	p.logger.Debug("parsed template",
		"version", t.Version,
		"steps", len(t.Steps),
		"parameters", len(t.Parameters),
	)
	return t, nil
}

// parseParameters parses the top-level parameters list, preserving
// document order unless explicit index values are given.
func parseParameters(v any) ([]*model.Parameter, error) {
	if v == nil {
		return nil, nil
	}
	entries, ok := v.([]any)
	if !ok {
		return nil, &model.InvalidTemplateError{Reason: fmt.Sprintf("parameters: expected list, got %T", v)}
	}

	params := make([]*model.Parameter, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &model.InvalidTemplateError{Reason: fmt.Sprintf("parameters[%d]: expected map, got %T", i, entry)}
		}
		param := &model.Parameter{
			ID:       stringField(m, "id"),
			Name:     stringField(m, "name"),
			Datatype: stringField(m, "datatype"),
			Default:  m["defaultValue"],
			Required: true,
			Index:    i,
		}
		if param.ID == "" {
			return nil, &model.InvalidTemplateError{Reason: fmt.Sprintf("parameters[%d]: missing id", i)}
		}
		if req, ok := m["required"].(bool); ok {
			param.Required = req
		}
		if idx, ok := intField(m, "index"); ok {
			param.Index = idx
		}
		if as, ok := m["as"].(string); ok {
			param.As = as
		}
		params = append(params, param)
	}

	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Index < params[j].Index
	})
	return params, nil
}

// parseSteps parses the workflow.workflow.specification.steps list.
func parseSteps(v any) ([]model.Step, error) {
	if v == nil {
		return nil, nil
	}
	entries, ok := v.([]any)
	if !ok {
		return nil, &model.InvalidTemplateError{Reason: fmt.Sprintf("steps: expected list, got %T", v)}
	}

	steps := make([]model.Step, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &model.InvalidTemplateError{Reason: fmt.Sprintf("steps[%d]: expected map, got %T", i, entry)}
		}
		commands, err := stringList(m["commands"])
		if err != nil {
			return nil, fmt.Errorf("steps[%d].commands: %w", i, err)
		}
		steps = append(steps, model.Step{
			Environment: stringField(m, "environment"),
			Commands:    commands,
		})
	}
	return steps, nil
}

// stringField returns the string value for key, or "" if absent or not a string.
func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// intField returns the int value for key. YAML integers decode as int.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// stringList converts a YAML list to []string, stringifying scalars.
func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	entries, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	result := make([]string, 0, len(entries))
	for i, entry := range entries {
		switch e := entry.(type) {
		case string:
			result = append(result, e)
		case int, int64, float64, bool:
			result = append(result, fmt.Sprintf("%v", e))
		default:
			return nil, fmt.Errorf("entry %d: expected scalar, got %T", i, entry)
		}
	}
	return result, nil
}
