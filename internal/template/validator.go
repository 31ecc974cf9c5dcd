package template

import (
	"fmt"
	"log/slog"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// Validator checks the structural invariants of a parsed template:
// every ${role} used in a command is declared under inputs.parameters,
// every $[[id]] resolves to a declared parameter, parameter ids are
// unique, and default values match their datatype.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a Validator with the given logger.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logger.With("component", "template-validator")}
}

// Validate returns nil for a valid template, or an APIError listing every
// violated invariant.
func (v *Validator) Validate(t *model.Template) *model.APIError {
	var details []model.FieldError

	if t.Version == "" {
		details = append(details, model.FieldError{
			Field:   "workflow.version",
			Message: "version is required",
		})
	}

	if len(t.Steps) == 0 {
		details = append(details, model.FieldError{
			Field:   "workflow.specification.steps",
			Message: "at least one step is required",
		})
	}
	for i, step := range t.Steps {
		if len(step.Commands) == 0 {
			details = append(details, model.FieldError{
				Field:   fmt.Sprintf("workflow.specification.steps[%d]", i),
				Message: "step has no commands",
			})
		}
	}

	details = append(details, v.validateParameters(t)...)
	details = append(details, v.validateRoles(t)...)
	details = append(details, v.validatePlaceholders(t)...)

	if len(details) > 0 {
		v.logger.Debug("template validation failed", "violations", len(details))
		return model.NewValidationError("template validation failed", details...)
	}
	return nil
}

// validateParameters checks id uniqueness, datatype values, and defaults.
func (v *Validator) validateParameters(t *model.Template) []model.FieldError {
	var details []model.FieldError
	seen := make(map[string]bool)

	for i, p := range t.Parameters {
		field := fmt.Sprintf("parameters[%d]", i)
		if seen[p.ID] {
			details = append(details, model.FieldError{
				Field:   field,
				Message: fmt.Sprintf("duplicate parameter id '%s'", p.ID),
			})
		}
		seen[p.ID] = true

		if !model.IsValidDataType(p.Datatype) {
			details = append(details, model.FieldError{
				Field:   field,
				Message: fmt.Sprintf("unknown datatype '%s'", p.Datatype),
			})
			continue
		}

		if p.HasDefault() {
			if _, err := NewArgument(p, p.Default); err != nil {
				details = append(details, model.FieldError{
					Field:   field,
					Message: fmt.Sprintf("default value %v does not match datatype %s", p.Default, p.Datatype),
				})
			}
		}
	}
	return details
}

// validateRoles checks that every ${role} token in a step command has a
// corresponding key in inputs.parameters.
func (v *Validator) validateRoles(t *model.Template) []model.FieldError {
	var details []model.FieldError
	for i, step := range t.Steps {
		for j, cmd := range step.Commands {
			for _, role := range CommandRoles(cmd) {
				if _, ok := t.InputParameters[role]; !ok {
					details = append(details, model.FieldError{
						Field:   fmt.Sprintf("workflow.specification.steps[%d].commands[%d]", i, j),
						Message: fmt.Sprintf("command references undeclared role '%s'", role),
					})
				}
			}
		}
	}
	return details
}

// validatePlaceholders checks that every $[[id]] token anywhere in the
// workflow specification names a declared parameter.
func (v *Validator) validatePlaceholders(t *model.Template) []model.FieldError {
	var details []model.FieldError

	check := func(field string, spec any) {
		for _, id := range PlaceholderIDs(spec) {
			if t.Parameter(id) == nil {
				details = append(details, model.FieldError{
					Field:   field,
					Message: fmt.Sprintf("placeholder references undeclared parameter '%s'", id),
				})
			}
		}
	}

	check("workflow.inputs.files", t.InputFiles)
	check("workflow.inputs.parameters", t.InputParameters)
	check("workflow.outputs.files", t.OutputFiles)
	return details
}
