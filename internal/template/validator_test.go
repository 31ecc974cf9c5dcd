package template

import (
	"strings"
	"testing"

	"github.com/scailfin/benchmark-multiproc-backend/internal/logging"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

func testValidator() *Validator {
	return NewValidator(logging.Discard())
}

func validTemplate() *model.Template {
	return &model.Template{
		Version:    "0.3.0",
		InputFiles: []string{"$[[names]]"},
		InputParameters: map[string]any{
			"inputfile":  "$[[names]]",
			"outputfile": "results/out.txt",
		},
		Steps: []model.Step{
			{Environment: "sh:posix", Commands: []string{`cat "${inputfile}" > "${outputfile}"`}},
		},
		OutputFiles: []string{"results/out.txt"},
		Parameters: []*model.Parameter{
			{ID: "names", Datatype: model.DataTypeFile, Required: true},
		},
	}
}

func assertViolation(t *testing.T, apiErr *model.APIError, substr string) {
	t.Helper()
	if apiErr == nil {
		t.Fatalf("expected validation error mentioning %q", substr)
	}
	for _, d := range apiErr.Details {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("no violation mentioning %q in %v", substr, apiErr.Details)
}

func TestValidate_OK(t *testing.T) {
	if err := testValidator().Validate(validTemplate()); err != nil {
		t.Fatalf("expected valid template, got %v", err)
	}
	for _, name := range []string{"template.yaml", "multi-step-template.yaml"} {
		if err := testValidator().Validate(mustParse(t, name)); err != nil {
			t.Errorf("%s: expected valid, got %v", name, err)
		}
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Version = ""
	assertViolation(t, testValidator().Validate(tmpl), "version is required")
}

func TestValidate_NoSteps(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Steps = nil
	assertViolation(t, testValidator().Validate(tmpl), "at least one step")
}

func TestValidate_EmptyStepCommands(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Steps = append(tmpl.Steps, model.Step{Environment: "sh:posix"})
	assertViolation(t, testValidator().Validate(tmpl), "no commands")
}

func TestValidate_DuplicateParameterID(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Parameters = append(tmpl.Parameters, &model.Parameter{ID: "names", Datatype: model.DataTypeFile})
	assertViolation(t, testValidator().Validate(tmpl), "duplicate parameter id 'names'")
}

func TestValidate_UnknownDatatype(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Parameters[0].Datatype = "blob"
	assertViolation(t, testValidator().Validate(tmpl), "unknown datatype 'blob'")
}

func TestValidate_BadDefault(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Parameters = append(tmpl.Parameters, &model.Parameter{
		ID:       "count",
		Datatype: model.DataTypeInt,
		Default:  "not a number",
		Required: true,
	})
	assertViolation(t, testValidator().Validate(tmpl), "does not match datatype")
}

func TestValidate_UndeclaredRole(t *testing.T) {
	tmpl := mustParse(t, "template-undeclared-role.yaml")
	assertViolation(t, testValidator().Validate(tmpl), "undeclared role 'outputfile'")
}

func TestValidate_UndeclaredPlaceholder(t *testing.T) {
	tmpl := validTemplate()
	tmpl.OutputFiles = append(tmpl.OutputFiles, "$[[resultdir]]/out.txt")
	assertViolation(t, testValidator().Validate(tmpl), "undeclared parameter 'resultdir'")
}
