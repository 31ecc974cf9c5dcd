// Package model defines the domain types shared by the template
// repository, the execution engine, and the HTTP API.
package model

import "time"

// Supported parameter datatypes.
const (
	DataTypeFile    = "file"
	DataTypeString  = "string"
	DataTypeInt     = "int"
	DataTypeDecimal = "decimal"
	DataTypeBool    = "bool"
)

// IsValidDataType returns true for a known parameter datatype.
func IsValidDataType(dt string) bool {
	switch dt {
	case DataTypeFile, DataTypeString, DataTypeInt, DataTypeDecimal, DataTypeBool:
		return true
	}
	return false
}

// Parameter declares a variable part of a workflow template. The id is
// referenced from the workflow specification as $[[id]].
type Parameter struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Datatype string `json:"datatype"`
	// Default is the value used when no argument is provided. A nil
	// default means the parameter has none.
	Default  any  `json:"defaultValue,omitempty"`
	Required bool `json:"required"`
	// Index orders parameters for display. Defaults to document order.
	Index int `json:"index,omitempty"`
	// As fixes the relative path a file argument is staged under inside
	// the run directory.
	As string `json:"as,omitempty"`
}

// HasDefault returns true if the parameter declares a default value.
func (p *Parameter) HasDefault() bool {
	return p.Default != nil
}

// IsFile returns true for file parameters.
func (p *Parameter) IsFile() bool {
	return p.Datatype == DataTypeFile
}

// Step is one environment plus its command list in a serial workflow.
type Step struct {
	Environment string   `json:"environment,omitempty"`
	Commands    []string `json:"commands"`
}

// Template is a parsed workflow template: the parameterized workflow
// specification plus the parameter declarations. ID, Name, and the
// timestamps are assigned when the template is added to a repository.
type Template struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`

	// InputFiles lists files staged into the run directory before
	// execution. Entries are literal paths or $[[id]] placeholders.
	InputFiles []string `json:"inputFiles,omitempty"`
	// InputParameters maps command role names to their spec values.
	InputParameters map[string]any `json:"inputParameters,omitempty"`

	WorkflowType string `json:"workflowType,omitempty"`
	Steps        []Step `json:"steps"`

	// OutputFiles lists the relative paths collected as run resources
	// after a successful execution.
	OutputFiles []string `json:"outputFiles,omitempty"`

	Parameters []*Parameter `json:"parameters,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Parameter returns the declaration for the given id, or nil.
func (t *Template) Parameter(id string) *Parameter {
	for _, p := range t.Parameters {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Commands flattens the step commands into a single execution sequence.
func (t *Template) Commands() []string {
	var commands []string
	for _, step := range t.Steps {
		commands = append(commands, step.Commands...)
	}
	return commands
}
