package template

import (
	"path/filepath"
	"strconv"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// InputFile is a file argument value: a source path on disk and the
// relative target path the file is staged under inside the run directory.
type InputFile struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Argument is a value bound to a template parameter. For file parameters
// File is set; for all other datatypes Value holds the coerced scalar.
type Argument struct {
	Parameter *model.Parameter
	Value     any
	File      *InputFile
}

// SubstitutionValue returns the value used when the argument is
// substituted into the workflow specification. File arguments substitute
// their target path.
func (a *Argument) SubstitutionValue() any {
	if a.File != nil {
		return a.File.Target
	}
	return a.Value
}

// Arguments maps parameter ids to bound argument values.
type Arguments map[string]*Argument

// NewArgument coerces a raw value to the parameter's datatype and returns
// the bound argument. File values may be given as a path string or an
// *InputFile; when the target is unset it defaults to the parameter's
// `as` path, falling back to the source file name.
func NewArgument(p *model.Parameter, value any) (*Argument, error) {
	if p.IsFile() {
		file, err := coerceFile(p, value)
		if err != nil {
			return nil, err
		}
		return &Argument{Parameter: p, File: file}, nil
	}
	coerced, err := coerceScalar(p, value)
	if err != nil {
		return nil, err
	}
	return &Argument{Parameter: p, Value: coerced}, nil
}

func coerceFile(p *model.Parameter, value any) (*InputFile, error) {
	var file InputFile
	switch v := value.(type) {
	case string:
		file.Source = v
	case *InputFile:
		file = *v
	case InputFile:
		file = v
	default:
		return nil, &model.InvalidArgumentError{ParameterID: p.ID, Datatype: p.Datatype, Value: value}
	}
	if file.Source == "" {
		return nil, &model.InvalidArgumentError{ParameterID: p.ID, Datatype: p.Datatype, Value: value}
	}
	if file.Target == "" {
		if p.As != "" {
			file.Target = p.As
		} else {
			file.Target = filepath.Base(file.Source)
		}
	}
	return &file, nil
}

func coerceScalar(p *model.Parameter, value any) (any, error) {
	fail := func() (any, error) {
		return nil, &model.InvalidArgumentError{ParameterID: p.ID, Datatype: p.Datatype, Value: value}
	}

	switch p.Datatype {
	case model.DataTypeString:
		switch v := value.(type) {
		case string:
			return v, nil
		case int, int64, float64, bool:
			return stringify(v), nil
		}
		return fail()
	case model.DataTypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, nil
			}
		}
		return fail()
	case model.DataTypeDecimal:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, nil
			}
		}
		return fail()
	case model.DataTypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b, nil
			}
		}
		return fail()
	default:
		// Unknown datatypes are rejected by the validator; treat the
		// value as opaque here.
		return value, nil
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Bind coerces a map of raw values into Arguments for the template.
// Values for undeclared parameters are an error.
func Bind(t *model.Template, raw map[string]any) (Arguments, error) {
	args := make(Arguments, len(raw))
	for id, value := range raw {
		p := t.Parameter(id)
		if p == nil {
			return nil, &model.InvalidArgumentError{ParameterID: id, Datatype: "undeclared", Value: value}
		}
		arg, err := NewArgument(p, value)
		if err != nil {
			return nil, err
		}
		args[id] = arg
	}
	return args, nil
}

// ValidateArguments ensures every required parameter without a default
// has a bound argument.
func ValidateArguments(t *model.Template, args Arguments) error {
	for _, p := range t.Parameters {
		if _, ok := args[p.ID]; ok {
			continue
		}
		if p.HasDefault() || !p.Required {
			continue
		}
		return &model.MissingArgumentError{ParameterID: p.ID}
	}
	return nil
}

// SubstitutionValues merges bound arguments with parameter defaults into
// the value map used for $[[id]] replacement.
func SubstitutionValues(t *model.Template, args Arguments) map[string]any {
	values := make(map[string]any, len(t.Parameters))
	for _, p := range t.Parameters {
		if arg, ok := args[p.ID]; ok {
			values[p.ID] = arg.SubstitutionValue()
			continue
		}
		if p.HasDefault() {
			values[p.ID] = p.Default
		}
	}
	return values
}

// Commands expands the template's step commands for the given arguments.
// Parameter placeholders in the inputs.parameters section are replaced
// first; the resulting role values are then substituted into each command
// string. A command referencing an undeclared role is an
// InvalidTemplateError.
func Commands(t *model.Template, args Arguments) ([]string, error) {
	values := SubstitutionValues(t, args)
	roles, _ := ReplaceArgs(t.InputParameters, values).(map[string]any)

	var commands []string
	for _, cmd := range t.Commands() {
		expanded, err := ExpandCommand(cmd, roles)
		if err != nil {
			return nil, err
		}
		commands = append(commands, expanded)
	}
	return commands, nil
}

// OutputFiles returns the declared output files with parameter
// placeholders replaced for the given arguments.
func OutputFiles(t *model.Template, args Arguments) []string {
	return ReplaceArgsList(t.OutputFiles, SubstitutionValues(t, args))
}
