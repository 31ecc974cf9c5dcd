package template

import (
	"errors"
	"testing"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

func mustParse(t *testing.T, name string) *model.Template {
	t.Helper()
	tmpl, err := testParser().Parse(loadTestdata(t, name))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return tmpl
}

func TestNewArgument_Scalars(t *testing.T) {
	tests := []struct {
		datatype string
		in       any
		want     any
	}{
		{model.DataTypeInt, 11, 11},
		{model.DataTypeInt, "11", 11},
		{model.DataTypeInt, float64(11), 11},
		{model.DataTypeString, "hello", "hello"},
		{model.DataTypeString, 42, "42"},
		{model.DataTypeDecimal, 2.5, 2.5},
		{model.DataTypeDecimal, 3, 3.0},
		{model.DataTypeDecimal, "1.5", 1.5},
		{model.DataTypeBool, true, true},
		{model.DataTypeBool, "true", true},
	}
	for _, tc := range tests {
		p := &model.Parameter{ID: "p", Datatype: tc.datatype}
		arg, err := NewArgument(p, tc.in)
		if err != nil {
			t.Errorf("NewArgument(%s, %v): %v", tc.datatype, tc.in, err)
			continue
		}
		if arg.Value != tc.want {
			t.Errorf("NewArgument(%s, %v) = %v (%T), want %v", tc.datatype, tc.in, arg.Value, arg.Value, tc.want)
		}
	}
}

func TestNewArgument_InvalidScalars(t *testing.T) {
	tests := []struct {
		datatype string
		in       any
	}{
		{model.DataTypeInt, "not a number"},
		{model.DataTypeInt, 2.5},
		{model.DataTypeDecimal, "abc"},
		{model.DataTypeBool, "maybe"},
		{model.DataTypeString, []any{"x"}},
	}
	for _, tc := range tests {
		p := &model.Parameter{ID: "p", Datatype: tc.datatype}
		_, err := NewArgument(p, tc.in)
		if err == nil {
			t.Errorf("NewArgument(%s, %v): expected error", tc.datatype, tc.in)
			continue
		}
		var argErr *model.InvalidArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("NewArgument(%s, %v): expected InvalidArgumentError, got %T", tc.datatype, tc.in, err)
		}
	}
}

func TestNewArgument_FileTargets(t *testing.T) {
	// The `as` declaration fixes the staged path.
	p := &model.Parameter{ID: "names", Datatype: model.DataTypeFile, As: "data/names.txt"}
	arg, err := NewArgument(p, "/tmp/input/names.txt")
	if err != nil {
		t.Fatalf("NewArgument: %v", err)
	}
	if arg.File.Source != "/tmp/input/names.txt" || arg.File.Target != "data/names.txt" {
		t.Errorf("file argument: got %+v", arg.File)
	}
	if arg.SubstitutionValue() != "data/names.txt" {
		t.Errorf("SubstitutionValue: got %v", arg.SubstitutionValue())
	}

	// Without `as` the target defaults to the source file name.
	p = &model.Parameter{ID: "code", Datatype: model.DataTypeFile}
	arg, err = NewArgument(p, "code/runme.sh")
	if err != nil {
		t.Fatalf("NewArgument: %v", err)
	}
	if arg.File.Target != "runme.sh" {
		t.Errorf("basename target: got %q", arg.File.Target)
	}

	// An explicit InputFile target wins.
	arg, err = NewArgument(p, &InputFile{Source: "/src/a.sh", Target: "bin/a.sh"})
	if err != nil {
		t.Fatalf("NewArgument: %v", err)
	}
	if arg.File.Target != "bin/a.sh" {
		t.Errorf("explicit target: got %q", arg.File.Target)
	}

	if _, err := NewArgument(p, 42); err == nil {
		t.Error("expected error for non-path file value")
	}
}

func TestBind_UndeclaredParameter(t *testing.T) {
	tmpl := mustParse(t, "template.yaml")
	_, err := Bind(tmpl, map[string]any{"nosuchparam": 1})
	if err == nil {
		t.Fatal("expected error")
	}
	var argErr *model.InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError, got %T", err)
	}
}

func TestValidateArguments(t *testing.T) {
	tmpl := mustParse(t, "template.yaml")

	args, err := Bind(tmpl, map[string]any{"names": "names.txt"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := ValidateArguments(tmpl, args); err != nil {
		t.Errorf("ValidateArguments with defaults covered: %v", err)
	}

	// names has no default and is required.
	err = ValidateArguments(tmpl, Arguments{})
	var missing *model.MissingArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingArgumentError, got %v", err)
	}
	if missing.ParameterID != "names" {
		t.Errorf("missing parameter: got %s", missing.ParameterID)
	}
}

func TestCommands_BoundArguments(t *testing.T) {
	tmpl := mustParse(t, "multi-step-template.yaml")
	args, err := Bind(tmpl, map[string]any{
		"code":      "code/runme.sh",
		"names":     "names.txt",
		"sleeptime": 11,
		"waittime":  22,
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	commands, err := Commands(tmpl, args)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	want := []string{
		`sh "runme.sh" "data/names.txt" "results/greetings.txt" 11`,
		`sleep 22`,
	}
	if len(commands) != len(want) {
		t.Fatalf("expected %d commands, got %v", len(want), commands)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Errorf("command %d:\n  got  %s\n  want %s", i, commands[i], want[i])
		}
	}
}

func TestCommands_Defaults(t *testing.T) {
	tmpl := mustParse(t, "multi-step-template.yaml")
	args, err := Bind(tmpl, map[string]any{"names": "names.txt"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	commands, err := Commands(tmpl, args)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	want := []string{
		`sh "code/helloworld.sh" "data/names.txt" "results/greetings.txt" 10`,
		`sleep 5`,
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Errorf("command %d:\n  got  %s\n  want %s", i, commands[i], want[i])
		}
	}
}

func TestCommands_MissingRole(t *testing.T) {
	tmpl := mustParse(t, "multi-step-template.yaml")
	delete(tmpl.InputParameters, "inputfile")

	args, err := Bind(tmpl, map[string]any{"names": "names.txt"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	_, err = Commands(tmpl, args)
	var tmplErr *model.InvalidTemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("expected InvalidTemplateError, got %v", err)
	}
}

func TestOutputFiles(t *testing.T) {
	tmpl := mustParse(t, "template.yaml")
	args, err := Bind(tmpl, map[string]any{"names": "names.txt"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	files := OutputFiles(tmpl, args)
	if len(files) != 1 || files[0] != "results/greetings.txt" {
		t.Errorf("OutputFiles: got %v", files)
	}
}
