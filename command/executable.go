package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// Executable pairs a command's run function with typed parameter and result
// prototypes. Params and Result are zero values (struct or struct pointer)
// whose types declare the binding target and the checked result type. Run
// always receives a pointer to a freshly bound parameter struct.
type Executable struct {
	Params any
	Result any
	Run    func(ctx context.Context, params any) (any, error)
}

func (e *Executable) validate() error {
	if e.Run == nil {
		return fmt.Errorf("executable run function is nil")
	}
	if _, err := baseStructType(e.Params); err != nil {
		return fmt.Errorf("executable parameter prototype: %w", err)
	}
	if _, err := baseStructType(e.Result); err != nil {
		return fmt.Errorf("executable result prototype: %w", err)
	}
	return nil
}

// baseStructType resolves a prototype value to its underlying struct type.
func baseStructType(proto any) (reflect.Type, error) {
	if proto == nil {
		return nil, fmt.Errorf("prototype is nil")
	}
	t := reflect.TypeOf(proto)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("prototype %T is not a struct", proto)
	}
	return t, nil
}

// Bind instantiates the executable's parameter struct from extracted values.
// Required fields per the schema must be present; value types must decode
// into the struct's fields. Returns a pointer to the populated struct.
func Bind(exe *Executable, schema Schema, values map[string]any) (any, error) {
	for field, spec := range schema {
		if !spec.Required {
			continue
		}
		if _, ok := values[field]; !ok {
			return nil, fmt.Errorf("required parameter %q is missing", field)
		}
	}

	t, err := baseStructType(exe.Params)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding parameters: %w", err)
	}

	target := reflect.New(t).Interface()
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(target); err != nil {
		return nil, fmt.Errorf("decoding parameters: %w", err)
	}
	return target, nil
}

// CheckResult verifies that a run function's return value matches the
// declared result prototype's type.
func CheckResult(exe *Executable, got any) error {
	want, err := baseStructType(exe.Result)
	if err != nil {
		return err
	}
	if got == nil {
		return fmt.Errorf("executable returned nil, want %s", want)
	}
	gt := reflect.TypeOf(got)
	if gt.Kind() == reflect.Ptr {
		gt = gt.Elem()
	}
	if gt != want {
		return fmt.Errorf("executable returned %s, want %s", gt, want)
	}
	return nil
}
