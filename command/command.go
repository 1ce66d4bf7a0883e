// Package command defines the host-supplied command catalog: command
// definitions, parameter schemas, and optional typed executables. A catalog
// is validated once at engine initialization and is read-only afterwards.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata maps command names to their definitions. It is the host-facing
// catalog input, validated and copied into a Catalog at engine
// initialization so later host mutations cannot leak into a running engine.
type Metadata map[string]Definition

// Definition describes a single host-defined command.
type Definition struct {
	Description string      `yaml:"description"`
	Parameters  Schema      `yaml:"parameters"`
	Executable  *Executable `yaml:"-"`
}

// Schema maps parameter names to their field specifications.
type Schema map[string]FieldSpec

// FieldSpec describes one parameter field of a command.
type FieldSpec struct {
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required"`
	Description string `yaml:"description"`
}

// Supported field types.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
)

var validFieldTypes = map[string]bool{
	TypeString: true,
	TypeInt:    true,
	TypeFloat:  true,
	TypeBool:   true,
}

// Validate checks that the field spec uses a supported type.
func (f FieldSpec) Validate() error {
	if !validFieldTypes[f.Type] {
		return fmt.Errorf("unsupported field type %q", f.Type)
	}
	return nil
}

// Coerce converts a raw value (typically text captured during a validation
// dialogue) into the field's declared type. Values already of the right type
// pass through unchanged. Integral floats collapse to ints for int fields,
// matching how JSON decoding surfaces numbers.
func (f FieldSpec) Coerce(v any) (any, error) {
	switch f.Type {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", v), nil
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
			return nil, fmt.Errorf("value %v is not an integer", n)
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return nil, fmt.Errorf("parsing %q as int: %w", n, err)
			}
			return i, nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case string:
			fl, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %q as float: %w", n, err)
			}
			return fl, nil
		}
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			bl, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("parsing %q as bool: %w", b, err)
			}
			return bl, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %T to %s", v, f.Type)
}

// Labels returns the matchable names for a command: the full name, the last
// dotted segment, and an underscores-to-spaces variant. All lowercase,
// deduplicated, most specific first.
func Labels(name string) []string {
	full := strings.ToLower(name)
	last := full
	if i := strings.LastIndex(full, "."); i >= 0 {
		last = full[i+1:]
	}
	spaced := strings.ReplaceAll(last, "_", " ")

	labels := make([]string, 0, 3)
	seen := make(map[string]bool)
	for _, l := range []string{spaced, last, full} {
		if l != "" && !seen[l] {
			labels = append(labels, l)
			seen[l] = true
		}
	}
	return labels
}
