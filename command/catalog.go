package command

import (
	"fmt"
	"sort"
)

// Catalog is the validated, read-only runtime form of Metadata. Construction
// copies the input so the host's maps are never aliased.
type Catalog struct {
	commands map[string]Definition
	names    []string
}

// NewCatalog validates metadata and builds a Catalog. Every entry needs a
// non-empty description and a resolvable parameter schema; a declared
// executable needs a run function plus struct prototypes for its parameters
// and result.
func NewCatalog(meta Metadata) (*Catalog, error) {
	c := &Catalog{
		commands: make(map[string]Definition, len(meta)),
		names:    make([]string, 0, len(meta)),
	}

	for name, def := range meta {
		if name == "" {
			return nil, fmt.Errorf("command with empty name")
		}
		if def.Description == "" {
			return nil, fmt.Errorf("command %q: description is required", name)
		}
		for field, spec := range def.Parameters {
			if field == "" {
				return nil, fmt.Errorf("command %q: parameter with empty name", name)
			}
			if err := spec.Validate(); err != nil {
				return nil, fmt.Errorf("command %q: parameter %q: %w", name, field, err)
			}
		}
		if def.Executable != nil {
			if err := def.Executable.validate(); err != nil {
				return nil, fmt.Errorf("command %q: %w", name, err)
			}
		}

		// Copy the schema so later host mutations don't reach the catalog.
		params := make(Schema, len(def.Parameters))
		for field, spec := range def.Parameters {
			params[field] = spec
		}
		def.Parameters = params

		c.commands[name] = def
		c.names = append(c.names, name)
	}

	sort.Strings(c.names)
	return c, nil
}

// Get returns the definition for the named command.
func (c *Catalog) Get(name string) (Definition, bool) {
	def, ok := c.commands[name]
	return def, ok
}

// Names returns all command names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of commands in the catalog.
func (c *Catalog) Len() int {
	return len(c.commands)
}
