// Package builtin provides ready-made catalog commands whose executables
// call external services. Each command registers itself under its catalog
// name; Metadata assembles definitions for an engine catalog.
package builtin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// Settings carries credentials for executables that call external services.
// Commands that need none ignore it.
type Settings struct {
	GitHubToken string
	GitLabToken string
}

// Factory builds one command definition from settings.
type Factory func(s Settings) (command.Definition, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a command factory available under its catalog name.
// Built-in commands register themselves in init; applications may add
// their own before loading a catalog.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// Names lists the registered command names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metadata builds catalog metadata for the named commands, or for every
// registered command when names is empty.
func Metadata(s Settings, names ...string) (command.Metadata, error) {
	mu.RLock()
	defer mu.RUnlock()

	if len(names) == 0 {
		for name := range factories {
			names = append(names, name)
		}
	}

	meta := make(command.Metadata, len(names))
	for _, name := range names {
		f, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("builtin command %q not registered", name)
		}
		def, err := f(s)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", name, err)
		}
		meta[name] = def
	}
	return meta, nil
}
