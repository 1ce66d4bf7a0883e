package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/radiantlogicinc/TalkEngine/builtin"
	"github.com/radiantlogicinc/TalkEngine/command"
)

// ErrCatalogNotFound indicates the catalog file doesn't exist.
var ErrCatalogNotFound = errors.New("catalog not found")

// CatalogEntry is the on-disk form of one command. Executable names a
// registered builtin whose implementation backs the command; entries
// without one are declarative only.
type CatalogEntry struct {
	Description string         `yaml:"description"`
	Parameters  command.Schema `yaml:"parameters"`
	Executable  string         `yaml:"executable"`
}

// LoadCatalog reads a catalog file and resolves builtin executables. An
// entry that names an executable inherits the builtin's description and
// schema for any field it leaves empty.
func LoadCatalog(path string, s builtin.Settings) (command.Metadata, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrCatalogNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var entries map[string]CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	meta := make(command.Metadata, len(entries))
	for name, entry := range entries {
		def := command.Definition{
			Description: entry.Description,
			Parameters:  entry.Parameters,
		}

		if entry.Executable != "" {
			built, err := builtin.Metadata(s, entry.Executable)
			if err != nil {
				return nil, fmt.Errorf("resolving executable for %s: %w", name, err)
			}
			base := built[entry.Executable]
			def.Executable = base.Executable
			if def.Description == "" {
				def.Description = base.Description
			}
			if len(def.Parameters) == 0 {
				def.Parameters = base.Parameters
			}
		}

		meta[name] = def
	}
	return meta, nil
}

// BuiltinCatalog assembles metadata for the configured builtin commands,
// used when no catalog file is given. An empty list enables every
// registered builtin.
func BuiltinCatalog(cfg *Config) (command.Metadata, error) {
	s := builtin.Settings{
		GitHubToken: cfg.Catalog.GitHubToken,
		GitLabToken: cfg.Catalog.GitLabToken,
	}
	return builtin.Metadata(s, cfg.Catalog.Builtins...)
}
