package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/radiantlogicinc/TalkEngine/builtin"
	"github.com/radiantlogicinc/TalkEngine/command"
)

func TestLoadCatalog(t *testing.T) {
	tmpDir := t.TempDir()
	catalogPath := filepath.Join(tmpDir, "catalog.yaml")

	catalogContent := `
weather.get_forecast:
  description: "Get the weather forecast for a location"
  parameters:
    location:
      type: string
      required: true
      description: "city name"
    days:
      type: int
      description: "number of days"

math.add:
  executable: "math.add"
`
	if err := os.WriteFile(catalogPath, []byte(catalogContent), 0644); err != nil {
		t.Fatalf("Failed to write test catalog: %v", err)
	}

	meta, err := LoadCatalog(catalogPath, builtin.Settings{})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	forecast, ok := meta["weather.get_forecast"]
	if !ok {
		t.Fatal("LoadCatalog() missing weather.get_forecast")
	}
	if spec, ok := forecast.Parameters["location"]; !ok || !spec.Required || spec.Type != command.TypeString {
		t.Errorf("location spec = %+v, want required string", forecast.Parameters["location"])
	}
	if forecast.Executable != nil {
		t.Error("declarative command has an executable")
	}

	add, ok := meta["math.add"]
	if !ok {
		t.Fatal("LoadCatalog() missing math.add")
	}
	if add.Executable == nil {
		t.Fatal("math.add has no executable")
	}
	// Description and schema inherited from the builtin.
	if add.Description == "" {
		t.Error("math.add description not inherited")
	}
	if _, ok := add.Parameters["a"]; !ok {
		t.Errorf("math.add parameters = %+v, want inherited schema", add.Parameters)
	}

	if _, err := command.NewCatalog(meta); err != nil {
		t.Errorf("NewCatalog() error = %v for loaded catalog", err)
	}
}

func TestLoadCatalog_NotFound(t *testing.T) {
	_, err := LoadCatalog("/nonexistent/catalog.yaml", builtin.Settings{})
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("LoadCatalog() error = %v, want ErrCatalogNotFound", err)
	}
}

func TestLoadCatalog_UnknownExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	catalogPath := filepath.Join(tmpDir, "catalog.yaml")

	catalogContent := `
broken.command:
  description: "references a missing builtin"
  executable: "no.such_builtin"
`
	if err := os.WriteFile(catalogPath, []byte(catalogContent), 0644); err != nil {
		t.Fatalf("Failed to write test catalog: %v", err)
	}

	if _, err := LoadCatalog(catalogPath, builtin.Settings{}); err == nil {
		t.Error("LoadCatalog() error = nil for unknown executable")
	}
}

func TestBuiltinCatalog(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog.Builtins = []string{builtin.MathAdd}

	meta, err := BuiltinCatalog(cfg)
	if err != nil {
		t.Fatalf("BuiltinCatalog() error = %v", err)
	}
	if len(meta) != 1 {
		t.Fatalf("BuiltinCatalog() returned %d commands, want 1", len(meta))
	}
	if _, ok := meta[builtin.MathAdd]; !ok {
		t.Error("BuiltinCatalog() missing math.add")
	}
}
