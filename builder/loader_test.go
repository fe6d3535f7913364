package builder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGraphSpec_FromFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
name: test-graph
mode: streaming
nodes:
  - name: src
    component: source
  - name: doubled
    component: double
    depends_on: [src]
`
	path := filepath.Join(dir, "test-graph.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadGraphSpec("test", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Name != "test-graph" {
		t.Fatalf("expected 'test-graph', got %q", spec.Name)
	}
	if len(spec.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(spec.Nodes))
	}
}

func TestFileGraphSpecLoader_Load(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
name: my-graph
mode: batch
nodes:
  - name: step1
    component: source
`
	if err := os.WriteFile(filepath.Join(dir, "my-graph.yaml"), []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewFileGraphSpecLoader(dir)
	spec, err := loader.Load("my-graph")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Name != "my-graph" {
		t.Fatalf("expected 'my-graph', got %q", spec.Name)
	}
}

func TestFileGraphSpecLoader_NotFound(t *testing.T) {
	loader := NewFileGraphSpecLoader(t.TempDir())
	if _, err := loader.Load("nonexistent"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileGraphSpecLoader_RejectsInvalidMode(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
name: bad-graph
mode: nonsense
nodes:
  - name: step1
    component: source
`
	if err := os.WriteFile(filepath.Join(dir, "bad-graph.yaml"), []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewFileGraphSpecLoader(dir)
	if _, err := loader.Load("bad-graph"); err == nil {
		t.Fatal("expected validation error for mode")
	}
}
