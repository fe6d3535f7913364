package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/difflow/validation"
)

// GraphSpecLoader loads graph spec definitions by name.
type GraphSpecLoader interface {
	Load(name string) (*GraphSpec, error)
}

// FileGraphSpecLoader loads graph specs from YAML files on disk.
type FileGraphSpecLoader struct {
	dirs []string
}

// NewFileGraphSpecLoader creates a loader that searches the given
// directories for graph spec YAML files.
func NewFileGraphSpecLoader(dirs ...string) GraphSpecLoader {
	return &FileGraphSpecLoader{dirs: dirs}
}

// Load searches for a graph spec YAML file by name across configured
// directories. It searches for {name}.yaml and {name}.yml in each
// directory and in its immediate subdirectories; deeper levels are not
// searched.
func (l *FileGraphSpecLoader) Load(name string) (*GraphSpec, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if spec, err := loadGraphSpecFile(path); err == nil {
				return spec, nil
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "**", name+ext))
			for _, match := range matches {
				if spec, err := loadGraphSpecFile(match); err == nil {
					return spec, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("builder: graph spec %q not found in %v", name, l.dirs)
}

func loadGraphSpecFile(path string) (*GraphSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("builder: parsing %s: %w", path, err)
	}
	if err := validation.Validate(&spec); err != nil {
		return nil, fmt.Errorf("builder: validating %s: %w", path, err)
	}
	return &spec, nil
}

// LoadGraphSpec loads a graph spec from explicit file paths, trying each
// path until one succeeds.
func LoadGraphSpec(name string, paths ...string) (*GraphSpec, error) {
	for _, path := range paths {
		if spec, err := loadGraphSpecFile(path); err == nil {
			return spec, nil
		}
	}
	return nil, fmt.Errorf("builder: graph spec %q not found in provided paths", name)
}
