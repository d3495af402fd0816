// Package depfile reads the list of dependencies a project declares.
package depfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Solipath/Solipath/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a dependency file
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "json"
	}
}

// DetectFormat picks the decoder from the file extension; JSON is the default.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// document is the object form shared by every format
type document struct {
	Dependencies []models.Dependency `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
}

// Load reads and validates a dependency file
func Load(path string) ([]models.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.SolipathError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("could not read dependency file: %w", err)}
	}

	deps, err := Parse(data, DetectFormat(path))
	if err != nil {
		return nil, &models.SolipathError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return deps, nil
}

// Parse decodes a dependency list. JSON and YAML accept either a bare list or
// an object with a "dependencies" key; TOML always uses the object form.
func Parse(data []byte, format Format) ([]models.Dependency, error) {
	var deps []models.Dependency
	var err error

	switch format {
	case FormatYAML:
		deps, err = parseYAML(data)
	case FormatTOML:
		var doc document
		err = toml.Unmarshal(data, &doc)
		deps = doc.Dependencies
	default:
		deps, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s dependency file: %w", format, err)
	}

	if err := validate(deps); err != nil {
		return nil, err
	}
	return deps, nil
}

func parseJSON(data []byte) ([]models.Dependency, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc document
		err := json.Unmarshal(trimmed, &doc)
		return doc.Dependencies, err
	}

	var deps []models.Dependency
	err := json.Unmarshal(trimmed, &deps)
	return deps, err
}

func parseYAML(data []byte) ([]models.Dependency, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.MappingNode {
		var doc document
		err := node.Decode(&doc)
		return doc.Dependencies, err
	}

	var deps []models.Dependency
	err := node.Decode(&deps)
	return deps, err
}

func validate(deps []models.Dependency) error {
	v := validator.New()
	for i, dep := range deps {
		if err := v.Struct(dep); err != nil {
			return fmt.Errorf("dependency %d: %w", i+1, formatValidationError(err))
		}
	}
	return nil
}

func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", strings.ToLower(e.Field())))
			default:
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
			}
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}
