// Package instructions locates, caches and decodes instruction documents.
package instructions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL hosts the public instruction repository.
const DefaultBaseURL = "https://raw.githubusercontent.com/Solipath/Solipath-Install-Instructions/main"

// Fetcher caches a remote document at a local path
type Fetcher interface {
	FetchIfMissing(ctx context.Context, url, path string) error
}

// Resolver turns dependencies and template references into instructions.
type Resolver struct {
	baseURL string
	finder  *directory.Finder
	fetcher Fetcher
}

// NewResolver creates a Resolver
func NewResolver(baseURL string, finder *directory.Finder, fetcher Fetcher) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		finder:  finder,
		fetcher: fetcher,
	}
}

// InstructionsURL is <base>/<name>/<version>/install_instructions.json
func (r *Resolver) InstructionsURL(dep models.Dependency) (string, error) {
	return url.JoinPath(r.baseURL, dep.Name, dep.Version, "install_instructions.json")
}

// TemplateURL is <base>/<name>/templates/<template>.json
func (r *Resolver) TemplateURL(dep models.Dependency, template string) (string, error) {
	return url.JoinPath(r.baseURL, dep.Name, "templates", template+".json")
}

// Resolve fetches (or reads from cache) and decodes the instructions of dep.
func (r *Resolver) Resolve(ctx context.Context, dep models.Dependency) (models.DependencyInstructions, error) {
	u, err := r.InstructionsURL(dep)
	if err != nil {
		return models.DependencyInstructions{}, models.NewError(models.ErrResolve, dep, err)
	}

	path := r.finder.InstructionsPath(dep)
	data, err := r.load(ctx, u, path)
	if err != nil {
		return models.DependencyInstructions{}, models.NewError(models.ErrResolve, dep, err)
	}

	inst, err := Parse(data, path)
	if err != nil {
		return models.DependencyInstructions{}, models.NewError(models.ErrResolve, dep, err)
	}

	logrus.Debugf("Resolved %s: %d downloads, %d variables, %d templates, %d commands",
		dep, len(inst.Downloads), len(inst.EnvironmentVariables), len(inst.Templates), len(inst.InstallCommands))

	return models.DependencyInstructions{Dependency: dep, Instructions: inst}, nil
}

// ResolveTemplate fetches the template document, substitutes its variables and
// decodes the result for the same dependency. Templates referenced by the
// expanded document are not expanded again.
func (r *Resolver) ResolveTemplate(ctx context.Context, dep models.Dependency, tmpl models.Template) (models.DependencyInstructions, error) {
	u, err := r.TemplateURL(dep, tmpl.Name)
	if err != nil {
		return models.DependencyInstructions{}, models.NewError(models.ErrTemplate, dep, err)
	}

	path := r.finder.TemplatePath(dep, tmpl.Name)
	data, err := r.load(ctx, u, path)
	if err != nil {
		return models.DependencyInstructions{}, models.NewError(models.ErrTemplate, dep, err)
	}

	expanded := ReplaceVariables(string(data), tmpl.Variables)
	inst, err := Parse([]byte(expanded), path)
	if err != nil {
		return models.DependencyInstructions{}, models.NewError(models.ErrTemplate, dep, err)
	}

	if len(inst.Templates) > 0 {
		logrus.Debugf("Template %s of %s references %d further templates, which are not expanded", tmpl.Name, dep, len(inst.Templates))
	}

	return models.DependencyInstructions{Dependency: dep, Instructions: inst}, nil
}

func (r *Resolver) load(ctx context.Context, u, path string) ([]byte, error) {
	if err := r.fetcher.FetchIfMissing(ctx, u, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Parse decodes an instruction document. source names the document in errors.
func Parse(data []byte, source string) (models.InstallInstructions, error) {
	var inst models.InstallInstructions
	if err := json.Unmarshal(data, &inst); err != nil {
		return models.InstallInstructions{}, fmt.Errorf("invalid instructions in %s: %w", source, err)
	}
	return inst, nil
}
