// Package pipeline drives a run from dependency list to the final command.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/environment"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/platform"
	"github.com/sirupsen/logrus"
)

// Resolver produces instructions for dependencies and template references
type Resolver interface {
	Resolve(ctx context.Context, dep models.Dependency) (models.DependencyInstructions, error)
	ResolveTemplate(ctx context.Context, dep models.Dependency, tmpl models.Template) (models.DependencyInstructions, error)
}

// DirFetcher makes sure a download is present in its destination directory
type DirFetcher interface {
	FetchDirIfMissing(ctx context.Context, d models.DownloadInstruction, dir string) error
}

// Installer runs install commands in order
type Installer interface {
	RunAll(ctx context.Context, env *environment.Environment, cmds []models.Owned[models.InstallCommand]) error
}

// CommandExecutor starts the user's command
type CommandExecutor interface {
	Execute(ctx context.Context, env *environment.Environment, args []string) (int, error)
}

// Pipeline wires the phases of a run together.
type Pipeline struct {
	filter    *platform.Filter
	finder    *directory.Finder
	resolver  Resolver
	fetcher   DirFetcher
	applier   *environment.Applier
	installer Installer
	executor  CommandExecutor
	baseEnv   []string
}

// Options holds the collaborators of a Pipeline
type Options struct {
	Filter    *platform.Filter
	Finder    *directory.Finder
	Resolver  Resolver
	Fetcher   DirFetcher
	Installer Installer
	Executor  CommandExecutor

	// BaseEnv is the environment the run starts from, usually os.Environ().
	BaseEnv []string
}

// New creates a Pipeline
func New(opts Options) *Pipeline {
	return &Pipeline{
		filter:    opts.Filter,
		finder:    opts.Finder,
		resolver:  opts.Resolver,
		fetcher:   opts.Fetcher,
		applier:   environment.NewApplier(opts.Finder),
		installer: opts.Installer,
		executor:  opts.Executor,
		baseEnv:   opts.BaseEnv,
	}
}

// Run prepares every dependency, then executes args with the resulting
// environment and returns its exit code.
func (p *Pipeline) Run(ctx context.Context, deps []models.Dependency, args []string) (int, error) {
	if len(args) == 0 {
		return 0, &models.SolipathError{Type: models.ErrExec, Err: models.ErrNoCommand}
	}

	env, err := p.Install(ctx, deps)
	if err != nil {
		return 0, err
	}

	return p.executor.Execute(ctx, env, args)
}

// Install runs every phase except the final command and returns the
// environment that command would receive.
func (p *Pipeline) Install(ctx context.Context, deps []models.Dependency) (*environment.Environment, error) {
	working, err := p.Resolve(ctx, deps)
	if err != nil {
		return nil, err
	}

	if err := p.Download(ctx, working); err != nil {
		return nil, err
	}

	env, err := p.Environment(working)
	if err != nil {
		return nil, err
	}

	cmds := platform.Apply(p.filter, models.InstallCommands(working))
	if err := p.installer.RunAll(ctx, env, cmds); err != nil {
		return nil, err
	}
	return env, nil
}

// Resolve covers the first two phases: direct instructions, then one level
// of template expansion, concatenated into the working list.
func (p *Pipeline) Resolve(ctx context.Context, deps []models.Dependency) ([]models.DependencyInstructions, error) {
	selected := platform.Apply(p.filter, deps)
	logrus.Infof("Resolving %d of %d dependencies for %s", len(selected), len(deps), p.filter.Current())

	direct, err := fanOut(selected, func(dep models.Dependency) (models.DependencyInstructions, error) {
		return p.resolver.Resolve(ctx, dep)
	})
	if err != nil {
		return nil, err
	}
	direct = platform.Apply(p.filter, direct)

	templates := platform.Apply(p.filter, models.Templates(direct))
	expanded, err := fanOut(templates, func(t models.Owned[models.Template]) (models.DependencyInstructions, error) {
		return p.resolver.ResolveTemplate(ctx, t.Dependency, t.Item)
	})
	if err != nil {
		return nil, err
	}
	expanded = platform.Apply(p.filter, expanded)

	return append(direct, expanded...), nil
}

// Download fetches every applicable download concurrently. Downloads whose
// destinations nest inside one another run in order, outermost first, so a
// shorter destination is never mistaken for a cache hit because a deeper one
// created it.
func (p *Pipeline) Download(ctx context.Context, working []models.DependencyInstructions) error {
	downloads := platform.Apply(p.filter, models.Downloads(working))
	logrus.Debugf("Checking %d downloads", len(downloads))

	_, err := fanOut(p.nestedGroups(downloads), func(group []placedDownload) (struct{}, error) {
		for _, d := range group {
			if err := p.fetcher.FetchDirIfMissing(ctx, d.Item, d.dir); err != nil {
				return struct{}{}, tag(models.ErrDownload, d.Dependency, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

type placedDownload struct {
	models.Owned[models.DownloadInstruction]
	dir string
}

// nestedGroups buckets downloads by the outermost destination containing
// them. Each group is ordered from shortest destination to longest.
func (p *Pipeline) nestedGroups(downloads []models.Owned[models.DownloadInstruction]) [][]placedDownload {
	placed := make([]placedDownload, len(downloads))
	for i, d := range downloads {
		placed[i] = placedDownload{Owned: d, dir: filepath.Clean(p.finder.DownloadPath(d.Dependency, d.Item.DestinationDirectory))}
	}
	sort.SliceStable(placed, func(i, j int) bool { return len(placed[i].dir) < len(placed[j].dir) })

	var groups [][]placedDownload
	for _, d := range placed {
		joined := false
		for i, g := range groups {
			if contains(g[0].dir, d.dir) {
				groups[i] = append(g, d)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, []placedDownload{d})
		}
	}
	return groups
}

// contains reports whether path is root or lies below it.
func contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Environment applies every applicable variable in declaration order.
func (p *Pipeline) Environment(working []models.DependencyInstructions) (*environment.Environment, error) {
	env := environment.New(p.baseEnv)
	vars := platform.Apply(p.filter, models.EnvironmentVariables(working))
	if err := p.applier.ApplyAll(env, vars); err != nil {
		return nil, err
	}
	return env, nil
}

// tag attaches the dependency to err, keeping any type already assigned.
func tag(t models.ErrorType, dep models.Dependency, err error) error {
	var se *models.SolipathError
	if errors.As(err, &se) {
		if se.Dependency == "" {
			return &models.SolipathError{Type: se.Type, Dependency: dep.String(), Err: se.Err}
		}
		return err
	}
	return models.NewError(t, dep, err)
}
