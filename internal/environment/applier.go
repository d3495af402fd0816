package environment

import (
	"errors"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/sirupsen/logrus"
)

// Applier resolves instruction variables against the download cache.
type Applier struct {
	finder *directory.Finder
}

// NewApplier creates an Applier
func NewApplier(finder *directory.Finder) *Applier {
	return &Applier{finder: finder}
}

// Value returns the literal value when present, otherwise the relative path
// joined onto the dependency's downloads directory. A variable with neither
// resolves to the downloads directory itself.
func (a *Applier) Value(dep models.Dependency, ev models.EnvironmentVariable) string {
	switch {
	case ev.Value != nil:
		return *ev.Value
	case ev.RelativePath != nil:
		return a.finder.DownloadPath(dep, *ev.RelativePath)
	default:
		return a.finder.DownloadsDir(dep)
	}
}

// Apply sets one variable. PATH is prepended to, everything else overwritten.
func (a *Applier) Apply(env *Environment, dep models.Dependency, ev models.EnvironmentVariable) error {
	if ev.Name == "" {
		return models.NewError(models.ErrEnvironment, dep, errors.New("environment variable without a name"))
	}

	value := a.Value(dep, ev)
	if ev.Name == PathVariable {
		logrus.Debugf("%s: prepending %s to PATH", dep, value)
		env.PrependPath(value)
		return nil
	}

	logrus.Debugf("%s: setting %s=%s", dep, ev.Name, value)
	env.Set(ev.Name, value)
	return nil
}

// ApplyAll applies variables strictly in order.
func (a *Applier) ApplyAll(env *Environment, vars []models.Owned[models.EnvironmentVariable]) error {
	for _, v := range vars {
		if err := a.Apply(env, v.Dependency, v.Item); err != nil {
			return err
		}
	}
	return nil
}
