// Package command runs install commands and the final user command.
package command

import (
	"fmt"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/utils"
	"github.com/sirupsen/logrus"
)

// ShouldRun is the conjunction of every rule. All rules are evaluated even
// after one has failed.
func ShouldRun(finder *directory.Finder, dep models.Dependency, rules models.WhenToRunRules) (bool, error) {
	run := true
	for _, rule := range rules {
		ok, err := evaluate(finder, dep, rule)
		if err != nil {
			return false, err
		}
		run = run && ok
	}
	return run, nil
}

func evaluate(finder *directory.Finder, dep models.Dependency, rule models.WhenToRunRule) (bool, error) {
	switch rule.Kind {
	case models.RuleFileDoesNotExist:
		path := finder.DownloadPath(dep, rule.Path)
		missing := !utils.Exists(path)
		logrus.Debugf("%s: %s %s -> %t", dep, rule.Kind, path, missing)
		return missing, nil
	default:
		return false, models.NewError(models.ErrInstallCommand, dep, fmt.Errorf("%w: %s", models.ErrUnknownRule, rule.Kind))
	}
}
