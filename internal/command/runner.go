package command

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/environment"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/utils"
	"github.com/sirupsen/logrus"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// InstallRunner executes install commands inside a dependency's downloads directory.
type InstallRunner struct {
	finder *directory.Finder
	stdio  IO
}

// NewInstallRunner creates an InstallRunner
func NewInstallRunner(finder *directory.Finder, stdio IO) *InstallRunner {
	return &InstallRunner{finder: finder, stdio: stdio}
}

// RunAll runs commands strictly in order and stops at the first failure.
func (r *InstallRunner) RunAll(ctx context.Context, env *environment.Environment, cmds []models.Owned[models.InstallCommand]) error {
	for _, c := range cmds {
		if err := r.Run(ctx, env, c.Dependency, c.Item); err != nil {
			return err
		}
	}
	return nil
}

// Run executes cmd when its rules allow it. On Windows the line goes to
// cmd.exe, elsewhere to an embedded POSIX shell.
func (r *InstallRunner) Run(ctx context.Context, env *environment.Environment, dep models.Dependency, cmd models.InstallCommand) error {
	run, err := ShouldRun(r.finder, dep, cmd.WhenToRun)
	if err != nil {
		return err
	}
	if !run {
		logrus.Debugf("%s: skipping %q", dep, cmd.Command)
		return nil
	}

	dir := r.finder.DownloadsDir(dep)
	if err := utils.EnsureDir(dir); err != nil {
		return models.NewError(models.ErrInstallCommand, dep, err)
	}

	logrus.Infof("%s: running %q", dep, cmd.Command)
	if runtime.GOOS == "windows" {
		err = r.runCmd(ctx, env, dir, cmd.Command)
	} else {
		err = r.runShell(ctx, env, dir, cmd.Command)
	}
	if err != nil {
		return models.NewError(models.ErrInstallCommand, dep, fmt.Errorf("%q: %w", cmd.Command, err))
	}
	return nil
}

func (r *InstallRunner) runShell(ctx context.Context, env *environment.Environment, dir, line string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "install_command")
	if err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(env.Environ()...)),
		interp.StdIO(r.stdio.In, r.stdio.Out, r.stdio.Err),
	)
	if err != nil {
		return err
	}

	if err := runner.Run(ctx, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return fmt.Errorf("exited with status %d", status)
		}
		return err
	}
	return nil
}

func (r *InstallRunner) runCmd(ctx context.Context, env *environment.Environment, dir, line string) error {
	c := exec.CommandContext(ctx, "cmd", "/C", line)
	c.Dir = dir
	c.Env = env.Environ()
	c.Stdin, c.Stdout, c.Stderr = r.stdio.In, r.stdio.Out, r.stdio.Err
	return c.Run()
}
