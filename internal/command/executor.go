package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/Solipath/Solipath/internal/environment"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/sirupsen/logrus"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// Executor starts the user's command with the prepared environment.
type Executor struct {
	stdio IO
}

// NewExecutor creates an Executor
func NewExecutor(stdio IO) *Executor {
	return &Executor{stdio: stdio}
}

// Execute runs args and returns its exit code. A non-zero exit is not an
// error; failing to start the command is.
func (x *Executor) Execute(ctx context.Context, env *environment.Environment, args []string) (int, error) {
	if len(args) == 0 {
		return 0, &models.SolipathError{Type: models.ErrExec, Err: models.ErrNoCommand}
	}

	cmd, err := x.command(ctx, env, args)
	if err != nil {
		return 0, &models.SolipathError{Type: models.ErrExec, Err: err}
	}
	cmd.Env = env.Environ()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = x.stdio.In, x.stdio.Out, x.stdio.Err

	logrus.Debugf("Executing %v", args)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitCode(exitErr), nil
		}
		return 0, &models.SolipathError{Type: models.ErrExec, Err: fmt.Errorf("%s: %w", args[0], err)}
	}
	return 0, nil
}

// exitCode reports a child killed by a signal the way a shell does, as
// 128 plus the signal number.
func exitCode(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return err.ExitCode()
}

// command resolves the program against the prepared PATH rather than the
// PATH of this process, so freshly installed tools are found.
func (x *Executor) command(ctx context.Context, env *environment.Environment, args []string) (*exec.Cmd, error) {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", append([]string{"/C"}, args...)...), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path, err := interp.LookPathDir(cwd, expand.ListEnviron(env.Environ()...), args[0])
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, path, args[1:]...)
	cmd.Args[0] = args[0]
	return cmd, nil
}
