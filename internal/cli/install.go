package cli

import (
	"fmt"

	"github.com/Solipath/Solipath/internal/command"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install dependencies without running a command",
		Long: `Runs every phase up to the final command and prints the variables
the command would have received, one NAME=value per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.dependencies()
			if err != nil {
				return err
			}

			// Install command output goes to stderr so stdout only holds variables.
			streams := command.IO{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr(), Err: cmd.ErrOrStderr()}
			p, err := a.newPipeline(streams)
			if err != nil {
				return err
			}

			env, err := p.Install(cmd.Context(), deps)
			if err != nil {
				return err
			}

			logrus.Infof("Installed %d dependencies", len(deps))
			for _, v := range env.Changes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", v.Name, v.Value)
			}
			return nil
		},
	}
}
