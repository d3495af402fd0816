package cli

import (
	"github.com/Solipath/Solipath/internal/linkcheck"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newVerifyLinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-links [checkout-dir]",
		Short: "Check that every download in an instruction repository is reachable",
		Long: `Walks <name>/<version>/install_instructions.json files of an instruction
repository checkout, expands their templates from the same checkout and
sends a HEAD request to every download and signature URL. Platform
filters are ignored. Every unreachable URL is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			checked, err := linkcheck.NewChecker(root, a.newDownloader()).Check(cmd.Context())
			if err != nil {
				return err
			}

			logrus.Infof("All %d links are reachable", checked)
			return nil
		},
	}
}
