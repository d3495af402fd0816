package cli

import (
	"context"

	"github.com/Solipath/Solipath/internal/platform"
	"github.com/Solipath/Solipath/internal/selfupdate"
	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Replace this executable with the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdate(cmd.Context())
		},
	}
}

// selfUpdate is replaced in tests so they never overwrite the test binary.
var selfUpdate = func(ctx context.Context, u *selfupdate.Updater) error {
	return u.Update(ctx)
}

func (a *app) runUpdate(ctx context.Context) error {
	u := selfupdate.NewUpdater(a.newDownloader(), a.cfg.ReleaseURL, platform.Current())
	return selfUpdate(ctx, u)
}
